package config

// Config 配置主体
type Config struct {
	Server                   ServerConfig             `mapstructure:"server"`
	DB                       DBConfig                 `mapstructure:"database"`
	Redis                    RedisConfig              `mapstructure:"redis"`
	Auth                     AuthConfig               `mapstructure:"auth"`
	MinIO                    MinIOConfig              `mapstructure:"minio"`
	Logstash                 LogstashConfig           `mapstructure:"logstash"`
	LinkPreview              LinkPreviewConfig        `mapstructure:"link_preview"`
	Kafka                    KafkaConfig              `mapstructure:"kafka"`
	KafkaVoteConsumer        KafkaVoteConsumer        `mapstructure:"kafka_vote_consumer"`
	KafkaLikeConsumer        KafkaLikeConsumer        `mapstructure:"kafka_like_consumer"`
	KafkaCommentLikeConsumer KafkaCommentLikeConsumer `mapstructure:"kafka_comment_like_consumer"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// DBConfig 数据库配置
type DBConfig struct {
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// AuthConfig 外部认证服务签发 Token 的校验配置
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

// MinIOConfig MinIO配置
type MinIOConfig struct {
	Endpoint   string `mapstructure:"endpoint"`
	AccessKey  string `mapstructure:"access_key"`
	SecretKey  string `mapstructure:"secret_key"`
	MainBucket string `mapstructure:"main_bucket"`
	UseSSL     bool   `mapstructure:"use_ssl"`
}

// LogstashConfig 远程日志上报配置
type LogstashConfig struct {
	Address string `mapstructure:"address"`
	Index   string `mapstructure:"index"`
	Token   string `mapstructure:"token"`
}

// LinkPreviewConfig 评论外链抓取配置
type LinkPreviewConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
	MaxBodyBytes   int `mapstructure:"max_body_bytes"`
}

type KafkaConfig struct {
	Brokers  []string       `mapstructure:"brokers"`
	Sasl     SaslConfig     `mapstructure:"sasl"`
	Consumer ConsumerConfig `mapstructure:"consumer"`
}

type SaslConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type ConsumerConfig struct {
	SessionTimeout    int `mapstructure:"session_timeout"`
	HeartbeatInterval int `mapstructure:"heartbeat_interval"`
	RebalanceTimeout  int `mapstructure:"rebalance_timeout"`
	MaxProcessingTime int `mapstructure:"max_processing_time"`
}

type KafkaVoteConsumer struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

type KafkaLikeConsumer struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

type KafkaCommentLikeConsumer struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}
