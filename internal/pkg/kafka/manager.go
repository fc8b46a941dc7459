package kafka

import (
	"Agora/internal/api/config"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// ConsumerManager 管理所有 Kafka 消费者
type ConsumerManager struct {
	voteConsumer sarama.ConsumerGroup
	voteHandler  sarama.ConsumerGroupHandler

	likeConsumer sarama.ConsumerGroup
	likeHandler  sarama.ConsumerGroupHandler

	commentLikeConsumer sarama.ConsumerGroup
	commentLikeHandler  sarama.ConsumerGroupHandler
}

// NewConsumerManager 构造函数
func NewConsumerManager(cfg *config.Config) (*ConsumerManager, error) {
	saramaCfg := newSaramaConfig(cfg.Kafka)

	voteConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaVoteConsumer.GroupID, saramaCfg)
	if err != nil {
		return nil, err
	}

	likeConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaLikeConsumer.GroupID, saramaCfg)
	if err != nil {
		return nil, err
	}

	commentLikeConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaCommentLikeConsumer.GroupID, saramaCfg)
	if err != nil {
		return nil, err
	}

	return &ConsumerManager{
		voteConsumer:        voteConsumer,
		voteHandler:         NewVotesHandler(),
		likeConsumer:        likeConsumer,
		likeHandler:         NewLikesHandler(),
		commentLikeConsumer: commentLikeConsumer,
		commentLikeHandler:  NewCommentLikesHandler(),
	}, nil
}

// Start 启动所有消费者，阻塞到 ctx 取消
func (m *ConsumerManager) Start(ctx context.Context, cfg *config.Config) error {
	go func() {
		topic := cfg.KafkaVoteConsumer.Topic
		log.Info("Vote consumer started", "topic", topic)
		for {
			if err := m.voteConsumer.Consume(ctx, []string{topic}, m.voteHandler); err != nil {
				log.Error("Error from consumer", "err", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	go func() {
		topic := cfg.KafkaLikeConsumer.Topic
		log.Info("Like consumer started", "topic", topic)
		for {
			if err := m.likeConsumer.Consume(ctx, []string{topic}, m.likeHandler); err != nil {
				log.Error("Error from consumer", "err", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	go func() {
		topic := cfg.KafkaCommentLikeConsumer.Topic
		log.Info("Comment Like consumer started", "topic", topic)
		for {
			if err := m.commentLikeConsumer.Consume(ctx, []string{topic}, m.commentLikeHandler); err != nil {
				log.Error("Error from consumer", "err", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	<-ctx.Done()
	log.Info("Kafka Manager shutting down...")

	if err := m.voteConsumer.Close(); err != nil {
		log.Error("Failed to close vote consumer", "err", err)
	}
	if err := m.likeConsumer.Close(); err != nil {
		log.Error("Failed to close like consumer", "err", err)
	}
	if err := m.commentLikeConsumer.Close(); err != nil {
		log.Error("Failed to close comment like consumer", "err", err)
	}

	return nil
}
