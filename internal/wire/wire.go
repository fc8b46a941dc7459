package wire

import (
	"Agora/internal/api"
	"Agora/internal/api/config"
	"Agora/internal/api/handler"
	"Agora/internal/job"
	"Agora/internal/pkg/cron"
	"Agora/internal/pkg/kafka"
	"Agora/internal/pkg/linkpreview"
	"Agora/internal/repository"
	"Agora/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	KafkaManager *kafka.ConsumerManager
	CronMgr      *cron.Manager
}

func BuildApplication(db *gorm.DB, cfg *config.Config) (*ApplicationContainer, error) {
	userRepo := repository.NewUserRepo(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepo(db)
	actionRepo := repository.NewPostActionRepo(db)

	previewer := linkpreview.NewFetcher()

	postService := service.NewPostService(postRepo, actionRepo, userRepo)
	actionService := service.NewPostActionService(actionRepo, postRepo, commentRepo, service.NewRedisActionCache())
	commentService := service.NewCommentService(commentRepo, postRepo, actionRepo, userRepo, previewer)

	handlers := &api.HandlersGroup{
		PostHandler:       handler.NewPostHandler(postService),
		PostActionHandler: handler.NewPostActionHandler(actionService),
		CommentHandler:    handler.NewCommentHandler(commentService),
		MediaHandler:      handler.NewMediaHandler(),
	}

	router := api.SetupRouter(handlers)

	kafkaMgr, err := kafka.NewConsumerManager(cfg)
	if err != nil {
		return nil, err
	}

	syncJob := job.NewCounterSyncJob(postRepo, commentRepo, actionRepo)
	cronMgr := cron.NewCronManager(syncJob)

	return &ApplicationContainer{
		Router:       router,
		DB:           db,
		KafkaManager: kafkaMgr,
		CronMgr:      cronMgr,
	}, nil
}
