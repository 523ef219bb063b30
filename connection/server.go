package connection

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"hrtracker/controller/board"
	"hrtracker/controller/task"
	"hrtracker/dto"
	"hrtracker/middleware"
	"hrtracker/notify"
	"hrtracker/repository"
	"hrtracker/services"
)

// Backend is everything the engine needs from the outside world.
type Backend struct {
	Deps    services.Deps
	Deduper middleware.Deduper
	close   []func() error
}

func (b *Backend) Close() {
	for _, fn := range b.close {
		if err := fn(); err != nil {
			log.WithError(err).Warn("closing backend")
		}
	}
}

// OpenBackend connects the configured store and Redis.
func OpenBackend(ctx context.Context, cfg Config, logger *log.Logger) (*Backend, error) {
	b := &Backend{}
	templates := make([]services.StateTemplate, 0, len(cfg.DefaultStates))
	for _, name := range cfg.DefaultStates {
		templates = append(templates, services.StateTemplate{Name: name})
	}
	b.Deps = services.Deps{
		Logger:        logger,
		StateTemplate: templates,
		PageSize:      cfg.PageSize,
	}

	switch cfg.StoreBackend {
	case BackendMemory:
		dir := repository.NewMemoryDirectory()
		b.Deps.Store = repository.NewMemoryStore()
		b.Deps.Members, b.Deps.Hours, b.Deps.Subscribers, b.Deps.Files = dir, dir, dir, dir
		logger.Warn("Using the in-memory store; data is lost on restart")
	default:
		client, bucket, err := FBConnection(ctx, cfg)
		if err != nil {
			return nil, err
		}
		b.close = append(b.close, client.Close)
		dir := repository.NewFirestoreDirectory(client)
		b.Deps.Store = repository.NewFirestoreStore(client)
		b.Deps.Members, b.Deps.Hours, b.Deps.Subscribers = dir, dir, dir
		b.Deps.Files = repository.NewFileStore(client, bucket)
	}

	if cfg.RedisURL != "" {
		rc := redis.NewClient(RedisOptions(cfg.RedisURL))
		if err := rc.Ping(ctx).Err(); err != nil {
			b.Close()
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		b.close = append(b.close, rc.Close)
		b.Deps.Notifier = notify.NewRedisPublisher(rc, cfg.NotifyChannel)
		b.Deduper = middleware.NewRedisDeduper(rc, cfg.IdempotencyTTL)
	} else {
		logger.Warn("REDIS_URL is not set; notifications and idempotency keys are disabled")
	}
	return b, nil
}

// NewRouter assembles the HTTP surface over the engine.
func NewRouter(b *Backend, jwtSecret string, logger *log.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(logger), cors.Default())

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Api is running!"})
	})

	auth := middleware.AccessTokenMiddleware(jwtSecret)
	idempotent := middleware.Idempotent(b.Deduper, logger)

	boards := services.NewBoardService(b.Deps)
	tasks := services.NewTaskService(b.Deps)
	board.BoardController(router, boards, tasks, auth, idempotent)
	task.TaskController(router, tasks, auth, idempotent)
	task.HistoryController(router, services.NewHistoryService(b.Deps), auth)
	task.SubscriptionController(router, services.NewSubscriberService(b.Deps), auth)
	return router
}

func StartServer(cfg Config) error {
	logger := log.StandardLogger()
	if cfg.Debug {
		logger.SetLevel(log.DebugLevel)
	}
	if err := dto.RegisterValidators(); err != nil {
		return fmt.Errorf("registering validators: %w", err)
	}

	ctx := context.Background()
	backend, err := OpenBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	router := NewRouter(backend, cfg.JWTSecret, logger)
	logger.WithField("port", cfg.Port).Info("Api is listening")
	return router.Run(":" + cfg.Port)
}
