package config

import (
	"context"

	"github.com/evandrarf/drivequiz-be/internal/delivery/http/handler"
	"github.com/evandrarf/drivequiz-be/internal/delivery/http/middleware"
	"github.com/evandrarf/drivequiz-be/internal/delivery/http/repository"
	"github.com/evandrarf/drivequiz-be/internal/delivery/http/route"
	"github.com/evandrarf/drivequiz-be/internal/delivery/http/usecase"
	"github.com/evandrarf/drivequiz-be/internal/engine"
	"github.com/evandrarf/drivequiz-be/internal/jobs"
	"github.com/evandrarf/drivequiz-be/internal/pkg/llm"
	"github.com/evandrarf/drivequiz-be/internal/pkg/validate"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

type BootstrapConfig struct {
	Api       *fiber.App
	Config    *viper.Viper
	DB        *gorm.DB
	Log       *logrus.Logger
	Validator *validate.Validator
}

// Services holds what main has to stop on shutdown.
type Services struct {
	Quiz         usecase.QuizUsecase
	Jobs         *jobs.JobManager
	AsyncTrigger *engine.AsyncTrigger
	janitorCtx   context.Context
	stopJanitor  context.CancelFunc
}

func Bootstrap(config *BootstrapConfig) *Services {
	mid := middleware.NewMiddleware(&middleware.MiddlewareConfig{
		Log:    config.Log,
		Config: config.Config,
	})

	quizRepo := repository.NewQuizRepository(config.DB)
	store := repository.NewQuizStore(config.DB, quizRepo, config.Log)

	services := &Services{}

	var trigger engine.AchievementTrigger
	timeout := config.Config.GetDuration("achievements.timeout")
	if redisURL := config.Config.GetString("jobs.redis_url"); redisURL != "" {
		jm, err := jobs.NewJobManager(redisURL, config.Config.GetInt("jobs.concurrency"), timeout, config.Log)
		if err != nil {
			config.Log.Fatalf("Failed to create job manager: %v", err)
		}
		jm.RegisterHandlers(store)
		services.Jobs = jm
		trigger = jm
	} else {
		services.AsyncTrigger = engine.NewAsyncTrigger(store, timeout, config.Log)
		trigger = services.AsyncTrigger
	}

	var generator usecase.TextGenerator
	if apiKey := config.Config.GetString("llm.api_key"); apiKey != "" {
		generator = llm.NewClient(apiKey, config.Config.GetString("llm.model"), config.Config.GetString("llm.base_url"))
	}

	services.Quiz = usecase.NewQuizUsecase(usecase.QuizConfig{
		DB:         config.DB,
		Repository: quizRepo,
		Source:     store,
		Store:      store,
		Trigger:    trigger,
		WakeLocker: engine.LeaseWakeLocker{},
		LLM:        generator,
		Config:     config.Config,
		Log:        config.Log,
	})
	quizHandler := handler.NewQuizHandler(config.Validator, config.Log, services.Quiz)

	route.Setup(&route.RouteConfig{
		Api:         config.Api,
		Middleware:  mid,
		QuizHandler: quizHandler,
	})

	services.janitorCtx, services.stopJanitor = context.WithCancel(context.Background())
	return services
}

// Start launches the background workers.
func (s *Services) Start() error {
	go s.Quiz.RunJanitor(s.janitorCtx)
	if s.Jobs != nil {
		return s.Jobs.Start()
	}
	return nil
}

// Shutdown stops the janitor, closes open sessions and drains pending
// achievement work.
func (s *Services) Shutdown() {
	s.stopJanitor()
	s.Quiz.Shutdown()
	if s.AsyncTrigger != nil {
		s.AsyncTrigger.Close()
	}
	if s.Jobs != nil {
		s.Jobs.Stop()
	}
}
