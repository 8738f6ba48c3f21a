package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/coursekit-backend/internal/http"
	httpH "github.com/yungbote/coursekit-backend/internal/http/handlers"
	httpMW "github.com/yungbote/coursekit-backend/internal/http/middleware"
	"github.com/yungbote/coursekit-backend/internal/observability"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health     *httpH.HealthHandler
	User       *httpH.UserHandler
	Course     *httpH.CourseHandler
	Module     *httpH.ModuleHandler
	Topic      *httpH.TopicHandler
	Lesson     *httpH.LessonHandler
	Enrollment *httpH.EnrollmentHandler
	Quiz       *httpH.QuizHandler
	Award      *httpH.AwardHandler
	Path       *httpH.PathHandler
	Banner     *httpH.BannerHandler
	Post       *httpH.PostHandler
	Prelaunch  *httpH.PrelaunchHandler
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:     httpH.NewHealthHandler(db),
		User:       httpH.NewUserHandler(services.User),
		Course:     httpH.NewCourseHandler(log, services.Course),
		Module:     httpH.NewModuleHandler(log, services.Module),
		Topic:      httpH.NewTopicHandler(log, services.Topic),
		Lesson:     httpH.NewLessonHandler(log, services.Lesson),
		Enrollment: httpH.NewEnrollmentHandler(log, services.Enrollment),
		Quiz:       httpH.NewQuizHandler(log, services.Quiz),
		Award:      httpH.NewAwardHandler(log, services.Award),
		Path:       httpH.NewPathHandler(log, services.LearningPath),
		Banner:     httpH.NewBannerHandler(log, services.Banner),
		Post:       httpH.NewPostHandler(log, services.Post),
		Prelaunch:  httpH.NewPrelaunchHandler(log, services.Prelaunch),
	}
}

func wireRouterConfig(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) http.RouterConfig {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return http.RouterConfig{
		Log:               log,
		Metrics:           metrics,
		ServiceName:       serviceName,
		CORSOrigins:       cfg.CORSOrigins,
		AuthMiddleware:    middleware.Auth,
		HealthHandler:     handlers.Health,
		UserHandler:       handlers.User,
		CourseHandler:     handlers.Course,
		ModuleHandler:     handlers.Module,
		TopicHandler:      handlers.Topic,
		LessonHandler:     handlers.Lesson,
		EnrollmentHandler: handlers.Enrollment,
		QuizHandler:       handlers.Quiz,
		AwardHandler:      handlers.Award,
		PathHandler:       handlers.Path,
		BannerHandler:     handlers.Banner,
		PostHandler:       handlers.Post,
		PrelaunchHandler:  handlers.Prelaunch,
	}
}
