package app

import (
	"gorm.io/gorm"

	redisclient "github.com/yungbote/coursekit-backend/internal/clients/redis"
	"github.com/yungbote/coursekit-backend/internal/learning/ordering"
	"github.com/yungbote/coursekit-backend/internal/learning/progress"
	"github.com/yungbote/coursekit-backend/internal/learning/rewards"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
	"github.com/yungbote/coursekit-backend/internal/realtime"
	"github.com/yungbote/coursekit-backend/internal/services"
)

type Services struct {
	Auth         services.AuthService
	User         services.UserService
	Course       services.CourseService
	Module       services.ModuleService
	Topic        services.TopicService
	Lesson       services.LessonService
	Enrollment   services.EnrollmentService
	Quiz         services.QuizService
	Award        services.AwardService
	LearningPath services.LearningPathService
	Banner       services.BannerService
	Post         services.PostService
	Prelaunch    services.PrelaunchService
}

func wireServices(
	db *gorm.DB,
	log *logger.Logger,
	cfg Config,
	rule rewards.Rule,
	r Repos,
	events realtime.Publisher,
	counter redisclient.BannerCounter,
) Services {
	log.Info("Wiring services...")

	orders := ordering.NewMaintainer(db, log)
	rewarder := rewards.NewRewarder(rule, db, r.User, log)
	aggregator := progress.NewAggregator(db, log, r.Enrollment, r.Progress, r.Course, r.TopicLesson, rewarder)

	return Services{
		Auth:   services.NewAuthService(log, r.User, cfg.JWTSecretKey),
		User:   services.NewUserService(log, r.User, rule),
		Course: services.NewCourseService(db, log, r.Course, r.CourseModule, r.CourseTopic, r.TopicLesson),
		Module: services.NewModuleService(db, log, r.Course, r.CourseModule, r.CourseTopic, r.TopicLesson, orders),
		Topic:  services.NewTopicService(db, log, r.Course, r.CourseModule, r.CourseTopic, r.TopicLesson, orders),
		Lesson: services.NewLessonService(db, log, r.Course, r.CourseModule, r.CourseTopic, r.TopicLesson, orders),
		Enrollment: services.NewEnrollmentService(
			db, log, r.Course, r.CourseModule, r.CourseTopic, r.TopicLesson,
			r.Enrollment, r.Progress, r.User, aggregator, events,
		),
		Quiz: services.NewQuizService(
			db, log, r.Course, r.CourseModule, r.CourseTopic, r.TopicLesson,
			r.Quiz, r.QuizQuestion, r.QuizAttempt, orders, rewarder, events,
		),
		Award:        services.NewAwardService(db, log, r.Award, r.UserAward, r.User, rewarder, events),
		LearningPath: services.NewLearningPathService(db, log, r.LearningPath, r.PathCourse, r.PathModule, r.PathResource, r.Course, orders),
		Banner:       services.NewBannerService(db, log, r.MarketingBanner, counter),
		Post:         services.NewPostService(db, log, r.Post, r.Category),
		Prelaunch:    services.NewPrelaunchService(db, log, r.Campaign, r.Subscriber, r.Sequence, r.Course),
	}
}
