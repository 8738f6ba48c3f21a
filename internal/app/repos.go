package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/coursekit-backend/internal/data/repos"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
)

type Repos struct {
	User            repos.UserRepo
	Course          repos.CourseRepo
	CourseModule    repos.CourseModuleRepo
	CourseTopic     repos.CourseTopicRepo
	TopicLesson     repos.TopicLessonRepo
	Enrollment      repos.CourseEnrollmentRepo
	Progress        repos.CourseProgressRepo
	Quiz            repos.QuizRepo
	QuizQuestion    repos.QuizQuestionRepo
	QuizAttempt     repos.UserQuizAttemptRepo
	Award           repos.AwardRepo
	UserAward       repos.UserAwardRepo
	LearningPath    repos.LearningPathRepo
	PathCourse      repos.CourseLearningPathRepo
	PathModule      repos.PathModuleRepo
	PathResource    repos.PathResourceRepo
	MarketingBanner repos.MarketingBannerRepo
	Campaign        repos.PrelaunchCampaignRepo
	Subscriber      repos.PrelaunchSubscriberRepo
	Sequence        repos.PrelaunchSequenceRepo
	Category        repos.CategoryRepo
	Post            repos.PostRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:            repos.NewUserRepo(db, log),
		Course:          repos.NewCourseRepo(db, log),
		CourseModule:    repos.NewCourseModuleRepo(db, log),
		CourseTopic:     repos.NewCourseTopicRepo(db, log),
		TopicLesson:     repos.NewTopicLessonRepo(db, log),
		Enrollment:      repos.NewCourseEnrollmentRepo(db, log),
		Progress:        repos.NewCourseProgressRepo(db, log),
		Quiz:            repos.NewQuizRepo(db, log),
		QuizQuestion:    repos.NewQuizQuestionRepo(db, log),
		QuizAttempt:     repos.NewUserQuizAttemptRepo(db, log),
		Award:           repos.NewAwardRepo(db, log),
		UserAward:       repos.NewUserAwardRepo(db, log),
		LearningPath:    repos.NewLearningPathRepo(db, log),
		PathCourse:      repos.NewCourseLearningPathRepo(db, log),
		PathModule:      repos.NewPathModuleRepo(db, log),
		PathResource:    repos.NewPathResourceRepo(db, log),
		MarketingBanner: repos.NewMarketingBannerRepo(db, log),
		Campaign:        repos.NewPrelaunchCampaignRepo(db, log),
		Subscriber:      repos.NewPrelaunchSubscriberRepo(db, log),
		Sequence:        repos.NewPrelaunchSequenceRepo(db, log),
		Category:        repos.NewCategoryRepo(db, log),
		Post:            repos.NewPostRepo(db, log),
	}
}
