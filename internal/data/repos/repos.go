package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/coursekit-backend/internal/data/repos/blog"
	"github.com/yungbote/coursekit-backend/internal/data/repos/catalog"
	"github.com/yungbote/coursekit-backend/internal/data/repos/enrollment"
	"github.com/yungbote/coursekit-backend/internal/data/repos/gamification"
	"github.com/yungbote/coursekit-backend/internal/data/repos/learningpath"
	"github.com/yungbote/coursekit-backend/internal/data/repos/marketing"
	"github.com/yungbote/coursekit-backend/internal/data/repos/quiz"
	"github.com/yungbote/coursekit-backend/internal/data/repos/user"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo

type CourseRepo = catalog.CourseRepo
type CourseFilter = catalog.CourseFilter
type CourseModuleRepo = catalog.CourseModuleRepo
type CourseTopicRepo = catalog.CourseTopicRepo
type TopicLessonRepo = catalog.TopicLessonRepo

type CourseEnrollmentRepo = enrollment.CourseEnrollmentRepo
type CourseProgressRepo = enrollment.CourseProgressRepo

type QuizRepo = quiz.QuizRepo
type QuizQuestionRepo = quiz.QuizQuestionRepo
type UserQuizAttemptRepo = quiz.UserQuizAttemptRepo

type AwardRepo = gamification.AwardRepo
type UserAwardRepo = gamification.UserAwardRepo

type LearningPathRepo = learningpath.LearningPathRepo
type PathFilter = learningpath.PathFilter
type CourseLearningPathRepo = learningpath.CourseLearningPathRepo
type PathModuleRepo = learningpath.PathModuleRepo
type PathResourceRepo = learningpath.PathResourceRepo

type MarketingBannerRepo = marketing.MarketingBannerRepo
type PrelaunchCampaignRepo = marketing.PrelaunchCampaignRepo
type CampaignFilter = marketing.CampaignFilter
type PrelaunchSubscriberRepo = marketing.PrelaunchSubscriberRepo
type SubscriberFilter = marketing.SubscriberFilter
type PrelaunchSequenceRepo = marketing.PrelaunchSequenceRepo

type CategoryRepo = blog.CategoryRepo
type PostRepo = blog.PostRepo
type PostFilter = blog.PostFilter

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return catalog.NewCourseRepo(db, baseLog)
}
func NewCourseModuleRepo(db *gorm.DB, baseLog *logger.Logger) CourseModuleRepo {
	return catalog.NewCourseModuleRepo(db, baseLog)
}
func NewCourseTopicRepo(db *gorm.DB, baseLog *logger.Logger) CourseTopicRepo {
	return catalog.NewCourseTopicRepo(db, baseLog)
}
func NewTopicLessonRepo(db *gorm.DB, baseLog *logger.Logger) TopicLessonRepo {
	return catalog.NewTopicLessonRepo(db, baseLog)
}

func NewCourseEnrollmentRepo(db *gorm.DB, baseLog *logger.Logger) CourseEnrollmentRepo {
	return enrollment.NewCourseEnrollmentRepo(db, baseLog)
}
func NewCourseProgressRepo(db *gorm.DB, baseLog *logger.Logger) CourseProgressRepo {
	return enrollment.NewCourseProgressRepo(db, baseLog)
}

func NewQuizRepo(db *gorm.DB, baseLog *logger.Logger) QuizRepo {
	return quiz.NewQuizRepo(db, baseLog)
}
func NewQuizQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuizQuestionRepo {
	return quiz.NewQuizQuestionRepo(db, baseLog)
}
func NewUserQuizAttemptRepo(db *gorm.DB, baseLog *logger.Logger) UserQuizAttemptRepo {
	return quiz.NewUserQuizAttemptRepo(db, baseLog)
}

func NewAwardRepo(db *gorm.DB, baseLog *logger.Logger) AwardRepo {
	return gamification.NewAwardRepo(db, baseLog)
}
func NewUserAwardRepo(db *gorm.DB, baseLog *logger.Logger) UserAwardRepo {
	return gamification.NewUserAwardRepo(db, baseLog)
}

func NewLearningPathRepo(db *gorm.DB, baseLog *logger.Logger) LearningPathRepo {
	return learningpath.NewLearningPathRepo(db, baseLog)
}
func NewCourseLearningPathRepo(db *gorm.DB, baseLog *logger.Logger) CourseLearningPathRepo {
	return learningpath.NewCourseLearningPathRepo(db, baseLog)
}

func NewPathModuleRepo(db *gorm.DB, baseLog *logger.Logger) PathModuleRepo {
	return learningpath.NewPathModuleRepo(db, baseLog)
}
func NewPathResourceRepo(db *gorm.DB, baseLog *logger.Logger) PathResourceRepo {
	return learningpath.NewPathResourceRepo(db, baseLog)
}

func NewMarketingBannerRepo(db *gorm.DB, baseLog *logger.Logger) MarketingBannerRepo {
	return marketing.NewMarketingBannerRepo(db, baseLog)
}

func NewPrelaunchCampaignRepo(db *gorm.DB, baseLog *logger.Logger) PrelaunchCampaignRepo {
	return marketing.NewPrelaunchCampaignRepo(db, baseLog)
}
func NewPrelaunchSubscriberRepo(db *gorm.DB, baseLog *logger.Logger) PrelaunchSubscriberRepo {
	return marketing.NewPrelaunchSubscriberRepo(db, baseLog)
}
func NewPrelaunchSequenceRepo(db *gorm.DB, baseLog *logger.Logger) PrelaunchSequenceRepo {
	return marketing.NewPrelaunchSequenceRepo(db, baseLog)
}

func NewCategoryRepo(db *gorm.DB, baseLog *logger.Logger) CategoryRepo {
	return blog.NewCategoryRepo(db, baseLog)
}
func NewPostRepo(db *gorm.DB, baseLog *logger.Logger) PostRepo {
	return blog.NewPostRepo(db, baseLog)
}
