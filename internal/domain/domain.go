package domain

import (
	"github.com/yungbote/coursekit-backend/internal/domain/blog"
	"github.com/yungbote/coursekit-backend/internal/domain/catalog"
	"github.com/yungbote/coursekit-backend/internal/domain/enrollment"
	"github.com/yungbote/coursekit-backend/internal/domain/gamification"
	"github.com/yungbote/coursekit-backend/internal/domain/learningpath"
	"github.com/yungbote/coursekit-backend/internal/domain/marketing"
	"github.com/yungbote/coursekit-backend/internal/domain/quiz"
	"github.com/yungbote/coursekit-backend/internal/domain/user"
)

type User = user.User

type Course = catalog.Course
type CourseModule = catalog.CourseModule
type CourseTopic = catalog.CourseTopic
type TopicLesson = catalog.TopicLesson

type CourseEnrollment = enrollment.CourseEnrollment
type CourseProgress = enrollment.CourseProgress

type Quiz = quiz.Quiz
type QuizQuestion = quiz.QuizQuestion
type QuizAnswer = quiz.QuizAnswer
type UserQuizAttempt = quiz.UserQuizAttempt

type Award = gamification.Award
type AwardRequirements = gamification.AwardRequirements
type UserAward = gamification.UserAward

type LearningPath = learningpath.LearningPath
type CourseLearningPath = learningpath.CourseLearningPath
type LearningPathModule = learningpath.LearningPathModule
type LearningPathItem = learningpath.LearningPathItem
type LearningPathResource = learningpath.LearningPathResource

type MarketingBanner = marketing.MarketingBanner
type PrelaunchCampaign = marketing.PrelaunchCampaign
type PrelaunchCampaignCourse = marketing.PrelaunchCampaignCourse
type PrelaunchSubscriber = marketing.PrelaunchSubscriber
type PrelaunchEmailSequence = marketing.PrelaunchEmailSequence
type PrelaunchEmail = marketing.PrelaunchEmail

type Category = blog.Category
type Post = blog.Post

// Models lists every persisted type in migration order.
func Models() []any {
	return []any{
		&User{},
		&Course{},
		&CourseModule{},
		&CourseTopic{},
		&TopicLesson{},
		&CourseEnrollment{},
		&CourseProgress{},
		&Quiz{},
		&QuizQuestion{},
		&QuizAnswer{},
		&UserQuizAttempt{},
		&Award{},
		&UserAward{},
		&LearningPath{},
		&CourseLearningPath{},
		&LearningPathModule{},
		&LearningPathItem{},
		&LearningPathResource{},
		&MarketingBanner{},
		&PrelaunchCampaign{},
		&PrelaunchCampaignCourse{},
		&PrelaunchSubscriber{},
		&PrelaunchEmailSequence{},
		&PrelaunchEmail{},
		&Category{},
		&Post{},
	}
}
