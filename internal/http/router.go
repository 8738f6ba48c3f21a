package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/coursekit-backend/internal/http/handlers"
	httpMW "github.com/yungbote/coursekit-backend/internal/http/middleware"
	"github.com/yungbote/coursekit-backend/internal/observability"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	CORSOrigins    []string
	AuthMiddleware *httpMW.AuthMiddleware

	CourseHandler     *httpH.CourseHandler
	ModuleHandler     *httpH.ModuleHandler
	TopicHandler      *httpH.TopicHandler
	LessonHandler     *httpH.LessonHandler
	EnrollmentHandler *httpH.EnrollmentHandler
	QuizHandler       *httpH.QuizHandler
	AwardHandler      *httpH.AwardHandler
	UserHandler       *httpH.UserHandler
	PathHandler       *httpH.PathHandler
	BannerHandler     *httpH.BannerHandler
	PostHandler       *httpH.PostHandler
	PrelaunchHandler  *httpH.PrelaunchHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	public := api.Group("")
	protected := api.Group("")
	if cfg.AuthMiddleware != nil {
		public.Use(cfg.AuthMiddleware.OptionalAuth())
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}

	// Catalog
	if h := cfg.CourseHandler; h != nil {
		public.GET("/courses", h.ListCourses)
		public.GET("/courses/:id", h.GetCourse)
		public.GET("/courses/slug/:slug", h.GetCourseBySlug)
		public.GET("/courses/:id/tree", h.GetCourseTree)
		protected.POST("/courses", h.CreateCourse)
		protected.PATCH("/courses/:id", h.UpdateCourse)
		protected.POST("/courses/:id/publish", h.SetPublished)
		protected.DELETE("/courses/:id", h.DeleteCourse)
	}
	if h := cfg.ModuleHandler; h != nil {
		public.GET("/courses/:id/modules", h.ListCourseModules)
		public.GET("/modules/:id", h.GetModule)
		protected.POST("/courses/:id/modules", h.CreateModule)
		protected.PATCH("/modules/:id", h.UpdateModule)
		protected.DELETE("/modules/:id", h.DeleteModule)
		protected.POST("/modules/:id/reorder", h.ReorderModule)
	}
	if h := cfg.TopicHandler; h != nil {
		public.GET("/modules/:id/topics", h.ListModuleTopics)
		public.GET("/topics/:id", h.GetTopic)
		protected.POST("/modules/:id/topics", h.CreateTopic)
		protected.PATCH("/topics/:id", h.UpdateTopic)
		protected.DELETE("/topics/:id", h.DeleteTopic)
		protected.POST("/topics/:id/reorder", h.ReorderTopic)
	}
	if h := cfg.LessonHandler; h != nil {
		public.GET("/topics/:id/lessons", h.ListTopicLessons)
		public.GET("/lessons/:id", h.GetLesson)
		protected.POST("/topics/:id/lessons", h.CreateLesson)
		protected.PATCH("/lessons/:id", h.UpdateLesson)
		protected.DELETE("/lessons/:id", h.DeleteLesson)
		protected.POST("/lessons/:id/reorder", h.ReorderLesson)
	}

	// Enrollment and progress
	if h := cfg.EnrollmentHandler; h != nil {
		protected.POST("/courses/:id/enroll", h.Enroll)
		protected.GET("/enrollments", h.ListMyEnrollments)
		protected.GET("/enrollments/:id", h.GetEnrollment)
		protected.POST("/enrollments/:id/complete", h.CompleteEnrollment)
		protected.POST("/enrollments/:id/progress", h.RecordProgress)
		protected.GET("/enrollments/:id/progress", h.ListProgress)
	}

	// Quizzes
	if h := cfg.QuizHandler; h != nil {
		public.GET("/quizzes", h.ListQuizzesForContent)
		public.GET("/quizzes/:id", h.GetQuiz)
		protected.POST("/quizzes", h.CreateQuiz)
		protected.PATCH("/quizzes/:id", h.UpdateQuiz)
		protected.DELETE("/quizzes/:id", h.DeleteQuiz)
		protected.POST("/quizzes/:id/questions", h.AddQuestion)
		protected.PATCH("/questions/:id", h.UpdateQuestion)
		protected.DELETE("/questions/:id", h.DeleteQuestion)
		protected.POST("/questions/:id/reorder", h.ReorderQuestion)
		protected.POST("/questions/:id/answers", h.AddAnswer)
		protected.PATCH("/answers/:id", h.UpdateAnswer)
		protected.DELETE("/answers/:id", h.DeleteAnswer)
		protected.POST("/quizzes/:id/attempts", h.SubmitAttempt)
		protected.GET("/quizzes/:id/attempts", h.ListMyAttempts)
		protected.GET("/quizzes/:id/attempts/latest", h.LatestAttempt)
		protected.GET("/quizzes/:id/attempts/best", h.BestAttempt)
	}

	// Gamification
	if h := cfg.UserHandler; h != nil {
		protected.GET("/me", h.GetMe)
	}
	if h := cfg.AwardHandler; h != nil {
		public.GET("/awards", h.ListAwards)
		public.GET("/awards/:id", h.GetAward)
		protected.POST("/awards", h.CreateAward)
		protected.PATCH("/awards/:id", h.UpdateAward)
		protected.DELETE("/awards/:id", h.DeleteAward)
		protected.POST("/awards/:id/grant", h.Grant)
		protected.GET("/users/:id/awards", h.UserAwards)
		protected.GET("/me/awards", h.MyAwards)
		protected.POST("/me/awards/check", h.Check)
	}

	// Learning paths
	if h := cfg.PathHandler; h != nil {
		public.GET("/paths", h.ListPaths)
		public.GET("/paths/featured", h.ListFeatured)
		public.GET("/paths/tag/:tag", h.ListPathsByTag)
		public.GET("/paths/slug/:slug", h.GetPath)
		public.GET("/paths/:id/related", h.ListRelated)
		protected.POST("/paths", h.CreatePath)
		protected.PATCH("/paths/:id", h.UpdatePath)
		protected.DELETE("/paths/:id", h.DeletePath)
		protected.POST("/paths/:id/publish", h.SetPublished)
		protected.POST("/paths/:id/courses", h.AttachCourse)
		protected.DELETE("/paths/:id/courses/:courseId", h.DetachCourse)
		protected.POST("/paths/:id/courses/:courseId/reorder", h.ReorderCourse)
		protected.POST("/paths/:id/modules", h.AddModule)
		protected.PATCH("/path-modules/:id", h.UpdateModule)
		protected.DELETE("/path-modules/:id", h.DeleteModule)
		protected.POST("/path-modules/:id/reorder", h.ReorderModule)
		protected.POST("/path-modules/:id/items", h.AddItem)
		protected.PATCH("/path-items/:id", h.UpdateItem)
		protected.DELETE("/path-items/:id", h.DeleteItem)
		protected.POST("/path-items/:id/reorder", h.ReorderItem)
		protected.POST("/paths/:id/resources", h.AddResource)
		protected.PATCH("/path-resources/:id", h.UpdateResource)
		protected.DELETE("/path-resources/:id", h.DeleteResource)
	}

	// Banners
	if h := cfg.BannerHandler; h != nil {
		public.GET("/banners/active", h.ActiveBanners)
		public.POST("/banners/:id/stats", h.TrackStat)
		protected.GET("/banners", h.ListBanners)
		protected.POST("/banners", h.CreateBanner)
		protected.GET("/banners/:id", h.GetBanner)
		protected.PATCH("/banners/:id", h.UpdateBanner)
		protected.DELETE("/banners/:id", h.DeleteBanner)
	}

	if h := cfg.PostHandler; h != nil {
		public.GET("/categories", h.ListCategories)
		public.GET("/categories/slug/:slug", h.GetCategory)
		protected.POST("/categories", h.CreateCategory)
		protected.PATCH("/categories/:id", h.UpdateCategory)
		protected.DELETE("/categories/:id", h.DeleteCategory)

		public.GET("/posts", h.ListPosts)
		public.GET("/posts/slug/:slug", h.GetPost)
		public.GET("/posts/slug/:slug/related", h.RelatedPosts)
		public.GET("/posts/category/:slug", h.ListByCategory)
		public.GET("/posts/author/:id", h.ListByAuthor)
		protected.POST("/posts", h.CreatePost)
		protected.PATCH("/posts/:id", h.UpdatePost)
		protected.DELETE("/posts/:id", h.DeletePost)
	}

	if h := cfg.PrelaunchHandler; h != nil {
		public.GET("/prelaunch/campaigns/:id", h.GetCampaign)
		public.GET("/prelaunch/campaigns/slug/:slug", h.GetCampaignBySlug)
		public.POST("/prelaunch/campaigns/:id/stats", h.RecordCampaignStats)
		public.GET("/prelaunch/courses/:courseId/campaigns", h.CampaignsForCourse)
		public.POST("/prelaunch/subscribe", h.Subscribe)
		public.POST("/prelaunch/unsubscribe", h.Unsubscribe)

		protected.GET("/prelaunch/campaigns", h.ListCampaigns)
		protected.POST("/prelaunch/campaigns", h.CreateCampaign)
		protected.PATCH("/prelaunch/campaigns/:id", h.UpdateCampaign)
		protected.DELETE("/prelaunch/campaigns/:id", h.DeleteCampaign)
		protected.POST("/prelaunch/campaigns/:id/courses", h.AddCourse)
		protected.DELETE("/prelaunch/campaigns/:id/courses/:courseId", h.RemoveCourse)
		protected.GET("/prelaunch/campaigns/:id/subscribers", h.ListSubscribers)
		protected.POST("/prelaunch/subscribers/:id/lead-magnet-sent", h.MarkLeadMagnetSent)
		protected.GET("/prelaunch/campaigns/:id/sequences", h.ListSequences)
		protected.POST("/prelaunch/campaigns/:id/sequences", h.CreateSequence)
		protected.GET("/prelaunch/sequences/:id", h.GetSequence)
		protected.PATCH("/prelaunch/sequences/:id", h.UpdateSequence)
		protected.DELETE("/prelaunch/sequences/:id", h.DeleteSequence)
		protected.GET("/prelaunch/sequences/:id/emails", h.ListEmails)
		protected.POST("/prelaunch/sequences/:id/emails", h.CreateEmail)
		protected.GET("/prelaunch/emails/:id", h.GetEmail)
		protected.PATCH("/prelaunch/emails/:id", h.UpdateEmail)
		protected.DELETE("/prelaunch/emails/:id", h.DeleteEmail)
		protected.POST("/prelaunch/emails/:id/stats", h.RecordEmailStats)
	}

	return r
}
