package services

import (
	"context"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/coursekit-backend/internal/data/repos"
	"github.com/yungbote/coursekit-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/learning/ordering"
	"github.com/yungbote/coursekit-backend/internal/learning/progress"
	"github.com/yungbote/coursekit-backend/internal/learning/rewards"
	"github.com/yungbote/coursekit-backend/internal/platform/ctxutil"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekit-backend/internal/realtime"
)

type recorder struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (r *recorder) Publish(_ context.Context, ev realtime.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Event)
	}
	return out
}

func (r *recorder) has(name string) bool {
	for _, n := range r.names() {
		if n == name {
			return true
		}
	}
	return false
}

type env struct {
	db          *gorm.DB
	users       repos.UserRepo
	events      *recorder
	courses     CourseService
	modules     ModuleService
	topics      TopicService
	lessons     LessonService
	enrollments EnrollmentService
	quizzes     QuizService
	awards      AwardService
	profiles    UserService
	paths       LearningPathService
	banners     BannerService
	posts       PostService
	prelaunch   PrelaunchService
	auth        AuthService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gdb := testutil.SQLiteDB(t)
	log := testutil.Logger(t)

	userRepo := repos.NewUserRepo(gdb, log)
	courseRepo := repos.NewCourseRepo(gdb, log)
	moduleRepo := repos.NewCourseModuleRepo(gdb, log)
	topicRepo := repos.NewCourseTopicRepo(gdb, log)
	lessonRepo := repos.NewTopicLessonRepo(gdb, log)
	enrollmentRepo := repos.NewCourseEnrollmentRepo(gdb, log)
	progressRepo := repos.NewCourseProgressRepo(gdb, log)

	orders := ordering.NewMaintainer(gdb, log)
	rule := rewards.DefaultRule()
	rewarder := rewards.NewRewarder(rule, gdb, userRepo, log)
	agg := progress.NewAggregator(gdb, log, enrollmentRepo, progressRepo, courseRepo, lessonRepo, rewarder)
	rec := &recorder{}

	return &env{
		db:      gdb,
		users:   userRepo,
		events:  rec,
		courses: NewCourseService(gdb, log, courseRepo, moduleRepo, topicRepo, lessonRepo),
		modules: NewModuleService(gdb, log, courseRepo, moduleRepo, topicRepo, lessonRepo, orders),
		topics:  NewTopicService(gdb, log, courseRepo, moduleRepo, topicRepo, lessonRepo, orders),
		lessons: NewLessonService(gdb, log, courseRepo, moduleRepo, topicRepo, lessonRepo, orders),
		enrollments: NewEnrollmentService(gdb, log, courseRepo, moduleRepo, topicRepo, lessonRepo,
			enrollmentRepo, progressRepo, userRepo, agg, rec),
		quizzes: NewQuizService(gdb, log, courseRepo, moduleRepo, topicRepo, lessonRepo,
			repos.NewQuizRepo(gdb, log), repos.NewQuizQuestionRepo(gdb, log), repos.NewUserQuizAttemptRepo(gdb, log),
			orders, rewarder, rec),
		awards: NewAwardService(gdb, log, repos.NewAwardRepo(gdb, log), repos.NewUserAwardRepo(gdb, log),
			userRepo, rewarder, rec),
		profiles: NewUserService(log, userRepo, rule),
		paths: NewLearningPathService(gdb, log, repos.NewLearningPathRepo(gdb, log),
			repos.NewCourseLearningPathRepo(gdb, log), repos.NewPathModuleRepo(gdb, log),
			repos.NewPathResourceRepo(gdb, log), courseRepo, orders),
		banners: NewBannerService(gdb, log, repos.NewMarketingBannerRepo(gdb, log), nil),
		posts:   NewPostService(gdb, log, repos.NewPostRepo(gdb, log), repos.NewCategoryRepo(gdb, log)),
		prelaunch: NewPrelaunchService(gdb, log, repos.NewPrelaunchCampaignRepo(gdb, log),
			repos.NewPrelaunchSubscriberRepo(gdb, log), repos.NewPrelaunchSequenceRepo(gdb, log), courseRepo),
		auth: NewAuthService(log, userRepo, "test-secret"),
	}
}

// as returns a context acting as u; nil means anonymous.
func as(u *types.User) dbctx.Context {
	ctx := context.Background()
	if u != nil {
		ctx = ctxutil.WithRequestData(ctx, &ctxutil.RequestData{UserID: u.ID, IsSuperuser: u.IsSuperuser})
	}
	return dbctx.Context{Ctx: ctx}
}

func (e *env) reloadUser(t *testing.T, u *types.User) *types.User {
	t.Helper()
	got, err := e.users.GetByID(dbctx.Context{Ctx: context.Background()}, u.ID)
	if err != nil || got == nil {
		t.Fatalf("reload user: %v", err)
	}
	return got
}
