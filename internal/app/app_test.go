package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursekit-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/realtime"
	"github.com/yungbote/coursekit-backend/internal/realtime/bus"
)

type harness struct {
	t      *testing.T
	app    *App
	engine *gin.Engine
	events []realtime.Event
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	gdb := testutil.SQLiteDB(t)
	cfg := Config{
		Port:            "0",
		JWTSecretKey:    "test-secret",
		BannerFlushSpec: defaultBannerFlushSpec,
		ShutdownTimeout: time.Second,
	}
	a, err := assemble(testutil.Logger(t), cfg, gdb, Clients{Bus: bus.NewMemoryBus()}, nil)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	h := &harness{t: t, app: a, engine: a.Server.Engine}
	if err := a.Clients.Bus.StartForwarder(context.Background(), func(ev realtime.Event) {
		h.events = append(h.events, ev)
	}); err != nil {
		t.Fatalf("forwarder: %v", err)
	}
	return h
}

func (h *harness) token(u *types.User) string {
	h.t.Helper()
	tok, err := h.app.Services.Auth.IssueToken(u.ID, time.Hour)
	if err != nil {
		h.t.Fatalf("issue token: %v", err)
	}
	return tok
}

// do sends body as JSON and decodes the response into out when non-nil.
func (h *harness) do(method, path, token string, body any, out any) int {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			h.t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.engine.ServeHTTP(rec, req)
	if out != nil && rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			h.t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec.Code
}

type idResp struct {
	ID string `json:"id"`
}

func (h *harness) mustCreate(path, token string, body any, key string) string {
	h.t.Helper()
	var resp map[string]json.RawMessage
	if code := h.do(http.MethodPost, path, token, body, &resp); code != http.StatusCreated {
		h.t.Fatalf("POST %s: status %d", path, code)
	}
	var created idResp
	if err := json.Unmarshal(resp[key], &created); err != nil || created.ID == "" {
		h.t.Fatalf("POST %s: missing %s.id (%v)", path, key, err)
	}
	return created.ID
}

func TestHealthcheck(t *testing.T) {
	h := newHarness(t)
	if code := h.do(http.MethodGet, "/healthcheck", "", nil, nil); code != http.StatusOK {
		t.Fatalf("healthcheck: %d", code)
	}
}

func TestAuthBoundaries(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	author := testutil.SeedUser(t, ctx, h.app.DB, "author")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		status int
	}{
		{"create needs auth", http.MethodPost, "/api/courses", "", map[string]any{"title": "X"}, http.StatusUnauthorized},
		{"bad token on public route", http.MethodGet, "/api/courses", "garbage", nil, http.StatusUnauthorized},
		{"anonymous catalog", http.MethodGet, "/api/courses", "", nil, http.StatusOK},
		{"malformed id", http.MethodGet, "/api/courses/not-a-uuid", "", nil, http.StatusBadRequest},
		{"missing title", http.MethodPost, "/api/courses", h.token(author), map[string]any{}, http.StatusBadRequest},
		{"me needs auth", http.MethodGet, "/api/me", "", nil, http.StatusUnauthorized},
		{"non-integer limit", http.MethodGet, "/api/courses?limit=abc", "", nil, http.StatusBadRequest},
		{"non-integer offset", http.MethodGet, "/api/paths?offset=1.5", "", nil, http.StatusBadRequest},
		{"non-boolean filter", http.MethodGet, "/api/courses?featured=maybe", "", nil, http.StatusBadRequest},
		{"clamped limit", http.MethodGet, "/api/courses?limit=500", "", nil, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var env map[string]any
			if code := h.do(tt.method, tt.path, tt.token, tt.body, &env); code != tt.status {
				t.Fatalf("status: want=%d got=%d body=%v", tt.status, code, env)
			}
		})
	}
}

func TestCourseLifecycleOverHTTP(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	author := testutil.SeedUser(t, ctx, h.app.DB, "author")
	student := testutil.SeedUser(t, ctx, h.app.DB, "student")
	authorTok, studentTok := h.token(author), h.token(student)

	courseID := h.mustCreate("/api/courses", authorTok, map[string]any{
		"title": "Go Basics", "level": "intermediate",
	}, "course")

	var lessons []string
	var modules []string
	for i := 0; i < 2; i++ {
		moduleID := h.mustCreate("/api/courses/"+courseID+"/modules", authorTok,
			map[string]any{"title": fmt.Sprintf("Module %d", i), "is_published": true}, "module")
		modules = append(modules, moduleID)
		topicID := h.mustCreate("/api/modules/"+moduleID+"/topics", authorTok,
			map[string]any{"title": "Topic", "is_published": true}, "topic")
		lessons = append(lessons, h.mustCreate("/api/topics/"+topicID+"/lessons", authorTok,
			map[string]any{"title": "Lesson", "is_published": true}, "lesson"))
	}

	// Reorder the second module to the front.
	var reordered map[string]types.CourseModule
	if code := h.do(http.MethodPost, "/api/modules/"+modules[1]+"/reorder", authorTok,
		map[string]any{"new_order": 0}, &reordered); code != http.StatusOK {
		t.Fatalf("reorder: %d", code)
	}
	if reordered["module"].OrderIndex != 0 {
		t.Fatalf("reorder: want order 0 got %d", reordered["module"].OrderIndex)
	}
	if code := h.do(http.MethodPost, "/api/modules/"+modules[1]+"/reorder", authorTok,
		map[string]any{"new_order": 5}, nil); code != http.StatusBadRequest {
		t.Fatalf("out of range reorder: want 400 got %d", code)
	}

	// Unpublished courses cannot be enrolled in.
	if code := h.do(http.MethodPost, "/api/courses/"+courseID+"/enroll", studentTok, nil, nil); code != http.StatusBadRequest {
		t.Fatalf("enroll unpublished: want 400 got %d", code)
	}
	if code := h.do(http.MethodPost, "/api/courses/"+courseID+"/publish", studentTok,
		map[string]any{"published": true}, nil); code != http.StatusForbidden {
		t.Fatalf("stranger publish: want 403 got %d", code)
	}
	if code := h.do(http.MethodPost, "/api/courses/"+courseID+"/publish", authorTok,
		map[string]any{"published": true}, nil); code != http.StatusOK {
		t.Fatalf("publish: %d", code)
	}

	var tree struct {
		Modules []struct {
			ID     string `json:"id"`
			Topics []struct {
				Lessons []struct {
					ID string `json:"id"`
				} `json:"lessons"`
			} `json:"topics"`
		} `json:"modules"`
	}
	if code := h.do(http.MethodGet, "/api/courses/"+courseID+"/tree", "", nil, &tree); code != http.StatusOK {
		t.Fatalf("tree: %d", code)
	}
	if len(tree.Modules) != 2 || tree.Modules[0].ID != modules[1] {
		t.Fatalf("tree order: %+v", tree.Modules)
	}

	var enrolled map[string]types.CourseEnrollment
	if code := h.do(http.MethodPost, "/api/courses/"+courseID+"/enroll", studentTok, nil, &enrolled); code != http.StatusCreated {
		t.Fatalf("enroll: %d", code)
	}
	if code := h.do(http.MethodPost, "/api/courses/"+courseID+"/enroll", studentTok, nil, nil); code != http.StatusOK {
		t.Fatalf("re-enroll: want 200 got %d", code)
	}
	enrollmentID := enrolled["enrollment"].ID.String()

	var last struct {
		Enrollment types.CourseEnrollment `json:"enrollment"`
	}
	for i, lessonID := range lessons {
		if code := h.do(http.MethodPost, "/api/enrollments/"+enrollmentID+"/progress", studentTok, map[string]any{
			"content_type": "lesson", "content_id": lessonID, "is_completed": true,
		}, &last); code != http.StatusOK {
			t.Fatalf("progress %d: %d", i, code)
		}
	}
	if !last.Enrollment.IsCompleted || last.Enrollment.ProgressPercentage != 100 {
		t.Fatalf("enrollment not completed: %+v", last.Enrollment)
	}
	if code := h.do(http.MethodPost, "/api/enrollments/"+enrollmentID+"/progress", authorTok, map[string]any{
		"content_type": "lesson", "content_id": lessons[0], "is_completed": true,
	}, nil); code != http.StatusForbidden {
		t.Fatalf("foreign progress: want 403 got %d", code)
	}

	var me struct {
		Me struct {
			Experience  int `json:"experience"`
			TotalPoints int `json:"total_points"`
			Level       int `json:"level"`
			NextLevelAt int `json:"next_level_at"`
		} `json:"me"`
	}
	if code := h.do(http.MethodGet, "/api/me", studentTok, nil, &me); code != http.StatusOK {
		t.Fatalf("me: %d", code)
	}
	if me.Me.Experience != 100 || me.Me.TotalPoints != 50 || me.Me.Level != 2 || me.Me.NextLevelAt != 200 {
		t.Fatalf("profile: %+v", me.Me)
	}

	seen := map[string]bool{}
	for _, ev := range h.events {
		seen[ev.Event] = true
	}
	if !seen[realtime.EventCourseCompleted] || !seen[realtime.EventUserLevelUp] {
		t.Fatalf("events: %+v", h.events)
	}
}

func TestQuizAnswersHiddenOverHTTP(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	author := testutil.SeedUser(t, ctx, h.app.DB, "author")
	student := testutil.SeedUser(t, ctx, h.app.DB, "student")
	course := testutil.SeedCourse(t, ctx, h.app.DB, author.ID, "beginner", true)
	tree := testutil.SeedCourseTree(t, ctx, h.app.DB, course.ID, 1, 1, 1)

	quizID := h.mustCreate("/api/quizzes", h.token(author), map[string]any{
		"content_type": "lesson",
		"content_id":   tree.Lessons[0].ID,
		"title":        "Check",
		"questions": []map[string]any{{
			"text": "2+2?",
			"answers": []map[string]any{
				{"text": "4", "is_correct": true},
				{"text": "5"},
			},
		}},
	}, "quiz")

	var view struct {
		Questions []struct {
			Answers []map[string]any `json:"answers"`
		} `json:"questions"`
	}
	if code := h.do(http.MethodGet, "/api/quizzes/"+quizID, h.token(student), nil, &view); code != http.StatusOK {
		t.Fatalf("get quiz: %d", code)
	}
	if len(view.Questions) != 1 || len(view.Questions[0].Answers) != 2 {
		t.Fatalf("quiz view: %+v", view)
	}
	for _, a := range view.Questions[0].Answers {
		if _, ok := a["is_correct"]; ok {
			t.Fatalf("is_correct leaked to student: %v", a)
		}
	}

	var attempt map[string]types.UserQuizAttempt
	if code := h.do(http.MethodPost, "/api/quizzes/"+quizID+"/attempts", h.token(student),
		map[string]any{"score": 100}, &attempt); code != http.StatusCreated {
		t.Fatalf("submit: %d", code)
	}
	if !attempt["attempt"].Passed || attempt["attempt"].XPAwarded != 70 {
		t.Fatalf("attempt: %+v", attempt["attempt"])
	}
}

func TestQuizEditingOverHTTP(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	author := testutil.SeedUser(t, ctx, h.app.DB, "author")
	student := testutil.SeedUser(t, ctx, h.app.DB, "student")
	course := testutil.SeedCourse(t, ctx, h.app.DB, author.ID, "beginner", true)
	tree := testutil.SeedCourseTree(t, ctx, h.app.DB, course.ID, 1, 1, 1)
	tok := h.token(author)

	quizID := h.mustCreate("/api/quizzes", tok, map[string]any{
		"content_type": "lesson",
		"content_id":   tree.Lessons[0].ID,
		"title":        "Check",
	}, "quiz")

	questionID := h.mustCreate("/api/quizzes/"+quizID+"/questions", tok, map[string]any{
		"text": "Capital of France?",
		"answers": []map[string]any{
			{"text": "Paris", "is_correct": true},
			{"text": "Lyon"},
		},
	}, "question")
	answerID := h.mustCreate("/api/questions/"+questionID+"/answers", tok, map[string]any{"text": "Nice"}, "answer")

	if code := h.do(http.MethodPatch, "/api/quizzes/"+quizID, h.token(student), map[string]any{"title": "X"}, nil); code != http.StatusForbidden {
		t.Fatalf("student patch: want 403 got %d", code)
	}
	if code := h.do(http.MethodPatch, "/api/quizzes/"+quizID, tok, map[string]any{"passing_score": 80}, nil); code != http.StatusOK {
		t.Fatalf("patch quiz: %d", code)
	}
	if code := h.do(http.MethodDelete, "/api/answers/"+answerID, tok, nil, nil); code != http.StatusNoContent {
		t.Fatalf("delete answer: %d", code)
	}

	var view struct {
		Quiz      types.Quiz `json:"quiz"`
		Questions []struct {
			Answers []map[string]any `json:"answers"`
		} `json:"questions"`
	}
	if code := h.do(http.MethodGet, "/api/quizzes/"+quizID, tok, nil, &view); code != http.StatusOK {
		t.Fatalf("get quiz: %d", code)
	}
	if view.Quiz.PassingScore != 80 || len(view.Questions) != 1 || len(view.Questions[0].Answers) != 2 {
		t.Fatalf("quiz after edits: %+v", view)
	}

	if code := h.do(http.MethodDelete, "/api/questions/"+questionID, tok, nil, nil); code != http.StatusNoContent {
		t.Fatalf("delete question: %d", code)
	}
	if code := h.do(http.MethodGet, "/api/quizzes/"+quizID, tok, nil, &view); code != http.StatusOK || len(view.Questions) != 0 {
		t.Fatalf("questions after delete: %d %d", code, len(view.Questions))
	}
}

func TestBannerStatsFlushedBySchedulerJob(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := testutil.SeedSuperuser(t, ctx, h.app.DB, "admin")

	bannerID := h.mustCreate("/api/banners", h.token(admin), map[string]any{
		"title": "Sale", "is_active": true, "show_to_anonymous": true,
	}, "banner")

	var active map[string][]types.MarketingBanner
	if code := h.do(http.MethodGet, "/api/banners/active?page=home", "", nil, &active); code != http.StatusOK {
		t.Fatalf("active: %d", code)
	}
	if len(active["banners"]) != 1 {
		t.Fatalf("active banners: %+v", active)
	}
	if code := h.do(http.MethodPost, "/api/banners/"+bannerID+"/stats", "", map[string]any{"stat": "click"}, nil); code != http.StatusAccepted {
		t.Fatalf("track: %d", code)
	}
	if code := h.do(http.MethodPost, "/api/banners/"+bannerID+"/stats", "", map[string]any{"stat": "hover"}, nil); code != http.StatusBadRequest {
		t.Fatalf("unknown stat: want 400 got %d", code)
	}

	// Without redis the click is written through and the flush job is a no-op.
	flushBannerStats(h.app.Log, h.app.Services.Banner, nil)
	var got map[string]types.MarketingBanner
	if code := h.do(http.MethodGet, "/api/banners/"+bannerID, h.token(admin), nil, &got); code != http.StatusOK {
		t.Fatalf("get banner: %d", code)
	}
	if got["banner"].Clicks != 1 {
		t.Fatalf("clicks: want=1 got=%d", got["banner"].Clicks)
	}
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	h := newHarness(t)
	if _, err := newScheduler(h.app.Log, "every now and then", h.app.Services.Banner, nil); err == nil {
		t.Fatalf("expected error for bad cron spec")
	}
}

func TestBlogOverHTTP(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := testutil.SeedSuperuser(t, ctx, h.app.DB, "admin")
	writer := testutil.SeedUser(t, ctx, h.app.DB, "writer")
	stranger := testutil.SeedUser(t, ctx, h.app.DB, "stranger")

	if code := h.do(http.MethodPost, "/api/categories", h.token(writer), map[string]any{"name": "Go"}, nil); code != http.StatusForbidden {
		t.Fatalf("writer category: want 403 got %d", code)
	}
	catID := h.mustCreate("/api/categories", h.token(admin), map[string]any{"name": "Go"}, "category")
	postID := h.mustCreate("/api/posts", h.token(writer), map[string]any{
		"title":       "Context Cancellation",
		"category_id": catID,
		"sections":    []map[string]any{{"title": "Intro"}},
	}, "post")
	h.mustCreate("/api/posts", h.token(writer), map[string]any{"title": "Errors", "category_id": catID}, "post")

	if code := h.do(http.MethodPost, "/api/posts", "", map[string]any{"title": "Anon"}, nil); code != http.StatusUnauthorized {
		t.Fatalf("anonymous post: want 401 got %d", code)
	}
	if code := h.do(http.MethodPost, "/api/posts", h.token(writer), map[string]any{"title": "Bad", "blocks": map[string]any{"a": 1}}, nil); code != http.StatusBadRequest {
		t.Fatalf("object blocks: want 400 got %d", code)
	}

	var listed struct {
		Posts []types.Post `json:"posts"`
		Total int64        `json:"total"`
	}
	if code := h.do(http.MethodGet, "/api/posts/category/go", "", nil, &listed); code != http.StatusOK || listed.Total != 2 {
		t.Fatalf("by category: %d total=%d", code, listed.Total)
	}
	if code := h.do(http.MethodGet, "/api/posts/author/"+writer.ID.String(), "", nil, &listed); code != http.StatusOK || listed.Total != 2 {
		t.Fatalf("by author: %d total=%d", code, listed.Total)
	}
	if code := h.do(http.MethodGet, "/api/posts/slug/context-cancellation/related", "", nil, &listed); code != http.StatusOK ||
		len(listed.Posts) != 1 || listed.Posts[0].Slug != "errors" {
		t.Fatalf("related: %d %+v", code, listed.Posts)
	}
	if code := h.do(http.MethodGet, "/api/posts?limit=abc", "", nil, nil); code != http.StatusBadRequest {
		t.Fatalf("bad limit: want 400 got %d", code)
	}

	var categories struct {
		Categories []struct {
			Slug      string `json:"slug"`
			PostCount int64  `json:"post_count"`
		} `json:"categories"`
	}
	if code := h.do(http.MethodGet, "/api/categories", "", nil, &categories); code != http.StatusOK ||
		len(categories.Categories) != 1 || categories.Categories[0].PostCount != 2 {
		t.Fatalf("categories: %d %+v", code, categories.Categories)
	}

	if code := h.do(http.MethodPatch, "/api/posts/"+postID, h.token(stranger), map[string]any{"title": "Mine"}, nil); code != http.StatusForbidden {
		t.Fatalf("stranger patch: want 403 got %d", code)
	}
	var got struct {
		Post types.Post `json:"post"`
	}
	if code := h.do(http.MethodPatch, "/api/posts/"+postID, h.token(writer), map[string]any{"excerpt": "short"}, &got); code != http.StatusOK || got.Post.Excerpt != "short" {
		t.Fatalf("patch post: %d %+v", code, got.Post)
	}
	if code := h.do(http.MethodDelete, "/api/posts/"+postID, h.token(writer), nil, nil); code != http.StatusNoContent {
		t.Fatalf("delete post: %d", code)
	}
	if code := h.do(http.MethodGet, "/api/posts/slug/context-cancellation", "", nil, nil); code != http.StatusNotFound {
		t.Fatalf("deleted post: want 404 got %d", code)
	}
}

func TestPrelaunchOverHTTP(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := testutil.SeedSuperuser(t, ctx, h.app.DB, "admin")
	course := testutil.SeedCourse(t, ctx, h.app.DB, admin.ID, "beginner", false)
	tok := h.token(admin)

	campaignID := h.mustCreate("/api/prelaunch/campaigns", tok, map[string]any{
		"title":           "Spring Launch",
		"is_active":       true,
		"max_enrollments": 5,
	}, "campaign")
	if code := h.do(http.MethodPost, "/api/prelaunch/campaigns/"+campaignID+"/courses", tok, map[string]any{"course_id": course.ID}, nil); code != http.StatusNoContent {
		t.Fatalf("add course: %d", code)
	}

	var sub struct {
		Subscriber types.PrelaunchSubscriber `json:"subscriber"`
	}
	body := map[string]any{"campaign_id": campaignID, "email": "Ada@Example.com", "source": "landing"}
	if code := h.do(http.MethodPost, "/api/prelaunch/subscribe", "", body, &sub); code != http.StatusOK {
		t.Fatalf("subscribe: %d", code)
	}
	if sub.Subscriber.Email != "ada@example.com" || sub.Subscriber.IPAddress == "" {
		t.Fatalf("subscriber: %+v", sub.Subscriber)
	}
	if code := h.do(http.MethodPost, "/api/prelaunch/subscribe", "", map[string]any{"campaign_id": campaignID, "email": "nope"}, nil); code != http.StatusBadRequest {
		t.Fatalf("bad email: want 400 got %d", code)
	}

	var view struct {
		Campaign struct {
			ViewCount       int64          `json:"view_count"`
			SignupCount     int64          `json:"signup_count"`
			SubscriberCount int64          `json:"subscribers_count"`
			Courses         []types.Course `json:"courses"`
		} `json:"campaign"`
	}
	if code := h.do(http.MethodGet, "/api/prelaunch/campaigns/slug/spring-launch", "", nil, &view); code != http.StatusOK {
		t.Fatalf("get campaign: %d", code)
	}
	if view.Campaign.ViewCount != 1 || view.Campaign.SignupCount != 1 || view.Campaign.SubscriberCount != 1 || len(view.Campaign.Courses) != 1 {
		t.Fatalf("campaign view: %+v", view.Campaign)
	}

	var running struct {
		Campaigns []types.PrelaunchCampaign `json:"campaigns"`
	}
	if code := h.do(http.MethodGet, "/api/prelaunch/courses/"+course.ID.String()+"/campaigns", "", nil, &running); code != http.StatusOK || len(running.Campaigns) != 1 {
		t.Fatalf("course campaigns: %d %d", code, len(running.Campaigns))
	}

	if code := h.do(http.MethodGet, "/api/prelaunch/campaigns/"+campaignID+"/subscribers", "", nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("anonymous subscribers: want 401 got %d", code)
	}
	var subs struct {
		Total int64 `json:"total"`
	}
	if code := h.do(http.MethodGet, "/api/prelaunch/campaigns/"+campaignID+"/subscribers?active=true", tok, nil, &subs); code != http.StatusOK || subs.Total != 1 {
		t.Fatalf("subscribers: %d total=%d", code, subs.Total)
	}

	seqID := h.mustCreate("/api/prelaunch/campaigns/"+campaignID+"/sequences", tok, map[string]any{"title": "Welcome"}, "sequence")
	emailID := h.mustCreate("/api/prelaunch/sequences/"+seqID+"/emails", tok, map[string]any{"subject": "Hi", "body": "Hello"}, "email")
	if code := h.do(http.MethodDelete, "/api/prelaunch/sequences/"+seqID, tok, nil, nil); code != http.StatusConflict {
		t.Fatalf("delete non-empty sequence: want 409 got %d", code)
	}
	var email struct {
		Email types.PrelaunchEmail `json:"email"`
	}
	if code := h.do(http.MethodPost, "/api/prelaunch/emails/"+emailID+"/stats", tok, map[string]any{"sent": 3, "opened": 1}, &email); code != http.StatusOK ||
		email.Email.SentCount != 3 || email.Email.OpenCount != 1 {
		t.Fatalf("email stats: %d %+v", code, email.Email)
	}

	if code := h.do(http.MethodPost, "/api/prelaunch/unsubscribe", "", map[string]any{"campaign_id": campaignID, "email": "ada@example.com"}, nil); code != http.StatusOK {
		t.Fatalf("unsubscribe: %d", code)
	}
	if code := h.do(http.MethodDelete, "/api/prelaunch/campaigns/"+campaignID, tok, nil, nil); code != http.StatusConflict {
		t.Fatalf("delete campaign with subscribers: want 409 got %d", code)
	}
}
