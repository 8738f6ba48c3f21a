package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/coursekit-backend/internal/data/repos"
	"github.com/yungbote/coursekit-backend/internal/data/repos/testutil"
	"github.com/yungbote/coursekit-backend/internal/platform/apierr"
)

func intPtr(v int) *int { return &v }

func TestPrelaunchCampaignAdminAndCourses(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := testutil.SeedSuperuser(t, ctx, e.db, "admin")
	learner := testutil.SeedUser(t, ctx, e.db, "learner")
	course := testutil.SeedCourse(t, ctx, e.db, admin.ID, "beginner", false)

	if _, err := e.prelaunch.CreateCampaign(as(learner), CampaignInput{Title: "Launch"}); !errors.Is(err, apierr.ErrForbidden) {
		t.Fatalf("learner create: want forbidden, got %v", err)
	}
	start := time.Now().Add(24 * time.Hour)
	end := start.Add(-time.Hour)
	if _, err := e.prelaunch.CreateCampaign(as(admin), CampaignInput{Title: "Backwards", StartDate: &start, EndDate: &end}); !errors.Is(err, apierr.ErrInvalidArgument) {
		t.Fatalf("inverted window: want invalid, got %v", err)
	}
	if _, err := e.prelaunch.CreateCampaign(as(admin), CampaignInput{Title: "Negative", RegularPrice: intPtr(-1)}); !errors.Is(err, apierr.ErrInvalidArgument) {
		t.Fatalf("negative price: want invalid, got %v", err)
	}

	c, err := e.prelaunch.CreateCampaign(as(admin), CampaignInput{Title: "Go Course Launch", IsActive: true, EarlyBirdPrice: intPtr(49)})
	if err != nil {
		t.Fatalf("CreateCampaign: %v", err)
	}
	if c.Slug != "go-course-launch" || c.CreatedBy != admin.ID {
		t.Fatalf("campaign: slug=%q created_by=%s", c.Slug, c.CreatedBy)
	}
	draft, err := e.prelaunch.CreateCampaign(as(admin), CampaignInput{Title: "Draft Launch"})
	if err != nil {
		t.Fatalf("CreateCampaign(draft): %v", err)
	}
	if draft.IsActive {
		t.Fatalf("draft campaign stored as active")
	}
	if _, err := e.prelaunch.GetCampaign(as(learner), draft.ID); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("inactive campaign for learner: want not found, got %v", err)
	}
	if _, err := e.prelaunch.GetCampaign(as(admin), draft.ID); err != nil {
		t.Fatalf("inactive campaign for admin: %v", err)
	}

	if err := e.prelaunch.AddCourse(as(admin), c.ID, uuid.New()); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("unknown course: want not found, got %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := e.prelaunch.AddCourse(as(admin), c.ID, course.ID); err != nil {
			t.Fatalf("AddCourse #%d: %v", i, err)
		}
	}
	view, err := e.prelaunch.GetCampaignBySlug(as(nil), "go-course-launch")
	if err != nil {
		t.Fatalf("GetCampaignBySlug: %v", err)
	}
	if len(view.Courses) != 1 || view.Courses[0].ID != course.ID {
		t.Fatalf("campaign courses: %+v", view.Courses)
	}
	if view.Campaign.ViewCount != 1 {
		t.Fatalf("anonymous read should count a view, got %d", view.Campaign.ViewCount)
	}
	if v, err := e.prelaunch.GetCampaign(as(admin), c.ID); err != nil || v.Campaign.ViewCount != 1 {
		t.Fatalf("admin read counted a view: %+v err=%v", v, err)
	}

	running, err := e.prelaunch.CampaignsForCourse(as(nil), course.ID)
	if err != nil || len(running) != 1 || running[0].ID != c.ID {
		t.Fatalf("CampaignsForCourse: %+v err=%v", running, err)
	}
	if err := e.prelaunch.RemoveCourse(as(admin), c.ID, course.ID); err != nil {
		t.Fatalf("RemoveCourse: %v", err)
	}
	if err := e.prelaunch.RemoveCourse(as(admin), c.ID, course.ID); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("second remove: want not found, got %v", err)
	}
	running, err = e.prelaunch.CampaignsForCourse(as(nil), course.ID)
	if err != nil || len(running) != 0 {
		t.Fatalf("CampaignsForCourse after remove: %+v err=%v", running, err)
	}

	off := false
	up, err := e.prelaunch.UpdateCampaign(as(admin), c.ID, CampaignPatch{IsActive: &off, MaxEnrollments: intPtr(10)})
	if err != nil || up.IsActive || up.MaxEnrollments == nil || *up.MaxEnrollments != 10 {
		t.Fatalf("UpdateCampaign: %+v err=%v", up, err)
	}
	all, err := e.prelaunch.ListCampaigns(as(admin), false, 0, 0)
	if err != nil || len(all) != 2 {
		t.Fatalf("ListCampaigns: len=%d err=%v", len(all), err)
	}
	active, err := e.prelaunch.ListCampaigns(as(admin), true, 0, 0)
	if err != nil || len(active) != 0 {
		t.Fatalf("ListCampaigns(active): len=%d err=%v", len(active), err)
	}

	if err := e.prelaunch.DeleteCampaign(as(admin), draft.ID); err != nil {
		t.Fatalf("DeleteCampaign: %v", err)
	}
	if _, err := e.prelaunch.GetCampaign(as(admin), draft.ID); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("deleted campaign: want not found, got %v", err)
	}
}

func TestPrelaunchSubscribeLifecycleAndStats(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := testutil.SeedSuperuser(t, ctx, e.db, "admin")
	learner := testutil.SeedUser(t, ctx, e.db, "learner")

	c, err := e.prelaunch.CreateCampaign(as(admin), CampaignInput{Title: "Waitlist", IsActive: true, MaxEnrollments: intPtr(2)})
	if err != nil {
		t.Fatalf("CreateCampaign: %v", err)
	}
	closed, err := e.prelaunch.CreateCampaign(as(admin), CampaignInput{Title: "Closed"})
	if err != nil {
		t.Fatalf("CreateCampaign(closed): %v", err)
	}

	if _, err := e.prelaunch.Subscribe(as(nil), SubscribeInput{CampaignID: c.ID, Email: "not-an-email"}); !errors.Is(err, apierr.ErrInvalidArgument) {
		t.Fatalf("bad email: want invalid, got %v", err)
	}
	if _, err := e.prelaunch.Subscribe(as(nil), SubscribeInput{CampaignID: closed.ID, Email: "ada@example.com"}); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("inactive campaign: want not found, got %v", err)
	}

	ada, err := e.prelaunch.Subscribe(as(learner), SubscribeInput{
		CampaignID:   c.ID,
		Email:        " Ada <Ada@Example.com> ",
		Source:       "landing",
		CustomFields: map[string]any{"role": "backend"},
	})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if ada.Email != "ada@example.com" || !ada.IsActive {
		t.Fatalf("subscriber: %+v", ada)
	}
	if ada.UserID == nil || *ada.UserID != learner.ID {
		t.Fatalf("subscriber user: %v", ada.UserID)
	}
	again, err := e.prelaunch.Subscribe(as(nil), SubscribeInput{CampaignID: c.ID, Email: "ada@example.com"})
	if err != nil || again.ID != ada.ID {
		t.Fatalf("repeat subscribe: id=%v err=%v", again, err)
	}

	gone, err := e.prelaunch.Unsubscribe(as(nil), c.ID, "ADA@example.com")
	if err != nil || gone.IsActive || gone.UnsubscribedAt == nil {
		t.Fatalf("Unsubscribe: %+v err=%v", gone, err)
	}
	if _, err := e.prelaunch.Unsubscribe(as(nil), c.ID, "nobody@example.com"); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("unknown unsubscribe: want not found, got %v", err)
	}

	if _, err := e.prelaunch.Subscribe(as(nil), SubscribeInput{CampaignID: c.ID, Email: "bob@example.com"}); err != nil {
		t.Fatalf("Subscribe(bob): %v", err)
	}
	back, err := e.prelaunch.Subscribe(as(nil), SubscribeInput{CampaignID: c.ID, Email: "ada@example.com"})
	if err != nil || back.ID != ada.ID || !back.IsActive || back.UnsubscribedAt != nil {
		t.Fatalf("reactivate: %+v err=%v", back, err)
	}
	if _, err := e.prelaunch.Subscribe(as(nil), SubscribeInput{CampaignID: c.ID, Email: "cy@example.com"}); !errors.Is(err, apierr.ErrConflict) {
		t.Fatalf("full campaign: want conflict, got %v", err)
	}

	view, err := e.prelaunch.GetCampaign(as(nil), c.ID)
	if err != nil {
		t.Fatalf("GetCampaign: %v", err)
	}
	if view.Campaign.SignupCount != 2 || view.SubscriberCount != 2 {
		t.Fatalf("signups=%d subscribers=%d", view.Campaign.SignupCount, view.SubscriberCount)
	}
	if _, err := e.prelaunch.RecordCampaignStats(as(nil), c.ID, -1, 0); !errors.Is(err, apierr.ErrInvalidArgument) {
		t.Fatalf("negative stats: want invalid, got %v", err)
	}
	stats, err := e.prelaunch.RecordCampaignStats(as(nil), c.ID, 9, 0)
	if err != nil {
		t.Fatalf("RecordCampaignStats: %v", err)
	}
	if stats.ViewCount != 10 || stats.ConversionRate != 20 {
		t.Fatalf("stats: views=%d rate=%d", stats.ViewCount, stats.ConversionRate)
	}

	if _, _, err := e.prelaunch.ListSubscribers(as(learner), c.ID, repos.SubscriberFilter{}); !errors.Is(err, apierr.ErrForbidden) {
		t.Fatalf("learner list: want forbidden, got %v", err)
	}
	subs, total, err := e.prelaunch.ListSubscribers(as(admin), c.ID, repos.SubscriberFilter{ActiveOnly: true})
	if err != nil || total != 2 || len(subs) != 2 {
		t.Fatalf("ListSubscribers: total=%d err=%v", total, err)
	}

	sent, err := e.prelaunch.MarkLeadMagnetSent(as(admin), ada.ID)
	if err != nil || !sent.LeadMagnetSent || sent.LeadMagnetSentAt == nil {
		t.Fatalf("MarkLeadMagnetSent: %+v err=%v", sent, err)
	}

	if err := e.prelaunch.DeleteCampaign(as(admin), c.ID); !errors.Is(err, apierr.ErrConflict) {
		t.Fatalf("delete with subscribers: want conflict, got %v", err)
	}
}

func TestPrelaunchSequencesAndEmails(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := testutil.SeedSuperuser(t, ctx, e.db, "admin")
	learner := testutil.SeedUser(t, ctx, e.db, "learner")

	c, err := e.prelaunch.CreateCampaign(as(admin), CampaignInput{Title: "Drip", IsActive: true})
	if err != nil {
		t.Fatalf("CreateCampaign: %v", err)
	}
	if _, err := e.prelaunch.CreateSequence(as(learner), c.ID, SequenceInput{Title: "Welcome"}); !errors.Is(err, apierr.ErrForbidden) {
		t.Fatalf("learner sequence: want forbidden, got %v", err)
	}
	if _, err := e.prelaunch.CreateSequence(as(admin), uuid.New(), SequenceInput{Title: "Orphan"}); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("unknown campaign: want not found, got %v", err)
	}
	seq, err := e.prelaunch.CreateSequence(as(admin), c.ID, SequenceInput{Title: "Welcome", IsActive: true})
	if err != nil {
		t.Fatalf("CreateSequence: %v", err)
	}

	if _, err := e.prelaunch.CreateEmail(as(admin), seq.ID, EmailInput{Subject: " ", Body: "b"}); !errors.Is(err, apierr.ErrInvalidArgument) {
		t.Fatalf("blank subject: want invalid, got %v", err)
	}
	if _, err := e.prelaunch.CreateEmail(as(admin), seq.ID, EmailInput{Subject: "s", Body: "b", DelayDays: -1}); !errors.Is(err, apierr.ErrInvalidArgument) {
		t.Fatalf("negative delay: want invalid, got %v", err)
	}
	later, err := e.prelaunch.CreateEmail(as(admin), seq.ID, EmailInput{Subject: "Day three", Body: "b", DelayDays: 3, IsActive: true})
	if err != nil {
		t.Fatalf("CreateEmail: %v", err)
	}
	first, err := e.prelaunch.CreateEmail(as(admin), seq.ID, EmailInput{Subject: "Welcome", Body: "b", IsActive: true})
	if err != nil {
		t.Fatalf("CreateEmail: %v", err)
	}
	emails, err := e.prelaunch.ListEmails(as(admin), seq.ID)
	if err != nil || len(emails) != 2 || emails[0].ID != first.ID || emails[1].ID != later.ID {
		t.Fatalf("ListEmails by delay: %+v err=%v", emails, err)
	}

	body := ""
	if _, err := e.prelaunch.UpdateEmail(as(admin), later.ID, EmailPatch{Body: &body}); !errors.Is(err, apierr.ErrInvalidArgument) {
		t.Fatalf("blank body patch: want invalid, got %v", err)
	}
	delay := 5
	up, err := e.prelaunch.UpdateEmail(as(admin), later.ID, EmailPatch{DelayDays: &delay})
	if err != nil || up.DelayDays != 5 || up.Subject != "Day three" {
		t.Fatalf("UpdateEmail: %+v err=%v", up, err)
	}

	if _, err := e.prelaunch.RecordEmailStats(as(admin), first.ID, 1, -1, 0); !errors.Is(err, apierr.ErrInvalidArgument) {
		t.Fatalf("negative email stats: want invalid, got %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := e.prelaunch.RecordEmailStats(as(admin), first.ID, 2, 1, 1); err != nil {
			t.Fatalf("RecordEmailStats: %v", err)
		}
	}
	got, err := e.prelaunch.GetEmail(as(admin), first.ID)
	if err != nil || got.SentCount != 4 || got.OpenCount != 2 || got.ClickCount != 2 {
		t.Fatalf("email stats: %+v err=%v", got, err)
	}

	view, err := e.prelaunch.GetCampaign(as(admin), c.ID)
	if err != nil || len(view.Sequences) != 1 || view.Sequences[0].ID != seq.ID {
		t.Fatalf("campaign sequences: %+v err=%v", view, err)
	}
	title := "Onboarding"
	renamed, err := e.prelaunch.UpdateSequence(as(admin), seq.ID, SequencePatch{Title: &title})
	if err != nil || renamed.Title != title {
		t.Fatalf("UpdateSequence: %+v err=%v", renamed, err)
	}

	if err := e.prelaunch.DeleteSequence(as(admin), seq.ID); !errors.Is(err, apierr.ErrConflict) {
		t.Fatalf("delete sequence with emails: want conflict, got %v", err)
	}
	for _, id := range []uuid.UUID{first.ID, later.ID} {
		if err := e.prelaunch.DeleteEmail(as(admin), id); err != nil {
			t.Fatalf("DeleteEmail: %v", err)
		}
	}
	if err := e.prelaunch.DeleteSequence(as(admin), seq.ID); err != nil {
		t.Fatalf("DeleteSequence: %v", err)
	}
	if _, err := e.prelaunch.GetSequence(as(admin), seq.ID); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("deleted sequence: want not found, got %v", err)
	}
	if err := e.prelaunch.DeleteCampaign(as(admin), c.ID); err != nil {
		t.Fatalf("DeleteCampaign: %v", err)
	}
}
