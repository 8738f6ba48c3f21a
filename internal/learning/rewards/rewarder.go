package rewards

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursekit-backend/internal/data/db"
	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/platform/apierr"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
	"github.com/yungbote/coursekit-backend/internal/realtime"
)

// UserStore is the slice of the user repository the rewarder writes through.
type UserStore interface {
	GetForUpdate(dbc dbctx.Context, userID uuid.UUID) (*types.User, error)
	UpdateGamification(dbc dbctx.Context, userID uuid.UUID, experience, totalPoints, level int) error
}

// Outcome describes one applied reward.
type Outcome struct {
	UserID uuid.UUID
	XP     int
	Points int
	Before Snapshot
	After  Snapshot
}

func (o Outcome) LeveledUp() bool { return o.After.Level > o.Before.Level }

// LevelUpEvent returns the notification for a level change, if there was one.
func (o Outcome) LevelUpEvent() (realtime.Event, bool) {
	if !o.LeveledUp() {
		return realtime.Event{}, false
	}
	return realtime.Event{
		Event:  realtime.EventUserLevelUp,
		UserID: o.UserID,
		Data: map[string]any{
			"previous_level": o.Before.Level,
			"level":          o.After.Level,
			"experience":     o.After.Experience,
		},
	}, true
}

// Rewarder writes Rule results onto user rows. Every call locks the user row
// and runs in the caller's transaction (or its own when there is none).
type Rewarder struct {
	rule  Rule
	db    *gorm.DB
	users UserStore
	log   *logger.Logger
}

func NewRewarder(rule Rule, gdb *gorm.DB, users UserStore, baseLog *logger.Logger) *Rewarder {
	return &Rewarder{rule: rule, db: gdb, users: users, log: baseLog.With("component", "Rewarder")}
}

func (r *Rewarder) Rule() Rule { return r.rule }

// GrantXP applies xp through Rule.Apply.
func (r *Rewarder) GrantXP(dbc dbctx.Context, userID uuid.UUID, xp int) (Outcome, error) {
	return r.update(dbc, userID, func(s Snapshot) Snapshot { return r.rule.Apply(s, xp) })
}

// GrantPoints adds points without experience.
func (r *Rewarder) GrantPoints(dbc dbctx.Context, userID uuid.UUID, points int) (Outcome, error) {
	return r.update(dbc, userID, func(s Snapshot) Snapshot { return r.rule.AddPoints(s, points) })
}

// GrantCourseCompletion awards the experience for finishing a course of the given level.
func (r *Rewarder) GrantCourseCompletion(dbc dbctx.Context, userID uuid.UUID, courseLevel string) (Outcome, error) {
	return r.GrantXP(dbc, userID, r.rule.CourseCompletionXP(courseLevel))
}

func (r *Rewarder) update(dbc dbctx.Context, userID uuid.UUID, fn func(Snapshot) Snapshot) (Outcome, error) {
	var out Outcome
	err := db.Within(dbc, r.db, func(dbc dbctx.Context) error {
		u, err := r.users.GetForUpdate(dbc, userID)
		if err != nil {
			return err
		}
		if u == nil {
			return apierr.NotFound("user %s", userID)
		}
		before := Snapshot{Experience: u.Experience, TotalPoints: u.TotalPoints, Level: u.Level}
		after := fn(before)
		out = Outcome{
			UserID: userID,
			XP:     after.Experience - before.Experience,
			Points: after.TotalPoints - before.TotalPoints,
			Before: before,
			After:  after,
		}
		if after == before {
			return nil
		}
		return r.users.UpdateGamification(dbc, userID, after.Experience, after.TotalPoints, after.Level)
	})
	if err != nil {
		return Outcome{}, apierr.MapDB("apply reward", err)
	}
	if out.LeveledUp() {
		r.log.Info("User leveled up", "user_id", userID, "from", out.Before.Level, "to", out.After.Level)
	}
	return out, nil
}
