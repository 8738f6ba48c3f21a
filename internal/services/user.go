package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/coursekit-backend/internal/data/repos"
	"github.com/yungbote/coursekit-backend/internal/learning/rewards"
	"github.com/yungbote/coursekit-backend/internal/platform/apierr"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
)

// Profile is the caller's account and gamification state.
type Profile struct {
	ID             uuid.UUID  `json:"id"`
	Email          string     `json:"email"`
	Username       string     `json:"username"`
	FullName       string     `json:"full_name"`
	IsSuperuser    bool       `json:"is_superuser"`
	Experience     int        `json:"experience"`
	TotalPoints    int        `json:"total_points"`
	Level          int        `json:"level"`
	NextLevelAt    int        `json:"next_level_at"`
	Streak         int        `json:"streak"`
	LongestStreak  int        `json:"longest_streak"`
	LastActivityAt *time.Time `json:"last_activity_at,omitempty"`
}

type UserService interface {
	GetMe(dbc dbctx.Context) (*Profile, error)
}

type userService struct {
	log      *logger.Logger
	userRepo repos.UserRepo
	rule     rewards.Rule
}

func NewUserService(baseLog *logger.Logger, userRepo repos.UserRepo, rule rewards.Rule) UserService {
	return &userService{log: baseLog.With("service", "UserService"), userRepo: userRepo, rule: rule}
}

func (us *userService) GetMe(dbc dbctx.Context) (*Profile, error) {
	rd, err := currentUser(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	u, err := us.userRepo.GetByID(dbc, rd.UserID)
	if err != nil {
		return nil, apierr.MapDB("get user", err)
	}
	if u == nil {
		return nil, apierr.NotFound("user %s", rd.UserID)
	}
	snap := rewards.Snapshot{Experience: u.Experience, TotalPoints: u.TotalPoints, Level: u.Level}
	return &Profile{
		ID:             u.ID,
		Email:          u.Email,
		Username:       u.Username,
		FullName:       u.FullName,
		IsSuperuser:    u.IsSuperuser,
		Experience:     u.Experience,
		TotalPoints:    u.TotalPoints,
		Level:          u.Level,
		NextLevelAt:    us.rule.NextLevelAt(snap),
		Streak:         u.Streak,
		LongestStreak:  u.LongestStreak,
		LastActivityAt: u.LastActivityAt,
	}, nil
}
