package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/coursekit-backend/internal/data/db"
	"github.com/yungbote/coursekit-backend/internal/data/repos"
	types "github.com/yungbote/coursekit-backend/internal/domain"
	gamificationdomain "github.com/yungbote/coursekit-backend/internal/domain/gamification"
	"github.com/yungbote/coursekit-backend/internal/learning/rewards"
	"github.com/yungbote/coursekit-backend/internal/platform/apierr"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
	"github.com/yungbote/coursekit-backend/internal/realtime"
)

type AwardInput struct {
	Name         string
	Description  string
	Icon         string
	Category     string
	Points       int
	Requirements types.AwardRequirements
}

type AwardPatch struct {
	Name         *string
	Description  *string
	Icon         *string
	Category     *string
	Points       *int
	Requirements *types.AwardRequirements
	IsActive     *bool
}

type AwardService interface {
	CreateAward(dbc dbctx.Context, in AwardInput) (*types.Award, error)
	ListAwards(dbc dbctx.Context, category string) ([]*types.Award, error)
	GetAward(dbc dbctx.Context, awardID uuid.UUID) (*types.Award, error)
	UpdateAward(dbc dbctx.Context, awardID uuid.UUID, patch AwardPatch) (*types.Award, error)
	DeleteAward(dbc dbctx.Context, awardID uuid.UUID) error
	// Grant gives awardID to userID. granted is false when the user already held it.
	Grant(dbc dbctx.Context, userID, awardID uuid.UUID) (ua *types.UserAward, granted bool, err error)
	// Check grants the caller every active award whose requirement is met and
	// returns the newly earned ones.
	Check(dbc dbctx.Context) ([]*types.UserAward, error)
	MyAwards(dbc dbctx.Context) ([]*types.UserAward, error)
	// UserAwards lists another user's awards. Only that user or a superuser may read them.
	UserAwards(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserAward, error)
}

type awardService struct {
	db            *gorm.DB
	log           *logger.Logger
	awardRepo     repos.AwardRepo
	userAwardRepo repos.UserAwardRepo
	userRepo      repos.UserRepo
	rewarder      *rewards.Rewarder
	events        realtime.Publisher
}

func NewAwardService(
	db *gorm.DB,
	baseLog *logger.Logger,
	awardRepo repos.AwardRepo,
	userAwardRepo repos.UserAwardRepo,
	userRepo repos.UserRepo,
	rewarder *rewards.Rewarder,
	events realtime.Publisher,
) AwardService {
	return &awardService{
		db:            db,
		log:           baseLog.With("service", "AwardService"),
		awardRepo:     awardRepo,
		userAwardRepo: userAwardRepo,
		userRepo:      userRepo,
		rewarder:      rewarder,
		events:        events,
	}
}

func (as *awardService) CreateAward(dbc dbctx.Context, in AwardInput) (*types.Award, error) {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apierr.Invalid("name is required")
	}
	if in.Points < 0 {
		return nil, apierr.Invalid("points must not be negative")
	}
	raw, err := encodeRequirements(in.Requirements)
	if err != nil {
		return nil, err
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = "general"
	}
	a := &types.Award{
		Name:         name,
		Description:  in.Description,
		Icon:         in.Icon,
		Category:     category,
		Points:       in.Points,
		Requirements: raw,
		IsActive:     true,
	}
	if _, err := as.awardRepo.Create(dbc, a); err != nil {
		return nil, apierr.MapDB("create award", err)
	}
	return a, nil
}

func encodeRequirements(req types.AwardRequirements) (datatypes.JSON, error) {
	if (req.MinLevel != nil && *req.MinLevel < 1) || (req.MinPoints != nil && *req.MinPoints < 0) {
		return nil, apierr.Invalid("invalid award requirements")
	}
	raw, err := json.Marshal(req)
	if err != nil {
		return nil, apierr.Invalid("requirements: %v", err)
	}
	return datatypes.JSON(raw), nil
}

func (as *awardService) ListAwards(dbc dbctx.Context, category string) ([]*types.Award, error) {
	var (
		out []*types.Award
		err error
	)
	if category = strings.TrimSpace(category); category != "" {
		out, err = as.awardRepo.ListByCategory(dbc, category)
	} else {
		out, err = as.awardRepo.ListActive(dbc)
	}
	if err != nil {
		return nil, apierr.MapDB("list awards", err)
	}
	return out, nil
}

func (as *awardService) GetAward(dbc dbctx.Context, awardID uuid.UUID) (*types.Award, error) {
	a, err := as.awardRepo.GetByID(dbc, awardID)
	if err != nil {
		return nil, apierr.MapDB("get award", err)
	}
	if a == nil {
		return nil, apierr.NotFound("award %s", awardID)
	}
	return a, nil
}

func (as *awardService) UpdateAward(dbc dbctx.Context, awardID uuid.UUID, patch AwardPatch) (*types.Award, error) {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apierr.Invalid("name must not be empty")
		}
		fields["name"] = name
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.Icon != nil {
		fields["icon"] = *patch.Icon
	}
	if patch.Category != nil {
		category := strings.TrimSpace(*patch.Category)
		if category == "" {
			category = "general"
		}
		fields["category"] = category
	}
	if patch.Points != nil {
		if *patch.Points < 0 {
			return nil, apierr.Invalid("points must not be negative")
		}
		fields["points"] = *patch.Points
	}
	if patch.Requirements != nil {
		raw, err := encodeRequirements(*patch.Requirements)
		if err != nil {
			return nil, err
		}
		fields["requirements"] = raw
	}
	if patch.IsActive != nil {
		fields["is_active"] = *patch.IsActive
	}

	var out *types.Award
	err := db.Within(dbc, as.db, func(dbc dbctx.Context) error {
		if _, err := as.GetAward(dbc, awardID); err != nil {
			return err
		}
		if err := as.awardRepo.UpdateFields(dbc, awardID, fields); err != nil {
			return err
		}
		var err error
		out, err = as.awardRepo.GetByID(dbc, awardID)
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("update award", err)
	}
	return out, nil
}

// DeleteAward removes the award and its grants. Points already credited stay.
func (as *awardService) DeleteAward(dbc dbctx.Context, awardID uuid.UUID) error {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return err
	}
	err := db.Within(dbc, as.db, func(dbc dbctx.Context) error {
		if _, err := as.GetAward(dbc, awardID); err != nil {
			return err
		}
		return as.awardRepo.Delete(dbc, awardID)
	})
	if err != nil {
		return apierr.MapDB("delete award", err)
	}
	as.log.Info("Award deleted", "award_id", awardID)
	return nil
}

func (as *awardService) Grant(dbc dbctx.Context, userID, awardID uuid.UUID) (*types.UserAward, bool, error) {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return nil, false, err
	}
	var (
		ua      *types.UserAward
		granted bool
		box     realtime.Outbox
	)
	err := db.Within(dbc, as.db, func(dbc dbctx.Context) error {
		u, err := as.userRepo.GetByID(dbc, userID)
		if err != nil {
			return err
		}
		if u == nil {
			return apierr.NotFound("user %s", userID)
		}
		a, err := as.awardRepo.GetByID(dbc, awardID)
		if err != nil {
			return err
		}
		if a == nil {
			return apierr.NotFound("award %s", awardID)
		}
		ua, granted, err = as.grant(dbc, userID, a, gamificationdomain.EarnedByManual, &box)
		return err
	})
	if err != nil {
		return nil, false, apierr.MapDB("grant award", err)
	}
	publish(dbc.Ctx, as.events, as.log, &box)
	return ua, granted, nil
}

// grant inserts the pair once and credits the award's points on the first insert.
func (as *awardService) grant(dbc dbctx.Context, userID uuid.UUID, a *types.Award, earnedBy string, box *realtime.Outbox) (*types.UserAward, bool, error) {
	meta, err := json.Marshal(map[string]string{"earned_by": earnedBy})
	if err != nil {
		return nil, false, fmt.Errorf("encode award metadata: %w", err)
	}
	row := &types.UserAward{
		UserID:   userID,
		AwardID:  a.ID,
		Progress: 100,
		Metadata: datatypes.JSON(meta),
	}
	created, err := as.userAwardRepo.CreateIfAbsent(dbc, row)
	if err != nil {
		return nil, false, err
	}
	if !created {
		existing, err := as.userAwardRepo.GetByUserAward(dbc, userID, a.ID)
		return existing, false, err
	}
	if a.Points > 0 {
		if _, err := as.rewarder.GrantPoints(dbc, userID, a.Points); err != nil {
			return nil, false, err
		}
	}
	box.Add(realtime.Event{
		Event:  realtime.EventAwardGranted,
		UserID: userID,
		Data:   map[string]any{"award_id": a.ID, "name": a.Name, "points": a.Points, "earned_by": earnedBy},
	})
	as.log.Info("Award granted", "user_id", userID, "award_id", a.ID, "earned_by", earnedBy)
	return row, true, nil
}

// eligible reports the earned_by reason when u meets the award requirement.
// The level requirement is checked first.
func eligible(u *types.User, a *types.Award) (string, bool) {
	var req types.AwardRequirements
	if len(a.Requirements) == 0 || json.Unmarshal(a.Requirements, &req) != nil {
		return "", false
	}
	switch {
	case req.MinLevel != nil && u.Level >= *req.MinLevel:
		return gamificationdomain.EarnedByLevelUp, true
	case req.MinPoints != nil && u.TotalPoints >= *req.MinPoints:
		return gamificationdomain.EarnedByPointsMilestone, true
	}
	return "", false
}

func (as *awardService) Check(dbc dbctx.Context) ([]*types.UserAward, error) {
	rd, err := currentUser(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	var (
		earned []*types.UserAward
		box    realtime.Outbox
	)
	err = db.Within(dbc, as.db, func(dbc dbctx.Context) error {
		awards, err := as.awardRepo.ListActive(dbc)
		if err != nil {
			return err
		}
		// Awards are ordered by points, so a points award granted here can
		// unlock a later points milestone in the same pass.
		for _, a := range awards {
			u, err := as.userRepo.GetByID(dbc, rd.UserID)
			if err != nil {
				return err
			}
			if u == nil {
				return apierr.NotFound("user %s", rd.UserID)
			}
			reason, ok := eligible(u, a)
			if !ok {
				continue
			}
			ua, granted, err := as.grant(dbc, rd.UserID, a, reason, &box)
			if err != nil {
				return err
			}
			if granted {
				earned = append(earned, ua)
			}
		}
		return nil
	})
	if err != nil {
		return nil, apierr.MapDB("check awards", err)
	}
	publish(dbc.Ctx, as.events, as.log, &box)
	if earned == nil {
		earned = []*types.UserAward{}
	}
	return earned, nil
}

func (as *awardService) MyAwards(dbc dbctx.Context) ([]*types.UserAward, error) {
	rd, err := currentUser(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	out, err := as.userAwardRepo.ListByUser(dbc, rd.UserID)
	if err != nil {
		return nil, apierr.MapDB("list user awards", err)
	}
	return out, nil
}

func (as *awardService) UserAwards(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserAward, error) {
	rd, err := currentUser(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	if rd.UserID != userID && !rd.IsSuperuser {
		return nil, apierr.Forbidden("not allowed to read awards of user %s", userID)
	}
	u, err := as.userRepo.GetByID(dbc, userID)
	if err != nil {
		return nil, apierr.MapDB("get user", err)
	}
	if u == nil {
		return nil, apierr.NotFound("user %s", userID)
	}
	out, err := as.userAwardRepo.ListByUser(dbc, userID)
	if err != nil {
		return nil, apierr.MapDB("list user awards", err)
	}
	return out, nil
}
