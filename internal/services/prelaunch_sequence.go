package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/coursekit-backend/internal/data/db"
	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/platform/apierr"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
)

type SequenceInput struct {
	Title       string
	Description string
	IsActive    bool
}

type SequencePatch struct {
	Title       *string
	Description *string
	IsActive    *bool
}

type SequenceView struct {
	Sequence *types.PrelaunchEmailSequence
	Emails   []*types.PrelaunchEmail
}

type EmailInput struct {
	Subject   string
	Body      string
	DelayDays int
	IsActive  bool
}

type EmailPatch struct {
	Subject   *string
	Body      *string
	DelayDays *int
	IsActive  *bool
}

func (ps *prelaunchService) loadSequence(dbc dbctx.Context, sequenceID uuid.UUID) (*types.PrelaunchEmailSequence, error) {
	s, err := ps.sequenceRepo.GetByID(dbc, sequenceID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, apierr.NotFound("email sequence %s", sequenceID)
	}
	return s, nil
}

func (ps *prelaunchService) loadEmail(dbc dbctx.Context, emailID uuid.UUID) (*types.PrelaunchEmail, error) {
	e, err := ps.sequenceRepo.GetEmailByID(dbc, emailID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, apierr.NotFound("email %s", emailID)
	}
	return e, nil
}

func (ps *prelaunchService) CreateSequence(dbc dbctx.Context, campaignID uuid.UUID, in SequenceInput) (*types.PrelaunchEmailSequence, error) {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return nil, err
	}
	title, err := requiredTitle(in.Title)
	if err != nil {
		return nil, err
	}
	var out *types.PrelaunchEmailSequence
	err = db.Within(dbc, ps.db, func(dbc dbctx.Context) error {
		if _, err := ps.loadCampaign(dbc, campaignID); err != nil {
			return err
		}
		out = &types.PrelaunchEmailSequence{
			CampaignID:  campaignID,
			Title:       title,
			Description: in.Description,
			IsActive:    in.IsActive,
		}
		_, err := ps.sequenceRepo.Create(dbc, out)
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("create email sequence", err)
	}
	return out, nil
}

func (ps *prelaunchService) ListSequences(dbc dbctx.Context, campaignID uuid.UUID) ([]*types.PrelaunchEmailSequence, error) {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return nil, err
	}
	if _, err := ps.loadCampaign(dbc, campaignID); err != nil {
		return nil, apierr.MapDB("list email sequences", err)
	}
	out, err := ps.sequenceRepo.ListByCampaign(dbc, campaignID)
	if err != nil {
		return nil, apierr.MapDB("list email sequences", err)
	}
	return out, nil
}

func (ps *prelaunchService) GetSequence(dbc dbctx.Context, sequenceID uuid.UUID) (*SequenceView, error) {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return nil, err
	}
	s, err := ps.loadSequence(dbc, sequenceID)
	if err != nil {
		return nil, apierr.MapDB("get email sequence", err)
	}
	emails, err := ps.sequenceRepo.ListEmails(dbc, s.ID)
	if err != nil {
		return nil, apierr.MapDB("list sequence emails", err)
	}
	return &SequenceView{Sequence: s, Emails: emails}, nil
}

func (ps *prelaunchService) UpdateSequence(dbc dbctx.Context, sequenceID uuid.UUID, patch SequencePatch) (*types.PrelaunchEmailSequence, error) {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return nil, err
	}
	var out *types.PrelaunchEmailSequence
	err := db.Within(dbc, ps.db, func(dbc dbctx.Context) error {
		if _, err := ps.loadSequence(dbc, sequenceID); err != nil {
			return err
		}
		fields := map[string]any{}
		if err := patchTitle(fields, patch.Title); err != nil {
			return err
		}
		if patch.Description != nil {
			fields["description"] = *patch.Description
		}
		if patch.IsActive != nil {
			fields["is_active"] = *patch.IsActive
		}
		if err := ps.sequenceRepo.UpdateFields(dbc, sequenceID, fields); err != nil {
			return err
		}
		var err error
		out, err = ps.sequenceRepo.GetByID(dbc, sequenceID)
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("update email sequence", err)
	}
	return out, nil
}

func (ps *prelaunchService) DeleteSequence(dbc dbctx.Context, sequenceID uuid.UUID) error {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return err
	}
	err := db.Within(dbc, ps.db, func(dbc dbctx.Context) error {
		if _, err := ps.loadSequence(dbc, sequenceID); err != nil {
			return err
		}
		n, err := ps.sequenceRepo.CountEmails(dbc, sequenceID)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: email sequence %s still has %d emails", apierr.ErrConflict, sequenceID, n)
		}
		return ps.sequenceRepo.Delete(dbc, sequenceID)
	})
	return apierr.MapDB("delete email sequence", err)
}

func validateEmailContent(subject, body string, delayDays int) error {
	if strings.TrimSpace(subject) == "" || strings.TrimSpace(body) == "" {
		return apierr.Invalid("subject and body are required")
	}
	if delayDays < 0 {
		return apierr.Invalid("delay days must not be negative")
	}
	return nil
}

func (ps *prelaunchService) CreateEmail(dbc dbctx.Context, sequenceID uuid.UUID, in EmailInput) (*types.PrelaunchEmail, error) {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return nil, err
	}
	if err := validateEmailContent(in.Subject, in.Body, in.DelayDays); err != nil {
		return nil, err
	}
	var out *types.PrelaunchEmail
	err := db.Within(dbc, ps.db, func(dbc dbctx.Context) error {
		if _, err := ps.loadSequence(dbc, sequenceID); err != nil {
			return err
		}
		out = &types.PrelaunchEmail{
			SequenceID: sequenceID,
			Subject:    strings.TrimSpace(in.Subject),
			Body:       in.Body,
			DelayDays:  in.DelayDays,
			IsActive:   in.IsActive,
		}
		_, err := ps.sequenceRepo.CreateEmail(dbc, out)
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("create email", err)
	}
	return out, nil
}

func (ps *prelaunchService) ListEmails(dbc dbctx.Context, sequenceID uuid.UUID) ([]*types.PrelaunchEmail, error) {
	view, err := ps.GetSequence(dbc, sequenceID)
	if err != nil {
		return nil, err
	}
	return view.Emails, nil
}

func (ps *prelaunchService) GetEmail(dbc dbctx.Context, emailID uuid.UUID) (*types.PrelaunchEmail, error) {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return nil, err
	}
	e, err := ps.loadEmail(dbc, emailID)
	if err != nil {
		return nil, apierr.MapDB("get email", err)
	}
	return e, nil
}

func (ps *prelaunchService) UpdateEmail(dbc dbctx.Context, emailID uuid.UUID, patch EmailPatch) (*types.PrelaunchEmail, error) {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return nil, err
	}
	var out *types.PrelaunchEmail
	err := db.Within(dbc, ps.db, func(dbc dbctx.Context) error {
		e, err := ps.loadEmail(dbc, emailID)
		if err != nil {
			return err
		}
		subject, body, delay := e.Subject, e.Body, e.DelayDays
		fields := map[string]any{}
		if patch.Subject != nil {
			subject = strings.TrimSpace(*patch.Subject)
			fields["subject"] = subject
		}
		if patch.Body != nil {
			body = *patch.Body
			fields["body"] = body
		}
		if patch.DelayDays != nil {
			delay = *patch.DelayDays
			fields["delay_days"] = delay
		}
		if err := validateEmailContent(subject, body, delay); err != nil {
			return err
		}
		if patch.IsActive != nil {
			fields["is_active"] = *patch.IsActive
		}
		if err := ps.sequenceRepo.UpdateEmailFields(dbc, emailID, fields); err != nil {
			return err
		}
		out, err = ps.sequenceRepo.GetEmailByID(dbc, emailID)
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("update email", err)
	}
	return out, nil
}

func (ps *prelaunchService) DeleteEmail(dbc dbctx.Context, emailID uuid.UUID) error {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return err
	}
	err := db.Within(dbc, ps.db, func(dbc dbctx.Context) error {
		if _, err := ps.loadEmail(dbc, emailID); err != nil {
			return err
		}
		return ps.sequenceRepo.DeleteEmail(dbc, emailID)
	})
	return apierr.MapDB("delete email", err)
}

func (ps *prelaunchService) RecordEmailStats(dbc dbctx.Context, emailID uuid.UUID, sent, opened, clicked int64) (*types.PrelaunchEmail, error) {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return nil, err
	}
	if sent < 0 || opened < 0 || clicked < 0 {
		return nil, apierr.Invalid("stat deltas must not be negative")
	}
	var out *types.PrelaunchEmail
	err := db.Within(dbc, ps.db, func(dbc dbctx.Context) error {
		if _, err := ps.loadEmail(dbc, emailID); err != nil {
			return err
		}
		if err := ps.sequenceRepo.IncrementEmailStats(dbc, emailID, sent, opened, clicked); err != nil {
			return err
		}
		var err error
		out, err = ps.sequenceRepo.GetEmailByID(dbc, emailID)
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("record email stats", err)
	}
	return out, nil
}
