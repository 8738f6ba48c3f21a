package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/coursekit-backend/internal/platform/apierr"
	"github.com/yungbote/coursekit-backend/internal/platform/ctxutil"
)

// currentUser returns the authenticated caller or ErrUnauthorized.
func currentUser(ctx context.Context) (*ctxutil.RequestData, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: authentication required", apierr.ErrUnauthorized)
	}
	return rd, nil
}

// optionalUser returns the caller when one is attached, else nil.
func optionalUser(ctx context.Context) *ctxutil.RequestData {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil
	}
	return rd
}

func canManage(rd *ctxutil.RequestData, ownerID uuid.UUID) bool {
	return rd != nil && (rd.IsSuperuser || rd.UserID == ownerID)
}

func requireOwner(ctx context.Context, ownerID uuid.UUID, what string) (*ctxutil.RequestData, error) {
	rd, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if !canManage(rd, ownerID) {
		return nil, apierr.Forbidden("not allowed to modify %s", what)
	}
	return rd, nil
}

func requireSuperuser(ctx context.Context) (*ctxutil.RequestData, error) {
	rd, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if !rd.IsSuperuser {
		return nil, apierr.Forbidden("superuser required")
	}
	return rd, nil
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and joins its alphanumeric runs with dashes.
func Slugify(s string) string {
	return strings.Trim(slugStrip.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-"), "-")
}
