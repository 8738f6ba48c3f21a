package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/coursekit-backend/internal/http/response"
	"github.com/yungbote/coursekit-backend/internal/platform/apierr"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
)

const maxPageSize = 100

func dbcOf(c *gin.Context) dbctx.Context {
	return dbctx.Context{Ctx: c.Request.Context()}
}

// pathID parses the named uuid route param, answering 400 when malformed.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.RespondAPIError(c, apierr.Invalid("%s must be a uuid", name))
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondAPIError(c, apierr.Invalid("invalid request body: %v", err))
		return false
	}
	return true
}

// queryBool parses an optional boolean query param. A malformed value
// answers 400 and reports false.
func queryBool(c *gin.Context, key string) (*bool, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		response.RespondAPIError(c, apierr.Invalid("%s must be a boolean", key))
		return nil, false
	}
	return &v, true
}

// queryInt parses an optional integer query param, falling back to def.
func queryInt(c *gin.Context, key string, def int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		response.RespondAPIError(c, apierr.Invalid("%s must be an integer", key))
		return 0, false
	}
	return v, true
}

// page reads offset and limit. Out-of-range values are clamped; values that
// are not integers answer 400.
func page(c *gin.Context) (offset, limit int, ok bool) {
	if offset, ok = queryInt(c, "offset", 0); !ok {
		return 0, 0, false
	}
	if limit, ok = queryInt(c, "limit", 20); !ok {
		return 0, 0, false
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > maxPageSize {
		limit = 20
	}
	return offset, limit, true
}

type reorderRequest struct {
	NewOrder *int `json:"new_order" binding:"required"`
}
