package services

import (
	"context"

	"github.com/yungbote/coursekit-backend/internal/learning/rewards"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
	"github.com/yungbote/coursekit-backend/internal/realtime"
)

// publish sends events collected during a committed transaction. Failures
// are logged and never fail the request.
func publish(ctx context.Context, pub realtime.Publisher, log *logger.Logger, box *realtime.Outbox) {
	if pub == nil || box == nil {
		return
	}
	if err := box.Flush(context.WithoutCancel(ctx), pub); err != nil {
		log.Warn("Event publish failed", "error", err)
	}
}

func addRewardEvents(box *realtime.Outbox, out *rewards.Outcome) {
	if out == nil {
		return
	}
	if ev, ok := out.LevelUpEvent(); ok {
		box.Add(ev)
	}
}
