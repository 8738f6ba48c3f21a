package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yungbote/coursekit-backend/internal/observability"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
	"github.com/yungbote/coursekit-backend/internal/services"
)

const bannerFlushTimeout = 20 * time.Second

// newScheduler registers the periodic jobs. FlushStats is a no-op when no
// redis counter is configured.
func newScheduler(log *logger.Logger, spec string, banners services.BannerService, metrics *observability.Metrics) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { flushBannerStats(log, banners, metrics) }); err != nil {
		return nil, fmt.Errorf("schedule banner flush %q: %w", spec, err)
	}
	return c, nil
}

func flushBannerStats(log *logger.Logger, banners services.BannerService, metrics *observability.Metrics) {
	ctx, cancel := context.WithTimeout(context.Background(), bannerFlushTimeout)
	defer cancel()
	n, err := banners.FlushStats(dbctx.Context{Ctx: ctx})
	metrics.ObserveBannerFlush(n, err)
	if err != nil {
		log.Warn("banner stat flush failed", "error", err, "flushed", n)
		return
	}
	if n > 0 {
		log.Debug("banner stats flushed", "banners", n)
	}
}
