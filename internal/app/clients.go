package app

import (
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	redisclient "github.com/yungbote/coursekit-backend/internal/clients/redis"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
	"github.com/yungbote/coursekit-backend/internal/realtime/bus"
)

type Clients struct {
	Redis         *goredis.Client
	Bus           bus.Bus
	BannerCounter redisclient.BannerCounter
}

// wireClients connects to redis when configured. Without redis, events go
// through an in-process bus and banner stats are written straight through.
func wireClients(log *logger.Logger, cfg redisclient.Config) (Clients, error) {
	log.Info("Wiring clients...")
	if !cfg.Enabled() {
		return Clients{Bus: bus.NewMemoryBus()}, nil
	}
	rdb, err := redisclient.NewClient(cfg, log)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis: %w", err)
	}
	eventBus, err := bus.NewRedisBus(log, rdb, cfg.Channel)
	if err != nil {
		_ = rdb.Close()
		return Clients{}, fmt.Errorf("init redis event bus: %w", err)
	}
	return Clients{
		Redis:         rdb,
		Bus:           eventBus,
		BannerCounter: redisclient.NewBannerCounter(rdb, log),
	}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
