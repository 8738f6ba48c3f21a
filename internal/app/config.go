package app

import (
	"time"

	redisclient "github.com/yungbote/coursekit-backend/internal/clients/redis"
	"github.com/yungbote/coursekit-backend/internal/data/db"
	"github.com/yungbote/coursekit-backend/internal/observability"
	"github.com/yungbote/coursekit-backend/internal/platform/envutil"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
)

const defaultBannerFlushSpec = "@every 30s"

type Config struct {
	Port            string
	JWTSecretKey    string
	CORSOrigins     []string
	RewardsConfig   string
	BannerFlushSpec string
	ShutdownTimeout time.Duration

	DB    db.Config
	Redis redisclient.Config
	Otel  observability.OtelConfig
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		Port:            envutil.String("PORT", "8080", log),
		JWTSecretKey:    envutil.String("JWT_SECRET_KEY", "defaultsecret", log),
		CORSOrigins:     envutil.List("CORS_ALLOWED_ORIGINS", nil, log),
		RewardsConfig:   envutil.String("REWARDS_CONFIG", "", log),
		BannerFlushSpec: envutil.String("BANNER_FLUSH_SPEC", defaultBannerFlushSpec, log),
		ShutdownTimeout: time.Duration(envutil.Int("SHUTDOWN_TIMEOUT_SECONDS", 15, log)) * time.Second,
		DB:              db.LoadConfig(log),
		Redis:           redisclient.LoadConfig(log),
		Otel:            observability.LoadOtelConfig(log),
	}
}
