package testutil

import (
	"context"
	"time"

	"github.com/questx-lab/guildsync/config"
	"github.com/questx-lab/guildsync/internal/entity"
	"github.com/questx-lab/guildsync/pkg/logger"
	"github.com/questx-lab/guildsync/pkg/xcontext"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func MockConfigs() config.Configs {
	cfg := config.Default()
	cfg.LogLevel = "debug"
	cfg.Discord.ClientID = "client-id"
	cfg.Discord.ClientSecret = "client-secret"
	cfg.Discord.RedirectURL = "http://localhost:5000/callback"
	cfg.Discord.BotToken = "bot-token"
	cfg.Discord.RequestTimeout = config.Duration{Duration: time.Second}
	cfg.Auth.APIKey = "api-key"
	cfg.Auth.UnauthorizedDelay = config.Duration{}
	cfg.Session.Secret = "session-secret"
	cfg.KeepAlive.SelfURL = ""
	return cfg
}

// MockContext returns a context carrying test configs, a silent logger and a
// fresh in-memory sqlite database with every table migrated.
func MockContext() context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		panic(err)
	}

	// Every new connection to :memory: opens a different database.
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, MockConfigs())
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.SILENCE))
	ctx = xcontext.WithDB(ctx, db)

	if err := entity.MigrateTable(ctx); err != nil {
		panic(err)
	}

	return ctx
}
