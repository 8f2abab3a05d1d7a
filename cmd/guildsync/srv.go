package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/questx-lab/guildsync/config"
	"github.com/questx-lab/guildsync/internal/domain"
	"github.com/questx-lab/guildsync/internal/repository"
	"github.com/questx-lab/guildsync/migration"
	"github.com/questx-lab/guildsync/pkg/api/discord"
	"github.com/questx-lab/guildsync/pkg/crypto"
	"github.com/questx-lab/guildsync/pkg/keylock"
	"github.com/questx-lab/guildsync/pkg/logger"
	"github.com/questx-lab/guildsync/pkg/router"
	"github.com/questx-lab/guildsync/pkg/session"
	"github.com/questx-lab/guildsync/pkg/xcontext"
	"github.com/questx-lab/guildsync/pkg/xredis"
	"github.com/urfave/cli/v2"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type srv struct {
	app *cli.App
	ctx context.Context

	configs *config.Configs
	logger  logger.Logger

	redisClient xredis.Client
	userLocker  keylock.Locker

	discordEndpoint discord.IEndpoint

	credentialRepo repository.CredentialRepository

	credentialDomain domain.CredentialDomain

	sessionStore *session.Store
	router       *router.Router
	server       *http.Server
}

func (s *srv) loadConfig(cctx *cli.Context) error {
	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		return err
	}

	s.configs = &cfg
	s.logger = logger.NewLogger(logger.ParseLevel(cfg.LogLevel))

	s.ctx = context.Background()
	s.ctx = xcontext.WithConfigs(s.ctx, cfg)
	s.ctx = xcontext.WithLogger(s.ctx, s.logger)
	s.ctx = xcontext.WithHTTPClient(s.ctx, &http.Client{})
	return nil
}

func (s *srv) newDatabase() (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	}

	var dialector gorm.Dialector
	switch s.configs.Database.Driver {
	case "mysql":
		dialector = mysql.New(mysql.Config{
			DSN:                       s.configs.Database.DSN,
			DefaultStringSize:         256,
			DisableDatetimePrecision:  false,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		})
	case "sqlite":
		dialector = sqlite.Open(s.configs.Database.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", s.configs.Database.Driver)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, err
	}

	if s.configs.Database.Driver == "sqlite" {
		// sqlite allows only one writer at a time.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

func (s *srv) loadDatabase() error {
	db, err := s.newDatabase()
	if err != nil {
		return err
	}

	s.ctx = xcontext.WithDB(s.ctx, db)
	return migration.Migrate(s.ctx)
}

func (s *srv) loadLocker() error {
	if s.configs.Redis.Addr == "" {
		s.userLocker = keylock.NewLocalLocker()
		return nil
	}

	client, err := xredis.NewClient(s.ctx)
	if err != nil {
		return fmt.Errorf("cannot connect to redis: %w", err)
	}

	s.redisClient = client
	s.userLocker = keylock.NewRedisLocker(client, s.configs.Redis.LockTTL.Duration)
	s.logger.Infof("Using redis locker at %s", s.configs.Redis.Addr)
	return nil
}

func (s *srv) loadEndpoint() {
	s.discordEndpoint = discord.New(s.configs.Discord)
}

func (s *srv) loadRepos() {
	s.credentialRepo = repository.NewCredentialRepository()
}

func (s *srv) loadDomains() {
	s.credentialDomain = domain.NewCredentialDomain(
		s.credentialRepo, s.discordEndpoint, s.discordEndpoint, s.userLocker)
}

func (s *srv) loadSessionStore() error {
	secret := s.configs.Session.Secret
	if secret == "" {
		var err error
		if secret, err = crypto.GenerateRandomString(); err != nil {
			return err
		}

		s.logger.Warnf("SESSION_SECRET is not set, pending verifications will not survive a restart")
	}

	s.sessionStore = session.NewCookieStore(s.configs.Session.Name, sessions.Options{
		Path:     "/",
		MaxAge:   s.configs.Session.MaxAge,
		HttpOnly: true,
		Secure:   strings.HasPrefix(s.configs.Discord.RedirectURL, "https://"),
		SameSite: http.SameSiteLaxMode,
	}, []byte(secret))
	return nil
}

// loadCore prepares everything an operation on credentials needs.
func (s *srv) loadCore() error {
	if err := s.configs.Validate(); err != nil {
		return err
	}

	if err := s.loadDatabase(); err != nil {
		return err
	}

	if err := s.loadLocker(); err != nil {
		return err
	}

	s.loadEndpoint()
	s.loadRepos()
	s.loadDomains()
	return nil
}

func (s *srv) close() {
	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.logger.Warnf("Cannot close redis client: %v", err)
		}
	}
}
