package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/questx-lab/guildsync/internal/domain/cron"
	"github.com/questx-lab/guildsync/internal/middleware"
	"github.com/questx-lab/guildsync/internal/model"
	"github.com/questx-lab/guildsync/internal/web"
	"github.com/questx-lab/guildsync/pkg/api"
	"github.com/questx-lab/guildsync/pkg/router"
	"github.com/questx-lab/guildsync/pkg/xcontext"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func (s *srv) startApi(*cli.Context) error {
	if err := s.loadCore(); err != nil {
		return err
	}
	defer s.close()

	if err := s.loadSessionStore(); err != nil {
		return err
	}

	s.loadRouter()

	s.server = &http.Server{
		Addr:              s.configs.ApiServer.Address(),
		Handler:           s.router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		s.logger.Infof("Starting server on %s", s.server.Addr)
		if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	})

	group.Go(func() error {
		s.startCron(ctx)
		return nil
	})

	err := group.Wait()
	s.logger.Infof("Server stopped")
	return err
}

func (s *srv) startCron(ctx context.Context) {
	keepAlive := s.configs.KeepAlive
	if keepAlive.SelfURL == "" {
		s.logger.Infof("SELF_URL is not set, keep-alive is disabled")
		return
	}

	cron.NewCronJobManager().Start(
		ctx,
		cron.NewKeepAliveCronJob(
			api.NewGenerator(keepAlive.SelfURL, s.configs.Discord.RequestTimeout.Duration),
			keepAlive.InitialDelay.Duration,
			keepAlive.Interval.Duration,
		),
	)
}

func (s *srv) loadRouter() {
	s.router = router.New(xcontext.DB(s.ctx), *s.configs, s.logger)
	s.router.AddCloser(middleware.Logger())

	// Pages seen by members while verifying.
	web.NewPageHandler(s.credentialDomain, s.discordEndpoint, s.sessionStore).Register(s.router)

	router.GET(s.router, "/health", health)

	// These following APIs need the operator API key.
	operatorRouter := s.router.Branch()
	operatorRouter.Before(middleware.NewAPIKeyVerifier().Middleware())
	{
		router.GET(operatorRouter, "/api/members", s.credentialDomain.GetList)
		router.POST(operatorRouter, "/api/members/refresh/{user_id}", s.credentialDomain.EnsureFresh)
		router.POST(operatorRouter, "/api/pull/{guild_id}/{user_id}", s.credentialDomain.EnsureMembership)
		router.GET(operatorRouter, "/api/stats/{guild_id}", s.credentialDomain.GetStats)
	}
}

func health(ctx context.Context, req *model.HealthRequest) (*model.HealthResponse, error) {
	return &model.HealthResponse{Status: "alive", Timestamp: time.Now().UTC()}, nil
}
