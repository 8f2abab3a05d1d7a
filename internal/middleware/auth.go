package middleware

import (
	"context"
	"time"

	"github.com/questx-lab/guildsync/pkg/crypto"
	"github.com/questx-lab/guildsync/pkg/errorx"
	"github.com/questx-lab/guildsync/pkg/router"
	"github.com/questx-lab/guildsync/pkg/xcontext"
)

type APIKeyVerifier struct {
	sleep func(ctx context.Context, d time.Duration)
}

func NewAPIKeyVerifier() *APIKeyVerifier {
	return &APIKeyVerifier{sleep: sleepContext}
}

// Middleware rejects requests whose API key header does not match the
// configured key. Rejections are delayed to slow down guessing.
func (v *APIKeyVerifier) Middleware() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		cfg := xcontext.Configs(ctx).Auth
		given := xcontext.HTTPRequest(ctx).Header.Get(cfg.APIKeyHeader)

		if !crypto.Equal(given, cfg.APIKey) {
			xcontext.Logger(ctx).Debugf("Rejected API key %s", crypto.Fingerprint(given))
			v.sleep(ctx, cfg.UnauthorizedDelay.Duration)
			return nil, errorx.New(errorx.Unauthenticated, "Unauthorized")
		}

		return ctx, nil
	}
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
