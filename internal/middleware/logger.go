package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/questx-lab/guildsync/pkg/errorx"
	"github.com/questx-lab/guildsync/pkg/router"
	"github.com/questx-lab/guildsync/pkg/xcontext"
)

func Logger() router.CloserFunc {
	return func(ctx context.Context) {
		req := xcontext.HTTPRequest(ctx)
		info := fmt.Sprintf("%s | %s | %d", req.Method, req.URL.Path, router.Status(ctx))
		if err := router.Error(ctx); err != nil {
			var errx errorx.Error
			if errors.As(err, &errx) {
				xcontext.Logger(ctx).Warnf("%s | %d", info, errx.Code)
			} else {
				xcontext.Logger(ctx).Errorf("%s | %v", info, err)
			}
		} else {
			xcontext.Logger(ctx).Infof("%s", info)
		}
	}
}
