package router

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/mitchellh/mapstructure"
	"github.com/questx-lab/guildsync/pkg/errorx"
	"github.com/questx-lab/guildsync/pkg/xcontext"
)

const maxBodySize = 1 << 20

func wrapHandler[Request, Response any](
	method, pattern string,
	handler HandlerFunc[Request, Response],
) routeFunc {
	params := PathParams(pattern)

	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		var req Request
		if err := bind(method, params, r, &req); err != nil {
			xcontext.Logger(ctx).Debugf("Cannot bind request: %v", err)
			writeError(ctx, w, errorx.Wrap(err, errorx.BadRequest, "Invalid request"))
			return
		}

		resp, err := handler(ctx, &req)
		if err != nil {
			writeError(ctx, w, err)
			return
		}

		writeResponse(ctx, w, resp)
	}
}

// bind fills req from the JSON body (POST only), the query string and the
// path wildcards, in that order. Fields are matched by their json tag.
func bind(method string, params []string, r *http.Request, req any) error {
	if method == http.MethodPost {
		err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(req)
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
	}

	values := map[string]any{}
	for key, v := range r.URL.Query() {
		if len(v) > 0 {
			values[key] = v[0]
		}
	}

	for _, name := range params {
		values[name] = r.PathValue(name)
	}

	if len(values) == 0 {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           req,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(values)
}
