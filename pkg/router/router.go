package router

import (
	"context"
	"net/http"
	"strings"

	"github.com/questx-lab/guildsync/config"
	"github.com/questx-lab/guildsync/pkg/logger"
	"github.com/questx-lab/guildsync/pkg/xcontext"
	"github.com/rs/cors"
	"gorm.io/gorm"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc runs before the handler. It may return a derived context
// which is passed to the next middleware and the handler. Returning an error
// stops the chain and the error is sent to the client.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

// CloserFunc runs after the response is written.
type CloserFunc func(ctx context.Context)

type Router struct {
	mux *http.ServeMux

	cfg    config.Configs
	logger logger.Logger
	db     *gorm.DB

	befores []MiddlewareFunc
	closers []CloserFunc
}

func New(db *gorm.DB, cfg config.Configs, logger logger.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}
}

// Branch returns a router which shares the routes of r but owns a copy of its
// middlewares, so that middlewares added to the branch do not affect r.
func (r *Router) Branch() *Router {
	clone := *r
	clone.befores = append([]MiddlewareFunc{}, r.befores...)
	clone.closers = append([]CloserFunc{}, r.closers...)
	return &clone
}

func (r *Router) Before(middleware MiddlewareFunc) {
	r.befores = append(r.befores, middleware)
}

func (r *Router) AddCloser(closer CloserFunc) {
	r.closers = append(r.closers, closer)
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.route(http.MethodGet, pattern, wrapHandler(http.MethodGet, pattern, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.route(http.MethodPost, pattern, wrapHandler(http.MethodPost, pattern, handler))
}

// HandleFunc registers a handler which writes its own response, e.g. an HTML
// page. The request context carries the same values as for JSON handlers.
func (r *Router) HandleFunc(method, pattern string, handler http.HandlerFunc) {
	r.route(method, pattern, func(ctx context.Context, w http.ResponseWriter, req *http.Request) {
		handler(w, req.WithContext(ctx))
	})
}

func (r *Router) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: r.cfg.ApiServer.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Content-Length", r.cfg.Auth.APIKeyHeader},
	}).Handler(r.mux)
}

type routeFunc func(ctx context.Context, w http.ResponseWriter, req *http.Request)

func (r *Router) route(method, pattern string, fn routeFunc) {
	befores := r.befores
	closers := r.closers

	r.mux.HandleFunc(method+" "+pattern, func(w http.ResponseWriter, req *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		ctx, state := r.newContext(recorder, req)

		defer func() {
			state.status = recorder.status
			for _, closer := range closers {
				closer(ctx)
			}
		}()

		for _, before := range befores {
			next, err := before(ctx)
			if err != nil {
				writeError(ctx, recorder, err)
				return
			}
			ctx = next
		}

		fn(ctx, recorder, req)
	})
}

func (r *Router) newContext(w http.ResponseWriter, req *http.Request) (context.Context, *requestState) {
	requestID := req.Header.Get(requestIDHeader)
	if requestID == "" || len(requestID) > 64 {
		requestID = newRequestID()
	}
	w.Header().Set(requestIDHeader, requestID)

	ctx := req.Context()
	ctx = xcontext.WithConfigs(ctx, r.cfg)
	ctx = xcontext.WithLogger(ctx, r.logger.With(shortID(requestID)))
	ctx = xcontext.WithRequestID(ctx, requestID)
	ctx = xcontext.WithHTTPRequest(ctx, req)
	if r.db != nil {
		ctx = xcontext.WithDB(ctx, r.db)
	}

	state := &requestState{}
	ctx = context.WithValue(ctx, requestStateKey{}, state)
	return ctx, state
}

// PathParams returns the names of the wildcards of a ServeMux pattern.
func PathParams(pattern string) []string {
	var names []string
	for _, segment := range strings.Split(pattern, "/") {
		if !strings.HasPrefix(segment, "{") || !strings.HasSuffix(segment, "}") {
			continue
		}

		name := strings.TrimSuffix(strings.TrimPrefix(segment, "{"), "}")
		name = strings.TrimSuffix(name, "...")
		if name != "" && name != "$" {
			names = append(names, name)
		}
	}

	return names
}
