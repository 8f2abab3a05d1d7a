package router

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

type requestStateKey struct{}

type requestState struct {
	status int
	err    error
}

func newRequestID() string {
	return uuid.NewString()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}

	return id
}

// Status returns the HTTP status sent to the client. It is only meaningful in
// closers.
func Status(ctx context.Context) int {
	if state, ok := ctx.Value(requestStateKey{}).(*requestState); ok {
		return state.status
	}

	return 0
}

// Error returns the error returned by the middleware or handler of this
// request, if any.
func Error(ctx context.Context) error {
	if state, ok := ctx.Value(requestStateKey{}).(*requestState); ok {
		return state.err
	}

	return nil
}

func setError(ctx context.Context, err error) {
	if state, ok := ctx.Value(requestStateKey{}).(*requestState); ok {
		state.err = err
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
