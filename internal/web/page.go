package web

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/google/uuid"
	"github.com/questx-lab/guildsync/internal/domain"
	"github.com/questx-lab/guildsync/internal/model"
	"github.com/questx-lab/guildsync/pkg/api/discord"
	"github.com/questx-lab/guildsync/pkg/errorx"
	"github.com/questx-lab/guildsync/pkg/router"
	"github.com/questx-lab/guildsync/pkg/session"
	"github.com/questx-lab/guildsync/pkg/xcontext"
)

const (
	sessionStateKey   = "state"
	sessionGuildIDKey = "guild_id"
)

type AuthCodeURLer interface {
	AuthCodeURL(state string) string
}

// PageHandler serves the pages a member sees while verifying.
type PageHandler struct {
	credentialDomain domain.CredentialDomain
	authCodeURLer    AuthCodeURLer
	sessionStore     *session.Store
}

func NewPageHandler(
	credentialDomain domain.CredentialDomain,
	authCodeURLer AuthCodeURLer,
	sessionStore *session.Store,
) *PageHandler {
	return &PageHandler{
		credentialDomain: credentialDomain,
		authCodeURLer:    authCodeURLer,
		sessionStore:     sessionStore,
	}
}

// Register adds the verify and callback pages to r.
func (h *PageHandler) Register(r *router.Router) {
	r.HandleFunc(http.MethodGet, "/verify/{guild_id}", h.Verify)
	r.HandleFunc(http.MethodGet, "/callback", h.Callback)
}

// Verify renders the consent page of a guild. The guild id is kept in the
// session and a random nonce is used as OAuth2 state.
func (h *PageHandler) Verify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	guildID := r.PathValue("guild_id")
	if !discord.IsSnowflake(guildID) {
		http.Error(w, "invalid guild id", http.StatusBadRequest)
		return
	}

	// A cookie which cannot be decoded yields a fresh session.
	sess, _ := h.sessionStore.Get(r)
	state := uuid.NewString()
	sess.Values[sessionStateKey] = state
	sess.Values[sessionGuildIDKey] = guildID

	if err := h.sessionStore.Save(r, w, sess); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot save session: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	render(w, r, verifyPage, map[string]string{"OAuthURL": h.authCodeURLer.AuthCodeURL(state)})
}

func (h *PageHandler) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	code := query.Get("code")
	if code == "" {
		http.Error(w, "no code provided", http.StatusBadRequest)
		return
	}

	sess, _ := h.sessionStore.Get(r)
	expectedState, _ := sess.Values[sessionStateKey].(string)
	guildID, _ := sess.Values[sessionGuildIDKey].(string)
	if expectedState == "" || query.Get("state") != expectedState {
		xcontext.Logger(ctx).Warnf("Callback with unexpected state")
		http.Error(w, "invalid state, please start verification again", http.StatusBadRequest)
		return
	}

	// The state is single use.
	if err := h.sessionStore.Clear(r, w, sess); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot clear session: %v", err)
	}

	resp, err := h.credentialDomain.Verify(ctx, &model.VerifyRequest{Code: code, GuildID: guildID})
	if err != nil {
		status := http.StatusInternalServerError
		message := "verification failed"

		var errx errorx.Error
		if errors.As(err, &errx) {
			status = router.HTTPStatus(errx.Code)
			if errx.Code == errorx.VerificationFailed {
				message = "failed to get token"
			}
		}

		http.Error(w, message, status)
		return
	}

	render(w, r, successPage, map[string]string{"Username": resp.Username})
}

func render(w http.ResponseWriter, r *http.Request, page *template.Template, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Execute(w, data); err != nil {
		xcontext.Logger(r.Context()).Errorf("Cannot render %s: %v", page.Name(), err)
	}
}
