package discord

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/questx-lab/guildsync/config"
	"github.com/questx-lab/guildsync/pkg/api"
	"golang.org/x/oauth2"
)

const (
	userAgent = "DiscordBot (https://github.com/questx-lab/guildsync, 1.0)"
	authURL   = "https://discord.com/oauth2/authorize"
)

type Endpoint struct {
	BotToken string

	oauth2Config oauth2.Config
	apiGenerator api.Generator
}

func New(cfg config.DiscordConfigs) *Endpoint {
	apiURL := strings.TrimSuffix(cfg.APIURL, "/")
	return &Endpoint{
		BotToken: cfg.BotToken,
		oauth2Config: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   authURL,
				TokenURL:  apiURL + "/oauth2/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		apiGenerator: api.NewGenerator(apiURL, cfg.RequestTimeout.Duration),
	}
}

// AuthCodeURL returns the consent page URL. The state is echoed back by the
// provider on the callback.
func (e *Endpoint) AuthCodeURL(state string) string {
	return e.oauth2Config.AuthCodeURL(state)
}

func (e *Endpoint) ExchangeCode(ctx context.Context, code string) (TokenGrant, error) {
	return e.requestToken(ctx, api.Parameter{
		"client_id":     e.oauth2Config.ClientID,
		"client_secret": e.oauth2Config.ClientSecret,
		"grant_type":    "authorization_code",
		"code":          code,
		"redirect_uri":  e.oauth2Config.RedirectURL,
	})
}

func (e *Endpoint) RefreshToken(ctx context.Context, refreshToken string) (TokenGrant, error) {
	return e.requestToken(ctx, api.Parameter{
		"client_id":     e.oauth2Config.ClientID,
		"client_secret": e.oauth2Config.ClientSecret,
		"grant_type":    "refresh_token",
		"refresh_token": refreshToken,
	})
}

func (e *Endpoint) requestToken(ctx context.Context, params api.Parameter) (TokenGrant, error) {
	resp, err := e.apiGenerator.New(e.oauth2Config.Endpoint.TokenURL).
		Header("User-Agent", userAgent).
		Body(params).
		POST(ctx)
	if err != nil {
		return TokenGrant{}, err
	}

	body, ok := resp.JSON()
	if !ok || resp.Code >= http.StatusInternalServerError {
		return TokenGrant{}, fmt.Errorf("%w: token endpoint answered %d", ErrInvalidResponse, resp.Code)
	}

	// The absence of access_token is the only failure signal of the token
	// endpoint.
	accessToken, _ := body.GetString("access_token")
	if accessToken == "" {
		reason, _ := body.GetString("error")
		return TokenGrant{}, &TokenRejectedError{StatusCode: resp.Code, Reason: reason}
	}

	refreshToken, _ := body.GetString("refresh_token")
	expiresIn, err := body.GetInt("expires_in")
	if err != nil {
		return TokenGrant{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	return TokenGrant{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    time.Duration(expiresIn) * time.Second,
	}, nil
}

func (e *Endpoint) GetMe(ctx context.Context, token string) (User, error) {
	resp, err := e.apiGenerator.New("/users/@me").
		Header("User-Agent", userAgent).
		GET(ctx, api.OAuth2("Bearer", token))
	if err != nil {
		return User{}, err
	}

	body, ok := resp.JSON()
	if !ok {
		return User{}, ErrInvalidResponse
	}

	// If response has no id, the body is an error object.
	id, err := body.GetString("id")
	if err != nil || id == "" {
		message, _ := body.GetString("message")
		return User{}, fmt.Errorf("%w: cannot get current user (%d %s)", ErrInvalidResponse, resp.Code, message)
	}

	username, err := body.GetString("username")
	if err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	return User{ID: id, Username: username}, nil
}

// AddGuildMember asks the guild to add the user with the user's own access
// token. It returns the status code as is; see IsMemberAdded.
func (e *Endpoint) AddGuildMember(ctx context.Context, guildID, userID, accessToken string) (int, error) {
	resp, err := e.apiGenerator.New("/guilds/%s/members/%s", guildID, userID).
		Header("User-Agent", userAgent).
		Body(api.JSON{"access_token": accessToken}).
		PUT(ctx, api.OAuth2("Bot", e.BotToken))
	if err != nil {
		return 0, err
	}

	return resp.Code, nil
}
