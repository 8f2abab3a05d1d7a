package testutil

import (
	"context"
	"errors"

	"github.com/questx-lab/guildsync/pkg/api/discord"
)

type MockDiscordEndpoint struct {
	ExchangeCodeFunc   func(ctx context.Context, code string) (discord.TokenGrant, error)
	RefreshTokenFunc   func(ctx context.Context, refreshToken string) (discord.TokenGrant, error)
	GetMeFunc          func(ctx context.Context, token string) (discord.User, error)
	AddGuildMemberFunc func(ctx context.Context, guildID, userID, accessToken string) (int, error)
	AuthCodeURLFunc    func(state string) string
}

func (e *MockDiscordEndpoint) ExchangeCode(ctx context.Context, code string) (discord.TokenGrant, error) {
	if e.ExchangeCodeFunc != nil {
		return e.ExchangeCodeFunc(ctx, code)
	}

	return discord.TokenGrant{}, errors.New("not implemented")
}

func (e *MockDiscordEndpoint) RefreshToken(ctx context.Context, refreshToken string) (discord.TokenGrant, error) {
	if e.RefreshTokenFunc != nil {
		return e.RefreshTokenFunc(ctx, refreshToken)
	}

	return discord.TokenGrant{}, errors.New("not implemented")
}

func (e *MockDiscordEndpoint) GetMe(ctx context.Context, token string) (discord.User, error) {
	if e.GetMeFunc != nil {
		return e.GetMeFunc(ctx, token)
	}

	return discord.User{}, errors.New("not implemented")
}

func (e *MockDiscordEndpoint) AddGuildMember(ctx context.Context, guildID, userID, accessToken string) (int, error) {
	if e.AddGuildMemberFunc != nil {
		return e.AddGuildMemberFunc(ctx, guildID, userID, accessToken)
	}

	return 0, errors.New("not implemented")
}

func (e *MockDiscordEndpoint) AuthCodeURL(state string) string {
	if e.AuthCodeURLFunc != nil {
		return e.AuthCodeURLFunc(state)
	}

	return "https://discord.com/oauth2/authorize?state=" + state
}
