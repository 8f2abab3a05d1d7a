package discord

import "context"

// TokenExchanger speaks the OAuth2 token protocol of the provider and reads
// the identity behind a user token.
type TokenExchanger interface {
	ExchangeCode(ctx context.Context, code string) (TokenGrant, error)
	RefreshToken(ctx context.Context, refreshToken string) (TokenGrant, error)
	GetMe(ctx context.Context, token string) (User, error)
}

type MembershipAdder interface {
	AddGuildMember(ctx context.Context, guildID, userID, accessToken string) (int, error)
}

type IEndpoint interface {
	TokenExchanger
	MembershipAdder

	AuthCodeURL(state string) string
}
