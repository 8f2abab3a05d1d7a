package model

import "time"

// Credential is the operator view of a stored credential. Tokens are masked
// unless explicitly requested.
type Credential struct {
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	VerifiedAt   time.Time `json:"verified_at"`
	GuildID      string    `json:"guild_id"`
	Expired      bool      `json:"expired"`
}

type VerifyRequest struct {
	Code    string `json:"code"`
	GuildID string `json:"guild_id"`
}

type VerifyResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	GuildID  string `json:"guild_id,omitempty"`

	// MemberAdded is only meaningful when GuildID is set. A false value never
	// invalidates the stored credential.
	MemberAdded bool `json:"member_added"`
}

type EnsureFreshRequest struct {
	UserID string `json:"user_id"`

	// Force refreshes even if the access token has not expired yet.
	Force bool `json:"force"`
}

type EnsureFreshResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	Refreshed   bool      `json:"refreshed"`
}

type EnsureMembershipRequest struct {
	GuildID string `json:"guild_id"`
	UserID  string `json:"user_id"`
}

type EnsureMembershipResponse struct {
	Success bool `json:"success"`
	Status  int  `json:"status"`
}

type GetListCredentialRequest struct {
	IncludeTokens bool `json:"include_tokens"`
}

type GetListCredentialResponse struct {
	Credentials []Credential `json:"credentials"`
}

type GetCredentialStatsRequest struct {
	GuildID string `json:"guild_id"`
}

type GetCredentialStatsResponse struct {
	GuildID       string `json:"guild_id"`
	VerifiedCount int64  `json:"verified_count"`
}

type HealthRequest struct{}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
