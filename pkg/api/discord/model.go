package discord

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var ErrInvalidResponse = errors.New("invalid response")

type User struct {
	ID       string
	Username string
}

// TokenGrant is a successful answer of the token endpoint.
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

// TokenRejectedError is a well-formed answer of the token endpoint which
// carries no access token, e.g. an invalid code or a dead refresh token.
type TokenRejectedError struct {
	StatusCode int
	Reason     string
}

func (e *TokenRejectedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("token rejected with status %d", e.StatusCode)
	}

	return fmt.Sprintf("token rejected with status %d: %s", e.StatusCode, e.Reason)
}

func IsTokenRejected(err error) bool {
	var rejected *TokenRejectedError
	return errors.As(err, &rejected)
}

// IsMemberAdded classifies the status of AddGuildMember: 201 means the member
// was created, 204 means the user already was a member.
func IsMemberAdded(status int) bool {
	return status == http.StatusCreated || status == http.StatusNoContent
}

// IsSnowflake reports whether id looks like a Discord snowflake.
func IsSnowflake(id string) bool {
	if id == "" || len(id) > 20 {
		return false
	}

	for _, c := range id {
		if c < '0' || c > '9' {
			return false
		}
	}

	return true
}
