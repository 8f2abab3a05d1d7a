package entity

import "time"

// Credential is the stored OAuth2 grant of one verified user. There is at
// most one record per user.
type Credential struct {
	UserID       string `gorm:"primaryKey;size:32"`
	Username     string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	VerifiedAt   time.Time
	GuildID      string `gorm:"index;size:32"`
}

func (Credential) TableName() string {
	return "members"
}

// IsExpired reports whether the access token can no longer be used at now.
// The instant itself still counts as valid.
func (c *Credential) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
