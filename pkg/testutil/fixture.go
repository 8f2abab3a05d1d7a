package testutil

import (
	"context"
	"time"

	"github.com/questx-lab/guildsync/internal/entity"
	"github.com/questx-lab/guildsync/pkg/xcontext"
)

var (
	// Credential1 is still valid for an hour.
	Credential1 = &entity.Credential{
		UserID:       "42",
		Username:     "alice",
		AccessToken:  "T1",
		RefreshToken: "R1",
		GuildID:      "99",
	}

	// Credential2 expired an hour ago.
	Credential2 = &entity.Credential{
		UserID:       "43",
		Username:     "bob",
		AccessToken:  "T0",
		RefreshToken: "R0",
		GuildID:      "99",
	}

	// Credential3 verified against another guild.
	Credential3 = &entity.Credential{
		UserID:       "44",
		Username:     "carol",
		AccessToken:  "T3",
		RefreshToken: "R3",
		GuildID:      "100",
	}

	Credentials = []*entity.Credential{Credential1, Credential2, Credential3}
)

// CreateFixtureDb inserts the sample credentials. Expiry times are relative
// to now so that Credential1 is fresh and Credential2 is expired.
func CreateFixtureDb(ctx context.Context, now time.Time) {
	Credential1.ExpiresAt = now.Add(time.Hour).UTC()
	Credential2.ExpiresAt = now.Add(-time.Hour).UTC()
	Credential3.ExpiresAt = now.Add(time.Hour).UTC()

	for _, c := range Credentials {
		c.VerifiedAt = now.Add(-24 * time.Hour).UTC()
		if err := xcontext.DB(ctx).Create(c).Error; err != nil {
			panic(err)
		}
	}
}
