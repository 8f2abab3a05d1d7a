package repository

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/questx-lab/guildsync/internal/entity"
	"github.com/questx-lab/guildsync/pkg/testutil"
	"github.com/questx-lab/guildsync/pkg/xcontext"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type CredentialRepositoryTestSuite struct {
	suite.Suite

	now  time.Time
	repo CredentialRepository
}

func TestCredentialRepositorySuite(t *testing.T) {
	suite.Run(t, new(CredentialRepositoryTestSuite))
}

func (s *CredentialRepositoryTestSuite) SetupTest() {
	s.now = time.Now().UTC().Truncate(time.Second)
	s.repo = NewCredentialRepository()
}

func (s *CredentialRepositoryTestSuite) record() *entity.Credential {
	return &entity.Credential{
		UserID:       "42",
		Username:     "alice",
		AccessToken:  "T1",
		RefreshToken: "R1",
		ExpiresAt:    s.now.Add(time.Hour),
		VerifiedAt:   s.now,
		GuildID:      "99",
	}
}

func (s *CredentialRepositoryTestSuite) TestUpsertIsIdempotent() {
	ctx := testutil.MockContext()

	s.Require().NoError(s.repo.Upsert(ctx, s.record()))
	first, err := s.repo.Get(ctx, "42")
	s.Require().NoError(err)

	s.Require().NoError(s.repo.Upsert(ctx, s.record()))
	second, err := s.repo.Get(ctx, "42")
	s.Require().NoError(err)

	s.Require().Equal(first.AccessToken, second.AccessToken)
	s.Require().Equal(first.RefreshToken, second.RefreshToken)
	s.Require().True(first.ExpiresAt.Equal(second.ExpiresAt))
	s.Require().True(first.VerifiedAt.Equal(second.VerifiedAt))

	list, err := s.repo.GetList(ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
}

func (s *CredentialRepositoryTestSuite) TestUpsertReplacesWholesale() {
	ctx := testutil.MockContext()
	s.Require().NoError(s.repo.Upsert(ctx, s.record()))

	replacement := s.record()
	replacement.Username = "alice2"
	replacement.AccessToken = "T9"
	replacement.RefreshToken = "R9"
	replacement.GuildID = ""
	replacement.ExpiresAt = s.now.Add(2 * time.Hour)
	s.Require().NoError(s.repo.Upsert(ctx, replacement))

	got, err := s.repo.Get(ctx, "42")
	s.Require().NoError(err)
	s.Require().Equal("alice2", got.Username)
	s.Require().Equal("T9", got.AccessToken)
	s.Require().Equal("R9", got.RefreshToken)
	s.Require().Equal("", got.GuildID)
	s.Require().True(replacement.ExpiresAt.Equal(got.ExpiresAt))
}

func (s *CredentialRepositoryTestSuite) TestGetNotFound() {
	ctx := testutil.MockContext()

	_, err := s.repo.Get(ctx, "404")
	s.Require().True(errors.Is(err, gorm.ErrRecordNotFound))
}

func (s *CredentialRepositoryTestSuite) TestUpdateCredentialTouchesOnlyTokens() {
	ctx := testutil.MockContext()
	s.Require().NoError(s.repo.Upsert(ctx, s.record()))

	expiresAt := s.now.Add(3 * time.Hour)
	s.Require().NoError(s.repo.UpdateCredential(ctx, "42", "T2", "R2", expiresAt))

	got, err := s.repo.Get(ctx, "42")
	s.Require().NoError(err)
	s.Require().Equal("T2", got.AccessToken)
	s.Require().Equal("R2", got.RefreshToken)
	s.Require().True(expiresAt.Equal(got.ExpiresAt))
	s.Require().Equal("alice", got.Username)
	s.Require().Equal("99", got.GuildID)
	s.Require().True(s.now.Equal(got.VerifiedAt))
}

func (s *CredentialRepositoryTestSuite) TestUpdateCredentialNotFound() {
	ctx := testutil.MockContext()

	err := s.repo.UpdateCredential(ctx, "404", "T2", "R2", s.now)
	s.Require().ErrorIs(err, gorm.ErrRecordNotFound)

	var count int64
	s.Require().NoError(xcontext.DB(ctx).Model(&entity.Credential{}).Count(&count).Error)
	s.Require().Zero(count)
}

func (s *CredentialRepositoryTestSuite) TestCountByGuildID() {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx, s.now)

	count, err := s.repo.CountByGuildID(ctx, "99")
	s.Require().NoError(err)
	s.Require().Equal(int64(2), count)

	count, err = s.repo.CountByGuildID(ctx, "unknown")
	s.Require().NoError(err)
	s.Require().Zero(count)
}

func Test_CredentialRepository_ConcurrentUpserts(t *testing.T) {
	ctx := testutil.MockContext()
	repo := NewCredentialRepository()
	now := time.Now().UTC()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			token := string(rune('a' + i))
			require.NoError(t, repo.Upsert(ctx, &entity.Credential{
				UserID:       "42",
				AccessToken:  "T" + token,
				RefreshToken: "R" + token,
				ExpiresAt:    now,
				VerifiedAt:   now,
			}))
		}(i)
	}
	wg.Wait()

	// The winner's pair must never be split across two writes.
	got, err := repo.Get(ctx, "42")
	require.NoError(t, err)
	require.Equal(t, got.AccessToken[1:], got.RefreshToken[1:])
}
