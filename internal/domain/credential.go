package domain

import (
	"context"
	"errors"
	"time"

	"github.com/questx-lab/guildsync/internal/entity"
	"github.com/questx-lab/guildsync/internal/model"
	"github.com/questx-lab/guildsync/internal/repository"
	"github.com/questx-lab/guildsync/pkg/api/discord"
	"github.com/questx-lab/guildsync/pkg/crypto"
	"github.com/questx-lab/guildsync/pkg/errorx"
	"github.com/questx-lab/guildsync/pkg/keylock"
	"github.com/questx-lab/guildsync/pkg/xcontext"
	"gorm.io/gorm"
)

// persistTimeout bounds the store write which follows a successful call to the
// provider. That write outlives the caller's context.
const persistTimeout = 5 * time.Second

type CredentialDomain interface {
	Verify(context.Context, *model.VerifyRequest) (*model.VerifyResponse, error)
	EnsureFresh(context.Context, *model.EnsureFreshRequest) (*model.EnsureFreshResponse, error)
	EnsureMembership(context.Context, *model.EnsureMembershipRequest) (*model.EnsureMembershipResponse, error)
	GetList(context.Context, *model.GetListCredentialRequest) (*model.GetListCredentialResponse, error)
	GetStats(context.Context, *model.GetCredentialStatsRequest) (*model.GetCredentialStatsResponse, error)
}

type credentialDomain struct {
	credentialRepo  repository.CredentialRepository
	tokenExchanger  discord.TokenExchanger
	membershipAdder discord.MembershipAdder
	userLocker      keylock.Locker

	now func() time.Time
}

func NewCredentialDomain(
	credentialRepo repository.CredentialRepository,
	tokenExchanger discord.TokenExchanger,
	membershipAdder discord.MembershipAdder,
	userLocker keylock.Locker,
) *credentialDomain {
	return &credentialDomain{
		credentialRepo:  credentialRepo,
		tokenExchanger:  tokenExchanger,
		membershipAdder: membershipAdder,
		userLocker:      userLocker,
		now:             time.Now,
	}
}

func (d *credentialDomain) Verify(
	ctx context.Context, req *model.VerifyRequest,
) (*model.VerifyResponse, error) {
	if req.Code == "" {
		return nil, errorx.New(errorx.BadRequest, "No code provided")
	}

	if req.GuildID != "" && !discord.IsSnowflake(req.GuildID) {
		return nil, errorx.New(errorx.BadRequest, "Invalid guild id")
	}

	grant, err := d.tokenExchanger.ExchangeCode(ctx, req.Code)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot exchange authorization code: %v", err)
		return nil, errorx.Wrap(err, errorx.VerificationFailed, "Failed to get token")
	}
	issuedAt := d.now()

	user, err := d.tokenExchanger.GetMe(ctx, grant.AccessToken)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot get identity of token %s: %v", crypto.Fingerprint(grant.AccessToken), err)
		return nil, errorx.Wrap(err, errorx.VerificationFailed, "Failed to get user info")
	}

	// The code is spent, so the grant is stored even if the caller goes away.
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	unlock, err := d.userLocker.Lock(persistCtx, user.ID)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Unavailable, "Cannot lock user")
	}

	err = d.credentialRepo.Upsert(persistCtx, &entity.Credential{
		UserID:       user.ID,
		Username:     user.Username,
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		ExpiresAt:    issuedAt.Add(grant.ExpiresIn),
		VerifiedAt:   issuedAt,
		GuildID:      req.GuildID,
	})
	unlock()
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot save credential of user %s: %v", user.ID, err)
		return nil, errorx.Unknown
	}

	xcontext.Logger(ctx).Infof("Verified user %s (%s) with token %s",
		user.ID, user.Username, crypto.Fingerprint(grant.AccessToken))

	resp := &model.VerifyResponse{
		UserID:   user.ID,
		Username: user.Username,
		GuildID:  req.GuildID,
	}

	if req.GuildID != "" {
		// The credential stays valid whatever happens to the membership.
		status, err := d.membershipAdder.AddGuildMember(ctx, req.GuildID, user.ID, grant.AccessToken)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot add user %s to guild %s: %v", user.ID, req.GuildID, err)
		} else {
			resp.MemberAdded = discord.IsMemberAdded(status)
			if !resp.MemberAdded {
				xcontext.Logger(ctx).Warnf("Guild %s answered %d for user %s", req.GuildID, status, user.ID)
			}
		}
	}

	return resp, nil
}

func (d *credentialDomain) EnsureFresh(
	ctx context.Context, req *model.EnsureFreshRequest,
) (*model.EnsureFreshResponse, error) {
	if req.UserID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty user id")
	}

	unlock, err := d.userLocker.Lock(ctx, req.UserID)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Unavailable, "Cannot lock user")
	}
	defer unlock()

	credential, err := d.credentialRepo.Get(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Member not found")
		}

		xcontext.Logger(ctx).Errorf("Cannot get credential of user %s: %v", req.UserID, err)
		return nil, errorx.Unknown
	}

	if !req.Force && !credential.IsExpired(d.now()) {
		return &model.EnsureFreshResponse{
			AccessToken: credential.AccessToken,
			ExpiresAt:   credential.ExpiresAt,
			Refreshed:   false,
		}, nil
	}

	grant, err := d.tokenExchanger.RefreshToken(ctx, credential.RefreshToken)
	if err != nil {
		if discord.IsTokenRejected(err) {
			xcontext.Logger(ctx).Warnf("Refresh token %s of user %s was rejected: %v",
				crypto.Fingerprint(credential.RefreshToken), req.UserID, err)
			return nil, errorx.Wrap(err, errorx.RefreshFailed, "Refresh failed, user needs to reverify")
		}

		xcontext.Logger(ctx).Warnf("Cannot refresh token of user %s: %v", req.UserID, err)
		return nil, errorx.Wrap(err, errorx.ProviderError, "Cannot reach the identity provider")
	}
	issuedAt := d.now()

	refreshToken := grant.RefreshToken
	if refreshToken == "" {
		// The provider did not rotate the refresh token.
		refreshToken = credential.RefreshToken
	}

	// The provider has already rotated the tokens, the old refresh token is
	// dead whether or not the caller is still waiting.
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	expiresAt := issuedAt.Add(grant.ExpiresIn)
	err = d.credentialRepo.UpdateCredential(persistCtx, req.UserID, grant.AccessToken, refreshToken, expiresAt)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Member not found")
		}

		xcontext.Logger(ctx).Errorf("Cannot update credential of user %s: %v", req.UserID, err)
		return nil, errorx.Unknown
	}

	xcontext.Logger(ctx).Infof("Refreshed token of user %s: %s -> %s", req.UserID,
		crypto.Fingerprint(credential.AccessToken), crypto.Fingerprint(grant.AccessToken))

	return &model.EnsureFreshResponse{
		AccessToken: grant.AccessToken,
		ExpiresAt:   expiresAt,
		Refreshed:   true,
	}, nil
}

func (d *credentialDomain) EnsureMembership(
	ctx context.Context, req *model.EnsureMembershipRequest,
) (*model.EnsureMembershipResponse, error) {
	if !discord.IsSnowflake(req.GuildID) {
		return nil, errorx.New(errorx.BadRequest, "Invalid guild id")
	}

	fresh, err := d.EnsureFresh(ctx, &model.EnsureFreshRequest{UserID: req.UserID})
	if err != nil {
		return nil, err
	}

	status, err := d.membershipAdder.AddGuildMember(ctx, req.GuildID, req.UserID, fresh.AccessToken)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot add user %s to guild %s: %v", req.UserID, req.GuildID, err)
		return nil, errorx.Wrap(err, errorx.MembershipCallFailed, "Cannot reach the guild API")
	}

	success := discord.IsMemberAdded(status)
	if !success {
		xcontext.Logger(ctx).Infof("Guild %s answered %d for user %s", req.GuildID, status, req.UserID)
	}

	return &model.EnsureMembershipResponse{Success: success, Status: status}, nil
}

func (d *credentialDomain) GetList(
	ctx context.Context, req *model.GetListCredentialRequest,
) (*model.GetListCredentialResponse, error) {
	credentials, err := d.credentialRepo.GetList(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get list of credentials: %v", err)
		return nil, errorx.Unknown
	}

	now := d.now()
	result := make([]model.Credential, 0, len(credentials))
	for _, c := range credentials {
		result = append(result, convertCredential(&c, now, req.IncludeTokens))
	}

	return &model.GetListCredentialResponse{Credentials: result}, nil
}

func (d *credentialDomain) GetStats(
	ctx context.Context, req *model.GetCredentialStatsRequest,
) (*model.GetCredentialStatsResponse, error) {
	if !discord.IsSnowflake(req.GuildID) {
		return nil, errorx.New(errorx.BadRequest, "Invalid guild id")
	}

	count, err := d.credentialRepo.CountByGuildID(ctx, req.GuildID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count credentials of guild %s: %v", req.GuildID, err)
		return nil, errorx.Unknown
	}

	return &model.GetCredentialStatsResponse{GuildID: req.GuildID, VerifiedCount: count}, nil
}

func convertCredential(c *entity.Credential, now time.Time, includeTokens bool) model.Credential {
	result := model.Credential{
		UserID:       c.UserID,
		Username:     c.Username,
		AccessToken:  crypto.Fingerprint(c.AccessToken),
		RefreshToken: crypto.Fingerprint(c.RefreshToken),
		ExpiresAt:    c.ExpiresAt,
		VerifiedAt:   c.VerifiedAt,
		GuildID:      c.GuildID,
		Expired:      c.IsExpired(now),
	}

	if includeTokens {
		result.AccessToken = c.AccessToken
		result.RefreshToken = c.RefreshToken
	}

	return result
}
