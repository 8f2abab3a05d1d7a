package repository

import (
	"context"
	"time"

	"github.com/questx-lab/guildsync/internal/entity"
	"github.com/questx-lab/guildsync/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CredentialRepository interface {
	Upsert(ctx context.Context, data *entity.Credential) error
	Get(ctx context.Context, userID string) (*entity.Credential, error)
	GetList(ctx context.Context) ([]entity.Credential, error)
	UpdateCredential(ctx context.Context, userID, accessToken, refreshToken string, expiresAt time.Time) error
	CountByGuildID(ctx context.Context, guildID string) (int64, error)
}

type credentialRepository struct{}

func NewCredentialRepository() *credentialRepository {
	return &credentialRepository{}
}

func (r *credentialRepository) Upsert(ctx context.Context, data *entity.Credential) error {
	record := *data
	record.ExpiresAt = record.ExpiresAt.UTC()
	record.VerifiedAt = record.VerifiedAt.UTC()

	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(&record).Error
}

func (r *credentialRepository) Get(ctx context.Context, userID string) (*entity.Credential, error) {
	var record entity.Credential
	if err := xcontext.DB(ctx).Where("user_id=?", userID).Take(&record).Error; err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *credentialRepository) GetList(ctx context.Context) ([]entity.Credential, error) {
	var result []entity.Credential
	if err := xcontext.DB(ctx).Order("verified_at DESC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

// UpdateCredential replaces the token pair and expiry of an existing record.
// It returns gorm.ErrRecordNotFound if no record matches userID.
func (r *credentialRepository) UpdateCredential(
	ctx context.Context, userID, accessToken, refreshToken string, expiresAt time.Time,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Credential{}).
		Where("user_id=?", userID).
		Updates(map[string]any{
			"access_token":  accessToken,
			"refresh_token": refreshToken,
			"expires_at":    expiresAt.UTC(),
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected > 0 {
		return nil
	}

	// MySQL does not count a row whose values did not change.
	var count int64
	err := xcontext.DB(ctx).Model(&entity.Credential{}).Where("user_id=?", userID).Count(&count).Error
	if err != nil {
		return err
	}

	if count == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *credentialRepository) CountByGuildID(ctx context.Context, guildID string) (int64, error) {
	var result int64
	err := xcontext.DB(ctx).
		Model(&entity.Credential{}).
		Where("guild_id=?", guildID).
		Count(&result).Error
	if err != nil {
		return 0, err
	}

	return result, nil
}
