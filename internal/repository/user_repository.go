package repository

import (
	"errors"
	"medboard_backend/internal/model"
	"strings"
	"time"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	return &user, err
}

func (r *UserRepository) UpdateLastSeen(userID uint) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", userID).
		Update("last_seen_at", time.Now()).
		Error
}

// FindIdentity loads an identity together with its user.
func (r *UserRepository) FindIdentity(provider, providerUserID string) (*model.Identity, error) {
	var identity model.Identity
	err := r.DB.Preload("User").
		Where("provider = ? AND provider_user_id = ?", provider, providerUserID).
		First(&identity).Error
	if err != nil {
		return nil, err
	}
	return &identity, nil
}

// GetOrCreateFromIdentity resolves an external identity to a user. An
// existing identity wins; otherwise the identity is linked to the user with
// the same email, creating that user when there is none.
func (r *UserRepository) GetOrCreateFromIdentity(provider, providerUserID, email, name string) (*model.User, error) {
	var user model.User

	err := r.DB.Transaction(func(tx *gorm.DB) error {
		var identity model.Identity
		err := tx.Preload("User").
			Where("provider = ? AND provider_user_id = ?", provider, providerUserID).
			First(&identity).Error
		if err == nil && identity.User != nil {
			user = *identity.User
			return nil
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		email = strings.TrimSpace(email)
		err = tx.Where("email = ?", email).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user = model.User{Email: email, Name: name}
			err = tx.Create(&user).Error
		}
		if err != nil {
			return err
		}

		return tx.Create(&model.Identity{
			UserID:         user.ID,
			Provider:       provider,
			ProviderUserID: providerUserID,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) SetPasswordHash(userID uint, provider, hash string) error {
	res := r.DB.Model(&model.Identity{}).
		Where("user_id = ? AND provider = ?", userID, provider).
		Update("password_hash", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *UserRepository) FindSSOByDomain(domain string) (*model.SSOConfiguration, error) {
	var cfg model.SSOConfiguration
	err := r.DB.Where("domain = ?", strings.ToLower(domain)).First(&cfg).Error
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveSSO inserts cfg or overwrites the configuration already stored for its domain.
func (r *UserRepository) SaveSSO(cfg *model.SSOConfiguration) error {
	cfg.Domain = strings.ToLower(strings.TrimSpace(cfg.Domain))
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var existing model.SSOConfiguration
		err := tx.Where("domain = ?", cfg.Domain).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			active := cfg.IsActive
			if err := tx.Create(cfg).Error; err != nil {
				return err
			}
			// is_active 的数据库默认值为 true，零值不会写入
			if !active {
				cfg.IsActive = false
				return tx.Model(cfg).Update("is_active", false).Error
			}
			return nil
		}
		if err != nil {
			return err
		}
		cfg.ID = existing.ID
		cfg.CreatedAt = existing.CreatedAt
		return tx.Select("*").Omit("created_at").Save(cfg).Error
	})
}
