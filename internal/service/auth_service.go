package service

import (
	"errors"
	"strings"

	"medboard_backend/internal/config"
	"medboard_backend/internal/model"
	"medboard_backend/internal/util"

	"github.com/jinzhu/copier"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserStore interface {
	FindByID(id uint) (*model.User, error)
	FindIdentity(provider, providerUserID string) (*model.Identity, error)
	GetOrCreateFromIdentity(provider, providerUserID, email, name string) (*model.User, error)
	SetPasswordHash(userID uint, provider, hash string) error
	FindSSOByDomain(domain string) (*model.SSOConfiguration, error)
}

type AuthService struct {
	UserRepo UserStore
	Cfg      *config.Config
}

func NewAuthService(userRepo UserStore, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Cfg:      cfg,
	}
}

// Signup registers a password identity keyed by email. An email that already
// has a password identity is rejected with util.ErrEmailRegistered; a user
// known through another provider gets the password identity linked.
func (s *AuthService) Signup(email, password, name string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	_, err := s.UserRepo.FindIdentity(model.ProviderPassword, email)
	if err == nil {
		return nil, util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := s.UserRepo.GetOrCreateFromIdentity(model.ProviderPassword, email, email, name)
	if err != nil {
		return nil, err
	}
	if err := s.UserRepo.SetPasswordHash(user.ID, model.ProviderPassword, string(hashed)); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Login(email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	identity, err := s.UserRepo.FindIdentity(model.ProviderPassword, email)
	if err != nil || identity.User == nil {
		return "", util.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)); err != nil {
		return "", util.ErrInvalidCredentials
	}

	return util.GenerateJWT(identity.User, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
}

// SSOLogin resolves the institution configured for the email's domain.
func (s *AuthService) SSOLogin(email string) (*model.SSOConfiguration, error) {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return nil, util.ErrSSONotConfigured
	}

	cfg, err := s.UserRepo.FindSSOByDomain(strings.TrimSpace(email[at+1:]))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSSONotConfigured
		}
		return nil, err
	}
	if !cfg.IsActive {
		return nil, util.ErrSSONotConfigured
	}
	return cfg, nil
}

func (s *AuthService) CurrentUser(userID uint) (*model.UserProfile, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	var profile model.UserProfile
	if err := copier.Copy(&profile, user); err != nil {
		return nil, err
	}
	return &profile, nil
}
