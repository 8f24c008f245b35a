package model

import "time"

// Identity providers
const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
	ProviderSSO      = "sso"
)

// swagger:model User
type User struct {
	BaseModel
	Email      string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Name       string     `gorm:"size:255" json:"name"`
	LastSeenAt *time.Time `json:"lastSeenAt,omitempty"`
	Identities []Identity `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// Identity is one way a user can authenticate. A user may own several.
type Identity struct {
	BaseModel
	UserID         uint   `gorm:"not null;index" json:"userId"`
	User           *User  `gorm:"foreignKey:UserID" json:"-"`
	Provider       string `gorm:"size:50;not null;uniqueIndex:idx_identity_provider_user" json:"provider"`
	ProviderUserID string `gorm:"size:255;not null;uniqueIndex:idx_identity_provider_user" json:"providerUserId"`
	PasswordHash   string `gorm:"size:255" json:"-"`
}

func (Identity) TableName() string {
	return "identities"
}

// SSOConfiguration holds the identity-provider settings of a partner institution.
type SSOConfiguration struct {
	BaseModel
	InstitutionName string `gorm:"size:255;uniqueIndex;not null" json:"institutionName"`
	Domain          string `gorm:"size:255;uniqueIndex;not null" json:"domain"`
	IsActive        bool   `gorm:"default:true" json:"isActive"`
	IdPEntityID     string `gorm:"size:255" json:"idpEntityId"`
	IdPSSOURL       string `gorm:"size:512" json:"idpSsoUrl"`
	IdPX509Cert     string `gorm:"type:text" json:"-"`
}

func (SSOConfiguration) TableName() string {
	return "sso_configurations"
}
