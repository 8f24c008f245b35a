package util

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailRegistered      = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrQuestionNotFound     = errors.New("question not found")
	ErrSSONotConfigured     = errors.New("SSO not configured for this institution")
	ErrInvalidVote          = errors.New("vote must be 'up' or 'down'")
	ErrServiceUnavailable   = errors.New("service temporarily unavailable")
	ErrAnalyticsUnavailable = errors.New("analytics temporarily unavailable")
)
