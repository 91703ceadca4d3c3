package models

import (
	"time"
)

// Session is an authenticated dashboard session. It holds the permission map
// built at login and the sealed upstream bearer token; both are discarded on
// logout.
type Session struct {
	ID           string        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       string        `gorm:"size:64;index;not null" json:"user_id"`
	LicenseID    string        `gorm:"size:64;index" json:"license_id,omitempty"`
	RoleID       string        `gorm:"size:64" json:"role_id,omitempty"`
	Email        string        `gorm:"size:255" json:"email"`
	DisplayName  string        `gorm:"size:255" json:"display_name"`
	IsSuperAdmin bool          `gorm:"default:false" json:"is_super_admin"`
	Permissions  PermissionMap `gorm:"type:jsonb;serializer:json;not null" json:"permissions"`
	SealedToken  []byte        `gorm:"not null" json:"-"` // Never expose the upstream token.
	ExpiresAt    time.Time     `gorm:"index;not null" json:"expires_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName pins the table name used by gorm.
func (Session) TableName() string {
	return "admin_sessions"
}

// Expired reports whether the session is no longer usable at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// SessionInfo is the public view of the current session.
type SessionInfo struct {
	UserID       string    `json:"userId"`
	LicenseID    string    `json:"licenseId,omitempty"`
	RoleID       string    `json:"roleId,omitempty"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"displayName"`
	IsSuperAdmin bool      `json:"isSuperAdmin"`
	Permissions  []string  `json:"permissions"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// ToInfo converts a session into its public view.
func (s *Session) ToInfo() *SessionInfo {
	granted := s.Permissions.Granted()
	return &SessionInfo{
		UserID:       s.UserID,
		LicenseID:    s.LicenseID,
		RoleID:       s.RoleID,
		Email:        s.Email,
		DisplayName:  s.DisplayName,
		IsSuperAdmin: s.IsSuperAdmin,
		Permissions:  granted,
		ExpiresAt:    s.ExpiresAt,
	}
}
