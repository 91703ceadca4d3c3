package models

import "encoding/json"

// LoginRequest represents dashboard login credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	AccessToken string       `json:"accessToken"`
	ExpiresIn   int          `json:"expiresIn"`
	TokenType   string       `json:"tokenType"`
	Session     *SessionInfo `json:"session"`
	Menu        []MenuNode   `json:"menu"`
}

// UpstreamLoginDTO is the upstream authentication payload.
type UpstreamLoginDTO struct {
	Token       string          `json:"token"`
	User        UpstreamUserDTO `json:"user"`
	Permissions json.RawMessage `json:"permissions"`
}

// UpstreamUserDTO is the authenticated user embedded in UpstreamLoginDTO.
type UpstreamUserDTO struct {
	ID           FlexibleID `json:"id"`
	LicenseID    FlexibleID `json:"license_id"`
	RoleID       FlexibleID `json:"role_id"`
	Email        string     `json:"email"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	IsSuperAdmin bool       `json:"is_super_admin"`
}

// SelectorRequest carries the structure selector state the dashboard holds.
type SelectorRequest struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Mode string `json:"mode" validate:"omitempty,oneof=create edit"`
}

// IntrospectionRequest asks whether a session token is still active.
type IntrospectionRequest struct {
	Token string `json:"token" validate:"required"`
}

// IntrospectionResponse describes a session token.
type IntrospectionResponse struct {
	Active    bool     `json:"active"`
	Sub       string   `json:"sub,omitempty"`
	SessionID string   `json:"sid,omitempty"`
	LicenseID string   `json:"license_id,omitempty"`
	Scopes    []string `json:"scope,omitempty"`
	IssuedAt  *int64   `json:"iat,omitempty"`
	ExpiresAt *int64   `json:"exp,omitempty"`
	TokenType string   `json:"token_type,omitempty"`
}
