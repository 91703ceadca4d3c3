package models

import (
	"strings"
	"time"
)

// DateLayout is the calendar-date format used by license validity fields.
const DateLayout = "2006-01-02"

// LicenseStatus describes the lifecycle state of a license.
type LicenseStatus string

const (
	LicenseStatusActive    LicenseStatus = "active"
	LicenseStatusSuspended LicenseStatus = "suspended"
	LicenseStatusExpired   LicenseStatus = "expired"
)

// LicenseDTO is a tenant license as exchanged with the upstream API.
type LicenseDTO struct {
	ID           FlexibleID    `json:"id,omitempty"`
	CompanyName  string        `json:"company_name"`
	TaxID        string        `json:"tax_id"`
	Plan         string        `json:"plan"`
	MaxUsers     int           `json:"max_users"`
	Status       LicenseStatus `json:"status"`
	StartsAt     string        `json:"starts_at"`
	ExpiresAt    string        `json:"expires_at"`
	ContactEmail string        `json:"contact_email"`
	CreatedAt    *time.Time    `json:"created_at,omitempty"`
	UpdatedAt    *time.Time    `json:"updated_at,omitempty"`
}

// License is the dashboard view of a license.
type License struct {
	ID           string        `json:"id"`
	CompanyName  string        `json:"companyName"`
	TaxID        string        `json:"taxId"`
	Plan         string        `json:"plan"`
	MaxUsers     int           `json:"maxUsers"`
	Status       LicenseStatus `json:"status"`
	StartsAt     string        `json:"startsAt"`
	ExpiresAt    string        `json:"expiresAt"`
	ContactEmail string        `json:"contactEmail"`
	CreatedAt    *time.Time    `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time    `json:"updatedAt,omitempty"`
}

// LicenseInput is the license form submitted by the dashboard.
type LicenseInput struct {
	CompanyName  string `json:"companyName" validate:"required,max=255"`
	TaxID        string `json:"taxId" validate:"required,max=32"`
	Plan         string `json:"plan" validate:"required,oneof=basic standard premium enterprise"`
	MaxUsers     int    `json:"maxUsers" validate:"required,min=1,max=100000"`
	Status       string `json:"status" validate:"omitempty,oneof=active suspended expired"`
	StartsAt     string `json:"startsAt" validate:"required,datetime=2006-01-02"`
	ExpiresAt    string `json:"expiresAt" validate:"required,datetime=2006-01-02"`
	ContactEmail string `json:"contactEmail" validate:"required,email"`
}

// ToLicense maps the upstream DTO to its view model.
func (d *LicenseDTO) ToLicense() *License {
	if d == nil {
		return nil
	}
	return &License{
		ID:           string(d.ID),
		CompanyName:  d.CompanyName,
		TaxID:        d.TaxID,
		Plan:         d.Plan,
		MaxUsers:     d.MaxUsers,
		Status:       d.Status,
		StartsAt:     d.StartsAt,
		ExpiresAt:    d.ExpiresAt,
		ContactEmail: d.ContactEmail,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// ToDTO maps a validated form to the upstream payload.
func (in *LicenseInput) ToDTO(id string) *LicenseDTO {
	status := LicenseStatus(strings.TrimSpace(in.Status))
	if status == "" {
		status = LicenseStatusActive
	}
	return &LicenseDTO{
		ID:           FlexibleID(id),
		CompanyName:  strings.TrimSpace(in.CompanyName),
		TaxID:        strings.TrimSpace(in.TaxID),
		Plan:         strings.ToLower(strings.TrimSpace(in.Plan)),
		MaxUsers:     in.MaxUsers,
		Status:       status,
		StartsAt:     strings.TrimSpace(in.StartsAt),
		ExpiresAt:    strings.TrimSpace(in.ExpiresAt),
		ContactEmail: strings.ToLower(strings.TrimSpace(in.ContactEmail)),
	}
}
