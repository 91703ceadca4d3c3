package models

import (
	"strings"
	"time"
)

// UserDTO is a platform user as exchanged with the upstream API. The structure
// assignment travels flat: a "later" flag plus an optional type and id.
type UserDTO struct {
	ID                   FlexibleID `json:"id,omitempty"`
	LicenseID            FlexibleID `json:"license_id"`
	RoleID               FlexibleID `json:"role_id"`
	FirstName            string     `json:"first_name"`
	LastName             string     `json:"last_name"`
	Email                string     `json:"email"`
	DocumentNumber       string     `json:"document_number"`
	Password             string     `json:"password,omitempty"` // Only sent on create or reset.
	IsActive             bool       `json:"is_active"`
	AssignStructureLater bool       `json:"assign_structure_later"`
	StructureType        string     `json:"structure_type,omitempty"`
	StructureID          FlexibleID `json:"structure_id,omitempty"`
	CreatedAt            *time.Time `json:"created_at,omitempty"`
	UpdatedAt            *time.Time `json:"updated_at,omitempty"`
}

// User is the dashboard view of a platform user.
type User struct {
	ID             string             `json:"id"`
	LicenseID      string             `json:"licenseId"`
	RoleID         string             `json:"roleId"`
	FirstName      string             `json:"firstName"`
	LastName       string             `json:"lastName"`
	FullName       string             `json:"fullName"`
	Email          string             `json:"email"`
	DocumentNumber string             `json:"documentNumber"`
	IsActive       bool               `json:"isActive"`
	Structure      StructureSelection `json:"structure"`
	CreatedAt      *time.Time         `json:"createdAt,omitempty"`
	UpdatedAt      *time.Time         `json:"updatedAt,omitempty"`
}

// UserInput is the user form submitted by the dashboard.
type UserInput struct {
	FirstName            string `json:"firstName" validate:"required,max=100"`
	LastName             string `json:"lastName" validate:"required,max=100"`
	Email                string `json:"email" validate:"required,email,max=255"`
	DocumentNumber       string `json:"documentNumber" validate:"required,alphanum,min=6,max=20"`
	RoleID               string `json:"roleId" validate:"required"`
	Password             string `json:"password" validate:"omitempty,min=8,max=72"`
	IsActive             *bool  `json:"isActive"`
	AssignStructureLater bool   `json:"assignStructureLater"`
	StructureType        string `json:"structureType"`
	StructureID          string `json:"structureId"`
}

// Draft returns the structure selector state carried by the form.
func (in *UserInput) Draft() (SelectionDraft, error) {
	level, err := ParseLevel(in.StructureType)
	if err != nil {
		return SelectionDraft{}, err
	}
	return SelectionDraft{Type: level, ID: strings.TrimSpace(in.StructureID)}, nil
}

// Selection decodes the flat upstream assignment into a StructureSelection.
// Incomplete or unknown assignments are treated as deferred.
func (d *UserDTO) Selection() StructureSelection {
	if d.AssignStructureLater {
		return Deferred{}
	}
	level, err := ParseLevel(d.StructureType)
	id := strings.TrimSpace(string(d.StructureID))
	if err != nil || level == LevelNone || id == "" {
		return Deferred{}
	}
	return Assigned{Type: level, ID: id}
}

// SetSelection flattens a StructureSelection onto the upstream DTO.
func (d *UserDTO) SetSelection(sel StructureSelection) {
	switch s := sel.(type) {
	case Assigned:
		d.AssignStructureLater = false
		d.StructureType = string(s.Type)
		d.StructureID = FlexibleID(s.ID)
	default:
		d.AssignStructureLater = true
		d.StructureType = ""
		d.StructureID = ""
	}
}

// ToUser maps the upstream DTO to its view model.
func (d *UserDTO) ToUser() *User {
	if d == nil {
		return nil
	}
	return &User{
		ID:             string(d.ID),
		LicenseID:      string(d.LicenseID),
		RoleID:         string(d.RoleID),
		FirstName:      d.FirstName,
		LastName:       d.LastName,
		FullName:       strings.TrimSpace(d.FirstName + " " + d.LastName),
		Email:          d.Email,
		DocumentNumber: d.DocumentNumber,
		IsActive:       d.IsActive,
		Structure:      d.Selection(),
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

// ToDTO maps a validated form and its finalized structure selection to the
// upstream payload.
func (in *UserInput) ToDTO(id, licenseID string, sel StructureSelection) *UserDTO {
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	dto := &UserDTO{
		ID:             FlexibleID(id),
		LicenseID:      FlexibleID(licenseID),
		RoleID:         FlexibleID(strings.TrimSpace(in.RoleID)),
		FirstName:      strings.TrimSpace(in.FirstName),
		LastName:       strings.TrimSpace(in.LastName),
		Email:          strings.ToLower(strings.TrimSpace(in.Email)),
		DocumentNumber: strings.TrimSpace(in.DocumentNumber),
		Password:       in.Password,
		IsActive:       active,
	}
	dto.SetSelection(sel)
	return dto
}
