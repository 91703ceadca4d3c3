package models

import "strings"

// ModuleDTO is a platform feature area as exchanged with the upstream API.
// Its Key is the module-permission key referenced by roles and the menu.
type ModuleDTO struct {
	ID          FlexibleID `json:"id"`
	Key         string     `json:"key"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	IsActive    bool       `json:"is_active"`
}

// Module is the dashboard view of a platform module.
type Module struct {
	ID          string `json:"id"`
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"isActive"`
}

// RoleDTO is a role as exchanged with the upstream API.
type RoleDTO struct {
	ID          FlexibleID `json:"id,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Modules     []string   `json:"modules"`
}

// Role is the dashboard view of a role.
type Role struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Modules     []string `json:"modules"`
}

// RoleInput is the role form submitted by the dashboard.
type RoleInput struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Description string   `json:"description" validate:"max=500"`
	Modules     []string `json:"modules" validate:"required,min=1,dive,required"`
}

// ToModule maps the upstream DTO to its view model.
func (d *ModuleDTO) ToModule() Module {
	return Module{
		ID:          string(d.ID),
		Key:         d.Key,
		Name:        d.Name,
		Description: d.Description,
		IsActive:    d.IsActive,
	}
}

// ToRole maps the upstream DTO to its view model.
func (d *RoleDTO) ToRole() Role {
	modules := d.Modules
	if modules == nil {
		modules = []string{}
	}
	return Role{
		ID:          string(d.ID),
		Name:        d.Name,
		Description: d.Description,
		Modules:     modules,
	}
}

// ToDTO maps a validated role form to the upstream payload.
func (in *RoleInput) ToDTO(id string) *RoleDTO {
	modules := make([]string, 0, len(in.Modules))
	seen := make(map[string]struct{}, len(in.Modules))
	for _, key := range in.Modules {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		modules = append(modules, key)
	}
	return &RoleDTO{
		ID:          FlexibleID(id),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Modules:     modules,
	}
}
