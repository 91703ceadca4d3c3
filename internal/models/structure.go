package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// OrganizationalNode is one node of a license's structure tree. Its children
// always sit at Level.Child().
type OrganizationalNode struct {
	Level          Level                `json:"level"`
	ID             string               `json:"id"`
	Name           string               `json:"name"`
	Status         bool                 `json:"status"`
	ParentPosition *string              `json:"parentPosition,omitempty"`
	Children       []OrganizationalNode `json:"children,omitempty"`
}

// StructureTree is the organizational structure owned by one license. The
// license itself is the root; Companies hold the rest of the hierarchy.
type StructureTree struct {
	LicenseID string               `json:"licenseId"`
	Name      string               `json:"name"`
	Companies []OrganizationalNode `json:"companies"`
}

// HasRoot reports whether the tree carries a root identifier.
func (t *StructureTree) HasRoot() bool {
	return t != nil && strings.TrimSpace(t.LicenseID) != ""
}

// StructureTreeDTO is the upstream representation of a license structure.
type StructureTreeDTO struct {
	LicenseID FlexibleID   `json:"license_id"`
	Name      string       `json:"name"`
	Companies []CompanyDTO `json:"companies"`
}

// CompanyDTO is a company node as sent by the upstream API.
type CompanyDTO struct {
	ID             FlexibleID   `json:"comp_iden"`
	Name           string       `json:"name"`
	Status         FlexibleBool `json:"status"`
	ParentPosition *string      `json:"parent_position,omitempty"`
	Branches       []BranchDTO  `json:"branches"`
}

// BranchDTO is a branch ("sede") node as sent by the upstream API.
type BranchDTO struct {
	ID             FlexibleID      `json:"branch_id"`
	Name           string          `json:"name"`
	Status         FlexibleBool    `json:"status"`
	ParentPosition *string         `json:"parent_position,omitempty"`
	Departments    []DepartmentDTO `json:"departments"`
}

// DepartmentDTO is a department node as sent by the upstream API.
type DepartmentDTO struct {
	ID             FlexibleID   `json:"dept_id"`
	Name           string       `json:"name"`
	Status         FlexibleBool `json:"status"`
	ParentPosition *string      `json:"parent_position,omitempty"`
	Sections       []SectionDTO `json:"sections"`
}

// SectionDTO is a section node as sent by the upstream API.
type SectionDTO struct {
	ID             FlexibleID   `json:"section_id"`
	Name           string       `json:"name"`
	Status         FlexibleBool `json:"status"`
	ParentPosition *string      `json:"parent_position,omitempty"`
	Units          []UnitDTO    `json:"units"`
}

// UnitDTO is a unit node as sent by the upstream API.
type UnitDTO struct {
	ID             FlexibleID   `json:"unit_id"`
	Name           string       `json:"name"`
	Status         FlexibleBool `json:"status"`
	ParentPosition *string      `json:"parent_position,omitempty"`
}

// ToTree converts the upstream payload into a StructureTree. A nil receiver
// yields a nil tree.
func (d *StructureTreeDTO) ToTree() *StructureTree {
	if d == nil {
		return nil
	}

	tree := &StructureTree{
		LicenseID: strings.TrimSpace(string(d.LicenseID)),
		Name:      strings.TrimSpace(d.Name),
		Companies: make([]OrganizationalNode, 0, len(d.Companies)),
	}
	for _, company := range d.Companies {
		node := newNode(LevelCompany, company.ID, company.Name, company.Status, company.ParentPosition)
		for _, branch := range company.Branches {
			branchNode := newNode(LevelSede, branch.ID, branch.Name, branch.Status, branch.ParentPosition)
			for _, dept := range branch.Departments {
				deptNode := newNode(LevelDepartment, dept.ID, dept.Name, dept.Status, dept.ParentPosition)
				for _, section := range dept.Sections {
					sectionNode := newNode(LevelSection, section.ID, section.Name, section.Status, section.ParentPosition)
					for _, unit := range section.Units {
						sectionNode.Children = append(sectionNode.Children,
							newNode(LevelUnit, unit.ID, unit.Name, unit.Status, unit.ParentPosition))
					}
					deptNode.Children = append(deptNode.Children, sectionNode)
				}
				branchNode.Children = append(branchNode.Children, deptNode)
			}
			node.Children = append(node.Children, branchNode)
		}
		tree.Companies = append(tree.Companies, node)
	}

	if tree.Name == "" && len(tree.Companies) > 0 {
		tree.Name = tree.Companies[0].Name
	}
	return tree
}

func newNode(level Level, id FlexibleID, name string, status FlexibleBool, parent *string) OrganizationalNode {
	return OrganizationalNode{
		Level:          level,
		ID:             strings.TrimSpace(string(id)),
		Name:           strings.TrimSpace(name),
		Status:         bool(status),
		ParentPosition: parent,
	}
}

// FlexibleID accepts identifiers encoded either as JSON strings or numbers.
type FlexibleID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("identifier must be a string or number: %w", err)
	}
	*id = FlexibleID(n.String())
	return nil
}

// FlexibleBool accepts booleans encoded as JSON bools, 0/1 numbers, or the
// strings "true"/"false"/"active"/"inactive".
type FlexibleBool bool

// UnmarshalJSON implements json.Unmarshaler.
func (b *FlexibleBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*b = false
		return nil
	case bytes.Equal(data, []byte("true")):
		*b = true
		return nil
	case bytes.Equal(data, []byte("false")):
		*b = false
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "1", "active", "activo", "enabled":
			*b = true
		default:
			*b = false
		}
		return nil
	}

	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("status must be a bool, number or string: %w", err)
	}
	*b = n != 0
	return nil
}
