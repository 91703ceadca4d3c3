package models

import "encoding/json"

// StructureSelection is where a record sits in its license's organizational
// structure. It is either Deferred or Assigned; there is no other variant.
type StructureSelection interface {
	isStructureSelection()
	// IsDeferred reports whether the placement is left for later.
	IsDeferred() bool
}

// Deferred marks a record whose structure placement will be assigned later.
type Deferred struct{}

// Assigned places a record on a concrete node of the structure tree.
type Assigned struct {
	Type Level
	ID   string
}

func (Deferred) isStructureSelection() {}
func (Assigned) isStructureSelection() {}

// IsDeferred implements StructureSelection.
func (Deferred) IsDeferred() bool { return true }

// IsDeferred implements StructureSelection.
func (Assigned) IsDeferred() bool { return false }

// MarshalJSON renders the deferred variant for the dashboard.
func (Deferred) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind string `json:"kind"`
	}{Kind: "deferred"})
}

// MarshalJSON renders the assigned variant for the dashboard.
func (a Assigned) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind string `json:"kind"`
		Type Level  `json:"type"`
		ID   string `json:"id"`
	}{Kind: "assigned", Type: a.Type, ID: a.ID})
}

// SelectionDraft is the in-progress state of a structure selector: either
// field may still be empty.
type SelectionDraft struct {
	Type Level  `json:"type"`
	ID   string `json:"id"`
}

// IsEmpty reports whether neither a level nor a node has been chosen.
func (d SelectionDraft) IsEmpty() bool {
	return d.Type == LevelNone && d.ID == ""
}

// DraftOf returns the draft a selector would show for an existing selection.
func DraftOf(sel StructureSelection) SelectionDraft {
	if assigned, ok := sel.(Assigned); ok {
		return SelectionDraft{Type: assigned.Type, ID: assigned.ID}
	}
	return SelectionDraft{}
}
