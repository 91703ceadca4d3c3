package structure

import (
	"fmt"

	"github.com/lee-tech/workforce-admin/internal/models"
)

// Mode tells the selector whether it backs a create or an edit form.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// ParseMode maps a form mode to a Mode, defaulting to ModeEdit so that
// unknown callers never trigger auto-selection.
func ParseMode(raw string) Mode {
	if Mode(raw) == ModeCreate {
		return ModeCreate
	}
	return ModeEdit
}

// NoticeNoStructure is shown when a license has nothing to select.
const NoticeNoStructure = "This license has no organizational structure yet; assign the structure later."

// SelectorState is everything the structure dropdown needs to render.
type SelectorState struct {
	AvailableTypes []models.Level        `json:"availableTypes"`
	Selection      models.SelectionDraft `json:"selection"`
	Options        []Option              `json:"options"`
	Selected       *Option               `json:"selected,omitempty"`
	Disabled       bool                  `json:"disabled"`
	Notice         string                `json:"notice,omitempty"`
	Cleared        bool                  `json:"cleared"`
}

// Reconcile drops the parts of draft that tree no longer backs. A type that
// is not available is cleared together with its id; an id missing from the
// options of its type is cleared on its own.
func Reconcile(tree *models.StructureTree, draft models.SelectionDraft) models.SelectionDraft {
	if draft.Type == models.LevelNone {
		return models.SelectionDraft{}
	}
	if !IsAvailable(tree, draft.Type) {
		return models.SelectionDraft{}
	}
	if draft.ID != "" && !Contains(tree, draft.Type, draft.ID) {
		return models.SelectionDraft{Type: draft.Type}
	}
	return draft
}

// AutoSelect pre-fills a draft on create forms when the tree leaves no
// choice: a single available level is selected, and when that level is the
// company its root id is selected too, even if the level was already set.
// Edit forms are never touched.
func AutoSelect(tree *models.StructureTree, draft models.SelectionDraft, mode Mode) models.SelectionDraft {
	if mode != ModeCreate {
		return draft
	}

	available := AvailableTypes(tree)
	if len(available) != 1 {
		return draft
	}
	only := available[0]

	switch draft.Type {
	case models.LevelNone:
		draft.Type = only
	case only:
	default:
		return draft
	}
	if draft.Type == models.LevelCompany && draft.ID == "" {
		draft.ID = tree.LicenseID
	}
	return draft
}

// Selector reconciles draft against tree, applies auto-selection, and lists
// the options of the resulting level.
func Selector(tree *models.StructureTree, draft models.SelectionDraft, mode Mode) SelectorState {
	available := AvailableTypes(tree)
	if len(available) == 0 {
		return SelectorState{
			AvailableTypes: available,
			Options:        []Option{},
			Disabled:       true,
			Notice:         NoticeNoStructure,
			Cleared:        !draft.IsEmpty(),
		}
	}

	reconciled := Reconcile(tree, draft)
	selected := AutoSelect(tree, reconciled, mode)

	state := SelectorState{
		AvailableTypes: available,
		Selection:      selected,
		Options:        Flatten(tree, selected.Type),
		Cleared:        reconciled != draft,
	}
	if option, ok := Find(tree, selected.Type, selected.ID); ok {
		state.Selected = &option
	}
	return state
}

// SelectionError is a field-level problem with a structure selection.
type SelectionError struct {
	Field   string
	Message string
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Field names reported by Finalize, matching the dashboard form.
const (
	FieldStructureType = "structureType"
	FieldStructureID   = "structureId"
)

// Finalize turns a selector draft into a StructureSelection. Assigning later
// always succeeds; otherwise the type must be available and the id must name
// a node of tree at that type. A company selection resolves to the license
// root id when no id was supplied.
func Finalize(tree *models.StructureTree, draft models.SelectionDraft, assignLater bool) (models.StructureSelection, error) {
	if assignLater {
		return models.Deferred{}, nil
	}

	if draft.Type == models.LevelNone {
		return nil, &SelectionError{Field: FieldStructureType, Message: "structure type is required"}
	}
	if !IsAvailable(tree, draft.Type) {
		return nil, &SelectionError{
			Field:   FieldStructureType,
			Message: fmt.Sprintf("structure type %q is not available for this license", draft.Type),
		}
	}

	id := draft.ID
	if draft.Type == models.LevelCompany && id == "" {
		id = tree.LicenseID
	}
	if id == "" {
		return nil, &SelectionError{Field: FieldStructureID, Message: "structure is required"}
	}
	if !Contains(tree, draft.Type, id) {
		return nil, &SelectionError{
			Field:   FieldStructureID,
			Message: fmt.Sprintf("structure %q does not exist in the license structure", id),
		}
	}

	return models.Assigned{Type: draft.Type, ID: id}, nil
}
