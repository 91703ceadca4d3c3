package models

import (
	"fmt"
	"strings"
)

// Level identifies one tier of a license's organizational structure.
type Level string

const (
	// LevelNone is the unset sentinel: no level has been picked yet.
	LevelNone Level = ""
	// LevelCompany is the license's root company.
	LevelCompany Level = "company"
	// LevelSede is a branch ("sede") of the company.
	LevelSede Level = "sede"
	// LevelDepartment is a department inside a branch.
	LevelDepartment Level = "department"
	// LevelSection is a section inside a department.
	LevelSection Level = "section"
	// LevelUnit is the leaf tier; units have no children.
	LevelUnit Level = "unit"
)

// Levels lists every selectable level in canonical root-to-leaf order.
var Levels = []Level{LevelCompany, LevelSede, LevelDepartment, LevelSection, LevelUnit}

// ParseLevel normalises a level name coming from a form or the upstream API.
// "branch" is accepted as an alias of "sede". An empty string yields LevelNone.
func ParseLevel(raw string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return LevelNone, nil
	case "company", "empresa":
		return LevelCompany, nil
	case "sede", "branch":
		return LevelSede, nil
	case "department", "departamento":
		return LevelDepartment, nil
	case "section", "seccion":
		return LevelSection, nil
	case "unit", "unidad":
		return LevelUnit, nil
	default:
		return LevelNone, fmt.Errorf("unknown structure level %q", raw)
	}
}

// Valid reports whether l is one of the selectable levels.
func (l Level) Valid() bool {
	return l.Depth() >= 0
}

// Depth returns the zero-based position of l in Levels, or -1.
func (l Level) Depth() int {
	for i, level := range Levels {
		if level == l {
			return i
		}
	}
	return -1
}

// Child returns the level directly below l, or LevelNone for units and
// invalid levels.
func (l Level) Child() Level {
	depth := l.Depth()
	if depth < 0 || depth+1 >= len(Levels) {
		return LevelNone
	}
	return Levels[depth+1]
}

func (l Level) String() string {
	return string(l)
}
