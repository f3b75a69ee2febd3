// Package lookup provides the discrete choices offered by enumerated fields.
package lookup

import (
	"slices"

	"exposure-platform/internal/validation"
)

// List names one lookup table.
type List string

const (
	Gender        List = "gender"
	Task          List = "task"
	EquipmentType List = "equipment_type"
	Formulation   List = "formulation"
	MixingMethod  List = "mixing_method"
)

// Lists enumerates every lookup table.
var Lists = []List{Gender, Task, EquipmentType, Formulation, MixingMethod}

// Source yields the current values of a lookup table.
type Source interface {
	Values(list List) []string
}

// Static is a Source held in memory.
type Static map[List][]string

func (s Static) Values(list List) []string { return slices.Clone(s[list]) }

// Default holds the built-in tables.
var Default = Static{
	Gender: {"Female", "Male", "Not reported"},
	Task: {
		"Mixer/Loader", "Applicator", "Mixer/Loader/Applicator",
		"Flagger", "Harvester", "Supervisor",
	},
	EquipmentType: {
		"Groundboom", "Airblast", "Aerial", "Backpack sprayer",
		"Handgun", "Chemigation",
	},
	Formulation: {
		"Emulsifiable concentrate", "Wettable powder", "Water dispersible granule",
		"Suspension concentrate", "Soluble liquid", "Granule",
	},
	MixingMethod: {"Open pour", "Closed system", "Water-soluble packet"},
}

// Snapshot freezes the values of every table at one point in time. Editors
// take a snapshot when they are created and never see later table changes.
type Snapshot struct {
	options map[List]validation.Options[string]
}

// Take copies every table of src.
func Take(src Source) Snapshot {
	if src == nil {
		src = Default
	}
	s := Snapshot{options: make(map[List]validation.Options[string], len(Lists))}
	for _, l := range Lists {
		s.options[l] = validation.NewOptions(src.Values(l)...)
	}
	return s
}

// Options returns the frozen values of list.
func (s Snapshot) Options(list List) validation.Options[string] {
	return s.options[list]
}
