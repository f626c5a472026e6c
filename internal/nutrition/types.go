// Package nutrition defines the day-scoped nutrition view and the pure
// arithmetic that derives its aggregates from the meal log.
package nutrition

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar-day key format used throughout the app.
// Dates carry no time zone; "today" is whatever the device thinks it is.
const DateLayout = "2006-01-02"

// Today returns the current local calendar date key.
func Today() string {
	return time.Now().Format(DateLayout)
}

// MacroKey identifies one of the tracked macronutrients.
type MacroKey string

const (
	Carbs   MacroKey = "carbs"
	Protein MacroKey = "protein"
	Fat     MacroKey = "fat"
)

// MacroKeys lists the tracked macros in display order.
var MacroKeys = []MacroKey{Carbs, Protein, Fat}

// ItemID identifies a log item. An item logged optimistically carries a
// locally generated pending id until the server confirms the write; the
// pending flag is part of the type so reconciliation never depends on a
// string naming convention.
type ItemID struct {
	Value   string
	Pending bool
}

// NewPendingID mints a placeholder id for a not-yet-confirmed item.
func NewPendingID() ItemID {
	return ItemID{Value: uuid.NewString(), Pending: true}
}

// ConfirmedID wraps a server-assigned identifier.
func ConfirmedID(value string) ItemID {
	return ItemID{Value: value}
}

// IsZero reports whether the id is unset.
func (id ItemID) IsZero() bool {
	return id.Value == ""
}

// MacroSet holds gram amounts for the three tracked macros.
type MacroSet struct {
	Carbs   float64
	Protein float64
	Fat     float64
}

// Get returns the amount for a macro key.
func (m MacroSet) Get(key MacroKey) float64 {
	switch key {
	case Carbs:
		return m.Carbs
	case Protein:
		return m.Protein
	case Fat:
		return m.Fat
	}
	return 0
}

// Scale returns the set multiplied by a factor.
func (m MacroSet) Scale(factor float64) MacroSet {
	return MacroSet{
		Carbs:   m.Carbs * factor,
		Protein: m.Protein * factor,
		Fat:     m.Fat * factor,
	}
}

// Micros aggregates the secondary nutrients tracked per item and per day.
type Micros struct {
	SodiumMG      float64
	FiberG        float64
	SugarG        float64
	PotassiumMG   float64
	CholesterolMG float64
	SaturatedFatG float64
}

func (m Micros) add(other Micros, factor float64) Micros {
	m.SodiumMG += other.SodiumMG * factor
	m.FiberG += other.FiberG * factor
	m.SugarG += other.SugarG * factor
	m.PotassiumMG += other.PotassiumMG * factor
	m.CholesterolMG += other.CholesterolMG * factor
	m.SaturatedFatG += other.SaturatedFatG * factor
	return m
}

// LogItem is one logged food within a meal section. Kcal and the macro/micro
// amounts are per unit quantity.
type LogItem struct {
	ID           ItemID
	FoodID       string
	MealTypeID   string
	MealLabel    string
	MealEmoji    string
	Name         string
	Quantity     float64
	PortionLabel string
	PortionGrams float64 // zero when the portion has no known gram weight
	Kcal         float64
	Macros       MacroSet
	Micros       Micros
	Emoji        string
	ImageURL     string
}

// Section groups the items logged under one meal label.
type Section struct {
	Meal  string
	Time  string
	Items []LogItem
}

// Summary carries the headline numbers for a day.
type Summary struct {
	Eaten    float64
	Burned   float64
	KcalLeft float64
	Goal     float64
}

// Macro pairs a derived current amount with its user-set goal.
type Macro struct {
	Key     MacroKey
	Current float64
	Goal    float64
}

// View is the per-day nutrition state the rest of the app works with.
// Summary.Eaten, every Macro.Current, and Micros are always derived from
// Sections via Recalculate and never set independently.
type View struct {
	Date     string
	Summary  Summary
	Macros   []Macro
	Micros   Micros
	Sections []Section
}

// DefaultView builds the zeroed view a date starts from before its first
// fetch, seeded with application-default goals.
func DefaultView(date string, kcalGoal float64, macroGoals MacroSet) View {
	v := View{
		Date:    date,
		Summary: Summary{Goal: kcalGoal, KcalLeft: kcalGoal},
	}
	for _, key := range MacroKeys {
		v.Macros = append(v.Macros, Macro{Key: key, Goal: macroGoals.Get(key)})
	}
	return v
}

// Clone returns a deep copy. Mutation snapshots and cache reads both rely on
// the copy sharing no slices with the original.
func (v View) Clone() View {
	dup := v
	if v.Macros != nil {
		dup.Macros = make([]Macro, len(v.Macros))
		copy(dup.Macros, v.Macros)
	}
	if v.Sections != nil {
		dup.Sections = make([]Section, len(v.Sections))
		for i, sec := range v.Sections {
			dup.Sections[i] = sec
			if sec.Items != nil {
				dup.Sections[i].Items = make([]LogItem, len(sec.Items))
				copy(dup.Sections[i].Items, sec.Items)
			}
		}
	}
	return dup
}

// SectionIndex returns the index of the section with the given meal label, or -1.
func (v View) SectionIndex(meal string) int {
	for i, sec := range v.Sections {
		if sec.Meal == meal {
			return i
		}
	}
	return -1
}

// FindItem locates an item by id across all sections.
func (v View) FindItem(id ItemID) (sectionIdx, itemIdx int, ok bool) {
	for si, sec := range v.Sections {
		for ii, item := range sec.Items {
			if item.ID == id {
				return si, ii, true
			}
		}
	}
	return 0, 0, false
}

// ItemCount returns the number of logged items across all sections.
func (v View) ItemCount() int {
	n := 0
	for _, sec := range v.Sections {
		n += len(sec.Items)
	}
	return n
}

// SetGoal replaces the calorie goal and re-derives the remaining budget.
func (v View) SetGoal(goal float64) View {
	v.Summary.Goal = goal
	v.Summary.KcalLeft = math.Max(goal-v.Summary.Eaten, 0)
	return v
}

// SetMacroGoal replaces the goal for one macro key, appending the macro row
// when the view predates it.
func (v View) SetMacroGoal(key MacroKey, goal float64) View {
	for i := range v.Macros {
		if v.Macros[i].Key == key {
			v.Macros[i].Goal = goal
			return v
		}
	}
	v.Macros = append(v.Macros, Macro{Key: key, Goal: goal})
	return v
}
