package nutrition

import "math"

// Totals is the kcal/macro aggregate over a set of log sections.
type Totals struct {
	Kcal   float64
	Macros MacroSet
}

// Quantity normalizes an item quantity: non-finite or non-positive values
// count as a single serving.
func Quantity(q float64) float64 {
	if math.IsNaN(q) || math.IsInf(q, 0) || q <= 0 {
		return 1
	}
	return q
}

// SumSections computes the kcal/macro totals and the micro aggregate over
// every item in every section. Pure and order-independent; no rounding
// happens here, presentation rounds.
func SumSections(sections []Section) (Totals, Micros) {
	var totals Totals
	var micros Micros
	for _, sec := range sections {
		for _, item := range sec.Items {
			qty := Quantity(item.Quantity)
			totals.Kcal += item.Kcal * qty
			totals.Macros.Carbs += item.Macros.Carbs * qty
			totals.Macros.Protein += item.Macros.Protein * qty
			totals.Macros.Fat += item.Macros.Fat * qty
			micros = micros.add(item.Micros, qty)
		}
	}
	return totals, micros
}

// Recalculate derives Summary.Eaten, KcalLeft, each Macro.Current, and the
// micro aggregate from Sections, and prunes sections left without items.
// Every mutation goes through this instead of adjusting counters in place;
// incremental adjustment drifts once mutations interleave.
func Recalculate(v View) View {
	var pruned []Section
	for _, sec := range v.Sections {
		if len(sec.Items) > 0 {
			pruned = append(pruned, sec)
		}
	}
	v.Sections = pruned

	totals, micros := SumSections(v.Sections)
	v.Summary.Eaten = totals.Kcal
	v.Summary.KcalLeft = math.Max(v.Summary.Goal-totals.Kcal, 0)
	for i := range v.Macros {
		v.Macros[i].Current = totals.Macros.Get(v.Macros[i].Key)
	}
	v.Micros = micros
	return v
}
