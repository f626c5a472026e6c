package nutrition

import (
	"math"
	"testing"
)

func sampleSections() []Section {
	return []Section{
		{
			Meal: "Breakfast",
			Items: []LogItem{
				{
					ID:       ConfirmedID("a"),
					Name:     "Oatmeal",
					Quantity: 1,
					Kcal:     150,
					Macros:   MacroSet{Carbs: 27, Protein: 5, Fat: 3},
					Micros:   Micros{FiberG: 4, SodiumMG: 2},
				},
				{
					ID:       ConfirmedID("b"),
					Name:     "Banana",
					Quantity: 2,
					Kcal:     90,
					Macros:   MacroSet{Carbs: 23, Protein: 1},
					Micros:   Micros{PotassiumMG: 420, SugarG: 12},
				},
			},
		},
		{
			Meal: "Dinner",
			Items: []LogItem{
				{
					ID:       ConfirmedID("c"),
					Name:     "Chicken breast",
					Quantity: 1,
					Kcal:     220,
					Macros:   MacroSet{Protein: 40, Fat: 5},
					Micros:   Micros{SodiumMG: 90, CholesterolMG: 115},
				},
			},
		},
	}
}

func TestSumSections_Aggregates(t *testing.T) {
	totals, micros := SumSections(sampleSections())

	if want := 150.0 + 2*90 + 220; totals.Kcal != want {
		t.Fatalf("Kcal = %v, want %v", totals.Kcal, want)
	}
	if want := 27.0 + 2*23; totals.Macros.Carbs != want {
		t.Fatalf("Carbs = %v, want %v", totals.Macros.Carbs, want)
	}
	if want := 5.0 + 2*1 + 40; totals.Macros.Protein != want {
		t.Fatalf("Protein = %v, want %v", totals.Macros.Protein, want)
	}
	if want := 3.0 + 5; totals.Macros.Fat != want {
		t.Fatalf("Fat = %v, want %v", totals.Macros.Fat, want)
	}
	if want := 2*420.0; micros.PotassiumMG != want {
		t.Fatalf("PotassiumMG = %v, want %v", micros.PotassiumMG, want)
	}
	if want := 2.0 + 90; micros.SodiumMG != want {
		t.Fatalf("SodiumMG = %v, want %v", micros.SodiumMG, want)
	}
}

func TestSumSections_OrderIndependent(t *testing.T) {
	base := sampleSections()
	totals, micros := SumSections(base)

	// Reverse sections and reverse items within each.
	reversed := make([]Section, 0, len(base))
	for i := len(base) - 1; i >= 0; i-- {
		sec := base[i]
		items := make([]LogItem, 0, len(sec.Items))
		for j := len(sec.Items) - 1; j >= 0; j-- {
			items = append(items, sec.Items[j])
		}
		sec.Items = items
		reversed = append(reversed, sec)
	}

	totals2, micros2 := SumSections(reversed)
	if totals != totals2 {
		t.Fatalf("totals differ under permutation: %#v vs %#v", totals, totals2)
	}
	if micros != micros2 {
		t.Fatalf("micros differ under permutation: %#v vs %#v", micros, micros2)
	}
}

func TestQuantity_Defaults(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"positive", 2.5, 2.5},
		{"zero", 0, 1},
		{"negative", -3, 1},
		{"nan", math.NaN(), 1},
		{"positive inf", math.Inf(1), 1},
		{"negative inf", math.Inf(-1), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Quantity(tt.in); got != tt.want {
				t.Errorf("Quantity(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRecalculate_DerivesSummaryAndPrunes(t *testing.T) {
	v := View{
		Date:    "2025-03-10",
		Summary: Summary{Goal: 2000},
		Macros:  []Macro{{Key: Carbs, Goal: 250}, {Key: Protein, Goal: 140}, {Key: Fat, Goal: 70}},
		Sections: []Section{
			{Meal: "Breakfast", Items: []LogItem{{ID: ConfirmedID("a"), Kcal: 250, Quantity: 2, Macros: MacroSet{Carbs: 40}}}},
			{Meal: "Lunch"}, // emptied by a removal; must be pruned
		},
	}

	got := Recalculate(v)

	if got.Summary.Eaten != 500 {
		t.Fatalf("Eaten = %v, want 500", got.Summary.Eaten)
	}
	if got.Summary.KcalLeft != 1500 {
		t.Fatalf("KcalLeft = %v, want 1500", got.Summary.KcalLeft)
	}
	if len(got.Sections) != 1 || got.Sections[0].Meal != "Breakfast" {
		t.Fatalf("Sections = %#v, want only Breakfast", got.Sections)
	}
	if got.Macros[0].Current != 80 {
		t.Fatalf("Carbs current = %v, want 80", got.Macros[0].Current)
	}
}

func TestRecalculate_KcalLeftClampsAtZero(t *testing.T) {
	v := View{
		Summary: Summary{Goal: 300},
		Sections: []Section{
			{Meal: "Dinner", Items: []LogItem{{ID: ConfirmedID("a"), Kcal: 500, Quantity: 1}}},
		},
	}
	got := Recalculate(v)
	if got.Summary.KcalLeft != 0 {
		t.Fatalf("KcalLeft = %v, want 0 when over goal", got.Summary.KcalLeft)
	}
}

func TestRecalculate_EmptyDayZeroes(t *testing.T) {
	v := View{
		Summary: Summary{Goal: 2000, Eaten: 500, KcalLeft: 1500},
		Macros:  []Macro{{Key: Protein, Current: 30, Goal: 140}},
		Micros:  Micros{SodiumMG: 100},
	}
	got := Recalculate(v)
	if got.Summary.Eaten != 0 || got.Summary.KcalLeft != 2000 {
		t.Fatalf("Summary = %#v, want eaten 0, left 2000", got.Summary)
	}
	if got.Macros[0].Current != 0 {
		t.Fatalf("Protein current = %v, want 0", got.Macros[0].Current)
	}
	if got.Micros != (Micros{}) {
		t.Fatalf("Micros = %#v, want zeroed", got.Micros)
	}
}
