package nutrition

import "testing"

func TestItemID_PendingVersusConfirmed(t *testing.T) {
	pending := NewPendingID()
	if !pending.Pending {
		t.Fatal("NewPendingID should be pending")
	}
	if pending.IsZero() {
		t.Fatal("NewPendingID should carry a value")
	}

	confirmed := ConfirmedID("srv-1")
	if confirmed.Pending {
		t.Fatal("ConfirmedID should not be pending")
	}

	other := NewPendingID()
	if pending == other {
		t.Fatal("two pending ids should not collide")
	}
}

func TestDefaultView_SeedsGoals(t *testing.T) {
	v := DefaultView("2025-03-10", 2000, MacroSet{Carbs: 250, Protein: 140, Fat: 70})

	if v.Summary.Goal != 2000 || v.Summary.KcalLeft != 2000 || v.Summary.Eaten != 0 {
		t.Fatalf("Summary = %#v, want goal 2000, left 2000, eaten 0", v.Summary)
	}
	if len(v.Macros) != 3 {
		t.Fatalf("Macros = %#v, want 3 entries", v.Macros)
	}
	if v.Macros[1].Key != Protein || v.Macros[1].Goal != 140 {
		t.Fatalf("Macros[1] = %#v, want protein goal 140", v.Macros[1])
	}
	if v.Sections != nil {
		t.Fatalf("Sections = %#v, want nil", v.Sections)
	}
}

func TestClone_Independent(t *testing.T) {
	v := View{
		Date:   "2025-03-10",
		Macros: []Macro{{Key: Carbs, Goal: 250}},
		Sections: []Section{
			{Meal: "Lunch", Items: []LogItem{{ID: ConfirmedID("a"), Name: "Soup"}}},
		},
	}

	dup := v.Clone()
	dup.Macros[0].Goal = 1
	dup.Sections[0].Items[0].Name = "changed"
	dup.Sections[0].Meal = "changed"

	if v.Macros[0].Goal != 250 {
		t.Fatalf("clone shares macros: %#v", v.Macros)
	}
	if v.Sections[0].Items[0].Name != "Soup" || v.Sections[0].Meal != "Lunch" {
		t.Fatalf("clone shares sections: %#v", v.Sections)
	}
}

func TestFindItem(t *testing.T) {
	target := ConfirmedID("b")
	v := View{
		Sections: []Section{
			{Meal: "Breakfast", Items: []LogItem{{ID: ConfirmedID("a")}}},
			{Meal: "Lunch", Items: []LogItem{{ID: ConfirmedID("x")}, {ID: target}}},
		},
	}

	si, ii, ok := v.FindItem(target)
	if !ok || si != 1 || ii != 1 {
		t.Fatalf("FindItem = (%d, %d, %v), want (1, 1, true)", si, ii, ok)
	}

	if _, _, ok := v.FindItem(ConfirmedID("missing")); ok {
		t.Fatal("FindItem should miss on unknown id")
	}

	// A pending id with the same value is a different identity.
	if _, _, ok := v.FindItem(ItemID{Value: "b", Pending: true}); ok {
		t.Fatal("pending id must not match confirmed id with same value")
	}
}

func TestSetGoal_RecomputesKcalLeft(t *testing.T) {
	v := View{Summary: Summary{Eaten: 500, Goal: 2000, KcalLeft: 1500}}

	got := v.SetGoal(1800)
	if got.Summary.Goal != 1800 || got.Summary.KcalLeft != 1300 {
		t.Fatalf("Summary = %#v, want goal 1800, left 1300", got.Summary)
	}

	got = v.SetGoal(400)
	if got.Summary.KcalLeft != 0 {
		t.Fatalf("KcalLeft = %v, want clamp at 0", got.Summary.KcalLeft)
	}
}

func TestSetMacroGoal(t *testing.T) {
	v := View{Macros: []Macro{{Key: Carbs, Goal: 250}}}

	got := v.SetMacroGoal(Carbs, 200)
	if got.Macros[0].Goal != 200 {
		t.Fatalf("Carbs goal = %v, want 200", got.Macros[0].Goal)
	}

	got = got.SetMacroGoal(Fat, 70)
	if len(got.Macros) != 2 || got.Macros[1].Key != Fat || got.Macros[1].Goal != 70 {
		t.Fatalf("Macros = %#v, want appended fat goal 70", got.Macros)
	}
}
