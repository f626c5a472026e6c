package api

// Entry is one meal entry on the server; items hang off it by EntryID.
type Entry struct {
	ID         string `json:"id"`
	Date       string `json:"date"`
	MealTypeID string `json:"mealTypeId"`
	MealLabel  string `json:"mealLabel"`
	MealEmoji  string `json:"mealEmoji"`
	LoggedAt   string `json:"loggedAt"`
}

// EntryItem is one food row within an entry. Kcal and nutrient amounts are
// per unit quantity.
type EntryItem struct {
	ID            string   `json:"id"`
	EntryID       string   `json:"entryId"`
	FoodID        string   `json:"foodId"`
	Name          string   `json:"name"`
	Quantity      float64  `json:"quantity"`
	PortionLabel  string   `json:"portionLabel"`
	PortionGrams  *float64 `json:"portionGrams"`
	Kcal          float64  `json:"kcal"`
	CarbsG        float64  `json:"carbsG"`
	ProteinG      float64  `json:"proteinG"`
	FatG          float64  `json:"fatG"`
	SodiumMG      float64  `json:"sodiumMg"`
	FiberG        float64  `json:"fiberG"`
	SugarG        float64  `json:"sugarG"`
	PotassiumMG   float64  `json:"potassiumMg"`
	CholesterolMG float64  `json:"cholesterolMg"`
	SaturatedFatG float64  `json:"saturatedFatG"`
	Emoji         string   `json:"emoji"`
	ImageURL      string   `json:"imageUrl"`
}

// EntriesResponse mirrors GET /api/entries?date=.
type EntriesResponse struct {
	Entries []Entry     `json:"entries"`
	Items   []EntryItem `json:"items"`
}

// NutrientGoals carries optional goal values; nil means unset.
type NutrientGoals struct {
	KcalGoal *float64 `json:"kcalGoal"`
	CarbsG   *float64 `json:"carbsG"`
	ProteinG *float64 `json:"proteinG"`
	FatG     *float64 `json:"fatG"`
}

// SummaryTotals is the server-side day aggregate; advisory only, the client
// re-derives totals from items.
type SummaryTotals struct {
	Kcal     float64 `json:"kcal"`
	Burned   float64 `json:"burned"`
	CarbsG   float64 `json:"carbsG"`
	ProteinG float64 `json:"proteinG"`
	FatG     float64 `json:"fatG"`
}

// SummaryResponse mirrors GET /api/summary?date=. Targets are the per-date
// goal overrides; Settings is the settings snapshot taken when the summary
// was computed.
type SummaryResponse struct {
	Totals   *SummaryTotals `json:"totals"`
	Targets  *NutrientGoals `json:"targets"`
	Settings *NutrientGoals `json:"settings"`
	Burned   float64        `json:"burned"`
}

// SettingsResponse mirrors GET /api/settings.
type SettingsResponse struct {
	Settings *NutrientGoals `json:"settings"`
}

// NewEntryItem is the item payload for entry creation.
type NewEntryItem struct {
	FoodID        string   `json:"foodId,omitempty"`
	Name          string   `json:"name"`
	Quantity      float64  `json:"quantity"`
	PortionLabel  string   `json:"portionLabel,omitempty"`
	PortionGrams  *float64 `json:"portionGrams,omitempty"`
	Kcal          float64  `json:"kcal"`
	CarbsG        float64  `json:"carbsG"`
	ProteinG      float64  `json:"proteinG"`
	FatG          float64  `json:"fatG"`
	SodiumMG      float64  `json:"sodiumMg,omitempty"`
	FiberG        float64  `json:"fiberG,omitempty"`
	SugarG        float64  `json:"sugarG,omitempty"`
	PotassiumMG   float64  `json:"potassiumMg,omitempty"`
	CholesterolMG float64  `json:"cholesterolMg,omitempty"`
	SaturatedFatG float64  `json:"saturatedFatG,omitempty"`
	Emoji         string   `json:"emoji,omitempty"`
	ImageURL      string   `json:"imageUrl,omitempty"`
}

// CreateEntryRequest mirrors POST /api/entries.
type CreateEntryRequest struct {
	Date       string         `json:"date"`
	MealTypeID string         `json:"mealTypeId,omitempty"`
	MealLabel  string         `json:"mealLabel"`
	MealEmoji  string         `json:"mealEmoji,omitempty"`
	Items      []NewEntryItem `json:"items"`
}

// CreateEntryResponse returns the created entry with server-assigned ids.
type CreateEntryResponse struct {
	Entry Entry       `json:"entry"`
	Items []EntryItem `json:"items"`
}

// PatchItemRequest mirrors PATCH /api/entry-items/{id}.
type PatchItemRequest struct {
	Quantity *float64 `json:"quantity,omitempty"`
}

// TargetsRequest mirrors PUT /api/targets.
type TargetsRequest struct {
	Date     string   `json:"date"`
	KcalGoal *float64 `json:"kcalGoal,omitempty"`
	CarbsG   *float64 `json:"carbsG,omitempty"`
	ProteinG *float64 `json:"proteinG,omitempty"`
	FatG     *float64 `json:"fatG,omitempty"`
}

// SettingsRequest mirrors PUT /api/settings.
type SettingsRequest struct {
	KcalGoal *float64 `json:"kcalGoal,omitempty"`
	CarbsG   *float64 `json:"carbsG,omitempty"`
	ProteinG *float64 `json:"proteinG,omitempty"`
	FatG     *float64 `json:"fatG,omitempty"`
}
