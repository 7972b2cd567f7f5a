package models

type LocationEntryType string

const (
	LocationRemote      LocationEntryType = "remote"
	LocationCity        LocationEntryType = "city"
	LocationState       LocationEntryType = "state"
	LocationCountry     LocationEntryType = "country"
	LocationStateRemote LocationEntryType = "state_remote"
	LocationHybrid      LocationEntryType = "hybrid"
	LocationKeyword     LocationEntryType = "keyword"
)

type LocationEntry struct {
	Type LocationEntryType `mapstructure:"type" validate:"required,oneof=remote city state country state_remote hybrid keyword"`
	// Value is a city, state, country or keyword depending on Type. Empty is allowed for remote and hybrid.
	Value      string `mapstructure:"value"`
	State      string `mapstructure:"state"`
	ScoreBonus int    `mapstructure:"score_bonus" validate:"gte=0,lte=100"`
}

type LocationPreferences struct {
	Primary   []LocationEntry `mapstructure:"primary" validate:"dive"`
	Secondary []LocationEntry `mapstructure:"secondary" validate:"dive"`
	Excluded  []LocationEntry `mapstructure:"excluded" validate:"dive"`
}

type SalaryPreferences struct {
	Minimum int `mapstructure:"minimum" validate:"gte=0"`
	Target  int `mapstructure:"target" validate:"gte=0"`
}

type Preferences struct {
	Location LocationPreferences `mapstructure:"location"`
	Salary   SalaryPreferences   `mapstructure:"salary"`
	// Notes is free text handed to the AI provider along with the resume.
	Notes string `mapstructure:"notes"`
}
