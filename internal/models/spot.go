package models

// SpotProfile is the static metadata of a surf location.
type SpotProfile struct {
	Slug               string  `json:"slug"`
	Name               string  `json:"name"`
	Location           string  `json:"location"`
	Description        string  `json:"description"`
	IdealConditions    string  `json:"idealConditions"`
	Difficulty         string  `json:"difficulty"`
	Type               string  `json:"type"`
	IdealWindDirection string  `json:"idealWindDirection"`
	IdealWaveDirection string  `json:"idealWaveDirection"`
	Lat                float64 `json:"lat"`
	Lng                float64 `json:"lng"`
}
