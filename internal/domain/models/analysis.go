package models

// FilterDecision is the screening verdict of the AI analysis provider.
type FilterDecision struct {
	Keep          bool   `json:"keep"`
	BaselineScore int    `json:"baseline_score"`
	FilterReason  string `json:"filter_reason"`
}

type Analysis struct {
	QualificationScore int      `json:"qualification_score"`
	ShouldApply        bool     `json:"should_apply"`
	Strengths          []string `json:"strengths"`
	Gaps               []string `json:"gaps"`
	Recommendation     string   `json:"recommendation"`
}

// SearchResult is what the web-search oracle knows about a posting.
type SearchResult struct {
	Found        bool     `json:"found"`
	Description  string   `json:"description,omitempty"`
	SalaryRange  string   `json:"salary_range,omitempty"`
	SourceURL    string   `json:"source_url,omitempty"`
	Requirements []string `json:"requirements,omitempty"`
}

type Requirements struct {
	YearsMin        int      `json:"years_min,omitempty"`
	YearsMax        int      `json:"years_max,omitempty"`
	Education       string   `json:"education,omitempty"`
	Certifications  []string `json:"certifications,omitempty"`
	Clearance       string   `json:"clearance,omitempty"`
	RequiredSkills  []string `json:"required_skills,omitempty"`
	PreferredSkills []string `json:"preferred_skills,omitempty"`
}

func (r Requirements) IsEmpty() bool {
	return r.YearsMin == 0 && r.YearsMax == 0 && r.Education == "" && r.Clearance == "" &&
		len(r.Certifications) == 0 && len(r.RequiredSkills) == 0 && len(r.PreferredSkills) == 0
}
