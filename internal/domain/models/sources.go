package models

// ReactionCount is one MedDRA reaction term with its report count, as returned
// by the openFDA count endpoint.
type ReactionCount struct {
	Reaction string `json:"reaction"`
	Count    int    `json:"count"`
}

// ClinicalTrial is a trimmed ClinicalTrials.gov study record kept for the
// dashboard facade.
type ClinicalTrial struct {
	NCTID          string `json:"nct_id"`
	Title          string `json:"title"`
	Status         string `json:"status"`
	StartDate      string `json:"start_date"`
	CompletionDate string `json:"completion_date"`
	Phase          string `json:"phase"`
	Enrollment     int    `json:"enrollment"`
}
