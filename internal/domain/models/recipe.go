package models

// RecipeLine is one component row of a medium formulation, taken from the
// external reference spreadsheet. The sheet is read-only for this system.
type RecipeLine struct {
	Component     string `json:"component"`
	Formula       string `json:"formula"`
	Concentration string `json:"concentration"`
}

// Recipe groups the formulation lines of one medium type (one sheet per type).
type Recipe struct {
	MediumType string       `json:"mediumType"`
	Lines      []RecipeLine `json:"lines"`
}
