package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BatchRecord is one registered preparation of a culture medium. The code is
// derived once at registration and never recomputed afterwards.
type BatchRecord struct {
	Code              string          `json:"code"`
	Year              int             `json:"year"`
	RecipeName        string          `json:"recipeName"`
	SolutionCode      string          `json:"solutionCode"`
	Week              int             `json:"week"`
	Day               int             `json:"day"`
	PreparationNumber int             `json:"preparationNumber"`
	VesselCount       int             `json:"vesselCount"`
	VolumeML          int             `json:"volumeML"`
	Hormones          string          `json:"hormones"`
	AdjustedPH        decimal.Decimal `json:"adjustedPH"`
	FinalPH           decimal.Decimal `json:"finalPH"`
	FinalConductivity decimal.Decimal `json:"finalConductivity"`
	RegistrationDate  time.Time       `json:"registrationDate"`
}

// Depleted reports whether the batch has no usable vessels left.
func (b BatchRecord) Depleted() bool {
	return b.VesselCount == 0
}
