package models

import "github.com/shopspring/decimal"

// RegisterBatchRequest carries the validated form fields for a new batch.
// Numeric ranges mirror the physical constraints of the lab forms.
type RegisterBatchRequest struct {
	Year              int             `json:"year" validate:"required,min=2000,max=2100"`
	RecipeName        string          `json:"recipeName" validate:"required"`
	SolutionCode      string          `json:"solutionCode"`
	Week              int             `json:"week" validate:"required,min=1,max=52"`
	Day               int             `json:"day" validate:"required,min=1,max=7"`
	PreparationNumber int             `json:"preparationNumber" validate:"required,min=1"`
	VesselCount       int             `json:"vesselCount" validate:"required,min=1,max=500"`
	VolumeML          int             `json:"volumeML" validate:"omitempty,min=100,max=5000"`
	Hormones          string          `json:"hormones"`
	AdjustedPH        decimal.Decimal `json:"adjustedPH"`
	FinalPH           decimal.Decimal `json:"finalPH"`
	FinalConductivity decimal.Decimal `json:"finalConductivity"`
	RegistrationDate  string          `json:"registrationDate"` // YYYY-MM-DD, defaults to today
}

// RegisterSolutionRequest carries the form fields for a new stock solution.
type RegisterSolutionRequest struct {
	SolutionCode    string          `json:"solutionCode" validate:"required"`
	PreparationDate string          `json:"preparationDate"` // YYYY-MM-DD, defaults to today
	Quantity        decimal.Decimal `json:"quantity"`
	Unit            string          `json:"unit" validate:"required"`
	Responsible     string          `json:"responsible" validate:"required"`
	RegulatorType   string          `json:"regulatorType"`
	Notes           string          `json:"notes"`
}

// DisposalRequest removes vessels from a batch for one of the closed reasons.
type DisposalRequest struct {
	Count   int            `json:"count" validate:"required,min=1"`
	Reason  DisposalReason `json:"reason" validate:"required"`
	Details string         `json:"details"`
}

// ReturnRequest puts vessels back into active stock.
type ReturnRequest struct {
	Count int `json:"count" validate:"required,min=1"`
}

// SolutionDisposalRequest draws quantity out of a stock solution.
type SolutionDisposalRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
	Details  string          `json:"details"`
}
