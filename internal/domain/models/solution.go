package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockSolution is one prepared reagent or hormone stock solution. Quantity
// units vary by lab convention (mL, L, g), so the unit travels with the row.
type StockSolution struct {
	SolutionCode    string          `json:"solutionCode"`
	PreparationDate time.Time       `json:"preparationDate"`
	Quantity        decimal.Decimal `json:"quantity"`
	Unit            string          `json:"unit"`
	Responsible     string          `json:"responsible"`
	RegulatorType   string          `json:"regulatorType"`
	Notes           string          `json:"notes"`
}
