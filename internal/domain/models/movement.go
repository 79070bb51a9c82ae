package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementKind enumerates the audit-log row categories.
type MovementKind string

const (
	MovementEntry               MovementKind = "Entry"
	MovementDisposalConsumption MovementKind = "Disposal-Consumption"
	MovementDisposalLoss        MovementKind = "Disposal-Loss"
	MovementReturn              MovementKind = "Return"
	MovementStockRegistration   MovementKind = "StockRegistration"
	MovementStockDisposal       MovementKind = "StockDisposal"
)

// DisposalReason is the closed set of motives accepted for a batch disposal.
type DisposalReason string

const (
	ReasonConsumption             DisposalReason = "Consumption"
	ReasonContamination           DisposalReason = "Contamination"
	ReasonBreakage                DisposalReason = "Breakage"
	ReasonEvaporation             DisposalReason = "Evaporation"
	ReasonPowerFailure            DisposalReason = "PowerFailure"
	ReasonWaterSupplyInterruption DisposalReason = "WaterSupplyInterruption"
	ReasonOther                   DisposalReason = "Other"
)

// ValidDisposalReason reports whether the given reason belongs to the closed set.
func ValidDisposalReason(r DisposalReason) bool {
	switch r {
	case ReasonConsumption, ReasonContamination, ReasonBreakage, ReasonEvaporation,
		ReasonPowerFailure, ReasonWaterSupplyInterruption, ReasonOther:
		return true
	}
	return false
}

// MovementKindFor maps a disposal reason to its audit-log kind. Consumption is
// the only reason counted as consumption; everything else is a loss.
func MovementKindFor(r DisposalReason) MovementKind {
	if r == ReasonConsumption {
		return MovementDisposalConsumption
	}
	return MovementDisposalLoss
}

// MovementLogEntry is one append-only audit row. Rows are never mutated or
// deleted once written.
type MovementLogEntry struct {
	ID             uuid.UUID       `json:"id"`
	Timestamp      time.Time       `json:"timestamp"`
	Kind           MovementKind    `json:"kind"`
	ReferencedCode string          `json:"referencedCode"`
	Quantity       decimal.Decimal `json:"quantity"`
	Details        string          `json:"details"`
}
