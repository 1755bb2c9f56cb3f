package models

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	dErrors "equityshield/pkg/domain-errors"
)

const (
	TransferStatusSuccess = "success"
	TransferStatusFailed  = "failed"

	// TransferIDPrefix starts every simulated transfer id.
	TransferIDPrefix = "TRX"
)

var currencyPattern = regexp.MustCompile(`^[A-Za-z]{3}$`)

// BankAccount is one entry of the mock bank directory.
type BankAccount struct {
	BankID        string `json:"bank_id" yaml:"bank_id"`
	AccountNumber string `json:"account_number" yaml:"account_number"`
	RoutingNumber string `json:"routing_number" yaml:"routing_number"`
	BankName      string `json:"bank_name" yaml:"bank_name"`
}

func (a BankAccount) Validate() error {
	if a.BankID == "" {
		return dErrors.New(dErrors.CodeConfiguration, "bank_id is required")
	}
	if a.AccountNumber == "" {
		return dErrors.Newf(dErrors.CodeConfiguration, "bank %s: account_number is required", a.BankID)
	}
	if !IsRoutingNumber(a.RoutingNumber) {
		return dErrors.Newf(dErrors.CodeConfiguration, "bank %s: routing_number must be 9 digits", a.BankID)
	}
	return nil
}

// BankingInfo is the static record served by /api/banking-info.
type BankingInfo struct {
	BankName      string `json:"bank_name"`
	RoutingNumber string `json:"routing_number"`
	AccountNumber string `json:"account_number"`
	EINNumber     string `json:"ein_number"`
}

// IsRoutingNumber reports whether s is exactly nine ASCII digits. It is a
// format check only.
func IsRoutingNumber(s string) bool {
	if len(s) != 9 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ValidateRoutingRequest keeps routing_number raw so any JSON value can be
// checked and echoed back.
type ValidateRoutingRequest struct {
	RoutingNumber json.RawMessage `json:"routing_number"`
}

// Value decodes the routing number. ok is false when the field is absent or null.
func (r ValidateRoutingRequest) Value() (value any, ok bool) {
	if len(r.RoutingNumber) == 0 {
		return nil, false
	}
	if err := json.Unmarshal(r.RoutingNumber, &value); err != nil || value == nil {
		return nil, false
	}
	return value, true
}

type ValidateRoutingResponse struct {
	RoutingNumber json.RawMessage `json:"routing_number"`
	Valid         bool            `json:"valid"`
}

// TransferRequest is the body of POST /api/banks/transfer. Amount accepts a
// JSON number or a numeric string.
type TransferRequest struct {
	FromBank string           `json:"from_bank"`
	ToBank   string           `json:"to_bank"`
	Amount   *decimal.Decimal `json:"amount"`
	Currency string           `json:"currency"`
}

// Normalize trims fields and upper-cases the currency.
func (r *TransferRequest) Normalize() {
	r.FromBank = strings.TrimSpace(r.FromBank)
	r.ToBank = strings.TrimSpace(r.ToBank)
	r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))
}

// Validate checks the request after Normalize.
func (r *TransferRequest) Validate() error {
	var missing []string
	if r.FromBank == "" {
		missing = append(missing, "from_bank")
	}
	if r.ToBank == "" {
		missing = append(missing, "to_bank")
	}
	if r.Amount == nil {
		missing = append(missing, "amount")
	}
	if r.Currency == "" {
		missing = append(missing, "currency")
	}
	if len(missing) > 0 {
		return dErrors.Newf(dErrors.CodeInvalidArgument, "Missing required fields: %s", strings.Join(missing, ", "))
	}
	if !r.Amount.IsPositive() {
		return dErrors.New(dErrors.CodeInvalidArgument, "amount must be greater than zero")
	}
	if !currencyPattern.MatchString(r.Currency) {
		return dErrors.Newf(dErrors.CodeInvalidArgument, "currency must be a 3-letter code (got %q)", r.Currency)
	}
	return nil
}

// Amount renders as a bare JSON number so clients see 1000, not "1000".
type Amount struct {
	decimal.Decimal
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// TransferResult is the outcome of a simulated transfer.
type TransferResult struct {
	TransferID string `json:"transfer_id"`
	Status     string `json:"status"`
	FromBank   string `json:"from_bank"`
	ToBank     string `json:"to_bank"`
	Amount     Amount `json:"amount"`
	Currency   string `json:"currency"`
}
