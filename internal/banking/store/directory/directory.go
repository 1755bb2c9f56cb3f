// Package directory holds the fixed bank account directory. It is built once
// at start-up and never mutated.
package directory

import (
	"errors"
	"io"

	"gopkg.in/yaml.v3"

	"equityshield/internal/banking/models"
	"equityshield/internal/platform/config"
	dErrors "equityshield/pkg/domain-errors"
)

// Directory is an immutable bank_id to account map.
type Directory struct {
	accounts map[string]models.BankAccount
	order    []string
}

// New validates accounts and rejects duplicate bank ids.
func New(accounts ...models.BankAccount) (*Directory, error) {
	d := &Directory{accounts: make(map[string]models.BankAccount, len(accounts))}
	for _, a := range accounts {
		if err := a.Validate(); err != nil {
			return nil, err
		}
		if _, dup := d.accounts[a.BankID]; dup {
			return nil, dErrors.Newf(dErrors.CodeConfiguration, "duplicate bank_id %q", a.BankID)
		}
		d.accounts[a.BankID] = a
		d.order = append(d.order, a.BankID)
	}
	return d, nil
}

// FromConfig seeds the two built-in banks with account and routing numbers
// taken from cfg.
func FromConfig(cfg config.BankingConfig) (*Directory, error) {
	return New(
		models.BankAccount{
			BankID:        "citi-private-bank",
			AccountNumber: cfg.CitiAccountNumber,
			RoutingNumber: cfg.CitiRoutingNumber,
			BankName:      "Citi Private Bank",
		},
		models.BankAccount{
			BankID:        "jpmorgan-chase",
			AccountNumber: cfg.JPMorganAccountNumber,
			RoutingNumber: cfg.JPMorganRoutingNumber,
			BankName:      "JPMorgan Chase",
		},
	)
}

type file struct {
	Banks []models.BankAccount `yaml:"banks"`
}

// FromYAML reads a document of the form
//
//	banks:
//	  - bank_id: citi-private-bank
//	    account_number: "1234567890123456"
//	    routing_number: "021000089"
//	    bank_name: Citi Private Bank
func FromYAML(r io.Reader) (*Directory, error) {
	var f file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, dErrors.Wrap(err, dErrors.CodeConfiguration, "bank directory file is malformed")
	}
	if len(f.Banks) == 0 {
		return nil, dErrors.New(dErrors.CodeConfiguration, "bank directory file lists no banks")
	}
	return New(f.Banks...)
}

// Get is an exact, case-sensitive lookup.
func (d *Directory) Get(bankID string) (models.BankAccount, bool) {
	a, ok := d.accounts[bankID]
	return a, ok
}

// IDs returns bank ids in seed order.
func (d *Directory) IDs() []string {
	return append([]string(nil), d.order...)
}
