package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Company is one entry of a sector. Missing metrics decode to nil and are
// rendered as JSON null.
type Company struct {
	Name      string   `json:"name"`
	Ticker    string   `json:"ticker"`
	MarketCap *float64 `json:"market_cap"`
	Revenue   *float64 `json:"revenue"`
}

func (c Company) Validate() error {
	if c.Name == "" {
		return errors.New("company name is required")
	}
	if c.Ticker == "" {
		return errors.New("company ticker is required")
	}
	return nil
}

// Sector is a named, ordered list of companies.
type Sector struct {
	Name      string
	Companies []Company
}

// CorporateStructure maps sector names to companies while keeping the order
// the sectors appear in the source document. Ticker lookups scan in that
// order, so the first sector listing a ticker owns it.
type CorporateStructure struct {
	Sectors []Sector
	index   map[string]int
}

// NewCorporateStructure builds a structure from sectors in the given order.
func NewCorporateStructure(sectors ...Sector) (*CorporateStructure, error) {
	cs := &CorporateStructure{}
	for _, s := range sectors {
		if err := cs.add(s); err != nil {
			return nil, err
		}
	}
	return cs, nil
}

// Sector returns the companies for an exact, case-sensitive sector name.
func (cs *CorporateStructure) Sector(name string) ([]Company, bool) {
	i, ok := cs.index[name]
	if !ok {
		return nil, false
	}
	return cs.Sectors[i].Companies, true
}

func (cs *CorporateStructure) add(s Sector) error {
	if cs.index == nil {
		cs.index = make(map[string]int)
	}
	if _, dup := cs.index[s.Name]; dup {
		return fmt.Errorf("duplicate sector %q", s.Name)
	}
	for i, c := range s.Companies {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("sector %q company %d: %w", s.Name, i, err)
		}
	}
	if s.Companies == nil {
		s.Companies = []Company{}
	}
	cs.index[s.Name] = len(cs.Sectors)
	cs.Sectors = append(cs.Sectors, s)
	return nil
}

// UnmarshalJSON streams the top-level object so sector order survives.
func (cs *CorporateStructure) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	out := CorporateStructure{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected sector name, got %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("sector %q: %w", name, err)
		}
		if len(raw) == 0 || raw[0] != '[' {
			return fmt.Errorf("sector %q: expected an array of companies", name)
		}
		var companies []Company
		if err := json.Unmarshal(raw, &companies); err != nil {
			return fmt.Errorf("sector %q: %w", name, err)
		}
		if err := out.add(Sector{Name: name, Companies: companies}); err != nil {
			return err
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after corporate structure")
	}

	*cs = out
	return nil
}

// MarshalJSON writes sectors in their original order.
func (cs CorporateStructure) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range cs.Sectors {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(s.Name)
		if err != nil {
			return nil, err
		}
		companies := s.Companies
		if companies == nil {
			companies = []Company{}
		}
		list, err := json.Marshal(companies)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(list)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}
