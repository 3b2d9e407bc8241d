package export

import (
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Plain formats d in plain notation, keeping the scale it was written with:
// 15.50 stays "15.50" and 1e3 becomes "1000".
func Plain(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}

// Amount is a decimal that serializes as a bare number in plain notation.
type Amount struct {
	decimal.Decimal
}

func (a Amount) String() string {
	return Plain(a.Decimal)
}

// MarshalJSON writes the amount as a JSON number, not a string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// MarshalYAML writes the amount as an untagged plain scalar.
func (a Amount) MarshalYAML() (any, error) {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: a.String()}, nil
}
