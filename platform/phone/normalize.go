// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Normalizer formats numbers relative to a default region for inputs
// without a country prefix.
type Normalizer struct {
	region string
}

// NewNormalizer creates a Normalizer. An empty region falls back to US.
func NewNormalizer(region string) *Normalizer {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = "US"
	}
	return &Normalizer{region: region}
}

// E164 formats input to E.164. Unparseable or invalid numbers come back
// trimmed but otherwise untouched so intake never loses data.
func (n *Normalizer) E164(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, n.region)
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

// E164Ptr is E164 for optional fields. Blank input becomes nil.
func (n *Normalizer) E164Ptr(input *string) *string {
	if input == nil {
		return nil
	}
	out := n.E164(*input)
	if out == "" {
		return nil
	}
	return &out
}
