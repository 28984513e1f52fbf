package settings

import (
	"encoding/json"

	"github.com/annuksk07-cloud/xpenseflow/internal/currency"
)

// Settings is the singleton configuration document for an identity
type Settings struct {
	BudgetLimit   float64                   `json:"budgetLimit"`
	SavingsGoal   float64                   `json:"savingsGoal"`
	BaseCurrency  currency.Code             `json:"baseCurrency"`
	IsPrivacyMode bool                      `json:"isPrivacyMode"`
	CustomRates   map[currency.Code]float64 `json:"customRates"`
}

// Default returns the settings applied before any remote document arrives
// and as the base for incomplete remote documents
func Default() Settings {
	return Settings{
		BudgetLimit:  2000,
		SavingsGoal:  5000,
		BaseCurrency: currency.USD,
		CustomRates:  map[currency.Code]float64{},
	}
}

// Patch is a partial settings update; nil fields are left unchanged
type Patch struct {
	BudgetLimit   *float64                   `json:"budgetLimit,omitempty"`
	SavingsGoal   *float64                   `json:"savingsGoal,omitempty"`
	BaseCurrency  *currency.Code             `json:"baseCurrency,omitempty"`
	IsPrivacyMode *bool                      `json:"isPrivacyMode,omitempty"`
	CustomRates   *map[currency.Code]float64 `json:"customRates,omitempty"`
}

// Apply merges the patch into a copy of s and returns the result
func (s Settings) Apply(p Patch) Settings {
	out := s.Clone()
	if p.BudgetLimit != nil {
		out.BudgetLimit = *p.BudgetLimit
	}
	if p.SavingsGoal != nil {
		out.SavingsGoal = *p.SavingsGoal
	}
	if p.BaseCurrency != nil {
		out.BaseCurrency = *p.BaseCurrency
	}
	if p.IsPrivacyMode != nil {
		out.IsPrivacyMode = *p.IsPrivacyMode
	}
	if p.CustomRates != nil {
		out.CustomRates = make(map[currency.Code]float64, len(*p.CustomRates))
		for code, rate := range *p.CustomRates {
			out.CustomRates[code] = rate
		}
	}
	return out
}

// Validate checks a patched settings document against the rate table
func (s Settings) Validate(rates *currency.Table) error {
	if s.BudgetLimit < 0 {
		return ErrNegativeBudget
	}
	if s.SavingsGoal < 0 {
		return ErrNegativeSavingsGoal
	}
	if !rates.Valid(s.BaseCurrency) {
		return currency.ErrUnknownCurrency
	}
	for _, rate := range s.CustomRates {
		if rate <= 0 {
			return ErrNonPositiveRate
		}
	}
	return nil
}

// FromDocument decodes a remote settings document over the defaults, so an
// incomplete upstream document never leaves a field undefined
func FromDocument(data json.RawMessage) Settings {
	s := Default()
	// Undecodable remote documents fall back to defaults entirely
	_ = json.Unmarshal(data, &s)
	s.normalize()
	return s
}

// normalize repairs the parts of a remote document the rest of the engine
// relies on: customRates is always a well-formed map of positive rates.
func (s *Settings) normalize() {
	if s.CustomRates == nil {
		s.CustomRates = map[currency.Code]float64{}
	}
	for code, rate := range s.CustomRates {
		if rate <= 0 {
			delete(s.CustomRates, code)
		}
	}
	if s.BaseCurrency == "" {
		s.BaseCurrency = currency.USD
	}
	if s.BudgetLimit < 0 {
		s.BudgetLimit = 0
	}
	if s.SavingsGoal < 0 {
		s.SavingsGoal = 0
	}
}

// Clone returns a deep copy that shares no map state with s
func (s Settings) Clone() Settings {
	out := s
	out.CustomRates = make(map[currency.Code]float64, len(s.CustomRates))
	for code, rate := range s.CustomRates {
		out.CustomRates[code] = rate
	}
	return out
}
