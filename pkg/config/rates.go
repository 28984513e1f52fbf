package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RatesFile is an optional YAML file replacing the built-in static
// exchange rate table, e.g.:
//
//	rates:
//	  USD: 1
//	  EUR: 0.92
type RatesFile struct {
	Rates map[string]float64 `yaml:"rates"`
}

// LoadRates loads a static rate table override from a YAML file
func LoadRates(path string) (map[string]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rates file: %w", err)
	}

	var file RatesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rates file: %w", err)
	}

	if len(file.Rates) == 0 {
		return nil, fmt.Errorf("rates file %s defines no rates", path)
	}

	for code, rate := range file.Rates {
		if rate <= 0 {
			return nil, fmt.Errorf("rate for %s must be positive (got %v)", code, rate)
		}
	}

	return file.Rates, nil
}
