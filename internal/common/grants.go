package common

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
)

// GrantPolicy configures the credits granted to a newly created user.
type GrantPolicy struct {
	SignupGrant string `yaml:"signup_grant"`
	GrantNote   string `yaml:"grant_note"`
}

// LoadGrantPolicy reads the grant policy file. A missing amount means no
// starting grant.
func LoadGrantPolicy(grantsFile string) (decimal.Decimal, string, error) {
	var grantsPath string
	if filepath.IsAbs(grantsFile) {
		grantsPath = grantsFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return decimal.Zero, "", fmt.Errorf("failed to get working directory: %w", err)
		}
		grantsPath = filepath.Join(wd, grantsFile)
	}

	data, err := os.ReadFile(grantsPath)
	if err != nil {
		return decimal.Zero, "", fmt.Errorf("unable to read %s: %w", grantsFile, err)
	}

	var policy GrantPolicy
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return decimal.Zero, "", fmt.Errorf("unable to parse %s: %w", grantsFile, err)
	}

	if policy.SignupGrant == "" {
		return decimal.Zero, policy.GrantNote, nil
	}

	amount, err := decimal.NewFromString(policy.SignupGrant)
	if err != nil {
		return decimal.Zero, "", fmt.Errorf("invalid signup_grant %q in %s: %w", policy.SignupGrant, grantsFile, err)
	}
	if amount.IsNegative() {
		return decimal.Zero, "", fmt.Errorf("signup_grant in %s cannot be negative", grantsFile)
	}

	return amount, policy.GrantNote, nil
}
