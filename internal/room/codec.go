package room

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MarshalAsset serialises a as YAML.
//
// Postcondition: the result round-trips through LoadAssetFromBytes for any
// valid asset.
func MarshalAsset(a *Asset) ([]byte, error) {
	data, err := yaml.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("serialising asset %q: %w", a.Name, err)
	}
	return data, nil
}

// LoadAssetFromBytes parses and validates an asset from YAML bytes. The
// returned asset has no live FunctionContainer; only its name survives.
//
// Precondition: data must be valid YAML conforming to the asset schema.
// Postcondition: Returns a validated Asset or a non-nil error.
func LoadAssetFromBytes(data []byte) (*Asset, error) {
	var a Asset
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parsing asset YAML: %w", err)
	}
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("validating asset: %w", err)
	}
	return &a, nil
}

// LoadAssetFromFile reads and validates a single asset YAML file.
//
// Precondition: path must point to a valid YAML asset file.
// Postcondition: Returns a validated Asset or a non-nil error.
func LoadAssetFromFile(path string) (*Asset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading asset file %s: %w", path, err)
	}
	return LoadAssetFromBytes(data)
}
