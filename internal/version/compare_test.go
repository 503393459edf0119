package version

import (
	"testing"

	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckVersionCompatibility(t *testing.T) {
	tests := []struct {
		name          string
		engineVersion string
		configVersion string
		expectCode    errors.ErrorCode
		errorContains string
	}{
		// Compatible cases
		{name: "exact match", engineVersion: "1.2.0", configVersion: "1.2.0"},
		{name: "engine patch higher", engineVersion: "1.2.1", configVersion: "1.2.0"},
		{name: "config patch higher", engineVersion: "1.2.0", configVersion: "1.2.5"},
		{name: "config does not pin a version", engineVersion: "1.2.0", configVersion: ""},
		{name: "whitespace only config version", engineVersion: "1.2.0", configVersion: "  "},
		{name: "engine is main", engineVersion: "main", configVersion: "1.3.0"},
		{name: "config is main", engineVersion: "1.2.0", configVersion: "main"},
		{name: "v prefix on both", engineVersion: "v1.2.0", configVersion: "v1.2.0"},
		{name: "prerelease engine", engineVersion: "1.2.0-alpha", configVersion: "1.2.0"},
		{name: "build metadata", engineVersion: "1.2.0+build123", configVersion: "1.2.0"},

		// Incompatible cases
		{
			name:          "engine minor higher",
			engineVersion: "1.3.0",
			configVersion: "1.2.0",
			expectCode:    errors.ErrCodeVersionMismatch,
			errorContains: "minor version mismatch",
		},
		{
			name:          "engine minor lower",
			engineVersion: "1.1.0",
			configVersion: "1.2.0",
			expectCode:    errors.ErrCodeVersionMismatch,
			errorContains: "minor version mismatch",
		},
		{
			name:          "major version differs",
			engineVersion: "2.0.0",
			configVersion: "1.2.0",
			expectCode:    errors.ErrCodeVersionMismatch,
			errorContains: "major version mismatch",
		},

		// Invalid versions
		{
			name:          "invalid engine version",
			engineVersion: "not-a-version",
			configVersion: "1.2.0",
			expectCode:    errors.ErrCodeInvalidVersion,
			errorContains: "invalid engine version",
		},
		{
			name:          "invalid config version",
			engineVersion: "1.2.0",
			configVersion: "not-a-version",
			expectCode:    errors.ErrCodeInvalidVersion,
			errorContains: "invalid config version",
		},
		{
			name:          "empty engine version",
			engineVersion: "",
			configVersion: "1.2.0",
			expectCode:    errors.ErrCodeInvalidVersion,
			errorContains: "invalid engine version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckVersionCompatibility(tt.engineVersion, tt.configVersion)

			if tt.expectCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.expectCode, errors.GetCode(err))
				assert.Contains(t, err.Error(), tt.errorContains)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestGetVersion(t *testing.T) {
	v := GetVersion()
	assert.Equal(t, Version, v)
}

func TestCurrentVersionIsValid(t *testing.T) {
	require.NoError(t, CheckVersionCompatibility(Version, Version))
}
