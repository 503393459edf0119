package engine

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetResultFolder(t *testing.T) {
	tests := []struct {
		name     string
		symbol   string
		expected string
	}{
		{"plain symbol", "AAPL", filepath.Join("results", "AAPL_sma_cross_run-1")},
		{"pair with slash", "BTC/USDT", filepath.Join("results", "BTC-USDT_sma_cross_run-1")},
		{"symbol with space", "BRK B", filepath.Join("results", "BRK_B_sma_cross_run-1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, getResultFolder("results", tt.symbol, "sma_cross", "run-1"))
		})
	}
}
