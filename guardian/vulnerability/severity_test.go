package vulnerability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		input    Severity
		expected string
	}{
		{input: UnknownSeverity, expected: "unknown"},
		{input: LowSeverity, expected: "low"},
		{input: HighSeverity, expected: "high"},
		{input: CriticalSeverity, expected: "critical"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.input.String())
		})
	}
}
