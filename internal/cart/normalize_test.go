package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
		isNil    bool
	}{
		{name: "Plain dollar price", input: "$3.99", expected: 3.99},
		{name: "Price with thousand separator", input: "$1,299.00", expected: 1299.00},
		{name: "Currency code prefix", input: "USD 45.50", expected: 45.50},
		{name: "Surrounding whitespace and text", input: "  Price: 12.34 (each)  ", expected: 12.34},
		{name: "Integer price", input: "7", expected: 7},
		{name: "Empty input", input: "", isNil: true},
		{name: "No digits at all", input: "free", isNil: true},
		{name: "Only punctuation survives stripping", input: "$.,.", isNil: true},
		{name: "Multiple decimal points", input: "3.9.9", isNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParsePrice(tt.input)
			if tt.isNil {
				assert.Nil(t, result)
			} else {
				require.NotNil(t, result)
				assert.Equal(t, tt.expected, *result)
			}
		})
	}
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{name: "Plain number", input: "2", expected: 2},
		{name: "Labelled quantity", input: "Qty: 3", expected: 3},
		{name: "Dropdown prompt text", input: "Qty:\n10", expected: 10},
		{name: "Empty input defaults to one", input: "", expected: 1},
		{name: "No digits defaults to one", input: "many", expected: 1},
		{name: "Zero defaults to one", input: "0", expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseQuantity(tt.input))
		})
	}
}

func TestParseQuantityNeverBelowOne(t *testing.T) {
	inputs := []string{"", "0", "00", "-5", "x", "0 items", "   "}
	for _, input := range inputs {
		assert.GreaterOrEqual(t, ParseQuantity(input), 1, "input %q", input)
	}
}
