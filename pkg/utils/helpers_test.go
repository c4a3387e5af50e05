package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 5*time.Minute, ParseDuration(""))
	assert.Equal(t, 5*time.Minute, ParseDuration("soon"))
	assert.Equal(t, 30*time.Second, ParseDuration("30s"))
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   float64
		wantOK bool
	}{
		{name: "integer", input: "1200", want: 1200, wantOK: true},
		{name: "decimal", input: "1200.5", want: 1200.5, wantOK: true},
		{name: "padded", input: "  5000 ", want: 5000, wantOK: true},
		{name: "negative", input: "-3", want: -3, wantOK: true},
		{name: "exponent", input: "1e3", want: 1000, wantOK: true},
		{name: "blank", input: "   ", wantOK: false},
		{name: "text", input: "abc", wantOK: false},
		{name: "thousands separator", input: "1,200", wantOK: false},
		{name: "nan", input: "NaN", wantOK: false},
		{name: "inf", input: "+Inf", wantOK: false},
		{name: "infinity", input: "Infinity", wantOK: false},
		{name: "negative inf", input: "-inf", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseNumber(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestCleanHeader(t *testing.T) {
	assert.Equal(t, "post code", CleanHeader(` "post code" `))
	assert.Equal(t, "Operator", CleanHeader("\ufeffOperator"))
}
