package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		text string
		want *float64
	}{
		{"R$ 35.000,00", f(35000)},
		{"R$1.234.567,89", f(1234567.89)},
		{"12500", f(12500)},
		{"R$ 900,50", f(900.5)},
		{"Lance atual: R$ 18.300,00", f(18300)},
		{"sem lance", nil},
		{"", nil},
		{"R$ --", nil},
	}

	for _, tt := range tests {
		got := ParseMoney(tt.text)
		if tt.want == nil {
			assert.Nil(t, got, "text %q", tt.text)
			continue
		}
		require.NotNil(t, got, "text %q", tt.text)
		assert.InDelta(t, *tt.want, *got, 0.001, "text %q", tt.text)
	}
}

func TestParseInt(t *testing.T) {
	assert.Equal(t, 74210, *ParseInt("74.210 km"))
	assert.Equal(t, 0, *ParseInt("0 km"))
	assert.Nil(t, ParseInt("não informado"))
	assert.Nil(t, ParseInt(""))
}

func f(v float64) *float64 { return &v }
