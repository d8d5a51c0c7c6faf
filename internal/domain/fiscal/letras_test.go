package fiscal_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain/fiscal"
)

// Vectores exactos del monto en letras: es texto legal impreso en la factura,
// cualquier cambio de redacción debe romper el test.
func TestAmountInWords_Vectores(t *testing.T) {
	cases := []struct {
		amount string
		want   string
	}{
		{"0", "CERO LEMPIRAS CON 00/100"},
		{"0.50", "CERO LEMPIRAS CON 50/100"},
		{"1", "UN LEMPIRA CON 00/100"},
		{"1.05", "UN LEMPIRA CON 05/100"},
		{"15", "QUINCE LEMPIRAS CON 00/100"},
		{"16", "DIECISEIS LEMPIRAS CON 00/100"},
		{"21", "VEINTIUN LEMPIRAS CON 00/100"},
		{"29.99", "VEINTINUEVE LEMPIRAS CON 99/100"},
		{"31", "TREINTA Y UN LEMPIRAS CON 00/100"},
		{"100", "CIEN LEMPIRAS CON 00/100"},
		{"101", "CIENTO UN LEMPIRAS CON 00/100"},
		{"115", "CIENTO QUINCE LEMPIRAS CON 00/100"},
		{"500", "QUINIENTOS LEMPIRAS CON 00/100"},
		{"999", "NOVECIENTOS NOVENTA Y NUEVE LEMPIRAS CON 00/100"},
		{"1000", "MIL LEMPIRAS CON 00/100"},
		{"1001", "MIL UN LEMPIRAS CON 00/100"},
		{"2345.67", "DOS MIL TRESCIENTOS CUARENTA Y CINCO LEMPIRAS CON 67/100"},
		{"100000", "CIEN MIL LEMPIRAS CON 00/100"},
		{"1000000", "UN MILLON DE LEMPIRAS CON 00/100"},
		{"2500000.10", "DOS MILLONES QUINIENTOS MIL LEMPIRAS CON 10/100"},
	}
	for _, tc := range cases {
		got, err := fiscal.AmountInWords(decimal.RequireFromString(tc.amount))
		require.NoError(t, err, "monto %s", tc.amount)
		assert.Equal(t, tc.want, got, "monto %s", tc.amount)
	}
}

func TestAmountInWords_Negativo(t *testing.T) {
	_, err := fiscal.AmountInWords(decimal.NewFromInt(-1))
	assert.Error(t, err)
}

func TestAmountInWords_RedondeoADosDecimales(t *testing.T) {
	got, err := fiscal.AmountInWords(decimal.RequireFromString("10.999"))
	require.NoError(t, err)
	assert.Equal(t, "ONCE LEMPIRAS CON 00/100", got)
}
