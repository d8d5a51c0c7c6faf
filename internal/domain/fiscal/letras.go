package fiscal

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AmountInWords convierte un monto a su expresión legal en letras, tal como se
// imprime en la factura: "DOS MIL TRESCIENTOS CUARENTA Y CINCO LEMPIRAS CON 67/100".
// Se escribe sin tildes (mayúsculas de caja registradora) y con apócope de
// "uno" ("UN LEMPIRA", "VEINTIUN LEMPIRAS").
func AmountInWords(amount decimal.Decimal) (string, error) {
	if amount.IsNegative() {
		return "", fmt.Errorf("fiscal: el monto en letras no admite negativos (%s)", amount.String())
	}
	rounded := amount.Round(2)
	intPart := rounded.Truncate(0)
	cents := rounded.Sub(intPart).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	lempiras := intPart.IntPart()

	currency := "LEMPIRAS"
	switch {
	case lempiras == 1:
		currency = "LEMPIRA"
	case lempiras >= 1_000_000 && lempiras%1_000_000 == 0:
		// Millones exactos llevan "DE": "UN MILLON DE LEMPIRAS".
		currency = "DE LEMPIRAS"
	}
	return fmt.Sprintf("%s %s CON %02d/100", integerInWords(lempiras), currency, cents), nil
}

var unitWords = [30]string{
	"", "UN", "DOS", "TRES", "CUATRO", "CINCO", "SEIS", "SIETE", "OCHO", "NUEVE",
	"DIEZ", "ONCE", "DOCE", "TRECE", "CATORCE", "QUINCE",
	"DIECISEIS", "DIECISIETE", "DIECIOCHO", "DIECINUEVE",
	"VEINTE", "VEINTIUN", "VEINTIDOS", "VEINTITRES", "VEINTICUATRO",
	"VEINTICINCO", "VEINTISEIS", "VEINTISIETE", "VEINTIOCHO", "VEINTINUEVE",
}

var tensWords = [10]string{
	"", "", "", "TREINTA", "CUARENTA", "CINCUENTA", "SESENTA", "SETENTA", "OCHENTA", "NOVENTA",
}

var hundredsWords = [10]string{
	"", "CIENTO", "DOSCIENTOS", "TRESCIENTOS", "CUATROCIENTOS",
	"QUINIENTOS", "SEISCIENTOS", "SETECIENTOS", "OCHOCIENTOS", "NOVECIENTOS",
}

// integerInWords escribe 0..999 999 999 999 en letras.
func integerInWords(n int64) string {
	if n == 0 {
		return "CERO"
	}
	if n < 1_000_000 {
		return upToMillion(n)
	}
	millions := n / 1_000_000
	rest := n % 1_000_000
	var head string
	if millions == 1 {
		head = "UN MILLON"
	} else {
		head = upToMillion(millions) + " MILLONES"
	}
	if rest == 0 {
		return head
	}
	return head + " " + upToMillion(rest)
}

func upToMillion(n int64) string {
	if n < 1000 {
		return upToThousand(n)
	}
	thousands := n / 1000
	rest := n % 1000
	var head string
	if thousands == 1 {
		head = "MIL"
	} else {
		head = upToThousand(thousands) + " MIL"
	}
	if rest == 0 {
		return head
	}
	return head + " " + upToThousand(rest)
}

func upToThousand(n int64) string {
	if n == 100 {
		return "CIEN"
	}
	hundreds := n / 100
	rest := n % 100
	var s string
	if hundreds > 0 {
		s = hundredsWords[hundreds]
	}
	if rest > 0 {
		if s != "" {
			s += " "
		}
		if rest < 30 {
			s += unitWords[rest]
		} else {
			s += tensWords[rest/10]
			if rest%10 > 0 {
				s += " Y " + unitWords[rest%10]
			}
		}
	}
	return s
}
