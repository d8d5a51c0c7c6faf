package fiscal

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Ancho oficial del RTN hondureño.
const RTNWidth = 14

// RTNValidator normaliza y valida RTN contra el patrón configurado por la
// instalación (el patrón es configuración, no una constante del código).
type RTNValidator struct {
	pattern *regexp.Regexp
	width   int
}

// NewRTNValidator compila el patrón. Un patrón vacío usa `^\d{14}$`.
func NewRTNValidator(pattern string, width int) (*RTNValidator, error) {
	if width <= 0 {
		width = RTNWidth
	}
	if pattern == "" {
		pattern = fmt.Sprintf(`^\d{%d}$`, width)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("fiscal: patrón de RTN inválido %q: %w", pattern, err)
	}
	return &RTNValidator{pattern: re, width: width}, nil
}

// Normalize descarta todo lo que no sea dígito y rellena con ceros a la
// izquierda hasta el ancho fijo: "801-1999-12345" -> "00801199912345".
func (v *RTNValidator) Normalize(raw string) string {
	digits := extractDigits(raw)
	if len(digits) < v.width {
		digits = strings.Repeat("0", v.width-len(digits)) + digits
	}
	return digits
}

// Validate valida el RTN ya normalizado contra el patrón configurado.
func (v *RTNValidator) Validate(rtn string) error {
	if !v.pattern.MatchString(rtn) {
		return fmt.Errorf("fiscal: RTN %q no cumple el formato requerido", rtn)
	}
	return nil
}

// NormalizeAndValidate combina ambos pasos; es lo que usa el emisor de facturas.
func (v *RTNValidator) NormalizeAndValidate(raw string) (string, error) {
	rtn := v.Normalize(raw)
	if err := v.Validate(rtn); err != nil {
		return "", err
	}
	return rtn, nil
}

func extractDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
