// Package fiscal contiene los cálculos puros de numeración fiscal hondureña:
// formato del número de documento bajo un CAI, parseo del rango autorizado,
// normalización de RTN y monto en letras. No tiene dependencias de persistencia.
package fiscal

import (
	"fmt"
	"strconv"
	"strings"
)

// Anchos de los segmentos del número fiscal EEE-PPP-TT-NNNNNNNN.
const (
	EstablishmentWidth   = 3
	EmissionPointWidth   = 3
	DocumentTypeWidth    = 2
	DefaultSequenceWidth = 8
)

// NumberFormat son los códigos de formato de una sucursal para materializar
// números fiscales. Se capturan por autorización (no hay valores globales:
// cada sucursal tiene su establecimiento y punto de emisión propios).
type NumberFormat struct {
	EstablishmentCode string // ej: "000"
	EmissionPointCode string // ej: "001"
	DocumentTypeCode  string // ej: "01"
	SequenceWidth     int    // ancho del correlativo con ceros a la izquierda; 0 = DefaultSequenceWidth
}

// Validate verifica que los segmentos sean numéricos y del ancho exigido por el SAR.
func (f NumberFormat) Validate() error {
	if err := checkSegment("establecimiento", f.EstablishmentCode, EstablishmentWidth); err != nil {
		return err
	}
	if err := checkSegment("punto de emisión", f.EmissionPointCode, EmissionPointWidth); err != nil {
		return err
	}
	if err := checkSegment("tipo de documento", f.DocumentTypeCode, DocumentTypeWidth); err != nil {
		return err
	}
	return nil
}

func (f NumberFormat) sequenceWidth() int {
	if f.SequenceWidth <= 0 {
		return DefaultSequenceWidth
	}
	return f.SequenceWidth
}

// Format materializa el número fiscal de un correlativo: EEE-PPP-TT-NNNNNNNN.
func (f NumberFormat) Format(sequence int64) (string, error) {
	if err := f.Validate(); err != nil {
		return "", err
	}
	if sequence <= 0 {
		return "", fmt.Errorf("fiscal: el correlativo debe ser positivo, se recibió %d", sequence)
	}
	width := f.sequenceWidth()
	seq := strconv.FormatInt(sequence, 10)
	if len(seq) > width {
		return "", fmt.Errorf("fiscal: el correlativo %d excede el ancho %d", sequence, width)
	}
	return fmt.Sprintf("%s-%s-%s-%0*d",
		f.EstablishmentCode, f.EmissionPointCode, f.DocumentTypeCode, width, sequence), nil
}

// ParseRangeBound extrae el correlativo entero de un límite de rango tal como
// lo emite el SAR. Acepta el número fiscal completo ("000-001-01-00000001"),
// en cuyo caso toma el último segmento, o un número plano con separadores de
// agrupación ("1.000", "1,000", "1000").
func ParseRangeBound(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("fiscal: límite de rango vacío")
	}
	if i := strings.LastIndex(s, "-"); i >= 0 {
		s = s[i+1:]
	}
	clean := strings.Map(func(r rune) rune {
		switch r {
		case '.', ',', ' ':
			return -1
		}
		return r
	}, s)
	n, err := strconv.ParseInt(clean, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("fiscal: límite de rango inválido %q: %w", s, err)
	}
	return n, nil
}

// ParseRange parsea ambos límites y valida que el rango sea positivo y no vacío.
func ParseRange(startRaw, endRaw string) (start, end int64, err error) {
	start, err = ParseRangeBound(startRaw)
	if err != nil {
		return 0, 0, err
	}
	end, err = ParseRangeBound(endRaw)
	if err != nil {
		return 0, 0, err
	}
	if start <= 0 {
		return 0, 0, fmt.Errorf("fiscal: el rango debe iniciar en un correlativo positivo (%d)", start)
	}
	if end < start {
		return 0, 0, fmt.Errorf("fiscal: rango invertido [%d, %d]", start, end)
	}
	return start, end, nil
}

func checkSegment(name, value string, width int) error {
	if len(value) != width {
		return fmt.Errorf("fiscal: %s debe tener %d dígitos, se recibió %q", name, width, value)
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return fmt.Errorf("fiscal: %s debe ser numérico, se recibió %q", name, value)
		}
	}
	return nil
}
