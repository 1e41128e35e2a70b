package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// stockRow fila válida del CSV de saldos iniciales.
type stockRow struct {
	Line     int
	SKU      string
	Quantity decimal.Decimal
}

// parseRows decodifica ISO-8859-1 y devuelve las filas con cantidad positiva. La primera fila se toma
// como encabezado si su segunda columna no es numérica. Acepta coma decimal.
func parseRows(r io.Reader, sep rune) ([]stockRow, error) {
	cr := csv.NewReader(transform.NewReader(r, charmap.ISO8859_1.NewDecoder()))
	cr.Comma = sep
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows []stockRow
	line := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if len(rec) < 2 {
			return nil, fmt.Errorf("línea %d: se esperaban 2 columnas, hay %d", line, len(rec))
		}
		sku := strings.TrimSpace(rec[0])
		qty, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(rec[1]), ",", "."))
		if err != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("línea %d: cantidad %q inválida", line, rec[1])
		}
		if sku == "" || !qty.IsPositive() {
			continue
		}
		rows = append(rows, stockRow{Line: line, SKU: sku, Quantity: qty})
	}
	return rows, nil
}
