package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
)

var typesHeader = []string{"code", "name", "factor", "category", "units_per_package", "description"}

func readTypesCSV(path string, latin1 bool) ([]dto.CreateMovementTypeRequest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseTypesCSV(raw, latin1)
}

// parseTypesCSV interpreta el catálogo; la cabecera es obligatoria y las columnas
// units_per_package y description pueden ir vacías.
func parseTypesCSV(raw []byte, latin1 bool) ([]dto.CreateMovementTypeRequest, error) {
	var r io.Reader = bytes.NewReader(raw)
	if latin1 || !utf8.Valid(raw) {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = len(typesHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("cabecera: %w", err)
	}
	for i, col := range typesHeader {
		if !strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff")), col) {
			return nil, fmt.Errorf("cabecera: columna %d debe ser %q", i+1, col)
		}
	}

	var out []dto.CreateMovementTypeRequest
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		factor, err := strconv.Atoi(strings.TrimSpace(rec[2]))
		if err != nil {
			return nil, fmt.Errorf("línea %d: factor %q", line, rec[2])
		}
		def := dto.CreateMovementTypeRequest{
			Code:        strings.TrimSpace(rec[0]),
			Name:        strings.TrimSpace(rec[1]),
			Factor:      factor,
			Category:    strings.ToLower(strings.TrimSpace(rec[3])),
			Description: strings.TrimSpace(rec[5]),
		}
		if s := strings.TrimSpace(rec[4]); s != "" {
			units, err := strconv.Atoi(s)
			if err != nil {
				return nil, fmt.Errorf("línea %d: units_per_package %q", line, s)
			}
			def.UnitsPerPackage = &units
		}
		out = append(out, def)
	}
	return out, nil
}
