package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTypesCSV_UTF8(t *testing.T) {
	raw := []byte("code;name;factor;category;units_per_package;description\n" +
		"DEV;Devolución cliente;1;inbound;;\n" +
		"PALLET;Pallet cerrado;1;inbound;120;Entrada por pallet\n")

	defs, err := parseTypesCSV(raw, false)
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "Devolución cliente", defs[0].Name)
	assert.Nil(t, defs[0].UnitsPerPackage)
	require.NotNil(t, defs[1].UnitsPerPackage)
	assert.Equal(t, 120, *defs[1].UnitsPerPackage)
	assert.Equal(t, "Entrada por pallet", defs[1].Description)
}

func TestParseTypesCSV_Latin1Detectado(t *testing.T) {
	// "Devolución" en ISO-8859-1: ó = 0xF3
	raw := append([]byte("code;name;factor;category;units_per_package;description\nDEV;Devoluci"), 0xF3)
	raw = append(raw, []byte("n;1;inbound;;\n")...)

	defs, err := parseTypesCSV(raw, false)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "Devolución", defs[0].Name)
}

func TestParseTypesCSV_CabeceraIncorrecta(t *testing.T) {
	_, err := parseTypesCSV([]byte("codigo;nombre;factor;categoria;paquete;descripcion\n"), false)
	assert.Error(t, err)
}

func TestParseTypesCSV_FactorNoNumerico(t *testing.T) {
	raw := []byte("code;name;factor;category;units_per_package;description\nX;X;uno;inbound;;\n")
	_, err := parseTypesCSV(raw, false)
	assert.ErrorContains(t, err, "línea 2")
}
