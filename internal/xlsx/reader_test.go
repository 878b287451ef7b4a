package xlsx

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellRef, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

var fullHeader = []interface{}{
	"tipo", "patente", "rut", "nombre", "calle", "numero", "aclaratoria",
	"periodo", "capital", "afecto", "total", "emision", "fecha de pago",
	"giro", "agtp", "rut representante", "nombre representante",
}

func TestReadRows_FullRow(t *testing.T) {
	reader := buildWorkbook(t, [][]interface{}{
		fullHeader,
		{"COMERCIAL", "100-1", "11111111-1", "Almacén", "Calle Falsa", "123", "Local B",
			"2023-1", 500000, 450000, 52000, 2023, "20230615",
			"Venta de abarrotes", "AG-1", "99999999-9", "Ana Pérez"},
	})

	rows, err := ReadRows(reader)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	require.NotNil(t, row.Type)
	assert.Equal(t, "COMERCIAL", *row.Type)
	require.NotNil(t, row.LicenseNumber)
	assert.Equal(t, "100-1", *row.LicenseNumber)
	require.NotNil(t, row.Capital)
	assert.Equal(t, float64(500000), *row.Capital)
	require.NotNil(t, row.Issuance)
	assert.Equal(t, 2023, *row.Issuance)
	require.NotNil(t, row.PaymentDate)
	assert.Equal(t, "20230615", *row.PaymentDate)
	require.NotNil(t, row.Clarification)
	assert.Equal(t, "Local B", *row.Clarification)
	require.NotNil(t, row.RepresentativeName)
	assert.Equal(t, "Ana Pérez", *row.RepresentativeName)
}

func TestReadRows_EmptyCellsAreNil(t *testing.T) {
	reader := buildWorkbook(t, [][]interface{}{
		fullHeader,
		{"COMERCIAL", "100-1", "", "   ", nil, nil, nil, "2023-1"},
	})

	rows, err := ReadRows(reader)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Nil(t, row.NationalID, "empty cell")
	assert.Nil(t, row.Name, "whitespace-only cell")
	assert.Nil(t, row.Street)
	assert.Nil(t, row.PaymentDate)
	require.NotNil(t, row.Period)
	assert.Equal(t, "2023-1", *row.Period)
}

func TestReadRows_HeaderOrderIndependent(t *testing.T) {
	reader := buildWorkbook(t, [][]interface{}{
		{"patente", "tipo"},
		{"200-1", "PROFESIONAL"},
	})

	rows, err := ReadRows(reader)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	require.NotNil(t, rows[0].LicenseNumber)
	assert.Equal(t, "200-1", *rows[0].LicenseNumber)
	require.NotNil(t, rows[0].Type)
	assert.Equal(t, "PROFESIONAL", *rows[0].Type)
}

func TestReadRows_AccentedAndSpacedHeaders(t *testing.T) {
	reader := buildWorkbook(t, [][]interface{}{
		{"Período", "EMISIÓN", "Fecha Pago", "Rut Representante"},
		{"2023-2", 2023, "20230801", "88888888-8"},
	})

	rows, err := ReadRows(reader)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	require.NotNil(t, row.Period)
	assert.Equal(t, "2023-2", *row.Period)
	require.NotNil(t, row.Issuance)
	assert.Equal(t, 2023, *row.Issuance)
	require.NotNil(t, row.PaymentDate)
	require.NotNil(t, row.RepresentativeNationalID)
	assert.Equal(t, "88888888-8", *row.RepresentativeNationalID)
}

func TestReadRows_NonNumericCellsAreNil(t *testing.T) {
	reader := buildWorkbook(t, [][]interface{}{
		{"capital", "emision"},
		{"no aplica", "dos mil"},
	})

	rows, err := ReadRows(reader)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Nil(t, rows[0].Capital)
	assert.Nil(t, rows[0].Issuance)
}

func TestReadRows_HeaderOnlySheet(t *testing.T) {
	reader := buildWorkbook(t, [][]interface{}{fullHeader})

	rows, err := ReadRows(reader)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadRows_NoDataAtAll(t *testing.T) {
	reader := buildWorkbook(t, nil)

	_, err := ReadRows(reader)
	assert.ErrorIs(t, err, ErrEmptySheet)
}

func TestReadRows_NotAWorkbook(t *testing.T) {
	_, err := ReadRows(bytes.NewReader([]byte("definitely not a zip")))
	assert.Error(t, err)
}

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "fechadepago", normalizeHeader("  Fecha de Pago "))
	assert.Equal(t, "emision", normalizeHeader("EMISIÓN"))
	assert.Equal(t, "rutrepresentante", normalizeHeader("Rut Representante"))
}
