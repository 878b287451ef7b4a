package xlsx

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExporter_HeaderWrittenOncePerWorkbook(t *testing.T) {
	exporter, err := NewExporter()
	require.NoError(t, err)
	defer exporter.Close()

	require.NoError(t, exporter.Append([]Record{{Type: "COMERCIAL", LicenseNumber: "100-1"}}))
	require.NoError(t, exporter.Append([]Record{{Type: "PROFESIONAL", LicenseNumber: "100-2"}}))

	assert.Equal(t, 3, exporter.RowCount()) // header + 2 data rows

	buf, err := exporter.Flush()
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("data")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "tipo", rows[0][0])
	assert.Equal(t, "100-1", rows[1][1])
	assert.Equal(t, "100-2", rows[2][1])
}

func TestExporter_NoAppendsYieldsEmptySheet(t *testing.T) {
	exporter, err := NewExporter()
	require.NoError(t, err)
	defer exporter.Close()

	assert.Equal(t, 0, exporter.RowCount())

	buf, err := exporter.Flush()
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("data")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestExporter_AppendEmptyPageWritesHeader(t *testing.T) {
	exporter, err := NewExporter()
	require.NoError(t, err)
	defer exporter.Close()

	require.NoError(t, exporter.Append(nil))
	assert.Equal(t, 1, exporter.RowCount())
}
