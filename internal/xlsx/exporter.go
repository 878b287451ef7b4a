package xlsx

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	// ContentTypeXLSX is the MIME type of the exported workbook.
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	// ExportFilename is the fixed attachment filename of the export.
	ExportFilename = "data.xlsx"

	exportSheet = "data"
)

// Record is one flattened export row with human-readable field values.
type Record struct {
	Type                     string
	LicenseNumber            string
	NationalID               string
	Name                     string
	Address                  string
	Period                   string
	Capital                  float64
	TaxableAmount            float64
	Total                    float64
	Issuance                 int
	PaymentDate              string
	BusinessSector           string
	AdditionalTaxID          string
	RepresentativeNationalID string
	RepresentativeName       string
}

var exportHeaders = []interface{}{
	"tipo", "patente", "rut", "nombre", "dirección", "periodo", "capital",
	"afecto", "total", "emisión", "fecha de pago", "giro", "agtp",
	"rut representante", "nombre representante",
}

// Exporter accumulates the rendered export sheet page by page. Only the
// serialized sheet grows across pages; raw rows are released after each
// Append, bounding peak memory to one page of raw data.
type Exporter struct {
	file    *excelize.File
	nextRow int
}

func NewExporter() (*Exporter, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		f.Close()
		return nil, err
	}
	return &Exporter{file: f, nextRow: 1}, nil
}

// Append writes one page of records to the sheet. The header row is emitted
// once, ahead of the first page; subsequent pages only add data rows.
func (e *Exporter) Append(records []Record) error {
	if e.nextRow == 1 {
		if err := e.setRow(1, exportHeaders); err != nil {
			return err
		}
		e.nextRow = 2
	}

	for _, record := range records {
		row := []interface{}{
			record.Type,
			record.LicenseNumber,
			record.NationalID,
			record.Name,
			record.Address,
			record.Period,
			record.Capital,
			record.TaxableAmount,
			record.Total,
			record.Issuance,
			record.PaymentDate,
			record.BusinessSector,
			record.AdditionalTaxID,
			record.RepresentativeNationalID,
			record.RepresentativeName,
		}
		if err := e.setRow(e.nextRow, row); err != nil {
			return err
		}
		e.nextRow++
	}
	return nil
}

// Flush serializes the complete workbook into a single in-memory buffer.
func (e *Exporter) Flush() (*bytes.Buffer, error) {
	return e.file.WriteToBuffer()
}

// Close releases the underlying workbook resources.
func (e *Exporter) Close() error {
	return e.file.Close()
}

// RowCount reports the number of rows written so far, header included.
func (e *Exporter) RowCount() int {
	return e.nextRow - 1
}

func (e *Exporter) setRow(rowIndex int, values []interface{}) error {
	cellRef, err := excelize.CoordinatesToCellName(1, rowIndex)
	if err != nil {
		return fmt.Errorf("invalid row index %d: %w", rowIndex, err)
	}
	return e.file.SetSheetRow(exportSheet, cellRef, &values)
}
