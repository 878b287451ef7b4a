package xlsx

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/municipio/patentes-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

var (
	ErrNoWorksheet = errors.New("no worksheet found in workbook")
	ErrEmptySheet  = errors.New("worksheet has no data rows")
)

// Row is one loosely-validated spreadsheet row. Optional or empty cells are
// nil, never zero values, so downstream stages can tell "absent" from "0".
type Row struct {
	Type                     *string
	LicenseNumber            *string
	NationalID               *string
	Name                     *string
	Street                   *string
	Number                   *string
	Clarification            *string
	Period                   *string
	Capital                  *float64
	TaxableAmount            *float64
	Total                    *float64
	Issuance                 *int
	PaymentDate              *string
	BusinessSector           *string
	AdditionalTaxID          *string
	RepresentativeNationalID *string
	RepresentativeName       *string
}

// ReadRows parses the first worksheet of an uploaded workbook into an ordered
// row sequence. The header row maps columns by name, so column order in the
// sheet does not matter.
func ReadRows(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, ErrNoWorksheet
	}

	rawRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, err
	}
	if len(rawRows) == 0 {
		return nil, ErrEmptySheet
	}

	columns := mapHeader(rawRows[0])
	logger.Debug("Parsed worksheet header", map[string]interface{}{
		"sheet":   sheetName,
		"columns": len(columns),
	})

	rows := make([]Row, 0, len(rawRows)-1)
	for _, rawRow := range rawRows[1:] {
		rows = append(rows, parseRow(rawRow, columns))
	}
	return rows, nil
}

// mapHeader resolves each known column name to its index. Accented and
// spaced variants of the original headers are accepted.
func mapHeader(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, cell := range header {
		if name, ok := headerAliases[normalizeHeader(cell)]; ok {
			columns[name] = i
		}
	}
	return columns
}

var headerAliases = map[string]string{
	"tipo":                "type",
	"patente":             "licenseNumber",
	"rut":                 "nationalId",
	"nombre":              "name",
	"calle":               "street",
	"numero":              "number",
	"aclaratoria":         "clarification",
	"periodo":             "period",
	"capital":             "capital",
	"afecto":              "taxableAmount",
	"total":               "total",
	"emision":             "issuance",
	"fechapago":           "paymentDate",
	"fechadepago":         "paymentDate",
	"giro":                "businessSector",
	"agtp":                "additionalTaxId",
	"rutrepresentante":    "representativeNationalId",
	"nombrerepresentante": "representativeName",
}

func normalizeHeader(cell string) string {
	normalized := strings.ToLower(strings.TrimSpace(cell))
	normalized = strings.ReplaceAll(normalized, " ", "")
	replacer := strings.NewReplacer("á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u")
	return replacer.Replace(normalized)
}

func parseRow(rawRow []string, columns map[string]int) Row {
	// Whitespace-only cells count as absent. The raw value is kept as-is;
	// trailing-space trimming belongs to the normalizer, not the reader.
	cell := func(name string) *string {
		idx, ok := columns[name]
		if !ok || idx >= len(rawRow) {
			return nil
		}
		if strings.TrimSpace(rawRow[idx]) == "" {
			return nil
		}
		raw := rawRow[idx]
		return &raw
	}

	return Row{
		Type:                     cell("type"),
		LicenseNumber:            cell("licenseNumber"),
		NationalID:               cell("nationalId"),
		Name:                     cell("name"),
		Street:                   cell("street"),
		Number:                   cell("number"),
		Clarification:            cell("clarification"),
		Period:                   cell("period"),
		Capital:                  floatCell(cell("capital")),
		TaxableAmount:            floatCell(cell("taxableAmount")),
		Total:                    floatCell(cell("total")),
		Issuance:                 intCell(cell("issuance")),
		PaymentDate:              cell("paymentDate"),
		BusinessSector:           cell("businessSector"),
		AdditionalTaxID:          cell("additionalTaxId"),
		RepresentativeNationalID: cell("representativeNationalId"),
		RepresentativeName:       cell("representativeName"),
	}
}

func floatCell(raw *string) *float64 {
	if raw == nil {
		return nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(*raw), 64)
	if err != nil {
		return nil
	}
	return &value
}

func intCell(raw *string) *int {
	if raw == nil {
		return nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(*raw))
	if err != nil {
		return nil
	}
	return &value
}
