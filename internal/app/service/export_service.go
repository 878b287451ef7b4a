package service

import (
	"bytes"
	"fmt"

	"github.com/municipio/patentes-backend/internal/app/model"
	"github.com/municipio/patentes-backend/internal/app/repository"
	"github.com/municipio/patentes-backend/internal/xlsx"
	"github.com/municipio/patentes-backend/pkg/logger"
)

type ExportService interface {
	Export() (*bytes.Buffer, error)
}

type exportService struct {
	memoRepo repository.MemoRepository
	pageSize int
}

func NewExportService(memoRepo repository.MemoRepository, pageSize int) ExportService {
	if pageSize <= 0 {
		pageSize = 10000
	}
	return &exportService{memoRepo: memoRepo, pageSize: pageSize}
}

type exportState int

const (
	stateFetching exportState = iota
	stateAppend
	stateFlush
	stateDone
)

// Export pages through the joined dataset and renders it into one worksheet.
// The loop only terminates on an empty page, so a final page holding exactly
// pageSize rows is followed by one more (empty) fetch rather than cut short.
func (s *exportService) Export() (*bytes.Buffer, error) {
	exporter, err := xlsx.NewExporter()
	if err != nil {
		return nil, err
	}
	defer exporter.Close()

	logger.Info("Starting dataset export", map[string]interface{}{
		"page_size": s.pageSize,
	})

	var (
		page     []model.Memo
		payTimes map[string]model.PayTime
		buffer   *bytes.Buffer
		offset   int
	)

	state := stateFetching
	for state != stateDone {
		switch state {
		case stateFetching:
			page, payTimes, err = s.memoRepo.FindPage(offset, s.pageSize)
			if err != nil {
				return nil, err
			}
			if len(page) == 0 {
				state = stateFlush
			} else {
				state = stateAppend
			}

		case stateAppend:
			if err := exporter.Append(flattenPage(page, payTimes)); err != nil {
				return nil, err
			}
			offset += len(page)
			state = stateFetching

		case stateFlush:
			buffer, err = exporter.Flush()
			if err != nil {
				return nil, err
			}
			state = stateDone
		}
	}

	logger.Info("Dataset export completed", map[string]interface{}{
		"rows":  offset,
		"bytes": buffer.Len(),
	})
	return buffer, nil
}

// flattenPage turns one page of joined memos into flat export records, with
// the payment date components concatenated into a single display token.
func flattenPage(page []model.Memo, payTimes map[string]model.PayTime) []xlsx.Record {
	records := make([]xlsx.Record, 0, len(page))
	for _, memo := range page {
		record := xlsx.Record{
			Type:           memo.Type,
			Address:        memo.Address,
			Period:         memo.Period,
			Capital:        memo.Capital,
			TaxableAmount:  memo.TaxableAmount,
			Total:          memo.Total,
			Issuance:       memo.Issuance,
			BusinessSector: memo.BusinessSector,
		}
		if memo.AdditionalTaxID != nil {
			record.AdditionalTaxID = *memo.AdditionalTaxID
		}
		if payTime, ok := payTimes[memo.ID]; ok {
			record.PaymentDate = FormatPayTime(payTime)
		}
		if memo.Local != nil {
			record.LicenseNumber = memo.Local.LicenseNumber
			record.NationalID = memo.Local.NationalID
			record.Name = memo.Local.Name
			if memo.Local.Representative != nil {
				if memo.Local.Representative.NationalID != nil {
					record.RepresentativeNationalID = *memo.Local.Representative.NationalID
				}
				record.RepresentativeName = memo.Local.Representative.Name
			}
		}
		records = append(records, record)
	}
	return records
}

// FormatPayTime renders a decomposed payment date as d-m-y.
func FormatPayTime(payTime model.PayTime) string {
	return fmt.Sprintf("%d-%d-%d", payTime.Day, payTime.Month, payTime.Year)
}
