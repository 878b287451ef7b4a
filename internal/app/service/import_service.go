package service

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/municipio/patentes-backend/config"
	"github.com/municipio/patentes-backend/internal/app/model"
	"github.com/municipio/patentes-backend/internal/app/repository"
	"github.com/municipio/patentes-backend/internal/xlsx"
	"github.com/municipio/patentes-backend/pkg/logger"
	"github.com/municipio/patentes-backend/pkg/util"
)

// ImportNotifier receives progress events while an import runs. A nil
// notifier disables progress reporting.
type ImportNotifier interface {
	Publish(stage string, processed, total int)
}

// Progress stages published during an import.
const (
	StageRepresentatives = "representatives"
	StageLocals          = "locals"
	StageMemos           = "memos"
	StageDone            = "done"
)

type ImportService interface {
	Import(rows []xlsx.Row) error
}

type importService struct {
	representativeRepo repository.RepresentativeRepository
	localRepo          repository.LocalRepository
	memoRepo           repository.MemoRepository
	batchSize          int
	datePolicy         config.DatePolicy
	notifier           ImportNotifier
}

func NewImportService(
	representativeRepo repository.RepresentativeRepository,
	localRepo repository.LocalRepository,
	memoRepo repository.MemoRepository,
	cfg config.ImportConfig,
	notifier ImportNotifier,
) ImportService {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 10000
	}
	return &importService{
		representativeRepo: representativeRepo,
		localRepo:          localRepo,
		memoRepo:           memoRepo,
		batchSize:          batchSize,
		datePolicy:         cfg.DatePolicy,
		notifier:           notifier,
	}
}

// Import reconciles a parsed sheet into the store in a single pass:
// representatives first, then locals referencing them, then memos with their
// pay times. Re-running the same sheet never duplicates representatives or
// locals; memos are appended every time.
func (s *importService) Import(rows []xlsx.Row) error {
	logger.Info("Starting spreadsheet import", map[string]interface{}{
		"rows":        len(rows),
		"batch_size":  s.batchSize,
		"date_policy": s.datePolicy,
	})

	s.notify(StageRepresentatives, 0, len(rows))
	representativeIDs, err := s.resolveRepresentatives(rows)
	if err != nil {
		return fmt.Errorf("resolving representatives: %w", err)
	}

	s.notify(StageLocals, 0, len(rows))
	localIDs, err := s.resolveLocals(rows, representativeIDs)
	if err != nil {
		return fmt.Errorf("resolving locals: %w", err)
	}

	s.notify(StageMemos, 0, len(rows))
	if err := s.writeMemos(rows, localIDs); err != nil {
		return fmt.Errorf("writing memos: %w", err)
	}

	s.notify(StageDone, len(rows), len(rows))
	logger.Info("Spreadsheet import completed", map[string]interface{}{
		"rows": len(rows),
	})
	return nil
}

// resolveRepresentatives deduplicates and creates missing representatives and
// returns the nationalId -> id mapping used when creating locals. Rows with
// only one of the two representative fields are skipped entirely; when two
// rows carry the same national id with different names, the first one wins.
func (s *importService) resolveRepresentatives(rows []xlsx.Row) (map[string]string, error) {
	type candidate struct {
		nationalID string
		name       string
	}

	seen := make(map[string]struct{})
	var candidates []candidate
	for _, row := range rows {
		if row.RepresentativeNationalID == nil || row.RepresentativeName == nil {
			continue
		}
		nationalID := *row.RepresentativeNationalID
		if _, ok := seen[nationalID]; ok {
			continue
		}
		seen[nationalID] = struct{}{}
		candidates = append(candidates, candidate{
			nationalID: nationalID,
			name:       *row.RepresentativeName,
		})
	}

	if len(candidates) == 0 {
		return map[string]string{}, nil
	}

	candidateIDs := make([]string, len(candidates))
	for i, c := range candidates {
		candidateIDs[i] = c.nationalID
	}

	existing, err := s.representativeRepo.ExistingNationalIDs(candidateIDs, s.batchSize)
	if err != nil {
		return nil, err
	}

	var staged []model.Representative
	for _, c := range candidates {
		if _, ok := existing[c.nationalID]; ok {
			continue
		}
		nationalID := c.nationalID
		staged = append(staged, model.Representative{
			ID:         uuid.NewString(),
			NationalID: &nationalID,
			Name:       c.name,
		})
	}

	// The duplicate-skip insert also covers races where the existence
	// check above went stale before this write.
	if err := s.representativeRepo.CreateManyIgnoreDuplicates(staged, s.batchSize); err != nil {
		return nil, err
	}
	s.notify(StageRepresentatives, len(candidates), len(candidates))

	return s.representativeRepo.MapIDsByNationalID(candidateIDs, s.batchSize)
}

// resolveLocals deduplicates and creates missing locals keyed by license
// number and returns the licenseNumber -> id mapping used by the memo stage.
func (s *importService) resolveLocals(rows []xlsx.Row, representativeIDs map[string]string) (map[string]string, error) {
	seen := make(map[string]struct{})
	var licenseNumbers []string
	for _, row := range rows {
		if row.LicenseNumber == nil {
			continue
		}
		license := *row.LicenseNumber
		if _, ok := seen[license]; ok {
			continue
		}
		seen[license] = struct{}{}
		licenseNumbers = append(licenseNumbers, license)
	}

	existing, err := s.localRepo.ExistingLicenseNumbers(licenseNumbers, s.batchSize)
	if err != nil {
		return nil, err
	}

	var staged []model.Local
	for _, row := range rows {
		if row.LicenseNumber == nil {
			continue
		}
		license := *row.LicenseNumber
		if _, ok := existing[license]; ok {
			continue
		}

		var representativeID *string
		if row.RepresentativeNationalID != nil {
			if id, ok := representativeIDs[*row.RepresentativeNationalID]; ok {
				representativeID = &id
			}
		}

		staged = append(staged, model.Local{
			ID:               uuid.NewString(),
			NationalID:       util.SanitizeNationalID(strVal(row.NationalID)),
			Name:             util.TrimTrailingSpaces(strVal(row.Name)),
			LicenseNumber:    license,
			RepresentativeID: representativeID,
		})
	}

	// Sentinel-id locals go first in one duplicate-skipping pass: their
	// national id repeats freely, uniqueness rides on the license number.
	var specials, remainder []model.Local
	for _, local := range staged {
		if local.NationalID == util.SentinelNationalID {
			specials = append(specials, local)
		} else {
			remainder = append(remainder, local)
		}
	}

	if err := s.localRepo.CreateManyIgnoreDuplicates(specials, s.batchSize); err != nil {
		return nil, err
	}

	// The remainder goes in bounded batches. A batch holding the same
	// license number twice would trip the unique constraint inside a
	// single bulk call, so each batch keeps only the first occurrence.
	processed := len(specials)
	for _, batch := range repository.Chunks(remainder, s.batchSize) {
		seenInBatch := make(map[string]struct{}, len(batch))
		unique := make([]model.Local, 0, len(batch))
		for _, local := range batch {
			if _, ok := seenInBatch[local.LicenseNumber]; ok {
				continue
			}
			seenInBatch[local.LicenseNumber] = struct{}{}
			unique = append(unique, local)
		}

		if err := s.localRepo.CreateManyIgnoreDuplicates(unique, s.batchSize); err != nil {
			return nil, err
		}
		processed += len(batch)
		s.notify(StageLocals, processed, len(staged))
	}

	return s.localRepo.MapIDsByLicenseNumber(licenseNumbers, s.batchSize)
}

// writeMemos turns every row into one memo plus its pay time and writes the
// pairs in lockstep batches. No deduplication here: re-imports append.
func (s *importService) writeMemos(rows []xlsx.Row, localIDs map[string]string) error {
	pairs := make([]repository.MemoPair, 0, len(rows))
	for _, row := range rows {
		payDate, err := s.parsePayDate(row.PaymentDate)
		if err != nil {
			if s.datePolicy == config.DatePolicySkip {
				logger.Warn("Skipping row with malformed payment date", map[string]interface{}{
					"license_number": strVal(row.LicenseNumber),
					"token":          strVal(row.PaymentDate),
				})
				continue
			}
			return err
		}

		var localID *string
		if row.LicenseNumber != nil {
			if id, ok := localIDs[*row.LicenseNumber]; ok {
				localID = &id
			}
		}

		id := uuid.NewString()
		pairs = append(pairs, repository.MemoPair{
			Memo: model.Memo{
				ID:              id,
				Address:         util.DeriveAddress(strVal(row.Street), row.Number, row.Clarification),
				Type:            strVal(row.Type),
				Period:          strVal(row.Period),
				Capital:         floatVal(row.Capital),
				TaxableAmount:   floatVal(row.TaxableAmount),
				Total:           floatVal(row.Total),
				Issuance:        intVal(row.Issuance),
				BusinessSector:  util.TrimTrailingSpaces(strVal(row.BusinessSector)),
				AdditionalTaxID: row.AdditionalTaxID,
				LocalID:         localID,
			},
			PayTime: model.PayTime{
				MemoID: id,
				Year:   payDate.Year,
				Month:  payDate.Month,
				Day:    payDate.Day,
			},
		})
	}

	processed := 0
	for _, batch := range repository.Chunks(pairs, s.batchSize) {
		if err := s.memoRepo.CreatePairs(batch, s.batchSize); err != nil {
			return err
		}
		processed += len(batch)
		s.notify(StageMemos, processed, len(pairs))
	}
	return nil
}

func (s *importService) parsePayDate(token *string) (util.PayDate, error) {
	raw := ""
	if token != nil {
		raw = *token
	}

	payDate, err := util.ParseDate8(raw)
	if err != nil {
		if s.datePolicy == config.DatePolicyZero {
			return util.PayDate{}, nil
		}
		return util.PayDate{}, fmt.Errorf("payment date %q: %w", raw, err)
	}
	return payDate, nil
}

func (s *importService) notify(stage string, processed, total int) {
	if s.notifier != nil {
		s.notifier.Publish(stage, processed, total)
	}
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func floatVal(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func intVal(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
