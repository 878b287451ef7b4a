package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/municipio/patentes-backend/internal/app/model"
	"github.com/municipio/patentes-backend/internal/app/repository"
	"github.com/municipio/patentes-backend/pkg/logger"
	"github.com/municipio/patentes-backend/pkg/redis"
	"github.com/municipio/patentes-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrInvalidPaymentDate = errors.New("invalid payment date")
	ErrLocalNotFound      = errors.New("local not found")
)

const overviewCacheTTL = 5 * time.Minute

// CreateMemoInput is a single validated payment record entered outside the
// bulk import path.
type CreateMemoInput struct {
	Type            string
	LicenseNumber   string
	NationalID      string
	Name            string
	Street          string
	Number          *string
	Clarification   *string
	Period          string
	Capital         float64
	TaxableAmount   float64
	Total           float64
	Issuance        int
	PaymentDate     string // 8-digit yyyymmdd token
	BusinessSector  string
	AdditionalTaxID *string
}

// FlatMemo is a memo with its pay time flattened to a display string.
type FlatMemo struct {
	model.Memo
	PayTime string `json:"pay_time"`
}

// SearchResult wraps a license-number lookup with its user-facing message.
type SearchResult struct {
	Message string     `json:"message"`
	Memos   []FlatMemo `json:"memos"`
	Total   int        `json:"total"`
}

// OverviewCount is one labeled entity count of the dataset overview.
type OverviewCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

type Overview struct {
	Response   string          `json:"response"`
	TotalCount []OverviewCount `json:"totalCount"`
}

type MemoService interface {
	Create(input CreateMemoInput) error
	FindByLicenseNumber(licenseNumber string) (*SearchResult, error)
	Overview(ctx context.Context) (*Overview, error)
	RefreshOverview(ctx context.Context) error
}

type memoService struct {
	memoRepo           repository.MemoRepository
	localRepo          repository.LocalRepository
	representativeRepo repository.RepresentativeRepository
}

func NewMemoService(
	memoRepo repository.MemoRepository,
	localRepo repository.LocalRepository,
	representativeRepo repository.RepresentativeRepository,
) MemoService {
	return &memoService{
		memoRepo:           memoRepo,
		localRepo:          localRepo,
		representativeRepo: representativeRepo,
	}
}

// Create stores one memo with its pay time, creating the local for its
// license number when it does not exist yet.
func (s *memoService) Create(input CreateMemoInput) error {
	payDate, err := util.ParseDate8(input.PaymentDate)
	if err != nil {
		logger.Warn("Rejecting memo with malformed payment date", map[string]interface{}{
			"license_number": input.LicenseNumber,
			"token":          input.PaymentDate,
		})
		return ErrInvalidPaymentDate
	}

	local, err := s.localRepo.FindByLicenseNumber(input.LicenseNumber)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		local = &model.Local{
			ID:            uuid.NewString(),
			NationalID:    util.SanitizeNationalID(input.NationalID),
			Name:          util.TrimTrailingSpaces(input.Name),
			LicenseNumber: input.LicenseNumber,
		}
		if err := s.localRepo.Create(local); err != nil {
			return err
		}
	}

	id := uuid.NewString()
	memo := &model.Memo{
		ID:              id,
		Address:         util.DeriveAddress(input.Street, input.Number, input.Clarification),
		Type:            input.Type,
		Period:          input.Period,
		Capital:         input.Capital,
		TaxableAmount:   input.TaxableAmount,
		Total:           input.Total,
		Issuance:        input.Issuance,
		BusinessSector:  util.TrimTrailingSpaces(input.BusinessSector),
		AdditionalTaxID: input.AdditionalTaxID,
		LocalID:         &local.ID,
	}
	payTime := &model.PayTime{
		MemoID: id,
		Year:   payDate.Year,
		Month:  payDate.Month,
		Day:    payDate.Day,
	}

	if err := s.memoRepo.Create(memo, payTime); err != nil {
		return err
	}

	if err := redis.InvalidateOverview(context.Background()); err != nil {
		logger.Warn("Failed to invalidate overview cache", map[string]interface{}{
			"error": err.Error(),
		})
	}

	logger.Info("Memo created", map[string]interface{}{
		"memo_id":        id,
		"license_number": input.LicenseNumber,
	})
	return nil
}

// FindByLicenseNumber returns every memo of a license with pay times
// flattened to display strings.
func (s *memoService) FindByLicenseNumber(licenseNumber string) (*SearchResult, error) {
	local, err := s.localRepo.FindByLicenseNumber(licenseNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &SearchResult{
				Message: "No se ha encontrado ningún memo con esta patente.",
				Memos:   []FlatMemo{},
			}, nil
		}
		return nil, err
	}

	memos, payTimes, err := s.memoRepo.FindByLocalID(local.ID)
	if err != nil {
		return nil, err
	}

	flat := make([]FlatMemo, 0, len(memos))
	for _, memo := range memos {
		entry := FlatMemo{Memo: memo}
		if payTime, ok := payTimes[memo.ID]; ok {
			entry.PayTime = FormatPayTime(payTime)
		}
		flat = append(flat, entry)
	}

	message := "Memo encontrado!"
	switch {
	case len(flat) == 0:
		message = "No se ha encontrado ningún memo con esta patente."
	case len(flat) > 1:
		message = "Memos encontrados!"
	}

	return &SearchResult{
		Message: message,
		Memos:   flat,
		Total:   len(flat),
	}, nil
}

// Overview returns labeled dataset counts, served from the Redis cache when
// warm and recomputed otherwise.
func (s *memoService) Overview(ctx context.Context) (*Overview, error) {
	if payload, err := redis.GetCachedOverview(ctx); err != nil {
		logger.Warn("Overview cache read failed", map[string]interface{}{
			"error": err.Error(),
		})
	} else if payload != nil {
		var cached Overview
		if err := json.Unmarshal(payload, &cached); err == nil {
			return &cached, nil
		}
	}

	overview, err := s.computeOverview()
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(overview); err == nil {
		if err := redis.CacheOverview(ctx, payload, overviewCacheTTL); err != nil {
			logger.Warn("Overview cache write failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	return overview, nil
}

// RefreshOverview recomputes the counts and rewrites the cache. Used by the
// scheduler to keep the overview warm.
func (s *memoService) RefreshOverview(ctx context.Context) error {
	overview, err := s.computeOverview()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(overview)
	if err != nil {
		return err
	}
	return redis.CacheOverview(ctx, payload, overviewCacheTTL)
}

func (s *memoService) computeOverview() (*Overview, error) {
	memoCount, err := s.memoRepo.Count()
	if err != nil {
		return nil, err
	}
	localCount, err := s.localRepo.Count()
	if err != nil {
		return nil, err
	}
	payTimeCount, err := s.memoRepo.PayTimeCount()
	if err != nil {
		return nil, err
	}
	representativeCount, err := s.representativeRepo.Count()
	if err != nil {
		return nil, err
	}

	return &Overview{
		Response: "ok",
		TotalCount: []OverviewCount{
			{Label: "Memorándums", Count: memoCount},
			{Label: "Locales", Count: localCount},
			{Label: "Fechas de pago", Count: payTimeCount},
			{Label: "Representantes", Count: representativeCount},
		},
	}, nil
}
