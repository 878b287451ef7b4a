package repository

import (
	"github.com/municipio/patentes-backend/internal/app/model"
	"github.com/municipio/patentes-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MemoPair couples a memo with the pay time keyed by the same freshly
// generated id. The two are written in lockstep batches.
type MemoPair struct {
	Memo    model.Memo
	PayTime model.PayTime
}

type MemoRepository interface {
	CreatePairs(pairs []MemoPair, batchSize int) error
	Create(memo *model.Memo, payTime *model.PayTime) error
	FindPage(offset, limit int) ([]model.Memo, map[string]model.PayTime, error)
	FindByLocalID(localID string) ([]model.Memo, map[string]model.PayTime, error)
	Count() (int64, error)
	PayTimeCount() (int64, error)
}

type memoRepository struct {
	db *gorm.DB
}

func NewMemoRepository(db *gorm.DB) MemoRepository {
	return &memoRepository{db: db}
}

// CreatePairs inserts memo/pay-time pairs chunk by chunk: for every chunk the
// pay times go in first, then the memos, both with duplicate-skip semantics.
// The order is for referential readability only; pay times are keyed by ids
// generated this call, so they cannot collide with existing rows.
func (r *memoRepository) CreatePairs(pairs []MemoPair, batchSize int) error {
	if len(pairs) == 0 {
		return nil
	}

	logger.Debug("Bulk inserting memo pairs", map[string]interface{}{
		"count":      len(pairs),
		"batch_size": batchSize,
	})

	for _, chunk := range Chunks(pairs, batchSize) {
		payTimes := make([]model.PayTime, len(chunk))
		memos := make([]model.Memo, len(chunk))
		for i, pair := range chunk {
			payTimes[i] = pair.PayTime
			memos[i] = pair.Memo
		}

		if err := r.db.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&payTimes).Error; err != nil {
			logger.Error("Failed to bulk insert pay times", err, map[string]interface{}{
				"count": len(payTimes),
			})
			return err
		}
		if err := r.db.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&memos).Error; err != nil {
			logger.Error("Failed to bulk insert memos", err, map[string]interface{}{
				"count": len(memos),
			})
			return err
		}
	}
	return nil
}

func (r *memoRepository) Create(memo *model.Memo, payTime *model.PayTime) error {
	if err := r.db.Create(memo).Error; err != nil {
		logger.Error("Failed to create memo", err, map[string]interface{}{
			"memo_id": memo.ID,
		})
		return err
	}
	if err := r.db.Create(payTime).Error; err != nil {
		logger.Error("Failed to create pay time", err, map[string]interface{}{
			"memo_id": payTime.MemoID,
		})
		return err
	}
	return nil
}

// FindPage reads one page of memos in insertion order with their locals and
// representatives preloaded, plus the pay times for the page keyed by memo id.
func (r *memoRepository) FindPage(offset, limit int) ([]model.Memo, map[string]model.PayTime, error) {
	var memos []model.Memo
	if err := r.db.
		Preload("Local").
		Preload("Local.Representative").
		Order("created_at ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&memos).Error; err != nil {
		logger.Error("Failed to fetch memo page", err, map[string]interface{}{
			"offset": offset,
			"limit":  limit,
		})
		return nil, nil, err
	}

	payTimes, err := r.payTimesFor(memos)
	if err != nil {
		return nil, nil, err
	}
	return memos, payTimes, nil
}

func (r *memoRepository) FindByLocalID(localID string) ([]model.Memo, map[string]model.PayTime, error) {
	var memos []model.Memo
	if err := r.db.
		Where("local_id = ?", localID).
		Order("created_at ASC, id ASC").
		Find(&memos).Error; err != nil {
		logger.Error("Failed to find memos by local", err, map[string]interface{}{
			"local_id": localID,
		})
		return nil, nil, err
	}

	payTimes, err := r.payTimesFor(memos)
	if err != nil {
		return nil, nil, err
	}
	return memos, payTimes, nil
}

func (r *memoRepository) payTimesFor(memos []model.Memo) (map[string]model.PayTime, error) {
	result := make(map[string]model.PayTime, len(memos))
	if len(memos) == 0 {
		return result, nil
	}

	ids := make([]string, len(memos))
	for i, memo := range memos {
		ids[i] = memo.ID
	}

	var payTimes []model.PayTime
	if err := r.db.Where("memo_id IN ?", ids).Find(&payTimes).Error; err != nil {
		logger.Error("Failed to fetch pay times", err, map[string]interface{}{
			"count": len(ids),
		})
		return nil, err
	}
	for _, payTime := range payTimes {
		result[payTime.MemoID] = payTime
	}
	return result, nil
}

func (r *memoRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&model.Memo{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *memoRepository) PayTimeCount() (int64, error) {
	var count int64
	if err := r.db.Model(&model.PayTime{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
