package repository

import (
	"github.com/municipio/patentes-backend/internal/app/model"
	"github.com/municipio/patentes-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RepresentativeRepository interface {
	ExistingNationalIDs(nationalIDs []string, chunkSize int) (map[string]struct{}, error)
	CreateManyIgnoreDuplicates(representatives []model.Representative, batchSize int) error
	MapIDsByNationalID(nationalIDs []string, chunkSize int) (map[string]string, error)
	Count() (int64, error)
}

type representativeRepository struct {
	db *gorm.DB
}

func NewRepresentativeRepository(db *gorm.DB) RepresentativeRepository {
	return &representativeRepository{db: db}
}

func (r *representativeRepository) ExistingNationalIDs(nationalIDs []string, chunkSize int) (map[string]struct{}, error) {
	return ExistingKeys(nationalIDs, chunkSize, func(chunk []string) ([]string, error) {
		var found []string
		if err := r.db.Model(&model.Representative{}).
			Where("national_id IN ?", chunk).
			Pluck("national_id", &found).Error; err != nil {
			logger.Error("Failed to check existing representatives", err, map[string]interface{}{
				"chunk_size": len(chunk),
			})
			return nil, err
		}
		return found, nil
	})
}

func (r *representativeRepository) CreateManyIgnoreDuplicates(representatives []model.Representative, batchSize int) error {
	if len(representatives) == 0 {
		return nil
	}

	logger.Debug("Bulk inserting representatives", map[string]interface{}{
		"count":      len(representatives),
		"batch_size": batchSize,
	})

	if err := r.db.Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(representatives, batchSize).Error; err != nil {
		logger.Error("Failed to bulk insert representatives", err, map[string]interface{}{
			"count": len(representatives),
		})
		return err
	}
	return nil
}

func (r *representativeRepository) MapIDsByNationalID(nationalIDs []string, chunkSize int) (map[string]string, error) {
	mapping := make(map[string]string, len(nationalIDs))

	for _, chunk := range Chunks(nationalIDs, chunkSize) {
		var rows []model.Representative
		if err := r.db.Select("id", "national_id").
			Where("national_id IN ?", chunk).
			Find(&rows).Error; err != nil {
			logger.Error("Failed to map representative ids", err, map[string]interface{}{
				"chunk_size": len(chunk),
			})
			return nil, err
		}
		for _, row := range rows {
			if row.NationalID != nil {
				mapping[*row.NationalID] = row.ID
			}
		}
	}
	return mapping, nil
}

func (r *representativeRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&model.Representative{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
