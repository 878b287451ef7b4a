package repository

import (
	"github.com/municipio/patentes-backend/internal/app/model"
	"github.com/municipio/patentes-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LocalRepository interface {
	ExistingLicenseNumbers(licenseNumbers []string, chunkSize int) (map[string]struct{}, error)
	CreateManyIgnoreDuplicates(locals []model.Local, batchSize int) error
	MapIDsByLicenseNumber(licenseNumbers []string, chunkSize int) (map[string]string, error)
	FindByLicenseNumber(licenseNumber string) (*model.Local, error)
	Create(local *model.Local) error
	Count() (int64, error)
}

type localRepository struct {
	db *gorm.DB
}

func NewLocalRepository(db *gorm.DB) LocalRepository {
	return &localRepository{db: db}
}

func (r *localRepository) ExistingLicenseNumbers(licenseNumbers []string, chunkSize int) (map[string]struct{}, error) {
	return ExistingKeys(licenseNumbers, chunkSize, func(chunk []string) ([]string, error) {
		var found []string
		if err := r.db.Model(&model.Local{}).
			Where("license_number IN ?", chunk).
			Pluck("license_number", &found).Error; err != nil {
			logger.Error("Failed to check existing locals", err, map[string]interface{}{
				"chunk_size": len(chunk),
			})
			return nil, err
		}
		return found, nil
	})
}

func (r *localRepository) CreateManyIgnoreDuplicates(locals []model.Local, batchSize int) error {
	if len(locals) == 0 {
		return nil
	}

	logger.Debug("Bulk inserting locals", map[string]interface{}{
		"count":      len(locals),
		"batch_size": batchSize,
	})

	if err := r.db.Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(locals, batchSize).Error; err != nil {
		logger.Error("Failed to bulk insert locals", err, map[string]interface{}{
			"count": len(locals),
		})
		return err
	}
	return nil
}

func (r *localRepository) MapIDsByLicenseNumber(licenseNumbers []string, chunkSize int) (map[string]string, error) {
	mapping := make(map[string]string, len(licenseNumbers))

	for _, chunk := range Chunks(licenseNumbers, chunkSize) {
		var rows []model.Local
		if err := r.db.Select("id", "license_number").
			Where("license_number IN ?", chunk).
			Find(&rows).Error; err != nil {
			logger.Error("Failed to map local ids", err, map[string]interface{}{
				"chunk_size": len(chunk),
			})
			return nil, err
		}
		for _, row := range rows {
			mapping[row.LicenseNumber] = row.ID
		}
	}
	return mapping, nil
}

func (r *localRepository) FindByLicenseNumber(licenseNumber string) (*model.Local, error) {
	var local model.Local
	if err := r.db.Where("license_number = ?", licenseNumber).First(&local).Error; err != nil {
		return nil, err
	}
	return &local, nil
}

func (r *localRepository) Create(local *model.Local) error {
	if err := r.db.Create(local).Error; err != nil {
		logger.Error("Failed to create local", err, map[string]interface{}{
			"license_number": local.LicenseNumber,
		})
		return err
	}
	return nil
}

func (r *localRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&model.Local{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
