package repository

import (
	"context"

	"github.com/ikkim/restaurant-ops-backend/internal/app/model"
	"github.com/ikkim/restaurant-ops-backend/pkg/logger"
	"gorm.io/gorm"
)

type StoreRepository interface {
	Create(store *model.Store) error
	FindByPublicID(publicID string) (*model.Store, error)
	FindByIdempotencyKey(ownerID uint, key string) (*model.Store, error)
	FindByOwner(ownerID uint) ([]model.Store, error)
	ExistsByOwnerAndName(ownerID uint, name string) (bool, error)
	WithTx(tx *gorm.DB) StoreRepository
	WithContext(ctx context.Context) StoreRepository
}

type storeRepository struct {
	db *gorm.DB
}

func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepository{db: db}
}

// WithTx returns a repository bound to an open transaction.
func (r *storeRepository) WithTx(tx *gorm.DB) StoreRepository {
	return &storeRepository{db: tx}
}

// WithContext returns a repository whose queries are cancelled with ctx.
func (r *storeRepository) WithContext(ctx context.Context) StoreRepository {
	return &storeRepository{db: r.db.WithContext(ctx)}
}

// Create inserts the store together with its integration settings.
func (r *storeRepository) Create(store *model.Store) error {
	logger.Debug("Creating store in database", map[string]interface{}{
		"name":     store.Name,
		"owner_id": store.OwnerID,
	})

	if err := r.db.Create(store).Error; err != nil {
		logger.Error("Failed to create store in database", err, map[string]interface{}{
			"name":     store.Name,
			"owner_id": store.OwnerID,
		})
		return err
	}

	logger.Debug("Store created in database", map[string]interface{}{
		"store_id": store.PublicID,
		"slug":     store.Slug,
	})
	return nil
}

func (r *storeRepository) preloaded() *gorm.DB {
	return r.db.Preload("LineChannel").Preload("CalendarSetting").Preload("AIAssistant")
}

func (r *storeRepository) FindByPublicID(publicID string) (*model.Store, error) {
	var store model.Store
	if err := r.preloaded().Where("public_id = ?", publicID).First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepository) FindByIdempotencyKey(ownerID uint, key string) (*model.Store, error) {
	var store model.Store
	err := r.db.Where("owner_id = ? AND idempotency_key = ?", ownerID, key).First(&store).Error
	if err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepository) FindByOwner(ownerID uint) ([]model.Store, error) {
	logger.Debug("Finding stores by owner", map[string]interface{}{
		"owner_id": ownerID,
	})

	var stores []model.Store
	if err := r.preloaded().Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&stores).Error; err != nil {
		logger.Error("Failed to find stores by owner", err, map[string]interface{}{
			"owner_id": ownerID,
		})
		return nil, err
	}
	return stores, nil
}

// ExistsByOwnerAndName compares names case-insensitively after trimming.
func (r *storeRepository) ExistsByOwnerAndName(ownerID uint, name string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Store{}).
		Where("owner_id = ? AND LOWER(TRIM(name)) = LOWER(TRIM(?))", ownerID, name).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
