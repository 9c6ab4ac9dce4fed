package database

import (
	"github.com/ValgulNecron/kasuki/internal/database/models"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Repository provides access to all database models.
type Repository struct {
	cache    *models.CacheModel
	activity *models.ActivityModel
	setting  *models.SettingModel
}

// NewRepository creates a new repository instance with all models.
func NewRepository(db *bun.DB, logger *zap.Logger) *Repository {
	return &Repository{
		cache:    models.NewCache(db, logger),
		activity: models.NewActivity(db, logger),
		setting:  models.NewSetting(db, logger),
	}
}

// Cache returns the request cache model repository.
func (r *Repository) Cache() *models.CacheModel {
	return r.cache
}

// Activity returns the activity model repository.
func (r *Repository) Activity() *models.ActivityModel {
	return r.activity
}

// Setting returns the guild setting model repository.
func (r *Repository) Setting() *models.SettingModel {
	return r.setting
}
