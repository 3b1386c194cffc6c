package models

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Bundle is a deployable JS bundle. Deleted bundles are kept so channels and
// statistics that reference them stay intact.
type Bundle struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	AppID     string    `json:"app_id" gorm:"uniqueIndex:idx_bundle_app_name" binding:"required"`
	Name      string    `json:"name" gorm:"uniqueIndex:idx_bundle_app_name" binding:"required"`
	Deleted   bool      `json:"deleted" gorm:"index"`
	OwnerID   uint      `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b Bundle) TableName() string {
	return "bundles"
}

// FindBundleByName returns the bundle whether or not it is deleted.
func FindBundleByName(db *gorm.DB, appID, name string) (Bundle, error) {
	var bundle Bundle
	err := db.Where("app_id = ? AND name = ?", appID, name).First(&bundle).Error
	return bundle, err
}

// ListBundles returns a page of the app's live bundles, newest first.
func ListBundles(db *gorm.DB, appID string, offset, limit int) ([]Bundle, error) {
	var bundles []Bundle
	err := db.Where("app_id = ? AND deleted = ?", appID, false).
		Order("created_at desc").Order("id desc").
		Offset(offset).Limit(limit).
		Find(&bundles).Error
	return bundles, err
}

// UpsertBundle creates the bundle, or revives it when a bundle of that name exists.
func UpsertBundle(db *gorm.DB, bundle *Bundle) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "app_id"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"deleted", "owner_id", "updated_at"}),
	}).Create(bundle).Error
}

// SoftDeleteBundle marks one bundle deleted and reports whether it existed.
func SoftDeleteBundle(db *gorm.DB, appID, name string) (bool, error) {
	tx := db.Model(&Bundle{}).Where("app_id = ? AND name = ?", appID, name).Update("deleted", true)
	return tx.RowsAffected > 0, tx.Error
}

func SoftDeleteAllBundles(db *gorm.DB, appID string) (int64, error) {
	tx := db.Model(&Bundle{}).Where("app_id = ? AND deleted = ?", appID, false).Update("deleted", true)
	return tx.RowsAffected, tx.Error
}
