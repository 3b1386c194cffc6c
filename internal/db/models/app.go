package models

import (
	"time"

	"gorm.io/gorm"
)

type App struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	AppID     string    `json:"app_id" gorm:"uniqueIndex" binding:"required"`
	Name      string    `json:"name"`
	Owner     User      `json:"-" gorm:"foreignKey:OwnerID"`
	OwnerID   uint      `json:"-" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

func (a App) TableName() string {
	return "apps"
}

func FindAppByAppID(db *gorm.DB, appID string) (App, error) {
	var app App
	err := db.Where(&App{AppID: appID}).First(&app).Error
	return app, err
}

// IsAppOwner reports whether userID owns appID.
func IsAppOwner(db *gorm.DB, userID uint, appID string) (bool, error) {
	var count int64
	err := db.Model(&App{}).Where("app_id = ? AND owner_id = ?", appID, userID).Limit(1).Count(&count).Error
	return count > 0, err
}

func ListUserApps(db *gorm.DB, userID uint) ([]App, error) {
	var apps []App
	err := db.Where("owner_id = ?", userID).Order("id asc").Find(&apps).Error
	return apps, err
}
