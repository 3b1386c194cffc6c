package models

import (
	"time"

	"github.com/mattn/go-nulltype"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Device is the last check-in recorded for a device of an app.
type Device struct {
	ID            uint                `json:"-" gorm:"primaryKey"`
	AppID         string              `json:"app_id" gorm:"uniqueIndex:idx_device_app_device" binding:"required"`
	DeviceID      string              `json:"device_id" gorm:"uniqueIndex:idx_device_app_device" binding:"required"`
	CustomID      nulltype.NullString `json:"custom_id"`
	Platform      string              `json:"platform"`
	PluginVersion nulltype.NullString `json:"plugin_version"`
	// VersionName is the bundle the device runs, VersionBuild its native version.
	VersionName  string              `json:"version_name"`
	VersionBuild string              `json:"version_build"`
	OSVersion    nulltype.NullString `json:"os_version"`
	IsEmulator   bool                `json:"is_emulator"`
	IsProd       bool                `json:"is_prod"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

func (d Device) TableName() string {
	return "devices"
}

func FindDevice(db *gorm.DB, appID, deviceID string) (Device, error) {
	var device Device
	err := db.Where("app_id = ? AND device_id = ?", appID, deviceID).First(&device).Error
	return device, err
}

// UpsertDevice records a check-in, replacing the device's previous one.
func UpsertDevice(db *gorm.DB, device *Device) error {
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "app_id"}, {Name: "device_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"custom_id",
			"platform",
			"plugin_version",
			"version_name",
			"version_build",
			"os_version",
			"is_emulator",
			"is_prod",
			"updated_at",
		}),
	}).Create(device).Error
}
