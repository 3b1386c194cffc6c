package models

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChannelOverride binds one device of an app to a channel other than the default.
type ChannelOverride struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	AppID     string    `json:"app_id" gorm:"uniqueIndex:idx_override_app_device" binding:"required"`
	DeviceID  string    `json:"device_id" gorm:"uniqueIndex:idx_override_app_device" binding:"required"`
	ChannelID uint      `json:"-" gorm:"index"`
	Channel   Channel   `json:"channel" gorm:"foreignKey:ChannelID"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (o ChannelOverride) TableName() string {
	return "channel_overrides"
}

func FindChannelOverride(db *gorm.DB, appID, deviceID string) (ChannelOverride, error) {
	var override ChannelOverride
	err := db.Preload("Channel.Bundle").
		Where("app_id = ? AND device_id = ?", appID, deviceID).
		First(&override).Error
	return override, err
}

// UpsertChannelOverride binds the device to override.ChannelID in one statement.
func UpsertChannelOverride(db *gorm.DB, override *ChannelOverride) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "app_id"}, {Name: "device_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"channel_id", "created_by", "updated_at"}),
	}).Omit("Channel").Create(override).Error
}

func DeleteChannelOverride(db *gorm.DB, appID, deviceID string) (bool, error) {
	tx := db.Where("app_id = ? AND device_id = ?", appID, deviceID).Delete(&ChannelOverride{})
	return tx.RowsAffected > 0, tx.Error
}
