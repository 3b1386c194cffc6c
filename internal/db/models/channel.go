package models

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Channel routes devices to a bundle. A nil BundleID means no bundle is assigned.
// Policy columns have no column defaults; callers fill every one of them.
type Channel struct {
	ID                           uint      `json:"id" gorm:"primaryKey"`
	AppID                        string    `json:"app_id" gorm:"uniqueIndex:idx_channel_app_name" binding:"required"`
	Name                         string    `json:"name" gorm:"uniqueIndex:idx_channel_app_name" binding:"required"`
	BundleID                     *uint     `json:"-"`
	Bundle                       *Bundle   `json:"version,omitempty" gorm:"foreignKey:BundleID"`
	Public                       bool      `json:"public" gorm:"index"`
	AllowDeviceSelfSet           bool      `json:"allow_device_self_set"`
	AllowEmulator                bool      `json:"allow_emulator"`
	AllowDev                     bool      `json:"allow_dev"`
	DisableAutoUpdateUnderNative bool      `json:"disableAutoUpdateUnderNative"`
	DisableAutoUpdateToMajor     bool      `json:"disableAutoUpdateToMajor"`
	IOS                          bool      `json:"ios" gorm:"column:ios"`
	Android                      bool      `json:"android"`
	CreatedBy                    string    `json:"created_by"`
	CreatedAt                    time.Time `json:"created_at"`
	UpdatedAt                    time.Time `json:"updated_at"`
}

func (c Channel) TableName() string {
	return "channels"
}

var channelUpdateColumns = []string{
	"bundle_id",
	"public",
	"allow_device_self_set",
	"allow_emulator",
	"allow_dev",
	"disable_auto_update_under_native",
	"disable_auto_update_to_major",
	"ios",
	"android",
	"updated_at",
}

func FindChannelByName(db *gorm.DB, appID, name string) (Channel, error) {
	var channel Channel
	err := db.Preload("Bundle").Where("app_id = ? AND name = ?", appID, name).First(&channel).Error
	return channel, err
}

// FindPublicChannel returns the app's public channel with the lowest ID.
func FindPublicChannel(db *gorm.DB, appID string) (Channel, error) {
	var channel Channel
	err := db.Preload("Bundle").Where("app_id = ? AND public = ?", appID, true).Order("id asc").First(&channel).Error
	return channel, err
}

// ListChannels returns a page of the app's channels, oldest first.
func ListChannels(db *gorm.DB, appID string, offset, limit int) ([]Channel, error) {
	var channels []Channel
	err := db.Preload("Bundle").Where("app_id = ?", appID).
		Order("created_at asc").Order("id asc").
		Offset(offset).Limit(limit).
		Find(&channels).Error
	return channels, err
}

// UpsertChannel creates the channel, or overwrites the policy and bundle of
// the existing channel with the same app and name.
func UpsertChannel(db *gorm.DB, channel *Channel) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "app_id"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns(channelUpdateColumns),
	}).Omit("Bundle").Create(channel).Error
}

// DeleteChannel removes the channel together with the overrides bound to it.
func DeleteChannel(db *gorm.DB, appID, name string) (bool, error) {
	deleted := false
	err := db.Transaction(func(tx *gorm.DB) error {
		var channel Channel
		err := tx.Where("app_id = ? AND name = ?", appID, name).Limit(1).Find(&channel).Error
		if err != nil {
			return err
		}
		if channel.ID == 0 {
			return nil
		}
		if err := tx.Where("channel_id = ?", channel.ID).Delete(&ChannelOverride{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&channel).Error; err != nil {
			return err
		}
		deleted = true
		return nil
	})
	return deleted, err
}
