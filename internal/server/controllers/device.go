package controllers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/USA-RedDragon/ota-server/internal/db/models"
	"github.com/USA-RedDragon/ota-server/internal/server/apimodels"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// POSTDeviceOverride pins a device to a channel. Unlike a device's own
// request this ignores allow_device_self_set on both channels.
func POSTDeviceOverride(c *gin.Context) {
	var body apimodels.DeviceOverride
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	if body.Channel == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "channel is required"})
		return
	}
	database, ok := getDB(c)
	if !ok {
		return
	}
	user, ok := getUser(c)
	if !ok {
		return
	}
	if !authorizeApp(c, database, user, body.AppID) {
		return
	}

	channel, err := models.FindChannelByName(database, body.AppID, body.Channel)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Cannot find channel %s", body.Channel), "status": "channel_not_found"})
		return
	}
	if err != nil {
		slog.Error("Failed to find channel", "app_id", body.AppID, "channel", body.Channel, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}

	err = models.UpsertChannelOverride(database, &models.ChannelOverride{
		AppID:     body.AppID,
		DeviceID:  body.DeviceID,
		ChannelID: channel.ID,
		CreatedBy: createdBy(user),
	})
	if err != nil {
		slog.Error("Failed to set channel override", "app_id", body.AppID, "device_id", body.DeviceID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "channel": channel.Name})
}

func DELETEDeviceOverride(c *gin.Context) {
	var body apimodels.DeviceOverride
	if err := c.ShouldBind(&body); err != nil {
		badRequest(c, err)
		return
	}
	database, ok := getDB(c)
	if !ok {
		return
	}
	user, ok := getUser(c)
	if !ok {
		return
	}
	if !authorizeApp(c, database, user, body.AppID) {
		return
	}

	if _, err := models.DeleteChannelOverride(database, body.AppID, body.DeviceID); err != nil {
		slog.Error("Failed to delete channel override", "app_id", body.AppID, "device_id", body.DeviceID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
