package controllers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/USA-RedDragon/ota-server/internal/channels"
	"github.com/USA-RedDragon/ota-server/internal/db"
	"github.com/USA-RedDragon/ota-server/internal/db/models"
	"github.com/USA-RedDragon/ota-server/internal/server/apimodels"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GETChannel returns one channel when a name is given, otherwise a page of the app's channels.
func GETChannel(c *gin.Context) {
	var query apimodels.ChannelQuery
	if err := c.ShouldBindQuery(&query); err != nil {
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
	if !authorizeApp(c, database, user, query.AppID) {
		return
	}

	if query.Channel != "" {
		channel, err := models.FindChannelByName(database, query.AppID, query.Channel)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Cannot find channel %s", query.Channel), "status": "channel_not_found"})
			return
		}
		if err != nil {
			slog.Error("Failed to find channel", "app_id", query.AppID, "channel", query.Channel, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
			return
		}
		c.JSON(http.StatusOK, channel)
		return
	}

	list, err := models.ListChannels(database, query.AppID, query.Page*apimodels.PageSize, apimodels.PageSize)
	if err != nil {
		slog.Error("Failed to list channels", "app_id", query.AppID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}
	c.JSON(http.StatusOK, apimodels.ChannelsResponse{Channels: list, Page: query.Page})
}

// POSTChannel creates or updates a channel.
func POSTChannel(c *gin.Context) {
	var body apimodels.ChannelUpsert
	if err := c.ShouldBindJSON(&body); err != nil {
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

	base := channels.DefaultChannelPolicy()
	existing, err := models.FindChannelByName(database, body.AppID, body.Channel)
	switch {
	case err == nil:
		base = db.ToChannel(existing).Policy
	case !errors.Is(err, gorm.ErrRecordNotFound):
		slog.Error("Failed to find channel", "app_id", body.AppID, "channel", body.Channel, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}

	channel := models.Channel{
		AppID:     body.AppID,
		Name:      body.Channel,
		CreatedBy: createdBy(user),
	}
	db.ApplyPolicy(&channel, body.Apply(base))

	if body.Version != "" {
		bundle, err := models.FindBundleByName(database, body.AppID, body.Version)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Error("Failed to find bundle", "app_id", body.AppID, "version", body.Version, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
			return
		}
		if err != nil || bundle.Deleted {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Cannot find version %s", body.Version), "status": "bundle_not_found"})
			return
		}
		channel.BundleID = &bundle.ID
	}

	if err := models.UpsertChannel(database, &channel); err != nil {
		slog.Error("Failed to upsert channel", "app_id", body.AppID, "channel", body.Channel, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}

	saved, err := models.FindChannelByName(database, body.AppID, body.Channel)
	if err != nil {
		slog.Error("Failed to reload channel", "app_id", body.AppID, "channel", body.Channel, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}
	c.JSON(http.StatusOK, saved)
}

// DELETEChannel removes a channel and the device overrides bound to it.
func DELETEChannel(c *gin.Context) {
	var body apimodels.ChannelDelete
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

	deleted, err := models.DeleteChannel(database, body.AppID, body.Channel)
	if err != nil {
		slog.Error("Failed to delete channel", "app_id", body.AppID, "channel", body.Channel, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Cannot find channel %s", body.Channel), "status": "channel_not_found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
