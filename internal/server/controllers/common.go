package controllers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/USA-RedDragon/ota-server/internal/channels"
	"github.com/USA-RedDragon/ota-server/internal/db/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func getDB(c *gin.Context) (*gorm.DB, bool) {
	db, ok := c.MustGet("db").(*gorm.DB)
	if !ok {
		slog.Error("Failed to get db from context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return nil, false
	}
	return db, true
}

func getEngine(c *gin.Context) (*channels.Engine, bool) {
	engine, ok := c.MustGet("engine").(*channels.Engine)
	if !ok {
		slog.Error("Failed to get engine from context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return nil, false
	}
	return engine, true
}

func getUser(c *gin.Context) (*models.User, bool) {
	user, ok := c.MustGet("user").(*models.User)
	if !ok {
		slog.Error("Failed to get user from context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return nil, false
	}
	return user, true
}

// authorizeApp writes a response and returns false unless user owns appID.
func authorizeApp(c *gin.Context, db *gorm.DB, user *models.User, appID string) bool {
	owner, err := models.IsAppOwner(db, user.ID, appID)
	if err != nil {
		slog.Error("Failed to check app owner", "app_id", appID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return false
	}
	if !owner {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can't access this app", "app_id": appID})
		return false
	}
	return true
}

func createdBy(user *models.User) string {
	return strconv.FormatUint(uint64(user.ID), 10)
}

// engineError maps the channel error taxonomy onto an HTTP response.
func engineError(c *gin.Context, err error) {
	kind := channels.Kind(err)
	switch kind {
	case "invalid_version_format", "channel_not_found", "bundle_not_found":
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "status": kind})
	case "override_not_permitted":
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "status": kind})
	default:
		slog.Error("Channel store unavailable", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Try again later", "status": kind})
	}
}

func badRequest(c *gin.Context, err error) {
	slog.Debug("Invalid request", "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
}
