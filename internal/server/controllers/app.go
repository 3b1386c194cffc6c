package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/USA-RedDragon/ota-server/internal/db/models"
	"github.com/USA-RedDragon/ota-server/internal/server/apimodels"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func GETApps(c *gin.Context) {
	database, ok := getDB(c)
	if !ok {
		return
	}
	user, ok := getUser(c)
	if !ok {
		return
	}

	apps, err := models.ListUserApps(database, user.ID)
	if err != nil {
		slog.Error("Failed to list apps", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}
	c.JSON(http.StatusOK, apps)
}

// POSTApp registers an app owned by the caller.
func POSTApp(c *gin.Context) {
	var body apimodels.AppCreate
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

	existing, err := models.FindAppByAppID(database, body.AppID)
	switch {
	case err == nil:
		if existing.OwnerID != user.ID {
			c.JSON(http.StatusForbidden, gin.H{"error": "You can't access this app", "app_id": body.AppID})
			return
		}
		c.JSON(http.StatusOK, existing)
		return
	case !errors.Is(err, gorm.ErrRecordNotFound):
		slog.Error("Failed to find app", "app_id", body.AppID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}

	app := models.App{AppID: body.AppID, Name: body.Name, OwnerID: user.ID}
	if err := database.Create(&app).Error; err != nil {
		slog.Error("Failed to create app", "app_id", body.AppID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}
	c.JSON(http.StatusCreated, app)
}
