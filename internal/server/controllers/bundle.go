package controllers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/USA-RedDragon/ota-server/internal/db/models"
	"github.com/USA-RedDragon/ota-server/internal/server/apimodels"
	"github.com/USA-RedDragon/ota-server/internal/version"
	"github.com/gin-gonic/gin"
)

func GETBundle(c *gin.Context) {
	var query apimodels.BundleQuery
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

	bundles, err := models.ListBundles(database, query.AppID, query.Page*apimodels.PageSize, apimodels.PageSize)
	if err != nil {
		slog.Error("Failed to list bundles", "app_id", query.AppID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}
	c.JSON(http.StatusOK, apimodels.BundlesResponse{Bundles: bundles, Page: query.Page})
}

// POSTBundle registers a bundle name so channels can serve it.
func POSTBundle(c *gin.Context) {
	var body apimodels.BundleCreate
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	if body.Version == version.BuiltinBundle {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s is reserved", version.BuiltinBundle)})
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

	bundle := models.Bundle{AppID: body.AppID, Name: body.Version, OwnerID: user.ID}
	if err := models.UpsertBundle(database, &bundle); err != nil {
		slog.Error("Failed to create bundle", "app_id", body.AppID, "version", body.Version, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}
	saved, err := models.FindBundleByName(database, body.AppID, body.Version)
	if err != nil {
		slog.Error("Failed to reload bundle", "app_id", body.AppID, "version", body.Version, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}
	c.JSON(http.StatusOK, saved)
}

// DELETEBundle soft deletes one bundle, or all of the app's bundles when no version is given.
func DELETEBundle(c *gin.Context) {
	var body apimodels.BundleDelete
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

	if body.Version == "" {
		count, err := models.SoftDeleteAllBundles(database, body.AppID)
		if err != nil {
			slog.Error("Failed to delete bundles", "app_id", body.AppID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "deleted": count})
		return
	}

	existed, err := models.SoftDeleteBundle(database, body.AppID, body.Version)
	if err != nil {
		slog.Error("Failed to delete bundle", "app_id", body.AppID, "version", body.Version, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}
	if !existed {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Cannot find version %s", body.Version), "status": "bundle_not_found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "deleted": 1})
}
