package controllers

import (
	"net/http"

	"github.com/USA-RedDragon/ota-server/internal/server/apimodels"
	"github.com/gin-gonic/gin"
)

// POSTChannelSelf lets a device bind itself to a channel.
func POSTChannelSelf(c *gin.Context) {
	var body apimodels.DeviceRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	engine, ok := getEngine(c)
	if !ok {
		return
	}

	res, err := engine.Set(c.Request.Context(), body.ToRequest())
	if err != nil {
		engineError(c, err)
		return
	}
	c.JSON(http.StatusOK, apimodels.ChannelSetResponse{
		Status:   "ok",
		Channel:  res.Channel,
		AllowSet: res.AllowDeviceSelfSet,
	})
}

// PUTChannelSelf reports the channel governing the device.
func PUTChannelSelf(c *gin.Context) {
	var body apimodels.DeviceRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	engine, ok := getEngine(c)
	if !ok {
		return
	}

	req := body.ToRequest()
	req.Channel = ""
	res, err := engine.Query(c.Request.Context(), req)
	if err != nil {
		engineError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// DELETEChannelSelf drops the device's override.
func DELETEChannelSelf(c *gin.Context) {
	var body apimodels.DeviceRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	engine, ok := getEngine(c)
	if !ok {
		return
	}

	if err := engine.Unset(c.Request.Context(), body.ToRequest()); err != nil {
		engineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
