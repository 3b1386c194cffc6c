package controllers

import (
	"net/http"

	"github.com/USA-RedDragon/ota-server/internal/server/apimodels"
	"github.com/gin-gonic/gin"
)

// POSTUpdates is the device check-in. A channel in the body is applied
// before the governing channel is resolved.
func POSTUpdates(c *gin.Context) {
	var body apimodels.DeviceRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	engine, ok := getEngine(c)
	if !ok {
		return
	}

	res, err := engine.Query(c.Request.Context(), body.ToRequest())
	if err != nil {
		engineError(c, err)
		return
	}

	resp := apimodels.UpdatesResponse{
		Channel: res.Channel,
		Status:  res.Status,
		Bundle:  res.Bundle,
		Policy:  res.Policy,
	}
	switch {
	case res.Bundle == nil:
		resp.Message = "No bundle assigned to channel"
	case res.Bundle.Name == res.DeviceBundle:
		resp.Message = "No new version available"
	default:
		resp.Version = res.Bundle.Name
	}
	c.JSON(http.StatusOK, resp)
}
