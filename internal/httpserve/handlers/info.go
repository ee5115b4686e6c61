package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/payraan/twelvedata/internal/server"
)

type InfoResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// Populate fills the InfoResponse struct with data from the App
func (info *InfoResponse) Populate(a *server.App) {
	info.Message = "Twelve Data gateway is running"
	info.Version = a.GetVersionstring()
	info.Uptime = a.GetUptime()
}

// GetHome handles GET requests on the root endpoint
func GetHome(c echo.Context, a *server.App) error {
	info := &InfoResponse{}
	info.Populate(a)
	return sendJSONResponse(c, http.StatusOK, info)
}
