package handlers

import (
	"errors"
	"net/http"
	"strings"

	"tripgenie/services"

	"github.com/gin-gonic/gin"
)

// WeatherHandler proxies the daily forecast lookup. Geocoding failures map to
// 404 and upstream forecast failures to 502, with the vendor text attached.
func WeatherHandler(c *gin.Context) {
	city := strings.TrimSpace(c.Query("city"))
	from := c.Query("from")
	to := c.Query("to")
	if city == "" || from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Missing required params: city, from, to",
		})
		return
	}

	resolvedCity, forecasts, err := services.GetWeatherClient().DailyForecast(city, from, to)
	if err != nil {
		var geoErr *services.GeocodeError
		var upErr *services.UpstreamError
		switch {
		case errors.As(err, &geoErr):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Failed to geocode city"})
		case errors.As(err, &upErr):
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "city": resolvedCity, "forecasts": forecasts})
}
