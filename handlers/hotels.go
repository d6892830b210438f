package handlers

import (
	"net/http"

	"tripgenie/services"

	"github.com/gin-gonic/gin"
)

// HotelsHandler proxies the hotel search, returning per-hotel totals with a
// nightly price breakdown, cheapest first.
func HotelsHandler(c *gin.Context) {
	city := c.Query("city")
	if city == "" {
		city = c.Query("cityCode")
	}
	checkInDate := c.Query("checkInDate")
	checkOutDate := c.Query("checkOutDate")
	if city == "" || checkInDate == "" || checkOutDate == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Missing required params: city, checkInDate, checkOutDate",
		})
		return
	}

	amadeus := services.GetAmadeusClient()

	cityCode, err := amadeus.ResolveLocationCode(city)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Unable to resolve city code from the provided city keyword: " + err.Error(),
		})
		return
	}

	hotels, err := amadeus.SearchHotels(services.HotelQuery{
		CityCode:     cityCode,
		CheckInDate:  checkInDate,
		CheckOutDate: checkOutDate,
		Adults:       intQuery(c, "adults", 2),
		Currency:     c.DefaultQuery("currency", "USD"),
		RoomQuantity: intQuery(c, "roomQuantity", 1),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "cityCode": cityCode, "hotels": hotels})
}
