package handlers

import (
	"net/http"
	"strconv"

	"tripgenie/services"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// FlightsHandler proxies the flight offers search. Free-text origin and
// destination are resolved to IATA codes concurrently before the search.
func FlightsHandler(c *gin.Context) {
	origin := c.Query("origin")
	destination := c.Query("destination")
	departureDate := c.Query("departureDate")
	if origin == "" || destination == "" || departureDate == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Missing required params: origin, destination, departureDate",
		})
		return
	}

	adults := intQuery(c, "adults", 1)
	children := intQuery(c, "children", 0)
	max := intQuery(c, "max", 5)
	currencyCode := c.DefaultQuery("currencyCode", "USD")
	nonStop := c.Query("nonStop") == "true"

	amadeus := services.GetAmadeusClient()

	var originCode, destCode string
	g := new(errgroup.Group)
	g.Go(func() (err error) {
		originCode, err = amadeus.ResolveLocationCode(origin)
		return err
	})
	g.Go(func() (err error) {
		destCode, err = amadeus.ResolveLocationCode(destination)
		return err
	})
	if err := g.Wait(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	flights, err := amadeus.SearchFlights(services.FlightQuery{
		Origin:        originCode,
		Destination:   destCode,
		DepartureDate: departureDate,
		ReturnDate:    c.Query("returnDate"),
		Adults:        adults,
		Children:      children,
		CurrencyCode:  currencyCode,
		Max:           max,
		NonStop:       nonStop,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":                 true,
		"originLocationCode":      originCode,
		"destinationLocationCode": destCode,
		"flights":                 flights,
	})
}

func intQuery(c *gin.Context, key string, fallback int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
