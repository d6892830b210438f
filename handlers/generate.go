package handlers

import (
	"fmt"
	"net/http"
	"time"

	"tripgenie/services"
	"tripgenie/session"

	"github.com/gin-gonic/gin"
)

type TravelDates struct {
	From string `json:"from" binding:"required"`
	To   string `json:"to" binding:"required"`
}

type TripRequest struct {
	Origin          string      `json:"origin"`
	Destinations    []string    `json:"destinations" binding:"required,min=1,dive,min=2"`
	DestinationDays []int       `json:"destinationDays"`
	TravelDates     TravelDates `json:"travelDates" binding:"required"`
	Budget          string      `json:"budget" binding:"required"`
	Travelers       int         `json:"travelers" binding:"required,min=1"`
	Children        int         `json:"children" binding:"omitempty,min=0"`
	Rooms           int         `json:"rooms" binding:"omitempty,min=1"`
	Currency        string      `json:"currency" binding:"omitempty,len=3"`
	TravelStyle     []string    `json:"travelStyle" binding:"required,min=1"`
	DreamTrip       string      `json:"dreamTrip" binding:"required,min=10,max=1000"`
}

// normalize applies defaults and checks the date range. The allocation vector
// is trimmed to the destination count; a mismatched vector is kept as-is and
// simply ignored by the allocator later.
func (r *TripRequest) normalize() (from, to time.Time, err error) {
	from, err = time.Parse("2006-01-02", r.TravelDates.From)
	if err != nil {
		return from, to, fmt.Errorf("invalid 'from' date, use YYYY-MM-DD")
	}
	to, err = time.Parse("2006-01-02", r.TravelDates.To)
	if err != nil {
		return from, to, fmt.Errorf("invalid 'to' date, use YYYY-MM-DD")
	}
	if !to.After(from) {
		return from, to, fmt.Errorf("'to' date must be after 'from' date")
	}

	if r.Currency == "" {
		r.Currency = "USD"
	}
	if r.Rooms < 1 {
		r.Rooms = 1
	}
	if len(r.DestinationDays) > len(r.Destinations) {
		r.DestinationDays = r.DestinationDays[:len(r.Destinations)]
	}
	return from, to, nil
}

func (r *TripRequest) itineraryInput(from, to time.Time) services.ItineraryInput {
	return services.ItineraryInput{
		Destination:     r.Destinations[0],
		Destinations:    r.Destinations,
		DestinationDays: r.DestinationDays,
		TravelDates: fmt.Sprintf("From %s to %s",
			from.Format("January 2, 2006"), to.Format("January 2, 2006")),
		Budget:      r.Budget,
		Travelers:   r.Travelers + r.Children,
		Children:    r.Children,
		Rooms:       r.Rooms,
		Currency:    r.Currency,
		TravelStyle: r.TravelStyle,
		DreamTrip:   r.DreamTrip,
	}
}

func generateItinerary(c *gin.Context, req *TripRequest, from, to time.Time) (string, bool) {
	planner := services.GetPlanner()
	if planner == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Itinerary generation is not configured"})
		return "", false
	}

	itinerary, err := planner.GenerateItinerary(c.Request.Context(), req.itineraryInput(from, to))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "AI failed to generate a valid itinerary: " + err.Error()})
		return "", false
	}

	raw, err := marshalItinerary(itinerary)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return "", false
	}
	return raw, true
}

// GenerateHandler runs the itinerary flow without creating a session. The
// response carries the itinerary as a JSON string for the client to keep.
func GenerateHandler(c *gin.Context) {
	var req TripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid input: " + err.Error()})
		return
	}
	from, to, err := req.normalize()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	raw, ok := generateItinerary(c, &req, from, to)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "itinerary": raw})
}

// CreateTripHandler runs the itinerary flow and stores the trip in the
// session store, returning the opaque token the display stage reads back.
func CreateTripHandler(c *gin.Context) {
	var req TripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid input: " + err.Error()})
		return
	}
	from, to, err := req.normalize()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	raw, ok := generateItinerary(c, &req, from, to)
	if !ok {
		return
	}

	token := session.Save(&session.Trip{
		Origin:          req.Origin,
		Destinations:    req.Destinations,
		DestinationDays: req.DestinationDays,
		DateFrom:        req.TravelDates.From,
		DateTo:          req.TravelDates.To,
		Travelers:       req.Travelers,
		Children:        req.Children,
		Rooms:           req.Rooms,
		Currency:        req.Currency,
		ItineraryJSON:   raw,
	})

	c.JSON(http.StatusOK, gin.H{"success": true, "token": token, "itinerary": raw})
}
