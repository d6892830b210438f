package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"tripgenie/services"
	"tripgenie/session"

	"github.com/gin-gonic/gin"
)

func marshalItinerary(it *services.Itinerary) (string, error) {
	raw, err := json.Marshal(it)
	if err != nil {
		return "", fmt.Errorf("failed to encode itinerary: %w", err)
	}
	return string(raw), nil
}

func loadTrip(c *gin.Context) (*session.Trip, *services.Itinerary, bool) {
	trip, err := session.Get(c.Param("token"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Trip session not found or expired"})
		return nil, nil, false
	}

	var itinerary services.Itinerary
	if err := json.Unmarshal([]byte(trip.ItineraryJSON), &itinerary); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to parse stored itinerary"})
		return nil, nil, false
	}
	return trip, &itinerary, true
}

// GetTripHandler returns the stored trip metadata and itinerary.
func GetTripHandler(c *gin.Context) {
	trip, _, ok := loadTrip(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "trip": trip, "itinerary": trip.ItineraryJSON})
}

// PlanHandler assembles the day-by-day view: live hotel, weather, and flight
// data fetched in parallel and joined onto the itinerary's days.
func PlanHandler(c *gin.Context) {
	trip, itinerary, ok := loadTrip(c)
	if !ok {
		return
	}

	plan := services.NewPlanBuilder().BuildTripPlan(planRequest(trip), itinerary)
	c.JSON(http.StatusOK, gin.H{"success": true, "plan": plan})
}

func planRequest(trip *session.Trip) services.PlanRequest {
	return services.PlanRequest{
		Origin:          trip.Origin,
		Destinations:    trip.Destinations,
		DestinationDays: trip.DestinationDays,
		DateFrom:        trip.DateFrom,
		DateTo:          trip.DateTo,
		Travelers:       trip.Travelers,
		Children:        trip.Children,
		Rooms:           trip.Rooms,
		Currency:        trip.Currency,
	}
}

func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "TripGenie API",
		"amadeus": services.GetAmadeusClient().Configured(),
		"planner": services.GetPlanner() != nil,
	})
}
