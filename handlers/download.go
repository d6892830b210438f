package handlers

import (
	"log"
	"net/http"

	"tripgenie/services"

	"github.com/gin-gonic/gin"
)

// DownloadHandler renders the assembled plan for a trip session as a PDF.
func DownloadHandler(c *gin.Context) {
	trip, itinerary, ok := loadTrip(c)
	if !ok {
		return
	}

	plan := services.NewPlanBuilder().BuildTripPlan(planRequest(trip), itinerary)

	pdfBytes, err := services.GeneratePlanPDF(services.PlanPDFData{
		Origin:       trip.Origin,
		Destinations: trip.Destinations,
		DateFrom:     trip.DateFrom,
		DateTo:       trip.DateTo,
		Travelers:    trip.Travelers + trip.Children,
		Currency:     trip.Currency,
		Plan:         plan,
	})
	if err != nil {
		log.Printf("❌ PDF generation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to generate PDF"})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=tripgenie-itinerary.pdf")
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
