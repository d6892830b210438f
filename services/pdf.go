package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

type PlanPDFData struct {
	Origin       string
	Destinations []string
	DateFrom     string
	DateTo       string
	Travelers    int
	Currency     string
	Plan         *TripPlan
}

// GeneratePlanPDF renders the assembled trip plan as a printable PDF and
// returns raw bytes (no filesystem needed).
func GeneratePlanPDF(data PlanPDFData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 25)
	pdf.AddPage()

	// ── Header Bar ───────────────────────────────────────────
	pdf.SetFillColor(13, 24, 37)
	pdf.Rect(0, 0, 210, 28, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetXY(20, 8)
	pdf.CellFormat(100, 10, "TripGenie", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(212, 168, 67)
	pdf.SetXY(20, 18)
	pdf.CellFormat(170, 6, "AI-Powered Travel Itinerary", "", 1, "L", false, 0, "")

	pdf.SetY(35)
	pdf.SetTextColor(0, 0, 0)

	// ── Trip Summary ─────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(170, 8, "Trip Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)

	summary := [][2]string{
		{"Route", fmt.Sprintf("%s to %s", data.Origin, strings.Join(data.Destinations, ", "))},
		{"Dates", fmt.Sprintf("%s to %s", data.DateFrom, data.DateTo)},
		{"Travelers", fmt.Sprintf("%d", data.Travelers)},
	}
	for _, row := range summary {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(35, 6, row[0]+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(135, 6, pdfText(row[1]), "", "L", false)
	}
	pdf.Ln(4)

	// ── Flight ───────────────────────────────────────────────
	if data.Plan.Flight != nil {
		f := data.Plan.Flight
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(170, 8, "Flight", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(170, 6, pdfText(fmt.Sprintf("%s — %s %.2f",
			strings.Join(f.Airlines, ", "), f.Price.Currency, f.Price.Amount)), "", "L", false)
		for _, it := range f.Itineraries {
			for _, s := range it.Segments {
				line := fmt.Sprintf("  %s %s -> %s (%s %s) dep %s",
					s.CarrierName, s.Departure.IataCode, s.Arrival.IataCode, s.CarrierCode, s.Number, s.Departure.At)
				pdf.MultiCell(170, 5, pdfText(line), "", "L", false)
			}
		}
		pdf.Ln(4)
	}

	// ── Daily Plan ───────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(170, 8, "Day-by-Day Plan", "", 1, "L", false, 0, "")

	for _, day := range data.Plan.Days {
		pdf.SetFillColor(240, 243, 248)
		pdf.SetFont("Helvetica", "B", 11)
		header := fmt.Sprintf("%s: %s", day.Day, day.Title)
		if day.Date != "" {
			header += fmt.Sprintf(" (%s", day.Date)
			if day.Destination != "" {
				header += " — " + day.Destination
			}
			header += ")"
		}
		pdf.MultiCell(170, 7, pdfText(header), "", "L", true)

		if day.WeatherTip != "" {
			pdf.SetFont("Helvetica", "I", 9)
			pdf.SetTextColor(90, 90, 90)
			pdf.MultiCell(170, 5, pdfText("Weather: "+day.WeatherTip), "", "L", false)
			pdf.SetTextColor(0, 0, 0)
		}

		slots := []struct {
			label    string
			activity Activity
		}{
			{"Morning", day.Morning},
			{"Afternoon", day.Afternoon},
			{"Evening", day.Evening},
		}
		for _, slot := range slots {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.CellFormat(26, 6, slot.label+":", "", 0, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(144, 6, pdfText(slot.activity.Activity), "", "L", false)
			pdf.SetFont("Helvetica", "", 9)
			pdf.SetX(46)
			pdf.MultiCell(144, 5, pdfText(slot.activity.Description), "", "L", false)
			if t := slot.activity.TransportToNext; t != nil {
				pdf.SetFont("Helvetica", "I", 9)
				pdf.SetX(46)
				pdf.MultiCell(144, 5, pdfText(fmt.Sprintf("%s from %s to %s, %s - %s, %s",
					t.Mode, t.From, t.To, t.DepartureTime, t.ArrivalTime, t.Cost)), "", "L", false)
			}
		}

		if day.Hotel != nil {
			pdf.SetFont("Helvetica", "", 9)
			pdf.SetTextColor(90, 90, 90)
			pdf.MultiCell(170, 5, pdfText(fmt.Sprintf("Stay: %s — %s %.2f for the night of %s",
				day.Hotel.HotelName, day.Hotel.Currency, day.Hotel.Price, day.Hotel.Date)), "", "L", false)
			pdf.SetTextColor(0, 0, 0)
		}
		pdf.Ln(2)
	}

	// ── Cost Summary ─────────────────────────────────────────
	if data.Plan.EstimatedCosts != nil {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(170, 8, "Estimated Costs", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		costs := [][2]string{
			{"Food", data.Plan.EstimatedCosts.Food},
			{"Accommodation", data.Plan.EstimatedCosts.Accommodation},
			{"Transportation", data.Plan.EstimatedCosts.Transportation},
		}
		for _, row := range costs {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.CellFormat(40, 6, row[0]+":", "", 0, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 10)
			pdf.CellFormat(130, 6, pdfText(row[1]), "", 1, "L", false, 0, "")
		}
		if data.Plan.TotalEstimatedCost != "" {
			pdf.SetFont("Helvetica", "B", 11)
			pdf.CellFormat(40, 8, "Total:", "", 0, "L", false, 0, "")
			pdf.CellFormat(130, 8, pdfText(data.Plan.TotalEstimatedCost), "", 1, "L", false, 0, "")
		}
	}

	// ── Footer ───────────────────────────────────────────────
	pdf.SetY(-18)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(130, 130, 130)
	pdf.CellFormat(170, 5, fmt.Sprintf("Generated by TripGenie on %s. Prices and forecasts are estimates.",
		time.Now().Format("2006-01-02")), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf render failed: %w", err)
	}
	return buf.Bytes(), nil
}

// pdfText strips characters the core Helvetica font cannot encode (emoji and
// other non-latin glyphs).
func pdfText(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r < 0x20:
			b.WriteRune(' ')
		case r < 0x7F:
			b.WriteRune(r)
		case r == '—' || r == '–':
			b.WriteRune('-')
		case r == '’' || r == '‘':
			b.WriteRune('\'')
		case r == '“' || r == '”':
			b.WriteRune('"')
		}
	}
	return strings.TrimSpace(b.String())
}
