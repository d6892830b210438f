package services

import (
	"log"
	"sync"
	"time"
)

// Plan assembly: reconciles the generated itinerary (day-indexed) with live
// hotel, weather, and flight data (destination-indexed) into a single
// day-by-day view.

type PlanRequest struct {
	Origin          string
	Destinations    []string
	DestinationDays []int
	DateFrom        string
	DateTo          string
	Travelers       int
	Children        int
	Rooms           int
	Currency        string
}

type NightStay struct {
	HotelName string  `json:"hotelName"`
	Date      string  `json:"date"`
	Price     float64 `json:"price"`
	Currency  string  `json:"currency"`
}

type PlanDay struct {
	Day           string     `json:"day"`
	Title         string     `json:"title"`
	Emoji         string     `json:"emoji"`
	Date          string     `json:"date,omitempty"`
	Destination   string     `json:"destination,omitempty"`
	Morning       Activity   `json:"morning"`
	Afternoon     Activity   `json:"afternoon"`
	Evening       Activity   `json:"evening"`
	WeatherAdvice string     `json:"weatherAdvice,omitempty"`
	WeatherTip    string     `json:"weatherTip,omitempty"`
	Hotel         *NightStay `json:"hotel,omitempty"`
}

type DestinationHotel struct {
	Destination string       `json:"destination"`
	Hotel       HotelPricing `json:"hotel"`
}

type TripPlan struct {
	Days               []PlanDay          `json:"days"`
	EstimatedCosts     *CostEstimate      `json:"estimatedCosts,omitempty"`
	TotalEstimatedCost string             `json:"totalEstimatedCost,omitempty"`
	Flight             *FlightPricing     `json:"flight,omitempty"`
	Hotels             []DestinationHotel `json:"hotels,omitempty"`
}

// AmadeusAPI is the slice of the Amadeus client the plan builder needs.
type AmadeusAPI interface {
	ResolveLocationCode(keyword string) (string, error)
	SearchFlights(q FlightQuery) ([]FlightPricing, error)
	SearchHotels(q HotelQuery) ([]HotelPricing, error)
}

// ForecastProvider is the slice of the weather client the plan builder needs.
type ForecastProvider interface {
	DailyForecast(city, from, to string) (string, []Forecast, error)
}

type PlanBuilder struct {
	Amadeus AmadeusAPI
	Weather ForecastProvider
}

func NewPlanBuilder() *PlanBuilder {
	return &PlanBuilder{
		Amadeus: GetAmadeusClient(),
		Weather: GetWeatherClient(),
	}
}

// BuildTripPlan fans out one hotel fetch per destination, one weather fetch
// per destination, and one flight fetch, then joins the results onto the
// itinerary's days. A failed fetch logs a warning and leaves that day's
// augmentation empty; the batch is joined, never aborted.
func (b *PlanBuilder) BuildTripPlan(req PlanRequest, it *Itinerary) *TripPlan {
	plan := &TripPlan{
		EstimatedCosts:     it.EstimatedCosts,
		TotalEstimatedCost: it.TotalEstimatedCost,
	}

	hotelsByDest := make(map[string]HotelPricing)
	weatherByDest := make(map[string][]Forecast)
	var flight *FlightPricing
	var hotelOrder []DestinationHotel

	var mu sync.Mutex
	var wg sync.WaitGroup

	adultsForHotels := req.Travelers + req.Children

	for _, dest := range req.Destinations {
		wg.Add(1)
		go func(dest string) {
			defer wg.Done()
			if b.Amadeus == nil {
				return
			}
			cityCode, err := b.Amadeus.ResolveLocationCode(dest)
			if err != nil {
				log.Printf("⚠️  Hotel city resolution failed for %q: %v", dest, err)
				return
			}
			hotels, err := b.Amadeus.SearchHotels(HotelQuery{
				CityCode:     cityCode,
				CheckInDate:  req.DateFrom,
				CheckOutDate: req.DateTo,
				Adults:       adultsForHotels,
				Currency:     req.Currency,
				RoomQuantity: req.Rooms,
			})
			if err != nil {
				log.Printf("⚠️  Hotel search failed for %q: %v", dest, err)
				return
			}
			if len(hotels) == 0 {
				return
			}
			mu.Lock()
			hotelsByDest[dest] = hotels[0] // sorted ascending, cheapest first
			mu.Unlock()
		}(dest)

		wg.Add(1)
		go func(dest string) {
			defer wg.Done()
			if b.Weather == nil {
				return
			}
			_, forecasts, err := b.Weather.DailyForecast(dest, req.DateFrom, req.DateTo)
			if err != nil {
				log.Printf("⚠️  Weather fetch failed for %q: %v", dest, err)
				return
			}
			mu.Lock()
			weatherByDest[dest] = forecasts
			mu.Unlock()
		}(dest)
	}

	if req.Origin != "" && len(req.Destinations) > 0 && b.Amadeus != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			origin, err := b.Amadeus.ResolveLocationCode(req.Origin)
			if err != nil {
				log.Printf("⚠️  Flight origin resolution failed: %v", err)
				return
			}
			dest, err := b.Amadeus.ResolveLocationCode(req.Destinations[0])
			if err != nil {
				log.Printf("⚠️  Flight destination resolution failed: %v", err)
				return
			}
			flights, err := b.Amadeus.SearchFlights(FlightQuery{
				Origin:        origin,
				Destination:   dest,
				DepartureDate: req.DateFrom,
				ReturnDate:    req.DateTo,
				Adults:        req.Travelers,
				Children:      req.Children,
				CurrencyCode:  req.Currency,
				Max:           5,
			})
			if err != nil {
				log.Printf("⚠️  Flight search failed: %v", err)
				return
			}
			if len(flights) > 0 {
				mu.Lock()
				flight = &flights[0]
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	for _, dest := range req.Destinations {
		if h, ok := hotelsByDest[dest]; ok {
			hotelOrder = append(hotelOrder, DestinationHotel{Destination: dest, Hotel: h})
		}
	}
	plan.Flight = flight
	plan.Hotels = hotelOrder

	tripStart, startErr := time.Parse("2006-01-02", req.DateFrom)
	assigned := AssignDestinations(len(it.Days), req.Destinations, req.DestinationDays)

	for i, day := range it.Days {
		pd := PlanDay{
			Day:           day.Day,
			Title:         day.Title,
			Emoji:         day.Emoji,
			Morning:       day.Morning,
			Afternoon:     day.Afternoon,
			Evening:       day.Evening,
			WeatherAdvice: day.WeatherAdvice,
		}

		var date string
		if startErr == nil {
			date = tripStart.AddDate(0, 0, i).Format("2006-01-02")
			pd.Date = date
		}

		if assigned != nil {
			dest := assigned[i]
			pd.Destination = dest

			if date != "" {
				for _, f := range weatherByDest[dest] {
					if f.Date == date {
						pd.WeatherTip = f.Tip
						break
					}
				}

				hotel, ok := hotelsByDest[dest]
				if !ok && len(req.Destinations) > 0 {
					// fall back to the primary destination's hotel
					hotel, ok = hotelsByDest[req.Destinations[0]]
				}
				if ok {
					for _, night := range hotel.Nightly {
						if night.Date == date {
							pd.Hotel = &NightStay{
								HotelName: hotel.Name,
								Date:      night.Date,
								Price:     night.Price,
								Currency:  night.Currency,
							}
							break
						}
					}
				}
			}
		}

		plan.Days = append(plan.Days, pd)
	}

	return plan
}
