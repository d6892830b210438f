package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─── Fakes ────────────────────────────────────────────────────────────────────

type fakeAmadeus struct {
	hotelsByCity  map[string][]HotelPricing
	flights       []FlightPricing
	hotelsErr     error
	flightsErr    error
	flightQueries []FlightQuery
}

func (f *fakeAmadeus) ResolveLocationCode(keyword string) (string, error) {
	switch keyword {
	case "Paris":
		return "PAR", nil
	case "Rome":
		return "ROM", nil
	case "New York":
		return "NYC", nil
	}
	return "", fmt.Errorf("unable to resolve city code for %q", keyword)
}

func (f *fakeAmadeus) SearchFlights(q FlightQuery) ([]FlightPricing, error) {
	f.flightQueries = append(f.flightQueries, q)
	if f.flightsErr != nil {
		return nil, f.flightsErr
	}
	return f.flights, nil
}

func (f *fakeAmadeus) SearchHotels(q HotelQuery) ([]HotelPricing, error) {
	if f.hotelsErr != nil {
		return nil, f.hotelsErr
	}
	return f.hotelsByCity[q.CityCode], nil
}

type fakeWeather struct {
	forecasts map[string][]Forecast
	err       error
}

func (f *fakeWeather) DailyForecast(city, from, to string) (string, []Forecast, error) {
	if f.err != nil {
		return "", nil, f.err
	}
	return city, f.forecasts[city], nil
}

// ─── Tests ────────────────────────────────────────────────────────────────────

func testItinerary(days int) *Itinerary {
	it := &Itinerary{
		EstimatedCosts:     &CostEstimate{Food: "$100-$200"},
		TotalEstimatedCost: "$500-$900",
	}
	for i := 1; i <= days; i++ {
		it.Days = append(it.Days, DayPlan{
			Day:       fmt.Sprintf("Day %d", i),
			Title:     "Out and about",
			Emoji:     "🌍",
			Morning:   Activity{Activity: "Walk", Description: "Walk around."},
			Afternoon: Activity{Activity: "Museum", Description: "Visit a museum."},
			Evening:   Activity{Activity: "Dinner", Description: "Eat out."},
		})
	}
	return it
}

func TestBuildTripPlanJoinsHotelsWeatherAndFlight(t *testing.T) {
	amadeus := &fakeAmadeus{
		hotelsByCity: map[string][]HotelPricing{
			"PAR": {{
				ID: "HP", Name: "Hotel Paris",
				Total: Money{Amount: 300, Currency: "USD"},
				Nightly: []NightlyRate{
					{Date: "2026-09-01", Price: 150, Currency: "USD"},
					{Date: "2026-09-02", Price: 150, Currency: "USD"},
				},
			}},
			"ROM": {{
				ID: "HR", Name: "Hotel Roma",
				Total: Money{Amount: 240, Currency: "USD"},
				Nightly: []NightlyRate{
					{Date: "2026-09-03", Price: 120, Currency: "USD"},
					{Date: "2026-09-04", Price: 120, Currency: "USD"},
				},
			}},
		},
		flights: []FlightPricing{{ID: "F1", Price: Money{Amount: 420, Currency: "USD"}}},
	}
	weather := &fakeWeather{
		forecasts: map[string][]Forecast{
			"Paris": {
				{Date: "2026-09-01", Tip: "Clear weather. Great day for outdoor plans!"},
				{Date: "2026-09-02", Tip: "Rain likely. Carry an umbrella or light rain jacket."},
			},
			"Rome": {
				{Date: "2026-09-03", Tip: "Hot day. Stay hydrated, apply sunscreen, and plan shade breaks."},
			},
		},
	}

	b := &PlanBuilder{Amadeus: amadeus, Weather: weather}

	plan := b.BuildTripPlan(PlanRequest{
		Origin:          "New York",
		Destinations:    []string{"Paris", "Rome"},
		DestinationDays: []int{2, 2},
		DateFrom:        "2026-09-01",
		DateTo:          "2026-09-05",
		Travelers:       2,
		Children:        1,
		Rooms:           1,
		Currency:        "USD",
	}, testItinerary(4))

	require.Len(t, plan.Days, 4)

	// itinerary fields carried over
	assert.Equal(t, "$500-$900", plan.TotalEstimatedCost)
	require.NotNil(t, plan.EstimatedCosts)

	// destinations assigned per the allocation
	assert.Equal(t, "Paris", plan.Days[0].Destination)
	assert.Equal(t, "Paris", plan.Days[1].Destination)
	assert.Equal(t, "Rome", plan.Days[2].Destination)
	assert.Equal(t, "Rome", plan.Days[3].Destination)

	// dates walk forward from the trip start
	assert.Equal(t, "2026-09-01", plan.Days[0].Date)
	assert.Equal(t, "2026-09-04", plan.Days[3].Date)

	// weather tips joined by date and destination
	assert.Contains(t, plan.Days[0].WeatherTip, "Clear weather")
	assert.Contains(t, plan.Days[1].WeatherTip, "Rain likely")
	assert.Contains(t, plan.Days[2].WeatherTip, "Hot day")
	assert.Empty(t, plan.Days[3].WeatherTip) // no forecast for that date

	// hotel nightly rates joined by date
	require.NotNil(t, plan.Days[0].Hotel)
	assert.Equal(t, "Hotel Paris", plan.Days[0].Hotel.HotelName)
	assert.Equal(t, 150.0, plan.Days[0].Hotel.Price)
	require.NotNil(t, plan.Days[2].Hotel)
	assert.Equal(t, "Hotel Roma", plan.Days[2].Hotel.HotelName)

	// per-destination hotel summary keeps destination order
	require.Len(t, plan.Hotels, 2)
	assert.Equal(t, "Paris", plan.Hotels[0].Destination)
	assert.Equal(t, "Rome", plan.Hotels[1].Destination)

	// flight query goes origin to first destination with hard-capped results
	require.NotNil(t, plan.Flight)
	assert.Equal(t, "F1", plan.Flight.ID)
	require.Len(t, amadeus.flightQueries, 1)
	assert.Equal(t, "NYC", amadeus.flightQueries[0].Origin)
	assert.Equal(t, "PAR", amadeus.flightQueries[0].Destination)
	assert.Equal(t, 5, amadeus.flightQueries[0].Max)
	assert.Equal(t, 2, amadeus.flightQueries[0].Adults)
	assert.Equal(t, 1, amadeus.flightQueries[0].Children)
}

func TestBuildTripPlanFallsBackToPrimaryHotel(t *testing.T) {
	amadeus := &fakeAmadeus{
		hotelsByCity: map[string][]HotelPricing{
			// no hotels found for Rome; Paris is the primary destination
			"PAR": {{
				ID: "HP", Name: "Hotel Paris",
				Total: Money{Amount: 600, Currency: "USD"},
				Nightly: []NightlyRate{
					{Date: "2026-09-01", Price: 150, Currency: "USD"},
					{Date: "2026-09-02", Price: 150, Currency: "USD"},
					{Date: "2026-09-03", Price: 150, Currency: "USD"},
					{Date: "2026-09-04", Price: 150, Currency: "USD"},
				},
			}},
		},
	}

	b := &PlanBuilder{Amadeus: amadeus, Weather: &fakeWeather{}}

	plan := b.BuildTripPlan(PlanRequest{
		Destinations:    []string{"Paris", "Rome"},
		DestinationDays: []int{2, 2},
		DateFrom:        "2026-09-01",
		DateTo:          "2026-09-05",
		Travelers:       2,
		Currency:        "USD",
	}, testItinerary(4))

	require.Len(t, plan.Days, 4)
	assert.Equal(t, "Rome", plan.Days[2].Destination)

	// Rome days still carry a stay, backed by the primary destination's hotel
	require.NotNil(t, plan.Days[2].Hotel)
	assert.Equal(t, "Hotel Paris", plan.Days[2].Hotel.HotelName)
	require.NotNil(t, plan.Days[3].Hotel)
	assert.Equal(t, 150.0, plan.Days[3].Hotel.Price)

	// the per-destination summary lists only destinations with real results
	require.Len(t, plan.Hotels, 1)
	assert.Equal(t, "Paris", plan.Hotels[0].Destination)
}

func TestBuildTripPlanSurvivesUpstreamFailures(t *testing.T) {
	b := &PlanBuilder{
		Amadeus: &fakeAmadeus{
			hotelsErr:  fmt.Errorf("amadeus down"),
			flightsErr: fmt.Errorf("amadeus down"),
		},
		Weather: &fakeWeather{err: fmt.Errorf("open-meteo down")},
	}

	plan := b.BuildTripPlan(PlanRequest{
		Origin:       "New York",
		Destinations: []string{"Paris"},
		DateFrom:     "2026-09-01",
		DateTo:       "2026-09-03",
		Travelers:    2,
		Currency:     "USD",
	}, testItinerary(2))

	require.Len(t, plan.Days, 2)
	assert.Nil(t, plan.Flight)
	assert.Empty(t, plan.Hotels)
	for _, d := range plan.Days {
		assert.Nil(t, d.Hotel)
		assert.Empty(t, d.WeatherTip)
		assert.Equal(t, "Paris", d.Destination)
		assert.NotEmpty(t, d.Date)
	}
}

func TestBuildTripPlanNilClients(t *testing.T) {
	b := &PlanBuilder{}

	plan := b.BuildTripPlan(PlanRequest{
		Destinations: []string{"Paris"},
		DateFrom:     "2026-09-01",
		DateTo:       "2026-09-03",
		Travelers:    1,
	}, testItinerary(2))

	require.Len(t, plan.Days, 2)
	assert.Nil(t, plan.Flight)
	assert.Empty(t, plan.Hotels)
}

func TestBuildTripPlanNoOrigin(t *testing.T) {
	amadeus := &fakeAmadeus{}
	b := &PlanBuilder{Amadeus: amadeus, Weather: &fakeWeather{}}

	plan := b.BuildTripPlan(PlanRequest{
		Destinations: []string{"Paris"},
		DateFrom:     "2026-09-01",
		DateTo:       "2026-09-03",
		Travelers:    1,
	}, testItinerary(2))

	assert.Nil(t, plan.Flight)
	assert.Empty(t, amadeus.flightQueries)
}

func TestBuildTripPlanBadStartDate(t *testing.T) {
	b := &PlanBuilder{}

	plan := b.BuildTripPlan(PlanRequest{
		Destinations: []string{"Paris"},
		DateFrom:     "soon",
		Travelers:    1,
	}, testItinerary(1))

	require.Len(t, plan.Days, 1)
	assert.Empty(t, plan.Days[0].Date)
	assert.Nil(t, plan.Days[0].Hotel)
}
