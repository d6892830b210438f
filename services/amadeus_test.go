package services

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAmadeusClient(baseURL string) *AmadeusClient {
	return &AmadeusClient{
		clientID:     "test-id",
		clientSecret: "test-secret",
		baseURL:      baseURL,
		httpClient:   &http.Client{Timeout: 5 * time.Second},
	}
}

func TestResolveLocationCodePassthrough(t *testing.T) {
	var c *AmadeusClient // nil client: passthrough must not touch the network

	code, err := c.ResolveLocationCode("JFK")
	require.NoError(t, err)
	assert.Equal(t, "JFK", code)

	code, err = c.ResolveLocationCode(" par ")
	require.NoError(t, err)
	assert.Equal(t, "PAR", code)
}

func TestResolveLocationCodeTooShort(t *testing.T) {
	var c *AmadeusClient

	_, err := c.ResolveLocationCode("x")
	assert.Error(t, err)

	_, err = c.ResolveLocationCode("  ")
	assert.Error(t, err)
}

func TestResolveLocationCodeUnconfigured(t *testing.T) {
	var c *AmadeusClient

	_, err := c.ResolveLocationCode("Paris")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestResolveLocationCodeLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/security/oauth2/token":
			w.Write([]byte(`{"access_token":"tok-1","expires_in":1799}`))
		case "/v1/reference-data/locations":
			assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
			assert.Equal(t, "Paris", r.URL.Query().Get("keyword"))
			w.Write([]byte(`{"data":[
				{"iataCode":"CDG","subType":"AIRPORT","name":"Charles de Gaulle"},
				{"iataCode":"PAR","subType":"CITY","name":"Paris"}
			]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := newTestAmadeusClient(srv.URL)

	code, err := c.ResolveLocationCode("Paris")
	require.NoError(t, err)
	assert.Equal(t, "PAR", code)
}

func TestTokenRefreshNearExpiry(t *testing.T) {
	var tokenCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/security/oauth2/token" {
			atomic.AddInt32(&tokenCalls, 1)
			w.Write([]byte(`{"access_token":"fresh","expires_in":1799}`))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := newTestAmadeusClient(srv.URL)
	c.accessToken = "stale"
	c.tokenExpiry = time.Now().Add(30 * time.Second) // inside the 60s window

	token, err := c.getToken()
	require.NoError(t, err)
	assert.Equal(t, "fresh", token)
	assert.Equal(t, int32(1), atomic.LoadInt32(&tokenCalls))

	// now well before expiry: no further refresh
	token, err = c.getToken()
	require.NoError(t, err)
	assert.Equal(t, "fresh", token)
	assert.Equal(t, int32(1), atomic.LoadInt32(&tokenCalls))
}

func TestParseFlightOffers(t *testing.T) {
	body := []byte(`{
		"data": [{
			"id": "1",
			"price": {"grandTotal": "412.30", "currency": "USD"},
			"itineraries": [{
				"duration": "PT8H30M",
				"segments": [{
					"departure": {"iataCode": "JFK", "at": "2026-09-01T18:00:00"},
					"arrival": {"iataCode": "CDG", "at": "2026-09-02T07:30:00"},
					"carrierCode": "AF",
					"number": "7",
					"duration": "PT8H30M"
				}]
			}],
			"validatingAirlineCodes": ["AF", "AF", "ZZ"]
		}],
		"dictionaries": {"carriers": {"AF": "AIR FRANCE"}}
	}`)

	flights, err := parseFlightOffers(body, "EUR")
	require.NoError(t, err)
	require.Len(t, flights, 1)

	f := flights[0]
	assert.Equal(t, "1", f.ID)
	assert.Equal(t, 412.30, f.Price.Amount)
	assert.Equal(t, "USD", f.Price.Currency)

	// carrier names resolved through the dictionary; unknown codes pass through,
	// duplicates collapsed
	assert.Equal(t, []string{"AIR FRANCE", "ZZ"}, f.Airlines)

	require.Len(t, f.Itineraries, 1)
	require.Len(t, f.Itineraries[0].Segments, 1)
	seg := f.Itineraries[0].Segments[0]
	assert.Equal(t, "AIR FRANCE", seg.CarrierName)
	assert.Equal(t, "JFK", seg.Departure.IataCode)
	assert.Equal(t, "CDG", seg.Arrival.IataCode)
}

func TestParseFlightOffersFallbacks(t *testing.T) {
	body := []byte(`{
		"data": [{
			"id": "2",
			"price": {"total": "99.99"},
			"itineraries": [],
			"validatingAirlineCodes": []
		}]
	}`)

	flights, err := parseFlightOffers(body, "GBP")
	require.NoError(t, err)
	require.Len(t, flights, 1)
	assert.Equal(t, 99.99, flights[0].Price.Amount)
	assert.Equal(t, "GBP", flights[0].Price.Currency)
}

func TestDeriveNightlyRatesEvenSplit(t *testing.T) {
	rates := deriveNightlyRates("2026-09-01", 3, 300, "USD", nil)
	require.Len(t, rates, 3)
	for i, r := range rates {
		assert.Equal(t, 100.0, r.Price)
		assert.Equal(t, "USD", r.Currency)
		assert.Equal(t, time.Date(2026, 9, 1+i, 0, 0, 0, 0, time.UTC).Format("2006-01-02"), r.Date)
	}
}

func TestDeriveNightlyRatesAverageBase(t *testing.T) {
	v := &priceVariations{}
	v.Average.Base = "120.00"

	rates := deriveNightlyRates("2026-09-01", 2, 250, "EUR", v)
	require.Len(t, rates, 2)
	assert.Equal(t, 120.0, rates[0].Price)
	assert.Equal(t, 120.0, rates[1].Price)
}

func TestDeriveNightlyRatesChangeBuckets(t *testing.T) {
	v := &priceVariations{
		Changes: []struct {
			StartDate string `json:"startDate"`
			EndDate   string `json:"endDate"`
			Total     string `json:"total"`
		}{
			{StartDate: "2026-09-01", EndDate: "2026-09-03", Total: "200.00"},
			{StartDate: "2026-09-03", EndDate: "2026-09-04", Total: "150.00"},
		},
	}

	rates := deriveNightlyRates("2026-09-01", 3, 350, "USD", v)
	require.Len(t, rates, 3)
	// first bucket spans two nights
	assert.Equal(t, 100.0, rates[0].Price)
	assert.Equal(t, 100.0, rates[1].Price)
	// second bucket is a single night
	assert.Equal(t, 150.0, rates[2].Price)
}

func TestDeriveNightlyRatesBadDate(t *testing.T) {
	assert.Nil(t, deriveNightlyRates("not-a-date", 2, 100, "USD", nil))
}

func TestSearchHotelsCheapestAndSorted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/security/oauth2/token":
			w.Write([]byte(`{"access_token":"tok","expires_in":1799}`))
		case "/v1/reference-data/locations/hotels/by-city":
			assert.Equal(t, "PAR", r.URL.Query().Get("cityCode"))
			w.Write([]byte(`{"data":[{"hotelId":"HA"},{"hotelId":"HB"},{"hotelId":"HC"}]}`))
		case "/v3/shopping/hotel-offers":
			assert.Equal(t, "HA,HB,HC", r.URL.Query().Get("hotelIds"))
			w.Write([]byte(`{"data":[
				{"hotel":{"hotelId":"HA","name":"Pricey Palace","address":{"lines":["1 Rue"],"cityName":"Paris"}},
				 "offers":[{"price":{"total":"900.00","currency":"EUR"}},{"price":{"total":"800.00","currency":"EUR"}}]},
				{"hotel":{"hotelId":"HB","name":"Budget Inn","address":{"cityName":"Paris"}},
				 "offers":[{"price":{"total":"200.00","currency":"EUR"}}]},
				{"hotel":{"hotelId":"HC","name":"Broken Rate"},
				 "offers":[{"price":{"total":"0","currency":"EUR"}}]}
			]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := newTestAmadeusClient(srv.URL)

	hotels, err := c.SearchHotels(HotelQuery{
		CityCode:     "PAR",
		CheckInDate:  "2026-09-01",
		CheckOutDate: "2026-09-03",
		Adults:       2,
		Currency:     "EUR",
		RoomQuantity: 1,
	})
	require.NoError(t, err)
	require.Len(t, hotels, 2) // zero-priced offer dropped

	// ascending by total, cheapest offer kept per hotel
	assert.Equal(t, "Budget Inn", hotels[0].Name)
	assert.Equal(t, 200.0, hotels[0].Total.Amount)
	assert.Equal(t, "Pricey Palace", hotels[1].Name)
	assert.Equal(t, 800.0, hotels[1].Total.Amount)

	assert.Equal(t, "Paris", hotels[0].Address)
	require.Len(t, hotels[0].Nightly, 2)
	assert.Equal(t, 100.0, hotels[0].Nightly[0].Price)
}

func TestChunkIDs(t *testing.T) {
	ids := make([]string, 45)
	for i := range ids {
		ids[i] = "H"
	}
	chunks := chunkIDs(ids, 20)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 20)
	assert.Len(t, chunks[1], 20)
	assert.Len(t, chunks[2], 5)

	assert.Nil(t, chunkIDs(nil, 20))
}

func TestNightsBetween(t *testing.T) {
	assert.Equal(t, 2, nightsBetween("2026-09-01", "2026-09-03"))
	assert.Equal(t, 1, nightsBetween("2026-09-01", "2026-09-01"))
	assert.Equal(t, 1, nightsBetween("bad", "2026-09-03"))
}
