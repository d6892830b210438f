package services

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
)

// ─── Types ────────────────────────────────────────────────────────────────────

type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type SegmentEndpoint struct {
	IataCode string `json:"iataCode"`
	Terminal string `json:"terminal,omitempty"`
	At       string `json:"at"`
}

type FlightSegment struct {
	Departure   SegmentEndpoint `json:"departure"`
	Arrival     SegmentEndpoint `json:"arrival"`
	CarrierCode string          `json:"carrierCode"`
	CarrierName string          `json:"carrierName"`
	Number      string          `json:"number"`
	Duration    string          `json:"duration,omitempty"`
}

type FlightItinerary struct {
	Duration string          `json:"duration,omitempty"`
	Segments []FlightSegment `json:"segments"`
}

type FlightPricing struct {
	ID          string            `json:"id"`
	Price       Money             `json:"price"`
	Airlines    []string          `json:"airlines"`
	Itineraries []FlightItinerary `json:"itineraries"`
}

type NightlyRate struct {
	Date     string  `json:"date"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
}

type HotelPricing struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Rating       string        `json:"rating,omitempty"`
	Address      string        `json:"address"`
	CheckInDate  string        `json:"checkInDate"`
	CheckOutDate string        `json:"checkOutDate"`
	Total        Money         `json:"total"`
	Nightly      []NightlyRate `json:"nightly"`
}

type FlightQuery struct {
	Origin        string
	Destination   string
	DepartureDate string
	ReturnDate    string
	Adults        int
	Children      int
	CurrencyCode  string
	Max           int
	NonStop       bool
}

type HotelQuery struct {
	CityCode     string
	CheckInDate  string
	CheckOutDate string
	Adults       int
	Currency     string
	RoomQuantity int
}

// hotelOffersBatchSize limits hotelIds per request so the URL stays within
// vendor limits.
const hotelOffersBatchSize = 20

var iataCodeRe = regexp.MustCompile(`^[A-Z]{3}$`)

// ─── Amadeus Client ───────────────────────────────────────────────────────────

type AmadeusClient struct {
	clientID     string
	clientSecret string
	baseURL      string
	accessToken  string
	tokenExpiry  time.Time
	mu           sync.Mutex
	httpClient   *http.Client
}

var amadeusClient *AmadeusClient

func InitAmadeus() {
	env := os.Getenv("AMADEUS_ENV")
	baseURL := "https://api.amadeus.com" // production
	if env == "" || env == "test" {
		baseURL = "https://test.api.amadeus.com" // free test environment
	}

	amadeusClient = &AmadeusClient{
		clientID:     os.Getenv("AMADEUS_API_KEY"),
		clientSecret: os.Getenv("AMADEUS_API_SECRET"),
		baseURL:      baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	if amadeusClient.clientID == "" || amadeusClient.clientSecret == "" {
		log.Println("⚠️  AMADEUS_API_KEY or AMADEUS_API_SECRET not set — flight/hotel endpoints will return errors")
		return
	}

	// Pre-warm the token
	if err := amadeusClient.refreshToken(); err != nil {
		log.Printf("⚠️  Amadeus token pre-warm failed: %v", err)
	} else {
		log.Println("✅ Amadeus API authenticated")
	}
}

func GetAmadeusClient() *AmadeusClient {
	return amadeusClient
}

func (c *AmadeusClient) Configured() bool {
	return c != nil && c.clientID != "" && c.clientSecret != ""
}

// ─── OAuth2 Token ─────────────────────────────────────────────────────────────

func (c *AmadeusClient) refreshToken() error {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequest("POST",
		c.baseURL+"/v1/security/oauth2/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("token request failed (%d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse token response: %v", err)
	}

	c.mu.Lock()
	c.accessToken = result.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(result.ExpiresIn) * time.Second)
	c.mu.Unlock()

	return nil
}

// getToken returns a cached token, refreshing when it is within 60 seconds of
// expiry. Concurrent refreshes are possible and harmless; both produce valid
// tokens.
func (c *AmadeusClient) getToken() (string, error) {
	c.mu.Lock()
	stale := time.Until(c.tokenExpiry) < 60*time.Second
	token := c.accessToken
	c.mu.Unlock()

	if stale || token == "" {
		if err := c.refreshToken(); err != nil {
			return "", err
		}
		c.mu.Lock()
		token = c.accessToken
		c.mu.Unlock()
	}
	return token, nil
}

func (c *AmadeusClient) doRequest(method, path string) ([]byte, error) {
	token, err := c.getToken()
	if err != nil {
		return nil, fmt.Errorf("auth failed: %w", err)
	}

	req, err := http.NewRequest(method, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("amadeus error (%d): %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

// ─── Location Resolution ──────────────────────────────────────────────────────

// ResolveLocationCode maps free-text input to a 3-letter IATA city code.
// Already-valid codes pass through without a lookup.
func (c *AmadeusClient) ResolveLocationCode(keyword string) (string, error) {
	maybe := strings.ToUpper(strings.TrimSpace(keyword))
	if iataCodeRe.MatchString(maybe) {
		return maybe, nil
	}
	if len(strings.TrimSpace(keyword)) < 2 {
		return "", fmt.Errorf("location keyword too short: %q", keyword)
	}
	if !c.Configured() {
		return "", fmt.Errorf("amadeus not configured")
	}

	path := fmt.Sprintf("/v1/reference-data/locations?subType=CITY&keyword=%s",
		url.QueryEscape(keyword))

	body, err := c.doRequest("GET", path)
	if err != nil {
		return "", fmt.Errorf("location lookup failed: %w", err)
	}

	var resp struct {
		Data []struct {
			IataCode string `json:"iataCode"`
			SubType  string `json:"subType"`
			Name     string `json:"name"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse location response: %w", err)
	}

	for _, d := range resp.Data {
		if d.SubType == "CITY" && d.IataCode != "" {
			return d.IataCode, nil
		}
	}
	return "", fmt.Errorf("unable to resolve city code for %q", keyword)
}

// ─── Flight Search ────────────────────────────────────────────────────────────

type amadeusFlightOffersResponse struct {
	Data []struct {
		ID    string `json:"id"`
		Price struct {
			GrandTotal string `json:"grandTotal"`
			Total      string `json:"total"`
			Currency   string `json:"currency"`
		} `json:"price"`
		Itineraries []struct {
			Duration string `json:"duration"`
			Segments []struct {
				Departure   SegmentEndpoint `json:"departure"`
				Arrival     SegmentEndpoint `json:"arrival"`
				CarrierCode string          `json:"carrierCode"`
				Number      string          `json:"number"`
				Duration    string          `json:"duration"`
			} `json:"segments"`
		} `json:"itineraries"`
		ValidatingAirlineCodes []string `json:"validatingAirlineCodes"`
	} `json:"data"`
	Dictionaries struct {
		Carriers map[string]string `json:"carriers"`
	} `json:"dictionaries"`
}

// SearchFlights searches flight offers and flattens the vendor response into
// FlightPricing records, resolving carrier codes through the response's
// carriers dictionary.
func (c *AmadeusClient) SearchFlights(q FlightQuery) ([]FlightPricing, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("amadeus not configured")
	}

	params := url.Values{}
	params.Set("originLocationCode", q.Origin)
	params.Set("destinationLocationCode", q.Destination)
	params.Set("departureDate", q.DepartureDate)
	if q.ReturnDate != "" {
		params.Set("returnDate", q.ReturnDate)
	}
	params.Set("adults", fmt.Sprintf("%d", q.Adults))
	if q.Children > 0 {
		params.Set("children", fmt.Sprintf("%d", q.Children))
	}
	params.Set("currencyCode", q.CurrencyCode)
	params.Set("max", fmt.Sprintf("%d", q.Max))
	params.Set("nonStop", fmt.Sprintf("%t", q.NonStop))

	body, err := c.doRequest("GET", "/v2/shopping/flight-offers?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("flight search failed: %w", err)
	}

	return parseFlightOffers(body, q.CurrencyCode)
}

func parseFlightOffers(data []byte, fallbackCurrency string) ([]FlightPricing, error) {
	var resp amadeusFlightOffersResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse flight offers: %w", err)
	}

	carriers := resp.Dictionaries.Carriers

	flights := make([]FlightPricing, 0, len(resp.Data))
	for _, offer := range resp.Data {
		totalStr := offer.Price.GrandTotal
		if totalStr == "" {
			totalStr = offer.Price.Total
		}
		currency := offer.Price.Currency
		if currency == "" {
			currency = fallbackCurrency
		}

		f := FlightPricing{
			ID: offer.ID,
			Price: Money{
				Amount:   roundCents(parsePrice(totalStr)),
				Currency: currency,
			},
		}

		for _, it := range offer.Itineraries {
			fit := FlightItinerary{Duration: it.Duration}
			for _, s := range it.Segments {
				fit.Segments = append(fit.Segments, FlightSegment{
					Departure:   s.Departure,
					Arrival:     s.Arrival,
					CarrierCode: s.CarrierCode,
					CarrierName: carrierName(carriers, s.CarrierCode),
					Number:      s.Number,
					Duration:    s.Duration,
				})
			}
			f.Itineraries = append(f.Itineraries, fit)
		}

		seen := make(map[string]bool)
		for _, code := range offer.ValidatingAirlineCodes {
			name := carrierName(carriers, code)
			if !seen[name] {
				seen[name] = true
				f.Airlines = append(f.Airlines, name)
			}
		}

		flights = append(flights, f)
	}

	return flights, nil
}

func carrierName(carriers map[string]string, code string) string {
	if name, ok := carriers[code]; ok && name != "" {
		return name
	}
	return code
}

// ─── Hotel Search ─────────────────────────────────────────────────────────────

type amadeusHotelListResponse struct {
	Data []struct {
		HotelID string `json:"hotelId"`
		Name    string `json:"name"`
	} `json:"data"`
}

type priceVariations struct {
	Average struct {
		Base string `json:"base"`
	} `json:"average"`
	Changes []struct {
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
		Total     string `json:"total"`
	} `json:"changes"`
}

type amadeusHotelOffersResponse struct {
	Data []struct {
		Hotel struct {
			HotelID  string `json:"hotelId"`
			Name     string `json:"name"`
			CityCode string `json:"cityCode"`
			Rating   string `json:"rating"`
			Address  struct {
				Lines    []string `json:"lines"`
				CityName string   `json:"cityName"`
			} `json:"address"`
		} `json:"hotel"`
		Available bool `json:"available"`
		Offers    []struct {
			Price struct {
				Total      string           `json:"total"`
				Currency   string           `json:"currency"`
				Variations *priceVariations `json:"variations"`
			} `json:"price"`
		} `json:"offers"`
	} `json:"data"`
}

// SearchHotels lists hotel IDs for a city, fetches offers in fixed-size id
// batches, keeps the cheapest offer per hotel with a per-night price schedule,
// and returns the result sorted by total price ascending.
func (c *AmadeusClient) SearchHotels(q HotelQuery) ([]HotelPricing, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("amadeus not configured")
	}

	hotelIDs, err := c.getHotelIDsByCity(q.CityCode)
	if err != nil {
		return nil, fmt.Errorf("hotel list failed: %w", err)
	}
	if len(hotelIDs) == 0 {
		return []HotelPricing{}, nil
	}

	nights := nightsBetween(q.CheckInDate, q.CheckOutDate)

	var hotels []HotelPricing
	for _, ids := range chunkIDs(hotelIDs, hotelOffersBatchSize) {
		batch, err := c.getHotelOffers(ids, q, nights)
		if err != nil {
			return nil, err
		}
		hotels = append(hotels, batch...)
	}

	sort.Slice(hotels, func(i, j int) bool {
		return hotels[i].Total.Amount < hotels[j].Total.Amount
	})

	return hotels, nil
}

func (c *AmadeusClient) getHotelIDsByCity(cityCode string) ([]string, error) {
	path := fmt.Sprintf("/v1/reference-data/locations/hotels/by-city?cityCode=%s",
		url.QueryEscape(cityCode))

	body, err := c.doRequest("GET", path)
	if err != nil {
		return nil, err
	}

	var resp amadeusHotelListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse hotel list: %w", err)
	}

	ids := make([]string, 0, len(resp.Data))
	for _, h := range resp.Data {
		if h.HotelID != "" {
			ids = append(ids, h.HotelID)
		}
	}
	return ids, nil
}

func (c *AmadeusClient) getHotelOffers(hotelIDs []string, q HotelQuery, nights int) ([]HotelPricing, error) {
	params := url.Values{}
	params.Set("hotelIds", strings.Join(hotelIDs, ","))
	params.Set("checkInDate", q.CheckInDate)
	params.Set("checkOutDate", q.CheckOutDate)
	params.Set("adults", fmt.Sprintf("%d", q.Adults))
	params.Set("roomQuantity", fmt.Sprintf("%d", q.RoomQuantity))
	params.Set("currency", q.Currency)
	params.Set("bestRateOnly", "true")
	params.Set("view", "FULL")

	body, err := c.doRequest("GET", "/v3/shopping/hotel-offers?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("hotel offers failed: %w", err)
	}

	var resp amadeusHotelOffersResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse hotel offers: %w", err)
	}

	hotels := make([]HotelPricing, 0, len(resp.Data))
	for _, item := range resp.Data {
		if len(item.Offers) == 0 {
			continue
		}

		// Cheapest offer for this hotel
		cheapest := item.Offers[0]
		cheapestTotal := parsePrice(cheapest.Price.Total)
		for _, o := range item.Offers[1:] {
			if t := parsePrice(o.Price.Total); t < cheapestTotal {
				cheapest = o
				cheapestTotal = t
			}
		}
		if cheapestTotal <= 0 {
			continue
		}

		currency := cheapest.Price.Currency
		if currency == "" {
			currency = q.Currency
		}

		address := strings.Join(item.Hotel.Address.Lines, ", ")
		if address == "" {
			address = item.Hotel.Address.CityName
		}

		hotels = append(hotels, HotelPricing{
			ID:           item.Hotel.HotelID,
			Name:         item.Hotel.Name,
			Rating:       item.Hotel.Rating,
			Address:      address,
			CheckInDate:  q.CheckInDate,
			CheckOutDate: q.CheckOutDate,
			Total:        Money{Amount: roundCents(cheapestTotal), Currency: currency},
			Nightly:      deriveNightlyRates(q.CheckInDate, nights, cheapestTotal, currency, cheapest.Price.Variations),
		})
	}

	return hotels, nil
}

// deriveNightlyRates builds a per-night price schedule from whichever
// variation shape the vendor returned: explicit per-date change buckets, an
// average nightly base, or an even division of the total by night count.
func deriveNightlyRates(checkIn string, nights int, total float64, currency string, variations *priceVariations) []NightlyRate {
	if nights < 1 {
		nights = 1
	}
	from, err := time.Parse("2006-01-02", checkIn)
	if err != nil {
		return nil
	}

	nightly := make([]NightlyRate, 0, nights)

	if variations != nil && len(variations.Changes) > 0 {
		for i := 0; i < nights; i++ {
			day := from.AddDate(0, 0, i)
			price := total / float64(nights)
			for _, ch := range variations.Changes {
				start, serr := time.Parse("2006-01-02", ch.StartDate)
				if serr != nil {
					continue
				}
				end, eerr := time.Parse("2006-01-02", ch.EndDate)
				if eerr != nil {
					end = start.AddDate(0, 0, 1)
				}
				if !day.Before(start) && day.Before(end) {
					span := int(end.Sub(start).Hours() / 24)
					if span < 1 {
						span = 1
					}
					if t := parsePrice(ch.Total); t > 0 {
						price = t / float64(span)
					}
					break
				}
			}
			nightly = append(nightly, NightlyRate{
				Date:     day.Format("2006-01-02"),
				Price:    roundCents(price),
				Currency: currency,
			})
		}
		return nightly
	}

	if variations != nil {
		if avg := parsePrice(variations.Average.Base); avg > 0 {
			for i := 0; i < nights; i++ {
				nightly = append(nightly, NightlyRate{
					Date:     from.AddDate(0, 0, i).Format("2006-01-02"),
					Price:    roundCents(avg),
					Currency: currency,
				})
			}
			return nightly
		}
	}

	perNight := total / float64(nights)
	for i := 0; i < nights; i++ {
		nightly = append(nightly, NightlyRate{
			Date:     from.AddDate(0, 0, i).Format("2006-01-02"),
			Price:    roundCents(perNight),
			Currency: currency,
		})
	}
	return nightly
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func chunkIDs(ids []string, size int) [][]string {
	var chunks [][]string
	for i := 0; i < len(ids); i += size {
		end := i + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[i:end])
	}
	return chunks
}

func nightsBetween(checkIn, checkOut string) int {
	from, err1 := time.Parse("2006-01-02", checkIn)
	to, err2 := time.Parse("2006-01-02", checkOut)
	if err1 != nil || err2 != nil {
		return 1
	}
	n := int(to.Sub(from).Hours() / 24)
	if n < 1 {
		return 1
	}
	return n
}

func parsePrice(s string) float64 {
	var price float64
	fmt.Sscanf(s, "%f", &price)
	return price
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
