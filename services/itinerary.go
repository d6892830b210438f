package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
)

// ─── Types ────────────────────────────────────────────────────────────────────

type Transport struct {
	Mode          string `json:"mode"`
	Details       string `json:"details,omitempty"`
	DepartureTime string `json:"departureTime"`
	ArrivalTime   string `json:"arrivalTime"`
	Cost          string `json:"cost"`
	From          string `json:"from"`
	To            string `json:"to"`
}

type Activity struct {
	Activity        string     `json:"activity"`
	Description     string     `json:"description"`
	TransportToNext *Transport `json:"transportToNext,omitempty"`
}

type DayPlan struct {
	Day           string   `json:"day"`
	Title         string   `json:"title"`
	Emoji         string   `json:"emoji"`
	Morning       Activity `json:"morning"`
	Afternoon     Activity `json:"afternoon"`
	Evening       Activity `json:"evening"`
	WeatherAdvice string   `json:"weatherAdvice,omitempty"`
}

type CostEstimate struct {
	Food           string `json:"food"`
	Accommodation  string `json:"accommodation"`
	Transportation string `json:"transportation"`
}

type Itinerary struct {
	Days               []DayPlan     `json:"itinerary"`
	EstimatedCosts     *CostEstimate `json:"estimatedCosts,omitempty"`
	TotalEstimatedCost string        `json:"totalEstimatedCost,omitempty"`
}

type ItineraryInput struct {
	Destination     string
	Destinations    []string
	DestinationDays []int
	TravelDates     string
	Budget          string
	Travelers       int
	Children        int
	Rooms           int
	Currency        string
	TravelStyle     []string
	DreamTrip       string
}

const maxItineraryDays = 30

// ─── Planner Selection ────────────────────────────────────────────────────────

// ItineraryPlanner generates a schema-conformant itinerary from trip inputs.
// One call, fail-fast: implementations do not retry.
type ItineraryPlanner interface {
	GenerateItinerary(ctx context.Context, in ItineraryInput) (*Itinerary, error)
}

var planner ItineraryPlanner

// InitPlanner selects the LLM provider: ITINERARY_PROVIDER=openai|gemini,
// defaulting to Gemini when a key is present.
func InitPlanner() {
	provider := strings.ToLower(os.Getenv("ITINERARY_PROVIDER"))
	if provider == "" {
		if os.Getenv("GEMINI_API_KEY") != "" || os.Getenv("GOOGLE_API_KEY") != "" {
			provider = "gemini"
		} else if os.Getenv("OPENAI_API_KEY") != "" {
			provider = "openai"
		}
	}

	switch provider {
	case "gemini":
		p, err := NewGeminiPlanner()
		if err != nil {
			log.Printf("⚠️  Gemini planner init failed: %v — itinerary generation disabled", err)
			return
		}
		planner = p
		log.Println("✅ Itinerary planner ready (Gemini)")
	case "openai":
		planner = NewOpenAIPlanner()
		log.Println("✅ Itinerary planner ready (OpenAI)")
	default:
		log.Println("⚠️  No LLM API key set — itinerary generation disabled")
	}
}

func GetPlanner() ItineraryPlanner {
	return planner
}

// ─── Prompt ───────────────────────────────────────────────────────────────────

// Static context strings embedded in every prompt.
// TODO: replace with the live Open-Meteo forecast for the trip's dates.
const (
	promptWeatherContext = "Generally sunny with some clouds. Highs around 75°F (24°C). A 20% chance of a brief afternoon shower on the third day."
	promptEventsContext  = "Local farmers market at the city center (Saturdays, 9am-1pm). Live music festival at Central Park (Friday evenings). Art exhibition at the Modern Art Museum (daily)."
)

func buildItineraryPrompt(in ItineraryInput) string {
	destinations := "None"
	if len(in.Destinations) > 0 {
		destinations = strings.Join(in.Destinations, ", ")
	}

	allocation := "None"
	if len(in.DestinationDays) > 0 {
		parts := make([]string, len(in.DestinationDays))
		for i, d := range in.DestinationDays {
			parts[i] = fmt.Sprintf("%d", d)
		}
		allocation = strings.Join(parts, " / ")
	}

	currency := in.Currency
	if currency == "" {
		currency = "USD"
	}
	rooms := in.Rooms
	if rooms < 1 {
		rooms = 1
	}

	var b strings.Builder
	b.WriteString("You are an expert travel agent and logistics planner with the persona of a knowledgeable and enthusiastic guide. ")
	b.WriteString("Your task is to create a highly personalized, practical, and dynamic day-by-day travel itinerary in a structured JSON format.\n\n")

	fmt.Fprintf(&b, "User's Trip Data:\n")
	fmt.Fprintf(&b, "- Primary Destination: %s\n", in.Destination)
	fmt.Fprintf(&b, "- Additional Destinations: %s\n", destinations)
	fmt.Fprintf(&b, "- Day Allocation (if provided): %s (per destinations order)\n", allocation)
	fmt.Fprintf(&b, "- Travel Dates: %s\n", in.TravelDates)
	fmt.Fprintf(&b, "- Budget: %s\n", in.Budget)
	fmt.Fprintf(&b, "- Travelers (total): %d\n", in.Travelers)
	fmt.Fprintf(&b, "- Children: %d\n", in.Children)
	fmt.Fprintf(&b, "- Rooms: %d\n", rooms)
	fmt.Fprintf(&b, "- Preferred Currency: %s\n", currency)
	fmt.Fprintf(&b, "- Travel Style: %s\n", strings.Join(in.TravelStyle, ", "))
	fmt.Fprintf(&b, "- User's Dream Trip Description: %s\n", in.DreamTrip)

	b.WriteString("\nReal-Time Contextual Data:\n")
	fmt.Fprintf(&b, "- Weather Forecast: %s\n", promptWeatherContext)
	fmt.Fprintf(&b, "- Local Events: %s\n", promptEventsContext)

	b.WriteString(`
Your Instructions:
1. Generate a detailed, day-by-day itinerary across ALL specified destinations (if multiple). If a day allocation is provided, allocate that many days to each destination in order. Otherwise, distribute days logically to minimize backtracking and travel time. Clearly tailor activities to the current destination of that day, and make transitions between destinations logical.
2. Integrate the real-time data: weave the local events into the schedule where appropriate and adapt the itinerary to the weather forecast.
3. For each activity, include transportation details to the next activity in the 'transportToNext' field: mode, estimated departure and arrival times, cost, and from/to locations. Name the provider (airline, bus company, metro line) in 'details'. The last activity of the day (evening) may omit 'transportToNext'.
4. Based on destinations, duration, travelers (adults + children), rooms, and budget, provide realistic cost estimates for 'food', 'accommodation', and 'transportation' in the preferred currency, presented as ranges.
5. Calculate 'totalEstimatedCost' by summing the lower and upper bounds of the individual cost estimates.
6. Optimize the schedule to minimize travel time between locations where possible.
7. For each day, provide a catchy 'title' and a relevant 'emoji'.
8. Populate 'weatherAdvice' for a day only when there is specific, actionable advice based on the forecast.
9. The final output must be a valid JSON object matching the required output schema.
`)

	return b.String()
}

// ─── Output Validation ────────────────────────────────────────────────────────

// decodeItinerary parses LLM output and rejects anything that does not match
// the itinerary schema.
func decodeItinerary(content string) (*Itinerary, error) {
	var it Itinerary
	if err := json.Unmarshal([]byte(content), &it); err != nil {
		return nil, fmt.Errorf("itinerary is not valid JSON: %w", err)
	}
	if err := validateItinerary(&it); err != nil {
		return nil, err
	}
	return &it, nil
}

func validateItinerary(it *Itinerary) error {
	if len(it.Days) == 0 {
		return fmt.Errorf("itinerary has no days")
	}
	if len(it.Days) > maxItineraryDays {
		return fmt.Errorf("itinerary has %d days, maximum is %d", len(it.Days), maxItineraryDays)
	}
	for i, d := range it.Days {
		if d.Day == "" || d.Title == "" {
			return fmt.Errorf("day %d is missing its label or title", i+1)
		}
		for slot, a := range map[string]Activity{"morning": d.Morning, "afternoon": d.Afternoon, "evening": d.Evening} {
			if a.Activity == "" || a.Description == "" {
				return fmt.Errorf("day %d has an incomplete %s activity", i+1, slot)
			}
		}
	}
	return nil
}
