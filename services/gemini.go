package services

import (
	"context"
	"fmt"
	"os"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiPlanner generates itineraries through Google's Gemini models with a
// forced JSON response schema.
type GeminiPlanner struct {
	client *genai.Client
	model  string
}

func NewGeminiPlanner() (*GeminiPlanner, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}

	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiPlanner{client: client, model: model}, nil
}

func (p *GeminiPlanner) GenerateItinerary(ctx context.Context, in ItineraryInput) (*Itinerary, error) {
	m := p.client.GenerativeModel(p.model)
	m.ResponseMIMEType = "application/json"
	m.ResponseSchema = itineraryResponseSchema
	m.SetTemperature(0.4)
	m.SetTopP(0.8)

	prompt := buildItineraryPrompt(in)

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini returned no content")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, fmt.Errorf("gemini returned a non-text part")
	}

	return decodeItinerary(string(text))
}

var transportSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"mode":          {Type: genai.TypeString, Description: "Mode of transport (e.g., 'Bus', 'Subway', 'Walk')."},
		"details":       {Type: genai.TypeString, Description: "Name of the flight, bus line, or train number."},
		"departureTime": {Type: genai.TypeString, Description: "Estimated departure time (e.g., '1:00 PM')."},
		"arrivalTime":   {Type: genai.TypeString, Description: "Estimated arrival time (e.g., '1:30 PM')."},
		"cost":          {Type: genai.TypeString, Description: "Estimated cost of the transport."},
		"from":          {Type: genai.TypeString, Description: "Starting point of the journey."},
		"to":            {Type: genai.TypeString, Description: "Destination of the journey."},
	},
	Required: []string{"mode", "departureTime", "arrivalTime", "cost", "from", "to"},
}

var activitySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"activity":        {Type: genai.TypeString, Description: "A short title for the activity."},
		"description":     {Type: genai.TypeString, Description: "A detailed description of the plan."},
		"transportToNext": transportSchema,
	},
	Required: []string{"activity", "description"},
}

var itineraryResponseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"itinerary": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"day":           {Type: genai.TypeString, Description: "The day number, e.g., \"Day 1\"."},
					"title":         {Type: genai.TypeString, Description: "A catchy title for the day's plan."},
					"emoji":         {Type: genai.TypeString, Description: "An emoji that represents the day's activities."},
					"morning":       activitySchema,
					"afternoon":     activitySchema,
					"evening":       activitySchema,
					"weatherAdvice": {Type: genai.TypeString, Description: "Actionable advice based on the day's weather forecast."},
				},
				Required: []string{"day", "title", "emoji", "morning", "afternoon", "evening"},
			},
		},
		"estimatedCosts": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"food":           {Type: genai.TypeString},
				"accommodation":  {Type: genai.TypeString},
				"transportation": {Type: genai.TypeString},
			},
			Required: []string{"food", "accommodation", "transportation"},
		},
		"totalEstimatedCost": {Type: genai.TypeString, Description: "Sum of the individual cost estimates, as a range."},
	},
	Required: []string{"itinerary", "estimatedCosts", "totalEstimatedCost"},
}
