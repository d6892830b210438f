package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIPlanner generates itineraries through the OpenAI chat API using a
// strict JSON schema response format.
type OpenAIPlanner struct {
	client *openai.Client
	model  string
}

func NewOpenAIPlanner() *OpenAIPlanner {
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIPlanner{
		client: openai.NewClient(os.Getenv("OPENAI_API_KEY")),
		model:  model,
	}
}

func (p *OpenAIPlanner) GenerateItinerary(ctx context.Context, in ItineraryInput) (*Itinerary, error) {
	prompt := buildItineraryPrompt(in)

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.4,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "travel_itinerary",
				Schema: json.RawMessage(itineraryJSONSchema),
				Strict: true,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("openai returned no content")
	}

	return decodeItinerary(resp.Choices[0].Message.Content)
}

// itineraryJSONSchema mirrors the Itinerary types. Strict mode requires every
// property to be listed in "required"; optional fields are nullable instead.
const itineraryJSONSchema = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "itinerary": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": false,
        "properties": {
          "day": {"type": "string", "description": "The day number, e.g., \"Day 1\"."},
          "title": {"type": "string", "description": "A catchy title for the day's plan."},
          "emoji": {"type": "string", "description": "An emoji that represents the day's activities."},
          "morning": {"$ref": "#/$defs/activity"},
          "afternoon": {"$ref": "#/$defs/activity"},
          "evening": {"$ref": "#/$defs/activity"},
          "weatherAdvice": {"type": ["string", "null"], "description": "Actionable advice based on the day's weather forecast."}
        },
        "required": ["day", "title", "emoji", "morning", "afternoon", "evening", "weatherAdvice"]
      }
    },
    "estimatedCosts": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "food": {"type": "string"},
        "accommodation": {"type": "string"},
        "transportation": {"type": "string"}
      },
      "required": ["food", "accommodation", "transportation"]
    },
    "totalEstimatedCost": {"type": "string", "description": "Sum of the individual cost estimates, as a range."}
  },
  "required": ["itinerary", "estimatedCosts", "totalEstimatedCost"],
  "$defs": {
    "activity": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "activity": {"type": "string", "description": "A short title for the activity."},
        "description": {"type": "string", "description": "A detailed description of the plan."},
        "transportToNext": {
          "anyOf": [
            {
              "type": "object",
              "additionalProperties": false,
              "properties": {
                "mode": {"type": "string"},
                "details": {"type": ["string", "null"]},
                "departureTime": {"type": "string"},
                "arrivalTime": {"type": "string"},
                "cost": {"type": "string"},
                "from": {"type": "string"},
                "to": {"type": "string"}
              },
              "required": ["mode", "details", "departureTime", "arrivalTime", "cost", "from", "to"]
            },
            {"type": "null"}
          ]
        }
      },
      "required": ["activity", "description", "transportToNext"]
    }
  }
}`
