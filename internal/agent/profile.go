// Package agent holds what the hosted voice-agent runtime needs from this
// service: the assistant's instructions, its opening line and the contract
// of the search tool it calls.
package agent

import (
	"ivy_homes/internal/domain"
)

const Greeting = "Hello! Welcome to Ivy Homes. How can I help you today?"

const Instructions = `You are the voice assistant for Ivy Homes, a real estate company. You help callers who want to buy or rent.

Open warmly and say you are the Ivy Homes assistant. Find out what kind of property the caller wants (apartment, house, condo or commercial), then gather:
- preferred location (city or neighbourhood)
- budget
- number of bedrooms (BHK) and bathrooms
- must-have features
- preferred move-in date

As soon as you know at least a location, a property type or a budget, call the search_properties tool. Read back what it returns in its "speech" field; prices there are already phrased in lakhs and crores. If it finds nothing, say so and suggest relaxing one requirement.

When a question goes beyond what the tool returns (legal matters, negotiations, exact availability), offer to connect the caller with a property specialist or book a callback or viewing, and collect their name, phone number and email.

This is a spoken conversation: keep replies short and natural, with no lists, markup or long paragraphs. Be patient, especially with first-time buyers and renters.`

const ToolName = "search_properties"

// ToolArgs is the argument object the LLM produces for search_properties.
// Prices are in the same units as the inventory.
type ToolArgs struct {
	Location     *string  `json:"location,omitempty"`
	PropertyType *string  `json:"property_type,omitempty"`
	MinBedrooms  *int     `json:"min_bedrooms,omitempty"`
	MinBathrooms *int     `json:"min_bathrooms,omitempty"`
	MinPrice     *int64   `json:"min_price,omitempty"`
	MaxPrice     *int64   `json:"max_price,omitempty"`
	Features     []string `json:"features,omitempty"`
	MaxResults   *int     `json:"max_results,omitempty"`
}

// Criteria converts tool arguments into search criteria. The tool only ever
// offers available listings; a missing or non-positive max_results falls
// back to defaultMax so spoken replies stay short.
func (a ToolArgs) Criteria(defaultMax int) domain.Criteria {
	limit := defaultMax
	if a.MaxResults != nil && *a.MaxResults > 0 {
		limit = *a.MaxResults
	}
	return domain.Criteria{
		Location:     a.Location,
		Type:         a.PropertyType,
		MinBedrooms:  a.MinBedrooms,
		MinBathrooms: a.MinBathrooms,
		MinPrice:     a.MinPrice,
		MaxPrice:     a.MaxPrice,
		Features:     a.Features,
		Limit:        limit,
	}
}

// ToolSchema is the JSON-schema function declaration registered with the LLM.
func ToolSchema() map[string]any {
	integer := func(desc string) map[string]any {
		return map[string]any{"type": "integer", "minimum": 0, "description": desc}
	}
	return map[string]any{
		"name":        ToolName,
		"description": "Search the Ivy Homes inventory of available properties. Returns a short spoken summary and the matching listings.",
		"parameters": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"location": map[string]any{
					"type":        "string",
					"description": "City, neighbourhood or street, e.g. \"Whitefield\" or \"Bengaluru\".",
				},
				"property_type": map[string]any{
					"type": "string",
					"enum": []string{
						string(domain.TypeApartment), string(domain.TypeHouse),
						string(domain.TypeCondo), string(domain.TypeCommercial),
					},
				},
				"min_bedrooms":  integer("Minimum bedrooms (BHK)."),
				"min_bathrooms": integer("Minimum bathrooms."),
				"min_price":     integer("Lowest acceptable price in rupees."),
				"max_price":     integer("Highest acceptable price in rupees. 1 lakh = 100000, 1 crore = 10000000."),
				"features": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Features every result must have, e.g. parking, gym.",
				},
				"max_results": integer("How many matches to return (default 5)."),
			},
		},
	}
}

type Profile struct {
	Instructions string           `json:"instructions"`
	Greeting     string           `json:"greeting"`
	Tools        []map[string]any `json:"tools"`
}

func DefaultProfile() Profile {
	return Profile{Instructions: Instructions, Greeting: Greeting, Tools: []map[string]any{ToolSchema()}}
}
