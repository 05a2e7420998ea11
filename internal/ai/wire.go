package ai

import "strings"

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type schema struct {
	Type             string            `json:"type"`
	Description      string            `json:"description,omitempty"`
	Items            *schema           `json:"items,omitempty"`
	Properties       map[string]schema `json:"properties,omitempty"`
	Required         []string          `json:"required,omitempty"`
	PropertyOrdering []string          `json:"propertyOrdering,omitempty"`
}

type generationConfig struct {
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
	ResponseSchema   *schema `json:"responseSchema,omitempty"`
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// text concatenates the parts of the first candidate.
func (r generateResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

func draftListSchema() *schema {
	return &schema{
		Type: "ARRAY",
		Items: &schema{
			Type: "OBJECT",
			Properties: map[string]schema{
				"title":       {Type: "STRING", Description: "Short, actionable task title."},
				"description": {Type: "STRING", Description: "Detailed description of what has to be done."},
				"priority":    {Type: "STRING", Description: "Task priority: Low, Medium, High or Critical."},
				"tags":        {Type: "ARRAY", Items: &schema{Type: "STRING"}, Description: "Relevant tags."},
			},
			Required:         []string{"title", "description", "priority", "tags"},
			PropertyOrdering: []string{"title", "description", "priority", "tags"},
		},
	}
}
