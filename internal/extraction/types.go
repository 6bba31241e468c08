// Package extraction turns a talent's scraped page and document texts into a
// structured profile through a single LLM structuring call, with schema and
// struct-level validation on the response.
package extraction

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractedProfile is the fixed structuring contract. Scalar fields are
// pointers so "the model said nothing" stays distinct from an empty value.
type ExtractedProfile struct {
	Name         *string `json:"name"`
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	Location     *string `json:"location"`
	Status       *string `json:"status"`
	Availability *string `json:"availability"`

	Experiences []ExperienceData `json:"experiences" validate:"dive"`
	Projects    []ProjectData    `json:"projects" validate:"dive"`
	Languages   []string         `json:"languages"`

	JobTypes            []string `json:"job_types"`
	ContentVerticals    []string `json:"content_verticals"`
	PlatformSpecialties []string `json:"platform_specialties"`
	Skills              []string `json:"skills"`
	Software            []string `json:"software"`
}

// ExperienceData is one employment record from the structuring call.
type ExperienceData struct {
	Client      string  `json:"client" validate:"required"`
	Role        *string `json:"role"`
	Period      *string `json:"period"`
	Description *string `json:"description"`
}

// ProjectData is one portfolio project from the structuring call.
type ProjectData struct {
	Title   string          `json:"title" validate:"required"`
	Roles   []string        `json:"roles"`
	Metrics *ProjectMetrics `json:"metrics"`
	Link    *string         `json:"link"`
}

// ProjectMetrics carries raw metric values as the model wrote them; the
// coercion step turns them into numbers.
type ProjectMetrics struct {
	Views FlexValue `json:"views"`
	Likes FlexValue `json:"likes"`
}

// FlexValue accepts a JSON string, number, or null. Models alternate between
// `"1.2K"` and `1200` for the same field, so both forms land here as text.
type FlexValue struct {
	Raw string
	Set bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *FlexValue) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*v = FlexValue{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = FlexValue{Raw: s, Set: true}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*v = FlexValue{Raw: n.String(), Set: true}
		return nil
	}
	return fmt.Errorf("value %s is neither string nor number", trimmed)
}

// MarshalJSON implements json.Marshaler.
func (v FlexValue) MarshalJSON() ([]byte, error) {
	if !v.Set {
		return []byte("null"), nil
	}
	return json.Marshal(v.Raw)
}

// Int64 coerces the raw value to a number, nil when absent or unparseable.
func (v FlexValue) Int64() *int64 {
	if !v.Set {
		return nil
	}
	return ParseMetric(v.Raw)
}
