package formatter

import (
	"encoding/json"
	"fmt"
)

// jsonFormatter formats output as JSON
type jsonFormatter struct{}

// NewJSON creates a new JSON formatter
func NewJSON() Formatter {
	return &jsonFormatter{}
}

// JSONOutput is the JSON document written for a report
type JSONOutput struct {
	*Report
	Summary string `json:"summary"`
}

func (f *jsonFormatter) Format(r *Report) ([]byte, error) {
	if err := validate(r); err != nil {
		return nil, err
	}

	output := &JSONOutput{Report: r, Summary: "No context gathered"}
	if r.Context != nil {
		output.Summary = r.Context.Summary()
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return data, nil
}
