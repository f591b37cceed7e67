package cases

import (
	"fmt"
	"strings"
)

// Well-known case record fields
const (
	FieldModule   = "Module"
	FieldProblem  = "Problem Statements"
	FieldSolution = "Solution"
	FieldSOP      = "SOP"
	FieldEDI      = "EDI?"
)

// Case is one historical case record. Fields are kept as loaded; a missing
// field reads as the empty string.
type Case struct {
	ID     int               `json:"id" yaml:"id"`
	Fields map[string]string `json:"fields" yaml:"fields"`
}

// Get returns a field value, or "" when absent
func (c Case) Get(field string) string {
	return c.Fields[field]
}

// Module returns the module the case was filed under
func (c Case) Module() string { return c.Get(FieldModule) }

// Problem returns the problem statement
func (c Case) Problem() string { return c.Get(FieldProblem) }

// Solution returns the recorded solution
func (c Case) Solution() string { return c.Get(FieldSolution) }

// SOP returns the referenced standard operating procedure
func (c Case) SOP() string { return c.Get(FieldSOP) }

// searchText is the text similarity is scored against
func (c Case) searchText() string {
	return strings.ToLower(c.Problem()) + " " + strings.ToLower(c.Solution())
}

// Summary renders the case for display
func (c Case) Summary() string {
	return fmt.Sprintf("Module: %s\nProblem: %s\nSolution: %s\nSOP: %s\n",
		orNA(c.Module()), orNA(c.Problem()), orNA(c.Solution()), orNA(c.SOP()))
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
