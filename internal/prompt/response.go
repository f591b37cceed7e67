package prompt

import (
	"regexp"
	"strings"

	"github.com/yildizm/go-promptfmt"

	"github.com/yildizm/PortTriage/internal/common"
)

// Analysis is the structured reply to an incident analysis prompt
type Analysis struct {
	RootCause  string   `json:"root_cause"`
	Impact     string   `json:"impact"`
	Evidence   []string `json:"evidence"`
	Confidence string   `json:"confidence"` // HIGH, MEDIUM or LOW
	Raw        string   `json:"-"`
	Structured bool     `json:"-"` // reply was valid JSON
}

// Step is one remediation action
type Step struct {
	Action          string `json:"action"`
	ExpectedOutcome string `json:"expected_outcome"`
}

// RemediationPlan is the structured reply to a remediation prompt
type RemediationPlan struct {
	PreChecks    []string `json:"pre_checks"`
	Steps        []Step   `json:"steps"`
	Verification []string `json:"verification"`
	Rollback     []string `json:"rollback"`
	Monitoring   []string `json:"monitoring"`
	Raw          string   `json:"-"`
	Structured   bool     `json:"-"`
}

// Summary is a short excerpt of the plan for escalation mails
func (r *RemediationPlan) Summary() string {
	return common.Truncate(strings.TrimSpace(r.Raw), 500)
}

// ParseAnalysis reads an analysis reply. JSON replies are decoded directly;
// free-form replies are split at their numbered or titled sections.
func ParseAnalysis(response string) *Analysis {
	var analysis Analysis
	if promptfmt.NewResponse(response).TryParseJSON(&analysis).Success {
		analysis.Raw = response
		analysis.Structured = true
		analysis.Confidence = normalizeConfidence(analysis.Confidence)
		return &analysis
	}

	return &Analysis{
		RootCause:  extractSection(response, "root cause", "1."),
		Impact:     extractSection(response, "impact", "2."),
		Evidence:   listItems(extractSection(response, "evidence", "3.")),
		Confidence: normalizeConfidence(extractSection(response, "confidence", "4.")),
		Raw:        response,
	}
}

// ParseRemediation reads a remediation reply the same way as ParseAnalysis
func ParseRemediation(response string) *RemediationPlan {
	var plan RemediationPlan
	if promptfmt.NewResponse(response).TryParseJSON(&plan).Success {
		plan.Raw = response
		plan.Structured = true
		return &plan
	}

	var steps []Step
	for _, item := range listItems(extractSection(response, "remediation steps", "steps", "2.")) {
		steps = append(steps, Step{Action: item})
	}

	return &RemediationPlan{
		PreChecks:    listItems(extractSection(response, "pre-checks", "pre-check", "1.")),
		Steps:        steps,
		Verification: listItems(extractSection(response, "verification", "4.")),
		Rollback:     listItems(extractSection(response, "rollback", "5.")),
		Monitoring:   listItems(extractSection(response, "monitoring", "6.")),
		Raw:          response,
	}
}

// sectionTitles start the sections a free-form reply is split into
var sectionTitles = []string{
	"root cause", "impact", "evidence", "confidence",
	"pre-check", "remediation step", "steps", "verification", "rollback", "monitoring",
}

var (
	numberPrefix = regexp.MustCompile(`^\d+[.)]\s*`)
	headingLine  = regexp.MustCompile(`^\s*(?:#{1,6}\s|\*\*[^*]+\*\*:?\s*$|\d+[.)]\s+\*\*)`)
	listMarker   = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s+`)
)

// headingMatch reports whether line is a heading starting with marker and
// returns the text that follows the marker on the same line
func headingMatch(line, marker string) (string, bool) {
	s := strings.TrimLeft(line, " \t#*")
	if strings.HasPrefix(strings.ToLower(s), marker) {
		return s[len(marker):], true
	}
	s = strings.TrimLeft(numberPrefix.ReplaceAllString(s, ""), " *")
	if strings.HasPrefix(strings.ToLower(s), marker) {
		return s[len(marker):], true
	}
	return "", false
}

func isSectionStart(line string) bool {
	if headingLine.MatchString(line) {
		return true
	}
	for _, title := range sectionTitles {
		if _, ok := headingMatch(line, title); ok {
			return true
		}
	}
	return false
}

// extractSection returns the body of the first section whose heading starts
// with one of the markers, up to the next heading. Markers are tried in
// order and matched without regard to case.
func extractSection(text string, markers ...string) string {
	lines := strings.Split(text, "\n")
	for _, marker := range markers {
		marker = strings.ToLower(marker)
		for i, line := range lines {
			rest, ok := headingMatch(line, marker)
			if !ok {
				continue
			}

			var body []string
			// "Root Cause: text" keeps its inline text; "Root Cause Analysis**" has none
			if colon := strings.Index(rest, ":"); colon >= 0 {
				if inline := strings.Trim(rest[colon+1:], " *"); inline != "" {
					body = append(body, inline)
				}
			}
			for _, next := range lines[i+1:] {
				if isSectionStart(next) {
					break
				}
				body = append(body, next)
			}
			return strings.TrimSpace(strings.Join(body, "\n"))
		}
	}
	return ""
}

// listItems splits a section into its bullet or numbered items. A section
// without list markers is a single item.
func listItems(section string) []string {
	if section == "" {
		return nil
	}

	var items []string
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if listMarker.MatchString(line) {
			items = append(items, strings.TrimSpace(listMarker.ReplaceAllString(line, "")))
			continue
		}
		if len(items) > 0 {
			items[len(items)-1] += " " + line
		} else {
			items = append(items, line)
		}
	}
	return items
}

func normalizeConfidence(s string) string {
	upper := strings.ToUpper(s)
	for _, level := range []string{"HIGH", "MEDIUM", "LOW"} {
		if strings.Contains(upper, level) {
			return level
		}
	}
	return ""
}
