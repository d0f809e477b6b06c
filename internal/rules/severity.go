package rules

import (
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/soc-intake/internal/domain"
)

// DefaultLevel is the key-value severity assumed when no level is present.
const DefaultLevel = "informational"

type threshold struct {
	min      int
	severity domain.Severity
}

// numericLadder is checked top-down; the first threshold reached wins.
var numericLadder = []threshold{
	{min: 7, severity: domain.SeverityCritical},
	{min: 5, severity: domain.SeverityHigh},
	{min: 3, severity: domain.SeverityMedium},
}

type levelRule struct {
	levels   []string
	severity domain.Severity
}

var levelTable = []levelRule{
	{levels: []string{"critical", "alert", "emergency"}, severity: domain.SeverityCritical},
	{levels: []string{"high", "error"}, severity: domain.SeverityHigh},
	{levels: []string{"medium", "warning"}, severity: domain.SeverityMedium},
}

// SeverityFromNumeric maps an XML incident severity (a decimal integer
// string) onto the canonical scale. Unparseable input counts as 0;
// out-of-range integers keep their sign.
func SeverityFromNumeric(raw string) domain.Severity {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		n = 0
	}
	return severityForScore(n)
}

func severityForScore(n int) domain.Severity {
	for _, t := range numericLadder {
		if n >= t.min {
			return t.severity
		}
	}
	return domain.SeverityLow
}

// SeverityFromLevel maps a key-value log level onto the canonical scale.
// Unknown levels, including DefaultLevel, map to SeverityLow.
func SeverityFromLevel(raw string) domain.Severity {
	level := fold(strings.TrimSpace(raw))
	for _, r := range levelTable {
		if slices.Contains(r.levels, level) {
			return r.severity
		}
	}
	return domain.SeverityLow
}
