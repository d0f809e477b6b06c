// Package rules provides the taxonomy policies applied to extracted incident
// fields: keyword-based category rules and the severity ladders.
// Every table here is evaluated in order and the first hit wins, so the
// order of entries is part of the behavior.
package rules

import (
	"strings"

	"golang.org/x/text/cases"
)

// DefaultCategory is returned when no rule matches.
const DefaultCategory = "General"

// Rule maps rule-name keywords to a canonical category.
type Rule struct {
	// ID is the unique identifier for this rule.
	ID string

	// Keywords are substring matches against the case-folded rule name,
	// tried in order.
	Keywords []string

	// Category is the canonical category assigned on a match.
	Category string
}

// Match reports the first keyword of r contained in folded, which must
// already be case-folded.
func (r *Rule) Match(folded string) (string, bool) {
	for _, kw := range r.Keywords {
		if strings.Contains(folded, kw) {
			return kw, true
		}
	}
	return "", false
}

// DefaultRules returns the built-in category table.
func DefaultRules() []*Rule {
	return []*Rule{
		{ID: "brute_force", Keywords: []string{"brute force", "bruteforce"}, Category: "Security / Brute-Force"},
		{ID: "authentication", Keywords: []string{"login failed", "failed login"}, Category: "Security / Authentication"},
		{ID: "discovery", Keywords: []string{"port scan", "scan"}, Category: "Security / Discovery"},
		{ID: "malicious_code", Keywords: []string{"malware", "virus", "trojan"}, Category: "Security / Malicious Code"},
		{ID: "exploit", Keywords: []string{"exploit", "vulnerability"}, Category: "Security / Exploit"},
		{ID: "lateral_movement", Keywords: []string{"lateral movement"}, Category: "Security / Lateral Movement"},
		{ID: "policy_violation", Keywords: []string{"policy violation"}, Category: "Policy / Violation"},
		{ID: "web_access", Keywords: []string{"web access"}, Category: "Web / Access"},
		{ID: "denial_of_service", Keywords: []string{"denial of service", "dos"}, Category: "Availability / DoS"},
	}
}

// fold case-folds s for caseless matching. Casers are stateful, so each
// call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}
