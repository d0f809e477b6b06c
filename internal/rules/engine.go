// Package rules provides the taxonomy policies applied to extracted incident fields.
package rules

import (
	"strings"

	"github.com/soc-intake/internal/domain"
	"go.uber.org/zap"
)

// CategoryClassifier resolves an incident category from the supplied
// category or, failing that, from the rule name.
type CategoryClassifier struct {
	rules  []*Rule
	logger *zap.Logger
}

// NewCategoryClassifier creates a classifier over an ordered rule table.
func NewCategoryClassifier(rules []*Rule, logger *zap.Logger) *CategoryClassifier {
	return &CategoryClassifier{
		rules:  rules,
		logger: logger.Named("category_classifier"),
	}
}

// Classify returns supplied unchanged unless it is empty or N/A.
// Otherwise the rule name is matched against the table and the first hit
// wins; no rule name or no hit yields DefaultCategory.
func (c *CategoryClassifier) Classify(supplied, ruleName string) string {
	if supplied != "" && supplied != domain.NotAvailable {
		return supplied
	}

	if strings.TrimSpace(ruleName) == "" {
		return DefaultCategory
	}

	folded := fold(ruleName)
	for _, rule := range c.rules {
		if kw, ok := rule.Match(folded); ok {
			c.logger.Debug("category rule matched",
				zap.String("rule_id", rule.ID),
				zap.String("keyword", kw),
			)
			return rule.Category
		}
	}

	return DefaultCategory
}
