package grid

import (
	"fmt"
	"strconv"
	"strings"
)

// Layouts lists the o-grid layout prefixes, smallest first.
var Layouts = []string{"S", "M", "L", "XL"}

var keywords = map[string]bool{
	"hide":           true,
	"center":         true,
	"uncenter":       true,
	"full-width":     true,
	"one-half":       true,
	"one-third":      true,
	"two-thirds":     true,
	"one-quarter":    true,
	"three-quarters": true,
}

// ColspanRule is one token of a colspan spec. Layout is empty for rules
// that apply at every layout.
type ColspanRule struct {
	Layout string
	// Columns is 1 to 12 for numeric rules, zero for keyword rules.
	Columns int
	Keyword string
}

func (r ColspanRule) String() string {
	value := r.Keyword
	if r.Columns > 0 {
		value = strconv.Itoa(r.Columns)
	}
	return r.Layout + value
}

// ParseColspan parses a space-separated colspan spec such as
// "12 S11 Scenter M9 L8 XL7".
func ParseColspan(spec string) ([]ColspanRule, error) {
	fields := strings.Fields(spec)
	if len(fields) == 0 {
		return nil, fmt.Errorf("grid: empty colspan")
	}
	rules := make([]ColspanRule, 0, len(fields))
	for _, field := range fields {
		rule, err := parseRule(field)
		if err != nil {
			return nil, fmt.Errorf("grid: colspan %q: %w", spec, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func parseRule(token string) (ColspanRule, error) {
	var rule ColspanRule
	// XL before L so the longer prefix wins.
	for _, layout := range []string{"XL", "S", "M", "L"} {
		if rest, ok := strings.CutPrefix(token, layout); ok && rest != "" {
			rule.Layout = layout
			token = rest
			break
		}
	}
	if keywords[token] {
		rule.Keyword = token
		return rule, nil
	}
	n, err := strconv.Atoi(token)
	if err != nil || n < 1 || n > 12 {
		return ColspanRule{}, fmt.Errorf("invalid token %q", rule.Layout+token)
	}
	rule.Columns = n
	return rule, nil
}
