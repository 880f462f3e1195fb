package recap

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/iliyamo/tour-ops-dashboard/internal/model"
)

// Policy decides which participant lines of an activity count towards the
// recap. A non-empty AllowedPricingCategoryIDs takes precedence over
// ExcludedCategories.
type Policy struct {
	ExcludedCategories        []string `json:"excluded_categories"`
	AllowedPricingCategoryIDs []int64  `json:"allowed_pricing_category_ids"`
}

// Counts reports whether the participant line contributes to category and
// slot totals.
func (p Policy) Counts(line model.PricingCategoryBooking) bool {
	if len(p.AllowedPricingCategoryIDs) > 0 {
		return slices.Contains(p.AllowedPricingCategoryIDs, line.PricingCategoryID)
	}
	title := strings.TrimSpace(line.BookedTitle)
	for _, ex := range p.ExcludedCategories {
		if strings.EqualFold(strings.TrimSpace(ex), title) {
			return false
		}
	}
	return true
}

// Policies maps activity id to its participant policy.
type Policies map[string]Policy

// For returns the policy of an activity; activities without one count
// every line.
func (p Policies) For(activityID string) Policy {
	return p[activityID]
}

// LoadPolicies reads policies from a JSON file shaped as
// {"<activity id>": {"excluded_categories": [...], "allowed_pricing_category_ids": [...]}}.
// An empty path or a missing file yields no policies.
func LoadPolicies(path string) (Policies, error) {
	if path == "" {
		return Policies{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Policies{}, nil
		}
		return nil, fmt.Errorf("read policy file: %w", err)
	}
	var p Policies
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse policy file %s: %w", path, err)
	}
	if p == nil {
		p = Policies{}
	}
	return p, nil
}
