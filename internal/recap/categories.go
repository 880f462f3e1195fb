package recap

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// DefaultCategories is used when neither the period nor history names any
// participant category.
var DefaultCategories = []string{"Adult", "Child", "Infant"}

var ageToken = regexp.MustCompile(`\d+`)

// ResolveCategories returns the sorted union of the categories present in
// the slots and the historical names, and backfills every slot with a
// zero entry for each of them.
func ResolveCategories(slots []*SlotSummary, historical []string) []string {
	set := map[string]struct{}{}
	for _, s := range slots {
		for name := range s.Participants {
			set[name] = struct{}{}
		}
	}
	for _, name := range historical {
		if name = strings.TrimSpace(name); name != "" {
			set[name] = struct{}{}
		}
	}

	var names []string
	if len(set) == 0 {
		names = append(names, DefaultCategories...)
	} else {
		names = make([]string, 0, len(set))
		for name := range set {
			names = append(names, name)
		}
	}
	SortCategories(names)

	for _, s := range slots {
		for _, name := range names {
			if _, ok := s.Participants[name]; !ok {
				s.Participants[name] = 0
			}
		}
	}
	return names
}

// SortCategories orders names adult first, then by the first number in the
// name descending (oldest age band first), then alphabetically. Names
// without a number follow those with one.
func SortCategories(names []string) {
	sort.SliceStable(names, func(i, j int) bool { return categoryLess(names[i], names[j]) })
}

func categoryLess(a, b string) bool {
	adultA, adultB := isAdult(a), isAdult(b)
	if adultA != adultB {
		return adultA
	}
	if !adultA {
		ageA, okA := firstAge(a)
		ageB, okB := firstAge(b)
		if okA != okB {
			return okA
		}
		if okA && ageA != ageB {
			return ageA > ageB
		}
	}
	if la, lb := strings.ToLower(a), strings.ToLower(b); la != lb {
		return la < lb
	}
	return a < b
}

func isAdult(name string) bool {
	return strings.Contains(strings.ToLower(name), "adult")
}

func firstAge(name string) (int, bool) {
	tok := ageToken.FindString(name)
	if tok == "" {
		return 0, false
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, false
	}
	return n, true
}
