package casestudies

import "strings"

func normalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// matchesNormalizedQuery reports whether q is a substring of the title, category, client
// name, any tag or the subsidiary name. A blank query matches everything.
func matchesNormalizedQuery(item CaseStudy, q string) bool {
	if q == "" {
		return true
	}
	if contains(item.Title, q) || contains(item.Category, q) || contains(item.ClientName, q) {
		return true
	}
	for _, tag := range item.Industry {
		if contains(tag, q) {
			return true
		}
	}
	for _, tag := range item.Services {
		if contains(tag, q) {
			return true
		}
	}
	if item.Subsidiary != nil && contains(item.Subsidiary.Name, q) {
		return true
	}
	return false
}

func contains(field, q string) bool {
	return field != "" && strings.Contains(strings.ToLower(field), q)
}
