package casestudies

import (
	"sort"
	"strings"
)

type Dimension string

const (
	DimensionIndustry   Dimension = "industry"
	DimensionService    Dimension = "service"
	DimensionSubsidiary Dimension = "subsidiary"
)

var Dimensions = []Dimension{DimensionIndustry, DimensionService, DimensionSubsidiary}

func ParseDimension(raw string) (Dimension, bool) {
	switch Dimension(strings.ToLower(strings.TrimSpace(raw))) {
	case DimensionIndustry:
		return DimensionIndustry, true
	case DimensionService, "services":
		return DimensionService, true
	case DimensionSubsidiary:
		return DimensionSubsidiary, true
	}
	return "", false
}

// Selection holds at most one active value per dimension. The zero value has no active filter.
type Selection struct {
	Industry   string `json:"industry,omitempty"`
	Service    string `json:"service,omitempty"`
	Subsidiary string `json:"subsidiary,omitempty"`
}

func (s Selection) Get(d Dimension) string {
	switch d {
	case DimensionIndustry:
		return s.Industry
	case DimensionService:
		return s.Service
	case DimensionSubsidiary:
		return s.Subsidiary
	}
	return ""
}

// With selects value for d, replacing any previous value. Selecting the value that is
// already active keeps it active; a blank value clears the dimension.
func (s Selection) With(d Dimension, value string) Selection {
	value = strings.TrimSpace(value)
	switch d {
	case DimensionIndustry:
		s.Industry = value
	case DimensionService:
		s.Service = value
	case DimensionSubsidiary:
		s.Subsidiary = value
	}
	return s
}

func (s Selection) Without(d Dimension) Selection {
	return s.With(d, "")
}

// Toggle clears d when value is already selected, otherwise selects it.
func (s Selection) Toggle(d Dimension, value string) Selection {
	if s.Get(d) == strings.TrimSpace(value) {
		return s.Without(d)
	}
	return s.With(d, value)
}

func (s Selection) Reset() Selection {
	return Selection{}
}

func (s Selection) AnyActive() bool {
	return s.Industry != "" || s.Service != "" || s.Subsidiary != ""
}

// Matches reports whether item satisfies every active dimension.
func (s Selection) Matches(item CaseStudy) bool {
	if s.Industry != "" && !containsTag(item.Industry, s.Industry) {
		return false
	}
	if s.Service != "" && !containsTag(item.Services, s.Service) {
		return false
	}
	if s.Subsidiary != "" && !matchesSubsidiary(item.Subsidiary, s.Subsidiary) {
		return false
	}
	return true
}

func containsTag(tags []string, value string) bool {
	for _, tag := range tags {
		if strings.TrimSpace(tag) == value {
			return true
		}
	}
	return false
}

func matchesSubsidiary(ref *SubsidiaryRef, value string) bool {
	if ref == nil {
		return false
	}
	return ref.Slug == value || (ref.ID != "" && ref.ID == value) || (ref.Name != "" && ref.Name == value)
}

type Result struct {
	Visible     []bool
	AnyActive   bool
	QueryActive bool
	HasVisible  bool
	// ShowEmpty is true only when a filter dimension is active and nothing is visible.
	ShowEmpty bool
	// NoSearchResults is true when a search query is active and nothing is visible.
	NoSearchResults bool
}

func (r Result) VisibleCount() int {
	n := 0
	for _, v := range r.Visible {
		if v {
			n++
		}
	}
	return n
}

func Apply(items []CaseStudy, sel Selection) Result {
	return ApplyWithQuery(items, sel, "")
}

// ApplyWithQuery combines the dimension filter with the free-text search: a record is
// visible when it matches the selection and the query.
func ApplyWithQuery(items []CaseStudy, sel Selection, query string) Result {
	q := normalizeQuery(query)
	res := Result{
		Visible:     make([]bool, len(items)),
		AnyActive:   sel.AnyActive(),
		QueryActive: q != "",
	}
	for i, item := range items {
		if sel.Matches(item) && matchesNormalizedQuery(item, q) {
			res.Visible[i] = true
			res.HasVisible = true
		}
	}
	res.ShowEmpty = res.AnyActive && !res.HasVisible
	res.NoSearchResults = res.QueryActive && !res.HasVisible
	return res
}

func (r Result) Select(items []CaseStudy) []CaseStudy {
	out := make([]CaseStudy, 0, len(items))
	for i, item := range items {
		if i < len(r.Visible) && r.Visible[i] {
			out = append(out, item)
		}
	}
	return out
}

type Facets struct {
	Industries   []string        `json:"industries"`
	Services     []string        `json:"services"`
	Subsidiaries []SubsidiaryRef `json:"subsidiaries"`
}

// BuildFacets lists the distinct filter values present in items, sorted for display.
func BuildFacets(items []CaseStudy) Facets {
	industries := map[string]struct{}{}
	services := map[string]struct{}{}
	subs := map[string]SubsidiaryRef{}
	for _, item := range items {
		for _, tag := range item.Industry {
			if tag = strings.TrimSpace(tag); tag != "" {
				industries[tag] = struct{}{}
			}
		}
		for _, tag := range item.Services {
			if tag = strings.TrimSpace(tag); tag != "" {
				services[tag] = struct{}{}
			}
		}
		if item.Subsidiary != nil && item.Subsidiary.Slug != "" {
			subs[item.Subsidiary.Slug] = *item.Subsidiary
		}
	}

	f := Facets{
		Industries:   sortedKeys(industries),
		Services:     sortedKeys(services),
		Subsidiaries: make([]SubsidiaryRef, 0, len(subs)),
	}
	for _, ref := range subs {
		f.Subsidiaries = append(f.Subsidiaries, ref)
	}
	sort.Slice(f.Subsidiaries, func(i, j int) bool {
		return f.Subsidiaries[i].Name < f.Subsidiaries[j].Name
	})
	return f
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
