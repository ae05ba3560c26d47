package web

import (
	"net/url"
	"strings"

	"github.com/Mrwire/geniusad-sub002/internal/casestudies"
)

// filterButton shows Label and selects Value, which is the subsidiary slug for the
// subsidiary dimension and the tag itself otherwise.
type filterButton struct {
	Label  string
	Value  string
	URL    string
	Active bool
}

type filterGroup struct {
	Dimension casestudies.Dimension
	Title     string
	Buttons   []filterButton
}

type hiddenInput struct {
	Name  string
	Value string
}

type workData struct {
	Result   casestudies.ListResult
	Query    string
	Groups   []filterGroup
	Hidden   []hiddenInput
	ResetURL string
}

// workURL encodes a selection and query as a /work link.
func workURL(sel casestudies.Selection, query string) string {
	v := url.Values{}
	for _, d := range casestudies.Dimensions {
		if value := sel.Get(d); value != "" {
			v.Set(string(d), value)
		}
	}
	if q := strings.TrimSpace(query); q != "" {
		v.Set("q", q)
	}
	if len(v) == 0 {
		return "/work"
	}
	return "/work?" + v.Encode()
}

// buildWorkData applies the selection and query to items and lays out the filter buttons.
// Clicking a button selects its value; clicking the active value keeps it selected.
func buildWorkData(locale string, items []casestudies.CaseStudy, facets casestudies.Facets, sel casestudies.Selection, query string) workData {
	data := workData{
		Result:   casestudies.BuildListResult(items, sel, query),
		Query:    strings.TrimSpace(query),
		ResetURL: workURL(sel.Reset(), query),
	}

	values := map[casestudies.Dimension][]filterButton{}
	for _, tag := range facets.Industries {
		values[casestudies.DimensionIndustry] = append(values[casestudies.DimensionIndustry], filterButton{Label: tag, Value: tag})
	}
	for _, tag := range facets.Services {
		values[casestudies.DimensionService] = append(values[casestudies.DimensionService], filterButton{Label: tag, Value: tag})
	}
	for _, ref := range facets.Subsidiaries {
		values[casestudies.DimensionSubsidiary] = append(values[casestudies.DimensionSubsidiary], filterButton{Label: ref.Name, Value: ref.Slug})
	}

	for _, d := range casestudies.Dimensions {
		buttons := values[d]
		if len(buttons) == 0 {
			continue
		}
		for i := range buttons {
			value := buttons[i].Value
			buttons[i].Active = sel.Get(d) == value
			buttons[i].URL = workURL(sel.With(d, value), query)
		}
		data.Groups = append(data.Groups, filterGroup{
			Dimension: d,
			Title:     translate(locale, string(d)),
			Buttons:   buttons,
		})
	}

	for _, d := range casestudies.Dimensions {
		if value := sel.Get(d); value != "" {
			data.Hidden = append(data.Hidden, hiddenInput{Name: string(d), Value: value})
		}
	}
	return data
}
