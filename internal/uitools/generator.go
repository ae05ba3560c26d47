// Package uitools exposes the UI-generation tool endpoint backed by a pluggable generator.
package uitools

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Mrwire/geniusad-sub002/internal/utils"
)

var ErrUnknownTool = errors.New("unknown tool")

const (
	ToolComponentBuilder     = "component_builder"
	ToolComponentInspiration = "component_inspiration"
	ToolComponentRefiner     = "component_refiner"
	ToolLogoSearch           = "logo_search"
)

type Request struct {
	ServerName string                 `json:"serverName" validate:"required,max=120"`
	ToolName   string                 `json:"toolName" validate:"required,max=120"`
	Params     map[string]interface{} `json:"params"`
}

type Response struct {
	ServerName string                 `json:"serverName"`
	ToolName   string                 `json:"toolName"`
	Mock       bool                   `json:"mock"`
	Result     map[string]interface{} `json:"result"`
}

type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

type toolFunc func(params map[string]interface{}) map[string]interface{}

// MockGenerator answers every known tool with a canned payload derived from the params.
type MockGenerator struct {
	tools map[string]toolFunc
}

func NewMockGenerator() *MockGenerator {
	return &MockGenerator{tools: map[string]toolFunc{
		ToolComponentBuilder:     mockBuilder,
		ToolComponentInspiration: mockInspiration,
		ToolComponentRefiner:     mockRefiner,
		ToolLogoSearch:           mockLogoSearch,
	}}
}

func (g *MockGenerator) Tools() []string {
	names := make([]string, 0, len(g.tools))
	for name := range g.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (g *MockGenerator) Generate(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	tool, ok := g.tools[strings.TrimSpace(req.ToolName)]
	if !ok {
		return Response{}, ErrUnknownTool
	}
	params := req.Params
	if params == nil {
		params = map[string]interface{}{}
	}
	return Response{
		ServerName: strings.TrimSpace(req.ServerName),
		ToolName:   strings.TrimSpace(req.ToolName),
		Mock:       true,
		Result:     tool(params),
	}, nil
}

func stringParam(params map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v, ok := params[k].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func mockBuilder(params map[string]interface{}) map[string]interface{} {
	query := stringParam(params, "searchQuery", "message", "prompt")
	if query == "" {
		query = "card"
	}
	name := componentName(query)
	return map[string]interface{}{
		"componentName": name,
		"code": fmt.Sprintf("export function %s() {\n  return <div className=\"rounded-xl p-6 shadow\">%s</div>;\n}\n",
			name, query),
		"dependencies": []string{},
	}
}

func mockInspiration(params map[string]interface{}) map[string]interface{} {
	query := stringParam(params, "searchQuery", "message", "prompt")
	if query == "" {
		query = "hero"
	}
	slug := utils.Slugify(query)
	return map[string]interface{}{
		"query": query,
		"inspirations": []map[string]string{
			{"name": componentName(query) + " Minimal", "preview": "/previews/" + slug + "-minimal.png"},
			{"name": componentName(query) + " Bold", "preview": "/previews/" + slug + "-bold.png"},
		},
	}
}

func mockRefiner(params map[string]interface{}) map[string]interface{} {
	code := stringParam(params, "code")
	feedback := stringParam(params, "userMessage", "message", "feedback")
	return map[string]interface{}{
		"refinedCode": code,
		"changes":     []string{"applied: " + feedback},
	}
}

func mockLogoSearch(params map[string]interface{}) map[string]interface{} {
	var queries []string
	switch v := params["queries"].(type) {
	case []interface{}:
		for _, q := range v {
			if s, ok := q.(string); ok && strings.TrimSpace(s) != "" {
				queries = append(queries, strings.TrimSpace(s))
			}
		}
	case string:
		queries = append(queries, strings.TrimSpace(v))
	}
	format := stringParam(params, "format")
	if format == "" {
		format = "SVG"
	}

	logos := make([]map[string]string, 0, len(queries))
	for _, q := range queries {
		slug := utils.Slugify(q)
		if slug == "" {
			continue
		}
		logos = append(logos, map[string]string{
			"name":   q,
			"format": strings.ToUpper(format),
			"url":    "/logos/" + slug + "." + strings.ToLower(format),
		})
	}
	return map[string]interface{}{"logos": logos}
}

// componentName turns "pricing table" into "PricingTable".
func componentName(query string) string {
	var b strings.Builder
	for _, part := range strings.Split(utils.Slugify(query), "-") {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]) + part[1:])
	}
	if b.Len() == 0 {
		return "Component"
	}
	return b.String()
}
