package forms

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrUnknownForm = errors.New("unknown form")

const (
	TypeText     = "text"
	TypeEmail    = "email"
	TypeTel      = "tel"
	TypeTextarea = "textarea"
	TypeSelect   = "select"
	TypeCheckbox = "checkbox"
)

//go:embed definitions.yaml
var defaultDefinitions []byte

type Field struct {
	ID             string   `yaml:"id" json:"id"`
	Label          string   `yaml:"label" json:"label"`
	Type           string   `yaml:"type" json:"type"`
	Placeholder    string   `yaml:"placeholder,omitempty" json:"placeholder,omitempty"`
	Required       bool     `yaml:"required" json:"required"`
	Pattern        string   `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	PatternMessage string   `yaml:"pattern_message,omitempty" json:"patternMessage,omitempty"`
	MinLength      int      `yaml:"min_length,omitempty" json:"minLength,omitempty"`
	MaxLength      int      `yaml:"max_length,omitempty" json:"maxLength,omitempty"`
	Options        []string `yaml:"options,omitempty" json:"options,omitempty"`

	re *regexp.Regexp
}

type Definition struct {
	ID             string  `yaml:"id" json:"id"`
	Title          string  `yaml:"title" json:"title"`
	SubmitLabel    string  `yaml:"submit_label" json:"submitLabel"`
	SuccessMessage string  `yaml:"success_message" json:"successMessage"`
	ErrorMessage   string  `yaml:"error_message" json:"errorMessage"`
	Notify         bool    `yaml:"notify" json:"-"`
	Fields         []Field `yaml:"fields" json:"fields"`
}

const (
	defaultSuccessMessage = "Thank you! Your message has been sent."
	defaultErrorMessage   = "Something went wrong. Please try again."
)

// Field returns the field with the given id.
func (d Definition) Field(id string) (Field, bool) {
	for _, f := range d.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

// EmailField returns the id of the first email field, if any.
func (d Definition) EmailField() string {
	for _, f := range d.Fields {
		if f.Type == TypeEmail {
			return f.ID
		}
	}
	return ""
}

func (d *Definition) prepare() error {
	d.ID = strings.TrimSpace(d.ID)
	if d.ID == "" {
		return errors.New("form without id")
	}
	if d.SuccessMessage == "" {
		d.SuccessMessage = defaultSuccessMessage
	}
	if d.ErrorMessage == "" {
		d.ErrorMessage = defaultErrorMessage
	}
	if d.SubmitLabel == "" {
		d.SubmitLabel = "Send"
	}
	seen := make(map[string]struct{}, len(d.Fields))
	for i := range d.Fields {
		f := &d.Fields[i]
		if f.ID == "" {
			return fmt.Errorf("form %s: field %d without id", d.ID, i)
		}
		if _, ok := seen[f.ID]; ok {
			return fmt.Errorf("form %s: duplicate field %s", d.ID, f.ID)
		}
		seen[f.ID] = struct{}{}
		if f.Type == "" {
			f.Type = TypeText
		}
		if f.Label == "" {
			f.Label = f.ID
		}
		if f.Pattern != "" {
			re, err := regexp.Compile(f.Pattern)
			if err != nil {
				return fmt.Errorf("form %s: field %s: %w", d.ID, f.ID, err)
			}
			f.re = re
		}
	}
	return nil
}

// Registry holds the form definitions by id.
type Registry struct {
	defs map[string]Definition
}

type definitionsFile struct {
	Forms []Definition `yaml:"forms"`
}

// ParseDefinitions decodes a YAML document with a top-level "forms" list.
func ParseDefinitions(data []byte) ([]Definition, error) {
	var file definitionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse form definitions: %w", err)
	}
	for i := range file.Forms {
		if err := file.Forms[i].prepare(); err != nil {
			return nil, err
		}
	}
	return file.Forms, nil
}

func NewRegistry(defs ...Definition) *Registry {
	r := &Registry{defs: make(map[string]Definition, len(defs))}
	for _, d := range defs {
		r.defs[d.ID] = d
	}
	return r
}

// LoadRegistry reads the embedded definitions, then lets the file at path (if any) add or
// replace forms by id.
func LoadRegistry(path string) (*Registry, error) {
	defs, err := ParseDefinitions(defaultDefinitions)
	if err != nil {
		return nil, err
	}
	r := NewRegistry(defs...)

	if path = strings.TrimSpace(path); path == "" {
		return r, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read form definitions: %w", err)
	}
	overrides, err := ParseDefinitions(data)
	if err != nil {
		return nil, err
	}
	for _, d := range overrides {
		r.defs[d.ID] = d
	}
	return r, nil
}

func (r *Registry) Get(id string) (Definition, error) {
	d, ok := r.defs[strings.TrimSpace(id)]
	if !ok {
		return Definition{}, ErrUnknownForm
	}
	return d, nil
}

func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.defs))
	for id := range r.defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
