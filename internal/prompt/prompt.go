// Package prompt holds the two prompt templates of the pipeline. The set is
// loaded from YAML, validated against an embedded JSON schema and rendered
// with text/template.
package prompt

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultSet []byte

//go:embed schema.json
var schemaJSON string

type Kind string

const (
	KindAnalysis Kind = "analysis"
	KindReport   Kind = "report"
)

// Vars are the values a template may reference.
type Vars struct {
	Symbol   string
	Data     string
	Analysis string
}

// Rendered is a prompt ready to send: an optional system message and the user
// message.
type Rendered struct {
	System string
	User   string
}

type Template struct {
	Kind   Kind
	System string
	Text   string

	compiled *template.Template
}

// Set is an immutable, validated collection of templates.
type Set struct {
	Version   int
	Source    string
	LoadedAt  time.Time
	Templates map[Kind]Template
}

type fileConfig struct {
	Version int `yaml:"version"`
	Prompts map[string]struct {
		System   string `yaml:"system"`
		Template string `yaml:"template"`
	} `yaml:"prompts"`
}

var compiledSchema = jsonschema.MustCompileString("prompts.schema.json", schemaJSON)

// Default returns the embedded prompt set.
func Default() Set {
	set, err := Parse(defaultSet, "embedded")
	if err != nil {
		panic(fmt.Sprintf("embedded prompt set invalid: %v", err))
	}
	return set
}

// Parse decodes and validates a prompt-set document.
func Parse(data []byte, source string) (Set, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Set{}, fmt.Errorf("prompt set %s: %w", source, err)
	}
	doc, err := toJSONValue(raw)
	if err != nil {
		return Set{}, fmt.Errorf("prompt set %s: %w", source, err)
	}
	if err := compiledSchema.Validate(doc); err != nil {
		return Set{}, fmt.Errorf("prompt set %s failed validation: %w", source, err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Set{}, fmt.Errorf("prompt set %s: %w", source, err)
	}
	set := Set{
		Version:   cfg.Version,
		Source:    source,
		LoadedAt:  time.Now(),
		Templates: make(map[Kind]Template, len(cfg.Prompts)),
	}
	if set.Version <= 0 {
		set.Version = 1
	}
	for name, p := range cfg.Prompts {
		kind := Kind(strings.ToLower(strings.TrimSpace(name)))
		compiled, err := template.New(string(kind)).Option("missingkey=error").Parse(p.Template)
		if err != nil {
			return Set{}, fmt.Errorf("prompt set %s: template %s: %w", source, kind, err)
		}
		set.Templates[kind] = Template{
			Kind:     kind,
			System:   strings.TrimSpace(p.System),
			Text:     p.Template,
			compiled: compiled,
		}
	}
	return set, nil
}

// Render executes the template of kind with vars.
func (s Set) Render(kind Kind, vars Vars) (Rendered, error) {
	tpl, ok := s.Templates[kind]
	if !ok || tpl.compiled == nil {
		return Rendered{}, fmt.Errorf("prompt %s not defined in %s", kind, s.Source)
	}
	var buf bytes.Buffer
	if err := tpl.compiled.Execute(&buf, vars); err != nil {
		return Rendered{}, fmt.Errorf("render prompt %s: %w", kind, err)
	}
	return Rendered{System: tpl.System, User: buf.String()}, nil
}

// toJSONValue round-trips a YAML value through encoding/json so the schema
// validator sees the types it expects.
func toJSONValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
