package workflows

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func mustParse(t *testing.T, content string) *Document {
	t.Helper()
	doc, err := ParseFrontmatter([]byte(content))
	if err != nil {
		t.Fatalf("ParseFrontmatter() error: %v", err)
	}
	return doc
}

func TestBuildDescriptorDescriptionFallback(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"objective wins", "---\nobjective: Ship it\ntitle: Release\n---\n", "Ship it"},
		{"title fallback", "---\ntitle: Release\n---\n", "Release"},
		{"empty objective falls through", "---\nobjective: \"\"\ntitle: Release\n---\n", "Release"},
		{"name fallback", "# no metadata\n", "release"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := BuildDescriptor(Ref{Name: "release"}, mustParse(t, tt.content))
			if err != nil {
				t.Fatalf("BuildDescriptor() error: %v", err)
			}
			if d.Description != tt.want {
				t.Errorf("Description = %q, want %q", d.Description, tt.want)
			}
		})
	}
}

func TestBuildDescriptorInputs(t *testing.T) {
	doc := mustParse(t, `---
objective: Deploy a service
inputs:
  required:
    - name: service
      description: Service to deploy
    - name: env
      type: string
  optional:
    - name: replicas
      type: integer
      default: 2
    - name: note
      default: null
    - name: dry_run
      type: boolean
---
body`)

	d, err := BuildDescriptor(Ref{Name: "deploy"}, doc)
	if err != nil {
		t.Fatalf("BuildDescriptor() error: %v", err)
	}

	if want := []string{"service", "env"}; !reflect.DeepEqual(d.InputSchema.Required, want) {
		t.Errorf("Required = %v, want %v", d.InputSchema.Required, want)
	}
	if got := d.InputSchema.Properties["service"]; got.Type != "string" || got.Description != "Service to deploy" || got.HasDefault {
		t.Errorf("service property = %+v", got)
	}
	if got := d.InputSchema.Properties["replicas"]; got.Type != "integer" || !got.HasDefault || got.Default != 2 {
		t.Errorf("replicas property = %+v", got)
	}
	if got := d.InputSchema.Properties["dry_run"]; got.HasDefault {
		t.Errorf("dry_run should not carry a default: %+v", got)
	}

	data, err := json.Marshal(d.InputSchema)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	props := decoded["properties"].(map[string]any)
	note := props["note"].(map[string]any)
	if v, ok := note["default"]; !ok || v != nil {
		t.Errorf("note default = %v, %v; want explicit null", v, ok)
	}
	if _, ok := props["dry_run"].(map[string]any)["default"]; ok {
		t.Errorf("dry_run should not marshal a default")
	}
}

func TestBuildDescriptorNoInputs(t *testing.T) {
	d, err := BuildDescriptor(Ref{Name: "plain"}, mustParse(t, "---\ntitle: Plain\n---\n"))
	if err != nil {
		t.Fatalf("BuildDescriptor() error: %v", err)
	}
	data, err := json.Marshal(d.InputSchema)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if string(data) != `{"type":"object","properties":{},"required":[]}` {
		t.Errorf("schema = %s", data)
	}
}

func TestBuildDescriptorMalformed(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantField string
	}{
		{"inputs not a mapping", "---\ninputs: [a, b]\n---\n", "inputs"},
		{"required not a list", "---\ninputs:\n  required: service\n---\n", "inputs.required"},
		{"entry not a mapping", "---\ninputs:\n  required:\n    - service\n---\n", "inputs.required.0"},
		{"entry without name", "---\ninputs:\n  optional:\n    - type: string\n---\n", "inputs.optional.0.name"},
		{"non-string type", "---\ninputs:\n  required:\n    - name: a\n      type: [x]\n---\n", "inputs.required.0.type"},
		{"non-string objective", "---\nobjective: [1, 2]\n---\n", "objective"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildDescriptor(Ref{Name: "bad"}, mustParse(t, tt.content))
			if !errors.Is(err, ErrMalformedMetadata) {
				t.Fatalf("BuildDescriptor() error = %v, want ErrMalformedMetadata", err)
			}
			var me *MetadataError
			if !errors.As(err, &me) || me.Field != tt.wantField {
				t.Errorf("field = %v, want %q", err, tt.wantField)
			}
		})
	}
}
