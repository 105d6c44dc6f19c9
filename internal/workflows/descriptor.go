package workflows

import "encoding/json"

// Property is one entry of a tool input schema.
type Property struct {
	Type        string
	Description string
	Default     any
	HasDefault  bool
}

// MarshalJSON emits "default" only for properties that declared one, keeping
// an explicit null default.
func (p Property) MarshalJSON() ([]byte, error) {
	m := map[string]any{
		"type":        p.Type,
		"description": p.Description,
	}
	if p.HasDefault {
		m["default"] = p.Default
	}
	return json.Marshal(m)
}

// InputSchema is the JSON-Schema-shaped object advertised for a tool.
type InputSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required"`
}

// Descriptor is the callable-tool view of a workflow.
type Descriptor struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"input_schema"`
}

// Description picks objective, then title, then the workflow name.
func (d *Document) Description(name string) (string, error) {
	for _, key := range []string{"objective", "title"} {
		s, err := d.Str(key)
		if err != nil {
			return "", err
		}
		if s != "" {
			return s, nil
		}
	}
	return name, nil
}

// BuildInputSchema projects declared inputs into a tool input schema.
// Required inputs are listed in declaration order. An optional input that
// repeats a required name overwrites its property but stays required.
func BuildInputSchema(doc *Document) (InputSchema, error) {
	schema := InputSchema{
		Type:       "object",
		Properties: map[string]Property{},
		Required:   []string{},
	}

	required, optional, err := doc.Inputs()
	if err != nil {
		return schema, err
	}

	for _, in := range required {
		schema.Properties[in.Name] = Property{Type: in.Type, Description: in.Description}
		schema.Required = append(schema.Required, in.Name)
	}
	for _, in := range optional {
		schema.Properties[in.Name] = Property{
			Type:        in.Type,
			Description: in.Description,
			Default:     in.Default,
			HasDefault:  in.HasDefault,
		}
	}
	return schema, nil
}

// BuildDescriptor projects a parsed workflow into its tool descriptor.
func BuildDescriptor(ref Ref, doc *Document) (Descriptor, error) {
	desc, err := doc.Description(ref.Name)
	if err != nil {
		return Descriptor{}, err
	}
	schema, err := BuildInputSchema(doc)
	if err != nil {
		return Descriptor{}, err
	}
	return Descriptor{Name: ref.Name, Description: desc, InputSchema: schema}, nil
}
