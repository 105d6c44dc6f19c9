// Package workflows parses workflow documents and projects their metadata
// into tool descriptors.
package workflows

import (
	"fmt"
	"strings"
)

// Suffix marks a file as a workflow document.
const Suffix = ".ds.md"

// Ref identifies a discovered workflow in the content store.
type Ref struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	DownloadURL string `json:"download_url,omitempty"`
}

// NameFromFile returns the workflow name for a file name. The second result
// is false when the file is not a workflow document.
func NameFromFile(filename string) (string, bool) {
	if !strings.HasSuffix(filename, Suffix) {
		return "", false
	}
	return strings.TrimSuffix(filename, Suffix), true
}

// Document is a parsed workflow file.
type Document struct {
	// Metadata holds the frontmatter mapping. It is empty when the file has
	// no frontmatter block.
	Metadata map[string]any
	// Body is everything after the closing frontmatter delimiter.
	Body string
}

// HasMetadata reports whether the document carried a non-empty frontmatter mapping.
func (d *Document) HasMetadata() bool {
	return len(d.Metadata) > 0
}

// Str returns the string value stored under key. Missing keys yield "".
// A present non-string value is reported as malformed.
func (d *Document) Str(key string) (string, error) {
	v, ok := d.Metadata[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", &MetadataError{Field: key, Reason: fmt.Sprintf("expected string, got %T", v)}
	}
	return s, nil
}

// Title returns the workflow title, or fallback when unset or not a string.
func (d *Document) Title(fallback string) string {
	if s, err := d.Str("title"); err == nil && s != "" {
		return s
	}
	return fallback
}

// InputSpec describes one declared workflow input.
type InputSpec struct {
	Name        string
	Type        string
	Description string
	Default     any
	HasDefault  bool
}

// Inputs returns the required and optional inputs declared under the
// "inputs" metadata key, in declaration order.
func (d *Document) Inputs() (required, optional []InputSpec, err error) {
	raw, ok := d.Metadata["inputs"]
	if !ok || raw == nil {
		return nil, nil, nil
	}
	inputs, ok := raw.(map[string]any)
	if !ok {
		return nil, nil, &MetadataError{Field: "inputs", Reason: fmt.Sprintf("expected mapping, got %T", raw)}
	}

	required, err = inputList(inputs, "required", false)
	if err != nil {
		return nil, nil, err
	}
	optional, err = inputList(inputs, "optional", true)
	if err != nil {
		return nil, nil, err
	}
	return required, optional, nil
}

func inputList(inputs map[string]any, key string, withDefault bool) ([]InputSpec, error) {
	field := "inputs." + key
	raw, ok := inputs[key]
	if !ok || raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, &MetadataError{Field: field, Reason: fmt.Sprintf("expected list, got %T", raw)}
	}

	specs := make([]InputSpec, 0, len(items))
	for i, item := range items {
		at := fmt.Sprintf("%s.%d", field, i)
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, &MetadataError{Field: at, Reason: fmt.Sprintf("expected mapping, got %T", item)}
		}

		name, ok := entry["name"].(string)
		if !ok || name == "" {
			return nil, &MetadataError{Field: at + ".name", Reason: "missing or empty input name"}
		}

		spec := InputSpec{Name: name, Type: "string"}
		if v, present := entry["type"]; present && v != nil {
			s, ok := v.(string)
			if !ok {
				return nil, &MetadataError{Field: at + ".type", Reason: fmt.Sprintf("expected string, got %T", v)}
			}
			spec.Type = s
		}
		if v, present := entry["description"]; present && v != nil {
			s, ok := v.(string)
			if !ok {
				return nil, &MetadataError{Field: at + ".description", Reason: fmt.Sprintf("expected string, got %T", v)}
			}
			spec.Description = s
		}
		if withDefault {
			spec.Default, spec.HasDefault = entry["default"]
		}
		specs = append(specs, spec)
	}
	return specs, nil
}
