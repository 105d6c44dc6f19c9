package workflows

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/kaptinlin/jsonschema"
)

// NoFrontmatter is reported for documents without a metadata mapping.
const NoFrontmatter = "No frontmatter found"

//go:embed schema/workflow-schema.json
var defaultSchema []byte

// DefaultSchema returns the bundled workflow metadata schema.
func DefaultSchema() []byte {
	return append([]byte(nil), defaultSchema...)
}

// Validator checks workflow metadata against a JSON schema.
type Validator struct {
	schema *jsonschema.Schema
	strict bool
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithStrictVersions additionally requires "version" and "schema_version"
// to be semantic versions.
func WithStrictVersions() ValidatorOption {
	return func(v *Validator) { v.strict = true }
}

// NewValidator compiles schemaData into a Validator.
func NewValidator(schemaData []byte, opts ...ValidatorOption) (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile(schemaData)
	if err != nil {
		return nil, fmt.Errorf("compile workflow schema: %w", err)
	}
	v := &Validator{schema: schema}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// LoadValidator reads and compiles the schema at path.
func LoadValidator(path string, opts ...ValidatorOption) (*Validator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workflow schema: %w", err)
	}
	return NewValidator(data, opts...)
}

// ValidateFile validates the workflow at path. An empty result means the
// file is valid.
func (v *Validator) ValidateFile(path string) []string {
	content, err := os.ReadFile(path)
	if err != nil {
		return []string{fmt.Sprintf("Could not parse file: %v", err)}
	}
	return v.Validate(content)
}

// Validate checks raw workflow content. It reports at most one schema
// violation, followed by its location when the violation is not at the root.
func (v *Validator) Validate(content []byte) []string {
	doc, err := ParseFrontmatter(content)
	if err != nil {
		return []string{fmt.Sprintf("Could not parse file: %v", err)}
	}
	return v.ValidateMetadata(doc.Metadata)
}

// ValidateMetadata checks an already parsed metadata mapping.
func (v *Validator) ValidateMetadata(meta map[string]any) []string {
	if len(meta) == 0 {
		return []string{NoFrontmatter}
	}

	instance, err := jsonValue(meta)
	if err != nil {
		return []string{fmt.Sprintf("Could not parse file: %v", err)}
	}

	result := v.schema.Validate(instance)
	if !result.IsValid() {
		var issues []issue
		collectIssues(result, "", &issues)
		if len(issues) == 0 {
			return []string{"Schema validation error: metadata does not match the schema"}
		}
		first := pickIssue(issues)
		errs := []string{"Schema validation error: " + first.describe()}
		if p := first.dotted(); p != "" {
			errs = append(errs, "  Path: "+p)
		}
		return errs
	}

	if v.strict {
		return checkVersions(meta)
	}
	return nil
}

func checkVersions(meta map[string]any) []string {
	var errs []string
	for _, key := range []string{"schema_version", "version"} {
		s, ok := meta[key].(string)
		if !ok {
			continue
		}
		if _, err := semver.StrictNewVersion(s); err != nil {
			errs = append(errs, fmt.Sprintf("Version error: %s %q is not a semantic version", key, s))
		}
	}
	return errs
}

// jsonValue converts YAML-decoded metadata into plain JSON values.
func jsonValue(meta map[string]any) (any, error) {
	data, err := json.Marshal(meta)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Keywords whose failure only summarizes failures of nested schemas.
var aggregateKeywords = map[string]bool{
	"properties":        true,
	"patternProperties": true,
	"items":             true,
	"prefixItems":       true,
	"allOf":             true,
	"anyOf":             true,
	"oneOf":             true,
	"$ref":              true,
	"$dynamicRef":       true,
	"dependentSchemas":  true,
	"if":                true,
	"then":              true,
	"else":              true,
}

type issue struct {
	location string
	keyword  string
	message  string
}

func (i issue) segments() []string {
	if i.location == "" || i.location == "/" {
		return nil
	}
	parts := strings.Split(strings.TrimPrefix(i.location, "/"), "/")
	for n, p := range parts {
		p = strings.ReplaceAll(p, "~1", "/")
		parts[n] = strings.ReplaceAll(p, "~0", "~")
	}
	return parts
}

func (i issue) dotted() string {
	return strings.Join(i.segments(), ".")
}

func (i issue) describe() string {
	segs := i.segments()
	if len(segs) == 0 {
		return i.message
	}
	field := segs[len(segs)-1]
	if _, err := strconv.Atoi(field); err == nil {
		return i.message
	}
	if strings.Contains(i.message, field) {
		return i.message
	}
	return field + ": " + i.message
}

// collectIssues flattens r into issues. Nested results carry locations
// relative to their parent, so base accumulates the absolute pointer.
func collectIssues(r *jsonschema.EvaluationResult, base string, out *[]issue) {
	if r == nil {
		return
	}
	location := base + r.InstanceLocation
	for keyword, e := range r.Errors {
		if e == nil {
			continue
		}
		*out = append(*out, issue{
			location: location,
			keyword:  keyword,
			message:  renderMessage(e.Message, e.Params),
		})
	}
	for _, d := range r.Details {
		collectIssues(d, location, out)
	}
}

func renderMessage(msg string, params map[string]any) string {
	for k, v := range params {
		msg = strings.ReplaceAll(msg, "{"+k+"}", fmt.Sprint(v))
	}
	return msg
}

// pickIssue returns the most specific violation closest to the root,
// breaking ties by location and keyword so the choice is stable.
func pickIssue(issues []issue) issue {
	sort.Slice(issues, func(a, b int) bool {
		ia, ib := issues[a], issues[b]
		if aa, ab := aggregateKeywords[ia.keyword], aggregateKeywords[ib.keyword]; aa != ab {
			return ab
		}
		if da, db := len(ia.segments()), len(ib.segments()); da != db {
			return da < db
		}
		if ia.location != ib.location {
			return ia.location < ib.location
		}
		return ia.keyword < ib.keyword
	})
	return issues[0]
}
