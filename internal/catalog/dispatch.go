package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is matched by errors.Is when no workflow has the requested name.
var ErrNotFound = errors.New("workflow not found")

// NotFoundError names the workflow that could not be resolved.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string { return "Workflow not found: " + e.Name }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Argument is one caller-supplied invocation argument.
type Argument struct {
	Name  string
	Value any
}

// Arguments keeps the order in which the caller supplied them.
type Arguments []Argument

// ArgumentsFromMap converts a map into Arguments sorted by name.
func ArgumentsFromMap(m map[string]any) Arguments {
	args := make(Arguments, 0, len(m))
	for k, v := range m {
		args = append(args, Argument{Name: k, Value: v})
	}
	sort.Slice(args, func(i, j int) bool { return args[i].Name < args[j].Name })
	return args
}

// MarshalJSON encodes the arguments as a JSON object in their given order.
func (a Arguments) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, arg := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(arg.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(arg.Value)
		if err != nil {
			return nil, fmt.Errorf("argument %s: %w", arg.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Invoke resolves name and returns the workflow body, prefixed with a
// "Provided Arguments" section when args is non-empty.
func (c *Catalog) Invoke(ctx context.Context, name string, args Arguments) (string, error) {
	ref, err := c.Lookup(ctx, name)
	if err != nil {
		return "", err
	}
	doc, err := c.Load(ctx, ref)
	if err != nil {
		return "", err
	}
	return RenderInvocation(doc.Body, args), nil
}

// RenderInvocation builds the invocation text for body and args.
func RenderInvocation(body string, args Arguments) string {
	if len(args) == 0 {
		return body
	}
	var b strings.Builder
	b.WriteString("## Provided Arguments\n\n")
	for _, arg := range args {
		fmt.Fprintf(&b, "- **%s**: %s\n", arg.Name, FormatValue(arg.Value))
	}
	b.WriteString("\n---\n\n")
	b.WriteString(body)
	return b.String()
}

// FormatValue renders strings verbatim and everything else as compact JSON.
func FormatValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
