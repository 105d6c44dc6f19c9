package workflows

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

const byteOrderMark = "\ufeff"

// ParseFrontmatter splits workflow content into its metadata mapping and body.
//
// The first non-blank line must be a delimiter of three or more dashes and a
// matching delimiter must close the block. Content without a closed block has
// empty metadata and the whole text as body. The block is decoded as YAML and,
// failing that, as JSON. A block that decodes to anything other than a
// mapping yields empty metadata.
func ParseFrontmatter(content []byte) (*Document, error) {
	if !utf8.Valid(content) {
		return nil, &ParseError{Err: errors.New("content is not valid UTF-8")}
	}
	text := strings.TrimPrefix(string(content), byteOrderMark)

	rest := text
	for {
		line, next, more := cutLine(rest)
		if !more || strings.TrimSpace(line) != "" {
			break
		}
		rest = next
	}

	open, rest, more := cutLine(rest)
	if !isDelimiter(open) || !more {
		return &Document{Body: text}, nil
	}

	var block strings.Builder
	var body string
	closed := false
	for {
		line, next, more := cutLine(rest)
		if isDelimiter(line) {
			closed = true
			body = next
			break
		}
		block.WriteString(line)
		block.WriteByte('\n')
		if !more {
			break
		}
		rest = next
	}
	if !closed {
		return &Document{Body: text}, nil
	}

	meta, err := decodeMetadata(block.String())
	if err != nil {
		return nil, err
	}
	return &Document{Metadata: meta, Body: body}, nil
}

// cutLine returns the first line of s without its terminator, the remainder
// after the terminator, and whether a terminator was found.
func cutLine(s string) (line, rest string, found bool) {
	i := strings.IndexByte(s, '\n')
	if i < 0 {
		return strings.TrimSuffix(s, "\r"), "", false
	}
	return strings.TrimSuffix(s[:i], "\r"), s[i+1:], true
}

func isDelimiter(line string) bool {
	line = strings.TrimRight(line, " \t\r\f\v")
	return len(line) >= 3 && strings.Trim(line, "-") == ""
}

func decodeMetadata(block string) (map[string]any, error) {
	var raw any
	if yamlErr := yaml.Unmarshal([]byte(block), &raw); yamlErr != nil {
		var fromJSON any
		if err := json.Unmarshal([]byte(block), &fromJSON); err != nil {
			return nil, &ParseError{Err: fmt.Errorf("frontmatter is neither YAML nor JSON: %w", yamlErr)}
		}
		raw = fromJSON
	}

	meta, ok := normalize(raw).(map[string]any)
	if !ok || len(meta) == 0 {
		return nil, nil
	}
	return meta, nil
}

// normalize converts YAML mappings with non-string keys into
// map[string]any so metadata can be walked and marshaled as JSON.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	default:
		return v
	}
}
