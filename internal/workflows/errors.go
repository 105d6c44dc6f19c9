package workflows

import (
	"errors"
	"fmt"
)

var (
	// ErrParse is matched by errors.Is for any frontmatter parse failure.
	ErrParse = errors.New("could not parse workflow")
	// ErrMalformedMetadata is matched by errors.Is for metadata that parses
	// but does not have the expected shape.
	ErrMalformedMetadata = errors.New("malformed workflow metadata")
)

// ParseError reports a frontmatter block that is neither YAML nor JSON,
// or content that is not valid UTF-8.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// MetadataError reports a metadata field with an unexpected shape.
type MetadataError struct {
	Field  string
	Reason string
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("metadata field %s: %s", e.Field, e.Reason)
}

func (e *MetadataError) Is(target error) bool { return target == ErrMalformedMetadata }
