// Package history records workflow invocations.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/liberioai/dossier/internal/catalog"
	"github.com/liberioai/dossier/internal/db"
)

// Status is the outcome of an invocation.
type Status string

const (
	StatusOK       Status = "ok"
	StatusNotFound Status = "not_found"
	StatusError    Status = "error"
)

// Source names the surface an invocation came through.
type Source string

const (
	SourceMCP Source = "mcp"
	SourceCLI Source = "cli"
)

// Invocation is one recorded workflow call.
type Invocation struct {
	ID        string          `json:"id"`
	Workflow  string          `json:"workflow"`
	Arguments json.RawMessage `json:"arguments"`
	Status    Status          `json:"status"`
	Error     string          `json:"error,omitempty"`
	Source    Source          `json:"source"`
	StartedAt time.Time       `json:"started_at"`
	Duration  time.Duration   `json:"duration"`
}

// Filter narrows List results.
type Filter struct {
	Workflow string
	Limit    int64
}

// ErrAmbiguousID is returned when an ID prefix matches several invocations.
var ErrAmbiguousID = errors.New("ambiguous invocation ID prefix")

// Service reads and writes invocation history.
type Service struct {
	queries *db.Queries
	now     func() time.Time
}

// NewService creates a history service over queries.
func NewService(queries *db.Queries) *Service {
	return &Service{queries: queries, now: time.Now}
}

// StatusFor classifies an invocation error.
func StatusFor(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, catalog.ErrNotFound):
		return StatusNotFound
	default:
		return StatusError
	}
}

// Record stores a finished invocation and returns its ID.
func (s *Service) Record(ctx context.Context, name string, args catalog.Arguments, source Source, started time.Time, invokeErr error) (string, error) {
	argsJSON, err := json.Marshal(args)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	params := db.CreateInvocationParams{
		ID:            id,
		Workflow:      name,
		ArgumentsJson: string(argsJSON),
		Status:        string(StatusFor(invokeErr)),
		Source:        string(source),
		StartedAt:     started.UnixMilli(),
		DurationMs:    s.now().Sub(started).Milliseconds(),
	}
	if invokeErr != nil {
		params.ErrorMessage = sql.NullString{String: invokeErr.Error(), Valid: true}
	}

	if err := s.queries.CreateInvocation(ctx, params); err != nil {
		return "", err
	}
	return id, nil
}

// Get retrieves an invocation by ID or unique ID prefix.
func (s *Service) Get(ctx context.Context, idOrPrefix string) (*Invocation, error) {
	row, err := s.queries.GetInvocation(ctx, idOrPrefix)
	if err == nil {
		return fromRow(row), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	rows, err := s.queries.GetInvocationsByPrefix(ctx, idOrPrefix)
	if err != nil {
		return nil, err
	}
	switch len(rows) {
	case 0:
		return nil, sql.ErrNoRows
	case 1:
		return fromRow(rows[0]), nil
	default:
		return nil, ErrAmbiguousID
	}
}

// List returns invocations newest first.
func (s *Service) List(ctx context.Context, filter Filter) ([]*Invocation, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var rows []db.Invocation
	var err error
	if filter.Workflow != "" {
		rows, err = s.queries.ListInvocationsByWorkflow(ctx, db.ListInvocationsByWorkflowParams{
			Workflow: filter.Workflow,
			Limit:    limit,
		})
	} else {
		rows, err = s.queries.ListInvocations(ctx, limit)
	}
	if err != nil {
		return nil, err
	}

	out := make([]*Invocation, len(rows))
	for i, r := range rows {
		out[i] = fromRow(r)
	}
	return out, nil
}

// Prune deletes invocations older than maxAge and returns how many were removed.
func (s *Service) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	return s.queries.PruneInvocations(ctx, s.now().Add(-maxAge).UnixMilli())
}

func fromRow(r db.Invocation) *Invocation {
	return &Invocation{
		ID:        r.ID,
		Workflow:  r.Workflow,
		Arguments: json.RawMessage(r.ArgumentsJson),
		Status:    Status(r.Status),
		Error:     r.ErrorMessage.String,
		Source:    Source(r.Source),
		StartedAt: time.UnixMilli(r.StartedAt),
		Duration:  time.Duration(r.DurationMs) * time.Millisecond,
	}
}
