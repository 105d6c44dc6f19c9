package db

import (
	"context"
)

const invocationColumns = `id, workflow, arguments_json, status, error_message, source, started_at, duration_ms`

const createInvocation = `INSERT INTO invocations (
    id, workflow, arguments_json, status, error_message, source, started_at, duration_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

type CreateInvocationParams = Invocation

func (q *Queries) CreateInvocation(ctx context.Context, arg CreateInvocationParams) error {
	_, err := q.db.ExecContext(ctx, createInvocation,
		arg.ID,
		arg.Workflow,
		arg.ArgumentsJson,
		arg.Status,
		arg.ErrorMessage,
		arg.Source,
		arg.StartedAt,
		arg.DurationMs,
	)
	return err
}

const getInvocation = `SELECT ` + invocationColumns + ` FROM invocations WHERE id = ?`

func (q *Queries) GetInvocation(ctx context.Context, id string) (Invocation, error) {
	row := q.db.QueryRowContext(ctx, getInvocation, id)
	var i Invocation
	err := scanInvocation(row, &i)
	return i, err
}

const getInvocationsByPrefix = `SELECT ` + invocationColumns + ` FROM invocations WHERE id LIKE ? || '%' ORDER BY started_at DESC LIMIT 2`

func (q *Queries) GetInvocationsByPrefix(ctx context.Context, prefix string) ([]Invocation, error) {
	return q.list(ctx, getInvocationsByPrefix, prefix)
}

const listInvocations = `SELECT ` + invocationColumns + ` FROM invocations ORDER BY started_at DESC, id DESC LIMIT ?`

func (q *Queries) ListInvocations(ctx context.Context, limit int64) ([]Invocation, error) {
	return q.list(ctx, listInvocations, limit)
}

const listInvocationsByWorkflow = `SELECT ` + invocationColumns + ` FROM invocations WHERE workflow = ? ORDER BY started_at DESC, id DESC LIMIT ?`

type ListInvocationsByWorkflowParams struct {
	Workflow string
	Limit    int64
}

func (q *Queries) ListInvocationsByWorkflow(ctx context.Context, arg ListInvocationsByWorkflowParams) ([]Invocation, error) {
	return q.list(ctx, listInvocationsByWorkflow, arg.Workflow, arg.Limit)
}

const pruneInvocations = `DELETE FROM invocations WHERE started_at < ?`

func (q *Queries) PruneInvocations(ctx context.Context, before int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, pruneInvocations, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanInvocation(s scanner, i *Invocation) error {
	return s.Scan(
		&i.ID,
		&i.Workflow,
		&i.ArgumentsJson,
		&i.Status,
		&i.ErrorMessage,
		&i.Source,
		&i.StartedAt,
		&i.DurationMs,
	)
}

func (q *Queries) list(ctx context.Context, query string, args ...interface{}) ([]Invocation, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Invocation
	for rows.Next() {
		var i Invocation
		if err := scanInvocation(rows, &i); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
