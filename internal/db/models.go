package db

import "database/sql"

type Invocation struct {
	ID            string
	Workflow      string
	ArgumentsJson string
	Status        string
	ErrorMessage  sql.NullString
	Source        string
	StartedAt     int64
	DurationMs    int64
}
