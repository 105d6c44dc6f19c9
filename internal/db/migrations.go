package db

import "embed"

// Migrations holds the goose SQL migrations applied by Connect.
//
//go:embed migrations/*.sql
var Migrations embed.FS
