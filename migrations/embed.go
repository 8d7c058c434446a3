package migrations

import "embed"

// FS SQL-миграции схемы, вшитые в бинарник
//
//go:embed *.sql
var FS embed.FS
