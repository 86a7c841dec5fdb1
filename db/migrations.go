// Package db ships the SQL schema alongside the binary.
package db

import "embed"

// Migrations holds the forward migrations, applied in lexical order.
//
//go:embed migrations/*.up.sql
var Migrations embed.FS
