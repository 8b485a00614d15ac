// Package migrations はバイナリに埋め込むマイグレーションSQLです (PostgreSQL用)。
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
