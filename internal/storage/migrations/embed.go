package migrations

import "embed"

// PostgresFS embeds the measurement-run and metric-result schema migrations.
//
//go:embed postgres/*.sql
var PostgresFS embed.FS

// ClickhouseFS embeds the TE sample timeseries schema migrations.
//
//go:embed clickhouse/*.sql
var ClickhouseFS embed.FS
