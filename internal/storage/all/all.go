// Package all registers every built-in sink kind.
package all

import (
	_ "moviemart/internal/storage/bigquery"
	_ "moviemart/internal/storage/jsonl"
	_ "moviemart/internal/storage/mssql"
	_ "moviemart/internal/storage/mysql"
	_ "moviemart/internal/storage/postgres"
	_ "moviemart/internal/storage/sqlite"
	_ "moviemart/internal/storage/xlsx"
)
