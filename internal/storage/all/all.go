// Package all registers every storage backend. Import it for side effects
// from binaries that select a backend at runtime:
//
//	import _ "salesdw/internal/storage/all"
package all

import (
	_ "salesdw/internal/storage/mssql"
	_ "salesdw/internal/storage/postgres"
	_ "salesdw/internal/storage/sqlite"
)
