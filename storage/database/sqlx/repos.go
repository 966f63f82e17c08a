// Package sqlxrepos implements the domain repositories over PostgreSQL.
package sqlxrepos

import (
	"database/sql"
	"time"
)

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t.UTC(), Valid: !t.IsZero()}
}
