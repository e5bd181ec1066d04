package repo

import "context"

// Queryer runs raw SQL statements. It is embedded by Conn and Tx, so
// schema management and tests can run statements which do not belong
// to any repository.
type Queryer interface {
	Exec(ctx context.Context, sql string, args ...any) (count int64, err error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
}

type Rows interface {
	Close()
	Err() error
	Next() bool
	Scan(dest ...any) error
	Values() ([]any, error)
}
