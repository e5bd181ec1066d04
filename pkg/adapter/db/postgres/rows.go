package postgres

import (
	"database/sql"
	"fmt"
)

// rowsAdapter adapts *sql.Rows to the repo.Rows interface. A nil Rows
// (as returned along with a query error) is treated as an empty and
// closed result set.
type rowsAdapter struct {
	*sql.Rows
}

func (ra rowsAdapter) Close() {
	if ra.Rows != nil {
		// returned error may be checked by calling the Err() method
		_ = ra.Rows.Close()
	}
}

func (ra rowsAdapter) Next() bool {
	return ra.Rows != nil && ra.Rows.Next()
}

func (ra rowsAdapter) Err() error {
	if ra.Rows == nil {
		return nil
	}
	return Translate(ra.Rows.Err())
}

func (ra rowsAdapter) Values() ([]any, error) {
	names, err := ra.Columns()
	if err != nil {
		return nil, fmt.Errorf("column-names: %w", err)
	}
	vals := make([]any, len(names))
	ptrs := make([]any, len(names))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err = ra.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return vals, nil
}
