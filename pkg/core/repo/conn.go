package repo

import "context"

// TxHandler is called by Conn.Tx with an ongoing transaction. If it
// returns an error (or panics), the transaction is rolled back and
// otherwise, it is committed.
type TxHandler func(context.Context, Tx) error

// Conn represents one database connection which is borrowed from a
// Pool for the duration of a ConnHandler call.
type Conn interface {
	Queryer
	Tx(ctx context.Context, handler TxHandler) error
	IsConn()
}
