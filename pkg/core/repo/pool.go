package repo

import "context"

// ConnHandler is called by Pool.Conn with an acquired connection.
// The connection is released after the handler returns, on all paths.
type ConnHandler func(context.Context, Conn) error

// Pool is the single connections pool which is created at start up
// and injected into the use cases. It hands out connections on demand.
type Pool interface {
	Conn(ctx context.Context, handler ConnHandler) error
}
