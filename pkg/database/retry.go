package database

import (
	"context"
	"database/sql/driver"
	"math/rand"
	"strings"
	"time"
)

const (
	retryBaseDelay = 50 * time.Millisecond
	retryMaxDelay  = 2 * time.Second
)

// busyMarkers are substrings both mattn/go-sqlite3 and modernc.org/sqlite use
// for SQLITE_BUSY (5) and SQLITE_LOCKED (6).
var busyMarkers = []string{
	"database is locked",
	"database table is locked",
	"SQLITE_BUSY",
	"SQLITE_LOCKED",
	"(5)",
	"(6)",
}

func isBusyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, marker := range busyMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// backoffDelay is exponential in the attempt number with up to 25% jitter,
// capped at retryMaxDelay.
func backoffDelay(attempt int) time.Duration {
	delay := retryBaseDelay * time.Duration(1<<attempt)
	delay += time.Duration(rand.Int63n(int64(delay/4) + 1))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}

// retryWithBackoff runs fn until it succeeds, fails with a non-busy error, or
// has been retried maxRetries times.
func retryWithBackoff(ctx context.Context, maxRetries int, fn func() error) error {
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil || !isBusyError(err) || attempt >= maxRetries {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoffDelay(attempt)):
		}
	}
}

// retryValue is retryWithBackoff for calls that also return a value.
func retryValue[T any](ctx context.Context, maxRetries int, fn func() (T, error)) (T, error) {
	var out T
	err := retryWithBackoff(ctx, maxRetries, func() error {
		var err error
		out, err = fn()
		return err
	})
	return out, err
}

// driverConnector adapts a bare driver.Driver to driver.Connector.
type driverConnector struct {
	driver driver.Driver
	dsn    string
}

func newDriverConnector(drv driver.Driver, dsn string) *driverConnector {
	return &driverConnector{driver: drv, dsn: dsn}
}

func (dc *driverConnector) Connect(_ context.Context) (driver.Conn, error) {
	return dc.driver.Open(dc.dsn)
}

func (dc *driverConnector) Driver() driver.Driver {
	return dc.driver
}

// retryConnector hands out connections whose statements retry on SQLITE_BUSY.
type retryConnector struct {
	connector  driver.Connector
	maxRetries int
}

func newRetryConnector(connector driver.Connector, maxRetries int) *retryConnector {
	return &retryConnector{connector: connector, maxRetries: maxRetries}
}

func (rc *retryConnector) Connect(ctx context.Context) (driver.Conn, error) {
	conn, err := rc.connector.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return &retryConn{conn: conn, maxRetries: rc.maxRetries}, nil
}

func (rc *retryConnector) Driver() driver.Driver {
	return rc.connector.Driver()
}

type retryConn struct {
	conn       driver.Conn
	maxRetries int
}

func (c *retryConn) Prepare(query string) (driver.Stmt, error) {
	stmt, err := c.conn.Prepare(query)
	if err != nil {
		return nil, err
	}
	return &retryStmt{stmt: stmt, maxRetries: c.maxRetries}, nil
}

func (c *retryConn) Close() error {
	return c.conn.Close()
}

func (c *retryConn) Begin() (driver.Tx, error) {
	return retryValue(context.Background(), c.maxRetries, func() (driver.Tx, error) {
		return c.conn.Begin() //nolint:staticcheck // deprecated but required for interface
	})
}

func (c *retryConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	beginner, ok := c.conn.(driver.ConnBeginTx)
	if !ok {
		return c.Begin()
	}
	return retryValue(ctx, c.maxRetries, func() (driver.Tx, error) {
		return beginner.BeginTx(ctx, opts)
	})
}

func (c *retryConn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	preparer, ok := c.conn.(driver.ConnPrepareContext)
	if !ok {
		return c.Prepare(query)
	}
	stmt, err := preparer.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return &retryStmt{stmt: stmt, maxRetries: c.maxRetries}, nil
}

func (c *retryConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	execer, ok := c.conn.(driver.ExecerContext)
	if !ok {
		return nil, driver.ErrSkip
	}
	return retryValue(ctx, c.maxRetries, func() (driver.Result, error) {
		return execer.ExecContext(ctx, query, args)
	})
}

func (c *retryConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	queryer, ok := c.conn.(driver.QueryerContext)
	if !ok {
		return nil, driver.ErrSkip
	}
	return retryValue(ctx, c.maxRetries, func() (driver.Rows, error) {
		return queryer.QueryContext(ctx, query, args)
	})
}

func (c *retryConn) Ping(ctx context.Context) error {
	if pinger, ok := c.conn.(driver.Pinger); ok {
		return pinger.Ping(ctx)
	}
	return nil
}

func (c *retryConn) ResetSession(ctx context.Context) error {
	if resetter, ok := c.conn.(driver.SessionResetter); ok {
		return resetter.ResetSession(ctx)
	}
	return nil
}

func (c *retryConn) IsValid() bool {
	if validator, ok := c.conn.(driver.Validator); ok {
		return validator.IsValid()
	}
	return true
}

type retryStmt struct {
	stmt       driver.Stmt
	maxRetries int
}

func (s *retryStmt) Close() error {
	return s.stmt.Close()
}

func (s *retryStmt) NumInput() int {
	return s.stmt.NumInput()
}

func (s *retryStmt) Exec(args []driver.Value) (driver.Result, error) {
	return retryValue(context.Background(), s.maxRetries, func() (driver.Result, error) {
		return s.stmt.Exec(args) //nolint:staticcheck // deprecated but required for interface
	})
}

func (s *retryStmt) Query(args []driver.Value) (driver.Rows, error) {
	return retryValue(context.Background(), s.maxRetries, func() (driver.Rows, error) {
		return s.stmt.Query(args) //nolint:staticcheck // deprecated but required for interface
	})
}

func (s *retryStmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	execer, ok := s.stmt.(driver.StmtExecContext)
	if !ok {
		return s.Exec(namedValues(args))
	}
	return retryValue(ctx, s.maxRetries, func() (driver.Result, error) {
		return execer.ExecContext(ctx, args)
	})
}

func (s *retryStmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	queryer, ok := s.stmt.(driver.StmtQueryContext)
	if !ok {
		return s.Query(namedValues(args))
	}
	return retryValue(ctx, s.maxRetries, func() (driver.Rows, error) {
		return queryer.QueryContext(ctx, args)
	})
}

func namedValues(args []driver.NamedValue) []driver.Value {
	values := make([]driver.Value, len(args))
	for i, arg := range args {
		values[i] = arg.Value
	}
	return values
}
