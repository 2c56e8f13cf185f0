package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/catalog/pkg/config"
	"github.com/shishobooks/catalog/pkg/models"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type key int

const ctxKey key = 0

// WithLogging turns on query logging for everything run with the returned
// context, as long as the database was opened with DatabaseDebug.
func WithLogging(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKey, true)
}

type logQueryHook struct {
	log logger.Logger
}

func (*logQueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (qh *logQueryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	enabled, ok := ctx.Value(ctxKey).(bool)
	if !ok || !enabled {
		return
	}

	data := logger.Data{"duration": time.Since(event.StartTime).String()}
	if event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) {
		data["error"] = event.Err.Error()
	}
	qh.log.Debug(event.Query, data)
}

func New(cfg *config.Config) (*bun.DB, error) {
	drv := sqliteshim.Driver()
	drvCtx, ok := drv.(interface {
		OpenConnector(name string) (driver.Connector, error)
	})
	var connector driver.Connector
	if ok {
		c, err := drvCtx.OpenConnector(cfg.DatabaseFilePath)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		connector = c
	} else {
		connector = newDriverConnector(drv, cfg.DatabaseFilePath)
	}

	// Wrap the connector with retry logic for SQLITE_BUSY errors.
	sqldb := sql.OpenDB(newRetryConnector(connector, cfg.DatabaseMaxRetries))

	// SQLite allows a single writer. Funnelling everything through one
	// connection turns lock contention into queueing, and keeps ":memory:"
	// databases from splitting per connection.
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	models.RegisterModels(db)

	// print out all queries in debug mode
	if cfg.DatabaseDebug {
		db.AddQueryHook(&logQueryHook{logger.NewWithLevel("debug")})
	}

	// Retry up to a few times to ensure that the database can connect.
	var err error
	attempts := cfg.DatabaseConnectRetryCount
	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		_, err = db.Exec("SELECT 1")
		if err == nil {
			break
		}
		time.Sleep(cfg.DatabaseConnectRetryDelay)
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}

	pragmas := []struct {
		stmt string
		desc string
	}{
		{"PRAGMA journal_mode=WAL", "enable WAL mode"},
		{"PRAGMA foreign_keys=ON", "enable foreign keys"},
		{"PRAGMA busy_timeout=" + strconv.FormatInt(cfg.DatabaseBusyTimeout.Milliseconds(), 10), "set busy_timeout"},
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p.stmt); err != nil {
			return nil, errors.Wrapf(err, "failed to %s", p.desc)
		}
	}

	return db, nil
}
