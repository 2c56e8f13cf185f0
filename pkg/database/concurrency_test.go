package database

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shishobooks/catalog/pkg/config"
	"github.com/shishobooks/catalog/pkg/migrations"
	"github.com/shishobooks/catalog/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestConfig uses a file so that the WAL and busy handling paths are
// exercised the same way they are in production.
func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewForTest()
	cfg.DatabaseFilePath = filepath.Join(t.TempDir(), "test.db")
	cfg.DatabaseMaxRetries = 0
	return cfg
}

func TestNew_MigratesAndEnforcesForeignKeys(t *testing.T) {
	db, err := New(newTestConfig(t))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	_, err = migrations.BringUpToDate(ctx, db)
	require.NoError(t, err)

	var fk int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)

	// A pivot row pointing at a missing book must be rejected.
	_, err = db.NewInsert().Model(&models.BookIdentifier{BookID: 999, IdentifierID: 999}).Exec(ctx)
	assert.Error(t, err)
}

func TestConcurrentWrites(t *testing.T) {
	t.Parallel()

	db, err := New(newTestConfig(t))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS concurrency_test (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		value TEXT NOT NULL,
		worker_id INTEGER NOT NULL
	)`)
	require.NoError(t, err)

	const numWorkers = 20
	const writesPerWorker = 50

	var wg sync.WaitGroup
	var errorCount atomic.Int32

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for i := 0; i < writesPerWorker; i++ {
				_, err := db.Exec(
					"INSERT INTO concurrency_test (value, worker_id) VALUES (?, ?)",
					fmt.Sprintf("worker-%d-write-%d", workerID, i),
					workerID,
				)
				if err != nil {
					errorCount.Add(1)
				}
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, int32(0), errorCount.Load(), "concurrent writes should not produce errors")

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM concurrency_test").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, numWorkers*writesPerWorker, count)
}
