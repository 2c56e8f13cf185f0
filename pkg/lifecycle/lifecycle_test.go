package lifecycle

import (
	"context"
	"testing"

	"github.com/shishobooks/catalog/pkg/errcodes"
	"github.com/shishobooks/catalog/pkg/events"
	"github.com/shishobooks/catalog/pkg/models"
	"github.com/shishobooks/catalog/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enabledInDB(t *testing.T, w *Writer, id int) bool {
	t.Helper()
	var enabled bool
	err := w.DB().NewSelect().
		Table("books").
		Column("enabled").
		Where("id = ?", id).
		Scan(context.Background(), &enabled)
	require.NoError(t, err)
	return enabled
}

func TestUpdate_EventFollowsVisibility(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testutils.NewDB(t)
	recorder := &events.Recorder{}
	w := NewWriter(db, recorder, nil)

	book := testutils.InsertBook(t, db, &models.Book{Title: "Piranesi"})

	enabled, err := w.Enable(ctx, book)
	require.NoError(t, err)
	assert.True(t, enabled)

	book.Title = "Piranesi (Reprint)"
	require.NoError(t, w.Update(ctx, book, []string{"title"}, nil))

	book.Enabled = false
	require.NoError(t, w.Update(ctx, book, []string{"enabled"}, nil))

	got := recorder.Events()
	require.Len(t, got, 3)
	assert.Equal(t, events.TypeVisibilityChanged, got[0].Type)
	assert.True(t, got[0].Enabled)
	assert.Equal(t, events.TypeUpdated, got[1].Type)
	assert.True(t, got[1].Enabled)
	assert.Equal(t, events.TypeHidden, got[2].Type)
	assert.False(t, got[2].Enabled)
}

// A copy read before the entity was enabled must not hide it when it only
// writes other columns.
func TestUpdate_StaleCopyKeepsVisibility(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testutils.NewDB(t)
	recorder := &events.Recorder{}
	w := NewWriter(db, recorder, nil)

	fresh := testutils.InsertBook(t, db, &models.Book{Title: "Piranesi"})
	stale := *fresh

	_, err := w.Enable(ctx, fresh)
	require.NoError(t, err)
	recorder.Reset()

	stale.Title = "Piranesi (Reprint)"
	require.NoError(t, w.Update(ctx, &stale, []string{"title"}, nil))

	got := recorder.Events()
	require.Len(t, got, 1)
	assert.Equal(t, events.TypeUpdated, got[0].Type)
	assert.True(t, got[0].Enabled)
	assert.True(t, stale.Enabled)
	assert.True(t, enabledInDB(t, w, fresh.ID))
}

func TestEnable_AlreadyEnabled(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testutils.NewDB(t)
	recorder := &events.Recorder{}
	w := NewWriter(db, recorder, nil)

	book := testutils.InsertBook(t, db, &models.Book{Entity: models.Entity{Enabled: true}, Title: "Piranesi"})

	enabled, err := w.Enable(ctx, book)
	require.NoError(t, err)
	assert.False(t, enabled)
	assert.Empty(t, recorder.Events())
}

func TestUpdate_Missing(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	recorder := &events.Recorder{}
	w := NewWriter(db, recorder, nil)

	book := &models.Book{Entity: models.Entity{ID: 404}, Title: "Nowhere"}
	err := w.Update(context.Background(), book, []string{"title"}, nil)
	assert.True(t, errcodes.IsNotFound(err))
	assert.Empty(t, recorder.Events())
}
