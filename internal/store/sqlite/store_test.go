package sqlite

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkmarket/link-server/internal/store"
	"github.com/linkmarket/link-server/internal/store/storetest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, err := Open(dbPath, logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	var journalMode string
	require.NoError(t, s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", journalMode)

	// Every pooled connection must enforce foreign keys for cascades to work.
	for range 3 {
		var fk int
		require.NoError(t, s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
		assert.Equal(t, 1, fk)
	}
}

func TestOpen_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	s1, err := Open(dbPath, logger)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(dbPath, logger)
	require.NoError(t, err)
	require.NoError(t, s2.Close())
}

func TestSQLFunctions(t *testing.T) {
	s := newTestStore(t)

	var norm string
	require.NoError(t, s.db.QueryRow(`SELECT normalize_text(?)`, "  Éléphant   Rosé ").Scan(&norm))
	assert.Equal(t, "elephant rose", norm)

	var null string
	require.NoError(t, s.db.QueryRow(`SELECT normalize_text(NULL)`).Scan(&null))
	assert.Empty(t, null)

	var sim float64
	require.NoError(t, s.db.QueryRow(`SELECT word_similarity('word', 'two words')`).Scan(&sim))
	assert.InDelta(t, 0.8, sim, 1e-6)
}

func TestTimeFormatSortsLexicographically(t *testing.T) {
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.FixedZone("WAT", 3600))
	a := formatTime(base)
	b := formatTime(base.Add(1500))
	assert.Less(t, a, b)
	assert.Len(t, a, len(b))

	parsed, err := parseTime(b)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(base.Add(1500)))
}

func TestStoreSuite(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return newTestStore(t)
	})
}
