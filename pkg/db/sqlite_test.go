package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T) Catalog {
	t.Helper()
	catalog, err := NewSQLLite(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { catalog.Close() })
	require.NoError(t, catalog.Init())
	return catalog
}

func TestCatalogRoundTrip(t *testing.T) {
	catalog := testCatalog(t)

	older := &Run{Path: "/dumps/one", Host: "mq1", Timestamp: 100, Queues: 2, Records: 10}
	newer := &Run{Path: "/dumps/two", Host: "mq1", Timestamp: 200, Queues: 1, Records: 4}
	require.NoError(t, catalog.AddRun(older))
	require.NoError(t, catalog.AddRun(newer))
	assert.NotZero(t, older.ID)
	assert.NotEqual(t, older.ID, newer.ID)

	require.NoError(t, catalog.AddQueueDump(&QueueDump{RunID: older.ID, Vhost: "/", Queue: "orders", Expected: 7, Saved: 7}))
	require.NoError(t, catalog.AddQueueDump(&QueueDump{RunID: older.ID, Vhost: "/", Queue: "jobs", Expected: 5, Saved: 3}))

	runs, err := catalog.GetRuns()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "/dumps/two", runs[0].Path, "newest run first")
	assert.Equal(t, "/dumps/one", runs[1].Path)

	dumps, err := catalog.GetQueueDumps(older.ID)
	require.NoError(t, err)
	require.Len(t, dumps, 2)
	assert.Equal(t, "orders", dumps[0].Queue)
	assert.Equal(t, 3, dumps[1].Saved)

	dumps, err = catalog.GetQueueDumps(newer.ID)
	require.NoError(t, err)
	assert.Empty(t, dumps)
}

func TestInitIsIdempotent(t *testing.T) {
	catalog := testCatalog(t)
	require.NoError(t, catalog.Init())

	require.NoError(t, catalog.AddRun(&Run{Path: "/dumps/one", Host: "mq1", Timestamp: 1}))
	runs, err := catalog.GetRuns()
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
