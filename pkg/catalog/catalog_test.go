package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heapdb/pkg/concurrency/transaction"
	"heapdb/pkg/memory"
	"heapdb/pkg/storage/heap"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

func newTestCatalog(t *testing.T) (*Catalog, *memory.BufferPool) {
	t.Helper()

	cat, err := NewCatalog()
	require.NoError(t, err)
	t.Cleanup(cat.Clear)

	pool := memory.NewBufferPool(memory.DefaultMaxPages, cat)
	return cat, pool
}

func writeCatalogFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "catalog.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadSchema(t *testing.T) {
	dir := t.TempDir()
	path := writeCatalogFile(t, dir, "users (id int pk, name string)\norders (id int, total int)\n")

	cat, pool := newTestCatalog(t)
	require.NoError(t, cat.LoadSchema(path, pool))

	assert.ElementsMatch(t, []string{"users", "orders"}, cat.TableNames())

	usersID, err := cat.GetTableID("users")
	require.NoError(t, err)

	td, err := cat.GetTupleDesc(usersID)
	require.NoError(t, err)
	require.Equal(t, 2, td.NumFields())

	type0, err := td.TypeAtIndex(0)
	require.NoError(t, err)
	assert.Equal(t, types.IntType, type0)
	type1, err := td.TypeAtIndex(1)
	require.NoError(t, err)
	assert.Equal(t, types.StringType, type1)

	pk, err := cat.GetPrimaryKey(usersID)
	require.NoError(t, err)
	assert.Equal(t, "id", pk)

	// The data file lives next to the catalog file.
	assert.FileExists(t, filepath.Join(dir, "users.dat"))
}

func TestLoadSchemaUnknownType(t *testing.T) {
	path := writeCatalogFile(t, t.TempDir(), "users (id uuid)\n")

	cat, pool := newTestCatalog(t)
	assert.Error(t, cat.LoadSchema(path, pool))
}

func TestLoadSchemaUnknownAnnotation(t *testing.T) {
	path := writeCatalogFile(t, t.TempDir(), "users (id int unique)\n")

	cat, pool := newTestCatalog(t)
	assert.Error(t, cat.LoadSchema(path, pool))
}

func TestLoadSchemaMalformedLine(t *testing.T) {
	path := writeCatalogFile(t, t.TempDir(), "users id int\n")

	cat, pool := newTestCatalog(t)
	assert.Error(t, cat.LoadSchema(path, pool))
}

func TestLookupMisses(t *testing.T) {
	cat, _ := newTestCatalog(t)

	_, err := cat.GetTableID("nope")
	assert.Error(t, err)
	_, err = cat.GetDbFile(12345)
	assert.Error(t, err)
	_, err = cat.GetTableName(12345)
	assert.Error(t, err)
}

func TestGetDbFileServesRepeatedLookups(t *testing.T) {
	dir := t.TempDir()
	path := writeCatalogFile(t, dir, "t (a int, b int)\n")

	cat, pool := newTestCatalog(t)
	require.NoError(t, cat.LoadSchema(path, pool))

	id, err := cat.GetTableID("t")
	require.NoError(t, err)

	first, err := cat.GetDbFile(id)
	require.NoError(t, err)

	// Repeated lookups, cached or not, must return the same file.
	for i := 0; i < 10; i++ {
		again, err := cat.GetDbFile(id)
		require.NoError(t, err)
		assert.Same(t, first, again)
	}
}

func TestAddTableReplacesByName(t *testing.T) {
	dir := t.TempDir()
	cat, pool := newTestCatalog(t)

	td, err := tuple.NewTupleDesc([]types.Type{types.IntType}, []string{"a"})
	require.NoError(t, err)

	f1, err := heap.NewHeapFile(filepath.Join(dir, "v1.dat"), td, pool)
	require.NoError(t, err)
	f2, err := heap.NewHeapFile(filepath.Join(dir, "v2.dat"), td, pool)
	require.NoError(t, err)

	require.NoError(t, cat.AddTable(f1, "t", ""))
	require.NoError(t, cat.AddTable(f2, "t", ""))

	id, err := cat.GetTableID("t")
	require.NoError(t, err)
	assert.Equal(t, f2.ID(), id)

	got, err := cat.GetDbFile(f2.ID())
	require.NoError(t, err)
	assert.Same(t, f2, got)

	// The replaced file's id no longer resolves.
	_, err = cat.GetDbFile(f1.ID())
	assert.Error(t, err)
}

func TestCatalogBackedTableEndToEnd(t *testing.T) {
	dir := t.TempDir()
	path := writeCatalogFile(t, dir, "events (id int, label string)\n")

	cat, pool := newTestCatalog(t)
	require.NoError(t, cat.LoadSchema(path, pool))

	id, err := cat.GetTableID("events")
	require.NoError(t, err)
	td, err := cat.GetTupleDesc(id)
	require.NoError(t, err)

	tid := transaction.NewTransactionID()
	tup := tuple.NewTuple(td)
	require.NoError(t, tup.SetField(0, types.NewIntField(1)))
	require.NoError(t, tup.SetField(1, types.NewStringField("created")))
	require.NoError(t, pool.InsertTuple(tid, id, tup))
	require.NoError(t, pool.TransactionComplete(tid, true))

	file, err := cat.GetDbFile(id)
	require.NoError(t, err)
	hf := file.(*heap.HeapFile)

	scanTid := transaction.NewTransactionID()
	it := hf.Iterator(scanTid)
	require.NoError(t, it.Open())
	defer it.Close()

	got, err := it.Next()
	require.NoError(t, err)
	label, err := got.GetField(1)
	require.NoError(t, err)
	assert.Equal(t, "created", label.(*types.StringField).Value)

	require.NoError(t, pool.TransactionComplete(scanTid, true))
}
