// Package catalog tracks the tables of the database: the mapping from table
// names and ids to the files storing them and their schemas. Lookups by id
// sit on the buffer pool's miss path, so they are served from a ristretto
// cache in front of the authoritative maps.
package catalog

import (
	"sync"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/pkg/errors"

	"heapdb/pkg/storage/page"
	"heapdb/pkg/tuple"
)

// Table is one catalog entry: the backing file, the table's name, and the
// name of its primary key field (empty when none was declared).
type Table struct {
	File      page.DbFile
	Name      string
	PKeyField string
}

// Catalog maintains bidirectional name/id lookups over the known tables.
// All methods are safe for concurrent use.
type Catalog struct {
	mu          sync.RWMutex
	nameToTable map[string]*Table
	idToTable   map[int]*Table
	fileCache   *ristretto.Cache[int, page.DbFile]
}

func NewCatalog() (*Catalog, error) {
	fileCache, err := ristretto.NewCache(&ristretto.Config[int, page.DbFile]{
		NumCounters: 1 << 12,
		MaxCost:     1 << 10,
		BufferItems: 64,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create catalog file cache")
	}

	return &Catalog{
		nameToTable: make(map[string]*Table),
		idToTable:   make(map[int]*Table),
		fileCache:   fileCache,
	}, nil
}

// AddTable registers a table. On a name or id conflict the new table
// replaces the old one.
func (c *Catalog) AddTable(file page.DbFile, name string, pkeyField string) error {
	if file == nil {
		return errors.New("file cannot be nil")
	}
	if name == "" {
		return errors.New("table name cannot be empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	table := &Table{File: file, Name: name, PKeyField: pkeyField}
	id := file.ID()

	if existing, exists := c.nameToTable[name]; exists {
		delete(c.idToTable, existing.File.ID())
		c.fileCache.Del(existing.File.ID())
	}
	if existing, exists := c.idToTable[id]; exists {
		delete(c.nameToTable, existing.Name)
	}

	c.nameToTable[name] = table
	c.idToTable[id] = table
	c.fileCache.Del(id)
	return nil
}

// GetTableID returns the id of the named table.
func (c *Catalog) GetTableID(name string) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	table, exists := c.nameToTable[name]
	if !exists {
		return 0, errors.Errorf("table %q not found", name)
	}
	return table.File.ID(), nil
}

// GetDbFile returns the file backing the identified table. This is the
// buffer pool's resolver; hits are served from the cache.
func (c *Catalog) GetDbFile(tableID int) (page.DbFile, error) {
	if file, found := c.fileCache.Get(tableID); found {
		return file, nil
	}

	c.mu.RLock()
	table, exists := c.idToTable[tableID]
	c.mu.RUnlock()

	if !exists {
		return nil, errors.Errorf("table with id %d not found", tableID)
	}

	c.fileCache.Set(tableID, table.File, 1)
	return table.File, nil
}

// GetTupleDesc returns the schema of the identified table.
func (c *Catalog) GetTupleDesc(tableID int) (*tuple.TupleDescription, error) {
	file, err := c.GetDbFile(tableID)
	if err != nil {
		return nil, err
	}
	return file.TupleDesc(), nil
}

// GetPrimaryKey returns the primary key field name of the identified table.
func (c *Catalog) GetPrimaryKey(tableID int) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	table, exists := c.idToTable[tableID]
	if !exists {
		return "", errors.Errorf("table with id %d not found", tableID)
	}
	return table.PKeyField, nil
}

// GetTableName returns the name of the identified table.
func (c *Catalog) GetTableName(tableID int) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	table, exists := c.idToTable[tableID]
	if !exists {
		return "", errors.Errorf("table with id %d not found", tableID)
	}
	return table.Name, nil
}

// TableNames returns the names of every registered table.
func (c *Catalog) TableNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.nameToTable))
	for name := range c.nameToTable {
		names = append(names, name)
	}
	return names
}

// Clear removes every table and closes the backing files.
func (c *Catalog) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, table := range c.idToTable {
		if table.File != nil {
			_ = table.File.Close()
		}
		c.fileCache.Del(id)
	}
	c.nameToTable = make(map[string]*Table)
	c.idToTable = make(map[int]*Table)
}
