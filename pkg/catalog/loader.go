package catalog

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"heapdb/pkg/storage/heap"
	"heapdb/pkg/storage/page"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

// LoadSchema reads a catalog file and registers one heap file per line.
//
// The format is line oriented, one table per line:
//
//	name (field type[, field type]*)
//
// where type is "int" or "string" and a field may carry a trailing "pk"
// annotation marking the primary key. The table's data file is
// <dir-of-catalog-file>/<name>.dat. Any unknown type or annotation fails
// the whole load.
func (c *Catalog) LoadSchema(catalogFile string, fetcher page.PageFetcher) error {
	f, err := os.Open(catalogFile)
	if err != nil {
		return errors.Wrapf(err, "failed to open catalog file %s", catalogFile)
	}
	defer f.Close()

	baseDir := filepath.Dir(catalogFile)

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if err := c.loadTableLine(line, baseDir, fetcher); err != nil {
			return errors.Wrapf(err, "catalog line %d", lineNo)
		}
	}
	return errors.Wrap(scanner.Err(), "failed to read catalog file")
}

func (c *Catalog) loadTableLine(line, baseDir string, fetcher page.PageFetcher) error {
	openIdx := strings.Index(line, "(")
	closeIdx := strings.LastIndex(line, ")")
	if openIdx < 0 || closeIdx < openIdx {
		return errors.Errorf("malformed table definition: %q", line)
	}

	name := strings.TrimSpace(line[:openIdx])
	if name == "" {
		return errors.Errorf("missing table name: %q", line)
	}

	var (
		fieldTypes []types.Type
		fieldNames []string
		pkeyField  string
	)
	for _, spec := range strings.Split(line[openIdx+1:closeIdx], ",") {
		parts := strings.Fields(spec)
		if len(parts) < 2 || len(parts) > 3 {
			return errors.Errorf("malformed field definition: %q", spec)
		}

		fieldName := parts[0]
		fieldType, err := parseType(parts[1])
		if err != nil {
			return err
		}

		if len(parts) == 3 {
			if strings.ToLower(parts[2]) != "pk" {
				return errors.Errorf("unknown field annotation %q", parts[2])
			}
			pkeyField = fieldName
		}

		fieldNames = append(fieldNames, fieldName)
		fieldTypes = append(fieldTypes, fieldType)
	}

	td, err := tuple.NewTupleDesc(fieldTypes, fieldNames)
	if err != nil {
		return err
	}

	file, err := heap.NewHeapFile(filepath.Join(baseDir, name+".dat"), td, fetcher)
	if err != nil {
		return errors.Wrapf(err, "failed to open data file for table %q", name)
	}
	return c.AddTable(file, name, pkeyField)
}

func parseType(s string) (types.Type, error) {
	switch strings.ToLower(s) {
	case "int":
		return types.IntType, nil
	case "string":
		return types.StringType, nil
	default:
		return 0, errors.Errorf("unknown field type %q", s)
	}
}
