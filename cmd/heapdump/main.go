// heapdump loads a catalog file and prints the contents of one table (or
// lists all tables), page by page, straight from the heap files. It is a
// read-only debugging aid; scans run under a throwaway transaction that is
// committed on exit.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"

	"heapdb/pkg/catalog"
	"heapdb/pkg/concurrency/transaction"
	"heapdb/pkg/execution/query"
	"heapdb/pkg/iterator"
	"heapdb/pkg/memory"
	"heapdb/pkg/storage/heap"
	"heapdb/pkg/tuple"
)

var cli struct {
	Catalog  string `arg:"" help:"Path to the catalog schema file." type:"existingfile"`
	Table    string `arg:"" optional:"" help:"Table to dump; omit to list tables."`
	MaxPages int    `help:"Buffer pool capacity." default:"50"`
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

func main() {
	kong.Parse(&cli,
		kong.Name("heapdump"),
		kong.Description("Dump the contents of heapdb tables."))

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render("error: ")+err.Error())
		os.Exit(1)
	}
}

func run() error {
	cat, err := catalog.NewCatalog()
	if err != nil {
		return err
	}
	defer cat.Clear()

	pool := memory.NewBufferPool(cli.MaxPages, cat)
	if err := cat.LoadSchema(cli.Catalog, pool); err != nil {
		return err
	}

	if cli.Table == "" {
		return listTables(cat)
	}
	return dumpTable(cat, pool, cli.Table)
}

func listTables(cat *catalog.Catalog) error {
	fmt.Println(titleStyle.Render("tables"))
	for _, name := range cat.TableNames() {
		id, err := cat.GetTableID(name)
		if err != nil {
			return err
		}
		td, err := cat.GetTupleDesc(id)
		if err != nil {
			return err
		}
		fmt.Printf("  %s %s\n", headerStyle.Render(name), dimStyle.Render(td.String()))
	}
	return nil
}

func dumpTable(cat *catalog.Catalog, pool *memory.BufferPool, name string) error {
	tableID, err := cat.GetTableID(name)
	if err != nil {
		return err
	}
	file, err := cat.GetDbFile(tableID)
	if err != nil {
		return err
	}
	heapFile, ok := file.(*heap.HeapFile)
	if !ok {
		return fmt.Errorf("table %q is not backed by a heap file", name)
	}

	numPages, err := heapFile.NumPages()
	if err != nil {
		return err
	}

	tid := transaction.NewTransactionID()
	defer pool.TransactionComplete(tid, true)

	scan, err := query.NewSeqScan(tid, heapFile)
	if err != nil {
		return err
	}
	if err := scan.Open(); err != nil {
		return err
	}
	defer scan.Close()

	fmt.Println(titleStyle.Render(name) + dimStyle.Render(fmt.Sprintf("  %d page(s)", numPages)))
	fmt.Println(headerStyle.Render(heapFile.TupleDesc().String()))

	rows := 0
	err = iterator.ForEach(scan, func(t *tuple.Tuple) error {
		fmt.Println(t.String())
		rows++
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Println(dimStyle.Render(fmt.Sprintf("%d row(s)", rows)))
	return nil
}
