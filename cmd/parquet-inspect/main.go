// Command parquet-inspect prints a parquet file's schema, row count, and
// per-column compression codec.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kodeshop/parquet"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s <file.parquet>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, "parquet-inspect:", err)
		os.Exit(1)
	}
}

func run(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	file, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	schema := file.GetSchema()
	if err := schema.Print(os.Stdout); err != nil {
		return err
	}
	fmt.Printf("\nrows: %d\n", file.GetRowCount())

	if meta := file.GetMetadata(); len(meta) > 0 {
		fmt.Println("metadata:")
		for k, v := range meta {
			fmt.Printf("  %s = %s\n", k, v)
		}
	}

	fmt.Println("columns:")
	for _, col := range schema.Columns() {
		fmt.Printf("  %-30s %-10s compression=%s\n", col.Key, col.Type().Primitive, col.Compression())
	}
	return nil
}
