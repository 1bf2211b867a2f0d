package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	goparquet "goparquet"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var maxRows int
	var timeout time.Duration
	var verbose bool

	cmd := &cobra.Command{
		Use:   "parquetcat <file>",
		Short: "Print a Parquet file's schema and row data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return runCat(ctx, args[0], maxRows)
		},
	}

	cmd.Flags().IntVar(&maxRows, "max-rows", 1000, "maximum number of rows to print")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "overall read timeout")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	return cmd
}

func runCat(ctx context.Context, path string, maxRows int) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	src := goparquet.NewFileByteSource(file, info.Size())

	md, err := goparquet.ReadMetadataAsync(ctx, src, goparquet.MetadataOptions{})
	if err != nil {
		return fmt.Errorf("reading metadata: %w", err)
	}

	tree, err := goparquet.BuildSchema(md)
	if err != nil {
		return fmt.Errorf("building schema: %w", err)
	}

	fmt.Println("=== Schema ===")
	for i, leaf := range tree.Leaves {
		fmt.Printf("%d. %v (maxDef=%d, maxRep=%d)\n", i+1, leaf.Path, leaf.MaxDefinitionLevel, leaf.MaxRepetitionLevel)
	}
	fmt.Println()

	fmt.Println("=== Columns ===")
	for i, leaf := range tree.Leaves {
		fmt.Printf("%d. %s\n", i+1, joinDots(leaf.Path))
	}
	fmt.Println()

	fmt.Println("=== Data ===")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	keys := make([]string, len(tree.Leaves))
	for i, leaf := range tree.Leaves {
		keys[i] = joinDots(leaf.Path)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s\t", k)
	}
	fmt.Fprintf(w, "\n")
	for range keys {
		fmt.Fprintf(w, "---\t")
	}
	fmt.Fprintf(w, "\n")

	iter, err := goparquet.Read(ctx, src, goparquet.ReadOptions{Metadata: md})
	if err != nil {
		return fmt.Errorf("opening row iterator: %w", err)
	}

	rowsPrinted := 0
	for rowsPrinted < maxRows {
		row, ok, err := iter.Next(ctx)
		if err != nil {
			return fmt.Errorf("reading row %d: %w", rowsPrinted, err)
		}
		if !ok {
			break
		}
		for _, k := range keys {
			v, present := row[k]
			if !present || v == nil {
				fmt.Fprintf(w, "NULL\t")
			} else {
				fmt.Fprintf(w, "%v\t", v)
			}
		}
		fmt.Fprintf(w, "\n")
		rowsPrinted++
	}
	w.Flush()

	fmt.Printf("\nTotal rows printed: %d\n", rowsPrinted)
	fmt.Printf("Total rows in file: %d\n", md.NumRows)
	fmt.Printf("Row groups: %d\n", len(md.RowGroups))
	return nil
}

func joinDots(path []string) string {
	out := path[0]
	for _, p := range path[1:] {
		out += "." + p
	}
	return out
}
