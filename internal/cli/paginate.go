package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tsawler/folio/model"
	"github.com/tsawler/folio/paginate"
)

// paginateOpts holds the command-line flags for the paginate command.
type paginateOpts struct {
	capacity float64 // explicit page capacity in pixels; 0 means use the page size
	asJSON   bool    // emit the report as JSON instead of a table
}

// newPaginateCmd creates the paginate command, which measures a document,
// computes its page breaks, and prints the break table.
func newPaginateCmd() *cobra.Command {
	var opts paginateOpts

	cmd := &cobra.Command{
		Use:   "paginate FILE",
		Short: "Compute page breaks for an HTML, Markdown, or EPUB document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPaginate(cmd.Context(), cmd.OutOrStdout(), args[0], &opts)
		},
	}

	cmd.Flags().Float64Var(&opts.capacity, "capacity", 0, "page capacity in pixels (overrides the page size when non-zero)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "emit the report as JSON")

	return cmd
}

// breakRow is the JSON shape of one page boundary.
type breakRow struct {
	Page  int     `json:"page"`
	Top   float64 `json:"top"`
	Block int     `json:"block"`
}

// paginateReport is the JSON shape of one pagination run.
type paginateReport struct {
	File       string     `json:"file"`
	Capacity   float64    `json:"capacity"`
	Blocks     int        `json:"blocks"`
	TotalPages int        `json:"total_pages"`
	Breaks     []breakRow `json:"breaks"`
}

// runPaginate measures the document once, computes breaks at the effective
// capacity, and writes the report to out.
func runPaginate(ctx context.Context, out io.Writer, file string, opts *paginateOpts) error {
	logger := loggerFromContext(ctx)

	page, err := pageFromConfig()
	if err != nil {
		return err
	}

	doc, err := openDocument(file)
	if err != nil {
		return err
	}

	track := newProgress(logger)
	geoms, err := doc.Page(page).Measure(measureFromConfig(page)).Geometry()
	if err != nil {
		return err
	}

	capacity := page.Capacity()
	if opts.capacity != 0 {
		capacity = opts.capacity
	}

	res, err := paginate.ComputeBreaks(geoms, capacity)
	if err != nil {
		return err
	}
	track.done(fmt.Sprintf("Paginated %d blocks into %d pages", len(geoms), res.TotalPages))

	if opts.asJSON {
		return writeJSONReport(out, file, capacity, len(geoms), res)
	}
	return writeBreakTable(out, file, capacity, len(geoms), res)
}

// writeBreakTable prints the totals line and, when the document spans more
// than one page, one row per break.
func writeBreakTable(out io.Writer, file string, capacity float64, blocks int, res model.PaginationResult) error {
	if _, err := fmt.Fprintf(out, "%s: %d blocks, %d pages (capacity %g px)\n",
		filepath.Base(file), blocks, res.TotalPages, capacity); err != nil {
		return err
	}
	if len(res.Breaks) == 0 {
		return nil
	}

	if _, err := fmt.Fprintf(out, "\n%6s %12s %7s\n", "PAGE", "TOP", "BLOCK"); err != nil {
		return err
	}
	for _, br := range res.Breaks {
		if _, err := fmt.Fprintf(out, "%6d %12.1f %7d\n", br.PageNumber, br.Top, br.BlockIndex); err != nil {
			return err
		}
	}
	return nil
}

// writeJSONReport prints the run as indented JSON. Breaks is always an
// array, never null.
func writeJSONReport(out io.Writer, file string, capacity float64, blocks int, res model.PaginationResult) error {
	rows := make([]breakRow, 0, len(res.Breaks))
	for _, br := range res.Breaks {
		rows = append(rows, breakRow{Page: br.PageNumber, Top: br.Top, Block: br.BlockIndex})
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(paginateReport{
		File:       file,
		Capacity:   capacity,
		Blocks:     blocks,
		TotalPages: res.TotalPages,
		Breaks:     rows,
	})
}
