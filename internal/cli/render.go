package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tsawler/folio/paginate"
	"github.com/tsawler/folio/render"
)

// newRenderCmd creates the render command, which paginates a document and
// writes a proof PDF showing each page's blocks and break boundaries.
func newRenderCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Proof-render a paginated document to PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output PDF path (default: input path with a .pdf extension)")

	return cmd
}

// runRender measures and paginates the document once, then writes the proof
// PDF to the output path.
func runRender(ctx context.Context, file, output string) error {
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
	blocks, geoms, err := doc.Page(page).Measure(measureFromConfig(page)).Content()
	if err != nil {
		return err
	}

	res, err := paginate.ComputeBreaks(geoms, page.Capacity())
	if err != nil {
		return err
	}

	if output == "" {
		output = strings.TrimSuffix(file, filepath.Ext(file)) + ".pdf"
	}

	if err := render.WritePDF(output, blocks, geoms, res, page); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	track.done(fmt.Sprintf("Rendered %d pages to %s", res.TotalPages, output))

	return nil
}
