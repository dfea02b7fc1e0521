package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/slicetopo/pkg/render"
	"github.com/matzehuels/slicetopo/pkg/serialize"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string   // output file path (or base path for multiple outputs)
	formats   []string // output formats: "svg", "png", "pdf", "dot"
	detailed  bool     // show kind, image and resources in node labels
	linkNames bool     // label edges with connection names
}

// renderCommand creates the render command for drawing the working draft.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		opts       renderOpts
		formatsStr string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Draw the working draft as SVG, PNG, PDF or DOT",
		Long: `Draw the working draft with nodes pinned at their canvas positions.

PDF output needs rsvg-convert (librsvg) on the PATH.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}

			w, err := c.openWorkspace(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer w.Close()

			t := w.store.Snapshot()
			dot := render.ToDOT(t, render.Options{Detailed: opts.detailed, LinkNames: opts.linkNames})
			base := basePath(opts.output, serialize.ExportFilename(t.Name))

			for _, f := range opts.formats {
				out := base + "." + f
				if len(opts.formats) == 1 && opts.output != "" {
					out = opts.output
				}
				c.Logger.Debug("rendering", "format", f, "output", out)
				data, err := render.Render(cmd.Context(), dot, render.Format(f))
				if err != nil {
					return fmt.Errorf("render %s: %w", f, err)
				}
				if out == "-" {
					os.Stdout.Write(data)
					continue
				}
				if err := os.WriteFile(out, data, 0644); err != nil {
					return fmt.Errorf("write %s: %w", out, err)
				}
				printFile(out)
			}
			printStats(w.name, len(t.Nodes), len(t.Connections))
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, dot (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show kind, image and resources on nodes")
	cmd.Flags().BoolVar(&opts.linkNames, "link-names", false, "label connections with their names")

	return cmd
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{string(render.FormatSVG)}
	}
	formats := strings.Split(s, ",")
	for i, f := range formats {
		formats[i] = strings.ToLower(strings.TrimSpace(f))
	}
	return formats
}

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{
	string(render.FormatSVG): true,
	string(render.FormatPNG): true,
	string(render.FormatPDF): true,
	string(render.FormatDOT): true,
}

// validateFormats checks that all requested formats are valid.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if !validFormats[f] {
			return fmt.Errorf("invalid format: %s (must be 'svg', 'png', 'pdf' or 'dot')", f)
		}
	}
	return nil
}

// basePath derives the base output path. With no output it strips the
// extension from fallback; a known format extension on output is stripped.
func basePath(output, fallback string) string {
	if output == "" || output == "-" {
		return strings.TrimSuffix(fallback, filepath.Ext(fallback))
	}
	ext := filepath.Ext(output)
	if validFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
