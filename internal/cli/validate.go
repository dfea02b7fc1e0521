package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	apperrors "github.com/matzehuels/slicetopo/pkg/errors"
	"github.com/matzehuels/slicetopo/pkg/serialize"
	"github.com/matzehuels/slicetopo/pkg/validate"
)

// rules returns the validator options, with --isolated overriding the config.
func (c *CLI) rules(isolated string) (validate.Options, error) {
	opts := c.cfg.ValidateOptions()
	if isolated != "" {
		sev, err := validate.ParseSeverity(isolated)
		if err != nil {
			return opts, err
		}
		opts.IsolatedNodes = sev
	}
	return opts, nil
}

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	var isolated string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the working draft before export or submission",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.rules(isolated)
			if err != nil {
				return err
			}
			w, err := c.openWorkspace(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer w.Close()

			report := validate.Validate(w.store.Snapshot(), opts)
			printReport(report)
			if err := report.Err(); err != nil {
				return err
			}
			printSuccess("%s is valid", StyleHighlight.Render(w.name))
			printStats(w.name, w.store.NodeCount(), w.store.ConnectionCount())
			return nil
		},
	}

	cmd.Flags().StringVar(&isolated, "isolated", "", "severity of isolated nodes: error, warning")
	return cmd
}

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		output   string
		isolated string
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the working draft as an export document",
		Long: `Write the working draft as a JSON export document.

The draft is validated first and nothing is written while it has errors,
unless --force is given. Use -o - to write to stdout. The default file name
is derived from the topology name.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.rules(isolated)
			if err != nil {
				return err
			}
			w, err := c.openWorkspace(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer w.Close()

			t := w.store.Snapshot()
			report := validate.Validate(t, opts)
			if !report.Valid && !force {
				printReport(report)
				return report.Err()
			}

			doc := serialize.Export(t, time.Now())
			if output == "-" {
				return serialize.Write(doc, os.Stdout)
			}
			if output == "" {
				output = serialize.ExportFilename(t.Name)
			}
			if err := serialize.WriteFile(doc, output); err != nil {
				return err
			}
			printSuccess("Exported %s", StyleHighlight.Render(t.Name))
			printFile(output)
			printDetail("%s", doc.Sequence)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout")
	cmd.Flags().StringVar(&isolated, "isolated", "", "severity of isolated nodes: error, warning")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "export even when validation fails")

	return cmd
}

// importCommand creates the import command.
func (c *CLI) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Replace the working draft with an export document",
		Long: `Replace the working draft with a JSON export document. Legacy documents
(with "links", "source"/"target" endpoints or string numbers) are accepted.
Use - to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = readAll(os.Stdin)
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			return c.withWorkspace(cmd.Context(), true, func(w *workspace) (bool, error) {
				if err := c.newController(w.store).Import(data); err != nil {
					return false, err
				}
				printSuccess("Imported %s into draft %s", StyleHighlight.Render(w.store.Name()), w.name)
				return true, nil
			})
		},
	}
}

// readAll reads r up to the import size limit.
func readAll(r io.Reader) ([]byte, error) {
	const limit = 32 << 20
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if len(data) > limit {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "input larger than %d MB", limit>>20)
	}
	return data, nil
}
