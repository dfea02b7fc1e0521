package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	apperrors "github.com/matzehuels/slicetopo/pkg/errors"
	"github.com/matzehuels/slicetopo/pkg/serialize"
	"github.com/matzehuels/slicetopo/pkg/slicemanager"
)

// sendCommand creates the send command that submits the working draft.
func (c *CLI) sendCommand() *cobra.Command {
	var (
		url      string
		apiKey   string
		timeout  time.Duration
		isolated string
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Submit the working draft to the Slice Manager",
		Long: `Validate the working draft and POST it to the Slice Manager.

Nothing is sent while the draft has validation errors. The endpoint comes
from [manager] in the config file unless --url is given; the API key may
also be set with SLICETOPO_API_KEY. --dry-run prints the payload instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rules, err := c.rules(isolated)
			if err != nil {
				return err
			}

			mc := c.cfg.ManagerConfig()
			if cmd.Flags().Changed("url") {
				mc.URL = url
			}
			if cmd.Flags().Changed("api-key") {
				mc.APIKey = apiKey
			}
			if cmd.Flags().Changed("timeout") {
				mc.Timeout = timeout
			}

			w, err := c.openWorkspace(ctx, false)
			if err != nil {
				return err
			}
			defer w.Close()
			t := w.store.Snapshot()

			if dryRun {
				payload := serialize.NewPayload(t)
				if err := slicemanager.CheckPayload(payload); err != nil {
					return err
				}
				data, err := serialize.Marshal(payload)
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			client, err := slicemanager.NewClient(mc, c.Logger)
			if err != nil {
				return err
			}
			sub := slicemanager.NewSubmitter(client, rules, c.Logger)

			spinner := newSpinner(ctx, fmt.Sprintf("Sending %s to %s", t.Name, client.URL()))
			spinner.Start()
			res, err := sub.Send(ctx, t)
			if err != nil {
				spinner.StopWithError("Submission failed: %s", apperrors.UserMessage(err))
				if res != nil {
					printReport(res.Report)
				}
				return err
			}
			spinner.StopWithSuccess("Submitted %s", StyleHighlight.Render(t.Name))
			printKeyValue("Status", fmt.Sprintf("%d", res.Response.StatusCode))
			printKeyValue("Request", res.Response.RequestID)
			printKeyValue("Duration", res.Duration.Round(time.Millisecond).String())
			for _, warning := range res.Report.Warnings {
				printWarning("%s", warning)
			}
			if len(res.Response.Body) > 0 {
				printDetail("%s", truncate(string(res.Response.Body), 200))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Slice Manager endpoint (overrides config)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "bearer token (overrides config)")
	cmd.Flags().DurationVar(&timeout, "timeout", slicemanager.DefaultTimeout, "request timeout")
	cmd.Flags().StringVar(&isolated, "isolated", "", "severity of isolated nodes: error, warning")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the payload without sending")

	return cmd
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
