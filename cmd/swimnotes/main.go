package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	swimfit "github.com/lucasjlepore/swim-analyzer"
	"github.com/lucasjlepore/swim-analyzer/config"
)

// notesOutput is the --json view of one workout.
type notesOutput struct {
	Extract *swimfit.Extract      `json:"extract"`
	Sets    []swimfit.SetSummary  `json:"sets"`
	Rows    []swimfit.EnrichedLap `json:"rows"`
}

func newRootCmd() *cobra.Command {
	var (
		jsonOut  bool
		timezone string
	)
	cmd := &cobra.Command{
		Use:          "swimnotes [flags] <path-to-fit-file>",
		Short:        "Summarize the sets and pacing of one pool swim",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var loc *time.Location
			if timezone != "" && timezone != config.TimezoneDevice {
				l, err := time.LoadLocation(timezone)
				if err != nil {
					return fmt.Errorf("load timezone: %w", err)
				}
				loc = l
			}

			ex, err := swimfit.ExtractFile(args[0])
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}
			var sessions []swimfit.SessionRecord
			if ex.Session != nil {
				sessions = swimfit.NumberSessions([]swimfit.SessionRecord{*ex.Session}, loc)
				ex.Session = &sessions[0]
			}
			rows := swimfit.Derive(ex.Laps, sessions)

			out := cmd.OutOrStdout()
			if jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(notesOutput{Extract: ex, Sets: swimfit.SummarizeSets(rows), Rows: rows}); err != nil {
					return fmt.Errorf("json encode failed: %w", err)
				}
				return nil
			}
			fmt.Fprintln(out, swimfit.BuildSwimNotes(ex, rows, loc))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit extract, set summaries and rows as JSON")
	cmd.Flags().StringVar(&timezone, "timezone", config.TimezoneDevice, `Timezone for the session date: "device" or an IANA name`)
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
