package main

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/runsummary/internal/config"
	"github.com/danielpatrickdp/runsummary/internal/ledger"
)

// #region inspect-cmd
func newInspectCmd() *cobra.Command {
	var (
		dbPath     string
		last       int
		invocation string
		jsonOut    bool
	)
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "List recorded invocations from a ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := dbPath
			if path == "" {
				path = envOr(config.EnvLedger, "")
			}
			if path == "" {
				return fmt.Errorf("inspect: --ledger or %s is required", config.EnvLedger)
			}
			store, err := ledger.NewStore(path)
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer store.Close()

			if invocation != "" {
				return runDetailMode(cmd, store, invocation, jsonOut)
			}
			return runListMode(cmd, store, last, jsonOut)
		},
	}
	cmd.Flags().StringVar(&dbPath, "ledger", "", "path to the ledger database")
	cmd.Flags().IntVar(&last, "last", 20, "show N most recent invocations")
	cmd.Flags().StringVar(&invocation, "invocation", "", "show one invocation in detail")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON instead of table")
	return cmd
}
// #endregion inspect-cmd

// #region list-mode
type listRow struct {
	InvocationID string  `json:"invocation_id"`
	Stage        string  `json:"stage"`
	Seed         uint64  `json:"seed"`
	MinCows      int     `json:"min_cows_threshold"`
	MinHarvest   float64 `json:"min_harvest_threshold"`
	MinWoodland  float64 `json:"min_woodland_threshold"`
	Runs         int     `json:"runs"`
	CreatedAt    string  `json:"created_at"`
}

func runListMode(cmd *cobra.Command, store *ledger.Store, last int, jsonOut bool) error {
	invs, err := store.ListInvocations(last)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(invs) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "no invocations found")
		return nil
	}

	// Store returns DESC, reverse for chronological
	rows := make([]listRow, len(invs))
	for i, inv := range invs {
		rows[len(invs)-1-i] = listRow{
			InvocationID: inv.InvocationID,
			Stage:        inv.Stage,
			Seed:         inv.Seed,
			MinCows:      inv.MinCowsThreshold,
			MinHarvest:   inv.MinHarvestThreshold,
			MinWoodland:  inv.MinWoodlandThreshold,
			Runs:         inv.RunCount,
			CreatedAt:    inv.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}
	if jsonOut {
		return printJSON(cmd, rows)
	}

	fmt.Fprintf(out, "%-10s  %-12s  %5s  %10s  %10s  %8s  %s\n",
		"Invocation", "Stage", "Cows", "Harvest", "Woodland", "Runs", "Time")
	fmt.Fprintf(out, "%-10s+-%-12s+-%5s+-%10s+-%10s+-%8s+-%s\n",
		"----------", "------------", "-----", "----------", "----------", "--------", "--------------------")
	for _, r := range rows {
		fmt.Fprintf(out, "%-10s  %-12s  %5d  %10.4f  %10.4f  %8s  %s\n",
			shortID(r.InvocationID), r.Stage, r.MinCows, r.MinHarvest, r.MinWoodland,
			humanize.Comma(int64(r.Runs)), r.CreatedAt)
	}
	return nil
}
// #endregion list-mode

// #region detail-mode
type detailOutput struct {
	listRow
	OutputFile string         `json:"output_file,omitempty"`
	Inputs     map[string]any `json:"inputs,omitempty"`
	Reasons    map[string]int `json:"termination_reasons"`
}

func runDetailMode(cmd *cobra.Command, store *ledger.Store, id string, jsonOut bool) error {
	inv, err := store.GetInvocation(id)
	if err != nil {
		return err
	}
	counts, err := store.ReasonCounts(id)
	if err != nil {
		return err
	}

	out := detailOutput{
		listRow: listRow{
			InvocationID: inv.InvocationID,
			Stage:        inv.Stage,
			Seed:         inv.Seed,
			MinCows:      inv.MinCowsThreshold,
			MinHarvest:   inv.MinHarvestThreshold,
			MinWoodland:  inv.MinWoodlandThreshold,
			Runs:         inv.RunCount,
			CreatedAt:    inv.CreatedAt.Format("2006-01-02T15:04:05Z"),
		},
		OutputFile: inv.OutputFile,
		Reasons:    make(map[string]int, len(counts)),
	}
	if inv.InputsJSON != "" {
		if err := json.Unmarshal([]byte(inv.InputsJSON), &out.Inputs); err != nil {
			return fmt.Errorf("parse inputs of %s: %w", id, err)
		}
	}
	for _, c := range counts {
		out.Reasons[c.Reason] = c.Runs
	}

	if jsonOut {
		return printJSON(cmd, out)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Invocation: %s\n", out.InvocationID)
	fmt.Fprintf(w, "Stage:      %s\n", out.Stage)
	fmt.Fprintf(w, "Created:    %s\n", out.CreatedAt)
	fmt.Fprintf(w, "Seed:       %d\n", out.Seed)
	fmt.Fprintf(w, "Thresholds: cows=%d harvest=%.4f woodland=%.4f\n", out.MinCows, out.MinHarvest, out.MinWoodland)
	if out.OutputFile != "" {
		fmt.Fprintf(w, "Output:     %s\n", out.OutputFile)
	}
	fmt.Fprintf(w, "\nTermination reasons (%s runs):\n", humanize.Comma(int64(out.Runs)))
	for _, c := range counts {
		fmt.Fprintf(w, "  %-20s %d\n", c.Reason, c.Runs)
	}
	return nil
}
// #endregion detail-mode

// #region output
func printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
// #endregion output
