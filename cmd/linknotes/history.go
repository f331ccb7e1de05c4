// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/linknotes/internal/history"
	"github.com/pdiddy/linknotes/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded runs or URLs still needing manual review",
	Long: `History reads the SQLite file written by --history. By default it lists
recent runs with their outcome counts. With --unresolved it lists every URL
whose latest attempt produced a basic note or failed.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().String("db", "", "history database (default: the history setting)")
	historyCmd.Flags().Int("limit", 20, "number of runs to list")
	historyCmd.Flags().Bool("unresolved", false, "list URLs whose latest attempt needs manual review")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("db")
	if path == "" {
		path = viper.GetString("history")
	}
	if path == "" {
		return errors.New("provide --db or set history in the config")
	}
	limit, _ := cmd.Flags().GetInt("limit")
	unresolved, _ := cmd.Flags().GetBool("unresolved")

	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	w := cmd.OutOrStdout()
	if unresolved {
		attempts, err := store.Unresolved(cmd.Context())
		if err != nil {
			return err
		}
		printUnresolved(w, attempts)
		return nil
	}

	runs, err := store.Runs(cmd.Context(), limit)
	if err != nil {
		return err
	}
	printRuns(w, runs)
	return nil
}

func printRuns(w io.Writer, runs []history.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}
	for _, r := range runs {
		fmt.Fprintf(w, "#%d  %s  %s -> %s  total %d:", r.ID, r.StartedAt.Format("2006-01-02 15:04"), r.CSVPath, r.OutDir, r.Total)
		for _, o := range types.Outcomes {
			if n := r.Counts[o]; n > 0 {
				fmt.Fprintf(w, " %s %d", o, n)
			}
		}
		fmt.Fprintln(w)
	}
}

func printUnresolved(w io.Writer, attempts []history.Attempt) {
	if len(attempts) == 0 {
		fmt.Fprintln(w, "No URLs need manual review.")
		return
	}
	for _, a := range attempts {
		switch {
		case a.Error != "":
			fmt.Fprintf(w, "%-7s %s (%s)\n", a.Outcome.Label(), a.URL, a.Error)
		case a.Path != "":
			fmt.Fprintf(w, "%-7s %s -> %s\n", a.Outcome.Label(), a.URL, a.Path)
		default:
			fmt.Fprintf(w, "%-7s %s\n", a.Outcome.Label(), a.URL)
		}
	}
}
