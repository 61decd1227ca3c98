package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"starsync/internal/config"
	"starsync/internal/history"
)

var historyPath string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the sync history log",
	Long: `Show the ids recorded in the history log of a download directory.
Recorded items are never downloaded again, even after the local files are
moved or deleted.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVarP(&historyPath, "path", "p", "", "Download directory containing the history log")
}

func runHistory(cmd *cobra.Command, args []string) error {
	opts, err := config.Load()
	if err != nil {
		return err
	}
	if historyPath != "" {
		opts.TargetDir = historyPath
	}
	if opts.TargetDir == "" {
		return fmt.Errorf("missing required options: --path")
	}

	targetDir, err := expandPath(opts.TargetDir)
	if err != nil {
		return err
	}

	store, err := history.Open(filepath.Join(targetDir, historyFileName))
	if err != nil {
		return err
	}
	defer store.Close()

	entries := store.Entries()
	if len(entries) == 0 {
		fmt.Println("No synced items recorded.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSYNCED AT")
	for _, e := range entries {
		syncedAt := ""
		if !e.SyncedAt.IsZero() {
			syncedAt = e.SyncedAt.Local().Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%s\t%s\n", e.ID, syncedAt)
	}
	w.Flush()

	fmt.Printf("\nTotal: %d items\n", len(entries))
	return nil
}
