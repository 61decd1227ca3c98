package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"starsync/internal/config"
	"starsync/internal/history"
	"starsync/internal/logging"
	"starsync/internal/subsonic"
	"starsync/internal/sync"
)

// historyFileName is the name of the history log inside the download directory.
const historyFileName = ".starsync-history"

var (
	syncURI      string
	syncUser     string
	syncToken    string
	syncSalt     string
	syncPath     string
	syncSince    string
	syncInsecure bool
	syncDebug    bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync starred songs into the download directory",
	Long: `Sync your starred songs from the Subsonic server into the download
directory. Songs already recorded in the history log, and files already
present at the expected name, are never downloaded again or overwritten, so
feel free to retag or move your local copies.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVarP(&syncURI, "uri", "i", "", "URI of the Subsonic server")
	syncCmd.Flags().StringVarP(&syncUser, "user", "u", "", "Username on the Subsonic server")
	syncCmd.Flags().StringVarP(&syncToken, "token", "t", "", "API token for the username/salt combination")
	syncCmd.Flags().StringVarP(&syncSalt, "salt", "s", "", "Salt used to generate the API token")
	syncCmd.Flags().StringVarP(&syncPath, "path", "p", "", "Directory whither songs will be downloaded")
	syncCmd.Flags().StringVarP(&syncSince, "since", "S", "", "Only sync songs starred since this date")
	syncCmd.Flags().BoolVarP(&syncInsecure, "insecure", "I", false, "Don't verify SSL certificates")
	syncCmd.Flags().BoolVarP(&syncDebug, "debug", "v", false, "Enable debug output")
}

// buildOptions merges config file and environment defaults with explicit
// flags; flags win.
func buildOptions(cmd *cobra.Command) (*config.Options, error) {
	opts, err := config.Load()
	if err != nil {
		return nil, err
	}

	if syncURI != "" {
		opts.ServerURL = syncURI
	}
	if syncUser != "" {
		opts.Username = syncUser
	}
	if syncToken != "" {
		opts.Token = syncToken
	}
	if syncSalt != "" {
		opts.Salt = syncSalt
	}
	if syncPath != "" {
		opts.TargetDir = syncPath
	}
	if cmd.Flags().Changed("insecure") {
		opts.Insecure = syncInsecure
	}
	if cmd.Flags().Changed("debug") {
		opts.Debug = syncDebug
	}

	if syncSince != "" {
		since, err := config.ParseSince(syncSince)
		if err != nil {
			return nil, fmt.Errorf("invalid --since value: %w", err)
		}
		opts.Since = since
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

func runSync(cmd *cobra.Command, args []string) error {
	opts, err := buildOptions(cmd)
	if err != nil {
		return err
	}

	logger := logging.Setup(opts.Debug)

	targetDir, err := expandPath(opts.TargetDir)
	if err != nil {
		return err
	}

	// History must load before any network call; a corrupt or unreadable
	// log aborts the whole run.
	store, err := history.Open(filepath.Join(targetDir, historyFileName))
	if err != nil {
		return err
	}
	defer store.Close()

	creds := subsonic.Credentials{
		Username: opts.Username,
		Token:    opts.Token,
		Salt:     opts.Salt,
	}
	client := subsonic.NewClient(opts.ServerURL, creds, opts.Insecure, logger)

	fmt.Printf("Syncing starred songs from %s...\n", opts.ServerURL)
	fmt.Println()

	engine := sync.New(client, store, targetDir, opts.Since, logger)
	result, err := engine.Run(context.Background())
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("Summary:")
	fmt.Printf("  %d downloaded\n", result.Downloaded)
	fmt.Printf("  %d skipped\n", result.Skipped)
	fmt.Printf("  %d failed\n", result.Failed)
	// Per-item failures are retried on the next run and do not change the
	// exit status.
	return nil
}

// expandPath expands a leading ~ to the user's home directory.
func expandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path[1:], "/")), nil
	}
	return path, nil
}
