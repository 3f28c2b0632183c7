package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/termpong/internal/platform/tui"
	"github.com/vovakirdan/termpong/internal/storage"
)

var (
	flagPlain bool
	flagLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show observed points and connections",
	Long: `Browse the match history this client has recorded: every point it
saw scored and every connection it opened.

Examples:
  termpong history
  termpong history --plain --limit 5`,
	Args: cobra.NoArgs,
	Run:  runHistory,
}

func init() {
	historyCmd.Flags().BoolVar(&flagPlain, "plain", false, "Print plain text instead of the interactive browser")
	historyCmd.Flags().IntVar(&flagLimit, "limit", 10, "Rows per section with --plain")
}

func runHistory(cmd *cobra.Command, _ []string) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening history database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if !flagPlain {
		width, height := terminalSize()
		if err := tui.RunHistory(store, width, height); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := printHistory(os.Stdout, store, flagLimit); err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving history: %v\n", err)
		os.Exit(1)
	}
}

// printHistory writes the most recent points and connections as text.
func printHistory(w io.Writer, src tui.HistorySource, limit int) error {
	points, err := src.RecentPoints(limit)
	if err != nil {
		return err
	}
	conns, err := src.RecentConnections(limit)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "Recent points")
	fmt.Fprintln(w)
	if len(points) == 0 {
		fmt.Fprintln(w, "No points recorded yet.")
	} else {
		fmt.Fprintf(w, "  %-16s  %-4s  %-6s  %s\n", "Time", "Role", "Scorer", "Score")
		fmt.Fprintf(w, "  %-16s  %-4s  %-6s  %s\n", "----", "----", "------", "-----")
		for _, p := range points {
			fmt.Fprintf(w, "  %-16s  %-4s  %-6s  %d — %d\n",
				p.CreatedAt.Local().Format("2006-01-02 15:04"), p.Role, p.Scorer, p.ScoreA, p.ScoreB)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Recent connections")
	fmt.Fprintln(w)
	if len(conns) == 0 {
		fmt.Fprintln(w, "No connections recorded yet.")
		return nil
	}
	fmt.Fprintf(w, "  %-16s  %-4s  %-8s  %s\n", "Opened", "Role", "Duration", "Server")
	fmt.Fprintf(w, "  %-16s  %-4s  %-8s  %s\n", "------", "----", "--------", "------")
	for _, c := range conns {
		duration := "open"
		if !c.ClosedAt.IsZero() {
			duration = c.Duration().Round(time.Second).String()
		}
		fmt.Fprintf(w, "  %-16s  %-4s  %-8s  %s\n",
			c.OpenedAt.Local().Format("2006-01-02 15:04"), c.Role, duration, c.Server)
	}
	return nil
}
