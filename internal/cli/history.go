package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/Shiangjun/LTspice-cli/internal/history"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List recorded sweep runs, or the points of one run",
	Long: `Without arguments, list the most recent sweep runs from the history
ledger. With a run ID, show each point of that run.

Examples:
  ltspice history
  ltspice history --limit 5
  ltspice history 6f1c2f9e-...`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of runs to list (0 for all)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output as JSON")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	path := cfg.HistoryPath(wd)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintln(cmd.OutOrStdout(), "No sweep history yet")
		return nil
	}

	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	if len(args) == 1 {
		return showRun(cmd.OutOrStdout(), store, args[0], historyJSON)
	}
	return listRuns(cmd.OutOrStdout(), store, historyLimit, historyJSON)
}

func listRuns(w io.Writer, store *history.Store, limit int, asJSON bool) error {
	runs, err := store.ListRuns(limit)
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(w, runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "No sweep history yet")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.RunID,
			r.StartedAt.Local().Format(time.DateTime),
			r.Param,
			fmt.Sprintf("%d/%d", r.Succeeded, r.Total),
			runStatus(r),
		})
	}
	fmt.Fprintln(w, renderTable([]string{"Run ID", "Started", "Param", "OK", "Status"}, rows))
	return nil
}

func showRun(w io.Writer, store *history.Store, runID string, asJSON bool) error {
	run, err := store.GetRun(runID)
	if err != nil {
		return err
	}
	points, err := store.Points(runID)
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(w, struct {
			Run    *history.RunRecord     `json:"run"`
			Points []*history.PointRecord `json:"points"`
		}{run, points})
	}

	fmt.Fprintln(w, TitleStyle.Render("Run "+run.RunID))
	fmt.Fprintln(w, SubtitleStyle.Render(fmt.Sprintf("%s swept on %s, %s", run.Param, run.Schematic, runStatus(run))))
	if run.Error != "" {
		fmt.Fprintln(w, ErrorStyle.Render(run.Error))
	}

	rows := make([][]string, 0, len(points))
	for _, p := range points {
		result := fmt.Sprintf("%s rows", formatNumber(p.Rows))
		if p.Error != "" {
			result = ErrorStyle.Render(p.Error)
		}
		rows = append(rows, []string{
			strconv.Itoa(p.Index),
			p.Value,
			p.OutputPath,
			fmt.Sprintf("%.1fs", p.Duration.Seconds()),
			result,
		})
	}
	fmt.Fprintln(w, renderTable([]string{"#", "Value", "Output", "Time", "Result"}, rows))
	return nil
}

func runStatus(r *history.RunRecord) string {
	switch {
	case r.FinishedAt.IsZero():
		return WarningStyle.Render("incomplete")
	case r.Error != "" || r.Failed > 0:
		return ErrorStyle.Render("failed")
	default:
		return SuccessStyle.Render("ok")
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
