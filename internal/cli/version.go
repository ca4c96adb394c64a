package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/tcnksm/go-latest"
)

var (
	// Version information - typically set via ldflags at build time
	Version   = "dev"
	GitCommit = "none"
	BuildDate = "unknown"
)

// Repository that releases are tagged in.
const (
	repoOwner = "Shiangjun"
	repoName  = "LTspice-cli"
)

var versionCheck bool

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of ltspice",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "ltspice %s\n", Version)
		fmt.Fprintf(w, "Git commit: %s\n", GitCommit)
		fmt.Fprintf(w, "Build date: %s\n", BuildDate)
		if !versionCheck {
			return nil
		}
		return checkLatest(w, &latest.GithubTag{Owner: repoOwner, Repository: repoName}, Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "check GitHub for a newer release")
}

func checkLatest(w io.Writer, src latest.Source, current string) error {
	if current == "dev" {
		fmt.Fprintln(w, WarningStyle.Render("Development build, skipping update check"))
		return nil
	}
	res, err := latest.Check(src, current)
	if err != nil {
		return fmt.Errorf("failed to check for updates: %w", err)
	}
	if res.Outdated {
		fmt.Fprintln(w, WarningStyle.Render(fmt.Sprintf("A newer version is available: %s", res.Current)))
		return nil
	}
	fmt.Fprintln(w, SuccessStyle.Render("✓ Up to date"))
	return nil
}
