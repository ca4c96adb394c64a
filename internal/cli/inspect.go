package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/Shiangjun/LTspice-cli/internal/waveform"
)

var inspectJSON bool

var inspectCmd = &cobra.Command{
	Use:   "inspect [schematic|raw]",
	Short: "Show the header of an ASCII .raw file and check the variable catalog",
	Long: `Show the header of <base>.raw: variable and point counts, the declared
variables, and whether each configured catalog entry matches the variable
declared at its index.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "Output as JSON")
	addOutputFlags(inspectCmd.Flags())
}

// CatalogCheck compares one configured variable with the file's declaration.
type CatalogCheck struct {
	Variable waveform.Variable `json:"variable"`
	Declared string            `json:"declared"`
	Match    bool              `json:"match"`
}

// Inspection is the inspect command's result.
type Inspection struct {
	Path    string          `json:"path"`
	Header  waveform.Header `json:"header"`
	Dropped int             `json:"dropped"`
	Catalog []CatalogCheck  `json:"catalog"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyFlagOverrides(cmd.Flags(), cfg); err != nil {
		return err
	}
	path, err := schematicPath(args, cfg)
	if err != nil {
		return err
	}
	cat, err := cfg.Catalog()
	if err != nil {
		return err
	}
	mode, err := cfg.HeaderMode()
	if err != nil {
		return err
	}

	ins, err := inspectRaw(rawBase(path)+waveform.RawExt, cat, mode)
	if err != nil {
		return err
	}

	if inspectJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(ins)
	}
	renderInspection(cmd.OutOrStdout(), ins)
	return nil
}

// inspectRaw parses the file with just its first variable, so a catalog that
// does not fit the file is reported rather than rejected.
func inspectRaw(path string, cat *waveform.Catalog, mode waveform.HeaderMode) (*Inspection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	probe := waveform.MustCatalog(waveform.Variable{Name: "probe", Index: 0})
	res, err := waveform.Parse(f, probe, waveform.WithHeaderMode(mode))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	declared := make(map[int]string, len(res.Header.Declared))
	for _, d := range res.Header.Declared {
		declared[d.Index] = d.Name
	}

	ins := &Inspection{Path: path, Header: res.Header, Dropped: res.Dropped}
	for _, v := range cat.Sorted() {
		name, ok := declared[v.Index]
		ins.Catalog = append(ins.Catalog, CatalogCheck{
			Variable: v,
			Declared: name,
			Match:    ok && name == v.Name,
		})
	}
	return ins, nil
}

func renderInspection(w io.Writer, ins *Inspection) {
	fmt.Fprintln(w, TitleStyle.Render(ins.Path))
	fmt.Fprintf(w, "Variables: %d   Points: %s   Header lines: %d\n",
		ins.Header.NumVariables, formatNumber(ins.Header.NumPoints), ins.Header.Length)
	for _, key := range []string{"Title", "Plotname", "Date"} {
		if v, ok := ins.Header.Field(key); ok {
			fmt.Fprintf(w, "%s\n", SubtitleStyle.Render(key+": "+v))
		}
	}
	if ins.Dropped > 0 {
		fmt.Fprintln(w, WarningStyle.Render(fmt.Sprintf("Incomplete trailing record: %d", ins.Dropped)))
	}
	fmt.Fprintln(w)

	rows := make([][]string, 0, len(ins.Catalog))
	for _, c := range ins.Catalog {
		status := SuccessStyle.Render("ok")
		switch {
		case c.Declared == "":
			status = ErrorStyle.Render("missing")
		case !c.Match:
			status = WarningStyle.Render("name differs")
		}
		rows = append(rows, []string{strconv.Itoa(c.Variable.Index), c.Variable.Name, c.Declared, status})
	}
	fmt.Fprintln(w, renderTable([]string{"Index", "Catalog", "Declared", "Status"}, rows))
}

// renderTable draws a bordered table in the CLI styles.
func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(BorderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return HeaderStyle
			}
			return CellStyle
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}
