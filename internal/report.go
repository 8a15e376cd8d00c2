package internal

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// PrintRunSummary renders the per-movie outcome table at the end of a
// download run.
func PrintRunSummary(results []DownloadResult, placeholders, backdrops int) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Movie", "Downloaded", "Reason"})
	downloaded := 0
	for _, r := range results {
		status := "no"
		if r.Downloaded {
			status = "yes"
			downloaded++
		}
		t.AppendRow(table.Row{r.Folder, status, r.Reason})
	}
	t.AppendFooter(table.Row{
		fmt.Sprintf("%d movies", len(results)),
		fmt.Sprintf("%d ok", downloaded),
		fmt.Sprintf("%d placeholders, %d backdrops", placeholders, backdrops),
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignCenter},
	})
	t.Render()
}

// WriteRunReport writes the per-movie outcomes as CSV.
func WriteRunReport(path string, results []DownloadResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"folder", "downloaded", "reason"}); err != nil {
		return err
	}
	for _, r := range results {
		downloaded := "false"
		if r.Downloaded {
			downloaded = "true"
		}
		if err := w.Write([]string{r.Folder, downloaded, r.Reason}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ExportMovieList writes the resolved movie catalog as a JSON file.
func ExportMovieList(path string, movies []MovieRecord) error {
	if err := WriteJSONFile(path, movies); err != nil {
		return fmt.Errorf("failed to export movie list: %w", err)
	}
	UmmLog(INFO, "Report", "Exported %d movies to %s", len(movies), path)
	return nil
}
