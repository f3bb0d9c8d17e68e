package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/orion/internal/models"
	"github.com/dmitrijs2005/orion/internal/publish"
	"github.com/dmitrijs2005/orion/internal/reconcile"
	"gopkg.in/yaml.v3"
)

// Format selects how listings are printed.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// encode writes v as JSON or YAML. It reports false for table output so
// the caller can print its own table.
func encode(w io.Writer, f Format, v any) (bool, error) {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	case FormatTable, "":
		return false, nil
	}
	return true, fmt.Errorf("unknown format %q (table, json, yaml)", f)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func renderReports(w io.Writer, f Format, reports []reconcile.Report) error {
	if reports == nil {
		reports = []reconcile.Report{}
	}
	if done, err := encode(w, f, reports); done {
		return err
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "FOLDER\tTARGET\tDB\tID\tHEALTH")
	healthy := 0
	for _, r := range reports {
		if r.Healthy() {
			healthy++
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Folder, r.Target, r.DBStatus, r.IDStatus, r.Health())
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d folders, %d healthy, %d drifted\n", len(reports), healthy, len(reports)-healthy)
	return err
}

func renderResults(w io.Writer, results []reconcile.Result) {
	for _, res := range results {
		status := "done"
		if res.Aborted {
			status = "aborted"
		}
		fmt.Fprintf(w, "%s: %s\n", res.Report.Folder, status)
		for _, o := range res.Outcomes {
			line := fmt.Sprintf("  %-12s %s", o.Step, o.Status)
			if o.Detail != "" {
				line += " (" + o.Detail + ")"
			}
			if o.Err != nil {
				line += ": " + o.Err.Error()
			}
			fmt.Fprintln(w, line)
		}
	}
}

func renderShots(w io.Writer, f Format, shots []models.Shot) error {
	if shots == nil {
		shots = []models.Shot{}
	}
	if done, err := encode(w, f, shots); done {
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "CODE\tFRAMES\tUSER\tPATH\tDESCRIPTION")
	for _, s := range shots {
		fmt.Fprintf(tw, "%s\t%d-%d\t%s\t%s\t%s\n", s.Code, s.FrameStart, s.FrameEnd, s.UserAssigned, s.ShotPath, s.Description)
	}
	return tw.Flush()
}

func renderShot(w io.Writer, s *models.Shot, linked []models.Asset) error {
	tw := newTable(w)
	rows := [][2]string{
		{"Code", s.Code},
		{"ID", s.ID},
		{"Frames", fmt.Sprintf("%d-%d", s.FrameStart, s.FrameEnd)},
		{"User", s.UserAssigned},
		{"Path", s.ShotPath},
		{"Description", s.Description},
		{"Discord thread", s.DiscordThreadID},
		{"Thumbnail", s.ThumbnailPath},
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s:\t%s\n", r[0], r[1])
	}
	names := make([]string, 0, len(linked))
	for _, a := range linked {
		names = append(names, a.Name)
	}
	fmt.Fprintf(tw, "Assets:\t%s\n", strings.Join(names, ", "))
	return tw.Flush()
}

func renderAssets(w io.Writer, f Format, assets []models.Asset) error {
	if assets == nil {
		assets = []models.Asset{}
	}
	if done, err := encode(w, f, assets); done {
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "NAME\tTYPE\tID\tPATH")
	for _, a := range assets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.Name, a.Type, a.ID, a.Path)
	}
	return tw.Flush()
}

func renderAsset(w io.Writer, a *models.Asset) error {
	tw := newTable(w)
	for _, r := range [][2]string{
		{"Name", a.Name},
		{"ID", a.ID},
		{"Type", a.Type},
		{"Path", a.Path},
		{"Description", a.Description},
		{"Thumbnail", a.ThumbnailPath},
		{"User", a.UserAssigned},
	} {
		fmt.Fprintf(tw, "%s:\t%s\n", r[0], r[1])
	}
	return tw.Flush()
}

type exportListing struct {
	Items   []publish.Item   `json:"items" yaml:"items"`
	History []models.Publish `json:"history" yaml:"history"`
}

func renderExports(w io.Writer, f Format, items []publish.Item, history []models.Publish) error {
	if items == nil {
		items = []publish.Item{}
	}
	if history == nil {
		history = []models.Publish{}
	}
	if done, err := encode(w, f, exportListing{Items: items, History: history}); done {
		return err
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "NAME\tSTATE")
	for _, it := range items {
		state := "export"
		if it.Published {
			state = "published"
		}
		fmt.Fprintf(tw, "%s\t%s\n", it.Name, state)
	}
	if len(history) > 0 {
		fmt.Fprintln(tw, "\nPUBLISHED\tBY\tAT\tDIGEST")
		for _, p := range history {
			digest := p.Digest
			if len(digest) > 12 {
				digest = digest[:12]
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.PublishedPath, p.PublishedBy, p.PublishedAt.Local().Format("2006-01-02 15:04"), digest)
		}
	}
	return tw.Flush()
}
