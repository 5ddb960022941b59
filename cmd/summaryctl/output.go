package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/tendant/summary-content/pkg/summarycontent"
	"gopkg.in/yaml.v3"
)

func validOutput(format string) bool {
	switch format {
	case "table", "json", "yaml":
		return true
	}
	return false
}

func writeSummaries(w io.Writer, format string, result *summarycontent.PaginatedSummaries) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "yaml":
		return writeYAML(w, result)
	default:
		return writeTable(w, result)
	}
}

// writeYAML goes through JSON so keys keep their snake_case API names
func writeYAML(w io.Writer, result *summarycontent.PaginatedSummaries) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

func writeTable(w io.Writer, result *summarycontent.PaginatedSummaries) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tNAME\tSPACE\tUPDATED\tVIEWS\tUUID")
	for _, s := range result.Data {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			s.ContentType, s.Name, s.Space.Name, s.LastUpdatedAt.Format("2006-01-02 15:04"), s.Views, s.UUID)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if p := result.Pagination; p != nil {
		_, err := fmt.Fprintf(w, "\nPage %d of %d (%d results)\n", p.Page, p.TotalPageCount, p.TotalResults)
		return err
	}
	return nil
}
