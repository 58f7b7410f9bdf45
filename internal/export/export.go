// Package export renders search results as a terminal table, JSON, CSV or XLSX.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/lead-scout/internal/model"
)

// Format names an output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatXLSX  Format = "xlsx"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", eris.Errorf("export: unknown format %q (want table, json, csv or xlsx)", s)
	}
}

// Columns is the header row shared by every tabular format.
var Columns = []string{
	"Business", "Category", "Phone", "Email", "Address", "Website",
	"Status", "Score", "Issues", "Google Maps", "Facebook", "Instagram",
}

func record(l model.ClassifiedLead) []string {
	score := "-"
	if l.QualityScore != nil {
		score = strconv.Itoa(*l.QualityScore)
	}
	return []string{
		l.Name,
		l.Category,
		l.Phone,
		l.Email,
		l.Address,
		l.Website,
		string(l.WebsiteStatus),
		score,
		strings.Join(l.WebsiteIssues, "; "),
		l.GoogleMapsURL,
		l.FacebookURL,
		l.InstagramURL,
	}
}

// Write renders result to w in the given format.
func Write(w io.Writer, f Format, result *model.SearchResult) error {
	switch f {
	case FormatTable:
		Table(w, result.Leads)
		return nil
	case FormatJSON:
		return JSON(w, result)
	case FormatCSV:
		return CSV(w, result.Leads)
	case FormatXLSX:
		return XLSX(w, result.Leads)
	default:
		return eris.Errorf("export: unknown format %q", f)
	}
}

// Table renders a compact terminal table. Long columns are left out.
func Table(w io.Writer, leads []model.ClassifiedLead) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Business", "Phone", "Website", "Status", "Score", "Issues"})

	for i, l := range leads {
		r := record(l)
		issues := len(l.WebsiteIssues)
		t.AppendRow(table.Row{i + 1, r[0], r[2], r[5], r[6], r[7], issues})
	}
	t.AppendFooter(table.Row{"", "Total", "", "", "", "", len(leads)})
	t.Render()
}

// JSON writes the result as indented JSON.
func JSON(w io.Writer, result *model.SearchResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return eris.Wrap(err, "export: encode json")
	}
	return nil
}

// CSV writes one header row and one row per lead.
func CSV(w io.Writer, leads []model.ClassifiedLead) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, l := range leads {
		if err := cw.Write(record(l)); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

// XLSX writes a single-sheet workbook named "Leads".
func XLSX(w io.Writer, leads []model.ClassifiedLead) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Leads")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	addRow(sheet, Columns)
	for _, l := range leads {
		addRow(sheet, record(l))
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "export: write xlsx")
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, values []string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}

// Assessment renders a single website audit as a two-column table.
func Assessment(w io.Writer, url string, a model.QualityAssessment, status model.WebsiteStatus) {
	yesNo := func(b bool) string {
		if b {
			return "yes"
		}
		return "no"
	}
	loadTime := "-"
	if a.LoadTimeMs != nil {
		loadTime = strconv.FormatInt(*a.LoadTimeMs, 10) + " ms"
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(url)
	t.AppendRows([]table.Row{
		{"Status", string(status)},
		{"Score", a.Score},
		{"HTTPS", yesNo(a.HasSSL)},
		{"Mobile friendly", yesNo(a.IsMobileFriendly)},
		{"Contact info", yesNo(a.HasContactInfo)},
		{"Modern", yesNo(a.IsModern)},
		{"Load time", loadTime},
	})
	if len(a.Issues) > 0 {
		t.AppendSeparator()
		for _, issue := range a.Issues {
			t.AppendRow(table.Row{"Issue", issue})
		}
	}
	t.Render()
}
