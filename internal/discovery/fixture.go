package discovery

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/lead-scout/internal/model"
)

// fixtureDoc is the YAML and JSON layout read by FileSource. A search result
// exported as JSON can be loaded back through its "leads" key.
type fixtureDoc struct {
	Businesses []model.BusinessCandidate `yaml:"businesses" json:"businesses"`
	Leads      []model.BusinessCandidate `yaml:"-" json:"leads"`
}

// loadFixture reads candidates from a .yaml/.yml, .json, .csv or .xlsx file.
func loadFixture(path string) ([]model.BusinessCandidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "file source: read %s", path)
	}

	var out []model.BusinessCandidate
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		var doc fixtureDoc
		if err = yaml.Unmarshal(data, &doc); err == nil {
			out = doc.Businesses
		}
	case ".json":
		out, err = decodeJSONFixture(data)
	case ".csv":
		var rows [][]string
		if rows, err = readCSV(bytes.NewReader(data)); err == nil {
			out = fromRows(rows)
		}
	case ".xlsx":
		var rows [][]string
		if rows, err = readXLSX(data); err == nil {
			out = fromRows(rows)
		}
	default:
		return nil, eris.Errorf("file source: unsupported fixture type %q", ext)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "file source: parse %s", path)
	}
	return out, nil
}

func decodeJSONFixture(data []byte) ([]model.BusinessCandidate, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []model.BusinessCandidate
		err := json.Unmarshal(trimmed, &list)
		return list, err
	}
	var doc fixtureDoc
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, err
	}
	return append(doc.Businesses, doc.Leads...), nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // allow variable fields
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, eris.Wrap(err, "csv: read row")
		}
		rows = append(rows, record)
	}
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("xlsx: workbook has no sheets")
	}

	var rows [][]string
	for _, row := range f.Sheets[0].Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// columnAliases maps normalized header names, including the export column
// titles, to candidate fields.
var columnAliases = map[string]string{
	"name":            "name",
	"business":        "name",
	"business_name":   "name",
	"category":        "category",
	"phone":           "phone",
	"email":           "email",
	"address":         "address",
	"website":         "website",
	"google_maps":     "google_maps_url",
	"google_maps_url": "google_maps_url",
	"facebook":        "facebook_url",
	"facebook_url":    "facebook_url",
	"instagram":       "instagram_url",
	"instagram_url":   "instagram_url",
	"justdial_url":    "justdial_url",
	"indiamart_url":   "indiamart_url",
}

// fromRows converts a header row plus data rows into candidates. Unknown
// columns are ignored.
func fromRows(rows [][]string) []model.BusinessCandidate {
	if len(rows) == 0 {
		return nil
	}

	fields := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
		fields[i] = columnAliases[key]
	}

	out := make([]model.BusinessCandidate, 0, len(rows)-1)
	for _, row := range rows[1:] {
		var c model.BusinessCandidate
		for i, v := range row {
			if i >= len(fields) {
				break
			}
			v = strings.TrimSpace(v)
			switch fields[i] {
			case "name":
				c.Name = v
			case "category":
				c.Category = v
			case "phone":
				c.Phone = v
			case "email":
				c.Email = v
			case "address":
				c.Address = v
			case "website":
				c.Website = v
			case "google_maps_url":
				c.GoogleMapsURL = v
			case "facebook_url":
				c.FacebookURL = v
			case "instagram_url":
				c.InstagramURL = v
			case "justdial_url":
				c.JustdialURL = v
			case "indiamart_url":
				c.IndiamartURL = v
			}
		}
		out = append(out, c)
	}
	return out
}
