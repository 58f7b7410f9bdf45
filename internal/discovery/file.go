package discovery

import (
	"context"
	"strings"

	"github.com/sells-group/lead-scout/internal/model"
)

// FileSource serves candidates from a YAML, JSON, CSV or XLSX fixture. The
// file is re-read on every call so edits take effect without a restart.
type FileSource struct {
	path string
}

// NewFileSource creates a FileSource reading from path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name implements Source.
func (s *FileSource) Name() string { return "file" }

// Discover implements Source. Entries whose city is present in the address
// are preferred; when none mention the city every entry is returned.
func (s *FileSource) Discover(ctx context.Context, c model.SearchCriteria) ([]model.BusinessCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	all, err := loadFixture(s.path)
	if err != nil {
		return nil, err
	}

	out := make([]model.BusinessCandidate, 0, len(all))
	for _, b := range all {
		if strings.TrimSpace(b.Name) == "" {
			continue
		}
		if b.Category == "" {
			b.Category = c.Category
		} else if !strings.EqualFold(b.Category, c.Category) {
			continue
		}
		out = append(out, b)
	}

	if local := inCity(out, c.City); len(local) > 0 {
		out = local
	}

	return truncate(out, c.Limit()), nil
}

func inCity(candidates []model.BusinessCandidate, city string) []model.BusinessCandidate {
	city = strings.ToLower(strings.TrimSpace(city))
	if city == "" {
		return nil
	}
	var out []model.BusinessCandidate
	for _, b := range candidates {
		if strings.Contains(strings.ToLower(b.Address), city) {
			out = append(out, b)
		}
	}
	return out
}
