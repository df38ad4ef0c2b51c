package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const rosterColumns = 5

// LoadAuthors reads the authors roster at path. Columns are initials, name,
// role, page and image; the first row is a header. Failures are logged and
// yield an empty directory: callers treat that as "no known authors".
func LoadAuthors(path string) AuthorDirectory {
	rows, err := readRoster(path)
	if err != nil {
		slog.Error("Could not process the authors roster", "path", path, "error", err)
		return AuthorDirectory{}
	}

	authors := BuildAuthorDirectory(rows)
	slog.Debug("Authors roster loaded", "path", path, "authors", len(authors))
	return authors
}

// BuildAuthorDirectory converts roster rows (header included) into a
// directory. Duplicate initials keep the first occurrence.
func BuildAuthorDirectory(rows [][]string) AuthorDirectory {
	authors := make(AuthorDirectory)
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) == 0 {
			continue
		}

		padded := make([]string, rosterColumns)
		for j := 0; j < rosterColumns && j < len(row); j++ {
			padded[j] = strings.TrimSpace(row[j])
		}

		initials := strings.ToLower(padded[0])
		if initials == "" {
			slog.Warn("Skipping authors roster row without initials", "row", i+1)
			continue
		}
		if _, exists := authors[initials]; exists {
			slog.Warn("Duplicate initials on authors roster", "initials", initials, "row", i+1)
			continue
		}

		authors[initials] = AuthorRecord{
			Initials: initials,
			Name:     padded[1],
			Role:     padded[2],
			Page:     padded[3],
			Image:    padded[4],
		}
	}
	return authors
}

func readRoster(path string) ([][]string, error) {
	if path == "" {
		return nil, fmt.Errorf("authors roster path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return readYAMLRoster(file)
	case ".tsv":
		return readDelimitedRoster(file, '\t')
	default:
		return readDelimitedRoster(file, ',')
	}
}

func readDelimitedRoster(r io.Reader, comma rune) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse roster: %w", err)
	}
	return rows, nil
}

// readYAMLRoster accepts a YAML sequence of rows, each row a sequence of cells.
func readYAMLRoster(r io.Reader) ([][]string, error) {
	var rows [][]string
	if err := yaml.NewDecoder(r).Decode(&rows); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse YAML roster: %w", err)
	}
	return rows, nil
}
