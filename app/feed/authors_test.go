package feed

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAuthorsCSV(t *testing.T) {
	path := writeFile(t, "authors.csv", `initials,name,role,page,image
JD,Jane Doe,Reporter,https://news.example.com/jane,https://img.example.com/jane.png
jr, John Roe ,Editor,,
jd,Jane Duplicate,Intern,,
,No Initials,Nobody,,
`)

	authors := LoadAuthors(path)

	if len(authors) != 2 {
		t.Fatalf("Expected 2 authors, got %d", len(authors))
	}

	jane, ok := authors["jd"]
	if !ok {
		t.Fatal("Expected author 'jd'")
	}
	if jane.Name != "Jane Doe" {
		t.Errorf("Expected first occurrence to win, got name '%s'", jane.Name)
	}
	if jane.Page != "https://news.example.com/jane" {
		t.Errorf("Expected page 'https://news.example.com/jane', got '%s'", jane.Page)
	}
	if jane.Image != "https://img.example.com/jane.png" {
		t.Errorf("Expected image, got '%s'", jane.Image)
	}

	john := authors["jr"]
	if john.Name != "John Roe" {
		t.Errorf("Expected trimmed name 'John Roe', got '%s'", john.Name)
	}
	if john.Role != "Editor" {
		t.Errorf("Expected role 'Editor', got '%s'", john.Role)
	}
}

func TestLoadAuthorsTSV(t *testing.T) {
	path := writeFile(t, "authors.tsv", "initials\tname\trole\tpage\timage\nab\tAlex Brown\tPhotographer\thttps://news.example.com/alex\t\n")

	authors := LoadAuthors(path)

	if authors["ab"].Name != "Alex Brown" {
		t.Errorf("Expected 'Alex Brown', got '%s'", authors["ab"].Name)
	}
}

func TestLoadAuthorsYAML(t *testing.T) {
	path := writeFile(t, "authors.yml", `
- [initials, name, role, page, image]
- [CD, Chris Dane, Columnist, "https://news.example.com/chris", ""]
- [ef, Eve Fox]
`)

	authors := LoadAuthors(path)

	if len(authors) != 2 {
		t.Fatalf("Expected 2 authors, got %d", len(authors))
	}
	if authors["cd"].Role != "Columnist" {
		t.Errorf("Expected role 'Columnist', got '%s'", authors["cd"].Role)
	}
	if authors["ef"].Name != "Eve Fox" {
		t.Errorf("Expected short row to be padded, got '%+v'", authors["ef"])
	}
}

func TestLoadAuthorsFailuresYieldEmptyDirectory(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(t.TempDir(), "missing.csv")},
		{"empty path", ""},
		{"malformed csv", writeFile(t, "broken.csv", "initials,name\n\"jd,Jane\n")},
		{"malformed yaml", writeFile(t, "broken.yml", "initials: [unclosed\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authors := LoadAuthors(tt.path)
			if authors == nil {
				t.Fatal("Expected empty directory, got nil")
			}
			if len(authors) != 0 {
				t.Errorf("Expected 0 authors, got %d", len(authors))
			}
		})
	}
}

func TestBuildAuthorDirectoryHeaderOnly(t *testing.T) {
	authors := BuildAuthorDirectory([][]string{{"initials", "name", "role", "page", "image"}})
	if len(authors) != 0 {
		t.Errorf("Expected 0 authors, got %d", len(authors))
	}
}
