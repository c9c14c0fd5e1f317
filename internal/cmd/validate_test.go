package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stageforge/restage/stagedir"
)

// buildArchive packs a one-stage tree and returns the archive path.
func buildArchive(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	stage := filepath.Join(root, "STG01")
	if err := os.MkdirAll(stage, 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"thing.dar": "MODELDATA",
		"water.tex": strings.Repeat("W", 100),
		"floor.tex": strings.Repeat("F", 50),
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(stage, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	cfg := ".resident\nthing.dar\n.cache\nwater.tex\nfloor.tex\n"
	if err := os.WriteFile(filepath.Join(stage, stagedir.ConfigFileName), []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	archive := filepath.Join(t.TempDir(), "STAGE.DIR")
	out, err := os.Create(archive)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()
	p := &stagedir.Packer{Root: root}
	if err := p.Pack(out, []string{"STG01"}); err != nil {
		t.Fatalf("Pack() error = %v", err)
	}
	return archive
}

// mutate overwrites bytes of the archive in place.
func mutate(t *testing.T, path string, offset int64, data []byte) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := f.WriteAt(data, offset); err != nil {
		t.Fatal(err)
	}
}

func TestValidateArchive(t *testing.T) {
	t.Run("intact archive", func(t *testing.T) {
		archive := buildArchive(t)
		stages, problems := validateArchive(archive)
		if stages != 1 {
			t.Errorf("stages checked = %d, want 1", stages)
		}
		if len(problems) != 0 {
			t.Errorf("problems = %v, want none", problems)
		}
	})

	t.Run("missing archive", func(t *testing.T) {
		_, problems := validateArchive(filepath.Join(t.TempDir(), "nope"))
		if len(problems) != 1 || !strings.Contains(problems[0], "Failed to open") {
			t.Errorf("problems = %v, want open failure", problems)
		}
	})

	corruptions := []struct {
		name    string
		corrupt func(t *testing.T, archive string)
		want    string
	}{
		{
			name: "table size not a multiple of twelve",
			corrupt: func(t *testing.T, archive string) {
				mutate(t, archive, 0, []byte{10, 0, 0, 0})
			},
			want: "Failed to read stage table",
		},
		{
			name: "stage offset into the table",
			corrupt: func(t *testing.T, archive string) {
				// Sector field of the first table row, after its 8-byte name.
				mutate(t, archive, 4+8, []byte{0, 0, 0, 0})
			},
			want: "points into the stage table",
		},
		{
			name: "stage offset beyond the archive",
			corrupt: func(t *testing.T, archive string) {
				mutate(t, archive, 4+8, []byte{0xFF, 0, 0, 0})
			},
			want: "beyond the archive",
		},
		{
			name: "stage offset off by one",
			corrupt: func(t *testing.T, archive string) {
				mutate(t, archive, 4+8, []byte{2, 0, 0, 0})
			},
			want: "expected 1",
		},
		{
			name: "corrupt section tag",
			corrupt: func(t *testing.T, archive string) {
				// Tag byte of the stage's first entry record: sector 1, past
				// the 4-byte sub-header and the record's 2-byte name code.
				mutate(t, archive, stagedir.SectorSize+4+2, []byte{'x'})
			},
			want: "Stage STG01",
		},
		{
			name: "truncated payload",
			corrupt: func(t *testing.T, archive string) {
				info, err := os.Stat(archive)
				if err != nil {
					t.Fatal(err)
				}
				if err := os.Truncate(archive, info.Size()-100); err != nil {
					t.Fatal(err)
				}
			},
			want: "not a multiple",
		},
	}

	for _, tt := range corruptions {
		t.Run(tt.name, func(t *testing.T) {
			archive := buildArchive(t)
			tt.corrupt(t, archive)
			_, problems := validateArchive(archive)
			if len(problems) == 0 {
				t.Fatal("no problems reported for corrupted archive")
			}
			found := false
			for _, p := range problems {
				if strings.Contains(p, tt.want) {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("problems = %v, want one containing %q", problems, tt.want)
			}
		})
	}
}
