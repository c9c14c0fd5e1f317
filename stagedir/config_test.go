package stagedir

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeStageDir lays down a stage directory with a config list and asset
// files for pack-side tests.
func writeStageDir(t *testing.T, root, name, cfg string, files map[string][]byte) string {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("creating stage dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(cfg), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	for fname, data := range files {
		if err := os.WriteFile(filepath.Join(dir, fname), data, 0o644); err != nil {
			t.Fatalf("writing %s: %v", fname, err)
		}
	}
	return dir
}

func TestReadConfigOrder(t *testing.T) {
	tests := []struct {
		name      string
		cfg       string
		files     map[string][]byte
		wantErr   bool
		wantOrder bool // expect ErrConfigOrder specifically
		wantCount int
	}{
		{
			name:      "single section",
			cfg:       ".resident\na.kmd\n",
			files:     map[string][]byte{"a.kmd": []byte("x")},
			wantCount: 1,
		},
		{
			name: "all four sections",
			cfg:  ".resident\na.kmd\n.nocache\nb.tex\n.cache\nc.pcx\n.sound\nd.vab\n",
			files: map[string][]byte{
				"a.kmd": []byte("1"), "b.tex": []byte("2"),
				"c.pcx": []byte("3"), "d.vab": []byte("4"),
			},
			wantCount: 4,
		},
		{
			name:      "forward skip is legal",
			cfg:       ".nocache\nb.tex\n.sound\nd.vab\n",
			files:     map[string][]byte{"b.tex": []byte("2"), "d.vab": []byte("4")},
			wantCount: 2,
		},
		{
			name:      "cache may open the config",
			cfg:       ".cache\nc.pcx\n",
			files:     map[string][]byte{"c.pcx": []byte("3")},
			wantCount: 1,
		},
		{
			name:      "blank lines are skipped",
			cfg:       "\n.resident\n\na.kmd\n\n",
			files:     map[string][]byte{"a.kmd": []byte("x")},
			wantCount: 1,
		},
		{
			name:      "repeated directive",
			cfg:       ".resident\n.resident\n",
			wantErr:   true,
			wantOrder: true,
		},
		{
			name:      "backward directive",
			cfg:       ".sound\nd.vab\n.cache\n",
			files:     map[string][]byte{"d.vab": []byte("4")},
			wantErr:   true,
			wantOrder: true,
		},
		{
			name:      "asset before any directive",
			cfg:       "a.kmd\n",
			wantErr:   true,
			wantOrder: true,
		},
		{
			name:    "unknown directive",
			cfg:     ".residnet\n",
			wantErr: true,
		},
		{
			name:    "asset without extension",
			cfg:     ".resident\nnoext\n",
			wantErr: true,
		},
		{
			name:    "missing asset file",
			cfg:     ".resident\nghost.kmd\n",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeStageDir(t, t.TempDir(), "STG01", tt.cfg, tt.files)
			files, err := readConfig(dir)
			if tt.wantErr {
				if err == nil {
					t.Fatal("readConfig() succeeded, want error")
				}
				if tt.wantOrder && !errors.Is(err, ErrConfigOrder) {
					t.Errorf("readConfig() error = %v, want ErrConfigOrder", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("readConfig() error = %v", err)
			}
			if len(files) != tt.wantCount {
				t.Errorf("readConfig() returned %d files, want %d", len(files), tt.wantCount)
			}
		})
	}
}

func TestReadConfigSections(t *testing.T) {
	dir := writeStageDir(t, t.TempDir(), "STG01",
		".resident\na.kmd\n.cache\nb.pcx\nc.pcx\n",
		map[string][]byte{
			"a.kmd": []byte("aaaa"),
			"b.pcx": []byte("bb"),
			"c.pcx": []byte("cccccc"),
		})
	files, err := readConfig(dir)
	if err != nil {
		t.Fatalf("readConfig() error = %v", err)
	}
	want := []struct {
		name    string
		section Section
		size    uint32
	}{
		{"a.kmd", SectionResident, 4},
		{"b.pcx", SectionCache, 2},
		{"c.pcx", SectionCache, 6},
	}
	if len(files) != len(want) {
		t.Fatalf("readConfig() returned %d files, want %d", len(files), len(want))
	}
	for i, w := range want {
		f := files[i]
		if f.name != w.name || f.section != w.section || f.size != w.size {
			t.Errorf("files[%d] = {%s %c %d}, want {%s %c %d}",
				i, f.name, f.section, f.size, w.name, w.section, w.size)
		}
	}
}

func TestWriteStageConfig(t *testing.T) {
	dir := t.TempDir()
	files := []stageFile{
		{name: "a.kmd", section: SectionResident},
		{name: "b.pcx", section: SectionCache},
		{name: "c.pcx", section: SectionCache},
		{name: CacheEndName, section: SectionCache},
		{name: "demo.bin", section: SectionSound},
		{name: "d.vab", section: SectionSound},
	}
	if err := writeStageConfig(dir, files); err != nil {
		t.Fatalf("writeStageConfig() error = %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(dir, ConfigFileName))
	if err != nil {
		t.Fatalf("reading config: %v", err)
	}
	want := ".resident\n" +
		"a.kmd\n" +
		".cache\n" +
		"b.pcx\n" +
		"c.pcx\n" +
		".nocache\n" + // .bin is always listed under .nocache
		"demo.bin\n" +
		".sound\n" +
		"d.vab\n"
	if string(raw) != want {
		t.Errorf("regenerated config = %q, want %q", raw, want)
	}
}

func TestStageListRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), StageListName)
	names := []string{"STG01", "STG02", "WEAPON"}
	if err := WriteStageList(path, names); err != nil {
		t.Fatalf("WriteStageList() error = %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading list: %v", err)
	}
	if string(raw) != "STG01\nSTG02\nWEAPON\n" {
		t.Errorf("list contents = %q", raw)
	}

	got, err := ReadStageList(path)
	if err != nil {
		t.Fatalf("ReadStageList() error = %v", err)
	}
	if len(got) != len(names) {
		t.Fatalf("ReadStageList() returned %d names, want %d", len(got), len(names))
	}
	for i := range names {
		if got[i] != names[i] {
			t.Errorf("names[%d] = %q, want %q", i, got[i], names[i])
		}
	}
}
