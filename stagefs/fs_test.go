package stagefs

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"bazil.org/fuse"

	"github.com/stageforge/restage/stagedir"
)

// buildArchive packs a small two-stage tree and returns the archive path.
func buildArchive(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	stg01 := filepath.Join(root, "STG01")
	if err := os.MkdirAll(stg01, 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string][]byte{
		stagedir.ConfigFileName: []byte(".resident\nthing.dar\n.cache\nwater.tex\nfloor.tex\n"),
		"thing.dar":             []byte("MODELDATA"),
		"water.tex":             bytes.Repeat([]byte("W"), 100),
		"floor.tex":             bytes.Repeat([]byte("F"), 50),
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(stg01, name), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	stg02 := filepath.Join(root, "STG02")
	if err := os.MkdirAll(stg02, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(stg02, stagedir.ConfigFileName), []byte(".sound\nwave.vab\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(stg02, "wave.vab"), []byte("WAVES"), 0o644); err != nil {
		t.Fatal(err)
	}

	archive := filepath.Join(t.TempDir(), "STAGE.DIR")
	out, err := os.Create(archive)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()
	p := &stagedir.Packer{Root: root}
	if err := p.Pack(out, []string{"STG01", "STG02"}); err != nil {
		t.Fatalf("Pack() error = %v", err)
	}
	return archive
}

func testDict(t *testing.T) *stagedir.Dictionary {
	t.Helper()
	d := stagedir.NewDictionary()
	for _, name := range []string{"water.tex", "floor.tex", "wave.vab"} {
		if err := d.Add(name); err != nil {
			t.Fatal(err)
		}
	}
	return d
}

func TestIndexServesArchiveBytes(t *testing.T) {
	fsys, err := New(buildArchive(t), testDict(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer fsys.Close()

	if got := fsys.Stages(); len(got) != 2 || got[0] != "STG01" || got[1] != "STG02" {
		t.Fatalf("Stages() = %v, want [STG01 STG02]", got)
	}

	ctx := context.Background()
	rootNode, err := fsys.Root()
	if err != nil {
		t.Fatalf("Root() error = %v", err)
	}
	root := rootNode.(*rootDir)

	node, err := root.Lookup(ctx, "STG01")
	if err != nil {
		t.Fatalf("Lookup(STG01) error = %v", err)
	}
	stage := node.(*stageDir)

	dirents, err := stage.ReadDirAll(ctx)
	if err != nil {
		t.Fatalf("ReadDirAll() error = %v", err)
	}
	listed := make(map[string]bool)
	for _, de := range dirents {
		listed[de.Name] = true
	}
	for _, name := range []string{"res_mdl1.dar", "water.tex", "floor.tex", stagedir.ConfigFileName} {
		if !listed[name] {
			t.Errorf("ReadDirAll() missing %s", name)
		}
	}

	fileNode, err := stage.Lookup(ctx, "water.tex")
	if err != nil {
		t.Fatalf("Lookup(water.tex) error = %v", err)
	}
	asset := fileNode.(*assetFile)

	var attr fuse.Attr
	if err := asset.Attr(ctx, &attr); err != nil {
		t.Fatalf("Attr() error = %v", err)
	}
	if attr.Size != 100 {
		t.Errorf("Attr().Size = %d, want 100", attr.Size)
	}

	resp := &fuse.ReadResponse{}
	if err := asset.Read(ctx, &fuse.ReadRequest{Offset: 0, Size: 200}, resp); err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !bytes.Equal(resp.Data, bytes.Repeat([]byte("W"), 100)) {
		t.Errorf("Read() returned %d bytes, wrong content", len(resp.Data))
	}

	resp = &fuse.ReadResponse{}
	if err := asset.Read(ctx, &fuse.ReadRequest{Offset: 90, Size: 50}, resp); err != nil {
		t.Fatalf("Read() at offset error = %v", err)
	}
	if len(resp.Data) != 10 {
		t.Errorf("partial Read() = %d bytes, want 10", len(resp.Data))
	}
}

func TestVirtualFiles(t *testing.T) {
	fsys, err := New(buildArchive(t), testDict(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer fsys.Close()

	ctx := context.Background()
	rootNode, _ := fsys.Root()
	root := rootNode.(*rootDir)

	listNode, err := root.Lookup(ctx, stagedir.StageListName)
	if err != nil {
		t.Fatalf("Lookup(%s) error = %v", stagedir.StageListName, err)
	}
	resp := &fuse.ReadResponse{}
	if err := listNode.(*assetFile).Read(ctx, &fuse.ReadRequest{Offset: 0, Size: 4096}, resp); err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(resp.Data) != "STG01\nSTG02\n" {
		t.Errorf("stage list = %q, want %q", resp.Data, "STG01\nSTG02\n")
	}

	stg, err := root.Lookup(ctx, "STG01")
	if err != nil {
		t.Fatal(err)
	}
	cfgNode, err := stg.(*stageDir).Lookup(ctx, stagedir.ConfigFileName)
	if err != nil {
		t.Fatalf("Lookup(%s) error = %v", stagedir.ConfigFileName, err)
	}
	resp = &fuse.ReadResponse{}
	if err := cfgNode.(*assetFile).Read(ctx, &fuse.ReadRequest{Offset: 0, Size: 4096}, resp); err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	wantCfg := ".resident\nres_mdl1.dar\n.cache\nwater.tex\nfloor.tex\n"
	if string(resp.Data) != wantCfg {
		t.Errorf("virtual config = %q, want %q", resp.Data, wantCfg)
	}
}

func TestLookupMissing(t *testing.T) {
	fsys, err := New(buildArchive(t), testDict(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer fsys.Close()

	ctx := context.Background()
	rootNode, _ := fsys.Root()
	root := rootNode.(*rootDir)

	if _, err := root.Lookup(ctx, "NOSUCH"); err != syscall.ENOENT {
		t.Errorf("Lookup(NOSUCH) error = %v, want ENOENT", err)
	}
	stg, err := root.Lookup(ctx, "STG02")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := stg.(*stageDir).Lookup(ctx, "ghost.tex"); err != syscall.ENOENT {
		t.Errorf("Lookup(ghost.tex) error = %v, want ENOENT", err)
	}
}

func TestNewWithoutDictionaryUsesPlaceholders(t *testing.T) {
	fsys, err := New(buildArchive(t), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer fsys.Close()

	ctx := context.Background()
	rootNode, _ := fsys.Root()
	stg, err := rootNode.(*rootDir).Lookup(ctx, "STG01")
	if err != nil {
		t.Fatal(err)
	}
	dirents, err := stg.(*stageDir).ReadDirAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	// Named entries fall back to their raw "{code:04x}.{tag}" keys.
	found := false
	for _, de := range dirents {
		if de.Name == "water.tex" {
			t.Errorf("dictionary name %q resolved without a dictionary", de.Name)
		}
		if len(de.Name) == 6 && de.Name[4] == '.' && de.Name[5] == 't' {
			found = true
		}
	}
	if !found {
		t.Error("no placeholder names listed")
	}
}
