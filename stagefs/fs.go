package stagefs

import (
	"context"
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"

	"github.com/stageforge/restage/stagedir"
)

// FS serves a packed archive as a read-only tree built once at open time.
type FS struct {
	archive   *os.File
	modTime   time.Time
	stages    []*stageNode
	byName    map[string]*stageNode
	stageList *fileNode // virtual stage_list.txt at the root
}

// stageNode is one stage directory in the index.
type stageNode struct {
	inode  uint64
	name   string
	files  []*fileNode
	byName map[string]*fileNode
}

// fileNode is one file in the index: either an asset read from the archive
// at offset, or a virtual file served from data.
type fileNode struct {
	inode  uint64
	name   string
	size   uint64
	offset int64
	data   []byte // non-nil for virtual files
}

// New opens the archive at path and builds the index the filesystem serves
// from. The dictionary is optional: entries it cannot resolve appear under
// their "{code:04x}.{tag}" placeholder names.
func New(path string, dict *stagedir.Dictionary) (*FS, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	sr, err := stagedir.NewSectorReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	table, err := stagedir.ReadTable(sr)
	if err != nil {
		f.Close()
		return nil, err
	}

	fsys := &FS{
		archive: f,
		modTime: info.ModTime(),
		byName:  make(map[string]*stageNode),
	}
	inode := uint64(2) // the root directory holds inode 1
	names := make([]string, 0, len(table))
	for _, t := range table {
		names = append(names, t.Name)
		if err := sr.Seek(int64(t.Sector) * stagedir.SectorSize); err != nil {
			f.Close()
			return nil, err
		}
		st, err := stagedir.ParseStage(sr, t.Name, dict)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("stage %s: %w", t.Name, err)
		}
		node := &stageNode{inode: inode, name: t.Name, byName: make(map[string]*fileNode)}
		inode++
		for _, e := range st.Entries {
			fn := &fileNode{
				inode:  inode,
				name:   e.Name,
				size:   uint64(e.Size),
				offset: e.Offset,
			}
			inode++
			node.files = append(node.files, fn)
			node.byName[fn.name] = fn
		}
		cfg := []byte(st.ConfigList())
		cfgNode := &fileNode{
			inode: inode,
			name:  stagedir.ConfigFileName,
			size:  uint64(len(cfg)),
			data:  cfg,
		}
		inode++
		node.files = append(node.files, cfgNode)
		node.byName[cfgNode.name] = cfgNode

		fsys.stages = append(fsys.stages, node)
		fsys.byName[node.name] = node
	}

	var list []byte
	for _, n := range names {
		list = append(list, n...)
		list = append(list, '\n')
	}
	fsys.stageList = &fileNode{
		inode: inode,
		name:  stagedir.StageListName,
		size:  uint64(len(list)),
		data:  list,
	}
	return fsys, nil
}

// Close releases the archive handle. Call it only after the filesystem has
// been unmounted.
func (fsys *FS) Close() error {
	return fsys.archive.Close()
}

// Stages returns the stage names in archive order.
func (fsys *FS) Stages() []string {
	names := make([]string, len(fsys.stages))
	for i, s := range fsys.stages {
		names[i] = s.name
	}
	return names
}

// Root returns the root directory node.
func (fsys *FS) Root() (fs.Node, error) {
	return &rootDir{fsys: fsys}, nil
}

// rootDir lists one directory per stage plus the stage list.
type rootDir struct {
	fsys *FS
}

// Attr returns root directory attributes.
func (d *rootDir) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Inode = 1
	a.Mode = os.ModeDir | 0o555
	a.Mtime = d.fsys.modTime
	a.Ctime = d.fsys.modTime
	return nil
}

// Lookup resolves a stage directory or the stage list file.
func (d *rootDir) Lookup(ctx context.Context, name string) (fs.Node, error) {
	if name == d.fsys.stageList.name {
		return &assetFile{fsys: d.fsys, node: d.fsys.stageList}, nil
	}
	if node, ok := d.fsys.byName[name]; ok {
		return &stageDir{fsys: d.fsys, node: node}, nil
	}
	return nil, syscall.ENOENT
}

// ReadDirAll lists the root directory.
func (d *rootDir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	dirents := []fuse.Dirent{{
		Inode: d.fsys.stageList.inode,
		Name:  d.fsys.stageList.name,
		Type:  fuse.DT_File,
	}}
	for _, s := range d.fsys.stages {
		dirents = append(dirents, fuse.Dirent{
			Inode: s.inode,
			Name:  s.name,
			Type:  fuse.DT_Dir,
		})
	}
	return dirents, nil
}

// stageDir serves one stage's assets and its regenerated config list.
type stageDir struct {
	fsys *FS
	node *stageNode
}

// Attr returns stage directory attributes.
func (d *stageDir) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Inode = d.node.inode
	a.Mode = os.ModeDir | 0o555
	a.Mtime = d.fsys.modTime
	a.Ctime = d.fsys.modTime
	return nil
}

// Lookup resolves one asset inside the stage.
func (d *stageDir) Lookup(ctx context.Context, name string) (fs.Node, error) {
	if node, ok := d.node.byName[name]; ok {
		return &assetFile{fsys: d.fsys, node: node}, nil
	}
	return nil, syscall.ENOENT
}

// ReadDirAll lists the stage's files in archive order.
func (d *stageDir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	dirents := make([]fuse.Dirent, 0, len(d.node.files))
	for _, f := range d.node.files {
		dirents = append(dirents, fuse.Dirent{
			Inode: f.inode,
			Name:  f.name,
			Type:  fuse.DT_File,
		})
	}
	return dirents, nil
}

// assetFile serves one file's bytes, from the archive or from memory.
type assetFile struct {
	fsys *FS
	node *fileNode
}

// Attr returns file attributes.
func (f *assetFile) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Inode = f.node.inode
	a.Mode = 0o444
	a.Size = f.node.size
	a.Mtime = f.fsys.modTime
	a.Ctime = f.fsys.modTime
	return nil
}

// Read serves a byte range of the file.
func (f *assetFile) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	if req.Offset < 0 || req.Offset >= int64(f.node.size) {
		resp.Data = nil
		return nil
	}
	n := min(int64(req.Size), int64(f.node.size)-req.Offset)
	if f.node.data != nil {
		resp.Data = f.node.data[req.Offset : req.Offset+n]
		return nil
	}
	buf := make([]byte, n)
	read, err := f.fsys.archive.ReadAt(buf, f.node.offset+req.Offset)
	if err != nil && err != io.EOF {
		return err
	}
	resp.Data = buf[:read]
	return nil
}
