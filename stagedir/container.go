package stagedir

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Packer builds a container archive from a root directory holding one
// subdirectory per stage.
type Packer struct {
	Root string       // directory containing the stage subdirectories
	Log  *slog.Logger // nil discards
}

func (p *Packer) logger() *slog.Logger {
	if p.Log != nil {
		return p.Log
	}
	return slog.New(slog.DiscardHandler)
}

// checkStageName enforces the 8-byte ASCII limit of the stage table.
func checkStageName(name string) error {
	if name == "" || len(name) > 8 {
		return fmt.Errorf("stage name %q: must be 1 to 8 bytes", name)
	}
	for i := 0; i < len(name); i++ {
		if name[i] < 0x20 || name[i] >= 0x7F {
			return fmt.Errorf("stage name %q: must be printable ASCII", name)
		}
	}
	return nil
}

// Pack writes the container for the named stages, in order, to w. The
// writer must be at the start of an empty file: the stage table stores
// absolute sector offsets.
func (p *Packer) Pack(w io.WriteSeeker, stages []string) error {
	sw, err := NewSectorWriter(w)
	if err != nil {
		return err
	}
	if sw.Pos() != 0 {
		return fmt.Errorf("pack must start at offset 0, writer is at %d", sw.Pos())
	}
	log := p.logger()

	for _, name := range stages {
		if err := checkStageName(name); err != nil {
			return err
		}
	}

	if err := sw.WriteU32(uint32(len(stages) * 12)); err != nil {
		return err
	}
	// Placeholder table, back-patched once stage sizes are known.
	for range stages {
		if err := sw.Write(make([]byte, 12)); err != nil {
			return err
		}
	}
	if err := sw.Align(SectorSize); err != nil {
		return err
	}
	firstSector := sw.Pos() / SectorSize

	var sectors []int64
	for _, name := range stages {
		log.Info("packing stage", "stage", name)
		n, err := encodeStage(sw, filepath.Join(p.Root, name), log)
		if err != nil {
			return fmt.Errorf("stage %s: %w", name, err)
		}
		if err := sw.Align(SectorSize); err != nil {
			return err
		}
		sectors = append(sectors, (n+SectorSize-1)/SectorSize)
	}
	end := sw.Pos()

	if err := sw.Seek(4); err != nil {
		return err
	}
	off := firstSector
	for i, name := range stages {
		if err := sw.WriteFixedString(name, 8); err != nil {
			return err
		}
		if err := sw.WriteU32(uint32(off)); err != nil {
			return err
		}
		log.Debug("stage table entry", "stage", name, "sector", off)
		off += sectors[i]
	}
	return sw.Seek(end)
}

// TableEntry is one stage table record: the stage name and its sector
// offset from the start of the archive, in units of SectorSize.
type TableEntry struct {
	Name   string
	Sector uint32
}

// ReadTable parses the container's stage table at r's current position,
// which must be the start of the archive.
func ReadTable(r *SectorReader) ([]TableEntry, error) {
	size, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	if size%12 != 0 {
		return nil, fmt.Errorf("table size %d: %w", size, ErrCorruptHeader)
	}
	var table []TableEntry
	for range size / 12 {
		name, err := r.ReadFixedString(8)
		if err != nil {
			return nil, err
		}
		sector, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		table = append(table, TableEntry{Name: name, Sector: sector})
	}
	return table, nil
}

// Unpacker extracts a container archive into a root directory, one
// subdirectory per stage.
type Unpacker struct {
	Root string       // output directory, created if missing
	Dict *Dictionary  // resolves name codes; nil fails on any named entry
	Only string       // extract just this stage when non-empty
	Log  *slog.Logger // nil discards
}

func (u *Unpacker) logger() *slog.Logger {
	if u.Log != nil {
		return u.Log
	}
	return slog.New(slog.DiscardHandler)
}

// Unpack extracts the archive read from r into Root. The regenerated stage
// list names every stage, even when Only narrows extraction to one.
func (u *Unpacker) Unpack(r io.ReadSeeker) error {
	sr, err := NewSectorReader(r)
	if err != nil {
		return err
	}
	log := u.logger()

	table, err := ReadTable(sr)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(u.Root, 0o755); err != nil {
		return err
	}
	names := make([]string, len(table))
	for i, t := range table {
		names[i] = t.Name
	}
	if err := WriteStageList(filepath.Join(u.Root, StageListName), names); err != nil {
		return err
	}

	extracted := 0
	for _, t := range table {
		if u.Only != "" && u.Only != t.Name {
			continue
		}
		log.Info("unpacking stage", "stage", t.Name, "sector", t.Sector)
		if err := sr.Seek(int64(t.Sector) * SectorSize); err != nil {
			return err
		}
		if err := decodeStage(sr, filepath.Join(u.Root, t.Name), u.Dict, log); err != nil {
			return fmt.Errorf("stage %s: %w", t.Name, err)
		}
		extracted++
	}
	if u.Only != "" && extracted == 0 {
		return fmt.Errorf("stage %q not present in archive", u.Only)
	}
	log.Info("unpacked", "stages", extracted, "of", len(table))
	return nil
}
