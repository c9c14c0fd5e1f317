package stagedir

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
)

// Stage is the decoded geometry of one stage: its sub-header sector counts
// and every asset entry with resolved name, size, and absolute payload
// offset. Cache-run trailers are resolved away during parsing and do not
// appear in Entries.
type Stage struct {
	Name          string
	HeaderSectors int
	TotalSectors  int
	Entries       []Entry
}

// ConfigList renders the stage's entries as the data.cnf text unpacking
// would regenerate for it.
func (s *Stage) ConfigList() string {
	files := make([]stageFile, len(s.Entries))
	for i, e := range s.Entries {
		files[i] = stageFile{name: e.Name, section: e.Section}
	}
	return configList(files)
}

// stageFile is one parsed entry record with its resolved name. value keeps
// the raw stored field: a payload size for non-cache entries, a cumulative
// run offset for cache entries.
type stageFile struct {
	name    string
	section Section
	value   uint32
}

// encodeStage writes one stage's entry table and payload at w's current
// position, which must be sector-aligned, and returns the stage's total
// byte length including final padding.
func encodeStage(w *SectorWriter, dir string, log *slog.Logger) (int64, error) {
	files, err := readConfig(dir)
	if err != nil {
		return 0, err
	}

	start := w.Pos()
	// Sub-header placeholder, back-patched once the sector counts are known.
	if err := w.WriteU32(0); err != nil {
		return 0, err
	}

	inCache := false
	var runSize uint32
	for i, f := range files {
		code := uint16(0)
		if f.ext != "dar" {
			if code, err = NameCode(f.base); err != nil {
				return 0, err
			}
		}
		tag := byte(f.section)
		if f.ext == "bin" {
			// .bin is always tagged nocache, whatever section lists it.
			tag = byte(SectionNoCache)
		}
		value := f.size
		if f.section == SectionCache {
			if !inCache {
				inCache = true
				runSize = 0
			}
			value = runSize
			runSize += f.size
		}
		if err := w.writeRecord(record{code, tag, f.ext[0], value}); err != nil {
			return 0, err
		}
		log.Debug("entry", "name", f.name, "section", f.section.String(), "value", value)
		if inCache && (i+1 == len(files) || files[i+1].section != SectionCache) {
			inCache = false
			if err := w.writeRecord(record{0, byte(SectionCache), cacheEndExt, runSize}); err != nil {
				return 0, err
			}
		}
	}
	if err := w.Align(SectorSize); err != nil {
		return 0, err
	}
	headerEnd := w.Pos()
	headerSectors := (headerEnd - start) / SectorSize
	if headerSectors != 1 {
		log.Warn("stage header exceeds one sector; stock readers assume exactly one",
			"sectors", headerSectors, "entries", len(files))
	}

	for i, f := range files {
		data, err := os.ReadFile(filepath.Join(dir, f.name))
		if err != nil {
			return 0, err
		}
		if int64(len(data)) != int64(f.size) {
			return 0, fmt.Errorf("%s: size changed while packing (%d, expected %d)", f.name, len(data), f.size)
		}
		if err := w.Write(data); err != nil {
			return 0, err
		}
		if f.section != SectionCache || i+1 == len(files) || files[i+1].section != SectionCache {
			if err := w.Align(SectorSize); err != nil {
				return 0, err
			}
		}
	}

	total := w.Pos()
	totalSectors := (total - start) / SectorSize
	if totalSectors > math.MaxInt16 {
		return 0, fmt.Errorf("stage in %s: %d sectors overflow the sub-header", dir, totalSectors)
	}
	if err := w.Seek(start); err != nil {
		return 0, err
	}
	if err := w.WriteI16(int16(headerSectors)); err != nil {
		return 0, err
	}
	if err := w.WriteI16(int16(totalSectors)); err != nil {
		return 0, err
	}
	if err := w.Seek(total); err != nil {
		return 0, err
	}
	log.Debug("stage sized", "headerBytes", headerEnd-start, "totalBytes", total-start)
	return total - start, nil
}

// stageHeader is a parsed stage sub-header and entry table.
type stageHeader struct {
	headerSectors int
	totalSectors  int
	files         []stageFile
}

// readStageEntries parses a stage's sub-header and entry records at r's
// current position, resolving entry names. Named entries require a
// dictionary hit when strict is set; otherwise the unresolved
// "{code:04x}.{tag}" key stands in for the name so callers can keep going
// without a dictionary.
func readStageEntries(r *SectorReader, dict *Dictionary, strict bool) (*stageHeader, error) {
	h, err := r.ReadI16()
	if err != nil {
		return nil, err
	}
	t, err := r.ReadI16()
	if err != nil {
		return nil, err
	}
	hdr := &stageHeader{headerSectors: int(h), totalSectors: int(t)}

	// Name synthesis state for anonymous .dar entries: the prefix flips to
	// "res" permanently once any resident record has been seen.
	mdl, tex := 1, 1
	prefix := "stg"
	for {
		rec, err := r.readRecord()
		if err != nil {
			return nil, err
		}
		if rec.tag == 0 {
			break
		}
		sec := Section(rec.tag)
		if !sec.Valid() {
			return nil, fmt.Errorf("section tag %#02x: %w", rec.tag, ErrCorruptEntry)
		}
		if (rec.ext < 'a' || rec.ext > 'z') && rec.ext != cacheEndExt {
			return nil, fmt.Errorf("extension tag %#02x: %w", rec.ext, ErrCorruptEntry)
		}
		if sec == SectionResident {
			prefix = "res"
		}
		var name string
		switch {
		case rec.code != 0:
			name, err = dict.Lookup(rec.code, rec.ext)
			if err != nil {
				if strict {
					return nil, err
				}
				name = dictKey(rec.code, rec.ext)
			}
		case rec.ext != cacheEndExt && (sec == SectionCache || sec == SectionResident):
			name = fmt.Sprintf("%s_mdl%d.dar", prefix, mdl)
			mdl++
		case rec.ext != cacheEndExt && sec == SectionNoCache:
			name = fmt.Sprintf("%s_tex%d.dar", prefix, tex)
			tex++
		default:
			name = CacheEndName
		}
		hdr.files = append(hdr.files, stageFile{name: name, section: sec, value: rec.value})
	}
	return hdr, nil
}

// entrySize resolves the true byte length of files[i]. Cache entries store
// cumulative run offsets, so their size is the difference to the next
// record's stored value, with the run trailer supplying the final one.
// i must not index a trailer.
func entrySize(files []stageFile, i int) (uint32, error) {
	f := files[i]
	if f.section != SectionCache {
		return f.value, nil
	}
	if i+1 >= len(files) {
		return 0, fmt.Errorf("cache run missing its trailer: %w", ErrCorruptEntry)
	}
	next := files[i+1].value
	if next < f.value {
		return 0, fmt.Errorf("cache offsets not monotonic (%d then %d): %w", f.value, next, ErrCorruptEntry)
	}
	return next - f.value, nil
}

// decodeStage extracts one stage at r's current position into dir, writing
// every asset plus the regenerated config list.
func decodeStage(r *SectorReader, dir string, dict *Dictionary, log *slog.Logger) error {
	start := r.Pos()
	hdr, err := readStageEntries(r, dict, true)
	if err != nil {
		return err
	}
	if hdr.headerSectors != 1 {
		log.Warn("stage header is not one sector; stock readers assume exactly one",
			"sectors", hdr.headerSectors)
	}
	if err := r.Seek(start + int64(hdr.headerSectors)*SectorSize); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := writeStageConfig(dir, hdr.files); err != nil {
		return err
	}

	for i, f := range hdr.files {
		if f.name == CacheEndName {
			if err := r.Align(SectorSize); err != nil {
				return err
			}
			continue
		}
		size, err := entrySize(hdr.files, i)
		if err != nil {
			return err
		}
		data, err := r.Read(int(size))
		if err != nil {
			return err
		}
		if err := writeFile(filepath.Join(dir, f.name), data); err != nil {
			return err
		}
		log.Debug("extracted", "name", f.name, "section", f.section.String(), "bytes", size)
		if f.section != SectionCache {
			if err := r.Align(SectorSize); err != nil {
				return err
			}
		}
	}
	return nil
}

// ParseStage reads one stage's geometry at r's current position without
// extracting anything. Entries carry their absolute payload offsets and
// true sizes, with cache offsets already differenced and run trailers
// dropped. When dict is nil or misses a code, the "{code:04x}.{tag}" key
// stands in for the entry's name.
func ParseStage(r *SectorReader, name string, dict *Dictionary) (*Stage, error) {
	start := r.Pos()
	hdr, err := readStageEntries(r, dict, false)
	if err != nil {
		return nil, err
	}
	st := &Stage{
		Name:          name,
		HeaderSectors: hdr.headerSectors,
		TotalSectors:  hdr.totalSectors,
	}
	pos := start + int64(hdr.headerSectors)*SectorSize
	for i, f := range hdr.files {
		if f.name == CacheEndName {
			pos = alignUp(pos, SectorSize)
			continue
		}
		size, err := entrySize(hdr.files, i)
		if err != nil {
			return nil, err
		}
		st.Entries = append(st.Entries, Entry{
			Name:    f.name,
			Section: f.section,
			Size:    size,
			Offset:  pos,
		})
		pos += int64(size)
		if f.section != SectionCache {
			pos = alignUp(pos, SectorSize)
		}
	}
	return st, nil
}

// writeFile writes data to path, creating parent directories as needed.
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
