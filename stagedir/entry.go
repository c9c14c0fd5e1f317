package stagedir

import (
	"fmt"
	"strings"
)

// CacheEndName is the synthetic name assigned to a cache-run trailer record.
// It never corresponds to a file on disk and is skipped during extraction.
const CacheEndName = "cache_end"

// cacheEndExt is the extension tag marking a cache-run trailer record.
const cacheEndExt = 0xFF

// Entry is one asset inside a decoded stage.
type Entry struct {
	Name    string // full filename, real or synthesized
	Section Section
	Size    uint32 // payload byte length
	Offset  int64  // absolute payload offset within the archive
}

// record is the raw 8-byte entry header as stored on disk. For non-cache
// entries value is the payload size; for cache entries it is the cumulative
// offset within the cache run.
type record struct {
	code  uint16
	tag   byte
	ext   byte
	value uint32
}

func (sw *SectorWriter) writeRecord(rec record) error {
	if err := sw.WriteU16(rec.code); err != nil {
		return err
	}
	if err := sw.WriteU8(rec.tag); err != nil {
		return err
	}
	if err := sw.WriteU8(rec.ext); err != nil {
		return err
	}
	return sw.WriteU32(rec.value)
}

func (sr *SectorReader) readRecord() (record, error) {
	var rec record
	var err error
	if rec.code, err = sr.ReadU16(); err != nil {
		return rec, err
	}
	if rec.tag, err = sr.ReadU8(); err != nil {
		return rec, err
	}
	if rec.ext, err = sr.ReadU8(); err != nil {
		return rec, err
	}
	rec.value, err = sr.ReadU32()
	return rec, err
}

// splitName separates an asset filename into base and extension at the last
// dot. Both parts must be non-empty: the base is what gets checksummed and
// the extension's first letter becomes the on-disk extension tag.
func splitName(filename string) (base, ext string, err error) {
	i := strings.LastIndexByte(filename, '.')
	if i <= 0 || i == len(filename)-1 {
		return "", "", fmt.Errorf("asset %q: want name.ext", filename)
	}
	return filename[:i], filename[i+1:], nil
}
