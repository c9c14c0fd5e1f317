package stagedir

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// ConfigFileName is the per-stage config list consumed by pack and
// regenerated by unpack.
const ConfigFileName = "data.cnf"

// StageListName is the stage-order list consumed by pack and regenerated by
// unpack.
const StageListName = "stage_list.txt"

// packFile is one config line resolved against the stage directory.
type packFile struct {
	name    string
	base    string
	ext     string
	section Section
	size    uint32
}

// readConfig parses dir's config list into the ordered file list for one
// stage. Directives must advance strictly forward through resident, nocache,
// cache, sound; a repeated or backward directive, or an asset line before
// the first directive, fails with ErrConfigOrder.
func readConfig(dir string) ([]packFile, error) {
	path := filepath.Join(dir, ConfigFileName)
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var files []packFile
	rank := -1
	var current Section
	scanner := bufio.NewScanner(f)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if sec, ok := directiveSection(line); ok {
			if sec.rank() <= rank {
				return nil, fmt.Errorf("%s:%d: %s after .%s: %w", path, lineno, line, current, ErrConfigOrder)
			}
			rank = sec.rank()
			current = sec
			continue
		}
		if strings.HasPrefix(line, ".") && !strings.Contains(line[1:], ".") {
			return nil, fmt.Errorf("%s:%d: unknown directive %q", path, lineno, line)
		}
		if rank < 0 {
			return nil, fmt.Errorf("%s:%d: asset %q before any section directive: %w", path, lineno, line, ErrConfigOrder)
		}
		base, ext, err := splitName(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineno, err)
		}
		if ext[0] < 'a' || ext[0] > 'z' {
			return nil, fmt.Errorf("%s:%d: asset %q: extension must start with a lowercase letter", path, lineno, line)
		}
		info, err := os.Stat(filepath.Join(dir, line))
		if err != nil {
			return nil, err
		}
		if info.Size() > math.MaxUint32 {
			return nil, fmt.Errorf("%s: too large for a stage entry (%d bytes)", line, info.Size())
		}
		files = append(files, packFile{
			name:    line,
			base:    base,
			ext:     ext,
			section: current,
			size:    uint32(info.Size()),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return files, nil
}

// configList renders decoded entries as config list text, mirroring the
// pack-time input: a directive line is emitted whenever the section
// changes, .bin entries are listed under .nocache whatever their stored
// tag, and cache-run trailers are omitted.
func configList(files []stageFile) string {
	var sb strings.Builder
	var last Section
	for _, f := range files {
		if f.name == CacheEndName {
			continue
		}
		sec := f.section
		if strings.HasSuffix(f.name, ".bin") {
			sec = SectionNoCache
		}
		if sec != last {
			sb.WriteString(sec.Directive())
			sb.WriteByte('\n')
			last = sec
		}
		sb.WriteString(f.name)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// writeStageConfig regenerates dir's config list from decoded entries.
func writeStageConfig(dir string, files []stageFile) error {
	return os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(configList(files)), 0o644)
}

// ReadStageList reads the ordered stage names from path, one per line.
// Blank lines are skipped.
func ReadStageList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return names, nil
}

// WriteStageList writes stage names to path, one per line.
func WriteStageList(path string, names []string) error {
	var sb strings.Builder
	for _, n := range names {
		sb.WriteString(n)
		sb.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(sb.String()), 0o644)
}
