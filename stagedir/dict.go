package stagedir

import (
	"bufio"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
)

// Dictionary maps a filename's 16-bit code plus extension tag back to the
// original filename. The archive stores only the code, so without a matching
// dictionary entry a named asset cannot be restored under its real name.
//
// Keys are the pair "{code:04x}.{tag}", never the code alone: two files may
// share a code and differ only in extension. A key inserted twice keeps the
// last value.
type Dictionary struct {
	names map[string]string
}

// NewDictionary returns an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{names: make(map[string]string)}
}

func dictKey(code uint16, extTag byte) string {
	return fmt.Sprintf("%04x.%c", code, extTag)
}

// LoadDictionary reads a dictionary file of key|value lines. Lines without
// exactly one separator are skipped, not rejected.
func LoadDictionary(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d := NewDictionary()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		parts := strings.Split(strings.TrimSpace(scanner.Text()), "|")
		if len(parts) != 2 {
			continue
		}
		d.names[parts[0]] = parts[1]
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return d, nil
}

// Add records the mapping for filename under its computed key.
func (d *Dictionary) Add(filename string) error {
	base, ext, err := splitName(filename)
	if err != nil {
		return err
	}
	code, err := NameCode(base)
	if err != nil {
		return err
	}
	d.names[dictKey(code, ext[0])] = filename
	return nil
}

// Lookup resolves a name code and extension tag to the original filename.
// A nil dictionary resolves nothing.
func (d *Dictionary) Lookup(code uint16, extTag byte) (string, error) {
	if d != nil {
		if name, ok := d.names[dictKey(code, extTag)]; ok {
			return name, nil
		}
	}
	return "", fmt.Errorf("%s: %w", dictKey(code, extTag), ErrNameNotFound)
}

// Len reports the number of mappings.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.names)
}

// Save writes the dictionary to path as key|value lines in key order.
func (d *Dictionary) Save(path string) error {
	var sb strings.Builder
	for _, k := range slices.Sorted(maps.Keys(d.names)) {
		fmt.Fprintf(&sb, "%s|%s\n", k, d.names[k])
	}
	return os.WriteFile(path, []byte(sb.String()), 0o644)
}
