package stagedir

// Section classifies how the game engine treats an asset at runtime. The
// on-disk section tag is the ASCII letter itself.
type Section byte

const (
	SectionResident Section = 'r'
	SectionNoCache  Section = 'n'
	SectionCache    Section = 'c'
	SectionSound    Section = 's'
)

// sectionRanks fixes the one legal directive order inside a stage config:
// resident, nocache, cache, sound. Sections may be skipped but never
// repeated or revisited.
var sectionRanks = map[Section]int{
	SectionResident: 0,
	SectionNoCache:  1,
	SectionCache:    2,
	SectionSound:    3,
}

// Valid reports whether s is one of the four section tags.
func (s Section) Valid() bool {
	_, ok := sectionRanks[s]
	return ok
}

func (s Section) rank() int {
	r, ok := sectionRanks[s]
	if !ok {
		return -1
	}
	return r
}

// String returns the section's config directive name without the leading dot.
func (s Section) String() string {
	switch s {
	case SectionResident:
		return "resident"
	case SectionNoCache:
		return "nocache"
	case SectionCache:
		return "cache"
	case SectionSound:
		return "sound"
	}
	return "unknown"
}

// Directive returns the section's config file directive line.
func (s Section) Directive() string {
	return "." + s.String()
}

// directiveSection maps a config directive line to its section.
func directiveSection(line string) (Section, bool) {
	switch line {
	case ".resident":
		return SectionResident, true
	case ".nocache":
		return SectionNoCache, true
	case ".cache":
		return SectionCache, true
	case ".sound":
		return SectionSound, true
	}
	return 0, false
}
