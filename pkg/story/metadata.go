package story

import (
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// HeaderKeys is the order metadata keys are written back in.
var HeaderKeys = []string{
	"Jira",
	"Title",
	"Type",
	"Status (Jira)",
	"Epic",
	"Priority",
	"Labels",
	"Created",
	"Imported",
}

var headerKeySet = mapset.NewSet(HeaderKeys...)

// Metadata holds the key/value pairs of a story file header.
type Metadata map[string]string

// ParseMetadata reads "Key: value" lines. The first ": " splits key from
// value; lines without one are skipped.
func ParseMetadata(block string) Metadata {
	metadata := Metadata{}
	for _, line := range strings.Split(block, "\n") {
		idx := strings.Index(line, ": ")
		if idx <= 0 {
			continue
		}
		metadata[line[:idx]] = line[idx+2:]
	}
	return metadata
}

// Format writes the header block. HeaderKeys always appear, in order, with
// empty values when missing; any other keys follow sorted by name.
func (m Metadata) Format() string {
	var b strings.Builder
	b.WriteString("---\n")
	for _, key := range HeaderKeys {
		b.WriteString(key + ": " + m[key] + "\n")
	}
	for _, key := range m.extraKeys() {
		b.WriteString(key + ": " + m[key] + "\n")
	}
	b.WriteString("---\n")
	return b.String()
}

func (m Metadata) extraKeys() []string {
	var extra []string
	for key := range m {
		if !headerKeySet.Contains(key) {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	return extra
}
