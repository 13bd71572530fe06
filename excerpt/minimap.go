package excerpt

import (
	"sort"
	"strings"
	"unicode/utf8"
)

const maxHeadingLevel = 5

// headingStack maps heading levels 1..5 to the most recent heading line at
// that level. Index 0 is unused. Being an array, assignment copies it, which
// keeps recorded snapshots independent of later mutations.
type headingStack [maxHeadingLevel + 1]string

type snapshot struct {
	offset int
	stack  headingStack
}

// Minimap is an offset-indexed view of a markdown document's heading
// hierarchy. It is built once per document and is read-only afterwards, so
// concurrent Location calls are safe.
type Minimap struct {
	snapshots []snapshot // ascending by offset
}

// BuildMinimap scans a markdown document and records the active heading
// stack at every heading line. Offsets are cumulative rune counts of the
// preceding lines with newlines excluded, matching the offset basis used
// for chunks.
//
// Lines inside fenced code blocks (delimited by lines starting with three
// backticks) are ignored: a heading-looking line there neither alters the
// stack nor produces a snapshot. A heading at level L evicts all recorded
// headings at level L or deeper before taking its slot.
func BuildMinimap(markdown string) *Minimap {
	m := &Minimap{}

	var stack headingStack
	inCodeBlock := false
	characters := 0

	for _, line := range strings.Split(markdown, "\n") {
		lineLen := utf8.RuneCountInString(line)
		characters += lineLen

		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
		}
		if inCodeBlock {
			continue
		}

		level := headingLevel(line)
		if level == 0 {
			continue
		}

		for l := level; l <= maxHeadingLevel; l++ {
			stack[l] = ""
		}
		stack[level] = line

		m.snapshots = append(m.snapshots, snapshot{
			offset: characters - lineLen,
			stack:  stack,
		})
	}

	return m
}

// headingLevel returns the markdown heading level of a line (1..5), or 0 if
// the line is not a heading. A heading is 1-5 '#' characters followed by a
// space.
func headingLevel(line string) int {
	n := 0
	for n < len(line) && line[n] == '#' {
		n++
	}
	if n < 1 || n > maxHeadingLevel {
		return 0
	}
	if n >= len(line) || line[n] != ' ' {
		return 0
	}
	return n
}

// Location returns the heading stack in effect at the given character
// offset, rendered as newline-joined heading lines from level 1 down.
// Offsets before the first heading yield an empty string. Negative offsets
// yield ErrNegativeOffset.
func (m *Minimap) Location(offset int) (string, error) {
	if offset < 0 {
		return "", ErrNegativeOffset
	}

	// Greatest recorded snapshot at or before the queried offset.
	idx := sort.Search(len(m.snapshots), func(i int) bool {
		return m.snapshots[i].offset > offset
	}) - 1
	if idx < 0 {
		return "", nil
	}

	stack := m.snapshots[idx].stack
	var lines []string
	for l := 1; l <= maxHeadingLevel; l++ {
		if stack[l] != "" {
			lines = append(lines, stack[l])
		}
	}
	return strings.Join(lines, "\n"), nil
}
