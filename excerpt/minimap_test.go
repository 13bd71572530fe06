package excerpt

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// offsetOf returns the rune offset of the line's start in the minimap's
// offset space: cumulative rune counts of preceding lines, newlines excluded.
func offsetOf(doc, line string) int {
	offset := 0
	for _, l := range strings.Split(doc, "\n") {
		if l == line {
			return offset
		}
		offset += utf8.RuneCountInString(l)
	}
	return -1
}

func TestMinimap_HeadingEviction(t *testing.T) {
	doc := "# A\n## B\n### C\n## D\ntext"
	m := BuildMinimap(doc)

	got, err := m.Location(offsetOf(doc, "text"))
	require.NoError(t, err)

	assert.Equal(t, "# A\n## D", got)
	assert.NotContains(t, got, "### C", "level-3 heading must be evicted by the later level-2 heading")
}

func TestMinimap_LevelOneResetsStack(t *testing.T) {
	doc := "# A\n## B\n### C\n# Z\ntail"
	m := BuildMinimap(doc)

	got, err := m.Location(offsetOf(doc, "tail"))
	require.NoError(t, err)

	assert.Equal(t, "# Z", got)
}

func TestMinimap_CodeFenceSuppression(t *testing.T) {
	doc := "# real\n```\n## fake\n```\nmore text"
	m := BuildMinimap(doc)

	got, err := m.Location(offsetOf(doc, "more text"))
	require.NoError(t, err)

	assert.Equal(t, "# real", got)
	assert.NotContains(t, got, "## fake")
}

func TestMinimap_LookupBeforeFirstHeading(t *testing.T) {
	doc := "some preamble before anything\n# First\nbody"
	m := BuildMinimap(doc)

	got, err := m.Location(0)
	require.NoError(t, err)
	assert.Equal(t, "", got)

	got, err = m.Location(offsetOf(doc, "body"))
	require.NoError(t, err)
	assert.Equal(t, "# First", got)
}

func TestMinimap_NoHeadings(t *testing.T) {
	m := BuildMinimap("just\nplain\ntext")

	got, err := m.Location(100)
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestMinimap_NegativeOffset(t *testing.T) {
	m := BuildMinimap("# A\nbody")

	_, err := m.Location(-1)
	assert.ErrorIs(t, err, ErrNegativeOffset)
}

func TestMinimap_DeepHierarchy(t *testing.T) {
	doc := "# one\n## two\n### three\n#### four\n##### five\nleaf"
	m := BuildMinimap(doc)

	got, err := m.Location(offsetOf(doc, "leaf"))
	require.NoError(t, err)

	assert.Equal(t, "# one\n## two\n### three\n#### four\n##### five", got)
}

func TestMinimap_IgnoresNonHeadingHashLines(t *testing.T) {
	// No space after the hashes, or more than five levels: not headings.
	doc := "#nospace\n###### six levels\n# Real\nend"
	m := BuildMinimap(doc)

	got, err := m.Location(offsetOf(doc, "end"))
	require.NoError(t, err)

	assert.Equal(t, "# Real", got)
}

func TestMinimap_SnapshotsAreIndependent(t *testing.T) {
	// A later heading must not rewrite history: the snapshot taken at "mid"
	// keeps level 2 = "## B" even though "## D" replaces it afterwards.
	doc := "# A\n## B\nmid\n## D\nend"
	m := BuildMinimap(doc)

	atMid, err := m.Location(offsetOf(doc, "mid"))
	require.NoError(t, err)
	assert.Equal(t, "# A\n## B", atMid)

	atEnd, err := m.Location(offsetOf(doc, "end"))
	require.NoError(t, err)
	assert.Equal(t, "# A\n## D", atEnd)
}
