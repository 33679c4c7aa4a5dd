package gradereport

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartition(t *testing.T) {
	lines := []string{
		"Course A  B+  3",
		"Course B  A   4",
		"Semester GPA 3.5 Academic Status: Promoted",
		"Course C  C   2",
		"Semester GPA 2.0 Academic Status: Warning",
	}

	got := Partition(lines)
	require.Len(t, got, 2)

	assert.Equal(t, "Course A  B+  3\nCourse B  A   4\nSemester GPA 3.5 Academic Status: Promoted", got[0])
	assert.True(t, strings.HasPrefix(got[1], "Course C  C   2\n"))

	// Attribution lands on the last block only.
	assert.False(t, strings.Contains(got[0], "@Esubaalew"))
	assert.True(t, strings.HasSuffix(got[1], "\n\nThis bot was Made by @Esubaalew"))
}

func TestPartition_TrailingLinesDiscarded(t *testing.T) {
	lines := []string{
		"Course A  B+  3",
		"Academic Status: Promoted",
		"orphan line one",
		"orphan line two",
	}

	got := Partition(lines)
	require.Len(t, got, 1)
	assert.NotContains(t, got[0], "orphan")
}

func TestPartition_NoMarker(t *testing.T) {
	got := Partition([]string{"just", "some", "lines"})
	assert.Empty(t, got)
}

func TestPartition_Empty(t *testing.T) {
	assert.Empty(t, Partition(nil))
	assert.Empty(t, Partition([]string{}))
}

func TestPartition_MarkerAsSubstring(t *testing.T) {
	// The marker counts anywhere within a line, not only as a prefix.
	got := Partition([]string{"GPA 4.0 | Academic Status: Dean's List"})
	require.Len(t, got, 1)
}
