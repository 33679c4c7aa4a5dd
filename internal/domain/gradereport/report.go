// Package gradereport turns the portal's line-oriented grade dump into
// per-semester text blocks ready for paginated rendering.
package gradereport

import "strings"

// statusMarker is the line content that closes a semester block. The portal
// ends every semester section with an academic-status row.
const statusMarker = "Academic Status"

// attribution is appended to the final semester block only.
const attribution = "\n\nThis bot was Made by @Esubaalew"

// Partition groups the raw grade lines into semester blocks. Lines
// accumulate until one containing the status marker closes the block.
// Lines after the last marker never form a partial block and are dropped.
// The attribution suffix goes on the last block only.
func Partition(lines []string) []string {
	var semesters []string
	var current []string

	for _, line := range lines {
		current = append(current, line)
		if strings.Contains(line, statusMarker) {
			semesters = append(semesters, strings.Join(current, "\n"))
			current = nil
		}
	}

	if len(semesters) > 0 {
		semesters[len(semesters)-1] += attribution
	}
	return semesters
}
