package service

import (
	"strings"
)

// ankiNote is one parsed row of an Anki text export.
type ankiNote struct {
	front string
	back  string
}

// ankiSeparators maps the names Anki writes in its `#separator:` header
// to the runes they stand for. A single-character value is also accepted
// verbatim.
var ankiSeparators = map[string]string{
	"tab":       "\t",
	"comma":     ",",
	"semicolon": ";",
	"space":     " ",
	"pipe":      "|",
	"colon":     ":",
}

// parseAnkiExport parses the text-export format Anki produces: an
// optional block of `#key:value` headers followed by one note per line,
// fields joined by the declared separator (tab when no header says
// otherwise). Lines starting with `#` and blank lines are skipped, as
// are rows without both configured columns or with an empty front or
// back. Duplicate fronts collapse to one note whose back is the last
// occurrence's.
func parseAnkiExport(payload string, frontCol, backCol int) []ankiNote {
	if frontCol < 0 {
		frontCol = 0
	}
	if backCol < 0 {
		backCol = 1
	}

	sep := "\t"
	var notes []ankiNote
	seen := make(map[string]int)

	for _, line := range strings.Split(payload, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#") {
			if key, value, ok := strings.Cut(line[1:], ":"); ok {
				if strings.EqualFold(strings.TrimSpace(key), "separator") {
					sep = resolveSeparator(strings.TrimSpace(value))
				}
			}
			continue
		}

		fields := strings.Split(line, sep)
		if frontCol >= len(fields) || backCol >= len(fields) {
			continue
		}

		front := strings.TrimSpace(fields[frontCol])
		back := strings.TrimSpace(fields[backCol])
		if front == "" || back == "" {
			continue
		}

		if i, dup := seen[front]; dup {
			notes[i].back = back
			continue
		}
		seen[front] = len(notes)

		notes = append(notes, ankiNote{front: front, back: back})
	}

	return notes
}

func resolveSeparator(name string) string {
	if sep, ok := ankiSeparators[strings.ToLower(name)]; ok {
		return sep
	}
	if len(name) == 1 {
		return name
	}
	return "\t"
}
