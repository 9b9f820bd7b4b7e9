// Package transcript cleans chat transcripts copied out of the LinkedIn
// messaging UI (Spanish locale) before they are handed to the language model.
package transcript

import (
	"regexp"
	"strings"
)

var (
	reactionStart = regexp.MustCompile(`(?i)Eliminar reacción`)
	// A removed reaction runs up to the next space of any kind followed by a letter.
	reactionEnd = regexp.MustCompile(`(?i)[\s\p{Z}\x{FEFF}][a-záéíóúñ]`)

	artifacts = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\s+ha enviado los siguientes mensajes a las\s+\d{1,2}:\d{2}`),
		regexp.MustCompile(`(?i)\s+ha enviado el siguiente mensaje a las\s+\d{1,2}:\d{2}`),
		regexp.MustCompile(`(?i)Ver el perfil de `),
		regexp.MustCompile(`(?i)\b\d{1,2}\s?(ene|feb|mar|abr|may|jun|jul|ago|sep|oct|nov|dic)\b`),
		regexp.MustCompile(`\b\d{1,2}:\d{2}\b`),
		regexp.MustCompile(`[\x{1F300}-\x{1FAFF}\x{2600}-\x{26FF}]`),
	}

	spaceRun = regexp.MustCompile(`[\s\p{Z}\x{FEFF}]{2,}`)
)

// Clean strips UI artifacts, short dates, clock times and emoji from text and
// normalizes whitespace. It returns "" for empty input.
func Clean(text string) string {
	if text == "" {
		return ""
	}
	s := stripReactions(text)
	for _, re := range artifacts {
		s = re.ReplaceAllString(s, "")
	}
	s = spaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// stripReactions replaces every "Eliminar reacción ..." run with a single
// space. A run never crosses a line break; one that cannot end on its own
// line is left alone.
func stripReactions(s string) string {
	var b strings.Builder
	for {
		loc := reactionStart.FindStringIndex(s)
		if loc == nil {
			b.WriteString(s)
			return b.String()
		}
		rest := s[loc[1]:]
		nl := strings.IndexByte(rest, '\n')

		cut := -1
		if end := reactionEnd.FindStringIndex(rest); end != nil && (nl < 0 || end[0] <= nl) {
			cut = end[0]
		} else if nl < 0 {
			cut = len(rest)
		}
		if cut < 0 {
			b.WriteString(s[:loc[1]])
			s = rest
			continue
		}
		b.WriteString(s[:loc[0]])
		b.WriteByte(' ')
		s = rest[cut:]
	}
}
