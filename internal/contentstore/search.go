package contentstore

import "strings"

// contextLines is the number of lines included before and after a matched
// line in an excerpt.
const contextLines = 3

// Excerpt is one search hit: the 1-based line number of the match and the
// surrounding context window joined with newlines.
type Excerpt struct {
	Line int
	Text string
}

// SearchExcerpts scans content line by line for a case-insensitive
// substring match of query and returns up to limit context-windowed
// excerpts. After emitting an excerpt the scan resumes past its window, so
// overlapping near-duplicate excerpts are never produced.
//
// An empty result means no match; it is not an error.
func SearchExcerpts(content, query string, limit int) []Excerpt {
	if query == "" || limit <= 0 {
		return nil
	}

	lines := strings.Split(content, "\n")
	needle := strings.ToLower(query)

	var results []Excerpt
	for i := 0; i < len(lines) && len(results) < limit; i++ {
		if !strings.Contains(strings.ToLower(lines[i]), needle) {
			continue
		}

		start := i - contextLines
		if start < 0 {
			start = 0
		}
		end := i + contextLines
		if end > len(lines)-1 {
			end = len(lines) - 1
		}

		results = append(results, Excerpt{
			Line: i + 1,
			Text: strings.Join(lines[start:end+1], "\n"),
		})

		// Skip the rest of the emitted window.
		i = end
	}

	return results
}
