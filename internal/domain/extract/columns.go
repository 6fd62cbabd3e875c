package extract

import "regexp"

// Fixed-width statement layouts pad columns with runs of spaces; a single
// space inside a description is not a separator.
var multiSpace = regexp.MustCompile(`\s{2,}`)

// SplitColumns splits one line of layout-preserving text into field values.
// Every run of two or more whitespace characters becomes a separator. A line
// with no such run comes back as a single field, untrimmed. There is no
// column-count guarantee; output length varies with line content.
func SplitColumns(line string) []string {
	return multiSpace.Split(line, -1)
}
