package grading

import "strings"

var fenceReplacer = strings.NewReplacer("```json", "", "```", "")

// StripCodeFences removes markdown code-fence markers the model sometimes wraps its JSON
// in and trims the result.
func StripCodeFences(text string) string {
	return strings.TrimSpace(fenceReplacer.Replace(text))
}
