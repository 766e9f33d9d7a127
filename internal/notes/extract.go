package notes

import (
	"regexp"
	"strings"
)

// Extractor attempts to pull a procedure type out of note content. The
// compiler runs extractors in order and takes the first match.
type Extractor func(content string) (string, bool)

// maxTags caps the number of tags carried on a note.
const maxTags = 5

// labelPattern matches explicit clinician labels like "Diagnosis: ...".
// The value runs to the end of the line.
var labelPattern = regexp.MustCompile(`(?im)^\s*(?:\*\*)?(?:Procedure|Diagnosis|Assessment)(?:\*\*)?\s*:\s*(.+)$`)

// LabelExtractor extracts the value of the first explicit
// Procedure/Diagnosis/Assessment label.
func LabelExtractor(content string) (string, bool) {
	m := labelPattern.FindStringSubmatch(content)
	if m == nil {
		return "", false
	}
	value := strings.TrimSpace(m[1])
	value = strings.TrimRight(value, ".")
	value = strings.TrimSpace(strings.Trim(value, "*"))
	if value == "" {
		return "", false
	}
	return value, true
}

// procedureVocabulary is the fixed list of known procedure names matched
// case-insensitively when no explicit label is present.
var procedureVocabulary = []string{
	"Colonoscopy",
	"Endoscopy",
	"Appendectomy",
	"Cholecystectomy",
	"Biopsy",
	"Echocardiogram",
	"Angioplasty",
	"Arthroscopy",
	"Cataract Surgery",
	"Tonsillectomy",
	"Hernia Repair",
	"Skin Excision",
}

// VocabularyExtractor matches the first known procedure name appearing in
// the content.
func VocabularyExtractor(content string) (string, bool) {
	lower := strings.ToLower(content)
	for _, name := range procedureVocabulary {
		if strings.Contains(lower, strings.ToLower(name)) {
			return name, true
		}
	}
	return "", false
}

// DefaultExtractors is the standard extractor ordering: explicit labels
// win over vocabulary matches.
func DefaultExtractors() []Extractor {
	return []Extractor{LabelExtractor, VocabularyExtractor}
}

// extractProcedureType runs the extractors in order, returning the first
// match or "" when nothing matches.
func extractProcedureType(content string, extractors []Extractor) string {
	for _, extract := range extractors {
		if value, ok := extract(content); ok {
			return value
		}
	}
	return ""
}

// tagsPattern matches a trailing "Tags:" line in generated content.
var tagsPattern = regexp.MustCompile(`(?im)^\s*(?:\*\*)?Tags(?:\*\*)?\s*:\s*(.+)$`)

// extractTags pulls comma-separated tags from a "Tags:" line, capped at
// maxTags. Missing or empty tag lines yield no tags.
func extractTags(content string) []string {
	m := tagsPattern.FindStringSubmatch(content)
	if m == nil {
		return nil
	}
	var tags []string
	for _, raw := range strings.Split(m[1], ",") {
		tag := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(raw), "."))
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
		if len(tags) == maxTags {
			break
		}
	}
	return tags
}
