package notes

import (
	"reflect"
	"testing"
)

func TestLabelExtractor(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		ok      bool
	}{
		{"diagnosis label", "Findings noted.\nDiagnosis: Acute appendicitis.\nPlan follows.", "Acute appendicitis", true},
		{"procedure label", "Procedure: Laparoscopic cholecystectomy", "Laparoscopic cholecystectomy", true},
		{"assessment label", "Assessment: stable post-op", "stable post-op", true},
		{"bold markdown label", "**Diagnosis:** Otitis media.", "Otitis media", true},
		{"case insensitive", "diagnosis: migraine", "migraine", true},
		{"no label", "Patient is doing well.", "", false},
		{"empty value", "Diagnosis: ", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := LabelExtractor(tt.content)
			if ok != tt.ok || got != tt.want {
				t.Errorf("LabelExtractor = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestVocabularyExtractor(t *testing.T) {
	got, ok := VocabularyExtractor("Patient underwent routine COLONOSCOPY today without complication.")
	if !ok || got != "Colonoscopy" {
		t.Errorf("VocabularyExtractor = (%q, %v)", got, ok)
	}

	if _, ok := VocabularyExtractor("General wellness visit."); ok {
		t.Error("expected no vocabulary match")
	}
}

func TestExtractProcedureTypeOrder(t *testing.T) {
	// An explicit label wins even when a vocabulary term also appears.
	content := "Patient scheduled for colonoscopy.\nDiagnosis: Iron deficiency anemia."
	got := extractProcedureType(content, DefaultExtractors())
	if got != "Iron deficiency anemia" {
		t.Errorf("procedure type = %q, want label value", got)
	}

	// Vocabulary fallback when no label is present.
	got = extractProcedureType("Completed screening colonoscopy.", DefaultExtractors())
	if got != "Colonoscopy" {
		t.Errorf("procedure type = %q, want Colonoscopy", got)
	}

	// Nothing matches.
	if got := extractProcedureType("Routine visit.", DefaultExtractors()); got != "" {
		t.Errorf("procedure type = %q, want empty", got)
	}
}

func TestExtractTags(t *testing.T) {
	tags := extractTags("## Plan\nRest.\n\nTags: follow-up, hydration, rest")
	want := []string{"follow-up", "hydration", "rest"}
	if !reflect.DeepEqual(tags, want) {
		t.Errorf("tags = %v, want %v", tags, want)
	}
}

func TestExtractTagsCappedAtFive(t *testing.T) {
	tags := extractTags("Tags: one, two, three, four, five, six, seven")
	if len(tags) != 5 {
		t.Errorf("tags = %v, want 5", tags)
	}
}

func TestExtractTagsMissing(t *testing.T) {
	if tags := extractTags("## Plan\nNo tag line here."); tags != nil {
		t.Errorf("tags = %v, want nil", tags)
	}
	if tags := extractTags("Tags:   "); tags != nil {
		t.Errorf("tags = %v, want nil", tags)
	}
}
