package notes

import (
	"github.com/skillsenselab/medscribe/internal/database"
)

// Note is a persisted clinical note.
type Note struct {
	database.BaseModel

	// UserID scopes the note to its owner.
	UserID string `gorm:"index;not null" json:"userId"`
	// Content is the compiled markdown note.
	Content string `json:"content"`
	// ProcedureType is the extracted procedure or diagnosis name.
	ProcedureType string `json:"procedureType"`
	// Tags are up to five keyword tags.
	Tags []string `gorm:"serializer:json" json:"tags"`
	// Transcript is the raw transcript the note was compiled from.
	Transcript string `json:"transcript"`
	// AudioDigest identifies the source recording.
	AudioDigest string `gorm:"index" json:"audioDigest"`
	// Language is the transcript language code.
	Language string `json:"language"`
	// DurationSec is the recording duration in seconds.
	DurationSec float64 `json:"durationSec"`
}

// CompiledNote is the output of note compilation, before persistence.
type CompiledNote struct {
	// Content is the structured markdown note.
	Content string `json:"content"`
	// ProcedureType is the extracted procedure or diagnosis name.
	ProcedureType string `json:"procedureType"`
	// Tags are up to five keyword tags.
	Tags []string `json:"tags"`
}

// Page is one page of a note listing.
type Page struct {
	// Items are the notes on this page.
	Items []Note `json:"items"`
	// HasMore reports whether more pages follow.
	HasMore bool `json:"hasMore"`
}
