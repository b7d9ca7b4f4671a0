package model

import "time"

type GenerationStatus string

const (
	GenerationStatusPending    GenerationStatus = "pending"
	GenerationStatusProcessing GenerationStatus = "processing"
	GenerationStatusCompleted  GenerationStatus = "completed"
	GenerationStatusFailed     GenerationStatus = "failed"
)

// ContentKind is the output classification a record is counted under.
type ContentKind string

const (
	ContentKindImage   ContentKind = "image"
	ContentKindDesign  ContentKind = "design"
	ContentKindVideo   ContentKind = "video"
	ContentKindJournal ContentKind = "journal"
)

// ContentType is the inverse of ContentType.Kind, used when a record has
// to be filed under its schedule's content-type (storage paths).
func (k ContentKind) ContentType() ContentType {
	switch k {
	case ContentKindImage:
		return ContentTypeImageGeneration
	case ContentKindDesign:
		return ContentTypePrintOnShirt
	case ContentKindVideo:
		return ContentTypeVideoGeneration
	case ContentKindJournal:
		return ContentTypeJournal
	}
	return ContentType(k)
}

// Well-known metadata keys.
const (
	MetaCombination = "combination" // "{indexA}x{indexB}" tag for print-on-shirt pairs
	MetaError       = "error"       // failure reason for failed records
	MetaSourceA     = "source_a"
	MetaSourceB     = "source_b"
)

// ContentRecord is one unit of output, in-flight or finished.
type ContentRecord struct {
	ID               string
	ScheduleID       string
	OwnerID          string
	TaskID           string
	Kind             ContentKind
	GenerationStatus GenerationStatus
	ExternalJobID    string
	ContentURL       string
	StoragePath      string
	Metadata         map[string]string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
