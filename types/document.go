package types

import "time"

// DocumentType enumerates the accepted RAG document formats.
type DocumentType string

const (
	DocumentTypeJSON DocumentType = "json"
	DocumentTypeCSV  DocumentType = "csv"
	DocumentTypeText DocumentType = "text"
)

// Document is a knowledge-base entry for the RAG chatbot. The uploaded
// file lives in object storage under ObjectKey; TextContent holds the
// extracted plain text used for retrieval scoring.
type Document struct {
	// ID is the unique identifier of the document.
	ID string `json:"id" db:"id"`

	// Name is the human-readable document name.
	Name string `json:"name" db:"name"`

	// Description explains what the document covers.
	Description string `json:"description" db:"description"`

	// DocumentType is the format of the uploaded file.
	DocumentType DocumentType `json:"document_type" db:"document_type"`

	// ObjectKey is the location of the raw file in object storage.
	ObjectKey string `json:"object_key" db:"object_key"`

	// ContentType is the MIME type recorded at upload time.
	ContentType string `json:"content_type" db:"content_type"`

	// TextContent is the plain text extracted from the file, indexed by
	// the chatbot's retrieval step. Omitted from list responses.
	TextContent string `json:"text_content,omitempty" db:"text_content"`

	// CreatedAt is the timestamp at which the document was uploaded.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
