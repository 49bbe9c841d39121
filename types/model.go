package types

import "time"

// ModelType enumerates the accepted model file formats.
type ModelType string

const (
	ModelTypeJSON ModelType = "json"
	ModelTypeCSV  ModelType = "csv"
	ModelTypeText ModelType = "text"
)

// Model is an AI model uploaded by a user. The file itself lives in
// object storage under ObjectKey. Non-admin users may own at most a
// fixed number of models.
type Model struct {
	// ID is the unique identifier of the model.
	ID string `json:"id" db:"id"`

	// Name is the human-readable model name.
	Name string `json:"name" db:"name"`

	// Description explains what the model does.
	Description string `json:"description" db:"description"`

	// ModelType is the format of the uploaded file.
	ModelType ModelType `json:"model_type" db:"model_type"`

	// Category is a free-form grouping label used for browsing.
	Category string `json:"category" db:"category"`

	// ObjectKey is the location of the file in object storage.
	ObjectKey string `json:"object_key" db:"object_key"`

	// ContentType is the MIME type recorded at upload time.
	ContentType string `json:"content_type" db:"content_type"`

	// UserID is the owner of the model.
	UserID string `json:"user_id" db:"user_id"`

	// CreatedAt is the timestamp at which the model was uploaded.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
