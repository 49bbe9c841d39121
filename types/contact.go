package types

import "time"

// ContactStatus enumerates the workflow states of a contact report.
type ContactStatus string

const (
	ContactStatusPending    ContactStatus = "pending"
	ContactStatusInProgress ContactStatus = "in_progress"
	ContactStatusResponded  ContactStatus = "responded"
	ContactStatusDone       ContactStatus = "done"
)

// ContactReport is a contact-form submission. Reports start out pending;
// admins can respond (which emails the submitter) or move them through
// the workflow states.
type ContactReport struct {
	ID          string        `json:"id" db:"id"`
	FirstName   string        `json:"first_name" db:"first_name"`
	LastName    string        `json:"last_name" db:"last_name"`
	Email       string        `json:"email" db:"email"`
	Phone       *string       `json:"phone,omitempty" db:"phone"`
	Message     string        `json:"message" db:"message"`
	Status      ContactStatus `json:"status" db:"status"`
	Response    *string       `json:"response,omitempty" db:"response"`
	RespondedAt *time.Time    `json:"responded_at,omitempty" db:"responded_at"`
	RespondedBy *string       `json:"responded_by,omitempty" db:"responded_by"`
	UpdatedBy   *string       `json:"updated_by,omitempty" db:"updated_by"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}
