package domain

import "time"

// Owner is the wallet holder's directory record: the mapping between an
// external phone number and the internal owner id. Profile data beyond
// that lives outside this service.
type Owner struct {
	ID          int64     `json:"id"`
	PhoneNumber string    `json:"phone_number"`
	DisplayName string    `json:"display_name,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}
