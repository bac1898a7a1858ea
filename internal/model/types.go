package model

import "time"

// Identity is the durable local record for an authenticated account.
// It is keyed internally by ID and externally by the identity provider's
// subject claim. Rows are written once at provisioning time and never
// updated afterwards.
type Identity struct {
	ID           int64     `json:"id"`
	Subject      string    `json:"subject"`
	Email        *string   `json:"email,omitempty"`
	GivenName    *string   `json:"givenName,omitempty"`
	FamilyName   *string   `json:"familyName,omitempty"`
	CreationTime time.Time `json:"creationTime"`
}

// Note is a user-owned title+content unit with an optional single
// attachment. ImageKey is the opaque object-store reference; it is never
// exposed to callers directly, only via signed URLs.
type Note struct {
	ID           int64     `json:"id"`
	OwnerID      int64     `json:"ownerId"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	ImageKey     *string   `json:"-"`
	CreationTime time.Time `json:"createdAt"`
	UpdateTime   time.Time `json:"updatedAt"`
}
