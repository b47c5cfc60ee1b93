package models

import "time"

// Video is an uploaded media record. MediaRef is the opaque object
// storage key of the uploaded bytes. OwnerID references the owning user
// and is immutable after creation.
type Video struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	MediaRef    string    `json:"video"`
	Created     time.Time `json:"created"`
	OwnerID     int64     `json:"owner_id"`
}
