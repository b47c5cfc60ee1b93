// Package models defines the persistent record types of the service.
package models

// User is an identity record. Email, username, and phone number are each
// globally unique; phone is optional and only set via profile update.
// The password hash stays internal to the service and never leaves over
// the wire.
type User struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	PhoneNumber  string `json:"phone_number,omitempty"`
	PasswordHash string `json:"-"`
	IsActive     bool   `json:"is_active"`
}
