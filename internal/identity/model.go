package identity

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a user or binding does not exist.
	ErrNotFound = errors.New("identity not found")
	// ErrBindingConflict is returned when a phone is actively bound to another user.
	ErrBindingConflict = errors.New("phone already bound to another user")
)

// LabelPrimary tags the binding created by SMS signup.
const LabelPrimary = "primary"

// User represents a goal-tracking account.
type User struct {
	ID          string
	DisplayName string
	Email       string
	Timezone    string
	Phones      []string
	Activated   bool
	DeviceID    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PrimaryPhone returns the first phone on record, if any.
func (u User) PrimaryPhone() string {
	if len(u.Phones) == 0 {
		return ""
	}
	return u.Phones[0]
}

// HasPhone reports whether e164 is on the user's phone list.
func (u User) HasPhone(e164 string) bool {
	for _, p := range u.Phones {
		if p == e164 {
			return true
		}
	}
	return false
}

// PhoneBinding is an explicit, revocable association between a phone and a user.
type PhoneBinding struct {
	E164       string
	UserID     string
	Verified   bool
	BoundAt    time.Time
	ReleasedAt *time.Time
	LastSeen   *time.Time
	Labels     []string
}

// Active reports whether the binding has not been released.
func (b PhoneBinding) Active() bool {
	return b.ReleasedAt == nil
}

// RegisterInput captures the data needed to create an identity for a phone.
type RegisterInput struct {
	Phone       string
	DisplayName string
	Email       string
	Timezone    string
}
