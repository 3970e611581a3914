package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
)

const maxDeviceIDLength = 64

var errUserExists = errors.New("user exists")

// Service manages identity resolution and phone binding lifecycle.
type Service struct {
	repo            Repository
	defaultTimezone string
	now             func() time.Time
}

// NewService creates a new identity service. defaultTimezone is assigned to
// users registered without one.
func NewService(repo Repository, defaultTimezone string) *Service {
	return &Service{repo: repo, defaultTimezone: defaultTimezone, now: func() time.Time { return time.Now().UTC() }}
}

// Resolve maps a canonical phone to a user id. The active binding index is
// consulted first; users listing the phone are the fallback.
func (s *Service) Resolve(ctx context.Context, e164 string) (string, bool, error) {
	b, err := s.repo.GetBinding(ctx, e164)
	switch {
	case err == nil && b.Active():
		return b.UserID, true, nil
	case err != nil && !errors.Is(err, ErrNotFound):
		return "", false, fmt.Errorf("lookup binding: %w", err)
	}

	user, err := s.repo.FindUserByPhone(ctx, e164)
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup user by phone: %w", err)
	}
	return user.ID, true, nil
}

// IsBound reports whether e164 has an active binding to exactly userID.
func (s *Service) IsBound(ctx context.Context, e164, userID string) (bool, error) {
	b, err := s.repo.GetBinding(ctx, e164)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup binding: %w", err)
	}
	return b.Active() && b.UserID == userID, nil
}

// Register returns the identity reachable from input.Phone, creating one when
// none exists. New identities list the phone but are neither bound nor
// activated until the user confirms over SMS.
func (s *Service) Register(ctx context.Context, input RegisterInput) (User, bool, error) {
	if input.Phone == "" {
		return User{}, false, errors.New("phone is required")
	}

	if id, ok, err := s.Resolve(ctx, input.Phone); err != nil {
		return User{}, false, err
	} else if ok {
		user, err := s.repo.GetUser(ctx, id)
		return user, false, err
	}

	tz := input.Timezone
	if tz == "" {
		tz = s.defaultTimezone
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return User{}, false, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}

	now := s.now()
	user := User{
		ID:          uuid.New().String(),
		DisplayName: strings.TrimSpace(input.DisplayName),
		Email:       strings.TrimSpace(input.Email),
		Timezone:    tz,
		Phones:      []string{input.Phone},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return User{}, false, err
	}
	return user, true, nil
}

// Bind confirms e164 as belonging to userID and activates the user.
// Re-binding an already bound pair succeeds without changes.
func (s *Service) Bind(ctx context.Context, e164, userID string) (PhoneBinding, error) {
	now := s.now()
	b, err := s.repo.BindPhone(ctx, e164, userID, now)
	if err != nil {
		return PhoneBinding{}, err
	}
	if err := s.repo.SetActivated(ctx, userID, true, now); err != nil {
		return PhoneBinding{}, fmt.Errorf("activate user: %w", err)
	}
	return b, nil
}

// Release deactivates the binding for e164.
func (s *Service) Release(ctx context.Context, e164 string) error {
	return s.repo.ReleaseBinding(ctx, e164, s.now())
}

// SetActivated toggles whether the user receives reminders.
func (s *Service) SetActivated(ctx context.Context, userID string, activated bool) error {
	return s.repo.SetActivated(ctx, userID, activated, s.now())
}

// PairDevice stores an opaque device identifier for the user.
func (s *Service) PairDevice(ctx context.Context, userID, deviceID string) error {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return errors.New("device id is required")
	}
	if len(deviceID) > maxDeviceIDLength {
		return fmt.Errorf("device id longer than %d characters", maxDeviceIDLength)
	}
	return s.repo.UpdateDevice(ctx, userID, deviceID, s.now())
}

// Get fetches a user by id.
func (s *Service) Get(ctx context.Context, userID string) (User, error) {
	return s.repo.GetUser(ctx, userID)
}

// ListActive returns users that currently receive reminders.
func (s *Service) ListActive(ctx context.Context) ([]User, error) {
	return s.repo.ListActive(ctx)
}
