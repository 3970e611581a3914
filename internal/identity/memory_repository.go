package identity

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryRepository struct {
	mu       sync.RWMutex
	users    map[string]User
	bindings map[string]PhoneBinding
}

// NewMemoryRepository builds an in-memory identity store for tests and local development.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		users:    make(map[string]User),
		bindings: make(map[string]PhoneBinding),
	}
}

func (r *memoryRepository) CreateUser(_ context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.ID]; exists {
		return errUserExists
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *memoryRepository) GetUser(_ context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return cloneUser(user), nil
}

func (r *memoryRepository) FindUserByPhone(_ context.Context, e164 string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var found *User
	for _, user := range r.users {
		if !user.HasPhone(e164) {
			continue
		}
		if found == nil || user.CreatedAt.Before(found.CreatedAt) {
			u := user
			found = &u
		}
	}
	if found == nil {
		return User{}, ErrNotFound
	}
	return cloneUser(*found), nil
}

func (r *memoryRepository) ListActive(_ context.Context) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var users []User
	for _, user := range r.users {
		if user.Activated {
			users = append(users, cloneUser(user))
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (r *memoryRepository) SetActivated(_ context.Context, id string, activated bool, at time.Time) error {
	return r.mutate(id, func(u *User) {
		u.Activated = activated
		u.UpdatedAt = at
	})
}

func (r *memoryRepository) UpdateDevice(_ context.Context, id, deviceID string, at time.Time) error {
	return r.mutate(id, func(u *User) {
		u.DeviceID = deviceID
		u.UpdatedAt = at
	})
}

func (r *memoryRepository) mutate(id string, fn func(*User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	fn(&user)
	r.users[id] = user
	return nil
}

func (r *memoryRepository) GetBinding(_ context.Context, e164 string) (PhoneBinding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bindings[e164]
	if !ok {
		return PhoneBinding{}, ErrNotFound
	}
	return b, nil
}

func (r *memoryRepository) BindPhone(_ context.Context, e164, userID string, at time.Time) (PhoneBinding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.bindings[e164]; ok && existing.Active() {
		if existing.UserID != userID {
			return PhoneBinding{}, ErrBindingConflict
		}
		return existing, nil
	}

	user, ok := r.users[userID]
	if !ok {
		return PhoneBinding{}, ErrNotFound
	}

	seen := at
	b := PhoneBinding{
		E164:     e164,
		UserID:   userID,
		Verified: true,
		BoundAt:  at,
		LastSeen: &seen,
		Labels:   []string{LabelPrimary},
	}
	r.bindings[e164] = b

	if !user.HasPhone(e164) {
		user.Phones = append(append([]string(nil), user.Phones...), e164)
		user.UpdatedAt = at
		r.users[userID] = user
	}
	return b, nil
}

func (r *memoryRepository) ReleaseBinding(_ context.Context, e164 string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bindings[e164]
	if !ok || !b.Active() {
		return ErrNotFound
	}
	released := at
	b.ReleasedAt = &released
	r.bindings[e164] = b
	return nil
}

func cloneUser(u User) User {
	u.Phones = append([]string(nil), u.Phones...)
	return u
}
