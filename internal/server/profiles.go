package server

import (
	"context"
	"sync"
	"time"

	"cfuaa/internal/realm"
)

// Profile is what the host remembers about a user between logins.
type Profile struct {
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	LastLogin time.Time `json:"lastLogin"`
}

// MemoryProfiles is an in-process realm.ProfileStore.
type MemoryProfiles struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewMemoryProfiles creates an empty store.
func NewMemoryProfiles() *MemoryProfiles {
	return &MemoryProfiles{profiles: make(map[string]Profile)}
}

// UpdateProfile records update for name.
func (m *MemoryProfiles) UpdateProfile(_ context.Context, name string, update realm.ProfileUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[name] = Profile{Email: update.Email, FullName: update.FullName, LastLogin: time.Now()}
	return nil
}

// Get returns the profile stored for name.
func (m *MemoryProfiles) Get(name string) (Profile, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[name]
	return p, ok
}
