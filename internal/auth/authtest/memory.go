// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

// Package authtest provides in-memory auth fixtures for tests.
package authtest

import (
	"context"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/schoolhub/schoolhub/internal/auth"
)

// MemoryDirectory is an AccountDirectory backed by maps. Emails are expected
// to be normalized by the caller, as the service does.
type MemoryDirectory struct {
	mu      sync.RWMutex
	byID    map[ulid.ULID]*auth.Account
	byEmail map[string]ulid.ULID
}

// NewMemoryDirectory returns an empty MemoryDirectory.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		byID:    make(map[ulid.ULID]*auth.Account),
		byEmail: make(map[string]ulid.ULID),
	}
}

// Create stores a copy of account.
func (d *MemoryDirectory) Create(_ context.Context, account *auth.Account) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	email := auth.NormalizeIdentity(account.Email)
	if _, ok := d.byEmail[email]; ok {
		return auth.ErrIdentityTaken
	}
	stored := *account
	d.byID[account.ID] = &stored
	d.byEmail[email] = account.ID
	return nil
}

// GetByEmail returns a copy of the account registered under email.
func (d *MemoryDirectory) GetByEmail(_ context.Context, email string) (*auth.Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	id, ok := d.byEmail[auth.NormalizeIdentity(email)]
	if !ok {
		return nil, auth.ErrNotFound
	}
	found := *d.byID[id]
	return &found, nil
}

// GetByID returns a copy of the account with id.
func (d *MemoryDirectory) GetByID(_ context.Context, id ulid.ULID) (*auth.Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	account, ok := d.byID[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	found := *account
	return &found, nil
}

// Delete removes the account with id, simulating an account that disappears
// while its tokens are still valid.
func (d *MemoryDirectory) Delete(id ulid.ULID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if account, ok := d.byID[id]; ok {
		delete(d.byEmail, auth.NormalizeIdentity(account.Email))
		delete(d.byID, id)
	}
}

// Len returns the number of stored accounts.
func (d *MemoryDirectory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.byID)
}
