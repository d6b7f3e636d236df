package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound means the identity has no profile in the directory.
var ErrNotFound = errors.New("identity not found")

// Profile is the directory's view of a player: everything the game layer
// needs and nothing else.
type Profile struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	AvatarRef   string `json:"avatarRef,omitempty"`
}

// Directory resolves identities to profiles. The engine consults it once
// per join and caches the result on the seat, never per action.
type Directory interface {
	Lookup(ctx context.Context, id string) (Profile, error)
}

// PostgresDirectory reads profiles from the accounts database.
type PostgresDirectory struct {
	db *sql.DB
}

func NewPostgresDirectory(db *sql.DB) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

func (d *PostgresDirectory) Lookup(ctx context.Context, id string) (Profile, error) {
	p := Profile{ID: id}
	var avatar sql.NullString
	err := d.db.QueryRowContext(ctx,
		`SELECT display_name, avatar_ref FROM profiles WHERE id = $1`, id,
	).Scan(&p.DisplayName, &avatar)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, fmt.Errorf("lookup profile %s: %w", id, err)
	}
	p.AvatarRef = avatar.String
	return p, nil
}

// Upsert creates or refreshes a profile row (login path, not game path).
func (d *PostgresDirectory) Upsert(ctx context.Context, p Profile) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO profiles (id, display_name, avatar_ref)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET display_name = EXCLUDED.display_name, avatar_ref = EXCLUDED.avatar_ref`,
		p.ID, p.DisplayName, p.AvatarRef)
	if err != nil {
		return fmt.Errorf("upsert profile %s: %w", p.ID, err)
	}
	return nil
}

// StaticDirectory is an in-memory directory for tests and local runs.
type StaticDirectory struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

func NewStaticDirectory(profiles ...Profile) *StaticDirectory {
	d := &StaticDirectory{profiles: make(map[string]Profile)}
	for _, p := range profiles {
		d.profiles[p.ID] = p
	}
	return d
}

func (d *StaticDirectory) Put(p Profile) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.profiles[p.ID] = p
}

func (d *StaticDirectory) Lookup(_ context.Context, id string) (Profile, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.profiles[id]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return p, nil
}
