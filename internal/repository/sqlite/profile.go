package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rmacedo/presenteio/internal/apperror"
	"github.com/rmacedo/presenteio/internal/model"
	"github.com/rmacedo/presenteio/internal/repository"
)

// compile-time check that *DB implements repository.ProfileRepository
var _ repository.ProfileRepository = (*DB)(nil)

// Get retrieves a profile by principal id.
func (db *DB) Get(ctx context.Context, id string) (*model.Profile, error) {
	var p model.Profile
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, display_name, photo_url, likes, dislikes,
		        shirt_size, pants_size, shoe_size, created_at, updated_at
		 FROM profiles WHERE id = ?`, id,
	).Scan(
		&p.ID,
		&p.DisplayName,
		&p.PhotoURL,
		&p.Likes,
		&p.Dislikes,
		&p.ShirtSize,
		&p.PantsSize,
		&p.ShoeSize,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("profile", id)
		}
		return nil, fmt.Errorf("sqlite: getting profile %s: %w", id, err)
	}
	return &p, nil
}

// Save upserts a profile. The id is the identity provider's subject, so it
// is always known up front — first login inserts, later saves update.
func (db *DB) Save(ctx context.Context, p *model.Profile) error {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO profiles
			(id, display_name, photo_url, likes, dislikes,
			 shirt_size, pants_size, shoe_size, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			display_name = excluded.display_name,
			photo_url    = excluded.photo_url,
			likes        = excluded.likes,
			dislikes     = excluded.dislikes,
			shirt_size   = excluded.shirt_size,
			pants_size   = excluded.pants_size,
			shoe_size    = excluded.shoe_size,
			updated_at   = excluded.updated_at`,
		p.ID,
		p.DisplayName,
		p.PhotoURL,
		p.Likes,
		p.Dislikes,
		p.ShirtSize,
		p.PantsSize,
		p.ShoeSize,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: saving profile %s: %w", p.ID, err)
	}
	return nil
}
