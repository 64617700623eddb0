package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/rmacedo/presenteio/internal/apperror"
	"github.com/rmacedo/presenteio/internal/model"
	"github.com/rmacedo/presenteio/internal/repository"
)

// compile-time check that *DB implements repository.ListRepository
var _ repository.ListRepository = (*DB)(nil)

const listColumns = `id, code, name, color, owner_id, owner_name, items, created_at`

// Create inserts a new list. The store assigns the opaque id; code, owner
// and color come in already decided by the registry.
func (db *DB) Create(ctx context.Context, list *model.List) error {
	list.ID = xid.New().String()
	list.CreatedAt = time.Now()
	if list.Items == nil {
		list.Items = []model.Item{}
	}

	items, err := json.Marshal(list.Items)
	if err != nil {
		return fmt.Errorf("sqlite: encoding items for list %s: %w", list.ID, err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO lists (`+listColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		list.ID,
		list.Code,
		list.Name,
		list.Color,
		list.OwnerID,
		list.OwnerName,
		string(items),
		list.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating list: %w", err)
	}

	return nil
}

// GetByID retrieves a single list by its opaque id.
func (db *DB) GetByID(ctx context.Context, id string) (*model.List, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+listColumns+` FROM lists WHERE id = ?`, id)

	list, err := scanList(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("list", id)
		}
		return nil, fmt.Errorf("sqlite: getting list %s: %w", id, err)
	}
	return list, nil
}

// GetByCode retrieves a list by its shareable code. The caller normalizes
// the code first; the stored value is always upper-case.
func (db *DB) GetByCode(ctx context.Context, code string) (*model.List, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+listColumns+` FROM lists WHERE code = ?`, code)

	list, err := scanList(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.CodeNotFound(code)
		}
		return nil, fmt.Errorf("sqlite: getting list by code %s: %w", code, err)
	}
	return list, nil
}

// ListByOwner returns every list owned by the given principal, oldest first.
func (db *DB) ListByOwner(ctx context.Context, ownerID string) ([]model.List, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+listColumns+` FROM lists WHERE owner_id = ? ORDER BY created_at`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing lists for owner %s: %w", ownerID, err)
	}
	defer rows.Close()

	lists := make([]model.List, 0)
	for rows.Next() {
		list, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning list row: %w", err)
		}
		lists = append(lists, *list)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating lists: %w", err)
	}

	return lists, nil
}

// Rename updates only the list's name.
func (db *DB) Rename(ctx context.Context, id, name string) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE lists SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("sqlite: renaming list %s: %w", id, err)
	}
	return requireAffected(result, "list", id)
}

// ReplaceItems rewrites the whole item sequence of a list. This is the only
// item write path: claims, edits and removals all funnel through it, so the
// last writer always wins at the sequence level.
func (db *DB) ReplaceItems(ctx context.Context, id string, items []model.Item) error {
	if items == nil {
		items = []model.Item{}
	}
	encoded, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("sqlite: encoding items for list %s: %w", id, err)
	}

	result, err := db.conn.ExecContext(ctx,
		`UPDATE lists SET items = ? WHERE id = ?`, string(encoded), id)
	if err != nil {
		return fmt.Errorf("sqlite: replacing items of list %s: %w", id, err)
	}
	return requireAffected(result, "list", id)
}

// Delete removes the whole list document. Items are embedded, so there is
// nothing to cascade — deleting the row deletes everything.
func (db *DB) Delete(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM lists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting list %s: %w", id, err)
	}
	return requireAffected(result, "list", id)
}

// CodeExists reports whether any list already carries the given code.
func (db *DB) CodeExists(ctx context.Context, codeValue string) (bool, error) {
	var n int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM lists WHERE code = ?`, codeValue).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking code %s: %w", codeValue, err)
	}
	return n > 0, nil
}

// UpdateOwnerName rewrites owner_name on every list the principal owns.
// A single UPDATE statement runs atomically, which gives the fan-out its
// all-or-nothing batch semantics.
func (db *DB) UpdateOwnerName(ctx context.Context, ownerID, name string) (int64, error) {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE lists SET owner_name = ? WHERE owner_id = ? AND owner_name != ?`,
		name, ownerID, name)
	if err != nil {
		return 0, fmt.Errorf("sqlite: updating owner name for %s: %w", ownerID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return n, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanList(s scanner) (*model.List, error) {
	var (
		list     model.List
		rawItems string
	)
	err := s.Scan(
		&list.ID,
		&list.Code,
		&list.Name,
		&list.Color,
		&list.OwnerID,
		&list.OwnerName,
		&rawItems,
		&list.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(rawItems), &list.Items); err != nil {
		return nil, fmt.Errorf("decoding items of list %s: %w", list.ID, err)
	}
	return &list, nil
}

func requireAffected(result sql.Result, resource, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}
