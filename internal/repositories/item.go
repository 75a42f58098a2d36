package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
)

const itemColumns = `id, kind, title, artist, name, disambiguation, year, release_date, source_url,
		external_id, cover_url, added_at, listened, listen_again, item_order`

// ItemRepository implements [models.ItemRepository] over the items table.
type ItemRepository struct {
	db *sql.DB
}

// NewItemRepository creates a new ItemRepository with the given database connection
func NewItemRepository(db *sql.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// Create inserts a new [models.Item]. The item must already carry its id and added_at.
func (r *ItemRepository) Create(ctx context.Context, item models.Item) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO items (` + itemColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		item.ID,
		string(item.Kind),
		nullString(item.Title),
		nullString(item.Artist),
		nullString(item.Name),
		nullString(item.Disambiguation),
		nullString(item.Year),
		nullString(item.ReleaseDate),
		nullString(item.SourceURL),
		nullString(item.ExternalID),
		nullString(item.CoverURL),
		item.AddedAt.UTC(),
		item.Listened,
		item.ListenAgain,
		nullInt(item.Order),
	)
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}
	return nil
}

// Get retrieves an item by id
func (r *ItemRepository) Get(ctx context.Context, id string) (models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = ?`

	item, err := scanItem(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Item{}, fmt.Errorf("%w: %s", shared.ErrItemNotFound, id)
	}
	return item, err
}

// List returns every item in load order: manual order ascending with unordered rows last.
//
// Unordered rows come back in insertion order; the in-memory ordering policy decides their final position.
func (r *ItemRepository) List(ctx context.Context) ([]models.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		ORDER BY item_order IS NULL, item_order ASC, rowid ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return items, nil
}

// SetListened updates the listened flag
func (r *ItemRepository) SetListened(ctx context.Context, id string, listened bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE items SET listened = ? WHERE id = ?`, listened, id)
	if err != nil {
		return fmt.Errorf("failed to update listened: %w", err)
	}
	return expectOne(result, id)
}

// SetListenAgain updates the listen-again flag
func (r *ItemRepository) SetListenAgain(ctx context.Context, id string, again bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE items SET listen_again = ? WHERE id = ?`, again, id)
	if err != nil {
		return fmt.Errorf("failed to update listen_again: %w", err)
	}
	return expectOne(result, id)
}

// SetArtwork stores a resolved cover. An empty externalID leaves the stored identifier untouched.
func (r *ItemRepository) SetArtwork(ctx context.Context, id, coverURL, externalID string) error {
	query := `
		UPDATE items
		SET cover_url = ?, external_id = COALESCE(?, external_id)
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, coverURL, nullString(externalID), id)
	if err != nil {
		return fmt.Errorf("failed to update artwork: %w", err)
	}
	return expectOne(result, id)
}

// SetExternalID stores a discovered identifier without touching the cover
func (r *ItemRepository) SetExternalID(ctx context.Context, id, externalID string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE items SET external_id = ? WHERE id = ?`, externalID, id)
	if err != nil {
		return fmt.Errorf("failed to update external_id: %w", err)
	}
	return expectOne(result, id)
}

// SaveOrder writes every (id, order) pair in one transaction. Ids without a row are skipped.
func (r *ItemRepository) SaveOrder(ctx context.Context, updates []models.OrderUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `UPDATE items SET item_order = ? WHERE id = ?`)
		if err != nil {
			return fmt.Errorf("failed to prepare order update: %w", err)
		}
		defer stmt.Close()

		for _, u := range updates {
			if _, err := stmt.ExecContext(ctx, u.Order, u.ID); err != nil {
				return fmt.Errorf("failed to update order for %s: %w", u.ID, err)
			}
		}
		return nil
	})
}

// Delete removes an item row
func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return expectOne(result, id)
}

type scanner interface {
	Scan(dest ...any) error
}

// scanItem scans a row from either [sql.Row] or [sql.Rows] into a [models.Item]
func scanItem(s scanner) (models.Item, error) {
	var (
		item                                         models.Item
		kind                                         string
		title, artist, name, disambiguation, year    sql.NullString
		releaseDate, sourceURL, externalID, coverURL sql.NullString
		addedAt                                      time.Time
		order                                        sql.NullInt64
	)

	err := s.Scan(
		&item.ID, &kind, &title, &artist, &name, &disambiguation, &year, &releaseDate, &sourceURL,
		&externalID, &coverURL, &addedAt, &item.Listened, &item.ListenAgain, &order,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Item{}, err
	}
	if err != nil {
		return models.Item{}, fmt.Errorf("failed to scan item: %w", err)
	}

	item.Kind = models.Kind(kind)
	item.Title = title.String
	item.Artist = artist.String
	item.Name = name.String
	item.Disambiguation = disambiguation.String
	item.Year = year.String
	item.ReleaseDate = releaseDate.String
	item.SourceURL = sourceURL.String
	item.ExternalID = externalID.String
	item.CoverURL = coverURL.String
	item.AddedAt = addedAt
	if order.Valid {
		item.Order = models.IntPtr(int(order.Int64))
	}
	return item, nil
}

var _ models.ItemRepository = (*ItemRepository)(nil)
