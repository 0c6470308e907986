package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/erazemk/garderoba/internal/model"
)

// ItemDocument is one stored closet document. Doc holds the raw JSON exactly as
// persisted; decoding and schema migration happen in the closet package.
type ItemDocument struct {
	ID            string
	UserID        int64
	SchemaVersion int
	Status        string
	Doc           []byte
	BlobKeys      []string
	CreatedAt     time.Time
}

const itemColumns = `id, user_id, schema_version, status, doc, blob_keys, created_at`

// InsertPendingItem stages a new item document. Pending documents are invisible
// to listings until CommitItem succeeds.
func InsertPendingItem(ctx context.Context, db *sql.DB, d ItemDocument) error {
	keys, err := json.Marshal(d.BlobKeys)
	if err != nil {
		return fmt.Errorf("encoding blob keys: %w", err)
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO items (id, user_id, schema_version, status, doc, blob_keys)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.UserID, d.SchemaVersion, model.ItemStatusPending, string(d.Doc), string(keys),
	)
	if err != nil {
		return fmt.Errorf("inserting pending item: %w", err)
	}
	return nil
}

// CommitItem replaces a pending document's body and marks it committed.
func CommitItem(ctx context.Context, db *sql.DB, userID int64, id string, doc []byte) error {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET doc = ?, status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ? AND status = ?`,
		string(doc), model.ItemStatusCommitted, id, userID, model.ItemStatusPending,
	)
	if err != nil {
		return fmt.Errorf("committing item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("committing item: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("committing item: no pending item %s", id)
	}
	return nil
}

// DeletePendingItem removes a staged document. Committed items are never deleted.
func DeletePendingItem(ctx context.Context, db *sql.DB, id string) error {
	_, err := db.ExecContext(ctx,
		`DELETE FROM items WHERE id = ? AND status = ?`, id, model.ItemStatusPending,
	)
	if err != nil {
		return fmt.Errorf("deleting pending item: %w", err)
	}
	return nil
}

// GetItemDocument returns a committed document owned by userID.
func GetItemDocument(ctx context.Context, db *sql.DB, userID int64, id string) (*ItemDocument, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ? AND user_id = ? AND status = ?`,
		id, userID, model.ItemStatusCommitted,
	)
	d, err := scanItemDocument(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return d, nil
}

// ListItemDocuments returns all committed documents of a user in insertion order.
func ListItemDocuments(ctx context.Context, db *sql.DB, userID int64) ([]ItemDocument, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items
		 WHERE user_id = ? AND status = ? ORDER BY created_at, rowid`,
		userID, model.ItemStatusCommitted,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var docs []ItemDocument
	for rows.Next() {
		d, err := scanItemDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		docs = append(docs, *d)
	}
	return docs, rows.Err()
}

// ListPendingItems returns documents staged before the cutoff.
func ListPendingItems(ctx context.Context, db *sql.DB, before time.Time) ([]ItemDocument, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items
		 WHERE status = ? AND created_at < ? ORDER BY created_at`,
		model.ItemStatusPending, before.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return nil, fmt.Errorf("listing pending items: %w", err)
	}
	defer rows.Close()

	var docs []ItemDocument
	for rows.Next() {
		d, err := scanItemDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning pending item: %w", err)
		}
		docs = append(docs, *d)
	}
	return docs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItemDocument(s rowScanner) (*ItemDocument, error) {
	var d ItemDocument
	var doc, keys string
	if err := s.Scan(&d.ID, &d.UserID, &d.SchemaVersion, &d.Status, &doc, &keys, &d.CreatedAt); err != nil {
		return nil, err
	}
	d.Doc = []byte(doc)
	if err := json.Unmarshal([]byte(keys), &d.BlobKeys); err != nil {
		// A damaged key list only affects cleanup, never reads.
		d.BlobKeys = nil
	}
	return &d, nil
}
