package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/snippetbin/internal/apperror"
	"github.com/sakif/snippetbin/internal/model"
	"github.com/sakif/snippetbin/internal/repository"
)

// Compile-time check that *DB implements repository.SnippetRepository.
var _ repository.SnippetRepository = (*DB)(nil)

const snippetColumns = `s.id, s.title, s.code, s.line_numbers, s.language, s.style,
	 s.highlighted, s.owner_id, s.created_at, u.username`

func scanSnippet(row interface{ Scan(...any) error }, s *model.Snippet) error {
	return row.Scan(
		&s.ID,
		&s.Title,
		&s.Code,
		&s.LineNumbers,
		&s.Language,
		&s.Style,
		&s.Highlighted,
		&s.OwnerID,
		&s.Created,
		&s.Owner,
	)
}

// Create inserts a new snippet and fills in its store-assigned id and
// creation timestamp. The caller supplies a complete record including the
// freshly computed highlighted markup; the row is written in one statement,
// so a snippet never persists without a current rendering.
func (db *DB) Create(ctx context.Context, snippet *model.Snippet) error {
	snippet.Created = time.Now().UTC()

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO snippets (title, code, line_numbers, language, style, highlighted, owner_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		snippet.Title,
		snippet.Code,
		snippet.LineNumbers,
		snippet.Language,
		snippet.Style,
		snippet.Highlighted,
		snippet.OwnerID,
		snippet.Created,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating snippet: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new snippet id: %w", err)
	}
	snippet.ID = id

	return nil
}

// GetByID retrieves a single snippet, joining the owner's username so the
// serialized record can render the owner as a display name.
func (db *DB) GetByID(ctx context.Context, id int64) (*model.Snippet, error) {
	var snippet model.Snippet

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+snippetColumns+`
		 FROM snippets s
		 JOIN users u ON u.id = s.owner_id
		 WHERE s.id = ?`,
		id,
	)
	if err := scanSnippet(row, &snippet); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("snippet", fmt.Sprintf("%d", id))
		}
		return nil, fmt.Errorf("sqlite: getting snippet %d: %w", id, err)
	}

	return &snippet, nil
}

// List retrieves snippets in creation order with pagination.
func (db *DB) List(ctx context.Context, opts repository.ListOptions) ([]model.Snippet, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+snippetColumns+`
		 FROM snippets s
		 JOIN users u ON u.id = s.owner_id
		 ORDER BY s.created_at ASC, s.id ASC
		 LIMIT ? OFFSET ?`,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing snippets: %w", err)
	}
	defer rows.Close()

	snippets := make([]model.Snippet, 0, limit)
	for rows.Next() {
		var s model.Snippet
		if err := scanSnippet(rows, &s); err != nil {
			return nil, fmt.Errorf("sqlite: scanning snippet row: %w", err)
		}
		snippets = append(snippets, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating snippets: %w", err)
	}

	return snippets, nil
}

// ListIDsByOwner returns the ids of all snippets owned by the given user, in
// creation order. Used by the user resource's snippets back-relation.
func (db *DB) ListIDsByOwner(ctx context.Context, ownerID string) ([]int64, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id FROM snippets
		 WHERE owner_id = ?
		 ORDER BY created_at ASC, id ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing snippets for owner %s: %w", ownerID, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scanning snippet id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating snippet ids: %w", err)
	}

	return ids, nil
}

// Update writes back a snippet's mutable fields in a single statement.
// id, created_at and owner_id are never touched. RowsAffected detects a
// vanished record without a prior SELECT.
func (db *DB) Update(ctx context.Context, snippet *model.Snippet) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE snippets
		 SET title = ?, code = ?, line_numbers = ?, language = ?, style = ?, highlighted = ?
		 WHERE id = ?`,
		snippet.Title,
		snippet.Code,
		snippet.LineNumbers,
		snippet.Language,
		snippet.Style,
		snippet.Highlighted,
		snippet.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating snippet %d: %w", snippet.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("snippet", fmt.Sprintf("%d", snippet.ID))
	}

	return nil
}

// Delete removes a snippet by id. Same RowsAffected pattern as Update.
func (db *DB) Delete(ctx context.Context, id int64) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM snippets WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting snippet %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("snippet", fmt.Sprintf("%d", id))
	}

	return nil
}
