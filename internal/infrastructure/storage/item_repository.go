package storage

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"InsightStream/internal/domain"
	"InsightStream/internal/ports"
)

// ItemRepository persists the ordered item collection between runs. Writes
// touch only the rows they change, so several processes can share a database.
type ItemRepository struct {
	db *DB
}

var _ ports.ItemRepository = (*ItemRepository)(nil)

// NewItemRepository wires the items table of db.
func NewItemRepository(db *DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// LoadItems returns the stored collection, newest first.
func (r *ItemRepository) LoadItems(ctx context.Context) ([]domain.Item, error) {
	query, args, err := r.db.builder.
		Select("payload").
		From(itemsTable).
		OrderBy("seq DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select items: %w", err)
	}

	rows, err := r.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}

	items := make([]domain.Item, 0)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan item: %w", err)
		}
		var item domain.Item
		if err := json.Unmarshal([]byte(payload), &item); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("decode item: %w", err)
		}
		items = append(items, item)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return items, nil
}

// AppendItems stores a newest-first batch ahead of everything already
// stored. Ids that are already present keep their row.
func (r *ItemRepository) AppendItems(ctx context.Context, batch []domain.Item) (err error) {
	if len(batch) == 0 {
		return nil
	}

	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Oldest first, so the head of the batch gets the highest seq.
	for i := len(batch) - 1; i >= 0; i-- {
		item := batch[i]
		payload, encErr := json.Marshal(item)
		if encErr != nil {
			return fmt.Errorf("encode item %s: %w", item.ID, encErr)
		}
		ins, args, buildErr := r.db.builder.
			Insert(itemsTable).
			Columns("id", "seq", "analyzed", "payload").
			Values(item.ID, sq.Expr(nextSeq), flag(item.Analyzed), string(payload)).
			Suffix("ON CONFLICT (id) DO NOTHING").
			ToSql()
		if buildErr != nil {
			return fmt.Errorf("build insert item: %w", buildErr)
		}
		if _, err = tx.ExecContext(ctx, ins, args...); err != nil {
			return fmt.Errorf("insert item %s: %w", item.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// UpdateItem stores the analysis carried by item. A row that already holds
// an analysis is left as it is.
func (r *ItemRepository) UpdateItem(ctx context.Context, item domain.Item) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode item %s: %w", item.ID, err)
	}

	query, args, err := r.db.builder.
		Update(itemsTable).
		Set("payload", string(payload)).
		Set("analyzed", flag(item.Analyzed)).
		Where(sq.Eq{"id": item.ID, "analyzed": 0}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update item: %w", err)
	}
	if _, err := r.db.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update item %s: %w", item.ID, err)
	}
	return nil
}

const nextSeq = "(SELECT COALESCE(MAX(seq), 0) + 1 FROM " + itemsTable + ")"

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}
