package clickhouse

import (
	"context"
	"fmt"

	"solana-trading-agent/internal/domain"
	"solana-trading-agent/internal/storage"
)

// TradeLogStore implements storage.TradeLogStore using ClickHouse.
type TradeLogStore struct {
	conn *Conn
}

// NewTradeLogStore creates a new TradeLogStore.
func NewTradeLogStore(conn *Conn) *TradeLogStore {
	return &TradeLogStore{conn: conn}
}

// Compile-time interface check.
var _ storage.TradeLogStore = (*TradeLogStore)(nil)

// Insert appends a trade record. ClickHouse does not enforce uniqueness at
// insert time, so trade_id is checked explicitly first.
func (s *TradeLogStore) Insert(ctx context.Context, t *domain.TradeRecord) error {
	exists, err := s.exists(ctx, t.TradeID)
	if err != nil {
		return fmt.Errorf("check trade exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	query := `
		INSERT INTO trade_log (
			trade_id, user_id, side, input_mint, output_mint, amount, signature, submitted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	err = s.conn.Exec(ctx, query,
		t.TradeID,
		t.UserID,
		t.Side,
		t.InputMint,
		t.OutputMint,
		t.Amount,
		t.Signature,
		t.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

// GetByUser retrieves all records for a user, ordered by submission time
// ascending.
func (s *TradeLogStore) GetByUser(ctx context.Context, userID string) ([]*domain.TradeRecord, error) {
	query := `
		SELECT trade_id, user_id, side, input_mint, output_mint, amount, signature, submitted_at
		FROM trade_log
		WHERE user_id = ?
		ORDER BY submitted_at ASC
	`

	rows, err := s.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer rows.Close()

	var records []*domain.TradeRecord
	for rows.Next() {
		var t domain.TradeRecord
		err := rows.Scan(
			&t.TradeID,
			&t.UserID,
			&t.Side,
			&t.InputMint,
			&t.OutputMint,
			&t.Amount,
			&t.Signature,
			&t.SubmittedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		records = append(records, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trades: %w", err)
	}
	return records, nil
}

// exists reports whether a trade_id is already present.
func (s *TradeLogStore) exists(ctx context.Context, tradeID string) (bool, error) {
	query := `SELECT count() FROM trade_log WHERE trade_id = ?`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, tradeID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
