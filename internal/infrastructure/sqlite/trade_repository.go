package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"clusterflow/internal/domain/entities"
	"clusterflow/internal/domain/repositories"
)

type TradeRepository struct {
	db *sql.DB
}

func NewTradeRepository(db *sql.DB) repositories.TradeRepository {
	return &TradeRepository{db: db}
}

// insertQuery ignores duplicate IDs so that overlapping backfills stay
// idempotent: re-inserting an already stored trade is a silent no-op.
const insertQuery = `
	INSERT INTO trades (id, exchange, symbol, price, quantity, side, trade_time)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO NOTHING
`

func (r *TradeRepository) Save(ctx context.Context, trade *entities.Trade) error {
	_, err := r.db.ExecContext(ctx, insertQuery,
		trade.ID,
		trade.Exchange.String(),
		trade.Symbol,
		trade.Price,
		trade.Quantity,
		string(trade.Side),
		trade.Time.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save trade: %w", err)
	}
	return nil
}

func (r *TradeRepository) SaveBatch(ctx context.Context, trades []*entities.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}
	defer stmt.Close()

	for _, trade := range trades {
		_, err := stmt.ExecContext(ctx,
			trade.ID,
			trade.Exchange.String(),
			trade.Symbol,
			trade.Price,
			trade.Quantity,
			string(trade.Side),
			trade.Time.UnixMilli(),
		)
		if err != nil {
			return fmt.Errorf("failed to add trade to batch %s: %w", trade.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}

	return nil
}

func (r *TradeRepository) GetByID(ctx context.Context, id string) (*entities.Trade, error) {
	query := `
		SELECT id, exchange, symbol, price, quantity, side, trade_time
		FROM trades
		WHERE id = ?
		LIMIT 1
	`

	trade, err := scanTrade(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trade by id: %w", err)
	}
	return trade, nil
}

func (r *TradeRepository) GetSince(ctx context.Context, symbol string, exchange entities.Exchange, since time.Time) ([]*entities.Trade, error) {
	query := `
		SELECT id, exchange, symbol, price, quantity, side, trade_time
		FROM trades
		WHERE symbol = ? AND exchange = ? AND trade_time >= ?
	`

	rows, err := r.db.QueryContext(ctx, query, symbol, exchange.String(), since.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var trades []*entities.Trade
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, trade)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trades: %w", err)
	}

	return trades, nil
}

func (r *TradeRepository) CountBySymbol(ctx context.Context, symbol string, exchange entities.Exchange) (int64, error) {
	query := `SELECT COUNT(*) FROM trades WHERE symbol = ? AND exchange = ?`

	var count int64
	if err := r.db.QueryRowContext(ctx, query, symbol, exchange.String()).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count trades: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrade(row rowScanner) (*entities.Trade, error) {
	var (
		trade    entities.Trade
		exchange string
		side     string
		tradeMs  int64
	)
	err := row.Scan(
		&trade.ID,
		&exchange,
		&trade.Symbol,
		&trade.Price,
		&trade.Quantity,
		&side,
		&tradeMs,
	)
	if err != nil {
		return nil, err
	}

	trade.Exchange = entities.Exchange(exchange)
	trade.Side = entities.Side(side)
	trade.Time = time.UnixMilli(tradeMs)
	return &trade, nil
}
