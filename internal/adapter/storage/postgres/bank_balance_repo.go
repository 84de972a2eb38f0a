package postgres

import (
	"context"
	"errors"
	"fmt"

	"member-finance/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// BankBalanceRepo implements ports.BankBalanceRepository.
type BankBalanceRepo struct {
	pool Pool
}

// NewBankBalanceRepo creates a new BankBalanceRepo.
func NewBankBalanceRepo(pool Pool) *BankBalanceRepo {
	return &BankBalanceRepo{pool: pool}
}

// Append inserts a new snapshot. Existing snapshots are never touched.
func (r *BankBalanceRepo) Append(ctx context.Context, s *domain.BankBalanceSnapshot) error {
	query := `INSERT INTO bank_balance_updates (id, amount, updated_at, updated_by)
		VALUES ($1, $2, $3, $4)`

	_, err := r.pool.Exec(ctx, query, s.ID, s.Amount, s.UpdatedAt, s.UpdatedBy)
	if err != nil {
		return fmt.Errorf("insert bank balance update: %w", err)
	}
	return nil
}

// Latest returns the most recent snapshot, or nil when the table is empty.
func (r *BankBalanceRepo) Latest(ctx context.Context) (*domain.BankBalanceSnapshot, error) {
	query := `SELECT id, amount, updated_at, updated_by FROM bank_balance_updates
		ORDER BY updated_at DESC LIMIT 1`

	s := &domain.BankBalanceSnapshot{}
	err := r.pool.QueryRow(ctx, query).Scan(&s.ID, &s.Amount, &s.UpdatedAt, &s.UpdatedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest bank balance: %w", err)
	}
	return s, nil
}

// History returns up to limit snapshots, newest first.
func (r *BankBalanceRepo) History(ctx context.Context, limit int) ([]domain.BankBalanceSnapshot, error) {
	query := `SELECT id, amount, updated_at, updated_by FROM bank_balance_updates
		ORDER BY updated_at DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list bank balance updates: %w", err)
	}
	defer rows.Close()

	snapshots := []domain.BankBalanceSnapshot{}
	for rows.Next() {
		var s domain.BankBalanceSnapshot
		if err := rows.Scan(&s.ID, &s.Amount, &s.UpdatedAt, &s.UpdatedBy); err != nil {
			return nil, fmt.Errorf("scan bank balance row: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bank balance rows: %w", err)
	}
	return snapshots, nil
}
