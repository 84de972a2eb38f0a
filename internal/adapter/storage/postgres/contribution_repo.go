package postgres

import (
	"context"
	"fmt"

	"member-finance/internal/core/domain"
)

// ContributionRepo implements ports.ContributionRepository.
type ContributionRepo struct {
	pool Pool
}

// NewContributionRepo creates a new ContributionRepo.
func NewContributionRepo(pool Pool) *ContributionRepo {
	return &ContributionRepo{pool: pool}
}

// ListPaid returns every contribution with status paid.
func (r *ContributionRepo) ListPaid(ctx context.Context) ([]domain.Contribution, error) {
	query := `SELECT id, member_id, amount, status FROM contributions WHERE status = $1`

	rows, err := r.pool.Query(ctx, query, domain.ContributionStatusPaid)
	if err != nil {
		return nil, fmt.Errorf("list paid contributions: %w", err)
	}
	defer rows.Close()

	contributions := []domain.Contribution{}
	for rows.Next() {
		var c domain.Contribution
		if err := rows.Scan(&c.ID, &c.MemberID, &c.Amount, &c.Status); err != nil {
			return nil, fmt.Errorf("scan contribution row: %w", err)
		}
		contributions = append(contributions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contribution rows: %w", err)
	}
	return contributions, nil
}
