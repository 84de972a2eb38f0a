package postgres

import (
	"context"
	"fmt"

	"member-finance/internal/core/domain"
)

// MemberRepo implements ports.MemberRepository over the profiles table.
type MemberRepo struct {
	pool Pool
}

// NewMemberRepo creates a new MemberRepo.
func NewMemberRepo(pool Pool) *MemberRepo {
	return &MemberRepo{pool: pool}
}

// List returns all members ordered by name.
func (r *MemberRepo) List(ctx context.Context) (domain.MemberDirectory, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, full_name FROM profiles ORDER BY full_name`)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	dir := domain.MemberDirectory{}
	for rows.Next() {
		var m domain.Member
		if err := rows.Scan(&m.ID, &m.FullName); err != nil {
			return nil, fmt.Errorf("scan member row: %w", err)
		}
		dir = append(dir, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate member rows: %w", err)
	}
	return dir, nil
}
