// Package postgres содержит реализации хранилищ на PostgreSQL.
// Полис хранится как JSONB агрегат: водители и автомобили не имеют
// собственных идентификаторов и живут ровно в одном полисе, поэтому
// разносить их по таблицам незачем
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/frontandrew/insura/internal/domain"
	"github.com/frontandrew/insura/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type policyRepository struct {
	db *pgxpool.Pool
}

// NewPolicyRepository создает хранилище полисов на PostgreSQL
func NewPolicyRepository(db *pgxpool.Pool) repository.PolicyRepository {
	return &policyRepository{db: db}
}

func (r *policyRepository) Create(ctx context.Context, policy *domain.Policy) error {
	query := `
		INSERT INTO policies (policy_no, status, holder_name, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	now := time.Now().UTC()
	if policy.PolicyNo == "" {
		suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
		policy.PolicyNo = "POL-" + now.Format("2006") + "-" + suffix
	}
	policy.CreatedAt = now.Format(time.RFC3339)
	policy.UpdatedAt = policy.CreatedAt

	data, err := json.Marshal(policy)
	if err != nil {
		return err
	}

	return r.db.QueryRow(ctx, query,
		policy.PolicyNo,
		policy.PolicyStatus,
		policy.PolicyHolderName,
		data,
		now,
		now,
	).Scan(&policy.ID)
}

func (r *policyRepository) GetByID(ctx context.Context, id int64) (*domain.Policy, error) {
	query := `
		SELECT id, data
		FROM policies
		WHERE id = $1
	`

	var data []byte
	var policyID int64
	err := r.db.QueryRow(ctx, query, id).Scan(&policyID, &data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPolicyNotFound
		}
		return nil, err
	}

	policy := &domain.Policy{}
	if err := json.Unmarshal(data, policy); err != nil {
		return nil, err
	}
	policy.ID = policyID

	return policy, nil
}

func (r *policyRepository) List(ctx context.Context, filters domain.ListFilters) ([]domain.Policy, int, error) {
	query := `
		SELECT id, data, count(*) OVER() AS total
		FROM policies
		WHERE ($1 = '' OR policy_no ILIKE '%' || $1 || '%' OR holder_name ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR status = $2)
		ORDER BY id DESC
		LIMIT $3 OFFSET $4
	`

	page := filters.Page
	if page < 1 {
		page = 1
	}
	perPage := filters.PerPage
	if perPage < 1 {
		perPage = 15
	}

	rows, err := r.db.Query(ctx, query, filters.Search, filters.Status, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	policies := []domain.Policy{}
	total := 0
	for rows.Next() {
		var policyID int64
		var data []byte
		if err := rows.Scan(&policyID, &data, &total); err != nil {
			return nil, 0, err
		}

		policy := domain.Policy{}
		if err := json.Unmarshal(data, &policy); err != nil {
			return nil, 0, err
		}
		policy.ID = policyID
		policies = append(policies, policy)
	}

	if len(policies) == 0 {
		// LIMIT/OFFSET за пределами выборки: общее число берем отдельно
		countQuery := `
			SELECT count(*)
			FROM policies
			WHERE ($1 = '' OR policy_no ILIKE '%' || $1 || '%' OR holder_name ILIKE '%' || $1 || '%')
			  AND ($2 = '' OR status = $2)
		`
		if err := r.db.QueryRow(ctx, countQuery, filters.Search, filters.Status).Scan(&total); err != nil {
			return nil, 0, err
		}
	}

	return policies, total, rows.Err()
}

func (r *policyRepository) Update(ctx context.Context, policy *domain.Policy) error {
	query := `
		UPDATE policies
		SET status = $2, holder_name = $3, data = $4, updated_at = $5
		WHERE id = $1
	`

	now := time.Now().UTC()
	policy.UpdatedAt = now.Format(time.RFC3339)

	data, err := json.Marshal(policy)
	if err != nil {
		return err
	}

	result, err := r.db.Exec(ctx, query,
		policy.ID,
		policy.PolicyStatus,
		policy.PolicyHolderName,
		data,
		now,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrPolicyNotFound
	}

	return nil
}

func (r *policyRepository) Delete(ctx context.Context, id int64) error {
	query := `
		DELETE FROM policies
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrPolicyNotFound
	}

	return nil
}
