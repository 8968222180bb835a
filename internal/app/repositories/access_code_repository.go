package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/acesped/portal/internal/app/models"
	"github.com/acesped/portal/internal/pkg/dberrors"
	"github.com/jackc/pgx/v5"
)

// AccessCodeRepository handles project_access_codes rows
type AccessCodeRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

func NewAccessCodeRepository(db DBTX) *AccessCodeRepository {
	return &AccessCodeRepository{db: db, sb: newStatementBuilder()}
}

func (r *AccessCodeRepository) Create(ctx context.Context, ac *models.AccessCode) error {
	sql, args, err := r.sb.Insert("project_access_codes").
		Columns("code", "access_to", "is_active", "max_uses", "usage_count", "created_by").
		Values(ac.Code, ac.AccessTo, ac.IsActive, ac.MaxUses, ac.UsageCount, ac.CreatedBy).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create access code query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&ac.ID, &ac.CreatedAt, &ac.UpdatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "project_access_codes_code_key") {
			return ErrAccessCodeTaken
		}
		return fmt.Errorf("error creating access code: %w", err)
	}
	return nil
}

func (r *AccessCodeRepository) GetByCode(ctx context.Context, code string) (*models.AccessCode, error) {
	sql, args, err := r.sb.Select("id", "code", "access_to", "is_active", "max_uses", "usage_count",
		"created_by", "created_at", "updated_at").
		From("project_access_codes").
		Where(squirrel.Eq{"code": code}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get access code query: %w", err)
	}

	var ac models.AccessCode
	err = r.db.QueryRow(ctx, sql, args...).Scan(&ac.ID, &ac.Code, &ac.AccessTo, &ac.IsActive, &ac.MaxUses,
		&ac.UsageCount, &ac.CreatedBy, &ac.CreatedAt, &ac.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error retrieving access code: %w", err)
	}
	return &ac, nil
}

// IncrementUsage consumes a use in one statement so concurrent redemptions
// can never push usage_count past max_uses.
func (r *AccessCodeRepository) IncrementUsage(ctx context.Context, code string) ([]int64, bool, error) {
	sql, args, err := r.sb.Update("project_access_codes").
		Set("usage_count", squirrel.Expr("usage_count + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"code": code, "is_active": true}).
		Where(squirrel.Or{
			squirrel.Eq{"max_uses": nil},
			squirrel.Expr("usage_count < max_uses"),
		}).
		Suffix("RETURNING access_to").
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("failed to build increment usage query: %w", err)
	}

	var accessTo []int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&accessTo); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("error incrementing access code usage: %w", err)
	}
	return accessTo, true, nil
}

func (r *AccessCodeRepository) SetActive(ctx context.Context, code string, active bool) (bool, error) {
	sql, args, err := r.sb.Update("project_access_codes").
		Set("is_active", active).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"code": code}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build set active query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("error updating access code: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ProjectRepository handles showcase projects
type ProjectRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

func NewProjectRepository(db DBTX) *ProjectRepository {
	return &ProjectRepository{db: db, sb: newStatementBuilder()}
}

func (r *ProjectRepository) Create(ctx context.Context, p *models.Project) error {
	sql, args, err := r.sb.Insert("projects").
		Columns("title", "summary", "url").
		Values(p.Title, p.Summary, p.URL).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create project query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&p.ID, &p.CreatedAt); err != nil {
		return fmt.Errorf("error creating project: %w", err)
	}
	return nil
}

func (r *ProjectRepository) ListByIDs(ctx context.Context, ids []int64) ([]*models.Project, error) {
	projects := make([]*models.Project, 0, len(ids))
	if len(ids) == 0 {
		return projects, nil
	}
	sql, args, err := r.sb.Select("id", "title", "summary", "url", "created_at").
		From("projects").
		Where(squirrel.Eq{"id": ids}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list projects query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing projects: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Title, &p.Summary, &p.URL, &p.CreatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, &p)
	}
	return projects, rows.Err()
}
