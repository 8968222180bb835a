package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/acesped/portal/internal/db"
	"github.com/jackc/pgx/v5"
)

func newStatementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// NewPostgresRepositories wires every repository to the pool.
func NewPostgresRepositories(pg *db.PostgresDB) *Repositories {
	repos := newPostgresRepositories(pg.Pool)
	repos.Transactor = &pgTransactor{pg: pg}
	return repos
}

func newPostgresRepositories(q DBTX) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(q),
		Applications:  NewApplicationRepository(q),
		Exercises:     NewAdmissionExerciseRepository(q),
		Students:      NewStudentRepository(q),
		Programmes:    NewStudentProgrammeRepository(q),
		Programs:      NewProgramRepository(q),
		Courses:       NewCourseRepository(q),
		Registrations: NewRegistrationRepository(q),
		AccessCodes:   NewAccessCodeRepository(q),
		Projects:      NewProjectRepository(q),
		Settings:      NewSystemSettingRepository(q),
	}
}

type pgTransactor struct {
	pg *db.PostgresDB
}

func (t *pgTransactor) WithinTransaction(ctx context.Context, fn TxFn) error {
	return t.pg.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		repos := newPostgresRepositories(tx)
		repos.Transactor = nestedTransactor{repos: repos}
		return fn(ctx, repos)
	})
}

// nestedTransactor reuses the enclosing transaction.
type nestedTransactor struct {
	repos *Repositories
}

func (t nestedTransactor) WithinTransaction(ctx context.Context, fn TxFn) error {
	return fn(ctx, t.repos)
}
