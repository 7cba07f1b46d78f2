package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5/pgconn"

	"aimawatch/pkg/domain"
	"aimawatch/pkg/serrors"
)

const (
	usersTable = "users"

	// uniqueViolation is the Postgres error code for a unique constraint violation.
	uniqueViolation = "23505"
)

// CreateUser inserts a new user row and returns it as stored, including
// generated timestamps. A duplicate ID maps to serrors.ErrConflict.
func (p *PgSQL) CreateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	var pgUser PgUser
	pgUser.FromDomain(user)

	var row PgUser
	found, err := p.Builder.Insert(usersTable).
		Rows(pgUser).
		Returning(&PgUser{}).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, serrors.Wrap(serrors.ErrConflict, err, "user %d already exists", user.ID)
		}

		return nil, fmt.Errorf("could not store user into pg: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("insert returned no row for user %d", user.ID)
	}

	return row.ToDomain(), nil
}

// UserByID returns a user by ID, or nil when not found.
func (p *PgSQL) UserByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	var row PgUser
	found, err := p.Builder.From(usersTable).
		Where(goqu.I("id").Eq(int64(id))).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch user by id: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}

// ActiveUsers returns all users with periodic checks enabled in ascending ID
// order. The ordering is load-bearing: the scheduler relies on it for a
// stable visitation sequence within each hourly cycle.
func (p *PgSQL) ActiveUsers(ctx context.Context) ([]domain.User, error) {
	var rows []PgUser
	if err := p.Builder.From(usersTable).
		Where(goqu.I("periodic_enabled").IsTrue()).
		Order(goqu.I("id").Asc()).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch active users from pg: %w", err)
	}

	return pgUsersToDomain(rows), nil
}

// UpdateCredentials replaces the stored encrypted credentials for a user.
func (p *PgSQL) UpdateCredentials(ctx context.Context,
	id domain.UserID,
	emailEncrypted, passwordEncrypted []byte) error {
	res, err := p.Builder.Update(usersTable).
		Set(goqu.Record{
			"email_encrypted":    emailEncrypted,
			"password_encrypted": passwordEncrypted,
			"updated_at":         goqu.L("CURRENT_TIMESTAMP"),
		}).
		Where(goqu.I("id").Eq(int64(id))).
		Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("could not update credentials in pg: %w", err)
	}

	return requireRowAffected(res, id)
}

// UpdateStatus records the latest successfully fetched status and check time.
func (p *PgSQL) UpdateStatus(ctx context.Context,
	id domain.UserID,
	statusText string,
	checkedAt time.Time) error {
	res, err := p.Builder.Update(usersTable).
		Set(goqu.Record{
			"last_status":     statusText,
			"last_checked_at": checkedAt,
			"updated_at":      goqu.L("CURRENT_TIMESTAMP"),
		}).
		Where(goqu.I("id").Eq(int64(id))).
		Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("could not update status in pg: %w", err)
	}

	return requireRowAffected(res, id)
}

// SetPeriodic toggles scheduled checks for a user.
func (p *PgSQL) SetPeriodic(ctx context.Context, id domain.UserID, enabled bool) error {
	res, err := p.Builder.Update(usersTable).
		Set(goqu.Record{
			"periodic_enabled": enabled,
			"updated_at":       goqu.L("CURRENT_TIMESTAMP"),
		}).
		Where(goqu.I("id").Eq(int64(id))).
		Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("could not set periodic flag in pg: %w", err)
	}

	return requireRowAffected(res, id)
}

// DeleteUser removes the user row entirely. Credentials are gone after this;
// there is no soft delete for user records.
func (p *PgSQL) DeleteUser(ctx context.Context, id domain.UserID) error {
	res, err := p.Builder.Delete(usersTable).
		Where(goqu.I("id").Eq(int64(id))).
		Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("could not delete user from pg: %w", err)
	}

	return requireRowAffected(res, id)
}

// requireRowAffected maps an update/delete that touched no rows onto a
// not-found error so callers can distinguish missing users from silence.
func requireRowAffected(res interface{ RowsAffected() (int64, error) }, id domain.UserID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not read affected rows: %w", err)
	}
	if n == 0 {
		return serrors.With(serrors.ErrNotFound, "user %d not found", id)
	}

	return nil
}
