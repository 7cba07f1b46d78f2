package postgres

import (
	"database/sql"
	"time"

	"aimawatch/pkg/domain"
)

// PgUser is the database representation of a user record.
type PgUser struct {
	ID int64 `db:"id"`

	EmailEncrypted    []byte `db:"email_encrypted"`
	PasswordEncrypted []byte `db:"password_encrypted"`

	PeriodicEnabled bool           `db:"periodic_enabled"`
	LastStatus      sql.NullString `db:"last_status"      goqu:"skipinsert"`
	LastCheckedAt   sql.NullTime   `db:"last_checked_at"  goqu:"skipinsert"`

	CreatedAt time.Time    `db:"created_at" goqu:"skipinsert"`
	UpdatedAt sql.NullTime `db:"updated_at" goqu:"skipinsert"`
}

func (p *PgUser) ToDomain() *domain.User {
	return &domain.User{
		ID:                domain.UserID(p.ID),
		EmailEncrypted:    p.EmailEncrypted,
		PasswordEncrypted: p.PasswordEncrypted,
		PeriodicEnabled:   p.PeriodicEnabled,
		LastStatus:        p.LastStatus.String,
		LastCheckedAt:     p.LastCheckedAt.Time,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt.Time,
	}
}

func (p *PgUser) FromDomain(user domain.User) {
	*p = PgUser{
		ID:                int64(user.ID),
		EmailEncrypted:    user.EmailEncrypted,
		PasswordEncrypted: user.PasswordEncrypted,
		PeriodicEnabled:   user.PeriodicEnabled,
		LastStatus: sql.NullString{
			String: user.LastStatus,
			Valid:  user.LastStatus != "",
		},
		LastCheckedAt: sql.NullTime{
			Time:  user.LastCheckedAt,
			Valid: !user.LastCheckedAt.IsZero(),
		},
		CreatedAt: user.CreatedAt,
		UpdatedAt: sql.NullTime{
			Time:  user.UpdatedAt,
			Valid: !user.UpdatedAt.IsZero(),
		},
	}
}

func pgUsersToDomain(users []PgUser) []domain.User {
	out := make([]domain.User, 0, len(users))
	for i := range users {
		out = append(out, *users[i].ToDomain())
	}

	return out
}
