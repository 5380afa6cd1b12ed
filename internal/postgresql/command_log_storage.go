package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"currency-bot/internal"

	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is the part of pgxpool.Pool the storages need.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type CommandLogStorage struct {
	db Execer
}

func NewCommandLogStorage(db Execer) *CommandLogStorage {
	return &CommandLogStorage{db: db}
}

func (s *CommandLogStorage) Insert(ctx context.Context, command string, status string, dateAsOf *internal.Date) error {
	command = strings.TrimSpace(command)
	if command == "" {
		command = "unknown"
	}

	var asOf *time.Time
	if dateAsOf != nil && !dateAsOf.IsZero() {
		t := time.Date(dateAsOf.Year(), dateAsOf.Month(), dateAsOf.Day(), 0, 0, 0, 0, time.UTC)
		asOf = &t
	}

	_, err := s.db.Exec(ctx, `
insert into command_log (command, status, date_as_of)
values ($1, $2, $3::date);
`, command, status, asOf)
	if err != nil {
		return fmt.Errorf("insert command_log: %w", err)
	}
	return nil
}
