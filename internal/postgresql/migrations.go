package postgresql

import (
	"context"
	"fmt"
)

type Migrations struct {
	db Execer
}

func NewMigrations(db Execer) *Migrations {
	return &Migrations{db: db}
}

func (m *Migrations) Setup(ctx context.Context) error {
	if err := m.setupCommandLogTable(ctx); err != nil {
		return fmt.Errorf("setup command_log: %w", err)
	}
	return nil
}

func (m *Migrations) setupCommandLogTable(ctx context.Context) error {
	_, err := m.db.Exec(ctx, `
create table if not exists command_log (
  id          bigserial primary key,
  command     text not null,
  status      text not null,
  date_as_of  date,
  created_at  timestamptz not null default now()
);

create index if not exists idx_command_log_created_at
  on command_log (created_at desc);

create index if not exists idx_command_log_command_created_at
  on command_log (command, created_at desc);
`)
	if err != nil {
		return fmt.Errorf("ensure table command_log: %w", err)
	}
	return nil
}
