package internal

import (
	"context"
	"fmt"
	"strings"
)

type CommandStatus string

const (
	CommandOK    CommandStatus = "ok"
	CommandUsage CommandStatus = "usage"
	CommandError CommandStatus = "error"
)

type CommandAuditLogger interface {
	LogCommand(ctx context.Context, command string, status CommandStatus, dateAsOf *Date) error
}

type AuditLogStorage interface {
	Insert(ctx context.Context, command string, status string, dateAsOf *Date) error
}

func NewStorageAuditLogger(storage AuditLogStorage) *StorageAuditLogger {
	return &StorageAuditLogger{auditLogStorage: storage}
}

type StorageAuditLogger struct {
	auditLogStorage AuditLogStorage
}

func (l *StorageAuditLogger) LogCommand(ctx context.Context, command string, status CommandStatus, dateAsOf *Date) error {
	c := strings.TrimSpace(command)
	c = strings.TrimPrefix(c, "/")
	if c == "" {
		c = "unknown"
	}

	err := l.auditLogStorage.Insert(ctx, c, string(status), dateAsOf)
	if err != nil {
		return fmt.Errorf("audit %s: %w", c, err)
	}
	return nil
}

// NopAuditLogger is used when no database is configured.
type NopAuditLogger struct{}

func (NopAuditLogger) LogCommand(context.Context, string, CommandStatus, *Date) error { return nil }
