package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"notifier/internal/domain"
	"notifier/internal/repository/inbox_repo"
)

const uniqueViolation = "23505"

type pgInboxRepository struct {
	db     domain.Querier
	logger *zap.Logger
}

func NewInboxRepository(db domain.Querier, l *zap.Logger) inbox_repo.InboxRepository {
	return &pgInboxRepository{db: db, logger: l}
}

func (r *pgInboxRepository) Claim(ctx context.Context, msg *domain.InboxMessage) (bool, error) {
	query := `INSERT INTO inbox_messages (id, source, key, received_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (source, key) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query, msg.ID, msg.Source, msg.Key, msg.ReceivedAt)
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			r.logger.Debug("Inbox key already claimed", zap.String("source", msg.Source), zap.String("key", msg.Key))
			return false, nil
		}
		r.logger.Error("Failed to claim inbox key", zap.String("source", msg.Source), zap.String("key", msg.Key), zap.Error(err))
		return false, fmt.Errorf("failed to claim inbox key %s: %w", msg.Key, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check inbox insert result: %w", err)
	}
	if rowsAffected == 0 {
		r.logger.Debug("Inbox key already claimed", zap.String("source", msg.Source), zap.String("key", msg.Key))
		return false, nil
	}
	return true, nil
}

func (r *pgInboxRepository) DeleteReceivedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM inbox_messages WHERE received_at < $1`, cutoff)
	if err != nil {
		r.logger.Error("Failed to prune inbox messages", zap.Time("cutoff", cutoff), zap.Error(err))
		return 0, fmt.Errorf("failed to prune inbox messages: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check inbox prune result: %w", err)
	}
	return deleted, nil
}
