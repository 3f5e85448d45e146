package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"notifier/internal/domain"
	"notifier/internal/repository/notification_repo"
)

const selectColumns = `id, order_id, status, title, body, timestamp, sent, message_id, error, type, device_token`

type pgNotificationRepository struct {
	db     domain.Querier
	logger *zap.Logger
}

func NewNotificationRepository(db domain.Querier, l *zap.Logger) notification_repo.NotificationRepository {
	return &pgNotificationRepository{db: db, logger: l}
}

func (r *pgNotificationRepository) Create(ctx context.Context, record *domain.DeliveryRecord) error {
	query := `INSERT INTO notifications (id, order_id, status, title, body, sent, message_id, error, type, device_token)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING timestamp`
	err := r.db.QueryRowContext(ctx, query,
		record.ID,
		record.OrderID,
		record.Status,
		nullString(record.Title),
		nullString(record.Body),
		record.Sent,
		nullString(record.MessageID),
		nullString(record.Error),
		string(record.Type),
		nullString(record.DeviceToken),
	).Scan(&record.Timestamp)
	if err != nil {
		r.logger.Error("Failed to create notification record",
			zap.String("notification_id", record.ID),
			zap.String("order_id", record.OrderID),
			zap.Error(err))
		return fmt.Errorf("failed to create notification record: %w", err)
	}
	r.logger.Debug("Notification record created",
		zap.String("notification_id", record.ID),
		zap.String("order_id", record.OrderID),
		zap.String("type", string(record.Type)))
	return nil
}

func (r *pgNotificationRepository) GetByID(ctx context.Context, id string) (*domain.DeliveryRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM notifications WHERE id = $1`
	record, err := scanRecord(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotificationNotFound
		}
		r.logger.Error("Failed to get notification record by ID", zap.String("notification_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get notification record %s: %w", id, err)
	}
	return record, nil
}

func (r *pgNotificationRepository) ListByOrderID(ctx context.Context, orderID string) ([]*domain.DeliveryRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM notifications WHERE order_id = $1 ORDER BY timestamp DESC`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		r.logger.Error("Failed to query notification records for order", zap.String("order_id", orderID), zap.Error(err))
		return nil, fmt.Errorf("failed to list notification records for order %s: %w", orderID, err)
	}
	defer rows.Close()

	records := []*domain.DeliveryRecord{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			r.logger.Error("Failed to scan notification record row", zap.String("order_id", orderID), zap.Error(err))
			return nil, fmt.Errorf("failed to scan notification record row: %w", err)
		}
		records = append(records, record)
	}
	if err = rows.Err(); err != nil {
		r.logger.Error("Rows error for notification records", zap.String("order_id", orderID), zap.Error(err))
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.DeliveryRecord, error) {
	record := &domain.DeliveryRecord{}
	var title, body, messageID, errMsg, deviceToken sql.NullString
	var recordType string
	err := row.Scan(
		&record.ID,
		&record.OrderID,
		&record.Status,
		&title,
		&body,
		&record.Timestamp,
		&record.Sent,
		&messageID,
		&errMsg,
		&recordType,
		&deviceToken,
	)
	if err != nil {
		return nil, err
	}
	record.Type = domain.NotificationType(recordType)
	record.Title = stringPtr(title)
	record.Body = stringPtr(body)
	record.MessageID = stringPtr(messageID)
	record.Error = stringPtr(errMsg)
	record.DeviceToken = stringPtr(deviceToken)
	return record, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
