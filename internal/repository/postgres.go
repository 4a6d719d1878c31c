package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/papershack/storefront-orders-service/internal/errs"
	"github.com/papershack/storefront-orders-service/internal/models"
)

const uniqueViolation = "23505"

// PostgresOrderRepository persists orders in PostgreSQL. The orders table
// carries UNIQUE (authorization_id); the insert is the linearization point
// for concurrent confirmations of the same authorization.
type PostgresOrderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresOrderRepository creates a new PostgreSQL order repository.
func NewPostgresOrderRepository(db *sql.DB, logger *zap.Logger) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new order. A unique-constraint violation on the
// authorization id maps to errs.ErrDuplicateAuthorization so that the
// losing side of a confirmation race gets the same answer as a retry.
func (r *PostgresOrderRepository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == "" {
		order.ID = "ord_" + uuid.NewString()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}

	linesJSON, err := json.Marshal(order.Lines)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO orders (
			id, authorization_id, customer_name, customer_email,
			lines, total_minor_units, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.db.ExecContext(ctx, query,
		order.ID,
		order.AuthorizationID,
		order.CustomerName,
		order.CustomerEmail,
		linesJSON,
		order.TotalMinorUnits,
		order.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			r.logger.Warn("Duplicate authorization rejected by constraint",
				zap.String("authorization_id", order.AuthorizationID),
			)
			return nil, errs.ErrDuplicateAuthorization
		}
		r.logger.Error("Failed to create order",
			zap.String("authorization_id", order.AuthorizationID),
			zap.Error(err),
		)
		return nil, err
	}

	r.logger.Info("Order created",
		zap.String("order_id", order.ID),
		zap.String("authorization_id", order.AuthorizationID),
		zap.Int64("total_minor_units", order.TotalMinorUnits),
	)

	return order, nil
}

// FindByAuthorizationID retrieves all orders for an authorization. The
// unique constraint means at most one row, but the slice shape keeps the
// duplicate check honest.
func (r *PostgresOrderRepository) FindByAuthorizationID(ctx context.Context, authorizationID string) ([]*models.Order, error) {
	query := `
		SELECT id, authorization_id, customer_name, customer_email,
		       lines, total_minor_units, created_at
		FROM orders
		WHERE authorization_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, authorizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]*models.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	return orders, rows.Err()
}

// GetByID retrieves an order by its id.
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	query := `
		SELECT id, authorization_id, customer_name, customer_email,
		       lines, total_minor_units, created_at
		FROM orders
		WHERE id = $1
	`

	row := r.db.QueryRowContext(ctx, query, id)

	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to fetch order",
			zap.String("order_id", id),
			zap.Error(err),
		)
		return nil, err
	}

	return order, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var order models.Order
	var linesJSON []byte

	err := row.Scan(
		&order.ID,
		&order.AuthorizationID,
		&order.CustomerName,
		&order.CustomerEmail,
		&linesJSON,
		&order.TotalMinorUnits,
		&order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(linesJSON, &order.Lines); err != nil {
		return nil, err
	}

	return &order, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
