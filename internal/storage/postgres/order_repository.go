package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ashish02003/Freshify/internal/domain"
)

const (
	opTimeout = 5 * time.Second

	orderColumns = `
		id, order_id, tracking_number, user_id, product_id, address_id,
		product_name, product_image, payment_id, payment_status,
		sub_total_minor, total_minor, invoice_receipt, delivery_status,
		estimated_delivery, actual_delivery,
		partner_name, partner_phone, partner_vehicle,
		order_notes, cancelled_reason, cancelled_by,
		version, created_at, updated_at`
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{db: store.DB()}
}

func (r *orderRepository) Create(order domain.Order) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	images, err := json.Marshal(order.ProductDetails.Image)
	if err != nil {
		return fmt.Errorf("marshal product images: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	partner := order.DeliveryPartner
	if partner == nil {
		partner = &domain.DeliveryPartner{}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, order_id, tracking_number, user_id, product_id, address_id,
			product_name, product_image, payment_id, payment_status,
			sub_total_minor, total_minor, invoice_receipt, delivery_status,
			estimated_delivery, actual_delivery,
			partner_name, partner_phone, partner_vehicle,
			order_notes, cancelled_reason, cancelled_by,
			version, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25)
	`,
		order.ID, order.OrderID, order.TrackingNumber, order.UserID, order.ProductID, order.AddressID,
		order.ProductDetails.Name, images, order.PaymentID, order.PaymentStatus,
		order.SubTotalMinor, order.TotalMinor, order.InvoiceReceipt, string(order.DeliveryStatus),
		order.EstimatedDelivery, order.ActualDelivery,
		partner.Name, partner.Phone, partner.VehicleNumber,
		order.OrderNotes, order.CancelledReason, string(order.CancelledBy),
		order.Version, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrOrderAlreadyExists
		}
		return fmt.Errorf("insert order: %w", err)
	}

	for _, update := range order.TrackingUpdates {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO order_tracking_updates (order_id, status, message, location, occurred_at)
			VALUES ($1,$2,$3,$4,$5)
		`, order.OrderID, string(update.Status), update.Message, update.Location, update.Timestamp); err != nil {
			return fmt.Errorf("insert tracking update: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create order: %w", err)
	}

	return nil
}

func (r *orderRepository) GetByOrderID(orderID string) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE order_id = $1
	`, orderID)

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}

	updates, err := r.loadTrackingUpdates(ctx, order.OrderID)
	if err != nil {
		return domain.Order{}, err
	}
	order.TrackingUpdates = updates

	return order, nil
}

func (r *orderRepository) ListByUser(userID string, limit int) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, order_id DESC
	`

	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = r.db.QueryContext(ctx, query+" LIMIT $2", userID, limit)
	} else {
		rows, err = r.db.QueryContext(ctx, query, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("list orders by user: %w", err)
	}
	defer rows.Close()

	return r.collectOrders(ctx, rows)
}

func (r *orderRepository) List(page, limit int) ([]domain.Order, int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	page, limit = normalizePage(page, limit)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		ORDER BY created_at DESC, order_id DESC
		LIMIT $1 OFFSET $2
	`, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders, err := r.collectOrders(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *orderRepository) ListByStatus(status domain.DeliveryStatus, page, limit int) ([]domain.Order, int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	page, limit = normalizePage(page, limit)

	var total int
	if err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM orders WHERE delivery_status = $1
	`, string(status)).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders by status: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE delivery_status = $1
		ORDER BY created_at DESC, order_id DESC
		LIMIT $2 OFFSET $3
	`, string(status), limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders by status: %w", err)
	}
	defer rows.Close()

	orders, err := r.collectOrders(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// Save обновляет metadata-поля заказа с optimistic locking.
// delivery_status и история намеренно не трогаются: для них есть AppendTracking.
func (r *orderRepository) Save(order domain.Order) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	partner := order.DeliveryPartner
	if partner == nil {
		partner = &domain.DeliveryPartner{}
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET payment_id = $1,
		    payment_status = $2,
		    invoice_receipt = $3,
		    estimated_delivery = $4,
		    partner_name = $5,
		    partner_phone = $6,
		    partner_vehicle = $7,
		    order_notes = $8,
		    address_id = $9,
		    version = version + 1,
		    updated_at = $10
		WHERE order_id = $11
		  AND version = $12
	`,
		order.PaymentID,
		order.PaymentStatus,
		order.InvoiceReceipt,
		order.EstimatedDelivery,
		partner.Name,
		partner.Phone,
		partner.VehicleNumber,
		order.OrderNotes,
		order.AddressID,
		order.UpdatedAt,
		order.OrderID,
		order.Version,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}

	return r.checkAffected(ctx, res, order.OrderID)
}

// AppendTracking атомарно сохраняет новый статус и запись истории:
// UPDATE и INSERT выполняются в одной транзакции с проверкой версии.
func (r *orderRepository) AppendTracking(order domain.Order, update domain.TrackingUpdate) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET delivery_status = $1,
		    actual_delivery = $2,
		    cancelled_reason = $3,
		    cancelled_by = $4,
		    version = version + 1,
		    updated_at = $5
		WHERE order_id = $6
		  AND version = $7
	`,
		string(update.Status),
		order.ActualDelivery,
		order.CancelledReason,
		string(order.CancelledBy),
		order.UpdatedAt,
		order.OrderID,
		order.Version,
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		exists, existsErr := r.orderExistsTx(ctx, tx, order.OrderID)
		if existsErr != nil {
			err = existsErr
			return err
		}
		if !exists {
			err = domain.ErrOrderNotFound
			return err
		}
		err = domain.ErrOrderVersionConflict
		return err
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO order_tracking_updates (order_id, status, message, location, occurred_at)
		VALUES ($1,$2,$3,$4,$5)
	`, order.OrderID, string(update.Status), update.Message, update.Location, update.Timestamp); err != nil {
		return fmt.Errorf("insert tracking update: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit append tracking: %w", err)
	}

	return nil
}

func (r *orderRepository) Statistics() (domain.OrderStatistics, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var stats domain.OrderStatistics
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE delivery_status = 'pending'),
			COUNT(*) FILTER (WHERE delivery_status = 'processing'),
			COUNT(*) FILTER (WHERE delivery_status = 'shipped'),
			COUNT(*) FILTER (WHERE delivery_status = 'delivered'),
			COUNT(*) FILTER (WHERE delivery_status = 'cancelled'),
			COALESCE(SUM(total_minor) FILTER (WHERE delivery_status <> 'cancelled'), 0)
		FROM orders
	`).Scan(
		&stats.TotalOrders,
		&stats.PendingOrders,
		&stats.ProcessingOrders,
		&stats.ShippedOrders,
		&stats.DeliveredOrders,
		&stats.CancelledOrders,
		&stats.TotalRevenueMinor,
	)
	if err != nil {
		return domain.OrderStatistics{}, fmt.Errorf("order statistics query: %w", err)
	}

	return stats, nil
}

func (r *orderRepository) collectOrders(ctx context.Context, rows *sql.Rows) ([]domain.Order, error) {
	orders := make([]domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	for i := range orders {
		updates, err := r.loadTrackingUpdates(ctx, orders[i].OrderID)
		if err != nil {
			return nil, err
		}
		orders[i].TrackingUpdates = updates
	}

	return orders, nil
}

func (r *orderRepository) loadTrackingUpdates(ctx context.Context, orderID string) ([]domain.TrackingUpdate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT status, message, location, occurred_at
		FROM order_tracking_updates
		WHERE order_id = $1
		ORDER BY id ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load tracking updates: %w", err)
	}
	defer rows.Close()

	updates := make([]domain.TrackingUpdate, 0)
	for rows.Next() {
		var (
			update domain.TrackingUpdate
			status string
		)
		if err := rows.Scan(&status, &update.Message, &update.Location, &update.Timestamp); err != nil {
			return nil, fmt.Errorf("scan tracking update: %w", err)
		}
		update.Status = domain.DeliveryStatus(status)
		updates = append(updates, update)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tracking updates: %w", err)
	}

	return updates, nil
}

func (r *orderRepository) checkAffected(ctx context.Context, res sql.Result, orderID string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	var id string
	err = r.db.QueryRowContext(ctx, `SELECT order_id FROM orders WHERE order_id = $1`, orderID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrOrderNotFound
	}
	if err != nil {
		return fmt.Errorf("check order exists: %w", err)
	}
	return domain.ErrOrderVersionConflict
}

func (r *orderRepository) orderExistsTx(ctx context.Context, tx *sql.Tx, orderID string) (bool, error) {
	var id string
	err := tx.QueryRowContext(ctx, `SELECT order_id FROM orders WHERE order_id = $1`, orderID).Scan(&id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, fmt.Errorf("check order exists: %w", err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		order       domain.Order
		images      []byte
		status      string
		cancelledBy string
		estimated   sql.NullTime
		actual      sql.NullTime
		partner     domain.DeliveryPartner
	)

	if err := row.Scan(
		&order.ID, &order.OrderID, &order.TrackingNumber, &order.UserID, &order.ProductID, &order.AddressID,
		&order.ProductDetails.Name, &images, &order.PaymentID, &order.PaymentStatus,
		&order.SubTotalMinor, &order.TotalMinor, &order.InvoiceReceipt, &status,
		&estimated, &actual,
		&partner.Name, &partner.Phone, &partner.VehicleNumber,
		&order.OrderNotes, &order.CancelledReason, &cancelledBy,
		&order.Version, &order.CreatedAt, &order.UpdatedAt,
	); err != nil {
		return domain.Order{}, err
	}

	order.DeliveryStatus = domain.DeliveryStatus(status)
	order.CancelledBy = domain.CancelActor(cancelledBy)
	if len(images) > 0 {
		if err := json.Unmarshal(images, &order.ProductDetails.Image); err != nil {
			return domain.Order{}, fmt.Errorf("unmarshal product images: %w", err)
		}
	}
	if estimated.Valid {
		t := estimated.Time.UTC()
		order.EstimatedDelivery = &t
	}
	if actual.Valid {
		t := actual.Time.UTC()
		order.ActualDelivery = &t
	}
	if partner != (domain.DeliveryPartner{}) {
		order.DeliveryPartner = &partner
	}

	return order, nil
}

func normalizePage(page, limit int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	return page, limit
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var _ domain.OrderRepository = (*orderRepository)(nil)
