package shop

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"talenthub/internal/domain/finance"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) GetItem(ctx context.Context, tenantID, itemID string) (*Item, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT id, name, price, stock, active, created_at, updated_at
    FROM store_items
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, itemID)
	var item Item
	err := row.Scan(&item.ID, &item.Name, &item.Price, &item.Stock, &item.Active, &item.CreatedAt, &item.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListItems(ctx context.Context, tenantID string, activeOnly bool) ([]Item, error) {
	query := `
    SELECT id, name, price, stock, active, created_at, updated_at
    FROM store_items
    WHERE tenant_id = $1`
	if activeOnly {
		query += " AND active"
	}
	query += " ORDER BY name"

	rows, err := s.DB.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Price, &item.Stock, &item.Active, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (s *Store) CreateItem(ctx context.Context, tenantID string, item Item) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO store_items (tenant_id, name, price, stock, active)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id
  `, tenantID, item.Name, item.Price, item.Stock, item.Active).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateItem(ctx context.Context, tenantID, itemID string, item Item) error {
	cmd, err := s.DB.Exec(ctx, `
    UPDATE store_items
    SET name = $1, price = $2, stock = $3, active = $4, updated_at = now()
    WHERE tenant_id = $5 AND id = $6
  `, item.Name, item.Price, item.Stock, item.Active, tenantID, itemID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

// Purchase creates the pending purchase and decrements stock in one
// transaction. Stock can never go negative: the decrement is conditional
// on stock >= quantity and zero affected rows rolls everything back.
func (s *Store) Purchase(ctx context.Context, tenantID, employeeID, itemID string, quantity int) (*Purchase, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var price float64
	var stock int
	var active bool
	err = tx.QueryRow(ctx, `
    SELECT price, stock, active
    FROM store_items
    WHERE tenant_id = $1 AND id = $2
    FOR UPDATE
  `, tenantID, itemID).Scan(&price, &stock, &active)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, ErrItemInactive
	}
	if quantity > stock {
		return nil, ErrInsufficientStock
	}

	cmd, err := tx.Exec(ctx, `
    UPDATE store_items
    SET stock = stock - $1, updated_at = now()
    WHERE tenant_id = $2 AND id = $3 AND stock >= $1
  `, quantity, tenantID, itemID)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, ErrInsufficientStock
	}

	purchase := Purchase{
		EmployeeID: employeeID,
		ItemID:     itemID,
		Quantity:   quantity,
		UnitPrice:  price,
		TotalPrice: price * float64(quantity),
		Status:     StatusPending,
	}
	err = tx.QueryRow(ctx, `
    INSERT INTO store_purchases (tenant_id, employee_id, item_id, quantity, unit_price, total_price, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id, created_at, updated_at
  `, tenantID, employeeID, itemID, quantity, purchase.UnitPrice, purchase.TotalPrice, purchase.Status).
		Scan(&purchase.ID, &purchase.CreatedAt, &purchase.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &purchase, nil
}

// UpdateStatus applies one state-machine transition. Approval appends the
// matching store deduction to the financial ledger; cancellation restores
// stock. Both happen inside the same transaction as the status change.
func (s *Store) UpdateStatus(ctx context.Context, tenantID, purchaseID, next string, now time.Time) (*Purchase, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var p Purchase
	err = tx.QueryRow(ctx, `
    SELECT id, employee_id, item_id, quantity, unit_price, total_price, status, created_at, updated_at
    FROM store_purchases
    WHERE tenant_id = $1 AND id = $2
    FOR UPDATE
  `, tenantID, purchaseID).Scan(&p.ID, &p.EmployeeID, &p.ItemID, &p.Quantity, &p.UnitPrice, &p.TotalPrice, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPurchaseNotFound
	}
	if err != nil {
		return nil, err
	}
	if !ValidTransition(p.Status, next) {
		return nil, ErrInvalidTransition
	}

	if _, err := tx.Exec(ctx, `
    UPDATE store_purchases SET status = $1, updated_at = now() WHERE tenant_id = $2 AND id = $3
  `, next, tenantID, purchaseID); err != nil {
		return nil, err
	}

	switch next {
	case StatusApproved:
		if _, err := tx.Exec(ctx, `
      INSERT INTO financial_transactions (tenant_id, employee_id, type, amount, tx_date, period_month, period_year, description)
      VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    `, tenantID, p.EmployeeID, finance.TypeDeductionStore, p.TotalPrice, now, int(now.Month()), now.Year(), "store purchase "+p.ID); err != nil {
			return nil, err
		}
	case StatusCancelled:
		if _, err := tx.Exec(ctx, `
      UPDATE store_items SET stock = stock + $1, updated_at = now() WHERE tenant_id = $2 AND id = $3
    `, p.Quantity, tenantID, p.ItemID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	p.Status = next
	return &p, nil
}

func (s *Store) ListPurchases(ctx context.Context, tenantID, employeeID, status string, limit, offset int) ([]Purchase, error) {
	query := `
    SELECT id, employee_id, item_id, quantity, unit_price, total_price, status, created_at, updated_at
    FROM store_purchases
    WHERE tenant_id = $1`
	args := []any{tenantID}
	if employeeID != "" {
		args = append(args, employeeID)
		query += " AND employee_id = $2"
	}
	if status != "" {
		args = append(args, status)
		if len(args) == 2 {
			query += " AND status = $2"
		} else {
			query += " AND status = $3"
		}
	}
	if limit <= 0 {
		limit = 50
	}
	query += " ORDER BY created_at DESC"
	args = append(args, limit, offset)
	switch len(args) {
	case 3:
		query += " LIMIT $2 OFFSET $3"
	case 4:
		query += " LIMIT $3 OFFSET $4"
	default:
		query += " LIMIT $4 OFFSET $5"
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Purchase
	for rows.Next() {
		var p Purchase
		if err := rows.Scan(&p.ID, &p.EmployeeID, &p.ItemID, &p.Quantity, &p.UnitPrice, &p.TotalPrice, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
