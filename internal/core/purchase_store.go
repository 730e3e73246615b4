package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a Store backed by PostgreSQL.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &postgresStore{pool: pool}
}

func (s *postgresStore) ListSellableItems(ctx context.Context) ([]Item, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, COALESCE(memo, ''), price, is_selling
		FROM items
		WHERE is_selling = true
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list sellable items: %w", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Memo, &it.UnitPrice, &it.IsSelling); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *postgresStore) GetItem(ctx context.Context, itemID int) (*Item, error) {
	it := &Item{}
	if err := s.pool.QueryRow(ctx,
		"SELECT id, name, COALESCE(memo, ''), price, is_selling FROM items WHERE id = $1",
		itemID,
	).Scan(&it.ID, &it.Name, &it.Memo, &it.UnitPrice, &it.IsSelling); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "item", ID: itemID}
		}
		return nil, fmt.Errorf("get item %d: %w", itemID, err)
	}
	return it, nil
}

func (s *postgresStore) ListCustomers(ctx context.Context) ([]Customer, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, COALESCE(kana, ''), COALESCE(tel, ''), COALESCE(email, '')
		FROM customers
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	customers := []Customer{}
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Kana, &c.Tel, &c.Email); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (s *postgresStore) CountPurchases(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM purchases").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

const purchaseHeaderColumns = `
		p.id, p.customer_id, c.name, p.status, p.version, p.created_at, p.updated_at`

func scanHeader(row pgx.Row, h *PurchaseHeader) error {
	return row.Scan(&h.ID, &h.CustomerID, &h.CustomerName, &h.Status, &h.Version, &h.CreatedAt, &h.UpdatedAt)
}

func (s *postgresStore) ListPurchases(ctx context.Context, limit, offset int) ([]PurchaseHeader, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT`+purchaseHeaderColumns+`
		FROM purchases p
		JOIN customers c ON c.id = p.customer_id
		ORDER BY p.id
		LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var headers []PurchaseHeader
	for rows.Next() {
		var h PurchaseHeader
		if err := scanHeader(rows, &h); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		headers = append(headers, h)
	}
	return headers, rows.Err()
}

func (s *postgresStore) GetPurchase(ctx context.Context, purchaseID int) (*PurchaseHeader, error) {
	return getPurchase(ctx, s.pool, purchaseID)
}

func (s *postgresStore) ListLineDetails(ctx context.Context, purchaseIDs []int) ([]LineDetail, error) {
	return listLineDetails(ctx, s.pool, purchaseIDs)
}

// querier is the read surface shared by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getPurchase(ctx context.Context, q querier, purchaseID int) (*PurchaseHeader, error) {
	h := &PurchaseHeader{}
	err := scanHeader(q.QueryRow(ctx, `
		SELECT`+purchaseHeaderColumns+`
		FROM purchases p
		JOIN customers c ON c.id = p.customer_id
		WHERE p.id = $1`,
		purchaseID,
	), h)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "purchase", ID: purchaseID}
		}
		return nil, fmt.Errorf("get purchase %d: %w", purchaseID, err)
	}
	return h, nil
}

func listLineDetails(ctx context.Context, q querier, purchaseIDs []int) ([]LineDetail, error) {
	if len(purchaseIDs) == 0 {
		return nil, nil
	}
	rows, err := q.Query(ctx, `
		SELECT ip.id, ip.purchase_id, ip.item_id, i.name, i.price, ip.quantity
		FROM item_purchase ip
		JOIN items i ON i.id = ip.item_id
		WHERE ip.purchase_id = ANY($1)
		ORDER BY ip.purchase_id, ip.id`,
		toInt64s(purchaseIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("fetch line items: %w", err)
	}
	defer rows.Close()

	var lines []LineDetail
	for rows.Next() {
		var l LineDetail
		if err := rows.Scan(&l.LineID, &l.PurchaseID, &l.ItemID, &l.ItemName, &l.UnitPrice, &l.Quantity); err != nil {
			return nil, fmt.Errorf("scan line item: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (s *postgresStore) WithinTx(ctx context.Context, fn func(tx PurchaseTx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return &TransactionError{Op: "begin", Err: err}
	}
	defer tx.Rollback(ctx)

	if err := fn(&postgresTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return &TransactionError{Op: "commit", Err: err}
	}
	return nil
}

type postgresTx struct {
	tx pgx.Tx
}

func (t *postgresTx) ItemsByIDs(ctx context.Context, ids []int) (map[int]Item, error) {
	rows, err := t.tx.Query(ctx,
		"SELECT id, name, COALESCE(memo, ''), price, is_selling FROM items WHERE id = ANY($1)",
		toInt64s(ids),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[int]Item, len(ids))
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Memo, &it.UnitPrice, &it.IsSelling); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items[it.ID] = it
	}
	return items, rows.Err()
}

func (t *postgresTx) CustomerExists(ctx context.Context, customerID int) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM customers WHERE id = $1)", customerID,
	).Scan(&exists)
	return exists, err
}

func (t *postgresTx) InsertPurchase(ctx context.Context, customerID int, status PurchaseStatus) (*Purchase, error) {
	p := &Purchase{}
	if err := t.tx.QueryRow(ctx, `
		INSERT INTO purchases (customer_id, status)
		VALUES ($1, $2)
		RETURNING id, customer_id, status, version, created_at, updated_at`,
		customerID, status,
	).Scan(&p.ID, &p.CustomerID, &p.Status, &p.Version, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return p, nil
}

func (t *postgresTx) LockPurchase(ctx context.Context, purchaseID int) (*Purchase, error) {
	p := &Purchase{}
	if err := t.tx.QueryRow(ctx, `
		SELECT id, customer_id, status, version, created_at, updated_at
		FROM purchases
		WHERE id = $1
		FOR UPDATE`,
		purchaseID,
	).Scan(&p.ID, &p.CustomerID, &p.Status, &p.Version, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "purchase", ID: purchaseID}
		}
		return nil, fmt.Errorf("lock purchase %d: %w", purchaseID, err)
	}
	return p, nil
}

func (t *postgresTx) UpdatePurchase(ctx context.Context, purchaseID int, status PurchaseStatus) (*Purchase, error) {
	p := &Purchase{}
	if err := t.tx.QueryRow(ctx, `
		UPDATE purchases
		SET status = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, customer_id, status, version, created_at, updated_at`,
		status, purchaseID,
	).Scan(&p.ID, &p.CustomerID, &p.Status, &p.Version, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "purchase", ID: purchaseID}
		}
		return nil, err
	}
	return p, nil
}

func (t *postgresTx) GetPurchase(ctx context.Context, purchaseID int) (*PurchaseHeader, error) {
	return getPurchase(ctx, t.tx, purchaseID)
}

func (t *postgresTx) ListLineDetails(ctx context.Context, purchaseIDs []int) ([]LineDetail, error) {
	return listLineDetails(ctx, t.tx, purchaseIDs)
}

func (t *postgresTx) LineItems(ctx context.Context, purchaseID int) ([]LineItem, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT id, purchase_id, item_id, quantity
		FROM item_purchase
		WHERE purchase_id = $1
		ORDER BY id`,
		purchaseID,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch line items for purchase %d: %w", purchaseID, err)
	}
	defer rows.Close()

	var lines []LineItem
	for rows.Next() {
		var li LineItem
		if err := rows.Scan(&li.ID, &li.PurchaseID, &li.ItemID, &li.Quantity); err != nil {
			return nil, fmt.Errorf("scan line item: %w", err)
		}
		lines = append(lines, li)
	}
	return lines, rows.Err()
}

func (t *postgresTx) InsertLineItem(ctx context.Context, purchaseID, itemID, quantity int) error {
	_, err := t.tx.Exec(ctx,
		"INSERT INTO item_purchase (purchase_id, item_id, quantity) VALUES ($1, $2, $3)",
		purchaseID, itemID, quantity,
	)
	return err
}

func (t *postgresTx) UpdateLineItemQuantity(ctx context.Context, purchaseID, itemID, quantity int) error {
	tag, err := t.tx.Exec(ctx,
		"UPDATE item_purchase SET quantity = $1, updated_at = NOW() WHERE purchase_id = $2 AND item_id = $3",
		quantity, purchaseID, itemID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("line item for item %d not found on purchase %d", itemID, purchaseID)
	}
	return nil
}

func (t *postgresTx) DeleteLineItem(ctx context.Context, purchaseID, itemID int) error {
	_, err := t.tx.Exec(ctx,
		"DELETE FROM item_purchase WHERE purchase_id = $1 AND item_id = $2",
		purchaseID, itemID,
	)
	return err
}

func toInt64s(ids []int) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}
