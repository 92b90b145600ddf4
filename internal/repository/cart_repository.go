package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/cartmanager/internal/cart"
	"github.com/nikolayk812/cartmanager/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type cartRepository struct {
	q    querier
	pool *pgxpool.Pool
}

func NewCart(pool *pgxpool.Pool) (cart.Repository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}

	return &cartRepository{
		q:    pool,
		pool: pool,
	}, nil
}

func NewCartWithTx(tx pgx.Tx) cart.Repository {
	return &cartRepository{
		q:    tx,
		pool: nil, // use provided transaction instead
	}
}

const (
	upsertCartSQL = `
INSERT INTO carts (id, cart_type, state, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE
SET state = EXCLUDED.state, updated_at = EXCLUDED.updated_at`

	deleteItemsSQL = `DELETE FROM cart_items WHERE cart_id = $1`

	insertItemSQL = `
INSERT INTO cart_items (cart_id, position, product_id, product_name, name, description,
                        quantity, state, is_recurring, billing_interval, price_amount, price_currency, options)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	selectCartsSQL = `SELECT id, cart_type, state, created_at, updated_at FROM carts`

	selectItemsSQL = `
SELECT cart_id, product_id, product_name, name, description, quantity, state,
       is_recurring, billing_interval, price_amount, price_currency, options
FROM cart_items
WHERE cart_id = ANY($1)
ORDER BY cart_id, position`
)

// Persist stores the cart header and replaces its items in one transaction.
func (r *cartRepository) Persist(ctx context.Context, c *cart.Cart) error {
	if c == nil {
		return fmt.Errorf("cart is nil")
	}

	s := c.Snapshot()

	_, err := withTx(ctx, r.pool, r.q, func(q querier) (struct{}, error) {
		if _, err := q.Exec(ctx, upsertCartSQL, s.ID, s.Type, string(s.State), s.CreatedAt, s.UpdatedAt); err != nil {
			return struct{}{}, fmt.Errorf("q.Exec(upsertCart): %w", err)
		}

		if _, err := q.Exec(ctx, deleteItemsSQL, s.ID); err != nil {
			return struct{}{}, fmt.Errorf("q.Exec(deleteItems): %w", err)
		}

		if len(s.Items) == 0 {
			return struct{}{}, nil
		}

		batch := &pgx.Batch{}
		for i, item := range s.Items {
			row := mapItemToRow(s.ID, i, item)
			batch.Queue(insertItemSQL, row.args()...)
		}

		if err := q.SendBatch(ctx, batch).Close(); err != nil {
			return struct{}{}, fmt.Errorf("q.SendBatch(insertItems): %w", err)
		}

		return struct{}{}, nil
	})
	if err != nil {
		return fmt.Errorf("withTx: %w", err)
	}

	return nil
}

func (r *cartRepository) FindCartByID(ctx context.Context, id uuid.UUID) (*cart.Cart, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("id is empty")
	}

	carts, err := r.load(ctx, selectCartsSQL+" WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("r.load: %w", err)
	}

	if len(carts) == 0 {
		return nil, fmt.Errorf("cart[%s]: %w", id, cart.ErrNotFound)
	}

	return carts[0], nil
}

func (r *cartRepository) FindBy(ctx context.Context, criteria cart.Criteria, orderBy []cart.OrderBy, limit, offset int) ([]*cart.Cart, error) {
	query, args, err := buildFindByQuery(criteria, orderBy, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("buildFindByQuery: %w", err)
	}

	carts, err := r.load(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("r.load: %w", err)
	}

	return carts, nil
}

func buildFindByQuery(criteria cart.Criteria, orderBy []cart.OrderBy, limit, offset int) (string, []any, error) {
	if limit < 0 || offset < 0 {
		return "", nil, fmt.Errorf("limit[%d] and offset[%d] must not be negative", limit, offset)
	}

	var (
		sb    strings.Builder
		where []string
		args  []any
	)

	sb.WriteString(selectCartsSQL)

	if criteria.Type != "" {
		args = append(args, criteria.Type)
		where = append(where, fmt.Sprintf("cart_type = $%d", len(args)))
	}
	if criteria.State != "" {
		args = append(args, string(criteria.State))
		where = append(where, fmt.Sprintf("state = $%d", len(args)))
	}
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}

	order := make([]string, 0, len(orderBy)+1)
	for _, o := range orderBy {
		switch o.Field {
		case cart.SortByCreatedAt, cart.SortByUpdatedAt:
		default:
			return "", nil, fmt.Errorf("sort field[%s] is not supported", o.Field)
		}

		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		order = append(order, string(o.Field)+" "+dir)
	}
	// stable paging
	order = append(order, "id ASC")
	sb.WriteString(" ORDER BY ")
	sb.WriteString(strings.Join(order, ", "))

	if limit > 0 {
		args = append(args, limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	return sb.String(), args, nil
}

func (r *cartRepository) load(ctx context.Context, query string, args ...any) ([]*cart.Cart, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("q.Query(carts): %w", err)
	}

	headers, err := pgx.CollectRows(rows, pgx.RowToStructByPos[cartRow])
	if err != nil {
		return nil, fmt.Errorf("pgx.CollectRows(carts): %w", err)
	}

	if len(headers) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(headers))
	for _, h := range headers {
		ids = append(ids, h.ID)
	}

	rows, err = r.q.Query(ctx, selectItemsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("q.Query(items): %w", err)
	}

	itemRows, err := pgx.CollectRows(rows, pgx.RowToStructByPos[itemRow])
	if err != nil {
		return nil, fmt.Errorf("pgx.CollectRows(items): %w", err)
	}

	itemsByCart := make(map[uuid.UUID][]cart.ItemSnapshot, len(headers))
	for _, row := range itemRows {
		item, err := mapRowToItem(row)
		if err != nil {
			return nil, fmt.Errorf("mapRowToItem: %w", err)
		}
		itemsByCart[row.CartID] = append(itemsByCart[row.CartID], item)
	}

	carts := make([]*cart.Cart, 0, len(headers))
	for _, h := range headers {
		carts = append(carts, cart.Restore(cart.Snapshot{
			ID:        h.ID,
			Type:      h.CartType,
			State:     cart.State(h.State),
			CreatedAt: h.CreatedAt,
			UpdatedAt: h.UpdatedAt,
			Items:     itemsByCart[h.ID],
		}))
	}

	return carts, nil
}

type cartRow struct {
	ID        uuid.UUID
	CartType  string
	State     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type itemRow struct {
	CartID          uuid.UUID
	ProductID       uuid.UUID
	ProductName     string
	Name            string
	Description     string
	Quantity        int
	State           string
	IsRecurring     bool
	BillingInterval *string
	PriceAmount     decimal.NullDecimal
	PriceCurrency   *string
	Options         map[string]string
}

// positionedItemRow adds the item position, which is written but not scanned back.
type positionedItemRow struct {
	itemRow
	Position int
}

func (r positionedItemRow) args() []any {
	return []any{
		r.CartID, r.Position, r.ProductID, r.ProductName, r.Name, r.Description,
		r.Quantity, r.State, r.IsRecurring, r.BillingInterval, r.PriceAmount, r.PriceCurrency, r.Options,
	}
}

func mapItemToRow(cartID uuid.UUID, position int, item cart.ItemSnapshot) positionedItemRow {
	row := itemRow{
		CartID:      cartID,
		ProductID:   item.Product.ProductID(),
		ProductName: item.Product.ProductName(),
		Name:        item.Name,
		Description: item.Description,
		Quantity:    item.Quantity,
		State:       string(item.State),
		IsRecurring: item.IsRecurring,
		Options:     item.Options,
	}
	// jsonb column is NOT NULL
	if row.Options == nil {
		row.Options = map[string]string{}
	}

	if rp, ok := item.Product.(domain.RecurringProduct); ok {
		interval := rp.BillingInterval()
		row.BillingInterval = &interval
	}

	if priced, ok := item.Product.(domain.Priced); ok {
		price := priced.ListPrice()
		cur := price.Currency.String()
		row.PriceAmount = decimal.NullDecimal{Decimal: price.Amount, Valid: true}
		row.PriceCurrency = &cur
	}

	return positionedItemRow{itemRow: row, Position: position}
}

func mapRowToItem(row itemRow) (cart.ItemSnapshot, error) {
	var price domain.Money
	if row.PriceAmount.Valid && row.PriceCurrency != nil {
		parsedCurrency, err := currency.ParseISO(*row.PriceCurrency)
		if err != nil {
			return cart.ItemSnapshot{}, fmt.Errorf("currency[%s] is not valid: %w", *row.PriceCurrency, err)
		}
		price = domain.Money{Amount: row.PriceAmount.Decimal, Currency: parsedCurrency}
	}

	var product domain.Product = domain.CatalogProduct{
		ID:    row.ProductID,
		Name:  row.ProductName,
		Price: price,
	}
	if row.BillingInterval != nil {
		product = domain.SubscriptionProduct{
			ID:       row.ProductID,
			Name:     row.ProductName,
			Price:    price,
			Interval: *row.BillingInterval,
		}
	}

	return cart.ItemSnapshot{
		Product:     product,
		Quantity:    row.Quantity,
		Name:        row.Name,
		Description: row.Description,
		State:       cart.ItemState(row.State),
		IsRecurring: row.IsRecurring,
		Options:     row.Options,
	}, nil
}
