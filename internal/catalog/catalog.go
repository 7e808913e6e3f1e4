// Package catalog administers the menu: categories, products and dining tables.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"mirmaia/pos/domain"
	"mirmaia/pos/internal/money"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("name already exists")
	ErrInvalid   = errors.New("invalid input")
)

type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories := []domain.Category{}
	err := s.db.SelectContext(ctx, &categories, `SELECT id, name, description, sort_order, created_at FROM categories ORDER BY sort_order, name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *Store) CreateCategory(ctx context.Context, c domain.Category) (domain.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return domain.Category{}, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(`INSERT INTO categories (name, description, sort_order) VALUES (?, ?, ?) RETURNING id, created_at`),
		c.Name, c.Description, c.SortOrder).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Category{}, ErrDuplicate
		}
		return domain.Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c domain.Category) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE categories SET name = ?, description = ?, sort_order = ? WHERE id = ?`),
		c.Name, c.Description, c.SortOrder, c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update category: %w", err)
	}
	return expectOne(res)
}

// DeleteCategory removes a category; its products become uncategorized.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM categories WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return expectOne(res)
}

const productColumns = `p.id, p.category_id, c.name AS category_name, p.name, p.description, p.price, p.cost, p.is_available, p.created_at`

// ProductFilter narrows ListProducts. Zero values match everything.
type ProductFilter struct {
	CategoryID    int64
	AvailableOnly bool
	Search        string
}

func (s *Store) ListProducts(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p LEFT JOIN categories c ON c.id = p.category_id WHERE 1=1`
	var args []any
	if f.CategoryID > 0 {
		query += " AND p.category_id = ?"
		args = append(args, f.CategoryID)
	}
	if f.AvailableOnly {
		query += " AND p.is_available = ?"
		args = append(args, true)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		query += " AND LOWER(p.name) LIKE ?"
		args = append(args, "%"+strings.ToLower(term)+"%")
	}
	query += " ORDER BY c.sort_order, p.name"

	products := []domain.Product{}
	if err := s.db.SelectContext(ctx, &products, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *Store) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	var p domain.Product
	err := s.db.GetContext(ctx, &p, s.db.Rebind(`SELECT `+productColumns+`
		FROM products p LEFT JOIN categories c ON c.id = p.category_id WHERE p.id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, ErrNotFound
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func validateProduct(p *domain.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if p.Price < money.Zero || p.Cost < money.Zero {
		return fmt.Errorf("%w: price and cost cannot be negative", ErrInvalid)
	}
	return nil
}

func (s *Store) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	if err := validateProduct(&p); err != nil {
		return domain.Product{}, err
	}
	var id int64
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(`INSERT INTO products (category_id, name, description, price, cost, is_available)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`),
		p.CategoryID, p.Name, p.Description, p.Price, p.Cost, p.IsAvailable).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Product{}, ErrDuplicate
		}
		return domain.Product{}, fmt.Errorf("create product: %w", err)
	}
	return s.GetProduct(ctx, id)
}

// UpdateProduct overwrites a product. Past orders keep their recorded prices.
func (s *Store) UpdateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	if err := validateProduct(&p); err != nil {
		return domain.Product{}, err
	}
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE products
		SET category_id = ?, name = ?, description = ?, price = ?, cost = ?, is_available = ? WHERE id = ?`),
		p.CategoryID, p.Name, p.Description, p.Price, p.Cost, p.IsAvailable, p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Product{}, ErrDuplicate
		}
		return domain.Product{}, fmt.Errorf("update product: %w", err)
	}
	if err := expectOne(res); err != nil {
		return domain.Product{}, err
	}
	return s.GetProduct(ctx, p.ID)
}

// DeleteProduct removes a product that has never been sold.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	var sold bool
	if err := s.db.GetContext(ctx, &sold, s.db.Rebind(`SELECT EXISTS(SELECT 1 FROM order_lines WHERE product_id = ?)`), id); err != nil {
		return fmt.Errorf("check product usage: %w", err)
	}
	if sold {
		return fmt.Errorf("%w: product has order history, mark it unavailable instead", ErrInvalid)
	}
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM products WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return expectOne(res)
}

func (s *Store) ListTables(ctx context.Context) ([]domain.Table, error) {
	tables := []domain.Table{}
	if err := s.db.SelectContext(ctx, &tables, `SELECT id, name, sort_order, created_at FROM dining_tables ORDER BY sort_order, name`); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return tables, nil
}

func (s *Store) CreateTable(ctx context.Context, t domain.Table) (domain.Table, error) {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return domain.Table{}, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(`INSERT INTO dining_tables (name, sort_order) VALUES (?, ?) RETURNING id, created_at`),
		t.Name, t.SortOrder).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return domain.Table{}, fmt.Errorf("create table: %w", err)
	}
	return t, nil
}

func (s *Store) UpdateTable(ctx context.Context, t domain.Table) error {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE dining_tables SET name = ?, sort_order = ? WHERE id = ?`), t.Name, t.SortOrder, t.ID)
	if err != nil {
		return fmt.Errorf("update table: %w", err)
	}
	return expectOne(res)
}

// DeleteTable removes a table; orders placed at it keep their history as takeaway.
func (s *Store) DeleteTable(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM dining_tables WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete table: %w", err)
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
