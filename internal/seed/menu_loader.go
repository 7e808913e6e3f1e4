package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"mirmaia/pos/internal/database"
	"mirmaia/pos/internal/money"
)

// LoadMenuFile ingests a menu CSV from disk. A missing path is not an error.
func LoadMenuFile(ctx context.Context, db *sqlx.DB, csvPath string, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csvPath == "" {
		return 0, nil
	}
	file, err := os.Open(csvPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("menu file not found, skipping seed", zap.String("path", csvPath))
			return 0, nil
		}
		return 0, fmt.Errorf("open menu %s: %w", csvPath, err)
	}
	defer file.Close()
	return LoadMenu(ctx, db, file, logger)
}

// LoadMenu reads rows of category,name,price[,cost] after a header line and
// inserts categories and products that do not exist yet. Bad rows are logged
// and skipped; existing products are left untouched.
func LoadMenu(ctx context.Context, db *sqlx.DB, r io.Reader, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	// Skip header
	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		return 0, fmt.Errorf("read menu header: %w", err)
	}

	rows := 0
	err := database.WithTx(ctx, db, func(tx *sqlx.Tx) error {
		insertCategory := tx.Rebind(`INSERT INTO categories (name) VALUES (?) ON CONFLICT (name) DO NOTHING`)
		selectCategory := tx.Rebind(`SELECT id FROM categories WHERE name = ?`)
		insertProduct := tx.Rebind(`INSERT INTO products (category_id, name, price, cost) VALUES (?, ?, ?, ?) ON CONFLICT (name) DO NOTHING`)

		categories := map[string]int64{}
		line := 1
		for {
			record, err := reader.Read()
			if err == io.EOF {
				break
			}
			line++
			if err != nil {
				logger.Warn("unable to read menu row", zap.Int("line", line), zap.Error(err))
				continue
			}
			if len(record) < 3 {
				logger.Warn("menu row has too few columns", zap.Int("line", line))
				continue
			}
			category := strings.TrimSpace(record[0])
			name := strings.TrimSpace(record[1])
			if name == "" {
				continue
			}
			price, err := money.Parse(record[2])
			if err != nil {
				logger.Warn("invalid menu price", zap.Int("line", line), zap.String("name", name), zap.Error(err))
				continue
			}
			var cost money.Money
			if len(record) > 3 {
				if cost, err = money.Parse(record[3]); err != nil {
					logger.Warn("invalid menu cost", zap.Int("line", line), zap.String("name", name), zap.Error(err))
					continue
				}
			}

			var categoryID *int64
			if category != "" {
				id, ok := categories[category]
				if !ok {
					if _, err := tx.ExecContext(ctx, insertCategory, category); err != nil {
						return fmt.Errorf("insert category %s: %w", category, err)
					}
					if err := tx.GetContext(ctx, &id, selectCategory, category); err != nil {
						return fmt.Errorf("load category %s: %w", category, err)
					}
					categories[category] = id
				}
				categoryID = &id
			}

			res, err := tx.ExecContext(ctx, insertProduct, categoryID, name, price, cost)
			if err != nil {
				return fmt.Errorf("insert product %s: %w", name, err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				rows++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	logger.Info("seeded menu", zap.Int("products", rows))
	return rows, nil
}
