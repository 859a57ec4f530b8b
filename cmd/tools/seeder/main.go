// Command seeder loads the default catalog and discount rule tables into
// an empty database. Existing rows are left alone so it is safe to rerun.
package main

import (
	"context"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/wingho/backend-pos/internal/config"
)

type seedProduct struct {
	name  string
	price int64
	stock int32
}

var defaultProducts = []seedProduct{
	{"布帶", 3000, 100},
	{"布袋", 5000, 100},
	{"字母 (大)", 700, 200},
	{"字母 (小)", 500, 200},
	{"圖案 (大)", 1500, 150},
	{"圖案 (中)", 1000, 150},
	{"圖案 (小)", 500, 150},
	{"蚯蚓", 2000, 100},
}

type seedPackage struct {
	name     string
	discount int64
	// product name -> required quantity
	requires map[string]int32
}

var defaultPackages = []seedPackage{
	{name: "一袋一布帶", discount: 1000, requires: map[string]int32{"布帶": 1, "布袋": 1}},
	{name: "兩布帶", discount: 500, requires: map[string]int32{"布帶": 2}},
}

var defaultThresholds = []struct {
	threshold int64
	discount  int64
}{
	{22000, 2000},
	{35000, 4000},
}

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Str("tool", "seeder").Logger()
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()

	if err := seed(ctx, pool, logger); err != nil {
		logger.Fatal().Err(err).Msg("seed failed")
	}
	logger.Info().Msg("seed complete")
}

func seed(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var productCount int
	if err := tx.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&productCount); err != nil {
		return err
	}
	productIDs := make(map[string]string, len(defaultProducts))
	if productCount == 0 {
		for _, p := range defaultProducts {
			var id string
			err := tx.QueryRow(ctx, `
				INSERT INTO products (id, name, price, stock, created_at)
				VALUES (gen_random_uuid(), $1, $2, $3, now())
				RETURNING id`, p.name, p.price, p.stock).Scan(&id)
			if err != nil {
				return err
			}
			productIDs[p.name] = id
		}
		logger.Info().Int("count", len(defaultProducts)).Msg("products seeded")
	} else {
		rows, err := tx.Query(ctx, `SELECT id, name FROM products`)
		if err != nil {
			return err
		}
		for rows.Next() {
			var id, name string
			if err := rows.Scan(&id, &name); err != nil {
				rows.Close()
				return err
			}
			productIDs[name] = id
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
		logger.Info().Msg("products already present, skipping")
	}

	var ruleCount int
	if err := tx.QueryRow(ctx, `SELECT count(*) FROM package_rules`).Scan(&ruleCount); err != nil {
		return err
	}
	if ruleCount == 0 {
		for pos, pkg := range defaultPackages {
			var ruleID int32
			err := tx.QueryRow(ctx, `
				INSERT INTO package_rules (name, discount, position)
				VALUES ($1, $2, $3)
				RETURNING id`, pkg.name, pkg.discount, pos).Scan(&ruleID)
			if err != nil {
				return err
			}
			for productName, qty := range pkg.requires {
				productID, ok := productIDs[productName]
				if !ok {
					logger.Warn().Str("rule", pkg.name).Str("product", productName).Msg("rule references unknown product, skipping item")
					continue
				}
				_, err := tx.Exec(ctx, `
					INSERT INTO package_rule_items (rule_id, product_id, qty)
					VALUES ($1, $2, $3)`, ruleID, productID, qty)
				if err != nil {
					return err
				}
			}
		}
		logger.Info().Int("count", len(defaultPackages)).Msg("package rules seeded")
	}

	var thresholdCount int
	if err := tx.QueryRow(ctx, `SELECT count(*) FROM threshold_rules`).Scan(&thresholdCount); err != nil {
		return err
	}
	if thresholdCount == 0 {
		for _, t := range defaultThresholds {
			if _, err := tx.Exec(ctx, `
				INSERT INTO threshold_rules (threshold, discount)
				VALUES ($1, $2)`, t.threshold, t.discount); err != nil {
				return err
			}
		}
		logger.Info().Int("count", len(defaultThresholds)).Msg("threshold rules seeded")
	}

	return tx.Commit(ctx)
}

