package pricing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store loads the discount rule tables from Postgres.
type Store struct {
	Pool *pgxpool.Pool
}

// LoadRules reads package and threshold rules. Package rules keep their
// declared position order since evaluation order is part of the policy.
func (s *Store) LoadRules(ctx context.Context) (Rules, error) {
	var rules Rules

	rows, err := s.Pool.Query(ctx, `
		SELECT id, name, discount
		FROM package_rules
		ORDER BY position, id`)
	if err != nil {
		return Rules{}, fmt.Errorf("load package rules: %w", err)
	}
	defer rows.Close()

	ruleIDs := make([]int32, 0)
	for rows.Next() {
		var (
			id       int32
			name     string
			discount int64
		)
		if err := rows.Scan(&id, &name, &discount); err != nil {
			return Rules{}, fmt.Errorf("scan package rule: %w", err)
		}
		ruleIDs = append(ruleIDs, id)
		rules.Packages = append(rules.Packages, PackageRule{
			Name:     name,
			Discount: discount,
			Requires: make(map[uuid.UUID]int32),
		})
	}
	if err := rows.Err(); err != nil {
		return Rules{}, err
	}

	for i, id := range ruleIDs {
		itemRows, err := s.Pool.Query(ctx, `
			SELECT product_id, qty
			FROM package_rule_items
			WHERE rule_id = $1`, id)
		if err != nil {
			return Rules{}, fmt.Errorf("load package rule items: %w", err)
		}
		for itemRows.Next() {
			var (
				productID uuid.UUID
				qty       int32
			)
			if err := itemRows.Scan(&productID, &qty); err != nil {
				itemRows.Close()
				return Rules{}, fmt.Errorf("scan package rule item: %w", err)
			}
			rules.Packages[i].Requires[productID] = qty
		}
		itemRows.Close()
		if err := itemRows.Err(); err != nil {
			return Rules{}, err
		}
	}

	thresholdRows, err := s.Pool.Query(ctx, `
		SELECT threshold, discount
		FROM threshold_rules
		ORDER BY threshold`)
	if err != nil {
		return Rules{}, fmt.Errorf("load threshold rules: %w", err)
	}
	defer thresholdRows.Close()
	for thresholdRows.Next() {
		var rule ThresholdRule
		if err := thresholdRows.Scan(&rule.Threshold, &rule.Discount); err != nil {
			return Rules{}, fmt.Errorf("scan threshold rule: %w", err)
		}
		rules.Thresholds = append(rules.Thresholds, rule)
	}
	if err := thresholdRows.Err(); err != nil {
		return Rules{}, err
	}

	if len(rules.Thresholds) == 0 {
		rules.Thresholds = DefaultThresholds()
	}
	return rules, nil
}
