package storage

import (
	"context"
)

const createCost = `-- name: CreateCost :one
INSERT INTO costs (sum, currency, category, description, date, year, month)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id, sum, currency, category, description, date, year, month
`

type CreateCostParams struct {
	Sum         float64
	Currency    string
	Category    string
	Description string
	Date        string
	Year        int64
	Month       int64
}

func (q *Queries) CreateCost(ctx context.Context, arg CreateCostParams) (Cost, error) {
	row := q.db.QueryRowContext(ctx, createCost,
		arg.Sum,
		arg.Currency,
		arg.Category,
		arg.Description,
		arg.Date,
		arg.Year,
		arg.Month,
	)
	var i Cost
	err := row.Scan(
		&i.ID,
		&i.Sum,
		&i.Currency,
		&i.Category,
		&i.Description,
		&i.Date,
		&i.Year,
		&i.Month,
	)
	return i, err
}

const listCostsByMonth = `-- name: ListCostsByMonth :many
SELECT id, sum, currency, category, description, date, year, month
FROM costs
WHERE year = ? AND month = ?
ORDER BY id
`

type ListCostsByMonthParams struct {
	Year  int64
	Month int64
}

func (q *Queries) ListCostsByMonth(ctx context.Context, arg ListCostsByMonthParams) ([]Cost, error) {
	rows, err := q.db.QueryContext(ctx, listCostsByMonth, arg.Year, arg.Month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCosts(rows)
}

const listCostsByYear = `-- name: ListCostsByYear :many
SELECT id, sum, currency, category, description, date, year, month
FROM costs
WHERE year = ? AND month BETWEEN 1 AND 12
ORDER BY id
`

func (q *Queries) ListCostsByYear(ctx context.Context, year int64) ([]Cost, error) {
	rows, err := q.db.QueryContext(ctx, listCostsByYear, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCosts(rows)
}

const upsertSetting = `-- name: UpsertSetting :exec
INSERT INTO settings (key, value)
VALUES (?, ?)
ON CONFLICT (key) DO UPDATE SET value = excluded.value
`

type UpsertSettingParams struct {
	Key   string
	Value string
}

func (q *Queries) UpsertSetting(ctx context.Context, arg UpsertSettingParams) error {
	_, err := q.db.ExecContext(ctx, upsertSetting, arg.Key, arg.Value)
	return err
}

const getSetting = `-- name: GetSetting :one
SELECT key, value FROM settings
WHERE key = ?
`

func (q *Queries) GetSetting(ctx context.Context, key string) (Setting, error) {
	row := q.db.QueryRowContext(ctx, getSetting, key)
	var i Setting
	err := row.Scan(&i.Key, &i.Value)
	return i, err
}

type rowScanner interface {
	Next() bool
	Scan(dest ...interface{}) error
	Close() error
	Err() error
}

func scanCosts(rows rowScanner) ([]Cost, error) {
	var items []Cost
	for rows.Next() {
		var i Cost
		if err := rows.Scan(
			&i.ID,
			&i.Sum,
			&i.Currency,
			&i.Category,
			&i.Description,
			&i.Date,
			&i.Year,
			&i.Month,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
