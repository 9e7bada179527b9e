//-------------------------------------------------------------------------
//
// pgEdge Sales Pipeline
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package export

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema SQL for the exported sales tables.
const createSchemaSQL = `
-- Store-level daily sales
CREATE TABLE IF NOT EXISTS store_sales (
    store_id     BIGINT NOT NULL,
    product_id   BIGINT NOT NULL,
    sale_date    DATE NOT NULL,
    day_of_week  SMALLINT NOT NULL,
    sales_qty    BIGINT NOT NULL,
    fitted_value DOUBLE PRECISION NOT NULL,
    PRIMARY KEY (store_id, product_id, sale_date)
);

-- Product-level daily sales with the store axis collapsed
CREATE TABLE IF NOT EXISTS product_sales (
    product_id   BIGINT NOT NULL,
    sale_date    DATE NOT NULL,
    day_of_week  SMALLINT NOT NULL,
    sales_qty    DOUBLE PRECISION NOT NULL,
    fitted_value DOUBLE PRECISION NOT NULL,
    PRIMARY KEY (product_id, sale_date)
);

CREATE INDEX IF NOT EXISTS idx_store_sales_date ON store_sales(sale_date);
CREATE INDEX IF NOT EXISTS idx_store_sales_product ON store_sales(product_id);
CREATE INDEX IF NOT EXISTS idx_product_sales_date ON product_sales(sale_date);
`

// Drop schema SQL
const dropSchemaSQL = `
DROP TABLE IF EXISTS store_sales CASCADE;
DROP TABLE IF EXISTS product_sales CASCADE;
DROP TABLE IF EXISTS salespipe_metadata CASCADE;
`

// CreateSchema creates the sales tables.
func CreateSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, createSchemaSQL)
	return err
}

// DropSchema drops the sales tables.
func DropSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, dropSchemaSQL)
	return err
}
