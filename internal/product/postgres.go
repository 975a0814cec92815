package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/sandookluxe/storefront/internal/log"
	"github.com/sandookluxe/storefront/internal/otel"
)

const selectProducts = `
SELECT id, name, category, description, price, images, in_stock, featured, specifications
FROM products`

// PostgresDirectory serves the catalog from the retailer's own product
// database.
type PostgresDirectory struct {
	pool *pgxpool.Pool
}

func NewPostgresDirectory(pool *pgxpool.Pool) *PostgresDirectory {
	return &PostgresDirectory{pool: pool}
}

func (d *PostgresDirectory) GetAll(c context.Context) ([]Product, error) {
	c, span := otel.Tracer.Start(c, "PostgresDirectory GetAll")
	defer span.End()

	rows, err := d.pool.Query(c, selectProducts+" ORDER BY id")
	if err != nil {
		err = fmt.Errorf("failed querying products with error=%w", err)
		otel.RecordError(err, span)
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (d *PostgresDirectory) GetByID(c context.Context, id int64) (Product, error) {
	c, span := otel.Tracer.Start(c, "PostgresDirectory GetByID")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PostgresDirectory GetByID").
		Int64(log.KeyProductID, id).
		Logger()

	row := d.pool.QueryRow(c, selectProducts+" WHERE id = $1", id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("productId=%d with error=%w", id, ErrProductNotFound)
			logger.Info().Err(err).Msg(err.Error())
			return Product{}, err
		}
		err = fmt.Errorf("failed querying productId=%d with error=%w", id, err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Product{}, err
	}
	return p, nil
}

func (d *PostgresDirectory) GetByCategory(c context.Context, slug string) ([]Product, error) {
	c, span := otel.Tracer.Start(c, "PostgresDirectory GetByCategory")
	defer span.End()

	rows, err := d.pool.Query(
		c,
		selectProducts+" WHERE lower(replace(category, ' ', '-')) = lower($1) ORDER BY id",
		slug,
	)
	if err != nil {
		err = fmt.Errorf("failed querying products by category=%s with error=%w", slug, err)
		otel.RecordError(err, span)
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (d *PostgresDirectory) Search(c context.Context, query string) ([]Product, error) {
	c, span := otel.Tracer.Start(c, "PostgresDirectory Search")
	defer span.End()

	pattern := "%" + query + "%"
	rows, err := d.pool.Query(
		c,
		selectProducts+` WHERE name ILIKE $1 OR description ILIKE $1 OR category ILIKE $1 ORDER BY id`,
		pattern,
	)
	if err != nil {
		err = fmt.Errorf("failed searching products with query=%s with error=%w", query, err)
		otel.RecordError(err, span)
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func scanProduct(row pgx.Row) (Product, error) {
	var (
		p     Product
		price pgtype.Numeric
	)
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Category,
		&p.Description,
		&price,
		&p.Images,
		&p.InStock,
		&p.Featured,
		&p.Specifications,
	)
	if err != nil {
		return Product{}, err
	}
	p.Price = decimal.NewFromBigInt(price.Int, price.Exp)
	return p, nil
}

func scanProducts(rows pgx.Rows) ([]Product, error) {
	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed scanning product row with error=%w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating product rows with error=%w", err)
	}
	return products, nil
}
