package postgres

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestWhereBuilder_NumeraPlaceholders(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	w := &whereBuilder{}
	w.add("s.company_id = ?", "c1")
	w.add("s.cashier_id = ?", "u1")
	w.add("s.created_at >= ?", from)

	q := w.paginate("SELECT 1 FROM sales s"+w.sql()+" ORDER BY s.created_at DESC", 20, 40)
	assert.Equal(t,
		"SELECT 1 FROM sales s WHERE s.company_id = $1 AND s.cashier_id = $2 AND s.created_at >= $3 ORDER BY s.created_at DESC LIMIT $4 OFFSET $5",
		q)
	assert.Equal(t, []any{"c1", "u1", from, 20, 40}, w.args)
}

func TestWhereBuilder_SinLimite(t *testing.T) {
	w := &whereBuilder{}
	w.add("company_id = ?", "c1")
	q := w.paginate("SELECT 1 FROM products"+w.sql(), 0, 0)
	assert.Equal(t, "SELECT 1 FROM products WHERE company_id = $1", q)
	assert.Len(t, w.args, 1)
}

func TestWhereBuilder_CondicionSinArgumentos(t *testing.T) {
	w := &whereBuilder{}
	w.add("company_id = ?", "c1")
	w.add("min_stock > 0 AND stock <= min_stock")
	assert.Equal(t, " WHERE company_id = $1 AND min_stock > 0 AND stock <= min_stock", w.sql())
}

func TestPgCodes(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	fk := &pgconn.PgError{Code: "23503"}

	assert.True(t, isUniqueViolation(unique))
	assert.False(t, isUniqueViolation(fk))
	assert.True(t, isForeignKeyViolation(fk))
	assert.False(t, isUniqueViolation(errors.New("23505 en texto")))
}

func TestSchema_DeclaraTablasDelDominio(t *testing.T) {
	for _, table := range []string{
		"companies", "profiles", "products", "inventory_movements",
		"sales", "sale_items", "recipes", "recipe_ingredients", "production_batches",
	} {
		assert.Contains(t, Schema(), "CREATE TABLE IF NOT EXISTS "+table+" ")
	}
	assert.Contains(t, Schema(), "sales_client_ref_key")
}
