package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return pgCode(err) == "23505"
}

// isForeignKeyViolation la fila sigue referenciada (23503).
func isForeignKeyViolation(err error) bool {
	return pgCode(err) == "23503"
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// whereBuilder arma cláusulas WHERE con placeholders numerados.
type whereBuilder struct {
	conds []string
	args  []any
}

// add agrega una condición; cada "?" se reemplaza por el próximo $n.
func (w *whereBuilder) add(cond string, args ...any) {
	for _, a := range args {
		w.args = append(w.args, a)
		cond = strings.Replace(cond, "?", fmt.Sprintf("$%d", len(w.args)), 1)
	}
	w.conds = append(w.conds, cond)
}

func (w *whereBuilder) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// paginate agrega LIMIT/OFFSET. limit <= 0 = sin límite.
func (w *whereBuilder) paginate(query string, limit, offset int) string {
	if limit > 0 {
		w.args = append(w.args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(w.args))
	}
	if offset > 0 {
		w.args = append(w.args, offset)
		query += fmt.Sprintf(" OFFSET $%d", len(w.args))
	}
	return query
}

// nullString "" -> NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
