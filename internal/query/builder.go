// Package query is a small safe SQL builder used by the repository layer.
// It never accepts a caller-supplied column name without checking it
// against a per-table whitelist, so no repository method can be coerced
// into building a query against an arbitrary column.
package query

import (
	"fmt"
	"strings"
)

// Op is a comparison operator usable in a WHERE clause.
type Op string

const (
	OpEq      Op = "="
	OpNeq     Op = "!="
	OpGt      Op = ">"
	OpGte     Op = ">="
	OpLt      Op = "<"
	OpLte     Op = "<="
	OpLike    Op = "LIKE"
	OpIn      Op = "IN"
	OpIsNull  Op = "IS NULL"
	OpNotNull Op = "IS NOT NULL"
)

// Schema describes the columns a table declares, split by whether LIKE is
// permitted (text columns only).
type Schema struct {
	Table      string
	Columns    map[string]bool // column name -> is text (LIKE-eligible)
}

func (s Schema) allowed(col string) bool {
	_, ok := s.Columns[col]
	return ok
}

func (s Schema) isText(col string) bool {
	return s.Columns[col]
}

// Condition is one WHERE predicate, validated against a Schema before use.
type Condition struct {
	Column string
	Op     Op
	Value  any
	Values []any // for OpIn
}

// Builder accumulates a SELECT/UPDATE/DELETE against a single Schema and
// renders parameterized SQL. It never interpolates caller values into the
// SQL string; every value is bound as a placeholder argument.
type Builder struct {
	schema     Schema
	conditions []Condition
	orderBy    string
	orderDesc  bool
	limit      int
	offset     int
	err        error
}

func New(schema Schema) *Builder {
	return &Builder{schema: schema}
}

// Where adds a condition. An unknown column or a LIKE against a non-text
// column is recorded as a build error surfaced by Build, never silently
// dropped or interpolated unchecked.
func (b *Builder) Where(col string, op Op, value any) *Builder {
	if b.err != nil {
		return b
	}
	if !b.schema.allowed(col) {
		b.err = fmt.Errorf("query: unknown column %q on table %s", col, b.schema.Table)
		return b
	}
	if op == OpLike && !b.schema.isText(col) {
		b.err = fmt.Errorf("query: LIKE not permitted on non-text column %q", col)
		return b
	}
	b.conditions = append(b.conditions, Condition{Column: col, Op: op, Value: value})
	return b
}

// WhereIn adds an IN (...) condition. An empty values slice is a build
// error: "IN ()" is never valid SQL and silently matching nothing is more
// dangerous than refusing to build.
func (b *Builder) WhereIn(col string, values []any) *Builder {
	if b.err != nil {
		return b
	}
	if !b.schema.allowed(col) {
		b.err = fmt.Errorf("query: unknown column %q on table %s", col, b.schema.Table)
		return b
	}
	if len(values) == 0 {
		b.err = fmt.Errorf("query: IN requires a non-empty set of values for column %q", col)
		return b
	}
	b.conditions = append(b.conditions, Condition{Column: col, Op: OpIn, Values: values})
	return b
}

func (b *Builder) OrderBy(col string, desc bool) *Builder {
	if b.err != nil {
		return b
	}
	if !b.schema.allowed(col) {
		b.err = fmt.Errorf("query: unknown order-by column %q on table %s", col, b.schema.Table)
		return b
	}
	b.orderBy = col
	b.orderDesc = desc
	return b
}

func (b *Builder) Limit(n int) *Builder {
	b.limit = n
	return b
}

func (b *Builder) Offset(n int) *Builder {
	b.offset = n
	return b
}

func (b *Builder) whereClause() (string, []any, error) {
	if b.err != nil {
		return "", nil, b.err
	}
	if len(b.conditions) == 0 {
		return "", nil, nil
	}
	var sb strings.Builder
	var args []any
	sb.WriteString(" WHERE ")
	for i, c := range b.conditions {
		if i > 0 {
			sb.WriteString(" AND ")
		}
		switch c.Op {
		case OpIsNull, OpNotNull:
			fmt.Fprintf(&sb, "%s %s", c.Column, c.Op)
		case OpIn:
			placeholders := strings.TrimSuffix(strings.Repeat("?,", len(c.Values)), ",")
			fmt.Fprintf(&sb, "%s IN (%s)", c.Column, placeholders)
			args = append(args, c.Values...)
		default:
			fmt.Fprintf(&sb, "%s %s ?", c.Column, c.Op)
			args = append(args, c.Value)
		}
	}
	return sb.String(), args, nil
}

// BuildSelect renders "SELECT <columns> FROM table ... " with the
// accumulated WHERE/ORDER BY/LIMIT/OFFSET clauses.
func (b *Builder) BuildSelect(columns ...string) (string, []any, error) {
	for _, c := range columns {
		if c != "*" && !b.schema.allowed(c) {
			return "", nil, fmt.Errorf("query: unknown select column %q on table %s", c, b.schema.Table)
		}
	}
	cols := "*"
	if len(columns) > 0 {
		cols = strings.Join(columns, ", ")
	}
	where, args, err := b.whereClause()
	if err != nil {
		return "", nil, err
	}
	sql := fmt.Sprintf("SELECT %s FROM %s%s", cols, b.schema.Table, where)
	if b.orderBy != "" {
		dir := "ASC"
		if b.orderDesc {
			dir = "DESC"
		}
		sql += fmt.Sprintf(" ORDER BY %s %s", b.orderBy, dir)
	}
	if b.limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d", b.limit)
	}
	if b.offset > 0 {
		sql += fmt.Sprintf(" OFFSET %d", b.offset)
	}
	return sql, args, nil
}

// BuildCount renders "SELECT COUNT(*) FROM table WHERE ..." ignoring any
// ORDER BY/LIMIT/OFFSET that were set, for accurate pagination totals.
func (b *Builder) BuildCount() (string, []any, error) {
	where, args, err := b.whereClause()
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("SELECT COUNT(*) FROM %s%s", b.schema.Table, where), args, nil
}

// BuildDelete renders a DELETE statement. A DELETE with no WHERE clause is
// refused outright: a repository that truly wants to clear a table should
// do so explicitly with raw SQL, not through this builder.
func (b *Builder) BuildDelete() (string, []any, error) {
	where, args, err := b.whereClause()
	if err != nil {
		return "", nil, err
	}
	if where == "" {
		return "", nil, fmt.Errorf("query: DELETE requires at least one WHERE condition on table %s", b.schema.Table)
	}
	return fmt.Sprintf("DELETE FROM %s%s", b.schema.Table, where), args, nil
}

// BuildUpdate renders an UPDATE statement setting the given column/value
// pairs (in the order given, for deterministic SQL), combined with the
// builder's WHERE conditions. Like BuildDelete, an empty WHERE clause is
// refused.
func (b *Builder) BuildUpdate(set map[string]any, order []string) (string, []any, error) {
	if b.err != nil {
		return "", nil, b.err
	}
	if len(order) == 0 {
		return "", nil, fmt.Errorf("query: UPDATE requires at least one SET column")
	}
	var sb strings.Builder
	var args []any
	fmt.Fprintf(&sb, "UPDATE %s SET ", b.schema.Table)
	for i, col := range order {
		if !b.schema.allowed(col) {
			return "", nil, fmt.Errorf("query: unknown set column %q on table %s", col, b.schema.Table)
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s = ?", col)
		args = append(args, set[col])
	}
	where, whereArgs, err := b.whereClause()
	if err != nil {
		return "", nil, err
	}
	if where == "" {
		return "", nil, fmt.Errorf("query: UPDATE requires at least one WHERE condition on table %s", b.schema.Table)
	}
	sb.WriteString(where)
	args = append(args, whereArgs...)
	return sb.String(), args, nil
}
