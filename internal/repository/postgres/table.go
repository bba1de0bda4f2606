package postgres

import (
	"chat-rag/internal/logger"
	"chat-rag/internal/repository/db"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const (
	opSelect = "selecting from"
	opInsert = "inserting into"
	opUpdate = "updating"
	opDelete = "deleting from"
)

// Select returns the rows of table matching opts, in the requested order
func (p *PostgresDB) Select(ctx context.Context, table db.Table, opts db.QueryOptions) ([]db.Record, error) {
	query, args, err := buildSelect(table, opts)
	if err != nil {
		return nil, p.fail(opSelect, table, err)
	}

	rows, err := p.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, p.fail(opSelect, table, err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, p.fail(opSelect, table, err)
	}

	logger.Log.WithFields(logrus.Fields{"table": table, "rows": len(records)}).Debug("Selected rows")
	return records, nil
}

// Insert writes one row and returns it as stored, generated columns included
func (p *PostgresDB) Insert(ctx context.Context, table db.Table, record db.Record) (db.Record, error) {
	query, args, err := buildInsert(table, record)
	if err != nil {
		return nil, p.fail(opInsert, table, err)
	}

	rows, err := p.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, p.fail(opInsert, table, err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, p.fail(opInsert, table, err)
	}
	if len(records) == 0 {
		return nil, p.fail(opInsert, table, errors.New("insert returned no row"))
	}

	logger.Log.WithFields(logrus.Fields{"table": table, "id": records[0].Int64("id")}).Info("Inserted row")
	return records[0], nil
}

// Update applies patch to every row matching filters and returns the updated rows
func (p *PostgresDB) Update(ctx context.Context, table db.Table, patch db.Record, filters []db.Filter) ([]db.Record, error) {
	query, args, err := buildUpdate(table, patch, filters)
	if err != nil {
		return nil, p.fail(opUpdate, table, err)
	}

	rows, err := p.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, p.fail(opUpdate, table, err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, p.fail(opUpdate, table, err)
	}

	logger.Log.WithFields(logrus.Fields{"table": table, "rows": len(records)}).Info("Updated rows")
	return records, nil
}

// Delete removes every row matching filters
func (p *PostgresDB) Delete(ctx context.Context, table db.Table, filters []db.Filter) error {
	query, args, err := buildDelete(table, filters)
	if err != nil {
		return p.fail(opDelete, table, err)
	}

	result, err := p.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return p.fail(opDelete, table, err)
	}

	affected, _ := result.RowsAffected()
	logger.Log.WithFields(logrus.Fields{"table": table, "rows": affected}).Info("Deleted rows")
	return nil
}

func (p *PostgresDB) fail(op string, table db.Table, err error) error {
	logger.Log.WithError(err).WithField("table", table).Errorf("Error %s table", op)
	return &db.StoreError{Op: op, Table: table, Err: err}
}

func buildSelect(table db.Table, opts db.QueryOptions) (string, []any, error) {
	if err := table.Validate(); err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", columnList(table), pq.QuoteIdentifier(string(table)))

	where, args, err := buildWhere(table, opts.Filters, 1)
	if err != nil {
		return "", nil, err
	}
	sb.WriteString(where)

	if opts.Order != nil {
		if !table.HasColumn(opts.Order.Column) {
			return "", nil, fmt.Errorf("unknown order column %q", opts.Order.Column)
		}
		direction := "DESC"
		if opts.Order.Ascending {
			direction = "ASC"
		}
		fmt.Fprintf(&sb, " ORDER BY %s %s", pq.QuoteIdentifier(opts.Order.Column), direction)
	}

	if opts.Limit < 0 {
		return "", nil, fmt.Errorf("invalid limit %d", opts.Limit)
	}
	if opts.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", opts.Limit)
	}

	return sb.String(), args, nil
}

func buildInsert(table db.Table, record db.Record) (string, []any, error) {
	if err := table.Validate(); err != nil {
		return "", nil, err
	}

	columns, err := sortedColumns(table, record)
	if err != nil {
		return "", nil, err
	}

	if len(columns) == 0 {
		return fmt.Sprintf("INSERT INTO %s DEFAULT VALUES RETURNING %s",
			pq.QuoteIdentifier(string(table)), columnList(table)), nil, nil
	}

	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, column := range columns {
		quoted[i] = pq.QuoteIdentifier(column)
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = bindValue(record[column])
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		pq.QuoteIdentifier(string(table)),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
		columnList(table))
	return query, args, nil
}

func buildUpdate(table db.Table, patch db.Record, filters []db.Filter) (string, []any, error) {
	if err := table.Validate(); err != nil {
		return "", nil, err
	}
	if len(filters) == 0 {
		return "", nil, errors.New("update without filters is not allowed")
	}

	columns, err := sortedColumns(table, patch)
	if err != nil {
		return "", nil, err
	}
	if len(columns) == 0 {
		return "", nil, errors.New("empty update patch")
	}

	assignments := make([]string, len(columns))
	args := make([]any, 0, len(columns)+len(filters))
	for i, column := range columns {
		assignments[i] = fmt.Sprintf("%s = $%d", pq.QuoteIdentifier(column), i+1)
		args = append(args, bindValue(patch[column]))
	}

	where, whereArgs, err := buildWhere(table, filters, len(columns)+1)
	if err != nil {
		return "", nil, err
	}
	args = append(args, whereArgs...)

	query := fmt.Sprintf("UPDATE %s SET %s%s RETURNING %s",
		pq.QuoteIdentifier(string(table)),
		strings.Join(assignments, ", "),
		where,
		columnList(table))
	return query, args, nil
}

func buildDelete(table db.Table, filters []db.Filter) (string, []any, error) {
	if err := table.Validate(); err != nil {
		return "", nil, err
	}
	if len(filters) == 0 {
		return "", nil, errors.New("delete without filters is not allowed")
	}

	where, args, err := buildWhere(table, filters, 1)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("DELETE FROM %s%s", pq.QuoteIdentifier(string(table)), where), args, nil
}

// buildWhere renders AND-combined filters with placeholders numbered from start
func buildWhere(table db.Table, filters []db.Filter, start int) (string, []any, error) {
	if len(filters) == 0 {
		return "", nil, nil
	}

	conditions := make([]string, len(filters))
	args := make([]any, len(filters))
	for i, f := range filters {
		if !table.HasColumn(f.Column) {
			return "", nil, fmt.Errorf("unknown filter column %q", f.Column)
		}
		op := f.Op
		if op == "" {
			op = db.OpEq
		}
		if !op.Valid() {
			return "", nil, fmt.Errorf("unsupported operator %q", string(f.Op))
		}
		conditions[i] = fmt.Sprintf("%s %s $%d", pq.QuoteIdentifier(f.Column), op, start+i)
		args[i] = bindValue(f.Value)
	}
	return " WHERE " + strings.Join(conditions, " AND "), args, nil
}

func sortedColumns(table db.Table, record db.Record) ([]string, error) {
	columns := make([]string, 0, len(record))
	for column := range record {
		if !table.HasColumn(column) {
			return nil, fmt.Errorf("unknown column %q", column)
		}
		columns = append(columns, column)
	}
	sort.Strings(columns)
	return columns, nil
}

func columnList(table db.Table) string {
	columns := table.Columns()
	quoted := make([]string, len(columns))
	for i, column := range columns {
		quoted[i] = pq.QuoteIdentifier(column)
	}
	return strings.Join(quoted, ", ")
}

// bindValue adapts Go slices to Postgres arrays
func bindValue(v any) any {
	switch v := v.(type) {
	case []string:
		return pq.Array(v)
	case []int64:
		return pq.Array(v)
	default:
		return v
	}
}

func scanRecords(rows *sql.Rows) ([]db.Record, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	records := make([]db.Record, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		record := make(db.Record, len(columns))
		for i, column := range columns {
			if b, ok := values[i].([]byte); ok {
				record[column] = string(b)
				continue
			}
			record[column] = values[i]
		}
		records = append(records, record)
	}

	return records, rows.Err()
}
