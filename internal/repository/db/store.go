package db

import (
	"context"
	"fmt"
	"slices"
)

// Table names a relational table the application is allowed to touch
type Table string

const (
	TableConfigs       Table = "configs"
	TableDocuments     Table = "documents"
	TableConversations Table = "conversations"
)

var tableColumns = map[Table][]string{
	TableConfigs:       {"id", "api_key_openrouter", "selected_model", "system_prompt", "created_at", "updated_at"},
	TableDocuments:     {"id", "filename", "content", "file_type", "file_size", "created_at"},
	TableConversations: {"id", "whatsapp_id", "user_message", "ai_response", "model_used", "documents_used", "created_at"},
}

// Columns returns the column allow-list for the table
func (t Table) Columns() []string {
	return tableColumns[t]
}

// Validate reports an error for tables outside the allow-list
func (t Table) Validate() error {
	if _, ok := tableColumns[t]; !ok {
		return fmt.Errorf("unknown table %q", string(t))
	}
	return nil
}

// HasColumn reports whether column belongs to the table
func (t Table) HasColumn(column string) bool {
	return slices.Contains(tableColumns[t], column)
}

// Operator is a comparison operator usable in a Filter
type Operator string

const (
	OpEq  Operator = "="
	OpNeq Operator = "<>"
	OpLt  Operator = "<"
	OpLte Operator = "<="
	OpGt  Operator = ">"
	OpGte Operator = ">="
)

// Valid reports whether the operator is one of the supported comparisons
func (o Operator) Valid() bool {
	switch o {
	case OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte:
		return true
	}
	return false
}

// Filter is a single (column, operator, value) condition. Filters in a
// query are AND-combined.
type Filter struct {
	Column string
	Op     Operator
	Value  any
}

// Eq builds an equality filter
func Eq(column string, value any) Filter {
	return Filter{Column: column, Op: OpEq, Value: value}
}

// Order sorts a select by a single column
type Order struct {
	Column    string
	Ascending bool
}

// QueryOptions narrows a Select. A zero Limit means no limit.
type QueryOptions struct {
	Filters []Filter
	Order   *Order
	Limit   int
}

// Store is the data access layer over the relational store.
// All methods return a *StoreError on failure.
type Store interface {
	Select(ctx context.Context, table Table, opts QueryOptions) ([]Record, error)
	Insert(ctx context.Context, table Table, record Record) (Record, error)
	Update(ctx context.Context, table Table, patch Record, filters []Filter) ([]Record, error)
	Delete(ctx context.Context, table Table, filters []Filter) error
}

// StoreError wraps any fault raised while talking to the store
type StoreError struct {
	Op    string
	Table Table
	Err   error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("error %s %s: %v", e.Op, e.Table, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
