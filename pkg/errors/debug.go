package errors

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// ErrorDump is a log-friendly flattening of an error chain.
type ErrorDump struct {
	Message   string      `json:"message"`
	Code      Code        `json:"code,omitempty"`
	Retryable bool        `json:"retryable,omitempty"`
	Details   any         `json:"details,omitempty"`
	Chain     []string    `json:"chain,omitempty"`
	Store     *StoreError `json:"store,omitempty"`
}

// StoreError is the driver-level failure found in the chain, if any.
type StoreError struct {
	Driver     string `json:"driver"`
	Code       string `json:"code,omitempty"`
	Constraint string `json:"constraint,omitempty"`
	Table      string `json:"table,omitempty"`
	Column     string `json:"column,omitempty"`
	Detail     string `json:"detail,omitempty"`
	Message    string `json:"message,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{Message: err.Error(), Store: storeError(err)}
	if te := As(err); te != nil {
		d.Code = te.Code()
		d.Retryable = MetadataFor(te.Code()).Retryable
		d.Details = te.Details()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}
	return d
}

func storeError(err error) *StoreError {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return &StoreError{
			Driver:     "pgx",
			Code:       pgxErr.Code,
			Constraint: pgxErr.ConstraintName,
			Table:      pgxErr.TableName,
			Column:     pgxErr.ColumnName,
			Detail:     pgxErr.Detail,
			Message:    pgxErr.Message,
		}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &StoreError{
			Driver:     "pq",
			Code:       string(pqErr.Code),
			Constraint: pqErr.Constraint,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Detail:     pqErr.Detail,
			Message:    pqErr.Message,
		}
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return &StoreError{
			Driver:  "sqlite3",
			Code:    strconv.Itoa(int(liteErr.ExtendedCode)),
			Message: liteErr.Error(),
		}
	}
	return nil
}
