package database

import (
	"database/sql"
	"strings"

	apperrors "github.com/reviewuplift/backend/pkg/errors"
)

// requireRow turns a zero-row update into a not-found error.
func requireRow(result sql.Result, notFoundMsg string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to read rows affected", err)
	}
	if rows == 0 {
		return apperrors.NewNotFoundError(notFoundMsg)
	}
	return nil
}

// prefixColumns qualifies every column in a comma-separated list with a table
// alias, for use in joined queries.
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
