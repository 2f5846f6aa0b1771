package utils

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

var (
	ErrorRecordNotFound = errors.New("record not found")
	ErrorUnauthorized   = errors.New("unauthorized")
	ErrorInvalidInput   = errors.New("invalid input")
	ErrorDuplicate      = errors.New("duplicate record")
)

// NewInputError wraps ErrorInvalidInput with a client-facing message.
func NewInputError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrorInvalidInput, fmt.Sprintf(format, args...))
}

// NewDuplicateError wraps ErrorDuplicate with the offending column.
func NewDuplicateError(column string) error {
	return fmt.Errorf("%w: %s", ErrorDuplicate, column)
}

// IsDuplicateKeyError reports a MySQL unique key violation (1062).
func IsDuplicateKeyError(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
