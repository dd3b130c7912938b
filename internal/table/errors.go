package table

import (
	"errors"
	"fmt"
)

// ErrSchema is matched by every SchemaError via errors.Is.
var ErrSchema = errors.New("schema error")

// SchemaError reports a field that is absent from every record of a table.
type SchemaError struct {
	Op    string
	Field string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: field %q not present in table schema", e.Op, e.Field)
}

// Is lets errors.Is(err, ErrSchema) match.
func (e *SchemaError) Is(target error) bool { return target == ErrSchema }
