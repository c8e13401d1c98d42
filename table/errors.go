package table

import "fmt"

// TableNotFoundError is returned when a catalog lookup names an unknown table.
type TableNotFoundError struct {
	Name string
}

func (e *TableNotFoundError) Error() string {
	return fmt.Sprintf("table %q not found", e.Name)
}

// DuplicateTableError is returned when a create would overwrite an existing
// catalog entry.
type DuplicateTableError struct {
	Name string
}

func (e *DuplicateTableError) Error() string {
	return fmt.Sprintf("table %q already exists", e.Name)
}

// DuplicateColumnError is returned when a table or projection would contain
// two columns with the same name.
type DuplicateColumnError struct {
	Column string
}

func (e *DuplicateColumnError) Error() string {
	return fmt.Sprintf("duplicate column name %q", e.Column)
}
