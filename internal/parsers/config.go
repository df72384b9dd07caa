package parsers

import (
	"fmt"
)

// Field names of the sales transaction schema, in positional order.
const (
	FieldTransactionID = "TransactionID"
	FieldDate          = "Date"
	FieldProductID     = "ProductID"
	FieldProductName   = "ProductName"
	FieldQuantity      = "Quantity"
	FieldUnitPrice     = "UnitPrice"
	FieldCustomerID    = "CustomerID"
	FieldRegion        = "Region"
)

// SchemaConfig holds configuration for positional record parsing. The field
// order is explicit configuration rather than ambient state so tests can
// override it.
type SchemaConfig struct {
	// Delimiter separates fields within a line.
	Delimiter rune `json:"delimiter"`

	// Fields maps positions to schema names. Lines with fewer fields get
	// empty values for the missing trailing positions; extra fields beyond
	// the schema width are discarded.
	Fields []string `json:"fields"`
}

// DefaultSchemaConfig returns the standard sales transaction schema
func DefaultSchemaConfig() *SchemaConfig {
	return &SchemaConfig{
		Delimiter: '|',
		Fields: []string{
			FieldTransactionID,
			FieldDate,
			FieldProductID,
			FieldProductName,
			FieldQuantity,
			FieldUnitPrice,
			FieldCustomerID,
			FieldRegion,
		},
	}
}

// Validate validates the schema configuration
func (c *SchemaConfig) Validate() error {
	if c.Delimiter == 0 {
		return fmt.Errorf("delimiter cannot be empty")
	}
	if len(c.Fields) == 0 {
		return fmt.Errorf("schema must declare at least one field")
	}

	seen := make(map[string]bool, len(c.Fields))
	for _, name := range c.Fields {
		if name == "" {
			return fmt.Errorf("schema field names cannot be empty")
		}
		if seen[name] {
			return fmt.Errorf("duplicate schema field: %s", name)
		}
		seen[name] = true
	}

	return nil
}

// FieldIndex returns the position of a field by name, or -1 if not declared
func (c *SchemaConfig) FieldIndex(name string) int {
	for i, f := range c.Fields {
		if f == name {
			return i
		}
	}
	return -1
}

// Width returns the number of fields in the schema
func (c *SchemaConfig) Width() int {
	return len(c.Fields)
}
