package catalogue

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"enterprise-portal/internal/models"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/menu_item.json
var menuItemSchema []byte

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func itemSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.AssertFormat = true
		if err := compiler.AddResource("menu_item.json", bytes.NewReader(menuItemSchema)); err != nil {
			schemaErr = fmt.Errorf("catalogue: load schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile("menu_item.json")
		if schemaErr != nil {
			schemaErr = fmt.Errorf("catalogue: compile schema: %w", schemaErr)
		}
	})
	return compiledSchema, schemaErr
}

// Validate checks an item against the menu item schema.
func Validate(item models.MenuItem) error {
	schema, err := itemSchema()
	if err != nil {
		return err
	}
	if item.Config == nil {
		return fmt.Errorf("%w: config is required", ErrInvalidItem)
	}
	raw, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidItem, err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidItem, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidItem, err)
	}
	return nil
}
