package catalog

import (
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "catalog.schema.json"

const itemsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["items"],
  "properties": {
    "items": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "width", "height", "grid_requirements"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "name": {"type": "string"},
          "width": {"type": "integer", "minimum": 1},
          "height": {"type": "integer", "minimum": 1},
          "grid_requirements": {
            "type": "array",
            "minItems": 1,
            "items": {"enum": ["floor", "table", "wall", "outdoor", "decoration"]}
          },
          "provides_new_grid": {"type": "boolean"},
          "provided_grid_type": {"enum": ["floor", "table", "wall", "outdoor", "decoration", "forbidden"]}
        },
        "additionalProperties": false
      }
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString(schemaURL, itemsSchema)
	})
	return schema, schemaErr
}
