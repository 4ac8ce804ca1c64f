package workflow

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schemas/workflow_schema.json
var workflowSchemaJSON string

var (
	compiledSchemaOnce sync.Once
	compiledSchema     *jsonschema.Schema
	compiledSchemaErr  error
)

func getCompiledSchema() (*jsonschema.Schema, error) {
	compiledSchemaOnce.Do(func() {
		compiledSchema, compiledSchemaErr = compileSchema(workflowSchemaJSON, "https://flowctl.dev/schema/workflow.json")
	})
	return compiledSchema, compiledSchemaErr
}

func compileSchema(schemaJSON, schemaURL string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()

	var schemaDoc any
	if err := json.Unmarshal([]byte(schemaJSON), &schemaDoc); err != nil {
		return nil, fmt.Errorf("failed to parse embedded workflow schema: %w", err)
	}
	if err := compiler.AddResource(schemaURL, schemaDoc); err != nil {
		return nil, fmt.Errorf("failed to add workflow schema resource: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile workflow schema: %w", err)
	}
	return schema, nil
}

// ValidateStructure runs the minimal JSON-schema structural pre-check over
// raw decoded JSON (map[string]any) before the engine attempts to build a
// typed Workflow. This catches gross shape errors (nodes not an array,
// wrong field types) with a single, well-formatted error rather than a
// confusing Go unmarshal failure; the full structural/semantic pass lives in
// pkg/validate (spec §4.C.1).
func ValidateStructure(raw map[string]any) error {
	schema, err := getCompiledSchema()
	if err != nil {
		return err
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow for schema validation: %w", err)
	}
	var normalized any
	if err := json.Unmarshal(encoded, &normalized); err != nil {
		return fmt.Errorf("failed to normalize workflow for schema validation: %w", err)
	}

	if err := schema.Validate(normalized); err != nil {
		return fmt.Errorf("workflow schema validation failed: %w", err)
	}
	return nil
}
