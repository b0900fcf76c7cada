package extract

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// fieldsAllowedFor lists every field name that may legally appear for a
// document type: the common fields plus the type's own table. This backs the
// stored-record invariant that a fields object never carries a key outside
// its type's vocabulary.
func fieldsAllowedFor(t DocumentType) []string {
	rules := append(append([]FieldRule{}, commonRules...), typeRulesets[t]...)
	names := make([]string, 0, len(rules))
	for _, r := range rules {
		names = append(names, r.Field)
	}
	return names
}

// BuildFieldsJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map constraining the serialized fields object for one document
// type. No field is required: extraction is best-effort and any subset may
// be absent.
func BuildFieldsJSONSchema(t DocumentType) map[string]any {
	props := map[string]any{}
	for _, name := range fieldsAllowedFor(t) {
		props[name] = map[string]any{"type": "string", "minLength": 1}
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
}

// ValidateFieldsJSON validates serialized fields against the schema for the
// given document type.
func ValidateFieldsJSON(t DocumentType, data []byte) error {
	b, err := json.Marshal(BuildFieldsJSONSchema(t))
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("fields.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("fields.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal fields: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("fields do not match schema: %w", err)
	}
	return nil
}
