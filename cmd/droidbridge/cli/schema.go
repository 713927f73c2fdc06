// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Schema is the subset of JSON Schema used for MCP tool input
// descriptions.
type Schema struct {
	// Type is "object", "string", "boolean", "integer" or "array".
	Type string `json:"type"`

	Description string `json:"description,omitempty"`

	// Properties and Required are only set when Type is "object".
	Properties map[string]*Schema `json:"properties,omitempty"`
	Required   []string           `json:"required,omitempty"`

	// Default is parsed to the field's Go type so it marshals as the
	// matching JSON type.
	Default any `json:"default,omitempty"`

	// Enum lists the accepted values, from a comma-separated enum tag.
	Enum []string `json:"enum,omitempty"`

	// Items describes the element type for array schemas.
	Items *Schema `json:"items,omitempty"`
}

// ParamsSchema generates a JSON Schema from a parameter struct.
// Property names come from json tags (fields without one, or tagged
// "-", are left out), descriptions from desc, defaults from default and
// allowed values from enum. A field is required when tagged
// required:"true" and it has no default.
func ParamsSchema(params any) (*Schema, error) {
	value := reflect.ValueOf(params)
	if value.Kind() == reflect.Ptr {
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, Internal("params must be a struct or pointer to struct, got %T", params)
	}
	return buildObjectSchema(value.Type())
}

func buildObjectSchema(structType reflect.Type) (*Schema, error) {
	schema := &Schema{
		Type:       "object",
		Properties: make(map[string]*Schema),
	}

	for i := range structType.NumField() {
		field := structType.Field(i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			embedded, err := buildObjectSchema(field.Type)
			if err != nil {
				return nil, Internal("embedded %s: %w", field.Name, err)
			}
			for name, property := range embedded.Properties {
				schema.Properties[name] = property
			}
			schema.Required = append(schema.Required, embedded.Required...)
			continue
		}
		if !field.IsExported() {
			continue
		}

		propertyName := jsonPropertyName(field)
		if propertyName == "" || propertyName == "-" {
			continue
		}

		property, err := fieldSchema(field)
		if err != nil {
			return nil, Internal("field %s: %w", field.Name, err)
		}
		schema.Properties[propertyName] = property

		if field.Tag.Get("required") == "true" && field.Tag.Get("default") == "" {
			schema.Required = append(schema.Required, propertyName)
		}
	}

	if len(schema.Properties) == 0 {
		schema.Properties = nil
	}
	return schema, nil
}

// jsonPropertyName returns the name part of a field's json tag.
func jsonPropertyName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	return name
}

func fieldSchema(field reflect.StructField) (*Schema, error) {
	schema := &Schema{Description: field.Tag.Get("desc")}

	switch field.Type.Kind() {
	case reflect.String:
		schema.Type = "string"
	case reflect.Bool:
		schema.Type = "boolean"
	case reflect.Int:
		schema.Type = "integer"
	case reflect.Slice:
		if field.Type.Elem().Kind() != reflect.String {
			return nil, Internal("unsupported slice type %s", field.Type)
		}
		schema.Type = "array"
		schema.Items = &Schema{Type: "string"}
	default:
		return nil, Internal("unsupported type %s", field.Type)
	}

	if enum := field.Tag.Get("enum"); enum != "" {
		if schema.Type != "string" {
			return nil, Internal("enum tag on non-string field")
		}
		schema.Enum = strings.Split(enum, ",")
	}

	if defaultString := field.Tag.Get("default"); defaultString != "" {
		defaultValue, err := parseDefault(field.Type, defaultString)
		if err != nil {
			return nil, Internal("default: %w", err)
		}
		if schema.Enum != nil && !slices.Contains(schema.Enum, defaultString) {
			return nil, Internal("default %q is not one of the enum values", defaultString)
		}
		schema.Default = defaultValue
	}
	return schema, nil
}

func parseDefault(fieldType reflect.Type, value string) (any, error) {
	switch fieldType.Kind() {
	case reflect.String:
		return value, nil
	case reflect.Bool:
		return strconv.ParseBool(value)
	case reflect.Int:
		return strconv.Atoi(value)
	case reflect.Slice:
		return strings.Split(value, ","), nil
	default:
		return nil, Internal("unsupported type %s", fieldType)
	}
}

// SchemaJSON generates the schema for params and marshals it to
// indented JSON.
func SchemaJSON(params any) ([]byte, error) {
	schema, err := ParamsSchema(params)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(schema, "", "  ")
}
