package notionjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var ErrEnvelopeInvalid = errors.New("snapshot envelope invalid")

const pageSchema = `{
  "type": "object",
  "required": ["object", "id", "properties"],
  "properties": {
    "object": {"const": "page"},
    "id": {"type": "string", "minLength": 32},
    "properties": {"type": "object"},
    "parent": {"type": "object", "required": ["type"]}
  }
}`

const databaseSchema = `{
  "type": "object",
  "required": ["object", "id", "title", "properties"],
  "properties": {
    "object": {"const": "database"},
    "id": {"type": "string", "minLength": 32},
    "title": {"type": "array"},
    "properties": {
      "type": "object",
      "additionalProperties": {"type": "object", "required": ["type"]}
    }
  }
}`

const listSchema = `{
  "type": "object",
  "required": ["results"],
  "properties": {
    "results": {
      "type": "array",
      "items": {"type": "object", "required": ["id"]}
    }
  }
}`

const blockListSchema = `{
  "type": "object",
  "required": ["results"],
  "properties": {
    "results": {
      "type": "array",
      "items": {"type": "object", "required": ["id", "type"]}
    }
  }
}`

const manifestSchema = `{
  "type": "object",
  "properties": {
    "root": {"type": "string"},
    "linked": {"type": "array", "items": {"type": "string"}},
    "inaccessible": {"type": "object", "additionalProperties": {"type": "string"}}
  }
}`

type envelope string

const (
	envelopePage      envelope = "page"
	envelopeDatabase  envelope = "database"
	envelopeRows      envelope = "rows"
	envelopeBlockList envelope = "blocks"
	envelopeManifest  envelope = "manifest"
)

var (
	schemaOnce sync.Once
	schemas    map[envelope]*jsonschema.Schema
	schemaErr  error
)

func compiledSchemas() (map[envelope]*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		sources := map[envelope]string{
			envelopePage:      pageSchema,
			envelopeDatabase:  databaseSchema,
			envelopeRows:      listSchema,
			envelopeBlockList: blockListSchema,
			envelopeManifest:  manifestSchema,
		}
		out := make(map[envelope]*jsonschema.Schema, len(sources))
		for name, src := range sources {
			compiler := jsonschema.NewCompiler()
			compiler.Draft = jsonschema.Draft2020
			url := string(name) + ".json"
			if err := compiler.AddResource(url, strings.NewReader(src)); err != nil {
				schemaErr = fmt.Errorf("add %s schema: %w", name, err)
				return
			}
			compiled, err := compiler.Compile(url)
			if err != nil {
				schemaErr = fmt.Errorf("compile %s schema: %w", name, err)
				return
			}
			out[name] = compiled
		}
		schemas = out
	})
	return schemas, schemaErr
}

// validateEnvelope checks the raw document shape before it is decoded into
// domain types.
func validateEnvelope(kind envelope, path string, raw []byte) error {
	all, err := compiledSchemas()
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	if err := all[kind].Validate(doc); err != nil {
		return fmt.Errorf("%w: %s: %s", ErrEnvelopeInvalid, path, issues(err))
	}
	return nil
}

func issues(err error) string {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return err.Error()
	}
	parts := []string{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if len(node.Causes) == 0 {
			loc := strings.TrimSpace(node.InstanceLocation)
			if loc == "" {
				loc = "/"
			}
			parts = append(parts, loc+": "+strings.TrimSpace(node.Message))
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(verr)
	return strings.Join(parts, "; ")
}
