package protocol

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"path"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

const schemaBase = "https://randomcarnegie.app/schemas/"

var ErrSchema = errors.New("schema violation")

var schemaFiles = map[string]string{
	TypeSetup:       "setup_request.schema.json",
	TypeSetupResult: "setup_result.schema.json",
	TypeError:       "error.schema.json",
}

// Validator checks wire messages against the embedded JSON schemas.
type Validator struct {
	schemas map[string]*jsonschema.Schema
}

func NewValidator() (*Validator, error) {
	c := jsonschema.NewCompiler()
	for _, name := range schemaFiles {
		b, err := schemaFS.ReadFile(path.Join("schemas", name))
		if err != nil {
			return nil, err
		}
		if err := c.AddResource(schemaBase+name, bytes.NewReader(b)); err != nil {
			return nil, fmt.Errorf("schema %s: %w", name, err)
		}
	}
	v := &Validator{schemas: map[string]*jsonschema.Schema{}}
	for typ, name := range schemaFiles {
		s, err := c.Compile(schemaBase + name)
		if err != nil {
			return nil, fmt.Errorf("compile %s: %w", name, err)
		}
		v.schemas[typ] = s
	}
	return v, nil
}

// Validate checks raw against the schema registered for msgType.
func (v *Validator) Validate(msgType string, raw []byte) error {
	s, ok := v.schemas[msgType]
	if !ok {
		return fmt.Errorf("%w: unknown message type %q", ErrSchema, msgType)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	return nil
}

// ValidateValue marshals v and validates it as msgType.
func (v *Validator) ValidateValue(msgType string, msg any) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return v.Validate(msgType, b)
}
