package api

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const maxBodyBytes = 1 << 20

//go:embed schemas/*.json
var schemaFS embed.FS

const (
	schemaRegister = "register"
	schemaLogin    = "login"
	schemaAttempt  = "attempt"
)

type schemas struct {
	byName  map[string]*jsonschema.Schema
	printer *message.Printer
}

func compileSchemas() (*schemas, error) {
	c := jsonschema.NewCompiler()
	names := []string{schemaRegister, schemaLogin, schemaAttempt}
	out := &schemas{
		byName:  make(map[string]*jsonschema.Schema, len(names)),
		printer: message.NewPrinter(language.English),
	}
	for _, name := range names {
		data, err := schemaFS.ReadFile("schemas/" + name + ".json")
		if err != nil {
			return nil, fmt.Errorf("failed to read schema %q: %w", name, err)
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to parse schema %q: %w", name, err)
		}
		url := "schema://typrr/" + name + ".json"
		if err := c.AddResource(url, doc); err != nil {
			return nil, fmt.Errorf("failed to add schema %q: %w", name, err)
		}
		compiled, err := c.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %q: %w", name, err)
		}
		out.byName[name] = compiled
	}
	return out, nil
}

// ValidationError is a rejected request body.
type ValidationError struct {
	Message string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Details, "; ")
}

// decode validates the body of r against the named schema and unmarshals it into dst.
func (s *schemas) decode(r *http.Request, name string, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return &ValidationError{Message: "Invalid request body", Details: []string{err.Error()}}
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return &ValidationError{Message: "Invalid JSON body", Details: []string{err.Error()}}
	}
	if err := s.byName[name].Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if !errors.As(err, &verr) {
			return &ValidationError{Message: "Validation failed", Details: []string{err.Error()}}
		}
		return &ValidationError{Message: "Validation failed", Details: s.details(verr, nil)}
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return &ValidationError{Message: "Invalid request body", Details: []string{err.Error()}}
	}
	return nil
}

// details flattens the leaf causes of verr into "location: message" lines.
func (s *schemas) details(verr *jsonschema.ValidationError, out []string) []string {
	if len(verr.Causes) == 0 {
		loc := "/" + strings.Join(verr.InstanceLocation, "/")
		return append(out, fmt.Sprintf("%s: %s", loc, verr.ErrorKind.LocalizedString(s.printer)))
	}
	for _, cause := range verr.Causes {
		out = s.details(cause, out)
	}
	return out
}

func respondValidation(w http.ResponseWriter, err error) bool {
	var verr *ValidationError
	if !errors.As(err, &verr) {
		return false
	}
	respondJSON(w, verr, http.StatusBadRequest)
	return true
}
