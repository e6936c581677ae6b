package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/bft-labs/inspectgw/internal/domain"
)

// maxBodyBytes bounds the search request body.
const maxBodyBytes = 1 << 20

const searchSchemaURL = "inspectgw://search-request.json"

// searchSchemaJSON describes the body of POST /search. Extra properties are
// allowed and ignored.
const searchSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["start", "end"],
  "properties": {
    "start": {"type": "string", "minLength": 1},
    "end":   {"type": "string", "minLength": 1}
  }
}`

// searchSchema is compiled once at package init; a compile error is a
// programming error.
var searchSchema = mustCompileSchema(searchSchemaURL, searchSchemaJSON)

func mustCompileSchema(url, doc string) *jsonschema.Schema {
	parsed, err := jsonschema.UnmarshalJSON(strings.NewReader(doc))
	if err != nil {
		panic(fmt.Sprintf("parse schema %s: %v", url, err))
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, parsed); err != nil {
		panic(fmt.Sprintf("add schema %s: %v", url, err))
	}
	schema, err := c.Compile(url)
	if err != nil {
		panic(fmt.Sprintf("compile schema %s: %v", url, err))
	}
	return schema
}

// decodeSearchRequest reads and validates the search body.
//
// It returns errBodyNotObject when the body is not a JSON object and a
// *domain.ValidationError when the object does not satisfy the schema.
func decodeSearchRequest(body io.Reader) (domain.SearchRequest, error) {
	raw, err := io.ReadAll(io.LimitReader(body, maxBodyBytes))
	if err != nil {
		return domain.SearchRequest{}, fmt.Errorf("read body: %w", err)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return domain.SearchRequest{}, errBodyNotObject
	}
	obj, ok := doc.(map[string]interface{})
	if !ok {
		return domain.SearchRequest{}, errBodyNotObject
	}

	if err := searchSchema.Validate(obj); err != nil {
		return domain.SearchRequest{}, &domain.ValidationError{Field: invalidField(obj)}
	}

	var req domain.SearchRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return domain.SearchRequest{}, fmt.Errorf("decode search request: %w", err)
	}
	return req, nil
}

// invalidField names the first bound that is not a non-empty string.
func invalidField(obj map[string]interface{}) string {
	for _, name := range []string{"start", "end"} {
		if s, ok := obj[name].(string); !ok || s == "" {
			return name
		}
	}
	return "start"
}
