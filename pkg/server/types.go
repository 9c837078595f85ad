package server

import (
	"encoding/json"

	"crystal-hq/crystal/pkg/engine"
	"crystal-hq/crystal/pkg/query/ast"
	qerrors "crystal-hq/crystal/pkg/query/errors"
)

// ParseResponse is the body of a /v1/parse response.
type ParseResponse struct {
	Status      bool             `json:"status"`
	Query       string           `json:"query"`
	Errors      []qerrors.Report `json:"errors"`
	AST         *ast.Tree        `json:"ast"`
	Description string           `json:"description,omitempty"`
	Match       *bool            `json:"match,omitempty"`
}

// FilterResponse is the body of a /v1/filter response.
type FilterResponse struct {
	Status    bool              `json:"status"`
	Query     string            `json:"query"`
	Errors    []qerrors.Report  `json:"errors"`
	Matches   []json.RawMessage `json:"matches"`
	Scanned   int               `json:"scanned"`
	Matched   int               `json:"matched"`
	Truncated bool              `json:"truncated,omitempty"`
}

// FieldsResponse is the body of a /v1/fields response.
type FieldsResponse struct {
	Generic bool               `json:"generic"`
	Fields  []engine.FieldInfo `json:"fields"`
}
