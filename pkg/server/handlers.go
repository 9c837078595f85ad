package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/valyala/fastjson"

	"crystal-hq/crystal/pkg/query/ast"
	qerrors "crystal-hq/crystal/pkg/query/errors"
	"crystal-hq/crystal/pkg/records"
	"crystal-hq/crystal/pkg/server/middleware"
	"crystal-hq/crystal/pkg/telemetry/logging"
)

// errBadRequest marks request errors reported with status 400.
var errBadRequest = errors.New("bad request")

// readBody parses the JSON object body of r with a pooled parser. The
// returned value is valid until release is called.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) (*fastjson.Value, func(), bool) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		if middleware.IsBodyTooLarge(err) {
			middleware.WriteError(w, r, http.StatusRequestEntityTooLarge, "body_too_large", "request body exceeds the size limit")
		} else {
			middleware.WriteError(w, r, http.StatusBadRequest, "bad_request", "failed to read request body")
		}
		return nil, nil, false
	}

	p := s.parsers.Get()
	release := func() { s.parsers.Put(p) }

	v, err := p.ParseBytes(data)
	if err != nil {
		release()
		middleware.WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return nil, nil, false
	}
	if v.Type() != fastjson.TypeObject {
		release()
		middleware.WriteError(w, r, http.StatusBadRequest, "invalid_json", "request body must be a JSON object")
		return nil, nil, false
	}
	return v, release, true
}

func queryParam(v *fastjson.Value) (string, error) {
	q := v.Get("query")
	if q == nil {
		return "", fmt.Errorf("%w: query is required", errBadRequest)
	}
	b, err := q.StringBytes()
	if err != nil {
		return "", fmt.Errorf("%w: query must be a string", errBadRequest)
	}
	return string(b), nil
}

// handleParse serves POST /v1/parse. The body is {"query": "...",
// "input": {...}, "cst": false}; input is optional and, when present, is
// matched against the query.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	body, release, ok := s.readBody(w, r)
	if !ok {
		return
	}
	defer release()

	query, err := queryParam(body)
	if err != nil {
		middleware.WriteError(w, r, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	ctx := logging.WithQuery(r.Context(), query)
	res := s.engine.Parse(ctx, query)

	resp := ParseResponse{
		Status: res.Status,
		Query:  query,
		Errors: qerrors.Reports(res.Errors),
	}
	if res.Status {
		resp.AST = ast.ToTree(res.AST)
		resp.Description = res.Operations.Describe()
		if input := body.Get("input"); input != nil {
			match := res.Operations.Match(input)
			resp.Match = &match
		}
	}

	status := http.StatusOK
	if !res.Status {
		status = http.StatusUnprocessableEntity
	}
	s.writeJSON(w, r, status, resp)
}

// handleFilter serves POST /v1/filter. The body is {"query": "...",
// "records": [...], "limit": 0}. Without records the configured record
// source is filtered. limit caps the number of matches returned, not the
// number counted.
func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	body, release, ok := s.readBody(w, r)
	if !ok {
		return
	}
	defer release()

	query, err := queryParam(body)
	if err != nil {
		middleware.WriteError(w, r, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	limit, err := limitParam(body)
	if err != nil {
		middleware.WriteError(w, r, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	ctx := logging.WithQuery(r.Context(), query)
	res := s.engine.Parse(ctx, query)
	resp := FilterResponse{
		Status:  res.Status,
		Query:   query,
		Errors:  qerrors.Reports(res.Errors),
		Matches: []json.RawMessage{},
	}
	if !res.Status {
		s.writeJSON(w, r, http.StatusUnprocessableEntity, resp)
		return
	}

	src, err := s.filterSource(body)
	if err != nil {
		if errors.Is(err, errBadRequest) {
			middleware.WriteError(w, r, http.StatusBadRequest, "bad_request", err.Error())
		} else {
			s.logger.ErrorContext(ctx, "failed to open record source", "error", err)
			middleware.WriteError(w, r, http.StatusServiceUnavailable, "source_unavailable", "record source unavailable")
		}
		return
	}
	defer src.Close()

	stats, err := s.engine.Run(ctx, res, src, func(rec records.Record) error {
		if limit > 0 && len(resp.Matches) >= limit {
			resp.Truncated = true
			return nil
		}
		raw, err := encodeRecord(rec)
		if err != nil {
			return err
		}
		resp.Matches = append(resp.Matches, raw)
		return nil
	})
	resp.Scanned = stats.Scanned
	resp.Matched = stats.Matched
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		s.logger.ErrorContext(ctx, "filter failed", "error", err)
		middleware.WriteError(w, r, http.StatusInternalServerError, "filter_failed", err.Error())
		return
	}

	s.writeJSON(w, r, http.StatusOK, resp)
}

// limitParam reads the optional "limit" member. Absent or null means no cap.
func limitParam(body *fastjson.Value) (int, error) {
	v := body.Get("limit")
	if v == nil || v.Type() == fastjson.TypeNull {
		return 0, nil
	}
	limit, err := v.Int()
	if err != nil {
		return 0, fmt.Errorf("limit must be an integer")
	}
	if limit < 0 {
		return 0, fmt.Errorf("limit must not be negative")
	}
	return limit, nil
}

func (s *Server) filterSource(body *fastjson.Value) (records.Source, error) {
	if v := body.Get("records"); v != nil {
		items, err := v.Array()
		if err != nil {
			return nil, fmt.Errorf("%w: records must be an array", errBadRequest)
		}
		return &inlineSource{items: items}, nil
	}
	if s.openRecords == nil {
		return nil, fmt.Errorf("%w: records are required when no record source is configured", errBadRequest)
	}
	return s.openRecords()
}

func encodeRecord(rec records.Record) (json.RawMessage, error) {
	if v, ok := rec.(*fastjson.Value); ok {
		return json.RawMessage(v.MarshalTo(nil)), nil
	}
	return json.Marshal(records.Native(rec))
}

// inlineSource yields the records array of a request body.
type inlineSource struct {
	items []*fastjson.Value
}

func (s *inlineSource) Kind() string { return "inline" }

func (s *inlineSource) Each(ctx context.Context, fn func(records.Record) error) error {
	for _, item := range s.items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(item); err != nil {
			if errors.Is(err, records.ErrStop) {
				return nil
			}
			return err
		}
	}
	return nil
}

func (s *inlineSource) Close() error { return nil }

// handleFields serves GET /v1/fields.
func (s *Server) handleFields(w http.ResponseWriter, r *http.Request) {
	fields := s.engine.Fields()
	s.writeJSON(w, r, http.StatusOK, FieldsResponse{
		Generic: len(fields) == 0,
		Fields:  fields,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(body); err != nil {
		s.logger.WarnContext(r.Context(), "failed to write response", "error", err)
	}
}
