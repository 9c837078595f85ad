package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for crystal spans.
const (
	AttrQueryText     = attribute.Key("crystal.query.text")
	AttrQueryStatus   = attribute.Key("crystal.query.status")
	AttrQueryTerms    = attribute.Key("crystal.query.terms")
	AttrQueryErrors   = attribute.Key("crystal.query.errors")
	AttrSourceKind    = attribute.Key("crystal.source.kind")
	AttrRecordsSeen   = attribute.Key("crystal.records.scanned")
	AttrRecordsPassed = attribute.Key("crystal.records.matched")
)

// maxQueryAttr bounds the query text stored on a span.
const maxQueryAttr = 512

// SetQueryAttributes annotates a parse span.
func SetQueryAttributes(span trace.Span, query, status string, terms, errors int) {
	if len(query) > maxQueryAttr {
		query = query[:maxQueryAttr]
	}
	span.SetAttributes(
		AttrQueryText.String(query),
		AttrQueryStatus.String(status),
		AttrQueryTerms.Int(terms),
		AttrQueryErrors.Int(errors),
	)
}

// SetFilterAttributes annotates a filter span.
func SetFilterAttributes(span trace.Span, source string, scanned, matched int) {
	span.SetAttributes(
		AttrSourceKind.String(source),
		AttrRecordsSeen.Int(scanned),
		AttrRecordsPassed.Int(matched),
	)
}
