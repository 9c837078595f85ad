// Crystal parses and validates search queries against a configured field
// schema, and filters records with them.
//
// Usage:
//
//	# Show the syntax tree of a query
//	crystal parse 'title:dune or pages>300'
//
//	# Describe a query in plain words
//	crystal describe 'not tag:scifi'
//
//	# Filter newline-delimited JSON records
//	crystal filter 'pages>300' --input books.jsonl
//
//	# Filter a SQLite table
//	crystal filter 'price<10' --db books.db --table books
//
//	# Check a file of queries, one per line
//	crystal lint --file queries.txt
//
//	# Serve the HTTP API with schema hot reload
//	crystal serve --config crystal.yaml --watch
package main

import "os"

func main() {
	os.Exit(Execute())
}
