package records

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

const booksJSONL = `{"title": "Go", "pages": 300}

{"title": "Rust", "pages": 550, "tags": ["systems"]}
{"title": "Lisp", "pages": 120}
`

func titles(t *testing.T, src Source) []string {
	t.Helper()
	var out []string
	err := src.Each(context.Background(), func(r Record) error {
		rec, ok := Native(r).(map[string]any)
		if !ok {
			t.Fatalf("record = %T, want map", Native(r))
		}
		out = append(out, rec["title"].(string))
		return nil
	})
	if err != nil {
		t.Fatalf("Each() error = %v", err)
	}
	return out
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestJSONLSource(t *testing.T) {
	src := NewJSONLSource(strings.NewReader(booksJSONL), "books.jsonl")
	got := titles(t, src)
	if strings.Join(got, ",") != "Go,Rust,Lisp" {
		t.Errorf("titles = %v", got)
	}
	if src.Kind() != KindJSONL {
		t.Errorf("Kind() = %q", src.Kind())
	}
}

func TestJSONLSource_SyntaxError(t *testing.T) {
	src := NewJSONLSource(strings.NewReader("{\"a\": 1}\n{oops\n"), "bad.jsonl")
	err := src.Each(context.Background(), func(Record) error { return nil })

	var srcErr *SourceError
	if !errors.As(err, &srcErr) {
		t.Fatalf("Each() error = %v, want *SourceError", err)
	}
	if srcErr.Line != 2 {
		t.Errorf("Line = %d, want 2", srcErr.Line)
	}
	if !strings.Contains(err.Error(), "bad.jsonl:2") {
		t.Errorf("Error() = %q, want location", err.Error())
	}
}

func TestJSONSource(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"array", `[{"title": "a"}, {"title": "b"}]`, "a,b"},
		{"object", `{"title": "solo"}`, "solo"},
		{"empty", "  ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := titles(t, NewJSONSource(strings.NewReader(tt.input), ""))
			if strings.Join(got, ",") != tt.want {
				t.Errorf("titles = %v, want %s", got, tt.want)
			}
		})
	}
}

func TestJSONSource_RejectsScalars(t *testing.T) {
	err := NewJSONSource(strings.NewReader(`[{"a": 1}, 2]`), "").Each(context.Background(), func(Record) error { return nil })
	if err == nil || !strings.Contains(err.Error(), "record 2") {
		t.Errorf("Each() error = %v, want record 2 rejected", err)
	}
}

func TestYAMLSource(t *testing.T) {
	input := `
- title: Go
  pages: 300
- title: Rust
---
title: Lisp
`
	got := titles(t, NewYAMLSource(strings.NewReader(input), "books.yaml"))
	if strings.Join(got, ",") != "Go,Rust,Lisp" {
		t.Errorf("titles = %v", got)
	}
}

func TestYAMLSource_RejectsScalars(t *testing.T) {
	err := NewYAMLSource(strings.NewReader("just text\n"), "x.yaml").Each(context.Background(), func(Record) error { return nil })
	var srcErr *SourceError
	if !errors.As(err, &srcErr) || srcErr.Kind != KindYAML {
		t.Errorf("Each() error = %v, want yaml *SourceError", err)
	}
}

func TestEach_Stop(t *testing.T) {
	src := NewJSONLSource(strings.NewReader(booksJSONL), "")
	n := 0
	err := src.Each(context.Background(), func(Record) error {
		n++
		return ErrStop
	})
	if err != nil {
		t.Errorf("Each() error = %v, want nil", err)
	}
	if n != 1 {
		t.Errorf("callbacks = %d, want 1", n)
	}
}

func TestEach_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewJSONLSource(strings.NewReader(booksJSONL), "").Each(ctx, func(Record) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Each() error = %v, want context.Canceled", err)
	}
}

func TestLimit(t *testing.T) {
	src := Limit(NewJSONLSource(strings.NewReader(booksJSONL), ""), 2)
	if got := titles(t, src); len(got) != 2 {
		t.Errorf("titles = %v, want 2", got)
	}
	if Limit(src, 0) != src {
		t.Error("Limit(0) should return the source")
	}
}

func TestCollect(t *testing.T) {
	recs, err := Collect(context.Background(), NewJSONLSource(strings.NewReader(booksJSONL), ""), Native)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 3 {
		t.Fatalf("len = %d, want 3", len(recs))
	}
	// Copied records survive later parses.
	if recs[0].(map[string]any)["title"] != "Go" {
		t.Errorf("first record = %v", recs[0])
	}
}

func TestNative(t *testing.T) {
	src := NewJSONLSource(strings.NewReader(`{"a": [1, "x", true, null], "b": {"c": false}}`), "")
	recs, err := Collect(context.Background(), src, Native)
	if err != nil {
		t.Fatal(err)
	}
	rec := recs[0].(map[string]any)
	arr := rec["a"].([]any)
	if arr[0] != 1.0 || arr[1] != "x" || arr[2] != true || arr[3] != nil {
		t.Errorf("a = %v", arr)
	}
	if rec["b"].(map[string]any)["c"] != false {
		t.Errorf("b = %v", rec["b"])
	}

	plain := map[string]any{"k": 1}
	if Native(plain).(map[string]any)["k"] != 1 {
		t.Error("Native() changed a plain record")
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path        string
		format      string
		compression string
	}{
		{"a.jsonl", KindJSONL, ""},
		{"a.NDJSON", KindJSONL, ""},
		{"a.json.gz", KindJSON, "gz"},
		{"dir/a.yml.zst", KindYAML, "zst"},
		{"a.yaml", KindYAML, ""},
		{"a.db", KindSQLite, ""},
		{"a.sqlite3", KindSQLite, ""},
		{"a.txt", "", ""},
		{"a.gz", "", "gz"},
	}

	for _, tt := range tests {
		format, compression := DetectFormat(tt.path)
		if format != tt.format || compression != tt.compression {
			t.Errorf("DetectFormat(%q) = %q, %q, want %q, %q", tt.path, format, compression, tt.format, tt.compression)
		}
	}
}

func TestOpen_Files(t *testing.T) {
	dir := t.TempDir()

	gzPath := filepath.Join(dir, "books.jsonl.gz")
	f, err := os.Create(gzPath)
	if err != nil {
		t.Fatal(err)
	}
	gw := gzip.NewWriter(f)
	gw.Write([]byte(booksJSONL))
	gw.Close()
	f.Close()

	zstPath := filepath.Join(dir, "books.yaml.zst")
	f, err = os.Create(zstPath)
	if err != nil {
		t.Fatal(err)
	}
	zw, err := zstd.NewWriter(f)
	if err != nil {
		t.Fatal(err)
	}
	zw.Write([]byte("- title: Go\n- title: Rust\n"))
	zw.Close()
	f.Close()

	tests := []struct {
		name string
		path string
		opts Options
		want string
	}{
		{"jsonl", writeFile(t, "books.jsonl", booksJSONL), Options{}, "Go,Rust,Lisp"},
		{"gzip", gzPath, Options{}, "Go,Rust,Lisp"},
		{"zstd", zstPath, Options{}, "Go,Rust"},
		{"format override", writeFile(t, "books.txt", "title: Go\n"), Options{Format: "yaml"}, "Go"},
		{"limit", writeFile(t, "more.jsonl", booksJSONL), Options{Limit: 1}, "Go"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := Open(tt.path, tt.opts)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer src.Close()
			if got := strings.Join(titles(t, src), ","); got != tt.want {
				t.Errorf("titles = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestOpen_Errors(t *testing.T) {
	if _, err := Open(writeFile(t, "notes.txt", "x"), Options{}); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Open(.txt) error = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := Open(filepath.Join(t.TempDir(), "missing.jsonl"), Options{}); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Open(missing) error = %v, want not exist", err)
	}
	if _, err := Open("data.db.gz", Options{Table: "t"}); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Open(.db.gz) error = %v, want ErrUnsupportedFormat", err)
	}
}

func createBooksDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "books.db")
	db, err := sql.Open(DriverModernc, path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE books (title TEXT, pages INTEGER, price REAL)`,
		`INSERT INTO books VALUES ('Go', 300, 29.5), ('Rust', 550, NULL), ('Lisp', 120, 10)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("%s: %v", stmt, err)
		}
	}
	return path
}

func TestSQLSource(t *testing.T) {
	path := createBooksDB(t)

	src, err := Open(path, Options{Table: "books"})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer src.Close()

	if src.Kind() != KindSQLite {
		t.Errorf("Kind() = %q", src.Kind())
	}

	recs, err := Collect(context.Background(), src, nil)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("len = %d, want 3", len(recs))
	}
	first := recs[0].(map[string]any)
	if first["title"] != "Go" || first["pages"] != int64(300) || first["price"] != 29.5 {
		t.Errorf("first row = %v", first)
	}
	if recs[1].(map[string]any)["price"] != nil {
		t.Errorf("NULL price = %v, want nil", recs[1].(map[string]any)["price"])
	}
}

func TestSQLSource_Limit(t *testing.T) {
	src, err := OpenSQLite(createBooksDB(t), SQLOptions{Table: "books", Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	recs, err := Collect(context.Background(), src, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Errorf("len = %d, want 2", len(recs))
	}
}

func TestSQLSource_Ping(t *testing.T) {
	path := createBooksDB(t)

	src, err := OpenSQLite(path, SQLOptions{Table: "books"})
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()
	if err := src.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}

	missing, err := OpenSQLite(path, SQLOptions{Table: "authors"})
	if err != nil {
		t.Fatal(err)
	}
	defer missing.Close()
	if err := missing.Ping(context.Background()); err == nil {
		t.Error("Ping() on missing table should fail")
	}
}

func TestOpenSQLite_InvalidOptions(t *testing.T) {
	for _, table := range []string{"", "books; DROP TABLE books", `a"b`, "1abc"} {
		if _, err := OpenSQLite("x.db", SQLOptions{Table: table}); !errors.Is(err, ErrInvalidTable) {
			t.Errorf("OpenSQLite(table %q) error = %v, want ErrInvalidTable", table, err)
		}
	}
	if _, err := OpenSQLite("x.db", SQLOptions{Table: "t", Driver: "postgres"}); err == nil {
		t.Error("unknown driver should fail")
	}
}
