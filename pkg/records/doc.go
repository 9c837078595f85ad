// Package records reads the inputs that queries are matched against.
//
// A Source yields records one at a time from JSON Lines, JSON, YAML or a
// SQLite table. Open picks the source from a path's extension and
// transparently decompresses .gz and .zst files:
//
//	src, err := records.Open("books.jsonl.zst", records.Options{})
//	if err != nil {
//		return err
//	}
//	defer src.Close()
//
//	err = src.Each(ctx, func(r records.Record) error {
//		if q.Match(r) {
//			fmt.Println(records.Native(r))
//		}
//		return nil
//	})
//
// JSON records are *fastjson.Value and are reused between callbacks; use
// Native to keep one.
package records
