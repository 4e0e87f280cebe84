// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jsondoc_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"testing"

	"github.com/creachadair/doctree/jsondoc"
)

// benchInput returns a synthetic JSON document with n records.
func benchInput(n int) []byte {
	var buf bytes.Buffer
	buf.WriteString("[\n")
	for i := range n {
		if i > 0 {
			buf.WriteString(",\n")
		}
		fmt.Fprintf(&buf, `{"id": %d, "name": "record \"%d\"", "score": %d.%d, "ok": %v, "tags": ["a", "b\tc"], "next": null}`,
			i, i, i, i%100, i%2 == 0)
	}
	buf.WriteString("\n]\n")
	return buf.Bytes()
}

func BenchmarkScanner(b *testing.B) {
	input := benchInput(2000)
	b.Logf("Benchmark input: %d bytes", len(input))

	b.Run("Decoder", func(b *testing.B) {
		for b.Loop() {
			dec := json.NewDecoder(bytes.NewReader(input))
			for {
				_, err := dec.Token()
				if err == io.EOF {
					break
				} else if err != nil {
					b.Fatalf("Unexpected error: %v", err)
				}
			}
		}
	})

	b.Run("Scanner", func(b *testing.B) {
		for b.Loop() {
			s := jsondoc.NewScanner(input)
			for s.Next() == nil {
				// The standard library Decoder converts tokens to values.
				// For a fair comparison, do the same for strings.
				if s.Token() == jsondoc.String {
					jsondoc.Unquote(s.Text())
				}
			}
			if s.Err() != io.EOF {
				b.Fatalf("Unexpected error: %v", s.Err())
			}
		}
	})
}

func BenchmarkParse(b *testing.B) {
	input := benchInput(2000)

	b.Run("Unmarshal", func(b *testing.B) {
		for b.Loop() {
			var v any
			if err := json.Unmarshal(input, &v); err != nil {
				b.Fatalf("Unmarshal: %v", err)
			}
		}
	})

	b.Run("Format", func(b *testing.B) {
		for b.Loop() {
			if _, err := jsondoc.Default.Parse(input); err != nil {
				b.Fatalf("Parse: %v", err)
			}
		}
	})
}
