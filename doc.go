// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package doctree implements a format-independent document codec.
//
// A document is a tree of Value nodes. Backends in the subpackages (jsondoc,
// cbordoc, yamldoc) implement the Format interface, which converts between
// encoded bytes and values. The Reader and Writer types give typed access to
// a document by path, without regard to which backend produced or will
// consume it.
//
// # Reading
//
// Construct a Reader from encoded bytes with NewReader, or from a value with
// ReaderOf, then navigate by key or index and read typed values:
//
//	r, err := doctree.NewReader(jsondoc.Default, data)
//	if err != nil {
//	   log.Fatalf("Parse failed: %v", err)
//	}
//	name, err := r.Field("user").Field("name").ReadString()
//
// Navigating to a path that does not exist is not an error: it yields a
// Reader for a "ghost" node, whose reads report an absent value. Each typed
// read has two forms:
//
//	Form              | Missing or null            | Type mismatch
//	----------------- | -------------------------- | -------------
//	ReadX             | ErrRequiredValueNotPresent | *TypeError
//	ReadXIfPresent    | absent value.Maybe         | *TypeError
//
// Integer reads that do not fit the requested width report a *RangeError.
// Two failures are defined to degrade silently: a byte string that is not
// valid base64 reads as absent, and an enumeration value that is not a
// declared variant reads with Known set to false.
//
// # Writing
//
// Construct a Writer with NewWriter, address fields with Field, and write
// typed values. A node that is never written is absent, and contributes no
// key to its parent. Serialize the result with Encode:
//
//	w := doctree.NewWriter()
//	w.Field("user").Field("name").WriteString("alice")
//	data, err := w.Encode(jsondoc.Default)
//
// # Collections
//
// ReadList, ReadMap, WriteList, and WriteMap take a Layout describing whether
// the collection is sparse. A sparse collection keeps explicit null entries;
// a dense one omits them. When reading a map, an entry whose value is an
// explicit null is skipped if the element reader reports that a required
// value is missing.
package doctree
