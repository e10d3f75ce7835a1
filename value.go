package stash

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/elnormous/contenttype"
	"golang.org/x/text/encoding/htmlindex"
)

// Limits caps the accepted body size per payload kind, in bytes.
// A zero limit means unlimited.
type Limits struct {
	String int64
	JSON   int64
	Blob   int64
}

func (l Limits) forTag(tag Tag) int64 {
	switch tag {
	case TagJSON:
		return l.JSON
	case TagBlob:
		return l.Blob
	default:
		return l.String
	}
}

// DecodeValue drains a request body into a Value according to the
// negotiated input tag:
//
//   - TagString / TagHTML: the body is transcoded from the declared
//     request charset to UTF-8 text
//   - TagJSON: the body must parse as JSON; the canonical
//     re-serialization is what gets stored
//   - TagBlob: the first file part of the multipart stream is drained
//     into a binary buffer
//
// contentTypeHeader is the raw Content-Type value; text decoding needs
// its charset parameter and multipart decoding its boundary.
func DecodeValue(tag Tag, body io.Reader, contentTypeHeader string, limits Limits) (Value, error) {
	raw, err := readCapped(body, limits.forTag(tag))
	if err != nil {
		return Value{}, fmt.Errorf("decode %s value: %w", tag, err)
	}

	switch tag {
	case TagString, TagHTML:
		text, err := decodeText(raw, contentTypeHeader)
		if err != nil {
			return Value{}, fmt.Errorf("decode %s value: %w", tag, err)
		}
		return StringValue(text), nil

	case TagJSON:
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return Value{}, fmt.Errorf("decode json value: %w: %w", ErrMalformedPayload, err)
		}
		canonical, err := json.Marshal(doc)
		if err != nil {
			return Value{}, fmt.Errorf("decode json value: %w", err)
		}
		return JSONValue(canonical), nil

	case TagBlob:
		blob, err := firstFilePart(raw, contentTypeHeader)
		if err != nil {
			return Value{}, fmt.Errorf("decode blob value: %w", err)
		}
		return BlobValue(blob), nil

	default:
		return Value{}, fmt.Errorf("decode value: unknown tag %q: %w", tag, ErrNegotiation)
	}
}

// decodeText transcodes body text from the declared request charset
// into UTF-8. An unknown charset or undecodable bytes reject the body
// rather than storing mojibake.
func decodeText(raw []byte, contentTypeHeader string) (string, error) {
	charset := Charset(contentTypeHeader)
	switch charset {
	case "utf-8", "us-ascii":
		return string(raw), nil
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		return "", fmt.Errorf("unknown charset %q: %w", charset, ErrMalformedPayload)
	}

	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("transcode from %s: %w: %w", charset, ErrMalformedPayload, err)
	}
	return string(decoded), nil
}

// readCapped reads the whole body, failing with ErrPayloadTooLarge once
// more than limit bytes arrive.
func readCapped(body io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(body)
	}

	raw, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > limit {
		return nil, fmt.Errorf("body exceeds %d bytes: %w", limit, ErrPayloadTooLarge)
	}
	return raw, nil
}

// firstFilePart walks a multipart body and returns the content of the
// first part that carries a file.
func firstFilePart(raw []byte, contentTypeHeader string) ([]byte, error) {
	mt := contenttype.NewMediaType(contentTypeHeader)
	boundary, ok := mt.Parameters["boundary"]
	if !ok || boundary == "" {
		return nil, fmt.Errorf("missing multipart boundary: %w", ErrMalformedPayload)
	}

	reader := multipart.NewReader(bytes.NewReader(raw), boundary)
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("no file part found: %w", ErrMalformedPayload)
		}
		if err != nil {
			return nil, fmt.Errorf("read multipart: %w: %w", ErrMalformedPayload, err)
		}

		if part.FileName() == "" {
			_ = part.Close()
			continue
		}

		blob, err := io.ReadAll(part)
		_ = part.Close()
		if err != nil {
			return nil, fmt.Errorf("read file part: %w", err)
		}
		return blob, nil
	}
}

// Encode renders the value for transport in an HTTP response body.
// Strings and JSON pass through; blobs are base64-encoded text.
func (v Value) Encode() []byte {
	switch v.Kind {
	case TagJSON:
		return v.JSON
	case TagBlob:
		encoded := make([]byte, base64.StdEncoding.EncodedLen(len(v.Blob)))
		base64.StdEncoding.Encode(encoded, v.Blob)
		return encoded
	default:
		return []byte(v.Str)
	}
}
