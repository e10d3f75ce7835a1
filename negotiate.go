package stash

import (
	"fmt"
	"strings"

	"github.com/elnormous/contenttype"
)

// negotiationTable is the ordered set of recognized media types. The
// order is the precedence: for each candidate extracted from a header,
// the first row it matches decides the tag.
var negotiationTable = []struct {
	media contenttype.MediaType
	tag   Tag
}{
	{contenttype.NewMediaType("text/plain"), TagString},
	{contenttype.NewMediaType("text/html"), TagHTML},
	{contenttype.NewMediaType("application/json"), TagJSON},
	{contenttype.NewMediaType("multipart/form-data"), TagBlob},
}

// Negotiate maps a raw Accept or Content-Type header value to a storage
// tag. Candidates are evaluated in the order the client listed them and
// the first recognized one wins. An empty or unrecognized header yields
// ErrNegotiation; there is no default.
func Negotiate(headerValue string) (Tag, error) {
	for _, candidate := range strings.Split(headerValue, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}

		mt := contenttype.NewMediaType(candidate)
		for _, row := range negotiationTable {
			if mt.Matches(row.media) {
				return row.tag, nil
			}
		}
	}

	return "", fmt.Errorf("negotiate %q: %w", headerValue, ErrNegotiation)
}

// Charset extracts the declared charset parameter of a Content-Type
// header value, defaulting to utf-8.
func Charset(headerValue string) string {
	mt := contenttype.NewMediaType(headerValue)
	if cs, ok := mt.Parameters["charset"]; ok && cs != "" {
		return strings.ToLower(cs)
	}
	return "utf-8"
}

// ContentType returns the wire media type used when serving a stored
// value back to the client in the negotiated output tag.
func (t Tag) ContentType() string {
	switch t {
	case TagHTML:
		return "text/html; charset=utf-8"
	case TagJSON:
		return "application/json"
	case TagBlob:
		// blobs travel base64-encoded as text
		return "text/plain; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}
