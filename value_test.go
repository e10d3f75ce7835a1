package stash_test

import (
	"bytes"
	"encoding/base64"
	"mime/multipart"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stash-sh/stash"
)

func multipartBody(t *testing.T, fields map[string]string, fileName string, fileContent []byte) (string, []byte) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	if fileName != "" {
		part, err := writer.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write(fileContent)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	return writer.FormDataContentType(), buf.Bytes()
}

func TestDecodeValue_String(t *testing.T) {
	value, err := stash.DecodeValue(stash.TagString, strings.NewReader("hello there"), "text/plain", stash.Limits{})
	require.NoError(t, err)

	assert.Equal(t, stash.TagString, value.Kind)
	assert.Equal(t, "hello there", value.Str)
}

func TestDecodeValue_Charset(t *testing.T) {
	t.Run("latin-1 transcoded to utf-8", func(t *testing.T) {
		raw := []byte{'c', 'a', 'f', 0xe9}

		value, err := stash.DecodeValue(stash.TagString, bytes.NewReader(raw), "text/plain; charset=iso-8859-1", stash.Limits{})
		require.NoError(t, err)

		assert.Equal(t, "café", value.Str)
		assert.True(t, utf8.ValidString(value.Str))
	})

	t.Run("utf-8 passes through", func(t *testing.T) {
		value, err := stash.DecodeValue(stash.TagString, strings.NewReader("café"), "text/plain; charset=utf-8", stash.Limits{})
		require.NoError(t, err)
		assert.Equal(t, "café", value.Str)
	})

	t.Run("undeclared charset defaults to utf-8", func(t *testing.T) {
		value, err := stash.DecodeValue(stash.TagString, strings.NewReader("plain"), "text/plain", stash.Limits{})
		require.NoError(t, err)
		assert.Equal(t, "plain", value.Str)
	})

	t.Run("unknown charset rejected", func(t *testing.T) {
		_, err := stash.DecodeValue(stash.TagString, strings.NewReader("text"), "text/plain; charset=klingon", stash.Limits{})
		assert.ErrorIs(t, err, stash.ErrMalformedPayload)
	})

	t.Run("html honors charset too", func(t *testing.T) {
		raw := []byte{'<', 'p', '>', 0xfc, '<', '/', 'p', '>'}

		value, err := stash.DecodeValue(stash.TagHTML, bytes.NewReader(raw), "text/html; charset=iso-8859-1", stash.Limits{})
		require.NoError(t, err)
		assert.Equal(t, "<p>ü</p>", value.Str)
	})
}

func TestDecodeValue_HTML(t *testing.T) {
	value, err := stash.DecodeValue(stash.TagHTML, strings.NewReader("<p>hi</p>"), "text/html", stash.Limits{})
	require.NoError(t, err)

	assert.Equal(t, stash.TagHTML, value.Kind)
	assert.Equal(t, "<p>hi</p>", value.Str)
}

func TestDecodeValue_JSON(t *testing.T) {
	t.Run("canonical re-serialization", func(t *testing.T) {
		value, err := stash.DecodeValue(stash.TagJSON, strings.NewReader(`  {"a": 1}  `), "application/json", stash.Limits{})
		require.NoError(t, err)

		assert.Equal(t, stash.TagJSON, value.Kind)
		assert.JSONEq(t, `{"a":1}`, string(value.JSON))
	})

	t.Run("scalar document", func(t *testing.T) {
		value, err := stash.DecodeValue(stash.TagJSON, strings.NewReader(`"just a string"`), "application/json", stash.Limits{})
		require.NoError(t, err)
		assert.Equal(t, `"just a string"`, string(value.JSON))
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := stash.DecodeValue(stash.TagJSON, strings.NewReader(`{"a":`), "application/json", stash.Limits{})
		assert.ErrorIs(t, err, stash.ErrMalformedPayload)
	})
}

func TestDecodeValue_Blob(t *testing.T) {
	t.Run("first file part", func(t *testing.T) {
		contentType, body := multipartBody(t, nil, "dump.bin", []byte{0x00, 0x01, 0xff})

		value, err := stash.DecodeValue(stash.TagBlob, bytes.NewReader(body), contentType, stash.Limits{})
		require.NoError(t, err)

		assert.Equal(t, stash.TagBlob, value.Kind)
		assert.Equal(t, []byte{0x00, 0x01, 0xff}, value.Blob)
	})

	t.Run("field parts skipped", func(t *testing.T) {
		contentType, body := multipartBody(t, map[string]string{"note": "ignored"}, "data.bin", []byte("payload"))

		value, err := stash.DecodeValue(stash.TagBlob, bytes.NewReader(body), contentType, stash.Limits{})
		require.NoError(t, err)
		assert.Equal(t, []byte("payload"), value.Blob)
	})

	t.Run("no file part", func(t *testing.T) {
		contentType, body := multipartBody(t, map[string]string{"note": "only fields"}, "", nil)

		_, err := stash.DecodeValue(stash.TagBlob, bytes.NewReader(body), contentType, stash.Limits{})
		assert.ErrorIs(t, err, stash.ErrMalformedPayload)
	})

	t.Run("missing boundary", func(t *testing.T) {
		_, err := stash.DecodeValue(stash.TagBlob, strings.NewReader("whatever"), "multipart/form-data", stash.Limits{})
		assert.ErrorIs(t, err, stash.ErrMalformedPayload)
	})
}

func TestDecodeValue_Limits(t *testing.T) {
	t.Run("within limit", func(t *testing.T) {
		limits := stash.Limits{String: 16}
		value, err := stash.DecodeValue(stash.TagString, strings.NewReader("short"), "text/plain", limits)
		require.NoError(t, err)
		assert.Equal(t, "short", value.Str)
	})

	t.Run("exactly at limit", func(t *testing.T) {
		limits := stash.Limits{String: 5}
		value, err := stash.DecodeValue(stash.TagString, strings.NewReader("12345"), "text/plain", limits)
		require.NoError(t, err)
		assert.Equal(t, "12345", value.Str)
	})

	t.Run("string over limit", func(t *testing.T) {
		limits := stash.Limits{String: 4}
		_, err := stash.DecodeValue(stash.TagString, strings.NewReader("12345"), "text/plain", limits)
		assert.ErrorIs(t, err, stash.ErrPayloadTooLarge)
	})

	t.Run("json over limit", func(t *testing.T) {
		limits := stash.Limits{JSON: 4}
		_, err := stash.DecodeValue(stash.TagJSON, strings.NewReader(`{"a":1}`), "application/json", limits)
		assert.ErrorIs(t, err, stash.ErrPayloadTooLarge)
	})

	t.Run("zero limit is unlimited", func(t *testing.T) {
		limits := stash.Limits{}
		big := strings.Repeat("x", 1<<16)
		value, err := stash.DecodeValue(stash.TagString, strings.NewReader(big), "text/plain", limits)
		require.NoError(t, err)
		assert.Len(t, value.Str, 1<<16)
	})
}

func TestValue_Encode(t *testing.T) {
	t.Run("string passes through", func(t *testing.T) {
		assert.Equal(t, []byte("plain"), stash.StringValue("plain").Encode())
	})

	t.Run("json passes through", func(t *testing.T) {
		assert.Equal(t, []byte(`{"a":1}`), stash.JSONValue([]byte(`{"a":1}`)).Encode())
	})

	t.Run("blob is base64", func(t *testing.T) {
		raw := []byte{0xde, 0xad, 0xbe, 0xef}
		encoded := stash.BlobValue(raw).Encode()

		decoded, err := base64.StdEncoding.DecodeString(string(encoded))
		require.NoError(t, err)
		assert.Equal(t, raw, decoded)
	})
}
