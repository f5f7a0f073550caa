package testkit

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// Client fires JSON requests at a handler for tests that chain several
// calls, like register then login then checkout.
type Client struct {
	t       *testing.T
	handler http.Handler
	token   string
}

func NewClient(t *testing.T, handler http.Handler) *Client {
	return &Client{t: t, handler: handler}
}

// As returns a copy of c that sends token as a bearer credential.
func (c *Client) As(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// Response is a recorded reply.
type Response struct {
	t    *testing.T
	Code int
	Body []byte
}

// Decode unmarshals the body into v, failing the test on error.
func (r *Response) Decode(v any) {
	r.t.Helper()
	require.NoError(r.t, json.Unmarshal(r.Body, v), "body: %s", string(r.Body))
}

// Map decodes the body as a JSON object.
func (r *Response) Map() map[string]any {
	r.t.Helper()
	var m map[string]any
	r.Decode(&m)
	return m
}

// Do sends body (nil for none) encoded as JSON.
func (c *Client) Do(method, url string, body any) *Response {
	c.t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(c.t, err)
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, url, rd)
	req.Header.Set("Content-Type", "application/json")
	return c.send(req)
}

// File is one multipart file part.
type File struct {
	Field    string
	Filename string
	Content  []byte
}

// Multipart sends fields and an optional file as multipart/form-data.
func (c *Client) Multipart(method, url string, fields map[string]string, file *File) *Response {
	c.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(c.t, mw.WriteField(k, v))
	}
	if file != nil {
		fw, err := mw.CreateFormFile(file.Field, file.Filename)
		require.NoError(c.t, err)
		_, err = fw.Write(file.Content)
		require.NoError(c.t, err)
	}
	require.NoError(c.t, mw.Close())

	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.send(req)
}

func (c *Client) send(req *http.Request) *Response {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	return &Response{t: c.t, Code: rec.Code, Body: rec.Body.Bytes()}
}
