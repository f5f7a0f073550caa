// Package bind decodes and validates an HTTP request body into a struct.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/jcorner/storefront/config"
	"github.com/jcorner/storefront/pkg/validate"
)

// ErrNoFile is returned by File when the form has no part with that name.
var ErrNoFile = errors.New("bind: no such file")

// JSON decodes r.Body as JSON into dest and runs validation.
// The body is capped at MAX_BODY_BYTES.
// Returns (errs, nil) when there are validation failures.
// Returns (nil, err) when the body is malformed JSON or too large.
func JSON(r *http.Request, dest interface{}) (errs map[string]string, err error) {
	r.Body = http.MaxBytesReader(nil, r.Body, config.MaxBodyBytes())

	dec := json.NewDecoder(r.Body)
	if err = dec.Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("request body too large (max %d bytes)", maxErr.Limit)
		}
		if errors.Is(err, io.EOF) {
			return nil, errors.New("request body is empty")
		}
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	return check(dest), nil
}

// Multipart parses a multipart/form-data body capped at MAX_UPLOAD_BYTES and
// copies its text fields into dest by their `form` tag (falling back to the
// json name). Supported field kinds are string, bool, int, float and
// pointers to them; a pointer stays nil when the form omits the field.
func Multipart(r *http.Request, dest interface{}) (errs map[string]string, err error) {
	limit := config.MaxUploadBytes()
	r.Body = http.MaxBytesReader(nil, r.Body, limit)

	if err := r.ParseMultipartForm(limit); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("upload too large (max %d bytes)", maxErr.Limit)
		}
		return nil, fmt.Errorf("invalid multipart form: %w", err)
	}

	if err := fill(r.MultipartForm.Value, dest); err != nil {
		return nil, err
	}
	return check(dest), nil
}

// File returns the uploaded part named field from a parsed multipart form.
// The caller must close the returned file.
func File(r *http.Request, field string) (multipart.File, *multipart.FileHeader, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return nil, nil, ErrNoFile
	}
	fh := r.MultipartForm.File[field][0]
	f, err := fh.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("bind: open %s: %w", field, err)
	}
	return f, fh, nil
}

func check(dest interface{}) map[string]string {
	errs := validate.Struct(dest)
	if validate.HasErrors(errs) {
		return errs
	}
	return nil
}

func fill(values map[string][]string, dest interface{}) error {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return errors.New("bind: destination must be a pointer to a struct")
	}
	rv = rv.Elem()
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		name := formName(field)
		if name == "" {
			continue
		}
		raw, ok := values[name]
		if !ok || len(raw) == 0 {
			continue
		}
		if err := setField(rv.Field(i), strings.TrimSpace(raw[0])); err != nil {
			return fmt.Errorf("invalid value for %s: %w", name, err)
		}
	}
	return nil
}

func formName(f reflect.StructField) string {
	if name := f.Tag.Get("form"); name != "" {
		return name
	}
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

func setField(v reflect.Value, raw string) error {
	if v.Kind() == reflect.Ptr {
		elem := reflect.New(v.Type().Elem())
		if err := setField(elem.Elem(), raw); err != nil {
			return err
		}
		v.Set(elem)
		return nil
	}

	switch v.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		v.SetInt(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		v.SetFloat(f)
	default:
		return fmt.Errorf("unsupported kind %s", v.Kind())
	}
	return nil
}
