// Package testkit drives HTTP handlers from tests, either through JSON
// scenario files or through a small JSON client for multi-step flows.
//
// A scenario file holds an array of cases:
//
//	[{
//	  "name": "login with unknown email",
//	  "requestMethod": "POST",
//	  "requestUrl": "/users/login",
//	  "requestBody": {"email": "nobody@shop.test", "password": "whatever"},
//	  "headers": {"Authorization": "Bearer {{userToken}}"},
//	  "expectedCode": 404,
//	  "expectedBody": {"error": "No email Found"}
//	}]
//
// "{{name}}" placeholders in the URL, headers and body are filled from the
// Vars given to the runner. expectedBody is matched as a subset, so keys
// it does not mention (ids, timestamps) are ignored.
//
// Example _test.go:
//
//	func TestAPI(t *testing.T) {
//	    handler := kernel.NewHTTPKernel(cfg).Handler()
//	    testkit.RunDir(t, handler, "testdata", testkit.Vars{"userToken": tok})
//	}
package testkit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Scenario describes one request and what the response must look like.
type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	RequestMethod   string            `json:"requestMethod"`
	RequestURL      string            `json:"requestUrl"`
	RequestBody     json.RawMessage   `json:"requestBody"`
	RequestFileName string            `json:"requestFileName"` // relative to the scenario file
	Headers         map[string]string `json:"headers"`

	ExpectedCode     int             `json:"expectedCode"`
	ExpectedBody     json.RawMessage `json:"expectedBody"`
	ResponseFileName string          `json:"responseFileName"` // relative to the scenario file

	dir string
}

// Vars fills "{{name}}" placeholders.
type Vars map[string]string

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.RequestURL == "" {
		return fmt.Errorf("%s: requestUrl is required", s.Name)
	}
	if s.ExpectedCode == 0 {
		return fmt.Errorf("%s: expectedCode is required", s.Name)
	}
	if s.RequestMethod == "" {
		s.RequestMethod = "GET"
	}
	if len(s.RequestBody) > 0 && s.RequestFileName != "" {
		return fmt.Errorf("%s: set requestBody or requestFileName, not both", s.Name)
	}
	return nil
}

// requestBody returns the raw request body, reading RequestFileName if set.
func (s *Scenario) requestBody() ([]byte, error) {
	if s.RequestFileName != "" {
		return os.ReadFile(s.resolve(s.RequestFileName))
	}
	return s.RequestBody, nil
}

// expectedBody returns the expected response subset, or nil for none.
func (s *Scenario) expectedBody() ([]byte, error) {
	if s.ResponseFileName != "" {
		return os.ReadFile(s.resolve(s.ResponseFileName))
	}
	return s.ExpectedBody, nil
}

func (s *Scenario) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}

// LoadFile reads and validates the scenario array in path.
func LoadFile(path string) ([]*Scenario, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: resolve path %q: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", abs, err)
	}

	var scenarios []*Scenario
	if err := json.Unmarshal(data, &scenarios); err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", abs, err)
	}
	for _, s := range scenarios {
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("testkit: invalid scenario in %q: %w", abs, err)
		}
		s.dir = filepath.Dir(abs)
	}
	return scenarios, nil
}

// LoadDir loads every *.json file directly under dir, in name order.
// Request and response fixture files referenced by name must not use the
// .json extension there, or they will be read as scenarios.
func LoadDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("testkit: no scenario files found in %q", dir)
	}
	sort.Strings(paths)

	var all []*Scenario
	for _, p := range paths {
		ss, err := LoadFile(p)
		if err != nil {
			return nil, err
		}
		all = append(all, ss...)
	}
	return all, nil
}
