package testkit

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// RunFile runs every scenario in path as a subtest.
func RunFile(t *testing.T, handler http.Handler, path string, vars Vars) {
	t.Helper()
	scenarios, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	run(t, handler, scenarios, vars)
}

// RunDir runs every scenario file in dir as subtests.
func RunDir(t *testing.T, handler http.Handler, dir string, vars Vars) {
	t.Helper()
	scenarios, err := LoadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	run(t, handler, scenarios, vars)
}

func run(t *testing.T, handler http.Handler, scenarios []*Scenario, vars Vars) {
	t.Helper()
	for _, s := range scenarios {
		s := s
		t.Run(s.Name, func(t *testing.T) {
			runScenario(t, handler, s, vars)
		})
	}
}

func runScenario(t *testing.T, handler http.Handler, s *Scenario, vars Vars) {
	t.Helper()

	raw, err := s.requestBody()
	if err != nil {
		t.Fatalf("[%s] read request body: %v", s.Name, err)
	}
	var body io.Reader
	if len(raw) > 0 {
		body = bytes.NewReader([]byte(vars.expand(string(raw))))
	}

	req := httptest.NewRequest(strings.ToUpper(s.RequestMethod), vars.expand(s.RequestURL), body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range s.Headers {
		req.Header.Set(k, vars.expand(v))
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	AssertStatusCode(t, s, rec.Code, rec.Body.Bytes())

	expected, err := s.expectedBody()
	if err != nil {
		t.Errorf("[%s] read expected body: %v", s.Name, err)
		return
	}
	AssertJSONBody(t, s.Name, []byte(vars.expand(string(expected))), rec.Body.Bytes())
}

func (v Vars) expand(s string) string {
	if len(v) == 0 || !strings.Contains(s, "{{") {
		return s
	}
	pairs := make([]string, 0, len(v)*2)
	for k, val := range v {
		pairs = append(pairs, "{{"+k+"}}", val)
	}
	return strings.NewReplacer(pairs...).Replace(s)
}
