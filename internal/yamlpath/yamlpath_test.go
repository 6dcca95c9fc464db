package yamlpath

import (
	"errors"
	"reflect"
	"testing"
)

const sample = `
event:
  name: Sommerfest
  dates:
    - begin: 24.08.2026
      end: 25.08.2026
client:
  title: Herr
  last_name: Vogt
tax: 0.19
canceled: false
products:
  "Apfelsaft':
`

const valid = `
event:
  name: Sommerfest
  dates:
    - begin: 24.08.2026
      end: 25.08.2026
client:
  title: Herr
  last_name: Vogt
invoice:
  number: 42
tax: 0.19
hours: "4.5"
canceled: false
employees:
  - ada
  - grace
`

func mustParse(t *testing.T, text string) map[string]any {
	t.Helper()
	tree, err := Parse(text)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return tree
}

func TestParse_ErrorCarriesLine(t *testing.T) {
	_, err := Parse(sample)
	if err == nil {
		t.Fatal("expected parse error")
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error type = %T", err)
	}
	if perr.Line == 0 {
		t.Errorf("expected a line number, got %v", perr)
	}
}

func TestGet_NestedAndListIndex(t *testing.T) {
	tree := mustParse(t, valid)

	if got, ok := GetString(tree, "event/dates/0/begin"); !ok || got != "24.08.2026" {
		t.Errorf("event/dates/0/begin = %q, %v", got, ok)
	}
	if got, ok := GetString(tree, "client/last_name"); !ok || got != "Vogt" {
		t.Errorf("client/last_name = %q, %v", got, ok)
	}
	if got, ok := GetString(tree, "invoice/number"); !ok || got != "42" {
		t.Errorf("invoice/number = %q, %v", got, ok)
	}
}

func TestGetString_UnquotedISODate(t *testing.T) {
	// The parser decodes unquoted ISO dates into timestamps; they must
	// still read back as date strings.
	tree := mustParse(t, "invoice:\n  date: 2026-08-26\n")
	got, ok := GetString(tree, "invoice/date")
	if !ok || got != "2026-08-26" {
		t.Errorf("invoice/date = %q, %v", got, ok)
	}
}

func TestGet_AbsentIsNotAnError(t *testing.T) {
	tree := mustParse(t, valid)
	for _, path := range []string{"nope", "client/nope", "event/dates/7/begin", "client/last_name/deeper"} {
		if _, ok := Get(tree, path); ok {
			t.Errorf("Get(%q) resolved, want absent", path)
		}
	}
}

func TestGetFloat(t *testing.T) {
	tree := mustParse(t, valid)
	if got, ok := GetFloat(tree, "tax"); !ok || got != 0.19 {
		t.Errorf("tax = %v, %v", got, ok)
	}
	if got, ok := GetFloat(tree, "invoice/number"); !ok || got != 42 {
		t.Errorf("invoice/number as float = %v, %v", got, ok)
	}
	// Numeric strings count.
	if got, ok := GetFloat(tree, "hours"); !ok || got != 4.5 {
		t.Errorf("hours = %v, %v", got, ok)
	}
	if _, ok := GetFloat(tree, "client/title"); ok {
		t.Error("non-numeric string resolved as float")
	}
}

func TestGetBool(t *testing.T) {
	tree := mustParse(t, valid)
	if got, ok := GetBool(tree, "canceled"); !ok || got {
		t.Errorf("canceled = %v, %v", got, ok)
	}
	if _, ok := GetBool(tree, "client/title"); ok {
		t.Error("string resolved as bool")
	}
}

func TestGetStringList(t *testing.T) {
	tree := mustParse(t, valid)
	got, ok := GetStringList(tree, "employees")
	if !ok || !reflect.DeepEqual(got, []string{"ada", "grace"}) {
		t.Errorf("employees = %v, %v", got, ok)
	}
	// Scalar promotes to a one-element list.
	got, ok = GetStringList(tree, "client/title")
	if !ok || !reflect.DeepEqual(got, []string{"Herr"}) {
		t.Errorf("scalar list = %v, %v", got, ok)
	}
}

func TestGetMap(t *testing.T) {
	tree := mustParse(t, valid)
	m, ok := GetMap(tree, "client")
	if !ok || m["title"] != "Herr" {
		t.Errorf("client map = %v, %v", m, ok)
	}
	if _, ok := GetMap(tree, "tax"); ok {
		t.Error("scalar resolved as map")
	}
}
