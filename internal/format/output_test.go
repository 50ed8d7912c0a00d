package format

import (
	"strings"
	"testing"

	"coursetree-cli/internal/model"
)

func TestWriteJSONCompactAndPretty(t *testing.T) {
	t.Parallel()
	var compact, pretty strings.Builder
	v := map[string]string{"id": "les-1"}
	if err := Write(&compact, v, "json", false); err != nil {
		t.Fatal(err)
	}
	if err := Write(&pretty, v, "", true); err != nil {
		t.Fatal(err)
	}
	if got := compact.String(); got != "{\"id\":\"les-1\"}\n" {
		t.Fatalf("compact: %q", got)
	}
	if !strings.Contains(pretty.String(), "  \"id\": \"les-1\"") {
		t.Fatalf("pretty: %q", pretty.String())
	}
}

func TestWriteYAML(t *testing.T) {
	t.Parallel()
	var out strings.Builder
	if err := Write(&out, map[string]string{"id": "les-1"}, "yaml", false); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "id: les-1\n" {
		t.Fatalf("yaml: %q", got)
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	t.Parallel()
	if err := Write(&strings.Builder{}, nil, "xml", false); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestWriteTree(t *testing.T) {
	t.Parallel()
	data := []model.TreeItem{
		{ID: "m1", Label: "Basics", Type: "module", Children: []model.TreeItem{
			{ID: "l1", Label: "Intro", Type: "lesson", IsDraft: true},
		}},
	}
	var out strings.Builder
	if err := WriteTree(&out, data); err != nil {
		t.Fatal(err)
	}
	want := "Basics  [module]  <m1>\n  Intro  [lesson]  (draft)  <l1>\n"
	if out.String() != want {
		t.Fatalf("got:\n%q\nwant:\n%q", out.String(), want)
	}
}
