package templates

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestGetInitFiles(t *testing.T) {
	files, err := GetInitFiles()
	if err != nil {
		t.Fatalf("GetInitFiles: %v", err)
	}
	want := map[string]bool{"init/pagelayout.yaml.tmpl": false, "init/.env.tmpl": false}
	for _, f := range files {
		if _, ok := want[f]; ok {
			want[f] = true
		}
	}
	for f, found := range want {
		if !found {
			t.Errorf("missing init template %s in %v", f, files)
		}
	}
}

func TestInitConfigRendersValidYAML(t *testing.T) {
	content, err := ReadFile("init/pagelayout.yaml.tmpl")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	out, err := ProcessTemplate(string(content), InitData{ID: "markets", Site: "ft.com", Ads: true})
	if err != nil {
		t.Fatalf("ProcessTemplate: %v", err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("rendered config is not YAML: %v\n%s", err, out)
	}
	if !strings.Contains(out, "id: markets") {
		t.Errorf("rendered config missing id:\n%s", out)
	}
}

func TestIndex(t *testing.T) {
	tmpl, err := Index()
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	var buf strings.Builder
	err = tmpl.Execute(&buf, IndexPage{
		Title:      "<Rates>",
		Breakpoint: "M",
		Body:       "<main>body</main>",
		SocketPath: "/layout",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "&lt;Rates&gt;") {
		t.Error("title should be escaped")
	}
	if !strings.Contains(out, "<main>body</main>") {
		t.Error("body should be rendered verbatim")
	}
}
