// Package templates provides embedded files for init and serve.
package templates

import (
	"embed"
	htmltemplate "html/template"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed init/* serve/*
var FS embed.FS

// InitData contains the values substituted into init templates.
type InitData struct {
	ID   string // page id, e.g. "markets-live"
	Site string // GPT site
	Ads  bool   // turn the ads flag on
}

// ProcessTemplate processes a template string with the given data.
func ProcessTemplate(content string, data any) (string, error) {
	tmpl, err := template.New("").Parse(content)
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// ListFiles returns all files in the embedded filesystem under the given path.
func ListFiles(path string) ([]string, error) {
	var files []string

	err := fs.WalkDir(FS, path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, p)
		}
		return nil
	})

	return files, err
}

// ReadFile reads a file from the embedded filesystem.
func ReadFile(path string) ([]byte, error) {
	return FS.ReadFile(path)
}

// GetInitFiles returns the list of init template files.
func GetInitFiles() ([]string, error) {
	return ListFiles("init")
}

// IndexPage is the data rendered into the serve index page.
type IndexPage struct {
	Title      string
	Breakpoint string
	Body       htmltemplate.HTML
	SocketPath string
}

// Index parses the serve index page.
func Index() (*htmltemplate.Template, error) {
	return htmltemplate.ParseFS(FS, "serve/index.html")
}
