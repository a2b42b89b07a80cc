package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/go-drift/pagelayout/cmd/pagelayout/internal/config"
	"github.com/go-drift/pagelayout/cmd/pagelayout/internal/templates"
	"github.com/go-drift/pagelayout/pkg/ads"
)

type initOptions struct {
	id    string
	site  string
	ads   bool
	force bool
}

func init() {
	opts := &initOptions{}
	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a starter pagelayout.yaml",
		Long: `Create pagelayout.yaml and .env in a directory.

The directory defaults to the project root (the nearest directory holding
go.mod). The page id defaults to the last element of the module path.

Examples:
  pagelayout init
  pagelayout init ./articles/markets --id markets --ads`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(cmd.OutOrStdout(), dir, opts)
		},
	}
	cmd.Flags().StringVar(&opts.id, "id", "", "page id")
	cmd.Flags().StringVar(&opts.site, "site", ads.FallbackSite, "GPT site")
	cmd.Flags().BoolVar(&opts.ads, "ads", false, "turn the ads flag on")
	cmd.Flags().BoolVar(&opts.force, "force", false, "overwrite existing files")
	RegisterCommand(cmd)
}

func runInit(stdout io.Writer, dir string, opts *initOptions) error {
	if strings.HasPrefix(dir, "~") {
		return fmt.Errorf("tilde (~) is not expanded by pagelayout; use an absolute path or $HOME instead")
	}
	if dir == "" {
		root, err := config.FindProjectRoot()
		if err != nil {
			return err
		}
		dir = root
	}
	dir = filepath.Clean(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	id := opts.id
	if id == "" {
		modulePath, _ := config.ModulePath(dir)
		id = config.DefaultID(modulePath, dir)
	}
	data := templates.InitData{ID: id, Site: opts.site, Ads: opts.ads}

	files, err := templates.GetInitFiles()
	if err != nil {
		return err
	}
	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".tmpl")
		dest := filepath.Join(dir, name)
		if !opts.force {
			if _, err := os.Stat(dest); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", dest)
			}
		}

		content, err := templates.ReadFile(file)
		if err != nil {
			return err
		}
		out, err := templates.ProcessTemplate(string(content), data)
		if err != nil {
			return fmt.Errorf("failed to process %s: %w", file, err)
		}
		if err := os.WriteFile(dest, []byte(out), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", dest, err)
		}
		fmt.Fprintf(stdout, "  created %s\n", dest)
	}

	if _, err := config.LoadOptional(dir); err != nil {
		return fmt.Errorf("generated config is invalid: %w", err)
	}
	return nil
}
