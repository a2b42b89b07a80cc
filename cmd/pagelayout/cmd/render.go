package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-drift/pagelayout/cmd/pagelayout/internal/config"
	"github.com/go-drift/pagelayout/cmd/pagelayout/internal/content"
	"github.com/go-drift/pagelayout/pkg/ads"
	"github.com/go-drift/pagelayout/pkg/app"
	"github.com/go-drift/pagelayout/pkg/breakpoint"
)

type renderOptions struct {
	width   int
	layout  string
	out     string
	timeout time.Duration
}

func init() {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the configured page to HTML",
		Long: `Render the configured page once and write its HTML.

The page is rendered at the default breakpoint unless --width or --layout
is given. With the ads flag on, ad slots in the rendered page are
initialized before the HTML is written.

Examples:
  pagelayout render
  pagelayout render --width 1000 --out page.html
  pagelayout render --layout XL --config ./article.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().IntVar(&opts.width, "width", 0, "viewport width in pixels")
	cmd.Flags().StringVar(&opts.layout, "layout", "", "publish this layout name verbatim")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "write to file instead of stdout")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "how long to wait for ad initialization")
	RegisterCommand(cmd)
}

func runRender(ctx context.Context, stdout io.Writer, opts *renderOptions) error {
	resolved, err := resolve()
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	result, err := renderPage(ctx, resolved.Page, opts.width, opts.layout)
	if err != nil {
		return err
	}
	slog.Debug("page rendered", "id", resolved.Page.ID, "breakpoint", result.breakpoint, "slots", result.slots)

	w := stdout
	if opts.out != "" {
		f, err := os.Create(opts.out)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", opts.out, err)
		}
		defer f.Close()
		w = f
	}
	_, err = io.WriteString(w, result.html+"\n")
	return err
}

type renderResult struct {
	html       string
	breakpoint string
	slots      []string
	tree       *app.TreeNode
}

// renderPage mounts the page in a fresh session, applies the viewport and
// waits for the tree to settle.
func renderPage(ctx context.Context, page config.PageConfig, width int, layout string) (*renderResult, error) {
	source := breakpoint.NewService()
	defer source.Close()
	registry := ads.NewRegistry()

	session := app.NewSession()
	defer session.Close()

	if err := session.Mount(content.Layout(page, source, registry)); err != nil {
		return nil, err
	}
	session.Pump()

	if width > 0 {
		source.SetViewportWidth(width)
	}
	if layout != "" {
		source.Publish(layout)
	}
	if err := session.Settle(ctx); err != nil {
		return nil, fmt.Errorf("render did not settle: %w", err)
	}

	html, err := session.HTML()
	if err != nil {
		return nil, err
	}
	return &renderResult{
		html:       html,
		breakpoint: source.Current(),
		slots:      registry.SlotNames(),
		tree:       session.Tree(),
	}, nil
}
