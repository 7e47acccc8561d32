package commands

import (
	"context"
	"encoding/json"
	"fmt"
)

// PageCmd implements the 'page' command.
type PageCmd struct {
	Name string `arg:"" help:"Page to render, e.g. posts/2024-05-06-launch or posts/launch.html"`
}

func (p *PageCmd) Run(g *Global, root *CLI) error {
	s, err := root.loadSite(nil)
	if err != nil {
		return err
	}
	page, err := s.RenderPage(p.Name)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(g.Stdout, page.HTML)
	return err
}

// ListingCmd implements the 'listing' command.
type ListingCmd struct {
	Type string `arg:"" help:"Configured content type"`
}

func (l *ListingCmd) Run(g *Global, root *CLI) error {
	s, err := root.loadSite(nil)
	if err != nil {
		return err
	}
	page, err := s.RenderListing(context.Background(), l.Type)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(g.Stdout, page.HTML)
	return err
}

// SitemapCmd implements the 'sitemap' command.
type SitemapCmd struct{}

func (SitemapCmd) Run(g *Global, root *CLI) error {
	s, err := root.loadSite(nil)
	if err != nil {
		return err
	}
	out, err := s.Sitemap(context.Background())
	if err != nil {
		return err
	}
	_, err = g.Stdout.Write(out)
	return err
}

// IndexCmd implements the 'index' command.
type IndexCmd struct {
	Pretty bool `help:"Indent the JSON output"`
}

func (i *IndexCmd) Run(g *Global, root *CLI) error {
	s, err := root.loadSite(nil)
	if err != nil {
		return err
	}
	idx, err := s.Index(context.Background())
	if err != nil {
		return err
	}
	enc := json.NewEncoder(g.Stdout)
	if i.Pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(idx)
}
