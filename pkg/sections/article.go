package sections

import (
	"time"

	"github.com/lestrrat-go/strftime"

	"github.com/go-drift/pagelayout/pkg/core"
	"github.com/go-drift/pagelayout/pkg/errors"
	"github.com/go-drift/pagelayout/pkg/markup"
	"github.com/go-drift/pagelayout/pkg/props"
)

// DateFormat is the strftime pattern for the published date.
const DateFormat = "%B %e, %Y"

// ArticleHead renders the headline, standfirst, byline and published date
// read from the props "headline", "summary", "authors" and "publishedDate".
// The date may be a time.Time or an RFC 3339 string.
type ArticleHead struct {
	core.StatelessBase
	Bundle props.Bundle
}

func (a ArticleHead) Build(ctx core.BuildContext) core.Widget {
	p := a.Bundle.Props
	children := []core.Widget{
		markup.Element{Tag: "h1", Class: "headline", Attrs: map[string]string{"itemprop": "headline"},
			Children: []core.Widget{markup.Text(p.String("headline"))}},
	}
	if summary := p.String("summary"); summary != "" {
		children = append(children, markup.Element{Tag: "p", Class: "standfirst", Attrs: map[string]string{"itemprop": "description"},
			Children: []core.Widget{markup.Text(summary)}})
	}
	if authors := p.String("authors"); authors != "" {
		children = append(children, markup.Element{Tag: "p", Class: "byline", Attrs: map[string]string{"itemprop": "author"},
			Children: []core.Widget{markup.Text(authors)}})
	}
	if published, ok := publishedDate(p["publishedDate"]); ok {
		if text, err := strftime.Format(DateFormat, published); err != nil {
			errors.Report(&errors.PageError{Op: "sections.ArticleHead", Kind: errors.KindRender, Err: err})
		} else {
			children = append(children, markup.Element{
				Tag:      "time",
				Class:    "article-date",
				Attrs:    map[string]string{"itemprop": "datePublished", "datetime": published.Format(time.RFC3339)},
				Children: []core.Widget{markup.Text(text)},
			})
		}
	}
	return markup.Element{Tag: "div", Class: "article-head__content", Children: children}
}

func publishedDate(v any) (time.Time, bool) {
	switch value := v.(type) {
	case time.Time:
		return value, !value.IsZero()
	case string:
		t, err := time.Parse(time.RFC3339, value)
		return t, err == nil
	}
	return time.Time{}, false
}

// Copyright renders the article's copyright notice for the year of Now.
type Copyright struct {
	core.StatelessBase
	// Now defaults to time.Now.
	Now func() time.Time
}

func (c Copyright) Build(ctx core.BuildContext) core.Widget {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	year, err := strftime.Format("%Y", now())
	if err != nil {
		errors.Report(&errors.PageError{Op: "sections.Copyright", Kind: errors.KindRender, Err: err})
	}
	return markup.Element{Tag: "small", Children: []core.Widget{
		markup.Element{
			Tag:      "a",
			Attrs:    map[string]string{"href": "http://www.ft.com/servicestools/help/copyright", "data-trackable": "link-copyright"},
			Children: []core.Widget{markup.Text("Copyright")},
		},
		markup.Text(" "),
		markup.Element{Tag: "span", Attrs: map[string]string{"itemprop": "name"}, Children: []core.Widget{markup.Text("The Financial Times")}},
		markup.Text(" Limited " + year + ". All rights reserved. You may share using our article tools. " +
			"Please don't cut articles from FT.com and redistribute by email or post to the web."),
	}}
}
