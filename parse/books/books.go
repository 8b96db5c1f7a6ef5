// Package books scrapes a books.toscrape.com style catalog: a
// paginated listing whose rows chain into detail pages.
package books

import (
	"net/url"

	"github.com/wenzapen/trowel/fetch"
	"github.com/wenzapen/trowel/page"
	"github.com/wenzapen/trowel/registry"
	"github.com/wenzapen/trowel/selector"
	"github.com/wenzapen/trowel/view"
)

const baseURL = "https://books.toscrape.com/"

var (
	productSel = selector.CSS("article.product_pod")
	titleSel   = selector.CSS("h3 a")
	priceSel   = selector.CSS("p.price_color")
	availSel   = selector.CSS("p.availability")
	nextSel    = selector.CSS("li.next a")
	upcSel     = selector.XPath(`//th[text()="UPC"]/following-sibling::td`)
)

func init() {
	registry.Register("books.catalog", func() *page.Unit {
		return page.New(Catalog{},
			page.WithRole(page.RoleListing),
			page.WithSource(baseURL))
	})
	registry.Register("books.book", func() *page.Unit {
		return page.New(Book{})
	})
}

// Catalog is the listing page. Each product chains into a Book detail
// unit carrying the title and detail URL forward.
type Catalog struct{}

func (Catalog) SelectItems(v view.View) ([]any, error) {
	return page.SelectHTML(v, productSel)
}

func (Catalog) ProcessItem(ctx *page.Context, item any) (page.Outcome, error) {
	n, err := page.HTMLItem(item)
	if err != nil {
		return page.Outcome{}, err
	}
	a, err := selector.MatchOne(titleSel, n)
	if err != nil {
		return page.Outcome{}, err
	}
	input := page.Record{
		"title": view.Attr(a, "title"),
		"url":   resolveRef(ctx.Request, view.Attr(a, "href")),
	}
	return page.Continue(page.New(Book{}, page.WithInput(input))), nil
}

func (Catalog) NextSource(ctx *page.Context) *fetch.Request {
	hv, err := ctx.HTML()
	if err != nil {
		return nil
	}
	a, err := hv.SelectOne(nextSel)
	if err != nil {
		return nil
	}
	return fetch.NewRequest(resolveRef(ctx.Request, view.Attr(a, "href")))
}

func (Catalog) ExampleSource() *fetch.Request {
	return fetch.NewRequest(baseURL)
}

// Book is the detail page, merging its extracted fields over the
// listing row's payload.
type Book struct{}

func (Book) Process(ctx *page.Context) (page.Outcome, error) {
	hv, err := ctx.HTML()
	if err != nil {
		return page.Outcome{}, err
	}
	price, err := hv.Text(priceSel)
	if err != nil {
		return page.Outcome{}, err
	}
	upc, err := hv.Text(upcSel)
	if err != nil {
		return page.Outcome{}, err
	}
	availability, err := hv.Text(availSel)
	if err != nil {
		return page.Outcome{}, err
	}
	rec := page.Merge(ctx.Input, page.Record{
		"price":        price,
		"upc":          upc,
		"availability": availability,
	})
	return page.Emit(rec), nil
}

func (Book) ExampleSource() *fetch.Request {
	return fetch.NewRequest(baseURL + "catalogue/a-light-in-the-attic_1000/index.html")
}

func (Book) ExampleInput() page.Record {
	return page.Record{"title": "~title"}
}

func resolveRef(req *fetch.Request, href string) string {
	if req == nil {
		return href
	}
	base, err := url.Parse(req.URL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
