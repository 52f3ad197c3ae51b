package palette

import "arbor/internal/model"

// Builtin returns the default catalog.
func Builtin() *Catalog {
	return &Catalog{Categories: []Category{
		{
			Name: "Basic",
			Templates: []model.Template{
				{TypeTag: "div", Label: "Div", Icon: "▭"},
				{TypeTag: "span", Label: "Span", Icon: "▬"},
				{TypeTag: "textarea", Label: "Textarea", Icon: "✎"},
				{TypeTag: "header", Label: "Header", Icon: "▔"},
				{TypeTag: "footer", Label: "Footer", Icon: "▁"},
				{TypeTag: "section", Label: "Section", Icon: "▤"},
				{TypeTag: "article", Label: "Article", Icon: "▥"},
			},
		},
		{
			Name: "Layouts",
			Templates: []model.Template{
				{TypeTag: "layout-2-columns", Label: "2 Columns (Responsive)", Content: "Column 1 | Column 2", Icon: "◫"},
				{TypeTag: "layout-3-columns", Label: "3 Columns (Responsive)", Content: "Column 1 | Column 2 | Column 3", Icon: "▥"},
			},
		},
		{
			Name:  "Navbar",
			Label: "Navbars",
			Templates: []model.Template{
				{TypeTag: "navbar-1", Label: "Navbar 1", Content: "BrandLogo · Home · About · Contact", Icon: "☰"},
			},
		},
		{
			Name:  "Banner",
			Label: "Banners",
			Templates: []model.Template{
				{TypeTag: "banner-1", Label: "Banner 1", Content: "Headline with call to action", Icon: "▰"},
				{TypeTag: "banner-2", Label: "Banner 2", Content: "Split image and copy", Icon: "▰"},
				{TypeTag: "banner-3", Label: "Banner 3", Content: "Centered hero", Icon: "▰"},
				{TypeTag: "banner-4", Label: "Banner 4", Content: "Feature strip", Icon: "▰"},
				{TypeTag: "banner-5", Label: "Banner 5", Content: "Newsletter signup", Icon: "▰"},
			},
		},
	}}
}
