package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Categories are the browsable photo categories in navigation order.
var Categories = []string{"mountain", "beach", "bird", "food"}

const defaultCategory = "mountain"

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

func parseTemplates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))
}

func staticFiles() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// pageData is shared by every view.
type pageData struct {
	Title      string
	SearchTerm string
	Categories []string
	Active     string
}

func newPageData(title, searchTerm, active string) pageData {
	return pageData{
		Title:      title,
		SearchTerm: searchTerm,
		Categories: Categories,
		Active:     active,
	}
}

func renderCategory(c *gin.Context, category string) {
	c.HTML(http.StatusOK, "category.html", newPageData(category+" pictures", category, category))
}

func renderSearch(c *gin.Context, term string) {
	c.HTML(http.StatusOK, "search.html", newPageData(term+" pictures", term, ""))
}

func renderNotFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "notfound.html", newPageData("Page not found", "", ""))
}
