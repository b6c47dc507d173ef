package web

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/koscakluka/snapscout/core/segments"
)

// postSearch handles the header search form. The term is path escaped so
// that slashes and other reserved characters stay inside one path segment.
// Dots are escaped too, otherwise "." and ".." are removed when the redirect
// location is cleaned. The rendered page always starts with an empty input.
func (s *Server) postSearch(c *gin.Context) {
	term := strings.TrimSpace(c.PostForm("searchInput"))
	if term == "" {
		c.Redirect(http.StatusSeeOther, "/"+defaultCategory)
		return
	}

	c.Redirect(http.StatusSeeOther, "/search/"+escapeSearchTerm(term))
}

func escapeSearchTerm(term string) string {
	return strings.ReplaceAll(url.PathEscape(term), ".", "%2E")
}

func (s *Server) getSearch(c *gin.Context) {
	renderSearch(c, c.Param("searchInput"))
}

func (s *Server) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) getSegmentSchema(c *gin.Context) {
	c.JSON(http.StatusOK, segments.Schema())
}
