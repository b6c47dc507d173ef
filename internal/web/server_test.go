package web

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, server *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, req)
	return recorder
}

func postSearch(t *testing.T, server *Server, term string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"searchInput": {term}}
	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return serve(t, server, req)
}

func TestRootRedirectsToMountain(t *testing.T) {
	response := serve(t, NewServer(), httptest.NewRequest(http.MethodGet, "/", nil))

	if response.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", response.Code)
	}
	if location := response.Header().Get("Location"); location != "/mountain" {
		t.Fatalf("expected redirect to /mountain, got %q", location)
	}
}

func TestCategoryViews(t *testing.T) {
	server := NewServer()
	for _, category := range Categories {
		t.Run(category, func(t *testing.T) {
			response := serve(t, server, httptest.NewRequest(http.MethodGet, "/"+category, nil))
			if response.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", response.Code)
			}
			body := response.Body.String()
			if !strings.Contains(body, `data-search-term="`+category+`"`) {
				t.Fatalf("expected search term %q in body, got %s", category, body)
			}
			if !strings.Contains(body, `<a href="/`+category+`" class="active">`) {
				t.Fatalf("expected %q to be the active category", category)
			}
		})
	}
}

func TestSearchSubmissionRedirects(t *testing.T) {
	server := NewServer()

	response := postSearch(t, server, "sunset")
	if response.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", response.Code)
	}
	if location := response.Header().Get("Location"); location != "/search/sunset" {
		t.Fatalf("expected redirect to /search/sunset, got %q", location)
	}

	page := serve(t, server, httptest.NewRequest(http.MethodGet, "/search/sunset", nil))
	if page.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", page.Code)
	}
	body := page.Body.String()
	if !strings.Contains(body, `data-search-term="sunset"`) {
		t.Fatalf("expected search view for sunset, got %s", body)
	}
	if !strings.Contains(body, `name="searchInput" placeholder="Search..." value=""`) {
		t.Fatalf("expected the search input to be cleared")
	}
}

func TestSearchSubmissionEscapesTerm(t *testing.T) {
	testCases := []struct {
		name             string
		input            string
		expectedLocation string
		expectedTerm     string
	}{
		{name: "reserved characters", input: "  red/blue sky?  ", expectedLocation: "/search/red%2Fblue%20sky%3F", expectedTerm: "red/blue sky?"},
		{name: "single dot", input: ".", expectedLocation: "/search/%2E", expectedTerm: "."},
		{name: "double dot", input: "..", expectedLocation: "/search/%2E%2E", expectedTerm: ".."},
		{name: "dotted term", input: "st. ives", expectedLocation: "/search/st%2E%20ives", expectedTerm: "st. ives"},
	}

	server := NewServer()
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			response := postSearch(t, server, testCase.input)
			location := response.Header().Get("Location")
			if location != testCase.expectedLocation {
				t.Fatalf("expected redirect to %q, got %q", testCase.expectedLocation, location)
			}

			page := serve(t, server, httptest.NewRequest(http.MethodGet, location, nil))
			if page.Code != http.StatusOK {
				t.Fatalf("expected escaped term to route to the search view, got %d", page.Code)
			}
			if !strings.Contains(page.Body.String(), `data-search-term="`+testCase.expectedTerm+`"`) {
				t.Fatalf("expected the decoded term %q in the search view, got %s", testCase.expectedTerm, page.Body.String())
			}
		})
	}
}

func TestBlankSearchReturnsToDefaultCategory(t *testing.T) {
	response := postSearch(t, NewServer(), "   ")

	if response.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", response.Code)
	}
	if location := response.Header().Get("Location"); location != "/mountain" {
		t.Fatalf("expected redirect to /mountain, got %q", location)
	}
}

func TestUnknownRouteRendersNotFound(t *testing.T) {
	response := serve(t, NewServer(), httptest.NewRequest(http.MethodGet, "/unknown", nil))

	if response.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", response.Code)
	}
	if !strings.Contains(response.Body.String(), "Page not found") {
		t.Fatalf("expected not-found view, got %s", response.Body.String())
	}
}

func TestHealthAndSchema(t *testing.T) {
	server := NewServer()

	health := serve(t, server, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if health.Code != http.StatusOK || !strings.Contains(health.Body.String(), `"ok"`) {
		t.Fatalf("expected healthy response, got %d %s", health.Code, health.Body.String())
	}

	schema := serve(t, server, httptest.NewRequest(http.MethodGet, "/api/schema/segment", nil))
	if schema.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", schema.Code)
	}
	for _, field := range []string{`"words"`, `"isFinal"`, `"entities"`} {
		if !strings.Contains(schema.Body.String(), field) {
			t.Fatalf("expected schema to describe %s, got %s", field, schema.Body.String())
		}
	}
}

func TestStaticAssets(t *testing.T) {
	response := serve(t, NewServer(), httptest.NewRequest(http.MethodGet, "/static/voice.js", nil))
	if response.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", response.Code)
	}
}

func TestWebsocketOriginCheck(t *testing.T) {
	server := NewServer(WithAllowedOrigins("http://allowed.test"))

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "http://allowed.test")
	if !server.checkOrigin(req) {
		t.Fatalf("expected allowed origin to pass")
	}

	req.Header.Set("Origin", "http://other.test")
	if server.checkOrigin(req) {
		t.Fatalf("expected other origin to be rejected")
	}
}
