package fakelims

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/matryer/is"
)

func TestServedDocumentsAreRewrittenToTheAPIRoot(t *testing.T) {
	is, server := setupTest(t)
	defer server.Close()

	server.Serve("samples/S1", `<sample uri="{api}/samples/S1"/>`)

	resp, body := do(is, http.MethodGet, server.APIRoot()+"/samples/S1", nil)
	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(resp.Header.Get("Content-Type"), "application/xml")
	is.Equal(body, `<sample uri="`+server.APIRoot()+`/samples/S1"/>`)
	is.Equal(server.CountFor("samples/S1"), 1)
}

func TestUnknownPathsAreNotFound(t *testing.T) {
	is, server := setupTest(t)
	defer server.Close()

	resp, body := do(is, http.MethodGet, server.APIRoot()+"/samples/S9", nil)
	is.Equal(resp.StatusCode, http.StatusNotFound)
	is.True(strings.Contains(body, "/api/v2/samples/S9 not found"))
	is.Equal(server.RequestCount(), 1)
}

func TestOnlyLimsMethodsAreRouted(t *testing.T) {
	is, server := setupTest(t)
	defer server.Close()

	server.Respond(http.MethodPost, "samples", http.StatusCreated, `<sample/>`)

	resp, _ := do(is, http.MethodPost, server.APIRoot()+"/samples", strings.NewReader(`<sample/>`))
	is.Equal(resp.StatusCode, http.StatusCreated)

	resp, _ = do(is, http.MethodDelete, server.APIRoot()+"/samples/S1", nil)
	is.Equal(resp.StatusCode, http.StatusMethodNotAllowed)

	is.Equal(len(server.Requests()), 1) // refused requests never reach the handler
	is.Equal(server.Requests()[0].Body, `<sample/>`)
}

func TestCrossOriginRequestsAreAllowed(t *testing.T) {
	is, server := setupTest(t)
	defer server.Close()

	server.Serve("samples", `<samples/>`)

	req, _ := http.NewRequest(http.MethodGet, server.APIRoot()+"/samples", nil)
	req.Header.Set("Origin", "http://dashboard.example.org")

	resp, err := http.DefaultClient.Do(req)
	is.NoErr(err)
	defer resp.Body.Close()

	is.Equal(resp.StatusCode, http.StatusOK)
	is.True(resp.Header.Get("Access-Control-Allow-Origin") != "")
}

func setupTest(t *testing.T) (*is.I, *Server) {
	is := is.New(t)
	return is, New()
}

func do(is *is.I, method, url string, body io.Reader) (*http.Response, string) {
	req, err := http.NewRequest(method, url, body)
	is.NoErr(err)

	resp, err := http.DefaultClient.Do(req)
	is.NoErr(err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	is.NoErr(err)

	return resp, string(b)
}
