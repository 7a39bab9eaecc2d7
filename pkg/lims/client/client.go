package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"sync/atomic"

	"github.com/beevik/etree"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/withrocks/genologics/pkg/lims/errors"
	"github.com/withrocks/genologics/pkg/lims/xmlns"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DocumentStore reads and writes LIMS resources as XML documents.
type DocumentStore interface {
	Fetch(ctx context.Context, uri string, parameters ...RequestDecoratorFunc) (*etree.Document, error)
	Submit(ctx context.Context, uri string, doc *etree.Document, method string, parameters ...RequestDecoratorFunc) (*etree.Document, error)
	List(ctx context.Context, uri, tag string, parameters ...RequestDecoratorFunc) ([]*etree.Element, error)
	Download(ctx context.Context, uri string) ([]byte, error)
	RequestCount() int
}

func Debug(enabled string) func(*limsClient) {
	return func(c *limsClient) {
		c.debug = (enabled == "true")
	}
}

func BasicAuth(username, password string) func(*limsClient) {
	return func(c *limsClient) {
		c.username = username
		c.password = password
	}
}

// Transport replaces the round tripper that the otel transport wraps.
func Transport(rt http.RoundTripper) func(*limsClient) {
	return func(c *limsClient) {
		c.transport = rt
	}
}

func NewDocumentStore(options ...func(*limsClient)) DocumentStore {
	c := &limsClient{
		debug:     false,
		transport: http.DefaultTransport,
	}

	for _, option := range options {
		option(c)
	}

	c.httpClient = &http.Client{
		Transport: otelhttp.NewTransport(c.transport),
	}

	return c
}

const (
	TraceAttributeURI    string = "lims-uri"
	TraceAttributeMethod string = "lims-method"
)

const contentTypeXML string = "application/xml"

var tracer = otel.Tracer("lims-client")

type limsClient struct {
	username string
	password string
	debug    bool

	transport  http.RoundTripper
	httpClient *http.Client

	requests atomic.Int64
}

func (c *limsClient) Fetch(ctx context.Context, uri string, parameters ...RequestDecoratorFunc) (*etree.Document, error) {
	var err error

	ctx, span := tracer.Start(ctx, "fetch-document",
		trace.WithAttributes(attribute.String(TraceAttributeURI, uri)),
		trace.WithAttributes(attribute.String(TraceAttributeMethod, http.MethodGet)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	endpoint := withParams(uri, encodeParams(parameters))

	resp, respBody, err := c.callLims(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		err = errors.NewErrorFromExceptionReport(resp.StatusCode, respBody)
		return nil, err
	}

	doc, err := parseDocument(endpoint, respBody)
	return doc, err
}

func (c *limsClient) Submit(ctx context.Context, uri string, doc *etree.Document, method string, parameters ...RequestDecoratorFunc) (*etree.Document, error) {
	var err error

	ctx, span := tracer.Start(ctx, "submit-document",
		trace.WithAttributes(attribute.String(TraceAttributeURI, uri)),
		trace.WithAttributes(attribute.String(TraceAttributeMethod, method)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	if method != http.MethodPut && method != http.MethodPost {
		err = errors.NewPreconditionError(fmt.Sprintf("documents are submitted with PUT or POST, not %s", method))
		return nil, err
	}

	if doc == nil || doc.Root() == nil {
		err = errors.NewPreconditionError("cannot submit an empty document to " + uri)
		return nil, err
	}

	b, err := doc.WriteToBytes()
	if err != nil {
		err = fmt.Errorf("failed to serialise document: %s (%w)", err.Error(), errors.ErrInternal)
		return nil, err
	}

	endpoint := withParams(uri, encodeParams(parameters))

	resp, respBody, err := c.callLims(ctx, method, endpoint, bytes.NewBuffer(b))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		err = errors.NewErrorFromExceptionReport(resp.StatusCode, respBody)
		return nil, err
	}

	result, err := parseDocument(endpoint, respBody)
	return result, err
}

// List collects the member elements with the given tag from a listing and
// every page after it. Later pages are requested with the literal next page
// uri, since it already carries the query of the first request.
func (c *limsClient) List(ctx context.Context, uri, tag string, parameters ...RequestDecoratorFunc) ([]*etree.Element, error) {
	var err error

	ctx, span := tracer.Start(ctx, "list-documents",
		trace.WithAttributes(attribute.String(TraceAttributeURI, uri)),
		trace.WithAttributes(attribute.String(TraceAttributeMethod, http.MethodGet)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	params := encodeParams(parameters)
	singlePage := hasStartIndex(params)

	log := logging.GetFromContext(ctx)

	members := []*etree.Element{}
	next := withParams(uri, params)

	for pages := 0; next != ""; pages++ {
		var doc *etree.Document

		doc, err = c.Fetch(ctx, next)
		if err != nil {
			return nil, err
		}

		root := doc.Root()
		members = append(members, xmlns.Children(root, tag)...)

		if singlePage {
			break
		}

		next = ""
		if np := xmlns.Child(root, "next-page"); np != nil {
			next = np.SelectAttrValue("uri", "")
		}

		log.Debug("fetched listing page", "uri", uri, "page", pages+1, "members", len(members))
	}

	return members, nil
}

func (c *limsClient) Download(ctx context.Context, uri string) ([]byte, error) {
	var err error

	ctx, span := tracer.Start(ctx, "download-file",
		trace.WithAttributes(attribute.String(TraceAttributeURI, uri)),
		trace.WithAttributes(attribute.String(TraceAttributeMethod, http.MethodGet)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	resp, respBody, err := c.callLims(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		err = errors.NewErrorFromExceptionReport(resp.StatusCode, respBody)
		return nil, err
	}

	return respBody, nil
}

// RequestCount is the number of HTTP requests sent by this store.
func (c *limsClient) RequestCount() int {
	return int(c.requests.Load())
}

func (c *limsClient) callLims(ctx context.Context, method, endpoint string, body io.Reader) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %s (%w)", err.Error(), errors.ErrInternal)
	}

	req.Header.Add("Accept", contentTypeXML)
	if body != nil {
		req.Header.Add("Content-Type", contentTypeXML)
	}

	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	c.requests.Add(1)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to send request: %s (%w)", err.Error(), errors.ErrRequest)
	}

	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response body: %s (%w)", err.Error(), errors.ErrBadResponse)
	}

	if c.debug && resp.StatusCode >= http.StatusBadRequest {
		if resp.StatusCode != http.StatusUnauthorized && resp.StatusCode != http.StatusNotFound {
			reqbytes, _ := httputil.DumpRequest(req, false)
			respbytes, _ := httputil.DumpResponse(resp, false)

			log := logging.GetFromContext(ctx)
			log.Error("request failed", "request", string(reqbytes), "response", string(respbytes))
		}
	}

	return resp, respBody, nil
}

func parseDocument(endpoint string, body []byte) (*etree.Document, error) {
	doc := etree.NewDocument()

	if err := doc.ReadFromBytes(body); err != nil {
		return nil, fmt.Errorf("failed to parse response from %s: %s (%w)", endpoint, err.Error(), errors.ErrBadResponse)
	}

	if doc.Root() == nil {
		return nil, fmt.Errorf("response from %s holds no document (%w)", endpoint, errors.ErrBadResponse)
	}

	return doc, nil
}
