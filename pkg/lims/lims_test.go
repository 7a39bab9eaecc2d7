package lims

import (
	"context"
	"errors"
	"net/http"
	"testing"

	testutils "github.com/diwise/service-chassis/pkg/test/http"
	"github.com/diwise/service-chassis/pkg/test/http/expects"
	"github.com/diwise/service-chassis/pkg/test/http/response"
	"github.com/matryer/is"
	"github.com/withrocks/genologics/internal/pkg/test/fakelims"
	"github.com/withrocks/genologics/pkg/lims/catalog"
	"github.com/withrocks/genologics/pkg/lims/client"
	"github.com/withrocks/genologics/pkg/lims/entities"
	limserrors "github.com/withrocks/genologics/pkg/lims/errors"
	"github.com/withrocks/genologics/pkg/lims/types"
)

func TestNewRequiresABaseURI(t *testing.T) {
	is := is.New(t)

	_, err := New("")
	is.True(errors.Is(err, limserrors.ErrPrecondition))
}

func TestAPIRootFollowsTheVersion(t *testing.T) {
	is := is.New(t)

	l, err := New("https://lims.example.org:8443/", Version("v1"))
	is.NoErr(err)
	is.Equal(l.APIRoot(), "https://lims.example.org:8443/api/v1")

	l, _ = New("https://lims.example.org:8443", Version(""))
	is.Equal(l.APIRoot(), "https://lims.example.org:8443/api/v2")
}

func TestListedEntitiesAreRegistered(t *testing.T) {
	is, server, l := setupTest(t)
	defer server.Close()

	server.Serve("samples?name=S1", samplesListing)

	ctx := context.Background()

	samples, err := l.Samples(ctx, client.Name("S1"))
	is.NoErr(err)
	is.Equal(len(samples), 1)

	same, _ := l.Get(catalog.SampleTypeName, "S1")
	is.True(same == samples[0])

	is.Equal(samples[0].State(), types.Overview)
	is.Equal(l.RequestCount(), 1)
}

func TestSampleCountFollowsEveryPage(t *testing.T) {
	is, server, l := setupTest(t)
	defer server.Close()

	server.Serve("samples", samplesFirstPage)
	server.Serve("samples?start-index=2", samplesSecondPage)

	count, err := l.SampleCount(context.Background())
	is.NoErr(err)
	is.Equal(count, 3)
	is.Equal(l.RequestCount(), 2)
	is.Equal(l.Session().Len(), 0) // counting builds no entities
}

func TestWorkflowListing(t *testing.T) {
	is, server, l := setupTest(t)
	defer server.Close()

	server.Serve("configuration/workflows", workflowsListing)

	ctx := context.Background()

	workflows, err := l.Workflows(ctx)
	is.NoErr(err)
	is.Equal(len(workflows), 2)

	status, err := entities.String(ctx, workflows[1], "status")
	is.NoErr(err)
	is.Equal(status, "ARCHIVED")
	is.Equal(l.RequestCount(), 1)
}

func TestCheckVersion(t *testing.T) {
	is := is.New(t)

	s := testutils.NewMockServiceThat(
		testutils.Expects(is, expects.RequestMethod(http.MethodGet), expects.RequestPath("/api")),
		testutils.Returns(
			response.ContentType("application/xml"),
			response.Code(http.StatusOK),
			response.Body([]byte(versionsResponse)),
		),
	)
	defer s.Close()

	l, _ := New(s.URL())
	is.NoErr(l.CheckVersion(context.Background()))

	l, _ = New(s.URL(), Version("v3"))
	err := l.CheckVersion(context.Background())
	is.True(errors.Is(err, limserrors.ErrPrecondition))
}

func TestFileContents(t *testing.T) {
	is := is.New(t)

	s := testutils.NewMockServiceThat(
		testutils.Expects(is, expects.RequestPath("/api/v2/files/40-1/download")),
		testutils.Returns(
			response.ContentType("text/plain"),
			response.Code(http.StatusOK),
			response.Body([]byte("well,conc\nA:1,1.5\n")),
		),
	)
	defer s.Close()

	l, _ := New(s.URL(), Credentials("apiuser", "secret"))

	b, err := l.FileContents(context.Background(), "40-1")
	is.NoErr(err)
	is.Equal(string(b), "well,conc\nA:1,1.5\n")

	_, err = l.FileContents(context.Background(), "")
	is.True(errors.Is(err, limserrors.ErrPrecondition))
}

func setupTest(t *testing.T) (*is.I, *fakelims.Server, *Lims) {
	is := is.New(t)
	server := fakelims.New()

	l, err := New(server.URL(), Credentials("apiuser", "secret"))
	is.NoErr(err)

	return is, server, l
}

const samplesListing string = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<smp:samples xmlns:smp="http://genologics.com/ri/sample">
  <sample uri="{api}/samples/S1" limsid="S1"/>
</smp:samples>`

const samplesFirstPage string = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<smp:samples xmlns:smp="http://genologics.com/ri/sample">
  <sample uri="{api}/samples/S1" limsid="S1"/>
  <sample uri="{api}/samples/S2" limsid="S2"/>
  <next-page uri="{api}/samples?start-index=2"/>
</smp:samples>`

const samplesSecondPage string = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<smp:samples xmlns:smp="http://genologics.com/ri/sample">
  <sample uri="{api}/samples/S3" limsid="S3"/>
  <previous-page uri="{api}/samples"/>
</smp:samples>`

const workflowsListing string = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<wkfcnf:workflows xmlns:wkfcnf="http://genologics.com/ri/workflowconfiguration">
  <workflow status="ACTIVE" uri="{api}/configuration/workflows/1" name="WGS"/>
  <workflow status="ARCHIVED" uri="{api}/configuration/workflows/2" name="Exome"/>
</wkfcnf:workflows>`

const versionsResponse string = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<ver:versions xmlns:ver="http://genologics.com/ri/version">
  <version major="v2" minor="r31" uri="http://lims.example.org/api/v2"/>
</ver:versions>`
