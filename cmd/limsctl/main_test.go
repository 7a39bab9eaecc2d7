package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/docopt/docopt-go"
	"github.com/matryer/is"
	"github.com/withrocks/genologics/internal/pkg/test/fakelims"
	"github.com/withrocks/genologics/pkg/lims"
)

func TestListWorkflowsWithStatus(t *testing.T) {
	is, server, out := setupTest(t, "workflows", "--status=active")
	defer server.Close()

	is.Equal(out, "1\tACTIVE\tWGS\n")
	is.Equal(server.RequestCount(), 1)
}

func TestListSamplesByName(t *testing.T) {
	is, server, out := setupTest(t, "samples", "--project=Genomes", "S1")
	defer server.Close()

	is.Equal(out, "S1\n")

	u := server.Requests()[0].URL
	is.True(strings.Contains(u, "projectname=Genomes"))
	is.True(strings.Contains(u, "name=S1"))
}

func TestListContainersByState(t *testing.T) {
	is, server, out := setupTest(t, "containers", "--state=Populated")
	defer server.Close()

	is.Equal(out, "27-1\n28-1\n")
	is.Equal(server.CountFor("containers"), 1)
}

func TestShowSelectedAttributes(t *testing.T) {
	is, server, out := setupTest(t, "show", "Container", "27-1", "name", "placements")
	defer server.Close()

	is.Equal(out, server.APIRoot()+"/containers/27-1\n  name: Plate 27\n  placements: {A:1=Artifact(IN1)}\n")
	is.Equal(server.RequestCount(), 1)
}

func setupTest(t *testing.T, args ...string) (*is.I, *fakelims.Server, string) {
	is := is.New(t)

	server := fakelims.New()
	server.Serve("configuration/workflows", workflowsListing)
	server.Serve("samples?projectname=Genomes&name=S1", samplesListing)
	server.Serve("containers/27-1", container27)
	server.Serve("containers?state=Populated", containersListing)

	l, err := lims.New(server.URL())
	is.NoErr(err)

	opts, err := docopt.ParseArgs(usage, args, "test")
	is.NoErr(err)

	buf := &bytes.Buffer{}
	is.NoErr(run(context.Background(), l, opts, buf))

	return is, server, buf.String()
}

const workflowsListing string = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<wkfcnf:workflows xmlns:wkfcnf="http://genologics.com/ri/workflowconfiguration">
  <workflow status="ACTIVE" uri="{api}/configuration/workflows/1" name="WGS"/>
  <workflow status="ARCHIVED" uri="{api}/configuration/workflows/2" name="Exome"/>
</wkfcnf:workflows>`

const samplesListing string = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<smp:samples xmlns:smp="http://genologics.com/ri/sample">
  <sample uri="{api}/samples/S1" limsid="S1"/>
</smp:samples>`

const containersListing string = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<con:containers xmlns:con="http://genologics.com/ri/container">
  <container uri="{api}/containers/27-1" limsid="27-1"/>
  <container uri="{api}/containers/28-1" limsid="28-1"/>
</con:containers>`

const container27 string = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<con:container xmlns:con="http://genologics.com/ri/container" uri="{api}/containers/27-1" limsid="27-1">
  <name>Plate 27</name>
  <placement uri="{api}/artifacts/IN1" limsid="IN1"><value>A:1</value></placement>
</con:container>`
