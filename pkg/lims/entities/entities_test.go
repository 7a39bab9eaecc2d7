package entities

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/withrocks/genologics/internal/pkg/test/fakelims"
	"github.com/withrocks/genologics/pkg/lims/client"
	limserrors "github.com/withrocks/genologics/pkg/lims/errors"
	"github.com/withrocks/genologics/pkg/lims/types"
)

func TestLookupReturnsTheSameEntityForTheSameURI(t *testing.T) {
	is, lims, s := setupTest(t)
	defer lims.Close()

	first, err := s.Lookup("Sample", lims.APIRoot()+"/samples/S1")
	is.NoErr(err)
	second, err := s.ByID("Sample", "S1")
	is.NoErr(err)

	is.True(first == second) // lookups of one uri should yield one entity
	is.Equal(s.Len(), 1)
	is.Equal(first.ID(), "S1")
	is.Equal(first.State(), types.None)
	is.Equal(lims.RequestCount(), 0) // lookups should not fetch anything
}

func TestLookupWithoutURIIsAPreconditionError(t *testing.T) {
	is, lims, s := setupTest(t)
	defer lims.Close()

	_, err := s.Lookup("Sample", "")
	is.True(errors.Is(err, limserrors.ErrPrecondition))

	_, err = s.ByID("Sample", "")
	is.True(errors.Is(err, limserrors.ErrPrecondition))

	_, err = s.ByID("Stage", "3")
	is.True(errors.Is(err, limserrors.ErrPrecondition)) // stages have no collection of their own
}

func TestIDIgnoresTheQueryOfTheURI(t *testing.T) {
	is, lims, s := setupTest(t)
	defer lims.Close()

	a, err := s.Lookup("Artifact", lims.APIRoot()+"/artifacts/2-123?state=456")
	is.NoErr(err)

	is.Equal(a.ID(), "2-123")
	is.Equal(a.String(), "Artifact(2-123)")
}

func TestReadingADetailsAttributeFetchesOnce(t *testing.T) {
	is, lims, s := setupTest(t)
	defer lims.Close()

	lims.Serve("samples/S1", sampleS1)

	sample, _ := s.ByID("Sample", "S1")
	ctx := context.Background()

	name, err := String(ctx, sample, "name")
	is.NoErr(err)
	is.Equal(name, "Sample One")
	is.Equal(lims.RequestCount(), 1)
	is.Equal(sample.State(), types.Details)

	_, err = sample.Get(ctx, "name")
	is.NoErr(err)
	received, err := Value[types.Date](ctx, sample, "date_received")
	is.NoErr(err)
	is.Equal(received, types.NewDate(2024, 3, 1))

	is.Equal(lims.RequestCount(), 1) // no further reads should fetch
}

func TestRefreshFetchesAgain(t *testing.T) {
	is, lims, s := setupTest(t)
	defer lims.Close()

	lims.Serve("samples/S1", sampleS1)

	sample, _ := s.ByID("Sample", "S1")
	ctx := context.Background()

	is.NoErr(sample.Ensure(ctx, types.Details))
	is.NoErr(sample.Ensure(ctx, types.OverviewOrDetails))
	is.Equal(lims.RequestCount(), 1)

	is.NoErr(sample.Refresh(ctx))
	is.Equal(lims.RequestCount(), 2)
}

func TestEnsureRejectsAnEmptyState(t *testing.T) {
	is, lims, s := setupTest(t)
	defer lims.Close()

	sample, _ := s.ByID("Sample", "S1")

	err := sample.Ensure(context.Background(), types.None)
	is.True(errors.Is(err, limserrors.ErrPrecondition))

	err = sample.Ensure(context.Background(), types.FetchState(4))
	is.True(errors.Is(err, limserrors.ErrPrecondition))

	is.Equal(lims.RequestCount(), 0)
}

func TestListedEntitiesAnswerOverviewAttributesWithoutFetching(t *testing.T) {
	is, lims, s := setupTest(t)
	defer lims.Close()

	lims.Serve("configuration/workflows", workflowListing)
	lims.Serve("configuration/workflows/1", workflowOne)

	ctx := context.Background()

	workflows, err := s.List(ctx, "Workflow")
	is.NoErr(err)
	is.Equal(len(workflows), 2)
	is.Equal(lims.RequestCount(), 1)

	wf := workflows[0]
	is.Equal(wf.State(), types.Overview)

	name, err := String(ctx, wf, "name")
	is.NoErr(err)
	is.Equal(name, "WF1")
	is.Equal(lims.RequestCount(), 1) // the name is part of the listing

	_, err = Entities(ctx, wf, "stages")
	is.NoErr(err)
	is.Equal(lims.RequestCount(), 2) // stages need the full document
	is.Equal(wf.State(), types.OverviewOrDetails)

	_, err = s.List(ctx, "Workflow")
	is.NoErr(err)
	is.Equal(lims.RequestCount(), 3)
	is.Equal(wf.State(), types.OverviewOrDetails) // a later listing never downgrades the entity

	_, err = Entities(ctx, wf, "stages")
	is.NoErr(err)
	is.Equal(lims.RequestCount(), 3) // the listing should not have replaced the full document
}

func TestNestedListKeepsDocumentOrder(t *testing.T) {
	is, lims, s := setupTest(t)
	defer lims.Close()

	lims.Serve("configuration/workflows/1", workflowOne)

	wf, _ := s.ByID("Workflow", "1")
	stages, err := Entities(context.Background(), wf, "stages")
	is.NoErr(err)

	ids := []string{}
	for _, stage := range stages {
		ids = append(ids, stage.ID())
	}

	is.Equal(ids, []string{"3", "1", "2"})
}

func TestBagValuesAreUsedUntilTheDocumentIsLoaded(t *testing.T) {
	is, lims, s := setupTest(t)
	defer lims.Close()

	lims.Serve("configuration/workflows/1", workflowOne)
	lims.Serve("configuration/workflows/1/stages/3", stageThree)

	ctx := context.Background()

	wf, _ := s.ByID("Workflow", "1")
	stages, err := Entities(ctx, wf, "stages")
	is.NoErr(err)
	is.Equal(lims.RequestCount(), 1)

	stage := stages[0]
	is.Equal(stage.Kind().Name, "WorkflowStage")

	status, err := String(ctx, stage, "status")
	is.NoErr(err)
	is.Equal(status, "ACTIVE")

	name, err := String(ctx, stage, "name")
	is.NoErr(err)
	is.Equal(name, "Sequencing")
	is.Equal(lims.RequestCount(), 1) // bag values should not need a fetch

	index, err := Value[int](ctx, stage, "index")
	is.NoErr(err)
	is.Equal(index, 3)
	is.Equal(lims.RequestCount(), 2)

	name, err = String(ctx, stage, "name")
	is.NoErr(err)
	is.Equal(name, "Sequencing v2") // the loaded document wins over the bag

	status, err = String(ctx, stage, "status")
	is.NoErr(err)
	is.Equal(status, "ACTIVE") // status is only known from the listing
	is.Equal(lims.RequestCount(), 2)
}

func TestExpandedNestedListHandsOverFullDocuments(t *testing.T) {
	is, lims, s := setupTest(t)
	defer lims.Close()

	lims.Serve("configuration/protocols/7", protocolSeven)

	ctx := context.Background()

	protocol, _ := s.ByID("Protocol", "7")
	steps, err := Entities(ctx, protocol, "steps")
	is.NoErr(err)
	is.Equal(len(steps), 2)

	is.Equal(steps[1].State(), types.Details)

	name, err := String(ctx, steps[1], "name")
	is.NoErr(err)
	is.Equal(name, "Pooling")

	index, err := Value[int](ctx, steps[1], "index")
	is.NoErr(err)
	is.Equal(index, 2)

	is.Equal(lims.RequestCount(), 1)
}

func TestReferencesResolveThroughTheRegistry(t *testing.T) {
	is, lims, s := setupTest(t)
	defer lims.Close()

	lims.Serve("samples/S1", sampleS1)

	ctx := context.Background()

	sample, _ := s.ByID("Sample", "S1")
	project, err := Related(ctx, sample, "project")
	is.NoErr(err)

	same, _ := s.ByID("Project", "P1")
	is.True(project == same)
	is.Equal(project.State(), types.None)

	artifact, err := Related(ctx, sample, "artifact")
	is.NoErr(err)
	is.True(artifact == nil) // the sample has no artifact element

	is.Equal(lims.RequestCount(), 1)
}

func TestKindIsUpgradedButNeverDowngraded(t *testing.T) {
	is, lims, s := setupTest(t)
	defer lims.Close()

	uri := lims.APIRoot() + "/configuration/workflows/1/stages/3"

	stage, _ := s.Lookup("Stage", uri)
	is.Equal(stage.Kind().Name, "Stage")

	ws, _ := s.Lookup("WorkflowStage", uri)
	is.True(ws == stage)
	is.Equal(stage.Kind().Name, "WorkflowStage")

	_, _ = s.Lookup("Stage", uri)
	is.Equal(stage.Kind().Name, "WorkflowStage")

	_, err := s.Lookup("Project", uri)
	is.True(errors.Is(err, limserrors.ErrPrecondition)) // an unrelated kind must not share the uri
	is.Equal(stage.Kind().Name, "WorkflowStage")
}

func TestDecodingFailures(t *testing.T) {
	is, lims, s := setupTest(t)
	defer lims.Close()

	lims.Serve("configuration/workflows/1/stages/4", stageWithoutIndex)
	lims.Serve("configuration/protocols/8", protocolWithBadIndex)

	ctx := context.Background()

	stage, _ := s.Lookup("Stage", lims.APIRoot()+"/configuration/workflows/1/stages/4")
	_, err := stage.Get(ctx, "index")
	is.True(errors.Is(err, limserrors.ErrMissingField))

	var fe *limserrors.FieldError
	is.True(errors.As(err, &fe))
	is.Equal(fe.Entity, stage.URI()) // the error should name the entity

	protocol, _ := s.ByID("Protocol", "8")
	steps, err := Entities(ctx, protocol, "steps")
	is.NoErr(err)

	_, err = steps[0].Get(ctx, "index")
	is.True(errors.Is(err, limserrors.ErrMalformedValue))
}

func TestUnknownAttributeAndWrongValueType(t *testing.T) {
	is, lims, s := setupTest(t)
	defer lims.Close()

	lims.Serve("samples/S1", sampleS1)

	ctx := context.Background()
	sample, _ := s.ByID("Sample", "S1")

	_, err := sample.Get(ctx, "colour")
	is.True(errors.Is(err, limserrors.ErrUnknownAttribute))

	err = sample.Set(ctx, "colour", "blue")
	is.True(errors.Is(err, limserrors.ErrUnknownAttribute))

	_, err = Value[int](ctx, sample, "name")
	is.True(errors.Is(err, limserrors.ErrTypeMismatch))

	err = sample.Set(ctx, "name", 17)
	is.True(errors.Is(err, limserrors.ErrTypeMismatch))
}

func TestTransportErrorsReachTheCaller(t *testing.T) {
	is, lims, s := setupTest(t)
	defer lims.Close()

	sample, _ := s.ByID("Sample", "NOPE")
	_, err := sample.Get(context.Background(), "name")

	is.True(errors.Is(err, limserrors.ErrNotFound))
	is.Equal(sample.State(), types.None)
}

func TestDetachedEntitiesRefuseURIDependentOperations(t *testing.T) {
	is, lims, s := setupTest(t)
	defer lims.Close()

	ctx := context.Background()

	sample, err := s.NewDetached("Sample")
	is.NoErr(err)
	is.True(sample.Detached())
	is.Equal(sample.ID(), "")
	is.Equal(sample.String(), "Sample(new)")
	is.Equal(s.Len(), 0) // detached entities are not registered

	is.NoErr(sample.Set(ctx, "name", "Brand new"))
	name, err := String(ctx, sample, "name")
	is.NoErr(err)
	is.Equal(name, "Brand new")

	is.True(errors.Is(sample.Put(ctx), limserrors.ErrDetached))
	is.True(errors.Is(sample.Post(ctx), limserrors.ErrDetached))
	is.True(errors.Is(sample.SubmitTo(ctx, http.MethodPost, "advance"), limserrors.ErrDetached))
	is.True(errors.Is(sample.Refresh(ctx), limserrors.ErrDetached))

	_, err = s.Batch(ctx, []*Entity{sample})
	is.True(errors.Is(err, limserrors.ErrDetached))

	project, _ := s.NewDetached("Project")
	err = sample.Set(ctx, "project", project)
	is.True(errors.Is(err, limserrors.ErrDetached))

	is.Equal(lims.RequestCount(), 0)
}

func TestBatchHydratesEveryEntityWithOneCall(t *testing.T) {
	is, lims, s := setupTest(t)
	defer lims.Close()

	lims.Respond(http.MethodPost, "artifacts/batch/retrieve", http.StatusOK, artifactDetails)

	ctx := context.Background()

	a1, _ := s.ByID("Artifact", "A1")
	a2, _ := s.ByID("Artifact", "A2")

	hydrated, err := s.Batch(ctx, []*Entity{a1, a2})
	is.NoErr(err)
	is.Equal(len(hydrated), 2)
	is.True(hydrated[0] == a1)
	is.Equal(a2.State(), types.Details)

	name, err := String(ctx, a2, "name")
	is.NoErr(err)
	is.Equal(name, "Artifact Two")

	loc, err := Value[Location](ctx, a1, "location")
	is.NoErr(err)
	is.Equal(loc.Well, "A:1")
	is.Equal(loc.Container.ID(), "27-1")

	is.Equal(lims.RequestCount(), 1)

	body := lims.Requests()[0].Body
	is.True(strings.Contains(body, `uri="`+a1.URI()+`"`))
	is.True(strings.Contains(body, `rel="artifacts"`))
}

func TestCreatePostsTheDocumentAndRegistersTheResult(t *testing.T) {
	is, lims, s := setupTest(t)
	defer lims.Close()

	lims.Respond(http.MethodPost, "projects", http.StatusCreated, projectP9)

	ctx := context.Background()

	project, err := s.Create(ctx, "Project", map[string]any{
		"name":      "Genomes",
		"open_date": types.NewDate(2024, 5, 17),
	})
	is.NoErr(err)

	is.Equal(project.ID(), "P9")
	is.Equal(project.State(), types.Details)

	same, _ := s.ByID("Project", "P9")
	is.True(same == project)

	body := lims.Requests()[0].Body
	is.True(strings.Contains(body, "<prj:project"))
	is.True(strings.Contains(body, "<name>Genomes</name>"))
	is.True(strings.Contains(body, "<open-date>2024-05-17</open-date>"))

	is.Equal(lims.RequestCount(), 1)
}

func TestPutAdoptsTheDocumentReturnedByTheServer(t *testing.T) {
	is, lims, s := setupTest(t)
	defer lims.Close()

	lims.Serve("samples/S1", sampleS1)
	lims.Respond(http.MethodPut, "samples/S1", http.StatusOK, strings.Replace(sampleS1, "Sample One", "Sample Uno", 1))

	ctx := context.Background()
	sample, _ := s.ByID("Sample", "S1")

	is.NoErr(sample.Set(ctx, "name", "Sample 1"))
	is.NoErr(sample.Put(ctx))

	is.True(strings.Contains(lims.Requests()[1].Body, "<name>Sample 1</name>"))

	name, _ := String(ctx, sample, "name")
	is.Equal(name, "Sample Uno")
	is.Equal(lims.RequestCount(), 2)
}

func TestUserFieldsThroughTheEntity(t *testing.T) {
	is, lims, s := setupTest(t)
	defer lims.Close()

	lims.Serve("samples/S1", sampleS1)

	ctx := context.Background()
	sample, _ := s.ByID("Sample", "S1")

	fields, err := UserFields(ctx, sample, "udf")
	is.NoErr(err)
	is.Equal(fields.Names(), []string{"Concentration", "Passed"})

	conc, _ := fields.Get("Concentration")
	is.Equal(conc, 1.5)

	is.NoErr(sample.Set(ctx, "udf", map[string]any{"Volume": 20}))

	fields, _ = UserFields(ctx, sample, "udf")
	is.Equal(fields.Names(), []string{"Volume"})
	is.Equal(fields.GetOr("Volume", 0), 20)
}

func TestContainerPlacementsAndReagentLabels(t *testing.T) {
	is, lims, s := setupTest(t)
	defer lims.Close()

	lims.Serve("containers/27-1", container27)
	lims.Respond(http.MethodPost, "artifacts/batch/retrieve", http.StatusOK, artifactDetails)

	ctx := context.Background()

	container, _ := s.ByID("Container", "27-1")
	placements, err := Value[map[string]*Entity](ctx, container, "placements")
	is.NoErr(err)
	is.Equal(len(placements), 2)
	is.Equal(placements["B:1"].ID(), "A2")

	_, err = s.Batch(ctx, []*Entity{placements["A:1"], placements["B:1"]})
	is.NoErr(err)

	a1 := placements["A:1"]
	labels, err := Value[[]string](ctx, a1, "reagent_labels")
	is.NoErr(err)
	is.Equal(labels, []string{"Index 1"})

	is.NoErr(a1.Set(ctx, "reagent_labels", []string{"Index 7", "Index 8"}))
	labels, _ = Value[[]string](ctx, a1, "reagent_labels")
	is.Equal(labels, []string{"Index 7", "Index 8"})

	is.Equal(lims.RequestCount(), 2)
}

func TestCatalogRejectsUnknownReferences(t *testing.T) {
	is := is.New(t)

	_, err := NewCatalog(
		NewKind("Sample", Attribute("project", Ref("project", "Project", types.Details))),
	)
	is.True(err != nil)
	is.True(strings.Contains(err.Error(), "kind Sample refers to unknown kind Project"))
}

func TestCatalogRejectsDuplicatesAndBadInheritance(t *testing.T) {
	is := is.New(t)

	_, err := NewCatalog(NewKind("Sample"), NewKind("Sample"))
	is.True(err != nil)

	_, err = NewCatalog(NewKind("A", Extends("B")), NewKind("B", Extends("A")))
	is.True(err != nil)
	is.True(strings.Contains(err.Error(), "extends itself"))

	_, err = NewCatalog(NewKind("A", Extends("Missing")))
	is.True(err != nil)
}

func TestCatalogCopiesInheritedAttributes(t *testing.T) {
	is := is.New(t)

	c, err := NewCatalog(testKinds()...)
	is.NoErr(err)

	ws, err := c.Kind("WorkflowStage")
	is.NoErr(err)
	is.Equal(ws.Attributes(), []string{"status", "name", "index"})
	is.Equal(ws.Prefix, "stg")

	is.True(c.IsA("WorkflowStage", "Stage"))
	is.True(!c.IsA("Stage", "WorkflowStage"))

	_, err = c.Kind("Unicorn")
	is.True(errors.Is(err, limserrors.ErrPrecondition))
}

func setupTest(t *testing.T) (*is.I, *fakelims.Server, *Session) {
	is := is.New(t)
	lims := fakelims.New()

	c, err := NewCatalog(testKinds()...)
	is.NoErr(err)

	return is, lims, NewSession(client.NewDocumentStore(), c, lims.APIRoot())
}

func testKinds() []*Kind {
	return []*Kind{
		NewKind("Sample", Resource("samples"), Prefix("smp"),
			Attribute("name", Text("name", types.Details)),
			Attribute("date_received", DateText("date-received", types.Details)),
			Attribute("project", Ref("project", "Project", types.Details)),
			Attribute("artifact", Ref("artifact", "Artifact", types.Details)),
			Attribute("udf", UDF("", types.Details)),
		),
		NewKind("Project", Resource("projects"), Prefix("prj"),
			Attribute("name", Text("name", types.Details)),
			Attribute("open_date", DateText("open-date", types.Details)),
		),
		NewKind("Artifact", Resource("artifacts"), Prefix("art"),
			Attribute("name", Text("name", types.Details)),
			Attribute("location", LocationOf("location", "Container", types.Details)),
			Attribute("reagent_labels", ReagentLabels(types.Details)),
		),
		NewKind("Container", Resource("containers"), Prefix("con"),
			Attribute("name", Text("name", types.Details)),
			Attribute("placements", Placements("placement", "Artifact", types.Details)),
		),
		NewKind("Workflow", Resource("configuration/workflows"), Prefix("wkfcnf"),
			Attribute("name", Attr("name", types.OverviewOrDetails)),
			Attribute("stages", NestedRefList("stage", "WorkflowStage", "stages", types.Details, WithBag("name", "status"))),
		),
		NewKind("WorkflowStage", Extends("Stage"),
			Attribute("status", FromBag()),
		),
		NewKind("Stage", Prefix("stg"),
			Attribute("name", Attr("name", types.Details)),
			Attribute("index", IntAttr("index", types.Details)),
		),
		NewKind("Protocol", Resource("configuration/protocols"), Prefix("protcnf"),
			Attribute("name", Attr("name", types.OverviewOrDetails)),
			Attribute("steps", NestedRefList("step", "ProtocolStep", "steps", types.Details, Expanded())),
		),
		NewKind("ProtocolStep", Prefix("protstepcnf"), Tag("step"),
			Attribute("name", Attr("name", types.Details)),
			Attribute("index", Int("protocol-step-index", types.Details)),
		),
	}
}

const sampleS1 string = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<smp:sample xmlns:udf="http://genologics.com/ri/userdefined" xmlns:smp="http://genologics.com/ri/sample" uri="{api}/samples/S1" limsid="S1">
  <name>Sample One</name>
  <date-received>2024-03-01</date-received>
  <project uri="{api}/projects/P1" limsid="P1"/>
  <udf:field type="Numeric" name="Concentration">1.5</udf:field>
  <udf:field type="Boolean" name="Passed">true</udf:field>
</smp:sample>`

const projectP9 string = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<prj:project xmlns:prj="http://genologics.com/ri/project" uri="{api}/projects/P9" limsid="P9">
  <name>Genomes</name>
  <open-date>2024-05-17</open-date>
</prj:project>`

const workflowListing string = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<wkfcnf:workflows xmlns:wkfcnf="http://genologics.com/ri/workflowconfiguration">
  <workflow status="ACTIVE" uri="{api}/configuration/workflows/1" name="WF1"/>
  <workflow status="ARCHIVED" uri="{api}/configuration/workflows/2" name="WF2"/>
</wkfcnf:workflows>`

const workflowOne string = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<wkfcnf:workflow xmlns:wkfcnf="http://genologics.com/ri/workflowconfiguration" status="ACTIVE" uri="{api}/configuration/workflows/1" name="WF1">
  <stages>
    <stage status="ACTIVE" name="Sequencing" uri="{api}/configuration/workflows/1/stages/3"/>
    <stage status="COMPLETE" name="Library prep" uri="{api}/configuration/workflows/1/stages/1"/>
    <stage status="QUEUED" name="QC" uri="{api}/configuration/workflows/1/stages/2"/>
  </stages>
</wkfcnf:workflow>`

const stageThree string = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<stg:stage xmlns:stg="http://genologics.com/ri/stage" index="3" name="Sequencing v2" uri="{api}/configuration/workflows/1/stages/3"/>`

const stageWithoutIndex string = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<stg:stage xmlns:stg="http://genologics.com/ri/stage" name="Broken" uri="{api}/configuration/workflows/1/stages/4"/>`

const protocolSeven string = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<protcnf:protocol xmlns:protcnf="http://genologics.com/ri/protocolconfiguration" name="Library" uri="{api}/configuration/protocols/7">
  <steps>
    <step name="Fragmentation" uri="{api}/configuration/protocols/7/steps/11">
      <protocol-step-index>1</protocol-step-index>
    </step>
    <step name="Pooling" uri="{api}/configuration/protocols/7/steps/12">
      <protocol-step-index>2</protocol-step-index>
    </step>
  </steps>
</protcnf:protocol>`

const protocolWithBadIndex string = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<protcnf:protocol xmlns:protcnf="http://genologics.com/ri/protocolconfiguration" name="Broken" uri="{api}/configuration/protocols/8">
  <steps>
    <step name="Fragmentation" uri="{api}/configuration/protocols/8/steps/13">
      <protocol-step-index>first</protocol-step-index>
    </step>
  </steps>
</protcnf:protocol>`

const artifactDetails string = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<art:details xmlns:art="http://genologics.com/ri/artifact">
  <art:artifact uri="{api}/artifacts/A1" limsid="A1">
    <name>Artifact One</name>
    <location>
      <container uri="{api}/containers/27-1" limsid="27-1"/>
      <value>A:1</value>
    </location>
    <reagent-label name="Index 1"/>
  </art:artifact>
  <art:artifact uri="{api}/artifacts/A2" limsid="A2">
    <name>Artifact Two</name>
    <location>
      <container uri="{api}/containers/27-1" limsid="27-1"/>
      <value>B:1</value>
    </location>
  </art:artifact>
</art:details>`

const container27 string = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<con:container xmlns:con="http://genologics.com/ri/container" uri="{api}/containers/27-1" limsid="27-1">
  <name>Plate 27</name>
  <placement uri="{api}/artifacts/A1" limsid="A1"><value>A:1</value></placement>
  <placement uri="{api}/artifacts/A2" limsid="A2"><value>B:1</value></placement>
</con:container>`
