package lims

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/withrocks/genologics/pkg/lims/catalog"
	"github.com/withrocks/genologics/pkg/lims/client"
	"github.com/withrocks/genologics/pkg/lims/entities"
	"github.com/withrocks/genologics/pkg/lims/errors"
	"github.com/withrocks/genologics/pkg/lims/xmlns"
)

const DefaultVersion string = "v2"

// Lims is the entry point to a LIMS server. Every entity it hands out
// belongs to the same session, so one uri always maps to one entity.
type Lims struct {
	baseURI  string
	version  string
	username string
	password string
	debug    string

	transport http.RoundTripper

	store   client.DocumentStore
	session *entities.Session
}

func Version(version string) func(*Lims) {
	return func(l *Lims) {
		if version != "" {
			l.version = version
		}
	}
}

func Credentials(username, password string) func(*Lims) {
	return func(l *Lims) {
		l.username = username
		l.password = password
	}
}

func Debug(enabled string) func(*Lims) {
	return func(l *Lims) {
		l.debug = enabled
	}
}

func Transport(rt http.RoundTripper) func(*Lims) {
	return func(l *Lims) {
		l.transport = rt
	}
}

// New connects to the LIMS at baseURI, which excludes the api and version
// parts, such as https://lims.example.org:8443
func New(baseURI string, options ...func(*Lims)) (*Lims, error) {
	if baseURI == "" {
		return nil, errors.NewPreconditionError("a base uri is required")
	}

	l := &Lims{
		baseURI: strings.TrimSuffix(baseURI, "/"),
		version: DefaultVersion,
		debug:   "false",
	}

	for _, option := range options {
		option(l)
	}

	return l.connect()
}

func (l *Lims) connect() (*Lims, error) {
	c, err := catalog.New()
	if err != nil {
		return nil, err
	}

	if l.transport != nil {
		l.store = client.NewDocumentStore(client.Debug(l.debug), client.BasicAuth(l.username, l.password), client.Transport(l.transport))
	} else {
		l.store = client.NewDocumentStore(client.Debug(l.debug), client.BasicAuth(l.username, l.password))
	}

	l.session = entities.NewSession(l.store, c, l.APIRoot())

	return l, nil
}

func (l *Lims) BaseURI() string {
	return l.baseURI
}

// APIRoot is the uri below which every resource of the configured api
// version lives.
func (l *Lims) APIRoot() string {
	return l.baseURI + "/api/" + l.version
}

func (l *Lims) Session() *entities.Session {
	return l.session
}

// RequestCount is the number of http requests made so far.
func (l *Lims) RequestCount() int {
	return l.store.RequestCount()
}

// Get returns the entity of a kind with the given id, without fetching it.
func (l *Lims) Get(kind, id string) (*entities.Entity, error) {
	return l.session.ByID(kind, id)
}

func (l *Lims) Batch(ctx context.Context, list []*entities.Entity) ([]*entities.Entity, error) {
	return l.session.Batch(ctx, list)
}

func (l *Lims) Labs(ctx context.Context, params ...client.RequestDecoratorFunc) ([]*entities.Entity, error) {
	return l.session.List(ctx, catalog.LabTypeName, params...)
}

func (l *Lims) Researchers(ctx context.Context, params ...client.RequestDecoratorFunc) ([]*entities.Entity, error) {
	return l.session.List(ctx, catalog.ResearcherTypeName, params...)
}

func (l *Lims) Projects(ctx context.Context, params ...client.RequestDecoratorFunc) ([]*entities.Entity, error) {
	return l.session.List(ctx, catalog.ProjectTypeName, params...)
}

func (l *Lims) Samples(ctx context.Context, params ...client.RequestDecoratorFunc) ([]*entities.Entity, error) {
	return l.session.List(ctx, catalog.SampleTypeName, params...)
}

// SampleCount counts the samples of a listing, over every page, without
// building any entities.
func (l *Lims) SampleCount(ctx context.Context, params ...client.RequestDecoratorFunc) (int, error) {
	return l.session.Count(ctx, catalog.SampleTypeName, params...)
}

func (l *Lims) Artifacts(ctx context.Context, params ...client.RequestDecoratorFunc) ([]*entities.Entity, error) {
	return l.session.List(ctx, catalog.ArtifactTypeName, params...)
}

func (l *Lims) Containers(ctx context.Context, params ...client.RequestDecoratorFunc) ([]*entities.Entity, error) {
	return l.session.List(ctx, catalog.ContainerTypeName, params...)
}

func (l *Lims) Processes(ctx context.Context, params ...client.RequestDecoratorFunc) ([]*entities.Entity, error) {
	return l.session.List(ctx, catalog.ProcessTypeName, params...)
}

func (l *Lims) Workflows(ctx context.Context, params ...client.RequestDecoratorFunc) ([]*entities.Entity, error) {
	return l.session.List(ctx, catalog.WorkflowTypeName, params...)
}

func (l *Lims) Protocols(ctx context.Context, params ...client.RequestDecoratorFunc) ([]*entities.Entity, error) {
	return l.session.List(ctx, catalog.ProtocolTypeName, params...)
}

func (l *Lims) ReagentTypes(ctx context.Context, params ...client.RequestDecoratorFunc) ([]*entities.Entity, error) {
	return l.session.List(ctx, catalog.ReagentTypeTypeName, params...)
}

func (l *Lims) Udfs(ctx context.Context, params ...client.RequestDecoratorFunc) ([]*entities.Entity, error) {
	return l.session.List(ctx, catalog.UdfconfigTypeName, params...)
}

// CheckVersion verifies that the server offers the configured api version.
func (l *Lims) CheckVersion(ctx context.Context) error {
	doc, err := l.store.Fetch(ctx, l.baseURI+"/api")
	if err != nil {
		return fmt.Errorf("failed to read api versions: %w", err)
	}

	root := doc.Root()
	if root == nil || !xmlns.Match(root, "ver:versions") {
		return fmt.Errorf("%w: %s/api is not a list of versions", errors.ErrBadResponse, l.baseURI)
	}

	offered := []string{}
	for _, v := range xmlns.Children(root, "version") {
		major := v.SelectAttrValue("major", "")
		if major == l.version {
			return nil
		}
		offered = append(offered, major)
	}

	logging.GetFromContext(ctx).Debug("api version not offered", "version", l.version, "offered", strings.Join(offered, ","))

	return errors.NewPreconditionError(fmt.Sprintf("version mismatch: %s is not one of [%s]", l.version, strings.Join(offered, ", ")))
}

// FileContents downloads the content of the file with the given id.
func (l *Lims) FileContents(ctx context.Context, id string) ([]byte, error) {
	if id == "" {
		return nil, errors.NewPreconditionError("a file id is required")
	}
	return l.store.Download(ctx, l.session.URI("files", id, "download"))
}
