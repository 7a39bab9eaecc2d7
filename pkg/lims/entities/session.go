package entities

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/beevik/etree"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/withrocks/genologics/pkg/lims/client"
	"github.com/withrocks/genologics/pkg/lims/errors"
	"github.com/withrocks/genologics/pkg/lims/types"
	"github.com/withrocks/genologics/pkg/lims/xmlns"
)

// Session owns the identity registry: within one session there is at most
// one entity per uri. A session is not safe for concurrent use.
type Session struct {
	id      string
	store   client.DocumentStore
	catalog *Catalog
	apiRoot string

	registry map[string]*Entity
}

// NewSession creates a session resolving ids below apiRoot, e.g.
// "https://lims.example.com/api/v2".
func NewSession(store client.DocumentStore, catalog *Catalog, apiRoot string) *Session {
	return &Session{
		id:       uuid.NewString(),
		store:    store,
		catalog:  catalog,
		apiRoot:  strings.TrimSuffix(apiRoot, "/"),
		registry: map[string]*Entity{},
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Store() client.DocumentStore {
	return s.store
}

func (s *Session) Catalog() *Catalog {
	return s.catalog
}

func (s *Session) APIRoot() string {
	return s.apiRoot
}

// URI joins path segments onto the api root.
func (s *Session) URI(segments ...string) string {
	return s.apiRoot + "/" + strings.Join(segments, "/")
}

// Len is the number of registered entities.
func (s *Session) Len() int {
	return len(s.registry)
}

// Registered returns the entity registered for uri, if any.
func (s *Session) Registered(uri string) (*Entity, bool) {
	e, ok := s.registry[uri]
	return e, ok
}

// Lookup returns the entity registered for uri, creating an empty one of
// the given kind if there is none.
func (s *Session) Lookup(kind, uri string) (*Entity, error) {
	k, err := s.catalog.Kind(kind)
	if err != nil {
		return nil, err
	}
	return s.lookup(k, uri, nil)
}

func (s *Session) lookup(k *Kind, uri string, bag *types.Bag) (*Entity, error) {
	if uri == "" {
		return nil, errors.NewPreconditionError(fmt.Sprintf("a %s needs a uri or an id unless it is created as new", k.Name))
	}

	if e, ok := s.registry[uri]; ok {
		// the entity keeps its identity, but may learn that it is a more specific kind
		if e.kind != k && s.catalog.IsA(k.Name, e.kind.Name) {
			e.kind = k
		} else if e.kind != k && !s.catalog.IsA(e.kind.Name, k.Name) {
			return nil, errors.NewPreconditionError(fmt.Sprintf("%s is registered as a %s, not a %s", uri, e.kind.Name, k.Name))
		}
		e.offer(bag)
		return e, nil
	}

	e := &Entity{
		session: s,
		kind:    k,
		uri:     uri,
		bag:     bag,
	}
	s.registry[uri] = e

	return e, nil
}

// ByID resolves an entity from the id within the collection of its kind.
func (s *Session) ByID(kind, id string) (*Entity, error) {
	k, err := s.catalog.Kind(kind)
	if err != nil {
		return nil, err
	}

	if k.Resource == "" {
		return nil, errors.NewPreconditionError(fmt.Sprintf("%s entities cannot be resolved by id", k.Name))
	}

	if id == "" {
		return nil, errors.NewPreconditionError(fmt.Sprintf("a %s needs a uri or an id unless it is created as new", k.Name))
	}

	return s.lookup(k, s.URI(k.Resource, id), nil)
}

// NewDetached creates an entity that does not exist on the server yet. It
// is not registered and has an empty document rooted at the tag of its kind.
func (s *Session) NewDetached(kind string) (*Entity, error) {
	return s.newDetached(kind, "")
}

func (s *Session) newDetached(kind, rootTag string) (*Entity, error) {
	k, err := s.catalog.Kind(kind)
	if err != nil {
		return nil, err
	}

	if rootTag == "" {
		rootTag = k.RootTag()
	} else if k.Prefix != "" {
		rootTag = k.Prefix + ":" + rootTag
	}

	return &Entity{
		session: s,
		kind:    k,
		doc:     xmlns.NewRoot(rootTag),
		state:   types.Details,
	}, nil
}

type creation struct {
	rootTag    string
	decorators []func(*etree.Element) error
}

type CreateOption func(*creation)

// CreationTag roots the document of the new entity at another tag than
// the one of its kind, e.g. "samplecreation".
func CreationTag(tag string) CreateOption {
	return func(c *creation) {
		c.rootTag = tag
	}
}

// Decorate lets the caller add elements that no attribute binds before the
// document is posted.
func Decorate(decorator func(root *etree.Element) error) CreateOption {
	return func(c *creation) {
		c.decorators = append(c.decorators, decorator)
	}
}

// Create builds a new entity from attribute values, posts it to the
// collection of its kind and registers it under the uri the server assigned.
func (s *Session) Create(ctx context.Context, kind string, values map[string]any, options ...CreateOption) (*Entity, error) {
	cr := &creation{}
	for _, option := range options {
		option(cr)
	}

	e, err := s.newDetached(kind, cr.rootTag)
	if err != nil {
		return nil, err
	}

	if e.kind.Resource == "" {
		return nil, errors.NewPreconditionError(fmt.Sprintf("%s entities cannot be created", e.kind.Name))
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := e.Set(ctx, name, values[name]); err != nil {
			return nil, err
		}
	}

	for _, decorate := range cr.decorators {
		if err := decorate(e.Root()); err != nil {
			return nil, err
		}
	}

	doc, err := s.store.Submit(ctx, s.URI(e.kind.Resource), e.doc, http.MethodPost)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", e.kind.Name, err)
	}

	uri := doc.Root().SelectAttrValue("uri", "")
	if uri == "" {
		return nil, errors.NewMissingFieldError(e.kind.Name, "uri")
	}

	created, err := s.lookup(e.kind, uri, nil)
	if err != nil {
		return nil, err
	}

	created.doc = doc
	created.state |= types.Details

	logging.GetFromContext(ctx).Debug("created entity", "session", s.id, "uri", uri, "kind", e.kind.Name)

	return created, nil
}

// Hydrate registers, or looks up, the entity a fragment describes and hands
// the fragment to it as its document with the given state.
func (s *Session) Hydrate(kind string, fragment *etree.Element, state types.FetchState) (*Entity, error) {
	k, err := s.catalog.Kind(kind)
	if err != nil {
		return nil, err
	}
	return s.hydrate(k, fragment, state, nil)
}

func (s *Session) hydrate(k *Kind, fragment *etree.Element, state types.FetchState, bag *types.Bag) (*Entity, error) {
	uri := fragment.SelectAttrValue("uri", "")
	if uri == "" {
		return nil, errors.NewMissingFieldError(k.Name, fragment.Tag+"@uri")
	}

	e, err := s.lookup(k, uri, bag)
	if err != nil {
		return nil, err
	}

	e.hydrate(fragment, state)

	return e, nil
}

// Batch loads the full documents of many entities of one kind with a single
// batch retrieve call. The returned entities follow the order of the response.
func (s *Session) Batch(ctx context.Context, entities []*Entity) ([]*Entity, error) {
	if len(entities) == 0 {
		return []*Entity{}, nil
	}

	k := entities[0].kind
	if k.Resource == "" {
		return nil, errors.NewPreconditionError(fmt.Sprintf("%s entities cannot be retrieved in batch", k.Name))
	}

	links := xmlns.NewRoot("ri:links")
	for _, e := range entities {
		if e.uri == "" {
			return nil, errors.NewDetachedError("batch retrieve", e.kind.Name)
		}

		link := links.Root().CreateElement("link")
		link.CreateAttr("uri", e.uri)
		link.CreateAttr("rel", k.Resource)
	}

	doc, err := s.store.Submit(ctx, s.URI(k.Resource, "batch/retrieve"), links, http.MethodPost)
	if err != nil {
		return nil, fmt.Errorf("failed to batch retrieve %d %s entities: %w", len(entities), k.Name, err)
	}

	var result error
	hydrated := make([]*Entity, 0, len(entities))

	for _, fragment := range doc.Root().ChildElements() {
		e, err := s.hydrate(k, fragment, types.Details, nil)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		hydrated = append(hydrated, e)
	}

	if result != nil {
		return hydrated, result
	}

	return hydrated, nil
}

// List returns the entities of a listing of the collection of a kind, with
// every page followed. Each entity gets the listing node as its overview.
func (s *Session) List(ctx context.Context, kind string, params ...client.RequestDecoratorFunc) ([]*Entity, error) {
	k, err := s.catalog.Kind(kind)
	if err != nil {
		return nil, err
	}

	if k.Resource == "" {
		return nil, errors.NewPreconditionError(fmt.Sprintf("%s entities cannot be listed", k.Name))
	}

	nodes, err := s.store.List(ctx, s.URI(k.Resource), k.Tag, params...)
	if err != nil {
		return nil, err
	}

	result := make([]*Entity, 0, len(nodes))
	for _, node := range nodes {
		e, err := s.hydrate(k, node, types.Overview, nil)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}

	return result, nil
}

// Count returns the number of members of a listing without building entities.
func (s *Session) Count(ctx context.Context, kind string, params ...client.RequestDecoratorFunc) (int, error) {
	k, err := s.catalog.Kind(kind)
	if err != nil {
		return 0, err
	}

	if k.Resource == "" {
		return 0, errors.NewPreconditionError(fmt.Sprintf("%s entities cannot be listed", k.Name))
	}

	nodes, err := s.store.List(ctx, s.URI(k.Resource), k.Tag, params...)
	if err != nil {
		return 0, err
	}

	return len(nodes), nil
}
