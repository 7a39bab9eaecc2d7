package catalog

import (
	"context"
	"fmt"
	"net/http"

	"github.com/beevik/etree"
	"github.com/withrocks/genologics/pkg/lims/entities"
	"github.com/withrocks/genologics/pkg/lims/errors"
	"github.com/withrocks/genologics/pkg/lims/types"
	"github.com/withrocks/genologics/pkg/lims/xmlns"
)

// Advance moves a step to its next state. The step adopts the document
// that the server answers with.
func Advance(ctx context.Context, step *entities.Entity) error {
	if step.Detached() {
		return errors.NewDetachedError("advance", step.Kind().Name)
	}

	if err := step.Ensure(ctx, types.Details); err != nil {
		return err
	}

	return step.SubmitTo(ctx, http.MethodPost, "advance")
}

func ReagentLots(ctx context.Context, step *entities.Entity) ([]*entities.Entity, error) {
	lots, err := entities.Related(ctx, step, "reagent_lots")
	if err != nil || lots == nil {
		return []*entities.Entity{}, err
	}
	return entities.Entities(ctx, lots, "reagent_lots")
}

// SetReagentLots replaces the reagent lots used by a step and posts them.
func SetReagentLots(ctx context.Context, step *entities.Entity, reagentLots []*entities.Entity) error {
	if step.Detached() {
		return errors.NewDetachedError("attach reagent lots", step.Kind().Name)
	}

	for _, lot := range reagentLots {
		if lot.Detached() {
			return errors.NewDetachedError("attach reagent lots", lot.Kind().Name)
		}
	}

	lots, err := entities.Related(ctx, step, "reagent_lots")
	if err != nil {
		return err
	}
	if lots == nil {
		return errors.NewMissingFieldError(step.URI(), "reagent-lots")
	}

	if err := lots.Ensure(ctx, types.Details); err != nil {
		return err
	}

	root := lots.Root()
	container := xmlns.Child(root, "reagent-lots")
	if container == nil {
		container = root.CreateElement("reagent-lots")
	}

	for _, c := range container.ChildElements() {
		container.RemoveChild(c)
	}

	for _, lot := range reagentLots {
		el := container.CreateElement("reagent-lot")
		el.CreateAttr("uri", lot.URI())
		el.CreateAttr("limsid", lot.ID())
	}

	if err := lots.Post(ctx); err != nil {
		return fmt.Errorf("failed to set reagent lots of %s: %w", step, err)
	}

	return nil
}

type NextAction struct {
	Artifact   *entities.Entity
	Action     string
	Step       *entities.Entity
	ReworkStep *entities.Entity
}

func stepActions(ctx context.Context, step *entities.Entity) (*entities.Entity, error) {
	actions, err := entities.Related(ctx, step, "actions")
	if err != nil {
		return nil, err
	}
	if actions == nil {
		return nil, errors.NewMissingFieldError(step.URI(), "actions")
	}
	return actions, actions.Ensure(ctx, types.Details)
}

// NextActions lists what happens to each artifact once the step completes.
func NextActions(ctx context.Context, step *entities.Entity) ([]NextAction, error) {
	actions, err := stepActions(ctx, step)
	if err != nil {
		return nil, err
	}

	s := step.Session()
	result := []NextAction{}

	for _, node := range xmlns.FindAll(actions.Root(), "next-actions/next-action") {
		na := NextAction{Action: node.SelectAttrValue("action", "")}

		if na.Artifact, err = s.Lookup(ArtifactTypeName, node.SelectAttrValue("artifact-uri", "")); err != nil {
			return nil, err
		}

		if uri := node.SelectAttrValue("step-uri", ""); uri != "" {
			if na.Step, err = s.Lookup(ProtocolStepTypeName, uri); err != nil {
				return nil, err
			}
		}

		if uri := node.SelectAttrValue("rework-step-uri", ""); uri != "" {
			if na.ReworkStep, err = s.Lookup(ProtocolStepTypeName, uri); err != nil {
				return nil, err
			}
		}

		result = append(result, na)
	}

	return result, nil
}

const (
	EscalationPending  string = "Pending"
	EscalationReviewed string = "Reviewed"
)

// Escalation is a request, made in a step, for someone to review some of
// its artifacts.
type Escalation struct {
	Status    string
	Author    *entities.Entity
	Request   string
	Reviewer  *entities.Entity
	Answer    string
	Artifacts []*entities.Entity
}

// EscalationOf returns the escalation of a step, or nil if nothing in the
// step has been escalated. The escalated artifacts are loaded with one
// batch call.
func EscalationOf(ctx context.Context, step *entities.Entity) (*Escalation, error) {
	actions, err := stepActions(ctx, step)
	if err != nil {
		return nil, err
	}

	node := xmlns.Child(actions.Root(), "escalation")
	if node == nil {
		return nil, nil
	}

	s := step.Session()
	esc := &Escalation{Status: EscalationPending, Artifacts: []*entities.Entity{}}

	if request := xmlns.Child(node, "request"); request != nil {
		if esc.Author, err = lookupAuthor(s, request); err != nil {
			return nil, err
		}
		esc.Request = childText(request, "comment")
	}

	if review := xmlns.Child(node, "review"); review != nil {
		esc.Status = EscalationReviewed
		if esc.Reviewer, err = lookupAuthor(s, review); err != nil {
			return nil, err
		}
		esc.Answer = childText(review, "comment")
	}

	for _, a := range xmlns.FindAll(node, "escalated-artifacts/escalated-artifact") {
		artifact, err := s.Lookup(ArtifactTypeName, a.SelectAttrValue("uri", ""))
		if err != nil {
			return nil, err
		}
		esc.Artifacts = append(esc.Artifacts, artifact)
	}

	if len(esc.Artifacts) > 0 {
		if _, err := s.Batch(ctx, esc.Artifacts); err != nil {
			return nil, fmt.Errorf("failed to resolve escalated artifacts of %s: %w", step, err)
		}
	}

	return esc, nil
}

func lookupAuthor(s *entities.Session, node *etree.Element) (*entities.Entity, error) {
	author := xmlns.Child(node, "author")
	if author == nil || author.SelectAttrValue("uri", "") == "" {
		return nil, nil
	}
	return s.Lookup(ResearcherTypeName, author.SelectAttrValue("uri", ""))
}

func childText(node *etree.Element, tag string) string {
	if c := xmlns.Child(node, tag); c != nil {
		return c.Text()
	}
	return ""
}

// SetNextActions changes the action of every listed artifact in the local
// actions document of the step. Put the actions entity to save them.
func SetNextActions(ctx context.Context, step *entities.Entity, nextActions []NextAction) (*entities.Entity, error) {
	actions, err := stepActions(ctx, step)
	if err != nil {
		return nil, err
	}

	byArtifact := map[string]NextAction{}
	for _, na := range nextActions {
		if na.Artifact != nil {
			byArtifact[na.Artifact.URI()] = na
		}
	}

	for _, node := range xmlns.FindAll(actions.Root(), "next-actions/next-action") {
		na, ok := byArtifact[node.SelectAttrValue("artifact-uri", "")]
		if !ok || na.Action == "" {
			continue
		}

		node.CreateAttr("action", na.Action)

		if na.Step != nil {
			node.CreateAttr("step-uri", na.Step.URI())
		}
	}

	return actions, nil
}

// Placement is an output artifact of a step and the well it goes to. The
// location has no container for outputs that have not been placed.
type Placement struct {
	Artifact *entities.Entity
	Location entities.Location
}

func stepPlacements(ctx context.Context, step *entities.Entity) (*entities.Entity, error) {
	placements, err := entities.Related(ctx, step, "placements")
	if err != nil {
		return nil, err
	}
	if placements == nil {
		return nil, errors.NewMissingFieldError(step.URI(), "placements")
	}
	return placements, placements.Ensure(ctx, types.Details)
}

func PlacementList(ctx context.Context, step *entities.Entity) ([]Placement, error) {
	placements, err := stepPlacements(ctx, step)
	if err != nil {
		return nil, err
	}

	s := step.Session()
	result := []Placement{}

	for _, node := range xmlns.FindAll(placements.Root(), "output-placements/output-placement") {
		p := Placement{}

		if p.Artifact, err = s.Lookup(ArtifactTypeName, node.SelectAttrValue("uri", "")); err != nil {
			return nil, err
		}

		if c := xmlns.Find(node, "location/container"); c != nil {
			if p.Location.Container, err = s.Lookup(ContainerTypeName, c.SelectAttrValue("uri", "")); err != nil {
				return nil, err
			}
			if well := xmlns.Find(node, "location/value"); well != nil {
				p.Location.Well = well.Text()
			}
		}

		result = append(result, p)
	}

	return result, nil
}

// SetPlacementList moves output artifacts of a step to new wells and selects
// the containers they end up in. Post the returned placements entity to save.
func SetPlacementList(ctx context.Context, step *entities.Entity, list []Placement) (*entities.Entity, error) {
	placements, err := stepPlacements(ctx, step)
	if err != nil {
		return nil, err
	}

	byArtifact := map[string]Placement{}
	for _, p := range list {
		if p.Artifact == nil || p.Location.Container == nil {
			continue
		}
		if p.Location.Container.Detached() {
			return nil, errors.NewDetachedError("place artifact", p.Location.Container.Kind().Name)
		}
		byArtifact[p.Artifact.URI()] = p
	}

	selected := []*entities.Entity{}
	seen := map[*entities.Entity]bool{}

	for _, node := range xmlns.FindAll(placements.Root(), "output-placements/output-placement") {
		p, ok := byArtifact[node.SelectAttrValue("uri", "")]
		if !ok {
			continue
		}

		c := p.Location.Container
		if !seen[c] {
			seen[c] = true
			selected = append(selected, c)
		}

		loc := xmlns.Child(node, "location")
		if loc == nil {
			loc = node.CreateElement("location")
		}

		container := xmlns.Child(loc, "container")
		if container == nil {
			container = loc.CreateElement("container")
		}
		container.CreateAttr("uri", c.URI())
		container.CreateAttr("limsid", c.ID())

		well := xmlns.Child(loc, "value")
		if well == nil {
			well = loc.CreateElement("value")
		}
		well.SetText(p.Location.Well)
	}

	sc := xmlns.Child(placements.Root(), "selected-containers")
	if sc == nil {
		sc = placements.Root().CreateElement("selected-containers")
	}

	for _, c := range sc.ChildElements() {
		sc.RemoveChild(c)
	}

	for _, c := range selected {
		sc.CreateElement("container").CreateAttr("uri", c.URI())
	}

	return placements, nil
}
