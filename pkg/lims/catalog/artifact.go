package catalog

import (
	"context"
	"net/url"

	"github.com/withrocks/genologics/pkg/lims/entities"
)

// ArtifactState returns the state query parameter of an artifact uri, or an
// empty string for stateless artifact uris.
func ArtifactState(a *entities.Entity) string {
	u, err := url.Parse(a.URI())
	if err != nil {
		return ""
	}
	return u.Query().Get("state")
}

// Stateless returns the artifact independent of its state. Artifacts without
// state are returned as they are.
func Stateless(a *entities.Entity) (*entities.Entity, error) {
	u, err := url.Parse(a.URI())
	if err != nil || !u.Query().Has("state") {
		return a, nil
	}

	u.RawQuery = ""
	u.Fragment = ""

	return a.Session().Lookup(ArtifactTypeName, u.String())
}

// ArtifactContainer returns the container holding the artifact, or nil.
func ArtifactContainer(ctx context.Context, a *entities.Entity) (*entities.Entity, error) {
	loc, err := entities.Value[entities.Location](ctx, a, "location")
	if err != nil {
		return nil, err
	}
	return loc.Container, nil
}

// InputArtifacts returns the inputs that the parent process of the artifact
// turned into it.
func InputArtifacts(ctx context.Context, a *entities.Entity) ([]*entities.Entity, error) {
	parent, err := entities.Related(ctx, a, "parent_process")
	if err != nil || parent == nil {
		return []*entities.Entity{}, err
	}

	maps, err := InputOutputMaps(ctx, parent)
	if err != nil {
		return nil, err
	}

	result := []*entities.Entity{}
	for _, m := range maps {
		if m.Output != nil && m.Output.LimsID == a.ID() && m.Input != nil && m.Input.Artifact != nil {
			result = append(result, m.Input.Artifact)
		}
	}

	return result, nil
}

type StageStatus struct {
	Stage  *entities.Entity
	Status string
	Name   string
}

// WorkflowStagesAndStatuses lists the workflow stages of an artifact with
// their status, as the artifact document tells them.
func WorkflowStagesAndStatuses(ctx context.Context, a *entities.Entity) ([]StageStatus, error) {
	stages, err := entities.Entities(ctx, a, "workflow_stages")
	if err != nil {
		return nil, err
	}

	result := make([]StageStatus, 0, len(stages))
	for _, stage := range stages {
		status, err := entities.String(ctx, stage, "status")
		if err != nil {
			return nil, err
		}

		name, err := entities.String(ctx, stage, "name")
		if err != nil {
			return nil, err
		}

		result = append(result, StageStatus{Stage: stage, Status: status, Name: name})
	}

	return result, nil
}

// IsAnalyte reports whether the artifact holds sample material.
func IsAnalyte(ctx context.Context, a *entities.Entity) (bool, error) {
	t, err := entities.String(ctx, a, "type")
	return t == OutputTypeAnalyte, err
}
