package catalog

import (
	"context"
	"fmt"

	"github.com/withrocks/genologics/pkg/lims/entities"
	"github.com/withrocks/genologics/pkg/lims/errors"
)

func InputOutputMaps(ctx context.Context, p *entities.Entity) ([]entities.IOMap, error) {
	return entities.Value[[]entities.IOMap](ctx, p, "input_output_maps")
}

// AllInputs returns the input artifacts of a process in the order they
// first appear. With resolve set the artifacts are loaded with one batch call.
func AllInputs(ctx context.Context, p *entities.Entity, unique, resolve bool) ([]*entities.Entity, error) {
	return collectArtifacts(ctx, p, unique, resolve, func(m entities.IOMap) *entities.IOEnd {
		return m.Input
	})
}

// AllOutputs returns the output artifacts of a process, skipping inputs that
// produced nothing.
func AllOutputs(ctx context.Context, p *entities.Entity, unique, resolve bool) ([]*entities.Entity, error) {
	return collectArtifacts(ctx, p, unique, resolve, func(m entities.IOMap) *entities.IOEnd {
		return m.Output
	})
}

func collectArtifacts(ctx context.Context, p *entities.Entity, unique, resolve bool, side func(entities.IOMap) *entities.IOEnd) ([]*entities.Entity, error) {
	maps, err := InputOutputMaps(ctx, p)
	if err != nil {
		return nil, err
	}

	s := p.Session()
	seen := map[string]bool{}
	result := []*entities.Entity{}

	for _, m := range maps {
		end := side(m)
		if end == nil || end.LimsID == "" {
			continue
		}

		if unique && seen[end.LimsID] {
			continue
		}
		seen[end.LimsID] = true

		a, err := s.ByID(ArtifactTypeName, end.LimsID)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}

	if resolve && len(result) > 0 {
		if _, err := s.Batch(ctx, result); err != nil {
			return nil, fmt.Errorf("failed to resolve artifacts of %s: %w", p, err)
		}
	}

	return result, nil
}

// OutputsPerInput returns the outputs a process made from one input. An empty
// output type matches every output.
func OutputsPerInput(ctx context.Context, p *entities.Entity, inputID, outputType string) ([]*entities.Entity, error) {
	maps, err := InputOutputMaps(ctx, p)
	if err != nil {
		return nil, err
	}

	result := []*entities.Entity{}
	for _, m := range maps {
		if m.Input == nil || m.Output == nil || m.Input.LimsID != inputID {
			continue
		}
		if outputType != "" && m.Output.OutputType != outputType {
			continue
		}
		if m.Output.Artifact != nil {
			result = append(result, m.Output.Artifact)
		}
	}

	return result, nil
}

// InputsPerSample returns the inputs of a process that derive from the sample with the given name.
func InputsPerSample(ctx context.Context, p *entities.Entity, sampleName string) ([]*entities.Entity, error) {
	inputs, err := AllInputs(ctx, p, true, true)
	if err != nil {
		return nil, err
	}

	result := []*entities.Entity{}
	for _, input := range inputs {
		samples, err := entities.Entities(ctx, input, "samples")
		if err != nil {
			return nil, err
		}

		for _, sample := range samples {
			name, err := entities.String(ctx, sample, "name")
			if err != nil {
				return nil, err
			}
			if name == sampleName {
				result = append(result, input)
				break
			}
		}
	}

	return result, nil
}

func outputsOfType(ctx context.Context, p *entities.Entity, outputType string) ([]*entities.Entity, error) {
	outputs, err := AllOutputs(ctx, p, true, true)
	if err != nil {
		return nil, err
	}

	result := []*entities.Entity{}
	for _, a := range outputs {
		t, err := entities.String(ctx, a, "output_type")
		if err != nil {
			return nil, err
		}
		if t == outputType {
			result = append(result, a)
		}
	}

	return result, nil
}

// ResultFiles returns the outputs made per input.
func ResultFiles(ctx context.Context, p *entities.Entity) ([]*entities.Entity, error) {
	return outputsOfType(ctx, p, OutputTypeResultFile)
}

// SharedResultFiles returns the outputs made for all inputs together.
func SharedResultFiles(ctx context.Context, p *entities.Entity) ([]*entities.Entity, error) {
	return outputsOfType(ctx, p, OutputTypeSharedResultFile)
}

// Analytes returns the output analytes of a process, or its input analytes if
// it made none, so that aggregating processes look like any other. The second
// result tells which of them were returned, "Output" or "Input".
func Analytes(ctx context.Context, p *entities.Entity) ([]*entities.Entity, string, error) {
	outputs, err := AllOutputs(ctx, p, true, true)
	if err != nil {
		return nil, "", err
	}

	analytes, err := filterAnalytes(ctx, outputs)
	if err != nil || len(analytes) > 0 {
		return analytes, "Output", err
	}

	inputs, err := AllInputs(ctx, p, true, true)
	if err != nil {
		return nil, "", err
	}

	analytes, err = filterAnalytes(ctx, inputs)
	return analytes, "Input", err
}

func filterAnalytes(ctx context.Context, artifacts []*entities.Entity) ([]*entities.Entity, error) {
	result := []*entities.Entity{}
	for _, a := range artifacts {
		ok, err := IsAnalyte(ctx, a)
		if err != nil {
			return nil, err
		}
		if ok {
			result = append(result, a)
		}
	}
	return result, nil
}

// ParentProcesses returns the parent process of every input, nil for inputs
// that no process made.
func ParentProcesses(ctx context.Context, p *entities.Entity) ([]*entities.Entity, error) {
	inputs, err := AllInputs(ctx, p, true, true)
	if err != nil {
		return nil, err
	}

	result := make([]*entities.Entity, 0, len(inputs))
	for _, input := range inputs {
		parent, err := entities.Related(ctx, input, "parent_process")
		if err != nil {
			return nil, err
		}
		result = append(result, parent)
	}

	return result, nil
}

// OutputContainers returns the distinct containers holding the outputs.
func OutputContainers(ctx context.Context, p *entities.Entity) ([]*entities.Entity, error) {
	outputs, err := AllOutputs(ctx, p, true, true)
	if err != nil {
		return nil, err
	}

	seen := map[*entities.Entity]bool{}
	result := []*entities.Entity{}

	for _, a := range outputs {
		c, err := ArtifactContainer(ctx, a)
		if err != nil {
			return nil, err
		}
		if c != nil && !seen[c] {
			seen[c] = true
			result = append(result, c)
		}
	}

	return result, nil
}

// StepOf returns the step that ran the process. They share the same id.
func StepOf(p *entities.Entity) (*entities.Entity, error) {
	if p.Detached() {
		return nil, errors.NewDetachedError("find step", p.Kind().Name)
	}
	return p.Session().ByID(StepTypeName, p.ID())
}
