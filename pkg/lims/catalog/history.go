package catalog

import (
	"context"
	"fmt"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/withrocks/genologics/pkg/lims/client"
	"github.com/withrocks/genologics/pkg/lims/entities"
	"github.com/withrocks/genologics/pkg/lims/types"
)

// HistoryStep is one process that used an analyte of a sample as input.
// Output is only set for the process that leads towards the artifact the
// history was traced from.
type HistoryStep struct {
	Process  *entities.Entity
	Date     types.Date
	Input    *entities.Entity
	Output   *entities.Entity
	TypeID   string
	TypeName string
}

type History struct {
	SampleName string
	// Steps maps the id of each analyte in the history to the processes
	// that used it, keyed by process id.
	Steps map[string]map[string]HistoryStep
	// Inputs are the ids of the analytes in the history, from the artifact
	// the history was traced from back towards the sample.
	Inputs []string
}

// SampleHistory traces the analytes of a sample back from an output
// artifact, following the parent process of each analyte. When the output
// is not an analyte, such as a result file, give the analyte it was made
// from as input.
func SampleHistory(ctx context.Context, s *entities.Session, sampleName, outputID, inputID string) (*History, error) {
	log := logging.GetFromContext(ctx)

	analytes, err := s.List(ctx, ArtifactTypeName, client.SampleName(sampleName), client.Type(OutputTypeAnalyte))
	if err != nil {
		return nil, fmt.Errorf("failed to list the analytes of %s: %w", sampleName, err)
	}

	byID := map[string]*entities.Entity{}
	for _, a := range analytes {
		byID[a.ID()] = a
	}

	h := &History{
		SampleName: sampleName,
		Steps:      map[string]map[string]HistoryStep{},
		Inputs:     []string{},
	}

	current := outputID

	if inputID != "" {
		steps, err := historySteps(ctx, s, inputID, outputID, "")
		if err != nil {
			return nil, err
		}
		h.Steps[inputID] = steps
		h.Inputs = append(h.Inputs, inputID)
		current = inputID
	}

	for {
		a, ok := byID[current]
		if !ok {
			break
		}

		parent, err := entities.Related(ctx, a, "parent_process")
		if err != nil {
			return nil, err
		}
		if parent == nil {
			break
		}

		inputs, err := AllInputs(ctx, parent, true, false)
		if err != nil {
			return nil, err
		}

		next := ""
		for _, input := range inputs {
			if _, ok := byID[input.ID()]; !ok {
				continue
			}

			steps, err := historySteps(ctx, s, input.ID(), current, parent.ID())
			if err != nil {
				return nil, err
			}

			h.Steps[input.ID()] = steps
			h.Inputs = append(h.Inputs, input.ID())
			next = input.ID()
			break
		}

		if next == "" {
			log.Debug("history ends without an analyte input", "sample", sampleName, "artifact", current, "process", parent.ID())
			break
		}

		current = next
	}

	return h, nil
}

// historySteps lists the processes that used an analyte as input. The
// output is set on the process with id via, or when via is empty, on the
// processes that made the output.
func historySteps(ctx context.Context, s *entities.Session, inputID, outputID, via string) (map[string]HistoryStep, error) {
	processes, err := s.List(ctx, ProcessTypeName, client.InputArtifactLimsID(inputID))
	if err != nil {
		return nil, fmt.Errorf("failed to list the processes of %s: %w", inputID, err)
	}

	input, err := s.ByID(ArtifactTypeName, inputID)
	if err != nil {
		return nil, err
	}

	steps := map[string]HistoryStep{}

	for _, p := range processes {
		step := HistoryStep{Process: p, Input: input}

		if step.Date, err = entities.Value[types.Date](ctx, p, "date_run"); err != nil {
			return nil, err
		}

		pt, err := entities.Related(ctx, p, "type")
		if err != nil {
			return nil, err
		}
		if pt != nil {
			step.TypeID = pt.ID()
			if step.TypeName, err = entities.String(ctx, pt, "name"); err != nil {
				return nil, err
			}
		}

		made, err := madeOutput(ctx, p, outputID, via)
		if err != nil {
			return nil, err
		}
		if made {
			if step.Output, err = s.ByID(ArtifactTypeName, outputID); err != nil {
				return nil, err
			}
		}

		steps[p.ID()] = step
	}

	return steps, nil
}

func madeOutput(ctx context.Context, p *entities.Entity, outputID, via string) (bool, error) {
	if outputID == "" {
		return false, nil
	}

	if via != "" {
		return p.ID() == via, nil
	}

	outputs, err := AllOutputs(ctx, p, true, false)
	if err != nil {
		return false, err
	}

	for _, o := range outputs {
		if o.ID() == outputID {
			return true, nil
		}
	}

	return false, nil
}
