package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/docopt/docopt-go"
	"github.com/withrocks/genologics/internal/pkg/application/config"
	"github.com/withrocks/genologics/pkg/lims"
	"github.com/withrocks/genologics/pkg/lims/client"
	"github.com/withrocks/genologics/pkg/lims/entities"
	"github.com/withrocks/genologics/pkg/lims/udf"
)

const (
	appName string = "limsctl"
)

const usage string = `LIMS control.

The server and credentials are read from the file named by LIMS_CONFIG and
from the LIMS_BASEURI, LIMS_USERNAME, LIMS_PASSWORD, LIMS_VERSION and
LIMS_DEBUG environment variables.

Usage:
    limsctl check-version
    limsctl workflows [--status=<status>]
    limsctl samples [--project=<project>] [<sample>...]
    limsctl containers [--name=<name>] [--state=<state>]
    limsctl show <kind> <id> [<attribute>...]

Options:
    -h --help              Show this screen.
    --version              Show version.
    --status=<status>      Only list workflows with this status.
    --project=<project>    Only list samples of this project.
    --name=<name>          Only list containers with this name.
    --state=<state>        Only list containers in this state.`

func main() {
	appVersion := buildinfo.SourceVersion()

	opts, err := docopt.ParseArgs(usage, os.Args[1:], appVersion)
	if err != nil {
		os.Exit(2)
	}

	ctx, log, cleanup := o11y.Init(context.Background(), appName, appVersion, "json")
	defer cleanup()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Error("failed to load configuration", "err", err.Error())
		os.Exit(1)
	}

	l, err := cfg.Connect()
	if err != nil {
		log.Error("failed to connect to lims", "err", err.Error())
		os.Exit(1)
	}

	err = run(ctx, l, opts, os.Stdout)
	if err != nil {
		log.Error("command failed", "err", err.Error(), slog.Int("requests", l.RequestCount()))
		os.Exit(1)
	}

	log.Info("done", slog.Int("requests", l.RequestCount()))
}

func run(ctx context.Context, l *lims.Lims, opts docopt.Opts, out io.Writer) error {
	if checkVersion, _ := opts.Bool("check-version"); checkVersion {
		return l.CheckVersion(ctx)
	} else if workflows, _ := opts.Bool("workflows"); workflows {
		return listWorkflows(ctx, l, opts, out)
	} else if samples, _ := opts.Bool("samples"); samples {
		return listSamples(ctx, l, opts, out)
	} else if containers, _ := opts.Bool("containers"); containers {
		return listContainers(ctx, l, opts, out)
	} else if showEntity, _ := opts.Bool("show"); showEntity {
		return show(ctx, l, opts, out)
	}
	return nil
}

func listWorkflows(ctx context.Context, l *lims.Lims, opts docopt.Opts, out io.Writer) error {
	workflows, err := l.Workflows(ctx)
	if err != nil {
		return err
	}

	wanted, _ := opts.String("--status")

	for _, w := range workflows {
		name, err := entities.String(ctx, w, "name")
		if err != nil {
			return err
		}

		status, err := entities.String(ctx, w, "status")
		if err != nil {
			return err
		}

		if wanted != "" && !strings.EqualFold(wanted, status) {
			continue
		}

		fmt.Fprintf(out, "%s\t%s\t%s\n", w.ID(), status, name)
	}

	return nil
}

func listSamples(ctx context.Context, l *lims.Lims, opts docopt.Opts, out io.Writer) error {
	params := []client.RequestDecoratorFunc{}

	if project, _ := opts.String("--project"); project != "" {
		params = append(params, client.ProjectName(project))
	}

	if names, ok := opts["<sample>"].([]string); ok && len(names) > 0 {
		params = append(params, client.Name(names...))
	}

	samples, err := l.Samples(ctx, params...)
	if err != nil {
		return err
	}

	for _, s := range samples {
		fmt.Fprintln(out, s.ID())
	}

	return nil
}

func listContainers(ctx context.Context, l *lims.Lims, opts docopt.Opts, out io.Writer) error {
	params := []client.RequestDecoratorFunc{}

	if name, _ := opts.String("--name"); name != "" {
		params = append(params, client.Name(name))
	}

	if state, _ := opts.String("--state"); state != "" {
		params = append(params, client.State(state))
	}

	containers, err := l.Containers(ctx, params...)
	if err != nil {
		return err
	}

	for _, c := range containers {
		fmt.Fprintln(out, c.ID())
	}

	return nil
}

func show(ctx context.Context, l *lims.Lims, opts docopt.Opts, out io.Writer) error {
	kind, _ := opts.String("<kind>")
	id, _ := opts.String("<id>")

	e, err := l.Get(kind, id)
	if err != nil {
		return err
	}

	attributes, _ := opts["<attribute>"].([]string)
	if len(attributes) == 0 {
		attributes = e.Kind().Attributes()
	}

	fmt.Fprintln(out, e.URI())

	for _, name := range attributes {
		v, err := e.Get(ctx, name)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  %s: %s\n", name, format(v))
	}

	return nil
}

func format(v any) string {
	switch value := v.(type) {
	case nil:
		return "-"
	case *entities.Entity:
		if value == nil {
			return "-"
		}
		return value.String()
	case []*entities.Entity:
		names := make([]string, 0, len(value))
		for _, e := range value {
			names = append(names, e.String())
		}
		return "[" + strings.Join(names, ", ") + "]"
	case map[string]*entities.Entity:
		keys := make([]string, 0, len(value))
		for k := range value {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		placements := make([]string, 0, len(keys))
		for _, k := range keys {
			placements = append(placements, k+"="+value[k].String())
		}
		return "{" + strings.Join(placements, ", ") + "}"
	case *udf.Dictionary:
		fields := []string{}
		for _, name := range value.Names() {
			v, _ := value.Get(name)
			fields = append(fields, fmt.Sprintf("%s=%v", name, v))
		}
		return "{" + strings.Join(fields, ", ") + "}"
	default:
		return fmt.Sprintf("%v", v)
	}
}
