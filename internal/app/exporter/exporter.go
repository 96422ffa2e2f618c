package exporter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sleroq/notion2md/internal/app/effects"
	"github.com/sleroq/notion2md/internal/app/graph"
	"github.com/sleroq/notion2md/internal/app/render"
	"github.com/sleroq/notion2md/internal/config"
	"github.com/sleroq/notion2md/internal/domain/notion"
	"github.com/sleroq/notion2md/internal/infra/delivery"
	"github.com/sleroq/notion2md/internal/infra/notionjson"
)

// Exporter turns a snapshot of fetched Notion JSON into one rendered document
// and delivers it to the configured destinations.
type Exporter struct {
	Config config.Config
	// Delivery options for the executor, e.g. a fake clipboard in tests.
	Delivery []delivery.Option
	// Progress is where the progress bar draws; nil disables it.
	Progress *os.File
}

type Result struct {
	Root      notion.Object
	Markdown  string
	Content   string
	Documents []Document
	Warnings  []string
	Nodes     int
	Plan      effects.Plan
	Report    effects.Report
}

// assembled is what the read and build stages hand to rendering.
type assembled struct {
	snapshot notionjson.Snapshot
	graph    graph.Result
}

func (e Exporter) Run(ctx context.Context) (Result, error) {
	cfg := e.Config
	if err := cfg.Validate(); err != nil {
		return Result{}, wrapValidationError(err, "invalid configuration", codeInvalidConfig)
	}

	bar := newProgressBar(e.Progress, 4)
	defer bar.Close()

	a, err := assemble(ctx, cfg)
	if err != nil {
		return Result{}, err
	}
	bar.Advance("assembled graph")

	res := Result{Root: a.graph.Root, Nodes: a.graph.Nodes, Warnings: a.graph.Warnings}
	newVisitor := func() *render.Visitor { return render.NewVisitor(nil, renderOptions(cfg, a.snapshot)) }

	out, err := newVisitor().Render(a.graph.Root)
	if err != nil {
		return Result{}, wrapCommandError(err, "render failed", codeRender)
	}
	res.Markdown = out.Markdown
	res.Warnings = append(res.Warnings, out.Warnings...)
	bar.Advance("rendered")
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	res.Content = res.Markdown
	if cfg.Template != "" {
		content, docs, err := e.applyTemplate(cfg, a, res.Markdown, newVisitor)
		if err != nil {
			return Result{}, err
		}
		res.Content = content
		res.Documents = docs
	}
	if cfg.Format == config.FormatHTML {
		html, err := toHTML(res.Content)
		if err != nil {
			return Result{}, wrapCommandError(err, "html conversion failed", codeRender)
		}
		res.Content = html
	}
	bar.Advance("composed output")

	res.Plan = buildPlan(cfg, a.graph.Root, res.Content)
	bar.Grow(res.Plan.Len())
	opts := append([]delivery.Option{}, e.Delivery...)
	opts = append(opts, delivery.WithObserver(func(op effects.Effect, _ error) {
		bar.Advance(string(op.Kind()))
	}))
	exec := delivery.New(opts...)
	res.Report = exec.Deliver(res.Plan)
	if err := res.Report.Err(); err != nil {
		return res, wrapCommandError(err, "delivery failed", codeDelivery)
	}
	bar.Finish("done")

	logrus.WithFields(logrus.Fields{
		"root":     res.Root.ID().String(),
		"nodes":    res.Nodes,
		"bytes":    len(res.Content),
		"warnings": len(res.Warnings),
	}).Info("export complete")
	return res, nil
}

// assemble reads the snapshot, resolves the root object and links its tree.
func assemble(ctx context.Context, cfg config.Config) (assembled, error) {
	rootID, err := cfg.RootID()
	if err != nil {
		return assembled{}, wrapValidationError(err, "invalid root id", codeInvalidID)
	}

	snap, err := notionjson.ReadSnapshot(cfg.Input)
	if err != nil {
		return assembled{}, wrapSnapshotError(err)
	}
	if err := ctx.Err(); err != nil {
		return assembled{}, err
	}

	if rootID.IsZero() {
		rootID = snap.Root
	}
	if rootID.IsZero() {
		return assembled{}, wrapValidationError(errors.New("no root given and the snapshot manifest names none"), "invalid configuration", codeInvalidConfig)
	}
	root, err := snap.Object(rootID)
	if err != nil {
		return assembled{}, wrapValidationError(err, "root object not found", codeRootNotFound)
	}

	builder := graph.NewBuilder(cfg.Limits(),
		graph.WithChildren(snap.Children),
		graph.WithDatabases(snap.Databases),
	)
	res, err := builder.Build(root)
	if err != nil {
		return assembled{}, wrapCommandError(err, "graph assembly failed", codeGraphAssembly)
	}
	logrus.WithFields(logrus.Fields{
		"root":     rootID.String(),
		"nodes":    res.Nodes,
		"upgraded": res.Upgraded,
	}).Debug("graph assembled")
	return assembled{snapshot: snap, graph: res}, nil
}

func renderOptions(cfg config.Config, snap notionjson.Snapshot) render.Options {
	return render.Options{
		EnableSanitization: cfg.EnableSanitization,
		EnableParallel:     cfg.EnableParallel,
		Concurrency:        cfg.Concurrency,
		Databases:          snap.Databases,
		App: &render.AppConfig{
			IncludeProperties: cfg.IncludeProperties,
			IncludeMetadata:   cfg.IncludeMetadata,
		},
	}
}

// applyTemplate loads the prompt template through the delivery layer and
// renders the main document together with one document per page and database.
func (e Exporter) applyTemplate(cfg config.Config, a assembled, main string, newVisitor func() *render.Visitor) (string, []Document, error) {
	report := delivery.New(e.Delivery...).Deliver(effects.NewPlan(effects.ReadFile{Path: cfg.Template}))
	if err := report.Err(); err != nil {
		return "", nil, wrapValidationError(err, "load template failed", codeTemplate)
	}
	source, _ := report.Read(cfg.Template)

	name := strings.TrimSuffix(filepath.Base(cfg.Template), filepath.Ext(cfg.Template))
	tmpl, err := ParseTemplate(name, source)
	if err != nil {
		return "", nil, wrapValidationError(err, "invalid template", codeTemplate)
	}

	docs, err := collectDocuments(a.graph.Root, a.snapshot.Pages, newVisitor)
	if err != nil {
		return "", nil, wrapCommandError(err, "render failed", codeRender)
	}
	content, err := tmpl.Execute(PromptData{
		MainContent:  main,
		Files:        docs,
		SourceTree:   sourceTree(docs),
		Instructions: cfg.Instruction,
	})
	if err != nil {
		return "", nil, wrapCommandError(err, "template execution failed", codeTemplate)
	}
	logrus.WithFields(logrus.Fields{
		"template": tmpl.Name,
		"files":    len(docs),
		"bytes":    len(content),
	}).Info("prompt composed")
	return content, docs, nil
}

// buildPlan lists the deliveries asked for by cfg. With no destination the
// content goes to stdout.
func buildPlan(cfg config.Config, root notion.Object, content string) effects.Plan {
	steps := []func(effects.Plan) effects.Plan{
		planFile(cfg.Output, root, content),
		func(p effects.Plan) effects.Plan {
			if !cfg.Clipboard {
				return p
			}
			return p.With(effects.CopyToClipboard{Content: content})
		},
		func(p effects.Plan) effects.Plan {
			if !cfg.Stdout && !p.Empty() {
				return p
			}
			return p.With(effects.PrintToStdout{Content: content})
		},
	}
	plan := effects.Of(effects.NewPlan())
	for _, step := range steps {
		plan = effects.Map(plan, step)
	}
	return plan.Get()
}

// planFile creates the output's parent directory before writing it.
func planFile(output string, root notion.Object, content string) func(effects.Plan) effects.Plan {
	return func(p effects.Plan) effects.Plan {
		if output == "" {
			return p
		}
		if dir := filepath.Dir(output); dir != "." && dir != string(filepath.Separator) {
			p = p.With(effects.CreateDirectory{Path: dir})
		}
		modified, created := objectTimes(root)
		return p.With(effects.WriteFile{
			Path:     output,
			Content:  content,
			Modified: modified,
			Created:  created,
		})
	}
}

func objectTimes(root notion.Object) (modified, created time.Time) {
	switch {
	case root.Page != nil:
		return root.Page.LastEditedTime, root.Page.CreatedTime
	case root.Database != nil:
		return root.Database.LastEditedTime, root.Database.CreatedTime
	default:
		return time.Time{}, time.Time{}
	}
}
