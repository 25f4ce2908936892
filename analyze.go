package main

import (
	"context"
	"errors"
	"fmt"
	"go/token"
	"log/slog"
	"os"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/sirkon/cadlint/internal/config"
	"github.com/sirkon/cadlint/internal/cparse"
	"github.com/sirkon/cadlint/internal/ctype"
	"github.com/sirkon/cadlint/internal/exam"
	"github.com/sirkon/cadlint/internal/interp"
	"github.com/sirkon/cadlint/internal/rules"
	"github.com/sirkon/cadlint/internal/spans"
	"github.com/sirkon/cadlint/internal/syntax"
)

// analyzer runs examinations of source files sharing a single report engine.
type analyzer struct {
	cfg     config.Config
	engine  *exam.ReportEngine
	libc    *knownLibcFuncs
	prelude *syntax.TranslationUnit
	tracer  trace.Tracer
	log     *slog.Logger
}

func newAnalyzer(ctx context.Context, cfg config.Config, engine *exam.ReportEngine, tp trace.TracerProvider) (*analyzer, error) {
	libc := newKnownLibcFuncs(cfg.Functions.NoReturn)
	prelude, err := cparse.Parse(ctx, "<prelude>", libc.prelude())
	if err != nil {
		return nil, fmt.Errorf("parse library declarations: %w", err)
	}

	return &analyzer{
		cfg:     cfg,
		engine:  engine,
		libc:    libc,
		prelude: prelude,
		tracer:  tp.Tracer("github.com/sirkon/cadlint"),
		log:     slog.Default().With(slog.String("component", "analyzer")),
	}, nil
}

// analyzeFiles examines files running up to jobs of them at once.
func (a *analyzer) analyzeFiles(ctx context.Context, files []string, jobs int) error {
	ctx, span := a.tracer.Start(ctx, "analyze files", trace.WithAttributes(attribute.Int("files", len(files))))
	defer span.End()

	sem := make(chan struct{}, max(jobs, 1))
	errs := make([]error, len(files))
	var wg sync.WaitGroup
	for i, file := range files {
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer func() {
				<-sem
				wg.Done()
			}()
			errs[i] = a.analyzeFile(ctx, file)
		}()
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "analysis failed")
		return err
	}
	return nil
}

func (a *analyzer) analyzeFile(ctx context.Context, file string) (err error) {
	ctx, span := a.tracer.Start(ctx, "analyze file", trace.WithAttributes(attribute.String("file", file)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	src, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}

	tu, err := cparse.Parse(ctx, file, src)
	if err != nil {
		if rerr := a.reportSyntaxErrors(err); rerr != nil {
			return fmt.Errorf("parse %s: %w", file, rerr)
		}
		a.log.Warn("source is not interpreted", slog.String("file", file), slog.Any("err", err))
		return nil
	}

	cat, err := ctype.NewCatalog(a.cfg.Traits)
	if err != nil {
		return fmt.Errorf("create type catalog: %w", err)
	}

	ex := exam.NewExaminer(file, spans.Build(tu), a.engine)
	in := interp.New(cat, ex)
	in.NoReturn(a.libc.noReturn()...)
	if err := in.Run(ctx, a.prelude); err != nil {
		return fmt.Errorf("declare library functions: %w", err)
	}

	if err := in.Run(ctx, tu); err != nil {
		if ctx.Err() != nil {
			return err
		}
		// Aborted functions do not stop the rest of the unit.
		a.log.Error("functions aborted", slog.String("file", file), slog.Any("err", err))
		span.RecordError(err)
	}

	a.log.Info("source analyzed", slog.String("file", file), slog.Int("declarations", len(tu.Decls)))
	return nil
}

// reportSyntaxErrors reports every syntax error joined into err. Other errors are
// returned back.
func (a *analyzer) reportSyntaxErrors(err error) error {
	errs := []error{err}
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		errs = joined.Unwrap()
	}

	parse := a.engine.Phase(exam.ReportParse)
	var rest []error
	for _, e := range errs {
		var serr *cparse.SyntaxError
		if !errors.As(e, &serr) {
			rest = append(rest, e)
			continue
		}

		pos := token.Position{
			Filename: serr.File,
			Offset:   serr.Pos.Offset,
			Line:     serr.Pos.Line,
			Column:   serr.Pos.Column,
		}
		parse.Report(rules.SyntaxError(), "", pos, nil, serr.Error())
	}
	return errors.Join(rest...)
}
