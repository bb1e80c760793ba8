package build

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/hydessg/hyde/internal/config"
	"github.com/hydessg/hyde/internal/dataset"
	"github.com/hydessg/hyde/internal/docs"
	docerrors "github.com/hydessg/hyde/internal/docs/errors"
	ferrors "github.com/hydessg/hyde/internal/foundation/errors"
	"github.com/hydessg/hyde/internal/logfields"
	"github.com/hydessg/hyde/internal/markdown"
	"github.com/hydessg/hyde/internal/metrics"
	"github.com/hydessg/hyde/internal/render"
	"github.com/hydessg/hyde/internal/storage"
	"github.com/hydessg/hyde/internal/templates"
)

// DestinationFactory creates the destination for a run.
type DestinationFactory func(cfg *config.Config, opts BuildOptions, logger *slog.Logger) (storage.Destination, error)

// DefaultDestination writes to the configured output directory, or only logs
// on a dry run.
func DefaultDestination(cfg *config.Config, opts BuildOptions, logger *slog.Logger) (storage.Destination, error) {
	if opts.DryRun {
		return storage.NewDryRunDestination(logger), nil
	}
	return storage.NewFSDestination(cfg.OutputDir(), logger)
}

// DefaultBuildService is the standard implementation of BuildService.
type DefaultBuildService struct {
	destinationFactory DestinationFactory
	recorder           metrics.Recorder
	logger             *slog.Logger
	newRunID           func() string
}

// NewBuildService creates a DefaultBuildService with default dependencies.
func NewBuildService() *DefaultBuildService {
	return &DefaultBuildService{
		destinationFactory: DefaultDestination,
		recorder:           metrics.NoopRecorder{},
		logger:             slog.Default(),
		newRunID:           uuid.NewString,
	}
}

// WithRecorder sets the metrics recorder.
func (s *DefaultBuildService) WithRecorder(r metrics.Recorder) *DefaultBuildService {
	if r != nil {
		s.recorder = r
	}
	return s
}

// WithLogger sets the logger.
func (s *DefaultBuildService) WithLogger(l *slog.Logger) *DefaultBuildService {
	if l != nil {
		s.logger = l
	}
	return s
}

// WithDestinationFactory allows injecting a custom destination (for testing).
func (s *DefaultBuildService) WithDestinationFactory(f DestinationFactory) *DefaultBuildService {
	if f != nil {
		s.destinationFactory = f
	}
	return s
}

// run holds the per-run collaborators.
type run struct {
	cfg      *config.Config
	opts     BuildOptions
	dest     storage.Destination
	renderer *render.Renderer
	logger   *slog.Logger
	recorder metrics.Recorder
	result   *BuildResult
	// outputs maps each written output path to the source that produced it.
	outputs map[string]string
}

// Run generates the site.
func (s *DefaultBuildService) Run(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	start := time.Now()
	result := &BuildResult{RunID: s.newRunID(), StartTime: start}
	logger := s.logger.With(logfields.RunID(result.RunID))

	finish := func(status BuildStatus, err error) (*BuildResult, error) {
		result.Status = status
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(start)
		s.recorder.ObserveBuildDuration(result.Duration)
		switch status {
		case BuildStatusSuccess:
			s.recorder.IncBuildOutcome(metrics.BuildSuccess)
		case BuildStatusCancelled:
			s.recorder.IncBuildOutcome(metrics.BuildCanceled)
		default:
			s.recorder.IncBuildOutcome(metrics.BuildFailed)
		}
		if req.Options.ReportPath != "" {
			if werr := NewReport(result).WriteFile(req.Options.ReportPath); werr != nil {
				logger.Warn("Failed to write build report", logfields.Path(req.Options.ReportPath), logfields.Error(werr))
			}
		}
		logger.Info("Build finished",
			slog.String("status", string(status)),
			logfields.Duration(result.Duration),
			slog.Int("files", len(result.Files)))
		return result, err
	}

	cfg := req.Config
	if cfg == nil {
		return finish(BuildStatusFailed, ferrors.ConfigError("config required").Build())
	}
	result.OutputPath = cfg.OutputDir()

	dest := req.Destination
	if dest == nil {
		var err error
		dest, err = s.destinationFactory(cfg, req.Options, logger)
		if err != nil {
			return finish(BuildStatusFailed, ferrors.DestinationError("failed to create destination").WithCause(err).
				WithContext("path", cfg.OutputDir()).Build())
		}
	}

	logger.Info("Starting build", logfields.Root(cfg.Root), logfields.Path(cfg.OutputDir()),
		slog.Bool("dry_run", req.Options.DryRun), slog.Bool("keep_going", req.Options.KeepGoing))

	if req.Options.Clean {
		if err := dest.Clean(ctx); err != nil {
			if ctx.Err() != nil {
				return finish(BuildStatusCancelled, ctx.Err())
			}
			return finish(BuildStatusFailed, ferrors.DestinationError("failed to clean destination").WithCause(err).
				WithContext(ContextKind, KindDestinationClean).Build())
		}
	}

	snapshot, err := dataset.Load(cfg.DataDir(), logger)
	if err != nil {
		return finish(BuildStatusFailed, ferrors.DatasetError("failed to load datasets").WithCause(err).
			WithContext("path", cfg.DataDir()).Build())
	}
	result.Datasets = snapshot.Names()
	s.recorder.SetDatasets(snapshot.Len())

	env, err := templates.NewEnvironment([]string{cfg.Root, cfg.LayoutsDir()},
		templates.WithStrict(cfg.Templates.StrictFrontMatter),
		templates.WithLogger(logger),
		templates.WithWhitespaceControl(cfg.Templates.TrimBlocks, cfg.Templates.LStripBlocks))
	if err != nil {
		return finish(BuildStatusFailed, ferrors.ConfigError("failed to create template environment").WithCause(err).Build())
	}

	renderOpts := []render.Option{
		render.WithMaxLayoutDepth(cfg.Templates.MaxLayoutDepth),
		render.WithLogger(logger),
		render.WithRecorder(s.recorder),
	}
	if cfg.Markdown.Enabled {
		renderOpts = append(renderOpts, render.WithConverter(markdown.NewConverter(markdown.Options{
			GFM:         cfg.Markdown.GFM,
			Typographer: cfg.Markdown.Typographer,
			UnsafeHTML:  cfg.Markdown.UnsafeHTML,
			HeadingIDs:  cfg.Markdown.HeadingIDs,
		})))
	}

	classifier, err := docs.NewClassifier(cfg.ContentTypes)
	if err != nil {
		return finish(BuildStatusFailed, ferrors.ConfigError("invalid content_types").WithCause(err).Build())
	}
	files, err := docs.NewDiscovery(cfg.Root, classifier, logger).Discover(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return finish(BuildStatusCancelled, ctx.Err())
		}
		return finish(BuildStatusFailed, ferrors.FileSystemError("failed to discover sources").WithCause(err).
			WithContext("path", cfg.Root).Build())
	}

	r := &run{
		cfg:      cfg,
		opts:     req.Options,
		dest:     dest,
		renderer: render.New(env, snapshot, renderOpts...),
		logger:   logger,
		recorder: s.recorder,
		result:   result,
		outputs:  make(map[string]string, len(files)),
	}

	var failures []*ferrors.ClassifiedError
	for i := range files {
		if err := ctx.Err(); err != nil {
			return finish(BuildStatusCancelled, err)
		}
		classified := r.process(ctx, &files[i])
		if classified == nil {
			continue
		}
		if kind, _ := classified.Context().GetString(ContextKind); kind == KindCanceled {
			return finish(BuildStatusCancelled, ctx.Err())
		}
		if !req.Options.KeepGoing {
			return finish(BuildStatusFailed, classified)
		}
		failures = append(failures, classified)
	}

	if err := aggregate(failures, len(files)); err != nil {
		return finish(BuildStatusFailed, err)
	}
	return finish(BuildStatusSuccess, nil)
}

// process handles one file and records its result. It returns the classified
// failure, if any.
func (r *run) process(ctx context.Context, sf *docs.SourceFile) *ferrors.ClassifiedError {
	fr := FileResult{Path: sf.RelativePath, ContentType: sf.ContentType}
	log := r.logger.With(logfields.Template(sf.RelativePath), logfields.Kind(string(sf.Kind)))

	var err error
	switch sf.Kind {
	case docs.KindTemplate:
		err = r.renderTemplate(ctx, sf, &fr)
	case docs.KindAsset:
		err = r.copyAsset(ctx, sf, &fr)
	default:
		fr.Outcome = metrics.FileSkipped
		log.Debug("Skipping file without content type")
	}

	if err != nil {
		classified, kind := classifyFileError(sf.RelativePath, err)
		fr.Outcome = metrics.FileFailed
		fr.Output = ""
		fr.Kind = kind
		fr.Error = err.Error()
		r.result.Files = append(r.result.Files, fr)
		r.recorder.IncFileOutcome(metrics.FileFailed)
		if kind != KindCanceled {
			log.Error("Failed to process file", logfields.Error(err), slog.String("failure_kind", kind))
		}
		return classified
	}

	r.result.Files = append(r.result.Files, fr)
	r.recorder.IncFileOutcome(fr.Outcome)
	if fr.Outcome != metrics.FileSkipped {
		log.Debug("Processed file", logfields.Outcome(string(fr.Outcome)), logfields.Path(fr.Output))
	}
	return nil
}

func (r *run) renderTemplate(ctx context.Context, sf *docs.SourceFile, fr *FileResult) error {
	if r.opts.ReportPath != "" {
		if err := sf.LoadContent(); err != nil {
			return err
		}
		fr.Fingerprint = fingerprint(sf.Content)
	}

	page, err := r.renderer.RenderPage(ctx, sf.RelativePath)
	if err != nil {
		return err
	}

	out, ct := sf.RelativePath, sf.ContentType
	if page.Converted {
		out, ct = markdown.OutputPath(out), markdown.OutputContentType
	}
	if err := r.write(ctx, sf.RelativePath, out, ct, page.Reader()); err != nil {
		return err
	}
	fr.Output, fr.ContentType, fr.Layouts = out, ct, page.Layouts
	fr.Outcome = metrics.FileRendered
	return nil
}

func (r *run) copyAsset(ctx context.Context, sf *docs.SourceFile, fr *FileResult) error {
	// #nosec G304 - path comes from walking the configured site root
	f, err := os.Open(sf.Path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", docerrors.ErrFileReadFailed, sf.Path, err)
	}
	defer func() { _ = f.Close() }()

	if err := r.write(ctx, sf.RelativePath, sf.RelativePath, sf.ContentType, f); err != nil {
		return err
	}
	fr.Output = sf.RelativePath
	fr.Outcome = metrics.FileCopied
	return nil
}

// write sends src to the destination under rel unless another source of
// this run already produced rel.
func (r *run) write(ctx context.Context, source, rel, contentType string, src io.Reader) error {
	if prev, ok := r.outputs[rel]; ok {
		return fmt.Errorf("%w: %s is produced by both %s and %s", ErrOutputConflict, rel, prev, source)
	}
	r.outputs[rel] = source
	start := time.Now()
	err := r.dest.WriteFile(ctx, rel, contentType, src)
	r.recorder.ObserveWriteDuration(time.Since(start))
	return err
}

// Clean removes the configured output directory.
func (s *DefaultBuildService) Clean(ctx context.Context, cfg *config.Config) error {
	if cfg == nil {
		return ferrors.ConfigError("config required").Build()
	}
	dest, err := s.destinationFactory(cfg, BuildOptions{}, s.logger)
	if err != nil {
		return ferrors.DestinationError("failed to create destination").WithCause(err).
			WithContext("path", cfg.OutputDir()).Build()
	}
	if err := dest.Clean(ctx); err != nil {
		return ferrors.DestinationError("failed to clean destination").WithCause(err).
			WithContext("path", cfg.OutputDir()).
			WithContext(ContextKind, KindDestinationClean).Build()
	}
	return nil
}

var _ BuildService = (*DefaultBuildService)(nil)
