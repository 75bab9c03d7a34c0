// Package attribution answers two questions about a file under version
// control: who last touched each of its lines, and what a given revision
// changed. It orchestrates a Gateway and the pure parsers in pkg/blame,
// pkg/revision and pkg/patch.
package attribution

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/gitattr/pkg/blame"
	"github.com/Sumatoshi-tech/gitattr/pkg/cache"
	"github.com/Sumatoshi-tech/gitattr/pkg/patch"
	"github.com/Sumatoshi-tech/gitattr/pkg/revision"
	"github.com/Sumatoshi-tech/gitattr/pkg/textutil"
)

const tracerName = "github.com/Sumatoshi-tech/gitattr/pkg/attribution"

// Span names.
const (
	spanBlame          = "attribution.blame"
	spanRevisionDetail = "attribution.revision_detail"
)

// Deps holds the collaborators of a Service. Zero-value optional fields use
// defaults.
type Deps struct {
	// Gateway fetches raw git reports. Required.
	Gateway Gateway

	// Logger receives warnings about recoverable failures. Nil uses slog default.
	Logger *slog.Logger

	// Tracer creates one span per request. Nil disables tracing.
	Tracer trace.Tracer

	// Cache keeps complete revision details across requests. Nil disables caching.
	Cache *cache.DetailCache
}

// Service is safe for concurrent use.
type Service struct {
	gateway Gateway
	logger  *slog.Logger
	tracer  trace.Tracer
	cache   *cache.DetailCache
}

// NewService creates a Service from deps.
func NewService(deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tracer := deps.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(tracerName)
	}

	return &Service{
		gateway: deps.Gateway,
		logger:  logger,
		tracer:  tracer,
		cache:   deps.Cache,
	}
}

// Blame returns the attribution of the requested lines of a file.
func (s *Service) Blame(ctx context.Context, req BlameRequest) (*BlameResult, error) {
	ctx, span := s.tracer.Start(ctx, spanBlame,
		trace.WithAttributes(attribute.String("file.path", req.FilePath)),
	)
	defer span.End()

	result, err := s.blame(ctx, req)
	if err != nil {
		recordError(span, err)

		return nil, err
	}

	span.SetAttributes(
		attribute.Int("blame.total_lines", result.TotalLines),
		attribute.Int("blame.requested_lines", result.RequestedLines),
	)

	return result, nil
}

func (s *Service) blame(ctx context.Context, req BlameRequest) (*BlameResult, error) {
	err := req.validate()
	if err != nil {
		return nil, err
	}

	err = checkRegularFile(req.FilePath)
	if err != nil {
		return nil, err
	}

	_, err = s.repositoryRoot(ctx, req.FilePath)
	if err != nil {
		return nil, err
	}

	raw, err := s.gateway.RawBlame(ctx, req.FilePath)
	if err != nil {
		return nil, classed(ErrUpstream, "blame "+req.FilePath, err)
	}

	lines := blame.Parse(raw)
	s.checkCoverage(ctx, req.FilePath, lines)

	window := blame.Filter(lines, req.LineFrom, req.LineTo)

	return &BlameResult{
		FilePath:       req.FilePath,
		TotalLines:     window.Total,
		RequestedLines: window.Requested,
		LineRange:      LineRange{From: window.From, To: window.To},
		Blame:          window.Lines,
	}, nil
}

// checkCoverage warns when the parsed attribution does not cover the file.
// Binary files and truncated porcelain both end up here.
func (s *Service) checkCoverage(ctx context.Context, path string, lines []blame.Line) {
	profile, err := textutil.ProfileFile(path)
	if err != nil {
		s.logger.DebugContext(ctx, "profile blamed file", "file", path, "error", err)

		return
	}

	switch {
	case profile.Binary && len(lines) == 0:
		s.logger.WarnContext(ctx, "binary file produced no attribution lines",
			"file", path, "bytes", profile.Bytes)
	case len(lines) != profile.Lines:
		s.logger.WarnContext(ctx, "attribution does not cover every line",
			"file", path, "file_lines", profile.Lines, "attributed_lines", len(lines))
	}
}

// RevisionDetail returns the metadata and changed files of one revision in
// the repository that contains req.FilePath.
func (s *Service) RevisionDetail(ctx context.Context, req RevisionDetailRequest) (*revision.Detail, error) {
	req.CommitHash = strings.TrimSpace(req.CommitHash)

	ctx, span := s.tracer.Start(ctx, spanRevisionDetail,
		trace.WithAttributes(
			attribute.String("file.path", req.FilePath),
			attribute.String("revision.ref", req.CommitHash),
			attribute.Bool("revision.include_diff", req.IncludeDiff),
			attribute.Bool("revision.include_file_diffs", req.IncludeFileDiffs),
		),
	)
	defer span.End()

	detail, err := s.revisionDetail(ctx, req)
	if err != nil {
		recordError(span, err)

		return nil, err
	}

	span.SetAttributes(
		attribute.String("revision.hash", detail.Hash),
		attribute.Int("revision.files_changed", detail.FilesChanged),
	)

	return detail, nil
}

func (s *Service) revisionDetail(ctx context.Context, req RevisionDetailRequest) (*revision.Detail, error) {
	err := req.validate()
	if err != nil {
		return nil, err
	}

	err = checkRegularFile(req.FilePath)
	if err != nil {
		return nil, err
	}

	root, err := s.repositoryRoot(ctx, req.FilePath)
	if err != nil {
		return nil, err
	}

	hash, err := s.gateway.ResolveRevision(ctx, root, req.CommitHash)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("resolve revision %q: %w", req.CommitHash, err)
		}

		return nil, classed(ErrUpstream, "resolve revision "+req.CommitHash, err)
	}

	key := cache.Key{
		Root:             root,
		Hash:             hash,
		IncludeDiff:      req.IncludeDiff,
		IncludeFileDiffs: req.IncludeDiff || req.IncludeFileDiffs,
	}

	if cached, ok := s.cache.Get(key); ok {
		trace.SpanFromContext(ctx).SetAttributes(attribute.Bool("revision.cache_hit", true))

		return cached, nil
	}

	var header, status, numstat string

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(s.fetch(groupCtx, "show header", root, hash, s.gateway.ShowHeader, &header))
	group.Go(s.fetch(groupCtx, "show name-status", root, hash, s.gateway.ShowNameStatus, &status))
	group.Go(s.fetch(groupCtx, "show numstat", root, hash, s.gateway.ShowNumstat, &numstat))

	err = group.Wait()
	if err != nil {
		return nil, err
	}

	detail := revision.Assemble(header, status, numstat)

	complete := true

	if req.IncludeDiff {
		complete = s.attachDiff(ctx, root, hash, detail)
	}

	if key.IncludeFileDiffs {
		complete = s.attachPatches(ctx, root, hash, detail) && complete
	}

	// Details missing an optional part are not cached.
	if complete {
		s.cache.Put(key, detail)
	}

	return detail, nil
}

type reportFunc func(ctx context.Context, dir, hash string) (string, error)

func (s *Service) fetch(ctx context.Context, op, dir, hash string, report reportFunc, dst *string) func() error {
	return func() error {
		text, err := report(ctx, dir, hash)
		if err != nil {
			return classed(ErrUpstream, op+" "+hash, err)
		}

		*dst = text

		return nil
	}
}

func (s *Service) attachDiff(ctx context.Context, dir, hash string, detail *revision.Detail) bool {
	text, err := s.gateway.ShowFullDiff(ctx, dir, hash)
	if err != nil {
		s.logger.WarnContext(ctx, "diff unavailable", "revision", hash, "error", err)

		return false
	}

	detail.Diff = &text

	return true
}

func (s *Service) attachPatches(ctx context.Context, dir, hash string, detail *revision.Detail) bool {
	var source string

	if detail.Diff != nil {
		source = *detail.Diff
	} else {
		text, err := s.gateway.ShowPatch(ctx, dir, hash)
		if err != nil {
			s.logger.WarnContext(ctx, "per-file patches unavailable", "revision", hash, "error", err)

			return false
		}

		source = text
	}

	index := patch.Split(source)
	attached := revision.AttachPatches(detail, index)

	if attached < len(detail.Files) {
		s.logger.DebugContext(ctx, "some changed files have no patch",
			"revision", hash, "files", len(detail.Files), "patched", attached, "sections", index.Len())
	}

	return true
}

func (s *Service) repositoryRoot(ctx context.Context, filePath string) (string, error) {
	root, err := s.gateway.RepositoryRoot(ctx, filepath.Dir(filePath))
	if err != nil {
		if errors.Is(err, ErrNotRepository) {
			return "", fmt.Errorf("locate repository for %s: %w", filePath, err)
		}

		return "", classed(ErrUpstream, "locate repository for "+filePath, err)
	}

	return root, nil
}

func validateFilePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return validationError(ErrEmptyFilePath)
	}

	if !filepath.IsAbs(path) {
		return validationError(ErrFilePathNotAbsolute)
	}

	return nil
}

func checkRegularFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return classed(ErrNotFound, "stat "+path, err)
		}

		return classed(ErrUpstream, "stat "+path, err)
	}

	if !info.Mode().IsRegular() {
		return validationError(ErrNotRegularFile)
	}

	return nil
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
