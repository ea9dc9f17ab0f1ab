package service

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/anime-shed/lineart-prep/internal/analyzer"
	apperrors "github.com/anime-shed/lineart-prep/internal/errors"
	"github.com/anime-shed/lineart-prep/internal/logger"
	"github.com/anime-shed/lineart-prep/internal/observer"
	"github.com/anime-shed/lineart-prep/internal/pipeline"
	"github.com/anime-shed/lineart-prep/internal/repository"
	"github.com/anime-shed/lineart-prep/pkg/models"
	"github.com/anime-shed/lineart-prep/pkg/validation"
)

// LineArtService runs the cleanup and compositing pipelines against image refs
type LineArtService interface {
	// Process cleans up the line art at inputRef and writes
	// <root>/output_<mode>/<stem>.png. The JobResult is returned even on error.
	Process(ctx context.Context, inputRef, outputRoot string, opts pipeline.ProcessOptions) (*models.JobResult, error)

	// Embed composites the line art at imageRef onto backgroundRef and writes
	// <root>/output/<subdir>/<bg stem>_<image stem>.png.
	Embed(ctx context.Context, imageRef, backgroundRef, outputRoot string, opts pipeline.EmbedOptions) (*models.JobResult, error)

	// ProcessBatch runs Process for every ref; results follow input order
	ProcessBatch(ctx context.Context, inputRefs []string, outputRoot string, opts pipeline.ProcessOptions) []models.JobResult

	// EmbedGrid runs Embed for every image against every background,
	// image-major; results follow that order
	EmbedGrid(ctx context.Context, imageRefs, backgroundRefs []string, outputRoot string, opts pipeline.EmbedOptions) []models.JobResult

	// Load validates and reads ref, classifying failures as AppErrors
	Load(ctx context.Context, ref string) (image.Image, error)

	// ProcessImage and EmbedImage run on in-memory images and write nothing.
	// The returned output carries the JobResult even on error.
	ProcessImage(ctx context.Context, name string, img image.Image, opts pipeline.ProcessOptions) (*ProcessOutput, error)
	EmbedImage(ctx context.Context, name, backgroundName string, img, background image.Image, opts pipeline.EmbedOptions) (*EmbedOutput, error)

	// ValidateRef checks a ref without touching storage
	ValidateRef(ref string) error
}

// ProcessOutput is an in-memory cleanup result
type ProcessOutput struct {
	Image *image.NRGBA
	Job   models.JobResult
}

// EmbedOutput is an in-memory compositing result
type EmbedOutput struct {
	Image *image.NRGBA
	Job   models.JobResult
}

// Option configures a lineArtService
type Option func(*lineArtService)

// WithProcessTimeout bounds a single pipeline run, excluding I/O
func WithProcessTimeout(d time.Duration) Option {
	return func(s *lineArtService) {
		s.processTimeout = d
	}
}

// WithStageDumps writes inspected stages under dir/<job id>/ whenever a job
// has a display level but no inspector of its own
func WithStageDumps(dir string) Option {
	return func(s *lineArtService) {
		s.dumpDir = dir
	}
}

// lineArtService implements LineArtService
type lineArtService struct {
	imageRepo    repository.ImageRepository
	analyzer     analyzer.LineArtAnalyzer
	pool         *analyzer.WorkerPool
	events       observer.Subject
	refValidator *validation.RefValidator

	processTimeout time.Duration
	dumpDir        string
}

// NewLineArtService creates a new line-art service. lineAnalyzer and events
// may be nil; pool must be started.
func NewLineArtService(
	imageRepository repository.ImageRepository,
	lineAnalyzer analyzer.LineArtAnalyzer,
	pool *analyzer.WorkerPool,
	events observer.Subject,
	opts ...Option,
) LineArtService {
	s := &lineArtService{
		imageRepo:    imageRepository,
		analyzer:     lineAnalyzer,
		pool:         pool,
		events:       events,
		refValidator: validation.NewRefValidator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *lineArtService) ValidateRef(ref string) error {
	if err := s.refValidator.ValidateRef(ref); err != nil {
		return err
	}
	if err := s.imageRepo.ValidateRef(ref); err != nil {
		return apperrors.NewValidationError("unsupported image reference", err)
	}
	return nil
}

func (s *lineArtService) Load(ctx context.Context, ref string) (image.Image, error) {
	if err := s.ValidateRef(ref); err != nil {
		return nil, err
	}
	img, err := s.imageRepo.Load(ctx, ref)
	if err != nil {
		return nil, loadError(ref, err)
	}
	return img, nil
}

func (s *lineArtService) Process(ctx context.Context, inputRef, outputRoot string, opts pipeline.ProcessOptions) (*models.JobResult, error) {
	job := s.newJob(models.JobProcess, inputRef)
	job.Mode = string(opts.Mode)
	start := time.Now()
	s.publish(ctx, observer.PipelineEvent{EventType: observer.JobStarted, JobID: job.ID, Kind: job.Kind, Ref: inputRef})

	err := s.runProcess(ctx, job, inputRef, outputRoot, opts)
	return s.finish(ctx, job, start, err)
}

func (s *lineArtService) runProcess(ctx context.Context, job *models.JobResult, inputRef, outputRoot string, opts pipeline.ProcessOptions) error {
	if err := validation.ValidateProcessOptions(opts); err != nil {
		return err
	}
	if err := s.ValidateRef(inputRef); err != nil {
		return err
	}
	outRef := pipeline.ProcessOutputRef(inputRef, outputRoot, opts.Mode)
	if err := s.refValidator.ValidateRef(outRef); err != nil {
		return err
	}

	src, err := s.load(ctx, job, inputRef)
	if err != nil {
		return err
	}

	out, err := s.runProcessPipeline(ctx, job, src, opts)
	if err != nil {
		return err
	}

	if err := s.imageRepo.Save(ctx, outRef, out); err != nil {
		return saveError(outRef, err)
	}
	job.OutputRef = outRef
	return nil
}

func (s *lineArtService) Embed(ctx context.Context, imageRef, backgroundRef, outputRoot string, opts pipeline.EmbedOptions) (*models.JobResult, error) {
	job := s.newJob(models.JobEmbed, imageRef)
	job.BackgroundRef = backgroundRef
	start := time.Now()
	s.publish(ctx, observer.PipelineEvent{
		EventType: observer.JobStarted, JobID: job.ID, Kind: job.Kind, Ref: imageRef,
		Metadata: map[string]interface{}{"background": backgroundRef},
	})

	err := s.runEmbed(ctx, job, imageRef, backgroundRef, outputRoot, opts)
	return s.finish(ctx, job, start, err)
}

func (s *lineArtService) runEmbed(ctx context.Context, job *models.JobResult, imageRef, backgroundRef, outputRoot string, opts pipeline.EmbedOptions) error {
	if err := validation.ValidateEmbedOptions(opts); err != nil {
		return err
	}
	if err := s.ValidateRef(imageRef); err != nil {
		return err
	}
	if err := s.ValidateRef(backgroundRef); err != nil {
		return err
	}
	outRef := pipeline.EmbedOutputRef(imageRef, backgroundRef, outputRoot, opts.Subdir)
	if err := s.refValidator.ValidateRef(outRef); err != nil {
		return err
	}

	src, err := s.load(ctx, job, imageRef)
	if err != nil {
		return err
	}
	bg, err := s.load(ctx, job, backgroundRef)
	if err != nil {
		return err
	}

	out, err := s.runEmbedPipeline(ctx, job, src, bg, opts)
	if err != nil {
		return err
	}

	if err := s.imageRepo.Save(ctx, outRef, out); err != nil {
		return saveError(outRef, err)
	}
	job.OutputRef = outRef
	return nil
}

func (s *lineArtService) ProcessImage(ctx context.Context, name string, img image.Image, opts pipeline.ProcessOptions) (*ProcessOutput, error) {
	job := s.newJob(models.JobProcess, name)
	job.Mode = string(opts.Mode)
	start := time.Now()
	s.publish(ctx, observer.PipelineEvent{EventType: observer.JobStarted, JobID: job.ID, Kind: job.Kind, Ref: name})

	var out *image.NRGBA
	err := validation.ValidateProcessOptions(opts)
	if err == nil {
		out, err = s.runProcessPipeline(ctx, job, img, opts)
	}
	result, err := s.finish(ctx, job, start, err)
	if err != nil {
		return &ProcessOutput{Job: *result}, err
	}
	return &ProcessOutput{Image: out, Job: *result}, nil
}

func (s *lineArtService) EmbedImage(ctx context.Context, name, backgroundName string, img, background image.Image, opts pipeline.EmbedOptions) (*EmbedOutput, error) {
	job := s.newJob(models.JobEmbed, name)
	job.BackgroundRef = backgroundName
	start := time.Now()
	s.publish(ctx, observer.PipelineEvent{
		EventType: observer.JobStarted, JobID: job.ID, Kind: job.Kind, Ref: name,
		Metadata: map[string]interface{}{"background": backgroundName},
	})

	var out *image.NRGBA
	err := validation.ValidateEmbedOptions(opts)
	if err == nil {
		out, err = s.runEmbedPipeline(ctx, job, img, background, opts)
	}
	result, err := s.finish(ctx, job, start, err)
	if err != nil {
		return &EmbedOutput{Job: *result}, err
	}
	return &EmbedOutput{Image: out, Job: *result}, nil
}

func (s *lineArtService) ProcessBatch(ctx context.Context, inputRefs []string, outputRoot string, opts pipeline.ProcessOptions) []models.JobResult {
	results := make([]models.JobResult, len(inputRefs))
	s.fanOut(len(inputRefs), func(i int) {
		res, _ := s.Process(ctx, inputRefs[i], outputRoot, opts)
		results[i] = *res
	}, func(i int) {
		results[i] = s.rejected(models.JobProcess, inputRefs[i], "")
	})
	return results
}

func (s *lineArtService) EmbedGrid(ctx context.Context, imageRefs, backgroundRefs []string, outputRoot string, opts pipeline.EmbedOptions) []models.JobResult {
	n := len(imageRefs) * len(backgroundRefs)
	results := make([]models.JobResult, n)
	pair := func(i int) (string, string) {
		return imageRefs[i/len(backgroundRefs)], backgroundRefs[i%len(backgroundRefs)]
	}
	s.fanOut(n, func(i int) {
		img, bg := pair(i)
		res, _ := s.Embed(ctx, img, bg, outputRoot, opts)
		results[i] = *res
	}, func(i int) {
		img, bg := pair(i)
		results[i] = s.rejected(models.JobEmbed, img, bg)
	})
	return results
}

// fanOut runs job(i) for i in [0, n) on the worker pool and waits for this
// batch only. reject(i) fills in jobs the pool refused.
func (s *lineArtService) fanOut(n int, job func(i int), reject func(i int)) {
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		ok := s.pool.Submit(func() {
			defer wg.Done()
			job(i)
		})
		if !ok {
			wg.Done()
			reject(i)
		}
	}
	wg.Wait()
}

func (s *lineArtService) rejected(kind models.JobKind, ref, bgRef string) models.JobResult {
	job := s.newJob(kind, ref)
	job.BackgroundRef = bgRef
	job.Error = "worker pool is shut down"
	return *job
}

func (s *lineArtService) runProcessPipeline(ctx context.Context, job *models.JobResult, src image.Image, opts pipeline.ProcessOptions) (*image.NRGBA, error) {
	ctx, cancel := s.withProcessTimeout(ctx)
	defer cancel()

	opts.Inspector = s.inspectorFor(job, opts.DisplayLevel, opts.Inspector)
	res, err := pipeline.Process(ctx, src, opts)
	if err != nil {
		return nil, pipelineError(err)
	}

	threshold := res.Threshold
	job.Threshold = &threshold
	job.Interpolation = res.Interpolation.String()
	job.Mode = string(opts.Mode)
	s.analyze(job, res.Image)
	return res.Image, nil
}

func (s *lineArtService) runEmbedPipeline(ctx context.Context, job *models.JobResult, src, bg image.Image, opts pipeline.EmbedOptions) (*image.NRGBA, error) {
	ctx, cancel := s.withProcessTimeout(ctx)
	defer cancel()

	opts.Inspector = s.inspectorFor(job, opts.DisplayLevel, opts.Inspector)
	res, err := pipeline.Embed(ctx, src, bg, opts)
	if err != nil {
		return nil, pipelineError(err)
	}

	job.Placement = &models.Point{X: res.Placement.Min.X, Y: res.Placement.Min.Y}
	job.Interpolation = res.Interpolation.String()
	s.analyze(job, res.Image)
	return res.Image, nil
}

func (s *lineArtService) withProcessTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.processTimeout > 0 {
		return context.WithTimeout(ctx, s.processTimeout)
	}
	return context.WithCancel(ctx)
}

func (s *lineArtService) inspectorFor(job *models.JobResult, level int, current pipeline.StageInspector) pipeline.StageInspector {
	if current != nil || s.dumpDir == "" || level <= 0 {
		return current
	}
	return observer.NewStageDumper(filepath.Join(s.dumpDir, job.ID), logger.Logger)
}

func (s *lineArtService) analyze(job *models.JobResult, out *image.NRGBA) {
	if s.analyzer == nil {
		return
	}
	report := s.analyzer.Analyze(out)
	metrics := report.Metrics
	job.Metrics = &metrics
	if len(report.Issues) > 0 {
		job.Warnings = report.Messages()
	}
}

func (s *lineArtService) load(ctx context.Context, job *models.JobResult, ref string) (image.Image, error) {
	img, err := s.imageRepo.Load(ctx, ref)
	if err != nil {
		s.publish(ctx, observer.PipelineEvent{
			EventType: observer.ImageLoadFailed, JobID: job.ID, Kind: job.Kind, Ref: ref, ErrorMessage: err.Error(),
		})
		return nil, loadError(ref, err)
	}
	b := img.Bounds()
	s.publish(ctx, observer.PipelineEvent{
		EventType: observer.ImageLoaded, JobID: job.ID, Kind: job.Kind, Ref: ref, Success: true,
		Metadata: map[string]interface{}{"width": b.Dx(), "height": b.Dy()},
	})
	return img, nil
}

func (s *lineArtService) newJob(kind models.JobKind, ref string) *models.JobResult {
	return &models.JobResult{
		ID:        uuid.NewString(),
		Kind:      kind,
		InputRef:  ref,
		Timestamp: time.Now().UTC(),
	}
}

// finish stamps the duration, records err on the job and publishes the
// outcome. It always returns job.
func (s *lineArtService) finish(ctx context.Context, job *models.JobResult, start time.Time, err error) (*models.JobResult, error) {
	elapsed := time.Since(start)
	job.ProcessingTimeSec = elapsed.Seconds()

	event := observer.PipelineEvent{
		JobID:          job.ID,
		Kind:           job.Kind,
		Ref:            job.InputRef,
		ProcessingTime: elapsed,
		Metadata:       map[string]interface{}{},
	}
	if job.OutputRef != "" {
		event.Metadata["output"] = job.OutputRef
	}
	if job.Threshold != nil {
		event.Metadata["otsu_threshold"] = *job.Threshold
	}
	if job.BackgroundRef != "" {
		event.Metadata["background"] = job.BackgroundRef
	}

	if err != nil {
		job.Error = err.Error()
		event.EventType = observer.JobFailed
		event.ErrorMessage = job.Error
		s.publish(ctx, event)
		return job, fmt.Errorf("job %s: %w", job.ID, err)
	}

	event.EventType = observer.JobCompleted
	event.Success = true
	s.publish(ctx, event)
	return job, nil
}

func (s *lineArtService) publish(ctx context.Context, event observer.PipelineEvent) {
	if s.events == nil {
		return
	}
	s.events.NotifyObservers(ctx, event)
}
