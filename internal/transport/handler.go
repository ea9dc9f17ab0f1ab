package transport

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/anime-shed/lineart-prep/internal/config"
	apperrors "github.com/anime-shed/lineart-prep/internal/errors"
	"github.com/anime-shed/lineart-prep/internal/logger"
	"github.com/anime-shed/lineart-prep/internal/observer"
	"github.com/anime-shed/lineart-prep/internal/pipeline"
	"github.com/anime-shed/lineart-prep/internal/service"
	"github.com/anime-shed/lineart-prep/internal/storage"
	"github.com/anime-shed/lineart-prep/internal/strategy"
	"github.com/anime-shed/lineart-prep/pkg/models"
	"github.com/anime-shed/lineart-prep/pkg/validation"
)

// Version is reported by /health.
const Version = "1.0.0"

// Response headers describing a pipeline run
const (
	HeaderJobID         = "X-Job-ID"
	HeaderThreshold     = "X-Otsu-Threshold"
	HeaderInterpolation = "X-Interpolation"
	HeaderInkCoverage   = "X-Ink-Coverage"
	HeaderWarnings      = "X-Lineart-Warnings"
)

type handler struct {
	svc          service.LineArtService
	metrics      *observer.MetricsObserver
	cfg          *config.Config
	refValidator *validation.RefValidator
}

// NewHandler builds the gin engine. metrics may be nil, in which case
// /metrics reports zeros.
func NewHandler(svc service.LineArtService, metrics *observer.MetricsObserver, cfg *config.Config) http.Handler {
	h := &handler{
		svc:          svc,
		metrics:      metrics,
		cfg:          cfg,
		refValidator: validation.NewRemoteRefValidator(),
	}

	r := gin.Default()

	// Add middleware
	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	// Configure routes
	r.GET("/health", h.healthCheck)
	r.GET("/metrics", h.metricsSnapshot)
	r.POST("/process", h.process)
	r.POST("/embed", h.embed)

	return r
}

func (h *handler) process(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	logRequest(c, "Processing line-art cleanup request")

	opts, err := processOptionsFromForm(c)
	if err != nil {
		respondError(c, apperrors.GetStatusCode(err), "invalid options", err, "")
		return
	}

	img, name, err := h.inputImage(ctx, c, "image", "ref")
	if err != nil {
		respondError(c, apperrors.GetStatusCode(err), "invalid image", err, "")
		return
	}

	out, err := h.svc.ProcessImage(ctx, name, img, opts)
	if err != nil {
		respondError(c, apperrors.GetStatusCode(err), "processing failed", err, jobID(out))
		return
	}

	if out.Job.Threshold != nil {
		c.Header(HeaderThreshold, strconv.Itoa(int(*out.Job.Threshold)))
	}
	writePNG(c, out.Image, out.Job)
}

func (h *handler) embed(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	logRequest(c, "Processing embed request")

	opts, err := embedOptionsFromForm(c)
	if err != nil {
		respondError(c, apperrors.GetStatusCode(err), "invalid options", err, "")
		return
	}

	img, name, err := h.inputImage(ctx, c, "image", "ref")
	if err != nil {
		respondError(c, apperrors.GetStatusCode(err), "invalid image", err, "")
		return
	}
	bg, bgName, err := h.inputImage(ctx, c, "background", "background_ref")
	if err != nil {
		respondError(c, apperrors.GetStatusCode(err), "invalid background", err, "")
		return
	}

	out, err := h.svc.EmbedImage(ctx, name, bgName, img, bg, opts)
	if err != nil {
		respondError(c, apperrors.GetStatusCode(err), "embedding failed", err, embedJobID(out))
		return
	}

	writePNG(c, out.Image, out.Job)
}

// inputImage reads an uploaded file field, or failing that loads a remote ref
// named by refField. Local paths are never accepted over HTTP.
func (h *handler) inputImage(ctx context.Context, c *gin.Context, fileField, refField string) (image.Image, string, error) {
	fh, err := c.FormFile(fileField)
	switch {
	case err == nil:
		f, err := fh.Open()
		if err != nil {
			return nil, "", apperrors.NewValidationError("cannot open upload "+fileField, err)
		}
		defer f.Close()

		img, _, err := storage.Decode(f)
		if err != nil {
			return nil, "", classifyUploadError(fileField, err)
		}
		return img, fh.Filename, nil
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		return nil, "", classifyUploadError(fileField, err)
	}

	ref := strings.TrimSpace(c.PostForm(refField))
	if ref == "" {
		return nil, "", apperrors.NewValidationError(
			fmt.Sprintf("either a %q file or a %q reference is required", fileField, refField), nil)
	}
	if err := h.refValidator.ValidateRef(ref); err != nil {
		return nil, "", err
	}

	img, err := h.svc.Load(ctx, ref)
	if err != nil {
		return nil, "", err
	}
	return img, ref, nil
}

func classifyUploadError(field string, err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
		return &apperrors.AppError{
			Type:       apperrors.ErrorTypeValidation,
			Message:    "request body too large",
			StatusCode: http.StatusRequestEntityTooLarge,
			Cause:      err,
		}
	}
	if errors.Is(err, storage.ErrUndecodable) {
		return apperrors.NewDecodeError("cannot decode "+field, err)
	}
	return apperrors.NewValidationError("cannot read "+field, err)
}

func processOptionsFromForm(c *gin.Context) (pipeline.ProcessOptions, error) {
	opts := pipeline.DefaultProcessOptions()

	if v := c.PostForm("mode"); v != "" {
		mode, err := strategy.ParseMode(v)
		if err != nil {
			return opts, apperrors.NewValidationError(err.Error(), nil)
		}
		opts = opts.WithMode(mode)
	}

	var err error
	if opts.SESize, err = formInt(c, "se_size", opts.SESize); err != nil {
		return opts, err
	}
	if opts.Iterations, err = formInt(c, "iterations", opts.Iterations); err != nil {
		return opts, err
	}
	if opts.MaxWidth, err = formInt(c, "max_width", opts.MaxWidth); err != nil {
		return opts, err
	}
	if opts.MaxHeight, err = formInt(c, "max_height", opts.MaxHeight); err != nil {
		return opts, err
	}
	return opts, nil
}

func embedOptionsFromForm(c *gin.Context) (pipeline.EmbedOptions, error) {
	opts := pipeline.DefaultEmbedOptions()

	var err error
	if opts.Left, err = formInt(c, "left", opts.Left); err != nil {
		return opts, err
	}
	if opts.Top, err = formInt(c, "top", opts.Top); err != nil {
		return opts, err
	}
	if opts.MaxWidth, err = formInt(c, "max_width", opts.MaxWidth); err != nil {
		return opts, err
	}
	if opts.MaxHeight, err = formInt(c, "max_height", opts.MaxHeight); err != nil {
		return opts, err
	}
	return opts, nil
}

// formInt reads an integer form field, or query parameter, with a default
func formInt(c *gin.Context, field string, def int) (int, error) {
	raw, ok := c.GetPostForm(field)
	if !ok {
		raw, ok = c.GetQuery(field)
	}
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def, apperrors.NewValidationError(fmt.Sprintf("%s must be an integer", field), err)
	}
	return n, nil
}

func writePNG(c *gin.Context, img image.Image, job models.JobResult) {
	data, err := storage.PNGBytes(img)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "encoding failed", err, job.ID)
		return
	}

	c.Header(HeaderJobID, job.ID)
	if job.Interpolation != "" {
		c.Header(HeaderInterpolation, job.Interpolation)
	}
	if job.Metrics != nil {
		c.Header(HeaderInkCoverage, strconv.FormatFloat(job.Metrics.InkCoverage, 'f', 4, 64))
	}
	if len(job.Warnings) > 0 {
		c.Header(HeaderWarnings, strings.Join(job.Warnings, " | "))
	}

	logger.WithFields(logrus.Fields{
		"job_id":              job.ID,
		"kind":                job.Kind,
		"input":               job.InputRef,
		"processing_time_sec": job.ProcessingTimeSec,
		"bytes":               len(data),
	}).Info("Line-art request completed successfully")

	c.Data(http.StatusOK, "image/png", data)
}

func (h *handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "available",
		Version:   Version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Azure:     h.cfg.AzureEnabled(),
	})
}

func (h *handler) metricsSnapshot(c *gin.Context) {
	if h.metrics == nil {
		c.JSON(http.StatusOK, models.MetricsResponse{JobsByKind: map[string]int64{}})
		return
	}
	c.JSON(http.StatusOK, h.metrics.GetMetrics())
}

func jobID(out *service.ProcessOutput) string {
	if out == nil {
		return ""
	}
	return out.Job.ID
}

func embedJobID(out *service.EmbedOutput) string {
	if out == nil {
		return ""
	}
	return out.Job.ID
}

func logRequest(c *gin.Context, msg string) {
	logger.WithFields(logrus.Fields{
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"user_agent": c.Request.UserAgent(),
		"ip":         c.ClientIP(),
	}).Info(msg)
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err.Err), "request processing failed", err.Err, "")
		}
	}
}

func determineStatusCode(err error) int {
	// Check if it's a custom app error first
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	// Fallback to context-based errors
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error, jobID string) {
	// Log the error with context
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
		"job_id":      jobID,
	}).Error("Request failed")

	if jobID != "" {
		c.Header(HeaderJobID, jobID)
	}
	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
		JobID:   jobID,
	})
}
