package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/anime-shed/lineart-prep/internal/container"
	"github.com/anime-shed/lineart-prep/internal/service"
	"github.com/anime-shed/lineart-prep/pkg/models"
)

// printResults writes the batch as indented JSON and reports whether any
// job failed.
func printResults(w io.Writer, results []models.JobResult) error {
	resp := models.BatchResponse{Results: results}
	for _, r := range results {
		if r.Succeeded() {
			resp.Succeeded++
		} else {
			resp.Failed++
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return err
	}

	if resp.Failed > 0 {
		return fmt.Errorf("%d of %d job(s) failed", resp.Failed, len(results))
	}
	return nil
}

// stageDumps enables per-job stage images when a display level is set.
func stageDumps(display int, debugDir string) []container.Option {
	if display <= 0 {
		return nil
	}
	return []container.Option{container.WithServiceOptions(service.WithStageDumps(debugDir))}
}
