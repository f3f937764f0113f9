package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/statscrape/internal/pipeline"
)

// RunJob runs an inline job and returns the merged table. Page failures
// are reported per page with a 200; only an invalid job or a run cut short
// fails the request.
func (h *Handlers) RunJob(c *gin.Context) {
	var job pipeline.Job
	if err := c.ShouldBindJSON(&job); err != nil {
		respondError(c, err)
		return
	}

	plan, err := job.Compile()
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.jobTimeout)
	defer cancel()

	res, err := h.runner.RunPlan(ctx, plan)
	if err != nil {
		h.requestLogger(c).Warn("Job run cut short",
			zap.String("job", job.Name),
			zap.Error(err),
		)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, jobResponse(res))
}

func jobResponse(res *pipeline.Result) JobResponse {
	pages := make([]PageSummary, len(res.Pages))
	for i, p := range res.Pages {
		ps := PageSummary{
			ID:       p.ID.String(),
			Ref:      p.Ref,
			Records:  p.Records,
			Skipped:  skippedRows(p.Skipped),
			Warnings: warningStrings(p.Warnings),
		}
		if p.Err != nil {
			ps.Error = p.Err.Error()
			var pageErr *pipeline.PageError
			if errors.As(p.Err, &pageErr) {
				ps.Stage = string(pageErr.Stage)
			}
		}
		pages[i] = ps
	}

	return JobResponse{
		RunID:      res.RunID.String(),
		Job:        res.Job,
		Status:     res.Status,
		Schema:     res.Schema.Name,
		Table:      tableView(res.Table),
		Pages:      pages,
		Summary:    summarize(res.Table),
		DurationMs: res.Duration.Milliseconds(),
	}
}
