package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/statscrape/internal/domain/table"
)

// Reconstruct rebuilds a typed table from a flat cell stream
func (h *Handlers) Reconstruct(c *gin.Context) {
	var req ReconstructRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}

	schema, err := req.Schema.Resolve()
	if err != nil {
		respondError(c, err)
		return
	}

	policy := h.policy
	if req.Policy != "" {
		if policy, err = table.ParseRowPolicy(req.Policy); err != nil {
			respondError(c, err)
			return
		}
	}

	log := h.requestLogger(c)
	rec := table.NewReconstructor(table.WithRowPolicy(policy), table.WithLogger(log))

	done := h.metrics.TrackReconstruction(schema.Name)
	t, err := rec.Reconstruct(req.Cells, req.Headers, schema, req.Identity)
	done(t, err)
	if err != nil {
		log.Info("Reconstruction rejected",
			zap.String("schema", schema.Name),
			zap.Int("cells", len(req.Cells)),
			zap.Error(err),
		)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ReconstructResponse{
		Schema:   schema.Name,
		Policy:   policy,
		Table:    tableView(t),
		Skipped:  skippedRows(t.Skipped),
		Warnings: warningStrings(t.Warnings),
		Summary:  summarize(t),
	})
}
