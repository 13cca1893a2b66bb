package stats

import (
	"log/slog"
	"net/http"

	"github.com/FACorreiaa/go-saas-starter/internal/api"
)

var _ StatsHandler = (*StatsHandlerImpl)(nil)

type StatsHandler interface {
	GetDownloads(w http.ResponseWriter, r *http.Request)
	IncrementDownloads(w http.ResponseWriter, r *http.Request)
}

type StatsHandlerImpl struct {
	statsService StatsService
	logger       *slog.Logger
}

func NewStatsHandlerImpl(statsService StatsService, logger *slog.Logger) *StatsHandlerImpl {
	return &StatsHandlerImpl{
		statsService: statsService,
		logger:       logger,
	}
}

// GetDownloads godoc
// @Summary      Get Download Count
// @Description  Returns the download counter. Reads may lag increments by up to 30 seconds.
// @Tags         Stats
// @Produce      json
// @Success      200 {object} api.Response "Counter value"
// @Router       /stats/downloads [get]
func (h *StatsHandlerImpl) GetDownloads(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	value, err := h.statsService.GetDownloads(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to read download count", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to read download count")
		return
	}

	api.SuccessResponse(w, r, http.StatusOK, "Download count retrieved", map[string]int64{
		"downloads": value,
	})
}

// IncrementDownloads godoc
// @Summary      Increment Download Count
// @Description  Bumps the download counter by one and returns the new value.
// @Tags         Stats
// @Produce      json
// @Success      200 {object} api.Response "New counter value"
// @Router       /stats/downloads [post]
func (h *StatsHandlerImpl) IncrementDownloads(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	value, err := h.statsService.IncrementDownloads(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to increment download count", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to increment download count")
		return
	}

	api.SuccessResponse(w, r, http.StatusOK, "Download count incremented", map[string]int64{
		"downloads": value,
	})
}
