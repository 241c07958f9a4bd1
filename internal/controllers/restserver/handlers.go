package restserver

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rpelletier/meteopi/internal/constants"
	"github.com/rpelletier/meteopi/internal/log"
	"github.com/rpelletier/meteopi/internal/query"
	"github.com/rpelletier/meteopi/internal/types"
	"github.com/rpelletier/meteopi/pkg/responseformat"
)

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	querySvc   *query.Service
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller, querySvc *query.Service) *Handlers {
	return &Handlers{
		controller: ctrl,
		querySvc:   querySvc,
		formatter:  responseformat.NewFormatter(),
	}
}

// GetDataToday serves today's indoor chart data
func (h *Handlers) GetDataToday(w http.ResponseWriter, req *http.Request) {
	h.serveChartData(w, req, types.StreamIndoor)
}

// GetDataTodayExt serves today's outdoor chart data
func (h *Handlers) GetDataTodayExt(w http.ResponseWriter, req *http.Request) {
	h.serveChartData(w, req, types.StreamOutdoor)
}

func (h *Handlers) serveChartData(w http.ResponseWriter, req *http.Request, stream types.Stream) {
	buckets, err := h.querySvc.Today(req.Context(), stream, time.Now())
	if err != nil {
		if errors.Is(err, query.ErrUnknownStream) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Errorf("chart data query failed: %v", err)
		http.Error(w, fmt.Sprintf("server error: %v", err), http.StatusInternalServerError)
		return
	}

	var payload any
	if stream == types.StreamIndoor {
		payload = indoorPoints(buckets)
	} else {
		payload = outdoorPoints(buckets)
	}

	if err := h.formatter.WriteResponse(w, req, payload); err != nil {
		log.Errorf("error writing chart data response: %v", err)
	}
}

// GetHealth is a liveness endpoint
func (h *Handlers) GetHealth(w http.ResponseWriter, req *http.Request) {
	h.formatter.WriteResponse(w, req, map[string]string{
		"status":  "ok",
		"version": constants.Version,
	})
}
