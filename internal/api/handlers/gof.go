package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/inferloop/statlab/internal/analytics"
	"github.com/inferloop/statlab/internal/generators"
	"github.com/inferloop/statlab/internal/validation/tests"
	"github.com/inferloop/statlab/pkg/constants"
	"github.com/inferloop/statlab/pkg/models"
)

// GoodnessOfFitHandler serves goodness-of-fit and sample generation endpoints.
type GoodnessOfFitHandler struct {
	engine *analytics.Engine
	logger *logrus.Logger
}

func NewGoodnessOfFitHandler(engine *analytics.Engine, logger *logrus.Logger) *GoodnessOfFitHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &GoodnessOfFitHandler{engine: engine, logger: logger}
}

// gofRequest names a test and a hypothesized family. Empty parameters are fitted by MLE.
type gofRequest struct {
	Data            []float64                     `json:"data"`
	TestType        string                        `json:"testType,omitempty"`
	Distribution    string                        `json:"distribution"`
	Parameters      models.DistributionParameters `json:"parameters,omitempty"`
	Alpha           float64                       `json:"alpha,omitempty"`
	Bins            int                           `json:"bins,omitempty"`
	EstimatedParams int                           `json:"estimatedParams,omitempty"`
}

func (req gofRequest) chiSquareOptions() tests.ChiSquareOptions {
	return tests.ChiSquareOptions{Bins: req.Bins, EstimatedParams: req.EstimatedParams}
}

func (h *GoodnessOfFitHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req gofRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := requireField("testType", req.TestType != ""); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := requireField("distribution", req.Distribution != ""); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	result, err := h.engine.GoodnessOfFit(r.Context(), req.Data, req.TestType, req.Distribution,
		withDefault(req.Alpha, constants.DefaultAlpha), req.Parameters, req.chiSquareOptions())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (h *GoodnessOfFitHandler) Suite(w http.ResponseWriter, r *http.Request) {
	var req gofRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := requireField("distribution", req.Distribution != ""); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	result, err := h.engine.GoodnessOfFitSuite(r.Context(), req.Data, req.Distribution,
		withDefault(req.Alpha, constants.DefaultAlpha), req.Parameters, req.chiSquareOptions())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (h *GoodnessOfFitHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generators.GenerationRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	sample, err := h.engine.Generate(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, sample)
}
