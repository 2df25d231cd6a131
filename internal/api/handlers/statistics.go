package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/inferloop/statlab/internal/analytics"
	"github.com/inferloop/statlab/internal/distributions"
	"github.com/inferloop/statlab/internal/estimation"
	"github.com/inferloop/statlab/internal/inference"
	statmath "github.com/inferloop/statlab/internal/utils/math"
	"github.com/inferloop/statlab/pkg/constants"
	"github.com/inferloop/statlab/pkg/errors"
	"github.com/inferloop/statlab/pkg/models"
)

// StatisticsHandler serves descriptive, interval, test, power and estimation endpoints.
type StatisticsHandler struct {
	engine *analytics.Engine
	logger *logrus.Logger
}

func NewStatisticsHandler(engine *analytics.Engine, logger *logrus.Logger) *StatisticsHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &StatisticsHandler{engine: engine, logger: logger}
}

type describeRequest struct {
	Data []float64 `json:"data"`
	Bins int       `json:"bins,omitempty"`
}

type meanIntervalRequest struct {
	Data               []float64 `json:"data"`
	ConfidenceLevel    float64   `json:"confidenceLevel,omitempty"`
	IsNormal           bool      `json:"isNormal,omitempty"`
	KnownVariance      bool      `json:"knownVariance,omitempty"`
	PopulationVariance float64   `json:"populationVariance,omitempty"`
	TailType           string    `json:"tailType,omitempty"`
}

type twoSampleIntervalRequest struct {
	Data1           []float64 `json:"data1"`
	Data2           []float64 `json:"data2"`
	ConfidenceLevel float64   `json:"confidenceLevel,omitempty"`
	Method          string    `json:"method,omitempty"`
	TailType        string    `json:"tailType,omitempty"`
}

type proportionIntervalRequest struct {
	Successes       int     `json:"successes"`
	Trials          int     `json:"trials"`
	ConfidenceLevel float64 `json:"confidenceLevel,omitempty"`
	Method          string  `json:"method,omitempty"`
	TailType        string  `json:"tailType,omitempty"`
}

type twoProportionIntervalRequest struct {
	Successes1      int     `json:"successes1"`
	Trials1         int     `json:"trials1"`
	Successes2      int     `json:"successes2"`
	Trials2         int     `json:"trials2"`
	ConfidenceLevel float64 `json:"confidenceLevel,omitempty"`
	Method          string  `json:"method,omitempty"`
	TailType        string  `json:"tailType,omitempty"`
}

// testRequest takes either raw data or summary statistics (mean, sd, n).
type testRequest struct {
	Data     []float64 `json:"data,omitempty"`
	Mean     *float64  `json:"mean,omitempty"`
	SD       float64   `json:"sd,omitempty"`
	N        int       `json:"n,omitempty"`
	Mu0      float64   `json:"mu0"`
	Sigma    float64   `json:"sigma,omitempty"`
	Alpha    float64   `json:"alpha,omitempty"`
	TailType string    `json:"tailType,omitempty"`
}

type powerRequest struct {
	Test         string   `json:"test,omitempty"`
	Mu1          float64  `json:"mu1"`
	Mu0          float64  `json:"mu0"`
	Sigma        float64  `json:"sigma"`
	N            int      `json:"n"`
	Alpha        float64  `json:"alpha,omitempty"`
	TailType     string   `json:"tailType,omitempty"`
	IncludeCurve bool     `json:"includeCurve,omitempty"`
	CurveStart   *float64 `json:"curveStart,omitempty"`
	CurveEnd     *float64 `json:"curveEnd,omitempty"`
	CurveStep    float64  `json:"curveStep,omitempty"`
}

type sampleSizePowerRequest struct {
	Mu1      float64 `json:"mu1"`
	Mu0      float64 `json:"mu0"`
	Sigma    float64 `json:"sigma"`
	Alpha    float64 `json:"alpha,omitempty"`
	Beta     float64 `json:"beta"`
	TailType string  `json:"tailType,omitempty"`
}

// sampleSizeMarginRequest sizes a mean interval from sigma, or a proportion interval
// when proportion is set.
type sampleSizeMarginRequest struct {
	Sigma           float64  `json:"sigma,omitempty"`
	Proportion      *float64 `json:"proportion,omitempty"`
	Margin          float64  `json:"margin"`
	ConfidenceLevel float64  `json:"confidenceLevel,omitempty"`
}

type sampleSizeResponse struct {
	SampleSize int `json:"sampleSize"`
}

type estimateRequest struct {
	Data   []float64 `json:"data"`
	Family string    `json:"family"`
	Method string    `json:"method,omitempty"`
}

func (h *StatisticsHandler) Describe(w http.ResponseWriter, r *http.Request) {
	var req describeRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	result, err := h.engine.Describe(r.Context(), req.Data, req.Bins)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (h *StatisticsHandler) MeanInterval(w http.ResponseWriter, r *http.Request) {
	var req meanIntervalRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	tail, err := parseTail(req.TailType)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	result, err := h.engine.MeanInterval(r.Context(), req.Data,
		withDefault(req.ConfidenceLevel, constants.DefaultConfidenceLevel),
		inference.MeanIntervalOptions{
			IsNormal:           req.IsNormal,
			KnownVariance:      req.KnownVariance,
			PopulationVariance: req.PopulationVariance,
			Tail:               tail,
		})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (h *StatisticsHandler) TwoSampleInterval(w http.ResponseWriter, r *http.Request) {
	var req twoSampleIntervalRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	tail, err := parseTail(req.TailType)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	result, err := h.engine.TwoSampleInterval(r.Context(), req.Data1, req.Data2,
		withDefault(req.ConfidenceLevel, constants.DefaultConfidenceLevel),
		inference.TwoSampleOptions{Method: inference.TwoSampleMethod(lower(req.Method)), Tail: tail})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (h *StatisticsHandler) ProportionInterval(w http.ResponseWriter, r *http.Request) {
	var req proportionIntervalRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	tail, err := parseTail(req.TailType)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	result, err := h.engine.ProportionInterval(r.Context(), req.Successes, req.Trials,
		withDefault(req.ConfidenceLevel, constants.DefaultConfidenceLevel),
		inference.ProportionOptions{Method: inference.ProportionMethod(lower(req.Method)), Tail: tail})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (h *StatisticsHandler) TwoProportionInterval(w http.ResponseWriter, r *http.Request) {
	var req twoProportionIntervalRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	tail, err := parseTail(req.TailType)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	result, err := h.engine.TwoProportionInterval(r.Context(),
		req.Successes1, req.Trials1, req.Successes2, req.Trials2,
		withDefault(req.ConfidenceLevel, constants.DefaultConfidenceLevel),
		inference.TwoProportionOptions{Method: inference.TwoProportionMethod(lower(req.Method)), Tail: tail})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (h *StatisticsHandler) ZTest(w http.ResponseWriter, r *http.Request) {
	h.oneSampleTest(w, r, statmath.SamplingZ)
}

func (h *StatisticsHandler) TTest(w http.ResponseWriter, r *http.Request) {
	h.oneSampleTest(w, r, statmath.SamplingT)
}

func (h *StatisticsHandler) oneSampleTest(w http.ResponseWriter, r *http.Request, sampling statmath.Sampling) {
	var req testRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	tail, err := parseTail(req.TailType)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	alpha := withDefault(req.Alpha, constants.DefaultAlpha)

	if req.Mean != nil {
		if len(req.Data) > 0 {
			writeError(w, r, h.logger, invalidRequest("give either data or summary statistics, not both"))
			return
		}
		sd := req.SD
		if sampling == statmath.SamplingZ {
			sd = req.Sigma
		}
		result, err := h.engine.SummaryTest(r.Context(), analytics.SummaryTestRequest{
			Test: sampling, Mean: *req.Mean, SD: sd, N: req.N, Mu0: req.Mu0, Alpha: alpha, Tail: tail,
		})
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		writeJSON(w, r, http.StatusOK, result)
		return
	}

	var result *models.TestResult
	if sampling == statmath.SamplingZ {
		result, err = h.engine.ZTest(r.Context(), req.Data, req.Mu0, req.Sigma, alpha, tail)
	} else {
		result, err = h.engine.TTest(r.Context(), req.Data, req.Mu0, alpha, tail)
	}
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (h *StatisticsHandler) Power(w http.ResponseWriter, r *http.Request) {
	var req powerRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	tail, err := parseTail(req.TailType)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var sampling statmath.Sampling
	switch lower(req.Test) {
	case "", "z":
		sampling = statmath.SamplingZ
	case "t":
		sampling = statmath.SamplingT
	default:
		writeError(w, r, h.logger, errors.NewInvalidParameterError("test", req.Test, "expected z or t"))
		return
	}

	result, err := h.engine.Power(r.Context(), analytics.PowerRequest{
		Test:         sampling,
		Mu1:          req.Mu1,
		Mu0:          req.Mu0,
		Sigma:        req.Sigma,
		N:            req.N,
		Alpha:        withDefault(req.Alpha, constants.DefaultAlpha),
		Tail:         tail,
		IncludeCurve: req.IncludeCurve,
		Curve: inference.PowerCurveSpec{
			Start: req.CurveStart,
			End:   req.CurveEnd,
			Step:  req.CurveStep,
		},
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (h *StatisticsHandler) SampleSizeForPower(w http.ResponseWriter, r *http.Request) {
	var req sampleSizePowerRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	tail, err := parseTail(req.TailType)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	n, err := h.engine.SampleSizeForPower(r.Context(), req.Mu1, req.Mu0, req.Sigma,
		withDefault(req.Alpha, constants.DefaultAlpha), req.Beta, tail)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sampleSizeResponse{SampleSize: n})
}

func (h *StatisticsHandler) SampleSizeForMargin(w http.ResponseWriter, r *http.Request) {
	var req sampleSizeMarginRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	level := withDefault(req.ConfidenceLevel, constants.DefaultConfidenceLevel)

	var (
		n   int
		err error
	)
	if req.Proportion != nil {
		n, err = h.engine.SampleSizeForProportionMargin(r.Context(), *req.Proportion, req.Margin, level)
	} else {
		n, err = h.engine.SampleSizeForMargin(r.Context(), req.Sigma, req.Margin, level)
	}
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sampleSizeResponse{SampleSize: n})
}

func (h *StatisticsHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := requireField("family", req.Family != ""); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	family, err := distributions.ParseFamily(req.Family)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	method, err := estimation.ParseMethod(req.Method)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	result, err := h.engine.Estimate(r.Context(), req.Data, family, method)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}
