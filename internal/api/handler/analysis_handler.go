package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/robark/destiny-matrix/internal/core/domain"
	"github.com/robark/destiny-matrix/internal/core/ports"
)

// AnalysisHandler serves matrix analyses. It expects the pipeline to have
// authenticated the caller and created the order.
type AnalysisHandler struct {
	service ports.AnalysisService
	log     zerolog.Logger
}

func NewAnalysisHandler(service ports.AnalysisService, log zerolog.Logger) *AnalysisHandler {
	return &AnalysisHandler{service: service, log: log}
}

// Analyze handles POST /analyze-matrix.
//
// @Summary      Analyze a destiny matrix
// @Description  Authenticates the caller, buys the analysis service and returns an AI interpretation.
// @Tags         analysis
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      analyzeRequest   true  "Matrix data and analysis type"
// @Success      200   {object}  analyzeResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Failure      500   {object}  analysisFailure
// @Router       /analyze-matrix [post]
func (h *AnalysisHandler) Analyze(c echo.Context) error {
	var req analyzeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	}

	analysisType := domain.AnalysisPersonal
	if req.AnalysisType != nil {
		analysisType = domain.AnalysisType(*req.AnalysisType)
	}

	user, order, requestID := requestScope(c)
	log := h.log.With().
		Str("request_id", requestID).
		Str("analysis_type", string(analysisType)).
		Logger()
	if user != nil {
		log = log.With().Str("user_id", user.ID).Logger()
	}
	if order != nil {
		log = log.With().Str("order_id", order.OrderID).Logger()
	}

	result, err := h.service.Analyze(c.Request().Context(), ports.AnalyzeInput{
		MatrixData:   req.MatrixData,
		AnalysisType: analysisType,
		RequestID:    requestID,
		User:         user,
		Order:        order,
	})
	if err != nil {
		log.Error().Err(err).Msg("analysis failed")
		return c.JSON(http.StatusInternalServerError, analysisFailure{Detail: "Analysis failed: " + err.Error()})
	}

	if result.Degraded {
		log.Warn().Msg("analysis degraded, fallback returned")
		return c.JSON(http.StatusOK, analyzeResponse{Analysis: result.Text, Degraded: true})
	}

	log.Info().Int("analysis_chars", len([]rune(result.Text))).Msg("analysis completed")
	return c.JSON(http.StatusOK, analyzeResponse{Analysis: result.Text, Success: true})
}
