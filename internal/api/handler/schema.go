package handler

// errorResponse is the standard error envelope returned on 4xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type analyzeRequest struct {
	MatrixData   map[string]any `json:"matrix_data"   validate:"required"`
	AnalysisType *string        `json:"analysis_type" validate:"omitempty,max=64"`
}

type analyzeResponse struct {
	Analysis string `json:"analysis"`
	Success  bool   `json:"success"`
	Degraded bool   `json:"degraded,omitempty"`
}

// analysisFailure is returned when the analysis could not be attempted.
type analysisFailure struct {
	Detail string `json:"detail"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}
