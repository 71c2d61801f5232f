package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// FacialAreaData is the face bounding box in pixels
type FacialAreaData struct {
	X int `json:"x" example:"112"`
	Y int `json:"y" example:"64"`
	W int `json:"w" example:"180"`
	H int `json:"h" example:"220"`
}

// EmployeeResponse represents an enrolled employee
type EmployeeResponse struct {
	ID                 string          `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name               string          `json:"name" example:"Ana Souza"`
	Role               string          `json:"role" example:"Analyst"`
	Department         string          `json:"department" example:"Finance"`
	Email              string          `json:"email" example:"ana@example.com"`
	HasFace            bool            `json:"has_face" example:"true"`
	EmbeddingDimension int             `json:"embedding_dimension" example:"512"`
	FaceConfidence     float64         `json:"face_confidence" example:"0.98"`
	FacialArea         *FacialAreaData `json:"facial_area,omitempty"`
	CreatedAt          string          `json:"created_at" example:"2024-01-01T00:00:00Z"`
	UpdatedAt          string          `json:"updated_at" example:"2024-01-01T00:00:00Z"`
}

// ListEmployeesResponse represents the employee list
type ListEmployeesResponse struct {
	Employees []EmployeeResponse `json:"employees"`
	Total     int                `json:"total" example:"12"`
}

// UpdateProfileRequest is the profile replacement body
type UpdateProfileRequest struct {
	Name       string `json:"name" example:"Ana Souza"`
	Role       string `json:"role" example:"Manager"`
	Department string `json:"department" example:"Finance"`
	Email      string `json:"email" example:"ana@example.com"`
}

// CandidateData represents one scored gallery entry
type CandidateData struct {
	EmployeeID string  `json:"employee_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name       string  `json:"name" example:"Ana Souza"`
	Score      float64 `json:"score" example:"0.91"`
	Cosine     float64 `json:"cosine" example:"0.94"`
	Euclidean  float64 `json:"euclidean" example:"0.89"`
	Geometric  float64 `json:"geometric" example:"0.82"`
}

// IdentifyResponse represents a 1:N identification outcome
type IdentifyResponse struct {
	Recognized bool              `json:"recognized" example:"true"`
	Employee   *EmployeeResponse `json:"employee,omitempty"`
	Score      float64           `json:"score" example:"0.91"`
	Quality    string            `json:"quality" example:"Excellent"`
	Candidates []CandidateData   `json:"candidates"`
	SkippedIDs []string          `json:"skipped_ids,omitempty"`
}

// EmotionLogData represents a persisted emotion analysis
type EmotionLogData struct {
	ID                 string             `json:"id" example:"7c9e6679-7425-40de-944b-e07fc1f90ae7"`
	EmployeeID         string             `json:"employee_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	EmployeeName       string             `json:"employee_name" example:"Ana Souza"`
	DominantEmotion    string             `json:"dominant_emotion" example:"happy"`
	Confidence         float64            `json:"confidence" example:"95.34"`
	EmotionScores      map[string]float64 `json:"emotion_scores"`
	SampleCount        int                `json:"sample_count" example:"8"`
	ConsistencyRatio   float64            `json:"consistency_ratio" example:"0.625"`
	StdDev             float64            `json:"std_dev" example:"2.31"`
	Quality            string             `json:"quality" example:"Good"`
	AnalysisDurationMs int64              `json:"analysis_duration_ms" example:"4120"`
	CreatedAt          string             `json:"created_at" example:"2024-01-01T00:00:00Z"`
}

// AnalysisResponse represents an aggregated emotion analysis
type AnalysisResponse struct {
	LogID              string             `json:"log_id" example:"7c9e6679-7425-40de-944b-e07fc1f90ae7"`
	EmployeeID         string             `json:"employee_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	EmployeeName       string             `json:"employee_name" example:"Ana Souza"`
	DominantEmotion    string             `json:"dominant_emotion" example:"happy"`
	Confidence         float64            `json:"confidence" example:"95.34"`
	BaseConfidence     float64            `json:"base_confidence" example:"81.2"`
	ConsistencyRatio   float64            `json:"consistency_ratio" example:"0.625"`
	ConsistencyBonus   float64            `json:"consistency_bonus" example:"9.375"`
	StdDev             float64            `json:"std_dev" example:"2.31"`
	StabilityBonus     float64            `json:"stability_bonus" example:"4.77"`
	Quality            string             `json:"quality" example:"Good"`
	EmotionScores      map[string]float64 `json:"emotion_scores"`
	Distribution       map[string]int     `json:"distribution"`
	SampleCount        int                `json:"sample_count" example:"8"`
	AnalysisDurationMs int64              `json:"analysis_duration_ms" example:"4120"`
	CreatedAt          string             `json:"created_at" example:"2024-01-01T00:00:00Z"`
}

// CheckinResponse represents identification plus the analysis when recognised
type CheckinResponse struct {
	Identification IdentifyResponse  `json:"identification"`
	Analysis       *AnalysisResponse `json:"analysis,omitempty"`
}

// EmotionHistoryResponse represents the emotion history of one employee
type EmotionHistoryResponse struct {
	EmployeeID string           `json:"employee_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Logs       []EmotionLogData `json:"logs"`
	Total      int              `json:"total" example:"3"`
}

// EmployeeStatsResponse summarises the emotion history of one employee
type EmployeeStatsResponse struct {
	EmployeeID        string  `json:"employee_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	TotalAnalyses     int     `json:"total_analyses" example:"14"`
	AverageConfidence float64 `json:"average_confidence" example:"83.7"`
	MostCommonEmotion string  `json:"most_common_emotion" example:"neutral"`
	MostCommonCount   int     `json:"most_common_count" example:"6"`
}

// RecentLogsResponse represents the latest emotion logs
type RecentLogsResponse struct {
	Logs  []EmotionLogData `json:"logs"`
	Total int              `json:"total" example:"10"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"Request validation failed"`
}

// EmptyResponse represents no content response (204)
type EmptyResponse struct{}

var (
	errValidation   = response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Request validation failed"}, "422", "Unprocessable Entity")
	errInvalidImage = response.New(ErrorResponse{Code: "INVALID_IMAGE", Message: "Invalid or corrupted image"}, "422", "Unprocessable Entity")
	errNoFace       = response.New(ErrorResponse{Code: "NO_FACE_DETECTED", Message: "No face detected in image"}, "422", "Unprocessable Entity")
	errMultiFace    = response.New(ErrorResponse{Code: "MULTIPLE_FACES", Message: "Multiple faces detected"}, "422", "Unprocessable Entity")
	errNotFound     = response.New(ErrorResponse{Code: "EMPLOYEE_NOT_FOUND", Message: "Employee not found"}, "404", "Not Found")
	errProvider     = response.New(ErrorResponse{Code: "PROVIDER_UNAVAILABLE", Message: "Face analysis provider is unavailable"}, "503", "Service Unavailable")
	errInternal     = response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error")
)

func idParam() *parameter.Parameter {
	return parameter.StrParam("id", parameter.Path, parameter.WithDescription("Employee ID (UUID)"))
}

func imageParam() *parameter.Parameter {
	return parameter.FileParam("image", parameter.WithRequired(), parameter.WithDescription("JPEG, PNG or WebP capture"))
}

func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Empathia API",
		Version:     "v1.0.0",
		Description: "Employee face check-in and emotion logging",
		Host:        "localhost:3000",
		Path:        "/v1",
	})

	multipart := []mime.MIME{mime.MIME("multipart/form-data")}
	jsonOnly := []mime.MIME{mime.JSON}

	endpoints := []*endpoint.EndPoint{
		// Employees

		endpoint.New(
			endpoint.POST,
			"/employees",
			endpoint.WithTags("Employees"),
			endpoint.WithSummary("Enrol an employee"),
			endpoint.WithDescription("Extracts the face embedding from the capture and stores the employee with the photo"),
			endpoint.WithConsume(multipart),
			endpoint.WithProduce(jsonOnly),
			endpoint.WithParams(
				parameter.StrParam("name", parameter.Form, parameter.WithRequired()),
				parameter.StrParam("role", parameter.Form),
				parameter.StrParam("department", parameter.Form),
				parameter.StrParam("email", parameter.Form),
				imageParam(),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmployeeResponse{}, "201", "Employee enrolled"),
			}),
			endpoint.WithErrors([]response.Response{
				errValidation,
				errInvalidImage,
				errNoFace,
				errMultiFace,
				response.New(ErrorResponse{Code: "EMPLOYEE_EXISTS", Message: "An employee with this email already exists"}, "409", "Conflict"),
				response.New(ErrorResponse{Code: "INVALID_EMBEDDING_DIMENSION", Message: "Embedding dimension does not match the configured model"}, "422", "Unprocessable Entity"),
				errProvider,
				errInternal,
			}),
		),

		endpoint.New(
			endpoint.GET,
			"/employees",
			endpoint.WithTags("Employees"),
			endpoint.WithSummary("List employees"),
			endpoint.WithProduce(jsonOnly),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ListEmployeesResponse{}, "200", "Employees in enrolment order"),
			}),
			endpoint.WithErrors([]response.Response{errInternal}),
		),

		endpoint.New(
			endpoint.GET,
			"/employees/{id}",
			endpoint.WithTags("Employees"),
			endpoint.WithSummary("Get an employee"),
			endpoint.WithProduce(jsonOnly),
			endpoint.WithParams(idParam()),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmployeeResponse{}, "200", "Employee"),
			}),
			endpoint.WithErrors([]response.Response{errValidation, errNotFound, errInternal}),
		),

		endpoint.New(
			endpoint.PUT,
			"/employees/{id}",
			endpoint.WithTags("Employees"),
			endpoint.WithSummary("Replace the profile of an employee"),
			endpoint.WithDescription("The face record is left untouched"),
			endpoint.WithConsume(jsonOnly),
			endpoint.WithProduce(jsonOnly),
			endpoint.WithParams(idParam()),
			endpoint.WithBody(UpdateProfileRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmployeeResponse{}, "200", "Profile updated"),
			}),
			endpoint.WithErrors([]response.Response{errValidation, errNotFound, errInternal}),
		),

		endpoint.New(
			endpoint.PUT,
			"/employees/{id}/photo",
			endpoint.WithTags("Employees"),
			endpoint.WithSummary("Re-capture the face of an employee"),
			endpoint.WithDescription("Replaces the stored embedding and photo; the employee ID is kept"),
			endpoint.WithConsume(multipart),
			endpoint.WithProduce(jsonOnly),
			endpoint.WithParams(idParam(), imageParam()),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmployeeResponse{}, "200", "Face re-captured"),
			}),
			endpoint.WithErrors([]response.Response{errValidation, errInvalidImage, errNoFace, errMultiFace, errNotFound, errProvider, errInternal}),
		),

		endpoint.New(
			endpoint.GET,
			"/employees/{id}/photo",
			endpoint.WithTags("Employees"),
			endpoint.WithSummary("Download the enrolment photo"),
			endpoint.WithProduce([]mime.MIME{mime.MIME("image/jpeg"), mime.MIME("image/png")}),
			endpoint.WithParams(idParam()),
			endpoint.WithErrors([]response.Response{
				errValidation,
				response.New(ErrorResponse{Code: "NOT_FOUND", Message: "Resource not found"}, "404", "Not Found"),
				errInternal,
			}),
		),

		endpoint.New(
			endpoint.DELETE,
			"/employees/{id}",
			endpoint.WithTags("Employees"),
			endpoint.WithSummary("Delete an employee"),
			endpoint.WithDescription("Deletes the employee and every emotion log of the employee (LGPD compliance)"),
			endpoint.WithParams(idParam()),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmptyResponse{}, "204", "Employee deleted"),
			}),
			endpoint.WithErrors([]response.Response{errValidation, errNotFound, errInternal}),
		),

		endpoint.New(
			endpoint.GET,
			"/employees/{id}/emotions",
			endpoint.WithTags("Emotions"),
			endpoint.WithSummary("Emotion history of an employee"),
			endpoint.WithProduce(jsonOnly),
			endpoint.WithParams(idParam()),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmotionHistoryResponse{}, "200", "Logs, newest first"),
			}),
			endpoint.WithErrors([]response.Response{errValidation, errNotFound, errInternal}),
		),

		endpoint.New(
			endpoint.GET,
			"/employees/{id}/stats",
			endpoint.WithTags("Emotions"),
			endpoint.WithSummary("Emotion statistics of an employee"),
			endpoint.WithProduce(jsonOnly),
			endpoint.WithParams(idParam()),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmployeeStatsResponse{}, "200", "Statistics"),
			}),
			endpoint.WithErrors([]response.Response{errValidation, errNotFound, errInternal}),
		),

		// Check-in pipeline

		endpoint.New(
			endpoint.POST,
			"/identify",
			endpoint.WithTags("Check-in"),
			endpoint.WithSummary("Identify a face among enrolled employees"),
			endpoint.WithDescription("Exhaustive 1:N scan. recognized=false is a normal outcome. Stored records with an incompatible embedding are skipped and listed"),
			endpoint.WithConsume(multipart),
			endpoint.WithProduce(jsonOnly),
			endpoint.WithParams(imageParam()),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(IdentifyResponse{}, "200", "Identification completed"),
			}),
			endpoint.WithErrors([]response.Response{errValidation, errInvalidImage, errNoFace, errMultiFace, errProvider, errInternal}),
		),

		endpoint.New(
			endpoint.POST,
			"/employees/{id}/analysis",
			endpoint.WithTags("Check-in"),
			endpoint.WithSummary("Analyse the emotion of a known employee"),
			endpoint.WithDescription("Samples the emotion classifier with alternating detector settings, aggregates the readings and appends an emotion log"),
			endpoint.WithConsume(multipart),
			endpoint.WithProduce(jsonOnly),
			endpoint.WithParams(idParam(), imageParam()),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(AnalysisResponse{}, "201", "Analysis logged"),
			}),
			endpoint.WithErrors([]response.Response{
				errValidation,
				errInvalidImage,
				errNotFound,
				response.New(ErrorResponse{Code: "INSUFFICIENT_SAMPLES", Message: "Not enough confident emotion readings"}, "422", "Unprocessable Entity"),
				errProvider,
				errInternal,
			}),
		),

		endpoint.New(
			endpoint.POST,
			"/checkin",
			endpoint.WithTags("Check-in"),
			endpoint.WithSummary("Identify and, when recognised, analyse the emotion"),
			endpoint.WithConsume(multipart),
			endpoint.WithProduce(jsonOnly),
			endpoint.WithParams(imageParam()),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(CheckinResponse{}, "201", "Employee recognised and analysis logged"),
				response.New(CheckinResponse{}, "200", "Face not recognised"),
			}),
			endpoint.WithErrors([]response.Response{
				errValidation,
				errInvalidImage,
				errNoFace,
				response.New(ErrorResponse{Code: "INSUFFICIENT_SAMPLES", Message: "Not enough confident emotion readings"}, "422", "Unprocessable Entity"),
				errProvider,
				errInternal,
			}),
		),

		endpoint.New(
			endpoint.GET,
			"/emotions/recent",
			endpoint.WithTags("Emotions"),
			endpoint.WithSummary("Latest emotion logs across all employees"),
			endpoint.WithProduce(jsonOnly),
			endpoint.WithParams(
				parameter.IntParam("limit", parameter.Query, parameter.WithDescription("Number of logs (1-100, default 10)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(RecentLogsResponse{}, "200", "Logs, newest first"),
			}),
			endpoint.WithErrors([]response.Response{errValidation, errInternal}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
