package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nsbs/certify/internal/app/models/dto"
	"github.com/nsbs/certify/internal/app/services"
	"github.com/nsbs/certify/internal/middleware"
	"github.com/nsbs/certify/internal/pkg/apperrors"
	"github.com/nsbs/certify/internal/pkg/validation"
)

// maxSubmitBodyBytes bounds the submit body read into memory
const maxSubmitBodyBytes = 1 << 20

// ExamController handles the exam attempt endpoints
type ExamController struct {
	examService  services.ExamService
	maxTimeSpent int
}

// NewExamController creates a new ExamController
func NewExamController(examService services.ExamService, maxTimeSpent int) *ExamController {
	return &ExamController{
		examService:  examService,
		maxTimeSpent: maxTimeSpent,
	}
}

// courseSlug returns the :slug path parameter. Malformed slugs are reported as an unknown course.
func courseSlug(ctx *gin.Context) (string, error) {
	slug := ctx.Param("slug")
	if !validation.IsCourseSlug(slug) {
		return "", apperrors.ErrCourseNotFound
	}
	return slug, nil
}

// StartExam opens a new attempt for the course
// @Summary Start an exam attempt
// @Description Checks the attempt gate and, when admitted, opens a new attempt and returns the questions without answer keys
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Course slug"
// @Success 200 {object} dto.StartExamResponse "Attempt started"
// @Failure 400 {object} dto.ErrorResponse "Already passed or maximum attempts reached"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Course not purchased or invalid origin"
// @Failure 404 {object} dto.ErrorResponse "Course or questions not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /exams/{slug}/start [post]
func (c *ExamController) StartExam(ctx *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	slug, err := courseSlug(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp, err := c.examService.StartExam(ctx.Request.Context(), userID, slug)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// SubmitExam grades the caller's active attempt
// @Summary Submit an exam attempt
// @Description Grades the submitted answers against the stored answer key, closes the attempt and issues a certificate when passed
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Course slug"
// @Param request body object true "Answers keyed by question id, and timeSpent in seconds"
// @Success 200 {object} dto.SubmitExamResponse "Attempt graded"
// @Failure 400 {object} dto.ErrorResponse "Invalid body, no active attempt or time limit exceeded"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Course not purchased or invalid origin"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /exams/{slug}/submit [post]
func (c *ExamController) SubmitExam(ctx *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	slug, err := courseSlug(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	body, err := io.ReadAll(io.LimitReader(ctx.Request.Body, maxSubmitBodyBytes))
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("Invalid request body"))
		return
	}

	req, err := dto.DecodeSubmitExamRequest(body, c.maxTimeSpent)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp, err := c.examService.SubmitExam(ctx.Request.Context(), userID, slug, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// GetEligibility reports whether the caller may start an attempt
// @Summary Get exam eligibility
// @Description Evaluates the attempt gate without opening an attempt
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Course slug"
// @Success 200 {object} dto.EligibilityResponse "Gate decision"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /exams/{slug}/eligibility [get]
func (c *ExamController) GetEligibility(ctx *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	slug, err := courseSlug(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp, err := c.examService.Eligibility(ctx.Request.Context(), userID, slug)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// ListAttempts returns the caller's attempts for the course
// @Summary List exam attempts
// @Description Returns the caller's attempts for a course, newest first
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Course slug"
// @Success 200 {object} dto.AttemptListResponse "Attempts"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /exams/{slug}/attempts [get]
func (c *ExamController) ListAttempts(ctx *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	slug, err := courseSlug(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp, err := c.examService.ListAttempts(ctx.Request.Context(), userID, slug)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}
