package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nsbs/certify/internal/app/models/dto"
	"github.com/nsbs/certify/internal/app/services"
	"github.com/nsbs/certify/internal/middleware"
	"github.com/nsbs/certify/internal/pkg/apperrors"
)

// CertificateController handles certificate listing, verification and revocation
type CertificateController struct {
	certificateService services.CertificateService
}

// NewCertificateController creates a new CertificateController
func NewCertificateController(certificateService services.CertificateService) *CertificateController {
	return &CertificateController{
		certificateService: certificateService,
	}
}

// VerifyCertificate is the public verification lookup
// @Summary Verify a certificate
// @Description Looks up a certificate by number or id and reports whether it is valid
// @Tags verification
// @Produce json
// @Param certificateId path string true "Certificate number or id"
// @Success 200 {object} dto.VerificationResponse "Certificate is valid"
// @Failure 404 {object} dto.VerificationResponse "Certificate not found"
// @Failure 410 {object} dto.VerificationResponse "Certificate revoked"
// @Failure 429 {object} dto.ErrorResponse "Too many requests"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /verification/{certificateId} [get]
func (c *CertificateController) VerifyCertificate(ctx *gin.Context) {
	cert, err := c.certificateService.Verify(ctx.Request.Context(), services.VerificationRequest{
		Identifier: ctx.Param("certificateId"),
		IPAddress:  ctx.ClientIP(),
		UserAgent:  ctx.Request.UserAgent(),
	})

	switch {
	case err == nil:
		ctx.JSON(http.StatusOK, dto.VerificationResponse{
			Valid:       true,
			Certificate: dto.NewVerifiedCertificate(cert),
		})
	case errors.Is(err, apperrors.ErrCertificateNotFound):
		ctx.JSON(http.StatusNotFound, dto.VerificationResponse{
			Valid: false,
			Error: "Certificate not found",
		})
	case errors.Is(err, apperrors.ErrCertificateRevoked):
		resp := dto.VerificationResponse{
			Valid: false,
			Error: "Certificate has been revoked",
		}
		if cert != nil {
			resp.RevokedAt = cert.RevokedAt
		}
		ctx.JSON(http.StatusGone, resp)
	default:
		middleware.HandleAPIError(ctx, err)
	}
}

// ListCertificates returns the caller's certificates
// @Summary List my certificates
// @Description Returns every certificate issued to the caller, newest first
// @Tags certificates
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.CertificateListResponse "Certificates"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /certificates [get]
func (c *CertificateController) ListCertificates(ctx *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp, err := c.certificateService.ListForUser(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// RevokeCertificate revokes a certificate by number
// @Summary Revoke a certificate
// @Description Marks a certificate revoked. Revoking twice keeps the first revocation.
// @Tags admin
// @Accept json
// @Produce json
// @Security AdminKey
// @Param number path string true "Certificate number"
// @Param request body dto.RevokeCertificateRequest true "Revocation reason"
// @Success 200 {object} dto.CertificateResponse "Certificate revoked"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid admin key"
// @Failure 404 {object} dto.ErrorResponse "Certificate not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/certificates/{number}/revoke [post]
func (c *CertificateController) RevokeCertificate(ctx *gin.Context) {
	var req dto.RevokeCertificateRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.certificateService.Revoke(ctx.Request.Context(), ctx.Param("number"), req.Reason)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}
