package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/municipio/patentes-backend/internal/app/service"
	apperrors "github.com/municipio/patentes-backend/internal/errors"
	"github.com/municipio/patentes-backend/internal/middleware"
)

type MemoController struct {
	memoService service.MemoService
}

func NewMemoController(memoService service.MemoService) *MemoController {
	return &MemoController{
		memoService: memoService,
	}
}

type CreateMemoRequest struct {
	Type            string  `json:"type" binding:"required"`
	LicenseNumber   string  `json:"license_number" binding:"required"`
	NationalID      string  `json:"national_id"`
	Name            string  `json:"name"`
	Street          string  `json:"street"`
	Number          *string `json:"number"`
	Clarification   *string `json:"clarification"`
	Period          string  `json:"period" binding:"required"`
	Capital         float64 `json:"capital"`
	TaxableAmount   float64 `json:"taxable_amount"`
	Total           float64 `json:"total"`
	Issuance        int     `json:"issuance"`
	PaymentDate     string  `json:"payment_date" binding:"required"`
	BusinessSector  string  `json:"business_sector"`
	AdditionalTaxID *string `json:"additional_tax_id"`
}

// Create registers a single memo (with its pay time) by hand.
// POST /api/v1/memos
func (ctrl *MemoController) Create(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateMemoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid memo payload", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Los datos del memo no son válidos.")
		return
	}

	input := service.CreateMemoInput{
		Type:            req.Type,
		LicenseNumber:   req.LicenseNumber,
		NationalID:      req.NationalID,
		Name:            req.Name,
		Street:          req.Street,
		Number:          req.Number,
		Clarification:   req.Clarification,
		Period:          req.Period,
		Capital:         req.Capital,
		TaxableAmount:   req.TaxableAmount,
		Total:           req.Total,
		Issuance:        req.Issuance,
		PaymentDate:     req.PaymentDate,
		BusinessSector:  req.BusinessSector,
		AdditionalTaxID: req.AdditionalTaxID,
	}

	if err := ctrl.memoService.Create(input); err != nil {
		if errors.Is(err, service.ErrInvalidPaymentDate) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidDate, "La fecha de pago debe tener el formato aaaammdd.")
			return
		}
		log.Error("Failed to create memo", err, map[string]interface{}{
			"license_number": req.LicenseNumber,
		})
		info := apperrors.ParseError(err, "memo")
		status := http.StatusInternalServerError
		switch info.Code {
		case apperrors.ResourceNotFound, apperrors.MemoNotFound, apperrors.LocalNotFound:
			status = http.StatusNotFound
		case apperrors.ResourceAlreadyExists:
			status = http.StatusConflict
		}
		apperrors.RespondWithError(c, status, info.Code, info.Message)
		return
	}

	log.Info("Memo created", map[string]interface{}{
		"license_number": req.LicenseNumber,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Memo creado correctamente.",
	})
}

// FindByLicenseNumber returns every memo registered under one license.
// GET /api/v1/memos/:licenseNumber
func (ctrl *MemoController) FindByLicenseNumber(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	licenseNumber := c.Param("licenseNumber")
	if licenseNumber == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Debes indicar una patente.")
		return
	}

	result, err := ctrl.memoService.FindByLicenseNumber(licenseNumber)
	if err != nil {
		log.Error("Memo lookup failed", err, map[string]interface{}{
			"license_number": licenseNumber,
		})
		apperrors.InternalError(c, apperrors.FallbackMessage)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Overview returns the cached dashboard counts.
// GET /api/v1/stats/overview
func (ctrl *MemoController) Overview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	overview, err := ctrl.memoService.Overview(c.Request.Context())
	if err != nil {
		log.Error("Overview computation failed", err, nil)
		apperrors.InternalError(c, apperrors.FallbackMessage)
		return
	}

	c.JSON(http.StatusOK, overview)
}
