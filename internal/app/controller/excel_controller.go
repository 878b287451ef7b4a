package controller

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/municipio/patentes-backend/internal/app/service"
	apperrors "github.com/municipio/patentes-backend/internal/errors"
	"github.com/municipio/patentes-backend/internal/middleware"
	"github.com/municipio/patentes-backend/internal/storage"
	"github.com/municipio/patentes-backend/internal/xlsx"
	"github.com/municipio/patentes-backend/pkg/logger"
	"github.com/municipio/patentes-backend/pkg/util"
)

// maxUploadSize caps the uploaded workbook at 50MB.
const maxUploadSize = 50 << 20

type ExcelController struct {
	importService service.ImportService
	exportService service.ExportService
	archive       *storage.ArchiveStorage
}

func NewExcelController(
	importService service.ImportService,
	exportService service.ExportService,
	archive *storage.ArchiveStorage,
) *ExcelController {
	return &ExcelController{
		importService: importService,
		exportService: exportService,
		archive:       archive,
	}
}

// Import ingests a payment workbook into the database.
// POST /api/v1/excel
func (ctrl *ExcelController) Import(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		log.Warn("Missing upload file", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ImportInvalidFile, "Debes adjuntar un archivo Excel.")
		return
	}

	if fileHeader.Size > maxUploadSize {
		log.Warn("Upload too large", map[string]interface{}{
			"size": fileHeader.Size,
		})
		apperrors.BadRequest(c, apperrors.ImportInvalidFile, "El archivo es demasiado grande.")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Error("Failed to open upload", err, nil)
		apperrors.InternalError(c, apperrors.FallbackMessage)
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		log.Error("Failed to read upload", err, nil)
		apperrors.InternalError(c, apperrors.FallbackMessage)
		return
	}

	rows, err := xlsx.ReadRows(bytes.NewReader(raw))
	if err != nil {
		switch {
		case errors.Is(err, xlsx.ErrNoWorksheet):
			apperrors.BadRequest(c, apperrors.ImportInvalidFile, "El archivo no contiene ninguna hoja.")
		case errors.Is(err, xlsx.ErrEmptySheet):
			apperrors.BadRequest(c, apperrors.ImportEmptySheet, "El archivo no contiene datos.")
		default:
			log.Warn("Unreadable workbook", map[string]interface{}{
				"filename": fileHeader.Filename,
				"error":    err.Error(),
			})
			apperrors.BadRequest(c, apperrors.ImportInvalidFile, "El archivo no es un Excel válido.")
		}
		return
	}

	log.Info("Starting workbook import", map[string]interface{}{
		"filename": fileHeader.Filename,
		"rows":     len(rows),
	})

	if err := ctrl.importService.Import(rows); err != nil {
		if errors.Is(err, util.ErrMalformedDate) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidDate, "El archivo contiene fechas de pago inválidas.")
			return
		}
		log.Error("Workbook import failed", err, map[string]interface{}{
			"filename": fileHeader.Filename,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.ImportFailed, apperrors.FallbackMessage)
		return
	}

	// Archive the original workbook after a successful import. Failures here
	// must not turn a committed import into an error response.
	if ctrl.archive != nil && ctrl.archive.Enabled() {
		go func(data []byte) {
			key, err := ctrl.archive.StoreWorkbook(context.Background(), data)
			if err != nil {
				logger.Error("Failed to archive workbook", err, nil)
				return
			}
			logger.Info("Workbook archived", map[string]interface{}{
				"key": key,
			})
		}(raw)
	}

	log.Info("Workbook import completed", map[string]interface{}{
		"filename": fileHeader.Filename,
		"rows":     len(rows),
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Excel subido correctamente.",
	})
}

// Export streams the full memo table as a workbook.
// GET /api/v1/excel
func (ctrl *ExcelController) Export(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	buf, err := ctrl.exportService.Export()
	if err != nil {
		log.Error("Workbook export failed", err, nil)
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.ExportFailed, apperrors.FallbackMessage)
		return
	}

	log.Info("Workbook export completed", map[string]interface{}{
		"bytes": buf.Len(),
	})

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", xlsx.ExportFilename))
	c.Data(http.StatusOK, xlsx.ContentTypeXLSX, buf.Bytes())
}
