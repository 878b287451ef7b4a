package app

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/municipio/patentes-backend/config"
	"github.com/municipio/patentes-backend/internal/app/controller"
	"github.com/municipio/patentes-backend/internal/app/repository"
	"github.com/municipio/patentes-backend/internal/app/service"
	"github.com/municipio/patentes-backend/internal/db"
	"github.com/municipio/patentes-backend/internal/middleware"
	"github.com/municipio/patentes-backend/internal/storage"
	"github.com/municipio/patentes-backend/internal/xlsx"
)

type TestServer struct {
	Router *gin.Engine
	DB     *gorm.DB
}

func setupIntegrationTest(t *testing.T) *TestServer {
	gin.SetMode(gin.TestMode)

	// Setup database
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	// Setup repositories
	representativeRepo := repository.NewRepresentativeRepository(testDB)
	localRepo := repository.NewLocalRepository(testDB)
	memoRepo := repository.NewMemoRepository(testDB)

	// Setup services
	hash, err := bcrypt.GenerateFromPassword([]byte("secreto123"), bcrypt.MinCost)
	require.NoError(t, err)
	authService := service.NewAuthService(config.AdminConfig{
		Username:     "admin",
		PasswordHash: string(hash),
	}, "test-secret", time.Hour)

	importService := service.NewImportService(representativeRepo, localRepo, memoRepo,
		config.ImportConfig{BatchSize: 100, PageSize: 100}, nil)
	exportService := service.NewExportService(memoRepo, 100)
	memoService := service.NewMemoService(memoRepo, localRepo, representativeRepo)

	// Setup controllers
	authController := controller.NewAuthController(authService)
	excelController := controller.NewExcelController(importService, exportService,
		storage.NewArchiveStorage(config.ArchiveConfig{}))
	memoController := controller.NewMemoController(memoService)

	// Setup middleware
	authMiddleware := middleware.NewAuthMiddleware("test-secret")

	// Setup router
	router := gin.New()

	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/login", authController.Login)
	}

	excel := router.Group("/api/v1/excel")
	excel.Use(authMiddleware.Authenticate())
	{
		excel.POST("", excelController.Import)
		excel.GET("", excelController.Export)
	}

	memos := router.Group("/api/v1/memos")
	{
		memos.GET("/:licenseNumber", memoController.FindByLicenseNumber)
		memos.POST("", authMiddleware.Authenticate(), memoController.Create)
	}

	stats := router.Group("/api/v1/stats")
	{
		stats.GET("/overview", memoController.Overview)
	}

	return &TestServer{Router: router, DB: testDB}
}

func login(t *testing.T, ts *TestServer) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{
		"username": "admin",
		"password": "secreto123",
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	ts.Router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func buildUpload(t *testing.T, rows [][]interface{}) (*bytes.Buffer, string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellRef, &row))
	}
	workbook, err := f.WriteToBuffer()
	require.NoError(t, err)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "pagos.xlsx")
	require.NoError(t, err)
	_, err = part.Write(workbook.Bytes())
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func sampleSheet() [][]interface{} {
	return [][]interface{}{
		{"tipo", "patente", "rut", "nombre", "calle", "numero", "periodo",
			"capital", "afecto", "total", "emision", "fecha de pago", "giro",
			"rut representante", "nombre representante"},
		{"COMERCIAL", "100-1", "11111111-1", "Almacén Central", "Calle Falsa", "123",
			"2023-1", 500000, 450000, 52000, 2023, "20230615", "Abarrotes",
			"99999999-9", "Ana Pérez"},
		{"COMERCIAL", "100-2", "22222222-2", "Ferretería Sur", "Av. Principal", "45",
			"2023-1", 800000, 700000, 91000, 2023, "20230620", "Ferretería",
			"99999999-9", "Ana Pérez"},
		{"PROFESIONAL", "100-3", "0", "Consulta", "Pasaje Uno", nil,
			"2023-1", 0, 0, 15000, 2023, "20230701", "Servicios", nil, nil},
	}
}

func TestImportExportRoundTrip(t *testing.T) {
	ts := setupIntegrationTest(t)
	token := login(t, ts)

	// Upload
	body, contentType := buildUpload(t, sampleSheet())
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/excel", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	ts.Router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Excel subido correctamente.")

	// Export
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/excel", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	ts.Router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsx.ContentTypeXLSX, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="data.xlsx"`)

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("data")
	require.NoError(t, err)
	require.Len(t, rows, 4) // header + 3 data rows

	// Re-imported entities survive, memos append.
	body, contentType = buildUpload(t, sampleSheet())
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/excel", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	ts.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var localCount int64
	require.NoError(t, ts.DB.Table("locales").Count(&localCount).Error)
	assert.Equal(t, int64(3), localCount)

	var memoCount int64
	require.NoError(t, ts.DB.Table("memos").Count(&memoCount).Error)
	assert.Equal(t, int64(6), memoCount)
}

func TestImportRequiresAuth(t *testing.T) {
	ts := setupIntegrationTest(t)

	body, contentType := buildUpload(t, sampleSheet())
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/excel", body)
	req.Header.Set("Content-Type", contentType)
	ts.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestImportRejectsNonWorkbook(t *testing.T) {
	ts := setupIntegrationTest(t)
	token := login(t, ts)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "notas.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("esto no es un excel"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/excel", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	ts.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMemoSearchAfterImport(t *testing.T) {
	ts := setupIntegrationTest(t)
	token := login(t, ts)

	body, contentType := buildUpload(t, sampleSheet())
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/excel", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	ts.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/memos/100-1", nil)
	ts.Router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var result struct {
		Message string `json:"message"`
		Total   int    `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "Memo encontrado!", result.Message)
	assert.Equal(t, 1, result.Total)

	// Unknown license
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/memos/999-9", nil)
	ts.Router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No se ha encontrado ningún memo con esta patente.")
}

func TestCreateMemoEndpoint(t *testing.T) {
	ts := setupIntegrationTest(t)
	token := login(t, ts)

	payload, _ := json.Marshal(map[string]interface{}{
		"type":           "COMERCIAL",
		"license_number": "700-1",
		"national_id":    "11111111-1",
		"name":           "Panadería",
		"street":         "Calle Larga",
		"period":         "2023-2",
		"total":          30000,
		"payment_date":   "20230810",
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/memos", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	ts.Router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	// Malformed date is rejected with 400.
	payload, _ = json.Marshal(map[string]interface{}{
		"type":           "COMERCIAL",
		"license_number": "700-2",
		"period":         "2023-2",
		"payment_date":   "10/08/2023",
	})

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/memos", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	ts.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOverviewEndpoint(t *testing.T) {
	ts := setupIntegrationTest(t)
	token := login(t, ts)

	body, contentType := buildUpload(t, sampleSheet())
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/excel", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	ts.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/stats/overview", nil)
	ts.Router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var overview struct {
		Response   string `json:"response"`
		TotalCount []struct {
			Label string `json:"label"`
			Count int64  `json:"count"`
		} `json:"totalCount"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &overview))
	assert.Equal(t, "ok", overview.Response)
	require.Len(t, overview.TotalCount, 4)
}
