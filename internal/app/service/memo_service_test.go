package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/municipio/patentes-backend/config"
	"github.com/municipio/patentes-backend/internal/xlsx"
	"github.com/municipio/patentes-backend/pkg/util"
)

func newMemoService(t *testing.T) (MemoService, *importFixture) {
	t.Helper()
	f := newImportFixture(t)
	return NewMemoService(f.memoRepo, f.localRepo, f.representativeRepo), f
}

func validInput(license string) CreateMemoInput {
	return CreateMemoInput{
		Type:          "COMERCIAL",
		LicenseNumber: license,
		NationalID:    "11111111-1",
		Name:          "Almacén Central  ",
		Street:        "Calle Falsa ",
		Number:        strPtr("123"),
		Period:        "2023-1",
		Total:         52000,
		PaymentDate:   "20230615",
	}
}

func TestMemoCreate_NewLocal(t *testing.T) {
	svc, f := newMemoService(t)

	require.NoError(t, svc.Create(validInput("100-1")))

	local, err := f.localRepo.FindByLicenseNumber("100-1")
	require.NoError(t, err)
	assert.Equal(t, "Almacén Central", local.Name)

	memos, payTimes, err := f.memoRepo.FindByLocalID(local.ID)
	require.NoError(t, err)
	require.Len(t, memos, 1)
	assert.Equal(t, "Calle Falsa 123", memos[0].Address)

	payTime := payTimes[memos[0].ID]
	assert.Equal(t, 2023, payTime.Year)
	assert.Equal(t, 6, payTime.Month)
	assert.Equal(t, 15, payTime.Day)
}

func TestMemoCreate_ReusesExistingLocal(t *testing.T) {
	svc, f := newMemoService(t)

	require.NoError(t, svc.Create(validInput("200-1")))

	second := validInput("200-1")
	second.Name = "Otro Nombre"
	require.NoError(t, svc.Create(second))

	localCount, err := f.localRepo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), localCount)

	memoCount, err := f.memoRepo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(2), memoCount)
}

func TestMemoCreate_InvalidPaymentDate(t *testing.T) {
	svc, f := newMemoService(t)

	input := validInput("300-1")
	input.PaymentDate = "15/06/2023"

	err := svc.Create(input)
	assert.ErrorIs(t, err, ErrInvalidPaymentDate)

	memoCount, _ := f.memoRepo.Count()
	assert.Equal(t, int64(0), memoCount)
}

func TestMemoCreate_SanitizesNationalID(t *testing.T) {
	svc, f := newMemoService(t)

	input := validInput("400-1")
	input.NationalID = "0"
	require.NoError(t, svc.Create(input))

	local, err := f.localRepo.FindByLicenseNumber("400-1")
	require.NoError(t, err)
	assert.Equal(t, util.SentinelNationalID, local.NationalID)
}

func TestFindByLicenseNumber_UnknownLicense(t *testing.T) {
	svc, _ := newMemoService(t)

	result, err := svc.FindByLicenseNumber("999-9")
	require.NoError(t, err)

	assert.Equal(t, "No se ha encontrado ningún memo con esta patente.", result.Message)
	assert.Empty(t, result.Memos)
	assert.Zero(t, result.Total)
}

func TestFindByLicenseNumber_SingleMemo(t *testing.T) {
	svc, _ := newMemoService(t)

	require.NoError(t, svc.Create(validInput("500-1")))

	result, err := svc.FindByLicenseNumber("500-1")
	require.NoError(t, err)

	assert.Equal(t, "Memo encontrado!", result.Message)
	require.Len(t, result.Memos, 1)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, "15-6-2023", result.Memos[0].PayTime)
}

func TestFindByLicenseNumber_MultipleMemos(t *testing.T) {
	svc, _ := newMemoService(t)

	require.NoError(t, svc.Create(validInput("600-1")))
	require.NoError(t, svc.Create(validInput("600-1")))

	result, err := svc.FindByLicenseNumber("600-1")
	require.NoError(t, err)

	assert.Equal(t, "Memos encontrados!", result.Message)
	assert.Equal(t, 2, result.Total)
}

func TestOverview_CountsAllEntities(t *testing.T) {
	f := newImportFixture(t)
	memoSvc := NewMemoService(f.memoRepo, f.localRepo, f.representativeRepo)
	importSvc := NewImportService(f.representativeRepo, f.localRepo, f.memoRepo,
		config.ImportConfig{BatchSize: 100}, nil)

	require.NoError(t, importSvc.Import([]xlsx.Row{fullRow("700-1"), fullRow("700-2")}))

	overview, err := memoSvc.Overview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "ok", overview.Response)
	require.Len(t, overview.TotalCount, 4)

	byLabel := make(map[string]int64, 4)
	for _, entry := range overview.TotalCount {
		byLabel[entry.Label] = entry.Count
	}
	assert.Equal(t, int64(2), byLabel["Memorándums"])
	assert.Equal(t, int64(2), byLabel["Locales"])
	assert.Equal(t, int64(2), byLabel["Fechas de pago"])
	assert.Equal(t, int64(1), byLabel["Representantes"])
}
