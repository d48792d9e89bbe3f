package service

import (
	"context"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/ai-saathi-api/internal/dto"
	"github.com/noah-isme/ai-saathi-api/internal/models"
	appErrors "github.com/noah-isme/ai-saathi-api/pkg/errors"
	"github.com/noah-isme/ai-saathi-api/pkg/storage"
)

type rosterStub struct {
	views  []models.StudentProfileView
	class  string
	status string
	err    error
}

func (r *rosterStub) Roster(_ context.Context, class, specialStatus, _ string) ([]models.StudentProfileView, error) {
	r.class, r.status = class, specialStatus
	return r.views, r.err
}

func rosterViews() []models.StudentProfileView {
	return []models.StudentProfileView{
		{
			StudentProfile: models.StudentProfile{Name: "Asha", Class: "5A", Gender: models.GenderFemale, AttendancePercentage: 92.5},
			Age:            10,
			Accessibility:  models.ClassifyAccessibility("none"),
		},
		{
			StudentProfile: models.StudentProfile{Name: "Ravi, Jr", Class: "5A", Gender: models.GenderMale, SpecialStatus: models.SpecialStatusBlind},
			Age:            11,
			Accessibility:  models.ClassifyAccessibility("Blind"),
		},
	}
}

func newExportServiceForTest(t *testing.T, roster *rosterStub) *ExportService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	return NewExportService(roster, store, signer, ExportConfig{APIPrefix: "/api/v1", ResultTTL: time.Hour}, zap.NewNop())
}

func TestExportServiceRosterCSV(t *testing.T) {
	roster := &rosterStub{views: rosterViews()}
	svc := newExportServiceForTest(t, roster)

	resp, err := svc.ExportRoster(context.Background(), dto.StudentExportQuery{Class: "5A", SpecialStatus: "Blind"}, "english")
	require.NoError(t, err)
	assert.Equal(t, "csv", resp.Format)
	assert.Equal(t, 2, resp.Rows)
	assert.Equal(t, "5A", roster.class)
	assert.Equal(t, "Blind", roster.status)
	assert.True(t, strings.HasPrefix(resp.DownloadURL, "/api/v1/exports/download?token="))

	parsed, err := url.Parse(resp.DownloadURL)
	require.NoError(t, err)
	assert.Equal(t, resp.Token, parsed.Query().Get("token"))

	download, err := svc.Download(resp.Token)
	require.NoError(t, err)
	defer download.File.Close() //nolint:errcheck
	assert.Equal(t, "text/csv", download.ContentType)
	assert.True(t, strings.HasPrefix(download.Filename, "roster_5A_"))

	body, err := io.ReadAll(download.File)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Name,Class,Age,Gender,Accessibility,Attendance (%)", lines[0])
	assert.Equal(t, "Asha,5A,10,Female,No Special Needs,92.5", lines[1])
	assert.Equal(t, `"Ravi, Jr",5A,11,Male,High Support,0.0`, lines[2])
	assert.Equal(t, int64(len(body)), download.SizeBytes)
}

func TestExportServiceRosterPDF(t *testing.T) {
	svc := newExportServiceForTest(t, &rosterStub{views: rosterViews()})

	resp, err := svc.ExportRoster(context.Background(), dto.StudentExportQuery{Format: "PDF"}, "english")
	require.NoError(t, err)
	assert.Equal(t, "pdf", resp.Format)

	download, err := svc.Download(resp.Token)
	require.NoError(t, err)
	defer download.File.Close() //nolint:errcheck
	assert.Equal(t, "application/pdf", download.ContentType)
	assert.True(t, strings.HasPrefix(download.Filename, "roster_all_"))
	assert.Greater(t, download.SizeBytes, int64(0))
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	roster := &rosterStub{views: rosterViews()}
	svc := newExportServiceForTest(t, roster)

	_, err := svc.ExportRoster(context.Background(), dto.StudentExportQuery{Format: "xlsx"}, "english")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Empty(t, roster.class)
}

func TestExportServicePropagatesRosterError(t *testing.T) {
	svc := newExportServiceForTest(t, &rosterStub{err: appErrors.Clone(appErrors.ErrValidation, "specialStatus must be one of ...")})

	_, err := svc.ExportRoster(context.Background(), dto.StudentExportQuery{SpecialStatus: "Unknown"}, "english")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestExportServiceDownloadRejectsBadTokens(t *testing.T) {
	svc := newExportServiceForTest(t, &rosterStub{views: rosterViews()})

	_, err := svc.Download("")
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Download("not.a.valid.token")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	resp, err := svc.ExportRoster(context.Background(), dto.StudentExportQuery{}, "english")
	require.NoError(t, err)
	_, err = svc.Download(resp.Token + "x")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestExportServiceDownloadAfterCleanup(t *testing.T) {
	svc := newExportServiceForTest(t, &rosterStub{views: rosterViews()})

	resp, err := svc.ExportRoster(context.Background(), dto.StudentExportQuery{}, "english")
	require.NoError(t, err)

	// a negative ttl puts the cutoff in the future so every file is expired
	removed, err := svc.storage.CleanupOlderThan(-time.Minute)
	require.NoError(t, err)
	require.Len(t, removed, 1)

	_, err = svc.Download(resp.Token)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestExportServiceCleanupKeepsFreshFiles(t *testing.T) {
	svc := newExportServiceForTest(t, &rosterStub{views: rosterViews()})

	_, err := svc.ExportRoster(context.Background(), dto.StudentExportQuery{}, "english")
	require.NoError(t, err)

	removed, err := svc.Cleanup(0)
	require.NoError(t, err)
	assert.Empty(t, removed)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "5A", sanitizeFilename("5A"))
	assert.Equal(t, "Grade_5-B", sanitizeFilename(" Grade 5/B "))
	assert.Len(t, sanitizeFilename(strings.Repeat("a", 150)), 100)
}
