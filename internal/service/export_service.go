package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/ai-saathi-api/internal/dto"
	"github.com/noah-isme/ai-saathi-api/internal/models"
	appErrors "github.com/noah-isme/ai-saathi-api/pkg/errors"
	"github.com/noah-isme/ai-saathi-api/pkg/export"
	"github.com/noah-isme/ai-saathi-api/pkg/storage"
)

const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

var rosterHeaders = []string{"Name", "Class", "Age", "Gender", "Accessibility", "Attendance (%)"}

type rosterSource interface {
	Roster(ctx context.Context, class, specialStatus, lang string) ([]models.StudentProfileView, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportDownload is an opened export ready to stream.
type ExportDownload struct {
	File        *os.File
	Filename    string
	ContentType string
	SizeBytes   int64
	ExpiresAt   time.Time
}

// ExportService renders student rosters and serves them through signed links.
type ExportService struct {
	roster    rosterSource
	storage   fileStorage
	renderers map[string]export.Renderer
	signer    *storage.SignedURLSigner
	logger    *zap.Logger
	cfg       ExportConfig
	now       func() time.Time
	newID     func() string
}

// NewExportService constructs an ExportService.
func NewExportService(roster rosterSource, files fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = time.Hour
	}
	return &ExportService{
		roster:  roster,
		storage: files,
		renderers: map[string]export.Renderer{
			ExportFormatCSV: export.NewCSVExporter(),
			ExportFormatPDF: export.NewPDFExporter(),
		},
		signer: signer,
		logger: logger,
		cfg:    cfg,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// ExportRoster renders the filtered roster, stores it and returns a signed download link.
func (s *ExportService) ExportRoster(ctx context.Context, query dto.StudentExportQuery, lang string) (*dto.ExportResponse, error) {
	format := strings.ToLower(strings.TrimSpace(query.Format))
	if format == "" {
		format = ExportFormatCSV
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be one of csv, pdf")
	}
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "download signer unavailable")
	}

	views, err := s.roster.Roster(ctx, query.Class, query.SpecialStatus, lang)
	if err != nil {
		return nil, err
	}
	dataset := buildRosterDataset(views, strings.TrimSpace(query.Class))
	payload, err := renderer.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster")
	}

	id := s.newID()
	relPath, err := s.storage.Save(s.buildFilename(id, query.Class, renderer.Extension()), payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store roster export")
	}
	token, expiresAt, err := s.signer.Generate(id, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}

	s.logger.Info("roster exported",
		zap.String("export_id", id),
		zap.String("format", format),
		zap.Int("rows", len(views)))

	return &dto.ExportResponse{
		ID:          id,
		Format:      format,
		Rows:        len(views),
		Token:       token,
		DownloadURL: s.downloadURL(token),
		ExpiresAt:   expiresAt.UTC().Format(time.RFC3339),
	}, nil
}

// Download validates token and opens the stored export.
func (s *ExportService) Download(token string) (*ExportDownload, error) {
	if strings.TrimSpace(token) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "token is required")
	}
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "download signer unavailable")
	}
	_, relPath, expiresAt, err := s.signer.Parse(token)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export no longer available")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export file")
	}
	info, err := file.Stat()
	if err != nil {
		file.Close() //nolint:errcheck
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read export metadata")
	}

	contentType := "application/octet-stream"
	if renderer, ok := s.renderers[strings.TrimPrefix(filepath.Ext(relPath), ".")]; ok {
		contentType = renderer.ContentType()
	}
	return &ExportDownload{
		File:        file,
		Filename:    filepath.Base(relPath),
		ContentType: contentType,
		SizeBytes:   info.Size(),
		ExpiresAt:   expiresAt,
	}, nil
}

// Cleanup removes exports older than ttl, defaulting to the configured result TTL.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	removed, err := s.storage.CleanupOlderThan(ttl)
	if err != nil {
		return nil, err
	}
	if len(removed) > 0 {
		s.logger.Info("expired exports removed", zap.Int("count", len(removed)))
	}
	return removed, nil
}

func (s *ExportService) downloadURL(token string) string {
	base := strings.TrimRight(s.cfg.APIPrefix, "/")
	if base == "" {
		base = "/api/v1"
	}
	return fmt.Sprintf("%s/exports/download?%s", base, url.Values{"token": {token}}.Encode())
}

func (s *ExportService) buildFilename(id, class, ext string) string {
	timestamp := s.now().UTC().Format("20060102_150405")
	classPart := "all"
	if strings.TrimSpace(class) != "" {
		classPart = sanitizeFilename(class)
	}
	short := id
	if len(short) > 8 {
		short = short[:8]
	}
	return path.Join("rosters", fmt.Sprintf("roster_%s_%s_%s.%s", classPart, timestamp, short, ext))
}

func sanitizeFilename(raw string) string {
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(strings.TrimSpace(raw))
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func buildRosterDataset(views []models.StudentProfileView, class string) export.Dataset {
	rows := make([]map[string]string, 0, len(views))
	for _, v := range views {
		rows = append(rows, map[string]string{
			"Name":           v.Name,
			"Class":          v.Class,
			"Age":            fmt.Sprintf("%d", v.Age),
			"Gender":         string(v.Gender),
			"Accessibility":  v.Accessibility.Label,
			"Attendance (%)": fmt.Sprintf("%.1f", v.AttendancePercentage),
		})
	}
	title := "Student Roster"
	if class != "" {
		title = fmt.Sprintf("Student Roster - Class %s", class)
	}
	return export.Dataset{Title: title, Headers: rosterHeaders, Rows: rows}
}
