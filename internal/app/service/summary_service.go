package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/ikkim/restaurant-ops-backend/internal/report"
	"github.com/ikkim/restaurant-ops-backend/internal/storage"
	"github.com/ikkim/restaurant-ops-backend/internal/wizard"
	"github.com/ikkim/restaurant-ops-backend/pkg/logger"
)

type SummaryFormat string

const (
	SummaryText SummaryFormat = "text"
	SummaryXLSX SummaryFormat = "xlsx"

	summaryFolder = "wizard-summaries"
)

var (
	ErrUnknownSummaryFormat = errors.New("Summary format must be text or xlsx")
	ErrArchiveUnavailable   = errors.New("Summary archive is not configured")
)

// SummaryFile 다운로드용으로 렌더링된 설정 요약
type SummaryFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

type SummaryService interface {
	Render(form wizard.FormData, format SummaryFormat) (*SummaryFile, error)
	Archive(ctx context.Context, form wizard.FormData, format SummaryFormat) (*storage.ArchivedFile, error)
}

type summaryService struct {
	archive storage.Archive
}

// NewSummaryService archive가 nil이면 보관 기능만 비활성화된다.
func NewSummaryService(archive storage.Archive) SummaryService {
	return &summaryService{archive: archive}
}

func (s *summaryService) Render(form wizard.FormData, format SummaryFormat) (*SummaryFile, error) {
	base := wizard.WebhookSlug(form.BasicInfo.Name)
	if base == "" {
		base = "store"
	}
	base += "-setup-summary"

	switch format {
	case SummaryText, "":
		return &SummaryFile{
			Filename:    base + ".txt",
			ContentType: "text/plain; charset=utf-8",
			Body:        []byte(wizard.Summary(form)),
		}, nil
	case SummaryXLSX:
		var buf bytes.Buffer
		if err := report.WriteSummary(&buf, form); err != nil {
			logger.Error("Failed to render XLSX summary", err)
			return nil, err
		}
		return &SummaryFile{
			Filename:    base + ".xlsx",
			ContentType: report.ContentType,
			Body:        buf.Bytes(),
		}, nil
	}
	return nil, ErrUnknownSummaryFormat
}

// Archive 요약을 스토리지에 올리고 만료되는 다운로드 링크를 돌려준다.
func (s *summaryService) Archive(ctx context.Context, form wizard.FormData, format SummaryFormat) (*storage.ArchivedFile, error) {
	if s.archive == nil {
		return nil, ErrArchiveUnavailable
	}
	file, err := s.Render(form, format)
	if err != nil {
		return nil, err
	}

	archived, err := s.archive.Put(ctx, summaryFolder, file.Filename, file.ContentType, file.Body)
	if err != nil {
		logger.Error("Failed to archive setup summary", err, map[string]interface{}{
			"filename": file.Filename,
		})
		return nil, fmt.Errorf("archive summary: %w", err)
	}

	logger.Info("Setup summary archived", map[string]interface{}{
		"key":        archived.Key,
		"expires_at": archived.ExpiresAt,
	})
	return archived, nil
}
