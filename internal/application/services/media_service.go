package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/repositories"
	domainservices "github.com/AtRiskMedia/flexibuilder-go/internal/domain/services"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/media"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/security"
)

// UploadResult is returned to clients after an upload.
type UploadResult struct {
	File         *repositories.MediaFile `json:"file"`
	URL          string                  `json:"url"`
	ThumbnailURL string                  `json:"thumbnailUrl,omitempty"`
}

// MediaService stores uploaded images and tracks which ones documents use.
type MediaService struct {
	processor *media.ImageProcessor
	repo      repositories.MediaRepository
	docRepo   repositories.DocumentRepository
	integrity *domainservices.DocumentIntegrityService
	urlPrefix string
	maxBytes  int
	logger    *logging.ChanneledLogger
	perf      *performance.Tracker
}

// NewMediaService creates the media service. maxUploadMB <= 0 disables the size check.
func NewMediaService(processor *media.ImageProcessor, repo repositories.MediaRepository, docRepo repositories.DocumentRepository, integrity *domainservices.DocumentIntegrityService, urlPrefix string, maxUploadMB int, logger *logging.ChanneledLogger, perf *performance.Tracker) *MediaService {
	return &MediaService{
		processor: processor,
		repo:      repo,
		docRepo:   docRepo,
		integrity: integrity,
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
		maxBytes:  maxUploadMB * 1024 * 1024,
		logger:    logger,
		perf:      perf,
	}
}

// Upload stores a base64 data URL image.
func (s *MediaService) Upload(ctx context.Context, dataURL string) (*UploadResult, error) {
	marker := s.perf.StartOperation("media:upload", "")
	defer s.perf.CompleteOperation(marker)

	// base64 inflates by 4/3
	if s.maxBytes > 0 && len(dataURL)*3/4 > s.maxBytes {
		err := fmt.Errorf("upload exceeds %d bytes", s.maxBytes)
		marker.SetError(err)
		return nil, err
	}

	id := strings.ToLower(security.GenerateULID())
	img, err := s.processor.ProcessBase64Image(dataURL, id)
	if err != nil {
		marker.SetError(err)
		s.logger.Media().Warn("Image upload rejected", "error", err.Error())
		return nil, err
	}
	file := &repositories.MediaFile{
		ID:        id,
		Filename:  img.Filename,
		Thumbnail: img.Thumbnail,
		Width:     img.Width,
		Height:    img.Height,
		Created:   time.Now().UTC(),
	}
	if s.repo != nil {
		if err := s.repo.Store(ctx, file); err != nil {
			s.processor.Delete(img.Filename, img.Thumbnail)
			marker.SetError(err)
			return nil, err
		}
	}
	s.logger.Media().Info("Image uploaded", "id", id, "filename", img.Filename, "width", img.Width, "height", img.Height)
	return &UploadResult{File: file, URL: img.URL, ThumbnailURL: img.ThumbnailURL}, nil
}

// List returns every stored upload.
func (s *MediaService) List(ctx context.Context) ([]*repositories.MediaFile, error) {
	if s.repo == nil {
		return nil, nil
	}
	return s.repo.FindAll(ctx)
}

// Delete removes an upload and its files.
func (s *MediaService) Delete(ctx context.Context, id string) error {
	if s.repo == nil {
		return fmt.Errorf("media storage is not configured")
	}
	files, err := s.repo.FindAll(ctx)
	if err != nil {
		return err
	}
	for _, f := range files {
		if f.ID != id {
			continue
		}
		if err := s.repo.Delete(ctx, id); err != nil {
			return err
		}
		if err := s.processor.Delete(f.Filename, f.Thumbnail); err != nil {
			s.logger.Media().Warn("Media files not removed", "id", id, "error", err.Error())
		}
		s.logger.Media().Info("Image deleted", "id", id)
		return nil
	}
	return fmt.Errorf("media file %s not found", id)
}

// Orphans returns uploads no stored document references.
func (s *MediaService) Orphans(ctx context.Context) ([]string, error) {
	if s.repo == nil || s.docRepo == nil {
		return nil, nil
	}
	files, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Filename)
	}

	summaries, err := s.docRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	var refs []string
	for _, sum := range summaries {
		payload, err := s.docRepo.FindByID(ctx, sum.ID)
		if err != nil {
			s.logger.Media().Warn("Skipping unreadable document during orphan scan", "documentId", sum.ID, "error", err.Error())
			continue
		}
		refs = append(refs, s.integrity.MediaReferences(payload.Sections, s.urlPrefix)...)
	}
	return s.integrity.CalculateOrphans(names, refs), nil
}
