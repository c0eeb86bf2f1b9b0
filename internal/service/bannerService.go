package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	repository "github.com/ds124wfegd/eventmarket/internal/database/postgres"
	"github.com/ds124wfegd/eventmarket/internal/entity"
	"github.com/ds124wfegd/eventmarket/internal/monitoring"
	"github.com/ds124wfegd/eventmarket/internal/pkg/kafka"
	"github.com/ds124wfegd/eventmarket/internal/pkg/processor"
	"github.com/ds124wfegd/eventmarket/internal/pkg/storage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	BannerPrefix       = "banners/"
	defaultContentType = "image/jpeg"
	webpContentType    = "image/webp"
	maxBaseNameLength  = 60
)

var (
	unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)
	extPattern      = regexp.MustCompile(`^\.[a-z0-9]{1,5}$`)
)

type PresignRequest struct {
	EventID     string `json:"eventId" validate:"required,uuid"`
	Filename    string `json:"filename" validate:"required"`
	ContentType string `json:"contentType"`
}

type ProcessBannerRequest struct {
	EventID          string `json:"eventId" validate:"required,uuid"`
	OriginalFilename string `json:"originalFilename" validate:"required"`
	OrganizerID      string `json:"-"`
}

type bannerService struct {
	eventRepo  repository.EventRepository
	bannerRepo repository.BannerRepository
	storage    storage.ObjectStorage
	processor  processor.ImageProcessor
	orphans    kafka.Producer
	publicURL  string
	presignTTL time.Duration
}

func NewBannerService(
	eventRepo repository.EventRepository,
	bannerRepo repository.BannerRepository,
	objectStorage storage.ObjectStorage,
	imageProcessor processor.ImageProcessor,
	orphans kafka.Producer,
	publicURL string,
	presignTTL time.Duration,
) BannerService {
	return &bannerService{
		eventRepo:  eventRepo,
		bannerRepo: bannerRepo,
		storage:    objectStorage,
		processor:  imageProcessor,
		orphans:    orphans,
		publicURL:  strings.TrimRight(publicURL, "/"),
		presignTTL: presignTTL,
	}
}

// BannerKey builds banners/<eventID>/<sanitised name>-<uuidv7><ext>.
func BannerKey(eventID, filename string) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}

	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	ext := strings.ToLower(path.Ext(base))
	base = strings.TrimSuffix(base, path.Ext(base))
	if !extPattern.MatchString(ext) {
		ext = ""
	}

	name := strings.Trim(unsafeNameChars.ReplaceAllString(strings.ToLower(base), "-"), "-")
	if len(name) > maxBaseNameLength {
		name = strings.TrimRight(name[:maxBaseNameLength], "-")
	}
	if name == "" {
		name = "banner"
	}

	return fmt.Sprintf("%s%s/%s-%s%s", BannerPrefix, eventID, name, id.String(), ext), nil
}

func webpKey(key string) string {
	return strings.TrimSuffix(key, path.Ext(key)) + ".webp"
}

func (s *bannerService) GeneratePresignedURL(ctx context.Context, req *PresignRequest) (*entity.PresignedUpload, error) {
	key, err := BannerKey(req.EventID, req.Filename)
	if err != nil {
		return nil, err
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}

	uploadURL, err := s.storage.PresignPut(ctx, key, contentType, s.presignTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: presign %s: %w", entity.ErrStorage, key, err)
	}

	return &entity.PresignedUpload{UploadURL: uploadURL, Filename: key}, nil
}

func (s *bannerService) publicURLFor(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicURL, s.storage.Bucket(), key)
}

func (s *bannerService) keyFromURL(rawURL string) (string, bool) {
	prefix := fmt.Sprintf("%s/%s/", s.publicURL, s.storage.Bucket())
	if !strings.HasPrefix(rawURL, prefix) {
		return "", false
	}
	return strings.TrimPrefix(rawURL, prefix), true
}

func failStage(stage string, err error) error {
	monitoring.BannerPipelineFailures.WithLabelValues(stage).Inc()
	return err
}

// ProcessBanner turns an uploaded raw image into the event's only banner.
// The steps are not transactional: a failure after the WebP upload can leave
// an unreferenced object behind, which the next successful run or the
// cleanup worker removes.
func (s *bannerService) ProcessBanner(ctx context.Context, req *ProcessBannerRequest) (*entity.EventBanner, error) {
	start := time.Now()
	log := logrus.WithFields(logrus.Fields{"event_id": req.EventID, "key": req.OriginalFilename})

	key := req.OriginalFilename
	if !strings.HasPrefix(key, BannerPrefix+req.EventID+"/") || strings.Contains(key, "..") {
		return nil, entity.NewValidationError("originalFilename", "Upload key does not belong to this event")
	}

	event, err := s.eventRepo.GetByID(ctx, req.EventID, req.OrganizerID)
	if errors.Is(err, entity.ErrEventNotFound) {
		return nil, failStage("not_found", err)
	}
	if err != nil {
		log.WithError(err).Error("Failed to load event for banner")
		return nil, failStage("database", fmt.Errorf("%w: %w", entity.ErrDatabaseError, err))
	}
	if !hasDetails(event) {
		return nil, failStage("previous_step", entity.ErrPreviousStepIncomplete)
	}

	raw, err := s.storage.Read(ctx, key)
	if err != nil {
		log.WithError(err).Error("Failed to read uploaded banner")
		return nil, failStage("read", fmt.Errorf("%w: read %s: %w", entity.ErrStorage, key, err))
	}

	processed, err := s.processor.Transcode(raw)
	if err != nil {
		log.WithError(err).Error("Failed to transcode banner")
		return nil, failStage("transcode", fmt.Errorf("%w: %w", entity.ErrImageProcessing, err))
	}

	var blurhash *string
	if hash, err := s.processor.Placeholder(raw); err != nil {
		log.WithError(err).Warn("Failed to compute banner placeholder, continuing without it")
	} else {
		blurhash = &hash
	}

	processedKey := webpKey(key)
	if err := s.storage.Write(ctx, processedKey, processed.Data, webpContentType); err != nil {
		log.WithError(err).Error("Failed to upload processed banner")
		return nil, failStage("write", fmt.Errorf("%w: write %s: %w", entity.ErrStorage, processedKey, err))
	}

	if processedKey != key {
		if err := s.storage.Delete(ctx, key); err != nil {
			log.WithError(err).Error("Failed to delete original upload")
			return nil, failStage("delete_original", fmt.Errorf("%w: delete %s: %w", entity.ErrStorage, key, err))
		}
	}

	existing, err := s.bannerRepo.GetByEventID(ctx, req.EventID)
	if err != nil {
		log.WithError(err).Error("Failed to look up existing banner")
		return nil, failStage("database", fmt.Errorf("%w: %w", entity.ErrDatabaseError, err))
	}
	if existing != nil {
		s.removePreviousObject(ctx, req.EventID, existing, processedKey)

		if err := s.bannerRepo.Delete(ctx, existing.ID); err != nil {
			log.WithError(err).Error("Failed to delete previous banner row")
			return nil, failStage("database", fmt.Errorf("%w: %w", entity.ErrDatabaseError, err))
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}

	banner := &entity.EventBanner{
		ID:        id.String(),
		EventID:   req.EventID,
		URL:       s.publicURLFor(processedKey),
		Blurhash:  blurhash,
		SortOrder: 0,
	}
	if err := s.bannerRepo.Create(ctx, banner); err != nil {
		log.WithError(err).Error("Failed to insert banner")
		return nil, failStage("database", fmt.Errorf("%w: %w", entity.ErrDatabaseError, err))
	}

	monitoring.BannerPipelineDuration.Observe(time.Since(start).Seconds())
	log.WithField("banner_id", banner.ID).Info("Banner processed")
	return banner, nil
}

// removePreviousObject deletes the previous banner's object. Failures are
// logged and handed to the orphan janitor, never returned.
func (s *bannerService) removePreviousObject(ctx context.Context, eventID string, previous *entity.EventBanner, currentKey string) {
	key, ok := s.keyFromURL(previous.URL)
	if !ok {
		// Written under another public url or bucket; only the janitor can
		// judge whether the key still resolves.
		key = foreignKey(previous.URL)
		logrus.WithFields(logrus.Fields{"url": previous.URL, "key": key}).
			Warn("Previous banner url is outside the current bucket, handing it to the janitor")
		s.publishOrphan(ctx, eventID, key, "banner url outside current public url")
		return
	}
	if key == currentKey {
		return
	}

	err := s.storage.Delete(ctx, key)
	if err == nil {
		return
	}

	logrus.WithError(err).WithField("key", key).Warn("Failed to delete previous banner object")
	s.publishOrphan(ctx, eventID, key, err.Error())
}

func (s *bannerService) publishOrphan(ctx context.Context, eventID, key, reason string) {
	monitoring.OrphanedObjects.Inc()

	orphan := entity.OrphanedObject{
		Key:        key,
		EventID:    eventID,
		Reason:     reason,
		OccurredAt: time.Now(),
	}
	if err := s.orphans.SendMessage(ctx, key, orphan); err != nil {
		logrus.WithError(err).WithField("key", key).Error("Failed to publish orphaned object")
	}
}

// foreignKey guesses the object key of a url built under a different public
// base: everything from the banner prefix on, or the whole url path.
func foreignKey(raw string) string {
	p := raw
	if u, err := url.Parse(raw); err == nil {
		p = u.Path
	}
	if i := strings.Index(p, "/"+BannerPrefix); i >= 0 {
		return p[i+1:]
	}
	return strings.TrimPrefix(p, "/")
}
