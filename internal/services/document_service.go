package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/legalcms/backend/internal/apperrors"
	"github.com/legalcms/backend/internal/logger"
	"github.com/legalcms/backend/internal/models"
	"github.com/legalcms/backend/internal/repository"
	"github.com/legalcms/backend/internal/storage"
)

const downloadLinkTTL = 15 * time.Minute

// DocumentInput registers metadata for a file stored elsewhere.
type DocumentInput struct {
	Name         string `json:"name"`
	OriginalName string `json:"originalName"`
	FilePath     string `json:"filePath"`
	FileSize     int64  `json:"fileSize"`
	MimeType     string `json:"mimeType"`
	CaseID       string `json:"caseId"`
	UploadedBy   string `json:"uploadedBy"`
}

// UploadFile is a file body received from a caller.
type UploadFile interface {
	io.Reader
	io.ReaderAt
	io.Seeker
}

type UploadInput struct {
	CaseID   string
	Name     string
	Filename string
	Size     int64
	File     UploadFile
}

// Download is either a direct link to the stored object or its body.
type Download struct {
	Document models.Document
	URL      string
	Body     io.ReadCloser
}

type DocumentService struct {
	documents repository.DocumentRepository
	cases     repository.CaseRepository
	users     repository.UserRepository
	store     storage.ObjectStore
	maxUpload int64
	view      projector
}

func NewDocumentService(documents repository.DocumentRepository, cases repository.CaseRepository, users repository.UserRepository, store storage.ObjectStore, maxUpload int64) *DocumentService {
	return &DocumentService{
		documents: documents,
		cases:     cases,
		users:     users,
		store:     store,
		maxUpload: maxUpload,
		view:      projector{users: users, cases: cases},
	}
}

// caseFor loads a case the actor may attach documents to or read from.
func (s *DocumentService) caseFor(ctx context.Context, actor Actor, caseID string) (*models.Case, error) {
	c, err := loadCase(ctx, s.cases, caseID, msgCaseNotFound)
	if err != nil {
		return nil, err
	}
	if actor.IsClient() && c.ClientID != actor.ID {
		return nil, apperrors.NotFound(msgCaseNotFound)
	}
	return c, nil
}

// List returns documents matching filter. Clients may list documents of
// their own cases; without a case they see only their own uploads.
func (s *DocumentService) List(ctx context.Context, actor Actor, filter repository.DocumentFilter) ([]DocumentView, error) {
	if actor.IsClient() {
		if filter.CaseID != "" {
			if _, err := s.caseFor(ctx, actor, filter.CaseID); err != nil {
				return nil, err
			}
		} else {
			filter.UploadedBy = actor.ID
		}
	}
	documents, err := s.documents.List(ctx, filter)
	if err != nil {
		return nil, internal("Failed to fetch documents", err)
	}
	return s.view.documentViews(ctx, documents)
}

func (s *DocumentService) load(ctx context.Context, actor Actor, id string) (*models.Document, error) {
	d, err := s.documents.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound(msgDocumentMissing)
	}
	if err != nil {
		return nil, internal("Failed to fetch document", err)
	}
	if actor.IsClient() && d.UploadedBy != actor.ID {
		c, err := s.cases.GetByID(ctx, d.CaseID)
		if err != nil || c.ClientID != actor.ID {
			return nil, apperrors.NotFound(msgDocumentMissing)
		}
	}
	return d, nil
}

func (s *DocumentService) Get(ctx context.Context, actor Actor, id string) (*DocumentView, error) {
	d, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.single(ctx, *d)
}

func (s *DocumentService) single(ctx context.Context, d models.Document) (*DocumentView, error) {
	views, err := s.view.documentViews(ctx, []models.Document{d})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Create records metadata for a document whose body lives at FilePath.
func (s *DocumentService) Create(ctx context.Context, actor Actor, in DocumentInput) (*DocumentView, error) {
	if err := requireFields(in.Name, in.OriginalName, in.FilePath, in.MimeType, in.CaseID, in.UploadedBy); err != nil {
		return nil, err
	}
	if in.FileSize <= 0 {
		return nil, apperrors.Validation(msgMissingFields)
	}
	if actor.IsClient() && in.UploadedBy != actor.ID {
		return nil, apperrors.Forbidden("Clients can only upload documents as themselves")
	}
	if _, err := s.caseFor(ctx, actor, in.CaseID); err != nil {
		return nil, err
	}
	ok, err := userExists(ctx, s.users, in.UploadedBy)
	if err != nil {
		return nil, internal("Failed to verify uploader", err)
	}
	if !ok {
		return nil, apperrors.NotFound(msgUserNotFound)
	}

	d := &models.Document{
		Name:         in.Name,
		OriginalName: in.OriginalName,
		FilePath:     in.FilePath,
		FileSize:     in.FileSize,
		MimeType:     in.MimeType,
		CaseID:       in.CaseID,
		UploadedBy:   in.UploadedBy,
	}
	if err := s.documents.Create(ctx, d); err != nil {
		return nil, internal("Failed to create document", err)
	}
	logger.Info("Document registered", map[string]interface{}{
		"documentID": d.ID,
		"caseID":     d.CaseID,
	})
	return s.single(ctx, *d)
}

// MaxUploadBytes is the largest accepted file, zero when unlimited.
func (s *DocumentService) MaxUploadBytes() int64 {
	return s.maxUpload
}

// UploadLimitError is the validation failure for a file over the limit.
func (s *DocumentService) UploadLimitError() error {
	return apperrors.Validation(fmt.Sprintf("File exceeds the %d byte upload limit", s.maxUpload))
}

// Upload stores the file body and records its metadata. The uploader is
// always the actor.
func (s *DocumentService) Upload(ctx context.Context, actor Actor, in UploadInput) (*DocumentView, error) {
	if in.File == nil || in.Filename == "" || in.CaseID == "" {
		return nil, apperrors.Validation(msgMissingFields)
	}
	if in.Size <= 0 {
		return nil, apperrors.Validation("File is empty")
	}
	if s.maxUpload > 0 && in.Size > s.maxUpload {
		return nil, s.UploadLimitError()
	}
	if _, err := s.caseFor(ctx, actor, in.CaseID); err != nil {
		return nil, err
	}

	mimeType, err := storage.DetectMIME(in.File)
	if err != nil {
		return nil, internal("Failed to read upload", err)
	}
	pageCount := 0
	if storage.IsPDF(mimeType) {
		if n, err := storage.PDFPageCount(in.File, in.Size); err == nil {
			pageCount = n
		} else {
			logger.Warn("Could not count PDF pages", map[string]interface{}{
				"filename": in.Filename,
				"error":    err.Error(),
			})
		}
		if _, err := in.File.Seek(0, io.SeekStart); err != nil {
			return nil, internal("Failed to read upload", err)
		}
	}

	key := storage.DocumentKey(in.CaseID, in.Filename)
	if err := s.store.Put(ctx, key, in.File, in.Size, mimeType); err != nil {
		return nil, internal("Failed to store document", err)
	}

	name := in.Name
	if name == "" {
		name = in.Filename
	}
	id := uuid.New().String()
	d := &models.Document{
		ID:           id,
		Name:         name,
		OriginalName: in.Filename,
		FilePath:     "/api/documents/" + id + "/download",
		FileSize:     in.Size,
		MimeType:     mimeType,
		CaseID:       in.CaseID,
		UploadedBy:   actor.ID,
		StorageKey:   key,
		PageCount:    pageCount,
	}
	if err := s.documents.Create(ctx, d); err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			logger.WithError(delErr, "documents").Warn("Failed to remove orphaned upload")
		}
		return nil, internal("Failed to create document", err)
	}
	logger.Info("Document uploaded", map[string]interface{}{
		"documentID": d.ID,
		"caseID":     d.CaseID,
		"size":       d.FileSize,
		"mimeType":   d.MimeType,
	})
	return s.single(ctx, *d)
}

// Download returns a presigned link when the store supports one and the
// object body otherwise. The caller closes Body.
func (s *DocumentService) Download(ctx context.Context, actor Actor, id string) (*Download, error) {
	d, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if d.StorageKey == "" {
		return nil, apperrors.NotFound("Document has no stored file")
	}

	url, err := s.store.PresignGet(ctx, d.StorageKey, downloadLinkTTL)
	if err == nil {
		return &Download{Document: *d, URL: url}, nil
	}
	if !errors.Is(err, storage.ErrPresignUnsupported) {
		return nil, internal("Failed to create download link", err)
	}

	body, err := s.store.Open(ctx, d.StorageKey)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, apperrors.NotFound("Document has no stored file")
	}
	if err != nil {
		return nil, internal("Failed to open document", err)
	}
	return &Download{Document: *d, Body: body}, nil
}

// Delete removes the metadata and, for uploaded files, the stored object.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	d, err := s.documents.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound(msgDocumentMissing)
	}
	if err != nil {
		return internal("Failed to fetch document", err)
	}
	if err := s.documents.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound(msgDocumentMissing)
		}
		return internal("Failed to delete document", err)
	}
	if d.StorageKey != "" {
		if err := s.store.Delete(ctx, d.StorageKey); err != nil {
			logger.WithError(err, "documents").Warn("Failed to remove stored document")
		}
	}
	logger.Info("Document deleted", map[string]interface{}{"documentID": id})
	return nil
}
