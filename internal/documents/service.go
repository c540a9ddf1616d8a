package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"founder-portal/ops-portal/ops-portal-backend/internal/assistant"
	"founder-portal/ops-portal/ops-portal-backend/pkg/storage"
)

// MaxQuestionContext caps how much of a document is sent with a question.
const MaxQuestionContext = 64 << 10

// Answerer answers questions grounded in a document
type Answerer interface {
	AnswerDocumentQuestion(ctx context.Context, q assistant.DocumentQuestion) (*assistant.DocumentAnswer, error)
}

// UploadRequest
type UploadRequest struct {
	Name        string
	Description string
	Category    Category
	ContentType string
	Size        int64
	Content     io.Reader
	UploadedBy  string
}

type Service struct {
	repo     Repository
	store    storage.ObjectStore
	bucket   string
	answerer Answerer
	logger   *zap.Logger
}

func NewService(repo Repository, store storage.ObjectStore, bucket string, answerer Answerer, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		store:    store,
		bucket:   bucket,
		answerer: answerer,
		logger:   logger,
	}
}

func (s *Service) Upload(ctx context.Context, req UploadRequest) (*Document, error) {
	name := path.Base(strings.TrimSpace(req.Name))
	if name == "" || name == "." || name == "/" {
		return nil, fmt.Errorf("%w: file name is required", ErrInvalidDocument)
	}
	category := req.Category
	if category == "" {
		category = CategoryOther
	}
	if !category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidDocument, category)
	}
	contentType := req.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(path.Ext(name)); byExt != "" {
			contentType = byExt
		}
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	doc := &Document{
		ID:          uuid.New(),
		Name:        name,
		Description: req.Description,
		Category:    category,
		ContentType: contentType,
		Size:        req.Size,
		Bucket:      s.bucket,
		UploadedBy:  req.UploadedBy,
	}
	doc.StorageKey = storageKey(doc)

	if err := s.store.Upload(ctx, doc.Bucket, doc.StorageKey, contentType, req.Content); err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		if delErr := s.store.Delete(ctx, doc.Bucket, doc.StorageKey); delErr != nil {
			s.logger.Warn("Failed to remove orphaned object", zap.String("key", doc.StorageKey), zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	s.logger.Info("Document uploaded",
		zap.String("document_id", doc.ID.String()),
		zap.String("name", doc.Name),
		zap.Int64("size", doc.Size))
	return doc, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Document, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, category *Category) ([]Document, error) {
	return s.repo.List(ctx, category)
}

// Download returns the document metadata and a reader the caller must close.
func (s *Service) Download(ctx context.Context, id uuid.UUID) (*Document, io.ReadCloser, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	body, err := s.store.Download(ctx, doc.Bucket, doc.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil, ErrDocumentNotFound
		}
		return nil, nil, fmt.Errorf("failed to read document: %w", err)
	}
	return doc, body, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, doc.Bucket, doc.StorageKey); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		s.logger.Warn("Failed to delete document object", zap.String("document_id", id.String()), zap.Error(err))
	}
	return nil
}

// Ask answers a question using the document's text.
func (s *Service) Ask(ctx context.Context, id uuid.UUID, question string) (*assistant.DocumentAnswer, error) {
	if s.answerer == nil {
		return nil, assistant.ErrDisabled
	}
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question is required", ErrInvalidDocument)
	}

	doc, body, err := s.Download(ctx, id)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	if !isText(doc.ContentType) {
		return nil, fmt.Errorf("%w: %s", ErrNotText, doc.ContentType)
	}
	content, err := io.ReadAll(io.LimitReader(body, MaxQuestionContext))
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	if len(content) == MaxQuestionContext {
		// the cut may have split a rune
		for i := 0; i < utf8.UTFMax && len(content) > 0 && !utf8.Valid(content); i++ {
			content = content[:len(content)-1]
		}
	}
	if !utf8.Valid(content) {
		return nil, ErrNotText
	}

	return s.answerer.AnswerDocumentQuestion(ctx, assistant.DocumentQuestion{
		DocumentName: doc.Name,
		Content:      string(content),
		Question:     question,
	})
}

func storageKey(doc *Document) string {
	return fmt.Sprintf("documents/%s/%s/%s", doc.Category, doc.ID, doc.Name)
}

func isText(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	if strings.HasPrefix(mediaType, "text/") {
		return true
	}
	switch mediaType {
	case "application/json", "application/xml", "application/x-yaml", "application/yaml":
		return true
	}
	return false
}
