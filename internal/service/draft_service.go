package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"shipdesk/internal/config"
	"shipdesk/internal/domain"
	"shipdesk/internal/draft"
	"shipdesk/internal/port"
	"shipdesk/internal/pricing"
)

// UploadedFile is one file of a multipart extraction request.
type UploadedFile struct {
	File   multipart.File
	Header *multipart.FileHeader
}

// DraftView is the state returned to clients.
type DraftView struct {
	domain.DraftState
	ExtractionInProgress bool `json:"extractionInProgress"`
}

// ExtractResult describes a completed extraction request.
type ExtractResult struct {
	Outcome     domain.ExtractionOutcome `json:"outcome"`
	FilledPaths []string                 `json:"filledPaths"`
	Draft       DraftView                `json:"draft"`
	Quote       domain.PriceBreakdown    `json:"quote"`
}

// DraftService defines the shipment draft contract.
type DraftService interface {
	Get(ctx context.Context) DraftView
	SetMode(ctx context.Context, mode domain.EntryMode) (DraftView, error)
	Replace(ctx context.Context, d domain.ShipmentDraft) (DraftView, error)
	Patch(ctx context.Context, patch json.RawMessage) (DraftView, error)
	Clear(ctx context.Context) (DraftView, error)
	AutoFilled(ctx context.Context, path string) bool
	Extract(ctx context.Context, files []UploadedFile) (*ExtractResult, error)
	Quote(ctx context.Context) domain.PriceBreakdown
}

type draftService struct {
	store      *draft.Store
	extractor  port.Extractor
	archive    port.DocumentArchive
	calculator *pricing.Calculator
	cfg        *config.ExtractionConfig
	namespace  string
}

// NewDraftService creates a new DraftService implementation. archive may be
// nil, in which case uploads are not archived.
func NewDraftService(
	store *draft.Store,
	extractor port.Extractor,
	archive port.DocumentArchive,
	calculator *pricing.Calculator,
	cfg *config.ExtractionConfig,
	namespace string,
) DraftService {
	return &draftService{
		store:      store,
		extractor:  extractor,
		archive:    archive,
		calculator: calculator,
		cfg:        cfg,
		namespace:  namespace,
	}
}

func (s *draftService) view() DraftView {
	return DraftView{
		DraftState:           s.store.State(),
		ExtractionInProgress: s.store.InProgress(),
	}
}

func (s *draftService) Get(_ context.Context) DraftView {
	return s.view()
}

func (s *draftService) SetMode(ctx context.Context, mode domain.EntryMode) (DraftView, error) {
	if err := s.store.SetMode(ctx, mode); err != nil {
		return DraftView{}, err
	}
	return s.view(), nil
}

func (s *draftService) Replace(ctx context.Context, d domain.ShipmentDraft) (DraftView, error) {
	if err := s.store.ReplaceDraft(ctx, d); err != nil {
		return DraftView{}, err
	}
	if err := s.reprice(ctx); err != nil {
		return DraftView{}, err
	}
	return s.view(), nil
}

func (s *draftService) Patch(ctx context.Context, patch json.RawMessage) (DraftView, error) {
	if err := s.store.PatchDraft(ctx, patch); err != nil {
		return DraftView{}, err
	}
	if err := s.reprice(ctx); err != nil {
		return DraftView{}, err
	}
	return s.view(), nil
}

func (s *draftService) Clear(ctx context.Context) (DraftView, error) {
	log.Printf("draftService.Clear: clearing draft %s", s.namespace)
	if err := s.store.Clear(ctx); err != nil {
		return DraftView{}, err
	}
	return s.view(), nil
}

func (s *draftService) AutoFilled(_ context.Context, path string) bool {
	return s.store.IsAutoFilled(path)
}

func (s *draftService) Quote(_ context.Context) domain.PriceBreakdown {
	return s.calculator.Price(s.store.State().Draft)
}

// Extract validates the uploads, archives them, sends them for extraction
// and merges the result. A "no data" answer is not an error: the draft is
// left unchanged and the outcome says so.
func (s *draftService) Extract(ctx context.Context, files []UploadedFile) (*ExtractResult, error) {
	uploads, err := s.readUploads(files)
	if err != nil {
		return nil, err
	}

	ticket, err := s.store.BeginExtraction()
	if err != nil {
		return nil, err
	}
	defer s.store.EndExtraction(ticket)

	log.Printf("draftService.Extract: extracting %d file(s) for draft %s (ticket %d)", len(uploads), s.namespace, ticket)
	s.archiveUploads(ctx, uploads)

	data, err := s.extractor.Extract(ctx, uploads)
	if errors.Is(err, domain.ErrNoDataExtracted) {
		log.Printf("draftService.Extract: no usable data for ticket %d", ticket)
		return &ExtractResult{
			Outcome:     domain.ExtractionOutcomeNoData,
			FilledPaths: []string{},
			Draft:       s.view(),
			Quote:       s.Quote(ctx),
		}, nil
	}
	if err != nil {
		log.Printf("draftService.Extract: extraction failed for ticket %d: %v", ticket, err)
		return nil, err
	}

	filled, err := s.store.CommitExtraction(ctx, ticket, data)
	if err != nil {
		log.Printf("draftService.Extract: merge rejected for ticket %d: %v", ticket, err)
		return nil, err
	}
	if err := s.reprice(ctx); err != nil {
		return nil, err
	}
	view := s.view()
	filled = stillAutoFilled(filled, view.Provenance)
	log.Printf("draftService.Extract: merged %d field(s) for ticket %d", len(filled), ticket)

	return &ExtractResult{
		Outcome:     domain.ExtractionOutcomeMerged,
		FilledPaths: filled,
		Draft:       view,
		Quote:       s.Quote(ctx),
	}, nil
}

// reprice writes the product-derived customs value back into the draft.
// Drafts without products keep their declared value.
func (s *draftService) reprice(ctx context.Context) error {
	return s.store.Reprice(ctx, func(d domain.ShipmentDraft) (float64, bool) {
		if len(d.Products()) == 0 {
			return 0, false
		}
		return s.calculator.Price(d).CustomsValue, true
	})
}

// stillAutoFilled drops paths that lost their mark after repricing.
func stillAutoFilled(paths []string, prov domain.ProvenanceMap) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if prov[p] {
			out = append(out, p)
		}
	}
	return out
}

func (s *draftService) readUploads(files []UploadedFile) ([]port.UploadFile, error) {
	if len(files) == 0 {
		return nil, domain.ErrNoFiles
	}
	if s.cfg.MaxFiles > 0 && len(files) > s.cfg.MaxFiles {
		return nil, domain.ErrTooManyFiles
	}

	maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024
	out := make([]port.UploadFile, 0, len(files))
	for _, f := range files {
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(f.Header.Filename), "."))
		fileType, ok := domain.AllowedExtensions[ext]
		if !ok {
			return nil, domain.ErrUnsupportedFileType
		}
		if maxBytes > 0 && f.Header.Size > maxBytes {
			return nil, domain.ErrFileTooLarge
		}

		content, err := io.ReadAll(f.File)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f.Header.Filename, err)
		}
		if maxBytes > 0 && int64(len(content)) > maxBytes {
			return nil, domain.ErrFileTooLarge
		}

		// Magic-byte check: the extension must agree with the content.
		sniffed := http.DetectContentType(content)
		if detected, ok := domain.AllowedContentTypes[sniffed]; !ok || detected != fileType {
			return nil, domain.ErrUnsupportedFileType
		}

		out = append(out, port.UploadFile{
			Name:        f.Header.Filename,
			ContentType: domain.AllowedFileTypes[fileType],
			Content:     content,
		})
	}
	return out, nil
}

// archiveUploads stores the documents when an archive is configured. Archive
// failures are logged and do not block extraction.
func (s *draftService) archiveUploads(ctx context.Context, uploads []port.UploadFile) {
	if s.archive == nil {
		return
	}
	batch := uuid.New()
	for _, u := range uploads {
		key := fmt.Sprintf("drafts/%s/%s/%s", s.namespace, batch, filepath.Base(u.Name))
		_, err := s.archive.Archive(ctx, port.ArchiveInput{
			Key:         key,
			Body:        bytes.NewReader(u.Content),
			ContentType: u.ContentType,
			Size:        int64(len(u.Content)),
		})
		if err != nil {
			log.Printf("draftService.archiveUploads: failed to archive %s: %v", u.Name, err)
		}
	}
}
