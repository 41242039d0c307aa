package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shipdesk/internal/config"
	"shipdesk/internal/domain"
	"shipdesk/internal/draft"
	"shipdesk/internal/extraction"
	"shipdesk/internal/payload"
	"shipdesk/internal/port"
	"shipdesk/internal/pricing"
	"shipdesk/internal/repository/memory"
	"shipdesk/internal/service"
	"shipdesk/mocks"
)

const ns = "shipment-draft"

var (
	pdfBytes = []byte("%PDF-1.4\n1 0 obj << /Type /Catalog >> endobj\n")
	pngBytes = []byte("\x89PNG\x0D\x0A\x1A\x0A\x00\x00\x00\x0DIHDR")
)

type upload struct {
	name    string
	content []byte
}

func multipartFiles(t *testing.T, files ...upload) []service.UploadedFile {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, f := range files {
		part, err := w.CreateFormFile("files", f.name)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	var out []service.UploadedFile
	for _, fh := range form.File["files"] {
		f, err := fh.Open()
		require.NoError(t, err)
		t.Cleanup(func() { _ = f.Close() })
		out = append(out, service.UploadedFile{File: f, Header: fh})
	}
	return out
}

type fixture struct {
	svc       service.DraftService
	store     *draft.Store
	extractor *mocks.MockExtractor
	archive   *mocks.MockDocumentArchive
}

func newFixture(t *testing.T, withArchive bool) *fixture {
	t.Helper()
	store := draft.NewStore(memory.NewDraftRepo(), ns)
	require.NoError(t, store.Load(context.Background()))

	f := &fixture{
		store:     store,
		extractor: new(mocks.MockExtractor),
	}
	var archive port.DocumentArchive
	if withArchive {
		f.archive = new(mocks.MockDocumentArchive)
		archive = f.archive
	}
	cfg := &config.ExtractionConfig{MaxFileSizeMB: 1, MaxFiles: 3}
	f.svc = service.NewDraftService(store, f.extractor, archive, pricing.NewCalculator(pricing.DefaultRules()), cfg, ns)
	return f
}

func invoicePayload() payload.Payload {
	return payload.Payload{
		"shipper":   map[string]any{"company": "ACME Exports", "country": "IN"},
		"consignee": map[string]any{"company": "Globex", "country": "US"},
		"products": []any{
			map[string]any{"name": "Valve", "qty": 2.0, "unitPrice": 50.0},
			map[string]any{"name": "Gasket", "qty": 10.0, "unitPrice": 1.5},
		},
	}
}

func TestDraftService_Extract_Merged(t *testing.T) {
	f := newFixture(t, true)
	files := multipartFiles(t, upload{"invoice.pdf", pdfBytes}, upload{"packing.png", pngBytes})

	f.archive.On("Archive", mock.Anything, mock.MatchedBy(func(in port.ArchiveInput) bool {
		return strings.HasPrefix(in.Key, "drafts/"+ns+"/")
	})).Return(&port.ArchiveOutput{Location: "s3://bucket/key"}, nil).Twice()
	f.extractor.On("Extract", mock.Anything, mock.MatchedBy(func(in []port.UploadFile) bool {
		return len(in) == 2 &&
			in[0].Name == "invoice.pdf" && in[0].ContentType == "application/pdf" &&
			in[1].Name == "packing.png" && in[1].ContentType == "image/png"
	})).Return(invoicePayload(), nil)

	result, err := f.svc.Extract(context.Background(), files)

	require.NoError(t, err)
	assert.Equal(t, domain.ExtractionOutcomeMerged, result.Outcome)
	assert.Contains(t, result.FilledPaths, "shipper.company")
	assert.Equal(t, "Globex", result.Draft.Draft.Consignee.Company)
	assert.Equal(t, 115.0, result.Draft.Draft.CustomsValue, "derived customs value is written back")
	assert.Equal(t, 115.0, result.Quote.CustomsValue)
	assert.Equal(t, 35.0, result.Quote.CustomsClearance)
	assert.False(t, result.Draft.ExtractionInProgress)
	assert.False(t, f.store.InProgress())
	f.archive.AssertExpectations(t)
	f.extractor.AssertExpectations(t)
}

func TestDraftService_Extract_DerivedValueIsNotReportedAsFilled(t *testing.T) {
	f := newFixture(t, false)
	data := invoicePayload()
	data["customsValue"] = 900.0
	f.extractor.On("Extract", mock.Anything, mock.Anything).Return(data, nil)

	result, err := f.svc.Extract(context.Background(), multipartFiles(t, upload{"invoice.pdf", pdfBytes}))

	require.NoError(t, err)
	assert.Equal(t, 115.0, result.Draft.Draft.CustomsValue)
	assert.NotContains(t, result.FilledPaths, "customsValue")
	assert.False(t, result.Draft.Provenance["customsValue"])
	for _, p := range result.FilledPaths {
		assert.True(t, result.Draft.Provenance[p], p)
	}
	assert.True(t, f.store.IsAutoFilled("shipper.company"))
}

func TestDraftService_Extract_NoData(t *testing.T) {
	f := newFixture(t, false)
	_, err := f.svc.Replace(context.Background(), domain.ShipmentDraft{Title: "hand typed"})
	require.NoError(t, err)

	f.extractor.On("Extract", mock.Anything, mock.Anything).Return(nil, domain.ErrNoDataExtracted)

	result, err := f.svc.Extract(context.Background(), multipartFiles(t, upload{"blank.pdf", pdfBytes}))

	require.NoError(t, err)
	assert.Equal(t, domain.ExtractionOutcomeNoData, result.Outcome)
	assert.Empty(t, result.FilledPaths)
	assert.Equal(t, "hand typed", result.Draft.Draft.Title)
	assert.False(t, f.store.InProgress())
}

func TestDraftService_Extract_HardFailure(t *testing.T) {
	f := newFixture(t, false)
	extErr := &extraction.Error{Kind: extraction.KindStatus, Endpoint: "primary", StatusCode: 500, Err: errors.New("boom")}
	f.extractor.On("Extract", mock.Anything, mock.Anything).Return(nil, extErr)

	before := f.svc.Get(context.Background())
	_, err := f.svc.Extract(context.Background(), multipartFiles(t, upload{"invoice.pdf", pdfBytes}))

	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
	assert.Equal(t, before, f.svc.Get(context.Background()), "failed extraction leaves the draft alone")
	assert.False(t, f.store.InProgress())
}

func TestDraftService_Extract_ArchiveFailureDoesNotBlock(t *testing.T) {
	f := newFixture(t, true)
	f.archive.On("Archive", mock.Anything, mock.Anything).Return(nil, errors.New("s3 unavailable"))
	f.extractor.On("Extract", mock.Anything, mock.Anything).Return(invoicePayload(), nil)

	result, err := f.svc.Extract(context.Background(), multipartFiles(t, upload{"invoice.pdf", pdfBytes}))

	require.NoError(t, err)
	assert.Equal(t, domain.ExtractionOutcomeMerged, result.Outcome)
}

func TestDraftService_Extract_Validation(t *testing.T) {
	big := append(append([]byte{}, pdfBytes...), bytes.Repeat([]byte("x"), 1<<20)...)

	tests := []struct {
		name  string
		files []upload
		want  error
	}{
		{"no files", nil, domain.ErrNoFiles},
		{"too many files", []upload{{"a.pdf", pdfBytes}, {"b.pdf", pdfBytes}, {"c.pdf", pdfBytes}, {"d.pdf", pdfBytes}}, domain.ErrTooManyFiles},
		{"unsupported extension", []upload{{"invoice.docx", pdfBytes}}, domain.ErrUnsupportedFileType},
		{"content does not match extension", []upload{{"invoice.pdf", pngBytes}}, domain.ErrUnsupportedFileType},
		{"plain text renamed", []upload{{"invoice.png", []byte("hello world")}}, domain.ErrUnsupportedFileType},
		{"too large", []upload{{"invoice.pdf", big}}, domain.ErrFileTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, false)
			var files []service.UploadedFile
			if len(tt.files) > 0 {
				files = multipartFiles(t, tt.files...)
			}

			_, err := f.svc.Extract(context.Background(), files)

			assert.ErrorIs(t, err, tt.want)
			f.extractor.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
			assert.False(t, f.store.InProgress())
		})
	}
}

func TestDraftService_Extract_AlreadyInProgress(t *testing.T) {
	f := newFixture(t, false)
	_, err := f.store.BeginExtraction()
	require.NoError(t, err)

	_, err = f.svc.Extract(context.Background(), multipartFiles(t, upload{"invoice.pdf", pdfBytes}))

	assert.ErrorIs(t, err, domain.ErrExtractionInProgress)
	f.extractor.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestDraftService_Extract_ClearedWhileExtracting(t *testing.T) {
	f := newFixture(t, false)
	f.extractor.On("Extract", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			_, err := f.svc.Clear(context.Background())
			require.NoError(t, err)
		}).
		Return(invoicePayload(), nil)

	_, err := f.svc.Extract(context.Background(), multipartFiles(t, upload{"invoice.pdf", pdfBytes}))

	assert.ErrorIs(t, err, domain.ErrStaleExtraction)
	assert.Equal(t, domain.NewShipmentDraft(), f.svc.Get(context.Background()).Draft)
}

func TestDraftService_PatchReprices(t *testing.T) {
	f := newFixture(t, false)
	patch := json.RawMessage(`{
		"consignee": {"country": "IN"},
		"packages": [{"id": "p1", "products": [{"id": "a", "qty": 3, "unitPrice": 5000}]}]
	}`)

	view, err := f.svc.Patch(context.Background(), patch)

	require.NoError(t, err)
	assert.Equal(t, 15000.0, view.Draft.CustomsValue)
	q := f.svc.Quote(context.Background())
	assert.Equal(t, 15000.0, q.CustomsValue)
	assert.Equal(t, 2050.0, q.CustomsClearance)
}

func TestDraftService_ReplaceKeepsDeclaredValueWithoutProducts(t *testing.T) {
	f := newFixture(t, false)

	view, err := f.svc.Replace(context.Background(), domain.ShipmentDraft{CustomsValue: 500})

	require.NoError(t, err)
	assert.Equal(t, 500.0, view.Draft.CustomsValue)
	assert.Equal(t, 500.0, f.svc.Quote(context.Background()).CustomsValue)
}

func TestDraftService_SetModeAndAutoFilled(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	view, err := f.svc.SetMode(ctx, domain.EntryModeDocument)
	require.NoError(t, err)
	assert.Equal(t, domain.EntryModeDocument, view.Mode)

	_, err = f.svc.SetMode(ctx, "fax")
	assert.ErrorIs(t, err, domain.ErrInvalidMode)

	_, err = f.store.MergeExtracted(ctx, payload.Payload{"incoterm": "fob"})
	require.NoError(t, err)
	assert.True(t, f.svc.AutoFilled(ctx, "incoterm"))
	assert.False(t, f.svc.AutoFilled(ctx, "currency"))
}

func TestDraftService_Clear(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	_, err := f.store.MergeExtracted(ctx, invoicePayload())
	require.NoError(t, err)

	view, err := f.svc.Clear(ctx)

	require.NoError(t, err)
	assert.Equal(t, domain.NewDraftState(), view.DraftState)
	assert.Equal(t, domain.PriceBreakdown{}, f.svc.Quote(ctx))
}
