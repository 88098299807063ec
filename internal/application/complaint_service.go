package application

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/qms-core/internal/domain/entity"
	"github.com/oksasatya/qms-core/internal/domain/presentation"
	repo "github.com/oksasatya/qms-core/internal/domain/repository"
	"github.com/oksasatya/qms-core/pkg/helpers"
)

// ComplaintView pairs a complaint with the badges a client renders for it.
type ComplaintView struct {
	entity.Complaint
	StatusBadge   presentation.Result
	SeverityBadge presentation.Result
}

func NewComplaintView(c entity.Complaint) ComplaintView {
	return ComplaintView{
		Complaint:     c,
		StatusBadge:   presentation.MapFor(presentation.KindComplaint, string(c.Status), "", true),
		SeverityBadge: presentation.MapFor(presentation.KindComplaint, "", string(c.Severity), true),
	}
}

type CreateComplaintInput struct {
	Title       string
	Description string
	Severity    entity.Severity
}

type ComplaintService struct {
	Repo      repo.ComplaintRepository
	ES        *elasticsearch.Client
	ESIndex   string
	GCS       *storage.Client
	GCSBucket string
	Logger    *logrus.Logger
}

func NewComplaintService(r repo.ComplaintRepository, es *elasticsearch.Client, esIndex string, gcs *storage.Client, gcsBucket string, logger *logrus.Logger) *ComplaintService {
	if logger == nil {
		logger = helpers.NopLogger()
	}
	return &ComplaintService{Repo: r, ES: es, ESIndex: esIndex, GCS: gcs, GCSBucket: gcsBucket, Logger: logger}
}

// Create opens a new complaint reported by actorID.
func (s *ComplaintService) Create(ctx context.Context, actorID string, in CreateComplaintInput) (*ComplaintView, error) {
	c := &entity.Complaint{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Status:      entity.ComplaintOpen,
		Severity:    in.Severity,
		ReportedBy:  actorID,
	}
	if err := s.Repo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.index(ctx, c)
	v := NewComplaintView(*c)
	return &v, nil
}

func (s *ComplaintService) Get(ctx context.Context, id string) (*ComplaintView, error) {
	c, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapNotFound(err)
	}
	v := NewComplaintView(*c)
	return &v, nil
}

func (s *ComplaintService) List(ctx context.Context, f repo.ComplaintFilter) ([]ComplaintView, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	rows, err := s.Repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]ComplaintView, 0, len(rows))
	for _, c := range rows {
		out = append(out, NewComplaintView(c))
	}
	return out, nil
}

func (s *ComplaintService) UpdateStatus(ctx context.Context, id string, status entity.ComplaintStatus) (*ComplaintView, error) {
	c, err := s.Repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, s.mapNotFound(err)
	}
	s.index(ctx, c)
	v := NewComplaintView(*c)
	return &v, nil
}

// UploadAttachment stores an evidence file in GCS and links it to the complaint.
func (s *ComplaintService) UploadAttachment(ctx context.Context, id string, r io.Reader, filename, contentType string) (string, error) {
	if s.GCS == nil || s.GCSBucket == "" {
		return "", ErrStorageDisabled
	}
	if _, err := s.Repo.GetByID(ctx, id); err != nil {
		return "", s.mapNotFound(err)
	}
	objectPath := helpers.EvidencePath(id, uuid.NewString(), filename)
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		s.Logger.WithError(err).WithField("complaint_id", id).Error("gcs upload failed")
		return "", err
	}
	if err := s.Repo.SetAttachment(ctx, id, url); err != nil {
		return "", s.mapNotFound(err)
	}
	return url, nil
}

// Search runs a full-text match over title and description.
// Without a configured index it returns an empty result.
func (s *ComplaintService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^2", "description"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.ESIndex), s.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, errors.New("search failed: " + res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		doc := h.Source
		if doc == nil {
			doc = map[string]any{}
		}
		doc["id"] = h.ID
		if st, ok := doc["status"].(string); ok {
			doc["category"] = presentation.MapFor(presentation.KindComplaint, st, "", false).Category
		}
		out = append(out, doc)
	}
	return out, nil
}

// index is best-effort; failures are logged and the write stands.
func (s *ComplaintService) index(ctx context.Context, c *entity.Complaint) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	doc := map[string]any{
		"title":       c.Title,
		"description": c.Description,
		"status":      c.Status,
		"severity":    c.Severity,
		"reported_by": c.ReportedBy,
		"created_at":  c.CreatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: c.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	ic, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(ic, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("complaint_id", c.ID).Warn("es index failed")
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.Logger.WithField("status", res.Status()).WithField("complaint_id", c.ID).Warn("es index response error")
	}
}

func (s *ComplaintService) mapNotFound(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrComplaintNotFound
	}
	return err
}
