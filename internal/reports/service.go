package reports

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fdg312/nutri-hub/internal/blob"
	"github.com/fdg312/nutri-hub/internal/nutrition"
	"github.com/fdg312/nutri-hub/internal/state"
	"github.com/fdg312/nutri-hub/internal/userctx"
)

// Errors
var (
	ErrInvalidFormat    = errors.New("invalid format")
	ErrInvalidDate      = errors.New("invalid date format")
	ErrInvalidDateRange = errors.New("from date must be before to date")
	ErrRangeTooLarge    = errors.New("date range too large")
	ErrReportNotFound   = errors.New("report not found")
)

// Service builds history views and stores generated exports in blob storage.
// Report metadata lives in process memory; the files live in the blob store.
type Service struct {
	store        *state.Store
	blobStore    blob.Store
	logger       *zap.Logger
	maxRangeDays int
	now          func() time.Time

	mu      sync.RWMutex
	reports map[uuid.UUID]Report
}

// NewService creates a new reports service. A nil blobStore keeps files in memory.
func NewService(store *state.Store, blobStore blob.Store, maxRangeDays int, logger *zap.Logger) *Service {
	if blobStore == nil {
		blobStore = blob.NewMemoryStore()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRangeDays <= 0 {
		maxRangeDays = 366
	}
	return &Service{
		store:        store,
		blobStore:    blobStore,
		logger:       logger,
		maxRangeDays: maxRangeDays,
		now:          time.Now,
		reports:      make(map[uuid.UUID]Report),
	}
}

// History returns the summary of the current state.
func (s *Service) History() HistorySummary {
	return Summary(s.store.Snapshot())
}

// Export renders [from, to] without storing the file.
func (s *Service) Export(format, from, to string) ([]byte, error) {
	if format != FormatPDF && format != FormatCSV {
		return nil, ErrInvalidFormat
	}
	from, to, err := s.validateRange(from, to)
	if err != nil {
		return nil, err
	}

	snap := s.store.Snapshot()
	return Generate(format, ExportData{
		From:           from,
		To:             to,
		TargetCalories: snap.Targets().Calories,
		Streak:         snap.Streak,
		Rows:           Rows(snap, from, to),
	})
}

// CreateReport generates an export and uploads it.
func (s *Service) CreateReport(ctx context.Context, req CreateReportRequest) (*Report, error) {
	data, err := s.Export(req.Format, req.From, req.To)
	if err != nil {
		return nil, err
	}
	from, to, _ := s.validateRange(req.From, req.To)

	id := uuid.New()
	objectKey := fmt.Sprintf("reports/%s_%s_%s.%s", from, to, id.String(), req.Format)
	size, err := s.blobStore.PutObject(ctx, objectKey, data, ContentType(req.Format))
	if err != nil {
		return nil, fmt.Errorf("failed to upload report: %w", err)
	}

	report := Report{
		ID:        id,
		Format:    req.Format,
		FromDate:  from,
		ToDate:    to,
		ObjectKey: objectKey,
		SizeBytes: size,
		Status:    StatusReady,
		CreatedAt: s.now().UTC(),
	}

	s.mu.Lock()
	s.reports[id] = report
	s.mu.Unlock()

	userctx.Logger(ctx, s.logger).Info("reports: created",
		zap.String("id", id.String()),
		zap.String("format", req.Format),
		zap.Int64("size_bytes", size),
	)
	return &report, nil
}

// GetReport retrieves a report by ID
func (s *Service) GetReport(id uuid.UUID) (*Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[id]
	if !ok {
		return nil, ErrReportNotFound
	}
	return &r, nil
}

// ListReports returns reports newest first.
func (s *Service) ListReports(limit, offset int) []Report {
	s.mu.RLock()
	out := make([]Report, 0, len(s.reports))
	for _, r := range s.reports {
		out = append(out, r)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if offset >= len(out) {
		return []Report{}
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

// GetReportData downloads the file of a report.
func (s *Service) GetReportData(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	r, err := s.GetReport(id)
	if err != nil {
		return nil, "", err
	}
	data, err := s.blobStore.GetObject(ctx, r.ObjectKey)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, "", ErrReportNotFound
		}
		return nil, "", err
	}
	return data, ContentType(r.Format), nil
}

// DeleteReport deletes a report
func (s *Service) DeleteReport(ctx context.Context, id uuid.UUID) error {
	r, err := s.GetReport(id)
	if err != nil {
		return err
	}

	if err := s.blobStore.DeleteObject(ctx, r.ObjectKey); err != nil && !errors.Is(err, blob.ErrNotFound) {
		// metadata is removed anyway
		s.logger.Warn("reports: failed to delete object", zap.String("key", r.ObjectKey), zap.Error(err))
	}

	s.mu.Lock()
	delete(s.reports, id)
	s.mu.Unlock()
	return nil
}

// validateRange defaults missing bounds to the last 30 days ending today.
func (s *Service) validateRange(from, to string) (string, string, error) {
	loc := s.store.Location()
	today := s.store.Today()
	if strings.TrimSpace(to) == "" {
		to = today
	}
	if strings.TrimSpace(from) == "" {
		f, err := nutrition.ShiftDateKey(to, -29)
		if err != nil {
			return "", "", ErrInvalidDate
		}
		from = f
	}

	fromDate, err := nutrition.ParseDateKey(from, loc)
	if err != nil {
		return "", "", ErrInvalidDate
	}
	toDate, err := nutrition.ParseDateKey(to, loc)
	if err != nil {
		return "", "", ErrInvalidDate
	}
	if fromDate.After(toDate) {
		return "", "", ErrInvalidDateRange
	}
	if int(toDate.Sub(fromDate).Hours()/24) > s.maxRangeDays {
		return "", "", ErrRangeTooLarge
	}
	return from, to, nil
}
