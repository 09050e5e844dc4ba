package elasticsearch

import (
	"context"
	"time"

	"importer/models"
	"importer/models/indexes"
)

func (s *Store) PublishReport(ctx context.Context, report *indexes.Report) (string, error) {
	if report.CreatedAt == "" {
		report.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	ref, err := s.indexDocument(ctx, indexes.ReportsIndex, report.Name, report)
	if err != nil {
		return "", &models.StoreError{Op: "publish report " + report.Name, Err: err}
	}
	return ref, nil
}

func (s *Store) GetReport(ctx context.Context, name string) (*indexes.Report, error) {
	var report indexes.Report
	if err := s.getDocument(ctx, indexes.ReportsIndex, name, &report); err != nil {
		return nil, &models.StoreError{Op: "get report " + name, Err: err}
	}
	return &report, nil
}
