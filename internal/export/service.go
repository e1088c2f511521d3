package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
)

// Header is the fixed CSV header row.
var Header = []string{
	"Name", "Identifier", "Email", "Phone",
	"EntryDate", "ExitDate", "Notes",
	"MedicationName", "Dosage", "Frequency",
}

// RepositoryInterface defines the data access contract for the export.
type RepositoryInterface interface {
	FetchRows(ctx context.Context) ([]Row, error)
}

type Service struct {
	repo RepositoryInterface
}

func NewService(repo RepositoryInterface) *Service {
	return &Service{repo: repo}
}

// WriteCSV streams the full flattened table to w, header first.
func (s *Service) WriteCSV(ctx context.Context, w io.Writer) error {
	rows, err := s.repo.FetchRows(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.Name, row.Identifier, row.Email, row.Phone,
			row.EntryDate, row.ExitDate, row.Notes,
			row.MedicationName, row.Dosage, row.Frequency,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}
