package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ai-olympiad/qcm-service/internal/repositories"
)

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

const exportSheet = "Results"

var exportHeaders = []string{
	"Candidate", "Email", "Session", "Score (%)", "Correct", "Total",
	"Passed", "Time Spent (s)", "Tab Switches", "Completed At",
}

func (s *exportService) ExportResults(ctx context.Context, sessionID *string) ([]byte, string, error) {
	rows, err := s.repo.Dashboard().GetExportRows(ctx, nil, sessionID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load export rows: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for col, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(exportSheet, cell, header); err != nil {
			return nil, "", fmt.Errorf("failed to write header: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		endCell, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
		f.SetCellStyle(exportSheet, "A1", endCell, headerStyle)
	}

	for i, row := range rows {
		passed := "no"
		if row.Passed {
			passed = "yes"
		}
		values := []interface{}{
			row.CandidateName,
			row.CandidateEmail,
			row.SessionTitle,
			row.Score,
			row.CorrectAnswers,
			row.TotalQuestions,
			passed,
			row.TimeSpent,
			row.TabSwitches,
			row.CompletedAt.Format(time.RFC3339),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(exportSheet, cell, value); err != nil {
				return nil, "", fmt.Errorf("failed to write row %d: %w", i, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to render workbook: %w", err)
	}

	filename := fmt.Sprintf("qcm-results-%s.xlsx", time.Now().Format("2006-01-02"))
	s.logger.Info("Results exported", "rows", len(rows), "filename", filename)

	return buf.Bytes(), filename, nil
}
