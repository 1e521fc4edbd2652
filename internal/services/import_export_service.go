package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/SAP-F-2025/essay-quiz-service/internal/models"
	"github.com/SAP-F-2025/essay-quiz-service/internal/validator"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// Bank file columns for CSV and Excel sources.
const (
	ColumnID          = "id"
	ColumnQuestion    = "question"
	ColumnModelAnswer = "model_answer"
)

// ImportExportService reads question banks and exports quiz results
type ImportExportService interface {
	// Import operations
	LoadQuestionBank(ctx context.Context, path string) ([]models.Question, *models.ImportSummary, error)
	ImportQuestions(ctx context.Context, reader io.Reader, filename string) ([]models.Question, *models.ImportSummary, error)

	// Export operations
	ExportQuestionsToExcel(ctx context.Context, questions []models.Question) ([]byte, error)
	ExportResultsToExcel(ctx context.Context, state *models.QuizState) ([]byte, error)
}

type importExportService struct {
	logger    *slog.Logger
	validator *validator.Validator
}

func NewImportExportService(logger *slog.Logger, validator *validator.Validator) ImportExportService {
	return &importExportService{
		logger:    logger,
		validator: validator,
	}
}

// ===== IMPORT OPERATIONS =====

func (s *importExportService) LoadQuestionBank(ctx context.Context, path string) ([]models.Question, *models.ImportSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open question bank: %w", err)
	}
	defer f.Close()

	questions, summary, err := s.ImportQuestions(ctx, f, path)
	if summary != nil {
		summary.Source = path
	}
	return questions, summary, err
}

// ImportQuestions parses a bank in the format given by filename's extension. Rows that
// fail validation are reported in the summary and left out; the remaining bank must
// still be non-empty with unique ids.
func (s *importExportService) ImportQuestions(ctx context.Context, reader io.Reader, filename string) ([]models.Question, *models.ImportSummary, error) {
	start := time.Now()
	ext := strings.ToLower(filepath.Ext(filename))

	var (
		parsed []parsedRow
		err    error
	)
	switch ext {
	case ".json":
		parsed, err = decodeQuestionList(reader, json.Unmarshal)
	case ".yaml", ".yml":
		parsed, err = decodeQuestionList(reader, yaml.Unmarshal)
	case ".csv":
		parsed, err = s.readCSV(reader)
	case ".xlsx":
		parsed, err = s.readExcel(reader)
	default:
		return nil, nil, NewValidationError("file", "unsupported file format", ext)
	}
	if err != nil {
		return nil, nil, err
	}

	summary := &models.ImportSummary{
		Source:    filename,
		Format:    strings.TrimPrefix(ext, "."),
		TotalRows: len(parsed),
	}

	questions := make([]models.Question, 0, len(parsed))
	for _, row := range parsed {
		rowErrors := row.errors
		if len(rowErrors) == 0 {
			q := row.question
			for _, ve := range s.validator.Question().ValidateQuestion(&q) {
				rowErrors = append(rowErrors, models.ImportValidationError{
					Row:     row.row,
					Column:  ve.Field,
					Message: ve.Message,
					Value:   fmt.Sprint(ve.Value),
				})
			}
		}
		if len(rowErrors) > 0 {
			summary.Errors = append(summary.Errors, rowErrors...)
			summary.ErrorCount++
			continue
		}
		questions = append(questions, row.question)
		summary.SuccessCount++
	}
	summary.ProcessingTime = time.Since(start)

	if err := s.validator.Question().ValidateBank(questions); err != nil {
		return nil, summary, fmt.Errorf("invalid question bank %s: %w", filename, err)
	}

	s.logger.InfoContext(ctx, "Question bank loaded",
		"source", filename,
		"format", summary.Format,
		"total_rows", summary.TotalRows,
		"success_count", summary.SuccessCount,
		"error_count", summary.ErrorCount)

	return questions, summary, nil
}

type parsedRow struct {
	row      int
	question models.Question
	errors   []models.ImportValidationError
}

func decodeQuestionList(reader io.Reader, unmarshal func([]byte, any) error) ([]parsedRow, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var questions []models.Question
	if err := unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("failed to decode question bank: %w", err)
	}

	rows := make([]parsedRow, 0, len(questions))
	for i, q := range questions {
		rows = append(rows, parsedRow{row: i + 1, question: q})
	}
	return rows, nil
}

func (s *importExportService) readCSV(reader io.Reader) ([]parsedRow, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return s.parseTable(records, "CSV")
}

func (s *importExportService) readExcel(reader io.Reader) ([]parsedRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, NewValidationError("file", "Excel file has no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}
	return s.parseTable(rows, "Excel")
}

func (s *importExportService) parseTable(records [][]string, kind string) ([]parsedRow, error) {
	if len(records) < 2 {
		return nil, NewValidationError("file", kind+" must have header row and at least one data row", len(records))
	}

	headerMap := make(map[string]int)
	for i, header := range records[0] {
		headerMap[strings.ToLower(strings.TrimSpace(header))] = i
	}

	for _, col := range []string{ColumnID, ColumnQuestion, ColumnModelAnswer} {
		if _, exists := headerMap[col]; !exists {
			return nil, NewValidationError("headers", fmt.Sprintf("missing required column: %s", col), col)
		}
	}

	rows := make([]parsedRow, 0, len(records)-1)
	for i, record := range records[1:] {
		rows = append(rows, parseTableRow(record, headerMap, i+2))
	}
	return rows, nil
}

func parseTableRow(record []string, headerMap map[string]int, rowNum int) parsedRow {
	cell := func(col string) string {
		if idx := headerMap[col]; idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}

	row := parsedRow{row: rowNum}
	rawID := cell(ColumnID)
	id, err := strconv.Atoi(rawID)
	if err != nil {
		row.errors = append(row.errors, models.ImportValidationError{
			Row:     rowNum,
			Column:  ColumnID,
			Message: "must be an integer",
			Value:   rawID,
		})
	}
	row.question = models.Question{
		ID:          id,
		Question:    cell(ColumnQuestion),
		ModelAnswer: cell(ColumnModelAnswer),
	}
	return row
}

// ===== EXPORT OPERATIONS =====

func (s *importExportService) ExportQuestionsToExcel(ctx context.Context, questions []models.Question) ([]byte, error) {
	rows := make([][]interface{}, 0, len(questions))
	for _, q := range questions {
		rows = append(rows, []interface{}{q.ID, q.Question, q.ModelAnswer})
	}
	return writeSheet("Questions", []string{ColumnID, ColumnQuestion, ColumnModelAnswer}, rows)
}

// ExportResultsToExcel writes the review list of a quiz with a summary row at the end.
func (s *importExportService) ExportResultsToExcel(ctx context.Context, state *models.QuizState) ([]byte, error) {
	headers := []string{"Question", "Your Answer", "Model Answer", "Status", "Score", "Feedback"}

	records := state.ReviewRecords()
	rows := make([][]interface{}, 0, len(records)+2)
	for _, rec := range records {
		rows = append(rows, []interface{}{
			rec.Question,
			rec.UserAnswer,
			rec.ModelAnswer,
			string(rec.Status),
			rec.Score,
			rec.Feedback,
		})
	}

	summary := state.Summary()
	rows = append(rows,
		[]interface{}{},
		[]interface{}{"Total", "", "", "", fmt.Sprintf("%d/%d", summary.TotalScore, summary.MaxScore), fmt.Sprintf("%d%%", summary.Percentage)},
	)

	return writeSheet("Results", headers, rows)
}

func writeSheet(sheetName string, headers []string, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, row := range rows {
		for colIndex, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIndex+1, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}
