package orchestrators

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"paddock/internal/domain/account"
	"paddock/internal/domain/connection"
	"paddock/internal/domain/session"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// Workbook column headers, matched case-insensitively after trimming.
var importHeaders = []string{
	"Rider Email", "Rider Name", "Horse Name", "Date", "Time",
	"Duration", "Session Type", "Notes",
}

// Accepted layouts for the Date and Time cells.
var (
	importDateLayouts = []string{"2006-01-02", "02/01/2006", "2/1/2006", "01-02-06"}
	importTimeLayouts = []string{"15:04", "3:04 PM", "15:04:05"}
)

// ConnectionStoreForImport resolves the importing trainer's rider set.
type ConnectionStoreForImport interface {
	ListApprovedByFrom(ctx context.Context, fromEmail string) ([]connection.Connection, error)
}

// ImportSessionsInput carries the uploaded workbook and the importing trainer.
type ImportSessionsInput struct {
	Reader       io.Reader
	TrainerEmail string
}

// ImportRowError describes a validation or processing error for one row.
// Row numbers are 1-indexed counting the header, so the first data row is 2.
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportSessionsResult holds aggregate counts and per-row errors. Rows are
// processed best effort; a bad row never aborts the rest of the import.
type ImportSessionsResult struct {
	Total   int              `json:"total"`
	Created int              `json:"created"`
	Errors  []ImportRowError `json:"errors,omitempty"`
}

// ImportSessionsDeps holds dependencies for ImportSessions.
type ImportSessionsDeps struct {
	SessionStore    SessionStoreForSchedule
	ConnectionStore ConnectionStoreForImport
	AccountStore    AccountStoreForWorkflow
}

// ExecuteImportSessions parses a workbook of session rows and creates one
// session per valid row.
// PRE: Reader holds an xlsx workbook whose first sheet has the expected header
// POST: Valid rows persisted; Errors lists each rejected row with its number
// INVARIANT: Rider Email must match an approved connection of the trainer
func ExecuteImportSessions(ctx context.Context, input ImportSessionsInput, deps ImportSessionsDeps) (ImportSessionsResult, error) {
	wb, err := excelize.OpenReader(input.Reader)
	if err != nil {
		return ImportSessionsResult{}, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	sheet := wb.GetSheetName(0)
	rows, err := wb.GetRows(sheet)
	if err != nil {
		return ImportSessionsResult{}, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return ImportSessionsResult{}, fmt.Errorf("workbook is empty")
	}

	colIdx := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		colIdx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, h := range []string{"rider email", "date", "time"} {
		if _, ok := colIdx[h]; !ok {
			return ImportSessionsResult{}, fmt.Errorf("workbook missing required column: %s", h)
		}
	}

	getCol := func(row []string, name string) string {
		i, ok := colIdx[strings.ToLower(name)]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	connected, err := deps.ConnectionStore.ListApprovedByFrom(ctx, input.TrainerEmail)
	if err != nil {
		return ImportSessionsResult{}, fmt.Errorf("list connections: %w", err)
	}
	riderSet := make(map[string]bool, len(connected))
	for _, c := range connected {
		if c.Type == connection.TypeTrainerRider {
			riderSet[account.NormalizeEmail(c.ToEmail)] = true
		}
	}

	var result ImportSessionsResult
	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-indexed plus header row
		if isBlankRow(row) {
			continue
		}
		result.Total++

		riderEmail := account.NormalizeEmail(getCol(row, "Rider Email"))
		if riderEmail == "" {
			result.Errors = append(result.Errors, ImportRowError{rowNum, "rider email is required"})
			continue
		}
		if !riderSet[riderEmail] {
			result.Errors = append(result.Errors, ImportRowError{rowNum,
				fmt.Sprintf("%s is not a connected rider", riderEmail)})
			continue
		}

		dateStr := getCol(row, "Date")
		timeStr := getCol(row, "Time")
		if dateStr == "" {
			result.Errors = append(result.Errors, ImportRowError{rowNum, "date is required"})
			continue
		}
		if timeStr == "" {
			result.Errors = append(result.Errors, ImportRowError{rowNum, "time is required"})
			continue
		}
		sessionDate, err := parseDateTime(dateStr, timeStr)
		if err != nil {
			result.Errors = append(result.Errors, ImportRowError{rowNum,
				fmt.Sprintf("invalid date/time %q %q", dateStr, timeStr)})
			continue
		}

		duration := 60
		if d := getCol(row, "Duration"); d != "" {
			n, err := strconv.Atoi(d)
			if err != nil || n <= 0 {
				result.Errors = append(result.Errors, ImportRowError{rowNum, "invalid duration: " + d})
				continue
			}
			duration = n
		}

		sessionType := normalizeSessionType(getCol(row, "Session Type"))

		riderName := getCol(row, "Rider Name")
		if riderName == "" {
			if rider, err := deps.AccountStore.GetByEmail(ctx, riderEmail); err == nil {
				riderName = rider.FullName()
			}
		}

		s := session.Session{
			ID:              uuid.New().String(),
			TrainerEmail:    input.TrainerEmail,
			RiderEmail:      riderEmail,
			RiderName:       riderName,
			HorseName:       getCol(row, "Horse Name"),
			SessionDate:     sessionDate,
			DurationMinutes: duration,
			SessionType:     sessionType,
			Notes:           getCol(row, "Notes"),
			Status:          session.StatusScheduled,
			CreatedAt:       time.Now(),
		}
		if err := s.Validate(); err != nil {
			result.Errors = append(result.Errors, ImportRowError{rowNum, err.Error()})
			continue
		}
		if err := deps.SessionStore.Save(ctx, s); err != nil {
			result.Errors = append(result.Errors, ImportRowError{rowNum, "save failed: " + err.Error()})
			continue
		}
		result.Created++
	}

	slog.Info("sessions_imported", "trainer", input.TrainerEmail,
		"total", result.Total, "created", result.Created, "errors", len(result.Errors))
	return result, nil
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseDateTime(dateStr, timeStr string) (time.Time, error) {
	var day time.Time
	var err error
	for _, layout := range importDateLayouts {
		if day, err = time.ParseInLocation(layout, dateStr, time.Local); err == nil {
			break
		}
	}
	if err != nil {
		return time.Time{}, err
	}

	var clock time.Time
	for _, layout := range importTimeLayouts {
		if clock, err = time.Parse(layout, timeStr); err == nil {
			break
		}
	}
	if err != nil {
		return time.Time{}, err
	}

	return time.Date(day.Year(), day.Month(), day.Day(),
		clock.Hour(), clock.Minute(), 0, 0, time.Local), nil
}

// normalizeSessionType maps a display label such as "Horse Training" to its
// type constant, defaulting to lesson for blank or unknown values.
func normalizeSessionType(label string) string {
	t := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(label)), " ", "_")
	if session.IsValidType(t) {
		return t
	}
	return session.TypeLesson
}
