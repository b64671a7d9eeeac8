package orchestrators

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"paddock/internal/domain/competition"
	"paddock/internal/domain/session"

	"github.com/xuri/excelize/v2"
)

// Sheet names in the exported workbook.
const (
	sheetSessions     = "Training Sessions"
	sheetCompetitions = "Competitions"
)

// CompetitionStoreForExport lists a trainer's competitions.
type CompetitionStoreForExport interface {
	ListByTrainer(ctx context.Context, trainerEmail string) ([]competition.Competition, error)
}

// SessionStoreForExport lists a trainer's sessions.
type SessionStoreForExport interface {
	ListByTrainer(ctx context.Context, trainerEmail string) ([]session.Session, error)
}

// ExportWorkbookDeps holds dependencies for ExportWorkbook.
type ExportWorkbookDeps struct {
	SessionStore     SessionStoreForExport
	CompetitionStore CompetitionStoreForExport
}

// ExecuteExportWorkbook writes a two-sheet workbook of the trainer's
// sessions and competitions to w.
// POST: w holds a valid xlsx stream; sheets carry the fixed headers
func ExecuteExportWorkbook(ctx context.Context, trainerEmail string, deps ExportWorkbookDeps, w io.Writer) error {
	sessions, err := deps.SessionStore.ListByTrainer(ctx, trainerEmail)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	competitions, err := deps.CompetitionStore.ListByTrainer(ctx, trainerEmail)
	if err != nil {
		return fmt.Errorf("list competitions: %w", err)
	}

	wb := excelize.NewFile()
	defer wb.Close()

	if err := wb.SetSheetName("Sheet1", sheetSessions); err != nil {
		return err
	}
	if err := writeRow(wb, sheetSessions, 1, importHeaders); err != nil {
		return err
	}
	for i, s := range sessions {
		row := []string{
			s.RiderEmail,
			s.RiderName,
			s.HorseName,
			s.SessionDate.Format("2006-01-02"),
			s.SessionDate.Format("15:04"),
			strconv.Itoa(s.DurationMinutes),
			sessionTypeLabel(s.SessionType),
			s.Notes,
		}
		if err := writeRow(wb, sheetSessions, i+2, row); err != nil {
			return err
		}
	}

	if _, err := wb.NewSheet(sheetCompetitions); err != nil {
		return err
	}
	compHeaders := []string{"Name", "Date", "Location", "Status", "Riders", "Notes"}
	if err := writeRow(wb, sheetCompetitions, 1, compHeaders); err != nil {
		return err
	}
	for i, c := range competitions {
		var riders []string
		for _, r := range c.Riders {
			riders = append(riders, r.RiderEmail)
		}
		row := []string{
			c.Name,
			c.CompetitionDate.Format("2006-01-02"),
			c.Location,
			c.Status,
			strings.Join(riders, ", "),
			c.Notes,
		}
		if err := writeRow(wb, sheetCompetitions, i+2, row); err != nil {
			return err
		}
	}

	return wb.Write(w)
}

// ExecuteExportTemplate writes an import template workbook with the expected
// headers and one instructional example row.
func ExecuteExportTemplate(w io.Writer) error {
	wb := excelize.NewFile()
	defer wb.Close()

	if err := wb.SetSheetName("Sheet1", sheetSessions); err != nil {
		return err
	}
	if err := writeRow(wb, sheetSessions, 1, importHeaders); err != nil {
		return err
	}
	example := []string{
		"rider@example.com",
		"Jane Rider",
		"Copper",
		"2026-03-14",
		"14:00",
		"60",
		"Lesson",
		"Flatwork, delete this row before importing",
	}
	if err := writeRow(wb, sheetSessions, 2, example); err != nil {
		return err
	}

	return wb.Write(w)
}

func writeRow(wb *excelize.File, sheet string, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return wb.SetSheetRow(sheet, cell, &row)
}

// sessionTypeLabel renders a session type constant as its display label,
// e.g. horse_training -> Horse Training.
func sessionTypeLabel(t string) string {
	words := strings.Split(t, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
