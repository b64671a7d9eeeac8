package web

import (
	"net/http"

	"paddock/internal/adapters/http/middleware"
	"paddock/internal/application/orchestrators"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// maxImportSize caps uploaded workbooks at 10 MB.
const maxImportSize = 10 << 20

// handleImportSessions handles POST /api/sessions/import as a multipart form
// with a "file" field holding an xlsx workbook.
func handleImportSessions(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())

	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing workbook file")
		return
	}
	defer file.Close()

	result, err := orchestrators.ExecuteImportSessions(r.Context(),
		orchestrators.ImportSessionsInput{
			Reader:       file,
			TrainerEmail: claims.Email,
		},
		orchestrators.ImportSessionsDeps{
			SessionStore:    stores.SessionStore,
			ConnectionStore: stores.ConnectionStore,
			AccountStore:    stores.AccountStore,
		})
	if err != nil {
		domainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleExportWorkbook handles GET /api/sessions/export. The response is an
// xlsx download with one sheet of sessions and one of competitions.
func handleExportWorkbook(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="sessions.xlsx"`)

	err := orchestrators.ExecuteExportWorkbook(r.Context(), claims.Email,
		orchestrators.ExportWorkbookDeps{
			SessionStore:     stores.SessionStore,
			CompetitionStore: stores.CompetitionStore,
		}, w)
	if err != nil {
		// Headers are already out; all we can do is log.
		internalError(w, err)
	}
}

// handleExportTemplate handles GET /api/sessions/template: an empty import
// workbook with the expected header row and one example row.
func handleExportTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="import-template.xlsx"`)

	if err := orchestrators.ExecuteExportTemplate(w); err != nil {
		internalError(w, err)
	}
}
