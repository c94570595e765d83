package rest

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

type linkVerifier interface {
	Verify(token, reference string) error
}

type documentArchive interface {
	Get(ctx context.Context, reference string) (io.ReadCloser, int64, error)
}

// DocumentHandler streams archived PDFs behind signed links.
type DocumentHandler struct {
	links   linkVerifier
	archive documentArchive
	log     *slog.Logger
}

// NewDocumentHandler creates a DocumentHandler.
func NewDocumentHandler(links linkVerifier, archive documentArchive, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{links: links, archive: archive, log: logger.With("handler", "documents")}
}

// Download handles GET /api/documents/{reference}?token=.
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	reference := strings.ToUpper(chi.URLParam(r, "reference"))
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err := h.links.Verify(token, reference); err != nil {
		h.log.InfoContext(r.Context(), "document link rejected",
			slog.String("reference", reference), slog.String("error", err.Error()))
		handleError(h.log, w, r, err)
		return
	}

	body, size, err := h.archive.Get(r.Context(), reference)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+reference+`.pdf"`)
	if size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		h.log.WarnContext(r.Context(), "document stream interrupted",
			slog.String("reference", reference), slog.String("error", err.Error()))
	}
}
