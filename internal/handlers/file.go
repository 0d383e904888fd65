package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/taskmate/apiserver/internal/services"
)

const (
	maxUploadMemory = 32 << 20
	maxUploadBytes  = 64 << 20
	formFieldFile   = "file"
)

// FileHandler provides HTTP handlers for team file attachments.
type FileHandler struct {
	fileService *services.FileService
}

func NewFileHandler(fileService *services.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// FileTeamRouter registers the team-scoped file routes.
func FileTeamRouter(r chi.Router, handler *FileHandler) {
	r.Get("/", handler.ListFiles)
	r.Post("/", handler.UploadFile)
}

// FileRouter registers the file-scoped routes.
func FileRouter(r chi.Router, handler *FileHandler) {
	r.Get("/{fileID}", handler.DownloadFile)
	r.Delete("/{fileID}", handler.DeleteFile)
}

func (h *FileHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	me, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	teamID, err := urlParamID(r, "teamID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	files, err := h.fileService.ListByTeam(r.Context(), me, teamID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

func (h *FileHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	me, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	teamID, err := urlParamID(r, "teamID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	headers := r.MultipartForm.File[formFieldFile]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	if len(headers) > 1 {
		writeError(w, http.StatusBadRequest, "only one file is allowed")
		return
	}

	header := headers[0]
	if header.Size > maxUploadBytes {
		writeError(w, http.StatusBadRequest, "uploaded file too large")
		return
	}
	upload, err := header.Open()
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	defer upload.Close()

	file, err := h.fileService.Upload(
		r.Context(), me, teamID,
		header.Filename, header.Header.Get("Content-Type"),
		upload, header.Size,
	)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, file)
}

func (h *FileHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	me, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	fileID, err := urlParamID(r, "fileID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	file, reader, err := h.fileService.Open(r.Context(), me, fileID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	if file.SizeBytes > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(file.SizeBytes, 10))
	}
	_, _ = io.Copy(w, reader)
}

func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	me, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	fileID, err := urlParamID(r, "fileID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.fileService.Delete(r.Context(), me, fileID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
