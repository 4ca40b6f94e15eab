package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/username/flatorders/src/config"
	"github.com/username/flatorders/src/logger"
	"github.com/username/flatorders/src/parsers"
	"github.com/username/flatorders/src/services"
	"github.com/username/flatorders/src/utils"
	"github.com/username/flatorders/src/validation"
)

type ConvertHandler struct {
	convertService services.ConvertService
}

func NewConvertHandler(service services.ConvertService) *ConvertHandler {
	return &ConvertHandler{
		convertService: service,
	}
}

// parseOptionsFromQuery maps the documented query parameters onto parser
// options. Unknown parameters are ignored; malformed values fall back to
// the default.
func parseOptionsFromQuery(r *http.Request) parsers.Options {
	opts := parsers.DefaultOptions()
	q := r.URL.Query()

	if v := q.Get("max_rows"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.MaxRows = n
		}
	}
	if q.Get("qty_unsigned") == "true" {
		opts.QtyUnsigned = true
	}
	if q.Get("include_rolling") == "true" {
		opts.IncludeRolling = true
	}
	if q.Get("skip_empty_sections") == "false" {
		opts.SkipEmptySections = false
	}
	if q.Get("status_filter") == "false" {
		opts.StatusFilter = false
	}
	if q.Get("group_sort") == "true" {
		opts.GroupSort = true
	}
	return opts
}

// HandleConvert accepts a multipart statement upload under the "file"
// field and responds with the conversion result.
func (h *ConvertHandler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		logger.L.Warn("Failed to parse multipart form or request too large", "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		logger.L.Warn("Failed to retrieve file from request", "error", err)
		utils.SendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		logger.L.Warn("Uploaded file header reports size too large", "fileSize", fileHeader.Size, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("File too large, max %d MB", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	clientContentType := fileHeader.Header.Get("Content-Type")
	if err := validation.ValidateClientContentType(clientContentType); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := validation.ValidateStatementContent(file); err != nil {
		logger.L.Warn("Server-side content validation failed", "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	logger.L.Info("Processing convert request", "filename", fileHeader.Filename)
	result, err := h.convertService.ProcessUpload(file, fileHeader.Filename, parseOptionsFromQuery(r))
	if err != nil {
		if errors.Is(err, services.ErrParsingFailed) {
			logger.L.Warn("Convert failed during CSV parsing", "filename", fileHeader.Filename, "error", err)
			utils.SendJSONError(w, fmt.Sprintf("Error parsing CSV file: %v", err), http.StatusBadRequest)
		} else {
			logger.L.Error("Internal error processing upload", "filename", fileHeader.Filename, "error", err)
			utils.SendJSONError(w, "An internal error occurred while processing the file. Please try again later.", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logger.L.Error("Error encoding JSON response for convert result", "resultID", result.ID, "error", err)
	}
}

// HandleGetResult serves a previously computed result by id while it is
// still cached.
func (h *ConvertHandler) HandleGetResult(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		utils.SendJSONError(w, "result id is required", http.StatusBadRequest)
		return
	}

	result, err := h.convertService.GetResult(id)
	if err != nil {
		if errors.Is(err, services.ErrResultNotFound) {
			utils.SendJSONError(w, fmt.Sprintf("no result with id %s (results expire)", id), http.StatusNotFound)
			return
		}
		logger.L.Error("Error retrieving convert result", "resultID", id, "error", err)
		utils.SendJSONError(w, "An internal error occurred while retrieving the result.", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, http.StatusOK, result)
}
