package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"fusion-demo/internal/application/services"
	"fusion-demo/internal/application/usecases"
	"fusion-demo/internal/domain/entities"
	"fusion-demo/internal/domain/valueobjects"
	"fusion-demo/model"
)

// multipart のヘッダ分の余裕
const multipartOverhead = 1024 * 1024

type HandlerConfig struct {
	MaxUploadBytes int64
	SessionTTL     time.Duration
}

type FusionHandler struct {
	fusionUseCase    *usecases.FusionUseCase
	intakeUseCase    *usecases.IntakeUseCase
	parameterService *services.ParameterService
	config           HandlerConfig
	page             *template.Template
}

func NewFusionHandler(
	fusionUseCase *usecases.FusionUseCase,
	intakeUseCase *usecases.IntakeUseCase,
	parameterService *services.ParameterService,
	config HandlerConfig,
) *FusionHandler {
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = usecases.DefaultMaxImageBytes
	}
	if config.SessionTTL <= 0 {
		config.SessionTTL = time.Hour
	}
	return &FusionHandler{
		fusionUseCase:    fusionUseCase,
		intakeUseCase:    intakeUseCase,
		parameterService: parameterService,
		config:           config,
		page:             template.Must(template.New("index").Parse(indexHTML)),
	}
}

func (h *FusionHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	output, err := h.fusionUseCase.State(r.Context(), sessionIDFrom(r.Context()))
	if err != nil {
		slog.Error("failed to load session", "error", err)
		http.Error(w, "failed to load session", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store, max-age=0")
	if err := h.page.Execute(w, newPageView(output)); err != nil {
		slog.Error("failed to render index", "error", err)
	}
}

func (h *FusionHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	output, err := h.fusionUseCase.State(r.Context(), sessionIDFrom(r.Context()))
	if err != nil {
		slog.Error("failed to load session", "error", err)
		h.sendError(w, "failed to load session", http.StatusInternalServerError)
		return
	}
	h.sendState(w, output, http.StatusOK)
}

func (h *FusionHandler) HandleActions(w http.ResponseWriter, r *http.Request) {
	actions := valueobjects.SupportedActions()
	response := model.ActionsResponse{
		Actions: make([]string, 0, len(actions)),
		Default: valueobjects.DefaultAction().String(),
	}
	for _, action := range actions {
		response.Actions = append(response.Actions, action.String())
	}

	w.Header().Set("Cache-Control", "public, max-age=3600")
	h.sendJSON(w, response, http.StatusOK)
}

// HandleUpload は multipart の image フィールドを指定スロットに読み込む
func (h *FusionHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	slot, err := h.parameterService.SlotFromPath(mux.Vars(r)["slot"])
	if err != nil {
		h.sendError(w, err.Error(), http.StatusNotFound)
		return
	}

	input := usecases.IntakeInput{
		SessionID: sessionIDFrom(r.Context()),
		Slot:      slot,
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadBytes+multipartOverhead)
	file, header, err := r.FormFile("image")
	if err != nil {
		// 読めなかったアップロードもスロットのエラーとして記録する
		input.File = failedUpload{err: err}
	} else {
		defer file.Close()
		input.File = file
		input.MimeType = h.parameterService.MimeTypeFromHeader(header.Header.Get("Content-Type"))
	}

	output, err := h.intakeUseCase.Upload(r.Context(), input)
	if output == nil {
		slog.Error("image upload failed", "error", err)
		h.sendError(w, "failed to store image", http.StatusInternalServerError)
		return
	}
	h.sendState(w, output, statusFor(err))
}

func (h *FusionHandler) HandleSelectAction(w http.ResponseWriter, r *http.Request) {
	output, err := h.fusionUseCase.SelectAction(
		r.Context(),
		sessionIDFrom(r.Context()),
		h.parameterService.ActionFromRequest(r),
	)
	if err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.sendState(w, output, http.StatusOK)
}

// HandleFuse は合成を1回実行し、確定した状態を返す
func (h *FusionHandler) HandleFuse(w http.ResponseWriter, r *http.Request) {
	output, err := h.fusionUseCase.Dispatch(r.Context(), sessionIDFrom(r.Context()))
	if output == nil {
		slog.Error("fusion dispatch failed", "error", err)
		h.sendError(w, "failed to run fusion", http.StatusInternalServerError)
		return
	}
	h.sendState(w, output, statusFor(err))
}

func (h *FusionHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	output, err := h.fusionUseCase.Reset(r.Context(), sessionIDFrom(r.Context()))
	if output == nil {
		slog.Error("reset failed", "error", err)
		h.sendError(w, "failed to reset session", http.StatusInternalServerError)
		return
	}
	h.sendState(w, output, statusFor(err))
}

// HandleResult は合成結果の画像をファイルとして返す
func (h *FusionHandler) HandleResult(w http.ResponseWriter, r *http.Request) {
	payload, err := h.fusionUseCase.Result(r.Context(), sessionIDFrom(r.Context()))
	if errors.Is(err, usecases.ErrNoResult) || errors.Is(err, entities.ErrSessionNotFound) {
		h.sendError(w, "no composite image available", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("failed to load result", "error", err)
		h.sendError(w, "failed to load result", http.StatusInternalServerError)
		return
	}

	data, err := payload.Bytes()
	if err != nil {
		slog.Error("failed to decode result", "error", err)
		h.sendError(w, "failed to decode result", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("fusion-%s%s", time.Now().Format("20060102-150405"), extensionFor(payload.MimeType()))
	w.Header().Set("Content-Type", payload.MimeType())
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Cache-Control", "no-store, max-age=0")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Warn("failed to write result", "error", err)
	}
}

func (h *FusionHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// statusFor maps a use case error to the HTTP status sent with the state body.
func statusFor(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, entities.ErrDispatchInProgress) {
		return http.StatusConflict
	}
	switch entities.KindOf(err) {
	case entities.ErrorKindInput, entities.ErrorKindIO:
		return http.StatusBadRequest
	case entities.ErrorKindService, entities.ErrorKindEmptyResult:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}

func (h *FusionHandler) sendState(w http.ResponseWriter, output *usecases.SessionOutput, statusCode int) {
	w.Header().Set("Cache-Control", "no-store, max-age=0")
	h.sendJSON(w, presentState(output), statusCode)
}

func (h *FusionHandler) sendJSON(w http.ResponseWriter, body any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

func (h *FusionHandler) sendError(w http.ResponseWriter, message string, statusCode int) {
	h.sendJSON(w, model.ErrorResponse{Success: false, Error: message}, statusCode)
}

type failedUpload struct {
	err error
}

func (f failedUpload) Read([]byte) (int, error) {
	return 0, f.err
}
