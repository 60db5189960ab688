package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"backoffice/internal/record/model"
	"backoffice/internal/record/service"
	"backoffice/pkg/apperror"
	"backoffice/pkg/response"
	"backoffice/store"
)

// maxBodyBytes caps request bodies for record creation.
const maxBodyBytes = 1 << 20

type RecordHandler struct {
	Service *service.RecordService
}

func NewRecordHandler(service *service.RecordService) *RecordHandler {
	return &RecordHandler{Service: service}
}

// List handles GET /api/{collection}.
func (h *RecordHandler) List(collection string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := h.Service.List(r.Context(), collection)
		if err != nil {
			response.FromError(w, err)
			return
		}
		response.JSON(w, http.StatusOK, records)
	}
}

// Create handles POST /api/{collection}.
func (h *RecordHandler) Create(collection string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fields, err := decodeRecord(w, r)
		if err != nil {
			response.FromError(w, err)
			return
		}
		rec, err := h.Service.Create(r.Context(), collection, fields)
		if err != nil {
			response.FromError(w, err)
			return
		}
		response.JSON(w, http.StatusOK, rec)
	}
}

// Delete handles DELETE /api/{collection}/{id}.
func (h *RecordHandler) Delete(collection string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.Service.Delete(r.Context(), collection, r.PathValue("id")); err != nil {
			response.FromError(w, err)
			return
		}
		response.JSON(w, http.StatusOK, model.OKResponse{OK: true})
	}
}

// decodeRecord reads a JSON object body. An empty body is an empty record.
func decodeRecord(w http.ResponseWriter, r *http.Request) (store.Record, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()

	var fields store.Record
	if err := dec.Decode(&fields); err != nil {
		if errors.Is(err, io.EOF) {
			return store.Record{}, nil
		}
		return nil, apperror.Validation("request body must be a JSON object")
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, apperror.Validation("request body must be a single JSON object")
	}
	if fields == nil {
		fields = store.Record{}
	}
	return fields, nil
}
