// Package rest provides HTTP handlers for the /product resource.
package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	producterrors "github.com/abgdnv/productproxy/internal/errors"
	"github.com/abgdnv/productproxy/internal/service"
	"github.com/abgdnv/productproxy/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  service.ProductService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new Handler delegating to the provided service.
func NewHandler(service service.ProductService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the product resource.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/product", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Post("/", h.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Patch("/", h.Update)
			r.Delete("/", h.Remove)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// FindAll retrieves a list of all products.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	mLogger.DebugContext(r.Context(), "Received request to find all products")
	list, err := h.service.FindAll(r.Context())
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, "Error retrieving product list")
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list))
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// FindByID retrieves a product by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)
	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, mLogger.With("ID", id), err, "Error retrieving product")
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product", "ID", found.ID)
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// Create handles the creation of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var productCreateDto service.ProductCreateDto
	if err := json.NewDecoder(r.Body).Decode(&productCreateDto); err != nil {
		mLogger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondStatus(w, mLogger, http.StatusBadRequest)
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to create product", "product", productCreateDto)
	if !h.validateBody(w, r, mLogger, productCreateDto) {
		return
	}

	newProduct, err := h.service.Create(r.Context(), productCreateDto)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, "Error creating product")
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", "ID", newProduct.ID)
	web.RespondJSON(w, mLogger, http.StatusCreated, newProduct)
}

// Update merges the request body over an existing product.
// A null body is passed on as nil and rejected by the service.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to update product", "ID", id)
	var productUpdateDto *service.ProductUpdateDto
	if err := json.NewDecoder(r.Body).Decode(&productUpdateDto); err != nil {
		mLogger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondStatus(w, mLogger, http.StatusBadRequest)
		return
	}
	if productUpdateDto != nil && !h.validateBody(w, r, mLogger, productUpdateDto) {
		return
	}

	updated, err := h.service.Update(r.Context(), id, productUpdateDto)
	if err != nil {
		h.respondServiceError(w, r, mLogger.With("ID", id), err, "Error updating product")
		return
	}
	mLogger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// Remove deletes a product and answers with its pre-delete state.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to delete product", "ID", id)
	removed, err := h.service.Delete(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, mLogger.With("ID", id), err, "Error deleting product")
		return
	}
	mLogger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	web.RespondJSON(w, mLogger, http.StatusOK, removed)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// validateBody answers 400 and returns false when body fails its validate tags.
func (h *Handler) validateBody(w http.ResponseWriter, r *http.Request, logger *slog.Logger, body any) bool {
	err := h.validate.Struct(body)
	if err == nil {
		return true
	}
	if fields, ok := web.ValidationErrors(err); ok {
		logger.WarnContext(r.Context(), "Validation errors occurred", "errors", fields)
		web.RespondJSON(w, logger, http.StatusBadRequest, map[string]any{"validation_errors": fields})
		return false
	}
	logger.ErrorContext(r.Context(), "Error validating request body", "error", err)
	web.RespondStatus(w, logger, http.StatusBadRequest)
	return false
}

// respondServiceError maps a domain error to its status: NotFound 404, BadRequest 400, anything else 500.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, msg string) {
	switch {
	case errors.Is(err, producterrors.ErrProductNotFound):
		logger.WarnContext(r.Context(), msg, "error", err)
		web.RespondStatus(w, logger, http.StatusNotFound)
	case errors.Is(err, producterrors.ErrBadRequest):
		logger.WarnContext(r.Context(), msg, "error", err)
		web.RespondStatus(w, logger, http.StatusBadRequest)
	default:
		logger.ErrorContext(r.Context(), msg, "error", err)
		web.RespondStatus(w, logger, http.StatusInternalServerError)
	}
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
