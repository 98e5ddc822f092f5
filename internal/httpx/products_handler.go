package httpx

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"optica/internal/catalog"
	"optica/internal/errs"
)

type ProductStore interface {
	List(ctx context.Context) ([]catalog.Product, error)
	Get(ctx context.Context, id string) (catalog.Product, error)
	Create(ctx context.Context, name, description string, priceCents, stock int) (catalog.Product, error)
	Update(ctx context.Context, id, name, description string, priceCents, stock int) (catalog.Product, error)
	Delete(ctx context.Context, id string) error
	AddImage(ctx context.Context, productID, url, thumbURL string) (catalog.Image, error)
}

type ProductsHandler struct {
	Store     ProductStore
	UploadDir string
}

func (h *ProductsHandler) Register(r chi.Router) {
	r.Get("/products", h.list)
	r.Get("/products/{id}", h.get)
}

func (h *ProductsHandler) RegisterAdmin(r chi.Router) {
	r.Post("/products", h.create)
	r.Put("/products/{id}", h.update)
	r.Delete("/products/{id}", h.delete)
	r.Post("/products/{id}/images", h.uploadImage)
}

func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *ProductsHandler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type productReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int    `json:"price_cents"`
	Stock       int    `json:"stock"`
}

func (h *ProductsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req productReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.Validation("invalid json"))
		return
	}
	p, err := h.Store.Create(r.Context(), req.Name, req.Description, req.PriceCents, req.Stock)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProductsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req productReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.Validation("invalid json"))
		return
	}
	p, err := h.Store.Update(r.Context(), chi.URLParam(r, "id"), req.Name, req.Description, req.PriceCents, req.Stock)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

func (h *ProductsHandler) uploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(16 << 20); err != nil {
		writeError(w, errs.Validation("invalid multipart form"))
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, errs.Validation("image file is required"))
		return
	}
	defer file.Close()

	name, thumbName, err := catalog.SaveUpload(h.UploadDir, file, header.Filename)
	if err != nil {
		writeError(w, errs.Validation("could not store image: %v", err))
		return
	}

	im, err := h.Store.AddImage(r.Context(), chi.URLParam(r, "id"), "/uploads/"+name, "/uploads/"+thumbName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, im)
}
