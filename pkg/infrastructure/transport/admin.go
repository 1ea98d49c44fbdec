package transport

import (
	"net/http"

	"github.com/gorilla/mux"

	"storefront/pkg/domain/model"
	"storefront/pkg/domain/service"
)

// ensureLoaded loads the admin data on first use.
func (h *Handler) ensureLoaded(w http.ResponseWriter, r *http.Request) bool {
	if h.deps.Admin.Snapshot().Loaded {
		return true
	}
	if err := h.deps.Admin.Load(r.Context()); err != nil {
		writeError(w, r, err)
		return false
	}
	return true
}

func (h *Handler) adminSnapshot(w http.ResponseWriter, r *http.Request) {
	if !h.ensureLoaded(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Admin.Snapshot())
}

func (h *Handler) adminReload(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Admin.Load(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Admin.Snapshot())
}

func (h *Handler) adminDashboard(w http.ResponseWriter, r *http.Request) {
	if !h.ensureLoaded(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Admin.Dashboard())
}

// writeResult reports a mutation. Failures keep the Result shape so the
// console can show the message.
func writeResult(w http.ResponseWriter, success int, failure int, result service.Result) {
	if result.Success {
		writeJSON(w, success, result)
		return
	}
	writeJSON(w, failure, result)
}

func (h *Handler) adminAddProduct(w http.ResponseWriter, r *http.Request) {
	var product model.Product
	if err := decodeJSON(r, &product); err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusCreated, http.StatusBadGateway, h.deps.Admin.AddProduct(r.Context(), product))
}

func (h *Handler) adminEditProduct(w http.ResponseWriter, r *http.Request) {
	var product model.Product
	if err := decodeJSON(r, &product); err != nil {
		writeError(w, r, err)
		return
	}
	id := model.ID(mux.Vars(r)["id"])
	writeResult(w, http.StatusOK, http.StatusBadGateway, h.deps.Admin.EditProduct(r.Context(), id, product))
}

func (h *Handler) adminDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := model.ID(mux.Vars(r)["id"])
	writeResult(w, http.StatusOK, http.StatusBadGateway, h.deps.Admin.DeleteProduct(r.Context(), id))
}

func (h *Handler) adminAddCategory(w http.ResponseWriter, r *http.Request) {
	var category model.Category
	if err := decodeJSON(r, &category); err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusCreated, http.StatusBadGateway, h.deps.Admin.AddCategory(r.Context(), category))
}

func (h *Handler) adminDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := model.ID(mux.Vars(r)["id"])
	writeResult(w, http.StatusOK, http.StatusBadGateway, h.deps.Admin.DeleteCategory(r.Context(), id))
}

func (h *Handler) adminUpdateUser(w http.ResponseWriter, r *http.Request) {
	var patch model.UserPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	id := model.ID(mux.Vars(r)["id"])
	writeResult(w, http.StatusOK, http.StatusBadGateway, h.deps.Admin.UpdateUser(r.Context(), id, patch))
}

func (h *Handler) adminDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := model.ID(mux.Vars(r)["id"])
	writeResult(w, http.StatusOK, http.StatusBadGateway, h.deps.Admin.DeleteUser(r.Context(), id))
}

func (h *Handler) adminUpdateOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	result := h.deps.Admin.UpdateOrderStatus(mux.Vars(r)["id"], req.Status)
	failure := http.StatusUnprocessableEntity
	if result.Error == service.ErrAdminOrderNotFound.Error() {
		failure = http.StatusNotFound
	}
	writeResult(w, http.StatusOK, failure, result)
}

func (h *Handler) adminDeleteOrder(w http.ResponseWriter, r *http.Request) {
	writeResult(w, http.StatusOK, http.StatusNotFound, h.deps.Admin.DeleteOrder(mux.Vars(r)["id"]))
}
