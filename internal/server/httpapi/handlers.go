package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/server/services"
)

const maxBodyBytes = 1 << 20

type passwordRequest struct {
	Password string `json:"password"`
}

type addItemRequest struct {
	Password string `json:"password"`
	Label    string `json:"label"`
	Secret   string `json:"secret"`
}

type putBlobRequest struct {
	EncryptedData string `json:"encrypted_data"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type unlockResponse struct {
	OK            bool `json:"ok"`
	SetupOccurred bool `json:"setup_occurred"`
}

type itemMetadata struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}

type listItemsResponse struct {
	Items []itemMetadata `json:"items"`
}

type revealedItem struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Secret    *string   `json:"secret"`
	CreatedAt time.Time `json:"created_at"`
	Error     string    `json:"error,omitempty"`
}

type revealItemsResponse struct {
	Items []revealedItem `json:"items"`
}

type blobResponse struct {
	Blob      *string    `json:"blob"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// decode reads a JSON body into v. Malformed or oversized bodies are invalid input.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return common.ErrInvalidInput
	}
	return nil
}

func (s *HTTPServer) handleUnlock(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := s.vault.Unlock(r.Context(), services.UnlockInput{
		UserID:   userIDFromContext(r.Context()),
		Password: req.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, unlockResponse{OK: true, SetupOccurred: res.SetupOccurred})
}

func (s *HTTPServer) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	meta, err := s.vault.AddItem(r.Context(), services.AddItemInput{
		UserID:   userIDFromContext(r.Context()),
		Password: req.Password,
		Label:    req.Label,
		Secret:   req.Secret,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, itemMetadata{ID: meta.ID, Label: meta.Label, CreatedAt: meta.CreatedAt})
}

func (s *HTTPServer) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.vault.ListItems(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := listItemsResponse{Items: make([]itemMetadata, 0, len(items))}
	for _, it := range items {
		resp.Items = append(resp.Items, itemMetadata{ID: it.ID, Label: it.Label, CreatedAt: it.CreatedAt})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) handleRevealItems(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	items, err := s.vault.RevealItems(r.Context(), services.RevealInput{
		UserID:   userIDFromContext(r.Context()),
		Password: req.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	resp := revealItemsResponse{Items: make([]revealedItem, 0, len(items))}
	for _, it := range items {
		resp.Items = append(resp.Items, revealedItem{
			ID:        it.ID,
			Label:     it.Label,
			Secret:    it.Secret,
			CreatedAt: it.CreatedAt,
			Error:     it.Error,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	err := s.vault.DeleteItem(r.Context(), services.DeleteItemInput{
		UserID: userIDFromContext(r.Context()),
		ItemID: r.PathValue("id"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *HTTPServer) handleGetBlob(w http.ResponseWriter, r *http.Request) {
	b, err := s.blobs.Get(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := blobResponse{}
	if b != nil {
		resp.Blob = &b.Data
		resp.UpdatedAt = &b.UpdatedAt
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) handlePutBlob(w http.ResponseWriter, r *http.Request) {
	var req putBlobRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := s.blobs.Put(r.Context(), userIDFromContext(r.Context()), req.EncryptedData); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, okResponse{OK: true})
}
