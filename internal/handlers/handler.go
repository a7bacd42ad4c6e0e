package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/yourusername/eviction-map/internal/evictmap"
)

type putRequest struct {
	Key string `json:"key"`
	Val string `json:"value"`
}

func MakePutHandler(m *evictmap.EvictionMap[string, string]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req putRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpErr(w, http.StatusBadRequest, "invalid json")
			return
		}
		if req.Key == "" {
			httpErr(w, http.StatusBadRequest, "missing key")
			return
		}
		if err := m.Put(req.Key, req.Val); err != nil {
			httpErr(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func MakeGetHandler(m *evictmap.EvictionMap[string, string]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		key := vars["key"]
		val, err := m.Get(key)
		if err != nil {
			if errors.Is(err, evictmap.ErrNotFound) {
				httpErr(w, http.StatusNotFound, "not found")
			} else {
				httpErr(w, http.StatusServiceUnavailable, err.Error())
			}
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"key": key, "value": val})
	}
}

func MakeStatsHandler(m *evictmap.EvictionMap[string, string]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]int{"entries": m.Len()})
	}
}
