// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"ivy_homes/internal/adapters/observability"
	"ivy_homes/internal/agent"
	"ivy_homes/internal/app"
	"ivy_homes/internal/domain"
)

const (
	unavailableSpeech = "I'm sorry, I can't reach our property listings right now. I can take your details and have a specialist call you back."
	maxToolBody       = 64 << 10
)

type Handlers struct {
	S          *app.SearchService
	MaxResults int // default result count for agent searches
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// propertyView is a Property plus its price phrased for speech.
type propertyView struct {
	domain.Property
	PriceSpoken string `json:"price_spoken"`
}

type listResponse struct {
	Count int            `json:"count"`
	Items []propertyView `json:"items"`
}

type agentReply struct {
	Speech string         `json:"speech"`
	Count  int            `json:"count"`
	Items  []propertyView `json:"items"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/readyz", h.ready)
	s.mux.Route("/v1", func(r chi.Router) {
		r.Use(RateLimit(s.ratePerMin))
		r.Get("/properties", h.listProperties)
		r.Get("/properties/{id}", h.getProperty)
		r.Post("/agent/search", h.agentSearch)
		r.Get("/agent/profile", h.agentProfile)
	})
}

func views(props []domain.Property) []propertyView {
	out := make([]propertyView, len(props))
	for i, p := range props {
		out[i] = propertyView{Property: p, PriceSpoken: app.FormatPrice(p.Price)}
	}
	return out
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// writeSearchError maps service errors onto problem documents.
func writeSearchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidCriteria):
		writeProblem(w, http.StatusBadRequest, "Invalid criteria", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "property not found")
	case errors.Is(err, domain.ErrDataUnavailable):
		writeProblem(w, http.StatusServiceUnavailable, "Inventory unavailable", "property data could not be loaded")
	default:
		log.Error().Err(err).Msg("unexpected search error")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func (h *Handlers) ready(w http.ResponseWriter, r *http.Request) {
	if !h.S.Ready() {
		// the cause may name paths or hosts; keep it in the logs
		log.Warn().Err(h.S.LoadErr()).Str("source", h.S.Source()).Msg("readiness check failed")
		writeProblem(w, http.StatusServiceUnavailable, "Inventory unavailable", "property data could not be loaded")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"source": h.S.Source(), "properties": h.S.Len()})
}

// criteriaFromQuery parses the list endpoint's query string. Absent params
// are no constraint; malformed numbers are reported, not ignored.
func criteriaFromQuery(r *http.Request) (domain.Criteria, error) {
	q := r.URL.Query()
	var c domain.Criteria

	if v := q.Get("location"); v != "" {
		c.Location = &v
	}
	if v := q.Get("type"); v != "" {
		c.Type = &v
	}
	intParam := func(name string) (*int, error) {
		v := q.Get(name)
		if v == "" {
			return nil, nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidCriteria, name)
		}
		return &n, nil
	}
	priceParam := func(name string) (*int64, error) {
		v := q.Get(name)
		if v == "" {
			return nil, nil
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be an integer amount", domain.ErrInvalidCriteria, name)
		}
		return &n, nil
	}

	var err error
	if c.MinBedrooms, err = intParam("min_bedrooms"); err != nil {
		return c, err
	}
	if c.MinBathrooms, err = intParam("min_bathrooms"); err != nil {
		return c, err
	}
	if c.MinPrice, err = priceParam("min_price"); err != nil {
		return c, err
	}
	if c.MaxPrice, err = priceParam("max_price"); err != nil {
		return c, err
	}
	limit, err := intParam("limit")
	if err != nil {
		return c, err
	}
	if limit != nil {
		c.Limit = *limit
	}
	c.Statuses = q["status"]
	c.Features = q["feature"]
	return c, nil
}

func (h *Handlers) listProperties(w http.ResponseWriter, r *http.Request) {
	c, err := criteriaFromQuery(r)
	if err != nil {
		writeSearchError(w, err)
		return
	}
	props, err := h.S.Search(r.Context(), c)
	if err != nil {
		writeSearchError(w, err)
		return
	}
	observability.ObserveSearch("api", len(props))
	writeCached(w, r, listResponse{Count: len(props), Items: views(props)})
}

func (h *Handlers) getProperty(w http.ResponseWriter, r *http.Request) {
	p, err := h.S.GetProperty(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeSearchError(w, err)
		return
	}
	writeCached(w, r, views([]domain.Property{p})[0])
}

// agentSearch is the search_properties tool endpoint. Every outcome carries
// a speech string the agent can read out as is.
func (h *Handlers) agentSearch(w http.ResponseWriter, r *http.Request) {
	var args agent.ToolArgs
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxToolBody)).Decode(&args); err != nil {
		writeJSON(w, http.StatusBadRequest, agentReply{
			Speech: "Sorry, I didn't catch those search details. Could you repeat what you're looking for?",
			Items:  []propertyView{},
		})
		return
	}

	props, err := h.S.Search(r.Context(), args.Criteria(h.MaxResults))
	switch {
	case errors.Is(err, domain.ErrDataUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, agentReply{Speech: unavailableSpeech, Items: []propertyView{}})
		return
	case errors.Is(err, domain.ErrInvalidCriteria):
		log.Info().Err(err).Msg("agent search rejected")
		writeJSON(w, http.StatusBadRequest, agentReply{
			Speech: "I couldn't search with those details. Could you tell me your location, budget or the number of bedrooms again?",
			Items:  []propertyView{},
		})
		return
	case err != nil:
		writeSearchError(w, err)
		return
	}

	observability.ObserveSearch("agent", len(props))
	writeJSON(w, http.StatusOK, agentReply{Speech: app.Summarize(props), Count: len(props), Items: views(props)})
}

func (h *Handlers) agentProfile(w http.ResponseWriter, r *http.Request) {
	writeCached(w, r, agent.DefaultProfile())
}
