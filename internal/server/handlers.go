package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/samlin1112/CitySim/pkg/grid"
	"github.com/samlin1112/CitySim/pkg/persist"
	"github.com/samlin1112/CitySim/pkg/session"
	"github.com/samlin1112/CitySim/pkg/sim"
	"github.com/samlin1112/CitySim/pkg/store"
)

const (
	maxBody = 8 << 20
	// maxTickSteps bounds one manual tick request, which holds the session
	// lock for its whole run.
	maxTickSteps = 1000
)

var errBadRequest = errors.New("bad request")

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, grid.ErrOutOfBounds),
		errors.Is(err, grid.ErrUnknownCategory),
		errors.Is(err, grid.ErrInvalidSize),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, sim.ErrInsufficientFunds),
		errors.Is(err, sim.ErrInsufficientMaterials),
		errors.Is(err, sim.ErrCannotUpgradeEmpty),
		errors.Is(err, session.ErrEventsDisabled):
		return http.StatusConflict
	case errors.Is(err, persist.ErrCorruptSnapshot):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func queryInt(r *http.Request, key string) (int, error) {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0, fmt.Errorf("%w: query parameter %s must be an integer", errBadRequest, key)
	}
	return v, nil
}

func queryFormat(r *http.Request) (persist.Format, error) {
	f, err := persist.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		return "", fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return f, nil
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, `<!DOCTYPE html>
<html><head><title>CitySim</title></head>
<body style="margin:0;background:#111;color:#fff;font-family:system-ui;display:flex;align-items:center;justify-content:center;height:100vh">
<div style="text-align:center">
<h1>CitySim</h1>
<p>Headless server. State at <code>/api/state</code>, live log at <code>/ws</code>.</p>
</div>
</body></html>`)
}

type stateResponse struct {
	SessionID string           `json:"session_id"`
	TaxRate   float64          `json:"tax_rate"`
	Paused    bool             `json:"paused"`
	City      persist.Snapshot `json:"city"`
}

func (s *Server) state() stateResponse {
	return stateResponse{
		SessionID: s.sess.ID().String(),
		TaxRate:   s.sess.TaxRate(),
		Paused:    s.paused,
		City:      persist.Serialize(s.sess.City()),
	}
}

func (s *Server) lockedState() stateResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state()
}

func (s *Server) lockedReport() session.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess.Report()
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.lockedState())
}

func (s *Server) handleReport(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.lockedReport())
}

func (s *Server) handleLog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.opts.History.Entries())
}

func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.sess.NewCity(req.Width, req.Height); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleClear(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess.Clear()
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Steps   int      `json:"steps"`
		TaxRate *float64 `json:"tax_rate"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.TaxRate != nil && !(*req.TaxRate >= 0 && *req.TaxRate <= 1) {
		s.writeError(w, fmt.Errorf("%w: tax_rate outside [0, 1]", errBadRequest))
		return
	}
	if req.Steps > maxTickSteps {
		s.writeError(w, fmt.Errorf("%w: steps %d above %d", errBadRequest, req.Steps, maxTickSteps))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rate := s.sess.TaxRate()
	if req.TaxRate != nil {
		rate = *req.TaxRate
	}
	reports := make([]sim.TickReport, 0, max(1, req.Steps))
	for range max(1, req.Steps) {
		reports = append(reports, s.sess.Tick(rate))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ticks": reports,
		"state": s.state(),
	})
}

type cellRequest struct {
	X        int           `json:"x"`
	Y        int           `json:"y"`
	Category grid.Category `json:"category"`
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	var req cellRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	price, err := s.sess.Build(req.X, req.Y, req.Category)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"price": price, "state": s.state()})
}

func (s *Server) handleQuoteUpgrade(w http.ResponseWriter, r *http.Request) {
	x, err := queryInt(r, "x")
	if err != nil {
		s.writeError(w, err)
		return
	}
	y, err := queryInt(r, "y")
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	price, err := s.sess.QuoteUpgrade(x, y)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"price": price})
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	var req struct {
		X int `json:"x"`
		Y int `json:"y"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	price, err := s.sess.Upgrade(req.X, req.Y)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"price": price, "state": s.state()})
}

// handleEvent rolls for an event, or forces one with ?force=true.
func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))
	s.mu.Lock()
	defer s.mu.Unlock()
	if force {
		out, err := s.sess.TriggerEvent()
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"triggered": true, "event": out})
		return
	}
	out, ok := s.sess.MaybeTriggerEvent()
	resp := map[string]any{"triggered": ok}
	if ok {
		resp["event"] = out
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTax(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TaxRate float64 `json:"tax_rate"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.sess.SetTaxRate(req.TaxRate); err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"tax_rate": s.sess.TaxRate()})
}

// handlePause toggles the real-time loop.
func (s *Server) handlePause(w http.ResponseWriter, _ *http.Request) {
	paused := s.togglePause()
	s.logger.Info("auto tick toggled", "paused", paused)
	writeJSON(w, http.StatusOK, map[string]bool{"paused": paused})
}

func (s *Server) togglePause() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = !s.paused
	return s.paused
}

func (s *Server) saveDocument(w io.Writer, f persist.Format) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess.Save(w, f)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	f, err := queryFormat(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := s.saveDocument(&buf, f); err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType(f))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="city.%s"`, f))
	w.Write(buf.Bytes())
}

func contentType(f persist.Format) string {
	switch f {
	case persist.FormatJSON:
		return "application/json"
	case persist.FormatYAML:
		return "application/yaml"
	}
	return "application/xml"
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	f, err := queryFormat(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.sess.Load(io.LimitReader(r.Body, maxBody), f); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleListSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := s.opts.Store.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, slots)
}

func (s *Server) cloneCity() *sim.City {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess.City().Clone()
}

func (s *Server) handleSaveSlot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Name == "" {
		req.Name = "autosave"
	}
	slot, err := s.opts.Store.SaveCity(r.Context(), req.Name, s.cloneCity())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("save written", "slot", slot.ID, "name", slot.Name, "tick", slot.TickCount)
	writeJSON(w, http.StatusCreated, slot)
}

func (s *Server) handleLoadSlot(w http.ResponseWriter, r *http.Request) {
	city, slot, err := s.opts.Store.LoadCity(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess.Restore(city)
	writeJSON(w, http.StatusOK, map[string]any{"slot": slot, "state": s.state()})
}

func (s *Server) handleDeleteSlot(w http.ResponseWriter, r *http.Request) {
	if err := s.opts.Store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
