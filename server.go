package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"
)

const (
	maxUploadSize  = 10 << 20 // photos
	maxPuzzleSize  = 2 << 20  // XML documents
	maxCommandSize = 4 << 10
)

var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// rateLimiter is a simple per-IP token bucket rate limiter.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*bucket
	rate     int           // tokens per interval
	interval time.Duration // refill interval
}

type bucket struct {
	tokens   int
	lastSeen time.Time
}

func newRateLimiter(rate int, interval time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*bucket),
		rate:     rate,
		interval: interval,
	}
	// Cleanup stale entries every minute.
	go func() {
		for {
			time.Sleep(time.Minute)
			rl.mu.Lock()
			for ip, b := range rl.visitors {
				if time.Since(b.lastSeen) > 5*time.Minute {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}()
	return rl
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.visitors[ip]
	if !ok {
		rl.visitors[ip] = &bucket{tokens: rl.rate - 1, lastSeen: time.Now()}
		return true
	}

	// Refill tokens based on elapsed time.
	elapsed := time.Since(b.lastSeen)
	refill := int(elapsed / rl.interval)
	if refill > 0 {
		b.tokens += refill * rl.rate
		if b.tokens > rl.rate {
			b.tokens = rl.rate
		}
		b.lastSeen = time.Now()
	}

	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

// imageAnalyzer turns a photo of a grid into a puzzle.
type imageAnalyzer interface {
	AnalyzeImage(ctx context.Context, imageData []byte, mimeType string) (*Puzzle, error)
}

// Server is the HTTP API the browser renderer talks to.
type Server struct {
	mux       *http.ServeMux
	store     *Store
	progress  ProgressStore
	analyzer  imageAnalyzer
	events    *Broadcaster
	numbering Numbering
	uploadRL  *rateLimiter
	commandRL *rateLimiter
}

// NewServer creates a configured HTTP server. analyzer may be nil, which
// disables photo import.
func NewServer(store *Store, progress ProgressStore, analyzer imageAnalyzer, numbering Numbering) *Server {
	s := &Server{
		mux:       http.NewServeMux(),
		store:     store,
		progress:  progress,
		analyzer:  analyzer,
		events:    NewBroadcaster(),
		numbering: numbering,
		uploadRL:  newRateLimiter(5, time.Minute),  // 5 uploads/min per IP
		commandRL: newRateLimiter(60, time.Second), // 60 keystrokes/sec per IP
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	// Puzzle API
	s.mux.HandleFunc("GET /api/puzzles", s.handleListPuzzles)
	s.mux.HandleFunc("POST /api/puzzles", s.handleCreatePuzzle)
	s.mux.HandleFunc("POST /api/puzzles/photo", s.handleImportPhoto)
	s.mux.HandleFunc("GET /api/puzzles/{id}", s.handleGetPuzzle)

	// Session API
	s.mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	s.mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	s.mux.HandleFunc("POST /api/sessions/{id}/commands", s.handleCommand)
	s.mux.HandleFunc("GET /api/sessions/{id}/check", s.handleCheck)
	s.mux.HandleFunc("POST /api/sessions/{id}/reveal", s.handleReveal)
	s.mux.HandleFunc("DELETE /api/sessions/{id}/progress", s.handleClearProgress)
	s.mux.HandleFunc("GET /api/sessions/{id}/share", s.handleShare)
	s.mux.HandleFunc("GET /api/sessions/{id}/events", s.handleEvents)

	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("Content-Security-Policy", "default-src 'self'; connect-src 'self'")
	s.mux.ServeHTTP(w, r)
}

// --- Puzzle handlers ---

// GET /api/puzzles: list catalog and uploaded puzzles.
func (s *Server) handleListPuzzles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.ListPuzzles())
}

// POST /api/puzzles: body is crossword XML.
func (s *Server) handleCreatePuzzle(w http.ResponseWriter, r *http.Request) {
	if !s.uploadRL.allow(r.RemoteAddr) {
		jsonError(w, "Too many requests, try again later", http.StatusTooManyRequests)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPuzzleSize)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		jsonError(w, "Puzzle too large (max 2 MiB)", http.StatusRequestEntityTooLarge)
		return
	}

	p, err := ParsePuzzle(string(data), s.numbering)
	if p.Width == 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":    errorText(err),
			"warnings": p.Warnings,
		})
		return
	}
	if err != nil {
		p.Warnings = append(p.Warnings, err.Error())
	}

	s.store.SavePuzzle(p)
	logInfo("puzzle uploaded", "id", p.ID, "width", p.Width, "height", p.Height, "warnings", len(p.Warnings))
	writeJSON(w, http.StatusCreated, p.WithoutSolutions())
}

// POST /api/puzzles/photo: multipart "image", analysed by Gemini.
func (s *Server) handleImportPhoto(w http.ResponseWriter, r *http.Request) {
	if !s.uploadRL.allow(r.RemoteAddr) {
		jsonError(w, "Too many requests, try again later", http.StatusTooManyRequests)
		return
	}

	if s.analyzer == nil {
		jsonError(w, "Photo import is not configured", http.StatusServiceUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		jsonError(w, "Image too large (max 10 MiB)", http.StatusRequestEntityTooLarge)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		jsonError(w, "Field 'image' is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if !allowedMIME[mimeType] {
		jsonError(w, "Accepted formats: JPEG or PNG", http.StatusBadRequest)
		return
	}

	imageData, err := io.ReadAll(file)
	if err != nil {
		jsonError(w, "Could not read image", http.StatusInternalServerError)
		return
	}

	p, err := s.analyzer.AnalyzeImage(r.Context(), imageData, mimeType)
	if err != nil {
		logError("gemini analyze failed", "error", err)
		jsonError(w, "Could not read a crossword from the photo", http.StatusUnprocessableEntity)
		return
	}

	s.store.SavePuzzle(p)
	writeJSON(w, http.StatusCreated, p.WithoutSolutions())
}

// GET /api/puzzles/{id}: puzzle model; ?solutions=1 includes answers.
func (s *Server) handleGetPuzzle(w http.ResponseWriter, r *http.Request) {
	p := s.store.GetPuzzle(r.PathValue("id"))
	if p == nil {
		jsonError(w, "Puzzle not found", http.StatusNotFound)
		return
	}
	if r.URL.Query().Get("solutions") == "1" {
		writeJSON(w, http.StatusOK, p)
		return
	}
	writeJSON(w, http.StatusOK, p.WithoutSolutions())
}

// --- Session handlers ---

// POST /api/sessions: start solving a puzzle.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PuzzleID string `json:"puzzle_id"`
		Share    string `json:"share"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PuzzleID == "" {
		jsonError(w, "Field 'puzzle_id' is required", http.StatusBadRequest)
		return
	}

	sess, err := s.store.CreateSession(req.PuzzleID)
	if err != nil {
		jsonError(w, "Puzzle not found", http.StatusNotFound)
		return
	}

	source := restoreSession(r.Context(), sess, s.progress, req.Share)
	logInfo("session started", "session", sess.ID, "puzzle", sess.PuzzleID, "letters", source)

	writeJSON(w, http.StatusCreated, struct {
		View
		Restored string `json:"restored"`
	}{sess.View(), source})
}

// GET /api/sessions/{id}: current view.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

// POST /api/sessions/{id}/commands: apply one input command.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	if !s.commandRL.allow(r.RemoteAddr) {
		jsonError(w, "Too many requests, try again later", http.StatusTooManyRequests)
		return
	}

	sess := s.session(w, r)
	if sess == nil {
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCommandSize))
	if err != nil {
		jsonError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	cmd, err := DecodeCommand(data)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	view, edited := sess.Apply(cmd)
	if edited {
		s.saveProgress(r.Context(), sess)
	}
	s.events.Publish(sess.ID, "view", view)
	writeJSON(w, http.StatusOK, view)
}

// GET /api/sessions/{id}/check?scope=cell|word|grid
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	scope, err := parseScope(r.URL.Query().Get("scope"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	verdicts := sess.Check(scope)
	s.events.Publish(sess.ID, "view", sess.View())
	writeJSON(w, http.StatusOK, map[string]any{"scope": scope, "verdicts": verdicts})
}

// POST /api/sessions/{id}/reveal?scope=word|grid
func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	scope, err := parseScope(r.URL.Query().Get("scope"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	sess.Reveal(scope)
	s.saveProgress(r.Context(), sess)
	view := sess.View()
	s.events.Publish(sess.ID, "view", view)
	writeJSON(w, http.StatusOK, view)
}

// DELETE /api/sessions/{id}/progress: wipe letters and stored progress.
func (s *Server) handleClearProgress(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}

	sess.Clear()
	if s.progress != nil {
		if err := s.progress.Delete(r.Context(), ProgressKey(sess.PuzzleID)); err != nil {
			logError("delete progress failed", "puzzle", sess.PuzzleID, "error", err)
			jsonError(w, "Could not clear saved progress", http.StatusInternalServerError)
			return
		}
	}
	view := sess.View()
	s.events.Publish(sess.ID, "view", view)
	writeJSON(w, http.StatusOK, view)
}

// GET /api/sessions/{id}/share: share code for the current letters.
func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"code": sess.ShareCode()})
}

// GET /api/sessions/{id}/events: SSE stream of views.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	view := sess.View()
	s.events.ServeSSE(w, r, sess.ID, &view)
}

// --- Helpers ---

func (s *Server) session(w http.ResponseWriter, r *http.Request) *Session {
	sess := s.store.GetSession(r.PathValue("id"))
	if sess == nil {
		jsonError(w, "Session not found", http.StatusNotFound)
	}
	return sess
}

func (s *Server) saveProgress(ctx context.Context, sess *Session) {
	if s.progress == nil {
		return
	}
	if err := s.progress.Save(ctx, ProgressKey(sess.PuzzleID), sess.Progress()); err != nil {
		logError("save progress failed", "puzzle", sess.PuzzleID, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func errorText(err error) string {
	switch {
	case err == nil:
		return "puzzle is empty"
	case errors.Is(err, ErrMalformedXML):
		return "Malformed puzzle XML"
	case errors.Is(err, ErrMissingGrid):
		return "Puzzle has no usable grid"
	}
	return err.Error()
}
