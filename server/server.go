package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"go-pianoroll/debug"
	"go-pianoroll/sequencer"
)

// Server exposes a PlaybackController over HTTP. Handlers are serialized so
// the controller only ever sees one caller at a time.
type Server struct {
	mu        sync.Mutex
	player    *sequencer.PlaybackController
	exporter  *sequencer.MidiExporter
	exportDir string
	router    *mux.Router
}

func New(player *sequencer.PlaybackController, exporter *sequencer.MidiExporter, exportDir string) *Server {
	s := &Server{
		player:    player,
		exporter:  exporter,
		exportDir: exportDir,
	}

	r := mux.NewRouter().StrictSlash(true)
	r.Use(logRequests)
	r.HandleFunc("/notes", s.locked(s.listNotes)).Methods("GET")
	r.HandleFunc("/notes", s.locked(s.addNote)).Methods("POST")
	r.HandleFunc("/notes", s.locked(s.clearNotes)).Methods("DELETE")
	r.HandleFunc("/notes/{id}", s.locked(s.deleteNote)).Methods("DELETE")
	r.HandleFunc("/context", s.locked(s.getContext)).Methods("GET")
	r.HandleFunc("/octave", s.locked(s.setOctave)).Methods("PUT")
	r.HandleFunc("/division", s.locked(s.setDivision)).Methods("PUT")
	r.HandleFunc("/tempo", s.locked(s.setTempo)).Methods("PUT")
	r.HandleFunc("/transport/{action}", s.locked(s.transport)).Methods("POST")
	r.HandleFunc("/transport-time", s.locked(s.transportTime)).Methods("GET")
	r.HandleFunc("/export", s.export).Methods("POST")
	s.router = r
	return s
}

// Handler returns the router wrapped in allow-all CORS
func (s *Server) Handler() http.Handler {
	return cors.AllowAll().Handler(s.router)
}

// ListenAndServe serves until ctx is cancelled, then stops playback
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	debug.Log("http", "listening on %s", addr)

	select {
	case err := <-errc:
		return fault.Wrap(err, fmsg.With("listen on "+addr))
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)

	s.mu.Lock()
	s.player.Stop()
	s.mu.Unlock()
	return err
}

func (s *Server) locked(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		h(w, r)
	}
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		debug.Log("http", "%s %s (%s)", r.Method, r.URL.Path, time.Since(start))
	})
}

type noteBody struct {
	ID       uuid.UUID `json:"id"`
	Pitch    int       `json:"pitch"`
	Start    int       `json:"start"`
	Duration int       `json:"duration"`
	Velocity float64   `json:"velocity"`
	Time     string    `json:"time"`
	Name     string    `json:"name"`
}

func (s *Server) noteBody(n *sequencer.Note) noteBody {
	mc := s.player.Context()
	name, _ := mc.PitchName(n.Pitch)
	return noteBody{
		ID:       n.ID,
		Pitch:    n.Pitch,
		Start:    n.Start,
		Duration: n.Duration,
		Velocity: n.Velocity,
		Time:     mc.ToTransportTime(n.Start).String(),
		Name:     name,
	}
}

func (s *Server) listNotes(w http.ResponseWriter, r *http.Request) {
	notes := s.player.Track().Notes()
	out := make([]noteBody, 0, len(notes))
	for _, n := range notes {
		out = append(out, s.noteBody(n))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) addNote(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Pitch    int      `json:"pitch"`
		Start    int      `json:"start"`
		Duration int      `json:"duration"`
		Velocity *float64 `json:"velocity"`
	}
	if err := readJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	velocity := 0.8
	if in.Velocity != nil {
		velocity = *in.Velocity
	}

	n, err := sequencer.NewNote(in.Pitch, in.Start, in.Duration, velocity)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.player.AddNote(n); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.noteBody(n))
}

// deleteNote is idempotent: an unknown id is not an error.
func (s *Server) deleteNote(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, fault.Wrap(err, fmsg.With("parse note id"), ftag.With(ftag.InvalidArgument)))
		return
	}
	if n := s.player.Track().Find(id); n != nil {
		if err := s.player.DeleteNote(n); err != nil {
			writeError(w, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) clearNotes(w http.ResponseWriter, r *http.Request) {
	if err := s.player.Clear(); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type contextBody struct {
	Division           int      `json:"division"`
	Octave             int      `json:"octave"`
	Scale              []string `json:"scale"`
	State              string   `json:"state"`
	Playing            bool     `json:"playing"`
	Tempo              float64  `json:"tempo"`
	Position           float64  `json:"position"` // seconds
	TicksPerMeasure    int      `json:"ticksPerMeasure"`
	PercentPerTick     float64  `json:"percentPerTick"`
	PercentPerInterval float64  `json:"percentPerInterval"`
	Scheduled          int      `json:"scheduled"`
}

func (s *Server) contextBody() contextBody {
	mc := s.player.Context()
	return contextBody{
		Division:           mc.Division(),
		Octave:             mc.Octave(),
		Scale:              mc.Scale(),
		State:              s.player.State().String(),
		Playing:            mc.Playing(),
		Tempo:              s.player.Tempo(),
		Position:           s.player.Position().Seconds(),
		TicksPerMeasure:    mc.TicksPerMeasure(),
		PercentPerTick:     sequencer.PercentPerTick(mc),
		PercentPerInterval: sequencer.PercentPerInterval(mc),
		Scheduled:          s.player.Scheduled(),
	}
}

func (s *Server) getContext(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.contextBody())
}

func (s *Server) setOctave(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Octave *int `json:"octave"`
	}
	if err := readJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if in.Octave == nil {
		writeError(w, missing("octave"))
		return
	}
	if err := s.player.SetOctave(*in.Octave); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.contextBody())
}

func (s *Server) setDivision(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Division int `json:"division"`
	}
	if err := readJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if err := s.player.SetDivision(in.Division); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.contextBody())
}

func (s *Server) setTempo(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Tempo *float64 `json:"tempo"`
	}
	if err := readJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if in.Tempo == nil {
		writeError(w, missing("tempo"))
		return
	}
	s.player.SetTempo(*in.Tempo)
	writeJSON(w, http.StatusOK, s.contextBody())
}

func (s *Server) transport(w http.ResponseWriter, r *http.Request) {
	var err error
	switch action := mux.Vars(r)["action"]; action {
	case "play":
		var in struct {
			Offset float64 `json:"offset"` // seconds
		}
		if r.ContentLength > 0 {
			if err := readJSON(r, &in); err != nil {
				writeError(w, err)
				return
			}
		}
		if in.Offset < 0 {
			writeError(w, fault.New("offset must not be negative",
				fmsg.WithDesc("offset", "offset is seconds from the start of the loop"),
				ftag.With(ftag.InvalidArgument)))
			return
		}
		err = s.player.Play(time.Duration(in.Offset * float64(time.Second)))
	case "stop":
		s.player.Stop()
	case "toggle":
		err = s.player.TogglePlay()
	case "restart":
		err = s.player.Restart()
	default:
		writeError(w, fault.New("unknown transport action",
			fmsg.WithDesc(action, "Use play, stop, toggle or restart"),
			ftag.With(ftag.NotFound)))
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.contextBody())
}

func (s *Server) transportTime(w http.ResponseWriter, r *http.Request) {
	tick, err := strconv.Atoi(r.URL.Query().Get("tick"))
	if err != nil || tick < 0 {
		writeError(w, fault.New("tick must be a non-negative integer", ftag.With(ftag.InvalidArgument)))
		return
	}
	mc := s.player.Context()
	writeJSON(w, http.StatusOK, map[string]any{
		"tick": tick,
		"time": mc.ToTransportTime(tick).String(),
	})
}

// export converts the track under the lock and writes the file after
// releasing it. An empty path is a cancelled export. Only .mid files inside
// the export directory are written.
func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Path string `json:"path"`
	}
	if err := readJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if in.Path == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if !filepath.IsLocal(in.Path) {
		writeError(w, fault.New("export path escapes the export directory",
			fmsg.WithDesc(in.Path, "Use a relative path inside the export directory"),
			ftag.With(ftag.InvalidArgument)))
		return
	}
	if ext := filepath.Ext(in.Path); ext != "" && ext != sequencer.MidiExtension {
		writeError(w, fault.New("export path must be a midi file",
			fmsg.WithDesc(in.Path, "Use the "+sequencer.MidiExtension+" extension or none"),
			ftag.With(ftag.InvalidArgument)))
		return
	}
	path := filepath.Join(s.exportDir, in.Path)

	s.mu.Lock()
	tempo := s.player.Tempo()
	events, err := sequencer.MidiEvents(s.player.Track(), s.player.Context(), tempo)
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}

	if filepath.Ext(path) == "" {
		path += sequencer.MidiExtension
	}
	if err := s.exporter.WriteEvents(path, tempo, events); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"path": path, "notes": len(events)})
}

func missing(field string) error {
	return fault.New("missing field", fmsg.WithDesc(field, field+" is required"), ftag.With(ftag.InvalidArgument))
}

func readJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fault.Wrap(err, fmsg.With("decode request body"), ftag.With(ftag.InvalidArgument))
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		debug.Log("http", "encode response: %v", err)
	}
}

func statusFor(err error) int {
	switch ftag.Get(err) {
	case ftag.InvalidArgument:
		return http.StatusBadRequest
	case ftag.NotFound:
		return http.StatusNotFound
	}
	if errors.Is(err, context.Canceled) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := fmsg.GetIssue(err)
	if msg == "" {
		msg = err.Error()
	}
	debug.Log("http", "%d: %v", status, err)
	writeJSON(w, status, map[string]string{"error": msg})
}
