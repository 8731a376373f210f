package cmd

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/jsphweid/saychord/catalog"
	"github.com/jsphweid/saychord/db"
	"github.com/jsphweid/saychord/logger"
	"github.com/jsphweid/saychord/model"
	"github.com/jsphweid/saychord/resolve"
	"github.com/jsphweid/saychord/sequence"
	"github.com/jsphweid/saychord/session"
	"github.com/pkg/errors"
	"github.com/rs/cors"
)

// Server exposes a session over HTTP.
type Server struct {
	sess *session.Session
}

func NewServer(sess *session.Session) *Server {
	return &Server{sess: sess}
}

// Handler returns the router wrapped in CORS handling.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/health", s.handleHealth).Methods("GET")
	router.HandleFunc("/resolve", s.handleResolve).Methods("POST")
	router.HandleFunc("/recognitions", s.handleRecognition).Methods("POST")
	router.HandleFunc("/chords", s.handleChords).Methods("GET")

	router.HandleFunc("/sequence", s.handleSequence).Methods("GET")
	router.HandleFunc("/sequence/chords", s.handleAddChord).Methods("POST")
	router.HandleFunc("/sequence/chords/{index:[0-9]+}", s.handleRemoveChord).Methods("DELETE")
	router.HandleFunc("/sequence/chords/{index:[0-9]+}/preview", s.handlePreview).Methods("POST")

	router.HandleFunc("/transport", s.handleTransport).Methods("PUT")
	router.HandleFunc("/transport/play", s.handlePlay).Methods("POST")
	router.HandleFunc("/transport/stop", s.handleStop).Methods("POST")

	router.HandleFunc("/sequences", s.handleListSequences).Methods("GET")
	router.HandleFunc("/sequences/{name}", s.handleSaveSequence).Methods("POST")
	router.HandleFunc("/sequences/{name}/load", s.handleLoadSequence).Methods("POST")

	return cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
	}).Handler(router)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	state := "loading"
	select {
	case <-s.sess.Ready():
		state = "ready"
		if s.sess.LoadErr() != nil {
			state = "failed"
		}
	default:
	}
	writeJSON(w, http.StatusOK, model.HealthResponse{Status: "ok", Catalog: state})
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var input model.ResolveRequestBody
	if !readJSON(w, r, &input) {
		return
	}
	writeJSON(w, http.StatusOK, resolveResult(s.sess.Resolve(input.Text), input.Text))
}

// handleRecognition takes a finalized utterance from the speech recognizer.
// A miss is still a 200; the body says why.
func (s *Server) handleRecognition(w http.ResponseWriter, r *http.Request) {
	var input model.RecognitionAttempt
	if !readJSON(w, r, &input) {
		return
	}
	writeJSON(w, http.StatusOK, resolveResult(s.sess.HandleAttempt(input), input.RawText))
}

func (s *Server) handleChords(w http.ResponseWriter, r *http.Request) {
	cat := s.sess.Catalog()
	if err := cat.Err(); err != nil {
		writeError(w, catalog.ErrUnavailable)
		return
	}
	defs := cat.All()
	if tonality := r.URL.Query().Get("tonality"); tonality != "" {
		defs = cat.InTonality(tonality)
	}
	res := make([]model.ChordResult, 0, len(defs))
	for _, def := range defs {
		res = append(res, chordResult(def))
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSequence(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sequenceResponse(s.sess))
}

func (s *Server) handleAddChord(w http.ResponseWriter, r *http.Request) {
	var input model.AddChordRequestBody
	if !readJSON(w, r, &input) {
		return
	}
	switch {
	case input.Name != "":
		if _, err := s.sess.AddByName(input.Name); err != nil {
			writeError(w, err)
			return
		}
	case input.Text != "":
		res := s.sess.HandleAttempt(model.RecognitionAttempt{RawText: input.Text})
		if res.Miss == resolve.MissCatalogUnavailable {
			writeError(w, catalog.ErrUnavailable)
			return
		}
		if !res.OK() {
			writeJSON(w, http.StatusUnprocessableEntity, resolveResult(res, input.Text))
			return
		}
	default:
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "name or text is required"})
		return
	}
	writeJSON(w, http.StatusCreated, sequenceResponse(s.sess))
}

func (s *Server) handleRemoveChord(w http.ResponseWriter, r *http.Request) {
	index, _ := strconv.Atoi(mux.Vars(r)["index"])
	if err := s.sess.Scheduler.RemoveChord(index); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sequenceResponse(s.sess))
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	index, _ := strconv.Atoi(mux.Vars(r)["index"])
	if err := s.sess.Scheduler.PlayIndex(index); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleTransport applies only the fields present. A tempo out of range is
// clamped and the applied value returned.
func (s *Server) handleTransport(w http.ResponseWriter, r *http.Request) {
	var input model.TransportRequestBody
	if !readJSON(w, r, &input) {
		return
	}
	if err := applyTransport(s.sess, input); err != nil && !clamped(err) {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.sess.Scheduler.Transport())
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	if err := s.sess.Scheduler.Play(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.sess.Scheduler.Transport())
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.sess.Scheduler.Stop()
	writeJSON(w, http.StatusOK, s.sess.Scheduler.Transport())
}

func (s *Server) handleListSequences(w http.ResponseWriter, r *http.Request) {
	list, err := s.sess.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []model.SavedSequence{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleSaveSequence(w http.ResponseWriter, r *http.Request) {
	saved, err := s.sess.Save(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleLoadSequence(w http.ResponseWriter, r *http.Request) {
	missing, err := s.sess.Load(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		writeError(w, err)
		return
	}
	if missing == nil {
		missing = []string{}
	}
	writeJSON(w, http.StatusOK, model.LoadSequenceResponse{Missing: missing, Sequence: sequenceResponse(s.sess)})
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(r.Body)
	if err == nil {
		err = json.Unmarshal(body, v)
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "Could not read request body: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Could not write response", err, nil)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", err, nil)
	}
	writeJSON(w, status, model.ErrorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, db.ErrNotFound),
		errors.Is(err, sequence.ErrIndexOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, sequence.ErrInvalidParameter),
		errors.Is(err, sequence.ErrNilChord):
		return http.StatusBadRequest
	case errors.Is(err, sequence.ErrEmptySequence):
		return http.StatusConflict
	case errors.Is(err, session.ErrNoStore):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
