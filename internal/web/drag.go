package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"dayboard/internal/live"
)

// Drag endpoints expose the gesture state machine to the rendering
// layer: start begins a move/resize on an event's current span, move
// reports the snapped preview for the pointer position, and commit
// emits the new times for the host to persist. One gesture at a time.

type dragStartRequest struct {
	EventID      string  `json:"event_id"`
	Mode         string  `json:"mode"`
	PointerY     float64 `json:"pointer_y"`
	StartMinutes int     `json:"start_minutes"`
	EndMinutes   int     `json:"end_minutes"`
}

type dragMoveRequest struct {
	PointerY float64 `json:"pointer_y"`
}

type SpanDTO struct {
	StartMinutes int `json:"start_minutes"`
	EndMinutes   int `json:"end_minutes"`
}

type TimeChangeDTO struct {
	EventID      string `json:"event_id"`
	NewStartTime string `json:"new_start_time"`
	NewEndTime   string `json:"new_end_time"`
}

func (s *Server) handleDragStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}

	var req dragStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.EventID == "" {
		writeError(w, http.StatusBadRequest, "event_id is required")
		return
	}
	mode := live.DragMode(req.Mode)
	if mode != live.DragMove && mode != live.DragResize {
		writeError(w, http.StatusBadRequest, "mode must be move or resize")
		return
	}

	base := live.Span{Start: req.StartMinutes, End: req.EndMinutes}
	if err := s.drag.Start(req.EventID, mode, req.PointerY, base); err != nil {
		if errors.Is(err, live.ErrDragActive) {
			writeError(w, http.StatusConflict, "a drag is already in progress")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to start drag")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDragMove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}

	var req dragMoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	preview, ok := s.drag.Move(req.PointerY)
	if !ok {
		writeError(w, http.StatusConflict, "no drag in progress")
		return
	}
	writeJSON(w, http.StatusOK, SpanDTO{StartMinutes: preview.Start, EndMinutes: preview.End})
}

func (s *Server) handleDragCommit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}

	change, ok := s.drag.Commit()
	if !ok {
		writeError(w, http.StatusConflict, "no drag in progress")
		return
	}

	// The host persists the change and updates the snapshot; the next
	// agenda read must not serve stale times.
	s.InvalidateAgenda()

	writeJSON(w, http.StatusOK, TimeChangeDTO{
		EventID:      change.EventID,
		NewStartTime: change.NewStartTime,
		NewEndTime:   change.NewEndTime,
	})
}

func (s *Server) handleDragCancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}

	s.drag.Cancel()
	w.WriteHeader(http.StatusNoContent)
}
