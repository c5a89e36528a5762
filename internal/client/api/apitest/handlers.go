package apitest

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/client/models"
	"github.com/google/uuid"
)

type bodyKey struct{}

func withBody(ctx context.Context, body map[string]any) context.Context {
	return context.WithValue(ctx, bodyKey{}, body)
}

func bodyFrom(ctx context.Context) map[string]any {
	b, _ := ctx.Value(bodyKey{}).(map[string]any)
	return b
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	body := bodyFrom(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[str(body, "email")]
	if !ok || a.password != str(body, "password") {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"message": map[string]string{"error": "Invalid credentials"},
		})
		return
	}
	writeJSON(w, http.StatusOK, data(map[string]any{
		"tokens": s.issueLocked(a.user.ID),
		"user":   a.user,
	}))
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	body := bodyFrom(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()

	email := str(body, "email")
	if _, exists := s.accounts[email]; exists || email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": map[string]string{"error": "User with this email already exists"},
		})
		return
	}
	id := s.addUserLocked(str(body, "username"), email, str(body, "password"))
	writeJSON(w, http.StatusCreated, data(map[string]any{"tokens": s.issueLocked(id)}))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.refreshCalls.Add(1)
	time.Sleep(s.RefreshDelay)

	body := bodyFrom(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()

	userID, ok := s.refresh[str(body, "refresh")]
	if !ok || s.failRefresh {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Token is invalid or expired"})
		return
	}

	resp := map[string]string{"access": s.accessLocked(userID)}
	if s.RotateRefresh {
		delete(s.refresh, str(body, "refresh"))
		next := uuid.NewString()
		s.refresh[next] = userID
		resp["refresh"] = next
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleForgot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"message": "Password reset link sent to your email"})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	body := bodyFrom(r.Context())
	if str(body, "token") == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": map[string]string{"error": "Invalid token"}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Password reset successful"})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request, userID string, body map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.accounts {
		if a.user.ID != userID {
			continue
		}
		if a.password != str(body, "old_password") {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"message": map[string]string{"error": "Old password is incorrect"},
			})
			return
		}
		a.password = str(body, "new_password")
		writeJSON(w, http.StatusOK, map[string]any{"message": "Password changed successfully"})
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Not found."})
}

func (s *Server) findLocked(userID string) *account {
	for _, a := range s.accounts {
		if a.user.ID == userID {
			return a
		}
	}
	return nil
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request, userID string, _ map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.findLocked(userID)
	if a == nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Not found."})
		return
	}
	writeJSON(w, http.StatusOK, data(a.user))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request, userID string, body map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.findLocked(userID)
	if a == nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Not found."})
		return
	}
	if v, ok := body["username"].(string); ok {
		a.user.Username = v
	}
	if v, ok := body["avatar"].(string); ok {
		a.user.Avatar = v
	}
	a.user.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	writeJSON(w, http.StatusOK, data(a.user))
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request, userID string, _ map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes := s.notes[userID]
	if notes == nil {
		notes = []models.Note{}
	}
	writeJSON(w, http.StatusOK, data(notes))
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request, userID string, body map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	n := models.Note{
		UUID:      uuid.NewString(),
		Title:     str(body, "title"),
		Content:   str(body, "content"),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.notes[userID] = append([]models.Note{n}, s.notes[userID]...)
	writeJSON(w, http.StatusCreated, data(n))
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request, userID string, body map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes := s.notes[userID]
	for i := range notes {
		if notes[i].UUID != str(body, "note_uuid") {
			continue
		}
		if v, ok := body["title"].(string); ok {
			notes[i].Title = v
		}
		if v, ok := body["content"].(string); ok {
			notes[i].Content = v
		}
		notes[i].UpdatedAt = time.Now().UTC()
		writeJSON(w, http.StatusOK, data(notes[i]))
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"message": map[string]string{"error": "Note not found"}})
}

func (s *Server) handleDeleteNotes(w http.ResponseWriter, r *http.Request, userID string, body map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, _ := body["note_uuid"].([]any)
	drop := map[string]bool{}
	for _, id := range ids {
		if v, ok := id.(string); ok {
			drop[v] = true
		}
	}

	kept := s.notes[userID][:0]
	for _, n := range s.notes[userID] {
		if !drop[n.UUID] {
			kept = append(kept, n)
		}
	}
	s.notes[userID] = kept
	writeJSON(w, http.StatusOK, map[string]any{"message": map[string]string{"success": "Notes deleted"}})
}
