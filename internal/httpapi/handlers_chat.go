// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 msg Contributors

package httpapi

import (
	"net/http"
	"strconv"
)

func (s *Server) handleCreateChat(w http.ResponseWriter, r *http.Request, caller Caller) {
	var req createChatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed request body")
		return
	}

	created, err := s.chat.CreateChat(r.Context(), req.Name, caller.AccountID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toChatResponse(created))
}

func (s *Server) handleListChats(w http.ResponseWriter, r *http.Request, caller Caller) {
	chats, err := s.chat.ListMyChats(r.Context(), caller.AccountID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	out := make([]chatResponse, 0, len(chats))
	for i := range chats {
		out = append(out, toChatResponse(&chats[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetChat(w http.ResponseWriter, r *http.Request, caller Caller) {
	chatID, ok := pathULID(w, r, "chat_id")
	if !ok {
		return
	}

	found, err := s.chat.GetChat(r.Context(), chatID, caller.AccountID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toChatResponse(found))
}

func (s *Server) handleInvite(w http.ResponseWriter, r *http.Request, caller Caller) {
	chatID, ok := pathULID(w, r, "chat_id")
	if !ok {
		return
	}

	var req inviteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed request body")
		return
	}

	if err := s.chat.Invite(r.Context(), chatID, req.Username, caller.AccountID); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request, caller Caller) {
	chatID, ok := pathULID(w, r, "chat_id")
	if !ok {
		return
	}

	members, err := s.chat.ListMembers(r.Context(), chatID, caller.AccountID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	out := make([]memberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, memberResponse{
			AccountID: m.AccountID.String(),
			Username:  m.Username,
			JoinedAt:  m.JoinedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request, caller Caller) {
	chatID, ok := pathULID(w, r, "chat_id")
	if !ok {
		return
	}

	var req sendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed request body")
		return
	}

	msg, err := s.chat.SendMessage(r.Context(), chatID, caller.AccountID, req.EncryptedContent)
	if err != nil {
		s.respondError(w, err)
		return
	}

	if s.metrics != nil {
		s.metrics.MessagesSentTotal.Inc()
	}
	writeJSON(w, http.StatusCreated, toMessageResponse(msg))
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request, caller Caller) {
	chatID, ok := pathULID(w, r, "chat_id")
	if !ok {
		return
	}

	limit := queryInt(r, "limit", 0)
	offset := queryInt(r, "offset", 0)

	messages, err := s.chat.ListMessages(r.Context(), chatID, caller.AccountID, limit, offset)
	if err != nil {
		s.respondError(w, err)
		return
	}

	out := make([]messageResponse, 0, len(messages))
	for i := range messages {
		out = append(out, toMessageResponse(&messages[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// queryInt parses an integer query parameter, falling back to def when the
// parameter is absent or malformed. Range handling is the service's concern.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
