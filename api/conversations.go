package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Desarso/agentstudio/models"
	"github.com/Desarso/agentstudio/stores"
)

func (s *Server) getTraces(c *gin.Context) {
	if s.traces == nil {
		fail(c, http.StatusNotFound, models.CodeNotFound, "run traces are not recorded")
		return
	}
	traces, err := s.traces.GetTracesByConversation(c.Request.Context(), c.Param("conversationID"))
	if err != nil {
		writeError(c, err)
		return
	}
	if traces == nil {
		traces = []*stores.RunTrace{}
	}
	ok(c, traces)
}

// findTraces looks up the runs recorded under ?trace_id=.
func (s *Server) findTraces(c *gin.Context) {
	if s.traces == nil {
		fail(c, http.StatusNotFound, models.CodeNotFound, "run traces are not recorded")
		return
	}
	traceID := c.Query("trace_id")
	if traceID == "" {
		fail(c, http.StatusBadRequest, models.CodeInvalid, "trace_id is required")
		return
	}
	traces, err := s.traces.GetTracesByTraceID(c.Request.Context(), traceID)
	if err != nil {
		writeError(c, err)
		return
	}
	if traces == nil {
		traces = []*stores.RunTrace{}
	}
	ok(c, traces)
}

func (s *Server) listConversations(c *gin.Context) {
	if s.messages == nil {
		ok(c, []stores.ConversationInfo{})
		return
	}
	convs, err := s.messages.ListConversations(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, convs)
}

func (s *Server) getConversationMessages(c *gin.Context) {
	if s.messages == nil {
		fail(c, http.StatusNotFound, models.CodeNotFound, "conversation history is not persisted")
		return
	}
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			fail(c, http.StatusBadRequest, models.CodeInvalid, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	msgs, err := s.messages.FetchHistory(c.Request.Context(), c.Param("conversationID"), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]models.ChatMessageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, models.ChatMessageResponse{
			ID:             m.ID,
			CreatedAt:      m.CreatedAt,
			ConversationID: m.ConversationID,
			Sequence:       m.Sequence,
			Role:           m.Role,
			Content:        m.Content,
		})
	}
	ok(c, out)
}

func (s *Server) deleteConversation(c *gin.Context) {
	id := c.Param("conversationID")
	if s.messages != nil {
		if err := s.messages.DeleteConversation(c.Request.Context(), id); err != nil {
			writeError(c, err)
			return
		}
	}
	if s.traces != nil {
		if err := s.traces.DeleteTracesByConversation(c.Request.Context(), id); err != nil {
			writeError(c, err)
			return
		}
	}
	ok(c, gin.H{"deleted": id})
}
