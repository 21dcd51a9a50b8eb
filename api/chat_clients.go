package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Desarso/agentstudio/models"
)

func (s *Server) listChatClients(c *gin.Context) {
	clients, err := s.delegate.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, clients)
}

func (s *Server) getChatClient(c *gin.Context) {
	client, err := s.delegate.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, client)
}

func (s *Server) runChatClient(c *gin.Context) {
	var param models.ClientRunActionParam
	if err := c.ShouldBindJSON(&param); err != nil {
		fail(c, http.StatusBadRequest, models.CodeInvalid, "invalid request body: "+err.Error())
		return
	}
	if msg := validateRunParam(param); msg != "" {
		fail(c, http.StatusBadRequest, models.CodeInvalid, msg)
		return
	}

	result, err := s.delegate.Run(c.Request.Context(), param)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, result)
}

func validateRunParam(param models.ClientRunActionParam) string {
	switch {
	case strings.TrimSpace(param.Key) == "":
		return "key is required"
	case strings.TrimSpace(param.Input) == "":
		return "input is required"
	}
	return ""
}
