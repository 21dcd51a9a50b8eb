package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"

	"github.com/Desarso/agentstudio/models"
)

func (s *Server) listTools(c *gin.Context) {
	if s.tools == nil {
		ok(c, []models.FunctionDeclaration{})
		return
	}
	ok(c, s.tools.Declarations())
}

func (s *Server) invokeTool(c *gin.Context) {
	name := c.Param("name")
	if s.tools == nil || !s.hasTool(name) {
		fail(c, http.StatusNotFound, models.CodeNotFound, "tool not found: "+name)
		return
	}

	var req models.ToolInvokeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		fail(c, http.StatusBadRequest, models.CodeInvalid, "invalid request body: "+err.Error())
		return
	}
	if req.Args == nil {
		req.Args = map[string]any{}
	}

	out, err := s.tools.ExecuteTool(c.Request.Context(), name, req.Args)
	if err != nil {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.Result[json.RawMessage]{
			Code:    models.CodeInternal,
			Message: err.Error(),
			Data:    json.RawMessage(out),
		})
		return
	}
	ok(c, json.RawMessage(out))
}

func (s *Server) hasTool(name string) bool {
	for _, decl := range s.tools.Declarations() {
		if decl.Name == name {
			return true
		}
	}
	return false
}
