package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gridworks/datagrid-panel/internal/contextutil"
	"github.com/gridworks/datagrid-panel/internal/datasource"
	"github.com/gridworks/datagrid-panel/internal/editor"
	"github.com/gridworks/datagrid-panel/pkg/types"
)

var errNoDraft = fmt.Errorf("no add-row draft is open")

func requestFailed(resp *datasource.Response) error {
	return fmt.Errorf("%s", datasource.NormalizeError(resp.Errors))
}

func forbidden(c *gin.Context) {
	c.JSON(http.StatusForbidden, gin.H{
		"success": false,
		"message": "Not allowed",
	})
}

// editAllowed checks the table-level edit gate plus the column's own
// permission when a column id is given.
func (s *Server) editAllowed(c *gin.Context, session *Session, cfg types.TableRequestConfig, columnID string) bool {
	user, _ := contextutil.GetUser(c.Request.Context())
	if !cfg.Enabled || !editor.Allowed(cfg.Permission, user, session.engine.Frames()) {
		return false
	}
	if columnID == "" {
		return true
	}
	for _, col := range session.table.Items {
		if col.ID() != columnID {
			continue
		}
		return col.Edit.Enabled && editor.Allowed(col.Edit.Permission, user, session.engine.Frames())
	}
	return false
}

func (s *Server) handleEditStart(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	var req struct {
		RowIndex int `json:"rowIndex"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	if !s.editAllowed(c, session, session.table.Update, "") {
		forbidden(c)
		return
	}
	row, ok := session.engine.RowAt(req.RowIndex)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "unknown row " + strconv.Itoa(req.RowIndex),
		})
		return
	}
	session.editor.StartEdit(req.RowIndex, row)
	c.JSON(http.StatusOK, gin.H{"success": true, "phase": session.editor.Phase(req.RowIndex)})
}

func (s *Server) handleEditUpdate(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	var req struct {
		RowIndex int    `json:"rowIndex"`
		ColumnID string `json:"columnId"`
		Value    any    `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	if !s.editAllowed(c, session, session.table.Update, req.ColumnID) {
		forbidden(c)
		return
	}
	for _, col := range session.table.Items {
		if col.ID() != req.ColumnID {
			continue
		}
		if err := session.editor.UpdateDraft(req.RowIndex, col, req.Value); err != nil {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}
	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"message": "unknown column " + req.ColumnID,
	})
}

func (s *Server) handleEditSave(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	var req struct {
		RowIndex int `json:"rowIndex"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	if !s.editAllowed(c, session, session.table.Update, "") {
		forbidden(c)
		return
	}
	err := session.editor.Save(c.Request.Context(), req.RowIndex, session.table.Update, s.vars.Replace)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"message": session.editor.LastError(req.RowIndex),
			"phase":   session.editor.Phase(req.RowIndex),
		})
		return
	}
	s.trackEvent(c, "grid_row_saved", map[string]any{"table": session.table.Name})
	s.bus.Publish()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleEditCancel(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	var req struct {
		RowIndex int `json:"rowIndex"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	session.mu.Lock()
	session.editor.Cancel(req.RowIndex)
	session.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleDraftStart(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	if !s.editAllowed(c, session, session.table.AddRow, "") {
		forbidden(c)
		return
	}
	session.engine.StartAddRow()
	c.JSON(http.StatusOK, gin.H{"success": true, "draft": session.engine.Draft()})
}

func (s *Server) handleDraftUpdate(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	var req struct {
		ColumnID string `json:"columnId"`
		Value    any    `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	session.mu.Lock()
	session.engine.SetDraftValue(req.ColumnID, req.Value)
	session.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// handleDraftSave persists the add-row draft through the add-row request.
func (s *Server) handleDraftSave(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	if !s.editAllowed(c, session, session.table.AddRow, "") {
		forbidden(c)
		return
	}
	draft := session.engine.Draft()
	if draft == nil {
		badRequest(c, errNoDraft)
		return
	}

	resp, err := s.requester.Request(c.Request.Context(), datasource.Request{
		DatasourceUID: session.table.AddRow.Request.DatasourceUID,
		Query:         session.table.AddRow.Request.Payload,
		Payload:       map[string]any{"row": draft},
	}, s.vars.Replace)
	if err == nil && !resp.OK() {
		err = requestFailed(resp)
	}
	if err != nil {
		s.logger.Error("Add row failed", zap.String("table", session.table.Name), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"message": datasource.NormalizeError(err),
		})
		return
	}

	session.engine.CancelAddRow()
	s.trackEvent(c, "grid_row_added", map[string]any{"table": session.table.Name})
	s.bus.Publish()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleDraftCancel(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	session.mu.Lock()
	session.engine.CancelAddRow()
	session.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// handleDeleteRow issues the delete-row request for one dataset row.
func (s *Server) handleDeleteRow(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, err)
		return
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	if !s.editAllowed(c, session, session.table.DeleteRow, "") {
		forbidden(c)
		return
	}
	row, ok := session.engine.RowAt(index)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "unknown row " + strconv.Itoa(index),
		})
		return
	}

	resp, err := s.requester.Request(c.Request.Context(), datasource.Request{
		DatasourceUID: session.table.DeleteRow.Request.DatasourceUID,
		Query:         session.table.DeleteRow.Request.Payload,
		Payload:       map[string]any{"row": row},
	}, s.vars.Replace)
	if err == nil && !resp.OK() {
		err = requestFailed(resp)
	}
	if err != nil {
		s.logger.Error("Delete row failed", zap.String("table", session.table.Name), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"message": datasource.NormalizeError(err),
		})
		return
	}

	s.trackEvent(c, "grid_row_deleted", map[string]any{"table": session.table.Name})
	s.bus.Publish()
	c.JSON(http.StatusOK, gin.H{"success": true})
}
