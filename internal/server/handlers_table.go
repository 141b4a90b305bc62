package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gridworks/datagrid-panel/internal/contextutil"
	"github.com/gridworks/datagrid-panel/internal/grid"
	"github.com/gridworks/datagrid-panel/internal/variables"
	"github.com/gridworks/datagrid-panel/pkg/filtering"
	"github.com/gridworks/datagrid-panel/pkg/frame"
	"github.com/gridworks/datagrid-panel/pkg/types"
)

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"message": "Invalid request: " + err.Error(),
	})
}

func (s *Server) trackEvent(c *gin.Context, event string, properties map[string]any) {
	user, _ := contextutil.GetUser(c.Request.Context())
	s.tracker.Track(user.Login, event, properties)
}

// handlePushData replaces a table's dataset with host-provided frames.
func (s *Server) handlePushData(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	var req struct {
		Frames []frame.Frame `json:"frames"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	session.mu.Lock()
	err := session.setData(s, req.Frames)
	session.mu.Unlock()
	if err != nil {
		s.logger.Error("Failed to apply pushed data", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to apply data",
		})
		return
	}
	s.bus.Publish()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// handleView renders the virtualized window for the reported viewport.
func (s *Server) handleView(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	height, _ := strconv.ParseFloat(c.DefaultQuery("height", "600"), 64)
	offset, _ := strconv.ParseFloat(c.DefaultQuery("offset", "0"), 64)

	session.mu.Lock()
	vm := session.engine.View(grid.Viewport{Height: height, ScrollOffset: offset})
	session.mu.Unlock()
	c.JSON(http.StatusOK, vm)
}

func (s *Server) handleSort(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	var req struct {
		ColumnID string `json:"columnId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	session.mu.Lock()
	session.engine.ToggleSort(req.ColumnID)
	session.mu.Unlock()
	s.trackEvent(c, "grid_sort", map[string]any{"table": session.table.Name, "column": req.ColumnID})
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// handleFilter sets or clears one column's filter. Query-mode filters are
// additionally pushed into their backing template variable.
func (s *Server) handleFilter(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	var req struct {
		ColumnID string           `json:"columnId"`
		Value    *filtering.Value `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	session.mu.Lock()
	session.engine.SetFilter(req.ColumnID, req.Value)
	for _, col := range session.table.Items {
		if col.ID() == req.ColumnID && col.Filter.Mode == types.FilterModeQuery {
			s.sync.SaveQueryFilter(col, req.Value)
		}
	}
	// Setting a filter resets the page index, which query paging has to
	// see.
	s.sync.SavePageState(session.table.Pagination, session.engine.State().Page)
	session.mu.Unlock()
	s.trackEvent(c, "grid_filter", map[string]any{"table": session.table.Name, "column": req.ColumnID})
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handlePage(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	var req struct {
		Index int `json:"index"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	session.mu.Lock()
	session.engine.SetPage(req.Index)
	s.sync.SavePageState(session.table.Pagination, session.engine.State().Page)
	session.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handlePageSize(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	var req struct {
		Size int `json:"size"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	session.mu.Lock()
	session.engine.SetPageSize(req.Size)
	s.sync.SavePageState(session.table.Pagination, session.engine.State().Page)
	session.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleToggleGroup(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	var req struct {
		GroupID string `json:"groupId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	session.mu.Lock()
	session.engine.ToggleGroup(req.GroupID)
	session.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handlePin(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	var req struct {
		ColumnID string          `json:"columnId"`
		Pin      types.ColumnPin `json:"pin"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	session.mu.Lock()
	session.engine.SetPin(req.ColumnID, req.Pin)
	session.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleMeasure(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	var req struct {
		Index int     `json:"index"`
		Size  float64 `json:"size"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	session.mu.Lock()
	session.engine.Measure(req.Index, req.Size)
	session.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// handleExportCSV streams the filtered, sorted dataset.
func (s *Server) handleExportCSV(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="`+session.table.Name+`.csv"`)

	session.mu.Lock()
	err := session.engine.ExportCSV(c.Writer)
	session.mu.Unlock()
	if err != nil {
		s.logger.Error("CSV export failed", zap.Error(err))
	}
	s.trackEvent(c, "grid_export", map[string]any{"table": session.table.Name})
}

// handleSuggest serves filter typeahead completions.
func (s *Server) handleSuggest(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	column := c.Query("column")
	prefix := c.Query("prefix")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	values, err := session.suggest.Suggest(c.Request.Context(), column, prefix, limit)
	if err != nil {
		s.logger.Error("Suggest query failed", zap.String("column", column), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Suggest query failed",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "values": values})
}

// handleControlOptions serves a select editor's option list.
func (s *Server) handleControlOptions(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	columnID := c.Query("column")

	session.mu.Lock()
	defer session.mu.Unlock()
	for _, col := range session.table.Items {
		if col.ID() != columnID {
			continue
		}
		options := s.registry.ControlOptions(col.Edit.Editor, session.engine.Frames())
		c.JSON(http.StatusOK, gin.H{"success": true, "options": options})
		return
	}
	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"message": "unknown column " + columnID,
	})
}

// handleUpdateVariables accepts the host's template variables and resyncs
// every session's query filters.
func (s *Server) handleUpdateVariables(c *gin.Context) {
	var req struct {
		Variables []variables.Variable `json:"variables"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s.vars.Set(req.Variables)

	for _, session := range s.sessions {
		session.mu.Lock()
		merged := s.sync.Sync(session.table.Items, session.engine.State().Filters)
		session.engine.SetFilters(merged)
		session.mu.Unlock()
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleLocation(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "params": s.location.Params()})
}

func (s *Server) handleNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "notifications": s.notifier.Drain()})
}
