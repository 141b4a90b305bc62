package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gridworks/datagrid-panel/internal/cards"
	"github.com/gridworks/datagrid-panel/internal/contextutil"
	"github.com/gridworks/datagrid-panel/pkg/frame"
)

// cardsContext resolves the session, row and operations a nested-object
// call addresses. On success the session lock is held; the caller must
// release it, and performs the whole operation under it so the engine and
// the operation state cannot race a concurrent data push.
func (s *Server) cardsContext(c *gin.Context) (*Session, *cards.Operations, frame.Row, bool) {
	session, ok := s.session(c)
	if !ok {
		return nil, nil, nil, false
	}
	ops, ok := session.cards[c.Param("object")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "unknown nested object " + c.Param("object"),
		})
		return nil, nil, nil, false
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, err)
		return nil, nil, nil, false
	}
	session.mu.Lock()
	row, ok := session.engine.RowAt(index)
	if !ok {
		session.mu.Unlock()
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "unknown row " + c.Param("index"),
		})
		return nil, nil, nil, false
	}
	return session, ops, row, true
}

func cardsError(c *gin.Context, err error) {
	if errors.Is(err, cards.ErrNotAllowed) {
		forbidden(c)
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{
		"success": false,
		"message": err.Error(),
	})
}

// handleCardsGet fetches a row's items, trimmed by the display policy.
func (s *Server) handleCardsGet(c *gin.Context) {
	session, ops, row, ok := s.cardsContext(c)
	if !ok {
		return
	}
	defer session.mu.Unlock()
	user, _ := contextutil.GetUser(c.Request.Context())

	items, err := ops.Get(c.Request.Context(), user, session.engine.Frames(), row, s.vars.Replace)
	if err != nil {
		cardsError(c, err)
		return
	}
	visible, truncated := cards.Visible(items, ops.Mapper().Config())
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"items":     visible,
		"total":     len(items),
		"truncated": truncated,
	})
}

func (s *Server) handleCardsAdd(c *gin.Context) {
	session, ops, row, ok := s.cardsContext(c)
	if !ok {
		return
	}
	defer session.mu.Unlock()
	var req struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	user, _ := contextutil.GetUser(c.Request.Context())

	item := cards.NewItem(req.Title, req.Body, user.Login)
	if err := ops.Add(c.Request.Context(), user, session.engine.Frames(), row, item, s.vars.Replace); err != nil {
		cardsError(c, err)
		return
	}
	s.trackEvent(c, "cards_item_added", map[string]any{"object": c.Param("object")})
	c.JSON(http.StatusOK, gin.H{"success": true, "item": item})
}

func (s *Server) handleCardsUpdate(c *gin.Context) {
	session, ops, row, ok := s.cardsContext(c)
	if !ok {
		return
	}
	defer session.mu.Unlock()
	var req struct {
		Item *cards.Item `json:"item"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	user, _ := contextutil.GetUser(c.Request.Context())

	if err := ops.Update(c.Request.Context(), user, session.engine.Frames(), row, req.Item, s.vars.Replace); err != nil {
		cardsError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleCardsDelete(c *gin.Context) {
	session, ops, row, ok := s.cardsContext(c)
	if !ok {
		return
	}
	defer session.mu.Unlock()
	user, _ := contextutil.GetUser(c.Request.Context())

	item := cards.Item{ID: c.Param("item")}
	if err := ops.Delete(c.Request.Context(), user, session.engine.Frames(), row, item, s.vars.Replace); err != nil {
		cardsError(c, err)
		return
	}
	s.trackEvent(c, "cards_item_deleted", map[string]any{"object": c.Param("object")})
	c.JSON(http.StatusOK, gin.H{"success": true})
}
