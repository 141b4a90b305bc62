// Package server exposes the panel engine over HTTP for the host
// frontend: data push, view rendering, state mutations, editing, nested
// objects and CSV export.
package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gridworks/datagrid-panel/internal/contextutil"
	"github.com/gridworks/datagrid-panel/internal/datasource"
	"github.com/gridworks/datagrid-panel/internal/editor"
	"github.com/gridworks/datagrid-panel/internal/refresh"
	"github.com/gridworks/datagrid-panel/internal/telemetry"
	"github.com/gridworks/datagrid-panel/internal/variables"
	"github.com/gridworks/datagrid-panel/pkg/types"
)

const (
	headerUser = "X-Panel-User"
	headerRole = "X-Panel-Role"
)

// Server hosts every configured table as a session and routes the
// frontend's calls to it.
type Server struct {
	logger    *zap.Logger
	options   types.PanelOptions
	requester datasource.Requester
	tracker   *telemetry.Tracker
	bus       *refresh.Bus
	registry  *editor.Registry
	vars      *varStore
	location  *locationStore
	sync      *variables.Synchronizer
	notifier  *collectingNotifier

	sessions map[string]*Session
}

// New validates the panel options and builds one session per table.
func New(logger *zap.Logger, options types.PanelOptions, requester datasource.Requester, tracker *telemetry.Tracker) (*Server, error) {
	if err := options.Validate(); err != nil {
		return nil, fmt.Errorf("invalid panel options: %w", err)
	}
	registry, err := editor.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to create editor registry: %w", err)
	}

	s := &Server{
		logger:    logger,
		options:   options,
		requester: requester,
		tracker:   tracker,
		bus:       refresh.NewBus(logger),
		registry:  registry,
		vars:      newVarStore(),
		location:  newLocationStore(),
		notifier:  newCollectingNotifier(),
		sessions:  make(map[string]*Session, len(options.Tables)),
	}
	s.sync = variables.NewSynchronizer(logger, s.vars, s.location)

	for _, table := range options.Tables {
		session, err := s.newSession(table)
		if err != nil {
			return nil, fmt.Errorf("failed to create session for table %q: %w", table.Name, err)
		}
		s.sessions[table.Name] = session
	}
	return s, nil
}

func (s *Server) session(c *gin.Context) (*Session, bool) {
	name := c.Param("table")
	session, ok := s.sessions[name]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": fmt.Sprintf("unknown table %q", name),
		})
		return nil, false
	}
	return session, true
}

// userMiddleware lifts the host-forwarded identity headers into the
// request context.
func userMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := contextutil.User{
			Login:   c.GetHeader(headerUser),
			OrgRole: types.OrgRole(c.GetHeader(headerRole)),
		}
		c.Request = c.Request.WithContext(contextutil.SetUser(c.Request.Context(), user))
		c.Next()
	}
}

// Router builds the HTTP surface.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(userMiddleware())

	api := r.Group("/api")
	{
		api.POST("/variables", s.handleUpdateVariables)
		api.GET("/location", s.handleLocation)
		api.GET("/notifications", s.handleNotifications)

		panel := api.Group("/panels/:table")
		{
			panel.POST("/data", s.handlePushData)
			panel.GET("/view", s.handleView)
			panel.POST("/sort", s.handleSort)
			panel.POST("/filter", s.handleFilter)
			panel.POST("/page", s.handlePage)
			panel.POST("/page-size", s.handlePageSize)
			panel.POST("/group", s.handleToggleGroup)
			panel.POST("/pin", s.handlePin)
			panel.POST("/measure", s.handleMeasure)
			panel.GET("/export.csv", s.handleExportCSV)
			panel.GET("/suggest", s.handleSuggest)
			panel.GET("/options", s.handleControlOptions)

			panel.POST("/edit/start", s.handleEditStart)
			panel.POST("/edit/update", s.handleEditUpdate)
			panel.POST("/edit/save", s.handleEditSave)
			panel.POST("/edit/cancel", s.handleEditCancel)

			panel.POST("/draft/start", s.handleDraftStart)
			panel.POST("/draft/update", s.handleDraftUpdate)
			panel.POST("/draft/save", s.handleDraftSave)
			panel.POST("/draft/cancel", s.handleDraftCancel)
			panel.DELETE("/rows/:index", s.handleDeleteRow)

			panel.GET("/rows/:index/objects/:object", s.handleCardsGet)
			panel.POST("/rows/:index/objects/:object", s.handleCardsAdd)
			panel.PUT("/rows/:index/objects/:object", s.handleCardsUpdate)
			panel.DELETE("/rows/:index/objects/:object/:item", s.handleCardsDelete)
		}
	}
	return r
}

// Start serves the API on the given address, blocking until the listener
// fails.
func (s *Server) Start(addr string) error {
	s.logger.Info("Starting panel server", zap.String("addr", addr))
	if err := s.Router().Run(addr); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}
