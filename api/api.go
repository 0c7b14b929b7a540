// Package api exposes the marketplace's read-only queries over HTTP. All
// mutations go through the actor runtime; this surface only snapshots.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/inconshreveable/log15"

	"github.com/pflow-xyz/go-market/actor"
	"github.com/pflow-xyz/go-market/market"
)

var log = log15.New("module", "api")

// Server answers HTTP queries by issuing runtime requests to the market
// actor from its own client address.
type Server struct {
	rt     *actor.Runtime
	market actor.Address
	client actor.Address
	engine *gin.Engine
}

// New builds a server for the market actor at the given address.
func New(rt *actor.Runtime, marketAddr actor.Address) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		rt:     rt,
		market: marketAddr,
		client: actor.NewAddress("api"),
	}

	e := gin.New()
	e.Use(gin.Recovery())
	e.GET("/state", func(c *gin.Context) { s.query(c, market.QueryState{}) })
	e.GET("/admins", func(c *gin.Context) { s.query(c, market.QueryAdmins{}) })
	e.GET("/config", func(c *gin.Context) { s.query(c, market.QueryConfig{}) })
	e.GET("/types", func(c *gin.Context) { s.query(c, market.QueryCollectionTypes{}) })
	e.GET("/collections", func(c *gin.Context) { s.query(c, market.QueryCollections{}) })
	e.GET("/collections/:address", func(c *gin.Context) {
		s.query(c, market.QueryCollectionInfo{Collection: actor.Address(c.Param("address"))})
	})
	e.GET("/commitment", func(c *gin.Context) {
		out, err := s.request(c, market.QueryCommitment{})
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"commitment": out})
	})
	s.engine = e
	return s
}

// Handler returns the routable HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	log.Info("api listening", "addr", addr)
	return s.engine.Run(addr)
}

func (s *Server) query(c *gin.Context, payload any) {
	out, err := s.request(c, payload)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) request(c *gin.Context, payload any) (any, error) {
	return s.rt.Request(c.Request.Context(), s.client, s.market, payload, nil, 0)
}

func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusBadGateway
	if errors.Is(err, market.ErrUnknownCollection) {
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
