package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"orbot/bot"
	"orbot/market"
	"orbot/metrics"
)

// Server is the HTTP control surface. It never mutates strategy state
// directly; every command goes through the engine's own entry points.
type Server struct {
	bot  *bot.Bot
	log  *zap.Logger
	http *http.Server
}

func New(addr string, b *bot.Bot, log *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{bot: b, log: log}

	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	{
		api.GET("/health", s.health)
		api.GET("/status", s.status)
		api.GET("/statistics", s.statistics)
		api.GET("/trades", s.trades)
		api.GET("/config", s.config)
		api.POST("/start", s.start)
		api.POST("/stop", s.stop)
		api.POST("/bars", s.bars)
		api.GET("/stream", s.stream)
	}
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	s.http = &http.Server{Addr: addr, Handler: router}
	return s
}

// Handler exposes the routed handler for tests and embedding.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", s.http.Addr))
		errc <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutCtx)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
}

func (s *Server) status(c *gin.Context) {
	c.JSON(http.StatusOK, s.bot.Status())
}

func (s *Server) statistics(c *gin.Context) {
	c.JSON(http.StatusOK, s.bot.Statistics())
}

func (s *Server) trades(c *gin.Context) {
	trades := s.bot.TradeHistory()
	c.JSON(http.StatusOK, gin.H{"count": len(trades), "trades": trades})
}

func (s *Server) config(c *gin.Context) {
	c.JSON(http.StatusOK, s.bot.Config())
}

func (s *Server) start(c *gin.Context) {
	if err := s.bot.Start(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "started"})
}

func (s *Server) stop(c *gin.Context) {
	s.bot.Stop(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"status": "stopped"})
}

// barRequest is one injected bar. Time is RFC 3339.
type barRequest struct {
	Time   time.Time `json:"time" binding:"required"`
	Open   float64   `json:"open" binding:"required"`
	High   float64   `json:"high" binding:"required"`
	Low    float64   `json:"low" binding:"required"`
	Close  float64   `json:"close" binding:"required"`
	Volume int64     `json:"volume"`
}

func (s *Server) bars(c *gin.Context) {
	var req []barRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	accepted := 0
	for _, r := range req {
		bar := market.Bar{
			Time:   r.Time,
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
		}
		if !bar.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":    "invalid bar",
				"accepted": accepted,
			})
			return
		}
		if err := s.bot.OnBar(c.Request.Context(), bar); err != nil {
			c.JSON(http.StatusConflict, gin.H{
				"error":    err.Error(),
				"accepted": accepted,
			})
			return
		}
		accepted++
	}
	c.JSON(http.StatusOK, gin.H{"accepted": accepted})
}
