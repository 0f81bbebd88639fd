package verify

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"FeedSentinel/internal/domain"
)

var (
	analysisRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedsentinel_verify_requests_total",
			Help: "Analysis requests by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)
	analysisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feedsentinel_verify_duration_seconds",
			Help:    "Analysis latency by endpoint",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
)

func init() {
	prometheus.MustRegister(analysisRequests, analysisDuration)
}

// Server exposes the analysis service over HTTP.
type Server struct {
	engine  *gin.Engine
	service *Service
	addr    string
	logger  *slog.Logger
}

// NewServer builds the router.
func NewServer(service *Service, addr string, logger *slog.Logger) *Server {
	s := &Server{
		engine:  gin.Default(),
		service: service,
		addr:    addr,
		logger:  logger,
	}

	s.engine.POST("/analyze/post", s.handlePost)
	s.engine.POST("/analyze/text", s.handleText)
	s.engine.POST("/analyze/image", s.handleImage)
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return s
}

// Run blocks serving HTTP until the listener fails.
func (s *Server) Run() error {
	return s.engine.Run(s.addr)
}

func (s *Server) handlePost(c *gin.Context) {
	start := time.Now()

	var record domain.ExtractedRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		analysisRequests.WithLabelValues("post", "bad_request").Inc()
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	verdict, err := s.service.AnalyzePost(c.Request.Context(), record)
	if err != nil {
		s.logger.Error("post analysis failed", "error", err)
		analysisRequests.WithLabelValues("post", "error").Inc()
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	analysisDuration.WithLabelValues("post").Observe(time.Since(start).Seconds())
	analysisRequests.WithLabelValues("post", outcome(verdict)).Inc()
	c.JSON(200, verdict)
}

func (s *Server) handleText(c *gin.Context) {
	start := time.Now()

	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		analysisRequests.WithLabelValues("text", "bad_request").Inc()
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	verdict, err := s.service.AnalyzeText(c.Request.Context(), req.Text)
	if err != nil {
		s.logger.Error("text analysis failed", "error", err)
		analysisRequests.WithLabelValues("text", "error").Inc()
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	analysisDuration.WithLabelValues("text").Observe(time.Since(start).Seconds())
	analysisRequests.WithLabelValues("text", outcome(verdict)).Inc()
	c.JSON(200, verdict)
}

func (s *Server) handleImage(c *gin.Context) {
	start := time.Now()

	var req struct {
		ImageURL string `json:"image_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		analysisRequests.WithLabelValues("image", "bad_request").Inc()
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	if req.ImageURL == "" {
		analysisRequests.WithLabelValues("image", "bad_request").Inc()
		c.JSON(400, gin.H{"error": "image_url is required"})
		return
	}

	provenance, err := s.service.AnalyzeImage(c.Request.Context(), req.ImageURL)
	if err != nil {
		s.logger.Error("image analysis failed", "error", err)
		analysisRequests.WithLabelValues("image", "error").Inc()
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	analysisDuration.WithLabelValues("image").Observe(time.Since(start).Seconds())
	analysisRequests.WithLabelValues("image", "ok").Inc()
	c.JSON(200, provenance)
}

func outcome(verdict domain.Verdict) string {
	if verdict.Flag {
		return "flagged"
	}
	return "clear"
}
