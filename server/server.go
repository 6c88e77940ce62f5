// Package server serves pattern images over HTTP.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stepbot/pattern"
	"github.com/stepbot/pattern/command"
	"github.com/stepbot/pattern/midiexport"
	"github.com/stepbot/pattern/noteskin"
	"github.com/stepbot/pattern/render"
	"github.com/stepbot/pattern/reply"
	"github.com/stepbot/pattern/version"
)

var (
	renders = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pattern_renders_total",
		Help: "Total pattern requests by output format and result",
	}, []string{"format", "result"})

	renderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pattern_render_duration_seconds",
		Help:    "Time to parse and render a pattern request",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"format"})

	renderSprites = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pattern_render_sprites",
		Help:    "Number of sprites drawn per successful render",
		Buckets: prometheus.ExponentialBuckets(4, 2, 9),
	})
)

// MaxKeymodeListed bounds the keymodes reported per noteskin.
const MaxKeymodeListed = 16

type Server struct {
	skins    *noteskin.Registry
	limits   render.Limits
	logger   *slog.Logger
	messages reply.Messages
}

type (
	PatternRequest struct {
		Command string `form:"q" json:"q" binding:"required,max=2000"`
		Format  string `form:"format" json:"format" binding:"omitempty,oneof=png midi"`
	}

	ErrorResponse struct {
		Error   string `json:"error"`
		Message string `json:"message,omitempty"`
	}

	NoteskinInfo struct {
		Name       string `json:"name"`
		Family     string `json:"family"`
		Resolution int    `json:"resolution"`
		Keymodes   []int  `json:"keymodes"`
	}
)

func New(skins *noteskin.Registry, limits render.Limits, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		skins:    skins,
		limits:   limits,
		logger:   logger,
		messages: reply.Messages{Noteskins: skins.Names()},
	}
}

// Handler returns the routes of the server.
func (s *Server) Handler() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests())
	r.GET("/health", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	v1 := r.Group("/v1")
	v1.GET("/noteskins", s.handleNoteskins)
	v1.GET("/pattern", s.handlePattern)
	v1.POST("/pattern", s.handlePattern)
	return r
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("could not shut down: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version.VersionOrHash})
}

func (s *Server) handleNoteskins(c *gin.Context) {
	ret := []NoteskinInfo{}
	for _, name := range s.skins.Names() {
		skin, _ := s.skins.Get(name)
		info := NoteskinInfo{Name: name, Family: string(skin.Family()), Resolution: skin.SpriteResolution(), Keymodes: []int{}}
		for k := 1; k <= MaxKeymodeListed; k++ {
			if skin.SupportsKeymode(k) {
				info.Keymodes = append(info.Keymodes, k)
			}
		}
		ret = append(ret, info)
	}
	c.JSON(http.StatusOK, ret)
}

func (s *Server) handlePattern(c *gin.Context) {
	var req PatternRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Message: s.messages.Usage()})
		return
	}
	format := req.Format
	if format == "" {
		format = "png"
	}
	start := time.Now()
	data, contentType, err := s.render(req.Command, format)
	renderDuration.WithLabelValues(format).Observe(time.Since(start).Seconds())
	if err != nil {
		if !reply.Known(err) {
			renders.WithLabelValues(format, "internal_error").Inc()
			s.logger.Error("render failed", "command", req.Command, "error", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
			return
		}
		renders.WithLabelValues(format, "rejected").Inc()
		s.logger.Debug("pattern rejected", "command", req.Command, "error", err)
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Message: s.messages.Error(err)})
		return
	}
	renders.WithLabelValues(format, "ok").Inc()
	c.Data(http.StatusOK, contentType, data)
}

func (s *Server) render(text, format string) ([]byte, string, error) {
	req, err := command.Parse(text, s.skins.Names())
	if err != nil {
		return nil, "", err
	}
	var buf bytes.Buffer
	if format == "midi" {
		limits := s.limits.WithDefaults()
		segments, err := req.Patterns(limits.MaxRows)
		if err != nil {
			return nil, "", err
		}
		if n, limit := pattern.NumNotes(segments), limits.MaxSprites; n > limit {
			return nil, "", fmt.Errorf("%w: %d notes, at most %d allowed", render.ErrTooManySprites, n, limit)
		}
		if err := midiexport.Write(&buf, segments, midiexport.Options{Keymode: req.Keymode}); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "audio/midi", nil
	}
	recipe, err := req.Recipe(s.skins, s.limits)
	if err != nil {
		return nil, "", err
	}
	img, err := render.Draw(recipe)
	if err != nil {
		return nil, "", err
	}
	renderSprites.Observe(float64(pattern.NumNotes(recipe.Segments) + recipe.Keymode))
	if err := png.Encode(&buf, img); err != nil {
		return nil, "", fmt.Errorf("could not encode png: %w", err)
	}
	return buf.Bytes(), "image/png", nil
}
