// Package server exposes the session control surface over HTTP: session
// lifecycle, subtitle artifact fetch, segment upload, and a WebSocket
// endpoint streaming new caption entries to live viewers.
package server

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/bobbygenerik/stream-transcribe-server/internal/session"
)

type Server struct {
	manager  *session.Manager
	upgrader websocket.Upgrader
}

func New(manager *session.Manager) *Server {
	return &Server{
		manager: manager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	api := r.Group("/api")
	{
		api.POST("/sessions", s.startSession)
		api.GET("/sessions", s.listSessions)
		api.GET("/sessions/:id", s.getSession)
		api.POST("/sessions/:id/stop", s.stopSession)
		api.DELETE("/sessions/:id", s.cleanupSession)
		api.GET("/sessions/:id/subtitles.vtt", s.getSubtitles)
		api.POST("/sessions/:id/segments", s.uploadSegment)
		api.GET("/sessions/:id/live", s.handleLive)
	}

	return r
}

type startRequest struct {
	StreamURL    string `json:"stream_url" binding:"required"`
	TargetLang   string `json:"target_lang"`
	ChunkSeconds int    `json:"chunk_seconds"`
}

type sessionResponse struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	StreamURL      string `json:"stream_url"`
	TargetLanguage string `json:"target_language"`
	ChunkSeconds   int    `json:"chunk_seconds"`
	Captions       int    `json:"captions"`
	SubtitlesURL   string `json:"subtitles_url"`
}

func toResponse(sess *session.Session) sessionResponse {
	return sessionResponse{
		ID:             sess.ID,
		Status:         string(sess.Status()),
		StreamURL:      sess.StreamURL,
		TargetLanguage: sess.TargetLanguage,
		ChunkSeconds:   sess.ChunkSeconds,
		Captions:       sess.Timeline().Len(),
		SubtitlesURL:   "/api/sessions/" + sess.ID + "/subtitles.vtt",
	}
}

func (s *Server) startSession(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ChunkSeconds == 0 {
		req.ChunkSeconds = 8
	}

	sess, err := s.manager.Start(req.StreamURL, req.TargetLang, req.ChunkSeconds)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, toResponse(sess))
}

func (s *Server) stopSession(c *gin.Context) {
	if err := s.manager.Stop(c.Param("id")); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stopped": true})
}

func (s *Server) cleanupSession(c *gin.Context) {
	if err := s.manager.Cleanup(c.Param("id")); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": true})
}

func (s *Server) getSession(c *gin.Context) {
	sess, err := s.manager.Get(c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toResponse(sess))
}

func (s *Server) listSessions(c *gin.Context) {
	sessions := s.manager.List()
	out := make([]sessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, toResponse(sess))
	}
	c.JSON(http.StatusOK, gin.H{"sessions": out})
}

func (s *Server) getSubtitles(c *gin.Context) {
	path, err := s.manager.SubtitlePath(c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Type", "text/vtt; charset=utf-8")
	c.File(path)
}

func (s *Server) uploadSegment(c *gin.Context) {
	data, err := readSegmentBody(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	index, err := s.manager.Upload(c.Param("id"), data)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"index": index})
}

// readSegmentBody accepts either a multipart "file" field or a raw body.
func readSegmentBody(c *gin.Context) ([]byte, error) {
	if file, err := c.FormFile("file"); err == nil {
		f, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(f)
	}
	return io.ReadAll(c.Request.Body)
}

// handleLive upgrades to WebSocket and pushes each new caption entry as a
// JSON message. There is no backlog replay: the viewer receives entries
// appended after it connected, in append order.
func (s *Server) handleLive(c *gin.Context) {
	sess, err := s.manager.Get(c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	bc := sess.Broadcaster()
	sub := bc.Subscribe()
	defer bc.Unsubscribe(sub)

	// Drain client frames so we notice a disconnect; viewers are not
	// expected to send anything meaningful.
	disconnected := make(chan struct{})
	go func() {
		defer close(disconnected)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case entry, ok := <-sub.Entries():
			if !ok {
				return
			}
			if err := conn.WriteJSON(entry); err != nil {
				log.Printf("Server: websocket write failed, dropping viewer: %v", err)
				return
			}
		case <-disconnected:
			return
		}
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrNotReady):
		return http.StatusNotFound
	case errors.Is(err, session.ErrInvalidArgument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
