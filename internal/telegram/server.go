package telegram

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Server receives Bot API webhook deliveries and dispatches them to the
// update handler. Updates are processed off the request goroutine; Telegram
// only needs the 200.
type Server struct {
	client        *Client
	handler       *UpdateHandler
	webhookSecret string
}

func NewServer(client *Client, handler *UpdateHandler, webhookSecret string) *Server {
	return &Server{
		client:        client,
		handler:       handler,
		webhookSecret: webhookSecret,
	}
}

// Register installs the webhook on Telegram's side and wires the routes.
func (s *Server) Register(r *gin.Engine, webhookBaseURL string) error {
	if err := s.client.SetWebhook(webhookBaseURL+"/webhook/bot", s.webhookSecret); err != nil {
		return err
	}
	r.POST("/webhook/bot", s.handleWebhook)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	log.Info().Str("url", webhookBaseURL+"/webhook/bot").Msg("webhook registered")
	return nil
}

// Shutdown removes the webhook.
func (s *Server) Shutdown() {
	if err := s.client.DeleteWebhook(); err != nil {
		log.Warn().Err(err).Msg("delete webhook failed")
	}
}

func (s *Server) handleWebhook(c *gin.Context) {
	if s.webhookSecret != "" {
		if c.GetHeader("X-Telegram-Bot-Api-Secret-Token") != s.webhookSecret {
			c.Status(http.StatusUnauthorized)
			return
		}
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	var upd Update
	if err := json.Unmarshal(body, &upd); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	go s.handler.Handle(upd)

	c.Status(http.StatusOK)
}
