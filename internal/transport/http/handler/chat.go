package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"studyplanner/internal/app"
	"studyplanner/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
}

// ChatRequest allows an empty message; the service answers it with a prompt
// to ask something.
type ChatRequest struct {
	Message string `json:"message"`
}

func NewChatHandler(chatService *app.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) Ask(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	reply, err := h.chatService.Ask(c.Request.Context(), req.Message)
	if err != nil {
		writeError(c, err, "chat failed")
		return
	}

	response.OK(c, reply)
}

func (h *ChatHandler) History(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, parseErr := strconv.Atoi(raw); parseErr == nil {
			limit = parsed
		}
	}

	history, err := h.chatService.History(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err, "get chat history failed")
		return
	}

	response.OK(c, history)
}
