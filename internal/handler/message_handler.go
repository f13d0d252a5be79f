package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/parsa-dv/messenger/internal/model"
	"github.com/parsa-dv/messenger/internal/pkg/response"
	"github.com/parsa-dv/messenger/internal/service"
)

type MessageHandler struct {
	messages *service.MessageService
	uploads  *service.UploadService
}

func NewMessageHandler(messages *service.MessageService, uploads *service.UploadService) *MessageHandler {
	return &MessageHandler{messages: messages, uploads: uploads}
}

type sendRequest struct {
	To      int64  `json:"to"`
	Message string `json:"message"`
}

func (h *MessageHandler) Send(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.To == 0 || req.Message == "" {
		response.Error(c, 400, "Recipient and message required")
		return
	}
	msg, err := h.messages.Append(c.Request.Context(), getUserID(c), req.To, req.Message, "", "")
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Message sent", "messageId": msg.ID})
}

func (h *MessageHandler) SendFile(c *gin.Context) {
	to, err := strconv.ParseInt(c.PostForm("to"), 10, 64)
	if err != nil || to == 0 {
		response.Error(c, 400, "Recipient required")
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, 400, "No file uploaded")
		return
	}
	filePath, fileType, err := h.uploads.SaveUpload(c.Request.Context(), header)
	if err != nil {
		handleError(c, err)
		return
	}
	msg, err := h.messages.Append(c.Request.Context(), getUserID(c), to, c.PostForm("message"), filePath, fileType)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{
		"message":   "Message sent",
		"messageId": msg.ID,
		"filePath":  filePath,
		"fileType":  fileType,
	})
}

func (h *MessageHandler) Conversation(c *gin.Context) {
	peerID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		response.Error(c, 400, "Invalid user id")
		return
	}
	messages, isTyping, err := h.messages.Conversation(c.Request.Context(), getUserID(c), peerID)
	if err != nil {
		handleError(c, err)
		return
	}
	if messages == nil {
		messages = []*model.Message{}
	}
	response.JSON(c, gin.H{"messages": messages, "is_typing": isTyping})
}

type markReadRequest struct {
	From int64 `json:"from"`
}

func (h *MessageHandler) MarkRead(c *gin.Context) {
	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.From == 0 {
		response.Error(c, 400, "Sender required")
		return
	}
	if err := h.messages.MarkRead(c.Request.Context(), getUserID(c), req.From); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, nil)
}
