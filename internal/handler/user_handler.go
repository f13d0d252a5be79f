package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/parsa-dv/messenger/internal/pkg/response"
	"github.com/parsa-dv/messenger/internal/service"
)

type UserHandler struct {
	users    *service.UserService
	contacts *service.ContactService
	uploads  *service.UploadService
}

func NewUserHandler(users *service.UserService, contacts *service.ContactService, uploads *service.UploadService) *UserHandler {
	return &UserHandler{users: users, contacts: contacts, uploads: uploads}
}

func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.JSON(c, gin.H{
		"id":              user.ID,
		"username":        user.Username,
		"email":           user.Email,
		"profile_picture": user.ProfilePicture,
		"bio":             user.Bio,
	})
}

type updateProfileRequest struct {
	Email string `json:"email"`
	Bio   string `json:"bio"`
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, 400, "Invalid request")
		return
	}
	if err := h.users.UpdateProfile(c.Request.Context(), getUserID(c), req.Email, req.Bio); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Profile updated"})
}

func (h *UserHandler) UploadPicture(c *gin.Context) {
	header, err := c.FormFile("profilePicture")
	if err != nil {
		response.Error(c, 400, "No file uploaded")
		return
	}
	filePath, _, err := h.uploads.SaveUpload(c.Request.Context(), header)
	if err != nil {
		handleError(c, err)
		return
	}
	if err := h.users.UpdatePicture(c.Request.Context(), getUserID(c), filePath); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"filePath": filePath})
}

// Contacts is the contact-list poll: every other user with the viewer's
// unread count and whether that user is typing to the viewer.
func (h *UserHandler) Contacts(c *gin.Context) {
	contacts, err := h.contacts.Contacts(c.Request.Context(), getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.JSON(c, contacts)
}

func (h *UserHandler) Search(c *gin.Context) {
	results, err := h.contacts.Search(c.Request.Context(), getUserID(c), c.Query("q"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.JSON(c, results)
}
