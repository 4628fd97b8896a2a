package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// UserHandler serves registration, login and author subscriptions.
type UserHandler struct {
	auth          service.IAuthService
	subscriptions service.ISubscriptionService
}

func NewUserHandler(auth service.IAuthService, subscriptions service.ISubscriptionService) *UserHandler {
	return &UserHandler{auth: auth, subscriptions: subscriptions}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	required := middleware.AuthMiddleware(h.auth)

	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}

	users := router.Group("/users")
	{
		users.GET("/me", required, h.Me)
		users.POST("/:id/subscribe", required, h.Subscribe)
		users.DELETE("/:id/subscribe", required, h.Unsubscribe)
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, toUserResponse(user))
}

func (h *UserHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.TokenResponse{AuthToken: token})
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	user, err := h.auth.GetUser(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	authorID, err := pathID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	userID, _ := middleware.UserID(c)

	if err := h.subscriptions.Subscribe(c.Request.Context(), userID, authorID); err != nil {
		_ = c.Error(err)
		return
	}

	author, err := h.auth.GetUser(c.Request.Context(), authorID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, types.AuthorResponse{
		ID:           author.ID,
		Email:        author.Email,
		Username:     author.Username,
		FirstName:    author.FirstName,
		LastName:     author.LastName,
		IsSubscribed: true,
	})
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	authorID, err := pathID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	userID, _ := middleware.UserID(c)

	if err := h.subscriptions.Unsubscribe(c.Request.Context(), userID, authorID); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func toUserResponse(u *models.User) types.UserResponse {
	return types.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
