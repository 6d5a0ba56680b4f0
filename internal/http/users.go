package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dexbook/dexbook/internal/database/users"
)

// UsersController maintains the user rows the library references.
// Login and sessions live outside this service.
type UsersController struct {
	repo *users.Repository
}

func NewUsersController(repo *users.Repository) *UsersController {
	return &UsersController{repo: repo}
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// Register creates a new user account.
func (controller *UsersController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": "username, email and a password of at least 6 characters are required"})
		return
	}

	user, err := controller.repo.Create(req.Username, req.Email, req.Password)
	if errors.Is(err, users.ErrDuplicate) {
		c.IndentedJSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": "could not create the account"})
		return
	}
	c.IndentedJSON(http.StatusCreated, user)
}

// EmailExists reports whether an account with the given email is already
// registered. Backs the pre-registration availability check.
func (controller *UsersController) EmailExists(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}

	exists, err := controller.repo.EmailExists(email)
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": "could not check the email"})
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"exists": exists})
}
