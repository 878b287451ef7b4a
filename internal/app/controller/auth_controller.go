package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/municipio/patentes-backend/internal/app/service"
	"github.com/municipio/patentes-backend/internal/errors"
	"github.com/municipio/patentes-backend/internal/middleware"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates the operator account and returns a JWT.
// POST /api/v1/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid login request", map[string]interface{}{
			"error": err.Error(),
		})
		errors.BadRequest(c, errors.ValidationRequired, "Debes ingresar usuario y contraseña.")
		return
	}

	token, err := ctrl.authService.Login(req.Username, req.Password)
	if err != nil {
		log.Warn("Login failed", map[string]interface{}{
			"username": req.Username,
		})
		errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthInvalidCredentials, "Usuario o contraseña incorrectos.")
		return
	}

	log.Info("Operator logged in", map[string]interface{}{
		"username": req.Username,
	})

	c.JSON(http.StatusOK, gin.H{
		"token": token,
	})
}
