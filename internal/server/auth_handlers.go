package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/homebuddy-dev/homebuddy/internal/auth"
	"github.com/homebuddy-dev/homebuddy/internal/models"
)

// Dashboards each role lands on after logging in
const (
	userDashboard     = "/Frontend/html/user/dashboard.html"
	providerDashboard = "/Frontend/html/provider/provider-dashboard.html"
	adminDashboard    = "/Frontend/html/admin/admin-dashboard.html"
)

const invalidCredentials = "Invalid email or password"

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required"`
	Address  string `json:"address"`
	Password string `json:"password" binding:"required"`
}

// RegisterResponse is returned on successful registration
type RegisterResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is returned by the user-only login
type LoginResponse struct {
	Message     string `json:"message"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      string `json:"user_id"`
	UserName    string `json:"user_name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
}

// UnifiedLoginResponse is returned by the unified login for every role
type UnifiedLoginResponse struct {
	Message     string `json:"message"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Role        string `json:"role"`
	UserID      string `json:"user_id,omitempty"`
	ProviderID  string `json:"provider_id,omitempty"`
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	Redirect    string `json:"redirect"`
}

// ProviderLoginResponse is returned by the legacy provider login
type ProviderLoginResponse struct {
	Message     string  `json:"message"`
	AccessToken string  `json:"access_token"`
	TokenType   string  `json:"token_type"`
	ProviderID  string  `json:"provider_id"`
	UserID      *string `json:"user_id"`
	FullName    string  `json:"full_name"`
}

// ProfileUpdateRequest replaces the editable profile fields
type ProfileUpdateRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone" binding:"required"`
	Address string `json:"address"`
}

// UserOut is the public view of a user
type UserOut struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Role    string `json:"role"`
}

func userOut(u *models.User) UserOut {
	return UserOut{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone, Address: u.Address, Role: u.Role}
}

// bindJSON decodes the body or answers 422 with the validation error
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		abortWithDetail(c, http.StatusUnprocessableEntity, err.Error())
		return false
	}
	return true
}

func (s *Server) internalError(c *gin.Context, err error, msg string) {
	s.logger.Error().Err(err).Str("request_id", c.GetString(requestIDKey)).Msg(msg)
	abortWithDetail(c, http.StatusInternalServerError, "Internal Server Error")
}

func (s *Server) issueToken(c *gin.Context, subject, role string) (string, bool) {
	token, err := auth.GenerateToken(subject, role)
	if err != nil {
		s.internalError(c, err, "Failed to generate token")
		return "", false
	}
	return token, true
}

func (s *Server) register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	email := models.NormalizeEmail(req.Email)

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		s.internalError(c, err, "Failed to check email")
		return
	}
	if count > 0 {
		abortWithDetail(c, http.StatusBadRequest, "Email already registered")
		return
	}

	if err := s.db.Model(&models.User{}).Where("phone = ?", req.Phone).Count(&count).Error; err != nil {
		s.internalError(c, err, "Failed to check phone")
		return
	}
	if count > 0 {
		abortWithDetail(c, http.StatusBadRequest, "Phone number already registered")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.internalError(c, err, "Failed to hash password")
		return
	}

	user := &models.User{
		Name:         req.Name,
		Email:        email,
		Phone:        req.Phone,
		Address:      req.Address,
		Role:         models.RoleUser,
		PasswordHash: hash,
	}
	if err := s.db.Create(user).Error; err != nil {
		s.internalError(c, err, "Failed to create user")
		return
	}

	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("User registered")

	c.JSON(http.StatusCreated, RegisterResponse{
		Message: "User registered successfully",
		UserID:  user.ID,
		Name:    user.Name,
		Email:   user.Email,
	})
}

func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	email := models.NormalizeEmail(req.Email)

	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			abortWithDetail(c, http.StatusUnauthorized, fmt.Sprintf("Account with email '%s' not found", email))
			return
		}
		s.internalError(c, err, "Failed to find user")
		return
	}

	if err := auth.VerifyPassword(req.Password, user.PasswordHash); err != nil {
		abortWithDetail(c, http.StatusUnauthorized, "Incorrect password. Please check and try again.")
		return
	}

	token, ok := s.issueToken(c, user.ID, models.RoleUser)
	if !ok {
		return
	}

	s.logger.Info().Str("user_id", user.ID).Msg("User logged in")

	c.JSON(http.StatusOK, LoginResponse{
		Message:     "Login successful",
		AccessToken: token,
		TokenType:   "bearer",
		UserID:      user.ID,
		UserName:    user.Name,
		Email:       user.Email,
		Role:        models.RoleUser,
	})
}

// unifiedLogin checks, in order, the configured admin credentials, the
// users table and the providers table.
func (s *Server) unifiedLogin(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	if req.Email == s.config.Server.AdminEmail && req.Password == s.config.Server.AdminPassword {
		token, ok := s.issueToken(c, models.RoleAdmin, models.RoleAdmin)
		if !ok {
			return
		}
		s.logger.Info().Msg("Admin logged in")
		c.JSON(http.StatusOK, UnifiedLoginResponse{
			Message:     "Login successful",
			AccessToken: token,
			TokenType:   "bearer",
			Role:        models.RoleAdmin,
			Redirect:    adminDashboard,
		})
		return
	}

	var user models.User
	err := s.db.Where("email = ?", models.NormalizeEmail(req.Email)).First(&user).Error
	switch {
	case err == nil:
		if auth.VerifyPassword(req.Password, user.PasswordHash) == nil {
			s.loginAsUser(c, &user)
			return
		}
		s.logger.Debug().Str("email", user.Email).Msg("User password mismatch")
	case !errors.Is(err, gorm.ErrRecordNotFound):
		s.internalError(c, err, "Failed to find user")
		return
	}

	var provider models.Provider
	err = s.db.Where("email = ?", req.Email).First(&provider).Error
	switch {
	case err == nil:
		if auth.VerifyPassword(req.Password, provider.PasswordHash) == nil {
			s.loginAsProvider(c, &provider)
			return
		}
		s.logger.Debug().Str("email", provider.Email).Msg("Provider password mismatch")
	case !errors.Is(err, gorm.ErrRecordNotFound):
		s.internalError(c, err, "Failed to find provider")
		return
	}

	abortWithDetail(c, http.StatusUnauthorized, invalidCredentials)
}

func (s *Server) loginAsUser(c *gin.Context, user *models.User) {
	token, ok := s.issueToken(c, user.ID, user.Role)
	if !ok {
		return
	}

	resp := UnifiedLoginResponse{
		Message:     "Login successful",
		AccessToken: token,
		TokenType:   "bearer",
		Role:        user.Role,
		UserID:      user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Redirect:    userDashboard,
	}

	switch user.Role {
	case models.RoleProvider:
		resp.Redirect = providerDashboard
		var provider models.Provider
		if err := s.db.Where("user_id = ?", user.ID).First(&provider).Error; err == nil {
			resp.ProviderID = provider.ID
		}
	case models.RoleAdmin:
		resp.Redirect = adminDashboard
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("User logged in")
	c.JSON(http.StatusOK, resp)
}

func (s *Server) loginAsProvider(c *gin.Context, provider *models.Provider) {
	token, ok := s.issueToken(c, provider.ID, models.RoleProvider)
	if !ok {
		return
	}

	resp := UnifiedLoginResponse{
		Message:     "Login successful",
		AccessToken: token,
		TokenType:   "bearer",
		Role:        models.RoleProvider,
		ProviderID:  provider.ID,
		Name:        provider.FullName,
		Email:       provider.Email,
		Redirect:    providerDashboard,
	}
	if provider.UserID != nil {
		resp.UserID = *provider.UserID
	}

	s.logger.Info().Str("provider_id", provider.ID).Msg("Provider logged in")
	c.JSON(http.StatusOK, resp)
}

func (s *Server) providerLogin(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	var provider models.Provider
	if err := s.db.Where("email = ?", req.Email).First(&provider).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			abortWithDetail(c, http.StatusUnauthorized, invalidCredentials)
			return
		}
		s.internalError(c, err, "Failed to find provider")
		return
	}

	if err := auth.VerifyPassword(req.Password, provider.PasswordHash); err != nil {
		abortWithDetail(c, http.StatusUnauthorized, invalidCredentials)
		return
	}

	token, ok := s.issueToken(c, provider.ID, models.RoleProvider)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, ProviderLoginResponse{
		Message:     "Login successful",
		AccessToken: token,
		TokenType:   "bearer",
		ProviderID:  provider.ID,
		UserID:      provider.UserID,
		FullName:    provider.FullName,
	})
}

func (s *Server) getProfile(c *gin.Context) {
	c.JSON(http.StatusOK, userOut(currentUser(c)))
}

func (s *Server) updateProfile(c *gin.Context) {
	var req ProfileUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	user := currentUser(c)
	email := models.NormalizeEmail(req.Email)

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ? AND id <> ?", email, user.ID).Count(&count).Error; err != nil {
		s.internalError(c, err, "Failed to check email")
		return
	}
	if count > 0 {
		abortWithDetail(c, http.StatusBadRequest, "Email already registered")
		return
	}
	if err := s.db.Model(&models.User{}).Where("phone = ? AND id <> ?", req.Phone, user.ID).Count(&count).Error; err != nil {
		s.internalError(c, err, "Failed to check phone")
		return
	}
	if count > 0 {
		abortWithDetail(c, http.StatusBadRequest, "Phone number already registered")
		return
	}

	user.Name = req.Name
	user.Email = email
	user.Phone = req.Phone
	user.Address = req.Address
	if err := s.db.Save(user).Error; err != nil {
		s.internalError(c, err, "Failed to update profile")
		return
	}

	s.logger.Info().Str("user_id", user.ID).Msg("Profile updated")
	c.JSON(http.StatusOK, userOut(user))
}
