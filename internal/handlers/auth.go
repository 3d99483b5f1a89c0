package handlers

import (
	"errors"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-backoffice/internal/apperror"
	"github.com/ukydev/fleet-backoffice/internal/auth"
	"github.com/ukydev/fleet-backoffice/internal/contextutil"
	"github.com/ukydev/fleet-backoffice/internal/db"
	"github.com/ukydev/fleet-backoffice/internal/models"
	"github.com/ukydev/fleet-backoffice/internal/response"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	errInvalidCredentials = apperror.New(apperror.CodeUnauthorized, "invalid credentials", http.StatusUnauthorized)
	errAccountInactive    = apperror.New(apperror.CodeUnauthorized, "account is deactivated", http.StatusUnauthorized)
	errUserNotFound       = apperror.NotFound("user")
)

type updateProfileRequest struct {
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	Email     string `json:"email" validate:"omitempty,email"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService    *auth.Service
	userCollection db.UserCollection
	drivers        db.DriverCollection
	logger         log.FieldLogger
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service, userCollection db.UserCollection, drivers db.DriverCollection, logger log.FieldLogger) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		userCollection: userCollection,
		drivers:        drivers,
		logger:         logger,
	}
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := decode[models.LoginRequest](w, r)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}

	user, err := h.userCollection.FindUserByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			fail(w, r, h.logger, errInvalidCredentials)
			return
		}
		fail(w, r, h.logger, apperror.Internal(err))
		return
	}
	if !h.authService.CheckPassword(req.Password, user.PasswordHash) {
		fail(w, r, h.logger, errInvalidCredentials)
		return
	}
	if !user.IsActive {
		fail(w, r, h.logger, errAccountInactive)
		return
	}

	resp, err := h.issueTokens(user)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}

	if err := h.userCollection.UpdateLastLogin(r.Context(), user.ID.Hex()); err != nil {
		contextutil.Logger(r.Context(), h.logger).WithError(err).WithField("user_id", user.ID.Hex()).Warn("failed to update last login")
	}
	response.JSON(w, http.StatusOK, resp)
}

// Register creates an account. Driver and viewer accounts are
// self-service; admin and manager accounts need an admin's token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, err := decode[models.RegisterRequest](w, r)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	role := req.Role
	if role == models.RoleAdmin || role == models.RoleManager {
		claims, err := h.authService.ValidateToken(r.Header.Get("Authorization"))
		if err != nil || claims.Role != models.RoleAdmin {
			fail(w, r, h.logger, apperror.ErrForbidden)
			return
		}
	}

	user := &models.User{
		Username:  strings.TrimSpace(req.Username),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Role:      role,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if role == models.RoleDriver {
		if req.DriverID == "" {
			fail(w, r, h.logger, apperror.InvalidField("driver_id", "is required for driver accounts"))
			return
		}
		driverID, err := objectID("driver_id", req.DriverID)
		if err != nil {
			fail(w, r, h.logger, err)
			return
		}
		if _, err := h.drivers.FindDriverByID(r.Context(), driverID); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				fail(w, r, h.logger, apperror.ErrDriverNotFound)
				return
			}
			fail(w, r, h.logger, apperror.Internal(err))
			return
		}
		user.DriverID = &driverID
	}

	if taken, err := h.taken(r, user.Username, user.Email, primitive.NilObjectID); err != nil {
		fail(w, r, h.logger, err)
		return
	} else if taken != "" {
		fail(w, r, h.logger, apperror.Precondition(taken+" already exists"))
		return
	}

	user.PasswordHash, err = h.authService.HashPassword(req.Password)
	if err != nil {
		fail(w, r, h.logger, apperror.Internal(err))
		return
	}
	if err := h.userCollection.InsertUser(r.Context(), user); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			fail(w, r, h.logger, apperror.Precondition("username or email already exists"))
			return
		}
		fail(w, r, h.logger, apperror.Internal(err))
		return
	}

	resp, err := h.issueTokens(user)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	contextutil.Logger(r.Context(), h.logger).WithFields(log.Fields{"user_id": user.ID.Hex(), "role": user.Role}).Info("user registered")
	response.JSON(w, http.StatusCreated, resp)
}

// GetProfile returns the current user's profile
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, user)
}

// UpdateProfile updates the current user's profile
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	req, err := decode[updateProfileRequest](w, r)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	user, err := h.currentUser(r)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Email != "" {
		email := strings.ToLower(strings.TrimSpace(req.Email))
		if taken, err := h.taken(r, "", email, user.ID); err != nil {
			fail(w, r, h.logger, err)
			return
		} else if taken != "" {
			fail(w, r, h.logger, apperror.Precondition("email already exists"))
			return
		}
		user.Email = email
	}

	if err := h.userCollection.UpdateUser(r.Context(), user.ID.Hex(), *user); err != nil {
		fail(w, r, h.logger, apperror.Internal(err))
		return
	}
	response.JSON(w, http.StatusOK, user)
}

// ChangePassword changes the current user's password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	req, err := decode[changePasswordRequest](w, r)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	user, err := h.currentUser(r)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	if !h.authService.CheckPassword(req.CurrentPassword, user.PasswordHash) {
		fail(w, r, h.logger, apperror.New(apperror.CodeUnauthorized, "current password is incorrect", http.StatusUnauthorized))
		return
	}

	user.PasswordHash, err = h.authService.HashPassword(req.NewPassword)
	if err != nil {
		fail(w, r, h.logger, apperror.Internal(err))
		return
	}
	if err := h.userCollection.UpdateUser(r.Context(), user.ID.Hex(), *user); err != nil {
		fail(w, r, h.logger, apperror.Internal(err))
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
}

func (h *AuthHandler) issueTokens(user *models.User) (models.LoginResponse, error) {
	token, err := h.authService.GenerateToken(user)
	if err != nil {
		return models.LoginResponse{}, apperror.Internal(err)
	}
	refreshToken, err := h.authService.GenerateRefreshToken()
	if err != nil {
		return models.LoginResponse{}, apperror.Internal(err)
	}
	return models.LoginResponse{Token: token, RefreshToken: refreshToken, User: *user}, nil
}

func (h *AuthHandler) currentUser(r *http.Request) (*models.User, error) {
	claims, err := actor(r)
	if err != nil {
		return nil, err
	}
	user, err := h.userCollection.FindUserByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, errUserNotFound
		}
		return nil, apperror.Internal(err)
	}
	return user, nil
}

// taken reports which of username or email belongs to a user other than
// self. Empty values are not checked.
func (h *AuthHandler) taken(r *http.Request, username, email string, self primitive.ObjectID) (string, error) {
	checks := []struct {
		name  string
		value string
		find  func(string) (*models.User, error)
	}{
		{"username", username, func(v string) (*models.User, error) { return h.userCollection.FindUserByUsername(r.Context(), v) }},
		{"email", email, func(v string) (*models.User, error) { return h.userCollection.FindUserByEmail(r.Context(), v) }},
	}
	for _, c := range checks {
		if c.value == "" {
			continue
		}
		existing, err := c.find(c.value)
		switch {
		case errors.Is(err, db.ErrNotFound):
			continue
		case err != nil:
			return "", apperror.Internal(err)
		case existing.ID != self:
			return c.name, nil
		}
	}
	return "", nil
}
