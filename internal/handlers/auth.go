package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/vaughan-dsouza/expensely/internal/auth"
	"github.com/vaughan-dsouza/expensely/internal/middleware"
	"github.com/vaughan-dsouza/expensely/internal/models"
	"github.com/vaughan-dsouza/expensely/internal/store"
	"github.com/vaughan-dsouza/expensely/internal/utils"
	"go.uber.org/zap"
)

const (
	msgDuplicateIdentity  = "Username or Email already registered"
	msgInvalidCredentials = "Invalid email or password"
	msgTokenGeneration    = "Token generation failed"
	msgLoginFailed        = "Login failed"
)

type AuthHandler struct {
	users  userStore
	hasher *auth.Hasher
	tokens *auth.TokenService
	log    *zap.Logger
}

func NewAuthHandler(users userStore, hasher *auth.Hasher, tokens *auth.TokenService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, hasher: hasher, tokens: tokens, log: log}
}

// ----------- Request/Response DTOs -------------

type signUpReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *signUpReq) validate() error {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = store.NormalizeEmail(r.Email)

	switch {
	case r.Username == "":
		return errors.New("username is required")
	case r.Email == "":
		return errors.New("email is required")
	case !strings.Contains(r.Email, "@"):
		return errors.New("email is invalid")
	case r.Password == "":
		return errors.New("password is required")
	case len(r.Password) > auth.MaxPasswordBytes:
		return errors.New("password must be at most 72 bytes")
	}
	return nil
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *loginReq) validate() error {
	r.Email = store.NormalizeEmail(r.Email)

	switch {
	case r.Email == "":
		return errors.New("email is required")
	case r.Password == "":
		return errors.New("password is required")
	}
	return nil
}

type userResp struct {
	ID       string      `json:"id"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
}

type authResp struct {
	Message     string   `json:"message"`
	AccessToken string   `json:"accessToken"`
	User        userResp `json:"user"`
}

func toUserResp(u models.User) userResp {
	return userResp{ID: u.ID, Username: u.Username, Role: u.Role}
}

// -------------- SIGN UP ----------------------

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpReq
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.validate(); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		serverError(w, r, h.log, "signup: hash password", err)
		return
	}

	u, err := h.users.CreateUser(r.Context(), models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hash,
		Role:     models.RoleUser,
	})
	if errors.Is(err, store.ErrDuplicateIdentity) {
		utils.JSONError(w, http.StatusForbidden, msgDuplicateIdentity)
		return
	}
	if err != nil {
		serverError(w, r, h.log, "signup: create user", err)
		return
	}

	token, err := h.tokens.Issue(u)
	if err != nil {
		h.log.Error("signup: issue token", zap.Error(err), zap.String("user_id", u.ID))
		utils.JSONError(w, http.StatusBadRequest, msgTokenGeneration)
		return
	}

	h.log.Info("user registered", zap.String("user_id", u.ID))
	utils.JSON(w, http.StatusCreated, authResp{
		Message:     "Successfully registered new user",
		AccessToken: token,
		User:        toUserResp(u),
	})
}

// -------------- LOGIN ------------------------

// Login answers an unknown email and a wrong password identically, down to
// the time spent hashing.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.validate(); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	u, err := h.users.FindByEmail(r.Context(), req.Email)
	if errors.Is(err, store.ErrNotFound) {
		h.hasher.Equalize(req.Password)
		utils.JSONError(w, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}
	if err != nil {
		serverError(w, r, h.log, "login: find user", err)
		return
	}

	if !h.hasher.Verify(req.Password, u.Password) {
		utils.JSONError(w, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}

	token, err := h.tokens.Issue(u)
	if err != nil {
		h.log.Error("login: issue token", zap.Error(err), zap.String("user_id", u.ID))
		utils.JSONError(w, http.StatusBadRequest, msgLoginFailed)
		return
	}

	utils.JSON(w, http.StatusOK, authResp{
		Message:     "Successfully logged in",
		AccessToken: token,
		User:        toUserResp(u),
	})
}

// -------------- ME (protected) ----------------

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, middleware.MsgNotLoggedIn)
		return
	}

	u, err := h.users.FindByID(r.Context(), uid)
	if errors.Is(err, store.ErrNotFound) {
		utils.JSONError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		serverError(w, r, h.log, "me: find user", err)
		return
	}

	utils.JSON(w, http.StatusOK, u)
}
