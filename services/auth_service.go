package services

import (
	"context"
	"time"

	"capidrive/models"
	"capidrive/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthService covers registration, login, and the identity lookups the
// middleware and sharing endpoints need.
type AuthService struct {
	users UserStore
}

func NewAuthService(users UserStore) *AuthService {
	return &AuthService{users: users}
}

// Register creates an account and returns it with a signed token. Username
// and email must both be unused.
func (as *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	if _, err := as.users.GetByUsername(ctx, req.Username); err == nil {
		return nil, ErrUserExists
	} else if !isNoDocuments(err) {
		return nil, err
	}
	if _, err := as.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrUserExists
	} else if !isNoDocuments(err) {
		return nil, err
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		Username:  req.Username,
		Email:     req.Email,
		Password:  hash,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := as.users.Insert(ctx, user); err != nil {
		return nil, err
	}

	token, err := utils.GenerateAccessToken(user.ID, user.Email, user.Username)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{User: user, Token: token}, nil
}

// Login verifies credentials and returns the user with a fresh token. A
// wrong username and a wrong password produce the same error.
func (as *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	user, err := as.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if isNoDocuments(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if !utils.CheckPasswordHash(req.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateAccessToken(user.ID, user.Email, user.Username)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{User: user, Token: token}, nil
}

// GetUser loads an active user by id for the auth middleware.
func (as *AuthService) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := as.users.GetByID(ctx, id)
	if err != nil {
		if isNoDocuments(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// LookupUsername resolves a username to a user, for grant and share-link
// target pickers.
func (as *AuthService) LookupUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := as.users.GetByUsername(ctx, username)
	if err != nil {
		if isNoDocuments(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
