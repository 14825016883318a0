package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-api/internal/domain"
	userrepo "storefront-api/internal/repository/user"
	usersvc "storefront-api/internal/service/user"
)

type registerRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func registerHandler(svc *usersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		created, err := svc.Register(c.Request.Context(), usersvc.RegisterInput{
			Email:     req.Email,
			Password:  req.Password,
			FirstName: req.FirstName,
			LastName:  req.LastName,
		})
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondData(c, http.StatusCreated, created)
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func loginHandler(svc *usersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		session, err := svc.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondData(c, http.StatusOK, gin.H{
			"token":     session.Token,
			"expiresAt": session.ExpiresAt,
			"user":      session.User,
		})
	}
}

func logoutHandler(svc *usersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Logout(c.Request.Context(), bearerToken(c)); err != nil {
			respondServiceError(c, err)
			return
		}
		respondOK(c)
	}
}

func meHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		respondData(c, http.StatusOK, currentUser(c))
	}
}

type profileRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

func updateProfileHandler(svc *usersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req profileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		updated, err := svc.UpdateProfile(c.Request.Context(), currentUser(c).ID, usersvc.ProfileInput{
			FirstName: req.FirstName,
			LastName:  req.LastName,
		})
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondData(c, http.StatusOK, updated)
	}
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

func changePasswordHandler(svc *usersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req changePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		if err := svc.ChangePassword(c.Request.Context(), currentUser(c).ID, req.CurrentPassword, req.NewPassword); err != nil {
			respondServiceError(c, err)
			return
		}
		respondOK(c)
	}
}

func adminListUsersHandler(svc *usersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		offset, limit := pageParams(c)
		users, total, err := svc.List(c.Request.Context(), userrepo.ListFilter{
			Role:   domain.Role(c.Query("role")),
			Status: domain.UserStatus(c.Query("status")),
			Query:  c.Query("q"),
			Offset: offset,
			Limit:  limit,
		})
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondList(c, users, total, offset, limit)
	}
}

type adminUserRequest struct {
	Role   *domain.Role       `json:"role"`
	Status *domain.UserStatus `json:"status"`
}

func adminUpdateUserHandler(svc *usersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req adminUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		updated, err := svc.AdminUpdate(c.Request.Context(), c.Param("id"), usersvc.AdminUpdateInput{
			Role:   req.Role,
			Status: req.Status,
		})
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondData(c, http.StatusOK, updated)
	}
}
