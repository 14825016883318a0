package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	notificationsvc "storefront-api/internal/service/notification"
)

func listNotificationsHandler(svc *notificationsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		offset, limit := pageParams(c)
		unreadOnly := c.Query("unread") == "true"
		items, total, err := svc.List(c.Request.Context(), currentUser(c).ID, unreadOnly, offset, limit)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondList(c, items, total, offset, limit)
	}
}

func unreadCountHandler(svc *notificationsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := svc.CountUnread(c.Request.Context(), currentUser(c).ID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondData(c, http.StatusOK, gin.H{"count": count})
	}
}

func markNotificationReadHandler(svc *notificationsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.MarkRead(c.Request.Context(), currentUser(c).ID, c.Param("id")); err != nil {
			respondServiceError(c, err)
			return
		}
		respondOK(c)
	}
}

func markAllNotificationsReadHandler(svc *notificationsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := svc.MarkAllRead(c.Request.Context(), currentUser(c).ID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondData(c, http.StatusOK, gin.H{"updated": count})
	}
}
