package server

import (
	"net/http"

	"example.com/socialnet/internal/middleware"
)

// listNotificationsHandler handles GET /notifications. Listing marks
// every unread notification as read.
func (s *Server) listNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	notifications, err := s.engage.ListNotifications(userID)
	if err != nil {
		logg.Error("http/notifications", "Failed to list notifications", err)
		respondErr(w, err)
		return
	}

	respondOK(w, http.StatusOK, "", map[string]any{
		"total":         len(notifications),
		"notifications": notifications,
	})
}

// deleteNotificationsHandler handles DELETE /notifications.
func (s *Server) deleteNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	if err := s.engage.DeleteNotifications(userID); err != nil {
		logg.Error("http/notifications", "Failed to delete notifications", err)
		respondErr(w, err)
		return
	}

	respondOK(w, http.StatusOK, "Notifications deleted successfully!", nil)
}

// deleteNotificationHandler handles DELETE /notifications/{id}.
func (s *Server) deleteNotificationHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	notificationID := r.PathValue("id")

	if err := s.engage.DeleteNotification(userID, notificationID); err != nil {
		logg.Error("http/notifications", "Failed to delete notification", err)
		respondErr(w, err)
		return
	}

	respondOK(w, http.StatusOK, "Notification deleted successfully!", nil)
}
