package store

import (
	"fmt"

	"example.com/socialnet/internal/models"
	"github.com/gocql/gocql"
)

// Notifications are written twice: notifications_by_user serves the
// per-destination listing, notifications (by id) lets deleteOne tell
// a missing notification apart from someone else's.

func (s *Store) AddNotification(n models.Notification) error {
	batch := s.Session.NewBatch(gocql.LoggedBatch)
	batch.Query(`
		INSERT INTO notifications (notification_id, from_id, to_id, kind, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID, n.From, n.To, n.Kind, n.Read, n.Created)
	batch.Query(`
		INSERT INTO notifications_by_user (to_id, created_at, notification_id, from_id, kind, read)
		VALUES (?, ?, ?, ?, ?, ?)`,
		n.To, n.Created, n.ID, n.From, n.Kind, n.Read)

	if err := s.Session.ExecuteBatch(batch); err != nil {
		logg.Error("store", "Failed to add notification", err)
		return err
	}

	logg.Info("store", "Notification added (IDs anonymized)")
	return nil
}

// GetNotifications returns a user's notifications, newest first.
func (s *Store) GetNotifications(toID string) ([]models.Notification, error) {
	iter := s.Session.Query(`
		SELECT notification_id, from_id, kind, read, created_at
		FROM notifications_by_user WHERE to_id = ?`,
		toID,
	).Iter()

	var res []models.Notification
	var n models.Notification
	for iter.Scan(&n.ID, &n.From, &n.Kind, &n.Read, &n.Created) {
		n.To = toID
		res = append(res, n)
	}

	if err := iter.Close(); err != nil {
		logg.Error("store", "Failed to get notifications", err)
		return nil, err
	}
	return res, nil
}

// MarkNotificationsRead flips the read flag on every unread
// notification addressed to the user, in both tables.
func (s *Store) MarkNotificationsRead(toID string) error {
	ns, err := s.GetNotifications(toID)
	if err != nil {
		return err
	}

	for _, n := range ns {
		if n.Read {
			continue
		}
		batch := s.Session.NewBatch(gocql.LoggedBatch)
		batch.Query(`UPDATE notifications SET read = true WHERE notification_id = ?`, n.ID)
		batch.Query(`
			UPDATE notifications_by_user SET read = true
			WHERE to_id = ? AND created_at = ? AND notification_id = ?`,
			toID, n.Created, n.ID)
		if err := s.Session.ExecuteBatch(batch); err != nil {
			logg.Error("store", "Failed to mark notification read", err)
			return err
		}
	}
	return nil
}

func (s *Store) GetNotification(id string) (models.Notification, error) {
	var n models.Notification
	err := s.Session.Query(`
		SELECT notification_id, from_id, to_id, kind, read, created_at
		FROM notifications WHERE notification_id = ?`,
		id,
	).Scan(&n.ID, &n.From, &n.To, &n.Kind, &n.Read, &n.Created)
	if err != nil {
		if err == gocql.ErrNotFound {
			return models.Notification{}, fmt.Errorf("notification %w", ErrNotFound)
		}
		logg.Error("store", "Failed to query notification", err)
		return models.Notification{}, err
	}
	return n, nil
}

func (s *Store) DeleteNotification(n models.Notification) error {
	batch := s.Session.NewBatch(gocql.LoggedBatch)
	batch.Query(`DELETE FROM notifications WHERE notification_id = ?`, n.ID)
	batch.Query(`
		DELETE FROM notifications_by_user
		WHERE to_id = ? AND created_at = ? AND notification_id = ?`,
		n.To, n.Created, n.ID)

	if err := s.Session.ExecuteBatch(batch); err != nil {
		logg.Error("store", "Failed to delete notification", err)
		return err
	}

	logg.Info("store", "Notification deleted (ID anonymized)")
	return nil
}

// DeleteNotifications drops the user's whole partition plus the
// matching by-id rows.
func (s *Store) DeleteNotifications(toID string) error {
	ns, err := s.GetNotifications(toID)
	if err != nil {
		return err
	}

	for _, n := range ns {
		if err := s.Session.Query(
			`DELETE FROM notifications WHERE notification_id = ?`, n.ID,
		).Exec(); err != nil {
			logg.Error("store", "Failed to delete notification by id", err)
			return err
		}
	}

	if err := s.Session.Query(
		`DELETE FROM notifications_by_user WHERE to_id = ?`, toID,
	).Exec(); err != nil {
		logg.Error("store", "Failed to delete notification partition", err)
		return err
	}

	logg.Info("store", "Notifications cleared (user ID anonymized)")
	return nil
}
