package store

import (
	"fmt"

	"example.com/socialnet/internal/models"
	"github.com/gocql/gocql"
)

// --- User directory operations ---

// CreateUser inserts a new account. Username and email uniqueness is
// enforced with CAS reservations; a losing race returns ErrConflict.
func (s *Store) CreateUser(u models.User) error {
	result := make(map[string]interface{})
	applied, err := s.Session.Query(`
		INSERT INTO users_by_username (username, user_id)
		VALUES (?, ?) IF NOT EXISTS`,
		u.Username, u.ID,
	).MapScanCAS(result)
	if err != nil {
		logg.Error("store", "Failed to reserve username", err)
		return err
	}
	if !applied {
		return fmt.Errorf("username %w", ErrConflict)
	}

	result = make(map[string]interface{})
	applied, err = s.Session.Query(`
		INSERT INTO users_by_email (email, user_id)
		VALUES (?, ?) IF NOT EXISTS`,
		u.Email, u.ID,
	).MapScanCAS(result)
	if err != nil {
		logg.Error("store", "Failed to reserve email", err)
		return err
	}
	if !applied {
		// Release the username reservation so the name is not burned.
		_ = s.Session.Query(`DELETE FROM users_by_username WHERE username = ?`, u.Username).Exec()
		return fmt.Errorf("email %w", ErrConflict)
	}

	err = s.Session.Query(`
		INSERT INTO users (user_id, username, full_name, email, password,
			bio, link, profile_image, cover_image, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.FullName, u.Email, u.Password,
		u.Bio, u.Link, u.ProfileImage, u.CoverImage, u.Created,
	).Exec()
	if err != nil {
		logg.Error("store", "Failed to create user in main table", err)
		return err
	}

	logg.Info("store", "User created successfully (username anonymized)")
	return nil
}

func (s *Store) scanUser(id string) (models.User, error) {
	var u models.User
	err := s.Session.Query(`
		SELECT user_id, username, full_name, email, password, bio, link,
			profile_image, cover_image, followers, following, liked_posts, created_at
		FROM users WHERE user_id = ?`,
		id,
	).Scan(&u.ID, &u.Username, &u.FullName, &u.Email, &u.Password, &u.Bio, &u.Link,
		&u.ProfileImage, &u.CoverImage, &u.Followers, &u.Following, &u.LikedPosts, &u.Created)
	if err != nil {
		if err == gocql.ErrNotFound {
			return models.User{}, fmt.Errorf("user %w", ErrNotFound)
		}
		logg.Error("store", "Failed to query user", err)
		return models.User{}, err
	}
	return u, nil
}

func (s *Store) GetUser(id string) (models.User, error) {
	return s.scanUser(id)
}

// GetUserByUsername resolves the username index, consulting the profile
// cache first. Cached entries may lag behind edge mutations by up to
// the cache TTL.
func (s *Store) GetUserByUsername(username string) (models.User, error) {
	if s.cache != nil {
		if u, ok := s.cache.GetProfile(username); ok {
			return u, nil
		}
	}

	var id string
	err := s.Session.Query(
		`SELECT user_id FROM users_by_username WHERE username = ?`,
		username,
	).Scan(&id)
	if err != nil {
		if err == gocql.ErrNotFound {
			return models.User{}, fmt.Errorf("user %w", ErrNotFound)
		}
		logg.Error("store", "Failed to query user by username", err)
		return models.User{}, err
	}

	u, err := s.scanUser(id)
	if err != nil {
		return models.User{}, err
	}

	if s.cache != nil {
		s.cache.SetProfile(u)
	}
	return u, nil
}

// UpdateProfile rewrites the mutable profile fields.
func (s *Store) UpdateProfile(u models.User) error {
	err := s.Session.Query(`
		UPDATE users SET full_name = ?, bio = ?, link = ?,
			profile_image = ?, cover_image = ?
		WHERE user_id = ?`,
		u.FullName, u.Bio, u.Link, u.ProfileImage, u.CoverImage, u.ID,
	).Exec()
	if err != nil {
		logg.Error("store", "Failed to update profile", err)
		return err
	}

	if s.cache != nil {
		s.cache.DropProfile(u.Username)
	}

	logg.Info("store", "Profile updated (username anonymized)")
	return nil
}

// --- Follow edge operations ---

// AddFollowEdge writes both sides of the follower relation in a single
// logged batch so the mirror invariant cannot be left half applied.
func (s *Store) AddFollowEdge(followerID, followeeID string) error {
	batch := s.Session.NewBatch(gocql.LoggedBatch)
	batch.Query(`UPDATE users SET following = following + ? WHERE user_id = ?`,
		[]string{followeeID}, followerID)
	batch.Query(`UPDATE users SET followers = followers + ? WHERE user_id = ?`,
		[]string{followerID}, followeeID)

	if err := s.Session.ExecuteBatch(batch); err != nil {
		logg.Error("store", "Failed to add follow edge", err)
		return err
	}

	logg.Info("store", "Follow edge added (user IDs anonymized)")
	return nil
}

func (s *Store) RemoveFollowEdge(followerID, followeeID string) error {
	batch := s.Session.NewBatch(gocql.LoggedBatch)
	batch.Query(`UPDATE users SET following = following - ? WHERE user_id = ?`,
		[]string{followeeID}, followerID)
	batch.Query(`UPDATE users SET followers = followers - ? WHERE user_id = ?`,
		[]string{followerID}, followeeID)

	if err := s.Session.ExecuteBatch(batch); err != nil {
		logg.Error("store", "Failed to remove follow edge", err)
		return err
	}

	logg.Info("store", "Follow edge removed (user IDs anonymized)")
	return nil
}

// SampleUsers returns up to limit users in token order, which for a
// hash partitioner is an effectively random slice of the directory.
func (s *Store) SampleUsers(limit int) ([]models.User, error) {
	iter := s.Session.Query(`
		SELECT user_id, username, full_name, profile_image, followers, following
		FROM users LIMIT ?`,
		limit,
	).Iter()

	var res []models.User
	var u models.User
	for iter.Scan(&u.ID, &u.Username, &u.FullName, &u.ProfileImage, &u.Followers, &u.Following) {
		res = append(res, u)
		u = models.User{}
	}

	if err := iter.Close(); err != nil {
		logg.Error("store", "Failed to sample users", err)
		return nil, err
	}
	return res, nil
}
