package store

import (
	"errors"
	"fmt"

	"example.com/socialnet/internal/models"
)

// MockStore simulates Cassandra operations for testing. Edge mutations
// apply both sides, matching the logged-batch behavior of the real store.
type MockStore struct {
	Users         map[string]models.User         // by user id
	Posts         map[string]models.Post         // by post id
	Comments      map[string][]models.Comment    // post id -> append order
	Notifications map[string]models.Notification // by notification id
	NotifOrder    map[string][]string            // to id -> notification ids, oldest first
	Feed          map[string][]models.Post
	ShouldFail    bool // flag to simulate failures
}

// NewMock initializes a new mock store
func NewMock() *MockStore {
	return &MockStore{
		Users:         make(map[string]models.User),
		Posts:         make(map[string]models.Post),
		Comments:      make(map[string][]models.Comment),
		Notifications: make(map[string]models.Notification),
		NotifOrder:    make(map[string][]string),
		Feed:          make(map[string][]models.Post),
	}
}

func (m *MockStore) Close() {}

// --- set helpers ---

func addToSet(set []string, v string) []string {
	for _, s := range set {
		if s == v {
			return set
		}
	}
	return append(set, v)
}

func removeFromSet(set []string, v string) []string {
	out := set[:0]
	for _, s := range set {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}

// --- User directory ---

func (m *MockStore) CreateUser(u models.User) error {
	if m.ShouldFail {
		return errors.New("mock: create user failed")
	}
	for _, existing := range m.Users {
		if existing.Username == u.Username {
			return fmt.Errorf("username %w", ErrConflict)
		}
		if existing.Email == u.Email {
			return fmt.Errorf("email %w", ErrConflict)
		}
	}
	m.Users[u.ID] = u
	return nil
}

func (m *MockStore) GetUser(id string) (models.User, error) {
	if m.ShouldFail {
		return models.User{}, errors.New("mock: get user failed")
	}
	u, ok := m.Users[id]
	if !ok {
		return models.User{}, fmt.Errorf("user %w", ErrNotFound)
	}
	return u, nil
}

func (m *MockStore) GetUserByUsername(username string) (models.User, error) {
	if m.ShouldFail {
		return models.User{}, errors.New("mock: get user by username failed")
	}
	for _, u := range m.Users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, fmt.Errorf("user %w", ErrNotFound)
}

func (m *MockStore) UpdateProfile(u models.User) error {
	if m.ShouldFail {
		return errors.New("mock: update profile failed")
	}
	existing, ok := m.Users[u.ID]
	if !ok {
		return fmt.Errorf("user %w", ErrNotFound)
	}
	existing.FullName = u.FullName
	existing.Bio = u.Bio
	existing.Link = u.Link
	existing.ProfileImage = u.ProfileImage
	existing.CoverImage = u.CoverImage
	m.Users[u.ID] = existing
	return nil
}

func (m *MockStore) AddFollowEdge(followerID, followeeID string) error {
	if m.ShouldFail {
		return errors.New("mock: add follow edge failed")
	}
	follower := m.Users[followerID]
	followee := m.Users[followeeID]
	follower.Following = addToSet(follower.Following, followeeID)
	followee.Followers = addToSet(followee.Followers, followerID)
	m.Users[followerID] = follower
	m.Users[followeeID] = followee
	return nil
}

func (m *MockStore) RemoveFollowEdge(followerID, followeeID string) error {
	if m.ShouldFail {
		return errors.New("mock: remove follow edge failed")
	}
	follower := m.Users[followerID]
	followee := m.Users[followeeID]
	follower.Following = removeFromSet(follower.Following, followeeID)
	followee.Followers = removeFromSet(followee.Followers, followerID)
	m.Users[followerID] = follower
	m.Users[followeeID] = followee
	return nil
}

func (m *MockStore) SampleUsers(limit int) ([]models.User, error) {
	if m.ShouldFail {
		return nil, errors.New("mock: sample users failed")
	}
	var res []models.User
	for _, u := range m.Users {
		if len(res) >= limit {
			break
		}
		res = append(res, u)
	}
	return res, nil
}

// --- Post store ---

func (m *MockStore) AddPost(p models.Post) error {
	if m.ShouldFail {
		return errors.New("mock: add post failed")
	}
	m.Posts[p.ID] = p
	return nil
}

func (m *MockStore) GetPost(id string) (models.Post, error) {
	if m.ShouldFail {
		return models.Post{}, errors.New("mock: get post failed")
	}
	p, ok := m.Posts[id]
	if !ok {
		return models.Post{}, fmt.Errorf("post %w", ErrNotFound)
	}
	return p, nil
}

func (m *MockStore) DeletePost(p models.Post) error {
	if m.ShouldFail {
		return errors.New("mock: delete post failed")
	}
	delete(m.Posts, p.ID)
	delete(m.Comments, p.ID)
	return nil
}

func (m *MockStore) GetAllPosts(limit int) ([]models.Post, error) {
	if m.ShouldFail {
		return nil, errors.New("mock: get all posts failed")
	}
	var res []models.Post
	for _, p := range m.Posts {
		if len(res) >= limit {
			break
		}
		res = append(res, p)
	}
	return res, nil
}

func (m *MockStore) GetPostsByAuthor(authorID string, limit int) ([]models.Post, error) {
	if m.ShouldFail {
		return nil, errors.New("mock: get posts by author failed")
	}
	var res []models.Post
	for _, p := range m.Posts {
		if p.AuthorID == authorID && len(res) < limit {
			res = append(res, p)
		}
	}
	return res, nil
}

func (m *MockStore) GetPostsByIDs(ids []string) ([]models.Post, error) {
	if m.ShouldFail {
		return nil, errors.New("mock: get posts by ids failed")
	}
	var res []models.Post
	for _, id := range ids {
		if p, ok := m.Posts[id]; ok {
			res = append(res, p)
		}
	}
	return res, nil
}

func (m *MockStore) AddLikeEdge(userID, postID string) error {
	if m.ShouldFail {
		return errors.New("mock: add like edge failed")
	}
	p := m.Posts[postID]
	u := m.Users[userID]
	p.Likes = addToSet(p.Likes, userID)
	u.LikedPosts = addToSet(u.LikedPosts, postID)
	m.Posts[postID] = p
	m.Users[userID] = u
	return nil
}

func (m *MockStore) RemoveLikeEdge(userID, postID string) error {
	if m.ShouldFail {
		return errors.New("mock: remove like edge failed")
	}
	p := m.Posts[postID]
	u := m.Users[userID]
	p.Likes = removeFromSet(p.Likes, userID)
	u.LikedPosts = removeFromSet(u.LikedPosts, postID)
	m.Posts[postID] = p
	m.Users[userID] = u
	return nil
}

func (m *MockStore) AddComment(c models.Comment) error {
	if m.ShouldFail {
		return errors.New("mock: add comment failed")
	}
	m.Comments[c.PostID] = append(m.Comments[c.PostID], c)
	return nil
}

func (m *MockStore) GetComments(postID string) ([]models.Comment, error) {
	if m.ShouldFail {
		return nil, errors.New("mock: get comments failed")
	}
	return m.Comments[postID], nil
}

func (m *MockStore) AddToFeed(userID string, post models.Post) error {
	if m.ShouldFail {
		return errors.New("mock: add to feed failed")
	}
	m.Feed[userID] = append(m.Feed[userID], post)
	return nil
}

func (m *MockStore) GetFeed(userID string, limit int) ([]models.Post, error) {
	if m.ShouldFail {
		return nil, errors.New("mock: get feed failed")
	}
	posts := m.Feed[userID]
	if len(posts) > limit {
		return posts[:limit], nil
	}
	return posts, nil
}

// --- Notification sink ---

func (m *MockStore) AddNotification(n models.Notification) error {
	if m.ShouldFail {
		return errors.New("mock: add notification failed")
	}
	m.Notifications[n.ID] = n
	m.NotifOrder[n.To] = append(m.NotifOrder[n.To], n.ID)
	return nil
}

func (m *MockStore) GetNotifications(toID string) ([]models.Notification, error) {
	if m.ShouldFail {
		return nil, errors.New("mock: get notifications failed")
	}
	ids := m.NotifOrder[toID]
	res := make([]models.Notification, 0, len(ids))
	// newest first, like the clustering order of the real table
	for i := len(ids) - 1; i >= 0; i-- {
		if n, ok := m.Notifications[ids[i]]; ok {
			res = append(res, n)
		}
	}
	return res, nil
}

func (m *MockStore) MarkNotificationsRead(toID string) error {
	if m.ShouldFail {
		return errors.New("mock: mark notifications read failed")
	}
	for id, n := range m.Notifications {
		if n.To == toID && !n.Read {
			n.Read = true
			m.Notifications[id] = n
		}
	}
	return nil
}

func (m *MockStore) GetNotification(id string) (models.Notification, error) {
	if m.ShouldFail {
		return models.Notification{}, errors.New("mock: get notification failed")
	}
	n, ok := m.Notifications[id]
	if !ok {
		return models.Notification{}, fmt.Errorf("notification %w", ErrNotFound)
	}
	return n, nil
}

func (m *MockStore) DeleteNotification(n models.Notification) error {
	if m.ShouldFail {
		return errors.New("mock: delete notification failed")
	}
	delete(m.Notifications, n.ID)
	m.NotifOrder[n.To] = removeFromSet(m.NotifOrder[n.To], n.ID)
	return nil
}

func (m *MockStore) DeleteNotifications(toID string) error {
	if m.ShouldFail {
		return errors.New("mock: delete notifications failed")
	}
	for _, id := range m.NotifOrder[toID] {
		delete(m.Notifications, id)
	}
	delete(m.NotifOrder, toID)
	return nil
}

// ---------------------------------------------
// MockStoreFail always returns errors for negative tests
type MockStoreFail struct{}

func (m *MockStoreFail) Close() {}

func (m *MockStoreFail) CreateUser(u models.User) error {
	return errors.New("mock store create user failed")
}

func (m *MockStoreFail) GetUser(id string) (models.User, error) {
	return models.User{}, errors.New("mock store get user failed")
}

func (m *MockStoreFail) GetUserByUsername(username string) (models.User, error) {
	return models.User{}, errors.New("mock store get user by username failed")
}

func (m *MockStoreFail) UpdateProfile(u models.User) error {
	return errors.New("mock store update profile failed")
}

func (m *MockStoreFail) AddFollowEdge(followerID, followeeID string) error {
	return errors.New("mock store add follow edge failed")
}

func (m *MockStoreFail) RemoveFollowEdge(followerID, followeeID string) error {
	return errors.New("mock store remove follow edge failed")
}

func (m *MockStoreFail) SampleUsers(limit int) ([]models.User, error) {
	return nil, errors.New("mock store sample users failed")
}

func (m *MockStoreFail) AddPost(p models.Post) error {
	return errors.New("mock store add post failed")
}

func (m *MockStoreFail) GetPost(id string) (models.Post, error) {
	return models.Post{}, errors.New("mock store get post failed")
}

func (m *MockStoreFail) DeletePost(p models.Post) error {
	return errors.New("mock store delete post failed")
}

func (m *MockStoreFail) GetAllPosts(limit int) ([]models.Post, error) {
	return nil, errors.New("mock store get all posts failed")
}

func (m *MockStoreFail) GetPostsByAuthor(authorID string, limit int) ([]models.Post, error) {
	return nil, errors.New("mock store get posts by author failed")
}

func (m *MockStoreFail) GetPostsByIDs(ids []string) ([]models.Post, error) {
	return nil, errors.New("mock store get posts by ids failed")
}

func (m *MockStoreFail) AddLikeEdge(userID, postID string) error {
	return errors.New("mock store add like edge failed")
}

func (m *MockStoreFail) RemoveLikeEdge(userID, postID string) error {
	return errors.New("mock store remove like edge failed")
}

func (m *MockStoreFail) AddComment(c models.Comment) error {
	return errors.New("mock store add comment failed")
}

func (m *MockStoreFail) GetComments(postID string) ([]models.Comment, error) {
	return nil, errors.New("mock store get comments failed")
}

func (m *MockStoreFail) AddToFeed(userID string, post models.Post) error {
	return errors.New("mock store add to feed failed")
}

func (m *MockStoreFail) GetFeed(userID string, limit int) ([]models.Post, error) {
	return nil, errors.New("mock store get feed failed")
}

func (m *MockStoreFail) AddNotification(n models.Notification) error {
	return errors.New("mock store add notification failed")
}

func (m *MockStoreFail) GetNotifications(toID string) ([]models.Notification, error) {
	return nil, errors.New("mock store get notifications failed")
}

func (m *MockStoreFail) MarkNotificationsRead(toID string) error {
	return errors.New("mock store mark notifications read failed")
}

func (m *MockStoreFail) GetNotification(id string) (models.Notification, error) {
	return models.Notification{}, errors.New("mock store get notification failed")
}

func (m *MockStoreFail) DeleteNotification(n models.Notification) error {
	return errors.New("mock store delete notification failed")
}

func (m *MockStoreFail) DeleteNotifications(toID string) error {
	return errors.New("mock store delete notifications failed")
}
