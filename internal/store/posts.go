package store

import (
	"fmt"

	"example.com/socialnet/internal/models"
	"github.com/gocql/gocql"
)

// Single partition holding the global timeline index. Fine for a
// sample-app write rate; a production deployment would bucket by day.
const globalBucket = "all"

// --- Post operations ---

// AddPost inserts the post plus its author and timeline index rows.
func (s *Store) AddPost(p models.Post) error {
	batch := s.Session.NewBatch(gocql.LoggedBatch)
	batch.Query(`
		INSERT INTO posts (post_id, author_id, body, images, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.AuthorID, p.Body, p.Images, p.Created)
	batch.Query(`
		INSERT INTO posts_by_author (author_id, created_at, post_id)
		VALUES (?, ?, ?)`,
		p.AuthorID, p.Created, p.ID)
	batch.Query(`
		INSERT INTO all_posts (bucket, created_at, post_id)
		VALUES (?, ?, ?)`,
		globalBucket, p.Created, p.ID)

	if err := s.Session.ExecuteBatch(batch); err != nil {
		logg.Error("store", "Failed to add post", err)
		return err
	}

	logg.Info("store", "Post added (post content anonymized)")
	return nil
}

func (s *Store) GetPost(id string) (models.Post, error) {
	var p models.Post
	err := s.Session.Query(`
		SELECT post_id, author_id, body, images, likes, created_at
		FROM posts WHERE post_id = ?`,
		id,
	).Scan(&p.ID, &p.AuthorID, &p.Body, &p.Images, &p.Likes, &p.Created)
	if err != nil {
		if err == gocql.ErrNotFound {
			return models.Post{}, fmt.Errorf("post %w", ErrNotFound)
		}
		logg.Error("store", "Failed to query post", err)
		return models.Post{}, err
	}
	return p, nil
}

// DeletePost removes the post, its index rows and its comments.
func (s *Store) DeletePost(p models.Post) error {
	batch := s.Session.NewBatch(gocql.LoggedBatch)
	batch.Query(`DELETE FROM posts WHERE post_id = ?`, p.ID)
	batch.Query(`DELETE FROM posts_by_author WHERE author_id = ? AND created_at = ? AND post_id = ?`,
		p.AuthorID, p.Created, p.ID)
	batch.Query(`DELETE FROM all_posts WHERE bucket = ? AND created_at = ? AND post_id = ?`,
		globalBucket, p.Created, p.ID)
	batch.Query(`DELETE FROM comments_by_post WHERE post_id = ?`, p.ID)

	if err := s.Session.ExecuteBatch(batch); err != nil {
		logg.Error("store", "Failed to delete post", err)
		return err
	}

	logg.Info("store", "Post deleted (post ID anonymized)")
	return nil
}

// GetAllPosts returns the newest posts across all authors.
func (s *Store) GetAllPosts(limit int) ([]models.Post, error) {
	iter := s.Session.Query(`
		SELECT post_id FROM all_posts WHERE bucket = ? LIMIT ?`,
		globalBucket, limit,
	).Iter()

	var ids []string
	var id string
	for iter.Scan(&id) {
		ids = append(ids, id)
	}
	if err := iter.Close(); err != nil {
		logg.Error("store", "Failed to read global timeline", err)
		return nil, err
	}

	return s.GetPostsByIDs(ids)
}

func (s *Store) GetPostsByAuthor(authorID string, limit int) ([]models.Post, error) {
	iter := s.Session.Query(`
		SELECT post_id FROM posts_by_author WHERE author_id = ? LIMIT ?`,
		authorID, limit,
	).Iter()

	var ids []string
	var id string
	for iter.Scan(&id) {
		ids = append(ids, id)
	}
	if err := iter.Close(); err != nil {
		logg.Error("store", "Failed to read author index", err)
		return nil, err
	}

	return s.GetPostsByIDs(ids)
}

// GetPostsByIDs resolves index rows to full posts, skipping ids whose
// post has been deleted in the meantime.
func (s *Store) GetPostsByIDs(ids []string) ([]models.Post, error) {
	var res []models.Post
	for _, id := range ids {
		p, err := s.GetPost(id)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, err
		}
		res = append(res, p)
	}
	return res, nil
}

// --- Like edge operations ---

// AddLikeEdge records the like on both the post and the user side in a
// logged batch. Cassandra set semantics make a duplicate add a no-op.
func (s *Store) AddLikeEdge(userID, postID string) error {
	batch := s.Session.NewBatch(gocql.LoggedBatch)
	batch.Query(`UPDATE posts SET likes = likes + ? WHERE post_id = ?`,
		[]string{userID}, postID)
	batch.Query(`UPDATE users SET liked_posts = liked_posts + ? WHERE user_id = ?`,
		[]string{postID}, userID)

	if err := s.Session.ExecuteBatch(batch); err != nil {
		logg.Error("store", "Failed to add like edge", err)
		return err
	}

	logg.Info("store", "Like edge added (IDs anonymized)")
	return nil
}

func (s *Store) RemoveLikeEdge(userID, postID string) error {
	batch := s.Session.NewBatch(gocql.LoggedBatch)
	batch.Query(`UPDATE posts SET likes = likes - ? WHERE post_id = ?`,
		[]string{userID}, postID)
	batch.Query(`UPDATE users SET liked_posts = liked_posts - ? WHERE user_id = ?`,
		[]string{postID}, userID)

	if err := s.Session.ExecuteBatch(batch); err != nil {
		logg.Error("store", "Failed to remove like edge", err)
		return err
	}

	logg.Info("store", "Like edge removed (IDs anonymized)")
	return nil
}

// --- Comment operations ---

func (s *Store) AddComment(c models.Comment) error {
	if err := s.Session.Query(`
		INSERT INTO comments_by_post (post_id, comment_id, author_id, body, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		c.PostID, c.ID, c.AuthorID, c.Body, c.Created,
	).Exec(); err != nil {
		logg.Error("store", "Failed to add comment", err)
		return err
	}

	logg.Info("store", "Comment added (content anonymized)")
	return nil
}

// GetComments returns a post's comments in append order (timeuuid
// clustering ascending).
func (s *Store) GetComments(postID string) ([]models.Comment, error) {
	iter := s.Session.Query(`
		SELECT comment_id, author_id, body, created_at
		FROM comments_by_post WHERE post_id = ?`,
		postID,
	).Iter()

	var res []models.Comment
	var c models.Comment
	for iter.Scan(&c.ID, &c.AuthorID, &c.Body, &c.Created) {
		c.PostID = postID
		res = append(res, c)
	}

	if err := iter.Close(); err != nil {
		logg.Error("store", "Failed to get comments", err)
		return nil, err
	}
	return res, nil
}

// --- Feed operations ---

func (s *Store) AddToFeed(userID string, post models.Post) error {
	if err := s.Session.Query(`
		INSERT INTO feed_by_user (user_id, created_at, post_id, author_id, body, images)
		VALUES (?, ?, ?, ?, ?, ?)`,
		userID, post.Created, post.ID, post.AuthorID, post.Body, post.Images,
	).Exec(); err != nil {
		logg.Error("store", "Failed to add post to feed", err)
		return err
	}

	logg.Info("store", "Post added to user's feed (IDs and content anonymized)")
	return nil
}

func (s *Store) GetFeed(userID string, limit int) ([]models.Post, error) {
	iter := s.Session.Query(`
		SELECT post_id, author_id, body, images, created_at
		FROM feed_by_user WHERE user_id = ? LIMIT ?`,
		userID, limit,
	).Iter()

	var res []models.Post
	var p models.Post
	for iter.Scan(&p.ID, &p.AuthorID, &p.Body, &p.Images, &p.Created) {
		res = append(res, p)
		p = models.Post{}
	}

	if err := iter.Close(); err != nil {
		logg.Error("store", "Failed to retrieve user feed", err)
		return nil, err
	}

	logg.Info("store", "User feed retrieved successfully (IDs and content anonymized)")
	return res, nil
}
