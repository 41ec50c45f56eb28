package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"example.com/socialnet/internal/imagehost"
	"example.com/socialnet/internal/middleware"
	"example.com/socialnet/internal/models"
	"github.com/google/uuid"

	appkafka "example.com/socialnet/internal/broker"
)

const defaultListLimit = 50

// postView is a post with its comments resolved in append order.
type postView struct {
	models.Post
	Comments []models.Comment `json:"comments"`
}

func (s *Server) viewPosts(posts []models.Post) ([]postView, error) {
	views := make([]postView, 0, len(posts))
	for _, p := range posts {
		comments, err := s.store.GetComments(p.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, postView{Post: p, Comments: comments})
	}
	return views, nil
}

func listLimit(r *http.Request) int {
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil && l > 0 {
			limit = l
		}
	}
	return limit
}

// createPostHandler handles POST /posts/create (multipart).
// Text field: "text"; files: "images". Uploads images to the image
// host, stores the post, then publishes a post_created event for the
// feed fan-out worker.
func (s *Server) createPostHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondFail(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	if _, err := s.store.GetUser(userID); err != nil {
		respondErr(w, err)
		return
	}

	text := r.FormValue("text")
	if len(text) == 0 || len(text) > 1000 {
		respondFail(w, http.StatusBadRequest, "post text must be 1-1000 characters")
		return
	}

	var images []string
	if r.MultipartForm != nil {
		for _, hdr := range r.MultipartForm.File["images"] {
			file, err := hdr.Open()
			if err != nil {
				respondFail(w, http.StatusBadRequest, "failed to read image")
				return
			}
			data, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				respondFail(w, http.StatusBadRequest, "failed to read image")
				return
			}

			url, err := s.uploader.Upload(r.Context(), data)
			if err != nil {
				logg.Error("http/posts", "Image upload failed", err)
				respondErr(w, err)
				return
			}
			images = append(images, url)
		}
	}

	post := models.Post{
		ID:       uuid.NewString(),
		AuthorID: userID,
		Body:     text,
		Images:   images,
		Created:  time.Now().UTC(),
	}

	if err := s.store.AddPost(post); err != nil {
		logg.Error("http/posts", "Failed to save post", err)
		respondErr(w, err)
		return
	}

	if err := appkafka.PublishPostCreated(s.kafkaWriter, post); err != nil {
		logg.Error("http/posts", "Failed to publish post_created event", err)
		respondFail(w, http.StatusInternalServerError, "failed to publish post event")
		return
	}

	logg.Info("http/posts", "Post created successfully (user ID anonymized)")
	respondOK(w, http.StatusOK, "You have created a post!", map[string]any{
		"post": post,
	})
}

// likePostHandler handles POST /posts/like/{id} as a toggle.
func (s *Server) likePostHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	postID := r.PathValue("id")

	liked, err := s.engage.ToggleLike(userID, postID)
	if err != nil {
		logg.Error("http/posts", "Like toggle failed", err)
		respondErr(w, err)
		return
	}

	message := "You disliked the post"
	if liked {
		message = "You liked the post"
	}

	logg.Info("http/posts", "Like toggled (IDs anonymized)")
	respondOK(w, http.StatusOK, message, map[string]any{
		"liked": liked,
	})
}

// commentPostHandler handles POST /posts/comment/{id}.
// Expects JSON body: {"text": "..."}
func (s *Server) commentPostHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	postID := r.PathValue("id")

	type req struct {
		Text string `json:"text"`
	}
	var body req
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondFail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	defer r.Body.Close()

	comment, err := s.engage.AddComment(userID, postID, body.Text)
	if err != nil {
		logg.Error("http/posts", "Comment failed", err)
		respondErr(w, err)
		return
	}

	logg.Info("http/posts", "Comment created (content anonymized)")
	respondOK(w, http.StatusOK, "You commented on a post", map[string]any{
		"comment": comment,
	})
}

// deletePostHandler handles DELETE /posts/{id}. Only the author may
// delete; remote images are destroyed first.
func (s *Server) deletePostHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	postID := r.PathValue("id")

	post, err := s.store.GetPost(postID)
	if err != nil {
		respondErr(w, err)
		return
	}

	if post.AuthorID != userID {
		respondFail(w, http.StatusForbidden, "You are not authorized to delete this post!")
		return
	}

	for _, image := range post.Images {
		publicID := imagehost.PublicIDFromURL(image)
		if err := s.uploader.Destroy(r.Context(), publicID); err != nil {
			// best effort; the post record still goes away
			logg.Error("http/posts", "Failed to destroy remote image", err)
		}
	}

	if err := s.store.DeletePost(post); err != nil {
		logg.Error("http/posts", "Failed to delete post", err)
		respondErr(w, err)
		return
	}

	logg.Info("http/posts", "Post deleted (post ID anonymized)")
	respondOK(w, http.StatusOK, "Post deleted successfully!", nil)
}

// allPostsHandler handles GET /posts/all.
func (s *Server) allPostsHandler(w http.ResponseWriter, r *http.Request) {
	posts, err := s.store.GetAllPosts(listLimit(r))
	if err != nil {
		respondErr(w, err)
		return
	}

	views, err := s.viewPosts(posts)
	if err != nil {
		respondErr(w, err)
		return
	}

	message := "No post found"
	if len(views) > 0 {
		message = "All posts fetched!"
	}
	respondOK(w, http.StatusOK, message, map[string]any{
		"total": len(views),
		"posts": views,
	})
}

// likedPostsHandler handles GET /posts/liked/{userId}.
func (s *Server) likedPostsHandler(w http.ResponseWriter, r *http.Request) {
	targetID := r.PathValue("userId")

	user, err := s.store.GetUser(targetID)
	if err != nil {
		respondErr(w, err)
		return
	}

	posts, err := s.store.GetPostsByIDs(user.LikedPosts)
	if err != nil {
		respondErr(w, err)
		return
	}

	views, err := s.viewPosts(posts)
	if err != nil {
		respondErr(w, err)
		return
	}

	respondOK(w, http.StatusOK, "", map[string]any{
		"total": len(views),
		"posts": views,
	})
}

// followingPostsHandler handles GET /posts/following. Reads the
// fan-out feed written by the worker.
func (s *Server) followingPostsHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	posts, err := s.store.GetFeed(userID, listLimit(r))
	if err != nil {
		respondErr(w, err)
		return
	}

	views, err := s.viewPosts(posts)
	if err != nil {
		respondErr(w, err)
		return
	}

	respondOK(w, http.StatusOK, "", map[string]any{
		"total": len(views),
		"posts": views,
	})
}

// userPostsHandler handles GET /posts/user/{username}.
func (s *Server) userPostsHandler(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	user, err := s.store.GetUserByUsername(username)
	if err != nil {
		respondErr(w, err)
		return
	}

	posts, err := s.store.GetPostsByAuthor(user.ID, listLimit(r))
	if err != nil {
		respondErr(w, err)
		return
	}

	views, err := s.viewPosts(posts)
	if err != nil {
		respondErr(w, err)
		return
	}

	respondOK(w, http.StatusOK, "", map[string]any{
		"total": len(views),
		"posts": views,
	})
}
