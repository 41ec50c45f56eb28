package server

import (
	"io"
	"net/http"

	"example.com/socialnet/internal/middleware"
)

// profileHandler handles GET /users/profile/{username}.
func (s *Server) profileHandler(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	user, err := s.store.GetUserByUsername(username)
	if err != nil {
		respondErr(w, err)
		return
	}

	respondOK(w, http.StatusOK, "User profile fetched!", map[string]any{
		"user": user,
	})
}

// suggestedHandler handles GET /users/suggested.
func (s *Server) suggestedHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	users, err := s.engage.SuggestedUsers(userID)
	if err != nil {
		logg.Error("http/users", "Failed to get suggested users", err)
		respondErr(w, err)
		return
	}

	respondOK(w, http.StatusOK, "", map[string]any{
		"users": users,
	})
}

// followHandler handles POST /users/follow/{id} as a toggle.
func (s *Server) followHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	targetID := r.PathValue("id")

	followed, err := s.engage.ToggleFollow(userID, targetID)
	if err != nil {
		logg.Error("http/users", "Follow toggle failed", err)
		respondErr(w, err)
		return
	}

	message := "User unfollowed successfully!"
	if followed {
		message = "User followed successfully!"
	}

	logg.Info("http/users", "Follow toggled (user IDs anonymized)")
	respondOK(w, http.StatusOK, message, map[string]any{
		"followed": followed,
	})
}

// updateProfileHandler handles PUT /users/update (multipart).
// Text fields: full_name, bio, link. Files: profileImage, coverImage.
func (s *Server) updateProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondFail(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	user, err := s.store.GetUser(userID)
	if err != nil {
		respondErr(w, err)
		return
	}

	if v := r.FormValue("full_name"); v != "" {
		user.FullName = v
	}
	if v := r.FormValue("bio"); v != "" {
		user.Bio = v
	}
	if v := r.FormValue("link"); v != "" {
		user.Link = v
	}

	for field, dest := range map[string]*string{
		"profileImage": &user.ProfileImage,
		"coverImage":   &user.CoverImage,
	} {
		file, _, err := r.FormFile(field)
		if err != nil {
			continue // field absent
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			respondFail(w, http.StatusBadRequest, "failed to read "+field)
			return
		}

		url, err := s.uploader.Upload(r.Context(), data)
		if err != nil {
			logg.Error("http/users", "Image upload failed", err)
			respondErr(w, err)
			return
		}
		*dest = url
	}

	if err := s.store.UpdateProfile(user); err != nil {
		logg.Error("http/users", "Failed to update profile", err)
		respondErr(w, err)
		return
	}

	logg.Info("http/users", "Profile updated (username anonymized)")
	respondOK(w, http.StatusOK, "Profile updated!", map[string]any{
		"user": user,
	})
}
