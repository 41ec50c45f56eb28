package server

import (
	"context"
	"net/http"
	"time"

	appkafka "example.com/socialnet/internal/broker"
	"example.com/socialnet/internal/engage"
	"example.com/socialnet/internal/imagehost"
	config "example.com/socialnet/internal/init"
	"example.com/socialnet/internal/logger"
	"example.com/socialnet/internal/middleware"
	"example.com/socialnet/internal/store"
)

type Server struct {
	store       store.StoreInterface
	engage      *engage.Service
	kafkaWriter appkafka.KafkaWriter
	uploader    imagehost.Uploader
	cfg         *config.Config
}

var logg = logger.New()

// NewServer wires the engagement service and collaborators together.
func NewServer(st store.StoreInterface, writer appkafka.KafkaWriter, up imagehost.Uploader, cfg *config.Config) *Server {
	return &Server{
		store: st,
		engage: engage.New(st, engage.Options{
			NotifySelf:     cfg.NotifySelf,
			SampleSize:     cfg.SampleSize,
			SuggestedCount: cfg.SuggestedCount,
		}),
		kafkaWriter: writer,
		uploader:    up,
		cfg:         cfg,
	}
}

// routes builds the HTTP surface. Split out from Run so tests can mount
// the same mux on an httptest server.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	auth := func(h http.HandlerFunc) http.Handler {
		return middleware.Auth(s.cfg.JWTSecret, h)
	}

	// Public auth endpoints
	mux.Handle("POST /auth/signup", http.HandlerFunc(s.signupHandler))
	mux.Handle("POST /auth/login", http.HandlerFunc(s.loginHandler))
	mux.Handle("POST /auth/logout", http.HandlerFunc(s.logoutHandler))
	mux.Handle("GET /auth/me", auth(s.meHandler))

	// Users
	mux.Handle("GET /users/profile/{username}", auth(s.profileHandler))
	mux.Handle("GET /users/suggested", auth(s.suggestedHandler))
	mux.Handle("POST /users/follow/{id}", auth(s.followHandler))
	mux.Handle("PUT /users/update", auth(s.updateProfileHandler))

	// Posts
	mux.Handle("POST /posts/create", auth(s.createPostHandler))
	mux.Handle("POST /posts/like/{id}", auth(s.likePostHandler))
	mux.Handle("POST /posts/comment/{id}", auth(s.commentPostHandler))
	mux.Handle("DELETE /posts/{id}", auth(s.deletePostHandler))
	mux.Handle("GET /posts/all", auth(s.allPostsHandler))
	mux.Handle("GET /posts/liked/{userId}", auth(s.likedPostsHandler))
	mux.Handle("GET /posts/following", auth(s.followingPostsHandler))
	mux.Handle("GET /posts/user/{username}", auth(s.userPostsHandler))

	// Notifications
	mux.Handle("GET /notifications", auth(s.listNotificationsHandler))
	mux.Handle("DELETE /notifications", auth(s.deleteNotificationsHandler))
	mux.Handle("DELETE /notifications/{id}", auth(s.deleteNotificationHandler))

	return mux
}

// Run starts the HTTPS server with JWT-protected routes and graceful shutdown.
func Run(ctx context.Context, st store.StoreInterface, writer appkafka.KafkaWriter, up imagehost.Uploader, cfg *config.Config) {
	s := NewServer(st, writer, up, cfg)

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      s.routes(),
		ReadTimeout:  10 * time.Second, // prevent slowloris attacks
		WriteTimeout: 10 * time.Second,
	}

	// --- Start server in a goroutine ---
	go func() {
		logg.Info("server", "Starting HTTPS server on "+cfg.ServerAddr)
		// TLS: cert.pem and key.pem should be valid certificates in specified paths
		if err := srv.ListenAndServeTLS("/certs/cert.pem", "/certs/key.pem"); err != nil && err != http.ErrServerClosed {
			logg.Error("server", "Server stopped unexpectedly", err)
		}
	}()

	// --- Graceful shutdown ---
	<-ctx.Done()
	logg.Info("server", "Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("server", "Error during server shutdown", err)
	} else {
		logg.Info("server", "Server stopped gracefully")
	}
}
