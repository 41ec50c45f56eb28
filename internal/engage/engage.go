// Package engage orchestrates cross-entity engagement mutations:
// follow/unfollow, like/unlike and comments. Each toggle reads current
// state, decides the direction, applies the paired edge mutation and
// fans out a notification to the affected user.
package engage

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"example.com/socialnet/internal/logger"
	"example.com/socialnet/internal/models"
	"example.com/socialnet/internal/store"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

var logg = logger.New()

// Options tune engagement behavior.
type Options struct {
	// NotifySelf controls whether liking or commenting on your own
	// post still produces a notification.
	NotifySelf bool

	// SampleSize is how many directory entries SuggestedUsers draws
	// before filtering; SuggestedCount is the display truncation.
	SampleSize     int
	SuggestedCount int
}

// Service is the engagement service. All persistence goes through the
// injected store, never package-level state.
type Service struct {
	store store.StoreInterface
	opts  Options
}

func New(st store.StoreInterface, opts Options) *Service {
	if opts.SampleSize <= 0 {
		opts.SampleSize = 10
	}
	if opts.SuggestedCount <= 0 {
		opts.SuggestedCount = 4
	}
	return &Service{store: st, opts: opts}
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// notify fans out a notification unless it would be addressed to the
// actor themselves and NotifySelf is off.
func (s *Service) notify(kind, from, to string) error {
	if from == to && !s.opts.NotifySelf {
		return nil
	}

	n := models.Notification{
		ID:      uuid.NewString(),
		From:    from,
		To:      to,
		Kind:    kind,
		Created: time.Now().UTC(),
	}
	return s.store.AddNotification(n)
}

// --- Like/Unlike ---

// ToggleLike likes the post if the user has not liked it yet, and
// unlikes it otherwise. Returns true when the post ended up liked.
func (s *Service) ToggleLike(userID, postID string) (bool, error) {
	post, err := s.store.GetPost(postID)
	if err != nil {
		return false, err
	}

	if contains(post.Likes, userID) {
		if err := s.store.RemoveLikeEdge(userID, postID); err != nil {
			return false, fmt.Errorf("unlike: %w", err)
		}
		logg.Info("engage", "Post unliked (IDs anonymized)")
		return false, nil
	}

	if err := s.store.AddLikeEdge(userID, postID); err != nil {
		return false, fmt.Errorf("like: %w", err)
	}

	if err := s.notify(models.NotificationLike, userID, post.AuthorID); err != nil {
		logg.Error("engage", "Failed to fan out like notification", err)
		return true, err
	}

	logg.Info("engage", "Post liked (IDs anonymized)")
	return true, nil
}

// --- Follow/Unfollow ---

// ToggleFollow follows the target if the actor does not follow them
// yet, and unfollows otherwise. Returns true when the actor ended up
// following the target.
func (s *Service) ToggleFollow(actorID, targetID string) (bool, error) {
	if actorID == targetID {
		return false, fmt.Errorf("%w: cannot follow yourself", ErrInvalidOperation)
	}

	actor, err := s.store.GetUser(actorID)
	if err != nil {
		return false, err
	}
	if _, err := s.store.GetUser(targetID); err != nil {
		return false, err
	}

	if contains(actor.Following, targetID) {
		if err := s.store.RemoveFollowEdge(actorID, targetID); err != nil {
			return false, fmt.Errorf("unfollow: %w", err)
		}
		logg.Info("engage", "User unfollowed (IDs anonymized)")
		return false, nil
	}

	if err := s.store.AddFollowEdge(actorID, targetID); err != nil {
		return false, fmt.Errorf("follow: %w", err)
	}

	if err := s.notify(models.NotificationFollow, actorID, targetID); err != nil {
		logg.Error("engage", "Failed to fan out follow notification", err)
		return true, err
	}

	logg.Info("engage", "User followed (IDs anonymized)")
	return true, nil
}

// --- Comment ---

// AddComment appends a comment to the post and notifies its author.
func (s *Service) AddComment(userID, postID, body string) (models.Comment, error) {
	if strings.TrimSpace(body) == "" {
		return models.Comment{}, fmt.Errorf("%w: comment text required", ErrValidation)
	}

	post, err := s.store.GetPost(postID)
	if err != nil {
		return models.Comment{}, err
	}

	c := models.Comment{
		ID:       gocql.TimeUUID().String(),
		PostID:   postID,
		AuthorID: userID,
		Body:     body,
		Created:  time.Now().UTC(),
	}
	if err := s.store.AddComment(c); err != nil {
		return models.Comment{}, fmt.Errorf("comment: %w", err)
	}

	if err := s.notify(models.NotificationComment, userID, post.AuthorID); err != nil {
		logg.Error("engage", "Failed to fan out comment notification", err)
		return c, err
	}

	logg.Info("engage", "Comment added (content anonymized)")
	return c, nil
}

// --- Notification sink ---

// ListNotifications returns the user's notifications, each resolved to
// a source-user summary, and marks every unread one as read. The
// returned entries reflect the pre-listing read flags.
func (s *Service) ListNotifications(userID string) ([]models.Notification, error) {
	ns, err := s.store.GetNotifications(userID)
	if err != nil {
		return nil, err
	}

	for i, n := range ns {
		from, err := s.store.GetUser(n.From)
		if err != nil {
			// source account may have been deleted; deliver unresolved
			continue
		}
		summary := from.Summary()
		ns[i].FromUser = &summary
	}

	// reading implicitly acknowledges
	if err := s.store.MarkNotificationsRead(userID); err != nil {
		return nil, err
	}
	return ns, nil
}

// DeleteNotifications removes every notification addressed to the user.
func (s *Service) DeleteNotifications(userID string) error {
	return s.store.DeleteNotifications(userID)
}

// DeleteNotification removes one notification. Only its destination
// user may delete it.
func (s *Service) DeleteNotification(userID, notificationID string) error {
	n, err := s.store.GetNotification(notificationID)
	if err != nil {
		return err
	}
	if n.To != userID {
		return fmt.Errorf("%w: notification belongs to another user", ErrForbidden)
	}
	return s.store.DeleteNotification(n)
}

// --- Suggested users ---

// SuggestedUsers samples the directory, drops the actor and anyone they
// already follow, and truncates to the display count. An empty result
// is not an error.
func (s *Service) SuggestedUsers(actorID string) ([]models.UserSummary, error) {
	actor, err := s.store.GetUser(actorID)
	if err != nil {
		return nil, err
	}

	sample, err := s.store.SampleUsers(s.opts.SampleSize)
	if err != nil {
		return nil, err
	}

	rand.Shuffle(len(sample), func(i, j int) {
		sample[i], sample[j] = sample[j], sample[i]
	})

	res := make([]models.UserSummary, 0, s.opts.SuggestedCount)
	for _, u := range sample {
		if u.ID == actorID || contains(actor.Following, u.ID) {
			continue
		}
		res = append(res, u.Summary())
		if len(res) == s.opts.SuggestedCount {
			break
		}
	}
	return res, nil
}
