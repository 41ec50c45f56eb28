package engage

import (
	"errors"
	"testing"
	"time"

	"example.com/socialnet/internal/models"
	"example.com/socialnet/internal/store"
	"github.com/google/uuid"
)

//
// --- Helpers ---
//

func newTestService(t *testing.T) (*Service, *store.MockStore) {
	t.Helper()
	mockStore := store.NewMock()
	return New(mockStore, Options{}), mockStore
}

func seedUser(t *testing.T, st *store.MockStore, username string) string {
	t.Helper()
	id := uuid.NewString()
	err := st.CreateUser(models.User{
		ID:       id,
		Username: username,
		Email:    username + "@example.com",
		Created:  time.Now(),
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return id
}

func seedPost(t *testing.T, st *store.MockStore, authorID, body string) string {
	t.Helper()
	id := uuid.NewString()
	err := st.AddPost(models.Post{
		ID:       id,
		AuthorID: authorID,
		Body:     body,
		Created:  time.Now(),
	})
	if err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return id
}

func notificationsOfKind(t *testing.T, st *store.MockStore, toID, kind string) []models.Notification {
	t.Helper()
	ns, err := st.GetNotifications(toID)
	if err != nil {
		t.Fatalf("get notifications: %v", err)
	}
	var res []models.Notification
	for _, n := range ns {
		if n.Kind == kind {
			res = append(res, n)
		}
	}
	return res
}

//
// --- Follow/Unfollow ---
//

// follow then unfollow restores both sides of the relation
func TestToggleFollow_MirrorInvariant(t *testing.T) {
	svc, st := newTestService(t)
	aliceID := seedUser(t, st, "alice")
	bobID := seedUser(t, st, "bob")

	followed, err := svc.ToggleFollow(aliceID, bobID)
	if err != nil {
		t.Fatalf("follow failed: %v", err)
	}
	if !followed {
		t.Fatalf("expected follow direction")
	}

	alice, _ := st.GetUser(aliceID)
	bob, _ := st.GetUser(bobID)
	if !contains(alice.Following, bobID) {
		t.Fatalf("bob missing from alice.following")
	}
	if !contains(bob.Followers, aliceID) {
		t.Fatalf("alice missing from bob.followers")
	}

	followed, err = svc.ToggleFollow(aliceID, bobID)
	if err != nil {
		t.Fatalf("unfollow failed: %v", err)
	}
	if followed {
		t.Fatalf("expected unfollow direction")
	}

	alice, _ = st.GetUser(aliceID)
	bob, _ = st.GetUser(bobID)
	if contains(alice.Following, bobID) || contains(bob.Followers, aliceID) {
		t.Fatalf("relation not fully removed after unfollow")
	}
}

func TestToggleFollow_SelfFails(t *testing.T) {
	svc, st := newTestService(t)
	aliceID := seedUser(t, st, "alice")

	_, err := svc.ToggleFollow(aliceID, aliceID)
	if !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("expected ErrInvalidOperation, got %v", err)
	}

	alice, _ := st.GetUser(aliceID)
	if len(alice.Following) != 0 || len(alice.Followers) != 0 {
		t.Fatalf("self-follow must not change state")
	}
}

func TestToggleFollow_MissingTarget(t *testing.T) {
	svc, st := newTestService(t)
	aliceID := seedUser(t, st, "alice")

	_, err := svc.ToggleFollow(aliceID, "no-such-user")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// alice follows bob: bob gets a follow notification
func TestToggleFollow_FanOut(t *testing.T) {
	svc, st := newTestService(t)
	aliceID := seedUser(t, st, "alice")
	bobID := seedUser(t, st, "bob")

	if _, err := svc.ToggleFollow(aliceID, bobID); err != nil {
		t.Fatalf("follow failed: %v", err)
	}

	ns := notificationsOfKind(t, st, bobID, models.NotificationFollow)
	if len(ns) != 1 {
		t.Fatalf("expected 1 follow notification, got %d", len(ns))
	}
	if ns[0].From != aliceID || ns[0].To != bobID {
		t.Fatalf("notification endpoints wrong: %+v", ns[0])
	}

	// unfollow emits nothing
	if _, err := svc.ToggleFollow(aliceID, bobID); err != nil {
		t.Fatalf("unfollow failed: %v", err)
	}
	ns = notificationsOfKind(t, st, bobID, models.NotificationFollow)
	if len(ns) != 1 {
		t.Fatalf("unfollow must not fan out, got %d notifications", len(ns))
	}
}

//
// --- Like/Unlike ---
//

func TestToggleLike_RoundTrip(t *testing.T) {
	svc, st := newTestService(t)
	aliceID := seedUser(t, st, "alice")
	bobID := seedUser(t, st, "bob")
	postID := seedPost(t, st, aliceID, "hello")

	liked, err := svc.ToggleLike(bobID, postID)
	if err != nil {
		t.Fatalf("like failed: %v", err)
	}
	if !liked {
		t.Fatalf("expected like direction")
	}

	post, _ := st.GetPost(postID)
	bob, _ := st.GetUser(bobID)
	if !contains(post.Likes, bobID) || !contains(bob.LikedPosts, postID) {
		t.Fatalf("like edge not applied on both sides")
	}

	liked, err = svc.ToggleLike(bobID, postID)
	if err != nil {
		t.Fatalf("unlike failed: %v", err)
	}
	if liked {
		t.Fatalf("expected unlike direction")
	}

	post, _ = st.GetPost(postID)
	bob, _ = st.GetUser(bobID)
	if len(post.Likes) != 0 || len(bob.LikedPosts) != 0 {
		t.Fatalf("like edge not fully removed: %+v %+v", post.Likes, bob.LikedPosts)
	}
}

// the like set never holds the same user twice, even if the edge write repeats
func TestToggleLike_NoDuplicateEntries(t *testing.T) {
	svc, st := newTestService(t)
	aliceID := seedUser(t, st, "alice")
	postID := seedPost(t, st, aliceID, "hello")

	if _, err := svc.ToggleLike(aliceID, postID); err != nil {
		t.Fatalf("like failed: %v", err)
	}
	// a concurrent duplicate add is absorbed by set semantics
	if err := st.AddLikeEdge(aliceID, postID); err != nil {
		t.Fatalf("duplicate add failed: %v", err)
	}

	post, _ := st.GetPost(postID)
	count := 0
	for _, id := range post.Likes {
		if id == aliceID {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one like entry, got %d", count)
	}
}

func TestToggleLike_MissingPost(t *testing.T) {
	svc, st := newTestService(t)
	aliceID := seedUser(t, st, "alice")

	_, err := svc.ToggleLike(aliceID, "no-such-post")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestToggleLike_SelfNotificationPolicy(t *testing.T) {
	st := store.NewMock()
	aliceID := seedUser(t, st, "alice")
	postID := seedPost(t, st, aliceID, "own post")

	// default: no self-notification
	svc := New(st, Options{})
	if _, err := svc.ToggleLike(aliceID, postID); err != nil {
		t.Fatalf("like failed: %v", err)
	}
	if ns := notificationsOfKind(t, st, aliceID, models.NotificationLike); len(ns) != 0 {
		t.Fatalf("self-notification suppressed by default, got %d", len(ns))
	}

	// opt in
	if _, err := svc.ToggleLike(aliceID, postID); err != nil { // back to unliked
		t.Fatalf("unlike failed: %v", err)
	}
	svc = New(st, Options{NotifySelf: true})
	if _, err := svc.ToggleLike(aliceID, postID); err != nil {
		t.Fatalf("like failed: %v", err)
	}
	if ns := notificationsOfKind(t, st, aliceID, models.NotificationLike); len(ns) != 1 {
		t.Fatalf("expected self-notification with NotifySelf, got %d", len(ns))
	}
}

func TestToggleLike_LikeNotifiesAuthor(t *testing.T) {
	svc, st := newTestService(t)
	aliceID := seedUser(t, st, "alice")
	bobID := seedUser(t, st, "bob")
	postID := seedPost(t, st, aliceID, "hello")

	if _, err := svc.ToggleLike(bobID, postID); err != nil {
		t.Fatalf("like failed: %v", err)
	}

	ns := notificationsOfKind(t, st, aliceID, models.NotificationLike)
	if len(ns) != 1 || ns[0].From != bobID {
		t.Fatalf("expected like notification from bob, got %+v", ns)
	}
}

//
// --- Comments ---
//

// bob comments on alice's post: comment appended, alice notified
func TestAddComment_AppendAndFanOut(t *testing.T) {
	svc, st := newTestService(t)
	aliceID := seedUser(t, st, "alice")
	bobID := seedUser(t, st, "bob")
	postID := seedPost(t, st, aliceID, "hello")

	c, err := svc.AddComment(bobID, postID, "nice!")
	if err != nil {
		t.Fatalf("comment failed: %v", err)
	}
	if c.Body != "nice!" || c.AuthorID != bobID {
		t.Fatalf("unexpected comment: %+v", c)
	}

	comments, _ := st.GetComments(postID)
	if len(comments) != 1 || comments[0].Body != "nice!" {
		t.Fatalf("comment not appended: %+v", comments)
	}

	ns := notificationsOfKind(t, st, aliceID, models.NotificationComment)
	if len(ns) != 1 || ns[0].From != bobID {
		t.Fatalf("expected comment notification to alice, got %+v", ns)
	}
}

func TestAddComment_InsertionOrder(t *testing.T) {
	svc, st := newTestService(t)
	aliceID := seedUser(t, st, "alice")
	postID := seedPost(t, st, aliceID, "hello")

	for _, body := range []string{"first", "second", "third"} {
		if _, err := svc.AddComment(aliceID, postID, body); err != nil {
			t.Fatalf("comment failed: %v", err)
		}
	}

	comments, _ := st.GetComments(postID)
	if len(comments) != 3 {
		t.Fatalf("expected 3 comments, got %d", len(comments))
	}
	for i, want := range []string{"first", "second", "third"} {
		if comments[i].Body != want {
			t.Fatalf("comment %d out of order: got %q want %q", i, comments[i].Body, want)
		}
	}
}

func TestAddComment_EmptyText(t *testing.T) {
	svc, st := newTestService(t)
	aliceID := seedUser(t, st, "alice")
	postID := seedPost(t, st, aliceID, "hello")

	_, err := svc.AddComment(aliceID, postID, "   ")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestAddComment_MissingPost(t *testing.T) {
	svc, st := newTestService(t)
	aliceID := seedUser(t, st, "alice")

	_, err := svc.AddComment(aliceID, "no-such-post", "hi")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

//
// --- Notification sink ---
//

func TestListNotifications_MarksRead(t *testing.T) {
	svc, st := newTestService(t)
	aliceID := seedUser(t, st, "alice")
	bobID := seedUser(t, st, "bob")

	if _, err := svc.ToggleFollow(aliceID, bobID); err != nil {
		t.Fatalf("follow failed: %v", err)
	}

	ns, err := svc.ListNotifications(bobID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(ns) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(ns))
	}
	if ns[0].FromUser == nil || ns[0].FromUser.Username != "alice" {
		t.Fatalf("source user not resolved: %+v", ns[0])
	}

	// listing acknowledged everything
	stored, _ := st.GetNotifications(bobID)
	for _, n := range stored {
		if !n.Read {
			t.Fatalf("notification left unread after listing: %+v", n)
		}
	}
}

func TestDeleteNotification_ForbiddenForOtherUser(t *testing.T) {
	svc, st := newTestService(t)
	aliceID := seedUser(t, st, "alice")
	bobID := seedUser(t, st, "bob")
	eveID := seedUser(t, st, "eve")

	if _, err := svc.ToggleFollow(aliceID, bobID); err != nil {
		t.Fatalf("follow failed: %v", err)
	}
	stored, _ := st.GetNotifications(bobID)
	if len(stored) != 1 {
		t.Fatalf("expected seeded notification")
	}

	err := svc.DeleteNotification(eveID, stored[0].ID)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	// the notification is untouched
	if _, err := st.GetNotification(stored[0].ID); err != nil {
		t.Fatalf("notification should remain: %v", err)
	}
}

func TestDeleteNotification_NotFound(t *testing.T) {
	svc, st := newTestService(t)
	aliceID := seedUser(t, st, "alice")

	err := svc.DeleteNotification(aliceID, "no-such-notification")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteNotifications_All(t *testing.T) {
	svc, st := newTestService(t)
	aliceID := seedUser(t, st, "alice")
	bobID := seedUser(t, st, "bob")
	eveID := seedUser(t, st, "eve")

	if _, err := svc.ToggleFollow(aliceID, bobID); err != nil {
		t.Fatalf("follow failed: %v", err)
	}
	if _, err := svc.ToggleFollow(eveID, bobID); err != nil {
		t.Fatalf("follow failed: %v", err)
	}

	if err := svc.DeleteNotifications(bobID); err != nil {
		t.Fatalf("delete all failed: %v", err)
	}
	ns, _ := st.GetNotifications(bobID)
	if len(ns) != 0 {
		t.Fatalf("expected empty sink, got %d", len(ns))
	}
}

//
// --- Suggested users ---
//

func TestSuggestedUsers_FiltersActorAndFollowed(t *testing.T) {
	svc, st := newTestService(t)
	aliceID := seedUser(t, st, "alice")
	bobID := seedUser(t, st, "bob")
	seedUser(t, st, "carol")

	if _, err := svc.ToggleFollow(aliceID, bobID); err != nil {
		t.Fatalf("follow failed: %v", err)
	}

	suggested, err := svc.SuggestedUsers(aliceID)
	if err != nil {
		t.Fatalf("suggested failed: %v", err)
	}
	for _, u := range suggested {
		if u.ID == aliceID {
			t.Fatalf("actor suggested to themselves")
		}
		if u.ID == bobID {
			t.Fatalf("already-followed user suggested")
		}
	}
	if len(suggested) != 1 || suggested[0].Username != "carol" {
		t.Fatalf("expected carol only, got %+v", suggested)
	}
}

// everyone sampled is already followed: empty list, not an error
func TestSuggestedUsers_AllFollowed(t *testing.T) {
	svc, st := newTestService(t)
	aliceID := seedUser(t, st, "alice")
	bobID := seedUser(t, st, "bob")
	carolID := seedUser(t, st, "carol")

	for _, id := range []string{bobID, carolID} {
		if _, err := svc.ToggleFollow(aliceID, id); err != nil {
			t.Fatalf("follow failed: %v", err)
		}
	}

	suggested, err := svc.SuggestedUsers(aliceID)
	if err != nil {
		t.Fatalf("suggested failed: %v", err)
	}
	if len(suggested) != 0 {
		t.Fatalf("expected empty suggestions, got %+v", suggested)
	}
}

func TestSuggestedUsers_TruncatesToDisplayCount(t *testing.T) {
	st := store.NewMock()
	svc := New(st, Options{SampleSize: 10, SuggestedCount: 2})
	aliceID := seedUser(t, st, "alice")
	for _, name := range []string{"bob", "carol", "dave", "erin"} {
		seedUser(t, st, name)
	}

	suggested, err := svc.SuggestedUsers(aliceID)
	if err != nil {
		t.Fatalf("suggested failed: %v", err)
	}
	if len(suggested) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(suggested))
	}
}

//
// --- Store failure propagation ---
//

func TestEngage_StoreFailures(t *testing.T) {
	svc := New(&store.MockStoreFail{}, Options{})

	if _, err := svc.ToggleLike("u", "p"); err == nil {
		t.Fatalf("expected error from failing store on like")
	}
	if _, err := svc.ToggleFollow("a", "b"); err == nil {
		t.Fatalf("expected error from failing store on follow")
	}
	if _, err := svc.AddComment("u", "p", "text"); err == nil {
		t.Fatalf("expected error from failing store on comment")
	}
	if _, err := svc.ListNotifications("u"); err == nil {
		t.Fatalf("expected error from failing store on list")
	}
	if _, err := svc.SuggestedUsers("u"); err == nil {
		t.Fatalf("expected error from failing store on suggestions")
	}
}
