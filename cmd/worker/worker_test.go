package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	appkafka "example.com/socialnet/internal/broker"
	"example.com/socialnet/internal/models"
	"example.com/socialnet/internal/store"
	"github.com/segmentio/kafka-go"
)

// runWorkerOnce processes a single Kafka message for testing.
func runWorkerOnce(ctx context.Context, w *Worker) error {
	msg, err := w.reader.ReadMessage(ctx)
	if err != nil {
		return err
	}
	if len(msg.Value) == 0 {
		return nil
	}

	var post models.Post
	if err := json.Unmarshal(msg.Value, &post); err != nil {
		return err
	}

	return w.Deliver(ctx, post)
}

func seedUser(t *testing.T, st *store.MockStore, id, username string) {
	t.Helper()
	err := st.CreateUser(models.User{
		ID:       id,
		Username: username,
		Email:    username + "@example.com",
		Created:  time.Now(),
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

// ---------- Positive test ----------

func TestWorker_DistributePost(t *testing.T) {
	mockStore := store.NewMock()

	seedUser(t, mockStore, "1", "author")
	seedUser(t, mockStore, "2", "follower")
	if err := mockStore.AddFollowEdge("2", "1"); err != nil {
		t.Fatalf("add follow edge: %v", err)
	}

	post := models.Post{
		ID:       "100",
		AuthorID: "1",
		Body:     "Hello followers!",
		Created:  time.Now(),
	}
	data, _ := json.Marshal(post)

	mockKafka := &appkafka.MockKafka{
		Store:        mockStore,
		ReadMessages: []kafka.Message{{Value: data}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	w := New(mockStore, mockKafka, 1, 1)
	if err := runWorkerOnce(ctx, w); err != nil {
		t.Fatalf("worker failed: %v", err)
	}

	feed, _ := mockStore.GetFeed("2", 10)
	if len(feed) != 1 || feed[0].Body != post.Body {
		t.Fatalf("follower feed not updated correctly, got: %+v", feed)
	}

	// the author sees their own post too
	authorFeed, _ := mockStore.GetFeed("1", 10)
	if len(authorFeed) != 1 {
		t.Fatalf("author feed not updated, got: %+v", authorFeed)
	}
}

// ---------- Negative tests ----------

// Simulate Kafka read error
func TestWorker_KafkaReadError(t *testing.T) {
	mockStore := store.NewMock()
	mockKafka := &appkafka.MockKafkaFail{}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	w := New(mockStore, mockKafka, 1, 1)
	if err := runWorkerOnce(ctx, w); err == nil {
		t.Fatalf("expected error from Kafka read")
	}
}

// Simulate invalid post JSON
func TestWorker_InvalidPostJSON(t *testing.T) {
	mockStore := store.NewMock()
	mockKafka := &appkafka.MockKafka{
		Store: mockStore,
		ReadMessages: []kafka.Message{
			{Value: []byte("{invalid-json}")},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	w := New(mockStore, mockKafka, 1, 1)
	if err := runWorkerOnce(ctx, w); err == nil {
		t.Fatalf("expected error for invalid JSON")
	}
}

// Simulate store failure when resolving the post author
func TestWorker_StoreGetUserFail(t *testing.T) {
	mockStore := &store.MockStoreFail{}

	post := models.Post{
		ID:       "200",
		AuthorID: "author123",
		Body:     "Post that triggers author lookup error",
		Created:  time.Now(),
	}
	data, _ := json.Marshal(post)

	mockKafka := &appkafka.MockKafka{
		Store:        store.NewMock(),
		ReadMessages: []kafka.Message{{Value: data}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	w := New(mockStore, mockKafka, 1, 1)
	if err := runWorkerOnce(ctx, w); err == nil {
		t.Fatalf("expected error from author lookup, got nil")
	}
}

func TestWorker_EmptyKafkaMessage(t *testing.T) {
	mockStore := store.NewMock()
	mockKafka := &appkafka.MockKafka{
		Store:        mockStore,
		ReadMessages: []kafka.Message{{Value: nil}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	w := New(mockStore, mockKafka, 1, 1)
	if err := runWorkerOnce(ctx, w); err != nil {
		t.Fatalf("expected no error for empty Kafka message, got: %v", err)
	}
}
