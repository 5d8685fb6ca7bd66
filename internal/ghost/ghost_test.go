package ghost

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"meal-scheduler/internal/catalog"
	"meal-scheduler/internal/config"
	"meal-scheduler/internal/schedule"
	"meal-scheduler/internal/scheduler"

	"github.com/golang-jwt/jwt/v5"
)

func TestFetchTaggedPosts(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Mock Ghost API server
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Check that the key is in the query
			if r.URL.Query().Get("key") != "test_key" {
				t.Errorf("Expected key 'test_key', got '%s'", r.URL.Query().Get("key"))
			}
			if r.URL.Query().Get("filter") != "tag:main" {
				t.Errorf("Expected filter 'tag:main', got '%s'", r.URL.Query().Get("filter"))
			}

			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, `{
				"posts": [
					{"id": "1", "title": "Recipe 1", "tags": [{"name": "Main", "slug": "main"}, {"name": "Pasta", "slug": "pasta"}]},
					{"id": "2", "title": "Recipe 2", "tags": [{"name": "main", "slug": "main"}]}
				]
			}`)
		}))
		defer server.Close()

		// Create a config pointing to the test server
		cfg := &config.Config{
			GhostURL:        server.URL,
			GhostContentKey: "test_key",
		}
		client := NewClient(cfg)

		posts, err := client.FetchTaggedPosts(context.Background(), "main")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if len(posts) != 2 {
			t.Fatalf("Expected 2 posts, got %d", len(posts))
		}
		if len(posts[0].Tags) != 2 {
			t.Errorf("Expected tags to be decoded, got %+v", posts[0].Tags)
		}
	})

	t.Run("ServerError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		cfg := &config.Config{
			GhostURL:        server.URL,
			GhostContentKey: "test_key",
		}
		client := NewClient(cfg)

		_, err := client.FetchTaggedPosts(context.Background(), "side")
		if err == nil {
			t.Fatal("Expected an error for non-200 status code, got nil")
		}
	})
}

func TestCreatePost(t *testing.T) {
	secret := "00112233445566778899aabbccddeeff"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Ghost ") {
			t.Errorf("Expected Ghost authorization, got %q", auth)
		}
		token, err := jwt.Parse(strings.TrimPrefix(auth, "Ghost "), func(tok *jwt.Token) (interface{}, error) {
			if tok.Header["kid"] != "keyid" {
				t.Errorf("Expected kid 'keyid', got %v", tok.Header["kid"])
			}
			return []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88, 0x99, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}, nil
		}, jwt.WithAudience("/v3/admin/"))
		if err != nil || !token.Valid {
			t.Errorf("Expected valid admin token, got %v", err)
		}

		var body struct {
			Posts []map[string]interface{} `json:"posts"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if len(body.Posts) != 1 || body.Posts[0]["status"] != "draft" {
			t.Errorf("Unexpected request body: %+v", body)
		}

		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"posts": [{"id": "p1", "title": %q}]}`, body.Posts[0]["title"])
	}))
	defer server.Close()

	client := NewClient(&config.Config{GhostURL: server.URL, GhostAdminKey: "keyid:" + secret})
	post, err := client.CreatePost(context.Background(), "Week", "<p>x</p>", false)
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if post.ID != "p1" || post.Title != "Week" {
		t.Errorf("Unexpected post: %+v", post)
	}

	bad := NewClient(&config.Config{GhostURL: server.URL, GhostAdminKey: "no-colon"})
	if _, err := bad.CreatePost(context.Background(), "Week", "", false); err == nil {
		t.Error("Expected error for malformed admin key")
	}
}

func TestItemsFromPosts(t *testing.T) {
	posts := []Post{
		{ID: "1", Title: "Pad Thai", Excerpt: "Noodles", Tags: []Tag{{Name: "Main", Slug: "main"}, {Name: "Noodles", Slug: "noodles"}, {Name: "#hidden", Slug: "hash-hidden"}}},
		{ID: "2", Title: "  "},
	}
	items := ItemsFromPosts(posts, "alice", catalog.RoleMain)
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
	it := items[0]
	if it.ID != "ghost-alice-1" || it.Role != catalog.RoleMain || it.Notes != "Noodles" {
		t.Errorf("Unexpected item: %+v", it)
	}
	if len(it.Tags) != 1 || it.Tags[0] != "Noodles" {
		t.Errorf("Expected [Noodles], got %v", it.Tags)
	}
}

func TestScheduleHTML(t *testing.T) {
	d := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	days := []scheduler.Day{
		{Date: d, Meals: []scheduler.Assignment{{
			Date: d, MealType: schedule.Dinner,
			Main: catalog.Item{Title: "Mac & Cheese"}, Side: catalog.Item{Title: "Peas"},
		}}},
		{Date: d.AddDate(0, 0, 1), Meals: []scheduler.Assignment{}},
	}
	out := ScheduleHTML(days)
	if !strings.Contains(out, "<h2>Monday, Jun 10</h2>") {
		t.Errorf("Missing day header: %s", out)
	}
	if !strings.Contains(out, "<strong>Dinner:</strong> Mac &amp; Cheese with Peas") {
		t.Errorf("Missing escaped meal line: %s", out)
	}
	if !strings.Contains(out, "Nothing planned") {
		t.Error("Missing empty-day marker")
	}
	title := ScheduleTitle(schedule.Schedule{StartDate: d, EndDate: d.AddDate(0, 0, 6)})
	if title != "Meal Schedule 2024-06-10 to 2024-06-16" {
		t.Errorf("Unexpected title %q", title)
	}
}
