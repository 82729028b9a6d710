package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

type fakeBotAPI struct {
	mu    sync.Mutex
	texts []string
	chats []string
}

func (f *fakeBotAPI) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			fmt.Fprint(w, `{"ok":true,"result":{"id":42,"is_bot":true,"first_name":"bot","username":"insight_bot"}}`)
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			f.mu.Lock()
			f.texts = append(f.texts, r.FormValue("text"))
			f.chats = append(f.chats, r.FormValue("chat_id"))
			f.mu.Unlock()
			fmt.Fprint(w, `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":1,"type":"private"}}}`)
		default:
			http.NotFound(w, r)
		}
	}
}

func newTestNotifier(server *httptest.Server, chatID string) *Notifier {
	n := NewNotifier("token", chatID)
	n.endpoint = server.URL + "/bot%s/%s"
	n.client = server.Client()
	return n
}

func TestPublishDigestSendsPlainText(t *testing.T) {
	t.Parallel()

	fake := &fakeBotAPI{}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	n := newTestNotifier(server, "12345")
	if err := n.PublishDigest(context.Background(), "2 new items\n\n- [MACRO] A"); err != nil {
		t.Fatalf("PublishDigest: %v", err)
	}
	if err := n.PublishDigest(context.Background(), "   "); err != nil {
		t.Fatalf("blank digest: %v", err)
	}

	if len(fake.texts) != 1 || !strings.HasPrefix(fake.texts[0], "2 new items") {
		t.Fatalf("unexpected messages %q", fake.texts)
	}
	if fake.chats[0] != "12345" {
		t.Fatalf("unexpected chat %q", fake.chats[0])
	}
}

func TestPublishDigestToChannel(t *testing.T) {
	t.Parallel()

	fake := &fakeBotAPI{}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	if err := newTestNotifier(server, "@insightstream").PublishDigest(context.Background(), "hello"); err != nil {
		t.Fatalf("PublishDigest: %v", err)
	}
	if len(fake.chats) != 1 || fake.chats[0] != "@insightstream" {
		t.Fatalf("unexpected chats %q", fake.chats)
	}
}

func TestPublishDigestMisconfigured(t *testing.T) {
	t.Parallel()

	if err := NewNotifier("", "1").PublishDigest(context.Background(), "x"); !errors.Is(err, ErrMisconfigured) {
		t.Fatalf("expected ErrMisconfigured, got %v", err)
	}

	fake := &fakeBotAPI{}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()
	if err := newTestNotifier(server, "not-a-chat").PublishDigest(context.Background(), "x"); !errors.Is(err, ErrMisconfigured) {
		t.Fatalf("expected ErrMisconfigured for bad chat id, got %v", err)
	}
}

func TestSplitMessage(t *testing.T) {
	t.Parallel()

	if got := splitMessage("short", 10); len(got) != 1 || got[0] != "short" {
		t.Fatalf("unexpected split %q", got)
	}

	text := strings.Repeat("食安新聞一則\n", 10)
	chunks := splitMessage(text, 20)
	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if len([]rune(c)) > 20 {
			t.Fatalf("chunk too long: %q", c)
		}
	}
	if strings.Join(chunks, "\n") != strings.TrimRight(text, "\n") {
		t.Fatalf("chunks lost content: %q", chunks)
	}
}
