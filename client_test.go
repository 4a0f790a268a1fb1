package archiveagent

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/archive"
	domainChat "github.com/sedwardstx/DprgArchiveAgent/internal/domain/chat"
	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/search/result"
)

func TestNew_NoAddress(t *testing.T) {
	_, err := New(WithOpenAI("sk-test", ""))
	if err == nil {
		t.Fatal("expected error when no redis address provided")
	}
}

func TestNew_NoAPIKey(t *testing.T) {
	_, err := New(WithRedis([]string{"localhost:6379"}, ""))
	if err == nil {
		t.Fatal("expected error when no api key provided")
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}

	WithRedis([]string{"localhost:6379"}, "secret")(cfg)
	if len(cfg.addrs) != 1 || cfg.addrs[0] != "localhost:6379" {
		t.Errorf("addrs = %v, want [localhost:6379]", cfg.addrs)
	}
	if cfg.password != "secret" {
		t.Errorf("password = %q, want secret", cfg.password)
	}

	WithIndex("archive:idx", "archive:")(cfg)
	if cfg.indexName != "archive:idx" || cfg.keyPrefix != "archive:" {
		t.Errorf("index = %q prefix = %q", cfg.indexName, cfg.keyPrefix)
	}

	WithOpenAI("sk-test", "https://proxy.local/v1")(cfg)
	if cfg.apiKey != "sk-test" || cfg.baseURL != "https://proxy.local/v1" {
		t.Errorf("apiKey = %q baseURL = %q", cfg.apiKey, cfg.baseURL)
	}

	WithModels("gpt-4", "gpt-3.5-turbo")(cfg)
	if cfg.model != "gpt-4" || cfg.fallbackModel != "gpt-3.5-turbo" {
		t.Errorf("model = %q fallback = %q", cfg.model, cfg.fallbackModel)
	}

	WithEmbeddingModel("text-embedding-3-small")(cfg)
	if cfg.embeddingModel != "text-embedding-3-small" {
		t.Errorf("embeddingModel = %q", cfg.embeddingModel)
	}

	WithSearchDefaults(5, 0.6)(cfg)
	if cfg.topK != 5 || cfg.minScore != 0.6 {
		t.Errorf("topK = %d minScore = %v", cfg.topK, cfg.minScore)
	}

	WithHybridWeights(0.8, 0.2)(cfg)
	if cfg.denseWeight != 0.8 || cfg.sparseWeight != 0.2 {
		t.Errorf("weights = %v/%v", cfg.denseWeight, cfg.sparseWeight)
	}

	WithChatDefaults(0.5, 300)(cfg)
	if cfg.temperature != 0.5 || cfg.maxTokens != 300 {
		t.Errorf("temperature = %v maxTokens = %d", cfg.temperature, cfg.maxTokens)
	}

	WithSessionTTL(30 * time.Minute)(cfg)
	if cfg.sessionTTL != 30*time.Minute {
		t.Errorf("sessionTTL = %v", cfg.sessionTTL)
	}

	l := zap.NewNop()
	WithLogger(l)(cfg)
	if cfg.logger != l {
		t.Error("logger not applied")
	}
}

func TestToInternalFilter(t *testing.T) {
	if !toInternalFilter(Filter{}).IsEmpty() {
		t.Error("empty public filter should convert to an empty internal filter")
	}

	f := toInternalFilter(Filter{
		Author:   "Bob@List.org",
		Year:     2007,
		Keywords: []string{"encoder"},
	})
	match := archive.Metadata{
		Author:   "bob@list.org",
		Year:     2007,
		Keywords: []string{"encoder", "pid"},
	}
	if !f.Matches(match) {
		t.Error("expected the converted filter to match")
	}
	if f.Matches(archive.Metadata{Author: "bob@list.org", Year: 2006}) {
		t.Error("expected year mismatch to fail")
	}
}

func TestFromHits(t *testing.T) {
	hits := []result.Hit{
		result.New(archive.New("doc-1", "an excerpt", archive.Metadata{
			Author:   "alice@list.org",
			Title:    "Encoder tips",
			Year:     2007,
			Month:    6,
			Day:      14,
			Keywords: []string{"encoder"},
			HasURL:   true,
		}), 0.91, 0),
	}

	out := fromHits(hits)
	if len(out) != 1 {
		t.Fatalf("expected 1 result, got %d", len(out))
	}
	r := out[0]
	if r.ID != "doc-1" || r.Excerpt != "an excerpt" || r.Score != 0.91 {
		t.Errorf("unexpected result: %+v", r)
	}
	if r.Author != "alice@list.org" || r.Title != "Encoder tips" || !r.HasURL {
		t.Errorf("unexpected metadata: %+v", r)
	}
	if r.Date != "2007-06-14" {
		t.Errorf("expected rendered date, got %q", r.Date)
	}
}

func TestFromReply(t *testing.T) {
	reply := fromReply(domainChat.Reply{
		Text: "grounded answer",
		Referenced: []archive.Document{
			archive.New("doc-1", "excerpt", archive.Metadata{Author: "bob@list.org"}),
		},
		Fallback: false,
		Done:     false,
	})

	if reply.Text != "grounded answer" {
		t.Errorf("unexpected text %q", reply.Text)
	}
	if len(reply.Referenced) != 1 || reply.Referenced[0].ID != "doc-1" {
		t.Errorf("unexpected referenced documents: %+v", reply.Referenced)
	}
	if reply.Referenced[0].Author != "bob@list.org" {
		t.Errorf("unexpected author %q", reply.Referenced[0].Author)
	}
}

func TestFilterIsEmpty(t *testing.T) {
	if !(Filter{}).IsEmpty() {
		t.Error("zero filter should be empty")
	}
	if (Filter{Year: 2007}).IsEmpty() {
		t.Error("filter with a year set should not be empty")
	}
}
