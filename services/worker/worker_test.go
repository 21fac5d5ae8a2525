package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"jmlee87/pricelens/helpers"
	"jmlee87/pricelens/internal/extract"
	pkgerrors "jmlee87/pricelens/pkg/errors"
	"jmlee87/pricelens/services/publisher"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockSource implements the Source interface for testing
type MockSource struct {
	name     string
	listings []extract.Listing
	fetchErr error
}

var _ Source = (*MockSource)(nil)

func (m *MockSource) FetchListings() ([]extract.Listing, error) {
	return m.listings, m.fetchErr
}

func (m *MockSource) GetName() string {
	return m.name
}

// MockPublisher implements the publisher.Publisher interface for testing
type MockPublisher struct {
	mu         sync.Mutex
	messages   map[string][][]byte
	trims      int
	publishErr error
}

var _ publisher.Publisher = (*MockPublisher)(nil)

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		messages: make(map[string][][]byte),
	}
}

func (m *MockPublisher) Publish(key string, message []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.publishErr != nil {
		return m.publishErr
	}

	messageCopy := make([]byte, len(message))
	copy(messageCopy, message)
	m.messages[key] = append(m.messages[key], messageCopy)
	return nil
}

func (m *MockPublisher) TrimStreams() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trims++
	return nil
}

func (m *MockPublisher) Close() error {
	return nil
}

func (m *MockPublisher) Messages(key string) [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.messages[key]
}

func (m *MockPublisher) Trims() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.trims
}

// MockLogger implements the helpers.LoggerInterface for testing
type MockLogger struct {
	mu     sync.Mutex
	errors []string
	infos  []string
}

var _ helpers.LoggerInterface = (*MockLogger)(nil)

func (m *MockLogger) LogError(component string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, component+": "+err.Error())
}

func (m *MockLogger) LogInfo(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos = append(m.infos, format)
}

func (m *MockLogger) Errors() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.errors...)
}

func TestWorkerPublishesListings(t *testing.T) {
	pub := NewMockPublisher()
	log := &MockLogger{}

	source := &MockSource{
		name: "search",
		listings: []extract.Listing{
			{Title: "Drill", URL: "https://example.com/dp/B001", DisplayPrice: "$32.00", EffectivePrice: 32, HasCoupon: true, Delivery: extract.DeliveryToday},
			{Title: "Saw", URL: "https://example.com/dp/B002", DisplayPrice: "$12.00", EffectivePrice: 12},
		},
	}

	w := NewWorker(context.Background(), []Source{source}, pub, log, time.Minute)
	w.runSources()

	messages := pub.Messages("search")
	require.Len(t, messages, 2)

	var first extract.Listing
	require.NoError(t, json.Unmarshal(messages[0], &first))
	assert.Equal(t, "Drill", first.Title)
	assert.Equal(t, 32.0, first.EffectivePrice)
	assert.True(t, first.HasCoupon)

	assert.Equal(t, 1, pub.Trims(), "streams are trimmed after each sweep")
	assert.Empty(t, log.Errors())
}

func TestWorkerLogsFetchFailure(t *testing.T) {
	pub := NewMockPublisher()
	log := &MockLogger{}

	source := &MockSource{name: "broken", fetchErr: errors.New("fetch failed")}

	w := NewWorker(context.Background(), []Source{source}, pub, log, time.Minute)
	w.runSources()

	require.Len(t, log.Errors(), 1)
	assert.Contains(t, log.Errors()[0], "broken")
	assert.Empty(t, pub.Messages("broken"))
}

func TestWorkerClassifiesPublishFailure(t *testing.T) {
	pub := NewMockPublisher()
	pub.publishErr = errors.New("connection reset")
	log := &MockLogger{}

	source := &MockSource{
		name:     "search",
		listings: []extract.Listing{{Title: "Drill", URL: "https://example.com/dp/B001"}},
	}

	w := NewWorker(context.Background(), []Source{source}, pub, log, time.Minute)
	w.runSources()

	require.NotEmpty(t, log.Errors())
	assert.Contains(t, log.Errors()[0], string(pkgerrors.ErrorTypePublisher))
	assert.Contains(t, log.Errors()[0], "connection reset")
}

func TestWorkerRunsSourcesInParallel(t *testing.T) {
	pub := NewMockPublisher()
	log := &MockLogger{}

	sources := []Source{
		&MockSource{name: "a", listings: []extract.Listing{{Title: "A", URL: "u"}}},
		&MockSource{name: "b", listings: []extract.Listing{{Title: "B", URL: "u"}}},
	}

	w := NewWorker(context.Background(), sources, pub, log, time.Minute)
	w.runSources()

	assert.Len(t, pub.Messages("a"), 1)
	assert.Len(t, pub.Messages("b"), 1)
}

func TestWorkerStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pub := NewMockPublisher()
	log := &MockLogger{}

	source := &MockSource{name: "search"}
	w := NewWorker(ctx, []Source{source}, pub, log, time.Hour)

	done := make(chan error, 1)
	go func() {
		done <- w.Start()
	}()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}
}

func TestSearchSourceExtractsFromFetchedPage(t *testing.T) {
	html := `<html><body><div class="s-main-slot">
		<div data-component-type="s-search-result" data-asin="B001">
			<h2><a class="a-link-normal" href="/dp/B001"><span>Drill</span></a></h2>
			<span class="a-price"><span class="a-price-whole">15</span><span class="a-price-fraction">00</span></span>
		</div>
	</div></body></html>`

	extractor := extract.New(extract.DefaultSelectors(), "https://www.amazon.com")
	source := NewSearchSource("search", "https://www.amazon.com/s?k=drill",
		func(string) (io.Reader, error) { return strings.NewReader(html), nil },
		extractor,
	)

	listings, err := source.FetchListings()
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "Drill", listings[0].Title)
	assert.Equal(t, 15.0, listings[0].EffectivePrice)
}
