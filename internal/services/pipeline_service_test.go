package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/terangahq/teranga-backend/internal/core/ai"
	"github.com/terangahq/teranga-backend/internal/core/delivery"
	"github.com/terangahq/teranga-backend/internal/core/provider"
	"github.com/terangahq/teranga-backend/internal/models"
	"github.com/terangahq/teranga-backend/internal/repositories"
)

// ---------- fakes ----------

type fakeBusinessRepo struct {
	byID     map[uuid.UUID]*models.Business
	byNumber map[string]*models.Business
}

func newFakeBusinessRepo(businesses ...*models.Business) *fakeBusinessRepo {
	f := &fakeBusinessRepo{
		byID:     map[uuid.UUID]*models.Business{},
		byNumber: map[string]*models.Business{},
	}
	for _, b := range businesses {
		f.byID[b.ID] = b
		f.byNumber[b.WhatsAppNumber] = b
	}
	return f
}

func (f *fakeBusinessRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	if b, ok := f.byID[id]; ok {
		return b, nil
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeBusinessRepo) GetByWhatsAppNumber(ctx context.Context, number string) (*models.Business, error) {
	if b, ok := f.byNumber[number]; ok {
		return b, nil
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeBusinessRepo) Update(ctx context.Context, business *models.Business) error { return nil }

type fakeConversationRepo struct {
	conversations map[string]*models.Conversation
	updates       int
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{conversations: map[string]*models.Conversation{}}
}

func (f *fakeConversationRepo) GetOrCreate(ctx context.Context, businessID uuid.UUID, customerPhone, customerName string) (*models.Conversation, error) {
	key := businessID.String() + "|" + customerPhone
	if c, ok := f.conversations[key]; ok {
		return c, nil
	}
	c := &models.Conversation{
		ID:            uuid.New(),
		BusinessID:    businessID,
		CustomerPhone: customerPhone,
		CustomerName:  customerName,
	}
	f.conversations[key] = c
	return c, nil
}

func (f *fakeConversationRepo) Update(ctx context.Context, conversation *models.Conversation) error {
	f.updates++
	return nil
}

func (f *fakeConversationRepo) ArchiveIdle(ctx context.Context, idleSince time.Time) (int64, error) {
	return 0, nil
}

type fakeDedupRepo struct {
	seen map[string]bool
	err  error
}

func newFakeDedupRepo() *fakeDedupRepo { return &fakeDedupRepo{seen: map[string]bool{}} }

func (f *fakeDedupRepo) MarkProcessed(ctx context.Context, businessID uuid.UUID, prov, messageID string) error {
	if f.err != nil {
		return f.err
	}
	key := businessID.String() + "|" + messageID
	if f.seen[key] {
		return repositories.ErrDuplicate
	}
	f.seen[key] = true
	return nil
}

func (f *fakeDedupRepo) PruneExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

type fakeEngine struct {
	reply *ai.Reply
	err   error
	runs  int
}

func (f *fakeEngine) Run(ctx context.Context, business *models.Business, conversation *models.Conversation, text string) (*ai.Reply, error) {
	f.runs++
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

// ---------- harness ----------

type pipelineHarness struct {
	pipeline  *Pipeline
	business  *models.Business
	engine    *fakeEngine
	dedup     *fakeDedupRepo
	convos    *fakeConversationRepo
	delivered *int32
	server    *httptest.Server
}

func newHarness(t *testing.T, engine *fakeEngine) *pipelineHarness {
	t.Helper()

	var delivered int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&delivered, 1)
		w.Write([]byte(`{"message_id":"out-1"}`))
	}))
	t.Cleanup(srv.Close)

	business := &models.Business{
		ID:             uuid.New(),
		Name:           "Chez Fatou",
		WhatsAppNumber: "221770000000",
		IsActive:       true,
	}

	policy := delivery.RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}
	meta := delivery.NewMetaSenderWithBaseURL(srv.URL, policy)
	lam := delivery.NewLAMSender(srv.URL, "key", time.Second, policy)

	convos := newFakeConversationRepo()
	dedup := newFakeDedupRepo()
	resolver := NewResolver(newFakeBusinessRepo(business), convos)

	return &pipelineHarness{
		pipeline:  NewPipeline(resolver, dedup, engine, convos, meta, lam),
		business:  business,
		engine:    engine,
		dedup:     dedup,
		convos:    convos,
		delivered: &delivered,
		server:    srv,
	}
}

func inbound(id string) *provider.InboundMessage {
	return &provider.InboundMessage{
		Provider:   provider.KindLAM,
		MessageID:  id,
		From:       "221771234567",
		To:         "221770000000",
		Text:       "2 bissap please",
		ReceivedAt: time.Now().UTC(),
	}
}

// ---------- tests ----------

func TestPipeline_Process_HappyPath(t *testing.T) {
	h := newHarness(t, &fakeEngine{reply: &ai.Reply{Text: "Coming right up!"}})

	out := h.pipeline.Process(inbound("m-1"), h.business.ID.String())
	if out.State != StateDone {
		t.Fatalf("state = %s (%s), want DONE", out.State, out.Reason)
	}
	if out.Reply != "Coming right up!" {
		t.Errorf("reply = %q", out.Reply)
	}
	if atomic.LoadInt32(h.delivered) != 1 {
		t.Errorf("deliveries = %d, want 1", *h.delivered)
	}
	if h.convos.updates != 1 {
		t.Errorf("conversation updates = %d, want 1", h.convos.updates)
	}
}

func TestPipeline_Process_DuplicateShortCircuits(t *testing.T) {
	h := newHarness(t, &fakeEngine{reply: &ai.Reply{Text: "hi"}})

	first := h.pipeline.Process(inbound("m-dup"), h.business.ID.String())
	if first.State != StateDone || first.Duplicate {
		t.Fatalf("first outcome = %+v", first)
	}
	second := h.pipeline.Process(inbound("m-dup"), h.business.ID.String())
	if second.State != StateDone || !second.Duplicate {
		t.Fatalf("second outcome = %+v, want duplicate DONE", second)
	}

	if h.engine.runs != 1 {
		t.Errorf("engine runs = %d, duplicates must not reach the AI stage", h.engine.runs)
	}
	if atomic.LoadInt32(h.delivered) != 1 {
		t.Errorf("deliveries = %d, duplicates must not re-send", *h.delivered)
	}
}

func TestPipeline_Process_UnknownBusiness(t *testing.T) {
	h := newHarness(t, &fakeEngine{reply: &ai.Reply{Text: "hi"}})

	out := h.pipeline.Process(inbound("m-2"), uuid.NewString())
	if out.State != StateDone || out.Reason == "" {
		t.Fatalf("outcome = %+v, want reasoned DONE", out)
	}
	if h.engine.runs != 0 {
		t.Error("unknown business must not reach the AI stage")
	}
}

func TestPipeline_Process_InactiveBusiness(t *testing.T) {
	h := newHarness(t, &fakeEngine{reply: &ai.Reply{Text: "hi"}})
	h.business.IsActive = false

	out := h.pipeline.Process(inbound("m-3"), h.business.ID.String())
	if out.State != StateDone || out.Reason != ErrBusinessInactive.Error() {
		t.Fatalf("outcome = %+v", out)
	}
	if atomic.LoadInt32(h.delivered) != 0 {
		t.Error("inactive business must not deliver")
	}
}

func TestPipeline_Process_ResolveByNumber(t *testing.T) {
	// No business id on the route; the payload's "to" number decides.
	h := newHarness(t, &fakeEngine{reply: &ai.Reply{Text: "hi"}})

	out := h.pipeline.Process(inbound("m-4"), "")
	if out.State != StateDone {
		t.Fatalf("state = %s (%s)", out.State, out.Reason)
	}
}

func TestPipeline_Process_EngineErrorFails(t *testing.T) {
	h := newHarness(t, &fakeEngine{err: errors.New("menu query failed")})

	out := h.pipeline.Process(inbound("m-5"), h.business.ID.String())
	if out.State != StateFailed {
		t.Fatalf("state = %s, want FAILED", out.State)
	}
	if atomic.LoadInt32(h.delivered) != 0 {
		t.Error("failed AI stage must not deliver")
	}
}

func TestPipeline_Process_DeliveryFailureKeepsTranscript(t *testing.T) {
	h := newHarness(t, &fakeEngine{reply: &ai.Reply{Text: "hello"}})
	h.server.Close() // every send now fails

	out := h.pipeline.Process(inbound("m-6"), h.business.ID.String())
	if out.State != StateFailed {
		t.Fatalf("state = %s, want FAILED", out.State)
	}
	if h.convos.updates != 1 {
		t.Error("transcript must be persisted before delivery is attempted")
	}
}

func TestPipeline_Process_OrderIDExposed(t *testing.T) {
	order := &models.Order{ID: uuid.New()}
	h := newHarness(t, &fakeEngine{reply: &ai.Reply{Text: "placed!", Order: order}})

	out := h.pipeline.Process(inbound("m-7"), h.business.ID.String())
	if out.OrderID != order.ID.String() {
		t.Errorf("order id = %q, want %q", out.OrderID, order.ID)
	}
}

func TestPipeline_Adapt_Malformed(t *testing.T) {
	h := newHarness(t, &fakeEngine{})
	if _, err := h.pipeline.Adapt([]byte(`{`), provider.KindMeta); err == nil {
		t.Fatal("expected adapter error")
	}
}
