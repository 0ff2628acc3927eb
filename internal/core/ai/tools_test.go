package ai

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"github.com/terangahq/teranga-backend/internal/models"
)

// ---------- test helpers ----------

type fakeOrderRepo struct {
	created []*models.Order
	err     error
}

func (f *fakeOrderRepo) Create(ctx context.Context, order *models.Order) error {
	if f.err != nil {
		return f.err
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	f.created = append(f.created, order)
	return nil
}

func (f *fakeOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	for _, o := range f.created {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, nil
}

func (f *fakeOrderRepo) ListByBusiness(ctx context.Context, businessID uuid.UUID, limit int) ([]models.Order, error) {
	return nil, nil
}

func (f *fakeOrderRepo) Update(ctx context.Context, order *models.Order) error { return nil }

func testMenu() []models.MenuItem {
	return []models.MenuItem{
		{ID: uuid.New(), Name: "Thieboudienne", Description: "rice and fish", Category: "Plats", PriceCents: 3500, IsAvailable: true},
		{ID: uuid.New(), Name: "Yassa Poulet", Description: "chicken in onion sauce", Category: "Plats", PriceCents: 3000, IsAvailable: true},
		{ID: uuid.New(), Name: "Yassa", Description: "onion sauce", Category: "Plats", PriceCents: 2500, IsAvailable: true},
		{ID: uuid.New(), Name: "Bissap", Description: "hibiscus drink", Category: "Boissons", PriceCents: 500, IsAvailable: true},
	}
}

func testBusiness() *models.Business {
	return &models.Business{
		ID:              uuid.New(),
		Name:            "Chez Fatou",
		OrderingEnabled: true,
	}
}

func decodeResult(t *testing.T, raw string) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		t.Fatalf("tool result is not JSON: %v\n%s", err, raw)
	}
	return out
}

// ---------- get_menu_information ----------

func TestToolset_GetMenuInformation(t *testing.T) {
	ts := NewToolset(testBusiness(), testMenu(), &fakeOrderRepo{}, "221771234567", "Awa")

	out := decodeResult(t, ts.Execute(context.Background(), ToolCall{
		Name:      ToolGetMenuInformation,
		Arguments: json.RawMessage(`{"query":"bissap"}`),
	}))
	if out["found"] != true {
		t.Fatalf("expected found=true: %v", out)
	}
	items := out["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("matches = %d, want 1", len(items))
	}
	item := items[0].(map[string]interface{})
	if item["price"] != "500 FCFA" {
		t.Errorf("price = %v, want 500 FCFA", item["price"])
	}
}

func TestToolset_GetMenuInformation_NotFound(t *testing.T) {
	ts := NewToolset(testBusiness(), testMenu(), &fakeOrderRepo{}, "221771234567", "")

	out := decodeResult(t, ts.Execute(context.Background(), ToolCall{
		Name:      ToolGetMenuInformation,
		Arguments: json.RawMessage(`{"query":"pizza"}`),
	}))
	if out["found"] != false {
		t.Errorf("expected found=false for off-menu query: %v", out)
	}
}

// ---------- calculate_order ----------

func TestToolset_CalculateOrder_TotalFromMenuPrices(t *testing.T) {
	ts := NewToolset(testBusiness(), testMenu(), &fakeOrderRepo{}, "221771234567", "")

	out := decodeResult(t, ts.Execute(context.Background(), ToolCall{
		Name:      ToolCalculateOrder,
		Arguments: json.RawMessage(`{"order_text":"2 Thieboudienne et 1 Bissap"}`),
	}))
	if got := out["total_cents"].(float64); got != 7500 {
		t.Errorf("total_cents = %v, want 7500", got)
	}
	if out["total"] != "7500 FCFA" {
		t.Errorf("total = %v", out["total"])
	}
}

func TestToolset_CalculateOrder_LongestNameWins(t *testing.T) {
	ts := NewToolset(testBusiness(), testMenu(), &fakeOrderRepo{}, "221771234567", "")

	out := decodeResult(t, ts.Execute(context.Background(), ToolCall{
		Name:      ToolCalculateOrder,
		Arguments: json.RawMessage(`{"order_text":"1 yassa poulet"}`),
	}))
	items := out["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if name := items[0].(map[string]interface{})["name"]; name != "Yassa Poulet" {
		t.Errorf("matched %v, want Yassa Poulet", name)
	}
}

func TestToolset_CalculateOrder_ReportsUnmatched(t *testing.T) {
	ts := NewToolset(testBusiness(), testMenu(), &fakeOrderRepo{}, "221771234567", "")

	out := decodeResult(t, ts.Execute(context.Background(), ToolCall{
		Name:      ToolCalculateOrder,
		Arguments: json.RawMessage(`{"order_text":"1 Thieboudienne, 2 hamburgers"}`),
	}))
	notFound := out["not_found_items"].([]interface{})
	if len(notFound) != 1 {
		t.Fatalf("not_found_items = %v, want one entry", notFound)
	}
}

// ---------- place_order ----------

func TestToolset_PlaceOrder_IgnoresAssertedTotal(t *testing.T) {
	repo := &fakeOrderRepo{}
	ts := NewToolset(testBusiness(), testMenu(), repo, "221771234567", "Awa")

	// The model asserts a wrong total; it must be recomputed from menu prices.
	out := decodeResult(t, ts.Execute(context.Background(), ToolCall{
		Name:      ToolPlaceOrder,
		Arguments: json.RawMessage(`{"items":[{"name":"Thieboudienne","quantity":2}],"total_cents":100}`),
	}))
	if out["placed"] != true {
		t.Fatalf("expected placed=true: %v", out)
	}
	if got := out["total_cents"].(float64); got != 7000 {
		t.Errorf("total_cents = %v, want 7000", got)
	}

	if len(repo.created) != 1 {
		t.Fatalf("orders persisted = %d, want 1", len(repo.created))
	}
	order := repo.created[0]
	if order.TotalCents != 7000 {
		t.Errorf("persisted total = %d, want 7000", order.TotalCents)
	}
	lines, err := order.Lines()
	if err != nil {
		t.Fatalf("Lines: %v", err)
	}
	if len(lines) != 1 || lines[0].SubtotalCents != 7000 {
		t.Errorf("lines = %+v", lines)
	}
	if ts.PlacedOrder() == nil {
		t.Error("PlacedOrder should expose the persisted order")
	}
}

func TestToolset_PlaceOrder_OrderingDisabled(t *testing.T) {
	business := testBusiness()
	business.OrderingEnabled = false
	repo := &fakeOrderRepo{}
	ts := NewToolset(business, testMenu(), repo, "221771234567", "")

	out := decodeResult(t, ts.Execute(context.Background(), ToolCall{
		Name:      ToolPlaceOrder,
		Arguments: json.RawMessage(`{"items":[{"name":"Thieboudienne","quantity":1}]}`),
	}))
	if out["placed"] != false {
		t.Fatalf("expected placed=false: %v", out)
	}
	if len(repo.created) != 0 {
		t.Error("nothing may be persisted when ordering is disabled")
	}
	if ts.PlacedOrder() != nil {
		t.Error("PlacedOrder must stay nil")
	}
}

func TestToolset_PlaceOrder_UnknownItemBlocks(t *testing.T) {
	repo := &fakeOrderRepo{}
	ts := NewToolset(testBusiness(), testMenu(), repo, "221771234567", "")

	out := decodeResult(t, ts.Execute(context.Background(), ToolCall{
		Name:      ToolPlaceOrder,
		Arguments: json.RawMessage(`{"items":[{"name":"Sushi","quantity":1},{"name":"Bissap","quantity":1}]}`),
	}))
	if out["placed"] != false {
		t.Fatalf("expected placed=false: %v", out)
	}
	if len(repo.created) != 0 {
		t.Error("partial orders must not be persisted")
	}
}

func TestToolset_Execute_UnknownTool(t *testing.T) {
	ts := NewToolset(testBusiness(), testMenu(), &fakeOrderRepo{}, "221771234567", "")
	out := decodeResult(t, ts.Execute(context.Background(), ToolCall{Name: "drop_tables"}))
	if out["error"] == nil {
		t.Errorf("unknown tool should return an error payload: %v", out)
	}
}

func TestToolset_Execute_MalformedArguments(t *testing.T) {
	ts := NewToolset(testBusiness(), testMenu(), &fakeOrderRepo{}, "221771234567", "")
	out := decodeResult(t, ts.Execute(context.Background(), ToolCall{
		Name:      ToolPlaceOrder,
		Arguments: json.RawMessage(`{"items": "not-an-array"`),
	}))
	if out["error"] == nil {
		t.Errorf("malformed args should return an error payload: %v", out)
	}
}

// ---------- language detection ----------

func TestDetectLanguage(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"Bonjour, je veux commander deux thieb", "French"},
		{"Salaam, nanga def?", "Wolof"},
		{"مرحبا، أريد أن أطلب", "Arabic"},
		{"Hi, can I see the menu?", "English"},
	}
	for _, tc := range cases {
		if got := languageName(DetectLanguage(tc.text)); got != tc.want {
			t.Errorf("DetectLanguage(%q) = %s, want %s", tc.text, got, tc.want)
		}
	}
}
