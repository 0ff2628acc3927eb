package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/terangahq/teranga-backend/internal/models"
	"github.com/terangahq/teranga-backend/internal/repositories"
)

// Tool names exposed to the model. Exactly these three are callable.
const (
	ToolGetMenuInformation = "get_menu_information"
	ToolCalculateOrder     = "calculate_order"
	ToolPlaceOrder         = "place_order"
)

// Toolset executes the model's tool calls against one business's live
// menu for one conversation turn. Prices always come from the menu the
// toolset was built with; totals asserted by the model are ignored.
type Toolset struct {
	business *models.Business
	menu     []models.MenuItem
	orders   repositories.OrderRepo

	customerPhone string
	customerName  string

	placed *models.Order
}

func NewToolset(business *models.Business, menu []models.MenuItem, orders repositories.OrderRepo, customerPhone, customerName string) *Toolset {
	return &Toolset{
		business:      business,
		menu:          menu,
		orders:        orders,
		customerPhone: customerPhone,
		customerName:  customerName,
	}
}

// PlacedOrder returns the order persisted during this turn, if any.
func (t *Toolset) PlacedOrder() *models.Order {
	return t.placed
}

// Specs describes the toolset to the model.
func (t *Toolset) Specs() []ToolSpec {
	return []ToolSpec{
		{
			Name:        ToolGetMenuInformation,
			Description: "Look up menu items by name or keyword. Returns matching items with name, price and description, or not-found.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"query": {"type": "string", "description": "Dish name or keyword to search for"}
				},
				"required": ["query"]
			}`),
		},
		{
			Name:        ToolCalculateOrder,
			Description: "Parse a customer's order text against the menu and compute the total. Unmatched phrases are reported in not_found_items.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"order_text": {"type": "string", "description": "The customer's order in natural language, e.g. '2 Thieboudienne and 1 Yassa'"}
				},
				"required": ["order_text"]
			}`),
		},
		{
			Name:        ToolPlaceOrder,
			Description: "Place a confirmed order. Items must use exact menu item names; the system computes all prices and the total.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"items": {
						"type": "array",
						"items": {
							"type": "object",
							"properties": {
								"name": {"type": "string"},
								"quantity": {"type": "integer", "minimum": 1}
							},
							"required": ["name", "quantity"]
						}
					},
					"customer_name": {"type": "string"},
					"notes": {"type": "string"}
				},
				"required": ["items"]
			}`),
		},
	}
}

// Execute runs one tool call and returns the JSON result fed back to
// the model. Malformed arguments are terminal for the call (never
// retried); the model sees the error text and can recover or apologize.
func (t *Toolset) Execute(ctx context.Context, call ToolCall) string {
	switch call.Name {
	case ToolGetMenuInformation:
		return t.getMenuInformation(call.Arguments)
	case ToolCalculateOrder:
		return t.calculateOrder(call.Arguments)
	case ToolPlaceOrder:
		return t.placeOrder(ctx, call.Arguments)
	default:
		return toolError(fmt.Sprintf("unknown tool: %s", call.Name))
	}
}

func toolError(msg string) string {
	raw, _ := json.Marshal(map[string]string{"error": msg})
	return string(raw)
}

func toolResult(v interface{}) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return toolError("internal: could not encode tool result")
	}
	return string(raw)
}

type menuMatch struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	PriceCents  int64  `json:"price_cents"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
}

func (t *Toolset) getMenuInformation(args json.RawMessage) string {
	var in struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return toolError("invalid arguments for get_menu_information")
	}

	query := strings.ToLower(strings.TrimSpace(in.Query))
	var matches []menuMatch
	for _, item := range t.menu {
		name := strings.ToLower(item.Name)
		desc := strings.ToLower(item.Description)
		if query == "" || strings.Contains(name, query) || strings.Contains(query, name) || strings.Contains(desc, query) {
			matches = append(matches, menuMatch{
				Name:        item.Name,
				Price:       formatPrice(item.PriceCents),
				PriceCents:  item.PriceCents,
				Description: item.Description,
				Category:    item.Category,
			})
		}
	}

	if len(matches) == 0 {
		return toolResult(map[string]interface{}{
			"found":   false,
			"message": fmt.Sprintf("No menu item matches %q.", in.Query),
		})
	}
	return toolResult(map[string]interface{}{
		"found": true,
		"items": matches,
	})
}

type calculatedLine struct {
	Name          string `json:"name"`
	Quantity      int    `json:"quantity"`
	UnitPrice     string `json:"unit_price"`
	UnitPriceCent int64  `json:"unit_price_cents"`
	Subtotal      string `json:"subtotal"`
}

func (t *Toolset) calculateOrder(args json.RawMessage) string {
	var in struct {
		OrderText string `json:"order_text"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return toolError("invalid arguments for calculate_order")
	}

	lines, notFound := parseOrderText(in.OrderText, t.menu)
	if len(lines) == 0 && len(notFound) == 0 {
		return toolError("order_text is empty")
	}

	var out []calculatedLine
	var total int64
	for _, l := range lines {
		subtotal := l.UnitPriceCents * int64(l.Quantity)
		total += subtotal
		out = append(out, calculatedLine{
			Name:          l.Name,
			Quantity:      l.Quantity,
			UnitPrice:     formatPrice(l.UnitPriceCents),
			UnitPriceCent: l.UnitPriceCents,
			Subtotal:      formatPrice(subtotal),
		})
	}

	return toolResult(map[string]interface{}{
		"items":           out,
		"total":           formatPrice(total),
		"total_cents":     total,
		"not_found_items": notFound,
	})
}

func (t *Toolset) placeOrder(ctx context.Context, args json.RawMessage) string {
	// Gate first: when ordering is disabled nothing may be persisted.
	if !t.business.OrderingEnabled {
		return toolResult(map[string]interface{}{
			"placed":  false,
			"message": "Ordering through chat is currently disabled for this restaurant. Politely let the customer know and suggest calling the restaurant directly.",
		})
	}

	var in struct {
		Items []struct {
			Name     string `json:"name"`
			Quantity int    `json:"quantity"`
		} `json:"items"`
		CustomerName string `json:"customer_name"`
		Notes        string `json:"notes"`
		// Any total the model asserts is deliberately not read; the
		// total is recomputed below from menu prices.
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return toolError("invalid arguments for place_order")
	}
	if len(in.Items) == 0 {
		return toolError("place_order requires at least one item")
	}

	var orderLines []models.OrderLine
	var unmatched []string
	for _, reqItem := range in.Items {
		qty := reqItem.Quantity
		if qty < 1 {
			qty = 1
		}
		item := matchMenuItem(reqItem.Name, t.menu)
		if item == nil {
			unmatched = append(unmatched, reqItem.Name)
			continue
		}
		orderLines = append(orderLines, models.OrderLine{
			Name:           item.Name,
			Quantity:       qty,
			UnitPriceCents: item.PriceCents,
		})
	}
	if len(unmatched) > 0 {
		return toolResult(map[string]interface{}{
			"placed":          false,
			"not_found_items": unmatched,
			"message":         "Some items are not on the menu; ask the customer to clarify before placing the order.",
		})
	}

	customerName := in.CustomerName
	if customerName == "" {
		customerName = t.customerName
	}

	order := &models.Order{
		BusinessID:    t.business.ID,
		CustomerPhone: t.customerPhone,
		CustomerName:  customerName,
		Notes:         in.Notes,
		Status:        models.OrderStatusPending,
	}
	if err := order.SetLines(orderLines); err != nil {
		return toolError("internal: could not encode order lines")
	}

	if err := t.orders.Create(ctx, order); err != nil {
		return toolError("could not save the order, ask the customer to try again")
	}
	t.placed = order

	return toolResult(map[string]interface{}{
		"placed":      true,
		"order_id":    order.ID.String(),
		"total":       formatPrice(order.TotalCents),
		"total_cents": order.TotalCents,
		"message":     "Order placed. Confirm the total and thank the customer.",
	})
}

var quantityRe = regexp.MustCompile(`(?:^|\s)(\d+)\s*(?:x\s*)?`)

// parseOrderText splits a natural-language order into menu lines.
// Unmatched phrases are returned separately, never silently dropped.
func parseOrderText(text string, menu []models.MenuItem) ([]models.OrderLine, []string) {
	// Longest names first so "Yassa Poulet" wins over "Yassa".
	sorted := make([]models.MenuItem, len(menu))
	copy(sorted, menu)
	sort.Slice(sorted, func(i, j int) bool {
		return len(sorted[i].Name) > len(sorted[j].Name)
	})

	normalized := strings.NewReplacer(
		"\n", ",", ";", ",",
		" and ", ",", " And ", ",",
		" et ", ",", " ak ", ",", " و ", ",",
	).Replace(text)

	var lines []models.OrderLine
	var notFound []string
	for _, segment := range strings.Split(normalized, ",") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		qty := 1
		if m := quantityRe.FindStringSubmatch(segment); m != nil {
			fmt.Sscanf(m[1], "%d", &qty)
			if qty < 1 {
				qty = 1
			}
		}

		low := strings.ToLower(segment)
		var matched *models.MenuItem
		for i := range sorted {
			if strings.Contains(low, strings.ToLower(sorted[i].Name)) {
				matched = &sorted[i]
				break
			}
		}
		if matched == nil {
			notFound = append(notFound, segment)
			continue
		}
		lines = append(lines, models.OrderLine{
			Name:           matched.Name,
			Quantity:       qty,
			UnitPriceCents: matched.PriceCents,
		})
	}
	return lines, notFound
}

// matchMenuItem resolves a model-supplied item name to a menu item:
// exact case-insensitive match first, then substring either way.
func matchMenuItem(name string, menu []models.MenuItem) *models.MenuItem {
	low := strings.ToLower(strings.TrimSpace(name))
	if low == "" {
		return nil
	}
	for i := range menu {
		if strings.ToLower(menu[i].Name) == low {
			return &menu[i]
		}
	}
	for i := range menu {
		itemLow := strings.ToLower(menu[i].Name)
		if strings.Contains(itemLow, low) || strings.Contains(low, itemLow) {
			return &menu[i]
		}
	}
	return nil
}
