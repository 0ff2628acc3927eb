package ai

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/terangahq/teranga-backend/internal/models"
)

// formatPrice renders a minor-unit amount for prompt and tool output.
func formatPrice(cents int64) string {
	return fmt.Sprintf("%d FCFA", cents)
}

// BuildSystemPrompt creates the context block the model sees: the
// business's chatbot configuration plus a compact menu listing.
func BuildSystemPrompt(business *models.Business, menu []models.MenuItem, tag language.Tag) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are the assistant for %s, a restaurant", business.Name)
	if business.Cuisine != "" {
		fmt.Fprintf(&b, " serving %s cuisine", business.Cuisine)
	}
	b.WriteString(".\n\n")

	b.WriteString("**Business information:**\n")
	if business.Description != "" {
		fmt.Fprintf(&b, "- About: %s\n", business.Description)
	}
	if business.BusinessHours != "" {
		fmt.Fprintf(&b, "- Hours: %s\n", business.BusinessHours)
	}
	if business.DeliveryInfo != "" {
		fmt.Fprintf(&b, "- Delivery: %s\n", business.DeliveryInfo)
	}
	if business.OrderingEnabled {
		b.WriteString("- Ordering via chat is enabled.\n")
	} else {
		b.WriteString("- Ordering via chat is currently DISABLED. Politely decline any order request.\n")
	}
	b.WriteString("\n")

	if len(menu) > 0 {
		b.WriteString("**Menu:**\n")
		for i, item := range menu {
			fmt.Fprintf(&b, "%d. %s - %s", i+1, item.Name, formatPrice(item.PriceCents))
			if item.Description != "" {
				fmt.Fprintf(&b, " (%s)", item.Description)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("**Instructions:**\n")
	b.WriteString("- Answer customer questions warmly and concisely, 2-3 sentences maximum.\n")
	b.WriteString("- Use the get_menu_information tool for menu questions and calculate_order before quoting any total.\n")
	b.WriteString("- Only place an order with the place_order tool after the customer confirms; never invent prices.\n")
	fmt.Fprintf(&b, "- Reply in %s, matching the customer's language.\n", languageName(tag))
	b.WriteString("- Do not use markdown formatting.\n")
	if business.SpecialInstructions != "" {
		fmt.Fprintf(&b, "- %s\n", business.SpecialInstructions)
	}
	if business.WelcomeMessage != "" {
		fmt.Fprintf(&b, "- Greeting for new customers: %s\n", business.WelcomeMessage)
	}

	return b.String()
}
