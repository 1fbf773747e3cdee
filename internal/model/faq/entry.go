package faq

import "github.com/zhouzirui/shopmate/backend/internal/model/chat"

// Entry is a static knowledge-base record: trigger keywords, a canned answer
// and the follow-up quick actions attached to that answer.
type Entry struct {
	ID       string             `json:"id"`
	Keywords []string           `json:"keywords"`
	Answer   string             `json:"answer"`
	Actions  []chat.QuickAction `json:"actions,omitempty"`
}

// Seed provides the default storefront knowledge base. Entry order is
// semantically significant: matching is first-hit in list order, so broader
// entries must stay below the more specific ones they overlap with.
func Seed() []Entry {
	return []Entry{
		{
			ID:       "shipping",
			Keywords: []string{"shipping", "delivery", "deliver", "how long", "arrive", "ship"},
			Answer:   "Standard shipping takes 3-5 business days. Express orders arrive within 1-2 business days, and you'll receive a tracking link by email as soon as your order leaves our warehouse.",
			Actions: []chat.QuickAction{
				{ID: "shipping-track", Label: "Track my order", Action: chat.ActionTrackOrder},
				{ID: "shipping-agent", Label: "Talk to an agent", Action: chat.ActionTalkToAgent},
			},
		},
		{
			ID:       "returns",
			Keywords: []string{"return", "refund", "exchange", "money back"},
			Answer:   "You can return any item within 30 days of delivery for a full refund. Start a return from the Orders page in your account and we'll email you a prepaid shipping label.",
			Actions: []chat.QuickAction{
				{ID: "returns-agent", Label: "Talk to an agent", Action: chat.ActionTalkToAgent},
			},
		},
		{
			ID:       "tracking",
			Keywords: []string{"track", "where is my order", "order status", "package"},
			Answer:   "You can track your order from the Orders page in your account, or with the tracking link in your shipping confirmation email.",
			Actions: []chat.QuickAction{
				{ID: "tracking-agent", Label: "Talk to an agent", Action: chat.ActionTalkToAgent},
			},
		},
		{
			ID:       "payment",
			Keywords: []string{"payment", "pay", "card", "paypal", "klarna", "billing"},
			Answer:   "We accept all major credit and debit cards, PayPal and Klarna. Payments are processed securely at checkout and you are only charged when your order ships.",
		},
		{
			ID:       "discounts",
			Keywords: []string{"discount", "coupon", "promo", "voucher", "code"},
			Answer:   "Promo codes are applied in the cart, right above the checkout button. Sign up for our newsletter to get 10% off your first order.",
		},
		{
			ID:       "account",
			Keywords: []string{"account", "password", "login", "log in", "sign in"},
			Answer:   "You can reset your password from the sign-in page via \"Forgot password\". Account settings, addresses and order history all live under My Account.",
		},
	}
}

// DefaultMenu is the quick-action menu attached to the welcome message and to
// any fallback reply.
func DefaultMenu() []chat.QuickAction {
	return []chat.QuickAction{
		{ID: "menu-shipping", Label: "Shipping info", Action: chat.ActionShippingInfo},
		{ID: "menu-returns", Label: "Returns & refunds", Action: chat.ActionReturns},
		{ID: "menu-track", Label: "Track my order", Action: chat.ActionTrackOrder},
		{ID: "menu-agent", Label: "Talk to an agent", Action: chat.ActionTalkToAgent},
	}
}
