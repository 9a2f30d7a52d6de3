package model

import "time"

// AIUsageTier is a subscription level gating daily AI usage. Tiers double as
// the pricing page data source.
type AIUsageTier struct {
	Code              string    `json:"code"`
	Name              string    `json:"name"`
	DailyLimit        int       `json:"daily_limit"`
	MonthlyPriceCents int       `json:"monthly_price_cents"`
	Blurb             string    `json:"blurb"`
	CreatedAt         time.Time `json:"created_at"`
}

// QuotaStatus is the read-only quota view served to clients.
type QuotaStatus struct {
	TierCode  string    `json:"tier_code"`
	TierName  string    `json:"tier_name"`
	Limit     int       `json:"limit"`
	Used      int       `json:"used"`
	Remaining int       `json:"remaining"`
	ResetsAt  time.Time `json:"resets_at"`
}
