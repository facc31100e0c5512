// Package demo holds the static balances and transactions shown on the
// dashboard. Nothing here is settled or fetched.
package demo

import (
	"fmt"
	"time"
)

// Direction is whether funds came in or went out.
type Direction string

const (
	Received Direction = "received"
	Sent     Direction = "sent"
)

// Transaction is a single demo payment.
type Transaction struct {
	ID           string
	Direction    Direction
	AmountBTC    float64
	AmountUSD    float64
	Counterparty string
	Time         time.Time
	Status       string
}

// Balance is the demo wallet total.
type Balance struct {
	BTC float64
	USD float64
}

// Hidden is shown in place of amounts when balances are hidden.
const Hidden = "••••••••"

// CurrentBalance returns the demo balance.
func CurrentBalance() Balance {
	return Balance{BTC: 0.00479, USD: 207.15}
}

// Stats are the summary figures shown beside the balance.
type Stats struct {
	ChangeUSD     float64
	ChangePercent float64
	WeeklyTxCount int
}

// CurrentStats returns the demo summary figures.
func CurrentStats() Stats {
	return Stats{ChangeUSD: 4.98, ChangePercent: 2.4, WeeklyTxCount: 5}
}

// FormatChange formats a signed dollar change, e.g. "+$4.98".
func FormatChange(v float64) string {
	if v < 0 {
		return "-" + FormatUSD(-v)
	}
	return "+" + FormatUSD(v)
}

// Transactions returns the demo transactions, newest first.
func Transactions() []Transaction {
	return []Transaction{
		{
			ID:           "1",
			Direction:    Received,
			AmountBTC:    0.00234,
			AmountUSD:    98.50,
			Counterparty: "bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh",
			Time:         time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
			Status:       "confirmed",
		},
		{
			ID:           "2",
			Direction:    Sent,
			AmountBTC:    0.00156,
			AmountUSD:    67.20,
			Counterparty: "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq",
			Time:         time.Date(2024, 1, 14, 15, 45, 0, 0, time.UTC),
			Status:       "confirmed",
		},
		{
			ID:           "3",
			Direction:    Received,
			AmountBTC:    0.00089,
			AmountUSD:    38.45,
			Counterparty: "bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh",
			Time:         time.Date(2024, 1, 13, 9, 15, 0, 0, time.UTC),
			Status:       "pending",
		},
	}
}

// Signed returns the BTC amount with a direction sign, e.g. "+0.00234 BTC".
func (t Transaction) Signed() string {
	sign := "+"
	if t.Direction == Sent {
		sign = "-"
	}
	return fmt.Sprintf("%s%s BTC", sign, FormatBTC(t.AmountBTC))
}

// FormatBTC formats an amount with five decimals.
func FormatBTC(v float64) string {
	return fmt.Sprintf("%.5f", v)
}

// FormatUSD formats an amount as dollars.
func FormatUSD(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// ShortAddress abbreviates an address to its first and last 6 runes.
func ShortAddress(addr string) string {
	r := []rune(addr)
	if len(r) <= 15 {
		return addr
	}
	return string(r[:6]) + "…" + string(r[len(r)-6:])
}
