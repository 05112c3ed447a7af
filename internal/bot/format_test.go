package bot

import (
	"strings"
	"testing"

	"balancebot/internal/core"
)

func TestFormatTable(t *testing.T) {
	d1, _ := core.ParseDate("2025-02-01")
	d2, _ := core.ParseDate("2025-02-02")
	entries := []core.Entry{
		{Date: d1, DayOfWeek: "Суббота", Price: core.Money{Cents: 2000}, Balance: core.Money{Cents: 2000}},
		{Date: d2, DayOfWeek: "Воскресенье", Price: core.Money{Cents: 2000}, Balance: core.Money{Cents: 4000}},
	}

	want := "📊 Текущая таблица баланса:\n\n" +
		"📅 Дата: 2025-02-01 (Суббота)\n" +
		"💰 Цена: 20€\n" +
		"📈 Баланс: 20€\n" +
		"➖➖➖➖➖➖➖➖➖\n" +
		"📅 Дата: 2025-02-02 (Воскресенье)\n" +
		"💰 Цена: 20€\n" +
		"📈 Баланс: 40€\n" +
		"➖➖➖➖➖➖➖➖➖\n"

	if got := FormatTable(entries); got != want {
		t.Errorf("FormatTable() =\n%q\nwant\n%q", got, want)
	}
}

func TestFormatTableFractionalAmounts(t *testing.T) {
	d, _ := core.ParseDate("2025-02-01")
	entries := []core.Entry{
		{Date: d, DayOfWeek: "Суббота", Price: core.Money{Cents: 2050}, Balance: core.Money{Cents: 2050}},
	}

	got := FormatTable(entries)
	if want := "💰 Цена: 20.5€\n"; !strings.Contains(got, want) {
		t.Errorf("FormatTable() = %q, missing %q", got, want)
	}
}
