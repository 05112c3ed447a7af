package bot

import (
	"fmt"
	"strings"

	"balancebot/internal/core"
)

// Static replies.
const (
	startReply = "🤗 Welcome my dear friend!"

	updatesReply = "🆕 Что умеет бот:\n" +
		"/balance [месяц] — текущая таблица баланса\n" +
		"/update_balance [дата] — добавить запись (по умолчанию сегодня)\n" +
		"/delete_balance <дата> — удалить запись\n" +
		"Даты в формате YYYY-MM-DD."

	unknownReply = "🤔 Неизвестная команда. Отправьте /updates, чтобы посмотреть список команд."

	errorReply = "❌ Что-то пошло не так. Попробуйте позже."

	tableHeader = "📊 Текущая таблица баланса:\n\n"
	rowDivider  = "➖➖➖➖➖➖➖➖➖\n"
)

// FormatTable renders ledger rows as the balance table message.
func FormatTable(entries []core.Entry) string {
	var b strings.Builder
	b.WriteString(tableHeader)
	for _, e := range entries {
		fmt.Fprintf(&b, "📅 Дата: %s (%s)\n", e.Date, e.DayOfWeek)
		fmt.Fprintf(&b, "💰 Цена: %s€\n", e.Price.Format())
		fmt.Fprintf(&b, "📈 Баланс: %s€\n", e.Balance.Format())
		b.WriteString(rowDivider)
	}
	return b.String()
}
