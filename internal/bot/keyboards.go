package bot

import (
	"fmt"
	"strconv"

	"tradegate/internal/domain"

	tele "gopkg.in/telebot.v3"
)

// Inline buttons are declared once so their callback uniques stay stable
// across menus and handler registration.
var (
	kb = &tele.ReplyMarkup{}

	btnAgree = kb.Data("✅ I agree", "agree")

	btnChart      = kb.Data("📈 Chart", "chart")
	btnMovers     = kb.Data("🚀 Movers", "movers")
	btnFavorites  = kb.Data("⭐ Favorites", "favs")
	btnJournal    = kb.Data("📓 Journal", "journal")
	btnBrief      = kb.Data("🧭 Decision brief", "brief")
	btnTilt       = kb.Data("🧊 Tilt protocol", "tilt")
	btnChecklists = kb.Data("📋 Checklists", "checklists")
	btnSupport    = kb.Data("🆘 Support", "support")
	btnAccess     = kb.Data("📌 My access", "access")
	btnBuy        = kb.Data("🔓 Buy access", "buy")
	btnChannel    = kb.Data("🔒 Private channel", "channel")

	btnSymbol = kb.Data("✏️ Change symbol", "symbol")
	btnTF     = kb.Data("", "tf")

	btnGainers = kb.Data("📈 Top gainers", "gainers")
	btnLosers  = kb.Data("📉 Top losers", "losers")

	btnFavPick   = kb.Data("", "fav_pick")
	btnFavAdd    = kb.Data("⭐ Add current symbol", "fav_add")
	btnFavRemove = kb.Data("🗑 Remove current symbol", "fav_rm")

	btnJournalAdd = kb.Data("✍️ New entry", "journal_add")

	btnChecklistPre  = kb.Data("Before the trade", "check_pre")
	btnChecklistPost = kb.Data("After the trade", "check_post")

	btnAdminBroadcast = kb.Data("📣 Broadcast", "adm_broadcast")
	btnAdminWLAdd     = kb.Data("➕ Whitelist add", "adm_wl_add")
	btnAdminWLRemove  = kb.Data("➖ Whitelist remove", "adm_wl_rm")
	btnAdminTickets   = kb.Data("🎫 Open tickets", "adm_tickets")

	btnTicketReply = kb.Data("", "ticket_reply")
	btnTicketClose = kb.Data("", "ticket_close")
)

func disclaimerKeyboard() *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	m.Inline(m.Row(btnAgree))
	return m
}

// mainMenu shows only the access and purchase entries until access is
// active; every other feature sits behind the gate.
func mainMenu(active bool) *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	if !active {
		m.Inline(
			m.Row(btnBuy),
			m.Row(btnAccess),
		)
		return m
	}
	m.Inline(
		m.Row(btnChart, btnMovers),
		m.Row(btnFavorites, btnJournal),
		m.Row(btnBrief, btnTilt),
		m.Row(btnChecklists),
		m.Row(btnChannel),
		m.Row(btnAccess, btnSupport),
	)
	return m
}

func timeframeKeyboard(symbol string) *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	row := make(tele.Row, 0, len(domain.SupportedIntervals))
	for _, interval := range domain.SupportedIntervals {
		row = append(row, m.Data(interval, "tf", symbol, interval))
	}
	m.Inline(row, m.Row(btnSymbol))
	return m
}

func moversKeyboard() *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	m.Inline(m.Row(btnGainers, btnLosers))
	return m
}

func favoritesKeyboard(symbols []string) *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(symbols)+1)
	for _, s := range symbols {
		rows = append(rows, m.Row(m.Data(s, "fav_pick", s)))
	}
	rows = append(rows, m.Row(btnFavAdd, btnFavRemove))
	m.Inline(rows...)
	return m
}

func journalKeyboard() *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	m.Inline(m.Row(btnJournalAdd))
	return m
}

func checklistKeyboard() *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	m.Inline(m.Row(btnChecklistPre, btnChecklistPost))
	return m
}

func adminKeyboard() *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	m.Inline(
		m.Row(btnAdminBroadcast),
		m.Row(btnAdminWLAdd, btnAdminWLRemove),
		m.Row(btnAdminTickets),
	)
	return m
}

func ticketKeyboard(ticketID int64) *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	id := strconv.FormatInt(ticketID, 10)
	m.Inline(m.Row(
		m.Data(fmt.Sprintf("💬 Reply #%s", id), "ticket_reply", id),
		m.Data(fmt.Sprintf("✅ Close #%s", id), "ticket_close", id),
	))
	return m
}
