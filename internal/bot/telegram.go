package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"tradegate/internal/domain"
	"tradegate/internal/service"
	"tradegate/internal/session"
	"tradegate/internal/texts"

	tele "gopkg.in/telebot.v3"
)

const defaultSymbol = "BTC/USDT"

type favoriteStore interface {
	Add(ctx context.Context, userID int64, symbol string) error
	Remove(ctx context.Context, userID int64, symbol string) error
	List(ctx context.Context, userID int64, limit int) ([]string, error)
}

type journalStore interface {
	Add(ctx context.Context, userID int64, text string) error
	ListRecent(ctx context.Context, userID int64, limit int) ([]domain.JournalEntry, error)
}

// Options is the bot's static wiring: who is admin, where ops notes go, and
// what an access purchase costs.
type Options struct {
	AdminUserID      int64
	SupportGroupID   int64
	PrivateChannelID int64
	StarsPrice       int
	StarsTitle       string
	StarsDescription string
}

// Bot wires Telegram updates to the services. All handlers run with a
// background context, matching long-poller lifetimes rather than request
// deadlines.
type Bot struct {
	tb        *tele.Bot
	opts      Options
	access    *service.AccessService
	payments  *service.PaymentService
	charts    *service.ChartService
	movers    *service.MoverService
	tickets   *service.TicketService
	favorites favoriteStore
	journal   journalStore
	sessions  *session.Store
	broadcast *Broadcaster
}

func New(
	tb *tele.Bot,
	opts Options,
	access *service.AccessService,
	payments *service.PaymentService,
	charts *service.ChartService,
	movers *service.MoverService,
	tickets *service.TicketService,
	favorites favoriteStore,
	journal journalStore,
	sessions *session.Store,
	broadcast *Broadcaster,
) *Bot {
	bot := &Bot{
		tb:        tb,
		opts:      opts,
		access:    access,
		payments:  payments,
		charts:    charts,
		movers:    movers,
		tickets:   tickets,
		favorites: favorites,
		journal:   journal,
		sessions:  sessions,
		broadcast: broadcast,
	}
	bot.registerHandlers()
	return bot
}

func (bot *Bot) Start() {
	log.Println("Telegram bot started")
	go bot.tb.Start()
}

func (bot *Bot) Stop() {
	bot.tb.Stop()
}

func (bot *Bot) registerHandlers() {
	bot.tb.Handle("/start", bot.handleStart)
	bot.tb.Handle("/admin", bot.handleAdmin)
	bot.tb.Handle("/getchatid", func(c tele.Context) error {
		return c.Send(fmt.Sprintf("Chat ID: %d", c.Chat().ID))
	})
	bot.tb.Handle("/diag", bot.handleDiag)

	bot.tb.Handle(&btnAgree, bot.handleAgree)
	bot.tb.Handle(&btnBuy, bot.handleBuy)
	bot.tb.Handle(&btnAccess, bot.handleAccessStatus)

	bot.tb.Handle(&btnChart, bot.handleChartMenu)
	bot.tb.Handle(&btnSymbol, bot.handleChangeSymbol)
	bot.tb.Handle(&btnTF, bot.handleTimeframe)

	bot.tb.Handle(&btnMovers, func(c tele.Context) error {
		return c.Send("Market movers over the last 24h:", moversKeyboard())
	})
	bot.tb.Handle(&btnGainers, bot.moversHandler(domain.MoversGainers))
	bot.tb.Handle(&btnLosers, bot.moversHandler(domain.MoversLosers))

	bot.tb.Handle(&btnFavorites, bot.handleFavorites)
	bot.tb.Handle(&btnFavPick, bot.handleFavoritePick)
	bot.tb.Handle(&btnFavAdd, bot.handleFavoriteAdd)
	bot.tb.Handle(&btnFavRemove, bot.handleFavoriteRemove)

	bot.tb.Handle(&btnJournal, bot.handleJournal)
	bot.tb.Handle(&btnJournalAdd, bot.handleJournalAdd)

	bot.tb.Handle(&btnBrief, bot.gatedText(texts.DecisionBrief))
	bot.tb.Handle(&btnTilt, bot.gatedText(texts.Tilt))
	bot.tb.Handle(&btnChecklists, bot.handleChecklists)
	bot.tb.Handle(&btnChecklistPre, bot.gatedText(texts.ChecklistPre))
	bot.tb.Handle(&btnChecklistPost, bot.gatedText(texts.ChecklistPost))

	bot.tb.Handle(&btnChannel, bot.handleChannelInvite)
	bot.tb.Handle(&btnSupport, bot.handleSupport)

	bot.tb.Handle(&btnAdminBroadcast, bot.adminPrompt(session.StateAwaitingBroadcast,
		"Send the broadcast text. It goes to every user with active access."))
	bot.tb.Handle(&btnAdminWLAdd, bot.adminPrompt(session.StateAwaitingWLAdd,
		"Send the numeric user ID to whitelist."))
	bot.tb.Handle(&btnAdminWLRemove, bot.adminPrompt(session.StateAwaitingWLRemove,
		"Send the numeric user ID to remove from the whitelist."))
	bot.tb.Handle(&btnAdminTickets, bot.handleAdminTickets)
	bot.tb.Handle(&btnTicketReply, bot.handleTicketReply)
	bot.tb.Handle(&btnTicketClose, bot.handleTicketClose)

	bot.tb.Handle(tele.OnCheckout, func(c tele.Context) error {
		return c.Accept()
	})
	bot.tb.Handle(tele.OnPayment, bot.handlePayment)
	bot.tb.Handle(tele.OnText, bot.handleText)
}

func (bot *Bot) handleStart(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if err := bot.access.EnsureUser(ctx, sender.ID, sender.Username); err != nil {
		log.Printf("ensure user %d: %v", sender.ID, err)
	}

	user, err := bot.access.Status(ctx, sender.ID)
	if err != nil {
		return c.Send("Something went wrong, please try again.")
	}
	if user == nil || user.AcceptedDisclaimerAt == nil {
		return c.Send(texts.Disclaimer, disclaimerKeyboard())
	}
	return bot.sendMenu(c, user)
}

func (bot *Bot) handleAgree(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if err := bot.access.EnsureUser(ctx, sender.ID, sender.Username); err != nil {
		log.Printf("ensure user %d: %v", sender.ID, err)
	}
	if err := bot.access.AcceptDisclaimer(ctx, sender.ID); err != nil {
		return c.Send("Something went wrong, please try again.")
	}
	_ = c.Respond(&tele.CallbackResponse{Text: "Noted 👍"})

	user, err := bot.access.Status(ctx, sender.ID)
	if err != nil {
		return c.Send("Something went wrong, please try again.")
	}
	return bot.sendMenu(c, user)
}

func (bot *Bot) sendMenu(c tele.Context, user *domain.User) error {
	active := user.AccessActive(time.Now().UTC())
	if active {
		return c.Send("Main menu — pick a tool:", mainMenu(true))
	}
	return c.Send(texts.Promo, mainMenu(false))
}

// requireAccess answers the gated-feature check. When access is missing it
// has already replied with the promo, so the handler should just return.
func (bot *Bot) requireAccess(c tele.Context) (bool, error) {
	active, err := bot.access.IsActive(context.Background(), c.Sender().ID)
	if err != nil {
		return false, c.Send("Something went wrong, please try again.")
	}
	if !active {
		return false, c.Send(texts.Promo, mainMenu(false))
	}
	return true, nil
}

func (bot *Bot) handleBuy(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()

	payload, err := bot.payments.BeginPurchase(ctx, sender.ID)
	if errors.Is(err, domain.ErrDisclaimerRequired) {
		return c.Send(texts.Disclaimer, disclaimerKeyboard())
	}
	if err != nil {
		log.Printf("begin purchase for %d: %v", sender.ID, err)
		return c.Send("Could not create the invoice, please try again.")
	}

	invoice := tele.Invoice{
		Title:       bot.opts.StarsTitle,
		Description: bot.opts.StarsDescription,
		Payload:     payload,
		Currency:    "XTR",
		Prices: []tele.Price{
			{Label: "30 days", Amount: bot.opts.StarsPrice},
		},
	}
	return c.Send(&invoice)
}

func (bot *Bot) handlePayment(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	payment := c.Message().Payment
	if payment == nil {
		return nil
	}
	if err := bot.access.EnsureUser(ctx, sender.ID, sender.Username); err != nil {
		log.Printf("ensure user %d: %v", sender.ID, err)
	}

	until, granted, err := bot.payments.Confirm(ctx, sender.ID, payment.Payload, payment.Currency, payment.Total)
	if errors.Is(err, domain.ErrAmountMismatch) {
		return c.Send("The payment did not match the invoice. Support has been notified, please contact them.")
	}
	if err != nil {
		log.Printf("confirm payment for %d: %v", sender.ID, err)
		return c.Send("Payment received but activation failed. Support has been notified.")
	}
	if !granted {
		return nil
	}

	msg := fmt.Sprintf("🎉 Access is active until %s.", until.Format("2 Jan 2006 15:04 MST"))
	if link := bot.channelInvite(); link != "" {
		msg += "\n\nYour private channel invite (single use):\n" + link
	}
	if err := c.Send(msg); err != nil {
		return err
	}
	return c.Send("Main menu — pick a tool:", mainMenu(true))
}

// channelInvite mints a fresh single-use invite so links cannot be shared.
func (bot *Bot) channelInvite() string {
	if bot.opts.PrivateChannelID == 0 {
		return ""
	}
	link, err := bot.tb.CreateInviteLink(&tele.Chat{ID: bot.opts.PrivateChannelID}, &tele.ChatInviteLink{
		MemberLimit: 1,
	})
	if err != nil {
		log.Printf("create invite link: %v", err)
		return ""
	}
	return link.InviteLink
}

func (bot *Bot) handleAccessStatus(c tele.Context) error {
	user, err := bot.access.Status(context.Background(), c.Sender().ID)
	if err != nil {
		return c.Send("Something went wrong, please try again.")
	}
	return c.Send(formatAccessStatus(user, time.Now().UTC()))
}

func (bot *Bot) handleChartMenu(c tele.Context) error {
	ok, err := bot.requireAccess(c)
	if !ok {
		return err
	}
	symbol := bot.activeSymbol(c.Sender().ID)
	return c.Send(fmt.Sprintf("Symbol: %s\nPick a timeframe:", symbol), timeframeKeyboard(symbol))
}

func (bot *Bot) handleChangeSymbol(c tele.Context) error {
	ok, err := bot.requireAccess(c)
	if !ok {
		return err
	}
	if err := bot.setState(c.Sender().ID, session.Conversation{State: session.StateAwaitingSymbol}); err != nil {
		return c.Send("Something went wrong, please try again.")
	}
	return c.Send("Send the pair you want to analyze, e.g. ETH/USDT or just ETH.")
}

func (bot *Bot) handleTimeframe(c tele.Context) error {
	ok, err := bot.requireAccess(c)
	if !ok {
		return err
	}
	args := c.Args()
	if len(args) != 2 {
		return c.Send("Pick a timeframe from the menu.")
	}
	symbol, interval := args[0], args[1]

	_ = c.Notify(tele.UploadingPhoto)
	result, err := bot.charts.Build(context.Background(), symbol, interval)
	if err != nil {
		log.Printf("chart %s %s for %d: %v", symbol, interval, c.Sender().ID, err)
		if errors.Is(err, domain.ErrInsufficientData) {
			return c.Send(fmt.Sprintf("Not enough history for %s on %s yet.", symbol, interval))
		}
		return c.Send(fmt.Sprintf("Could not build the %s chart for %s. Check the pair and try again.", interval, symbol))
	}

	photo := &tele.Photo{
		File:    tele.FromReader(bytes.NewReader(result.PNG)),
		Caption: fmt.Sprintf("%s · %s\nRegime: %s", result.Symbol, result.Interval, result.Regime),
	}
	return c.Send(photo)
}

func (bot *Bot) moversHandler(direction domain.MoverDirection) tele.HandlerFunc {
	return func(c tele.Context) error {
		ok, err := bot.requireAccess(c)
		if !ok {
			return err
		}
		top, err := bot.movers.Top(context.Background(), direction)
		if err != nil {
			log.Printf("movers %s for %d: %v", direction, c.Sender().ID, err)
			return c.Send("Could not load market data, please try again.")
		}
		return c.Send(formatMovers(direction, top))
	}
}

func (bot *Bot) handleFavorites(c tele.Context) error {
	ok, err := bot.requireAccess(c)
	if !ok {
		return err
	}
	symbols, err := bot.favorites.List(context.Background(), c.Sender().ID, 0)
	if err != nil {
		return c.Send("Something went wrong, please try again.")
	}
	if len(symbols) == 0 {
		return c.Send("No favorites yet. Add the current symbol below.", favoritesKeyboard(nil))
	}
	return c.Send("Your favorites — tap one to chart it:", favoritesKeyboard(symbols))
}

func (bot *Bot) handleFavoritePick(c tele.Context) error {
	ok, err := bot.requireAccess(c)
	if !ok {
		return err
	}
	symbol := c.Data()
	if symbol == "" {
		return nil
	}
	if err := bot.access.SetActiveSymbol(context.Background(), c.Sender().ID, symbol); err != nil {
		log.Printf("set active symbol for %d: %v", c.Sender().ID, err)
	}
	return c.Send(fmt.Sprintf("Symbol: %s\nPick a timeframe:", symbol), timeframeKeyboard(symbol))
}

func (bot *Bot) handleFavoriteAdd(c tele.Context) error {
	ok, err := bot.requireAccess(c)
	if !ok {
		return err
	}
	symbol := bot.activeSymbol(c.Sender().ID)
	if err := bot.favorites.Add(context.Background(), c.Sender().ID, symbol); err != nil {
		return c.Send("Something went wrong, please try again.")
	}
	return c.Send(fmt.Sprintf("⭐ %s added to favorites.", symbol))
}

func (bot *Bot) handleFavoriteRemove(c tele.Context) error {
	ok, err := bot.requireAccess(c)
	if !ok {
		return err
	}
	symbol := bot.activeSymbol(c.Sender().ID)
	if err := bot.favorites.Remove(context.Background(), c.Sender().ID, symbol); err != nil {
		return c.Send("Something went wrong, please try again.")
	}
	return c.Send(fmt.Sprintf("🗑 %s removed from favorites.", symbol))
}

func (bot *Bot) handleJournal(c tele.Context) error {
	ok, err := bot.requireAccess(c)
	if !ok {
		return err
	}
	entries, err := bot.journal.ListRecent(context.Background(), c.Sender().ID, 10)
	if err != nil {
		return c.Send("Something went wrong, please try again.")
	}
	return c.Send(formatJournalEntries(entries), journalKeyboard())
}

func (bot *Bot) handleJournalAdd(c tele.Context) error {
	ok, err := bot.requireAccess(c)
	if !ok {
		return err
	}
	if err := bot.setState(c.Sender().ID, session.Conversation{State: session.StateAwaitingJournal}); err != nil {
		return c.Send("Something went wrong, please try again.")
	}
	return c.Send("Write the journal entry as one message.")
}

func (bot *Bot) handleSupport(c tele.Context) error {
	ok, err := bot.requireAccess(c)
	if !ok {
		return err
	}
	if err := bot.setState(c.Sender().ID, session.Conversation{State: session.StateAwaitingTicket}); err != nil {
		return c.Send("Something went wrong, please try again.")
	}
	return c.Send("Describe the problem in one message and support will get back to you.")
}

// gatedText serves one of the long-form guides, but only to active users.
func (bot *Bot) gatedText(text string) tele.HandlerFunc {
	return func(c tele.Context) error {
		ok, err := bot.requireAccess(c)
		if !ok {
			return err
		}
		return c.Send(text)
	}
}

func (bot *Bot) handleChecklists(c tele.Context) error {
	ok, err := bot.requireAccess(c)
	if !ok {
		return err
	}
	return c.Send("Which checklist?", checklistKeyboard())
}

// handleChannelInvite hands out a fresh invite to any currently-active user,
// so a lost payment message or a whitelist grant still gets one.
func (bot *Bot) handleChannelInvite(c tele.Context) error {
	ok, err := bot.requireAccess(c)
	if !ok {
		return err
	}
	if bot.opts.PrivateChannelID == 0 {
		return c.Send("The private channel is not set up yet.")
	}
	link := bot.channelInvite()
	if link == "" {
		return c.Send("Could not create an invite right now, please try again.")
	}
	return c.Send("Your private channel invite (single use):\n" + link)
}

func (bot *Bot) handleAdmin(c tele.Context) error {
	if !bot.isAdmin(c) {
		return nil
	}
	return c.Send("Admin panel:", adminKeyboard())
}

func (bot *Bot) handleDiag(c tele.Context) error {
	if !bot.isAdmin(c) {
		return nil
	}
	return c.Send(fmt.Sprintf(
		"chat=%d\nsupport_group=%d\nprivate_channel=%d\nstars_price=%d",
		c.Chat().ID, bot.opts.SupportGroupID, bot.opts.PrivateChannelID, bot.opts.StarsPrice,
	))
}

func (bot *Bot) adminPrompt(state session.State, prompt string) tele.HandlerFunc {
	return func(c tele.Context) error {
		if !bot.isAdmin(c) {
			return nil
		}
		if err := bot.setState(c.Sender().ID, session.Conversation{State: state}); err != nil {
			return c.Send("Something went wrong, please try again.")
		}
		return c.Send(prompt)
	}
}

func (bot *Bot) handleAdminTickets(c tele.Context) error {
	if !bot.isAdmin(c) {
		return nil
	}
	tickets, err := bot.tickets.ListOpen(context.Background(), 0)
	if err != nil {
		return c.Send("Something went wrong, please try again.")
	}
	if len(tickets) == 0 {
		return c.Send("No open tickets. 🎉")
	}
	for _, t := range tickets {
		line := fmt.Sprintf("🎫 Ticket #%d from user %d, opened %s",
			t.ID, t.UserID, t.CreatedAt.UTC().Format("2 Jan 15:04"))
		if err := c.Send(line, ticketKeyboard(t.ID)); err != nil {
			return err
		}
	}
	return nil
}

func (bot *Bot) handleTicketReply(c tele.Context) error {
	if !bot.isAdmin(c) {
		return nil
	}
	ticketID, err := strconv.ParseInt(c.Data(), 10, 64)
	if err != nil {
		return c.Send("Bad ticket reference.")
	}
	if err := bot.setState(c.Sender().ID, session.Conversation{State: session.StateAwaitingReply, TicketID: ticketID}); err != nil {
		return c.Send("Something went wrong, please try again.")
	}
	return c.Send(fmt.Sprintf("Send the reply for ticket #%d.", ticketID))
}

func (bot *Bot) handleTicketClose(c tele.Context) error {
	if !bot.isAdmin(c) {
		return nil
	}
	ticketID, err := strconv.ParseInt(c.Data(), 10, 64)
	if err != nil {
		return c.Send("Bad ticket reference.")
	}
	if err := bot.tickets.Close(context.Background(), ticketID); err != nil {
		log.Printf("close ticket %d: %v", ticketID, err)
		return c.Send("Could not close the ticket.")
	}
	return c.Send(fmt.Sprintf("Ticket #%d closed.", ticketID))
}

// handleText resolves the one pending conversation step for the sender, if
// any. Plain chatter outside a dialog gets the menu.
func (bot *Bot) handleText(c tele.Context) error {
	if c.Chat() == nil || c.Chat().Type != tele.ChatPrivate {
		return nil
	}
	ctx := context.Background()
	sender := c.Sender()
	text := strings.TrimSpace(c.Text())
	if text == "" {
		return nil
	}

	conv, err := bot.sessions.Get(ctx, sender.ID)
	if err != nil {
		log.Printf("load session for %d: %v", sender.ID, err)
		conv = session.Conversation{}
	}
	if conv.State == session.StateNone {
		return bot.handleStart(c)
	}
	// Follow-up mode persists across messages; every other state is one-shot.
	if conv.State != session.StateTicketFollowUp {
		if err := bot.sessions.Clear(ctx, sender.ID); err != nil {
			log.Printf("clear session for %d: %v", sender.ID, err)
		}
	}

	switch conv.State {
	case session.StateAwaitingSymbol:
		symbol, err := normalizeSymbol(text)
		if err != nil {
			return c.Send("That does not look like a pair. Try ETH/USDT or just ETH.")
		}
		if err := bot.access.SetActiveSymbol(ctx, sender.ID, symbol); err != nil {
			return c.Send("Something went wrong, please try again.")
		}
		return c.Send(fmt.Sprintf("Symbol: %s\nPick a timeframe:", symbol), timeframeKeyboard(symbol))

	case session.StateAwaitingJournal:
		if err := bot.journal.Add(ctx, sender.ID, text); err != nil {
			return c.Send("Something went wrong, please try again.")
		}
		return c.Send("📓 Recorded.")

	case session.StateAwaitingTicket:
		ok, err := bot.requireAccess(c)
		if !ok {
			return err
		}
		ticketID, err := bot.tickets.Open(ctx, sender.ID, sender.Username, text)
		if err != nil {
			return c.Send("Something went wrong, please try again.")
		}
		if err := bot.setState(sender.ID, session.Conversation{State: session.StateTicketFollowUp, TicketID: ticketID}); err != nil {
			log.Printf("set follow-up session for %d: %v", sender.ID, err)
		}
		return c.Send(fmt.Sprintf("🎫 Ticket #%d opened. Support will reply here; further messages are added to it.", ticketID))

	case session.StateTicketFollowUp:
		if err := bot.tickets.Append(ctx, conv.TicketID, sender.ID, sender.Username, text); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				if err := bot.sessions.Clear(ctx, sender.ID); err != nil {
					log.Printf("clear session for %d: %v", sender.ID, err)
				}
				return c.Send(fmt.Sprintf("Ticket #%d is closed. Open a new one from the menu if anything else comes up.", conv.TicketID))
			}
			return c.Send("Something went wrong, please try again.")
		}
		// Refresh the TTL so an ongoing conversation keeps relaying.
		if err := bot.setState(sender.ID, conv); err != nil {
			log.Printf("refresh follow-up session for %d: %v", sender.ID, err)
		}
		return c.Send(fmt.Sprintf("Added to ticket #%d.", conv.TicketID))

	case session.StateAwaitingReply:
		if !bot.isAdmin(c) {
			return nil
		}
		if err := bot.tickets.Reply(ctx, conv.TicketID, text); err != nil {
			log.Printf("reply to ticket %d: %v", conv.TicketID, err)
			return c.Send("Could not deliver the reply.")
		}
		return c.Send(fmt.Sprintf("Reply sent for ticket #%d.", conv.TicketID))

	case session.StateAwaitingBroadcast:
		if !bot.isAdmin(c) {
			return nil
		}
		sent, failed, err := bot.broadcast.SendToActive(ctx, text)
		if err != nil {
			return c.Send("Broadcast failed.")
		}
		return c.Send(fmt.Sprintf("📣 Broadcast delivered to %d users, %d failures.", sent, failed))

	case session.StateAwaitingWLAdd, session.StateAwaitingWLRemove:
		if !bot.isAdmin(c) {
			return nil
		}
		userID, err := parseUserID(text)
		if err != nil {
			return c.Send("Send a numeric user ID.")
		}
		adding := conv.State == session.StateAwaitingWLAdd
		if adding {
			if err := bot.access.EnsureUser(ctx, userID, ""); err != nil {
				log.Printf("ensure user %d: %v", userID, err)
			}
		}
		if err := bot.access.SetWhitelist(ctx, userID, adding); err != nil {
			return c.Send("Something went wrong, please try again.")
		}
		if adding {
			return c.Send(fmt.Sprintf("User %d whitelisted.", userID))
		}
		return c.Send(fmt.Sprintf("User %d removed from the whitelist.", userID))
	}
	return nil
}

func (bot *Bot) isAdmin(c tele.Context) bool {
	return bot.opts.AdminUserID != 0 && c.Sender() != nil && c.Sender().ID == bot.opts.AdminUserID
}

func (bot *Bot) setState(userID int64, conv session.Conversation) error {
	return bot.sessions.Set(context.Background(), userID, conv)
}

func (bot *Bot) activeSymbol(userID int64) string {
	user, err := bot.access.Status(context.Background(), userID)
	if err != nil || user == nil || user.ActiveSymbol == "" {
		return defaultSymbol
	}
	return user.ActiveSymbol
}

// normalizeSymbol turns free-form user input into a "BASE/QUOTE" pair.
// A bare base asset defaults to the USDT quote.
func normalizeSymbol(input string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(input))
	s = strings.ReplaceAll(s, "_", "/")
	if s == "" {
		return "", errors.New("empty symbol")
	}
	if !strings.Contains(s, "/") {
		s += "/USDT"
	}
	parts := strings.Split(s, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", fmt.Errorf("malformed pair %q", input)
	}
	for _, part := range parts {
		for _, r := range part {
			if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
				return "", fmt.Errorf("malformed pair %q", input)
			}
		}
	}
	return s, nil
}

func parseUserID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("bad user id %q", s)
	}
	return id, nil
}

func formatMovers(direction domain.MoverDirection, top []domain.Mover) string {
	if len(top) == 0 {
		return "No market data right now, try again in a minute."
	}
	header := "📈 Top gainers, 24h:"
	if direction == domain.MoversLosers {
		header = "📉 Top losers, 24h:"
	}
	lines := make([]string, 0, len(top)+1)
	lines = append(lines, header)
	for i, m := range top {
		lines = append(lines, fmt.Sprintf("%d. %s  %+.2f%%", i+1, m.Symbol, m.Percentage))
	}
	return strings.Join(lines, "\n")
}

func formatAccessStatus(user *domain.User, now time.Time) string {
	if user == nil {
		return "You are not registered yet. Send /start first."
	}
	if user.IsWhitelisted {
		return "📌 Access: unlimited (whitelisted)."
	}
	if user.AccessUntil != nil && user.AccessUntil.After(now) {
		days := int(user.AccessUntil.Sub(now).Hours() / 24)
		return fmt.Sprintf("📌 Access active until %s (%d full days left).",
			user.AccessUntil.UTC().Format("2 Jan 2006 15:04 MST"), days)
	}
	return "📌 No active access. Tap «Buy access» in the menu to unlock all tools."
}

func formatJournalEntries(entries []domain.JournalEntry) string {
	if len(entries) == 0 {
		return "📓 The journal is empty. Start with one honest entry."
	}
	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, "📓 Latest entries:")
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("• %s — %s", e.CreatedAt.UTC().Format("2 Jan 15:04"), e.Text))
	}
	return strings.Join(lines, "\n")
}
