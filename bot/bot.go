// Package bot is the Telegram adapter in front of the storage engine. It
// receives text and voice messages, applies the allowlist, the rate limit,
// and the audio validation rules, and hands validated content to the
// archive. It never logs message content, and failures reach the user only
// as a generic notice.
package bot

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/archivedrop/archivedrop/archive"
	"github.com/archivedrop/archivedrop/config"
	"github.com/archivedrop/archivedrop/ratelimit"
	"github.com/archivedrop/archivedrop/util"
)

// maxConcurrentDownloads caps simultaneous voice-file downloads from the
// Telegram API.
const maxConcurrentDownloads = 4

// A Handler holds everything a running bot needs. It is constructed once at
// startup and threaded through the dispatcher; there is no package-level
// mutable state.
type Handler struct {
	cfg     *config.Config
	store   *archive.Store
	limiter *ratelimit.Limiter
	gate    util.Gate
	bot     *tele.Bot

	started time.Time

	m         sync.Mutex
	stored    int
	lastError time.Time
}

// New builds a Handler and connects it to the Telegram API.
func New(cfg *config.Config) (*Handler, error) {
	b, err := tele.NewBot(tele.Settings{
		Token:  cfg.BotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, err
	}
	return &Handler{
		cfg: cfg,
		store: &archive.Store{
			Root:          cfg.StorageDir,
			IncludeSender: cfg.IncludeSender,
		},
		limiter: ratelimit.New(cfg.RateLimitPerMin),
		gate:    util.NewGate(maxConcurrentDownloads),
		bot:     b,
		started: time.Now(),
	}, nil
}

// Run registers the handlers and blocks polling for updates.
func (h *Handler) Run() {
	h.bot.Handle("/start", h.onStart)
	h.bot.Handle("/health", h.onHealth)
	h.bot.Handle(tele.OnText, h.onText)
	h.bot.Handle(tele.OnVoice, h.onVoice)
	// everything else is declined up front
	for _, endpoint := range []string{
		tele.OnAudio, tele.OnPhoto, tele.OnVideo, tele.OnVideoNote,
		tele.OnDocument, tele.OnSticker, tele.OnAnimation,
		tele.OnContact, tele.OnLocation,
	} {
		h.bot.Handle(endpoint, h.onUnsupported)
	}

	log.Printf("bot starting, storage %s", h.cfg.StorageDir)
	h.bot.Start()
}

// Stop halts update polling.
func (h *Handler) Stop() {
	h.bot.Stop()
}

func (h *Handler) noteStored() {
	h.m.Lock()
	h.stored++
	h.m.Unlock()
}

func (h *Handler) noteError() {
	h.m.Lock()
	h.lastError = time.Now()
	h.m.Unlock()
}

func (h *Handler) onStart(c tele.Context) error {
	log.Printf("start command chat=%d", c.Chat().ID)
	return c.Send("ArchiveDrop - Text & Audio Archive\n\n" +
		"Send me:\n" +
		"- Text messages, saved as files\n" +
		"- Voice messages, saved as audio\n\n" +
		"Commands:\n" +
		"/health - check bot status\n" +
		"/start - show this message\n\n" +
		"Messages are stored with minimal metadata.")
}

func (h *Handler) onHealth(c tele.Context) error {
	if denied := h.admission(c); denied != nil {
		return denied(c)
	}
	log.Printf("health command chat=%d", c.Chat().ID)

	status := "ArchiveDrop health\n\nBot is running\n"
	if fi, err := os.Stat(h.cfg.StorageDir); err == nil && fi.IsDir() {
		status += "Storage directory accessible\n"
		if probe, err := os.CreateTemp(h.cfg.StorageDir, ".health-*"); err == nil {
			probe.Close()
			os.Remove(probe.Name())
			status += "Storage directory writable\n"
		} else {
			status += "Storage directory NOT writable\n"
		}
	} else {
		status += "Storage directory NOT accessible\n"
	}
	status += fmt.Sprintf("Rate limit: %d/min\n", h.cfg.RateLimitPerMin)
	status += fmt.Sprintf("Max audio size: %d bytes\n", h.cfg.MaxAudioBytes)

	h.m.Lock()
	stored := h.stored
	lastError := h.lastError
	h.m.Unlock()

	uptime := time.Since(h.started).Round(time.Second)
	status += fmt.Sprintf("\nUptime: %s\nMessages stored: %d\n", uptime, stored)
	if lastError.IsZero() {
		status += "No errors this session\n"
	} else {
		status += fmt.Sprintf("Last error: %s ago\n",
			time.Since(lastError).Round(time.Second))
	}
	return c.Send(status)
}

// admission applies the allowlist and the rate limit. It returns nil when
// the message may proceed, or the reply to send instead.
func (h *Handler) admission(c tele.Context) func(tele.Context) error {
	userID := int64(0)
	if c.Sender() != nil {
		userID = c.Sender().ID
	}
	if !h.cfg.UserAllowed(userID) {
		log.Printf("user not on allowlist chat=%d", c.Chat().ID)
		return func(c tele.Context) error {
			return c.Send("You are not authorized to use this bot.")
		}
	}
	r := h.limiter.Allow(userID)
	if !r.Allowed {
		log.Printf("rate limited chat=%d reset=%s",
			c.Chat().ID, r.ResetAt.UTC().Format("15:04:05"))
		reset := r.ResetAt
		return func(c tele.Context) error {
			return c.Send(fmt.Sprintf(
				"Rate limit exceeded. Try again after %s UTC.",
				reset.UTC().Format("15:04:05")))
		}
	}
	return nil
}
