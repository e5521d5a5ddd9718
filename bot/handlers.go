package bot

import (
	"fmt"
	"io"
	"log"
	"strings"

	raven "github.com/getsentry/raven-go"
	tele "gopkg.in/telebot.v3"

	"github.com/archivedrop/archivedrop/validation"
)

const genericFailure = "Sorry, I couldn't process your message. Please try again later."

// inboundKind is the once-per-message classification of an update. The
// decision is made here at the adapter boundary; the storage engine only
// ever sees already-classified content.
type inboundKind int

const (
	inboundUnsupported inboundKind = iota
	inboundText
	inboundVoice
)

func classify(m *tele.Message) inboundKind {
	switch {
	case m == nil:
		return inboundUnsupported
	case m.Voice != nil:
		return inboundVoice
	case m.Text != "" && !strings.HasPrefix(m.Text, "/"):
		return inboundText
	default:
		return inboundUnsupported
	}
}

func senderID(c tele.Context) int64 {
	if c.Sender() != nil {
		return c.Sender().ID
	}
	return 0
}

func (h *Handler) onText(c tele.Context) error {
	if denied := h.admission(c); denied != nil {
		return denied(c)
	}
	m := c.Message()
	if classify(m) != inboundText {
		return h.onUnsupported(c)
	}

	paths, err := h.store.SaveText(m.Chat.ID, int64(m.ID), m.Text, m.Time(), senderID(c))
	if err != nil {
		h.noteError()
		raven.CaptureError(err, map[string]string{"kind": "text"})
		log.Printf("text save failed chat=%d msg=%d: %v", m.Chat.ID, m.ID, err)
		return c.Send(genericFailure)
	}
	h.noteStored()
	size := len([]byte(m.Text))
	log.Printf("text saved chat=%d msg=%d size=%d path=%s",
		m.Chat.ID, m.ID, size, paths.Content)
	return c.Send(fmt.Sprintf("Saved text (%d bytes)", size))
}

func (h *Handler) onVoice(c tele.Context) error {
	if denied := h.admission(c); denied != nil {
		return denied(c)
	}
	m := c.Message()
	voice := m.Voice

	mimeType := voice.MIME
	if mimeType == "" {
		mimeType = "audio/ogg" // telegram voice notes are ogg/opus
	}
	ext, ok := validation.ExtensionFor(mimeType)
	if !ok {
		ext = "ogg"
	}
	if err := validation.MimeAndExt(mimeType, ext); err != nil {
		log.Printf("voice rejected chat=%d msg=%d: %v", m.Chat.ID, m.ID, err)
		return c.Send(fmt.Sprintf("Voice message rejected: %v", err))
	}
	if err := validation.Size(int64(voice.FileSize), h.cfg.MaxAudioBytes); err != nil {
		log.Printf("voice rejected chat=%d msg=%d: %v", m.Chat.ID, m.ID, err)
		return c.Send(fmt.Sprintf("Voice message rejected: %v", err))
	}

	data, err := h.download(&voice.File)
	if err != nil {
		h.noteError()
		raven.CaptureError(err, map[string]string{"kind": "voice-download"})
		log.Printf("voice download failed chat=%d msg=%d: %v", m.Chat.ID, m.ID, err)
		return c.Send(genericFailure)
	}

	paths, err := h.store.SaveAudio(m.Chat.ID, int64(m.ID), data, mimeType, ext,
		m.Time(), senderID(c), voice.Duration)
	if err != nil {
		h.noteError()
		raven.CaptureError(err, map[string]string{"kind": "voice"})
		log.Printf("voice save failed chat=%d msg=%d: %v", m.Chat.ID, m.ID, err)
		return c.Send(genericFailure)
	}
	h.noteStored()
	log.Printf("voice saved chat=%d msg=%d size=%d duration=%d path=%s",
		m.Chat.ID, m.ID, len(data), voice.Duration, paths.Content)
	return c.Send(fmt.Sprintf("Saved voice (%d bytes, %ds)", len(data), voice.Duration))
}

// download fetches a file from the Telegram API, holding a gate slot so a
// burst of voice messages cannot open unbounded connections.
func (h *Handler) download(f *tele.File) ([]byte, error) {
	h.gate.Enter()
	defer h.gate.Leave()

	rc, err := h.bot.File(f)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (h *Handler) onUnsupported(c tele.Context) error {
	log.Printf("unsupported message chat=%d", c.Chat().ID)
	return c.Send("Unsupported message type. Send text or voice messages only.")
}
