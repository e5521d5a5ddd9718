package bot

import (
	"testing"

	tele "gopkg.in/telebot.v3"

	"github.com/archivedrop/archivedrop/validation"
)

func TestClassify(t *testing.T) {
	var table = []struct {
		name string
		msg  *tele.Message
		want inboundKind
	}{
		{"nil", nil, inboundUnsupported},
		{"plain text", &tele.Message{Text: "hello"}, inboundText},
		{"command", &tele.Message{Text: "/start"}, inboundUnsupported},
		{"empty", &tele.Message{}, inboundUnsupported},
		{"voice", &tele.Message{Voice: &tele.Voice{}}, inboundVoice},
		{"voice with caption", &tele.Message{Text: "note", Voice: &tele.Voice{}}, inboundVoice},
	}
	for _, s := range table {
		if got := classify(s.msg); got != s.want {
			t.Errorf("%s: got %d, expected %d", s.name, got, s.want)
		}
	}
}

func TestVoiceMimeFallback(t *testing.T) {
	// an empty MIME from telegram defaults to ogg, which must pass
	// validation as a pair
	ext, ok := validation.ExtensionFor("audio/ogg")
	if !ok || ext != "ogg" {
		t.Fatalf("Got (%s, %v)", ext, ok)
	}
	if err := validation.MimeAndExt("audio/ogg", ext); err != nil {
		t.Errorf("default voice format rejected: %v", err)
	}
}
