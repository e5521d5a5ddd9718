package validation

import "testing"

func TestAcceptedMimeAndExt(t *testing.T) {
	var table = []struct{ mime, ext string }{
		{"audio/ogg", "ogg"},
		{"audio/mpeg", "mp3"},
		{"audio/mp4", "m4a"},
		{"audio/x-m4a", "m4a"},
		{"audio/wav", "wav"},
	}
	for _, s := range table {
		if err := MimeAndExt(s.mime, s.ext); err != nil {
			t.Errorf("(%s, %s): %v", s.mime, s.ext, err)
		}
	}
}

func TestRejectedMimeTypes(t *testing.T) {
	var table = []struct{ mime, ext string }{
		{"video/mp4", "mp4"},
		{"image/jpeg", "jpg"},
		{"application/pdf", "pdf"},
		{"text/plain", "txt"},
		{"audio/unknown", "xyz"},
		{"", "ogg"},
	}
	for _, s := range table {
		if err := MimeAndExt(s.mime, s.ext); err == nil {
			t.Errorf("(%s, %s): expected rejection", s.mime, s.ext)
		}
	}
}

func TestMismatchedExtension(t *testing.T) {
	var table = []struct{ mime, ext string }{
		{"audio/ogg", "mp3"},
		{"audio/mpeg", "ogg"},
		{"audio/wav", "mp4"},
	}
	for _, s := range table {
		if err := MimeAndExt(s.mime, s.ext); err == nil {
			t.Errorf("(%s, %s): expected mismatch rejection", s.mime, s.ext)
		}
	}
}

func TestExtensionFor(t *testing.T) {
	if ext, ok := ExtensionFor("audio/mpeg"); !ok || ext != "mp3" {
		t.Errorf("Got (%s, %v)", ext, ok)
	}
	if _, ok := ExtensionFor("video/mp4"); ok {
		t.Error("video/mp4 should be unsupported")
	}
}

func TestSize(t *testing.T) {
	const max = 1024
	if err := Size(1, max); err != nil {
		t.Errorf("1 byte: %v", err)
	}
	if err := Size(max, max); err != nil {
		t.Errorf("exactly max: %v", err)
	}
	if err := Size(max+1, max); err == nil {
		t.Error("over max: expected rejection")
	}
	if err := Size(0, max); err == nil {
		t.Error("zero size: expected rejection")
	}
	if err := Size(-5, max); err == nil {
		t.Error("negative size: expected rejection")
	}
}
