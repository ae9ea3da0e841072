package upload

import (
	"errors"
	"regexp"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	t.Run("AcceptsImage", func(t *testing.T) {
		err := Validate(FileInfo{Filename: "photo.JPG", MIMEType: "image/jpeg", Size: 2 << 20})
		if err != nil {
			t.Errorf("expected accept, got %v", err)
		}
	})

	t.Run("RejectsExecutable", func(t *testing.T) {
		err := Validate(FileInfo{Filename: "a.exe", MIMEType: "application/octet-stream", Size: 100})
		if !errors.Is(err, ErrTypeNotAllowed) {
			t.Errorf("expected ErrTypeNotAllowed, got %v", err)
		}
	})

	t.Run("RejectsMismatchedExtension", func(t *testing.T) {
		// Declared MIME passes but the extension does not; both must match.
		err := Validate(FileInfo{Filename: "a.exe", MIMEType: "image/jpeg", Size: 100})
		if !errors.Is(err, ErrTypeNotAllowed) {
			t.Errorf("expected ErrTypeNotAllowed, got %v", err)
		}
	})

	t.Run("RejectsMismatchedMIME", func(t *testing.T) {
		err := Validate(FileInfo{Filename: "a.png", MIMEType: "text/html", Size: 100})
		if !errors.Is(err, ErrTypeNotAllowed) {
			t.Errorf("expected ErrTypeNotAllowed, got %v", err)
		}
	})

	t.Run("RejectsOversize", func(t *testing.T) {
		err := Validate(FileInfo{Filename: "big.png", MIMEType: "image/png", Size: MaxFileSize + 1})
		if !errors.Is(err, ErrFileTooLarge) {
			t.Errorf("expected ErrFileTooLarge, got %v", err)
		}
	})

	t.Run("AcceptsAtCap", func(t *testing.T) {
		err := Validate(FileInfo{Filename: "big.png", MIMEType: "image/png", Size: MaxFileSize})
		if err != nil {
			t.Errorf("expected accept at the cap, got %v", err)
		}
	})
}

func TestSanitizeFilename(t *testing.T) {
	re := regexp.MustCompile(`^[A-HJ-NP-Z2-9]{8}_[A-Za-z0-9]+(\.[a-z0-9]+)?$`)

	cases := map[string]string{
		"photo.JPG":                    "photo.jpg",
		"../../etc/passwd":             "passwd",
		"my holiday pic!.png":          "myholidaypic.png",
		"café.jpeg":               "cafe.jpeg",
		"..":                           "upload",
		"éèê weird.gif": "eeeweird.gif",
	}
	for in, wantSuffix := range cases {
		got, err := SanitizeFilename(in)
		if err != nil {
			t.Fatalf("SanitizeFilename(%q) failed: %v", in, err)
		}
		if !re.MatchString(got) {
			t.Errorf("SanitizeFilename(%q) = %q, not in expected shape", in, got)
		}
		if !strings.HasSuffix(got, "_"+wantSuffix) {
			t.Errorf("SanitizeFilename(%q) = %q, want suffix %q", in, got, wantSuffix)
		}
	}

	// Prefixes differ between calls.
	a, _ := SanitizeFilename("photo.jpg")
	b, _ := SanitizeFilename("photo.jpg")
	if a == b {
		t.Error("two sanitized names should not collide")
	}
}
