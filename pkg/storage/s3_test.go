package storage

import "testing"

func TestAvatarKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		userID   string
		filename string
		want     string
	}{
		{"u-1", "photo.PNG", "avatars/u-1.png"},
		{"u-2", "me.jpeg", "avatars/u-2.jpeg"},
		{"u-3", "noext", "avatars/u-3"},
	}
	for _, tt := range tests {
		if got := AvatarKey(tt.userID, tt.filename); got != tt.want {
			t.Errorf("AvatarKey(%q, %q) = %q, want %q", tt.userID, tt.filename, got, tt.want)
		}
	}
}

func TestValidateAvatarFileType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		contentType string
		filename    string
		want        bool
	}{
		{"jpeg by content type", "image/jpeg", "x.bin", true},
		{"png by extension only", "", "x.png", true},
		{"webp uppercase extension", "", "x.WEBP", true},
		{"gif rejected", "image/gif", "x.gif", false},
		{"no hints rejected", "", "x", false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ValidateAvatarFileType(tt.contentType, tt.filename); got != tt.want {
				t.Errorf("ValidateAvatarFileType(%q, %q) = %v, want %v", tt.contentType, tt.filename, got, tt.want)
			}
		})
	}
}

func TestKeyFromObjectURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want string
	}{
		{"avatar url", "https://afisha-avatars.s3.eu-central-1.amazonaws.com/avatars/u-1.png", "avatars/u-1.png"},
		{"nested key", "https://b.s3.us-east-1.amazonaws.com/a/b/c.webp", "a/b/c.webp"},
		{"not an s3 url", "https://example.com/avatars/u-1.png", ""},
		{"empty", "", ""},
		{"garbage", "::not a url::", ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := KeyFromObjectURL(tt.url); got != tt.want {
				t.Errorf("KeyFromObjectURL(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestObjectURLRoundTrip(t *testing.T) {
	t.Parallel()

	s := &S3{cfg: S3Config{Region: "eu-central-1", AvatarsBucket: "afisha-avatars"}}
	url := s.ObjectURL(s.AvatarsBucket(), "avatars/u-9.jpg")
	if got := KeyFromObjectURL(url); got != "avatars/u-9.jpg" {
		t.Errorf("KeyFromObjectURL(ObjectURL(...)) = %q, want the original key", got)
	}
}
