package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "chat-images/a.png", ObjectKey("chat-images", "a.png"))
	assert.Equal(t, "chat-images/a.png", ObjectKey("/chat-images/", "a.png"))
	assert.Equal(t, "a.png", ObjectKey("", "a.png"))
}

func TestObjectURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "ssl endpoint",
			cfg:  Config{Endpoint: "s3.local:9000", UseSSL: true},
			want: "https://s3.local:9000/bucket/chat-images/a.png",
		},
		{
			name: "plain endpoint",
			cfg:  Config{Endpoint: "minio:9000"},
			want: "http://minio:9000/bucket/chat-images/a.png",
		},
		{
			name: "public url wins",
			cfg:  Config{Endpoint: "minio:9000", PublicURL: "https://cdn.example.com/"},
			want: "https://cdn.example.com/bucket/chat-images/a.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ObjectURL(baseURL(tt.cfg), "bucket", "chat-images/a.png"))
		})
	}
}
