package services

import (
	"encoding/base64"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeImage(t *testing.T) {
	gif := base64.StdEncoding.EncodeToString([]byte("GIF89a\x01\x00\x01\x00"))
	huge := base64.StdEncoding.EncodeToString(append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, maxImageSize)...))

	tests := []struct {
		name    string
		input   string
		wantExt string
		wantErr bool
	}{
		{"raw png", pngImage, "png", false},
		{"data url", "data:image/png;base64," + pngImage, "png", false},
		{"gif", gif, "gif", false},
		{"empty", "  ", "", true},
		{"empty data url", "data:image/png;base64,", "", true},
		{"not base64", "%%%", "", true},
		{"text payload", base64.StdEncoding.EncodeToString([]byte("hello world")), "", true},
		{"too large", huge, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, ext, err := DecodeImage(tt.input)
			if tt.wantErr {
				assertStatus(t, err, http.StatusBadRequest)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantExt, ext)
			assert.NotEmpty(t, data)
		})
	}
}

func TestImageFileName(t *testing.T) {
	name := imageFileName("png")
	assert.Regexp(t, regexp.MustCompile(`^\d+-[0-9a-f]{10}\.png$`), name)
	assert.NotEqual(t, name, imageFileName("png"))
	assert.False(t, strings.Contains(name, "/"))
}

func TestKeyedMutex(t *testing.T) {
	locks := newKeyedMutex()
	a, b := uuid.New(), uuid.New()

	unlockA := locks.Lock(a)

	// другой ключ не блокируется
	done := make(chan struct{})
	go func() {
		unlock := locks.Lock(b)
		unlock()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked")
	}

	acquired := make(chan struct{})
	go func() {
		unlock := locks.Lock(a)
		close(acquired)
		unlock()
	}()
	select {
	case <-acquired:
		t.Fatal("same key acquired twice")
	case <-time.After(50 * time.Millisecond):
	}

	unlockA()
	<-acquired

	assert.Eventually(t, func() bool { return locks.size() == 0 }, time.Second, 5*time.Millisecond)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock(a)
			defer unlock()
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
	assert.Zero(t, locks.size())
}
