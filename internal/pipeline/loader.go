package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/scribedesk/internal/model"
	"github.com/ppiankov/scribedesk/internal/util"
)

var (
	// ErrUnsupportedFormat is returned for audio the transcription service does not accept
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrAudioTooLarge is returned when audio exceeds the configured byte cap
	ErrAudioTooLarge = errors.New("audio exceeds size limit")
)

// Formats accepted by the Whisper transcription endpoint
var supportedExtensions = map[string]bool{
	".flac": true,
	".m4a":  true,
	".mp3":  true,
	".mp4":  true,
	".mpeg": true,
	".mpga": true,
	".oga":  true,
	".ogg":  true,
	".wav":  true,
	".webm": true,
}

// IsSupportedAudio reports whether name has an extension the transcriber accepts
func IsSupportedAudio(name string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(name))]
}

// AudioLoader reads recordings from disk or over HTTP(S) with a byte cap
type AudioLoader struct {
	httpClient *http.Client
	maxBytes   int64
}

// NewAudioLoader creates a loader from the HTTP section of the config
func NewAudioLoader(cfg model.HTTPConfig, timeout time.Duration) *AudioLoader {
	return &AudioLoader{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		maxBytes: cfg.MaxAudioBytes,
	}
}

// Audio is one loaded recording
type Audio struct {
	Name string // Base file name, used for the upload and as the result source
	Data []byte
}

// Load reads a local path or an http(s) URL
func (l *AudioLoader) Load(ctx context.Context, source string) (*Audio, error) {
	if isRemote(source) {
		return l.fetch(ctx, source)
	}
	return l.readFile(source)
}

func (l *AudioLoader) readFile(p string) (*Audio, error) {
	name := filepath.Base(p)
	if !IsSupportedAudio(name) {
		return nil, fmt.Errorf("%s: %w", name, ErrUnsupportedFormat)
	}

	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("open audio: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := l.readCapped(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &Audio{Name: name, Data: data}, nil
}

func (l *AudioLoader) fetch(ctx context.Context, rawURL string) (*Audio, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse URL: %w", err)
	}
	name := path.Base(u.Path)
	if !IsSupportedAudio(name) {
		return nil, fmt.Errorf("%s: %w", rawURL, ErrUnsupportedFormat)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "scribedesk/"+Version)

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}
	if l.maxBytes > 0 && resp.ContentLength > l.maxBytes {
		return nil, fmt.Errorf("%s: %w (%d > %d bytes)", name, ErrAudioTooLarge, resp.ContentLength, l.maxBytes)
	}

	data, err := l.readCapped(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &Audio{Name: name, Data: data}, nil
}

// readCapped reads at most maxBytes, failing rather than truncating
func (l *AudioLoader) readCapped(r io.Reader) ([]byte, error) {
	if l.maxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("%w (limit %d bytes)", ErrAudioTooLarge, l.maxBytes)
	}
	return data, nil
}

// CheckAudio validates an in-memory upload the same way Load validates files
func (l *AudioLoader) CheckAudio(name string, data []byte) error {
	if !IsSupportedAudio(name) {
		return fmt.Errorf("%s: %w", name, ErrUnsupportedFormat)
	}
	if len(data) == 0 {
		return fmt.Errorf("%s: audio is empty", name)
	}
	if l.maxBytes > 0 && int64(len(data)) > l.maxBytes {
		return fmt.Errorf("%s: %w (limit %d bytes)", name, ErrAudioTooLarge, l.maxBytes)
	}
	return nil
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
