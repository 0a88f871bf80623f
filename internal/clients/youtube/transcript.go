package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/yungbote/repurpose-bot/internal/platform/ctxutil"
	"github.com/yungbote/repurpose-bot/internal/platform/logger"
)

const (
	defaultBaseURL = "https://www.youtube.com"
	maxPageBytes   = 8 << 20
)

var (
	ErrInvalidURL = errors.New("not a youtube video url")
	ErrNoCaptions = errors.New("video has no captions")

	videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	captionsMarker = []byte(`"captionTracks":`)
)

type Config struct {
	// BaseURL is the watch-page origin.
	BaseURL    string
	Language   string
	HTTPClient *http.Client
}

// Fetcher returns the concatenated caption text of a video.
type Fetcher interface {
	Fetch(ctx context.Context, videoURL string) (string, error)
}

type fetcher struct {
	log      *logger.Logger
	http     *http.Client
	baseURL  string
	language string
}

func NewFetcher(log *logger.Logger, cfg Config) (Fetcher, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 20 * time.Second}
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	lang := strings.TrimSpace(cfg.Language)
	if lang == "" {
		lang = "en"
	}
	return &fetcher{
		log:      log.With("client", "YouTubeTranscript"),
		http:     hc,
		baseURL:  base,
		language: lang,
	}, nil
}

func (f *fetcher) Fetch(ctx context.Context, videoURL string) (string, error) {
	ctx = ctxutil.Default(ctx)
	id, err := VideoID(videoURL)
	if err != nil {
		return "", err
	}

	page, err := f.get(ctx, f.baseURL+"/watch?v="+id)
	if err != nil {
		return "", fmt.Errorf("watch page: %w", err)
	}
	tracks, err := parseCaptionTracks(page)
	if err != nil {
		return "", err
	}
	track := pickTrack(tracks, f.language)
	if track == nil {
		return "", ErrNoCaptions
	}

	raw, err := f.get(ctx, track.BaseURL)
	if err != nil {
		return "", fmt.Errorf("timedtext: %w", err)
	}
	text, err := parseTimedText(raw)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", ErrNoCaptions
	}
	f.log.Debug("Transcript fetched", "video_id", id, "language", track.LanguageCode, "chars", len(text))
	return text, nil
}

func (f *fetcher) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept-Language", f.language)
	resp, err := f.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
}

// VideoID extracts the 11-character id from watch, share, embed and shorts URLs.
// A bare id is accepted too.
func VideoID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if videoIDPattern.MatchString(raw) {
		return raw, nil
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", ErrInvalidURL
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")

	var id string
	switch host {
	case "youtu.be":
		id = strings.Trim(u.Path, "/")
	case "youtube.com", "music.youtube.com", "youtube-nocookie.com":
		switch {
		case u.Path == "/watch":
			id = u.Query().Get("v")
		default:
			parts := strings.Split(strings.Trim(u.Path, "/"), "/")
			if len(parts) == 2 && (parts[0] == "embed" || parts[0] == "shorts" || parts[0] == "live" || parts[0] == "v") {
				id = parts[1]
			}
		}
	}
	if !videoIDPattern.MatchString(id) {
		return "", ErrInvalidURL
	}
	return id, nil
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

// parseCaptionTracks finds the captionTracks array embedded in the watch page's player response.
func parseCaptionTracks(page []byte) ([]captionTrack, error) {
	idx := bytes.Index(page, captionsMarker)
	if idx < 0 {
		return nil, ErrNoCaptions
	}
	var tracks []captionTrack
	dec := json.NewDecoder(bytes.NewReader(page[idx+len(captionsMarker):]))
	if err := dec.Decode(&tracks); err != nil {
		return nil, fmt.Errorf("decode caption tracks: %w", err)
	}
	if len(tracks) == 0 {
		return nil, ErrNoCaptions
	}
	return tracks, nil
}

// pickTrack prefers a manual track in lang, then an auto-generated one, then the first track.
func pickTrack(tracks []captionTrack, lang string) *captionTrack {
	var auto *captionTrack
	for i := range tracks {
		t := &tracks[i]
		if t.BaseURL == "" || !strings.HasPrefix(strings.ToLower(t.LanguageCode), strings.ToLower(lang)) {
			continue
		}
		if t.Kind != "asr" {
			return t
		}
		if auto == nil {
			auto = t
		}
	}
	if auto != nil {
		return auto
	}
	for i := range tracks {
		if tracks[i].BaseURL != "" {
			return &tracks[i]
		}
	}
	return nil
}

// parseTimedText reads both the legacy <transcript><text> format and the
// srv3 <timedtext><body><p> format. Fragments are HTML-unescaped, newlines
// become spaces, and fragments are joined with single spaces.
func parseTimedText(raw []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	dec.Strict = false
	dec.Entity = xml.HTMLEntity

	var (
		parts []string
		cur   strings.Builder
		depth int
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode timedtext: %w", err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Local == "text" || el.Name.Local == "p" {
				if depth == 0 {
					cur.Reset()
				}
				depth++
			}
		case xml.EndElement:
			if (el.Name.Local == "text" || el.Name.Local == "p") && depth > 0 {
				depth--
				if depth == 0 {
					if frag := cleanFragment(cur.String()); frag != "" {
						parts = append(parts, frag)
					}
				}
			}
		case xml.CharData:
			if depth > 0 {
				cur.Write(el)
			}
		}
	}
	return strings.Join(parts, " "), nil
}

func cleanFragment(s string) string {
	// the xml decoder undoes one level; captions are usually escaped twice (&amp;#39;)
	s = html.UnescapeString(s)
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
