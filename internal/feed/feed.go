// Package feed reads message batches: JSON lines shaped like news items, or
// plain text with one message per line.
package feed

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cognicore/mentions/internal/logging"
)

// Item is one message. Only Text is scored; the rest is carried through for
// callers that want it.
type Item struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Outlet      string    `json:"outlet"`
	PublishedAt time.Time `json:"published_at"`
	Text        string    `json:"text"`
}

// maxLine bounds a single message.
const maxLine = 16 * 1024 * 1024

// Read parses one item per line. A line holding a JSON object with a "text"
// field becomes that item; any other line, the empty line included, is the
// text of the item verbatim, so line n always maps to item n.
func Read(r io.Reader, logger *zap.Logger) ([]Item, error) {
	logger = logging.OrNop(logger)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)

	var items []Item
	for n := 1; sc.Scan(); n++ {
		line := sc.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "{") {
			var rec record
			err := json.Unmarshal([]byte(line), &rec)
			if err == nil && rec.Text != nil {
				items = append(items, rec.item(logger.With(zap.Int("line", n))))
				continue
			}
			logger.Debug("line is not a JSON item, reading it as text", zap.Int("line", n), zap.Error(err))
		}
		items = append(items, Item{Text: line})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read messages: %w", err)
	}
	return items, nil
}

// record is the wire form of an Item. The date is kept raw so that a missing
// or oddly formatted published_at never costs the item its text.
type record struct {
	URL         string          `json:"url"`
	Title       string          `json:"title"`
	Outlet      string          `json:"outlet"`
	PublishedAt json.RawMessage `json:"published_at"`
	Text        *string         `json:"text"`
}

// dateLayouts are tried in order; RSS feeds use the RFC 1123 forms.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

func (r record) item(logger *zap.Logger) Item {
	it := Item{URL: r.URL, Title: r.Title, Outlet: r.Outlet, Text: *r.Text}
	if ts, ok := parseDate(r.PublishedAt); ok {
		it.PublishedAt = ts
	} else {
		logger.Debug("ignoring unparseable published_at", zap.ByteString("published_at", r.PublishedAt))
	}
	return it
}

// parseDate accepts a JSON string in any of dateLayouts. Absent, null and
// empty values report ok with the zero time.
func parseDate(raw json.RawMessage) (time.Time, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, true
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// ReadFile reads the items of path.
func ReadFile(path string, logger *zap.Logger) ([]Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, logger)
}

// Texts returns the message texts in item order.
func Texts(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Text
	}
	return out
}
