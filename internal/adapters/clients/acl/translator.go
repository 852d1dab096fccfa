package acl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jsamuelsen/daily-motivation/internal/domain"
)

// maxQuoteBodyBytes caps a provider payload. A single quote is well under 1KB.
const maxQuoteBodyBytes = 64 << 10

// quotePayload is the union of the field spellings quote providers use.
// It never leaves this package.
type quotePayload struct {
	UnderscoreID json.RawMessage `json:"_id"`
	ID           json.RawMessage `json:"id"`
	Content      string          `json:"content"`
	Quote        string          `json:"quote"`
	Author       string          `json:"author"`
}

// decodeQuote reads one quote from body. A JSON array yields its first element.
func decodeQuote(body io.Reader) (*quotePayload, error) {
	raw, err := io.ReadAll(io.LimitReader(body, maxQuoteBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading quote response: %w", err)
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var list []quotePayload
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("decoding quote list: %w", err)
		}
		if len(list) == 0 {
			return nil, fmt.Errorf("decoding quote list: empty")
		}
		return &list[0], nil
	}

	var payload quotePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decoding quote response: %w", err)
	}

	return &payload, nil
}

// translateQuote converts the payload into a validated domain quote.
func translateQuote(p *quotePayload) (*domain.Quote, error) {
	quote := &domain.Quote{
		ID:      firstNonEmpty(idString(p.UnderscoreID), idString(p.ID)),
		Content: strings.TrimSpace(firstNonEmpty(p.Content, p.Quote)),
		Author:  strings.TrimSpace(p.Author),
	}

	if err := quote.Validate(); err != nil {
		return nil, err
	}

	return quote, nil
}

// idString accepts string and numeric ids. Anything else yields "".
func idString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&n); err == nil {
		if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
			return strconv.FormatInt(i, 10)
		}
		return n.String()
	}

	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
