package ses

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
)

// ParseAddresses parses each entry as an RFC 5322 address.
func ParseAddresses(list []string) ([]*mail.Address, error) {
	out := make([]*mail.Address, 0, len(list))
	for _, raw := range list {
		addr, err := mail.ParseAddress(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid address %q: %w", raw, err)
		}
		out = append(out, addr)
	}
	return out, nil
}

// SplitAddresses splits a comma, semicolon or newline separated list and
// drops blanks.
func SplitAddresses(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n'
	})

	var out []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Preview renders opts as the RFC 5322 message the backend would send,
// without contacting it. The From header is omitted when from is empty
// because the backend fills in its verified sender.
func Preview(opts EmailOptions, from string, now time.Time) (string, error) {
	var h mail.Header
	h.SetDate(now)
	h.SetSubject(opts.Subject)

	if from != "" {
		sender, err := ParseAddresses([]string{from})
		if err != nil {
			return "", err
		}
		h.SetAddressList("From", sender)
	}

	lists := []struct {
		key   string
		addrs []string
	}{
		{"To", opts.To},
		{"Cc", opts.Cc},
		{"Reply-To", opts.ReplyTo},
	}
	for _, l := range lists {
		if len(l.addrs) == 0 {
			continue
		}
		parsed, err := ParseAddresses(l.addrs)
		if err != nil {
			return "", err
		}
		h.SetAddressList(l.key, parsed)
	}

	contentType := "text/plain"
	if opts.IsHTML {
		contentType = "text/html"
	}
	h.SetContentType(contentType, map[string]string{"charset": "utf-8"})
	h.Set("Content-Transfer-Encoding", "8bit")

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return "", fmt.Errorf("creating preview writer: %w", err)
	}
	if _, err := io.WriteString(w, opts.Body); err != nil {
		return "", fmt.Errorf("writing preview body: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("closing preview writer: %w", err)
	}

	return buf.String(), nil
}
