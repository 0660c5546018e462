package sitemap

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/starford/menusitemap/internal/models"
)

// Namespace is the sitemap protocol namespace.
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNs   string   `xml:"xmlns,attr,omitempty"`
	URLs    []urlXML `xml:"url"`
}

type urlXML struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// Encode writes entries as a sitemap document. Locations are escaped, never
// rejected.
func Encode(w io.Writer, entries []models.Entry) error {
	set := urlSet{XMLNs: Namespace, URLs: make([]urlXML, len(entries))}
	for i, e := range entries {
		u := urlXML{Loc: e.Loc, ChangeFreq: string(e.ChangeFreq)}
		if !e.LastMod.IsZero() {
			u.LastMod = e.LastMod.Format(time.RFC3339)
		}
		if e.Priority != nil {
			u.Priority = strconv.FormatFloat(*e.Priority, 'f', 1, 64)
		}
		set.URLs[i] = u
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("sitemap: write header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return fmt.Errorf("sitemap: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("sitemap: encode: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Marshal returns the encoded document.
func Marshal(entries []models.Entry) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, entries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses a sitemap document back into entries. Dates may be full
// RFC 3339 timestamps or plain days.
func Decode(r io.Reader) ([]models.Entry, error) {
	var set urlSet
	if err := xml.NewDecoder(r).Decode(&set); err != nil {
		return nil, fmt.Errorf("sitemap: decode: %w", err)
	}
	out := make([]models.Entry, 0, len(set.URLs))
	for _, u := range set.URLs {
		e := models.Entry{
			Loc:        strings.TrimSpace(u.Loc),
			ChangeFreq: models.ChangeFreq(strings.TrimSpace(u.ChangeFreq)),
		}
		if e.ChangeFreq != "" && !e.ChangeFreq.Valid() {
			return nil, fmt.Errorf("sitemap: changefreq of %s: unknown value %q", e.Loc, e.ChangeFreq)
		}
		if s := strings.TrimSpace(u.LastMod); s != "" {
			t, err := parseLastMod(s)
			if err != nil {
				return nil, fmt.Errorf("sitemap: lastmod of %s: %w", e.Loc, err)
			}
			e.LastMod = t
		}
		if s := strings.TrimSpace(u.Priority); s != "" {
			p, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("sitemap: priority of %s: %w", e.Loc, err)
			}
			e.Priority = &p
		}
		out = append(out, e)
	}
	return out, nil
}

func parseLastMod(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}
