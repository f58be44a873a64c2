package admin

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"

	"CatalogAdmin/internal/catalog"
)

const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"

	previewRunes = 40
)

type pageDoc struct {
	Page       int          `json:"page" yaml:"page"`
	TotalPages int          `json:"total_pages" yaml:"total_pages"`
	Matched    int          `json:"matched" yaml:"matched"`
	Error      string       `json:"error,omitempty" yaml:"error,omitempty"`
	Items      []productDoc `json:"items" yaml:"items"`
}

type productDoc struct {
	ID          int64          `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	Image       string         `json:"image" yaml:"image"`
	Price       float64        `json:"price" yaml:"price"`
	Status      catalog.Status `json:"status" yaml:"status"`
}

// WritePage renders lp in the given output format.
func WritePage(w io.Writer, lp ListPage, format string) error {
	switch format {
	case "", OutputTable:
		return writeTable(w, lp)
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(toDoc(lp))
	case OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(toDoc(lp)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (allowed: %s|%s|%s)", format, OutputTable, OutputJSON, OutputYAML)
	}
}

func toDoc(lp ListPage) pageDoc {
	doc := pageDoc{
		Page:       lp.Page,
		TotalPages: lp.TotalPages,
		Matched:    lp.Matched,
		Error:      lp.Error,
		Items:      make([]productDoc, 0, len(lp.Items)),
	}
	for _, p := range lp.Items {
		doc.Items = append(doc.Items, productDoc(p))
	}
	return doc
}

func writeTable(w io.Writer, lp ListPage) error {
	if lp.Error != "" {
		if _, err := fmt.Fprintf(w, "error: %s\n", lp.Error); err != nil {
			return err
		}
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION\tPRICE\tSTATUS\tIMAGE")
	for _, p := range lp.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Name, Preview(p.Description, previewRunes),
			strconv.FormatFloat(p.Price, 'f', -1, 64), p.Status, p.Image)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "page %d/%d (%d matching)\n", lp.Page, lp.TotalPages, lp.Matched)
	return err
}

// Preview flattens an HTML description to its text and truncates it to n
// runes.
func Preview(description string, n int) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(description))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.TextToken {
			b.Write(z.Text())
			b.WriteByte(' ')
		}
	}

	text := strings.Join(strings.Fields(b.String()), " ")
	if r := []rune(text); len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return text
}
