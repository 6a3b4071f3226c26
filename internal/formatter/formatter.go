// package formatter renders the ranked movie list as CSV, Markdown, plain text or JSON
package formatter

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/topten/internal/models"
	"github.com/desertthunder/topten/internal/shared"
)

// Format is an export format name.
type Format string

const (
	CSV      Format = "csv"
	Markdown Format = "markdown"
	Text     Format = "txt"
	JSON     Format = "json"
)

// ParseFormat accepts a format name or a common alias (md, text).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return CSV, nil
	case "markdown", "md":
		return Markdown, nil
	case "txt", "text":
		return Text, nil
	case "json", "":
		return JSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (csv, markdown, txt, json)", shared.ErrInvalidFlag, s)
	}
}

// Ext returns the file extension for the format.
func (f Format) Ext() string {
	if f == Markdown {
		return ".md"
	}
	return "." + string(f)
}

// Write renders ranked to w in the given format.
func Write(w io.Writer, ranked []models.RankedMovie, format Format) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case CSV:
		data, err = ExportToCSV(ranked)
	case Markdown:
		data, err = ExportToMarkdown(ranked, nil)
	case Text:
		data, err = ExportToText(ranked)
	default:
		data, err = shared.MarshalJSON(ranked, true)
	}
	if err != nil {
		return err
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// ExportToCSV converts the ranked list to CSV with columns: Rank, Title, Year, Rating, Review, Description, Image
func ExportToCSV(ranked []models.RankedMovie) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Rank", "Title", "Year", "Rating", "Review", "Description", "Image"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, m := range ranked {
		record := []string{
			strconv.Itoa(m.Rank),
			m.Title,
			strconv.Itoa(m.Year),
			m.RatingText(),
			m.ReviewText(),
			m.Description,
			m.ImgURL,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts the ranked list to Markdown.
//
// posters maps movie IDs to local image paths; movies without an entry link their remote poster.
func ExportToMarkdown(ranked []models.RankedMovie, posters map[int64]string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# My Top Movies\n\n")
	if len(ranked) == 0 {
		buf.WriteString("_No movies yet._\n")
		return buf.Bytes(), nil
	}

	for _, m := range ranked {
		fmt.Fprintf(&buf, "## %d. %s (%d)\n\n", m.Rank, m.Title, m.Year)

		img := m.ImgURL
		if local, ok := posters[m.ID]; ok {
			img = local
		}
		fmt.Fprintf(&buf, "![%s](%s)\n\n", m.Title, img)

		if m.IsRated() {
			fmt.Fprintf(&buf, "**Rating**: %s/10\n\n", m.RatingText())
		} else {
			buf.WriteString("**Rating**: not rated\n\n")
		}
		if review := m.ReviewText(); review != "" {
			fmt.Fprintf(&buf, "> %s\n\n", review)
		}
		if m.Description != "" {
			fmt.Fprintf(&buf, "%s\n\n", m.Description)
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts the ranked list to plain text, one movie per line
func ExportToText(ranked []models.RankedMovie) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Movies: %d\n\n", len(ranked))
	for _, m := range ranked {
		rating := m.RatingText()
		if rating == "" {
			rating = "-"
		}
		fmt.Fprintf(&buf, "%d. %s (%d) [%s]", m.Rank, m.Title, m.Year, rating)
		if review := m.ReviewText(); review != "" {
			fmt.Fprintf(&buf, " %s", review)
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory string
	Files     []string
	Posters   int
	Warnings  []error
}

// WriteMarkdownExport writes {dir}/README.md and, when downloadPosters is set, {dir}/posters/{id}{ext}.
//
// A poster that fails to download is recorded in Warnings and linked remotely instead.
func WriteMarkdownExport(ctx context.Context, ranked []models.RankedMovie, outputDir string, downloadPosters bool, client *http.Client) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = "movies"
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{Directory: outputDir, Files: []string{}}
	posters := map[int64]string{}

	if downloadPosters {
		posterDir := filepath.Join(outputDir, "posters")
		if err := os.MkdirAll(posterDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create poster directory: %w", err)
		}

		for _, m := range ranked {
			data, err := DownloadImage(ctx, client, m.ImgURL)
			if err != nil {
				result.Warnings = append(result.Warnings, fmt.Errorf("%s: %w", m.Title, err))
				continue
			}

			ext := path.Ext(m.ImgURL)
			if ext == "" {
				ext = ".jpg"
			}
			name := strconv.FormatInt(m.ID, 10) + ext
			if err := os.WriteFile(filepath.Join(posterDir, name), data, 0644); err != nil {
				result.Warnings = append(result.Warnings, fmt.Errorf("%s: failed to save poster: %w", m.Title, err))
				continue
			}

			posters[m.ID] = "posters/" + name
			result.Files = append(result.Files, filepath.Join(posterDir, name))
			result.Posters++
		}
	}

	mdData, err := ExportToMarkdown(ranked, posters)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}
	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteFile renders ranked to path in the given format.
func WriteFile(ranked []models.RankedMovie, format Format, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}

	if err := Write(f, ranked, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
