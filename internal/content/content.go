// Package content serves the storefront's static policy pages from embedded markdown.
package content

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed pages/*.md
var embedded embed.FS

// ErrNotFound is returned for unknown page slugs.
var ErrNotFound = errors.New("content: page not found")

const summaryLimit = 160

// Page is a rendered policy page.
type Page struct {
	Slug      string
	Title     string
	Summary   string
	HTML      string
	UpdatedAt time.Time
	Order     int
}

type frontMatter struct {
	Title     string `yaml:"title"`
	Summary   string `yaml:"summary"`
	UpdatedAt string `yaml:"updated_at"`
	Order     int    `yaml:"order"`
}

// Store loads pages lazily from a file system and keeps the rendered result.
type Store struct {
	fsys     fs.FS
	dir      string
	renderer *Renderer

	once  sync.Once
	pages map[string]Page
	err   error
}

// NewStore reads *.md files under dir in fsys.
func NewStore(fsys fs.FS, dir string) *Store {
	return &Store{fsys: fsys, dir: dir, renderer: NewRenderer()}
}

// NewEmbeddedStore serves the pages compiled into the binary.
func NewEmbeddedStore() *Store {
	return NewStore(embedded, "pages")
}

// Get returns the page with the given slug.
func (s *Store) Get(slug string) (Page, error) {
	if err := s.load(); err != nil {
		return Page{}, err
	}
	slug = sanitizeSlug(slug)
	page, ok := s.pages[slug]
	if !ok {
		return Page{}, ErrNotFound
	}
	return page, nil
}

// List returns every page ordered by its front matter order, then title.
func (s *Store) List() ([]Page, error) {
	if err := s.load(); err != nil {
		return nil, err
	}
	pages := make([]Page, 0, len(s.pages))
	for _, page := range s.pages {
		pages = append(pages, page)
	}
	slices.SortFunc(pages, func(a, b Page) int {
		if a.Order != b.Order {
			return a.Order - b.Order
		}
		return strings.Compare(a.Title, b.Title)
	})
	return pages, nil
}

func (s *Store) load() error {
	s.once.Do(func() {
		s.pages, s.err = s.readAll()
	})
	return s.err
}

func (s *Store) readAll() (map[string]Page, error) {
	entries, err := fs.ReadDir(s.fsys, s.dir)
	if err != nil {
		return nil, fmt.Errorf("content: read %s: %w", s.dir, err)
	}
	pages := make(map[string]Page, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".md" {
			continue
		}
		slug := strings.TrimSuffix(entry.Name(), ".md")
		data, err := fs.ReadFile(s.fsys, path.Join(s.dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("content: read %s: %w", entry.Name(), err)
		}
		page, err := s.parse(slug, string(data))
		if err != nil {
			return nil, err
		}
		pages[slug] = page
	}
	return pages, nil
}

func (s *Store) parse(slug, raw string) (Page, error) {
	fm, body := splitFrontMatter(raw)
	var front frontMatter
	if strings.TrimSpace(fm) != "" {
		if err := yaml.Unmarshal([]byte(fm), &front); err != nil {
			return Page{}, fmt.Errorf("content: parse front matter %s: %w", slug, err)
		}
	}
	rendered, err := s.renderer.Render(body)
	if err != nil {
		return Page{}, err
	}
	page := Page{
		Slug:      slug,
		Title:     strings.TrimSpace(front.Title),
		Summary:   strings.TrimSpace(front.Summary),
		HTML:      rendered,
		UpdatedAt: parseDate(front.UpdatedAt),
		Order:     front.Order,
	}
	if page.Title == "" {
		page.Title = prettifySlug(slug)
	}
	if page.Summary == "" {
		page.Summary = PlainText(rendered, summaryLimit)
	}
	return page, nil
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\ufeff")
	lines := strings.Split(input, "\n")
	if strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return strings.Join(lines[1:i], "\n"), strings.TrimLeft(strings.Join(lines[i+1:], "\n"), "\n\r")
		}
	}
	return "", input
}

func parseDate(v string) time.Time {
	v = strings.TrimSpace(v)
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func prettifySlug(slug string) string {
	parts := strings.Split(slug, "-")
	for i, part := range parts {
		if part != "" {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}

func sanitizeSlug(slug string) string {
	slug = strings.Trim(strings.TrimSpace(strings.ToLower(slug)), "/")
	if strings.Contains(slug, "..") || strings.ContainsAny(slug, `/\`) {
		return ""
	}
	return slug
}
