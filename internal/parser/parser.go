// Package parser reads post files: markdown or plain text with an optional
// YAML front matter block delimited by "---" lines.
package parser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/example/socialcli/internal/ports/secondary"
)

// FrontMatter holds the metadata block of a post file.
type FrontMatter struct {
	Title    string     `yaml:"title"`
	Tags     stringList `yaml:"tags"`
	Provider string     `yaml:"provider"`
	Schedule string     `yaml:"schedule"`
	Media    []string   `yaml:"media"`
}

// Post is a parsed post file.
type Post struct {
	Meta           FrontMatter
	Content        string
	HasFrontMatter bool
}

// stringList accepts either a YAML sequence or a comma-separated scalar.
type stringList []string

func (l *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var raw string
		if err := value.Decode(&raw); err != nil {
			return err
		}
		var items []string
		for _, part := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				items = append(items, trimmed)
			}
		}
		*l = items
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return err
		}
		*l = items
		return nil
	default:
		return fmt.Errorf("tags must be a list or a comma-separated string")
	}
}

const frontMatterDelimiter = "---"

// Parse reads and parses a post file.
func Parse(path string) (*Post, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read post file: %w", err)
	}
	return parseContent(string(data))
}

func parseContent(raw string) (*Post, error) {
	post := &Post{}

	// Normalize line endings before splitting on delimiter lines.
	raw = strings.ReplaceAll(raw, "\r\n", "\n")

	if !strings.HasPrefix(raw, frontMatterDelimiter+"\n") {
		post.Content = strings.TrimSpace(raw)
		return post, nil
	}

	rest := raw[len(frontMatterDelimiter)+1:]
	end := strings.Index(rest, "\n"+frontMatterDelimiter)
	if end < 0 {
		// Opening delimiter without a closing one: treat the whole file
		// as content, the way the original did for non-matching blocks.
		post.Content = strings.TrimSpace(raw)
		return post, nil
	}

	metaBlock := rest[:end]
	body := rest[end+len(frontMatterDelimiter)+1:]
	if idx := strings.Index(body, "\n"); idx >= 0 {
		body = body[idx+1:]
	} else {
		body = ""
	}

	if err := yaml.Unmarshal([]byte(metaBlock), &post.Meta); err != nil {
		return nil, fmt.Errorf("invalid YAML front matter: %w", err)
	}
	post.HasFrontMatter = true
	post.Content = strings.TrimSpace(body)

	return post, nil
}

// ScheduleTime parses the front matter schedule field. The second return
// value reports whether a schedule was present.
func (p *Post) ScheduleTime() (time.Time, bool, error) {
	if p.Meta.Schedule == "" {
		return time.Time{}, false, nil
	}
	ts, err := ParseTime(p.Meta.Schedule)
	if err != nil {
		return time.Time{}, true, err
	}
	return ts, true, nil
}

// ParseTime accepts the schedule formats the original tool accepted:
// RFC3339, ISO without zone (interpreted as local time), and a date-only
// form.
func ParseTime(value string) (time.Time, error) {
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
	} {
		if ts, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid schedule format %q (use ISO format, e.g. 2006-01-02T15:04:05)", value)
}

// Validate checks that the post is publishable.
func (p *Post) Validate() error {
	if p.Content == "" {
		return fmt.Errorf("post content cannot be empty")
	}
	if _, _, err := p.ScheduleTime(); err != nil {
		return err
	}
	return nil
}

// Resolver implements secondary.ContentResolver over post files.
type Resolver struct{}

// NewResolver creates a new file-backed content resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve reads and parses the referenced post file. Media paths are
// resolved relative to the post file's directory and must exist: a missing
// media file fails the whole post.
func (r *Resolver) Resolve(ctx context.Context, ref string) (*secondary.Content, error) {
	post, err := Parse(ref)
	if err != nil {
		return nil, err
	}
	if err := post.Validate(); err != nil {
		return nil, err
	}

	baseDir := filepath.Dir(ref)
	media := make([]string, 0, len(post.Meta.Media))
	for _, m := range post.Meta.Media {
		path := m
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("media file not found: %s", path)
		}
		media = append(media, path)
	}

	return &secondary.Content{
		Title: post.Meta.Title,
		Body:  post.Content,
		Tags:  post.Meta.Tags,
		Media: media,
	}, nil
}
