package secondary

import "context"

// Publisher defines the secondary port for publishing content to a social
// platform. One implementation exists per provider.
type Publisher interface {
	// Publish sends the content to the platform and returns the
	// platform-assigned identifier. When parentExternalID is non-empty the
	// content is published as a comment attached to that identifier.
	Publish(ctx context.Context, content *Content, parentExternalID string) (string, error)
}

// ContentResolver defines the secondary port for turning a content
// reference (a file path) into publishable content.
type ContentResolver interface {
	// Resolve reads and parses the referenced content.
	Resolve(ctx context.Context, ref string) (*Content, error)
}

// Content is parsed post content ready for publishing.
type Content struct {
	Title string
	Body  string
	Tags  []string
	Media []string // media file paths, resolved relative to the post file
}
