// Package domain defines the core domain models for sessiondx.
package domain

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// StepIDPrefix is the prefix for client-generated invocation step IDs.
// Format: sxst-{ulid_lowercase}, 31 characters total.
const StepIDPrefix = "sxst-"

// Image formats the gateway accepts for image content blocks. Anything else
// falls back to DefaultImageFormat.
const DefaultImageFormat = "png"

var acceptedImageFormats = map[string]bool{
	"png":  true,
	"jpeg": true,
	"jpg":  true,
	"gif":  true,
	"webp": true,
}

// InvocationSummary is the normalized list-invocations entry.
//
// @design DS-0102
type InvocationSummary struct {
	// ID is the invocation identifier assigned by the gateway.
	ID string `json:"id"`

	// Description is the human-readable invocation description.
	Description string `json:"description"`

	// CreatedAt is the invocation creation timestamp. May be zero when the
	// gateway omits it; reconstruction sorts zero timestamps first.
	CreatedAt time.Time `json:"created_at"`
}

// StepSummary is the normalized list-invocation-steps entry.
//
// @design DS-0102
type StepSummary struct {
	// ID is the invocation step identifier.
	ID string `json:"id"`

	// StepTime is the client-supplied step timestamp used for ordering.
	StepTime time.Time `json:"step_time"`
}

// InvocationStep is the full step record including its payload.
// Steps are immutable once written.
//
// @req RQ-0102
// @design DS-0102
type InvocationStep struct {
	// ID is the invocation step identifier.
	ID string `json:"id"`

	// InvocationID is the owning invocation.
	InvocationID string `json:"invocation_id"`

	// StepTime is the client-supplied step timestamp.
	StepTime time.Time `json:"step_time"`

	// Payload holds the ordered content blocks.
	Payload StepPayload `json:"payload"`
}

// StepPayload is the payload of an invocation step: an ordered sequence of
// content blocks.
type StepPayload struct {
	ContentBlocks []ContentBlock `json:"contentBlocks"`
}

// ContentBlock is one item of a step payload, either text or an image.
// Exactly one of Text / Image is set.
type ContentBlock struct {
	Text  string       `json:"text,omitempty"`
	Image *ImageSource `json:"image,omitempty"`
}

// ImageSource holds raw image bytes with their declared format.
type ImageSource struct {
	Format string `json:"format"`
	Bytes  []byte `json:"bytes"`
}

// NewTextBlock creates a text content block.
func NewTextBlock(text string) ContentBlock {
	return ContentBlock{Text: text}
}

// NewImageBlock creates an image content block.
func NewImageBlock(format string, data []byte) ContentBlock {
	return ContentBlock{Image: &ImageSource{Format: format, Bytes: data}}
}

// IsImage reports whether the block carries an image.
func (b ContentBlock) IsImage() bool {
	return b.Image != nil
}

// GenerateStepID generates a new invocation step ID using ULID.
// Format: sxst-{ulid_lowercase}, 31 characters total.
//
// @design DS-0101
func GenerateStepID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", ErrRecorderFailed.WithCause(err)
	}
	return StepIDPrefix + strings.ToLower(id.String()), nil
}

// NormalizeImageFormat maps a file extension to an accepted image format,
// defaulting to png for unrecognized extensions.
func NormalizeImageFormat(ext string) string {
	format := strings.ToLower(strings.TrimPrefix(ext, "."))
	if acceptedImageFormats[format] {
		return format
	}
	return DefaultImageFormat
}
