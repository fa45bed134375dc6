package staging

import (
	"fmt"
	"strings"
)

// MaxPhotos bounds how many photos one editing session can stage.
const MaxPhotos = 5

// File is one not-yet-uploaded attachment: the binary plus enough metadata
// to validate and later name the stored object.
type File struct {
	Name        string
	Size        int64
	ContentType string
	Description string
	Data        []byte
}

// Rejection explains why one file of an Add batch was not staged. Individual
// rejections are non-fatal; the valid remainder is still accepted.
type Rejection struct {
	Name   string
	Reason string
}

// LimitError is returned when an Add would push the staged count past
// MaxPhotos. The whole batch is refused and the buffer left unchanged.
type LimitError struct {
	Staged   int
	Incoming int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("cannot stage %d more photos: %d of %d already staged", e.Incoming, e.Staged, MaxPhotos)
}

// Buffer accumulates candidate photo attachments in memory before upload.
// It lives only for one editing session and is cleared after a successful
// upload batch.
type Buffer struct {
	maxBytes int64
	files    []File
}

func NewBuffer(maxBytes int64) *Buffer {
	return &Buffer{maxBytes: maxBytes}
}

// Add stages the valid subset of files. It fails entirely when the batch
// would exceed MaxPhotos; otherwise non-image files and files over the size
// ceiling are skipped with a per-file rejection.
func (b *Buffer) Add(files []File) ([]Rejection, error) {
	if len(b.files)+len(files) > MaxPhotos {
		return nil, &LimitError{Staged: len(b.files), Incoming: len(files)}
	}
	var rejected []Rejection
	for _, f := range files {
		if !strings.HasPrefix(f.ContentType, "image/") {
			rejected = append(rejected, Rejection{
				Name:   f.Name,
				Reason: fmt.Sprintf("not an image: %s", f.ContentType),
			})
			continue
		}
		if b.maxBytes > 0 && f.Size > b.maxBytes {
			rejected = append(rejected, Rejection{
				Name:   f.Name,
				Reason: fmt.Sprintf("file exceeds %d MB limit", b.maxBytes>>20),
			})
			continue
		}
		b.files = append(b.files, f)
	}
	return rejected, nil
}

// Remove drops exactly one staged entry, preserving the order of the rest.
func (b *Buffer) Remove(index int) error {
	if index < 0 || index >= len(b.files) {
		return fmt.Errorf("no staged photo at index %d", index)
	}
	b.files = append(b.files[:index], b.files[index+1:]...)
	return nil
}

// Clear empties the buffer so a later save does not re-upload the same images.
func (b *Buffer) Clear() {
	b.files = nil
}

// Files returns the staged entries in add order.
func (b *Buffer) Files() []File {
	return b.files
}

func (b *Buffer) Len() int {
	return len(b.files)
}
