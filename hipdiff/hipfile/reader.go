package hipfile

import (
	"encoding/binary"
	"io"
	"strings"
)

// chunkReader walks the nested chunk structure of a HIP stream. Every chunk
// is an 8-byte header (4-byte ASCII tag, 4-byte big-endian body length)
// followed by the body. enter pushes the next chunk, exit seeks past
// whatever is left of the current one, so a caller can skip any tag it does
// not recognize without knowing its layout.
type chunkReader struct {
	r     io.ReadSeeker
	pos   int64
	size  int64
	stack []openChunk
}

type openChunk struct {
	tag Tag
	end int64 // stream offset one past the last body byte
}

func newChunkReader(r io.ReadSeeker) (*chunkReader, error) {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, ErrTruncatedRead.WithMessage("failed to measure stream").WithCause(err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, ErrTruncatedRead.WithMessage("failed to rewind stream").WithCause(err)
	}
	return &chunkReader{r: r, size: size, stack: make([]openChunk, 0, MaxStackDepth)}, nil
}

// enter reads the next chunk header within the current scope and pushes the
// chunk. It returns false with a nil error when the scope holds no further
// chunks: either the cursor reached the enclosing chunk's declared end, or
// the stream ran out of header bytes. Callers decide whether an empty top
// level matters; an empty nested scope never does.
func (cr *chunkReader) enter() (Tag, bool, error) {
	if n := len(cr.stack); n > 0 && cr.pos >= cr.stack[n-1].end {
		return 0, false, nil
	}
	if len(cr.stack) >= MaxStackDepth {
		return 0, false, ErrDepthOverflow.
			WithDetail("depth", len(cr.stack)).
			WithDetail("offset", cr.pos)
	}

	var hdr [8]byte
	if _, err := io.ReadFull(cr.r, hdr[:]); err != nil {
		// Out of header bytes. exit re-syncs the cursor with an absolute
		// seek, so the stale pos is harmless.
		return 0, false, nil
	}
	cr.pos += 8

	tag := Tag(binary.BigEndian.Uint32(hdr[0:4]))
	length := binary.BigEndian.Uint32(hdr[4:8])
	end := cr.pos + int64(length)

	if end > cr.size {
		return 0, false, ErrStructural.
			WithMessage("chunk extends past end of stream").
			WithDetail("tag", tag.String()).
			WithDetail("end", end).
			WithDetail("size", cr.size)
	}
	if n := len(cr.stack); n > 0 && end > cr.stack[n-1].end {
		return 0, false, ErrStructural.
			WithMessage("chunk extends past enclosing chunk").
			WithDetail("tag", tag.String()).
			WithDetail("end", end).
			WithDetail("parentTag", cr.stack[n-1].tag.String()).
			WithDetail("parentEnd", cr.stack[n-1].end)
	}

	cr.stack = append(cr.stack, openChunk{tag: tag, end: end})
	return tag, true, nil
}

// exit pops the current chunk and seeks to its declared end, regardless of
// how much of the body was consumed.
func (cr *chunkReader) exit() error {
	if len(cr.stack) == 0 {
		return ErrStructural.WithMessage("chunk stack underflow")
	}
	end := cr.stack[len(cr.stack)-1].end
	cr.stack = cr.stack[:len(cr.stack)-1]
	if _, err := cr.r.Seek(end, io.SeekStart); err != nil {
		return ErrTruncatedRead.WithMessage("failed to seek past chunk").WithCause(err)
	}
	cr.pos = end
	return nil
}

// current returns the innermost open chunk. ok is false at top level.
func (cr *chunkReader) current() (openChunk, bool) {
	if len(cr.stack) == 0 {
		return openChunk{}, false
	}
	return cr.stack[len(cr.stack)-1], true
}

func (cr *chunkReader) readUint32() (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(cr.r, buf[:]); err != nil {
		return 0, ErrTruncatedRead.
			WithDetail("offset", cr.pos).
			WithCause(err)
	}
	cr.pos += 4
	return binary.BigEndian.Uint32(buf[:]), nil
}

// readString reads a NUL-terminated string, keeping at most max-1 bytes.
// Bytes beyond the cap are still consumed through the terminator so the
// cursor lands where the format expects. Strings are padded to even length
// on the wire; the pad byte is skipped when the consumed count (terminator
// included) is odd. max <= 0 removes the cap.
func (cr *chunkReader) readString(max int) (string, error) {
	var sb strings.Builder
	consumed := 0
	for {
		var b [1]byte
		if _, err := io.ReadFull(cr.r, b[:]); err != nil {
			return "", ErrTruncatedRead.
				WithMessage("stream ended inside string").
				WithDetail("offset", cr.pos).
				WithCause(err)
		}
		cr.pos++
		consumed++
		if b[0] == 0 {
			break
		}
		if max <= 0 || sb.Len() < max-1 {
			sb.WriteByte(b[0])
		}
	}
	if consumed&1 == 1 {
		if err := cr.skip(1); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

func (cr *chunkReader) skip(n int64) error {
	if _, err := cr.r.Seek(n, io.SeekCurrent); err != nil {
		return ErrTruncatedRead.WithMessage("failed to skip bytes").WithCause(err)
	}
	cr.pos += n
	return nil
}

// readFull fills buf from the stream.
func (cr *chunkReader) readFull(buf []byte) error {
	n, err := io.ReadFull(cr.r, buf)
	cr.pos += int64(n)
	if err != nil {
		return ErrTruncatedRead.
			WithMessage("stream ended inside chunk body").
			WithDetail("offset", cr.pos).
			WithCause(err)
	}
	return nil
}
