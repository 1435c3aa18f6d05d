package hipfile

import (
	"bytes"
	"testing"
)

func TestChunkReaderWalk(t *testing.T) {
	stream := concat(
		chunk("AAAA",
			chunk("BBBB", u32(7), u32(9)),
			chunk("CCCC"),
		),
		chunk("DDDD", u32(3)),
	)

	cr, err := newChunkReader(bytes.NewReader(stream))
	if err != nil {
		t.Fatalf("newChunkReader: %v", err)
	}

	mustEnter := func(want string) {
		t.Helper()
		tag, ok, err := cr.enter()
		if err != nil {
			t.Fatalf("enter: %v", err)
		}
		if !ok {
			t.Fatalf("enter: expected chunk %s, got end of scope", want)
		}
		if tag.String() != want {
			t.Fatalf("enter: tag = %s, want %s", tag, want)
		}
	}
	mustEnd := func() {
		t.Helper()
		tag, ok, err := cr.enter()
		if err != nil {
			t.Fatalf("enter: %v", err)
		}
		if ok {
			t.Fatalf("enter: expected end of scope, got chunk %s", tag)
		}
	}
	mustExit := func() {
		t.Helper()
		if err := cr.exit(); err != nil {
			t.Fatalf("exit: %v", err)
		}
	}

	mustEnter("AAAA")
	mustEnter("BBBB")
	v, err := cr.readUint32()
	if err != nil {
		t.Fatalf("readUint32: %v", err)
	}
	if v != 7 {
		t.Fatalf("readUint32 = %d, want 7", v)
	}
	// The second field stays unread; exit must land on the sibling anyway.
	mustExit()
	mustEnter("CCCC")
	mustExit()
	mustEnd()
	mustExit()
	mustEnter("DDDD")
	mustExit()
	mustEnd()
}

func TestChunkReaderReadString(t *testing.T) {
	tests := []struct {
		name    string
		wire    []byte
		max     int
		want    string
		wantPos int64
	}{
		{
			name:    "short string with pad",
			wire:    []byte("hi\x00\x00"),
			max:     32,
			want:    "hi",
			wantPos: 4,
		},
		{
			name:    "even consumption without pad",
			wire:    []byte("abc\x00"),
			max:     32,
			want:    "abc",
			wantPos: 4,
		},
		{
			name:    "empty string",
			wire:    []byte("\x00\x00"),
			max:     32,
			want:    "",
			wantPos: 2,
		},
		{
			name:    "string filling the cap exactly",
			wire:    []byte("abc\x00"),
			max:     4,
			want:    "abc",
			wantPos: 4,
		},
		{
			name:    "overflow consumed but discarded",
			wire:    []byte("abcdef\x00\x00"),
			max:     4,
			want:    "abc",
			wantPos: 8,
		},
		{
			name:    "uncapped",
			wire:    []byte("a long name beyond thirty-two b\x00"),
			max:     0,
			want:    "a long name beyond thirty-two b",
			wantPos: 32,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cr, err := newChunkReader(bytes.NewReader(tt.wire))
			if err != nil {
				t.Fatalf("newChunkReader: %v", err)
			}
			got, err := cr.readString(tt.max)
			if err != nil {
				t.Fatalf("readString: %v", err)
			}
			if got != tt.want {
				t.Errorf("readString = %q, want %q", got, tt.want)
			}
			if cr.pos != tt.wantPos {
				t.Errorf("pos after readString = %d, want %d", cr.pos, tt.wantPos)
			}
		})
	}
}

func TestChunkReaderReadStringTruncated(t *testing.T) {
	cr, err := newChunkReader(bytes.NewReader([]byte("ab")))
	if err != nil {
		t.Fatalf("newChunkReader: %v", err)
	}
	_, err = cr.readString(32)
	if GetErrorCode(err) != "TRUNCATED_READ" {
		t.Fatalf("readString error = %v, want TRUNCATED_READ", err)
	}
}

func TestChunkReaderDepthOverflow(t *testing.T) {
	inner := chunk("DEEP", u32(0))
	for i := 0; i < MaxStackDepth; i++ {
		inner = chunk("NEST", inner)
	}

	cr, err := newChunkReader(bytes.NewReader(inner))
	if err != nil {
		t.Fatalf("newChunkReader: %v", err)
	}
	for i := 0; i < MaxStackDepth; i++ {
		if _, ok, err := cr.enter(); err != nil || !ok {
			t.Fatalf("enter %d: ok=%v err=%v", i, ok, err)
		}
	}
	_, _, err = cr.enter()
	if GetErrorCode(err) != "DEPTH_OVERFLOW" {
		t.Fatalf("enter past max depth = %v, want DEPTH_OVERFLOW", err)
	}
}

func TestChunkReaderExhaustedScopeAtMaxDepth(t *testing.T) {
	inner := chunk("DEEP")
	for i := 0; i < MaxStackDepth-1; i++ {
		inner = chunk("NEST", inner)
	}

	cr, err := newChunkReader(bytes.NewReader(inner))
	if err != nil {
		t.Fatalf("newChunkReader: %v", err)
	}
	for i := 0; i < MaxStackDepth; i++ {
		if _, ok, err := cr.enter(); err != nil || !ok {
			t.Fatalf("enter %d: ok=%v err=%v", i, ok, err)
		}
	}
	// The innermost chunk is empty: this is end of scope, not overflow.
	_, ok, err := cr.enter()
	if err != nil {
		t.Fatalf("enter in empty innermost chunk: %v", err)
	}
	if ok {
		t.Fatal("enter in empty innermost chunk: expected end of scope")
	}
}

func TestChunkReaderChildPastParent(t *testing.T) {
	child := append([]byte("CHLD"), u32(100)...)
	child = append(child, 1, 2, 3, 4)
	stream := chunk("PRNT", child)
	stream = append(stream, make([]byte, 128)...) // keep the lie inside the stream

	cr, err := newChunkReader(bytes.NewReader(stream))
	if err != nil {
		t.Fatalf("newChunkReader: %v", err)
	}
	if _, ok, err := cr.enter(); err != nil || !ok {
		t.Fatalf("enter parent: ok=%v err=%v", ok, err)
	}
	_, _, err = cr.enter()
	if GetErrorCode(err) != "STRUCTURAL" {
		t.Fatalf("enter lying child = %v, want STRUCTURAL", err)
	}
}

func TestChunkReaderChunkPastEndOfStream(t *testing.T) {
	stream := append([]byte("HUGE"), u32(1<<20)...)
	stream = append(stream, 1, 2, 3)

	cr, err := newChunkReader(bytes.NewReader(stream))
	if err != nil {
		t.Fatalf("newChunkReader: %v", err)
	}
	_, _, err = cr.enter()
	if GetErrorCode(err) != "STRUCTURAL" {
		t.Fatalf("enter oversized chunk = %v, want STRUCTURAL", err)
	}
}

func TestChunkReaderTruncatedHeaderIsEndOfStream(t *testing.T) {
	cr, err := newChunkReader(bytes.NewReader([]byte("HIP")))
	if err != nil {
		t.Fatalf("newChunkReader: %v", err)
	}
	tag, ok, err := cr.enter()
	if err != nil {
		t.Fatalf("enter: %v", err)
	}
	if ok {
		t.Fatalf("enter on truncated header: expected no chunk, got %s", tag)
	}
}
