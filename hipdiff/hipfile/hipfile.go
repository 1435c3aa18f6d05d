// Package hipfile reads HIP archives, the nested-chunk asset package
// format used by EvilEngine games.
//
// A HIP file is a sequence of chunks. Each chunk is a 4-byte ASCII tag,
// a 4-byte big-endian body length, and the body itself, which may in
// turn contain child chunks. Unknown chunks are skippable because every
// chunk declares its length up front; that is the format's
// forward-compatibility mechanism.
//
// Format reference: https://heavyironmodding.org/wiki/EvilEngine/HIP_(File_Format)
package hipfile

// Tag is a four-character chunk code as it appears on the wire.
type Tag uint32

// Chunk tags in the HIP grammar.
const (
	TagHIPA Tag = 'H'<<24 | 'I'<<16 | 'P'<<8 | 'A' // file identification
	TagPACK Tag = 'P'<<24 | 'A'<<16 | 'C'<<8 | 'K' // package header container
	TagPVER Tag = 'P'<<24 | 'V'<<16 | 'E'<<8 | 'R' // version triple
	TagPFLG Tag = 'P'<<24 | 'F'<<16 | 'L'<<8 | 'G' // package flags
	TagPCNT Tag = 'P'<<24 | 'C'<<16 | 'N'<<8 | 'T' // record counts and size ceilings
	TagPCRT Tag = 'P'<<24 | 'C'<<16 | 'R'<<8 | 'T' // creation time + comment
	TagPMOD Tag = 'P'<<24 | 'M'<<16 | 'O'<<8 | 'D' // modification time
	TagPLAT Tag = 'P'<<24 | 'L'<<16 | 'A'<<8 | 'T' // platform record (optional)
	TagDICT Tag = 'D'<<24 | 'I'<<16 | 'C'<<8 | 'T' // dictionary container
	TagATOC Tag = 'A'<<24 | 'T'<<16 | 'O'<<8 | 'C' // asset table of contents
	TagAINF Tag = 'A'<<24 | 'I'<<16 | 'N'<<8 | 'F' // asset table info value
	TagAHDR Tag = 'A'<<24 | 'H'<<16 | 'D'<<8 | 'R' // asset header
	TagADBG Tag = 'A'<<24 | 'D'<<16 | 'B'<<8 | 'G' // asset debug record
	TagLTOC Tag = 'L'<<24 | 'T'<<16 | 'O'<<8 | 'C' // layer table of contents
	TagLINF Tag = 'L'<<24 | 'I'<<16 | 'N'<<8 | 'F' // layer table info value
	TagLHDR Tag = 'L'<<24 | 'H'<<16 | 'D'<<8 | 'R' // layer header
	TagLDBG Tag = 'L'<<24 | 'D'<<16 | 'B'<<8 | 'G' // layer debug record
	TagSTRM Tag = 'S'<<24 | 'T'<<16 | 'R'<<8 | 'M' // stream container
	TagDHDR Tag = 'D'<<24 | 'H'<<16 | 'D'<<8 | 'R' // stream header value
	TagDPAK Tag = 'D'<<24 | 'P'<<16 | 'A'<<8 | 'K' // packed asset data
)

// Format limits. The stack depth and platform string caps are deliberate
// parts of the format contract, not incidental buffer sizes.
const (
	// MaxStackDepth bounds chunk nesting. A file that nests deeper is
	// malformed and the load fails.
	MaxStackDepth = 8

	// MaxPlatformStrings caps the PLAT string list. Extra strings are
	// skipped and surfaced as a load warning.
	MaxPlatformStrings = 4

	// MaxStringLen is the wire limit for null-terminated strings,
	// including the terminator. Longer strings are consumed from the
	// stream but truncated in the model.
	MaxStringLen = 32
)

// String renders the tag as its four ASCII bytes.
func (t Tag) String() string {
	return string([]byte{byte(t >> 24), byte(t >> 16), byte(t >> 8), byte(t)})
}
