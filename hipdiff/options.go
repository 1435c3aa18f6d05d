package hipdiff

// Options control which fields the diff engine compares and how much detail
// the report carries.
type Options struct {
	// AssetsOnly skips the header and layer buckets entirely.
	AssetsOnly bool

	// Detailed expands asset additions, deletions, and modifications into
	// one sub-entry per field instead of a single line per asset.
	Detailed bool

	// IgnoreDataIfChecksumMatches trusts the debug-record checksums when
	// the sizes match, skipping the byte-for-byte payload comparison.
	// Checksum collisions are possible; this trades certainty for speed.
	IgnoreDataIfChecksumMatches bool

	// DiffOffsets compares asset payload offsets. Off by default since
	// offsets shift on every repack and are noise otherwise.
	DiffOffsets bool

	// DiffPluses compares the asset plus values, same rationale as offsets.
	DiffPluses bool
}
