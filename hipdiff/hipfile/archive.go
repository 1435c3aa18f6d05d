package hipfile

import (
	"github.com/opencontainers/go-digest"
)

// Archive is the fully parsed contents of one HIP file. All slices and
// asset data views are owned by the Archive and must not be mutated.
type Archive struct {
	Version   Version
	Flags     uint32
	Counts    Counts
	Created   CreateInfo
	Modified  uint32    // modification timestamp, zero when the chunk is absent
	Platform  *Platform // nil when the chunk is absent; presence is meaningful
	AssetInfo uint32    // opaque per-archive value from the asset table
	LayerInfo uint32    // opaque per-archive value from the layer table

	Assets []Asset
	Layers []Layer

	StreamHeader uint32
	PadAmount    uint32
	DataOffset   uint32 // absolute stream offset where packed data begins
	PackedData   []byte

	// Warnings collects non-fatal oddities seen while loading, such as
	// platform strings past the cap.
	Warnings []string
}

// Version is the archive format version triple.
type Version struct {
	SubVersion    uint32
	ClientVersion uint32
	CompatVersion uint32
}

// Counts is the record-count block: how many assets and layers follow, and
// the size ceilings the packer computed.
type Counts struct {
	AssetCount        uint32
	LayerCount        uint32
	MaxAssetSize      uint32
	MaxLayerSize      uint32
	MaxXformAssetSize uint32
}

// CreateInfo is the creation record: a timestamp and a free-text comment.
// The comment is kept exactly as stored, trailing newline included.
type CreateInfo struct {
	Time    uint32
	Comment string
}

// Platform identifies the target platform of the archive.
type Platform struct {
	ID      uint32
	Strings []string
}

// Asset is one packed asset: its identity, placement within the packed
// buffer, and optional debug record.
type Asset struct {
	ID     uint32
	Type   uint32
	Offset uint32 // absolute stream offset of the asset's bytes
	Size   uint32
	Plus   uint32
	Flags  uint32
	Debug  *AssetDebug

	data []byte // view into Archive.PackedData, bounds-checked at load
}

// AssetDebug is the optional per-asset debug record.
type AssetDebug struct {
	Align    uint32
	Name     string
	Filename string
	Checksum uint32
}

// Layer groups assets for streaming. AssetIDs preserves on-disk order.
type Layer struct {
	Type     uint32
	AssetIDs []uint32
	Debug    *LayerDebug
}

// LayerDebug is the optional per-layer debug record.
type LayerDebug struct {
	Value uint32
}

// Data returns the asset's bytes as a view into the archive's packed
// buffer. The slice is valid for the lifetime of the Archive.
func (a *Asset) Data() []byte {
	return a.data
}

// Name returns the asset's debug name, or "" when no debug record exists.
func (a *Asset) Name() string {
	if a.Debug == nil {
		return ""
	}
	return a.Debug.Name
}

// Digest computes the canonical digest of the asset's packed bytes.
func (a *Asset) Digest() digest.Digest {
	return digest.FromBytes(a.data)
}

// FindAsset returns the first asset with the given id, or nil.
func (ar *Archive) FindAsset(id uint32) *Asset {
	for i := range ar.Assets {
		if ar.Assets[i].ID == id {
			return &ar.Assets[i]
		}
	}
	return nil
}
