package hipfile

import (
	"fmt"
	"io"
	"os"

	"github.com/flaneur2020/hip-diff/hipdiff/logger"
)

// Load parses a complete HIP archive from r in a single pass. The returned
// Archive is self-contained and read-only.
func Load(r io.ReadSeeker) (*Archive, error) {
	cr, err := newChunkReader(r)
	if err != nil {
		return nil, err
	}
	ld := &loader{cr: cr, archive: &Archive{}}
	if err := ld.run(); err != nil {
		return nil, err
	}
	return ld.archive, nil
}

// LoadFile opens path and parses it as a HIP archive.
func LoadFile(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	archive, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return archive, nil
}

type loader struct {
	cr      *chunkReader
	archive *Archive
	sawDPAK bool
}

func (ld *loader) run() error {
	first := true
	for {
		tag, ok, err := ld.cr.enter()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if first && tag != TagHIPA {
			return ErrStructural.
				WithMessage("not a HIP stream: first chunk is not HIPA").
				WithDetail("tag", tag.String())
		}
		first = false

		logger.Debug("chunk %s", tag)

		switch tag {
		case TagHIPA:
			// Identification only, no body.
		case TagPACK:
			if err := ld.readPACK(); err != nil {
				return err
			}
		case TagDICT:
			if err := ld.readDICT(); err != nil {
				return err
			}
		case TagSTRM:
			if err := ld.readSTRM(); err != nil {
				return err
			}
		default:
			logger.Debug("skipping unknown top-level chunk %s", tag)
		}

		if err := ld.cr.exit(); err != nil {
			return err
		}
	}
	if first {
		return ErrStructural.WithMessage("not a HIP stream: no chunks found")
	}

	if ld.archive.Counts.AssetCount > 0 && !ld.sawDPAK {
		return ErrStructural.WithMessage("asset table declared but no packed data chunk found")
	}
	return ld.sliceAssetData()
}

// sliceAssetData resolves every asset's (offset, size) into a view of the
// packed buffer. Offsets on the wire are absolute stream positions, so each
// view starts at offset minus the buffer's own stream position.
func (ld *loader) sliceAssetData() error {
	ar := ld.archive
	if len(ar.Assets) == 0 {
		return nil
	}
	for i := range ar.Assets {
		a := &ar.Assets[i]
		start := int64(a.Offset) - int64(ar.DataOffset)
		end := start + int64(a.Size)
		if start < 0 || end > int64(len(ar.PackedData)) {
			return ErrBounds.
				WithDetail("assetID", fmt.Sprintf("0x%08X", a.ID)).
				WithDetail("offset", a.Offset).
				WithDetail("size", a.Size).
				WithDetail("dataOffset", ar.DataOffset).
				WithDetail("dataSize", len(ar.PackedData))
		}
		a.data = ar.PackedData[start:end]
	}
	return nil
}

func (ld *loader) readPACK() error {
	for {
		tag, ok, err := ld.cr.enter()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		switch tag {
		case TagPVER:
			err = ld.readPVER()
		case TagPFLG:
			ld.archive.Flags, err = ld.cr.readUint32()
		case TagPCNT:
			err = ld.readPCNT()
		case TagPCRT:
			err = ld.readPCRT()
		case TagPMOD:
			ld.archive.Modified, err = ld.cr.readUint32()
		case TagPLAT:
			err = ld.readPLAT()
		}
		if err != nil {
			return err
		}

		if err := ld.cr.exit(); err != nil {
			return err
		}
	}
}

func (ld *loader) readPVER() error {
	var err error
	v := &ld.archive.Version
	if v.SubVersion, err = ld.cr.readUint32(); err != nil {
		return err
	}
	if v.ClientVersion, err = ld.cr.readUint32(); err != nil {
		return err
	}
	if v.CompatVersion, err = ld.cr.readUint32(); err != nil {
		return err
	}
	return nil
}

func (ld *loader) readPCNT() error {
	var err error
	c := &ld.archive.Counts
	if c.AssetCount, err = ld.cr.readUint32(); err != nil {
		return err
	}
	if c.LayerCount, err = ld.cr.readUint32(); err != nil {
		return err
	}
	if c.MaxAssetSize, err = ld.cr.readUint32(); err != nil {
		return err
	}
	if c.MaxLayerSize, err = ld.cr.readUint32(); err != nil {
		return err
	}
	if c.MaxXformAssetSize, err = ld.cr.readUint32(); err != nil {
		return err
	}
	logger.Debug("counts: %d assets, %d layers", c.AssetCount, c.LayerCount)
	return nil
}

func (ld *loader) readPCRT() error {
	var err error
	if ld.archive.Created.Time, err = ld.cr.readUint32(); err != nil {
		return err
	}
	if ld.archive.Created.Comment, err = ld.cr.readString(MaxStringLen); err != nil {
		return err
	}
	return nil
}

func (ld *loader) readPLAT() error {
	plat := &Platform{}
	ld.archive.Platform = plat

	var err error
	if plat.ID, err = ld.cr.readUint32(); err != nil {
		return err
	}

	blk, _ := ld.cr.current()
	for ld.cr.pos < blk.end {
		if len(plat.Strings) >= MaxPlatformStrings {
			warning := fmt.Sprintf("more strings than expected in PLAT chunk, skipping (max is %d)", MaxPlatformStrings)
			logger.Warn("%s", warning)
			ld.archive.Warnings = append(ld.archive.Warnings, warning)
			break
		}
		s, err := ld.cr.readString(MaxStringLen)
		if err != nil {
			return err
		}
		plat.Strings = append(plat.Strings, s)
	}
	return nil
}

func (ld *loader) readDICT() error {
	for {
		tag, ok, err := ld.cr.enter()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		switch tag {
		case TagATOC:
			err = ld.readATOC()
		case TagLTOC:
			err = ld.readLTOC()
		}
		if err != nil {
			return err
		}

		if err := ld.cr.exit(); err != nil {
			return err
		}
	}
}

func (ld *loader) readATOC() error {
	for {
		tag, ok, err := ld.cr.enter()
		if err != nil {
			return err
		}
		if !ok {
			break
		}

		switch tag {
		case TagAINF:
			ld.archive.AssetInfo, err = ld.cr.readUint32()
		case TagAHDR:
			err = ld.readAHDR()
		}
		if err != nil {
			return err
		}

		if err := ld.cr.exit(); err != nil {
			return err
		}
	}

	if declared := ld.archive.Counts.AssetCount; uint32(len(ld.archive.Assets)) != declared {
		return ErrCountMismatch.
			WithDetail("table", "asset").
			WithDetail("declared", declared).
			WithDetail("parsed", len(ld.archive.Assets))
	}
	return nil
}

func (ld *loader) readAHDR() error {
	var a Asset
	var err error
	if a.ID, err = ld.cr.readUint32(); err != nil {
		return err
	}
	if a.Type, err = ld.cr.readUint32(); err != nil {
		return err
	}
	if a.Offset, err = ld.cr.readUint32(); err != nil {
		return err
	}
	if a.Size, err = ld.cr.readUint32(); err != nil {
		return err
	}
	if a.Plus, err = ld.cr.readUint32(); err != nil {
		return err
	}
	if a.Flags, err = ld.cr.readUint32(); err != nil {
		return err
	}

	for {
		tag, ok, err := ld.cr.enter()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if tag == TagADBG {
			if a.Debug, err = ld.readADBG(); err != nil {
				return err
			}
		}
		if err := ld.cr.exit(); err != nil {
			return err
		}
	}

	ld.archive.Assets = append(ld.archive.Assets, a)
	return nil
}

func (ld *loader) readADBG() (*AssetDebug, error) {
	dbg := &AssetDebug{}
	var err error
	if dbg.Align, err = ld.cr.readUint32(); err != nil {
		return nil, err
	}
	if dbg.Name, err = ld.cr.readString(MaxStringLen); err != nil {
		return nil, err
	}
	if dbg.Filename, err = ld.cr.readString(MaxStringLen); err != nil {
		return nil, err
	}
	if dbg.Checksum, err = ld.cr.readUint32(); err != nil {
		return nil, err
	}
	return dbg, nil
}

func (ld *loader) readLTOC() error {
	memberTotal := 0
	for {
		tag, ok, err := ld.cr.enter()
		if err != nil {
			return err
		}
		if !ok {
			break
		}

		switch tag {
		case TagLINF:
			ld.archive.LayerInfo, err = ld.cr.readUint32()
		case TagLHDR:
			var members int
			members, err = ld.readLHDR()
			memberTotal += members
		}
		if err != nil {
			return err
		}

		if err := ld.cr.exit(); err != nil {
			return err
		}
	}

	if declared := ld.archive.Counts.LayerCount; uint32(len(ld.archive.Layers)) != declared {
		return ErrCountMismatch.
			WithDetail("table", "layer").
			WithDetail("declared", declared).
			WithDetail("parsed", len(ld.archive.Layers))
	}
	if declared := ld.archive.Counts.AssetCount; uint32(memberTotal) != declared {
		warning := fmt.Sprintf("layers reference %d assets, asset table declares %d", memberTotal, declared)
		logger.Warn("%s", warning)
		ld.archive.Warnings = append(ld.archive.Warnings, warning)
	}
	return nil
}

func (ld *loader) readLHDR() (int, error) {
	var l Layer
	var err error
	if l.Type, err = ld.cr.readUint32(); err != nil {
		return 0, err
	}
	memberCount, err := ld.cr.readUint32()
	if err != nil {
		return 0, err
	}

	// A lying member count would otherwise read ids from sibling chunks.
	blk, _ := ld.cr.current()
	if remaining := blk.end - ld.cr.pos; int64(memberCount)*4 > remaining {
		return 0, ErrCountMismatch.
			WithMessage("layer member list exceeds chunk size").
			WithDetail("layerType", l.Type).
			WithDetail("declared", memberCount).
			WithDetail("remainingBytes", remaining)
	}

	if memberCount > 0 {
		l.AssetIDs = make([]uint32, memberCount)
		for i := range l.AssetIDs {
			if l.AssetIDs[i], err = ld.cr.readUint32(); err != nil {
				return 0, err
			}
		}
	}

	for {
		tag, ok, err := ld.cr.enter()
		if err != nil {
			return 0, err
		}
		if !ok {
			break
		}
		if tag == TagLDBG {
			value, err := ld.cr.readUint32()
			if err != nil {
				return 0, err
			}
			l.Debug = &LayerDebug{Value: value}
		}
		if err := ld.cr.exit(); err != nil {
			return 0, err
		}
	}

	ld.archive.Layers = append(ld.archive.Layers, l)
	return int(memberCount), nil
}

func (ld *loader) readSTRM() error {
	for {
		tag, ok, err := ld.cr.enter()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		switch tag {
		case TagDHDR:
			ld.archive.StreamHeader, err = ld.cr.readUint32()
		case TagDPAK:
			err = ld.readDPAK()
		}
		if err != nil {
			return err
		}

		if err := ld.cr.exit(); err != nil {
			return err
		}
	}
}

func (ld *loader) readDPAK() error {
	ld.sawDPAK = true
	if ld.archive.Counts.AssetCount == 0 {
		return nil
	}

	var err error
	if ld.archive.PadAmount, err = ld.cr.readUint32(); err != nil {
		return err
	}
	if err := ld.cr.skip(int64(ld.archive.PadAmount)); err != nil {
		return err
	}

	blk, _ := ld.cr.current()
	dataStart := ld.cr.pos
	dataSize := blk.end - dataStart
	if dataSize < 0 {
		return ErrStructural.
			WithMessage("packed data chunk shorter than its pad amount").
			WithDetail("padAmount", ld.archive.PadAmount)
	}

	buf := make([]byte, dataSize)
	if err := ld.cr.readFull(buf); err != nil {
		return err
	}
	ld.archive.DataOffset = uint32(dataStart)
	ld.archive.PackedData = buf
	logger.Debug("packed data: %d bytes at offset %d", dataSize, dataStart)
	return nil
}
