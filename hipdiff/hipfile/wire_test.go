package hipfile

import "encoding/binary"

// Wire-building helpers shared by the reader and loader tests. They mirror
// the on-disk layout: big-endian integers, NUL-terminated strings padded to
// even length, chunks as tag + length + body.

func u32(v uint32) []byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	return buf[:]
}

func cstr(s string) []byte {
	out := append([]byte(s), 0)
	if len(out)&1 == 1 {
		out = append(out, 0)
	}
	return out
}

func chunk(tag string, parts ...[]byte) []byte {
	var body []byte
	for _, p := range parts {
		body = append(body, p...)
	}
	out := append([]byte(tag), u32(uint32(len(body)))...)
	return append(out, body...)
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// testAsset describes one asset for buildHIP. sizeOverride, when non-nil,
// replaces the natural payload size in the header to provoke bounds errors.
type testAsset struct {
	id, typ, plus, flags uint32
	debug                *AssetDebug
	data                 []byte
	sizeOverride         *uint32
}

type testLayer struct {
	typ   uint32
	ids   []uint32
	debug *uint32
}

type testHIP struct {
	version  Version
	flags    uint32
	counts   Counts // AssetCount/LayerCount filled from assets/layers when zero
	created  CreateInfo
	modified uint32
	plat     *Platform
	ainf     uint32
	linf     uint32
	dhdr     uint32
	pad      uint32
	assets   []testAsset
	layers   []testLayer
	omitSTRM bool
	extraTop []byte // raw chunk injected between PACK and DICT
}

// buildHIP assembles a complete wire-format archive. Asset offsets are
// absolute stream positions, so the dictionary is built twice: once to
// learn the layout, once with the real offsets filled in.
func buildHIP(h testHIP) []byte {
	counts := h.counts
	if counts.AssetCount == 0 {
		counts.AssetCount = uint32(len(h.assets))
	}
	if counts.LayerCount == 0 {
		counts.LayerCount = uint32(len(h.layers))
	}

	packParts := [][]byte{
		chunk("PVER", u32(h.version.SubVersion), u32(h.version.ClientVersion), u32(h.version.CompatVersion)),
		chunk("PFLG", u32(h.flags)),
		chunk("PCNT", u32(counts.AssetCount), u32(counts.LayerCount),
			u32(counts.MaxAssetSize), u32(counts.MaxLayerSize), u32(counts.MaxXformAssetSize)),
		chunk("PCRT", u32(h.created.Time), cstr(h.created.Comment)),
		chunk("PMOD", u32(h.modified)),
	}
	if h.plat != nil {
		platBody := [][]byte{u32(h.plat.ID)}
		for _, s := range h.plat.Strings {
			platBody = append(platBody, cstr(s))
		}
		packParts = append(packParts, chunk("PLAT", platBody...))
	}
	pack := chunk("PACK", packParts...)

	dict := func(dataStart uint32) []byte {
		atocParts := [][]byte{chunk("AINF", u32(h.ainf))}
		offset := dataStart
		for _, a := range h.assets {
			size := uint32(len(a.data))
			if a.sizeOverride != nil {
				size = *a.sizeOverride
			}
			ahdrParts := [][]byte{
				u32(a.id), u32(a.typ), u32(offset), u32(size), u32(a.plus), u32(a.flags),
			}
			if a.debug != nil {
				ahdrParts = append(ahdrParts, chunk("ADBG",
					u32(a.debug.Align), cstr(a.debug.Name), cstr(a.debug.Filename), u32(a.debug.Checksum)))
			}
			atocParts = append(atocParts, chunk("AHDR", ahdrParts...))
			offset += uint32(len(a.data))
		}

		ltocParts := [][]byte{chunk("LINF", u32(h.linf))}
		for _, l := range h.layers {
			lhdrParts := [][]byte{u32(l.typ), u32(uint32(len(l.ids)))}
			for _, id := range l.ids {
				lhdrParts = append(lhdrParts, u32(id))
			}
			if l.debug != nil {
				lhdrParts = append(lhdrParts, chunk("LDBG", u32(*l.debug)))
			}
			ltocParts = append(ltocParts, chunk("LHDR", lhdrParts...))
		}

		return chunk("DICT", chunk("ATOC", atocParts...), chunk("LTOC", ltocParts...))
	}

	hipa := chunk("HIPA")
	d0 := dict(0)
	dhdrChunk := chunk("DHDR", u32(h.dhdr))

	// HIPA + PACK + extra + DICT + STRM header + DHDR + DPAK header + padAmount + pad
	dataStart := uint32(len(hipa)+len(pack)+len(h.extraTop)+len(d0)) + 8 + uint32(len(dhdrChunk)) + 8 + 4 + h.pad

	var payload []byte
	for _, a := range h.assets {
		payload = append(payload, a.data...)
	}
	dpak := chunk("DPAK", u32(h.pad), make([]byte, h.pad), payload)
	strm := chunk("STRM", dhdrChunk, dpak)

	out := concat(hipa, pack, h.extraTop, dict(dataStart))
	if !h.omitSTRM {
		out = append(out, strm...)
	}
	return out
}
