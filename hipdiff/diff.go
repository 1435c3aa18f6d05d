package hipdiff

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/flaneur2020/hip-diff/hipdiff/hipfile"
)

// Diff compares two loaded archives and returns the full report. Neither
// archive is mutated; the report is built fresh on every call.
func Diff(original, modified *hipfile.Archive, opts Options) *Report {
	d := &differ{
		o:       original,
		m:       modified,
		opts:    opts,
		report:  newReport(),
		match:   newMatcher(original, modified, !opts.AssetsOnly),
		added:   make(map[uint32]bool),
		deleted: make(map[uint32]bool),
	}
	d.run()
	return d.report
}

type differ struct {
	o, m   *hipfile.Archive
	opts   Options
	report *Report
	match  *matcher

	// Assets reported as wholesale additions/deletions, so layer
	// membership changes never report them a second time.
	added   map[uint32]bool
	deleted map[uint32]bool
}

func (d *differ) run() {
	if !d.opts.AssetsOnly {
		d.diffHeaders()
	}
	d.diffAssets()
	if !d.opts.AssetsOnly {
		d.diffLayers()
	}
}

func (d *differ) count(op Op) {
	switch op {
	case OpAddition:
		d.report.Additions++
	case OpDeletion:
		d.report.Deletions++
	case OpModification:
		d.report.Modifications++
	}
}

// appendField appends one entry to a header bucket, where every field line
// is its own logical change.
func (d *differ) appendField(bk int, e Entry) {
	b := d.report.Buckets[bk]
	b.Entries = append(b.Entries, e)
	d.count(e.Op)
}

// appendRecord appends one record's entries to a record bucket. The record
// counts once toward the totals no matter how many lines it rendered.
func (d *differ) appendRecord(bk int, op Op, entries []Entry) {
	b := d.report.Buckets[bk]
	b.Entries = append(b.Entries, entries...)
	b.Records++
	d.count(op)
}

func modRow(format string, left, right interface{}) Entry {
	return modification(fmt.Sprintf(format, left), fmt.Sprintf(format, right))
}

func (d *differ) fieldMod(bk int, format string, left, right interface{}) {
	d.appendField(bk, modRow(format, left, right))
}

func (d *differ) diffHeaders() {
	o, m := d.o, d.m

	if o.Version.SubVersion != m.Version.SubVersion {
		d.fieldMod(bkPVER, "  subVersion: 0x%X", o.Version.SubVersion, m.Version.SubVersion)
	}
	if o.Version.ClientVersion != m.Version.ClientVersion {
		d.fieldMod(bkPVER, "  clientVersion: 0x%X", o.Version.ClientVersion, m.Version.ClientVersion)
	}
	if o.Version.CompatVersion != m.Version.CompatVersion {
		d.fieldMod(bkPVER, "  compatVersion: 0x%X", o.Version.CompatVersion, m.Version.CompatVersion)
	}

	if o.Flags != m.Flags {
		d.fieldMod(bkPFLG, "  flags: 0x%X", o.Flags, m.Flags)
	}

	if o.Counts.AssetCount != m.Counts.AssetCount {
		d.fieldMod(bkPCNT, "  assetCount: %d", o.Counts.AssetCount, m.Counts.AssetCount)
	}
	if o.Counts.LayerCount != m.Counts.LayerCount {
		d.fieldMod(bkPCNT, "  layerCount: %d", o.Counts.LayerCount, m.Counts.LayerCount)
	}
	if o.Counts.MaxAssetSize != m.Counts.MaxAssetSize {
		d.fieldMod(bkPCNT, "  maxAssetSize: %d", o.Counts.MaxAssetSize, m.Counts.MaxAssetSize)
	}
	if o.Counts.MaxLayerSize != m.Counts.MaxLayerSize {
		d.fieldMod(bkPCNT, "  maxLayerSize: %d", o.Counts.MaxLayerSize, m.Counts.MaxLayerSize)
	}
	if o.Counts.MaxXformAssetSize != m.Counts.MaxXformAssetSize {
		d.fieldMod(bkPCNT, "  maxXformAssetSize: %d", o.Counts.MaxXformAssetSize, m.Counts.MaxXformAssetSize)
	}

	if o.Created.Time != m.Created.Time {
		d.fieldMod(bkPCRT, "  time: %d", o.Created.Time, m.Created.Time)
	}
	// Creation comments carry a trailing newline; strip it on both sides
	// so the diff stays on one line.
	ocrt := strings.TrimSuffix(o.Created.Comment, "\n")
	mcrt := strings.TrimSuffix(m.Created.Comment, "\n")
	if ocrt != mcrt {
		d.fieldMod(bkPCRT, "  \"%s\"", ocrt, mcrt)
	}

	if o.Modified != m.Modified {
		d.fieldMod(bkPMOD, "  time: %d", o.Modified, m.Modified)
	}

	d.diffPlatform()

	if o.AssetInfo != m.AssetInfo {
		d.fieldMod(bkAINF, "  ainf: %d", o.AssetInfo, m.AssetInfo)
	}
}

func (d *differ) diffPlatform() {
	oplat, mplat := d.o.Platform, d.m.Platform

	switch {
	case oplat == nil && mplat == nil:

	case oplat != nil && mplat == nil:
		d.appendField(bkPLAT, deletion(fmt.Sprintf("  id: 0x%08X", oplat.ID)))
		for _, s := range oplat.Strings {
			d.appendField(bkPLAT, deletion(fmt.Sprintf("  \"%s\"", s)))
		}

	case oplat == nil && mplat != nil:
		d.appendField(bkPLAT, addition(fmt.Sprintf("  id: 0x%08X", mplat.ID)))
		for _, s := range mplat.Strings {
			d.appendField(bkPLAT, addition(fmt.Sprintf("  \"%s\"", s)))
		}

	default:
		if oplat.ID != mplat.ID {
			d.fieldMod(bkPLAT, "  id: 0x%08X", oplat.ID, mplat.ID)
		}
		n := len(oplat.Strings)
		if len(mplat.Strings) > n {
			n = len(mplat.Strings)
		}
		for i := 0; i < n; i++ {
			switch {
			case i >= len(oplat.Strings):
				d.appendField(bkPLAT, addition(fmt.Sprintf("  \"%s\"", mplat.Strings[i])))
			case i >= len(mplat.Strings):
				d.appendField(bkPLAT, deletion(fmt.Sprintf("  \"%s\"", oplat.Strings[i])))
			case oplat.Strings[i] != mplat.Strings[i]:
				d.fieldMod(bkPLAT, "  \"%s\"", oplat.Strings[i], mplat.Strings[i])
			}
		}
	}
}

func (d *differ) diffAssets() {
	for _, id := range d.match.assetIDs {
		pair := d.match.assetPairs[id]
		switch {
		case pair.o == -1:
			d.addedAsset(pair.m)
		case pair.m == -1:
			d.deletedAsset(pair.o)
		default:
			d.modifiedAsset(pair.o, pair.m)
		}
	}
}

func (d *differ) addedAsset(idx int) {
	a := &d.m.Assets[idx]
	dbg := debugOrZero(a)

	var entries []Entry
	if d.opts.Detailed {
		entries = assetRecordLines(a, dbg, addition)
	} else {
		entries = []Entry{addition(fmt.Sprintf("  %s", dbg.Name))}
	}
	d.appendRecord(bkAssetAdds, OpAddition, entries)
	d.added[a.ID] = true
}

func (d *differ) deletedAsset(idx int) {
	a := &d.o.Assets[idx]
	dbg := debugOrZero(a)

	var entries []Entry
	if d.opts.Detailed {
		entries = assetRecordLines(a, dbg, deletion)
	} else {
		entries = []Entry{deletion(fmt.Sprintf("  %s", dbg.Name))}
	}
	d.appendRecord(bkAssetDels, OpDeletion, entries)
	d.deleted[a.ID] = true
}

// assetRecordLines renders every field of one asset, for wholesale added
// or deleted records in detailed mode.
func assetRecordLines(a *hipfile.Asset, dbg hipfile.AssetDebug, line func(string) Entry) []Entry {
	return []Entry{
		line(fmt.Sprintf("  AHDR (%s)", dbg.Name)),
		line(fmt.Sprintf("    id: 0x%08X", a.ID)),
		line(fmt.Sprintf("    type: 0x%08X", a.Type)),
		line(fmt.Sprintf("    offset: %d", a.Offset)),
		line(fmt.Sprintf("    size: %d", a.Size)),
		line(fmt.Sprintf("    plus: %d", a.Plus)),
		line(fmt.Sprintf("    flags: 0x%08X", a.Flags)),
		line("    ADBG"),
		line(fmt.Sprintf("      align: %d", dbg.Align)),
		line(fmt.Sprintf("      name: %s", dbg.Name)),
		line(fmt.Sprintf("      filename: %s", dbg.Filename)),
		line(fmt.Sprintf("      checksum: 0x%08X", dbg.Checksum)),
	}
}

func (d *differ) modifiedAsset(oidx, midx int) {
	oa, ma := &d.o.Assets[oidx], &d.m.Assets[midx]
	odbg, mdbg := debugOrZero(oa), debugOrZero(ma)
	dataChanged := d.dataChanged(oa, ma)

	if !d.opts.Detailed {
		if oa.Type != ma.Type ||
			(d.opts.DiffOffsets && oa.Offset != ma.Offset) ||
			oa.Size != ma.Size ||
			(d.opts.DiffPluses && oa.Plus != ma.Plus) ||
			oa.Flags != ma.Flags ||
			odbg.Align != mdbg.Align ||
			odbg.Name != mdbg.Name ||
			odbg.Filename != mdbg.Filename ||
			odbg.Checksum != mdbg.Checksum ||
			dataChanged {
			d.appendRecord(bkAssetMods, OpModification, []Entry{modRow("  %s", odbg.Name, mdbg.Name)})
		}
		return
	}

	hdr := []Entry{modRow("  AHDR (%s)", odbg.Name, mdbg.Name)}
	if oa.Type != ma.Type {
		hdr = append(hdr, modRow("    type: 0x%08X", oa.Type, ma.Type))
	}
	if d.opts.DiffOffsets && oa.Offset != ma.Offset {
		hdr = append(hdr, modRow("    offset: %d", oa.Offset, ma.Offset))
	}
	if oa.Size != ma.Size {
		hdr = append(hdr, modRow("    size: %d", oa.Size, ma.Size))
	}
	if d.opts.DiffPluses && oa.Plus != ma.Plus {
		hdr = append(hdr, modRow("    plus: %d", oa.Plus, ma.Plus))
	}
	if oa.Flags != ma.Flags {
		hdr = append(hdr, modRow("    flags: 0x%08X", oa.Flags, ma.Flags))
	}
	if dataChanged {
		hdr = append(hdr, same("    data changed"))
	}

	dbg := []Entry{same("    ADBG")}
	if odbg.Align != mdbg.Align {
		dbg = append(dbg, modRow("      align: %d", odbg.Align, mdbg.Align))
	}
	if odbg.Name != mdbg.Name {
		dbg = append(dbg, modRow("      name: %s", odbg.Name, mdbg.Name))
	}
	if odbg.Filename != mdbg.Filename {
		dbg = append(dbg, modRow("      filename: %s", odbg.Filename, mdbg.Filename))
	}
	if odbg.Checksum != mdbg.Checksum {
		dbg = append(dbg, modRow("      checksum: 0x%08X", odbg.Checksum, mdbg.Checksum))
	}

	// Header lines alone mean nothing changed underneath them.
	if len(hdr) > 1 || len(dbg) > 1 {
		entries := hdr
		if len(dbg) > 1 {
			entries = append(entries, dbg...)
		}
		d.appendRecord(bkAssetMods, OpModification, entries)
	}
}

// dataChanged classifies the payload comparison for a matched asset pair.
// Different sizes are a content change by definition; the checksum shortcut
// only ever suppresses the byte comparison of equally sized payloads.
func (d *differ) dataChanged(oa, ma *hipfile.Asset) bool {
	if oa.Size != ma.Size {
		return true
	}
	if d.opts.IgnoreDataIfChecksumMatches {
		return debugOrZero(oa).Checksum != debugOrZero(ma).Checksum
	}
	return !bytes.Equal(oa.Data(), ma.Data())
}

func (d *differ) diffLayers() {
	for _, typ := range d.match.layerTypes {
		for _, pair := range d.match.layerPairs[typ] {
			switch {
			case pair.o == -1:
				d.addedLayer(pair.m)
			case pair.m == -1:
				d.deletedLayer(pair.o)
			default:
				d.modifiedLayer(pair)
			}
		}
	}
}

func (d *differ) addedLayer(idx int) {
	l := &d.m.Layers[idx]
	entries := []Entry{
		addition(fmt.Sprintf("  LHDR (%d)", l.Type)),
		addition(fmt.Sprintf("    type: %d", l.Type)),
	}
	for _, id := range l.AssetIDs {
		if !d.added[id] {
			entries = append(entries, addition(fmt.Sprintf("    %s", d.memberName(id, true))))
		}
	}
	entries = append(entries,
		addition("    LDBG"),
		addition(fmt.Sprintf("      ldbg: %d", layerDebugValue(l))))
	d.appendRecord(bkLayerAdds, OpAddition, entries)
}

func (d *differ) deletedLayer(idx int) {
	l := &d.o.Layers[idx]
	entries := []Entry{
		deletion(fmt.Sprintf("  LHDR (%d)", l.Type)),
		deletion(fmt.Sprintf("    type: %d", l.Type)),
	}
	for _, id := range l.AssetIDs {
		if !d.deleted[id] {
			entries = append(entries, deletion(fmt.Sprintf("    %s", d.memberName(id, false))))
		}
	}
	entries = append(entries,
		deletion("    LDBG"),
		deletion(fmt.Sprintf("      ldbg: %d", layerDebugValue(l))))
	d.appendRecord(bkLayerDels, OpDeletion, entries)
}

func (d *differ) modifiedLayer(pair indexPair) {
	ol, ml := &d.o.Layers[pair.o], &d.m.Layers[pair.m]

	hdr := []Entry{modRow("  LHDR (%d)", ol.Type, ml.Type)}
	adds, dels := 0, 0
	for _, id := range d.match.memberIDs {
		a := d.match.assetLayers[id]
		if a.o != pair.o && a.m != pair.m {
			continue
		}
		if a.o != pair.o {
			// Joined this layer. Wholesale-added assets are already
			// news in their own bucket.
			if !d.added[id] {
				hdr = append(hdr, addition(fmt.Sprintf("    \"%s\"", d.memberName(id, true))))
				adds++
			}
		} else if a.m != pair.m {
			if !d.deleted[id] {
				hdr = append(hdr, deletion(fmt.Sprintf("    \"%s\"", d.memberName(id, false))))
				dels++
			}
		}
	}

	dbg := []Entry{same("    LDBG")}
	if ov, mv := layerDebugValue(ol), layerDebugValue(ml); ov != mv {
		dbg = append(dbg, modRow("      ldbg: %d", ov, mv))
	}

	if len(hdr) > 1 || len(dbg) > 1 {
		entries := hdr
		if len(dbg) > 1 {
			entries = append(entries, dbg...)
		}
		// Joins and leaves count as additions and deletions; the pair
		// itself counts as one modification.
		d.report.Additions += adds
		d.report.Deletions += dels
		d.appendRecord(bkLayerMods, OpModification, entries)
	}
}

// memberName resolves a layer member id to its display name on one side.
// Ids missing from that side's asset table render as raw hex instead.
func (d *differ) memberName(id uint32, modified bool) string {
	pair, ok := d.match.assetPairs[id]
	idx, ar := pair.o, d.o
	if modified {
		idx, ar = pair.m, d.m
	}
	if !ok || idx == -1 {
		return fmt.Sprintf("0x%08X", id)
	}
	return debugOrZero(&ar.Assets[idx]).Name
}

func debugOrZero(a *hipfile.Asset) hipfile.AssetDebug {
	if a.Debug != nil {
		return *a.Debug
	}
	return hipfile.AssetDebug{}
}

func layerDebugValue(l *hipfile.Layer) uint32 {
	if l.Debug != nil {
		return l.Debug.Value
	}
	return 0
}
