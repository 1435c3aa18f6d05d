package hipdiff

// Op classifies a diff entry.
type Op string

const (
	OpAddition     Op = "addition"
	OpDeletion     Op = "deletion"
	OpModification Op = "modification"
)

// Entry is one rendered diff line. Left is empty for additions, Right is
// empty for deletions, and both are set for modifications.
type Entry struct {
	Op    Op     `json:"op"`
	Left  string `json:"left,omitempty"`
	Right string `json:"right,omitempty"`
}

// Bucket groups the entries for one region of the archive. Records counts
// record-level changes for the bucket title; header buckets keep -1 since
// their titles never show a count.
type Bucket struct {
	Title   string  `json:"title"`
	Records int     `json:"records"`
	Entries []Entry `json:"entries,omitempty"`
}

// Report is the complete result of diffing two archives. Buckets holds all
// thirteen buckets in presentation order, empty ones included. The three
// totals count logical record-level events, never rendered lines: a
// detailed multi-line asset addition still counts once.
type Report struct {
	Buckets       []*Bucket `json:"buckets"`
	Additions     int       `json:"additions"`
	Deletions     int       `json:"deletions"`
	Modifications int       `json:"modifications"`
}

// Bucket indexes into Report.Buckets.
const (
	bkPVER = iota
	bkPFLG
	bkPCNT
	bkPCRT
	bkPMOD
	bkPLAT
	bkAINF
	bkAssetAdds
	bkAssetDels
	bkAssetMods
	bkLayerAdds
	bkLayerDels
	bkLayerMods
	bucketCount
)

func newReport() *Report {
	titles := [bucketCount]string{
		bkPVER:      "PVER",
		bkPFLG:      "PFLG",
		bkPCNT:      "PCNT",
		bkPCRT:      "PCRT",
		bkPMOD:      "PMOD",
		bkPLAT:      "PLAT",
		bkAINF:      "AINF",
		bkAssetAdds: "Added assets",
		bkAssetDels: "Deleted assets",
		bkAssetMods: "Modified assets",
		bkLayerAdds: "Added layers",
		bkLayerDels: "Deleted layers",
		bkLayerMods: "Modified layers",
	}

	r := &Report{Buckets: make([]*Bucket, bucketCount)}
	for i, title := range titles {
		records := 0
		if i <= bkAINF {
			records = -1
		}
		r.Buckets[i] = &Bucket{Title: title, Records: records}
	}
	return r
}

// Bucket returns the bucket with the given title, or nil.
func (r *Report) Bucket(title string) *Bucket {
	for _, b := range r.Buckets {
		if b.Title == title {
			return b
		}
	}
	return nil
}

// Empty reports whether no bucket holds any entry.
func (r *Report) Empty() bool {
	for _, b := range r.Buckets {
		if len(b.Entries) > 0 {
			return false
		}
	}
	return true
}

func addition(right string) Entry {
	return Entry{Op: OpAddition, Right: right}
}

func deletion(left string) Entry {
	return Entry{Op: OpDeletion, Left: left}
}

func modification(left, right string) Entry {
	return Entry{Op: OpModification, Left: left, Right: right}
}

// same renders a modification whose two sides carry identical text, used
// for record header lines like "  AHDR (name)" when the name is unchanged.
func same(text string) Entry {
	return Entry{Op: OpModification, Left: text, Right: text}
}
