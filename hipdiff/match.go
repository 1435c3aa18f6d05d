package hipdiff

import (
	"sort"

	"github.com/flaneur2020/hip-diff/hipdiff/hipfile"
)

// indexPair addresses one record on each side of a diff by table index.
// -1 marks absence; 0 is a valid index and, for assets, a valid id.
type indexPair struct {
	o, m int
}

// matcher precomputes the identity tables one diff pass needs. All tables
// are read-only after construction.
//
// Assets match by id. Layers have no id, so they match ordinally within
// their type: the k-th original layer of a type pairs with the k-th
// modified layer of that type, surplus layers on either side pair with
// absence. Reordering same-type layers therefore reads as modifications;
// that is inherent to the format, which gives layers no stable identity.
type matcher struct {
	assetIDs   []uint32
	assetPairs map[uint32]indexPair

	layerTypes []uint32
	layerPairs map[uint32][]indexPair

	// memberIDs/assetLayers track which single layer (by table index)
	// holds each asset on each side. An id appearing in several layers
	// resolves to the last one in table order.
	memberIDs   []uint32
	assetLayers map[uint32]indexPair
}

func newMatcher(original, modified *hipfile.Archive, withLayers bool) *matcher {
	mt := &matcher{
		assetPairs:  make(map[uint32]indexPair),
		layerPairs:  make(map[uint32][]indexPair),
		assetLayers: make(map[uint32]indexPair),
	}

	for i := range original.Assets {
		id := original.Assets[i].ID
		p, ok := mt.assetPairs[id]
		if !ok {
			p = indexPair{o: -1, m: -1}
		}
		p.o = i
		mt.assetPairs[id] = p
	}
	for i := range modified.Assets {
		id := modified.Assets[i].ID
		p, ok := mt.assetPairs[id]
		if !ok {
			p = indexPair{o: -1, m: -1}
		}
		p.m = i
		mt.assetPairs[id] = p
	}
	mt.assetIDs = sortedKeys(mt.assetPairs)

	if !withLayers {
		return mt
	}

	for i := range original.Layers {
		typ := original.Layers[i].Type
		mt.layerPairs[typ] = append(mt.layerPairs[typ], indexPair{o: i, m: -1})
	}
	seen := make(map[uint32]int)
	for i := range modified.Layers {
		typ := modified.Layers[i].Type
		k := seen[typ]
		if k < len(mt.layerPairs[typ]) {
			mt.layerPairs[typ][k].m = i
		} else {
			mt.layerPairs[typ] = append(mt.layerPairs[typ], indexPair{o: -1, m: i})
		}
		seen[typ]++
	}
	for typ := range mt.layerPairs {
		mt.layerTypes = append(mt.layerTypes, typ)
	}
	sort.Slice(mt.layerTypes, func(i, j int) bool { return mt.layerTypes[i] < mt.layerTypes[j] })

	for i := range original.Layers {
		for _, id := range original.Layers[i].AssetIDs {
			p, ok := mt.assetLayers[id]
			if !ok {
				p = indexPair{o: -1, m: -1}
			}
			p.o = i
			mt.assetLayers[id] = p
		}
	}
	for i := range modified.Layers {
		for _, id := range modified.Layers[i].AssetIDs {
			p, ok := mt.assetLayers[id]
			if !ok {
				p = indexPair{o: -1, m: -1}
			}
			p.m = i
			mt.assetLayers[id] = p
		}
	}
	mt.memberIDs = sortedKeys(mt.assetLayers)

	return mt
}

func sortedKeys(m map[uint32]indexPair) []uint32 {
	keys := make([]uint32, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
