// Package gpu packs light trees into the byte images and layout descriptors
// needed for binding them as read-only storage buffers in compute shaders.
package gpu

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/achilleasa/lightbvh/asset/compiler/lightbvh"
	"github.com/achilleasa/lightbvh/asset/scene"
	"github.com/gogpu/gputypes"
)

var (
	ErrNoTree = errors.New("gpu: no light tree to upload")
)

// Usage flags for all light tree buffers.
const bufferUsage = gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst

// Buffer names.
const (
	NodeBuffer        = "nodes"
	LobeBuffer        = "lobes"
	PermutationBuffer = "permutation"
	DepthSetBuffer    = "depth sets"
)

// A Buffer holds the little-endian byte image of a tree array along with
// the descriptor for allocating its GPU buffer.
type Buffer struct {
	Name       string
	Binding    uint32
	Descriptor gputypes.BufferDescriptor
	Data       []byte
}

// An Upload groups the buffers for a single light tree and the bind group
// layout that exposes them to compute shaders.
type Upload struct {
	Label   string
	Buffers []Buffer
	Layout  gputypes.BindGroupLayoutDescriptor
}

// Pack the arrays of a light tree into GPU buffers. Buffers are bound in
// the following order: nodes, lobes (only if the tree has a lobe tree),
// permutation and depth sets.
//
// Depth sets are stored as a single uint32 array that starts with D+1
// offsets (in words, relative to the start of the buffer) followed by the
// node indices of each depth. The number of depths is thus offsets[0]-1 and
// depth d spans [offsets[d], offsets[d+1]).
func NewUpload(label string, tree *lightbvh.Tree) (*Upload, error) {
	if tree == nil || len(tree.Nodes) == 0 {
		return nil, ErrNoTree
	}

	u := &Upload{
		Label: label,
		Layout: gputypes.BindGroupLayoutDescriptor{
			Label: label + " layout",
		},
	}

	arrays := []struct {
		name     string
		data     interface{}
		elemSize uint64
	}{
		{NodeBuffer, tree.Nodes, uint64(binary.Size(lightbvh.CompactNode{}))},
		{LobeBuffer, tree.Lobes, uint64(binary.Size(lightbvh.LobeNode{}))},
		{PermutationBuffer, tree.Permutation, 4},
		{DepthSetBuffer, packDepthSets(tree.DepthSets), 4},
	}

	for _, array := range arrays {
		if array.name == LobeBuffer && tree.Lobes == nil {
			continue
		}

		var buf bytes.Buffer
		if err := binary.Write(&buf, binary.LittleEndian, array.data); err != nil {
			return nil, fmt.Errorf("gpu: could not encode %s for %q: %w", array.name, label, err)
		}
		u.addBuffer(array.name, buf.Bytes(), array.elemSize)
	}

	return u, nil
}

func (u *Upload) addBuffer(name string, data []byte, elemSize uint64) {
	binding := uint32(len(u.Buffers))
	u.Buffers = append(u.Buffers, Buffer{
		Name:    name,
		Binding: binding,
		Descriptor: gputypes.BufferDescriptor{
			Label: u.Label + " " + name,
			Size:  uint64(len(data)),
			Usage: bufferUsage,
		},
		Data: data,
	})
	u.Layout.Entries = append(u.Layout.Entries, gputypes.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: gputypes.ShaderStageCompute,
		Buffer: &gputypes.BufferBindingLayout{
			Type:           gputypes.BufferBindingTypeReadOnlyStorage,
			MinBindingSize: elemSize,
		},
	})
}

// Lookup a buffer by name.
func (u *Upload) Buffer(name string) (*Buffer, bool) {
	for index := range u.Buffers {
		if u.Buffers[index].Name == name {
			return &u.Buffers[index], true
		}
	}
	return nil, false
}

// Get the total size of all buffers in bytes.
func (u *Upload) Size() uint64 {
	var size uint64
	for _, b := range u.Buffers {
		size += b.Descriptor.Size
	}
	return size
}

func packDepthSets(sets [][]int32) []uint32 {
	out := make([]uint32, len(sets)+1)
	offset := uint32(len(sets) + 1)
	for depth, set := range sets {
		out[depth] = offset
		for _, nodeIndex := range set {
			out = append(out, uint32(nodeIndex))
		}
		offset += uint32(len(set))
	}
	out[len(sets)] = offset
	return out
}

// Create uploads for all trees of a light scene. The top-level tree is
// labeled "top" and mesh trees are labeled "mesh N" where N is the mesh
// index. Empty scenes produce no uploads.
func NewSceneUploads(ls *scene.LightScene) ([]*Upload, error) {
	if ls.IsEmpty() {
		return nil, nil
	}

	uploads := make([]*Upload, 0, len(ls.MeshTrees)+1)
	top, err := NewUpload("top", ls.Tree)
	if err != nil {
		return nil, err
	}
	uploads = append(uploads, top)

	for _, mt := range ls.MeshTrees {
		u, err := NewUpload(fmt.Sprintf("mesh %d", mt.MeshIndex), mt.Tree)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, u)
	}
	return uploads, nil
}
