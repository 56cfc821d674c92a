// Package formats provides parsers for Warcraft III model file formats.
// MDX (binary model) parser: a chunked little-endian container holding
// geometry, the bone hierarchy and keyframe animation tracks.
package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// MDX format errors.
var (
	ErrInvalidMDXMagic  = errors.New("invalid MDX magic: expected 'MDLX'")
	ErrTruncatedMDXData = errors.New("truncated MDX data")
	ErrInvalidMDXCount  = errors.New("invalid MDX element count")
)

// Track interpolation types as stored in the file.
const (
	MDXInterpNone    uint32 = 0 // No interpolation, use nearest key
	MDXInterpLinear  uint32 = 1
	MDXInterpHermite uint32 = 2
	MDXInterpBezier  uint32 = 3
)

// Track tags inside node structures.
const (
	tagKGTR = "KGTR" // Translation, 3 floats per key
	tagKGRT = "KGRT" // Rotation, 4 floats per key (quaternion x,y,z,w)
	tagKGSC = "KGSC" // Scaling, 3 floats per key
	tagKLAV = "KLAV" // Visibility, 1 float per key
)

// MDXSequence is a named animation frame range.
type MDXSequence struct {
	Name       string
	Start      uint32  // First frame (track frames are milliseconds)
	End        uint32  // Last frame
	MoveSpeed  float32 // Movement speed hint for walk cycles
	NonLooping bool
	Rarity     float32
}

// Length returns the sequence duration in frames.
func (s MDXSequence) Length() uint32 {
	if s.End <= s.Start {
		return 0
	}
	return s.End - s.Start
}

// MDXTexture is a texture reference.
type MDXTexture struct {
	ReplaceableID uint32
	Filename      string
	Flags         uint32
}

// MDXLayer is one blending layer of a material.
type MDXLayer struct {
	FilterMode   uint32
	ShadingFlags uint32
	TextureID    uint32
	Alpha        float32
}

// MDXMaterial is an ordered stack of layers.
type MDXMaterial struct {
	Layers []MDXLayer
}

// MDXKeyframe is a single key on an animation track.
type MDXKeyframe struct {
	Frame  int32
	Data   []float32 // Width depends on the track tag (1, 3 or 4 values)
	InTan  []float32 // Present for Hermite/Bezier tracks only
	OutTan []float32
}

// MDXTrack is a keyframe animation track shared via index from nodes.
type MDXTrack struct {
	InterpType  uint32
	GlobalSeqID int32 // -1 if not driven by a global sequence
	Rotation    bool  // True for KGRT tracks (quaternion data)
	Keys        []MDXKeyframe
}

// MDXNode is the shared header of bones and helpers.
// Track indices point into MDX.Tracks; -1 means the channel is static.
type MDXNode struct {
	Name     string
	ObjectID uint32
	ParentID int32 // -1 for root nodes
	Flags    uint32

	TranslationTrack int32
	RotationTrack    int32
	ScalingTrack     int32
	VisibilityTrack  int32

	// Bone-only fields (zero for helpers)
	GeosetID     int32
	GeosetAnimID int32
}

// MDXGeoset is a renderable submesh with its skinning tables.
type MDXGeoset struct {
	Vertices  [][3]float32
	Normals   [][3]float32
	TexCoords [][2]float32
	Faces     [][3]uint32

	// Skinning: VertexGroups maps each vertex to an entry in MatrixGroups,
	// which lists the object ids of the nodes deforming it.
	VertexGroups []uint8
	MatrixGroups [][]uint32

	MaterialID   int32
	BoundsRadius float32
	MinExtent    [3]float32
	MaxExtent    [3]float32
}

// MDX is a parsed model file.
type MDX struct {
	Version   uint32
	Name      string
	Sequences []MDXSequence
	Textures  []MDXTexture
	Materials []MDXMaterial
	Geosets   []MDXGeoset
	Bones     []MDXNode
	Helpers   []MDXNode
	Tracks    []MDXTrack

	// Pivot points from the PIVT chunk, in flat node order
	// (bones first, then helpers).
	Pivots [][3]float32
}

// ParseMDX parses MDX data from a byte slice.
func ParseMDX(data []byte) (*MDX, error) {
	if len(data) < 4 {
		return nil, ErrTruncatedMDXData
	}
	if string(data[:4]) != "MDLX" {
		return nil, ErrInvalidMDXMagic
	}

	r := bytes.NewReader(data)
	r.Seek(4, io.SeekStart)

	mdx := &MDX{Name: "Unnamed"}

	for {
		tag := make([]byte, 4)
		if _, err := io.ReadFull(r, tag); err != nil {
			break // End of file
		}

		var size uint32
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			return nil, ErrTruncatedMDXData
		}

		start, _ := r.Seek(0, io.SeekCurrent)
		if start+int64(size) > int64(len(data)) {
			return nil, fmt.Errorf("%w: chunk %q overruns file", ErrTruncatedMDXData, tag)
		}

		var err error
		switch string(tag) {
		case "VERS":
			err = binary.Read(r, binary.LittleEndian, &mdx.Version)
		case "MODL":
			err = parseMDXModelHeader(r, mdx)
		case "SEQS":
			err = parseMDXSequences(r, mdx, size)
		case "TEXS":
			err = parseMDXTextures(r, mdx, size)
		case "MTLS":
			err = parseMDXMaterials(r, mdx, size)
		case "GEOS":
			err = parseMDXGeosets(r, mdx, size)
		case "BONE":
			err = parseMDXNodes(r, mdx, size, true)
		case "HELP":
			err = parseMDXNodes(r, mdx, size, false)
		case "PIVT":
			err = parseMDXPivots(r, mdx, size)
		default:
			// Unknown chunk (GLBS, GEOA, CAMS, ...): skipped below
		}
		if err != nil {
			return nil, fmt.Errorf("parsing %q chunk: %w", tag, err)
		}

		// Realign to the declared chunk boundary
		r.Seek(start+int64(size), io.SeekStart)
	}

	return mdx, nil
}

// ParseMDXFile parses an MDX file from disk.
func ParseMDXFile(path string) (*MDX, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseMDX(data)
}

func parseMDXModelHeader(r *bytes.Reader, mdx *MDX) error {
	// Name is 80 bytes in newer files, 336 in classic ones; the chunk
	// boundary seek in the caller absorbs the difference.
	mdx.Name = readFixedString(r, 80)
	return nil
}

func parseMDXSequences(r *bytes.Reader, mdx *MDX, size uint32) error {
	const sequenceSize = 0x50 + 13*4 // 132 bytes per entry

	count := size / sequenceSize
	if count > 4096 {
		return ErrInvalidMDXCount
	}

	mdx.Sequences = make([]MDXSequence, 0, count)
	for i := uint32(0); i < count; i++ {
		var seq MDXSequence
		seq.Name = readFixedString(r, 0x50)

		var nonLooping uint32
		binary.Read(r, binary.LittleEndian, &seq.Start)
		binary.Read(r, binary.LittleEndian, &seq.End)
		binary.Read(r, binary.LittleEndian, &seq.MoveSpeed)
		binary.Read(r, binary.LittleEndian, &nonLooping)
		if err := binary.Read(r, binary.LittleEndian, &seq.Rarity); err != nil {
			return ErrTruncatedMDXData
		}
		seq.NonLooping = nonLooping != 0

		// Skip sync point and bounds (32 bytes)
		r.Seek(32, io.SeekCurrent)

		mdx.Sequences = append(mdx.Sequences, seq)
	}
	return nil
}

func parseMDXTextures(r *bytes.Reader, mdx *MDX, size uint32) error {
	const textureSize = 0x100 + 3*4 // 268 bytes per entry

	count := size / textureSize
	if count > 4096 {
		return ErrInvalidMDXCount
	}

	mdx.Textures = make([]MDXTexture, 0, count)
	for i := uint32(0); i < count; i++ {
		var tex MDXTexture
		binary.Read(r, binary.LittleEndian, &tex.ReplaceableID)
		tex.Filename = readFixedString(r, 0x100)
		r.Seek(4, io.SeekCurrent) // Padding
		if err := binary.Read(r, binary.LittleEndian, &tex.Flags); err != nil {
			return ErrTruncatedMDXData
		}
		mdx.Textures = append(mdx.Textures, tex)
	}
	return nil
}

func parseMDXMaterials(r *bytes.Reader, mdx *MDX, size uint32) error {
	start, _ := r.Seek(0, io.SeekCurrent)
	end := start + int64(size)

	for {
		pos, _ := r.Seek(0, io.SeekCurrent)
		if pos >= end {
			break
		}

		var inclusiveSize uint32
		if err := binary.Read(r, binary.LittleEndian, &inclusiveSize); err != nil {
			return ErrTruncatedMDXData
		}
		if inclusiveSize < 4 || pos+int64(inclusiveSize) > end {
			return fmt.Errorf("%w: material overruns chunk", ErrTruncatedMDXData)
		}
		materialEnd := pos + int64(inclusiveSize)

		// Priority plane and flags
		r.Seek(8, io.SeekCurrent)

		tag := make([]byte, 4)
		if _, err := io.ReadFull(r, tag); err != nil {
			return ErrTruncatedMDXData
		}
		if string(tag) != "LAYS" {
			r.Seek(materialEnd, io.SeekStart)
			continue
		}

		var layerCount uint32
		if err := binary.Read(r, binary.LittleEndian, &layerCount); err != nil {
			return ErrTruncatedMDXData
		}
		if layerCount > 256 {
			return ErrInvalidMDXCount
		}

		var mat MDXMaterial
		for l := uint32(0); l < layerCount; l++ {
			layerPos, _ := r.Seek(0, io.SeekCurrent)

			var layerSize uint32
			if err := binary.Read(r, binary.LittleEndian, &layerSize); err != nil {
				return ErrTruncatedMDXData
			}

			var layer MDXLayer
			var textureAnimID, coordID uint32
			binary.Read(r, binary.LittleEndian, &layer.FilterMode)
			binary.Read(r, binary.LittleEndian, &layer.ShadingFlags)
			binary.Read(r, binary.LittleEndian, &layer.TextureID)
			binary.Read(r, binary.LittleEndian, &textureAnimID)
			binary.Read(r, binary.LittleEndian, &coordID)
			binary.Read(r, binary.LittleEndian, &layer.Alpha)
			mat.Layers = append(mat.Layers, layer)

			// Optional KMTF/KMTA tracks live inside the layer; skip them
			r.Seek(layerPos+int64(layerSize), io.SeekStart)
		}

		mdx.Materials = append(mdx.Materials, mat)
		r.Seek(materialEnd, io.SeekStart)
	}
	return nil
}

func parseMDXGeosets(r *bytes.Reader, mdx *MDX, size uint32) error {
	start, _ := r.Seek(0, io.SeekCurrent)
	end := start + int64(size)

	for {
		geosetStart, _ := r.Seek(0, io.SeekCurrent)
		if geosetStart >= end {
			break
		}

		var inclusiveSize uint32
		if err := binary.Read(r, binary.LittleEndian, &inclusiveSize); err != nil {
			return ErrTruncatedMDXData
		}
		geosetEnd := geosetStart + int64(inclusiveSize)
		if inclusiveSize < 4 || geosetEnd > end {
			return fmt.Errorf("%w: geoset overruns chunk", ErrTruncatedMDXData)
		}

		geoset, err := parseMDXGeoset(r, geosetEnd)
		if err != nil {
			return fmt.Errorf("parsing geoset %d: %w", len(mdx.Geosets), err)
		}
		if len(geoset.Vertices) > 0 {
			mdx.Geosets = append(mdx.Geosets, *geoset)
		}

		r.Seek(geosetEnd, io.SeekStart)
	}
	return nil
}

// parseMDXGeoset reads one geoset's sub-chunks up to geosetEnd.
func parseMDXGeoset(r *bytes.Reader, geosetEnd int64) (*MDXGeoset, error) {
	geoset := &MDXGeoset{MaterialID: -1}
	var indices []uint32
	tag := make([]byte, 4)

	for {
		pos, _ := r.Seek(0, io.SeekCurrent)
		if pos+4 > geosetEnd {
			break
		}
		if _, err := io.ReadFull(r, tag); err != nil {
			return nil, ErrTruncatedMDXData
		}

		switch string(tag) {
		case "VRTX":
			count, err := readMDXCount(r)
			if err != nil {
				return nil, err
			}
			geoset.Vertices = make([][3]float32, count)
			if err := binary.Read(r, binary.LittleEndian, &geoset.Vertices); err != nil {
				return nil, ErrTruncatedMDXData
			}

		case "NRMS":
			count, err := readMDXCount(r)
			if err != nil {
				return nil, err
			}
			geoset.Normals = make([][3]float32, count)
			if err := binary.Read(r, binary.LittleEndian, &geoset.Normals); err != nil {
				return nil, ErrTruncatedMDXData
			}

		case "PTYP", "PCNT":
			count, err := readMDXCount(r)
			if err != nil {
				return nil, err
			}
			r.Seek(int64(count)*4, io.SeekCurrent)

		case "PVTX":
			count, err := readMDXCount(r)
			if err != nil {
				return nil, err
			}
			raw := make([]uint16, count)
			if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
				return nil, ErrTruncatedMDXData
			}
			indices = make([]uint32, count)
			for i, v := range raw {
				indices[i] = uint32(v)
			}

		case "GNDX":
			count, err := readMDXCount(r)
			if err != nil {
				return nil, err
			}
			geoset.VertexGroups = make([]uint8, count)
			if _, err := io.ReadFull(r, geoset.VertexGroups); err != nil {
				return nil, ErrTruncatedMDXData
			}

		case "MTGC":
			count, err := readMDXCount(r)
			if err != nil {
				return nil, err
			}
			sizes := make([]uint32, count)
			if err := binary.Read(r, binary.LittleEndian, &sizes); err != nil {
				return nil, ErrTruncatedMDXData
			}
			geoset.MatrixGroups = make([][]uint32, count)
			for i, n := range sizes {
				if n > 64 {
					return nil, ErrInvalidMDXCount
				}
				geoset.MatrixGroups[i] = make([]uint32, n)
			}

		case "MATS":
			// Total bone index count; the per-group split came from MTGC
			if _, err := readMDXCount(r); err != nil {
				return nil, err
			}
			for _, group := range geoset.MatrixGroups {
				if err := binary.Read(r, binary.LittleEndian, &group); err != nil {
					return nil, ErrTruncatedMDXData
				}
			}

			// Plain fields trail the MATS data
			var selectionGroup, selectable uint32
			binary.Read(r, binary.LittleEndian, &geoset.MaterialID)
			binary.Read(r, binary.LittleEndian, &selectionGroup)
			binary.Read(r, binary.LittleEndian, &selectable)
			binary.Read(r, binary.LittleEndian, &geoset.BoundsRadius)
			binary.Read(r, binary.LittleEndian, &geoset.MinExtent)
			if err := binary.Read(r, binary.LittleEndian, &geoset.MaxExtent); err != nil {
				return nil, ErrTruncatedMDXData
			}

			// Per-sequence extents: count + 7 floats each
			var extentCount uint32
			binary.Read(r, binary.LittleEndian, &extentCount)
			r.Seek(int64(extentCount)*28, io.SeekCurrent)

		case "UVAS":
			var setCount uint32
			if err := binary.Read(r, binary.LittleEndian, &setCount); err != nil {
				return nil, ErrTruncatedMDXData
			}
			for s := uint32(0); s < setCount; s++ {
				if _, err := io.ReadFull(r, tag); err != nil {
					return nil, ErrTruncatedMDXData
				}
				if string(tag) != "UVBS" {
					break
				}
				count, err := readMDXCount(r)
				if err != nil {
					return nil, err
				}
				if s == 0 {
					geoset.TexCoords = make([][2]float32, count)
					if err := binary.Read(r, binary.LittleEndian, &geoset.TexCoords); err != nil {
						return nil, ErrTruncatedMDXData
					}
				} else {
					// Secondary UV sets are not used
					r.Seek(int64(count)*8, io.SeekCurrent)
				}
			}

		default:
			// Unknown sub-chunk: bail out, the caller realigns via inclusiveSize
			return geoset, assembleFaces(geoset, indices)
		}
	}

	return geoset, assembleFaces(geoset, indices)
}

// assembleFaces groups the PVTX index stream into triangles.
func assembleFaces(geoset *MDXGeoset, indices []uint32) error {
	for i := 0; i+2 < len(indices); i += 3 {
		geoset.Faces = append(geoset.Faces, [3]uint32{indices[i], indices[i+1], indices[i+2]})
	}
	return nil
}

// parseMDXNodes reads BONE or HELP chunk contents. Bones carry two extra
// int32 fields (geoset binding) after the shared node structure.
func parseMDXNodes(r *bytes.Reader, mdx *MDX, size uint32, isBone bool) error {
	start, _ := r.Seek(0, io.SeekCurrent)
	end := start + int64(size)

	for {
		nodeStart, _ := r.Seek(0, io.SeekCurrent)
		if nodeStart >= end {
			break
		}

		var inclusiveSize uint32
		if err := binary.Read(r, binary.LittleEndian, &inclusiveSize); err != nil {
			return ErrTruncatedMDXData
		}
		if inclusiveSize < 4 || nodeStart+int64(inclusiveSize) > end {
			return fmt.Errorf("%w: node overruns chunk", ErrTruncatedMDXData)
		}

		node := MDXNode{GeosetID: -1, GeosetAnimID: -1}
		node.Name = readFixedString(r, 0x50)
		binary.Read(r, binary.LittleEndian, &node.ObjectID)
		binary.Read(r, binary.LittleEndian, &node.ParentID)
		if err := binary.Read(r, binary.LittleEndian, &node.Flags); err != nil {
			return ErrTruncatedMDXData
		}

		// Animation tracks are embedded in the node structure, each
		// introduced by its tag. Absent tags mean a static channel.
		var err error
		if node.TranslationTrack, err = parseMDXTrack(r, mdx, tagKGTR, 3); err != nil {
			return err
		}
		if node.RotationTrack, err = parseMDXTrack(r, mdx, tagKGRT, 4); err != nil {
			return err
		}
		if node.ScalingTrack, err = parseMDXTrack(r, mdx, tagKGSC, 3); err != nil {
			return err
		}
		if node.VisibilityTrack, err = parseMDXTrack(r, mdx, tagKLAV, 1); err != nil {
			return err
		}

		// Realign past any tracks this parser does not know
		r.Seek(nodeStart+int64(inclusiveSize), io.SeekStart)

		if isBone {
			binary.Read(r, binary.LittleEndian, &node.GeosetID)
			if err := binary.Read(r, binary.LittleEndian, &node.GeosetAnimID); err != nil {
				return ErrTruncatedMDXData
			}
			mdx.Bones = append(mdx.Bones, node)
		} else {
			mdx.Helpers = append(mdx.Helpers, node)
		}
	}
	return nil
}

// parseMDXTrack reads one animation track if its tag is next in the stream.
// Returns the index into mdx.Tracks, or -1 when the channel is static.
func parseMDXTrack(r *bytes.Reader, mdx *MDX, expectTag string, width int) (int32, error) {
	pos, _ := r.Seek(0, io.SeekCurrent)

	tag := make([]byte, 4)
	if _, err := io.ReadFull(r, tag); err != nil {
		r.Seek(pos, io.SeekStart)
		return -1, nil
	}
	if string(tag) != expectTag {
		r.Seek(pos, io.SeekStart)
		return -1, nil
	}

	var keyCount uint32
	track := MDXTrack{Rotation: expectTag == tagKGRT}
	binary.Read(r, binary.LittleEndian, &keyCount)
	binary.Read(r, binary.LittleEndian, &track.InterpType)
	if err := binary.Read(r, binary.LittleEndian, &track.GlobalSeqID); err != nil {
		return -1, ErrTruncatedMDXData
	}
	if keyCount > 1<<20 {
		return -1, ErrInvalidMDXCount
	}

	hasTangents := track.InterpType == MDXInterpHermite || track.InterpType == MDXInterpBezier

	track.Keys = make([]MDXKeyframe, 0, keyCount)
	for i := uint32(0); i < keyCount; i++ {
		var key MDXKeyframe
		if err := binary.Read(r, binary.LittleEndian, &key.Frame); err != nil {
			return -1, ErrTruncatedMDXData
		}
		key.Data = make([]float32, width)
		if err := binary.Read(r, binary.LittleEndian, &key.Data); err != nil {
			return -1, ErrTruncatedMDXData
		}
		if hasTangents {
			key.InTan = make([]float32, width)
			key.OutTan = make([]float32, width)
			binary.Read(r, binary.LittleEndian, &key.InTan)
			if err := binary.Read(r, binary.LittleEndian, &key.OutTan); err != nil {
				return -1, ErrTruncatedMDXData
			}
		}
		track.Keys = append(track.Keys, key)
	}

	idx := int32(len(mdx.Tracks))
	mdx.Tracks = append(mdx.Tracks, track)
	return idx, nil
}

func parseMDXPivots(r *bytes.Reader, mdx *MDX, size uint32) error {
	count := size / 12
	if count > 1<<16 {
		return ErrInvalidMDXCount
	}
	mdx.Pivots = make([][3]float32, count)
	if err := binary.Read(r, binary.LittleEndian, &mdx.Pivots); err != nil {
		return ErrTruncatedMDXData
	}
	return nil
}

// readFixedString reads a fixed-length null-terminated string.
func readFixedString(r *bytes.Reader, length int) string {
	buf := make([]byte, length)
	n, _ := r.Read(buf)
	buf = buf[:n]

	if i := bytes.IndexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}
	return strings.TrimSpace(string(buf))
}

// readMDXCount reads a sub-chunk element count with a sanity cap.
func readMDXCount(r *bytes.Reader) (uint32, error) {
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return 0, ErrTruncatedMDXData
	}
	if count > 1<<20 {
		return 0, ErrInvalidMDXCount
	}
	return count, nil
}

// NodeCount returns the total number of animated nodes (bones + helpers).
func (m *MDX) NodeCount() int {
	return len(m.Bones) + len(m.Helpers)
}

// TotalVertexCount returns the vertex count across all geosets.
func (m *MDX) TotalVertexCount() int {
	total := 0
	for i := range m.Geosets {
		total += len(m.Geosets[i].Vertices)
	}
	return total
}

// TotalFaceCount returns the triangle count across all geosets.
func (m *MDX) TotalFaceCount() int {
	total := 0
	for i := range m.Geosets {
		total += len(m.Geosets[i].Faces)
	}
	return total
}

// SequenceByName returns the sequence with the given name, or nil.
func (m *MDX) SequenceByName(name string) *MDXSequence {
	for i := range m.Sequences {
		if strings.EqualFold(m.Sequences[i].Name, name) {
			return &m.Sequences[i]
		}
	}
	return nil
}

// PivotFor returns the pivot point for a flat node index, or the origin
// when the PIVT chunk is shorter than the node list.
func (m *MDX) PivotFor(index int) [3]float32 {
	if index < 0 || index >= len(m.Pivots) {
		return [3]float32{}
	}
	return m.Pivots[index]
}

// HasAnimation reports whether the model carries usable animation data.
func (m *MDX) HasAnimation() bool {
	if len(m.Sequences) == 0 {
		return false
	}
	for i := range m.Tracks {
		if len(m.Tracks[i].Keys) > 0 {
			return true
		}
	}
	return false
}
