//go:build ignore

// This program generates a small MDX model for manual testing of the
// CLI tools. Run with: go run generate_mdx.go
package main

import (
	"bytes"
	"encoding/binary"
	"os"
)

func u32(buf *bytes.Buffer, v uint32)  { binary.Write(buf, binary.LittleEndian, v) }
func i32(buf *bytes.Buffer, v int32)   { binary.Write(buf, binary.LittleEndian, v) }
func f32(buf *bytes.Buffer, v float32) { binary.Write(buf, binary.LittleEndian, v) }

func fixed(buf *bytes.Buffer, s string, n int) {
	b := make([]byte, n)
	copy(b, s)
	buf.Write(b)
}

func chunk(buf *bytes.Buffer, tag string, payload []byte) {
	buf.WriteString(tag)
	u32(buf, uint32(len(payload)))
	buf.Write(payload)
}

func node(name string, objectID uint32, parentID int32, tracks []byte, bone bool) []byte {
	var buf bytes.Buffer
	u32(&buf, uint32(4+0x50+4+4+4+len(tracks)))
	fixed(&buf, name, 0x50)
	u32(&buf, objectID)
	i32(&buf, parentID)
	u32(&buf, 0)
	buf.Write(tracks)
	if bone {
		i32(&buf, -1)
		i32(&buf, -1)
	}
	return buf.Bytes()
}

func main() {
	var buf bytes.Buffer
	buf.WriteString("MDLX")

	var vers bytes.Buffer
	u32(&vers, 800)
	chunk(&buf, "VERS", vers.Bytes())

	var modl bytes.Buffer
	fixed(&modl, "Spinner", 80)
	chunk(&buf, "MODL", modl.Bytes())

	var seqs bytes.Buffer
	fixed(&seqs, "Stand", 0x50)
	u32(&seqs, 0)
	u32(&seqs, 2000)
	f32(&seqs, 0)
	u32(&seqs, 0)
	f32(&seqs, 0)
	seqs.Write(make([]byte, 32))
	chunk(&buf, "SEQS", seqs.Bytes())

	// Quad split into two triangles, all vertices in group 0 (bone 1)
	var geos bytes.Buffer
	var body bytes.Buffer
	verts := [][3]float32{{-1, 0, 0}, {1, 0, 0}, {1, 2, 0}, {-1, 2, 0}}
	body.WriteString("VRTX")
	u32(&body, uint32(len(verts)))
	for _, v := range verts {
		f32(&body, v[0])
		f32(&body, v[1])
		f32(&body, v[2])
	}
	body.WriteString("NRMS")
	u32(&body, uint32(len(verts)))
	for range verts {
		f32(&body, 0)
		f32(&body, 0)
		f32(&body, 1)
	}
	body.WriteString("PVTX")
	u32(&body, 6)
	binary.Write(&body, binary.LittleEndian, []uint16{0, 1, 2, 0, 2, 3})
	body.WriteString("GNDX")
	u32(&body, uint32(len(verts)))
	body.Write(make([]byte, len(verts)))
	body.WriteString("MTGC")
	u32(&body, 1)
	u32(&body, 1)
	body.WriteString("MATS")
	u32(&body, 1)
	u32(&body, 1) // Deformed by the child bone
	i32(&body, 0)
	u32(&body, 0)
	u32(&body, 0)
	f32(&body, 2)
	for i := 0; i < 6; i++ {
		f32(&body, 0)
	}
	u32(&body, 0)
	u32(&geos, uint32(4+body.Len()))
	geos.Write(body.Bytes())
	chunk(&buf, "GEOS", geos.Bytes())

	// Root spins a half turn about Z over the sequence
	var rot bytes.Buffer
	rot.WriteString("KGRT")
	u32(&rot, 3)
	u32(&rot, 1) // Linear
	i32(&rot, -1)
	keys := []struct {
		frame int32
		q     [4]float32
	}{
		{0, [4]float32{0, 0, 0, 1}},
		{1000, [4]float32{0, 0, 0.7071, 0.7071}},
		{2000, [4]float32{0, 0, 1, 0}},
	}
	for _, k := range keys {
		i32(&rot, k.frame)
		for _, v := range k.q {
			f32(&rot, v)
		}
	}

	var bones bytes.Buffer
	bones.Write(node("Root", 0, -1, rot.Bytes(), true))
	bones.Write(node("Arm", 1, 0, nil, true))
	chunk(&buf, "BONE", bones.Bytes())

	var pivots bytes.Buffer
	for _, p := range [][3]float32{{0, 0, 0}, {0, 1, 0}} {
		f32(&pivots, p[0])
		f32(&pivots, p[1])
		f32(&pivots, p[2])
	}
	chunk(&buf, "PIVT", pivots.Bytes())

	if err := os.WriteFile("sample.mdx", buf.Bytes(), 0644); err != nil {
		panic(err)
	}
}
