package animation

import (
	"github.com/Faultbox/mdxview/pkg/math"
)

// TransformVertices deforms vertex positions by the current pose.
// vertexGroups maps each vertex to an entry of matrixGroups, which lists
// the object ids of the contributing bones; pivots is the per-bone pivot
// table indexed by those same ids. The output is the unweighted mean of
// every contributing bone's transform of the vertex.
//
// None of the degenerate inputs are errors: an out-of-range group index,
// an empty bone list, or a list whose ids all match no known bone leaves
// the vertex at its original position, and an unknown id inside a mixed
// list is skipped.
func (s *System) TransformVertices(vertices []math.Vec3, vertexGroups []uint8, matrixGroups [][]uint32, pivots []math.Vec3) []math.Vec3 {
	out := make([]math.Vec3, len(vertices))

	for i, v := range vertices {
		out[i] = v

		if i >= len(vertexGroups) {
			continue
		}
		group := int(vertexGroups[i])
		if group >= len(matrixGroups) {
			continue
		}
		boneIDs := matrixGroups[group]
		if len(boneIDs) == 0 {
			continue
		}

		var acc math.Vec3
		contributors := 0
		for _, id := range boneIDs {
			bone := s.BoneByObjectID(int32(id))
			if bone == nil {
				continue
			}

			var pivot math.Vec3
			if int(id) < len(pivots) {
				pivot = pivots[id]
			}

			rel := v.Sub(pivot)
			acc = acc.Add(bone.AbsMatrix.MulVec3(rel).Add(bone.AbsVector))
			contributors++
		}
		if contributors == 0 {
			continue
		}

		out[i] = acc.Scale(1 / float32(contributors))
	}

	return out
}

// TransformNormals rotates vertex normals by the blended bone matrices
// and renormalizes. Same lookup and pass-through rules as
// TransformVertices, minus the pivot/translation terms.
func (s *System) TransformNormals(normals []math.Vec3, vertexGroups []uint8, matrixGroups [][]uint32) []math.Vec3 {
	out := make([]math.Vec3, len(normals))

	for i, n := range normals {
		out[i] = n

		if i >= len(vertexGroups) {
			continue
		}
		group := int(vertexGroups[i])
		if group >= len(matrixGroups) {
			continue
		}
		boneIDs := matrixGroups[group]
		if len(boneIDs) == 0 {
			continue
		}

		var acc math.Vec3
		contributors := 0
		for _, id := range boneIDs {
			bone := s.BoneByObjectID(int32(id))
			if bone == nil {
				continue
			}
			acc = acc.Add(bone.AbsMatrix.MulVec3(n))
			contributors++
		}
		if contributors == 0 {
			continue
		}

		out[i] = acc.Normalize()
	}

	return out
}
