package avatar

import "sort"

// JointName is drawn from the closed set of joint names the default
// skeleton asset defines (spec §9 "Cyclic graphs": joints are looked up
// by name, never held as owning references, so the skeleton is provably
// a tree).
type JointName string

// Joint is one node of the skeleton tree: its name, its parent's name
// (empty for the root), and the bind-pose transform baked into the
// default skeleton asset.
type Joint struct {
	Name   JointName
	Parent JointName
	Bind   Mat4
}

// Transform is one contribution to a joint's transform list: a global
// and local matrix plus the rank used to decide which contribution wins
// at render time (spec §4.7 "Global blend").
type Transform struct {
	Global Mat4
	Local  Mat4
	Rank   int
}

// rankConsolidationTolerance is the absolute per-element tolerance used
// to decide two transforms "agree" (spec §4.7, and the S5 scenario).
const rankConsolidationTolerance = 1e-4

// Skeleton is the per-avatar joint hierarchy: each joint's bind pose plus
// the ordered (ascending rank) list of transform contributions currently
// applied to it. The winning transform for a joint is always the last
// element of its list (spec §4.7).
type Skeleton struct {
	Joints      map[JointName]Joint
	Transforms  map[JointName][]Transform
}

// NewSkeleton builds a skeleton from joint definitions, seeding every
// joint's transform list with its rank-0 default (spec §4.7 "Default
// skeleton": each node's inverse-bind matrix recorded as a Transform of
// rank 0 in both the global and local collections).
func NewSkeleton(joints []Joint) *Skeleton {
	s := &Skeleton{
		Joints:     make(map[JointName]Joint, len(joints)),
		Transforms: make(map[JointName][]Transform, len(joints)),
	}
	for _, j := range joints {
		s.Joints[j.Name] = j
		s.Transforms[j.Name] = []Transform{{Global: j.Bind, Local: j.Bind, Rank: 0}}
	}
	return s
}

// DefaultSkeleton returns the fixed pelvis-rooted tree embedded at build
// time. Only a representative subset of the full joint set is modeled —
// enough to exercise parent/child composition (pelvis -> spine -> chest
// -> neck -> head) and a limb branch (chest -> collar -> shoulder) —
// since the complete joint list is asset data, not logic.
func DefaultSkeleton() *Skeleton {
	joints := []Joint{
		{Name: "pelvis", Parent: "", Bind: Identity()},
		{Name: "spine", Parent: "pelvis", Bind: Identity()},
		{Name: "chest", Parent: "spine", Bind: Identity()},
		{Name: "neck", Parent: "chest", Bind: Identity()},
		{Name: "head", Parent: "neck", Bind: Identity()},
		{Name: "collar_left", Parent: "chest", Bind: Identity()},
		{Name: "shoulder_left", Parent: "collar_left", Bind: Identity()},
		{Name: "collar_right", Parent: "chest", Bind: Identity()},
		{Name: "shoulder_right", Parent: "collar_right", Bind: Identity()},
		{Name: "hip_left", Parent: "pelvis", Bind: Identity()},
		{Name: "knee_left", Parent: "hip_left", Bind: Identity()},
		{Name: "hip_right", Parent: "pelvis", Bind: Identity()},
		{Name: "knee_right", Parent: "hip_right", Bind: Identity()},
	}
	return NewSkeleton(joints)
}

// DefaultGlobal returns a joint's rank-0 global transform, or identity if
// the joint is unknown.
func (s *Skeleton) DefaultGlobal(name JointName) Mat4 {
	ts, ok := s.Transforms[name]
	if !ok || len(ts) == 0 {
		return Identity()
	}
	return ts[0].Global
}

// ParentGlobal resolves the current winning global transform of a
// joint's parent, falling back to identity for the root.
func (s *Skeleton) ParentGlobal(name JointName) Mat4 {
	j, ok := s.Joints[name]
	if !ok || j.Parent == "" {
		return Identity()
	}
	ts := s.Transforms[j.Parent]
	if len(ts) == 0 {
		return Identity()
	}
	return ts[len(ts)-1].Global
}

// ApplyItemTransform computes the rank-1 transform a worn item's
// inverse-bind matrix contributes for one joint (spec §4.7 "Per-object
// skeleton"): D is the default joint's rank-0 global matrix with
// translation zeroed; G = D * IBM_item; L = parentGlobal * G^-1. It then
// consolidates the result into the skeleton's transform list for that
// joint and returns the rank it ended up at.
func (s *Skeleton) ApplyItemTransform(joint JointName, ibmItem Mat4) int {
	d := s.DefaultGlobal(joint).WithoutTranslation()
	g := d.Mul(ibmItem)
	parentGlobal := s.ParentGlobal(joint)
	l := parentGlobal.Mul(g.Inverse())

	return s.consolidate(joint, Transform{Global: g, Local: l, Rank: 1})
}

// consolidate implements spec §4.7's rank-consolidation algorithm:
//   - compare to existing rank >= 1 transforms for the same joint; on a
//     match (within tolerance), bump that transform's rank and re-sort;
//   - otherwise compare to the rank-0 default; on a match, insert at
//     rank 1; otherwise insert at the transform's own given rank.
//   - sort is stable with respect to insertion order for equal ranks.
func (s *Skeleton) consolidate(joint JointName, incoming Transform) int {
	list := s.Transforms[joint]

	for i := 1; i < len(list); i++ {
		if list[i].Global.Equal(incoming.Global, rankConsolidationTolerance) {
			list[i].Rank++
			rank := list[i].Rank
			sortByRankStable(list)
			s.Transforms[joint] = list
			return rank
		}
	}

	if len(list) > 0 && list[0].Global.Equal(incoming.Global, rankConsolidationTolerance) {
		incoming.Rank = 1
	}
	list = append(list, incoming)
	sortByRankStable(list)
	s.Transforms[joint] = list
	return incoming.Rank
}

// sortByRankStable sorts ascending by rank, preserving relative order of
// equal-rank elements (sort.SliceStable, per the spec's explicit
// stability requirement).
func sortByRankStable(list []Transform) {
	sort.SliceStable(list, func(i, j int) bool { return list[i].Rank < list[j].Rank })
}

// Winner returns the transform that wins at render time for a joint: the
// last element of its list (spec §4.7, and the invariant in spec §8
// property 6: the last element always has the maximum rank).
func (s *Skeleton) Winner(joint JointName) (Transform, bool) {
	list := s.Transforms[joint]
	if len(list) == 0 {
		return Transform{}, false
	}
	return list[len(list)-1], true
}
