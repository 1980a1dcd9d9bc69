package avatar

import "testing"

func TestRankConsolidationPromotesAgreement(t *testing.T) {
	s := DefaultSkeleton()

	// Item A contributes a transform for "neck".
	ibmA := Identity()
	ibmA[12] = 1 // translation x, arbitrary but fixed so A and B can "agree"
	rankA := s.ApplyItemTransform("neck", ibmA)
	if rankA != 1 {
		t.Fatalf("first contribution should land at rank 1, got %d", rankA)
	}

	// Item B contributes the same effective transform.
	rankB := s.ApplyItemTransform("neck", ibmA)
	if rankB != 2 {
		t.Fatalf("second agreeing contribution should promote to rank 2, got %d", rankB)
	}

	list := s.Transforms["neck"]
	if len(list) != 2 {
		t.Fatalf("expected 2 transforms (default + merged), got %d", len(list))
	}
	if list[len(list)-1].Rank != 2 {
		t.Fatalf("last element should have max rank, got %d", list[len(list)-1].Rank)
	}
}

func TestWinnerIsLastElement(t *testing.T) {
	s := DefaultSkeleton()
	w, ok := s.Winner("pelvis")
	if !ok {
		t.Fatal("expected a winner for pelvis")
	}
	if w.Rank != 0 {
		t.Fatalf("with no contributions, winner should be rank 0 default, got %d", w.Rank)
	}
}

func TestDefaultSkeletonParentResolution(t *testing.T) {
	s := DefaultSkeleton()
	j, ok := s.Joints["head"]
	if !ok {
		t.Fatal("expected head joint in default skeleton")
	}
	if j.Parent != "neck" {
		t.Fatalf("expected head's parent to be neck, got %q", j.Parent)
	}
}

func TestTextureEntryDefaultOnlyDecode(t *testing.T) {
	var buf []byte
	buf = append(buf, make([]byte, 16)...) // texture_id default
	buf = append(buf, 0)                   // no overrides
	buf = append(buf, []byte{255, 255, 255, 255}...) // color default
	buf = append(buf, 0)                              // no overrides
	buf = append(buf, []byte{0, 0, 0x80, 0x3f}...) // repeat U = 1.0 little-endian f32
	buf = append(buf, 0)
	buf = append(buf, []byte{0, 0, 0x80, 0x3f}...) // repeat V = 1.0
	buf = append(buf, 0)
	buf = append(buf, []byte{0, 0}...) // offset U = 0
	buf = append(buf, 0)
	buf = append(buf, []byte{0, 0}...) // offset V = 0
	buf = append(buf, 0)
	buf = append(buf, []byte{0, 0}...) // rotation = 0
	buf = append(buf, 0)
	buf = append(buf, 0) // material
	buf = append(buf, 0)
	buf = append(buf, 0) // media
	buf = append(buf, 0)
	buf = append(buf, 0) // glow
	buf = append(buf, 0)
	buf = append(buf, make([]byte, 16)...) // material_id
	buf = append(buf, 0)

	te, err := DecodeTextureEntry(buf)
	if err != nil {
		t.Fatal(err)
	}
	if te.RepeatU.Default != 1.0 {
		t.Fatalf("expected repeat U default 1.0, got %v", te.RepeatU.Default)
	}
	if len(te.TextureID.PerFace) != 0 {
		t.Fatalf("expected no per-face texture id overrides")
	}
}

func TestTextureEntryFaceOverride(t *testing.T) {
	var buf []byte
	buf = append(buf, make([]byte, 16)...) // texture_id default
	buf = append(buf, 0b00000010)          // face bit 1 set, no continuation
	buf = append(buf, make([]byte, 16)...) // override for face 1
	buf = append(buf, []byte{255, 0, 0, 255}...)
	buf = append(buf, 0)
	buf = append(buf, []byte{0, 0, 0x80, 0x3f}...)
	buf = append(buf, 0)
	buf = append(buf, []byte{0, 0, 0x80, 0x3f}...)
	buf = append(buf, 0)
	buf = append(buf, []byte{0, 0}...)
	buf = append(buf, 0)
	buf = append(buf, []byte{0, 0}...)
	buf = append(buf, 0)
	buf = append(buf, []byte{0, 0}...)
	buf = append(buf, 0)
	buf = append(buf, 0)
	buf = append(buf, 0)
	buf = append(buf, 0)
	buf = append(buf, 0)
	buf = append(buf, 0)
	buf = append(buf, 0)
	buf = append(buf, make([]byte, 16)...)
	buf = append(buf, 0)

	te, err := DecodeTextureEntry(buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(te.TextureID.PerFace) != 1 {
		t.Fatalf("expected 1 face override, got %d", len(te.TextureID.PerFace))
	}
	if _, ok := te.TextureID.PerFace[1]; !ok {
		t.Fatalf("expected override on face 1")
	}
}
