package workbuf

import "testing"

func TestNewResizeInvalidates(t *testing.T) {
	b := New(8)
	if b.Size() != 8 || b.Valid {
		t.Fatalf("fresh buffer should be 8 wide and invalid, got size=%d valid=%v", b.Size(), b.Valid)
	}
	if len(b.Data) != 8+Margin {
		t.Errorf("Data length = %d, want %d", len(b.Data), 8+Margin)
	}
}

func TestClearSetsConstAndFinal(t *testing.T) {
	b := New(4)
	b.Clear(0, 4)
	if !b.Valid || !b.Final || b.ConstStart != 0 {
		t.Errorf("clear should mark valid/final/const_start=0, got valid=%v final=%v const=%d", b.Valid, b.Final, b.ConstStart)
	}
	for i := 0; i < 4; i++ {
		if b.Data[i] != 0 {
			t.Errorf("Data[%d] = %v, want 0", i, b.Data[i])
		}
	}
}

func TestCopyPropagatesMetadata(t *testing.T) {
	src := New(4)
	src.Data[0], src.Data[1], src.Data[2], src.Data[3] = 1, 2, 3, 4
	src.Valid = true
	src.ConstStart = 2
	src.Final = true

	dst := New(4)
	Copy(dst, src, 0, 4)
	if dst.Data[1] != 2 || dst.ConstStart != 2 || !dst.Final || !dst.Valid {
		t.Errorf("copy did not propagate data/metadata correctly: %+v", dst)
	}
}

func TestMixAddsAndTakesMaxConstStart(t *testing.T) {
	dest := New(4)
	dest.Clear(0, 4)
	dest.Data[0] = 1
	dest.ConstStart = 1

	src := New(4)
	src.Clear(0, 4)
	src.Data[0] = 2
	src.ConstStart = 3

	Mix(dest, src, 0, 4)
	if dest.Data[0] != 3 {
		t.Errorf("Mix should add: got %v, want 3", dest.Data[0])
	}
	if dest.ConstStart != 3 {
		t.Errorf("Mix const_start = %d, want max(1,3)=3", dest.ConstStart)
	}
}

func TestMixPropagatesNegInfSilenceTail(t *testing.T) {
	dest := New(4)
	dest.Clear(0, 4)
	dest.ConstStart = 2
	dest.Final = true
	dest.Data[2] = NegInf()
	dest.Data[3] = NegInf()

	src := New(4)
	src.Clear(0, 4)
	src.ConstStart = 1
	src.Final = false

	Mix(dest, src, 0, 4)
	if !dest.Final {
		t.Error("a permanent -inf tail on dest should force Final true after Mix")
	}
	if dest.ConstStart != 2 {
		t.Errorf("const_start should stay at the -inf tail start 2, got %d", dest.ConstStart)
	}
}

func TestIsNegInf(t *testing.T) {
	if !IsNegInf(NegInf()) {
		t.Error("NegInf() should report IsNegInf")
	}
	if IsNegInf(0) {
		t.Error("0 should not report IsNegInf")
	}
}
