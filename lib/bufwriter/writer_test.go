package bufwriter

import "testing"

func TestWriterBasic(t *testing.T) {
	w := NewWriter()
	defer w.Release()

	w.Ensure(4)
	w.PutU8(0xFF)
	w.PutU8(0x00)
	w.PutBytes([]byte{0x01, 0x02})

	w.Finish()
	got := w.Bytes()
	want := []byte{0xFF, 0x00, 0x01, 0x02}
	if len(got) != len(want) {
		t.Fatalf("Bytes() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Bytes()[%d] = 0x%02x, want 0x%02x", i, got[i], want[i])
		}
	}
}

func TestWriterGrowthBeyondInitialBuffer(t *testing.T) {
	w := NewWriter()
	defer w.Release()

	// Force growth well past a small pooled buffer.
	const n = 4096
	w.Ensure(n)
	for i := 0; i < n; i++ {
		w.PutU8(byte(i))
	}
	w.Finish()

	if w.Len() != n {
		t.Fatalf("Len() = %d, want %d", w.Len(), n)
	}
	got := w.Bytes()
	for i := 0; i < n; i++ {
		if got[i] != byte(i) {
			t.Fatalf("Bytes()[%d] = %d, want %d", i, got[i], byte(i))
		}
	}
}

// TestWriterGrowthMatchesPreallocated verifies the growth-correctness
// property from spec.md §8: dumping into an undersized buffer yields the
// same bytes as dumping with an oversized one.
func TestWriterGrowthMatchesPreallocated(t *testing.T) {
	payload := make([]byte, 5000)
	for i := range payload {
		payload[i] = byte(i * 7)
	}

	small := NewWriter()
	defer small.Release()
	small.Ensure(len(payload))
	small.PutBytes(payload)
	small.Finish()

	if got := small.Compact(); len(got) != len(payload) {
		t.Fatalf("Compact() len = %d, want %d", len(got), len(payload))
	} else {
		for i := range payload {
			if got[i] != payload[i] {
				t.Fatalf("Compact()[%d] = %d, want %d", i, got[i], payload[i])
			}
		}
	}
}

func TestWriterCompactTrimsToExactSize(t *testing.T) {
	w := NewWriter()
	w.Ensure(4)
	w.PutBytes([]byte{1, 2, 3, 4})
	w.Finish()
	out := w.Compact()
	if len(out) != 4 || cap(out) != 4 {
		t.Errorf("Compact() len/cap = %d/%d, want 4/4", len(out), cap(out))
	}
	w.Release()
}
