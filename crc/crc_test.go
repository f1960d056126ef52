package crc

import "testing"

func TestChecksumKnownVectors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want uint32
	}{
		{"empty", []byte{}, 0x00000000},
		{"IEND type only", []byte("IEND"), 0xAE426082},
		{"IHDR+1x1 body", append([]byte("IHDR"), 0, 0, 0, 1, 0, 0, 0, 1, 8, 6, 0, 0, 0), 0x1f15c489},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Checksum(tt.data)
			if got != tt.want {
				t.Fatalf("Checksum(%q) = %#x, want %#x", tt.data, got, tt.want)
			}
		})
	}
}

func TestWriteIncrementalMatchesOneShot(t *testing.T) {
	data := []byte("IDATsome compressed-looking bytes go here")
	oneShot := Checksum(data)

	c := New()
	c.Write(data[:10])
	c.Write(data[10:])
	incremental := c.Sum32()

	if oneShot != incremental {
		t.Fatalf("incremental sum %#x != one-shot sum %#x", incremental, oneShot)
	}
}

func TestResetReturnsToInitialState(t *testing.T) {
	c := New()
	c.Write([]byte("garbage"))
	c.Reset()
	c.Write([]byte("IEND"))
	if got := c.Sum32(); got != 0xAE426082 {
		t.Fatalf("Sum32() after reset = %#x, want %#x", got, 0xAE426082)
	}
}
