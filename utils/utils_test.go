package utils

import (
	"testing"
)

func TestMinMaxInt(t *testing.T) {
	if MaxInt(3, 7) != 7 || MaxInt(7, 3) != 7 {
		t.Fatal("MaxInt broken")
	}
	if MinInt(3, 7) != 3 || MinInt(7, 3) != 3 {
		t.Fatal("MinInt broken")
	}
}

func TestBytes2String(t *testing.T) {
	b := []byte("ACGT")
	if Bytes2String(b) != "ACGT" {
		t.Fatalf("got %q", Bytes2String(b))
	}
}

func Benchmark_Byte2String(b *testing.B) {
	x := []byte("Hello Gopher! Hello Gopher! Hello Gopher!")
	for i := 0; i < b.N; i++ {
		_ = Bytes2String(x)
	}
}
