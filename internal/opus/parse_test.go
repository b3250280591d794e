package opus_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reverb-bot/reverb/internal/opus"
)

// TOC bytes with the same configuration bits and each frame-count code.
const (
	tocSingle     = 0x78 // code 0
	tocExplicit   = 0x79 // code 1
	tocEqualSplit = 0x7A // code 2
	tocArbitrary  = 0x7B // code 3
)

func TestExtractPacketsSingle(t *testing.T) {
	buf := []byte{tocSingle, 0xAA, 0xBB, 0xCC}

	packets, consumed := opus.ExtractPackets(buf)
	if consumed != len(buf) {
		t.Fatalf("consumed = %d; want %d", consumed, len(buf))
	}

	want := [][]byte{{tocSingle, 0xAA, 0xBB, 0xCC}}
	if diff := cmp.Diff(want, packets); diff != "" {
		t.Errorf("packets mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractPacketsExplicit(t *testing.T) {
	// Length byte 2 means the first frame is 3 bytes; the second frame is
	// whatever remains.
	buf := []byte{tocExplicit, 2, 0x01, 0x02, 0x03, 0x04, 0x05}

	packets, consumed := opus.ExtractPackets(buf)
	if consumed != len(buf) {
		t.Fatalf("consumed = %d; want %d", consumed, len(buf))
	}

	want := [][]byte{
		{tocExplicit &^ 0x03, 0x01, 0x02, 0x03},
		{tocExplicit &^ 0x03, 0x04, 0x05},
	}
	if diff := cmp.Diff(want, packets); diff != "" {
		t.Errorf("packets mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractPacketsEqualSplit(t *testing.T) {
	// Six bytes: TOC plus five payload bytes. The two frames are two bytes
	// each, leaving one residual byte unconsumed.
	buf := []byte{tocEqualSplit, 0x01, 0x02, 0x03, 0x04, 0x05}

	packets, consumed := opus.ExtractPackets(buf)
	if consumed != 5 {
		t.Fatalf("consumed = %d; want 5", consumed)
	}

	want := [][]byte{
		{tocEqualSplit &^ 0x03, 0x01, 0x02},
		{tocEqualSplit &^ 0x03, 0x03, 0x04},
	}
	if diff := cmp.Diff(want, packets); diff != "" {
		t.Errorf("packets mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractPacketsArbitrary(t *testing.T) {
	// Three frames: explicit lengths 2 and 1, then an implicit final frame
	// spanning the rest of the buffer.
	buf := []byte{tocArbitrary, 3, 2, 1, 0xA1, 0xA2, 0xB1, 0xC1, 0xC2, 0xC3}

	packets, consumed := opus.ExtractPackets(buf)
	if consumed != len(buf) {
		t.Fatalf("consumed = %d; want %d", consumed, len(buf))
	}

	want := [][]byte{
		{tocArbitrary &^ 0x03, 0xA1, 0xA2},
		{tocArbitrary &^ 0x03, 0xB1},
		{tocArbitrary &^ 0x03, 0xC1, 0xC2, 0xC3},
	}
	if diff := cmp.Diff(want, packets); diff != "" {
		t.Errorf("packets mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractPacketsZeroesFrameCountCode(t *testing.T) {
	buf := []byte{tocExplicit, 0, 0xFF, 0xEE}
	packets, _ := opus.ExtractPackets(buf)
	for i, p := range packets {
		if p[0]&0x03 != 0 {
			t.Errorf("packet %d TOC = %#x; want frame-count bits zeroed", i, p[0])
		}
		if p[0]&^0x03 != tocExplicit&^0x03 {
			t.Errorf("packet %d TOC = %#x; configuration bits changed", i, p[0])
		}
	}
}

func TestExtractPacketsIncomplete(t *testing.T) {
	tc := []struct {
		name string
		buf  []byte
	}{
		{name: "empty buffer", buf: nil},
		{name: "explicit missing length byte", buf: []byte{tocExplicit}},
		{name: "explicit first frame short", buf: []byte{tocExplicit, 4, 0x01, 0x02}},
		{name: "equal split too short", buf: []byte{tocEqualSplit, 0x01, 0x02}},
		{name: "arbitrary missing count", buf: []byte{tocArbitrary}},
		{name: "arbitrary zero count", buf: []byte{tocArbitrary, 0, 0x01}},
		{name: "arbitrary missing length bytes", buf: []byte{tocArbitrary, 4, 1, 2}},
		{name: "arbitrary frame overruns buffer", buf: []byte{tocArbitrary, 2, 200, 0x01, 0x02}},
	}

	for _, test := range tc {
		t.Run(test.name, func(t *testing.T) {
			packets, consumed := opus.ExtractPackets(test.buf)
			if consumed != 0 {
				t.Errorf("consumed = %d; want 0", consumed)
			}
			if packets != nil {
				t.Errorf("packets = %v; want nil", packets)
			}
		})
	}
}

func TestPacketBufferReassemblesSplitChunks(t *testing.T) {
	group := []byte{tocExplicit, 2, 0x01, 0x02, 0x03, 0x04, 0x05}

	var buffer opus.PacketBuffer

	if packets := buffer.Feed(group[:3]); packets != nil {
		t.Fatalf("partial chunk produced packets: %v", packets)
	}
	if buffer.Pending() != 3 {
		t.Fatalf("Pending() = %d; want 3", buffer.Pending())
	}

	packets := buffer.Feed(group[3:])
	if len(packets) != 2 {
		t.Fatalf("got %d packets; want 2", len(packets))
	}
	if buffer.Pending() != 0 {
		t.Errorf("Pending() = %d after full group; want 0", buffer.Pending())
	}

	want := [][]byte{
		{tocExplicit &^ 0x03, 0x01, 0x02, 0x03},
		{tocExplicit &^ 0x03, 0x04, 0x05},
	}
	if diff := cmp.Diff(want, packets); diff != "" {
		t.Errorf("packets mismatch (-want +got):\n%s", diff)
	}
}

func TestPacketBufferKeepsResidualBytes(t *testing.T) {
	// The equal-split group leaves one byte behind; it must survive into
	// the next feed.
	var buffer opus.PacketBuffer

	if packets := buffer.Feed([]byte{tocEqualSplit, 0x01, 0x02, 0x03, 0x04, 0x05}); len(packets) != 2 {
		t.Fatalf("got %d packets; want 2", len(packets))
	}
	if buffer.Pending() != 1 {
		t.Errorf("Pending() = %d; want 1 residual byte", buffer.Pending())
	}
}
