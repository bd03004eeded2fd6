package texture

import (
	"bytes"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/aurora-fx/skyburst/common"
)

func TestCirclePixelsShape(t *testing.T) {
	pixels := CirclePixels()

	if len(pixels) != SlotSize*SlotSize*4 {
		t.Fatalf("circle sprite is %d bytes, want %d", len(pixels), SlotSize*SlotSize*4)
	}

	alphaAt := func(x, y int) byte {
		return pixels[(y*SlotSize+x)*4+3]
	}

	if a := alphaAt(SlotSize/2, SlotSize/2); a < 250 {
		t.Errorf("center alpha %d, want opaque", a)
	}
	if a := alphaAt(0, 0); a != 0 {
		t.Errorf("corner alpha %d, want fully transparent", a)
	}

	// Alpha never increases walking from the center toward the edge.
	prev := alphaAt(SlotSize/2, SlotSize/2)
	for x := SlotSize / 2; x < SlotSize; x++ {
		a := alphaAt(x, SlotSize/2)
		if a > prev {
			t.Fatalf("alpha rises from %d to %d at x=%d, want monotonic falloff", prev, a, x)
		}
		prev = a
	}
}

func TestFitToSlotResizes(t *testing.T) {
	const srcSize = 128
	pixels := make([]byte, srcSize*srcSize*4)
	for i := 3; i < len(pixels); i += 4 {
		pixels[i] = 255
	}

	out := fitToSlot(pixels, srcSize, srcSize)
	if len(out) != SlotSize*SlotSize*4 {
		t.Fatalf("resized sprite is %d bytes, want %d", len(out), SlotSize*SlotSize*4)
	}
}

func TestFitToSlotPassthrough(t *testing.T) {
	pixels := make([]byte, SlotSize*SlotSize*4)
	out := fitToSlot(pixels, SlotSize, SlotSize)
	if &out[0] != &pixels[0] {
		t.Error("slot-sized input should be returned without copying")
	}
}

func TestLoaderDecodesIntoSlot(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test sprite: %v", err)
	}

	l := NewLoader()
	l.Enqueue(SlotGift, common.SpriteSource{Name: "gift", Data: buf.Bytes()})

	deadline := time.Now().Add(2 * time.Second)
	var updates []SlotUpdate
	for len(updates) == 0 && time.Now().Before(deadline) {
		updates = l.Ready()
		time.Sleep(5 * time.Millisecond)
	}

	if len(updates) != 1 {
		t.Fatalf("got %d updates, want 1", len(updates))
	}
	if updates[0].Slot != SlotGift {
		t.Errorf("update slot = %d, want %d", updates[0].Slot, SlotGift)
	}
	if len(updates[0].Pixels) != SlotSize*SlotSize*4 {
		t.Errorf("update pixels = %d bytes, want %d", len(updates[0].Pixels), SlotSize*SlotSize*4)
	}
}

func TestLoaderRejectsOutOfRangeSlot(t *testing.T) {
	l := NewLoader()
	l.Enqueue(SlotCount, common.SpriteSource{Name: "bad"})

	time.Sleep(50 * time.Millisecond)
	if updates := l.Ready(); updates != nil {
		t.Fatalf("got %d updates for an out-of-range slot, want none", len(updates))
	}
}

func TestLoaderIgnoresBadImage(t *testing.T) {
	l := NewLoader()
	l.Enqueue(SlotAvatar, common.SpriteSource{Name: "garbage", Data: []byte("not an image")})

	time.Sleep(200 * time.Millisecond)
	if updates := l.Ready(); updates != nil {
		t.Fatalf("got %d updates for an undecodable image, want none", len(updates))
	}
}
