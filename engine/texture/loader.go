package texture

import (
	"image"
	"log"
	"math"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/aurora-fx/skyburst/common"
	"golang.org/x/image/draw"
)

// SlotSize is the edge length of every sprite atlas slot in texels.
const SlotSize = 64

// Sprite atlas slot assignments. Slot 0 is always the procedural circle;
// the remaining slots are filled asynchronously from decoded images.
const (
	SlotCircle uint32 = 0
	SlotGift   uint32 = 1
	SlotAvatar uint32 = 2
	SlotCount  uint32 = 3
)

// SlotUpdate is a decoded, slot-sized RGBA image ready for GPU upload.
type SlotUpdate struct {
	Slot   uint32
	Pixels []byte // SlotSize*SlotSize*4 bytes
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu      sync.Mutex
	taskID  int
	pool    worker.DynamicWorkerPool
	results chan SlotUpdate
}

// Loader decodes and resizes sprite images off the frame loop. Enqueue hands
// the work to a worker pool; Ready is polled at the frame boundary and never
// blocks, so a slow or failing decode cannot stall a frame.
type Loader interface {
	// Enqueue submits a sprite image for asynchronous decode and resize into
	// the given atlas slot. Failures are logged and the slot keeps its
	// previous contents.
	//
	// Parameters:
	//   - slot: the atlas slot to fill
	//   - src: the image source (in-memory bytes or file path)
	Enqueue(slot uint32, src common.SpriteSource)

	// Ready drains and returns every slot update completed since the last
	// call. Never blocks; returns nil when nothing is pending.
	//
	// Returns:
	//   - []SlotUpdate: completed updates in finish order
	Ready() []SlotUpdate
}

var _ Loader = &loader{}

// NewLoader creates a Loader backed by a small dynamic worker pool.
//
// Returns:
//   - Loader: the ready loader
func NewLoader() Loader {
	return &loader{
		pool:    worker.NewDynamicWorkerPool(2, 256, 1*time.Second),
		results: make(chan SlotUpdate, 8),
	}
}

func (l *loader) Enqueue(slot uint32, src common.SpriteSource) {
	if slot >= SlotCount {
		log.Printf("texture: sprite %q targets slot %d outside atlas (max %d), ignoring", src.Name, slot, SlotCount-1)
		return
	}

	l.mu.Lock()
	id := l.taskID
	l.taskID++
	l.mu.Unlock()

	srcCopy := src // capture for closure
	l.pool.SubmitTask(worker.Task{
		ID: id,
		Do: func() (any, error) {
			pixels, width, height, err := srcCopy.Decode()
			if err != nil {
				log.Printf("texture: failed to decode sprite %q: %v", srcCopy.Name, err)
				return nil, err
			}

			update := SlotUpdate{Slot: slot, Pixels: fitToSlot(pixels, width, height)}
			select {
			case l.results <- update:
			default:
				log.Printf("texture: result queue full, dropping sprite %q", srcCopy.Name)
			}
			return nil, nil
		},
	})
}

func (l *loader) Ready() []SlotUpdate {
	var updates []SlotUpdate
	for {
		select {
		case u := <-l.results:
			updates = append(updates, u)
		default:
			return updates
		}
	}
}

// fitToSlot resizes raw RGBA pixel data to SlotSize x SlotSize using
// Catmull-Rom resampling. Input already at slot size is returned unchanged.
func fitToSlot(pixels []byte, width, height uint32) []byte {
	if width == SlotSize && height == SlotSize {
		return pixels
	}

	src := &image.RGBA{
		Pix:    pixels,
		Stride: int(width) * 4,
		Rect:   image.Rect(0, 0, int(width), int(height)),
	}
	dst := image.NewRGBA(image.Rect(0, 0, SlotSize, SlotSize))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst.Pix
}

// CirclePixels renders the default sprite: a white disc with a smooth radial
// alpha falloff. Every particle samples this slot unless its firework carries
// a custom sprite.
//
// Returns:
//   - []byte: SlotSize*SlotSize*4 bytes of RGBA data
func CirclePixels() []byte {
	pixels := make([]byte, SlotSize*SlotSize*4)
	center := float64(SlotSize-1) / 2
	radius := float64(SlotSize) / 2

	for y := 0; y < SlotSize; y++ {
		for x := 0; x < SlotSize; x++ {
			dx := float64(x) - center
			dy := float64(y) - center
			r := math.Sqrt(dx*dx+dy*dy) / radius

			// Solid core with a quadratic fade to the rim.
			falloff := 1 - r
			if falloff < 0 {
				falloff = 0
			}
			a := falloff * (2 - falloff) // ease-out, opaque center
			if a > 1 {
				a = 1
			}

			v := byte(a * 255)
			i := (y*SlotSize + x) * 4
			pixels[i+0] = v
			pixels[i+1] = v
			pixels[i+2] = v
			pixels[i+3] = v
		}
	}
	return pixels
}
