package render

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"os"
	"sync"

	"github.com/golang/freetype/truetype"
	fb "github.com/gonutz/framebuffer"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/rook-computer/gadgetdrive/internal/render/layout"
	"github.com/rook-computer/gadgetdrive/internal/state"
	"github.com/rook-computer/gadgetdrive/internal/telemetry"
)

type logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// Outputs that buffer writes implement flusher and get flushed after
// every frame.
type flusher interface {
	Flush() error
}

type closer interface {
	Close()
}

// FBRenderer draws frames on an offscreen 240x240 canvas and scales them to
// the output, normally a Linux framebuffer device.
type FBRenderer struct {
	Device   string
	FontPath string
	Logger   logger

	mu        sync.Mutex
	out       draw.Image
	canvas    *image.RGBA
	listFace  font.Face
	largeFace font.Face
}

func NewFBRenderer(device, fontPath string) *FBRenderer {
	return &FBRenderer{Device: device, FontPath: fontPath}
}

// NewImageRenderer renders into dst instead of a framebuffer device.
func NewImageRenderer(dst draw.Image, fontPath string) *FBRenderer {
	return &FBRenderer{FontPath: fontPath, out: dst}
}

func (r *FBRenderer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.out == nil {
		device := r.Device
		if device == "" {
			device = DefaultDevice
		}
		dev, err := fb.Open(device)
		if err != nil {
			return fmt.Errorf("open framebuffer %s: %w", device, err)
		}
		r.out = dev
		bounds := dev.Bounds()
		r.infof("framebuffer %s open, bounds=%dx%d", device, bounds.Dx(), bounds.Dy())
	}
	r.canvas = image.NewRGBA(image.Rect(0, 0, CanvasWidth, CanvasHeight))
	r.listFace = r.loadFace(ListFontSize)
	r.largeFace = r.loadFace(LargeFontSize)
	return nil
}

func (r *FBRenderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.out.(closer); ok {
		c.Close()
	}
	r.out = nil
	return nil
}

func (r *FBRenderer) Render(snap state.Snapshot, tel telemetry.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.canvas == nil || r.out == nil {
		return fmt.Errorf("renderer not started")
	}
	r.drawFrame(Compose(snap, tel))
	return r.push()
}

func (r *FBRenderer) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.canvas == nil || r.out == nil {
		return nil
	}
	r.fillBackground()
	return r.push()
}

func (r *FBRenderer) drawFrame(f Frame) {
	r.fillBackground()
	bounds := r.canvas.Bounds()
	if f.Large != "" {
		r.drawText(r.largeFace, image.Pt(0, 0), f.Large)
		return
	}
	listArea, statusArea := layout.SplitHorizontal(bounds, SeparatorY)
	r.drawRows(listArea, append([]string{f.Header}, f.Rows[:]...))
	r.drawRows(statusArea, []string{f.Telemetry, f.Status})
	draw.Draw(r.canvas, layout.HLine(statusArea, statusArea.Min.Y), image.NewUniform(Foreground), image.Point{}, draw.Src)
}

// drawRows writes one line per RowPitch row of area; lines without a row
// are dropped.
func (r *FBRenderer) drawRows(area image.Rectangle, lines []string) {
	rows := layout.Rows(area, RowPitch)
	for i, line := range lines {
		if i >= len(rows) || line == "" {
			continue
		}
		r.drawText(r.listFace, rows[i].Min, line)
	}
}

// drawText anchors the top-left corner of the text at origin.
func (r *FBRenderer) drawText(face font.Face, origin image.Point, text string) {
	if face == nil {
		face = basicfont.Face7x13
	}
	d := &font.Drawer{
		Dst:  r.canvas,
		Src:  image.NewUniform(Foreground),
		Face: face,
		Dot:  fixed.P(origin.X, origin.Y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
}

func (r *FBRenderer) fillBackground() {
	draw.Draw(r.canvas, r.canvas.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)
}

func (r *FBRenderer) push() error {
	dst := r.out.Bounds()
	if dst.Eq(r.canvas.Bounds()) {
		draw.Draw(r.out, dst, r.canvas, image.Point{}, draw.Src)
	} else {
		xdraw.NearestNeighbor.Scale(r.out, dst, r.canvas, r.canvas.Bounds(), xdraw.Src, nil)
	}
	if f, ok := r.out.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// loadFace reads the configured font at size pixels. TrueType files go
// through freetype, OpenType and collections through x/image. Anything
// unreadable falls back to the built-in bitmap face.
func (r *FBRenderer) loadFace(size float64) font.Face {
	if r.FontPath == "" {
		return basicfont.Face7x13
	}
	data, err := os.ReadFile(r.FontPath)
	if err != nil {
		r.errorf("font %s unreadable, using basicfont: %v", r.FontPath, err)
		return basicfont.Face7x13
	}
	if tt, err := truetype.Parse(data); err == nil {
		return truetype.NewFace(tt, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
	}
	otf, err := parseOpenType(data)
	if err != nil {
		r.errorf("font %s parse failed, using basicfont: %v", r.FontPath, err)
		return basicfont.Face7x13
	}
	face, err := opentype.NewFace(otf, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		r.errorf("font face at %.0fpx failed, using basicfont: %v", size, err)
		return basicfont.Face7x13
	}
	return face
}

func parseOpenType(data []byte) (*opentype.Font, error) {
	if f, err := opentype.Parse(data); err == nil {
		return f, nil
	}
	coll, err := opentype.ParseCollection(data)
	if err != nil {
		return nil, err
	}
	if coll.NumFonts() == 0 {
		return nil, fmt.Errorf("empty font collection")
	}
	return coll.Font(0)
}

func (r *FBRenderer) infof(format string, args ...interface{}) {
	if r.Logger != nil {
		r.Logger.Infof("fb", format, args...)
	}
}

func (r *FBRenderer) errorf(format string, args ...interface{}) {
	if r.Logger != nil {
		r.Logger.Errorf("fb", format, args...)
	}
}
