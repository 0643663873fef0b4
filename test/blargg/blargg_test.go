// Package blargg runs Blargg's cpu_instrs golden ROMs against the core and
// compares the final screen against a reference dump under testdata/
// (written by a run with BLARGG_GENERATE_GOLDEN=true), the regression
// harness's "did this change observable behavior" backstop.
package blargg

import (
	"crypto/md5"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/corvee-dev/gbcore/gb"
	"github.com/corvee-dev/gbcore/gb/cartridge"
	"github.com/corvee-dev/gbcore/gb/video"
)

// BlarggTestCase names one ROM and how long to run it before sampling the
// screen: MaxFrames bounds the run, MinLoopCount is how many consecutive
// identical frames count as "the test has settled on its result screen".
type BlarggTestCase struct {
	ROMPath      string
	MaxFrames    uint64
	MinLoopCount int
	Name         string
}

func GetBlarggTests() []BlarggTestCase {
	baseDir := "../../test-roms"

	return []BlarggTestCase{
		{ROMPath: filepath.Join(baseDir, "01-special.gb"), MaxFrames: 500, MinLoopCount: 50, Name: "01-special"},
		{ROMPath: filepath.Join(baseDir, "02-interrupts.gb"), MaxFrames: 500, MinLoopCount: 50, Name: "02-interrupts"},
		{ROMPath: filepath.Join(baseDir, "03-op sp,hl.gb"), MaxFrames: 500, MinLoopCount: 50, Name: "03-op sp,hl"},
		{ROMPath: filepath.Join(baseDir, "04-op r,imm.gb"), MaxFrames: 500, MinLoopCount: 50, Name: "04-op r,imm"},
		{ROMPath: filepath.Join(baseDir, "05-op rp.gb"), MaxFrames: 500, MinLoopCount: 50, Name: "05-op rp"},
		{ROMPath: filepath.Join(baseDir, "06-ld r,r.gb"), MaxFrames: 500, MinLoopCount: 50, Name: "06-ld r,r"},
		{ROMPath: filepath.Join(baseDir, "07-jr,jp,call,ret,rst.gb"), MaxFrames: 500, MinLoopCount: 50, Name: "07-jr,jp,call,ret,rst"},
		{ROMPath: filepath.Join(baseDir, "08-misc instrs.gb"), MaxFrames: 500, MinLoopCount: 50, Name: "08-misc instrs"},
		{ROMPath: filepath.Join(baseDir, "09-op r,r.gb"), MaxFrames: 1000, MinLoopCount: 50, Name: "09-op r,r"},
		{ROMPath: filepath.Join(baseDir, "10-bit ops.gb"), MaxFrames: 1000, MinLoopCount: 50, Name: "10-bit ops"},
		{ROMPath: filepath.Join(baseDir, "11-op a,(hl).gb"), MaxFrames: 1500, MinLoopCount: 50, Name: "11-op a,(hl)"},
	}
}

// runUntilSettled ticks core one frame at a time until either the
// framebuffer's MD5 has stayed unchanged for MinLoopCount consecutive
// frames (the test ROM has parked on its result screen) or MaxFrames is
// reached, whichever comes first.
func runUntilSettled(core *gb.GameBoy, maxFrames uint64, minLoopCount int) {
	var lastHash [16]byte
	streak := 0

	for frame := uint64(0); frame < maxFrames; frame++ {
		core.Tick(1.0 / 60.0)

		if minLoopCount <= 0 {
			continue
		}

		hash := md5.Sum(core.Framebuffer().Current().Pixels())
		if hash == lastHash {
			streak++
			if streak >= minLoopCount {
				return
			}
		} else {
			streak = 0
			lastHash = hash
		}
	}
}

func runBlarggTest(t *testing.T, testCase BlarggTestCase) {
	if _, err := os.Stat(testCase.ROMPath); os.IsNotExist(err) {
		t.Skipf("ROM file not found: %s", testCase.ROMPath)
		return
	}

	t.Logf("Running Blargg test: %s (%s)", testCase.Name, testCase.ROMPath)

	data, err := os.ReadFile(testCase.ROMPath)
	if err != nil {
		t.Fatalf("Failed to read ROM: %v", err)
	}
	cart, err := cartridge.Load(data)
	if err != nil {
		t.Fatalf("Failed to load cartridge: %v", err)
	}
	core := gb.New(cart)

	runUntilSettled(core, testCase.MaxFrames, testCase.MinLoopCount)

	fb := core.Framebuffer().Current()
	testName := testCase.Name

	screenDataPath := filepath.Join("testdata", fmt.Sprintf("%s.bin", testName))
	snapshotPath := filepath.Join("testdata", "snapshots", fmt.Sprintf("%s.png", testName))

	if err := os.MkdirAll("testdata", 0755); err != nil {
		t.Fatalf("Failed to create testdata directory: %v", err)
	}
	if err := os.MkdirAll(filepath.Join("testdata", "snapshots"), 0755); err != nil {
		t.Fatalf("Failed to create snapshots directory: %v", err)
	}

	binaryData := append([]byte(nil), fb.Pixels()...)
	hash := fmt.Sprintf("%x", md5.Sum(binaryData))

	generateReference := os.Getenv("BLARGG_GENERATE_GOLDEN") == "true"

	if generateReference {
		t.Logf("Generating reference files for %s", testCase.Name)
		if err := os.WriteFile(screenDataPath, binaryData, 0644); err != nil {
			t.Fatalf("Failed to write screen data file: %v", err)
		}
		if err := savePNG(fb, snapshotPath); err != nil {
			t.Fatalf("Failed to write snapshot PNG file: %v", err)
		}
		t.Logf("Reference files generated - hash: %s", hash)
		return
	}

	if _, err := os.Stat(screenDataPath); os.IsNotExist(err) {
		t.Fatalf("Screen data file not found: %s. Set BLARGG_GENERATE_GOLDEN=true to generate reference files first.", screenDataPath)
	}

	expectedData, err := os.ReadFile(screenDataPath)
	if err != nil {
		t.Fatalf("Failed to read screen data file: %v", err)
	}
	expectedHash := fmt.Sprintf("%x", md5.Sum(expectedData))

	if hash != expectedHash {
		actualBinPath := filepath.Join("testdata", fmt.Sprintf("%s_actual.bin", testName))
		actualPngPath := filepath.Join("testdata", "snapshots", fmt.Sprintf("%s_actual.png", testName))

		os.WriteFile(actualBinPath, binaryData, 0644)
		savePNG(fb, actualPngPath)

		t.Errorf("Test output differs from expected\n  Expected hash: %s\n  Actual hash:   %s\n  Files saved:   %s, %s",
			expectedHash, hash, actualBinPath, actualPngPath)
	} else {
		t.Logf("Test passed - hash: %s", hash)
	}
}

// savePNG renders a Framebuffer's raw 2-bit shades to grayscale for human
// inspection of a diff; darker shade value maps to darker pixel.
func savePNG(fb *video.Framebuffer, filename string) error {
	img := image.NewGray(image.Rect(0, 0, video.FramebufferWidth, video.FramebufferHeight))

	for y := 0; y < video.FramebufferHeight; y++ {
		for x := 0; x < video.FramebufferWidth; x++ {
			shade := fb.At(x, y)
			gray := 255 - shade*85
			img.SetGray(x, y, color.Gray{Y: gray})
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}

func TestBlarggSuite(t *testing.T) {
	for _, testCase := range GetBlarggTests() {
		t.Run(testCase.Name, func(t *testing.T) {
			runBlarggTest(t, testCase)
		})
	}
}
