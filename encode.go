package gv

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/pierrec/lz4/v4"
	"golang.org/x/sync/errgroup"
)

// batchFrames is the number of consecutive frames compressed in parallel
// before they are handed to the writer. 32 keeps per-job scratch bounded
// (a 1920x1080 DXT5 frame is about 2 MB) while giving the scheduler a
// useful granule.
const batchFrames = 32

// Job is one encode unit: an ordered list of equally sized source images
// and the output parameters.
type Job struct {
	ImagePaths []string
	OutputPath string
	FPS        float32
	// LiteMode trades quality for speed: range fit with a uniform colour
	// metric instead of the iterative cluster fit.
	LiteMode bool
	// HasAlpha selects DXT5 output; opaque jobs use DXT1.
	HasAlpha bool
}

// Format returns the texture format this job encodes to.
func (j *Job) Format() Format {
	if j.HasAlpha {
		return FormatDXT5
	}
	return FormatDXT1
}

// DefaultOutputPath is the output convention for a directory input: the
// directory path with ".gv" appended.
func DefaultOutputPath(dir string) string {
	return dir + ".gv"
}

// JobFromDir builds a job from an image directory using ListImages ordering
// and the default output path.
func JobFromDir(dir string, fps float32, lite, alpha bool) (Job, error) {
	paths, err := ListImages(dir)
	if err != nil {
		return Job{}, err
	}

	return Job{
		ImagePaths: paths,
		OutputPath: DefaultOutputPath(dir),
		FPS:        fps,
		LiteMode:   lite,
		HasAlpha:   alpha,
	}, nil
}

// Progress is the live per-job counter pair: frames finished and wall-clock
// seconds elapsed. Workers update it, the driver snapshots it; both sides
// are lock-free and the readings never regress.
type Progress struct {
	done    atomic.Int64
	elapsed atomic.Uint64
}

// DoneFrames returns the number of frames compressed so far.
func (p *Progress) DoneFrames() int {
	return int(p.done.Load())
}

// Elapsed returns seconds since the encode started.
func (p *Progress) Elapsed() float64 {
	return math.Float64frombits(p.elapsed.Load())
}

func (p *Progress) frameDone() {
	p.done.Add(1)
}

// observe advances the elapsed reading. Concurrent workers may race here;
// the CAS loop keeps observed values non-decreasing.
func (p *Progress) observe(start time.Time) {
	seconds := time.Since(start).Seconds()
	for {
		old := p.elapsed.Load()
		if math.Float64frombits(old) >= seconds {
			return
		}
		if p.elapsed.CompareAndSwap(old, math.Float64bits(seconds)) {
			return
		}
	}
}

// Encode runs one job: frames are loaded, block-compressed and LZ4-HC
// compressed in parallel batches, then written strictly in input order. The
// cancel flag is checked at batch boundaries; a cancelled or failed encode
// leaves no output file behind. An empty input list is a no-op.
//
// progress and cancel may be nil when the caller does not observe them.
func Encode(job Job, progress *Progress, cancel *atomic.Bool) error {
	if len(job.ImagePaths) == 0 {
		return nil
	}
	if progress == nil {
		progress = &Progress{}
	}
	if cancel == nil {
		cancel = &atomic.Bool{}
	}

	start := time.Now()

	// The first image is authoritative for the job's frame size.
	first, err := loadRGBA(job.ImagePaths[0])
	if err != nil {
		return err
	}
	width := first.Bounds().Dx()
	height := first.Bounds().Dy()

	format := job.Format()
	blockSize, err := BlockSize(width, height, format)
	if err != nil {
		return err
	}

	header, err := encodeHeader(job, width, height, blockSize, format)
	if err != nil {
		return err
	}

	w, err := NewWriter(job.OutputPath)
	if err != nil {
		return err
	}
	if err := w.WriteHeader(header); err != nil {
		return errors.Join(err, w.Abort())
	}

	opts := encodeOptions(job.LiteMode)
	bound := lz4.CompressBlockBound(blockSize)

	scratchFrames := min(len(job.ImagePaths), batchFrames)
	gpuScratch := make([]byte, scratchFrames*blockSize)
	lz4Scratch := make([]byte, scratchFrames*bound)
	sizes := make([]int, scratchFrames)

	for index := 0; index < len(job.ImagePaths); {
		workCount := min(len(job.ImagePaths)-index, batchFrames)

		var g errgroup.Group
		g.SetLimit(runtime.GOMAXPROCS(0))
		for i := 0; i < workCount; i++ {
			slot := i
			path := job.ImagePaths[index+i]
			g.Go(func() error {
				img, err := loadRGBA(path)
				if err != nil {
					return err
				}

				b := img.Bounds()
				if b.Dx() != width || b.Dy() != height {
					return fmt.Errorf("%w: %q is %dx%d, first frame is %dx%d",
						ErrDimensionMismatch, path, b.Dx(), b.Dy(), width, height)
				}

				gpuSlot := gpuScratch[slot*blockSize : (slot+1)*blockSize]
				if err := compressBlocks(img, format, opts, gpuSlot); err != nil {
					return fmt.Errorf("%q: %w", path, err)
				}

				n, err := compressFrame(gpuSlot, lz4Scratch[slot*bound:(slot+1)*bound])
				if err != nil {
					return fmt.Errorf("%q: %w", path, err)
				}
				sizes[slot] = n

				progress.frameDone()
				progress.observe(start)

				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return errors.Join(err, w.Abort())
		}

		// The batch is fully materialized; emit it in frame order.
		for i := 0; i < workCount; i++ {
			if err := w.AppendFrame(lz4Scratch[i*bound : i*bound+sizes[i]]); err != nil {
				return errors.Join(err, w.Abort())
			}
		}

		index += workCount
		progress.observe(start)

		if cancel.Load() {
			if err := w.Abort(); err != nil {
				return errors.Join(ErrCancelled, err)
			}
			return ErrCancelled
		}
	}

	if err := w.Finalize(); err != nil {
		return err
	}
	progress.observe(start)

	return nil
}

func encodeHeader(job Job, width, height, blockSize int, format Format) (*Header, error) {
	w32, err := u32FromInt(width)
	if err != nil {
		return nil, err
	}
	h32, err := u32FromInt(height)
	if err != nil {
		return nil, err
	}
	count, err := u32FromInt(len(job.ImagePaths))
	if err != nil {
		return nil, err
	}
	bs32, err := u32FromInt(blockSize)
	if err != nil {
		return nil, err
	}

	return &Header{
		Width:      w32,
		Height:     h32,
		FrameCount: count,
		FPS:        job.FPS,
		Format:     format,
		BlockSize:  bs32,
	}, nil
}
