// Package batch drives pixel-size inference and downsampling over single
// images or whole directories, one worker per core.
package batch

import (
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"pixelsnap/internal/models"
	"pixelsnap/pkg/gradient"
	"pixelsnap/pkg/gridsize"
	"pixelsnap/pkg/resample"
	"pixelsnap/pkg/visualization"
)

// Params holds the batch configuration.
type Params struct {
	// InputPath is a single image or a directory of images. Directories are
	// not searched recursively.
	InputPath string

	// OutputPath is where results go. When it ends in a supported output
	// extension and InputPath is a file, it is the output file; otherwise it
	// is a directory that receives one file per input.
	OutputPath string

	// NumCores is the number of images processed concurrently. Zero or less
	// uses every available CPU.
	NumCores int

	// Filter is the downsampling kernel.
	Filter resample.Filter

	// Boundary decides whether image edges count as grid lines.
	Boundary gradient.BoundaryPolicy

	// OutputFormat is the extension used for files written into an output
	// directory, with the leading dot.
	OutputFormat string

	// SaveIntermediaryResults writes edge maps, signal plots and grid
	// overlays for every image under IntermediaryDir.
	SaveIntermediaryResults bool

	// IntermediaryDir is only used when SaveIntermediaryResults is true.
	IntermediaryDir string

	// Verbose prints one line per image and a progress counter.
	Verbose bool
}

// Processor shrinks pixel-art images to their logical resolution.
type Processor struct {
	params    *Params
	estimator *gridsize.Estimator
	viewer    *visualization.Viewer
}

// NewProcessor creates a processor with the provided parameters.
func NewProcessor(params *Params) *Processor {
	p := &Processor{
		params:    params,
		estimator: gridsize.NewEstimator(params.Boundary),
	}
	if params.SaveIntermediaryResults {
		p.viewer = visualization.NewViewer(params.IntermediaryDir)
	}
	return p
}

// Process runs every job derived from the input path. Per-image failures are
// logged, recorded in the summary and do not stop the batch; the returned
// error covers only problems with the input or output locations.
func (p *Processor) Process() (models.Summary, error) {
	start := time.Now()

	jobs, err := p.plan()
	if err != nil {
		return models.Summary{}, err
	}

	results := p.run(jobs)

	summary := models.Summary{Results: results, Elapsed: time.Since(start)}
	for _, res := range results {
		if res.OK() {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}
	return summary, nil
}

// run fans jobs out over NumCores workers and returns results in job order.
func (p *Processor) run(jobs []models.Job) []models.Result {
	workers := p.params.NumCores
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	jobChan := make(chan models.Job)
	resultChan := make(chan models.Result)

	for w := 0; w < workers; w++ {
		go func() {
			for job := range jobChan {
				resultChan <- p.ProcessFile(job)
			}
		}()
	}

	go func() {
		for _, job := range jobs {
			jobChan <- job
		}
		close(jobChan)
	}()

	results := make([]models.Result, len(jobs))
	for completed := 0; completed < len(jobs); completed++ {
		res := <-resultChan
		results[res.Index] = res

		if res.Err != nil {
			log.Printf("Warning: skipping %s: %v", res.Input, res.Err)
		} else if p.params.Verbose {
			w, h := res.OutputSize()
			fmt.Printf("%s: pixel size %d (h=%d, v=%d), %dx%d -> %dx%d\n",
				filepath.Base(res.Input), res.PixelSize, res.HorizontalSize, res.VerticalSize,
				res.Width, res.Height, w, h)
		}
		if p.params.Verbose && len(jobs) > 1 {
			progress := float64(completed+1) / float64(len(jobs)) * 100
			fmt.Printf("Processed %d/%d images (%.1f%%)\n", completed+1, len(jobs), progress)
		}
	}

	return results
}

// ProcessFile infers the pixel size of one image and writes the downsampled
// result. All failures are reported through Result.Err.
func (p *Processor) ProcessFile(job models.Job) (res models.Result) {
	start := time.Now()
	res = models.Result{Job: job}
	defer func() { res.Duration = time.Since(start) }()

	img, format, err := resample.Load(job.Input)
	if err != nil {
		res.Err = errors.Wrap(err, "failed to load image")
		return res
	}
	res.Format = format
	res.Width, res.Height = img.Bounds().Dx(), img.Bounds().Dy()

	buf := gradient.FromImage(img)
	est, err := p.estimator.Estimate(buf)
	res.HorizontalSize, res.VerticalSize = est.Horizontal, est.Vertical
	res.PixelSize = est.PixelSize
	res.HorizontalSpread, res.VerticalSpread = est.HorizontalSpread, est.VerticalSpread

	if p.viewer != nil {
		if verr := p.saveIntermediary(job, img, buf); verr != nil {
			log.Printf("Warning: failed to save intermediary results for %s: %v", job.Input, verr)
		}
	}

	if err != nil {
		res.Err = errors.Wrap(err, "failed to estimate pixel size")
		return res
	}

	small, err := resample.Downsample(img, est.PixelSize, p.params.Filter)
	if err != nil {
		res.Err = errors.Wrap(err, "failed to downsample")
		return res
	}

	if err := os.MkdirAll(filepath.Dir(job.Output), 0755); err != nil {
		res.Err = errors.Wrap(err, "failed to create output directory")
		return res
	}
	if err := resample.Save(job.Output, small); err != nil {
		res.Err = errors.Wrap(err, "failed to save output")
		return res
	}

	return res
}

// plan turns the input and output paths into jobs.
func (p *Processor) plan() ([]models.Job, error) {
	if p.params.InputPath == "" {
		return nil, errors.New("no input path given")
	}
	if p.params.OutputPath == "" {
		return nil, errors.New("no output path given")
	}

	info, err := os.Stat(p.params.InputPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read input path")
	}

	format := p.params.OutputFormat
	if format == "" {
		format = ".png"
	}
	if !strings.HasPrefix(format, ".") {
		format = "." + format
	}
	if !resample.SupportedOutput(format) {
		return nil, errors.Errorf("unsupported output format %q", format)
	}

	if !info.IsDir() {
		output := p.params.OutputPath
		if !resample.SupportedOutput(filepath.Ext(output)) {
			output = filepath.Join(output, outputName(p.params.InputPath, format))
		}
		return []models.Job{{Index: 0, Input: p.params.InputPath, Output: output}}, nil
	}

	files, err := listImages(p.params.InputPath)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.Errorf("no images found in %s", p.params.InputPath)
	}
	if err := os.MkdirAll(p.params.OutputPath, 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create output directory")
	}

	jobs := make([]models.Job, len(files))
	for i, name := range files {
		jobs[i] = models.Job{
			Index:  i,
			Input:  filepath.Join(p.params.InputPath, name),
			Output: filepath.Join(p.params.OutputPath, outputName(name, format)),
		}
	}
	return jobs, nil
}

// listImages returns the decodable files in dir, ordered by the number in
// their names and then by name.
func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list input directory")
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !resample.SupportedInput(filepath.Ext(entry.Name())) {
			continue
		}
		names = append(names, entry.Name())
	}

	sort.Slice(names, func(i, j int) bool {
		numI, numJ := extractNumber(names[i]), extractNumber(names[j])
		if numI != numJ {
			return numI < numJ
		}
		return names[i] < names[j]
	})
	return names, nil
}

// outputName swaps the extension of the input's base name for format.
func outputName(input, format string) string {
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base)) + format
}

// extractNumber extracts the digits of a filename as one number, or 0
func extractNumber(filename string) int {
	base := filepath.Base(filename)
	numStr := ""
	for _, c := range base {
		if c >= '0' && c <= '9' {
			numStr += string(c)
		}
	}

	if numStr != "" {
		num, err := strconv.Atoi(numStr)
		if err == nil {
			return num
		}
	}
	return 0
}

// saveIntermediary writes the edge maps, signal plots and the detected grid
// for one image.
func (p *Processor) saveIntermediary(job models.Job, img image.Image, buf *gradient.Buffer) error {
	name := strings.TrimSuffix(filepath.Base(job.Input), filepath.Ext(job.Input))

	var lines [2][]int
	for i, axis := range []gradient.Axis{gradient.Horizontal, gradient.Vertical} {
		energy := gradient.EdgeEnergy(buf, axis)
		if energy == nil {
			continue
		}
		stem := fmt.Sprintf("%s_%s", name, axis)
		if _, err := p.viewer.SaveStage("01_edge_energy", stem, visualization.EnergyImage(energy)); err != nil {
			return err
		}

		signal := gradient.EdgeSignal(buf, axis)
		plot, err := visualization.SignalImage(signal, 128)
		if err != nil {
			return err
		}
		if _, err := p.viewer.SaveStage("02_edge_signal", stem, plot); err != nil {
			return err
		}

		lines[i] = gradient.FindPeaks(signal, gradient.ExcludeSentinels)
	}

	overlay := visualization.GridOverlay(img, lines[0], lines[1])
	_, err := p.viewer.SaveStage("03_grid_overlay", name, overlay)
	return err
}
