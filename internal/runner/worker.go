package runner

import (
	"sync"
	"sync/atomic"

	"github.com/sokinpui/shotcmp/internal/comparator"
)

// job is one check with its effective comparison options.
type job struct {
	check     Check
	opts      comparator.Options
	imageType string
}

// worker is a goroutine that receives jobs, verifies their screenshots and
// sends every result to the results channel.
func worker(wg *sync.WaitGroup, jobs <-chan job, results chan<- *Result, processed *int64, v *Verifier) {
	defer wg.Done()
	for j := range jobs {
		results <- runJob(j, v)
		atomic.AddInt64(processed, 1)
	}
}

func runJob(j job, v *Verifier) *Result {
	img, err := loadImage(j.check.Screenshot, j.imageType)
	if err != nil {
		return &Result{Name: j.check.Name, Status: StatusError, Err: err}
	}
	res, err := v.Verify(j.check.Name, img, j.opts)
	if err != nil {
		return &Result{Name: j.check.Name, Status: StatusError, Err: err}
	}
	return res
}
