package cli

import (
	"fmt"
	"io"

	"github.com/m-mizutani/vsget/pkg/domain/model"
)

// renderThreshold is how many new bytes must arrive before an unknown-length
// transfer repaints its status line.
const renderThreshold = 256 * 1024

// progressRenderer paints a single in-place status line during the transfer
// phase and ignores the bookkeeping phases. Repaints are throttled to whole
// percents when the total is known and to byte chunks when it is not.
type progressRenderer struct {
	w           io.Writer
	active      bool
	lastPercent int
	lastBytes   int64
}

func newProgressRenderer(w io.Writer) model.ProgressFunc {
	r := &progressRenderer{w: w, lastPercent: -1}
	return r.update
}

func (r *progressRenderer) update(p model.TransferProgress) {
	switch p.Phase {
	case model.PhaseTransferring:
		r.paint(p)
	case model.PhaseVerifying, model.PhaseDone, model.PhaseFailed, model.PhaseCancelled:
		r.finish()
	}
}

func (r *progressRenderer) paint(p model.TransferProgress) {
	if p.TotalBytes > 0 {
		percent := int(p.Percent())
		if r.active && percent == r.lastPercent {
			return
		}
		r.lastPercent = percent
		fmt.Fprintf(r.w, "\rDownloading... %3d%% (%s / %s)",
			percent, formatBytes(p.Bytes), formatBytes(p.TotalBytes))
	} else {
		if r.active && p.Bytes-r.lastBytes < renderThreshold {
			return
		}
		r.lastBytes = p.Bytes
		fmt.Fprintf(r.w, "\rDownloading... %s", formatBytes(p.Bytes))
	}
	r.active = true
}

// finish drops to a fresh line so later log output does not overwrite the
// status line.
func (r *progressRenderer) finish() {
	if !r.active {
		return
	}
	fmt.Fprintln(r.w)
	r.active = false
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(n)/(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
