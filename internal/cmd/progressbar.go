package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// defaultBytes builds the byte-count progress bar the commands share. It
// refreshes at most once a second; entries arrive over ranged network reads
// and a faster redraw only flickers.
func defaultBytes(maxBytes int64, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(maxBytes,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowBytes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(10),
		progressbar.OptionFullWidth(),
		progressbar.OptionThrottle(time.Second),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprint(os.Stderr, "\n")
		}))
}
