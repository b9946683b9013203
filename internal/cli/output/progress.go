package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// ProgressBar displays transfer progress for uploads.
type ProgressBar struct {
	w     io.Writer
	title string
	width int

	mu      sync.Mutex
	total   int64
	current int64
}

// NewProgressBar creates a progress bar for a transfer of total bytes.
// A non-positive total shows a byte counter instead of a bar.
func NewProgressBar(w io.Writer, title string, total int64) *ProgressBar {
	return &ProgressBar{w: w, title: title, width: 30, total: total}
}

// Add records n more bytes.
func (p *ProgressBar) Add(n int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current += n
	p.render()
}

// Finish draws the final state and ends the line.
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.total > 0 {
		p.current = p.total
	}
	p.render()
	fmt.Fprintln(p.w)
}

// Reader wraps r so every read advances the bar.
func (p *ProgressBar) Reader(r io.Reader) io.Reader {
	return &progressReader{r: r, bar: p}
}

func (p *ProgressBar) render() {
	if p.total <= 0 {
		fmt.Fprintf(p.w, "\r%s %s", p.title, FormatBytes(p.current))
		return
	}
	frac := float64(p.current) / float64(p.total)
	if frac > 1 {
		frac = 1
	}
	filled := int(float64(p.width) * frac)
	fmt.Fprintf(p.w, "\r%s [%s%s] %3.0f%% (%s/%s)",
		p.title,
		strings.Repeat("█", filled),
		strings.Repeat("░", p.width-filled),
		frac*100,
		FormatBytes(p.current),
		FormatBytes(p.total))
}

type progressReader struct {
	r   io.Reader
	bar *ProgressBar
}

func (pr *progressReader) Read(b []byte) (int, error) {
	n, err := pr.r.Read(b)
	if n > 0 {
		pr.bar.Add(int64(n))
	}
	return n, err
}

// FormatBytes formats a byte count with binary units.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
