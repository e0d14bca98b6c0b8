package report

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"
)

// Progress prints batch progress lines and notices. It implements
// ports.ProgressReporter.
type Progress struct {
	mu    sync.Mutex
	out   io.Writer
	total int
	done  int
}

func NewProgress(out io.Writer) *Progress {
	return &Progress{out: out}
}

func (p *Progress) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = total
	p.done = 0
	fmt.Fprintf(p.out, "Checking %d PDF(s)\n", total)
}

func (p *Progress) Advance(document string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++
	fmt.Fprintf(p.out, "[%d/%d] %s\n", p.done, p.total, filepath.Base(document))
}

func (p *Progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "Checked %d of %d\n", p.done, p.total)
}

func (p *Progress) Notice(level, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s: %s\n", level, message)
}
