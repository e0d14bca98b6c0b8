package ports

// ProgressReporter receives batch progress and notices from the checker so
// callers decide how (or whether) to render them.
type ProgressReporter interface {
	Start(total int)
	Advance(document string)
	Finish()
	Notice(level, message string)
}

// NopProgress discards everything.
type NopProgress struct{}

func (NopProgress) Start(int)             {}
func (NopProgress) Advance(string)        {}
func (NopProgress) Finish()               {}
func (NopProgress) Notice(string, string) {}
