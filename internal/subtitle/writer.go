package subtitle

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
)

// Write serializes doc. Header and text lines are reproduced verbatim and
// only the two times on each time line are replaced.
func Write(w io.Writer, doc *Document) error {
	bw := bufio.NewWriter(w)

	if doc.Format == FormatVTT {
		header := doc.Header
		if header == "" {
			header = vttHeader
		}
		writeLine(bw, header)
		for _, line := range doc.Preamble {
			writeLine(bw, line)
		}
		writeLine(bw, "")
	}

	for i, cue := range doc.Cues {
		if i > 0 {
			writeLine(bw, "")
		}
		for _, line := range cue.HeaderLines {
			writeLine(bw, line)
		}
		writeLine(bw, rewriteTimeLine(cue.TimeLine, cue.Start, cue.End, doc.Format))
		for _, line := range cue.TextLines {
			writeLine(bw, line)
		}
	}

	return bw.Flush()
}

func writeLine(w *bufio.Writer, line string) {
	_, _ = w.WriteString(line)
	_ = w.WriteByte('\n')
}

// writes doc to path, creating the parent directory
func WriteFile(path string, doc *Document) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, doc); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0755)
}
