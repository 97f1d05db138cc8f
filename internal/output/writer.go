package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "output")

const (
	bannerRule = "#########################################"
	eofMarker  = "################## EOF ##################"
)

// Banner is the comment block written above every list.
type Banner struct {
	Title       string
	Description []string
	Date        time.Time
}

func (b Banner) header(size int) []string {
	out := []string{
		bannerRule,
		"# " + b.Title,
		"# Last Updated: " + b.Date.UTC().Format("2006-01-02T15:04:05.000Z"),
		fmt.Sprintf("# Size: %d", size),
	}
	for _, d := range b.Description {
		if d == "" {
			out = append(out, "#")
		} else {
			out = append(out, "# "+d)
		}
	}
	return append(out, bannerRule)
}

// Write emits the banner, lines and the EOF marker.
func Write(w io.Writer, b Banner, lines []string) error {
	bw := bufio.NewWriter(w)
	for _, l := range b.header(len(lines)) {
		bw.WriteString(l)
		bw.WriteByte('\n')
	}
	for _, l := range lines {
		bw.WriteString(l)
		bw.WriteByte('\n')
	}
	bw.WriteString(eofMarker)
	bw.WriteByte('\n')
	return bw.Flush()
}

// WriteFile writes the list to path through a temporary file in the same
// directory, so readers never see a partial file.
func WriteFile(path string, b Banner, lines []string) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = Write(tmp, b, lines); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}

	log.WithFields(logrus.Fields{"path": path, "entries": len(lines)}).Debug("list written")
	return nil
}
