package build

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
)

// maxLineSize bounds a single NDJSON line.
const maxLineSize = 1 << 20

// Decoder reads progress events from an NDJSON stream.
type Decoder struct {
	sc     *bufio.Scanner
	logger *log.Logger
}

// NewDecoder returns a decoder reading from r. Skipped lines are reported
// to logger at warn level; a nil logger discards them.
func NewDecoder(r io.Reader, logger *log.Logger) *Decoder {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Decoder{sc: sc, logger: logger}
}

// Next returns the next event. Blank and malformed lines are skipped. At
// the end of the stream Next returns io.EOF; a trailing line without a
// newline is still decoded.
func (d *Decoder) Next() (Status, error) {
	for d.sc.Scan() {
		line := bytes.TrimSpace(d.sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var s Status
		if err := json.Unmarshal(line, &s); err != nil {
			d.logger.Warn("failed to parse progress data", "line", string(line), "err", err)
			continue
		}
		return s, nil
	}
	if err := d.sc.Err(); err != nil {
		return Status{}, err
	}
	return Status{}, io.EOF
}

// Encoder writes progress events as NDJSON, flushing after every line when
// the writer supports it.
type Encoder struct {
	w   io.Writer
	enc *json.Encoder
}

// NewEncoder returns an encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w, enc: json.NewEncoder(w)}
}

// Encode writes one event followed by a newline.
func (e *Encoder) Encode(s Status) error {
	if s.Logs == nil {
		s.Logs = []string{}
	}
	if err := e.enc.Encode(s); err != nil {
		return err
	}
	if f, ok := e.w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}
