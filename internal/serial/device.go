package serial

import (
	goio "io"

	"github.com/thelolagemann/gbcemu/pkg/log"
)

// Device is the other end of the link cable.
type Device interface {
	// Exchange receives the byte sent by the Game Boy, and returns
	// the byte sent back.
	Exchange(out uint8) uint8
}

// nullDevice acts as if nothing is plugged in, so every bit read is
// high.
type nullDevice struct{}

func (nullDevice) Exchange(uint8) uint8 { return 0xFF }

// Writer is a Device that writes every byte it receives to an
// io.Writer. Test ROMs use it as a console.
type Writer struct {
	w   goio.Writer
	log log.Logger
}

// NewWriter returns a Writer writing to w. Write errors are logged to
// l, if not nil.
func NewWriter(w goio.Writer, l log.Logger) *Writer {
	if l == nil {
		l = log.NewNullLogger()
	}
	return &Writer{w: w, log: l}
}

// Exchange implements Device.
func (w *Writer) Exchange(out uint8) uint8 {
	if _, err := w.w.Write([]byte{out}); err != nil {
		w.log.Warnf("serial: %v", err)
	}
	return 0xFF
}
