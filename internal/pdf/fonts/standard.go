package fonts

import (
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/font"
)

// Standard font names.
const (
	HelveticaName     = "Helvetica"
	HelveticaBoldName = "Helvetica-Bold"
)

var (
	standardMu    sync.Mutex
	standardFonts = map[string]*Font{}
)

// Helvetica returns the regular standard font.
func Helvetica() *Font { return Standard(HelveticaName) }

// HelveticaBold returns the bold standard font.
func HelveticaBold() *Font { return Standard(HelveticaBoldName) }

// Standard returns one of the 14 standard Type1 fonts, measured with the
// core font metrics shipped with pdfcpu. Names that are not core fonts
// get Helvetica.
func Standard(name string) *Font {
	if !font.IsCoreFont(name) {
		name = HelveticaName
	}

	standardMu.Lock()
	defer standardMu.Unlock()

	if f, ok := standardFonts[name]; ok {
		return f
	}

	// core metrics are indexed by WinAnsi code
	f := &Font{name: name, standard: true}
	for code := firstChar; code <= lastChar; code++ {
		f.widths[code] = float64(font.CharWidth(name, rune(code)))
	}
	standardFonts[name] = f
	return f
}
