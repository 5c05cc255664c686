// Debug dump helpers, kept from the teacher's use of k0kubun/pp in
// lib_test.go for pretty-printing candidate values during development.
package ports

import (
	"io"
	"os"

	"github.com/k0kubun/colorstring"
	"github.com/k0kubun/pp"
	"github.com/mattn/go-colorable"

	"github.com/whoisdinanath/schedule-engine-sub001/internal/domain"
)

// NewDebugWriter wraps stdout/stderr with go-colorable so pp's ANSI output
// renders correctly on every platform, matching the teacher's transitive
// dependency on mattn/go-colorable.
func NewDebugWriter(w io.Writer) io.Writer {
	if f, ok := w.(*os.File); ok {
		return colorable.NewColorable(f)
	}
	return colorable.NewNonColorable(w)
}

// DumpIndividual pretty-prints an individual's genes and fitness to w.
func DumpIndividual(w io.Writer, ind *domain.Individual) {
	fp := pp.New()
	fp.SetOutput(w)
	fp.Println(colorstring.Color("[cyan]individual[reset] " + ind.TraceID))
	fp.Println(ind.Fitness)
	for _, g := range ind.Genes {
		fp.Println(g)
	}
}

// DumpAny pretty-prints an arbitrary labeled value to w — used by the CLI's
// -debug flag to dump the generation metrics history and the final
// violation digest.
func DumpAny(w io.Writer, label string, v interface{}) {
	fp := pp.New()
	fp.SetOutput(w)
	fp.Println(colorstring.Color("[yellow]" + label + "[reset]"))
	fp.Println(v)
}
