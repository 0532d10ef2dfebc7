package printer

import (
	"fmt"
	"strings"

	"github.com/joshuapare/heapkit/heap"
)

// labelWidth aligns the first column of the text layout.
const labelWidth = 15

func (p *Printer) printExtentsText() error {
	for _, e := range p.extents() {
		if err := p.printExtentText(e); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) printExtentText(e *heap.Extent) error {
	pad := strings.Repeat(" ", labelWidth)
	w := p.writer

	if e.IsAnchor() {
		fmt.Fprintf(w, "%-*s anchor\n", labelWidth, "EXTENT")
	} else {
		fmt.Fprintf(w, "%-*s size             %d\n", labelWidth, "EXTENT", e.Size())
		fmt.Fprintf(w, "%s left position    %d\n", pad, e.Left())
		fmt.Fprintf(w, "%s right position   %d\n", pad, e.Right())
		if hd := e.Handle(); hd != nil {
			fmt.Fprintf(w, "%s handle           #%d\n", pad, hd.ID())
			if name := className(hd); name != "" {
				fmt.Fprintf(w, "%s class            %s\n", pad, name)
			}
		}
		fmt.Fprintf(w, "%s marker           %v (%s)\n", pad, e.Marker(), mirror(p.h, e))
		if p.opts.ShowPayload {
			b, truncated := p.preview(e)
			suffix := ""
			if truncated {
				suffix = " ..."
			}
			fmt.Fprintf(w, "%s payload          % x%s\n", pad, b, suffix)
		}
	}
	if e.Next() == nil {
		fmt.Fprintf(w, "%s TERMINAL\n", pad)
	}
	_, err := fmt.Fprintln(w)
	return err
}

func (p *Printer) printStatsText(s heap.Stats) error {
	pad := strings.Repeat(" ", labelWidth)
	fmt.Fprintf(p.writer, "%s objects          %d\n", pad, s.Extents)
	fmt.Fprintf(p.writer, "%-*s used memory      %d\n", labelWidth, "HEAP STATUS", s.Used)
	fmt.Fprintf(p.writer, "%s available memory %d\n", pad, s.Free)
	_, err := fmt.Fprintln(p.writer)
	return err
}
