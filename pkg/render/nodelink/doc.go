// Package nodelink draws metrical hierarchies as node-link diagrams using
// Graphviz.
//
// Every level of a hierarchy becomes one rank of boxes, one box per segment
// between adjacent boundaries. Each segment points to the segments of the
// next level it contains, so the diagram reads as a tree from the whole
// measure down to the finest pulse:
//
//	            [0, 3.5)
//	      /        |        \
//	  [0, 1)    [1, 2)    [2, 3.5)
//
// # Highlighting Splits
//
// Passing fragments in [Options].Highlight fills every segment that lies
// inside a fragment and adds a bottom rank with one node per fragment,
// chained by dashed "tie" edges in order. This shows at a glance where a
// split fell relative to the meter.
//
// # Rendering
//
// [ToDOT] produces the DOT source; [RenderSVG] lays it out with the
// embedded Graphviz engine:
//
//	dot := nodelink.ToDOT(h, nodelink.Options{MaxDepth: 3})
//	svg, err := nodelink.RenderSVG(dot)
//
// Deep hierarchies (a 64th-note grid has hundreds of segments) are best cut
// with MaxDepth.
package nodelink
