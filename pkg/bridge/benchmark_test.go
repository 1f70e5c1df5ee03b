package bridge_test

import (
	"testing"

	"github.com/yaklabco/mdlive/pkg/bridge"
	"github.com/yaklabco/mdlive/pkg/dom"
)

// Benchmark a full parse and serialize round trip.
func BenchmarkRoundTrip(b *testing.B) {
	const markdown = `## Heading with **bold**

A paragraph with *emphasis*, ` + "`code`" + ` and ~~strike~~.

> quoted

* [x] done
* [ ] open

| a | b |
| - | - |
| 1 | 2 |`

	br := bridge.New(bridge.FlavorGFM)

	b.ResetTimer()
	for range b.N {
		frag, err := br.ParseMarkdown(markdown)
		if err != nil {
			b.Fatal(err)
		}
		root := dom.NewRoot()
		for _, n := range frag.Nodes {
			root.AppendChild(n)
		}
		if _, err := br.SerializeBlock(root); err != nil {
			b.Fail()
		}
	}
}
