package trie

import (
	"fmt"
	"testing"
)

func benchDomains(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("host%d.zone%d.example%d.com", i, i%97, i%13)
	}
	return out
}

func BenchmarkCompactAdd(b *testing.B) {
	domains := benchDomains(10_000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c := NewCompact[struct{}]()
		for _, d := range domains {
			_ = c.Add(d, false, struct{}{})
		}
	}
}

func BenchmarkContains_Hit(b *testing.B) {
	domains := benchDomains(10_000)
	c := NewCompact[struct{}]()
	_ = c.AddAll(domains...)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if !c.Contains(domains[i%len(domains)]) {
			b.Fatalf("expected hit")
		}
	}
}

func BenchmarkDumpSorted(b *testing.B) {
	c := NewCounted[struct{}]()
	_ = c.AddAll(benchDomains(10_000)...)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Dump(true)
	}
}
