package hashing

// seqNT4table converts an ASCII nucleotide to its 2-bit code (A=0, C=1, G=2,
// T=3). Any other byte maps to 4, the invalid-symbol sentinel. Grounded on
// the teacher's src/minhash/minhash.go encoding table.
var seqNT4table = func() [256]uint8 {
	var t [256]uint8
	for i := range t {
		t[i] = 4
	}
	t['A'], t['a'] = 0, 0
	t['C'], t['c'] = 1, 1
	t['G'], t['g'] = 2, 2
	t['T'], t['t'] = 3, 3
	return t
}()

// complementTable maps a base to its Watson-Crick complement.
var complementTable = func() [256]byte {
	var t [256]byte
	t['A'], t['a'] = 'T', 'T'
	t['C'], t['c'] = 'G', 'G'
	t['G'], t['g'] = 'C', 'C'
	t['T'], t['t'] = 'A', 'A'
	return t
}()

// validSymbol reports whether b is a recognised nucleotide.
func validSymbol(b byte) bool {
	return seqNT4table[b] != 4
}
