package linkhost

import (
	"strconv"
	"strings"
)

// Kernel front ends escape control and non-printable characters on the
// wire. Unescape decodes the grammar after extraction: \n, \r and \t
// map to their control characters, \0 followed by a run of octal
// digits decodes to one raw byte (the run ends at the first non-octal
// character, which is reprocessed as ordinary input), and any other
// backslash-prefixed character passes through with the backslash
// retained.
func Unescape(s string) string {
	const (
		stateStd = iota
		stateEsc
		stateOct
	)
	var b strings.Builder
	b.Grow(len(s))
	state := stateStd
	num := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch state {
		case stateStd:
			if c == '\\' {
				state = stateEsc
				num = 0
			} else {
				b.WriteByte(c)
			}
		case stateEsc:
			switch c {
			case '0':
				state = stateOct
			case 'n':
				b.WriteByte('\n')
				state = stateStd
			case 'r':
				b.WriteByte('\r')
				state = stateStd
			case 't':
				b.WriteByte('\t')
				state = stateStd
			default:
				b.WriteByte('\\')
				b.WriteByte(c)
				state = stateStd
			}
		case stateOct:
			if c >= '0' && c <= '7' {
				num = num*8 + int(c-'0')
			} else {
				b.WriteByte(byte(num))
				state = stateStd
				i--
			}
		}
	}
	switch state {
	case stateEsc:
		b.WriteByte('\\')
	case stateOct:
		b.WriteByte(byte(num))
	}
	return b.String()
}

// Escape is the transmitting inverse: control characters map to their
// letter escapes and literal backslashes to their octal escape, so
// Unescape(Escape(s)) == s for every byte sequence. An octal digit
// directly after an octal escape would extend the run, so it is
// emitted as an octal escape itself.
func Escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	octalRun := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\n':
			b.WriteString(`\n`)
			octalRun = false
		case c == '\r':
			b.WriteString(`\r`)
			octalRun = false
		case c == '\t':
			b.WriteString(`\t`)
			octalRun = false
		case c == '\\':
			b.WriteString(`\0134`)
			octalRun = true
		case octalRun && c >= '0' && c <= '7':
			b.WriteString(`\0`)
			b.WriteString(strconv.FormatUint(uint64(c), 8))
		default:
			b.WriteByte(c)
			octalRun = false
		}
	}
	return b.String()
}
