package export

import (
	"bufio"
	"io"
	"strconv"
	"unicode/utf16"
)

const rtfHeader = `{\rtf1\ansi\ansicpg1252\deff0\uc1{\fonttbl{\f0\fnil\fcharset0 Nirmala UI;}}` + "\n" + `\f0\fs28 `

// WriteRTF wraps text in a minimal RTF document. Anything outside ASCII is
// written as \uN? escapes of its UTF-16 units.
func WriteRTF(w io.Writer, text string) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(rtfHeader)
	for _, r := range text {
		switch {
		case r == '\\' || r == '{' || r == '}':
			bw.WriteByte('\\')
			bw.WriteRune(r)
		case r == '\n':
			bw.WriteString("\\par\n")
		case r == '\r':
		case r == '\t':
			bw.WriteString("\\tab ")
		case r < 0x80:
			bw.WriteRune(r)
		default:
			for _, unit := range utf16.Encode([]rune{r}) {
				bw.WriteString("\\u")
				bw.WriteString(strconv.Itoa(int(int16(unit))))
				bw.WriteByte('?')
			}
		}
	}
	bw.WriteString("}\n")
	return bw.Flush()
}
